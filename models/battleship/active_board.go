package battleship

import (
	"iter"
	"slices"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type ShotResult uint8

const (
	ShotHit ShotResult = iota
	ShotSunk
	ShotMissed
)

func (r ShotResult) String() string {
	switch r {
	case ShotHit:
		return "hit"
	case ShotSunk:
		return "sunk"
	default:
		return "missed"
	}
}

// ActiveBoard is a board in the combat stage. It only ever changes through
// Fire.
type ActiveBoard struct {
	grid           *Grid
	ships          []Placement
	takenTileCount int
	hitCount       int
	shotCount      int
}

func newActiveBoard(grid *Grid, ships []Placement) *ActiveBoard {
	return &ActiveBoard{
		grid:           grid,
		ships:          ships,
		takenTileCount: grid.countStates(Cell.IsOccupied),
		hitCount:       grid.countStates(Cell.IsHit),
	}
}

func (ab *ActiveBoard) Size() int {
	return ab.grid.Size()
}

func (ab *ActiveBoard) Cell(x, y int) Cell {
	return ab.grid.Cell(x, y)
}

func (ab *ActiveBoard) InBounds(x, y int) bool {
	return ab.grid.InBounds(x, y)
}

func (ab *ActiveBoard) Ships() []Placement {
	return slices.Clone(ab.ships)
}

func (ab *ActiveBoard) SetTileChangeFunc(fn TileChangeFunc) {
	ab.grid.SetTileChangeFunc(fn)
}

func (ab *ActiveBoard) Neighbors(x, y int) iter.Seq[Coordinates] {
	return ab.grid.Neighbors(x, y)
}

func (ab *ActiveBoard) TilesAround(x, y int) iter.Seq[Coordinates] {
	return ab.grid.TilesAround(x, y)
}

// ShipFragments returns the cells of the ship stored at shipIndex, or nil
// when there is no such ship.
func (ab *ActiveBoard) ShipFragments(shipIndex int) []Coordinates {
	if shipIndex < 0 || shipIndex >= len(ab.ships) {
		return nil
	}
	return ab.ships[shipIndex].FragmentList()
}

// RemainingFragments is the number of ship cells not hit yet. The board is
// defeated once it drops to zero.
func (ab *ActiveBoard) RemainingFragments() int {
	return ab.takenTileCount - ab.hitCount
}

func (ab *ActiveBoard) IsDefeated() bool {
	return ab.RemainingFragments() == 0
}

// ShotCount is the number of successful Fire calls.
func (ab *ActiveBoard) ShotCount() int {
	return ab.shotCount
}

// Fire shoots at (x, y). Cells that were shot before are rejected with
// ErrRepeatedShot instead of reporting their old result again.
func (ab *ActiveBoard) Fire(x, y int) (ShotResult, error) {
	if !ab.grid.InBounds(x, y) {
		return ShotMissed, cerr.ErrXorYOutOfGridBound(x, y)
	}

	cell := ab.grid.Cell(x, y)
	if cell.IsShot() {
		return ShotMissed, cerr.ErrPositionAlreadyShot(x, y)
	}
	ab.shotCount++

	if cell.State == TileEmpty {
		ab.grid.setTileState(x, y, TileMissed)
		return ShotMissed, nil
	}

	ab.hitCount++
	ab.grid.setTileState(x, y, TileHit)
	if ab.trySinkShip(cell.ShipIndex) {
		return ShotSunk, nil
	}
	return ShotHit, nil
}

func (ab *ActiveBoard) trySinkShip(shipIndex int) bool {
	if shipIndex == NoShip {
		return false
	}
	ship := ab.ships[shipIndex]

	if !ship.allFragments(func(x, y int) bool { return ab.grid.Cell(x, y).IsShot() }) {
		return false
	}
	for c := range ship.Fragments() {
		ab.grid.setTileState(c.X, c.Y, TileSunk)
	}
	return true
}

func (ab *ActiveBoard) String() string {
	return ab.grid.String()
}
