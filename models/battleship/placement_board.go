package battleship

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const (
	// Random samples tried for one ship before the fleet is re-rolled.
	maxPlacementAttempts = 1000
	maxFleetRestarts     = 100
)

type BoardOption func(*PlacementBoard)

func WithRand(r *rand.Rand) BoardOption {
	return func(pb *PlacementBoard) {
		pb.rng = r
	}
}

// PlacementBoard is a board in the setup stage. Ships are committed one by
// one (or randomly) and the board is then turned into an ActiveBoard.
type PlacementBoard struct {
	grid      *Grid
	ships     []Placement
	rng       *rand.Rand
	finalized bool
}

func NewPlacementBoard(size int, opts ...BoardOption) (*PlacementBoard, error) {
	if size < 1 {
		return nil, cerr.ErrBoardSizeNotSupported(size)
	}

	pb := &PlacementBoard{
		grid:  NewGrid(size),
		ships: make([]Placement, 0, len(DefaultFleets[size])),
	}
	for _, opt := range opts {
		opt(pb)
	}
	if pb.rng == nil {
		pb.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return pb, nil
}

func (pb *PlacementBoard) Size() int {
	return pb.grid.Size()
}

func (pb *PlacementBoard) Cell(x, y int) Cell {
	return pb.grid.Cell(x, y)
}

func (pb *PlacementBoard) Ships() []Placement {
	return slices.Clone(pb.ships)
}

func (pb *PlacementBoard) SetTileChangeFunc(fn TileChangeFunc) {
	pb.grid.SetTileChangeFunc(fn)
}

func (pb *PlacementBoard) IsCellTaken(x, y int) bool {
	return pb.grid.Cell(x, y).State == TileTaken
}

// CanPlace reports whether every fragment is on the board and neither the
// fragment nor any of its eight neighbours is already taken.
func (pb *PlacementBoard) CanPlace(p Placement) bool {
	if p.Ship.Length() < 1 || !p.Orientation.IsValid() {
		return false
	}
	return p.allFragments(pb.canFragmentBePlaced)
}

func (pb *PlacementBoard) canFragmentBePlaced(x, y int) bool {
	if !pb.grid.InBounds(x, y) {
		return false
	}
	for c := range pb.grid.TilesAround(x, y) {
		if pb.IsCellTaken(c.X, c.Y) {
			return false
		}
	}
	return true
}

// Commit validates the placement again and takes its cells. An invalid
// placement leaves the board untouched.
func (pb *PlacementBoard) Commit(p Placement) error {
	if pb.finalized {
		return cerr.ErrBoardFinalized
	}
	if !pb.CanPlace(p) {
		return cerr.ErrPlacementRejected(p.Ship.Length(), p.X, p.Y)
	}
	pb.commit(p)
	return nil
}

func (pb *PlacementBoard) commit(p Placement) {
	idx := len(pb.ships)
	for c := range p.Fragments() {
		pb.grid.setTileShip(c.X, c.Y, idx)
		pb.grid.setTileState(c.X, c.Y, TileTaken)
	}
	pb.ships = append(pb.ships, p)
}

// PlaceFleetRandomly commits one ship per length in sizes, each at a
// uniformly random orientation and anchor that keeps it on the board.
func (pb *PlacementBoard) PlaceFleetRandomly(sizes []int) error {
	if pb.finalized {
		return cerr.ErrBoardFinalized
	}
	if err := ValidateFleet(pb.Size(), sizes); err != nil {
		return err
	}

	firstShip := len(pb.ships)

fleetLoop:
	for restart := range maxFleetRestarts {
		for _, length := range sizes {
			p, ok := pb.sampleFreePlacement(length)
			if !ok {
				slog.Debug("random placement re-rolling fleet",
					"boardSize", pb.Size(),
					"length", length,
					"restart", restart)
				pb.removeShipsFrom(firstShip)
				continue fleetLoop
			}
			pb.commit(p)
		}
		return nil
	}

	return fmt.Errorf("%w: fleet %v on board of size %d", cerr.ErrFleetDoesNotFit, sizes, pb.Size())
}

func (pb *PlacementBoard) sampleFreePlacement(length int) (Placement, bool) {
	p := NewPlacement(NewShip(length), 0, 0, OrientationHorizontal)
	size := pb.Size()

	for range maxPlacementAttempts {
		p.Orientation = OrientationHorizontal
		if pb.rng.IntN(2) == 1 {
			p.Orientation = OrientationVertical
		}
		p.X = pb.rng.IntN(size - p.Width() + 1)
		p.Y = pb.rng.IntN(size - p.Height() + 1)

		if pb.CanPlace(p) {
			return p, true
		}
	}
	return p, false
}

// removeShipsFrom drops every ship with index >= from and empties its cells.
func (pb *PlacementBoard) removeShipsFrom(from int) {
	for _, p := range pb.ships[from:] {
		for c := range p.Fragments() {
			pb.grid.setTileShip(c.X, c.Y, NoShip)
			pb.grid.setTileState(c.X, c.Y, TileEmpty)
		}
	}
	pb.ships = pb.ships[:from]
}

// Clear removes every ship from the board.
func (pb *PlacementBoard) Clear() {
	if pb.finalized {
		return
	}
	pb.removeShipsFrom(0)
}

// Finalize hands the grid and ship list over to an ActiveBoard. The
// placement board can't be used afterwards.
func (pb *PlacementBoard) Finalize() (*ActiveBoard, error) {
	if pb.finalized {
		return nil, cerr.ErrBoardFinalized
	}
	pb.finalized = true

	ab := newActiveBoard(pb.grid, pb.ships)
	pb.grid = nil
	pb.ships = nil
	return ab, nil
}

func (pb *PlacementBoard) String() string {
	if pb.grid == nil {
		return "finalized board"
	}
	return pb.grid.String()
}
