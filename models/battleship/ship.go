package battleship

import "iter"

type Orientation uint8

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
)

func (o Orientation) IsValid() bool {
	return o == OrientationHorizontal || o == OrientationVertical
}

func (o Orientation) String() string {
	if o == OrientationVertical {
		return "vertical"
	}
	return "horizontal"
}

// Ship is a straight piece of the given length. It knows nothing about
// the board; Placement puts it somewhere.
type Ship struct {
	length int
}

func NewShip(length int) Ship {
	return Ship{length: length}
}

func (sh Ship) Length() int {
	return sh.length
}

func (sh Ship) Width() int {
	return sh.length
}

func (sh Ship) Height() int {
	return 1
}

// Fragments yields the local offsets (i, 0) of every cell of the ship.
func (sh Ship) Fragments() iter.Seq[Coordinates] {
	return func(yield func(Coordinates) bool) {
		for i := range sh.length {
			if !yield(NewCoordinates(i, 0)) {
				return
			}
		}
	}
}

// Placement anchors a ship at its top-left cell (X, Y) on a board.
type Placement struct {
	Ship        Ship
	X           int
	Y           int
	Orientation Orientation
}

func NewPlacement(ship Ship, x, y int, orientation Orientation) Placement {
	return Placement{Ship: ship, X: x, Y: y, Orientation: orientation}
}

func (p Placement) Width() int {
	if p.Orientation == OrientationVertical {
		return p.Ship.Height()
	}
	return p.Ship.Width()
}

func (p Placement) Height() int {
	if p.Orientation == OrientationVertical {
		return p.Ship.Width()
	}
	return p.Ship.Height()
}

// Fragments yields the absolute board cells covered by the placement.
// Vertical placements rotate the local frame so (i, 0) lands on (X, Y+i).
func (p Placement) Fragments() iter.Seq[Coordinates] {
	return func(yield func(Coordinates) bool) {
		for local := range p.Ship.Fragments() {
			abs := NewCoordinates(p.X+local.X, p.Y+local.Y)
			if p.Orientation == OrientationVertical {
				abs = NewCoordinates(p.X+local.Y, p.Y+local.X)
			}
			if !yield(abs) {
				return
			}
		}
	}
}

// FragmentList collects Fragments into a slice.
func (p Placement) FragmentList() []Coordinates {
	coords := make([]Coordinates, 0, p.Ship.Length())
	for c := range p.Fragments() {
		coords = append(coords, c)
	}
	return coords
}

// MoveFromWall pulls the anchor back so the whole placement fits on a
// board of the given size. Orientation is left untouched.
func (p *Placement) MoveFromWall(boardSize int) {
	if p.X+p.Width() > boardSize {
		p.X = boardSize - p.Width()
	}
	if p.Y+p.Height() > boardSize {
		p.Y = boardSize - p.Height()
	}
	p.X = max(p.X, 0)
	p.Y = max(p.Y, 0)
}

func (p Placement) allFragments(condition func(x, y int) bool) bool {
	for c := range p.Fragments() {
		if !condition(c.X, c.Y) {
			return false
		}
	}
	return true
}
