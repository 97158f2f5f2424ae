package battleship

import (
	"bytes"
	"fmt"
	"iter"
	"strconv"
	"text/tabwriter"
)

type TileState uint8

const (
	TileEmpty TileState = iota
	TileTaken
	TileHit
	TileSunk
	TileMissed
)

func (t TileState) String() string {
	switch t {
	case TileTaken:
		return "taken"
	case TileHit:
		return "hit"
	case TileSunk:
		return "sunk"
	case TileMissed:
		return "missed"
	default:
		return "empty"
	}
}

// NoShip is the ShipIndex of a cell that holds no ship fragment.
const NoShip = -1

type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

// Cell stores the index of its owning ship inside the board's ship list
// rather than a pointer to it.
type Cell struct {
	State     TileState
	ShipIndex int
}

func (c Cell) IsEmpty() bool {
	return c.State == TileEmpty
}

func (c Cell) IsOccupied() bool {
	return c.State == TileTaken || c.State == TileHit || c.State == TileSunk
}

func (c Cell) IsShot() bool {
	return c.State == TileHit || c.State == TileSunk || c.State == TileMissed
}

func (c Cell) IsHit() bool {
	return c.State == TileHit || c.State == TileSunk
}

func (c Cell) IsSunk() bool {
	return c.State == TileSunk
}

// TileChangeFunc is called after every cell state change.
type TileChangeFunc func(x, y int, state TileState)

type Grid struct {
	size         int
	cells        []Cell
	onTileChange TileChangeFunc
}

// Creates a new grid where every cell is empty
func NewGrid(size int) *Grid {
	g := &Grid{
		size:         size,
		cells:        make([]Cell, size*size),
		onTileChange: func(int, int, TileState) {},
	}
	g.reset()
	return g
}

func (g *Grid) reset() {
	for i := range g.cells {
		g.cells[i] = Cell{State: TileEmpty, ShipIndex: NoShip}
	}
}

func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.size && y < g.size
}

// Cell panics on out of bound coordinates; callers check InBounds first.
func (g *Grid) Cell(x, y int) Cell {
	return g.cells[g.index(x, y)]
}

func (g *Grid) SetTileChangeFunc(fn TileChangeFunc) {
	if fn == nil {
		fn = func(int, int, TileState) {}
	}
	g.onTileChange = fn
}

func (g *Grid) index(x, y int) int {
	return y*g.size + x
}

func (g *Grid) setTileState(x, y int, state TileState) {
	g.cells[g.index(x, y)].State = state
	g.onTileChange(x, y, state)
}

func (g *Grid) setTileShip(x, y, shipIndex int) {
	g.cells[g.index(x, y)].ShipIndex = shipIndex
}

// Neighbors yields the orthogonal neighbours of (x, y) that lie on the board.
func (g *Grid) Neighbors(x, y int) iter.Seq[Coordinates] {
	return func(yield func(Coordinates) bool) {
		candidates := [4]Coordinates{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}}
		for _, c := range candidates {
			if !g.InBounds(c.X, c.Y) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// TilesAround yields the 3x3 block centred on (x, y), the centre
// included, clipped to the board.
func (g *Grid) TilesAround(x, y int) iter.Seq[Coordinates] {
	return func(yield func(Coordinates) bool) {
		for x1 := x - 1; x1 <= x+1; x1++ {
			for y1 := y - 1; y1 <= y+1; y1++ {
				if !g.InBounds(x1, y1) {
					continue
				}
				if !yield(NewCoordinates(x1, y1)) {
					return
				}
			}
		}
	}
}

func (g *Grid) countStates(match func(Cell) bool) int {
	n := 0
	for _, c := range g.cells {
		if match(c) {
			n++
		}
	}
	return n
}

func (g *Grid) String() string {
	var buffer bytes.Buffer
	tw := tabwriter.NewWriter(&buffer, 2, 0, 1, ' ', 0)

	fmt.Fprint(tw, "\t")
	for x := range g.size {
		fmt.Fprint(tw, strconv.Itoa(x)+"\t")
	}
	fmt.Fprint(tw, "\n")

	for y := range g.size {
		fmt.Fprint(tw, strconv.Itoa(y)+"\t")
		for x := range g.size {
			switch g.Cell(x, y).State {
			case TileTaken:
				fmt.Fprint(tw, "S\t")
			case TileHit:
				fmt.Fprint(tw, "X\t")
			case TileSunk:
				fmt.Fprint(tw, "#\t")
			case TileMissed:
				fmt.Fprint(tw, "o\t")
			default:
				fmt.Fprint(tw, "~\t")
			}
		}
		fmt.Fprint(tw, "\n")
	}
	tw.Flush()
	return buffer.String()
}
