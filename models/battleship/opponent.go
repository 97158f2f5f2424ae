package battleship

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

// Random picks tried before falling back to a full scan of the board.
const randomShotAttemptsFactor = 4

type StageKind uint8

const (
	StageRandom StageKind = iota
	StageDirection
	StageHorizontal
	StageVertical
)

func (k StageKind) String() string {
	switch k {
	case StageDirection:
		return "direction"
	case StageHorizontal:
		return "horizontal"
	case StageVertical:
		return "vertical"
	default:
		return "random"
	}
}

type Shot struct {
	Coordinates
	Result ShotResult
}

type probe struct {
	dx, dy      int
	orientation Orientation
}

// left, up, right, down
var directionCycle = [4]probe{
	{dx: -1, dy: 0, orientation: OrientationHorizontal},
	{dx: 0, dy: -1, orientation: OrientationVertical},
	{dx: 1, dy: 0, orientation: OrientationHorizontal},
	{dx: 0, dy: 1, orientation: OrientationVertical},
}

// stage is the opponent's current mode. Only the fields of the active
// kind are meaningful.
type stage struct {
	kind   StageKind
	anchor Coordinates

	// direction probe
	cursor           int
	probeOrientation Orientation

	// horizontal/vertical follow
	decreasing bool
	pos        int
}

type OpponentOption func(*Opponent)

func WithOpponentRand(r *rand.Rand) OpponentOption {
	return func(o *Opponent) {
		o.rng = r
	}
}

// Opponent picks the computer's shots against one ActiveBoard.
type Opponent struct {
	board *ActiveBoard
	rng   *rand.Rand
	stage stage
}

func NewOpponent(board *ActiveBoard, opts ...OpponentOption) *Opponent {
	o := &Opponent{
		board: board,
		stage: stage{kind: StageRandom},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

func (o *Opponent) Stage() StageKind {
	return o.stage.kind
}

// NextShot fires exactly one shot at the board and moves the opponent to
// its next stage according to the result.
func (o *Opponent) NextShot() (Shot, error) {
	if o.board.IsDefeated() {
		return Shot{}, cerr.ErrBoardDefeated
	}

	switch o.stage.kind {
	case StageRandom:
		return o.randomShot()
	case StageDirection:
		return o.directionShot()
	case StageHorizontal, StageVertical:
		return o.followShot()
	default:
		return Shot{}, cerr.ErrInconsistent("unknown opponent stage %d", o.stage.kind)
	}
}

// TooCloseToSunkShip reports whether (x, y) or any cell around it is sunk.
// Ships never touch, so such a cell can't hold an unsunk fragment.
func (o *Opponent) TooCloseToSunkShip(x, y int) bool {
	for c := range o.board.TilesAround(x, y) {
		if o.board.Cell(c.X, c.Y).IsSunk() {
			return true
		}
	}
	return false
}

func (o *Opponent) isCandidate(x, y int) bool {
	return o.board.InBounds(x, y) && !o.board.Cell(x, y).IsShot() && !o.TooCloseToSunkShip(x, y)
}

func (o *Opponent) randomShot() (Shot, error) {
	size := o.board.Size()

	for range size * size * randomShotAttemptsFactor {
		x, y := o.rng.IntN(size), o.rng.IntN(size)
		if o.isCandidate(x, y) {
			return o.fire(x, y)
		}
	}

	candidates := make([]Coordinates, 0, size*size)
	for y := range size {
		for x := range size {
			if o.isCandidate(x, y) {
				candidates = append(candidates, NewCoordinates(x, y))
			}
		}
	}
	if len(candidates) == 0 {
		return Shot{}, cerr.ErrInconsistent("no cell left to shoot while %d fragments remain", o.board.RemainingFragments())
	}

	c := candidates[o.rng.IntN(len(candidates))]
	return o.fire(c.X, c.Y)
}

func (o *Opponent) directionShot() (Shot, error) {
	s := &o.stage

	for range len(directionCycle) {
		p := directionCycle[s.cursor]
		s.cursor = (s.cursor + 1) % len(directionCycle)

		x, y := s.anchor.X+p.dx, s.anchor.Y+p.dy
		if !o.isCandidate(x, y) {
			continue
		}
		s.probeOrientation = p.orientation
		return o.fire(x, y)
	}

	return Shot{}, cerr.ErrInconsistent("no neighbour of hit (%d, %d) can be probed", s.anchor.X, s.anchor.Y)
}

func (o *Opponent) followShot() (Shot, error) {
	for {
		c, ok := o.nextFollowCandidate()
		if !ok {
			return Shot{}, cerr.ErrInconsistent("%s follow from (%d, %d) ran out of cells before the ship sank",
				o.stage.kind, o.stage.anchor.X, o.stage.anchor.Y)
		}
		if !o.isCandidate(c.X, c.Y) {
			continue
		}
		return o.fire(c.X, c.Y)
	}
}

// nextFollowCandidate walks from the anchor towards the far edge while the
// cells it passes are hit, then does the same towards the near edge.
func (o *Opponent) nextFollowCandidate() (Coordinates, bool) {
	s := &o.stage
	size := o.board.Size()

	at := func(pos int) Coordinates {
		if s.kind == StageHorizontal {
			return NewCoordinates(pos, s.anchor.Y)
		}
		return NewCoordinates(s.anchor.X, pos)
	}
	isHit := func(pos int) bool {
		c := at(pos)
		return o.board.Cell(c.X, c.Y).IsHit()
	}

	if !s.decreasing {
		if s.pos < size-1 && isHit(s.pos) {
			s.pos++
			return at(s.pos), true
		}
		s.decreasing = true
		s.pos = o.anchorPos()
	}

	if s.pos > 0 && isHit(s.pos) {
		s.pos--
		return at(s.pos), true
	}
	return Coordinates{}, false
}

func (o *Opponent) anchorPos() int {
	if o.stage.kind == StageHorizontal {
		return o.stage.anchor.X
	}
	return o.stage.anchor.Y
}

func (o *Opponent) fire(x, y int) (Shot, error) {
	result, err := o.board.Fire(x, y)
	if err != nil {
		return Shot{}, fmt.Errorf("%w: opponent shot: %w", cerr.ErrInternalInconsistency, err)
	}

	shot := Shot{Coordinates: NewCoordinates(x, y), Result: result}
	o.transition(shot)
	return shot, nil
}

func (o *Opponent) transition(shot Shot) {
	from := o.stage.kind

	switch {
	case shot.Result == ShotSunk:
		o.stage = stage{kind: StageRandom}

	case shot.Result == ShotHit && from == StageRandom:
		o.stage = stage{
			kind:   StageDirection,
			anchor: shot.Coordinates,
			cursor: o.rng.IntN(len(directionCycle)),
		}

	case shot.Result == ShotHit && from == StageDirection:
		kind := StageHorizontal
		if o.stage.probeOrientation == OrientationVertical {
			kind = StageVertical
		}
		anchor := o.stage.anchor
		o.stage = stage{kind: kind, anchor: anchor}
		o.stage.pos = o.anchorPos()
	}

	if from != o.stage.kind {
		slog.Debug("opponent stage changed",
			"from", from,
			"to", o.stage.kind,
			"x", shot.X,
			"y", shot.Y,
			"result", shot.Result)
	}
}
