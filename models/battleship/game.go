package battleship

import (
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type MatchStage uint8

const (
	MatchPlacing MatchStage = iota
	MatchShooting
	MatchFinished
)

func (s MatchStage) String() string {
	switch s {
	case MatchShooting:
		return "shooting"
	case MatchFinished:
		return "finished"
	default:
		return "placing"
	}
}

type MatchOption func(*Match)

func WithMatchRand(r *rand.Rand) MatchOption {
	return func(m *Match) {
		m.rng = r
	}
}

func WithMatchUuid(matchUuid string) MatchOption {
	return func(m *Match) {
		m.uuid = matchUuid
	}
}

// Match is a human player against the computer. The player places a fleet
// while the computer's fleet is placed randomly; then both sides shoot.
// A hit or a sunk ship keeps the turn, a miss passes it.
//
// A Match is owned by one session and must not be used concurrently.
type Match struct {
	uuid         string
	size         int
	fleet        []int
	stage        MatchStage
	turn         Side
	winner       Side
	pendingShips []int
	rng          *rand.Rand

	player   fleetSide
	computer fleetSide
	opponent *Opponent
}

func NewMatch(size int, fleet []int, opts ...MatchOption) (*Match, error) {
	if err := ValidateFleet(size, fleet); err != nil {
		return nil, err
	}

	m := &Match{
		size:         size,
		fleet:        slices.Clone(fleet),
		stage:        MatchPlacing,
		turn:         SideNone,
		winner:       SideNone,
		pendingShips: slices.Clone(fleet),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.uuid == "" {
		m.uuid = uuid.NewString()[:6]
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	playerBoard, err := NewPlacementBoard(size, WithRand(m.rng))
	if err != nil {
		return nil, err
	}
	computerBoard, err := NewPlacementBoard(size, WithRand(m.rng))
	if err != nil {
		return nil, err
	}
	if err := computerBoard.PlaceFleetRandomly(m.fleet); err != nil {
		return nil, err
	}

	m.player = fleetSide{setup: playerBoard}
	m.computer = fleetSide{setup: computerBoard}
	return m, nil
}

func (m *Match) Uuid() string {
	return m.uuid
}

func (m *Match) Size() int {
	return m.size
}

func (m *Match) Fleet() []int {
	return slices.Clone(m.fleet)
}

func (m *Match) Stage() MatchStage {
	return m.stage
}

func (m *Match) Turn() Side {
	return m.turn
}

func (m *Match) Winner() Side {
	return m.winner
}

func (m *Match) PendingShips() []int {
	return slices.Clone(m.pendingShips)
}

// PlayerSetup is nil once the match has started.
func (m *Match) PlayerSetup() *PlacementBoard {
	return m.player.setup
}

// PlayerBoard is nil until the match has started.
func (m *Match) PlayerBoard() *ActiveBoard {
	return m.player.active
}

func (m *Match) ComputerBoard() *ActiveBoard {
	return m.computer.active
}

func (m *Match) OnPlayerTileChange(fn TileChangeFunc) {
	m.player.setTileChangeFunc(fn)
}

func (m *Match) OnComputerTileChange(fn TileChangeFunc) {
	m.computer.setTileChangeFunc(fn)
}

func (m *Match) PlayerRemainingFragments() int {
	return m.player.remainingFragments()
}

func (m *Match) ComputerRemainingFragments() int {
	return m.computer.remainingFragments()
}

// WinnerRemainingFragments is how many of the winner's ship cells were
// never hit. Zero while the match is running.
func (m *Match) WinnerRemainingFragments() int {
	switch m.winner {
	case SidePlayer:
		return m.player.remainingFragments()
	case SideComputer:
		return m.computer.remainingFragments()
	default:
		return 0
	}
}

// PlaceShip takes one pending ship of the given length and puts it on the
// player's board, pulled back from the wall if it sticks out.
func (m *Match) PlaceShip(length, x, y int, orientation Orientation) (Placement, error) {
	if m.stage != MatchPlacing {
		return Placement{}, cerr.ErrBoardFinalized
	}

	idx := slices.Index(m.pendingShips, length)
	if idx == -1 {
		return Placement{}, cerr.ErrNoShipPending(length)
	}
	if !orientation.IsValid() {
		return Placement{}, cerr.ErrPlacementRejected(length, x, y)
	}

	p := NewPlacement(NewShip(length), x, y, orientation)
	p.MoveFromWall(m.size)
	if err := m.player.setup.Commit(p); err != nil {
		return Placement{}, err
	}

	m.pendingShips = slices.Delete(m.pendingShips, idx, idx+1)
	return p, nil
}

// PlaceShipsRandomly throws away whatever the player placed and places the
// whole fleet at random.
func (m *Match) PlaceShipsRandomly() ([]Placement, error) {
	if m.stage != MatchPlacing {
		return nil, cerr.ErrBoardFinalized
	}

	m.player.setup.Clear()
	m.pendingShips = slices.Clone(m.fleet)

	if err := m.player.setup.PlaceFleetRandomly(m.fleet); err != nil {
		m.player.setup.Clear()
		return nil, err
	}
	m.pendingShips = m.pendingShips[:0]
	return m.player.setup.Ships(), nil
}

// Start moves both boards into combat. The player shoots first.
func (m *Match) Start() error {
	if m.stage != MatchPlacing {
		return cerr.ErrBoardFinalized
	}
	if len(m.pendingShips) != 0 {
		return cerr.ErrFleetIncomplete
	}

	if err := m.player.finalize(); err != nil {
		return err
	}
	if err := m.computer.finalize(); err != nil {
		return err
	}

	m.opponent = NewOpponent(m.player.active, WithOpponentRand(m.rng))
	m.stage = MatchShooting
	m.turn = SidePlayer

	slog.Debug("match started",
		"match", m.uuid,
		"boardSize", m.size,
		"fleet", m.fleet)
	return nil
}

// PlayerFire shoots at the computer's board.
func (m *Match) PlayerFire(x, y int) (ShotResult, error) {
	if err := m.checkTurn(SidePlayer); err != nil {
		return ShotMissed, err
	}

	result, err := m.computer.active.Fire(x, y)
	if err != nil {
		return ShotMissed, err
	}
	m.afterShot(SidePlayer, result, m.computer.active)
	return result, nil
}

// ComputerShot lets the opponent fire one shot at the player's board.
func (m *Match) ComputerShot() (Shot, error) {
	if err := m.checkTurn(SideComputer); err != nil {
		return Shot{}, err
	}

	shot, err := m.opponent.NextShot()
	if err != nil {
		return Shot{}, err
	}
	m.afterShot(SideComputer, shot.Result, m.player.active)
	return shot, nil
}

func (m *Match) checkTurn(side Side) error {
	if m.stage != MatchShooting {
		return cerr.ErrMatchNotInProgress
	}
	if m.turn != side {
		return cerr.ErrNotYourTurn
	}
	return nil
}

func (m *Match) afterShot(shooter Side, result ShotResult, target *ActiveBoard) {
	if target.IsDefeated() {
		m.stage = MatchFinished
		m.winner = shooter
		m.turn = SideNone

		slog.Debug("match finished",
			"match", m.uuid,
			"winner", shooter,
			"remainingFragments", m.WinnerRemainingFragments())
		return
	}

	if result == ShotMissed {
		m.turn = shooter.Other()
	}
}

// ShotCounts returns how many shots each side fired.
func (m *Match) ShotCounts() (player, computer int) {
	if m.computer.active != nil {
		player = m.computer.active.ShotCount()
	}
	if m.player.active != nil {
		computer = m.player.active.ShotCount()
	}
	return player, computer
}
