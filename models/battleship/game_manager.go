package battleship

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type GameManager interface {
	CreateMatch(boardSize int) (*Match, error)
	GetMatch(matchUuid string) (*Match, error)
	TerminateMatch(matchUuid string)
	MatchCount() int
	Fleet(boardSize int) ([]int, error)

	isBoardSizeValid(boardSize int) bool
}

type BattleshipGameManager struct {
	fleets map[int][]int
	games  map[string]*Match
	mu     sync.RWMutex
}

var _ GameManager = (*BattleshipGameManager)(nil)

// NewBattleshipGameManager uses DefaultFleets when fleets is empty.
func NewBattleshipGameManager(fleets map[int][]int) *BattleshipGameManager {
	if len(fleets) == 0 {
		fleets = DefaultFleets
	}

	return &BattleshipGameManager{
		fleets: CopyFleets(fleets),
		games:  make(map[string]*Match, 10),
	}
}

func (bgm *BattleshipGameManager) CreateMatch(boardSize int) (*Match, error) {
	fleet, err := bgm.Fleet(boardSize)
	if err != nil {
		return nil, err
	}

	bgm.mu.Lock()
	match, err := NewMatch(boardSize, fleet, WithMatchUuid(bgm.newUuid()))
	if err == nil {
		bgm.games[match.Uuid()] = match
	}
	bgm.mu.Unlock()
	if err != nil {
		return nil, err
	}

	slog.Info("match created", "match", match.Uuid(), "boardSize", boardSize)
	return match, nil
}

// newUuid returns a short id that is not used by a running match yet.
// bgm.mu must be held for writing until the match is stored.
func (bgm *BattleshipGameManager) newUuid() string {
	for {
		matchUuid := uuid.NewString()[:6]
		if _, prs := bgm.games[matchUuid]; !prs {
			return matchUuid
		}
	}
}

func (bgm *BattleshipGameManager) GetMatch(matchUuid string) (*Match, error) {
	bgm.mu.RLock()
	match, prs := bgm.games[matchUuid]
	bgm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrGameNotExist(matchUuid)
	}

	return match, nil
}

func (bgm *BattleshipGameManager) TerminateMatch(matchUuid string) {
	bgm.mu.Lock()
	delete(bgm.games, matchUuid)
	bgm.mu.Unlock()
}

func (bgm *BattleshipGameManager) MatchCount() int {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()
	return len(bgm.games)
}

func (bgm *BattleshipGameManager) Fleet(boardSize int) ([]int, error) {
	if !bgm.isBoardSizeValid(boardSize) {
		return nil, cerr.ErrBoardSizeNotSupported(boardSize)
	}
	return slices.Clone(bgm.fleets[boardSize]), nil
}

func (bgm *BattleshipGameManager) isBoardSizeValid(boardSize int) bool {
	_, prs := bgm.fleets[boardSize]
	return prs
}
