package error

import (
	"errors"
	"fmt"
)

const (
	ConstErrAttackFailed    = "attack operation failed"
	ConstErrPlacementFailed = "ship placement failed"
	ConstErrStartFailed     = "game could not be started"
	ConstErrCreateFailed    = "game could not be created"
)

var (
	ErrInvalidPlacement      = errors.New("invalid ship placement")
	ErrOutOfBounds           = errors.New("coordinates out of grid bound")
	ErrRepeatedShot          = errors.New("position already shot")
	ErrInternalInconsistency = errors.New("internal inconsistency")
	ErrInvalidBoardSize      = errors.New("invalid board size")
	ErrInvalidFleet          = errors.New("invalid fleet")
	ErrFleetDoesNotFit       = errors.New("fleet does not fit on the board")
	ErrBoardFinalized        = errors.New("placement board already finalized")
	ErrBoardDefeated         = errors.New("board has no ship fragments left")
	ErrShipNotPending        = errors.New("no ship of this length left to place")
	ErrFleetIncomplete       = errors.New("not all ships are placed")
	ErrMatchNotInProgress    = errors.New("match is not in the shooting stage")
	ErrNotYourTurn           = errors.New("not this side's turn")
	ErrGameNotExists         = errors.New("game does not exist")
	ErrSessionNotFound       = errors.New("session not found")
)

func ErrGameNotExist(gameUuid string) error {
	return fmt.Errorf("%w, uuid: %s", ErrGameNotExists, gameUuid)
}

func ErrSessionNotExist(sessionId string) error {
	return fmt.Errorf("%w, id: %s", ErrSessionNotFound, sessionId)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d", ErrOutOfBounds, x, y)
}

func ErrPositionAlreadyShot(x, y int) error {
	return fmt.Errorf("%w in previous rounds\tx: %d\ty: %d", ErrRepeatedShot, x, y)
}

func ErrPlacementRejected(length, x, y int) error {
	return fmt.Errorf("%w\tlength: %d\tx: %d\ty: %d", ErrInvalidPlacement, length, x, y)
}

func ErrBoardSizeNotSupported(size int) error {
	return fmt.Errorf("%w: %d", ErrInvalidBoardSize, size)
}

func ErrShipLengthInvalid(length, boardSize int) error {
	return fmt.Errorf("%w: ship length %d on board of size %d", ErrInvalidFleet, length, boardSize)
}

func ErrNoShipPending(length int) error {
	return fmt.Errorf("%w, length: %d", ErrShipNotPending, length)
}

func ErrInconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternalInconsistency, fmt.Sprintf(format, args...))
}
