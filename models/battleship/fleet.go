package battleship

import (
	"maps"
	"slices"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

// DefaultFleets maps a board size to the ship lengths each side places.
var DefaultFleets = map[int][]int{
	2:  {1},
	3:  {2},
	4:  {3, 1},
	5:  {4, 2},
	6:  {3, 2, 2, 1},
	7:  {3, 3, 2, 2, 1},
	8:  {3, 3, 2, 2, 2, 1},
	9:  {3, 3, 2, 2, 2, 1, 1, 1},
	10: {4, 3, 3, 2, 2, 2, 1, 1, 1, 1},
}

// CopyFleets returns a deep copy so callers can't mutate DefaultFleets.
func CopyFleets(fleets map[int][]int) map[int][]int {
	out := make(map[int][]int, len(fleets))
	for size, fleet := range fleets {
		out[size] = slices.Clone(fleet)
	}
	return out
}

func SupportedBoardSizes(fleets map[int][]int) []int {
	return slices.Sorted(maps.Keys(fleets))
}

func ValidateFleet(boardSize int, fleet []int) error {
	if boardSize < 1 {
		return cerr.ErrBoardSizeNotSupported(boardSize)
	}
	if len(fleet) == 0 {
		return cerr.ErrInvalidFleet
	}
	for _, length := range fleet {
		if length < 1 || length > boardSize {
			return cerr.ErrShipLengthInvalid(length, boardSize)
		}
	}
	return nil
}

func FleetTotalFragments(fleet []int) int {
	total := 0
	for _, length := range fleet {
		total += length
	}
	return total
}
