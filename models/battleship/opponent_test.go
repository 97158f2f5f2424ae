package battleship

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

func isOrthogonallyAdjacent(a, b Coordinates) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx+dy*dy == 1
}

func newBoardWithShips(t *testing.T, size int, placements ...Placement) *ActiveBoard {
	t.Helper()
	pb := newTestPlacementBoard(t, size, 1)
	for _, p := range placements {
		require.NoError(t, pb.Commit(p))
	}
	ab, err := pb.Finalize()
	require.NoError(t, err)
	return ab
}

func TestOpponentSinksWholeFleet(t *testing.T) {
	for trial := range 200 {
		pb := newTestPlacementBoard(t, 10, uint64(trial))
		require.NoError(t, pb.PlaceFleetRandomly(DefaultFleets[10]))
		ab, err := pb.Finalize()
		require.NoError(t, err)

		o := NewOpponent(ab, WithOpponentRand(rand.New(rand.NewPCG(uint64(trial), 99))))

		var anchor Coordinates
		for shots := 0; !ab.IsDefeated(); shots++ {
			require.Less(t, shots, 100, "opponent must never need more shots than cells")

			before := o.Stage()
			shot, err := o.NextShot()
			require.NoError(t, err, "trial %d\n%s", trial, ab)

			if before == StageDirection {
				require.True(t, isOrthogonallyAdjacent(anchor, shot.Coordinates),
					"probe %v must be next to hit %v", shot.Coordinates, anchor)
			}
			if before == StageRandom && shot.Result == ShotHit {
				anchor = shot.Coordinates
				require.Equal(t, StageDirection, o.Stage())
			}
			if shot.Result == ShotSunk {
				require.Equal(t, StageRandom, o.Stage())
			}
		}

		_, err = o.NextShot()
		require.ErrorIs(t, err, cerr.ErrBoardDefeated)
	}
}

func TestOpponentNeverShootsNextToSunkShip(t *testing.T) {
	for trial := range 100 {
		pb := newTestPlacementBoard(t, 8, uint64(trial))
		require.NoError(t, pb.PlaceFleetRandomly(DefaultFleets[8]))
		ab, err := pb.Finalize()
		require.NoError(t, err)

		o := NewOpponent(ab, WithOpponentRand(rand.New(rand.NewPCG(7, uint64(trial)))))
		for !ab.IsDefeated() {
			shot, err := o.NextShot()
			require.NoError(t, err)
			if shot.Result != ShotSunk {
				// the shot cell was not next to a sunk ship when it was chosen
				for c := range ab.TilesAround(shot.X, shot.Y) {
					require.False(t, ab.Cell(c.X, c.Y).IsSunk(),
						"shot %v landed next to sunk cell %v", shot.Coordinates, c)
				}
			}
		}
	}
}

func TestTooCloseToSunkShip(t *testing.T) {
	ab := newBoardWithShips(t, 5, NewPlacement(NewShip(2), 1, 1, OrientationHorizontal))
	o := NewOpponent(ab)

	_, err := ab.Fire(1, 1)
	require.NoError(t, err)
	assert.False(t, o.TooCloseToSunkShip(0, 0), "hit but not sunk")

	result, err := ab.Fire(2, 1)
	require.NoError(t, err)
	require.Equal(t, ShotSunk, result)

	for _, fragment := range ab.ShipFragments(0) {
		for c := range ab.TilesAround(fragment.X, fragment.Y) {
			assert.True(t, o.TooCloseToSunkShip(c.X, c.Y), "cell %v", c)
			if !ab.Cell(c.X, c.Y).IsSunk() {
				assert.True(t, ab.Cell(c.X, c.Y).IsEmpty(), "cell %v must stay empty", c)
			}
		}
	}
	assert.False(t, o.TooCloseToSunkShip(4, 4))
	assert.False(t, o.TooCloseToSunkShip(4, 1))
}

func TestOpponentProbeLeftThenFollow(t *testing.T) {
	ab := newBoardWithShips(t, 5, NewPlacement(NewShip(3), 1, 2, OrientationHorizontal))
	o := NewOpponent(ab, WithOpponentRand(rand.New(rand.NewPCG(1, 2))))

	shot, err := o.fire(2, 2)
	require.NoError(t, err)
	require.Equal(t, ShotHit, shot.Result)
	require.Equal(t, StageDirection, o.Stage())
	o.stage.cursor = 0

	shot, err = o.NextShot()
	require.NoError(t, err)
	assert.Equal(t, Shot{Coordinates{1, 2}, ShotHit}, shot)
	assert.Equal(t, StageHorizontal, o.Stage())

	shot, err = o.NextShot()
	require.NoError(t, err)
	assert.Equal(t, Shot{Coordinates{3, 2}, ShotSunk}, shot)
	assert.Equal(t, StageRandom, o.Stage())
}

func TestOpponentProbeUpThenSweepBothWays(t *testing.T) {
	ab := newBoardWithShips(t, 5, NewPlacement(NewShip(3), 1, 2, OrientationHorizontal))
	o := NewOpponent(ab, WithOpponentRand(rand.New(rand.NewPCG(1, 2))))

	_, err := o.fire(2, 2)
	require.NoError(t, err)
	o.stage.cursor = 1

	expected := []Shot{
		{Coordinates{2, 1}, ShotMissed},
		{Coordinates{3, 2}, ShotHit},
		{Coordinates{4, 2}, ShotMissed},
		{Coordinates{1, 2}, ShotSunk},
	}
	stages := []StageKind{StageDirection, StageHorizontal, StageHorizontal, StageRandom}

	for i, want := range expected {
		shot, err := o.NextShot()
		require.NoError(t, err)
		assert.Equal(t, want, shot, "shot %d", i)
		assert.Equal(t, stages[i], o.Stage(), "stage after shot %d", i)
	}
}

func TestOpponentVerticalFollow(t *testing.T) {
	ab := newBoardWithShips(t, 6, NewPlacement(NewShip(4), 3, 1, OrientationVertical))
	o := NewOpponent(ab, WithOpponentRand(rand.New(rand.NewPCG(3, 4))))

	_, err := o.fire(3, 3)
	require.NoError(t, err)
	o.stage.cursor = 3

	expected := []Shot{
		{Coordinates{3, 4}, ShotHit},
		{Coordinates{3, 5}, ShotMissed},
		{Coordinates{3, 2}, ShotHit},
		{Coordinates{3, 1}, ShotSunk},
	}
	for i, want := range expected {
		shot, err := o.NextShot()
		require.NoError(t, err)
		assert.Equal(t, want, shot, "shot %d", i)
	}
	assert.True(t, ab.IsDefeated())
}

func TestOpponentProbeSkipsInvalidNeighbours(t *testing.T) {
	// ship in the top-left corner: left and up probes fall off the board
	ab := newBoardWithShips(t, 4, NewPlacement(NewShip(2), 0, 0, OrientationVertical))
	o := NewOpponent(ab)

	_, err := o.fire(0, 0)
	require.NoError(t, err)
	o.stage.cursor = 0

	shot, err := o.NextShot()
	require.NoError(t, err)
	assert.Equal(t, Shot{Coordinates{1, 0}, ShotMissed}, shot)

	shot, err = o.NextShot()
	require.NoError(t, err)
	assert.Equal(t, Shot{Coordinates{0, 1}, ShotSunk}, shot)
	assert.Equal(t, StageRandom, o.Stage())
}

func TestOpponentFollowExhaustionIsFatal(t *testing.T) {
	ab := newBoardWithShips(t, 3, NewPlacement(NewShip(2), 1, 0, OrientationVertical))
	o := NewOpponent(ab)

	_, err := ab.Fire(1, 0)
	require.NoError(t, err)

	// wrong axis on purpose
	o.stage = stage{kind: StageHorizontal, anchor: Coordinates{1, 0}, pos: 1}

	shot, err := o.NextShot()
	require.NoError(t, err)
	assert.Equal(t, Shot{Coordinates{2, 0}, ShotMissed}, shot)

	shot, err = o.NextShot()
	require.NoError(t, err)
	assert.Equal(t, Shot{Coordinates{0, 0}, ShotMissed}, shot)

	_, err = o.NextShot()
	require.ErrorIs(t, err, cerr.ErrInternalInconsistency)
}

func TestOpponentSingleCellShipStaysRandom(t *testing.T) {
	ab := newBoardWithShips(t, 2, NewPlacement(NewShip(1), 1, 1, OrientationHorizontal))
	o := NewOpponent(ab, WithOpponentRand(rand.New(rand.NewPCG(5, 6))))

	for !ab.IsDefeated() {
		shot, err := o.NextShot()
		require.NoError(t, err)
		assert.Equal(t, StageRandom, o.Stage())
		if shot.Result == ShotSunk {
			assert.Equal(t, Coordinates{1, 1}, shot.Coordinates)
		}
	}
}
