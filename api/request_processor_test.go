package api

import (
	"context"
	"net"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saeidalz13/seabattle/db/sqlc"
	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

var testDialer = websocket.Dialer{
	HandshakeTimeout: 5 * time.Second,
}

type testServer struct {
	conn      *websocket.Conn
	sessionId string
	bsm       *mc.BattleshipSessionManager
	bgm       *mb.BattleshipGameManager
}

func newTestServer(t *testing.T, opts ...RequestProcessorOption) *testServer {
	t.Helper()

	bsm := mc.NewBattleshipSessionManager()
	bgm := mb.NewBattleshipGameManager(nil)
	opts = append([]RequestProcessorOption{WithComputerDelay(0)}, opts...)

	srv := httptest.NewServer(NewRequestProcessor(bsm, bgm, opts...))
	t.Cleanup(srv.Close)

	conn, _, err := testDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var respSessionId mc.Message[mc.RespSessionId]
	require.NoError(t, conn.ReadJSON(&respSessionId))
	require.Equal(t, mc.CodeSessionID, respSessionId.Code)
	require.NotEmpty(t, respSessionId.Payload.SessionID)

	return &testServer{
		conn:      conn,
		sessionId: respSessionId.Payload.SessionID,
		bsm:       bsm,
		bgm:       bgm,
	}
}

func sendAndRead[T any](t *testing.T, conn *websocket.Conn, req any) mc.Message[T] {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))

	var resp mc.Message[T]
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func createGame(t *testing.T, conn *websocket.Conn, boardSize int) mc.Message[mc.RespCreateGame] {
	t.Helper()
	return sendAndRead[mc.RespCreateGame](t, conn, mc.Message[mc.ReqCreateGame]{
		Code:    mc.CodeCreateGame,
		Payload: mc.ReqCreateGame{BoardSize: boardSize},
	})
}

// playToTheEnd attacks every cell in order and follows the computer's
// turns until an end game message arrives.
func playToTheEnd(t *testing.T, conn *websocket.Conn, boardSize int) mc.RespEndGame {
	t.Helper()

	for next := 0; next < boardSize*boardSize; next++ {
		x, y := next%boardSize, next/boardSize
		resp := sendAndRead[mc.RespAttack](t, conn, mc.Message[mc.ReqAttack]{
			Code:    mc.CodeAttack,
			Payload: mc.ReqAttack{X: x, Y: y},
		})
		require.Equal(t, mc.CodeAttack, resp.Code)
		require.Nil(t, resp.Error)
		require.Equal(t, x, resp.Payload.X)
		require.Equal(t, y, resp.Payload.Y)
		require.NotEmpty(t, resp.Payload.Changes)

		gameOver := resp.Payload.RemainingFragments == 0
		if resp.Payload.Result == mb.ShotMissed {
			require.False(t, resp.Payload.IsTurn)
		}

		for !gameOver && !resp.Payload.IsTurn {
			var computer mc.Message[mc.RespAttack]
			require.NoError(t, conn.ReadJSON(&computer))
			require.Equal(t, mc.CodeComputerAttack, computer.Code)
			require.Nil(t, computer.Error)

			resp = computer
			gameOver = computer.Payload.RemainingFragments == 0
		}

		if gameOver {
			var end mc.Message[mc.RespEndGame]
			require.NoError(t, conn.ReadJSON(&end))
			require.Equal(t, mc.CodeEndGame, end.Code)
			return end.Payload
		}
	}

	require.FailNow(t, "the computer board survived every cell being shot")
	return mc.RespEndGame{}
}

func TestInvalidSignals(t *testing.T) {
	ts := newTestServer(t)

	resp := sendAndRead[mc.NoPayload](t, ts.conn, mc.NewSignal(255))
	assert.Equal(t, mc.CodeInvalidSignal, resp.Code)
	assert.NotNil(t, resp.Error)

	resp = sendAndRead[mc.NoPayload](t, ts.conn, map[string]any{"payload": map[string]int{"x": 1}})
	assert.Equal(t, mc.CodeSignalAbsent, resp.Code)
	assert.NotNil(t, resp.Error)

	attack := sendAndRead[mc.RespAttack](t, ts.conn, mc.Message[mc.ReqAttack]{Code: mc.CodeAttack})
	assert.Equal(t, mc.CodeAttack, attack.Code)
	require.NotNil(t, attack.Error)
	assert.Equal(t, cerr.ConstErrAttackFailed, attack.Error.Message)
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)

	resp := createGame(t, ts.conn, 11)
	require.NotNil(t, resp.Error)
	assert.Equal(t, cerr.ConstErrCreateFailed, resp.Error.Message)
	assert.Zero(t, ts.bgm.MatchCount())

	resp = createGame(t, ts.conn, 4)
	require.Nil(t, resp.Error)
	assert.Equal(t, 4, resp.Payload.BoardSize)
	assert.Equal(t, []int{3, 1}, resp.Payload.Fleet)

	match, err := ts.bgm.GetMatch(resp.Payload.GameUuid)
	require.NoError(t, err)
	assert.Equal(t, mb.MatchPlacing, match.Stage())

	again := createGame(t, ts.conn, 6)
	require.Nil(t, again.Error)
	assert.Equal(t, 1, ts.bgm.MatchCount(), "a new game replaces the previous one")
	_, err = ts.bgm.GetMatch(resp.Payload.GameUuid)
	require.ErrorIs(t, err, cerr.ErrGameNotExists)
}

func TestPlacementFlow(t *testing.T) {
	ts := newTestServer(t)
	require.Nil(t, createGame(t, ts.conn, 4).Error)

	placed := sendAndRead[mc.RespPlaceShip](t, ts.conn, mc.Message[mc.ReqPlaceShip]{
		Code:    mc.CodePlaceShip,
		Payload: mc.ReqPlaceShip{Length: 3, X: 3, Y: 0, Orientation: mb.OrientationHorizontal},
	})
	require.Nil(t, placed.Error)
	assert.Equal(t, mc.RespShip{Length: 3, X: 1, Y: 0, Orientation: mb.OrientationHorizontal}, placed.Payload.Ship)
	assert.Equal(t, []int{1}, placed.Payload.PendingShips)

	touching := sendAndRead[mc.RespPlaceShip](t, ts.conn, mc.Message[mc.ReqPlaceShip]{
		Code:    mc.CodePlaceShip,
		Payload: mc.ReqPlaceShip{Length: 1, X: 0, Y: 1, Orientation: mb.OrientationVertical},
	})
	require.NotNil(t, touching.Error)
	assert.Equal(t, cerr.ConstErrPlacementFailed, touching.Error.Message)

	start := sendAndRead[mc.NoPayload](t, ts.conn, mc.NewSignal(mc.CodeStartGame))
	require.NotNil(t, start.Error)
	assert.Equal(t, cerr.ConstErrStartFailed, start.Error.Message)

	random := sendAndRead[mc.RespPlaceRandom](t, ts.conn, mc.NewSignal(mc.CodePlaceRandom))
	require.Nil(t, random.Error)
	require.Len(t, random.Payload.Ships, 2)

	start = sendAndRead[mc.NoPayload](t, ts.conn, mc.NewSignal(mc.CodeStartGame))
	require.Nil(t, start.Error)
	assert.Equal(t, mc.CodeStartGame, start.Code)

	again := sendAndRead[mc.RespPlaceRandom](t, ts.conn, mc.NewSignal(mc.CodePlaceRandom))
	require.NotNil(t, again.Error)
}

func TestFullGame(t *testing.T) {
	for _, boardSize := range []int{2, 4, 6} {
		ts := newTestServer(t)
		require.Nil(t, createGame(t, ts.conn, boardSize).Error)
		require.Nil(t, sendAndRead[mc.RespPlaceRandom](t, ts.conn, mc.NewSignal(mc.CodePlaceRandom)).Error)
		require.Nil(t, sendAndRead[mc.NoPayload](t, ts.conn, mc.NewSignal(mc.CodeStartGame)).Error)

		end := playToTheEnd(t, ts.conn, boardSize)
		assert.Contains(t, []mb.Side{mb.SidePlayer, mb.SideComputer}, end.Winner)
		assert.Positive(t, end.RemainingFragments)

		after := sendAndRead[mc.RespAttack](t, ts.conn, mc.Message[mc.ReqAttack]{Code: mc.CodeAttack})
		require.NotNil(t, after.Error)
		assert.Contains(t, after.Error.ErrorDetails, cerr.ErrMatchNotInProgress.Error())
	}
}

func TestRepeatedAttackIsRejected(t *testing.T) {
	ts := newTestServer(t)
	require.Nil(t, createGame(t, ts.conn, 10).Error)
	require.Nil(t, sendAndRead[mc.RespPlaceRandom](t, ts.conn, mc.NewSignal(mc.CodePlaceRandom)).Error)
	require.Nil(t, sendAndRead[mc.NoPayload](t, ts.conn, mc.NewSignal(mc.CodeStartGame)).Error)

	req := mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{X: 4, Y: 4}}
	first := sendAndRead[mc.RespAttack](t, ts.conn, req)
	require.Nil(t, first.Error)

	// wait for the computer to hand the turn back
	turn := first
	for !turn.Payload.IsTurn {
		require.NoError(t, ts.conn.ReadJSON(&turn))
		require.Equal(t, mc.CodeComputerAttack, turn.Code)
		require.Positive(t, turn.Payload.RemainingFragments)
	}

	second := sendAndRead[mc.RespAttack](t, ts.conn, req)
	require.NotNil(t, second.Error)
	assert.Equal(t, mc.CodeAttack, second.Code)
	assert.Contains(t, second.Error.ErrorDetails, cerr.ErrRepeatedShot.Error())
}

func TestAnalyticsAreRecorded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ipnet := net.IPNet{IP: net.IPv4(10, 1, 2, 3), Mask: net.CIDRMask(16, 32)}
	analytics := sqlc.NewAnalyticsManager(sqlc.New(db), ipnet)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO game_server_analytics`)).
		WithArgs(analytics.ServerIp()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO match_results`)).
		WithArgs(sqlmock.AnyArg(), analytics.ServerIp(), int16(4), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ts := newTestServer(t, WithAnalytics(analytics))
	require.Nil(t, createGame(t, ts.conn, 4).Error)
	require.Nil(t, sendAndRead[mc.RespPlaceRandom](t, ts.conn, mc.NewSignal(mc.CodePlaceRandom)).Error)
	require.Nil(t, sendAndRead[mc.NoPayload](t, ts.conn, mc.NewSignal(mc.CodeStartGame)).Error)
	playToTheEnd(t, ts.conn, 4)

	require.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 10*time.Millisecond)
}

func TestClosingConnectionEndsSession(t *testing.T) {
	ts := newTestServer(t)
	require.Nil(t, createGame(t, ts.conn, 6).Error)
	require.Equal(t, 1, ts.bsm.SessionCount())
	require.Equal(t, 1, ts.bgm.MatchCount())

	require.NoError(t, ts.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))

	require.Eventually(t, func() bool {
		return ts.bsm.SessionCount() == 0 && ts.bgm.MatchCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestWaitComputerDelay(t *testing.T) {
	rp := NewRequestProcessor(nil, nil, WithComputerDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	require.ErrorIs(t, rp.waitComputerDelay(ctx), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	rp = NewRequestProcessor(nil, nil, WithComputerDelay(0))
	require.NoError(t, rp.waitComputerDelay(context.Background()))
}
