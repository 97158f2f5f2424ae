package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/saeidalz13/seabattle/db/sqlc"
	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

const defaultComputerDelay = time.Second

var upgrader = websocket.Upgrader{
	// good average time since this is not a high-latency operation such as video streaming
	HandshakeTimeout: time.Second * 5,

	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type RequestProcessorOption func(*RequestProcessor)

// WithAnalytics enables recording of created games and match results.
func WithAnalytics(analytics *sqlc.AnalyticsManager) RequestProcessorOption {
	return func(rp *RequestProcessor) {
		rp.analytics = analytics
	}
}

// WithComputerDelay sets the pause before every computer shot. Zero
// disables it.
func WithComputerDelay(delay time.Duration) RequestProcessorOption {
	return func(rp *RequestProcessor) {
		if delay >= 0 {
			rp.computerDelay = delay
		}
	}
}

type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      *sqlc.AnalyticsManager
	computerDelay  time.Duration
}

var _ http.Handler = (*RequestProcessor)(nil)

func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	opts ...RequestProcessorOption,
) *RequestProcessor {
	rp := &RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		computerDelay:  defaultComputerDelay,
	}
	for _, opt := range opts {
		opt(rp)
	}
	return rp
}

// ServerIpNet finds the first non-loopback IPv4 network of this machine.
// Analytics rows are keyed by it. Falls back to 127.0.0.1/32.
func ServerIpNet() net.IPNet {
	fallback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		slog.Warn("listing network interfaces failed", "err", err)
		return fallback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			slog.Warn("listing interface addresses failed", "iface", iface.Name, "err", err)
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if ok && ipnet.IP.To4() != nil && !ipnet.IP.IsLoopback() {
				return *ipnet
			}
		}
	}

	slog.Warn("no non-loopback ipv4 address found", "fallback", fallback.String())
	return fallback
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Upgrade writes the http error response itself on failure
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("could not open websocket connection", "remoteAddr", r.RemoteAddr, "err", err)
		return
	}

	slog.Info("a new connection established", "remoteAddr", conn.RemoteAddr().String())
	rp.processSessionRequests(r.Context(), rp.sessionManager.GenerateNewSession(conn))
}

func (rp *RequestProcessor) processSessionRequests(ctx context.Context, session *mc.Session) {
	var (
		sessionMatch *mb.Match
		tc           = &tileChanges{}
		sessionId    = session.Id()
	)

	defer func() {
		if sessionMatch != nil {
			rp.gameManager.TerminateMatch(sessionMatch.Uuid())
		}
		if session.Conn() != nil {
			_ = session.Conn().Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
		slog.Info("session terminated", "session", sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp); err != nil {
		return
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			break sessionLoop
		}

		code, err := mc.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewErrorMessage(mc.CodeSignalAbsent, err, "incoming req payload must contain 'code' field")
			if err := rp.sessionManager.WriteToSessionConn(session, msg); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		switch code {
		// A new game replaces whatever this session was playing
		case mc.CodeCreateGame:
			match, respMsg := NewRequest(payload).HandleCreateGame(rp.gameManager)
			if match != nil {
				if sessionMatch != nil {
					rp.gameManager.TerminateMatch(sessionMatch.Uuid())
				}
				sessionMatch = match
				tc.flush()
				sessionMatch.OnPlayerTileChange(tc.record)
				sessionMatch.OnComputerTileChange(tc.record)
				rp.recordGameCreated(ctx)
			}

			if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
				break sessionLoop
			}

		case mc.CodePlaceShip:
			respMsg := NewRequest(payload).HandlePlaceShip(sessionMatch)
			tc.flush()
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
				break sessionLoop
			}

		case mc.CodePlaceRandom:
			respMsg := NewRequest(payload).HandlePlaceRandom(sessionMatch)
			tc.flush()
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
				break sessionLoop
			}

		case mc.CodeStartGame:
			respMsg := NewRequest(payload).HandleStartGame(sessionMatch)
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
				break sessionLoop
			}

		// The player shoots; after a miss the computer keeps shooting
		// until it misses too or the match is over.
		case mc.CodeAttack:
			respMsg := NewRequest(payload).HandleAttack(sessionMatch, tc)
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
				break sessionLoop
			}
			if respMsg.Error != nil {
				continue sessionLoop
			}

			if err := rp.playComputerTurn(ctx, session, sessionMatch, tc); err != nil {
				slog.Error("computer turn aborted", "session", sessionId, "match", sessionMatch.Uuid(), "err", err)
				break sessionLoop
			}

			if sessionMatch.Stage() == mb.MatchFinished {
				if err := rp.sessionManager.WriteToSessionConn(session, NewEndGameMessage(sessionMatch)); err != nil {
					break sessionLoop
				}
				rp.recordMatchResult(ctx, sessionMatch)
			}

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			if err := rp.sessionManager.WriteToSessionConn(session, respInvalidSignal); err != nil {
				break sessionLoop
			}
		}
	}
}

// playComputerTurn fires computer shots, each after the configured delay,
// for as long as it is the computer's turn.
func (rp *RequestProcessor) playComputerTurn(ctx context.Context, session *mc.Session, match *mb.Match, tc *tileChanges) error {
	for match.Stage() == mb.MatchShooting && match.Turn() == mb.SideComputer {
		if err := rp.waitComputerDelay(ctx); err != nil {
			return err
		}

		respMsg, err := HandleComputerAttack(match, tc)
		if err != nil {
			if errors.Is(err, cerr.ErrInternalInconsistency) {
				respMsg.AddError(err.Error(), cerr.ConstErrAttackFailed)
				_ = rp.sessionManager.WriteToSessionConn(session, respMsg)
			}
			return err
		}

		if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
			return err
		}
	}
	return nil
}

func (rp *RequestProcessor) waitComputerDelay(ctx context.Context) error {
	if rp.computerDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(rp.computerDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Analytics failures never affect the match.
func (rp *RequestProcessor) recordGameCreated(ctx context.Context) {
	if rp.analytics == nil {
		return
	}
	if err := rp.analytics.IncrementGamesCreatedCount(ctx); err != nil {
		slog.Warn("failed to increment games created", "err", err)
	}
}

func (rp *RequestProcessor) recordMatchResult(ctx context.Context, match *mb.Match) {
	if rp.analytics == nil {
		return
	}

	playerShots, computerShots := match.ShotCounts()
	err := rp.analytics.RecordMatchResult(ctx, sqlc.MatchResultParams{
		GameUuid:                 match.Uuid(),
		BoardSize:                match.Size(),
		Winner:                   match.Winner().String(),
		PlayerShots:              playerShots,
		ComputerShots:            computerShots,
		WinnerRemainingFragments: match.WinnerRemainingFragments(),
	})
	if err != nil {
		slog.Warn("failed to record match result", "match", match.Uuid(), "err", err)
	}
}
