package connection

import (
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxWsRetries  uint8 = 2
	backOffFactor uint8 = 2
)

type ConnectionHandler interface {
	readFromConn() (int, []byte, error)
	writeToConnWithRetry(msg any) error
	onConnErr(err error) uint8
}

// Session is one websocket connection and when it was opened.
type Session struct {
	id        string
	conn      *websocket.Conn
	createdAt time.Time
}

var _ ConnectionHandler = (*Session)(nil)

func NewSession(id string, conn *websocket.Conn) *Session {
	return &Session{
		id:        id,
		conn:      conn,
		createdAt: time.Now(),
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	return s.conn
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) remoteAddr() string {
	if s.conn == nil {
		return ""
	}
	return s.conn.RemoteAddr().String()
}

func (s *Session) onConnErr(err error) uint8 {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		slog.Warn("timeout error", "session", s.id, "err", err)
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		slog.Warn("high server load/traffic error", "session", s.id, "err", err)
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
		slog.Info("connection closed", "session", s.id, "err", err)
		return ConnLoopBreak
	}

	if websocket.IsCloseError(err, websocket.CloseProtocolError, websocket.CloseInternalServerErr, websocket.CloseTLSHandshake, websocket.CloseMandatoryExtension) {
		slog.Error("critical error", "session", s.id, "err", err)
		return ConnLoopBreak
	}

	// Probably not a client of this app (binary frames, bad utf-8, huge
	// payloads). Not worth keeping around.
	if websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig, websocket.ClosePolicyViolation, websocket.CloseServiceRestart, websocket.CloseNoStatusReceived) {
		slog.Warn("non-critical error", "session", s.id, "err", err)
		return ConnLoopBreak
	}

	slog.Error("unexpected error", "session", s.id, "err", err)
	return ConnLoopBreak
}

// Writes msg as JSON to the connection of that session, retrying with a
// linear backoff on timeouts.
func (s *Session) writeToConnWithRetry(msg any) error {
	var retries uint8

writeJsonLoop:
	for {
		err := s.conn.WriteJSON(msg)
		if err == nil {
			return nil
		}

		switch s.onConnErr(err) {
		case ConnLoopRetry:
			if retries < maxWsRetries {
				retries++
				slog.Warn("writing json to ws failed; retrying", "remoteAddr", s.remoteAddr(), "retry", retries)
				time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
				continue writeJsonLoop
			}
			return NewConnErr(ConnLoopBreak).AddDesc("max retries reached for writing: " + err.Error())

		default:
			return NewConnErr(ConnLoopBreak).AddDesc("breaking writeJsonLoop due to: " + err.Error())
		}
	}
}

// Reads one message from the connection. gorilla keeps the first read
// error and returns it on every later read, so a failed read ends the
// session instead of being retried.
func (s *Session) readFromConn() (int, []byte, error) {
	messageType, payload, err := s.conn.ReadMessage()
	if err != nil {
		s.onConnErr(err)
		return -1, []byte{}, err
	}
	return messageType, payload, nil
}
