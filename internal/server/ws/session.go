package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/serbe/rugo-sub000/internal/protocol"
	"github.com/serbe/rugo-sub000/internal/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 1 << 20

	outboxSize = 16
)

// Session serves one WebSocket connection. Requests are handled strictly in
// order: a frame's response is written before the next frame is read.
type Session struct {
	id      uint64
	conn    *websocket.Conn
	hub     *Hub
	handler service.Handler
	log     *zap.Logger
	peer    string

	heartbeat time.Duration
	timeout   time.Duration
	now       func() time.Time

	out       chan protocol.Response
	done      chan struct{}
	closeOnce sync.Once
	wmu       sync.Mutex
	lastBeat  atomic.Int64
}

func newSession(conn *websocket.Conn, hub *Hub, h service.Handler, log *zap.Logger, peer string, opts Options) *Session {
	s := &Session{
		conn:      conn,
		hub:       hub,
		handler:   h,
		log:       log,
		peer:      peer,
		heartbeat: opts.HeartbeatInterval,
		timeout:   opts.ClientTimeout,
		now:       time.Now,
		out:       make(chan protocol.Response, outboxSize),
		done:      make(chan struct{}),
	}
	s.beat()
	return s
}

// Serve registers the session, runs it until the peer goes away or misses
// its heartbeat, and deregisters it exactly once.
func (s *Session) Serve(ctx context.Context) {
	id, err := s.hub.Connect(s.out)
	if err != nil {
		s.log.Warn("session rejected", zap.String("peer", s.peer), zap.Error(err))
		_ = s.conn.Close()
		return
	}
	s.id = id
	s.log = s.log.With(zap.Uint64("session", id))
	s.hub.Join(id)

	go s.writePump()
	s.readPump(ctx)
	s.close()
}

// close is the single exit path for both client disconnects and heartbeat timeouts.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.hub.Disconnect(s.id)
		_ = s.conn.Close()
	})
}

func (s *Session) beat() { s.lastBeat.Store(s.now().UnixNano()) }

func (s *Session) sinceBeat() time.Duration {
	return s.now().Sub(time.Unix(0, s.lastBeat.Load()))
}

func (s *Session) readPump(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetPongHandler(func(string) error {
		s.beat()
		return nil
	})
	s.conn.SetPingHandler(func(data string) error {
		s.beat()
		err := s.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil
		}
		return err
	})

	for {
		mt, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read failed", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		if err := s.write(s.respond(ctx, frame)); err != nil {
			s.log.Debug("write failed", zap.Error(err))
			return
		}
	}
}

func (s *Session) respond(ctx context.Context, frame []byte) protocol.Response {
	req, err := protocol.Decode(frame)
	if err != nil {
		s.log.Warn("unrecognized frame", zap.Int("bytes", len(frame)))
		return protocol.Reject(err)
	}
	return s.handler.Handle(ctx, req, s.peer)
}

// writePump delivers hub messages and pings the peer every heartbeat.
func (s *Session) writePump() {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case resp := <-s.out:
			if err := s.write(resp); err != nil {
				s.close()
				return
			}

		case <-ticker.C:
			if s.sinceBeat() > s.timeout {
				s.log.Info("heartbeat timeout", zap.String("peer", s.peer))
				s.close()
				return
			}
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.close()
				return
			}

		case <-s.done:
			return
		}
	}
}

func (s *Session) write(resp protocol.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", zap.String("command", resp.Command), zap.Error(err))
		data, _ = json.Marshal(protocol.Failure(resp.Command, resp.Name, err))
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
