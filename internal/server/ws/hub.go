// Package ws serves the WebSocket protocol: one Session per connection and a
// single Hub goroutine owning the session map.
package ws

import (
	"errors"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"github.com/serbe/rugo-sub000/internal/protocol"
)

// ErrHubStopped is returned by Connect once the hub has stopped.
var ErrHubStopped = errors.New("hub stopped")

type connectReq struct {
	out   chan<- protocol.Response
	reply chan uint64
}

type delivery struct {
	id   uint64
	resp protocol.Response
}

// Hub is the session registry. Its map is touched only by the Run goroutine;
// every other method posts a message to it.
type Hub struct {
	log *zap.Logger

	connect    chan connectReq
	disconnect chan uint64
	send       chan delivery
	count      chan chan int

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	sessions map[uint64]chan<- protocol.Response
	newID    func() uint64
}

// maxSessionID bounds session ids to integers a JSON client decodes exactly.
const maxSessionID = 1 << 53

// NewHub creates a hub. Call Run to start it.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:        log,
		connect:    make(chan connectReq),
		disconnect: make(chan uint64, 64),
		send:       make(chan delivery, 256),
		count:      make(chan chan int),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		sessions:   make(map[uint64]chan<- protocol.Response),
		newID:      func() uint64 { return rand.Uint64N(maxSessionID) },
	}
}

// Run owns the session map until Stop is called.
func (h *Hub) Run() {
	h.log.Info("hub started")
	defer func() {
		h.log.Info("hub stopped", zap.Int("sessions", len(h.sessions)))
		close(h.done)
	}()

	for {
		select {
		case req := <-h.connect:
			id := h.allocate()
			h.sessions[id] = req.out
			h.log.Debug("session registered", zap.Uint64("session", id))
			req.reply <- id

		case id := <-h.disconnect:
			if _, ok := h.sessions[id]; ok {
				delete(h.sessions, id)
				h.log.Debug("session removed", zap.Uint64("session", id))
			}

		case d := <-h.send:
			out, ok := h.sessions[d.id]
			if !ok {
				continue
			}
			select {
			case out <- d.resp:
			default:
				h.log.Warn("session outbox full", zap.Uint64("session", d.id))
			}

		case reply := <-h.count:
			reply <- len(h.sessions)

		case <-h.quit:
			return
		}
	}
}

// allocate draws random ids until one is free. Zero is reserved.
func (h *Hub) allocate() uint64 {
	for {
		id := h.newID()
		if _, taken := h.sessions[id]; !taken && id != 0 {
			return id
		}
	}
}

// Stop terminates Run and waits for it to return. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	<-h.done
}

// Connect registers out as a session outbox and returns the new session id.
func (h *Hub) Connect(out chan<- protocol.Response) (uint64, error) {
	req := connectReq{out: out, reply: make(chan uint64, 1)}
	select {
	case h.connect <- req:
	case <-h.quit:
		return 0, ErrHubStopped
	}
	select {
	case id := <-req.reply:
		return id, nil
	case <-h.quit:
		return 0, ErrHubStopped
	}
}

// Disconnect removes id. Unknown ids are ignored.
func (h *Hub) Disconnect(id uint64) {
	select {
	case h.disconnect <- id:
	case <-h.quit:
	}
}

// Send delivers resp to session id if it is still registered and its outbox
// has room. Otherwise resp is dropped.
func (h *Hub) Send(id uint64, resp protocol.Response) {
	select {
	case h.send <- delivery{id: id, resp: resp}:
	case <-h.quit:
	}
}

// Join acknowledges that session id has joined the shared context.
func (h *Hub) Join(id uint64) {
	h.Send(id, protocol.Joined(id))
}

// Count returns the number of registered sessions, or 0 once stopped.
func (h *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-h.quit:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-h.quit:
		return 0
	}
}
