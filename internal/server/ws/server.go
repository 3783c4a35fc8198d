package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/serbe/rugo-sub000/internal/service"
)

// Options tunes session liveness.
type Options struct {
	// HeartbeatInterval is the ping period. It must be shorter than ClientTimeout.
	HeartbeatInterval time.Duration
	// ClientTimeout closes a session whose peer has been silent this long.
	ClientTimeout time.Duration
	// CheckOrigin overrides the upgrader origin check. Nil allows every origin.
	CheckOrigin func(r *http.Request) bool
	// TrustProxy takes the peer address from X-Forwarded-For or X-Real-IP.
	// Off, the peer is always the TCP remote address.
	TrustProxy bool
}

func (o Options) withDefaults() Options {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 5 * time.Second
	}
	if o.ClientTimeout <= 0 {
		o.ClientTimeout = 10 * time.Second
	}
	if o.CheckOrigin == nil {
		o.CheckOrigin = func(*http.Request) bool { return true }
	}
	return o
}

// Server upgrades HTTP connections to sessions.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	hub        *Hub
	handler    service.Handler
	log        *zap.Logger
	opts       Options
	upgrader   websocket.Upgrader
}

// NewServer wires the router. The hub must be running before connections arrive.
func NewServer(addr string, hub *Hub, h service.Handler, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	s := &Server{
		hub:     hub,
		handler: h,
		log:     log,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.healthz)
	r.Get("/ws", s.serveWS)
	s.router = r

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until the listener fails or Shutdown is called.
// Shutdown is not reported as an error.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections. Open sessions end with the process.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.hub.Count(),
	})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("upgrade failed", zap.String("peer", r.RemoteAddr), zap.Error(err))
		return
	}
	log := s.log.With(zap.String("request_id", middleware.GetReqID(r.Context())))
	newSession(conn, s.hub, s.handler, log, r.RemoteAddr, s.opts).Serve(r.Context())
}
