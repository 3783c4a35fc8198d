package ws

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/protocol"
	"github.com/serbe/rugo-sub000/internal/service"
)

// Middleware wraps a request handler.
type Middleware func(service.Handler) service.Handler

// Chain applies mws to h so that the first one is outermost.
func Chain(h service.Handler, mws ...Middleware) service.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Logging records one line per request.
func Logging(log *zap.Logger) Middleware {
	return func(next service.Handler) service.Handler {
		return service.HandlerFunc(func(ctx context.Context, req protocol.Request, peer string) protocol.Response {
			start := time.Now()
			resp := next.Handle(ctx, req, peer)

			// metadata only, never payloads or secrets
			log.Info("request",
				zap.String("kind", req.Kind()),
				zap.String("command", resp.Command),
				zap.String("name", resp.Name),
				zap.String("error", resp.Error),
				zap.Duration("dur", time.Since(start)),
				zap.String("peer", peer),
			)
			return resp
		})
	}
}

// Recover turns a handler panic into an internal error response.
func Recover(log *zap.Logger) Middleware {
	return func(next service.Handler) service.Handler {
		return service.HandlerFunc(func(ctx context.Context, req protocol.Request, peer string) (resp protocol.Response) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic",
						zap.Any("reason", r),
						zap.ByteString("stack", debug.Stack()),
						zap.String("kind", req.Kind()),
					)
					resp = internalFailure(req)
				}
			}()
			return next.Handle(ctx, req, peer)
		})
	}
}

// internalFailure echoes the reply kind, name and id the handler would have set.
func internalFailure(req protocol.Request) protocol.Response {
	switch r := req.(type) {
	case *protocol.AuthCheck:
		return protocol.Failure(protocol.ReplyCheck, "", errs.ErrInternal)
	case *protocol.Login:
		return protocol.Failure(protocol.ReplyToken, "", errs.ErrInternal)
	case *protocol.CommandRequest:
		resp := protocol.Failure(r.Command.Op.String(), r.Command.Name(), errs.ErrInternal)
		resp.ID = r.ID
		return resp
	}
	return protocol.Failure("", "", errs.ErrInternal)
}
