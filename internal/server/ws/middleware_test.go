package ws

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/protocol"
	"github.com/serbe/rugo-sub000/internal/service"
)

func TestLogging_Passthrough(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	h := Logging(zap.New(core))(service.HandlerFunc(func(context.Context, protocol.Request, string) protocol.Response {
		return protocol.Failure("Get", "CompanyList", errs.ErrNotPermitted)
	}))

	resp := h.Handle(context.Background(), &protocol.Login{Name: "alice", Secret: "s3cret"}, "10.0.0.1:4000")
	if resp.Error != "not permitted" || resp.Name != "CompanyList" {
		t.Fatalf("resp mismatch: %+v", resp)
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["kind"] != "Token" || fields["error"] != "not permitted" || fields["peer"] != "10.0.0.1:4000" {
		t.Fatalf("fields: %v", fields)
	}
	for _, v := range fields {
		if v == "s3cret" {
			t.Fatalf("secret leaked into log: %v", fields)
		}
	}
}

func TestRecover_CatchesPanic(t *testing.T) {
	t.Parallel()

	h := Recover(zaptest.NewLogger(t))(service.HandlerFunc(func(context.Context, protocol.Request, string) protocol.Response {
		panic("oh no")
	}))

	resp := h.Handle(context.Background(), &protocol.AuthCheck{Token: "t", Role: 2}, "")
	if resp.Error != errs.ErrInternal.Error() || resp.Object != nil {
		t.Fatalf("want internal error envelope, got: %+v", resp)
	}
}

func TestRecover_EchoesCommand(t *testing.T) {
	t.Parallel()

	h := Recover(zaptest.NewLogger(t))(service.HandlerFunc(func(context.Context, protocol.Request, string) protocol.Response {
		panic("oh no")
	}))

	req := &protocol.CommandRequest{
		ID:      7,
		Command: protocol.Command{Op: protocol.OpDelete, Item: protocol.Item{Name: "Company", ID: 3}},
	}
	resp := h.Handle(context.Background(), req, "")
	if resp.ID != 7 || resp.Command != "Delete" || resp.Name != "Company" || resp.Error != errs.ErrInternal.Error() {
		t.Fatalf("want echoed internal error, got: %+v", resp)
	}

	resp = h.Handle(context.Background(), &protocol.Login{Name: "alice"}, "")
	if resp.Command != protocol.ReplyToken || resp.Error != errs.ErrInternal.Error() {
		t.Fatalf("want token reply, got: %+v", resp)
	}
}

func TestChain_LoggingSeesRecoveredPanic(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	h := Chain(service.HandlerFunc(func(context.Context, protocol.Request, string) protocol.Response {
		panic("oh no")
	}), Logging(log), Recover(log))

	req := &protocol.CommandRequest{
		ID:      4,
		Command: protocol.Command{Op: protocol.OpGet, Object: protocol.Object{List: "CompanyList"}},
	}
	h.Handle(context.Background(), req, "10.0.0.1:4000")

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 request line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["command"] != "Get" || fields["name"] != "CompanyList" || fields["error"] != errs.ErrInternal.Error() {
		t.Fatalf("fields: %v", fields)
	}
	if logs.FilterMessage("panic").Len() != 1 {
		t.Fatalf("panic not logged")
	}
}

func TestRecover_NoPanicPassThrough(t *testing.T) {
	t.Parallel()

	h := Recover(zaptest.NewLogger(t))(service.HandlerFunc(func(context.Context, protocol.Request, string) protocol.Response {
		return protocol.Success(protocol.ReplyCheck, "", true)
	}))

	resp := h.Handle(context.Background(), &protocol.AuthCheck{}, "")
	if resp.Error != "" || resp.Object != true {
		t.Fatalf("resp mismatch: %+v", resp)
	}
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) Middleware {
		return func(next service.Handler) service.Handler {
			return service.HandlerFunc(func(ctx context.Context, req protocol.Request, peer string) protocol.Response {
				order = append(order, name)
				return next.Handle(ctx, req, peer)
			})
		}
	}
	h := Chain(service.HandlerFunc(func(context.Context, protocol.Request, string) protocol.Response {
		order = append(order, "handler")
		return protocol.Response{}
	}), mark("outer"), mark("inner"))

	h.Handle(context.Background(), &protocol.AuthCheck{}, "")
	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
		t.Fatalf("order: %v", order)
	}
}
