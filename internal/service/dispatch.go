package service

import (
	"context"
	"fmt"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/protocol"
	"github.com/serbe/rugo-sub000/internal/registry"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// Handler answers one decoded request with exactly one response.
type Handler interface {
	Handle(ctx context.Context, req protocol.Request, peer string) protocol.Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req protocol.Request, peer string) protocol.Response

func (f HandlerFunc) Handle(ctx context.Context, req protocol.Request, peer string) protocol.Response {
	return f(ctx, req, peer)
}

// Dispatcher routes authenticated commands to the registry or the user service.
// It holds no per-call state.
type Dispatcher struct {
	auth  AuthService
	users UserAdmin
	reg   *registry.Registry
	db    repository.Runner
}

var _ Handler = (*Dispatcher)(nil)

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(auth AuthService, users UserAdmin, reg *registry.Registry, db repository.Runner) *Dispatcher {
	return &Dispatcher{auth: auth, users: users, reg: reg, db: db}
}

// Handle answers an auth check, a login or a command.
func (d *Dispatcher) Handle(ctx context.Context, req protocol.Request, peer string) protocol.Response {
	switch r := req.(type) {
	case *protocol.AuthCheck:
		ok, err := d.auth.CheckAuth(r.Token, r.Role)
		if err != nil {
			return protocol.Failure(protocol.ReplyCheck, "", err)
		}
		return protocol.Success(protocol.ReplyCheck, "", protocol.Tagged("Check", protocol.CheckReply{OK: ok}))

	case *protocol.Login:
		tr, err := d.auth.Login(ctx, r.Name, r.Secret, peer)
		if err != nil {
			return protocol.Failure(protocol.ReplyToken, "", err)
		}
		return protocol.Success(protocol.ReplyToken, "", protocol.Tagged("Token", tr))

	case *protocol.CommandRequest:
		resp := d.command(ctx, r)
		resp.ID = r.ID
		return resp
	}
	return protocol.Failure("", "", fmt.Errorf("%w: unsupported request %T", errs.ErrBadRequest, req))
}

func (d *Dispatcher) command(ctx context.Context, r *protocol.CommandRequest) protocol.Response {
	op, name := r.Command.Op.String(), r.Command.Name()

	_, cmd, err := d.auth.ResolveCommand(r.Token, r.Command)
	if err != nil {
		return protocol.Failure(op, name, err)
	}
	obj, err := d.execute(ctx, cmd)
	if err != nil {
		return protocol.Failure(op, name, err)
	}
	return protocol.Success(op, name, obj)
}

// execute performs exactly one store operation for a permission-cleared command.
func (d *Dispatcher) execute(ctx context.Context, cmd protocol.Command) (any, error) {
	switch cmd.Op {
	case protocol.OpGet:
		if it := cmd.Object.Item; it != nil {
			return d.getItem(ctx, it.Name, it.ID)
		}
		return d.getList(ctx, cmd.Object.List)

	case protocol.OpInsert:
		kind, err := d.reg.Kind(cmd.Payload.Kind)
		if err != nil {
			return nil, err
		}
		var id int64
		err = d.db.Run(ctx, func(q repository.Querier) error {
			id, err = kind.Insert(ctx, q, cmd.Payload.Data)
			return err
		})
		if err != nil {
			return nil, err
		}
		return protocol.Tagged("Id", id), nil

	case protocol.OpUpdate:
		kind, err := d.reg.Kind(cmd.Payload.Kind)
		if err != nil {
			return nil, err
		}
		return d.rows(ctx, func(q repository.Querier) (int64, error) {
			return kind.Update(ctx, q, cmd.Payload.Data)
		})

	case protocol.OpDelete:
		kind, err := d.reg.Kind(cmd.Item.Name)
		if err != nil {
			return nil, err
		}
		return d.rows(ctx, func(q repository.Querier) (int64, error) {
			return kind.Delete(ctx, q, cmd.Item.ID)
		})

	case protocol.OpUser:
		return d.users.Handle(ctx, cmd.User)
	}
	return nil, fmt.Errorf("%w: unknown command %s", errs.ErrBadRequest, cmd.Op)
}

func (d *Dispatcher) getItem(ctx context.Context, name string, id int64) (any, error) {
	kind, err := d.reg.Kind(name)
	if err != nil {
		return nil, err
	}
	var rec any
	err = d.db.Run(ctx, func(q repository.Querier) error {
		rec, err = kind.Get(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return protocol.Tagged(name, rec), nil
}

func (d *Dispatcher) getList(ctx context.Context, name string) (any, error) {
	list, err := d.reg.List(name)
	if err != nil {
		return nil, err
	}
	var rows any
	err = d.db.Run(ctx, func(q repository.Querier) error {
		rows, err = list(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return protocol.Tagged(name, rows), nil
}

func (d *Dispatcher) rows(ctx context.Context, fn func(q repository.Querier) (int64, error)) (any, error) {
	var n int64
	err := d.db.Run(ctx, func(q repository.Querier) error {
		var err error
		n, err = fn(q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return protocol.Tagged("Rows", n), nil
}
