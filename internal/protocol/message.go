package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/serbe/rugo-sub000/internal/errs"
)

// Request is one decoded inbound frame: *AuthCheck, *CommandRequest or *Login.
type Request interface {
	// Kind names the frame shape for logging.
	Kind() string
}

// AuthCheck asks whether token t is still valid for role r.
type AuthCheck struct {
	Token string `json:"t"`
	Role  int64  `json:"r"`
}

// CommandRequest carries a Command authorized by the token in Addon.
type CommandRequest struct {
	ID      int64   `json:"id,omitempty"`
	Command Command `json:"command"`
	Token   string  `json:"addon"`
}

// Login exchanges a user name and secret for a token.
type Login struct {
	Name   string `json:"u"`
	Secret string `json:"p"`
}

func (*AuthCheck) Kind() string      { return "Check" }
func (*CommandRequest) Kind() string { return "Command" }
func (*Login) Kind() string          { return "Token" }

// Decode tries the inbound shapes in priority order: auth check, command, login.
// The first shape that decodes strictly wins. A frame carrying the command
// envelope keys whose body does not decode fails with *RejectedCommand.
func Decode(frame []byte) (Request, error) {
	var ac AuthCheck
	if err := decodeStrict(frame, &ac, []string{"t", "r"}); err == nil {
		return &ac, nil
	}
	var cr CommandRequest
	err := decodeStrict(frame, &cr, []string{"command", "addon"}, "id")
	if err == nil {
		return &cr, nil
	}
	if rc, ok := rejectCommand(frame, err); ok {
		return nil, rc
	}
	var lg Login
	if err := decodeStrict(frame, &lg, []string{"u", "p"}); err == nil {
		return &lg, nil
	}
	return nil, fmt.Errorf("%w: unrecognized message", errs.ErrBadRequest)
}

// RejectedCommand is a command envelope with an undecodable body.
// Op is the command tag when it names a known command kind.
type RejectedCommand struct {
	ID  int64
	Op  string
	Err error
}

func (e *RejectedCommand) Error() string { return e.Err.Error() }
func (e *RejectedCommand) Unwrap() error { return e.Err }

func rejectCommand(frame []byte, err error) (*RejectedCommand, bool) {
	var keys map[string]json.RawMessage
	if json.Unmarshal(frame, &keys) != nil {
		return nil, false
	}
	body, hasCommand := keys["command"]
	if _, hasAddon := keys["addon"]; !hasCommand || !hasAddon {
		return nil, false
	}

	rc := &RejectedCommand{Err: err}
	if !errors.Is(err, errs.ErrBadRequest) {
		rc.Err = fmt.Errorf("%w: %v", errs.ErrBadRequest, err)
	}
	if id, ok := keys["id"]; ok {
		_ = json.Unmarshal(id, &rc.ID)
	}
	if tag, _, terr := splitTagged(body); terr == nil && knownOp(tag) {
		rc.Op = tag
	}
	return rc, true
}

// Response commands that are not command kinds.
const (
	ReplyToken = "Token"
	ReplyCheck = "Check"
	ReplyJoin  = "Join"
)

// Response is the uniform outbound envelope. Object is null on failure.
type Response struct {
	ID      int64  `json:"id,omitempty"`
	Command string `json:"command"`
	Name    string `json:"name"`
	Object  any    `json:"object"`
	Error   string `json:"error"`
}

// TokenReply is the login result.
type TokenReply struct {
	Token string `json:"t"`
	Role  int64  `json:"r"`
}

// CheckReply is the auth check result.
type CheckReply struct {
	OK bool `json:"r"`
}

// Tagged wraps v as a single-variant object {variant: v}.
func Tagged(variant string, v any) map[string]any {
	return map[string]any{variant: v}
}

// Success builds an envelope carrying object.
func Success(command, name string, object any) Response {
	return Response{Command: command, Name: name, Object: object}
}

// Failure builds an envelope carrying err and a null object.
func Failure(command, name string, err error) Response {
	return Response{Command: command, Name: name, Error: err.Error()}
}

// Joined is the acknowledgment a session receives once registered.
func Joined(sessionID uint64) Response {
	return Success(ReplyJoin, "", Tagged("Session", sessionID))
}

// Reject builds the failure envelope for a frame Decode refused. A rejected
// command keeps its kind and request id.
func Reject(err error) Response {
	var rc *RejectedCommand
	if errors.As(err, &rc) {
		resp := Failure(rc.Op, "", rc)
		resp.ID = rc.ID
		return resp
	}
	return Failure("", "", err)
}
