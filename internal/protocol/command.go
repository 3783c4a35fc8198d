// Package protocol defines the JSON frames exchanged over a session: the three
// inbound shapes, the Command tagged union and the response envelope.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/serbe/rugo-sub000/internal/errs"
)

// Op is a command kind. Its value is the permission bit index it requires.
type Op int

const (
	OpGet Op = iota + 1
	OpInsert
	OpUpdate
	OpDelete
	OpUser
)

var opNames = map[Op]string{
	OpGet:    "Get",
	OpInsert: "Insert",
	OpUpdate: "Update",
	OpDelete: "Delete",
	OpUser:   "User",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

func knownOp(name string) bool {
	for _, n := range opNames {
		if n == name {
			return true
		}
	}
	return false
}

// Item references a single record of a named kind.
type Item struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// UnmarshalJSON requires both name and id.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var p plain
	if err := decodeStrict(data, &p, []string{"name", "id"}); err != nil {
		return err
	}
	*i = Item(p)
	return nil
}

// Object selects either one record or a named list.
type Object struct {
	Item *Item
	List string
}

func (o Object) MarshalJSON() ([]byte, error) {
	if o.Item != nil {
		return json.Marshal(map[string]Item{"Item": *o.Item})
	}
	return json.Marshal(map[string]string{"List": o.List})
}

func (o *Object) UnmarshalJSON(data []byte) error {
	tag, body, err := splitTagged(data)
	if err != nil {
		return err
	}
	switch tag {
	case "Item":
		var it Item
		if err := json.Unmarshal(body, &it); err != nil {
			return err
		}
		*o = Object{Item: &it}
	case "List":
		var name string
		if err := json.Unmarshal(body, &name); err != nil {
			return err
		}
		*o = Object{List: name}
	default:
		return fmt.Errorf("%w: unknown object %q", errs.ErrBadRequest, tag)
	}
	return nil
}

// Payload is a record tagged with its kind name. Data is decoded by the kind
// that Kind names.
type Payload struct {
	Kind string
	Data json.RawMessage
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]json.RawMessage{p.Kind: p.Data})
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	tag, body, err := splitTagged(data)
	if err != nil {
		return err
	}
	if !isObject(body) {
		return fmt.Errorf("%w: payload %q is not a record", errs.ErrBadRequest, tag)
	}
	*p = Payload{Kind: tag, Data: body}
	return nil
}

// UserOp is a user administration subcommand.
type UserOp string

const (
	UserGet     UserOp = "Get"
	UserGetList UserOp = "GetList"
	UserInsert  UserOp = "Insert"
	UserUpdate  UserOp = "Update"
	UserDelete  UserOp = "Delete"
)

// UserCommand carries an id for Get/Delete and a record for Insert/Update.
type UserCommand struct {
	Op   UserOp
	ID   int64
	Data json.RawMessage
}

func (u UserCommand) MarshalJSON() ([]byte, error) {
	switch u.Op {
	case UserGetList:
		return json.Marshal(string(u.Op))
	case UserGet, UserDelete:
		return json.Marshal(map[string]int64{string(u.Op): u.ID})
	default:
		return json.Marshal(map[string]json.RawMessage{string(u.Op): u.Data})
	}
}

func (u *UserCommand) UnmarshalJSON(data []byte) error {
	tag, body, err := splitTagged(data)
	if err != nil {
		return err
	}
	op := UserOp(tag)
	switch op {
	case UserGetList:
		if body != nil {
			return fmt.Errorf("%w: GetList takes no argument", errs.ErrBadRequest)
		}
		*u = UserCommand{Op: op}
	case UserGet, UserDelete:
		var id int64
		if err := json.Unmarshal(body, &id); err != nil {
			return err
		}
		*u = UserCommand{Op: op, ID: id}
	case UserInsert, UserUpdate:
		if !isObject(body) {
			return fmt.Errorf("%w: %s needs a user record", errs.ErrBadRequest, op)
		}
		*u = UserCommand{Op: op, Data: body}
	default:
		return fmt.Errorf("%w: unknown user command %q", errs.ErrBadRequest, tag)
	}
	return nil
}

// Command is the tagged union Get | Insert | Update | Delete | User.
// Only the field matching Op is meaningful.
type Command struct {
	Op      Op
	Object  Object
	Payload Payload
	Item    Item
	User    UserCommand
}

// Name returns the entity, list or subcommand name the command addresses.
func (c Command) Name() string {
	switch c.Op {
	case OpGet:
		if c.Object.Item != nil {
			return c.Object.Item.Name
		}
		return c.Object.List
	case OpInsert, OpUpdate:
		return c.Payload.Kind
	case OpDelete:
		return c.Item.Name
	case OpUser:
		return string(c.User.Op)
	}
	return ""
}

func (c Command) MarshalJSON() ([]byte, error) {
	var body any
	switch c.Op {
	case OpGet:
		body = c.Object
	case OpInsert, OpUpdate:
		body = c.Payload
	case OpDelete:
		body = c.Item
	case OpUser:
		body = c.User
	default:
		return nil, fmt.Errorf("%w: unknown command %s", errs.ErrBadRequest, c.Op)
	}
	return json.Marshal(map[string]any{c.Op.String(): body})
}

func (c *Command) UnmarshalJSON(data []byte) error {
	tag, body, err := splitTagged(data)
	if err != nil {
		return err
	}
	if body == nil {
		return fmt.Errorf("%w: command %q has no body", errs.ErrBadRequest, tag)
	}
	var out Command
	switch tag {
	case "Get":
		out.Op = OpGet
		err = json.Unmarshal(body, &out.Object)
	case "Insert":
		out.Op = OpInsert
		err = json.Unmarshal(body, &out.Payload)
	case "Update":
		out.Op = OpUpdate
		err = json.Unmarshal(body, &out.Payload)
	case "Delete":
		out.Op = OpDelete
		err = json.Unmarshal(body, &out.Item)
	case "User":
		out.Op = OpUser
		err = json.Unmarshal(body, &out.User)
	default:
		return fmt.Errorf("%w: unknown command %q", errs.ErrBadRequest, tag)
	}
	if err != nil {
		return err
	}
	*c = out
	return nil
}
