// Package permission implements the role gate between a session and command execution.
//
// A role is a bitmask. Each command kind requires one bit, counted from the
// least significant end. The table below is the only place that mapping lives.
package permission

import (
	"fmt"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/protocol"
)

// Bit is a permission bit index.
type Bit uint

var required = map[protocol.Op]Bit{
	protocol.OpGet:    1,
	protocol.OpInsert: 2,
	protocol.OpUpdate: 3,
	protocol.OpDelete: 4,
	protocol.OpUser:   5,
}

// Required returns the bit op needs and whether op is known.
func Required(op protocol.Op) (Bit, bool) {
	b, ok := required[op]
	return b, ok
}

// Has reports whether role has bit set.
func Has(role int64, bit Bit) bool {
	if bit >= 63 {
		return false
	}
	return role&(1<<bit) != 0
}

// Allowed reports whether role may run commands of kind op. Unknown kinds are denied.
func Allowed(role int64, op protocol.Op) bool {
	b, ok := required[op]
	return ok && Has(role, b)
}

// Check returns cmd unchanged when role allows its kind, ErrNotPermitted otherwise.
func Check(role int64, cmd protocol.Command) (protocol.Command, error) {
	if !Allowed(role, cmd.Op) {
		return protocol.Command{}, fmt.Errorf("%w: %s", errs.ErrNotPermitted, cmd.Op)
	}
	return cmd, nil
}

// Role builds a bitmask granting every op in ops.
func Role(ops ...protocol.Op) int64 {
	var r int64
	for _, op := range ops {
		if b, ok := required[op]; ok {
			r |= 1 << b
		}
	}
	return r
}
