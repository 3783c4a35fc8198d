package permission

import (
	"errors"
	"testing"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/protocol"
)

var allOps = []protocol.Op{protocol.OpGet, protocol.OpInsert, protocol.OpUpdate, protocol.OpDelete, protocol.OpUser}

func TestAllowed_BitTable(t *testing.T) {
	t.Parallel()

	for role := int64(0); role < 1<<7; role++ {
		for _, op := range allOps {
			bit, ok := Required(op)
			if !ok {
				t.Fatalf("op %s has no bit", op)
			}
			want := role&(1<<bit) != 0
			if got := Allowed(role, op); got != want {
				t.Fatalf("Allowed(%b, %s)=%v want %v", role, op, got, want)
			}
			if Allowed(role, op) != Allowed(role, op) {
				t.Fatalf("non-deterministic for %b %s", role, op)
			}
		}
	}
}

func TestCheck_GetOnlyRoleDeniesInsert(t *testing.T) {
	t.Parallel()

	const getOnly = 0b0010
	get := protocol.Command{Op: protocol.OpGet, Object: protocol.Object{List: "CompanyList"}}
	out, err := Check(getOnly, get)
	if err != nil {
		t.Fatalf("get denied: %v", err)
	}
	if out.Name() != "CompanyList" {
		t.Fatalf("command changed: %+v", out)
	}

	ins := protocol.Command{Op: protocol.OpInsert, Payload: protocol.Payload{Kind: "Company"}}
	if _, err := Check(getOnly, ins); !errors.Is(err, errs.ErrNotPermitted) {
		t.Fatalf("want ErrNotPermitted, got %v", err)
	}
}

func TestCheck_UnknownOpDenied(t *testing.T) {
	t.Parallel()

	if Allowed(-1, protocol.Op(42)) {
		t.Fatalf("unknown op must be denied")
	}
	if _, err := Check(-1, protocol.Command{}); !errors.Is(err, errs.ErrNotPermitted) {
		t.Fatalf("zero command must be denied, got %v", err)
	}
}

func TestRole(t *testing.T) {
	t.Parallel()

	if got := Role(protocol.OpGet); got != 0b10 {
		t.Fatalf("Role(Get)=%b", got)
	}
	r := Role(allOps...)
	for _, op := range allOps {
		if !Allowed(r, op) {
			t.Fatalf("full role denies %s", op)
		}
	}
	if Has(r, 63) || Has(r, 0) {
		t.Fatalf("unexpected bits in %b", r)
	}
}
