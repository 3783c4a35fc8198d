package protocol

import (
	"encoding/json"
	"testing"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestCommand_Unmarshal(t *testing.T) {
	t.Parallel()

	var c Command
	require.NoError(t, json.Unmarshal([]byte(`{"Get":{"List":"PostGoSelect"}}`), &c))
	require.Equal(t, OpGet, c.Op)
	require.Nil(t, c.Object.Item)
	require.Equal(t, "PostGoSelect", c.Name())

	require.NoError(t, json.Unmarshal([]byte(`{"Insert":{"Scope":{"name":"x","note":null}}}`), &c))
	require.Equal(t, OpInsert, c.Op)
	require.Equal(t, "Scope", c.Payload.Kind)
	require.JSONEq(t, `{"name":"x","note":null}`, string(c.Payload.Data))

	require.NoError(t, json.Unmarshal([]byte(`{"Update":{"Rank":{"id":2,"name":"r"}}}`), &c))
	require.Equal(t, OpUpdate, c.Op)
	require.Equal(t, "Rank", c.Name())

	require.NoError(t, json.Unmarshal([]byte(`{"Delete":{"name":"Siren","id":8}}`), &c))
	require.Equal(t, OpDelete, c.Op)
	require.Equal(t, Item{Name: "Siren", ID: 8}, c.Item)
}

func TestCommand_UserSubcommands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want UserCommand
	}{
		{`{"User":"GetList"}`, UserCommand{Op: UserGetList}},
		{`{"User":{"Get":3}}`, UserCommand{Op: UserGet, ID: 3}},
		{`{"User":{"Delete":4}}`, UserCommand{Op: UserDelete, ID: 4}},
		{`{"User":{"Insert":{"name":"bob","key":"k","role":2}}}`, UserCommand{Op: UserInsert, Data: json.RawMessage(`{"name":"bob","key":"k","role":2}`)}},
	}
	for _, tc := range cases {
		var c Command
		require.NoError(t, json.Unmarshal([]byte(tc.in), &c), tc.in)
		require.Equal(t, OpUser, c.Op)
		require.Equal(t, tc.want, c.User)
		require.Equal(t, string(tc.want.Op), c.Name())
	}

	var c Command
	require.ErrorIs(t, json.Unmarshal([]byte(`{"User":"Purge"}`), &c), errs.ErrBadRequest)
	require.ErrorIs(t, json.Unmarshal([]byte(`{"User":{"GetList":1}}`), &c), errs.ErrBadRequest)
}

func TestCommand_MarshalRoundTrip(t *testing.T) {
	t.Parallel()

	cmds := []Command{
		{Op: OpGet, Object: Object{Item: &Item{Name: "Company", ID: 1}}},
		{Op: OpGet, Object: Object{List: "CompanyList"}},
		{Op: OpInsert, Payload: Payload{Kind: "Kind", Data: json.RawMessage(`{"name":"k"}`)}},
		{Op: OpDelete, Item: Item{Name: "Post", ID: 5}},
		{Op: OpUser, User: UserCommand{Op: UserGetList}},
		{Op: OpUser, User: UserCommand{Op: UserGet, ID: 2}},
	}
	for _, in := range cmds {
		b, err := json.Marshal(in)
		require.NoError(t, err)
		var out Command
		require.NoError(t, json.Unmarshal(b, &out), string(b))
		require.Equal(t, in.Op, out.Op)
		require.Equal(t, in.Name(), out.Name())
	}
}

func TestCommand_RejectsMultipleVariants(t *testing.T) {
	t.Parallel()

	var c Command
	err := json.Unmarshal([]byte(`{"Get":{"List":"A"},"Delete":{"name":"B","id":1}}`), &c)
	require.ErrorIs(t, err, errs.ErrBadRequest)

	err = json.Unmarshal([]byte(`"Get"`), &c)
	require.ErrorIs(t, err, errs.ErrBadRequest)
}

func TestOp_String(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Delete", OpDelete.String())
	require.Equal(t, "Op(9)", Op(9).String())
}
