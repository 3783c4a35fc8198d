package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pkgcrypto "github.com/serbe/rugo-sub000/internal/crypto"
	"github.com/serbe/rugo-sub000/internal/credstore"
	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/protocol"
)

func newUserFixture(users ...model.User) (*UserService, *fakeUsers, *credstore.Store, *fakeRunner) {
	repo := newFakeUsers(users...)
	creds := credstore.New()
	db := &fakeRunner{}
	return NewUserService(db, repo, creds), repo, creds, db
}

func TestUsers_Insert_HashesKeyAndIssuesToken(t *testing.T) {
	t.Parallel()
	svc, repo, creds, _ := newUserFixture()

	id, err := svc.Insert(context.Background(), json.RawMessage(`{"name":"bob","key":"s3cret","role":2}`))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	saved := repo.byID[id]
	if len(saved.KeyHash) == 0 || len(saved.KeySalt) != pkgcrypto.SaltLen {
		t.Fatalf("key not hashed: %+v", saved)
	}
	if !pkgcrypto.VerifyKey([]byte("s3cret"), saved.KeySalt, saved.KeyHash) {
		t.Fatalf("stored hash does not verify")
	}
	if creds.Len() != 1 {
		t.Fatalf("creds.Len=%d, want 1", creds.Len())
	}
}

func TestUsers_Insert_Validation(t *testing.T) {
	t.Parallel()
	svc, _, creds, db := newUserFixture()

	for _, raw := range []string{
		`{"name":"bob","role":2}`,
		`{"key":"k","role":2}`,
		`{"name":"bob","key":"k","role":"admin"}`,
	} {
		if _, err := svc.Insert(context.Background(), json.RawMessage(raw)); !errors.Is(err, errs.ErrBadRequest) {
			t.Fatalf("%s: want ErrBadRequest, got %v", raw, err)
		}
	}
	if db.calls != 0 || creds.Len() != 0 {
		t.Fatalf("invalid input reached the store: calls=%d tokens=%d", db.calls, creds.Len())
	}
}

func TestUsers_Insert_StoreFailureIssuesNothing(t *testing.T) {
	t.Parallel()
	svc, repo, creds, _ := newUserFixture()
	repo.insertErr = errs.ErrStore

	if _, err := svc.Insert(context.Background(), json.RawMessage(`{"name":"bob","key":"k","role":2}`)); !errors.Is(err, errs.ErrStore) {
		t.Fatalf("want ErrStore, got %v", err)
	}
	if creds.Len() != 0 {
		t.Fatalf("token minted for uncommitted user")
	}
}

func TestUsers_Update_RefreshesTokensAndKeepsKey(t *testing.T) {
	t.Parallel()
	alice := userWithKey(t, 1, "alice", "pwd", 2)
	svc, repo, creds, _ := newUserFixture(alice)
	tok, _ := creds.Issue(credstore.FromUser(alice))

	n, err := svc.Update(context.Background(), json.RawMessage(`{"id":1,"name":"alice","role":30}`))
	if err != nil || n != 1 {
		t.Fatalf("Update: n=%d err=%v", n, err)
	}
	if u, _ := creds.Lookup(tok); u.Role != 30 {
		t.Fatalf("cached role=%d, want 30", u.Role)
	}
	if !pkgcrypto.VerifyKey([]byte("pwd"), repo.byID[1].KeySalt, repo.byID[1].KeyHash) {
		t.Fatalf("key changed without a new key")
	}

	if _, err := svc.Update(context.Background(), json.RawMessage(`{"id":1,"name":"alice","key":"new","role":30}`)); err != nil {
		t.Fatalf("Update with key: %v", err)
	}
	if !pkgcrypto.VerifyKey([]byte("new"), repo.byID[1].KeySalt, repo.byID[1].KeyHash) {
		t.Fatalf("key not rehashed")
	}
}

func TestUsers_Update_MissingKeepsCache(t *testing.T) {
	t.Parallel()
	svc, _, creds, _ := newUserFixture()
	tok, _ := creds.Issue(credstore.UserData{UserID: 9, Name: "ghost", Role: 2})

	if _, err := svc.Update(context.Background(), json.RawMessage(`{"id":9,"name":"ghost","role":30}`)); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if u, _ := creds.Lookup(tok); u.Role != 2 {
		t.Fatalf("cache mutated after failed update")
	}
	if _, err := svc.Update(context.Background(), json.RawMessage(`{"name":"ghost","role":30}`)); !errors.Is(err, errs.ErrBadRequest) {
		t.Fatalf("missing id: %v", err)
	}
}

func TestUsers_Delete_RevokesTokens(t *testing.T) {
	t.Parallel()
	alice := userWithKey(t, 1, "alice", "pwd", 2)
	svc, _, creds, _ := newUserFixture(alice)
	_, _ = creds.Issue(credstore.FromUser(alice))
	_, _ = creds.Issue(credstore.FromUser(alice))

	n, err := svc.Delete(context.Background(), 1)
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	if creds.Len() != 0 {
		t.Fatalf("tokens left after delete: %d", creds.Len())
	}
}

func TestUsers_Handle(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newUserFixture(
		model.User{ID: 1, Name: "bob", Role: 2},
		model.User{ID: 2, Name: "alice", Role: 6},
	)
	ctx := context.Background()

	obj, err := svc.Handle(ctx, protocol.UserCommand{Op: protocol.UserGetList})
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	list := obj.(map[string]any)["UserList"].([]model.UserList)
	if len(list) != 2 || list[0].Name != "alice" {
		t.Fatalf("list=%+v", list)
	}

	obj, err = svc.Handle(ctx, protocol.UserCommand{Op: protocol.UserGet, ID: 1})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u := obj.(map[string]any)["User"].(model.User); u.Name != "bob" || len(u.KeyHash) != 0 {
		t.Fatalf("user=%+v", u)
	}

	obj, err = svc.Handle(ctx, protocol.UserCommand{Op: protocol.UserDelete, ID: 2})
	if err != nil || obj.(map[string]any)["Rows"] != int64(1) {
		t.Fatalf("Delete: obj=%v err=%v", obj, err)
	}

	if _, err := svc.Handle(ctx, protocol.UserCommand{Op: "Rename"}); !errors.Is(err, errs.ErrBadRequest) {
		t.Fatalf("unknown op: %v", err)
	}
}

func TestUsers_Update_CommitAndRefreshSerializePerUser(t *testing.T) {
	t.Parallel()
	svc, repo, creds, _ := newUserFixture(model.User{ID: 1, Name: "alice", Role: 2})
	tok, err := creds.Issue(credstore.UserData{UserID: 1, Name: "alice", Role: 2})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	entered := make(chan string, 2)
	release := make(chan struct{})
	repo.onUpdate = func(u model.User) {
		entered <- u.Name
		if u.Name == "first" {
			<-release
		}
	}

	done := make(chan error, 2)
	update := func(body string) {
		_, err := svc.Update(context.Background(), json.RawMessage(body))
		done <- err
	}
	go update(`{"id":1,"name":"first","role":2}`)
	if got := <-entered; got != "first" {
		t.Fatalf("entered %q, want first", got)
	}
	go update(`{"id":1,"name":"second","role":4}`)

	select {
	case got := <-entered:
		t.Fatalf("%q reached the store while the first update was pending", got)
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	for range 2 {
		if err := <-done; err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if got := <-entered; got != "second" {
		t.Fatalf("entered %q, want second", got)
	}
	u, ok := creds.Lookup(tok)
	if !ok || u.Name != "second" || u.Role != 4 {
		t.Fatalf("cache holds %+v, want the last committed record", u)
	}
}
