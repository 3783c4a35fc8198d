package credstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/serbe/rugo-sub000/internal/model"
)

func TestNewToken_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken: %v", err)
		}
		if len(tok) < 20 {
			t.Fatalf("token too short: %q", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestSeed_OneTokenPerUser(t *testing.T) {
	t.Parallel()

	s, err := Seed([]model.User{{ID: 1, Name: "a", Role: 2}, {ID: 2, Name: "b", Role: 6}})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("want 2 tokens, got %d", s.Len())
	}

	empty, err := Seed(nil)
	if err != nil || empty.Len() != 0 {
		t.Fatalf("empty seed: len=%d err=%v", empty.Len(), err)
	}
}

func TestLookupInsertRemove(t *testing.T) {
	t.Parallel()

	s := New()
	if _, ok := s.Lookup("nope"); ok {
		t.Fatalf("unknown token resolved")
	}

	u := UserData{UserID: 7, Name: "alice", Role: 30}
	s.Insert("tok", u)
	got, ok := s.Lookup("tok")
	if !ok || got != u {
		t.Fatalf("Lookup=%+v,%v", got, ok)
	}

	s.Remove("tok")
	s.Remove("tok")
	if _, ok := s.Lookup("tok"); ok {
		t.Fatalf("removed token still resolves")
	}
	if s.Len() != 0 {
		t.Fatalf("len=%d", s.Len())
	}
}

func TestRefreshAndRevoke(t *testing.T) {
	t.Parallel()

	s := New()
	t1, _ := s.Issue(UserData{UserID: 1, Name: "a", Role: 2})
	t2, _ := s.Issue(UserData{UserID: 1, Name: "a", Role: 2})
	other, _ := s.Issue(UserData{UserID: 2, Name: "b", Role: 2})

	s.Refresh(UserData{UserID: 1, Name: "a2", Role: 6})
	for _, tok := range []string{t1, t2} {
		u, ok := s.Lookup(tok)
		if !ok || u.Role != 6 || u.Name != "a2" {
			t.Fatalf("token %s not refreshed: %+v", tok, u)
		}
	}

	if n := s.Revoke(1); n != 2 {
		t.Fatalf("revoked %d, want 2", n)
	}
	if _, ok := s.Lookup(t1); ok {
		t.Fatalf("revoked token resolves")
	}
	if _, ok := s.Lookup(other); !ok {
		t.Fatalf("other user's token revoked")
	}
	if n := s.Revoke(1); n != 0 {
		t.Fatalf("second revoke dropped %d", n)
	}
}

func TestInsert_RebindMovesIndex(t *testing.T) {
	t.Parallel()

	s := New()
	s.Insert("tok", UserData{UserID: 1})
	s.Insert("tok", UserData{UserID: 2})
	if n := s.Revoke(1); n != 0 {
		t.Fatalf("stale index entry for user 1")
	}
	if u, ok := s.Lookup("tok"); !ok || u.UserID != 2 {
		t.Fatalf("rebind lost: %+v", u)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok := fmt.Sprintf("tok-%d", i)
			s.Insert(tok, UserData{UserID: int64(i % 4)})
			s.Lookup(tok)
			s.Refresh(UserData{UserID: int64(i % 4), Role: 2})
			if i%2 == 0 {
				s.Remove(tok)
			}
		}(i)
	}
	wg.Wait()
	if s.Len() != 8 {
		t.Fatalf("len=%d want 8", s.Len())
	}
}
