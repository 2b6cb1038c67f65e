package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/domain/model"
)

func newCred(t *testing.T, username string) *model.Credential {
	t.Helper()
	c, err := model.NewCredential(username, []byte("digest"))
	if err != nil {
		t.Fatalf("NewCredential: %v", err)
	}
	return c
}

func TestCredentialRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewCredentialRepo()

	if err := repo.Create(ctx, newCred(t, "ann")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, newCred(t, "ann")); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("second Create = %v, want ErrDuplicateUser", err)
	}
	// case-sensitive: "Ann" is a different account
	if err := repo.Create(ctx, newCred(t, "Ann")); err != nil {
		t.Errorf("Create with different case = %v", err)
	}

	got, err := repo.FindByUsername(ctx, "ann")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.Username != "ann" || len(got.PasswordHash) == 0 {
		t.Errorf("got %+v", got)
	}
	if _, err := repo.FindByUsername(ctx, "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}

func TestCredentialRepo_List(t *testing.T) {
	ctx := context.Background()
	repo := NewCredentialRepo()

	first := newCred(t, "first")
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := newCred(t, "second")
	if err := repo.Create(ctx, second); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatal(err)
	}

	out, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Username != "first" || out[1].Username != "second" {
		t.Errorf("order = [%s %s], want oldest first", out[0].Username, out[1].Username)
	}
}

func TestCredentialRepo_ConcurrentRegistrationOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewCredentialRepo()

	const attempts = 32
	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Create(ctx, newCred(t, "contested")); err == nil {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestCredentialRepo_IsolatedCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewCredentialRepo()
	if err := repo.Create(ctx, newCred(t, "ann")); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.FindByUsername(ctx, "ann")
	got.Username = "mutated"
	again, _ := repo.FindByUsername(ctx, "ann")
	if again.Username != "ann" {
		t.Error("stored credential mutated through a returned copy")
	}
}

func TestCredentialRepo_ManyUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewCredentialRepo()
	for i := 0; i < 20; i++ {
		if err := repo.Create(ctx, newCred(t, fmt.Sprintf("user-%02d", i))); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := repo.Count(ctx); n != 20 {
		t.Errorf("Count = %d, want 20", n)
	}
}
