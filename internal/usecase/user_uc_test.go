package usecase

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/session"
)

func newUserUC() (*userUC, *memCredRepo, *session.Manager) {
	repo := newMemCredRepo()
	mgr := session.NewManager()
	return NewUserUseCase(repo, mgr, newLogger()), repo, mgr
}

func TestUserUC_Register(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newUserUC()

	cred, err := uc.Register(ctx, "ann", "pw1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if cred.Username != "ann" {
		t.Errorf("username = %q", cred.Username)
	}
	// plaintext must never be retained
	if string(cred.PasswordHash) == "pw1" {
		t.Error("password stored as plaintext")
	}
	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte("pw1")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	if _, err := uc.Register(ctx, "ann", "other"); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("duplicate register = %v, want ErrDuplicateUser", err)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestUserUC_Register_Validation(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newUserUC()

	cases := []struct{ username, password string }{
		{"", "pw"},
		{"   ", "pw"},
		{"ann", ""},
	}
	for _, tc := range cases {
		if _, err := uc.Register(ctx, tc.username, tc.password); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Register(%q, %q) = %v, want ErrInvalidArgument", tc.username, tc.password, err)
		}
	}
	// rejected before any store access
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("store touched by invalid registration")
	}
}

func TestUserUC_Login(t *testing.T) {
	ctx := context.Background()
	uc, _, mgr := newUserUC()
	if _, err := uc.Register(ctx, "ann", "pw1"); err != nil {
		t.Fatal(err)
	}

	sess, err := uc.Login(ctx, "ann", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Username != "ann" || sess.Token == "" {
		t.Errorf("session = %+v", sess)
	}

	// wrong password and unknown user are indistinguishable
	if _, err := uc.Login(ctx, "ann", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password = %v", err)
	}
	if _, err := uc.Login(ctx, "ghost", "pw1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("unknown user = %v", err)
	}

	got, err := uc.Resolve(ctx, sess.Token)
	if err != nil || got.Username != "ann" {
		t.Fatalf("Resolve = %v, %v", got, err)
	}

	if err := uc.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := uc.Resolve(ctx, sess.Token); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Errorf("Resolve after logout = %v, want ErrNotLoggedIn", err)
	}
	if mgr.Count() != 0 {
		t.Errorf("sessions remaining = %d", mgr.Count())
	}
	// logout is idempotent
	if err := uc.Logout(ctx, sess.Token); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}

func TestUserUC_Roster(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUserUC()
	for _, name := range []string{"ann", "bob"} {
		if _, err := uc.Register(ctx, name, "pw"); err != nil {
			t.Fatal(err)
		}
	}
	roster, err := uc.Roster(ctx)
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("len = %d, want 2", len(roster))
	}
	for _, e := range roster {
		if e.Username == "" || e.CreatedAt.IsZero() {
			t.Errorf("entry = %+v", e)
		}
	}
}
