package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/domain/model"
	"ai-chat-relay/internal/domain/ports/repository"
	"ai-chat-relay/internal/infra/logging"
	"ai-chat-relay/internal/infra/metrics"
	"ai-chat-relay/internal/session"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes account and session operations used by the
// gateway.
type UserUseCase interface {
	Register(ctx context.Context, username, password string) (*model.Credential, error)
	Login(ctx context.Context, username, password string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (*model.Session, error)
	Roster(ctx context.Context) ([]model.CredentialInfo, error)
}

type userUC struct {
	creds    repository.CredentialRepository
	sessions *session.Manager
	log      *zerolog.Logger
}

func NewUserUseCase(creds repository.CredentialRepository, sessions *session.Manager, logger *zerolog.Logger) *userUC {
	return &userUC{creds: creds, sessions: sessions, log: logger}
}

func (u *userUC) Register(ctx context.Context, username, password string) (*model.Credential, error) {
	defer logging.TraceDuration(u.log, "UserUC.Register")()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	cred, err := model.NewCredential(username, hash)
	if err != nil {
		return nil, err
	}
	// The store makes the duplicate check and the insert one atomic
	// step; concurrent registrations cannot both win.
	if err := u.creds.Create(ctx, cred); err != nil {
		return nil, err
	}

	if n, err := u.creds.Count(ctx); err == nil {
		metrics.SetRegisteredUsers(n)
	}
	u.log.Info().Str("username", username).Msg("user registered")
	return cred, nil
}

func (u *userUC) Login(ctx context.Context, username, password string) (*model.Session, error) {
	defer logging.TraceDuration(u.log, "UserUC.Login")()

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}

	cred, err := u.creds.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown user and wrong password must look identical to
			// the caller.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	s := u.sessions.Create(username)
	metrics.SetActiveSessions(u.sessions.Count())
	u.log.Info().Str("username", username).Str("session_id", s.Token).Msg("login")
	return s, nil
}

func (u *userUC) Logout(ctx context.Context, token string) error {
	defer logging.TraceDuration(u.log, "UserUC.Logout")()
	u.sessions.Destroy(token)
	metrics.SetActiveSessions(u.sessions.Count())
	return nil
}

func (u *userUC) Resolve(ctx context.Context, token string) (*model.Session, error) {
	return u.sessions.Resolve(token)
}

func (u *userUC) Roster(ctx context.Context) ([]model.CredentialInfo, error) {
	defer logging.TraceDuration(u.log, "UserUC.Roster")()
	return u.creds.List(ctx)
}
