package repository

import (
	"context"

	"ai-chat-relay/internal/domain/model"
)

// CredentialRepository owns registered user accounts.
type CredentialRepository interface {
	// Create stores a new credential. The duplicate check and the
	// insert are a single atomic step: concurrent registrations of the
	// same username yield exactly one success and
	// domain.ErrDuplicateUser for the rest.
	Create(ctx context.Context, cred *model.Credential) error

	// FindByUsername is a case-sensitive exact match; returns
	// domain.ErrNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*model.Credential, error)

	// List returns every account as a roster entry, oldest first.
	// Password hashes are never exposed through this view.
	List(ctx context.Context) ([]model.CredentialInfo, error)

	Count(ctx context.Context) (int, error)
}
