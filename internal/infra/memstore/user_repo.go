// Package memstore provides the in-process credential store. State is
// transient: nothing survives a restart.
package memstore

import (
	"context"
	"sort"
	"sync"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/domain/model"
	"ai-chat-relay/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.CredentialRepository = (*CredentialRepo)(nil)

// CredentialRepo keeps credentials in a mutex-guarded map. Create holds
// the write lock across the duplicate check and the insert, so the
// check-then-insert race cannot mint duplicate usernames.
type CredentialRepo struct {
	mu    sync.RWMutex
	creds map[string]*model.Credential
}

func NewCredentialRepo() *CredentialRepo {
	return &CredentialRepo{creds: make(map[string]*model.Credential)}
}

func (r *CredentialRepo) Create(ctx context.Context, cred *model.Credential) error {
	if cred == nil || cred.Username == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creds[cred.Username]; ok {
		return domain.ErrDuplicateUser
	}
	cp := *cred
	r.creds[cred.Username] = &cp
	return nil
}

func (r *CredentialRepo) FindByUsername(ctx context.Context, username string) (*model.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.creds[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CredentialRepo) List(ctx context.Context) ([]model.CredentialInfo, error) {
	r.mu.RLock()
	out := make([]model.CredentialInfo, 0, len(r.creds))
	for _, c := range r.creds {
		out = append(out, c.Info())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CredentialRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.creds), nil
}
