package model

import (
	"strings"
	"time"

	"ai-chat-relay/internal/domain"
)

// Credential is a registered user account. The password is kept only as a
// one-way bcrypt digest; the plaintext is never retained. Credentials are
// created on registration and never mutated or deleted afterwards.
type Credential struct {
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// CredentialInfo is the roster view of a credential. It deliberately has
// no hash field so listings can never leak digests.
type CredentialInfo struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCredential(username string, passwordHash []byte) (*Credential, error) {
	if strings.TrimSpace(username) == "" || len(passwordHash) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Credential{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

func (c *Credential) Info() CredentialInfo {
	return CredentialInfo{Username: c.Username, CreatedAt: c.CreatedAt}
}
