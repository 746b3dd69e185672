// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

// tokenKey is the durable key the bearer token is persisted under.
const tokenKey = "token"

var _ driven.TokenSource = (*CredentialStore)(nil)

// CredentialStore holds the current bearer token in memory and mirrors every
// change into durable storage so a session survives process restarts. The
// dispatcher reads it on every request through driven.TokenSource.
type CredentialStore struct {
	kv driven.KeyValueStore

	mu    sync.RWMutex
	token string
}

// NewCredentialStore creates a store backed by kv. Call Load to rehydrate a
// previously persisted token.
func NewCredentialStore(kv driven.KeyValueStore) *CredentialStore {
	return &CredentialStore{kv: kv}
}

// Load reads the persisted token, if any, into memory.
func (s *CredentialStore) Load(ctx context.Context) error {
	token, ok, err := s.kv.Get(ctx, tokenKey)
	if err != nil {
		return fmt.Errorf("loading token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.token = token
	} else {
		s.token = ""
	}
	return nil
}

// Get returns the current token and whether one is held.
func (s *CredentialStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Token implements driven.TokenSource.
func (s *CredentialStore) Token() string {
	token, _ := s.Get()
	return token
}

// Set replaces the token and persists it. An empty token is the same as
// Clear. The in-memory token is updated even when persisting fails.
func (s *CredentialStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.kv.Set(ctx, tokenKey, token); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	return nil
}

// Clear drops the token from memory and from durable storage.
func (s *CredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, tokenKey); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}
