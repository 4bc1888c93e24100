// Package memory provides in-memory ledger implementations for tests and
// local runs without AWS. Semantics match the dynamo repos: Put overwrites,
// Get returns the raw record, IncrementAttempts is atomic per identity.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brainbox-api/internal/domain"
)

// challengeEntry pairs one identity's record with its own mutex, so
// read-modify-write cycles for the same identity serialize while distinct
// identities never contend beyond the brief map lookup.
type challengeEntry struct {
	mu  sync.Mutex
	rec domain.PendingVerification
}

// ChallengeLedger is the in-memory identity → pending challenge store. The
// store-wide mutex guards only the map structure; record mutation happens
// under the entry's own lock.
type ChallengeLedger struct {
	mu      sync.RWMutex
	entries map[string]*challengeEntry
}

func NewChallengeLedger() *ChallengeLedger {
	return &ChallengeLedger{entries: make(map[string]*challengeEntry)}
}

// Put overwrites any existing challenge with a fresh record. Expired entries
// across the whole store are purged on every write, the same way the
// file-backed store this replaces cleaned itself.
func (l *ChallengeLedger) Put(_ context.Context, identityKey, code string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().Unix()
	for k, e := range l.entries {
		if e.rec.ExpiresAt <= now {
			delete(l.entries, k)
		}
	}
	l.entries[identityKey] = &challengeEntry{rec: domain.PendingVerification{
		Identity:  identityKey,
		Code:      code,
		ExpiresAt: time.Now().Add(ttl).Unix(),
		Attempts:  0,
	}}
	return nil
}

func (l *ChallengeLedger) Get(_ context.Context, identityKey string) (*domain.PendingVerification, error) {
	l.mu.RLock()
	e, ok := l.entries[identityKey]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("challenge not found: %w", domain.ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	rec := e.rec
	return &rec, nil
}

// IncrementAttempts bumps the failed-attempt counter under the entry's own
// lock: concurrent calls for one identity serialize against each other, not
// against the rest of the store. A missing record is a no-op returning zero.
func (l *ChallengeLedger) IncrementAttempts(_ context.Context, identityKey string) (int, error) {
	l.mu.RLock()
	e, ok := l.entries[identityKey]
	l.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.Attempts++
	return e.rec.Attempts, nil
}

func (l *ChallengeLedger) Delete(_ context.Context, identityKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, identityKey)
	return nil
}

// TokenLedger is the in-memory identity → reset token store. Its records
// live in a map of their own, keeping the two namespaces disjoint by
// construction.
type TokenLedger struct {
	mu      sync.RWMutex
	records map[string]domain.ResetToken
}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{records: make(map[string]domain.ResetToken)}
}

func (l *TokenLedger) Put(_ context.Context, identityKey, tokenValue string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[identityKey] = domain.ResetToken{
		Identity:  identityKey,
		Token:     tokenValue,
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}
	return nil
}

func (l *TokenLedger) Get(_ context.Context, identityKey string) (*domain.ResetToken, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.records[identityKey]
	if !ok {
		return nil, fmt.Errorf("reset token not found: %w", domain.ErrNotFound)
	}
	return &t, nil
}

func (l *TokenLedger) Delete(_ context.Context, identityKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, identityKey)
	return nil
}
