package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/redis/go-redis/v9"
)

// RedisDialogStateRepository keeps dialog states in Redis with a TTL, so an
// abandoned top-up dialog falls back to idle on its own
type RedisDialogStateRepository struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDialogStateRepository creates a Redis-backed dialog state store
func NewRedisDialogStateRepository(rc *redis.Client, prefix string, ttl time.Duration) DialogStateRepository {
	return &RedisDialogStateRepository{rc: rc, prefix: prefix, ttl: ttl}
}

func (r *RedisDialogStateRepository) key(accountID string) string {
	return r.prefix + "dialog:" + accountID
}

// Get returns the stored state or idle
func (r *RedisDialogStateRepository) Get(ctx context.Context, accountID string) (models.DialogState, error) {
	value, err := r.rc.Get(ctx, r.key(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.DialogStateIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read dialog state: %w", err)
	}
	state := models.DialogState(value)
	if !state.Valid() {
		return models.DialogStateIdle, nil
	}
	return state, nil
}

// Set stores the state; idle is stored as absence
func (r *RedisDialogStateRepository) Set(ctx context.Context, accountID string, state models.DialogState) error {
	if !state.Valid() {
		return ErrInvalidDialogState
	}
	if state == models.DialogStateIdle {
		return r.Clear(ctx, accountID)
	}
	if err := r.rc.Set(ctx, r.key(accountID), string(state), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write dialog state: %w", err)
	}
	return nil
}

// Clear drops any stored state
func (r *RedisDialogStateRepository) Clear(ctx context.Context, accountID string) error {
	if err := r.rc.Del(ctx, r.key(accountID)).Err(); err != nil {
		return fmt.Errorf("failed to clear dialog state: %w", err)
	}
	return nil
}

type dialogEntry struct {
	state     models.DialogState
	expiresAt time.Time
}

// MemoryDialogStateRepository is the in-process dialog state store used when Redis is disabled
type MemoryDialogStateRepository struct {
	mu     sync.Mutex
	states map[string]dialogEntry
	ttl    time.Duration
	now    utils.Clock
}

// NewMemoryDialogStateRepository creates an in-memory dialog state store; ttl <= 0 disables expiry
func NewMemoryDialogStateRepository(ttl time.Duration) *MemoryDialogStateRepository {
	return &MemoryDialogStateRepository{
		states: make(map[string]dialogEntry),
		ttl:    ttl,
		now:    utils.UTCNow,
	}
}

// Get returns the stored state or idle
func (r *MemoryDialogStateRepository) Get(ctx context.Context, accountID string) (models.DialogState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.states[accountID]
	if !ok {
		return models.DialogStateIdle, nil
	}
	if !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt) {
		delete(r.states, accountID)
		return models.DialogStateIdle, nil
	}
	return entry.state, nil
}

// Set stores the state; idle is stored as absence
func (r *MemoryDialogStateRepository) Set(ctx context.Context, accountID string, state models.DialogState) error {
	if !state.Valid() {
		return ErrInvalidDialogState
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if state == models.DialogStateIdle {
		delete(r.states, accountID)
		return nil
	}
	entry := dialogEntry{state: state}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.states[accountID] = entry
	return nil
}

// Clear drops any stored state
func (r *MemoryDialogStateRepository) Clear(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, accountID)
	return nil
}
