// Redis-backed trade cooldown tracking. After a signal executes, its symbol
// is locked for the cooldown window so the bot cannot churn re-entries.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"signal-trading-bot/internal/logging"
)

// Redis key prefixes for cooldown tracking
const (
	// CooldownKeyPrefix is the prefix for per-symbol cooldown entries
	// Format: signalbot:cooldown:{symbol}
	CooldownKeyPrefix = "signalbot:cooldown"

	// DefaultCooldownMinutes is used when no window is configured
	DefaultCooldownMinutes = 30
)

// CooldownEntry stores information about the trade that started a cooldown
type CooldownEntry struct {
	Symbol     string    `json:"symbol"`
	SignalID   int64     `json:"signal_id"`
	SignalType string    `json:"signal_type"`
	Price      float64   `json:"price"`
	ExecutedAt time.Time `json:"executed_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RedisCooldownTracker records executed trades in Redis with a TTL matching
// the cooldown window. Expiry is handled by Redis itself.
type RedisCooldownTracker struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisCooldownTracker creates a tracker. The client may be nil; all
// operations then report an error so callers can fall back to the database.
func NewRedisCooldownTracker(client *redis.Client) *RedisCooldownTracker {
	return &RedisCooldownTracker{
		client: client,
		logger: logging.Component("cooldown_tracker"),
	}
}

func cooldownKey(symbol string) string {
	return fmt.Sprintf("%s:%s", CooldownKeyPrefix, symbol)
}

// RecordTrade starts a cooldown for the symbol.
func (t *RedisCooldownTracker) RecordTrade(ctx context.Context, entry CooldownEntry, window time.Duration) error {
	if t.client == nil {
		return fmt.Errorf("redis client not available")
	}

	if window <= 0 {
		window = DefaultCooldownMinutes * time.Minute
	}

	entry.ExecutedAt = time.Now()
	entry.ExpiresAt = entry.ExecutedAt.Add(window)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cooldown entry: %w", err)
	}

	if err := t.client.Set(ctx, cooldownKey(entry.Symbol), data, window).Err(); err != nil {
		return fmt.Errorf("failed to store cooldown in Redis: %w", err)
	}

	t.logger.Debug().
		Str("symbol", entry.Symbol).
		Int64("signal_id", entry.SignalID).
		Time("expires_at", entry.ExpiresAt).
		Msg("Cooldown started")

	return nil
}

// InCooldown reports whether the symbol traded within the window. The window
// argument is accepted for interface compatibility; the authoritative TTL
// was fixed when the trade was recorded.
func (t *RedisCooldownTracker) InCooldown(ctx context.Context, symbol string, window time.Duration) (bool, error) {
	if t.client == nil {
		return false, fmt.Errorf("redis client not available")
	}

	n, err := t.client.Exists(ctx, cooldownKey(symbol)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown: %w", err)
	}
	return n > 0, nil
}

// GetEntry returns the cooldown entry for a symbol, or nil when none is active.
func (t *RedisCooldownTracker) GetEntry(ctx context.Context, symbol string) (*CooldownEntry, error) {
	if t.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	data, err := t.client.Get(ctx, cooldownKey(symbol)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get cooldown entry: %w", err)
	}

	var entry CooldownEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cooldown entry: %w", err)
	}
	return &entry, nil
}

// Clear removes an active cooldown, used when an operator wants to re-enable
// a symbol manually.
func (t *RedisCooldownTracker) Clear(ctx context.Context, symbol string) error {
	if t.client == nil {
		return nil
	}

	if err := t.client.Del(ctx, cooldownKey(symbol)).Err(); err != nil {
		return fmt.Errorf("failed to clear cooldown: %w", err)
	}

	t.logger.Info().Str("symbol", symbol).Msg("Cooldown cleared")
	return nil
}
