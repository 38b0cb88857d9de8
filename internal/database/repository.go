package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Repository provides data access methods
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// HealthCheck performs a database health check
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// ============================================================================
// SIGNALS
// ============================================================================

// CreateSignal inserts a new signal and populates its ID and CreatedAt.
func (r *Repository) CreateSignal(ctx context.Context, sig *SignalRecord) error {
	query := `
		INSERT INTO signals (
			trace_id, symbol, signal_type, trading_type, strength, confidence,
			price, target_price, stop_loss, time_horizon, sentiment,
			trend_score, momentum_score, volume_score, volatility_score,
			support_resistance_score, market_structure_score, total_score,
			strategy_name, executed, rejection_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at
	`
	err := r.db.Pool.QueryRow(
		ctx, query,
		sig.TraceID, sig.Symbol, sig.SignalType, sig.TradingType, sig.Strength, sig.Confidence,
		sig.Price, sig.TargetPrice, sig.StopLoss, sig.TimeHorizon, sig.Sentiment,
		sig.TrendScore, sig.MomentumScore, sig.VolumeScore, sig.VolatilityScore,
		sig.SupportResistanceScore, sig.MarketStructureScore, sig.TotalScore,
		sig.StrategyName, sig.Executed, sig.RejectionReason,
	).Scan(&sig.ID, &sig.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create signal: %w", err)
	}
	return nil
}

// MarkSignalExecuted records the fill price and time for a signal.
func (r *Repository) MarkSignalExecuted(ctx context.Context, id int64, price float64, executedAt time.Time) error {
	query := `
		UPDATE signals
		SET executed = TRUE, executed_price = $2, executed_at = $3
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, id, price, executedAt)
	if err != nil {
		return fmt.Errorf("failed to mark signal executed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("signal %d not found", id)
	}
	return nil
}

// MarkSignalRejected records why a signal was not executed.
func (r *Repository) MarkSignalRejected(ctx context.Context, id int64, reason string) error {
	query := `UPDATE signals SET rejection_reason = $2 WHERE id = $1`
	if _, err := r.db.Pool.Exec(ctx, query, id, reason); err != nil {
		return fmt.Errorf("failed to mark signal rejected: %w", err)
	}
	return nil
}

const signalColumns = `
	id, trace_id, symbol, signal_type, trading_type, strength, confidence,
	price, target_price, stop_loss, time_horizon, sentiment,
	trend_score, momentum_score, volume_score, volatility_score,
	support_resistance_score, market_structure_score, total_score,
	strategy_name, executed, executed_price, executed_at,
	COALESCE(rejection_reason, ''), created_at
`

func scanSignal(row pgx.Row) (*SignalRecord, error) {
	sig := &SignalRecord{}
	err := row.Scan(
		&sig.ID, &sig.TraceID, &sig.Symbol, &sig.SignalType, &sig.TradingType,
		&sig.Strength, &sig.Confidence, &sig.Price, &sig.TargetPrice, &sig.StopLoss,
		&sig.TimeHorizon, &sig.Sentiment,
		&sig.TrendScore, &sig.MomentumScore, &sig.VolumeScore, &sig.VolatilityScore,
		&sig.SupportResistanceScore, &sig.MarketStructureScore, &sig.TotalScore,
		&sig.StrategyName, &sig.Executed, &sig.ExecutedPrice, &sig.ExecutedAt,
		&sig.RejectionReason, &sig.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// GetSignalByID retrieves one signal.
func (r *Repository) GetSignalByID(ctx context.Context, id int64) (*SignalRecord, error) {
	query := `SELECT ` + signalColumns + ` FROM signals WHERE id = $1`
	sig, err := scanSignal(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signal: %w", err)
	}
	return sig, nil
}

// GetRecentSignals returns the newest signals, optionally filtered by symbol.
func (r *Repository) GetRecentSignals(ctx context.Context, symbol string, limit int) ([]*SignalRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error
	if symbol == "" {
		query := `SELECT ` + signalColumns + ` FROM signals ORDER BY created_at DESC LIMIT $1`
		rows, err = r.db.Pool.Query(ctx, query, limit)
	} else {
		query := `SELECT ` + signalColumns + ` FROM signals WHERE symbol = $1 ORDER BY created_at DESC LIMIT $2`
		rows, err = r.db.Pool.Query(ctx, query, symbol, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	var signals []*SignalRecord
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

// HasRecentExecutedSignal reports whether the symbol had an executed signal
// within the window. Used for trade cooldown when Redis is unavailable.
func (r *Repository) HasRecentExecutedSignal(ctx context.Context, symbol string, window time.Duration) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM signals
			WHERE symbol = $1 AND executed = TRUE AND executed_at > $2
		)
	`
	var exists bool
	err := r.db.Pool.QueryRow(ctx, query, symbol, time.Now().Add(-window)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recent signals: %w", err)
	}
	return exists, nil
}

// CountDailyExecutedSignals returns how many signals executed since UTC midnight.
func (r *Repository) CountDailyExecutedSignals(ctx context.Context) (int, error) {
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	var count int
	query := `SELECT COUNT(*) FROM signals WHERE executed = TRUE AND executed_at >= $1`
	if err := r.db.Pool.QueryRow(ctx, query, midnight).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count daily signals: %w", err)
	}
	return count, nil
}

// GetTradingMetrics aggregates signal outcomes since the given time.
func (r *Repository) GetTradingMetrics(ctx context.Context, since time.Time) (*TradingMetrics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE executed),
			COUNT(*) FILTER (WHERE signal_type IN ('BUY', 'STRONG_BUY')),
			COUNT(*) FILTER (WHERE signal_type IN ('SELL', 'STRONG_SELL')),
			COUNT(*) FILTER (WHERE signal_type = 'HOLD'),
			COALESCE(AVG(confidence), 0)
		FROM signals
		WHERE created_at >= $1
	`
	m := &TradingMetrics{}
	err := r.db.Pool.QueryRow(ctx, query, since).Scan(
		&m.TotalSignals, &m.ExecutedSignals, &m.BuySignals, &m.SellSignals,
		&m.HoldSignals, &m.AvgConfidence,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get trading metrics: %w", err)
	}
	if m.TotalSignals > 0 {
		m.ExecutionRate = float64(m.ExecutedSignals) / float64(m.TotalSignals)
	}
	return m, nil
}

// ============================================================================
// STRATEGY CONFIGS
// ============================================================================

// UpsertStrategyConfig inserts or updates a strategy by name.
func (r *Repository) UpsertStrategyConfig(ctx context.Context, cfg *StrategyConfig) error {
	query := `
		INSERT INTO strategy_configs (
			name, trading_type, min_confidence, max_position_size,
			risk_percentage, stop_loss_percentage, take_profit_percentage, enabled
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			trading_type = EXCLUDED.trading_type,
			min_confidence = EXCLUDED.min_confidence,
			max_position_size = EXCLUDED.max_position_size,
			risk_percentage = EXCLUDED.risk_percentage,
			stop_loss_percentage = EXCLUDED.stop_loss_percentage,
			take_profit_percentage = EXCLUDED.take_profit_percentage,
			enabled = EXCLUDED.enabled,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at
	`
	err := r.db.Pool.QueryRow(
		ctx, query,
		cfg.Name, cfg.TradingType, cfg.MinConfidence, cfg.MaxPositionSize,
		cfg.RiskPercentage, cfg.StopLossPercentage, cfg.TakeProfitPercentage, cfg.Enabled,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert strategy config: %w", err)
	}
	return nil
}

// GetStrategyConfig retrieves a strategy by name.
func (r *Repository) GetStrategyConfig(ctx context.Context, name string) (*StrategyConfig, error) {
	query := `
		SELECT id, name, trading_type, min_confidence, max_position_size,
		       risk_percentage, stop_loss_percentage, take_profit_percentage,
		       enabled, created_at, updated_at
		FROM strategy_configs
		WHERE name = $1
	`
	cfg := &StrategyConfig{}
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(
		&cfg.ID, &cfg.Name, &cfg.TradingType, &cfg.MinConfidence, &cfg.MaxPositionSize,
		&cfg.RiskPercentage, &cfg.StopLossPercentage, &cfg.TakeProfitPercentage,
		&cfg.Enabled, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy config: %w", err)
	}
	return cfg, nil
}

// ListEnabledStrategyConfigs returns all enabled strategies.
func (r *Repository) ListEnabledStrategyConfigs(ctx context.Context) ([]*StrategyConfig, error) {
	query := `
		SELECT id, name, trading_type, min_confidence, max_position_size,
		       risk_percentage, stop_loss_percentage, take_profit_percentage,
		       enabled, created_at, updated_at
		FROM strategy_configs
		WHERE enabled = TRUE
		ORDER BY name
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategy configs: %w", err)
	}
	defer rows.Close()

	var configs []*StrategyConfig
	for rows.Next() {
		cfg := &StrategyConfig{}
		err := rows.Scan(
			&cfg.ID, &cfg.Name, &cfg.TradingType, &cfg.MinConfidence, &cfg.MaxPositionSize,
			&cfg.RiskPercentage, &cfg.StopLossPercentage, &cfg.TakeProfitPercentage,
			&cfg.Enabled, &cfg.CreatedAt, &cfg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy config: %w", err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// ============================================================================
// GLOBAL SETTINGS
// ============================================================================

// GetGlobalSettings returns the single settings row.
func (r *Repository) GetGlobalSettings(ctx context.Context) (*GlobalSettings, error) {
	query := `
		SELECT trading_enabled, max_concurrent_positions, max_daily_trades,
		       cooldown_minutes, updated_at
		FROM global_settings
		WHERE id = 1
	`
	settings := &GlobalSettings{}
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&settings.TradingEnabled, &settings.MaxConcurrentPositions,
		&settings.MaxDailyTrades, &settings.CooldownMinutes, &settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get global settings: %w", err)
	}
	return settings, nil
}

// UpdateGlobalSettings replaces the single settings row.
func (r *Repository) UpdateGlobalSettings(ctx context.Context, settings *GlobalSettings) error {
	query := `
		UPDATE global_settings
		SET trading_enabled = $1, max_concurrent_positions = $2,
		    max_daily_trades = $3, cooldown_minutes = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`
	if _, err := r.db.Pool.Exec(
		ctx, query,
		settings.TradingEnabled, settings.MaxConcurrentPositions,
		settings.MaxDailyTrades, settings.CooldownMinutes,
	); err != nil {
		return fmt.Errorf("failed to update global settings: %w", err)
	}
	return nil
}
