package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"signal-trading-bot/internal/logging"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// Config holds database configuration
type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// NewDB creates a new database connection
func NewDB(cfg Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger := logging.Component("database")
	logger.Info().
		Str("database", cfg.Database).
		Msg("Successfully connected to PostgreSQL database")

	return &DB{Pool: pool}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		logger := logging.Component("database")
		logger.Info().Msg("Database connection closed")
	}
}

// RunMigrations executes database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	logger := logging.Component("database")
	logger.Info().Msg("Running database migrations...")

	migrations := []string{
		// Signals table holds every generated signal with its full score
		// breakdown so rejected and executed signals can be audited alike.
		`CREATE TABLE IF NOT EXISTS signals (
			id SERIAL PRIMARY KEY,
			trace_id VARCHAR(64),
			symbol VARCHAR(20) NOT NULL,
			signal_type VARCHAR(15) NOT NULL,
			trading_type VARCHAR(10) NOT NULL,
			strength VARCHAR(15) NOT NULL,
			confidence DECIMAL(5, 4) NOT NULL,
			price DECIMAL(20, 8) NOT NULL,
			target_price DECIMAL(20, 8),
			stop_loss DECIMAL(20, 8),
			time_horizon VARCHAR(10),
			sentiment VARCHAR(10),
			trend_score DECIMAL(6, 3),
			momentum_score DECIMAL(6, 3),
			volume_score DECIMAL(6, 3),
			volatility_score DECIMAL(6, 3),
			support_resistance_score DECIMAL(6, 3),
			market_structure_score DECIMAL(6, 3),
			total_score DECIMAL(6, 3),
			strategy_name VARCHAR(100),
			executed BOOLEAN NOT NULL DEFAULT FALSE,
			executed_price DECIMAL(20, 8),
			executed_at TIMESTAMP,
			rejection_reason TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_created_at ON signals(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_executed ON signals(executed)`,

		// Per-strategy tuning knobs editable without redeploying.
		`CREATE TABLE IF NOT EXISTS strategy_configs (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) UNIQUE NOT NULL,
			trading_type VARCHAR(10) NOT NULL DEFAULT 'SPOT',
			min_confidence DECIMAL(5, 4) NOT NULL DEFAULT 0.65,
			max_position_size DECIMAL(20, 8) NOT NULL DEFAULT 100,
			risk_percentage DECIMAL(6, 3) NOT NULL DEFAULT 2,
			stop_loss_percentage DECIMAL(6, 3) NOT NULL DEFAULT 2,
			take_profit_percentage DECIMAL(6, 3) NOT NULL DEFAULT 4,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Single-row global settings table.
		`CREATE TABLE IF NOT EXISTS global_settings (
			id INTEGER PRIMARY KEY DEFAULT 1,
			trading_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			max_concurrent_positions INTEGER NOT NULL DEFAULT 5,
			max_daily_trades INTEGER NOT NULL DEFAULT 10,
			cooldown_minutes INTEGER NOT NULL DEFAULT 30,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row CHECK (id = 1)
		)`,
		`INSERT INTO global_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	logger.Info().Msg("Database migrations completed successfully")
	return nil
}
