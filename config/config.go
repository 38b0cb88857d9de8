package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DataSourceConfig DataSourceConfig `json:"data_source"`
	DatabaseConfig   DatabaseConfig   `json:"database"`
	RedisConfig      RedisConfig      `json:"redis"`
	VaultConfig      VaultConfig      `json:"vault"`
	TradingConfig    TradingConfig    `json:"trading"`
	ScoringConfig    ScoringConfig    `json:"scoring"`
	RiskConfig       RiskConfig       `json:"risk"`
	LoggingConfig    LoggingConfig    `json:"logging"`
}

// DataSourceConfig holds market data source configuration
type DataSourceConfig struct {
	BaseURL        string `json:"base_url"`
	FuturesBaseURL string `json:"futures_base_url"`
	APIKey         string `json:"api_key"`    // Optional; raises the rate limit tier
	SecretKey      string `json:"secret_key"` // Seeds Vault on first run when set
	TestNet        bool   `json:"testnet"`
	MockMode       bool   `json:"mock_mode"` // Use simulated data when the exchange API is unavailable
	MockSeed       int64  `json:"mock_seed"` // Deterministic synthetic data when non-zero
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig holds Redis configuration for cooldown tracking
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// VaultConfig holds HashiCorp Vault configuration
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`  // KV secrets engine mount path
	SecretPath string `json:"secret_path"` // Path prefix for exchange credentials
	TLSEnabled bool   `json:"tls_enabled"`
	CACert     string `json:"ca_cert"`
}

// TradingConfig holds the scan loop and execution configuration
type TradingConfig struct {
	Symbols          []string `json:"symbols"`
	Interval         string   `json:"interval"`           // Candle interval, e.g. "15m"
	CandleLimit      int      `json:"candle_limit"`       // Candles fetched per scan
	ScanIntervalSecs int      `json:"scan_interval_secs"` // Seconds between full scans
	SymbolDelayMs    int      `json:"symbol_delay_ms"`    // Delay between symbols within a scan
	DryRun           bool     `json:"dry_run"`            // Log orders instead of placing them
	AccountBalance   float64  `json:"account_balance"`    // Quote balance assumed in dry run
}

// ScoringConfig selects the scoring model and combined-signal behavior
type ScoringConfig struct {
	Mode            string `json:"mode"`              // "basic" or "enhanced"
	SignalLine      string `json:"signal_line"`       // "faithful" or "ema"
	CombinedEnabled bool   `json:"combined_enabled"`  // Score spot and futures together
	StrategyName    string `json:"strategy_name"`     // Strategy config row to load
}

// RiskConfig holds per-trade and portfolio risk limits
type RiskConfig struct {
	RiskPercentage         float64 `json:"risk_percentage"`      // Percent of balance risked per trade
	MaxPositionSize        float64 `json:"max_position_size"`    // Quote-value cap per position
	MinConfidence          float64 `json:"min_confidence"`       // Minimum confidence to execute
	MaxConcurrentPositions int     `json:"max_concurrent_positions"`
	MaxDailyTrades         int     `json:"max_daily_trades"`
	CooldownMinutes        int     `json:"cooldown_minutes"`
	StopLossPercentage     float64 `json:"stop_loss_percentage"`
	TakeProfitPercentage   float64 `json:"take_profit_percentage"`
}

type LoggingConfig struct {
	Level      string `json:"level"`       // DEBUG, INFO, WARN, ERROR
	Output     string `json:"output"`      // stdout, stderr, or file path
	JSONFormat bool   `json:"json_format"` // Output as JSON
}

func Load() (*Config, error) {
	// First try to load base config from file
	cfg, err := loadFromFile("config.json")
	if err != nil {
		// If no config file, start with empty config
		cfg = &Config{}
	}

	// Apply environment variable overrides (these take precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	// Data source config
	cfg.DataSourceConfig.BaseURL = getEnvOrDefault("BINANCE_BASE_URL", cfg.DataSourceConfig.BaseURL)
	if cfg.DataSourceConfig.BaseURL == "" {
		cfg.DataSourceConfig.BaseURL = "https://api.binance.com"
	}
	cfg.DataSourceConfig.FuturesBaseURL = getEnvOrDefault("BINANCE_FUTURES_BASE_URL", cfg.DataSourceConfig.FuturesBaseURL)
	if cfg.DataSourceConfig.FuturesBaseURL == "" {
		cfg.DataSourceConfig.FuturesBaseURL = "https://fapi.binance.com"
	}
	cfg.DataSourceConfig.APIKey = getEnvOrDefault("BINANCE_API_KEY", cfg.DataSourceConfig.APIKey)
	cfg.DataSourceConfig.SecretKey = getEnvOrDefault("BINANCE_SECRET_KEY", cfg.DataSourceConfig.SecretKey)
	cfg.DataSourceConfig.TestNet = getEnvOrDefault("BINANCE_TESTNET", "false") == "true"
	cfg.DataSourceConfig.MockMode = getEnvOrDefault("MOCK_MODE", "false") == "true"

	// Database config
	cfg.DatabaseConfig.Host = getEnvOrDefault("DB_HOST", defaultString(cfg.DatabaseConfig.Host, "localhost"))
	cfg.DatabaseConfig.Port = getEnvIntOrDefault("DB_PORT", defaultInt(cfg.DatabaseConfig.Port, 5432))
	cfg.DatabaseConfig.User = getEnvOrDefault("DB_USER", defaultString(cfg.DatabaseConfig.User, "postgres"))
	cfg.DatabaseConfig.Password = getEnvOrDefault("DB_PASSWORD", cfg.DatabaseConfig.Password)
	cfg.DatabaseConfig.Database = getEnvOrDefault("DB_NAME", defaultString(cfg.DatabaseConfig.Database, "signalbot"))
	cfg.DatabaseConfig.SSLMode = getEnvOrDefault("DB_SSL_MODE", defaultString(cfg.DatabaseConfig.SSLMode, "disable"))

	// Redis config
	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", boolString(cfg.RedisConfig.Enabled)) == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", defaultString(cfg.RedisConfig.Address, "localhost:6379"))
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", defaultInt(cfg.RedisConfig.PoolSize, 10))

	// Vault config
	cfg.VaultConfig.Enabled = getEnvOrDefault("VAULT_ENABLED", "false") == "true"
	cfg.VaultConfig.Address = getEnvOrDefault("VAULT_ADDR", defaultString(cfg.VaultConfig.Address, "http://localhost:8200"))
	cfg.VaultConfig.Token = getEnvOrDefault("VAULT_TOKEN", cfg.VaultConfig.Token)
	cfg.VaultConfig.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", defaultString(cfg.VaultConfig.MountPath, "secret"))
	cfg.VaultConfig.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", defaultString(cfg.VaultConfig.SecretPath, "signal-bot/credentials"))
	cfg.VaultConfig.TLSEnabled = getEnvOrDefault("VAULT_TLS_ENABLED", "false") == "true"

	// Trading config
	if symbols := os.Getenv("TRADING_SYMBOLS"); symbols != "" {
		cfg.TradingConfig.Symbols = splitSymbols(symbols)
	}
	if len(cfg.TradingConfig.Symbols) == 0 {
		cfg.TradingConfig.Symbols = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT"}
	}
	cfg.TradingConfig.Interval = getEnvOrDefault("TRADING_INTERVAL", defaultString(cfg.TradingConfig.Interval, "15m"))
	cfg.TradingConfig.CandleLimit = getEnvIntOrDefault("TRADING_CANDLE_LIMIT", defaultInt(cfg.TradingConfig.CandleLimit, 200))
	cfg.TradingConfig.ScanIntervalSecs = getEnvIntOrDefault("TRADING_SCAN_INTERVAL", defaultInt(cfg.TradingConfig.ScanIntervalSecs, 60))
	cfg.TradingConfig.SymbolDelayMs = getEnvIntOrDefault("TRADING_SYMBOL_DELAY_MS", defaultInt(cfg.TradingConfig.SymbolDelayMs, 500))
	cfg.TradingConfig.DryRun = getEnvOrDefault("TRADING_DRY_RUN", "true") == "true"
	cfg.TradingConfig.AccountBalance = getEnvFloatOrDefault("TRADING_ACCOUNT_BALANCE", defaultFloat(cfg.TradingConfig.AccountBalance, 10000))

	// Scoring config
	cfg.ScoringConfig.Mode = getEnvOrDefault("SCORING_MODE", defaultString(cfg.ScoringConfig.Mode, "enhanced"))
	cfg.ScoringConfig.SignalLine = getEnvOrDefault("SCORING_SIGNAL_LINE", defaultString(cfg.ScoringConfig.SignalLine, "faithful"))
	cfg.ScoringConfig.CombinedEnabled = getEnvOrDefault("SCORING_COMBINED_ENABLED", boolString(cfg.ScoringConfig.CombinedEnabled)) == "true"
	cfg.ScoringConfig.StrategyName = getEnvOrDefault("SCORING_STRATEGY_NAME", defaultString(cfg.ScoringConfig.StrategyName, "default"))

	// Risk config
	cfg.RiskConfig.RiskPercentage = getEnvFloatOrDefault("RISK_PERCENTAGE", defaultFloat(cfg.RiskConfig.RiskPercentage, 2.0))
	cfg.RiskConfig.MaxPositionSize = getEnvFloatOrDefault("RISK_MAX_POSITION_SIZE", defaultFloat(cfg.RiskConfig.MaxPositionSize, 100))
	cfg.RiskConfig.MinConfidence = getEnvFloatOrDefault("RISK_MIN_CONFIDENCE", defaultFloat(cfg.RiskConfig.MinConfidence, 0.65))
	cfg.RiskConfig.MaxConcurrentPositions = getEnvIntOrDefault("RISK_MAX_CONCURRENT_POSITIONS", defaultInt(cfg.RiskConfig.MaxConcurrentPositions, 5))
	cfg.RiskConfig.MaxDailyTrades = getEnvIntOrDefault("RISK_MAX_DAILY_TRADES", defaultInt(cfg.RiskConfig.MaxDailyTrades, 10))
	cfg.RiskConfig.CooldownMinutes = getEnvIntOrDefault("RISK_COOLDOWN_MINUTES", defaultInt(cfg.RiskConfig.CooldownMinutes, 30))
	cfg.RiskConfig.StopLossPercentage = getEnvFloatOrDefault("RISK_STOP_LOSS_PERCENTAGE", defaultFloat(cfg.RiskConfig.StopLossPercentage, 2.0))
	cfg.RiskConfig.TakeProfitPercentage = getEnvFloatOrDefault("RISK_TAKE_PROFIT_PERCENTAGE", defaultFloat(cfg.RiskConfig.TakeProfitPercentage, 4.0))

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", defaultString(cfg.LoggingConfig.Level, "INFO"))
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", defaultString(cfg.LoggingConfig.Output, "stdout"))
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", "true") == "true"
}

// CooldownPeriod returns the cooldown window as a duration.
func (c *RiskConfig) CooldownPeriod() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			symbols = append(symbols, strings.ToUpper(trimmed))
		}
	}
	return symbols
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func defaultString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func defaultInt(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}

func defaultFloat(value, fallback float64) float64 {
	if value != 0 {
		return value
	}
	return fallback
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// GenerateSampleConfig creates a sample configuration file
func GenerateSampleConfig(filename string) error {
	config := Config{
		DataSourceConfig: DataSourceConfig{
			BaseURL:        "https://api.binance.com",
			FuturesBaseURL: "https://fapi.binance.com",
			TestNet:        true,
			MockMode:       true,
		},
		DatabaseConfig: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "signalbot",
			SSLMode:  "disable",
		},
		RedisConfig: RedisConfig{
			Enabled:  false,
			Address:  "localhost:6379",
			PoolSize: 10,
		},
		VaultConfig: VaultConfig{
			Enabled:    false,
			Address:    "http://localhost:8200",
			MountPath:  "secret",
			SecretPath: "signal-bot/credentials",
		},
		TradingConfig: TradingConfig{
			Symbols:          []string{"BTCUSDT", "ETHUSDT", "BNBUSDT"},
			Interval:         "15m",
			CandleLimit:      200,
			ScanIntervalSecs: 60,
			SymbolDelayMs:    500,
			DryRun:           true,
			AccountBalance:   10000,
		},
		ScoringConfig: ScoringConfig{
			Mode:            "enhanced",
			SignalLine:      "faithful",
			CombinedEnabled: true,
			StrategyName:    "default",
		},
		RiskConfig: RiskConfig{
			RiskPercentage:         2.0,
			MaxPositionSize:        100,
			MinConfidence:          0.65,
			MaxConcurrentPositions: 5,
			MaxDailyTrades:         10,
			CooldownMinutes:        30,
			StopLossPercentage:     2.0,
			TakeProfitPercentage:   4.0,
		},
		LoggingConfig: LoggingConfig{
			Level:      "INFO",
			Output:     "stdout",
			JSONFormat: true,
		},
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
