package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signal-trading-bot/config"
	"signal-trading-bot/internal/bot"
	"signal-trading-bot/internal/database"
	"signal-trading-bot/internal/events"
	"signal-trading-bot/internal/indicator"
	"signal-trading-bot/internal/logging"
	"signal-trading-bot/internal/market"
	"signal-trading-bot/internal/risk"
	"signal-trading-bot/internal/scoring"
	"signal-trading-bot/internal/sizing"
	"signal-trading-bot/internal/vault"
)

// repositoryCooldown satisfies the risk gate's cooldown check from the
// signals table when Redis is not deployed.
type repositoryCooldown struct {
	repo *database.Repository
}

func (r repositoryCooldown) InCooldown(ctx context.Context, symbol string, window time.Duration) (bool, error) {
	return r.repo.HasRecentExecutedSignal(ctx, symbol, window)
}

// applyStoredOverrides layers the database-managed strategy row and global
// settings over the file/env configuration, seeding missing rows from the
// current config so they can be tuned without a redeploy.
func applyStoredOverrides(ctx context.Context, repo *database.Repository, cfg *config.Config, logger zerolog.Logger) {
	name := cfg.ScoringConfig.StrategyName

	strat, err := repo.GetStrategyConfig(ctx, name)
	switch {
	case err != nil:
		logger.Warn().Err(err).Str("strategy", name).Msg("Failed to load strategy config, using file config")
	case strat == nil:
		seed := &database.StrategyConfig{
			Name:                 name,
			TradingType:          string(scoring.TradingSpot),
			MinConfidence:        cfg.RiskConfig.MinConfidence,
			MaxPositionSize:      cfg.RiskConfig.MaxPositionSize,
			RiskPercentage:       cfg.RiskConfig.RiskPercentage,
			StopLossPercentage:   cfg.RiskConfig.StopLossPercentage,
			TakeProfitPercentage: cfg.RiskConfig.TakeProfitPercentage,
			Enabled:              true,
		}
		if cfg.ScoringConfig.CombinedEnabled {
			seed.TradingType = string(scoring.TradingBoth)
		}
		if err := repo.UpsertStrategyConfig(ctx, seed); err != nil {
			logger.Warn().Err(err).Str("strategy", name).Msg("Failed to seed strategy config")
		} else {
			logger.Info().Str("strategy", name).Msg("Seeded strategy config from file config")
		}
	case !strat.Enabled:
		logger.Warn().Str("strategy", name).Msg("Strategy config row is disabled, using file config")
	default:
		cfg.RiskConfig.MinConfidence = strat.MinConfidence
		cfg.RiskConfig.MaxPositionSize = strat.MaxPositionSize
		cfg.RiskConfig.RiskPercentage = strat.RiskPercentage
		cfg.RiskConfig.StopLossPercentage = strat.StopLossPercentage
		cfg.RiskConfig.TakeProfitPercentage = strat.TakeProfitPercentage
		logger.Info().
			Str("strategy", name).
			Float64("min_confidence", strat.MinConfidence).
			Float64("risk_percentage", strat.RiskPercentage).
			Msg("Loaded strategy config")
	}

	if enabled, err := repo.ListEnabledStrategyConfigs(ctx); err == nil {
		logger.Info().Int("enabled_strategies", len(enabled)).Msg("Strategy configs loaded")
	}

	settings, err := repo.GetGlobalSettings(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load global settings")
		return
	}

	// The trading_enabled flag is the operator kill switch; everything
	// else in the row mirrors the effective config for inspection.
	if !settings.TradingEnabled && !cfg.TradingConfig.DryRun {
		logger.Warn().Msg("Trading disabled in global settings, forcing dry run")
		cfg.TradingConfig.DryRun = true
	}
	settings.MaxConcurrentPositions = cfg.RiskConfig.MaxConcurrentPositions
	settings.MaxDailyTrades = cfg.RiskConfig.MaxDailyTrades
	settings.CooldownMinutes = cfg.RiskConfig.CooldownMinutes
	if err := repo.UpdateGlobalSettings(ctx, settings); err != nil {
		logger.Warn().Err(err).Msg("Failed to sync global settings")
	}
}

// resolveAPIKey returns the exchange API key to attach to market data
// requests, preferring Vault and seeding it from the config on first run.
// An empty key is fine; public endpoints need none.
func resolveAPIKey(ctx context.Context, vaultClient *vault.Client, cfg *config.Config, logger zerolog.Logger) string {
	if !vaultClient.IsEnabled() {
		return cfg.DataSourceConfig.APIKey
	}

	if cfg.DataSourceConfig.APIKey != "" {
		creds := vault.Credentials{
			APIKey:    cfg.DataSourceConfig.APIKey,
			SecretKey: cfg.DataSourceConfig.SecretKey,
			IsTestnet: cfg.DataSourceConfig.TestNet,
		}
		if err := vaultClient.StoreCredentials(ctx, creds); err != nil {
			logger.Warn().Err(err).Msg("Failed to store credentials in vault")
		}
	}

	creds, err := vaultClient.GetCredentials(ctx, cfg.DataSourceConfig.TestNet)
	if err != nil {
		logger.Warn().Err(err).Msg("No exchange credentials in vault, using public endpoints")
		return ""
	}
	return creds.APIKey
}

func main() {
	sampleConfig := flag.String("generate-config", "", "write a sample config file to the given path and exit")
	flag.Parse()

	if *sampleConfig != "" {
		if err := config.GenerateSampleConfig(*sampleConfig); err != nil {
			log.Fatal().Err(err).Msg("Failed to generate sample config")
		}
		log.Info().Str("path", *sampleConfig).Msg("Sample config written")
		return
	}

	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(&logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     cfg.LoggingConfig.Output,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})
	logger := logging.Component("main")
	logger.Info().Msg("Structured logging initialized")

	eventBus := events.NewEventBus()

	// Database
	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	repo := database.NewRepository(db)
	applyStoredOverrides(ctx, repo, cfg, logger)

	// Redis-backed cooldown tracking, falling back to the database check
	// inside the risk gate when disabled.
	var cooldownTracker *database.RedisCooldownTracker
	var cooldownChecker risk.CooldownChecker
	var cooldownRecorder bot.CooldownRecorder
	if cfg.RedisConfig.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Address,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
			PoolSize: cfg.RedisConfig.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		cooldownTracker = database.NewRedisCooldownTracker(redisClient)
		cooldownChecker = cooldownTracker
		cooldownRecorder = cooldownTracker
		logger.Info().Str("address", cfg.RedisConfig.Address).Msg("Redis cooldown tracking enabled")
	} else {
		cooldownChecker = repositoryCooldown{repo: repo}
		logger.Info().Msg("Redis disabled, using database cooldown checks")
	}

	// Vault holds exchange credentials when live trading is enabled.
	vaultClient, err := vault.NewClient(cfg.VaultConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create vault client")
	}
	if vaultClient.IsEnabled() {
		if err := vaultClient.Health(ctx); err != nil {
			log.Fatal().Err(err).Msg("Vault health check failed")
		}
		logger.Info().Str("address", cfg.VaultConfig.Address).Msg("Vault connected")
	}

	// Market data sources
	var spotSource, futuresSource market.DataSource
	if cfg.DataSourceConfig.MockMode {
		spotSource = market.NewSyntheticDataSource(cfg.DataSourceConfig.MockSeed)
		futuresSource = market.NewSyntheticDataSource(cfg.DataSourceConfig.MockSeed)
		logger.Info().Msg("Mock mode enabled, using synthetic market data")
	} else {
		apiKey := resolveAPIKey(ctx, vaultClient, cfg, logger)
		spot := market.NewLiveDataSource(cfg.DataSourceConfig.BaseURL, logging.Component("spot_data"))
		futures := market.NewLiveDataSource(cfg.DataSourceConfig.FuturesBaseURL, logging.Component("futures_data"))
		if apiKey != "" {
			spot.SetAPIKey(apiKey)
			futures.SetAPIKey(apiKey)
			logger.Info().Msg("Exchange API key attached to market data requests")
		}
		spotSource = spot
		futuresSource = futures
	}

	// Scoring model
	model, err := scoring.NewModel(scoring.Mode(cfg.ScoringConfig.Mode))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid scoring mode")
	}

	indicatorCfg := indicator.DefaultConfig()
	if cfg.ScoringConfig.SignalLine == "ema" {
		indicatorCfg.SignalLine = indicator.SignalLineEMA
	}
	engine := indicator.NewEngine(indicatorCfg)

	sizer := sizing.NewPositionSizer(sizing.NewStaticPrecisionProvider())
	gate := risk.NewGate(cooldownChecker)

	// Execution: paper trading only until an exchange executor is wired.
	trader := bot.NewPaperTrader(cfg.TradingConfig.AccountBalance)
	if !cfg.TradingConfig.DryRun {
		logger.Warn().Msg("Live execution not configured, forcing dry run")
		cfg.TradingConfig.DryRun = true
	}

	signalBot, err := bot.NewSignalBot(bot.Deps{
		Config:        cfg,
		SpotSource:    spotSource,
		FuturesSource: futuresSource,
		Engine:        engine,
		Model:         model,
		Sizer:         sizer,
		Gate:          gate,
		Store:         repo,
		Cooldown:      cooldownRecorder,
		DailyCounter:  repo,
		EventBus:      eventBus,
		Executor:      trader,
		Account:       trader,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create signal bot")
	}

	if err := signalBot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start signal bot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutdown signal received")
	signalBot.Stop()

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	if metrics, err := repo.GetTradingMetrics(ctx, midnight); err != nil {
		logger.Warn().Err(err).Msg("Failed to load trading metrics")
	} else {
		logger.Info().
			Int("signals", metrics.TotalSignals).
			Int("executed", metrics.ExecutedSignals).
			Float64("execution_rate", metrics.ExecutionRate).
			Float64("avg_confidence", metrics.AvgConfidence).
			Msg("Trading metrics since midnight UTC")
	}
}
