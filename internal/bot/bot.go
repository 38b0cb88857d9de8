package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"signal-trading-bot/config"
	"signal-trading-bot/internal/database"
	"signal-trading-bot/internal/events"
	"signal-trading-bot/internal/indicator"
	"signal-trading-bot/internal/logging"
	"signal-trading-bot/internal/market"
	"signal-trading-bot/internal/risk"
	"signal-trading-bot/internal/scoring"
	"signal-trading-bot/internal/sizing"
)

// SignalState tracks a signal through its execution lifecycle.
type SignalState string

const (
	StateCreated   SignalState = "CREATED"
	StateExecuting SignalState = "EXECUTING"
	StateExecuted  SignalState = "EXECUTED"
	StateFailed    SignalState = "FAILED"
	StateRejected  SignalState = "REJECTED"
)

// SignalStore persists signals and their outcomes.
type SignalStore interface {
	CreateSignal(ctx context.Context, sig *database.SignalRecord) error
	MarkSignalExecuted(ctx context.Context, id int64, price float64, executedAt time.Time) error
	MarkSignalRejected(ctx context.Context, id int64, reason string) error
}

// CooldownRecorder starts a re-entry cooldown after an executed trade.
type CooldownRecorder interface {
	RecordTrade(ctx context.Context, entry database.CooldownEntry, window time.Duration) error
}

// DailyTradeCounter reports how many signals executed today from the
// signal store. It backs the daily-trade limit when the account snapshot
// is not authoritative, e.g. after a restart mid-day.
type DailyTradeCounter interface {
	CountDailyExecutedSignals(ctx context.Context) (int, error)
}

// Deps wires the bot's collaborators. SpotSource, Engine, Model, Sizer,
// Gate, Store, Executor and Account are required; FuturesSource is needed
// only when combined scoring is enabled, and Cooldown and DailyCounter
// may be nil.
type Deps struct {
	Config        *config.Config
	SpotSource    market.DataSource
	FuturesSource market.DataSource
	Engine        *indicator.Engine
	Model         scoring.Model
	Sizer         *sizing.PositionSizer
	Gate          *risk.Gate
	Store         SignalStore
	Cooldown      CooldownRecorder
	DailyCounter  DailyTradeCounter
	EventBus      *events.EventBus
	Executor      OrderExecutor
	Account       AccountProvider
}

// SignalBot runs the scan loop: fetch market data, score it, and push
// passing signals through the risk gate into execution.
type SignalBot struct {
	config        *config.Config
	spotSource    market.DataSource
	futuresSource market.DataSource
	engine        *indicator.Engine
	model         scoring.Model
	sizer         *sizing.PositionSizer
	gate          *risk.Gate
	store         SignalStore
	cooldown      CooldownRecorder
	dailyCounter  DailyTradeCounter
	eventBus      *events.EventBus
	executor      OrderExecutor
	account       AccountProvider
	logger        zerolog.Logger

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewSignalBot creates a bot from its dependencies.
func NewSignalBot(deps Deps) (*SignalBot, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.SpotSource == nil || deps.Engine == nil || deps.Model == nil {
		return nil, fmt.Errorf("data source, indicator engine and scoring model are required")
	}
	if deps.Sizer == nil || deps.Gate == nil || deps.Store == nil {
		return nil, fmt.Errorf("sizer, risk gate and signal store are required")
	}
	if deps.Executor == nil || deps.Account == nil {
		return nil, fmt.Errorf("executor and account provider are required")
	}
	if deps.Config.ScoringConfig.CombinedEnabled && deps.FuturesSource == nil {
		return nil, fmt.Errorf("combined scoring requires a futures data source")
	}
	if deps.EventBus == nil {
		deps.EventBus = events.NewEventBus()
	}

	return &SignalBot{
		config:        deps.Config,
		spotSource:    deps.SpotSource,
		futuresSource: deps.FuturesSource,
		engine:        deps.Engine,
		model:         deps.Model,
		sizer:         deps.Sizer,
		gate:          deps.Gate,
		store:         deps.Store,
		cooldown:      deps.Cooldown,
		dailyCounter:  deps.DailyCounter,
		eventBus:      deps.EventBus,
		executor:      deps.Executor,
		account:       deps.Account,
		logger:        logging.Component("signal_bot"),
		stopChan:      make(chan struct{}),
	}, nil
}

// Start launches the scan loop. It returns immediately; the loop runs
// until Stop is called.
func (b *SignalBot) Start() error {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return fmt.Errorf("bot already running")
	}
	b.isRunning = true
	b.stopChan = make(chan struct{})
	b.mu.Unlock()

	b.logger.Info().
		Str("model", b.model.Name()).
		Strs("symbols", b.config.TradingConfig.Symbols).
		Bool("dry_run", b.config.TradingConfig.DryRun).
		Bool("combined", b.config.ScoringConfig.CombinedEnabled).
		Msg("Signal bot started")

	b.eventBus.Publish(events.Event{Type: events.EventBotStarted, Data: map[string]interface{}{
		"model":   b.model.Name(),
		"symbols": b.config.TradingConfig.Symbols,
	}})

	b.wg.Add(1)
	go b.run()

	return nil
}

// Stop halts the scan loop and waits for the current scan to finish.
func (b *SignalBot) Stop() {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return
	}
	b.isRunning = false
	close(b.stopChan)
	b.mu.Unlock()

	b.wg.Wait()

	b.eventBus.Publish(events.Event{Type: events.EventBotStopped, Data: nil})
	b.logger.Info().Msg("Signal bot stopped")
}

// IsRunning reports whether the scan loop is active.
func (b *SignalBot) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isRunning
}

func (b *SignalBot) run() {
	defer b.wg.Done()

	interval := time.Duration(b.config.TradingConfig.ScanIntervalSecs) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	// First scan runs immediately, then on the ticker.
	b.ScanOnce(context.Background())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.ScanOnce(context.Background())
		case <-b.stopChan:
			return
		}
	}
}

// ScanOnce analyzes every configured symbol sequentially, pausing between
// symbols to stay under exchange rate limits.
func (b *SignalBot) ScanOnce(ctx context.Context) {
	delay := time.Duration(b.config.TradingConfig.SymbolDelayMs) * time.Millisecond

	for i, symbol := range b.config.TradingConfig.Symbols {
		if i > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-b.stopChan:
				return
			}
		}

		if err := b.analyzeSymbol(ctx, symbol); err != nil {
			b.logger.Error().Err(err).Str("symbol", symbol).Msg("Symbol analysis failed")
			b.eventBus.PublishError("signal_bot", fmt.Sprintf("analysis failed for %s", symbol), err)
		}
	}
}

// analyzeSymbol runs the full pipeline for one symbol: data, indicators,
// scoring, persistence, risk checks and execution.
func (b *SignalBot) analyzeSymbol(ctx context.Context, symbol string) error {
	ctx, logger := logging.WithTraceContext(ctx, b.logger)
	traceID := logging.TraceIDFromContext(ctx)
	logger = logger.With().Str("symbol", symbol).Logger()
	ctx = logging.NewContext(ctx, logger)

	spotSig, spotSet, price, err := b.score(symbol, b.spotSource, scoring.TradingSpot)
	if err != nil {
		return err
	}

	final := spotSig
	volatility := spotSet.Volatility
	marketType := market.MarketSpot

	if b.config.ScoringConfig.CombinedEnabled {
		futSig, futSet, futPrice, err := b.score(symbol, b.futuresSource, scoring.TradingFutures)
		if err != nil {
			return err
		}
		final = scoring.Combine(spotSig, futSig)
		final.Symbol = symbol
		final.CreatedAt = time.Now()
		// Combined orders route to futures, so futures data drives sizing.
		volatility = futSet.Volatility
		marketType = market.MarketFutures
		price = futPrice
	}

	record := b.toRecord(final, traceID, price, marketType)
	if err := b.store.CreateSignal(ctx, record); err != nil {
		return fmt.Errorf("failed to persist signal: %w", err)
	}

	sigLogger := logging.WithTraceID(logging.SignalContext(symbol, string(final.SignalType), final.Confidence), traceID)
	sigLogger.Info().
		Str("strength", string(final.Strength)).
		Float64("total_score", final.Score.Total).
		Int64("signal_id", record.ID).
		Msg("Signal generated")

	b.eventBus.PublishSignalGenerated(symbol, string(final.SignalType), final.Confidence, price)

	if final.SignalType == scoring.Hold {
		return nil
	}

	return b.executeSignal(ctx, final, record.ID, price, volatility, marketType)
}

// score fetches data from one market and runs it through the model.
func (b *SignalBot) score(symbol string, source market.DataSource, tradingType scoring.TradingType) (*scoring.Signal, *indicator.Set, float64, error) {
	candles, err := source.GetCandles(symbol, b.config.TradingConfig.Interval, b.config.TradingConfig.CandleLimit)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to fetch candles: %w", err)
	}

	ticker, err := source.GetTicker(symbol)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to fetch ticker: %w", err)
	}

	set, err := b.engine.Compute(candles)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("indicator computation failed: %w", err)
	}

	snapshot := scoring.MarketSnapshot{
		Price:        ticker.LastPrice,
		Change24hPct: ticker.PriceChangePercent,
		Volume24h:    ticker.QuoteVolume,
	}

	sig := b.model.Score(set, snapshot)
	sig.Symbol = symbol
	sig.TradingType = tradingType
	sig.CreatedAt = time.Now()

	return sig, set, ticker.LastPrice, nil
}

// executeSignal walks the state machine CREATED -> EXECUTING -> EXECUTED,
// rejecting at the risk gate or failing at the executor.
func (b *SignalBot) executeSignal(ctx context.Context, sig *scoring.Signal, signalID int64, price, volatility float64, marketType market.MarketType) error {
	logger := logging.FromContext(ctx)
	state := StateCreated

	acct, err := b.account.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to snapshot account: %w", err)
	}

	limits := risk.Limits{
		MinConfidence:          b.config.RiskConfig.MinConfidence,
		MaxConcurrentPositions: b.config.RiskConfig.MaxConcurrentPositions,
		MaxDailyTrades:         b.config.RiskConfig.MaxDailyTrades,
		CooldownPeriod:         b.config.RiskConfig.CooldownPeriod(),
	}

	portfolio := acct.Portfolio
	if b.dailyCounter != nil {
		// The persisted count survives restarts; take whichever is higher.
		if n, err := b.dailyCounter.CountDailyExecutedSignals(ctx); err != nil {
			logger.Warn().Err(err).Msg("Daily trade count unavailable, using account snapshot")
		} else if n > portfolio.DailyTrades {
			portfolio.DailyTrades = n
		}
	}

	ok, reason := b.gate.CanOpenPosition(ctx, sig, limits, portfolio, volatility)
	if !ok {
		state = StateRejected
		riskLogger := logging.WithTraceID(logging.RiskContext(sig.Symbol, sig.Confidence, volatility), logging.TraceIDFromContext(ctx))
		riskLogger.Info().
			Str("state", string(state)).
			Str("reason", reason).
			Msg("Signal rejected by risk gate")

		if err := b.store.MarkSignalRejected(ctx, signalID, reason); err != nil {
			logger.Warn().Err(err).Msg("Failed to record rejection")
		}
		b.eventBus.PublishSignalRejected(sig.Symbol, string(sig.SignalType), reason)
		return nil
	}

	quantity := b.sizer.CalculateQuantity(sizing.SizingInput{
		Symbol:          sig.Symbol,
		MarketType:      marketType,
		Balance:         acct.Balance,
		RiskPercentage:  b.config.RiskConfig.RiskPercentage,
		MaxPositionSize: b.config.RiskConfig.MaxPositionSize,
		Confidence:      sig.Confidence,
		Strength:        sig.Strength,
		Volatility:      volatility,
		Price:           price,
	})
	if quantity <= 0 {
		reason := "position size below symbol minimum"
		if err := b.store.MarkSignalRejected(ctx, signalID, reason); err != nil {
			logger.Warn().Err(err).Msg("Failed to record rejection")
		}
		b.eventBus.PublishSignalRejected(sig.Symbol, string(sig.SignalType), reason)
		return nil
	}

	side := SideBuy
	if sig.SignalType.IsSell() {
		side = SideSell
	}

	state = StateExecuting
	logger.Info().
		Str("state", string(state)).
		Str("side", string(side)).
		Float64("quantity", quantity).
		Float64("price", price).
		Msg("Executing signal")

	fill, err := b.executor.ExecuteOrder(ctx, Order{
		Symbol:     sig.Symbol,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		MarketType: marketType,
	})
	if err != nil {
		state = StateFailed
		logger.Error().Err(err).Str("state", string(state)).Msg("Order execution failed")

		if markErr := b.store.MarkSignalRejected(ctx, signalID, fmt.Sprintf("execution failed: %v", err)); markErr != nil {
			logger.Warn().Err(markErr).Msg("Failed to record execution failure")
		}
		b.eventBus.PublishError("signal_bot", fmt.Sprintf("execution failed for %s", sig.Symbol), err)
		return nil
	}

	state = StateExecuted
	if err := b.store.MarkSignalExecuted(ctx, signalID, fill.Price, fill.Time); err != nil {
		logger.Warn().Err(err).Msg("Failed to record execution")
	}

	logger.Info().
		Str("state", string(state)).
		Float64("fill_price", fill.Price).
		Float64("quantity", fill.Quantity).
		Msg("Signal executed")

	b.eventBus.PublishSignalExecuted(signalID, sig.Symbol, fill.Price, fill.Quantity)

	if b.cooldown != nil {
		entry := database.CooldownEntry{
			Symbol:     sig.Symbol,
			SignalID:   signalID,
			SignalType: string(sig.SignalType),
			Price:      fill.Price,
		}
		if err := b.cooldown.RecordTrade(ctx, entry, limits.CooldownPeriod); err != nil {
			logger.Warn().Err(err).Msg("Failed to record cooldown")
		}
	}

	return nil
}

// toRecord maps a scored signal onto its persistence row. Target and stop
// prices are snapped to the symbol's tick size so the stored values are
// directly placeable as orders.
func (b *SignalBot) toRecord(sig *scoring.Signal, traceID string, price float64, marketType market.MarketType) *database.SignalRecord {
	record := &database.SignalRecord{
		TraceID:     traceID,
		Symbol:      sig.Symbol,
		SignalType:  string(sig.SignalType),
		TradingType: string(sig.TradingType),
		Strength:    string(sig.Strength),
		Confidence:  sig.Confidence,
		Price:       price,
		TimeHorizon: string(sig.TimeHorizon),
		Sentiment:   string(sig.MarketSentiment),

		TrendScore:             sig.Score.Trend,
		MomentumScore:          sig.Score.Momentum,
		VolumeScore:            sig.Score.Volume,
		VolatilityScore:        sig.Score.Volatility,
		SupportResistanceScore: sig.Score.SupportResistance,
		MarketStructureScore:   sig.Score.MarketStructure,
		TotalScore:             sig.Score.Total,

		StrategyName: b.model.Name(),
	}

	if sig.TargetPrice > 0 {
		target := b.sizer.RoundOrderPrice(sig.Symbol, marketType, sig.TargetPrice)
		record.TargetPrice = &target
	}
	if sig.StopLossPrice > 0 {
		stop := b.sizer.RoundOrderPrice(sig.Symbol, marketType, sig.StopLossPrice)
		record.StopLoss = &stop
	}

	return record
}
