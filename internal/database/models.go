package database

import "time"

// SignalRecord is a persisted trading signal with its score breakdown.
type SignalRecord struct {
	ID          int64    `json:"id"`
	TraceID     string   `json:"trace_id"`
	Symbol      string   `json:"symbol"`
	SignalType  string   `json:"signal_type"`
	TradingType string   `json:"trading_type"`
	Strength    string   `json:"strength"`
	Confidence  float64  `json:"confidence"`
	Price       float64  `json:"price"`
	TargetPrice *float64 `json:"target_price,omitempty"`
	StopLoss    *float64 `json:"stop_loss,omitempty"`
	TimeHorizon string   `json:"time_horizon"`
	Sentiment   string   `json:"sentiment"`

	TrendScore             float64 `json:"trend_score"`
	MomentumScore          float64 `json:"momentum_score"`
	VolumeScore            float64 `json:"volume_score"`
	VolatilityScore        float64 `json:"volatility_score"`
	SupportResistanceScore float64 `json:"support_resistance_score"`
	MarketStructureScore   float64 `json:"market_structure_score"`
	TotalScore             float64 `json:"total_score"`

	StrategyName    string     `json:"strategy_name"`
	Executed        bool       `json:"executed"`
	ExecutedPrice   *float64   `json:"executed_price,omitempty"`
	ExecutedAt      *time.Time `json:"executed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// StrategyConfig is a per-strategy tuning row.
type StrategyConfig struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	TradingType          string    `json:"trading_type"`
	MinConfidence        float64   `json:"min_confidence"`
	MaxPositionSize      float64   `json:"max_position_size"`
	RiskPercentage       float64   `json:"risk_percentage"`
	StopLossPercentage   float64   `json:"stop_loss_percentage"`
	TakeProfitPercentage float64   `json:"take_profit_percentage"`
	Enabled              bool      `json:"enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// GlobalSettings is the single-row runtime configuration.
type GlobalSettings struct {
	TradingEnabled         bool      `json:"trading_enabled"`
	MaxConcurrentPositions int       `json:"max_concurrent_positions"`
	MaxDailyTrades         int       `json:"max_daily_trades"`
	CooldownMinutes        int       `json:"cooldown_minutes"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// TradingMetrics aggregates signal outcomes over a time range.
type TradingMetrics struct {
	TotalSignals    int     `json:"total_signals"`
	ExecutedSignals int     `json:"executed_signals"`
	BuySignals      int     `json:"buy_signals"`
	SellSignals     int     `json:"sell_signals"`
	HoldSignals     int     `json:"hold_signals"`
	AvgConfidence   float64 `json:"avg_confidence"`
	ExecutionRate   float64 `json:"execution_rate"`
}
