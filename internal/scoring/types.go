package scoring

import "time"

// SignalType classifies the trade decision.
type SignalType string

const (
	StrongBuy  SignalType = "STRONG_BUY"
	Buy        SignalType = "BUY"
	Hold       SignalType = "HOLD"
	Sell       SignalType = "SELL"
	StrongSell SignalType = "STRONG_SELL"
)

// IsBuy reports whether the signal is in the buy family.
func (s SignalType) IsBuy() bool {
	return s == Buy || s == StrongBuy
}

// IsSell reports whether the signal is in the sell family.
func (s SignalType) IsSell() bool {
	return s == Sell || s == StrongSell
}

// TradingType identifies which market a signal targets.
type TradingType string

const (
	TradingSpot    TradingType = "SPOT"
	TradingFutures TradingType = "FUTURES"
	TradingBoth    TradingType = "BOTH"
)

// Strength is the categorical conviction level derived from confidence.
type Strength string

const (
	StrengthWeak       Strength = "WEAK"
	StrengthModerate   Strength = "MODERATE"
	StrengthStrong     Strength = "STRONG"
	StrengthVeryStrong Strength = "VERY_STRONG"
)

// TimeHorizon is the expected holding period for a signal.
type TimeHorizon string

const (
	HorizonShort  TimeHorizon = "SHORT"
	HorizonMedium TimeHorizon = "MEDIUM"
	HorizonLong   TimeHorizon = "LONG"
)

// Sentiment is the broad market read attached to a signal.
type Sentiment string

const (
	SentimentBullish Sentiment = "BULLISH"
	SentimentBearish Sentiment = "BEARISH"
	SentimentNeutral Sentiment = "NEUTRAL"
)

// Score holds the per-layer breakdown behind a signal. Basic-mode signals
// populate only Total (an integer point count); enhanced-mode signals carry
// all six layers plus the weighted total in [0, 10].
type Score struct {
	Trend             float64 `json:"trend"`
	Momentum          float64 `json:"momentum"`
	Volume            float64 `json:"volume"`
	Volatility        float64 `json:"volatility"`
	SupportResistance float64 `json:"support_resistance"`
	MarketStructure   float64 `json:"market_structure"`
	Total             float64 `json:"total"`
}

// Signal is the output of a scoring model. Symbol, trading type and
// creation time are filled by the caller; the model supplies everything
// derived from market data.
type Signal struct {
	Symbol          string      `json:"symbol"`
	TradingType     TradingType `json:"trading_type"`
	SignalType      SignalType  `json:"signal_type"`
	Confidence      float64     `json:"confidence"`
	Strength        Strength    `json:"strength"`
	Score           Score       `json:"score"`
	TargetPrice     float64     `json:"target_price"`
	StopLossPrice   float64     `json:"stop_loss_price"`
	TimeHorizon     TimeHorizon `json:"time_horizon"`
	MarketSentiment Sentiment   `json:"market_sentiment"`
	CreatedAt       time.Time   `json:"created_at"`
	Executed        bool        `json:"executed"`
}

// strengthFromConfidence maps continuous confidence onto the categorical
// strength scale used by position sizing.
func strengthFromConfidence(confidence float64) Strength {
	switch {
	case confidence >= 0.85:
		return StrengthVeryStrong
	case confidence >= 0.70:
		return StrengthStrong
	case confidence >= 0.50:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}
