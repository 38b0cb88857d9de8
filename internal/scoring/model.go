package scoring

import (
	"fmt"

	"signal-trading-bot/internal/indicator"
)

// Mode selects which scoring strategy analyzes a symbol.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeEnhanced Mode = "enhanced"
)

// MarketSnapshot carries the per-call market context alongside the
// indicator set: the latest traded price and 24hr rolling statistics.
type MarketSnapshot struct {
	Price        float64
	Change24hPct float64
	Volume24h    float64
}

// Model turns an indicator set plus market context into a trade signal.
// Implementations are stateless; the same inputs always produce the same
// signal.
type Model interface {
	// Score produces a signal. Symbol, trading type and creation time are
	// left for the caller to fill.
	Score(ind *indicator.Set, snapshot MarketSnapshot) *Signal

	// Name identifies the strategy for logs and persistence.
	Name() string
}

// NewModel constructs the scoring strategy for the given mode.
func NewModel(mode Mode) (Model, error) {
	switch mode {
	case ModeBasic:
		return &BasicModel{}, nil
	case ModeEnhanced:
		return &EnhancedModel{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring mode: %q", mode)
	}
}
