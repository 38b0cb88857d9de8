package risk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"signal-trading-bot/internal/logging"
	"signal-trading-bot/internal/scoring"
)

// ============================================================================
// RISK GATE
// ============================================================================
// Final veto before a signal becomes an order. Every check returns a reason
// string so rejected signals can be audited later.

const (
	// maxPortfolioHeat caps the estimated aggregate risk across open
	// positions, each position contributing 5% of its notional value.
	maxPortfolioHeat = 0.20
	positionHeatRate = 0.05

	// maxVolatility rejects entries into markets moving too fast to size.
	maxVolatility = 0.10

	// maxCorrelatedPositions limits simultaneous USDT-quoted exposure.
	maxCorrelatedPositions = 3
)

// Position is an open position as the gate sees it.
type Position struct {
	Symbol     string
	Quantity   float64
	EntryPrice float64
}

// Notional returns the quote value of the position at entry.
func (p Position) Notional() float64 {
	return p.Quantity * p.EntryPrice
}

// PortfolioState is a snapshot of the account the gate evaluates against.
type PortfolioState struct {
	Positions   []Position
	TotalValue  float64
	DailyTrades int
}

// Limits are the per-strategy thresholds the gate enforces.
type Limits struct {
	MinConfidence          float64
	MaxConcurrentPositions int
	MaxDailyTrades         int
	CooldownPeriod         time.Duration
}

// CooldownChecker reports whether a symbol traded too recently to re-enter.
type CooldownChecker interface {
	InCooldown(ctx context.Context, symbol string, window time.Duration) (bool, error)
}

// Gate runs the pre-trade risk checks.
type Gate struct {
	cooldown CooldownChecker
	logger   zerolog.Logger
}

// NewGate creates a gate. The cooldown checker may be nil, in which case
// the cooldown check is skipped.
func NewGate(cooldown CooldownChecker) *Gate {
	return &Gate{
		cooldown: cooldown,
		logger:   logging.Component("risk_gate"),
	}
}

// CanOpenPosition decides whether the signal may become an order. It
// returns false plus a human-readable reason on the first failed check.
func (g *Gate) CanOpenPosition(ctx context.Context, signal *scoring.Signal, limits Limits, portfolio PortfolioState, volatility float64) (bool, string) {
	if signal == nil {
		return false, "no signal"
	}

	if signal.SignalType == scoring.Hold {
		return false, "signal is HOLD"
	}

	if signal.Confidence < limits.MinConfidence {
		return false, fmt.Sprintf("confidence %.2f below minimum %.2f", signal.Confidence, limits.MinConfidence)
	}

	for _, pos := range portfolio.Positions {
		if pos.Symbol == signal.Symbol && pos.Quantity > 0 {
			return false, fmt.Sprintf("position already open for %s", signal.Symbol)
		}
	}

	if limits.MaxConcurrentPositions > 0 && len(portfolio.Positions) >= limits.MaxConcurrentPositions {
		return false, fmt.Sprintf("max concurrent positions reached (%d)", limits.MaxConcurrentPositions)
	}

	if limits.MaxDailyTrades > 0 && portfolio.DailyTrades >= limits.MaxDailyTrades {
		return false, fmt.Sprintf("daily trade limit reached (%d)", limits.MaxDailyTrades)
	}

	if heat := portfolioHeat(portfolio); heat > maxPortfolioHeat {
		return false, fmt.Sprintf("portfolio heat %.2f exceeds limit %.2f", heat, maxPortfolioHeat)
	}

	if volatility > maxVolatility {
		return false, fmt.Sprintf("volatility %.3f exceeds limit %.2f", volatility, maxVolatility)
	}

	if n := usdtPositionCount(portfolio.Positions); n > maxCorrelatedPositions {
		return false, fmt.Sprintf("too many correlated USDT positions (%d)", n)
	}

	if g.cooldown != nil && limits.CooldownPeriod > 0 {
		recent, err := g.cooldown.InCooldown(ctx, signal.Symbol, limits.CooldownPeriod)
		if err != nil {
			// Fail closed: an unreachable cooldown store blocks entries
			// rather than allowing rapid re-trades.
			g.logger.Error().Err(err).Str("symbol", signal.Symbol).Msg("Cooldown check failed")
			return false, "cooldown check unavailable"
		}
		if recent {
			return false, fmt.Sprintf("%s traded within cooldown window %s", signal.Symbol, limits.CooldownPeriod)
		}
	}

	return true, ""
}

// portfolioHeat estimates aggregate open risk as a fraction of total value.
func portfolioHeat(portfolio PortfolioState) float64 {
	if portfolio.TotalValue <= 0 {
		return 0
	}

	var atRisk float64
	for _, pos := range portfolio.Positions {
		atRisk += positionHeatRate * pos.Notional()
	}
	return atRisk / portfolio.TotalValue
}

func usdtPositionCount(positions []Position) int {
	count := 0
	for _, pos := range positions {
		if strings.HasSuffix(pos.Symbol, "USDT") {
			count++
		}
	}
	return count
}
