package sizing

import (
	"math"

	"github.com/rs/zerolog"

	"signal-trading-bot/internal/logging"
	"signal-trading-bot/internal/market"
	"signal-trading-bot/internal/scoring"
)

// ============================================================================
// POSITION SIZER
// ============================================================================
// Converts a scored signal plus account state into an exchange-ready order
// quantity. The chain is risk budget -> cap -> confidence and strength
// scaling -> volatility damping -> price division -> step rounding.

// SizingInput carries everything quantity calculation needs.
type SizingInput struct {
	Symbol     string
	MarketType market.MarketType

	Balance         float64 // available quote balance
	RiskPercentage  float64 // percent of balance risked per trade
	MaxPositionSize float64 // absolute quote-value cap

	Confidence float64
	Strength   scoring.Strength
	Volatility float64

	Price float64 // current price used for quantity conversion
}

// PositionSizer computes order quantities honoring symbol precision.
type PositionSizer struct {
	precision PrecisionProvider
	logger    zerolog.Logger
}

// NewPositionSizer creates a sizer backed by the given precision provider.
func NewPositionSizer(precision PrecisionProvider) *PositionSizer {
	return &PositionSizer{
		precision: precision,
		logger:    logging.Component("position_sizer"),
	}
}

// strengthMultiplier scales the position by signal strength.
func strengthMultiplier(strength scoring.Strength) float64 {
	switch strength {
	case scoring.StrengthVeryStrong:
		return 1.25
	case scoring.StrengthStrong:
		return 1.0
	case scoring.StrengthModerate:
		return 0.75
	default:
		return 0.5
	}
}

// volatilityMultiplier damps size as volatility rises, floored at half size.
func volatilityMultiplier(volatility float64) float64 {
	return math.Max(0.5, 1.0-volatility*10)
}

// CalculateQuantity returns the order quantity for the input, already
// snapped to the symbol's step size. It returns 0 when no valid order can
// be placed: non-positive price, zero budget, or a quantity that rounds
// below the symbol minimum.
func (s *PositionSizer) CalculateQuantity(input SizingInput) float64 {
	if input.Price <= 0 {
		s.logger.Warn().
			Str("symbol", input.Symbol).
			Float64("price", input.Price).
			Msg("Rejecting sizing request with non-positive price")
		return 0
	}

	riskAmount := input.Balance * input.RiskPercentage / 100
	baseSize := riskAmount
	if input.MaxPositionSize > 0 && baseSize > input.MaxPositionSize {
		baseSize = input.MaxPositionSize
	}

	adjusted := baseSize *
		input.Confidence *
		strengthMultiplier(input.Strength) *
		volatilityMultiplier(input.Volatility)

	if adjusted <= 0 {
		return 0
	}

	quantity := adjusted / input.Price

	prec := s.precision.Lookup(input.Symbol, input.MarketType)
	rounded := RoundQuantity(quantity, prec.StepSize)
	if rounded <= 0 || rounded < prec.MinQty {
		s.logger.Debug().
			Str("symbol", input.Symbol).
			Float64("raw_quantity", quantity).
			Float64("min_qty", prec.MinQty).
			Msg("Quantity below symbol minimum after rounding")
		return 0
	}

	s.logger.Debug().
		Str("symbol", input.Symbol).
		Str("market", string(input.MarketType)).
		Float64("risk_amount", riskAmount).
		Float64("adjusted_value", adjusted).
		Float64("quantity", rounded).
		Msg("Position size calculated")

	return rounded
}

// RoundOrderPrice snaps a limit or stop price to the symbol's tick size.
func (s *PositionSizer) RoundOrderPrice(symbol string, marketType market.MarketType, price float64) float64 {
	prec := s.precision.Lookup(symbol, marketType)
	return RoundPrice(price, prec.TickSize)
}
