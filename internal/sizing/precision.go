package sizing

import (
	"math"

	"signal-trading-bot/internal/market"
)

// SymbolPrecision describes the exchange order-size constraints for one
// symbol on one market.
type SymbolPrecision struct {
	StepSize float64 // quantity increment
	TickSize float64 // price increment
	MinQty   float64 // smallest tradable quantity
}

// DefaultPrecision is used for symbols absent from both tables.
var DefaultPrecision = SymbolPrecision{StepSize: 0.001, TickSize: 0.01, MinQty: 0.001}

// PrecisionProvider resolves the order-size constraints for a symbol.
// Implementations must return a usable entry for every symbol, falling
// back to DefaultPrecision for unknown ones.
type PrecisionProvider interface {
	Lookup(symbol string, marketType market.MarketType) SymbolPrecision
}

// StaticPrecisionProvider serves precision from fixed spot and futures
// tables. Production deployments would refresh these from exchange info;
// the defaults below cover the majors.
type StaticPrecisionProvider struct {
	spot    map[string]SymbolPrecision
	futures map[string]SymbolPrecision
}

// NewStaticPrecisionProvider creates a provider with the built-in tables.
func NewStaticPrecisionProvider() *StaticPrecisionProvider {
	return &StaticPrecisionProvider{
		spot: map[string]SymbolPrecision{
			"BTCUSDT":  {StepSize: 0.001, TickSize: 0.01, MinQty: 0.001},
			"ETHUSDT":  {StepSize: 0.001, TickSize: 0.01, MinQty: 0.001},
			"BNBUSDT":  {StepSize: 0.01, TickSize: 0.1, MinQty: 0.01},
			"SOLUSDT":  {StepSize: 0.01, TickSize: 0.01, MinQty: 0.01},
			"XRPUSDT":  {StepSize: 1, TickSize: 0.0001, MinQty: 1},
			"ADAUSDT":  {StepSize: 1, TickSize: 0.0001, MinQty: 1},
			"DOGEUSDT": {StepSize: 1, TickSize: 0.00001, MinQty: 1},
		},
		futures: map[string]SymbolPrecision{
			"BTCUSDT":  {StepSize: 0.001, TickSize: 0.1, MinQty: 0.001},
			"ETHUSDT":  {StepSize: 0.001, TickSize: 0.01, MinQty: 0.001},
			"BNBUSDT":  {StepSize: 0.01, TickSize: 0.01, MinQty: 0.01},
			"SOLUSDT":  {StepSize: 1, TickSize: 0.001, MinQty: 1},
			"XRPUSDT":  {StepSize: 1, TickSize: 0.0001, MinQty: 1},
			"ADAUSDT":  {StepSize: 1, TickSize: 0.0001, MinQty: 1},
			"DOGEUSDT": {StepSize: 1, TickSize: 0.00001, MinQty: 1},
		},
	}
}

// Lookup implements PrecisionProvider.
func (p *StaticPrecisionProvider) Lookup(symbol string, marketType market.MarketType) SymbolPrecision {
	table := p.spot
	if marketType == market.MarketFutures {
		table = p.futures
	}

	if prec, ok := table[symbol]; ok {
		return prec
	}
	return DefaultPrecision
}

// RoundQuantity snaps a quantity to the step size. Whole-unit steps floor
// to the step; fractional steps round to the decimal precision the step
// implies. Rounding is idempotent: rounding an already-rounded quantity
// returns it unchanged.
func RoundQuantity(quantity, stepSize float64) float64 {
	if quantity <= 0 || stepSize <= 0 {
		return 0
	}

	if stepSize >= 1 {
		steps := math.Floor(quantity / stepSize)
		if steps < 1 {
			return 0
		}
		return steps * stepSize
	}

	precision := decimalsOf(stepSize)
	pow := math.Pow(10, float64(precision))
	return math.Round(quantity*pow) / pow
}

// RoundPrice snaps a price to the nearest tick using round-half-to-even on
// the quotient.
func RoundPrice(price, tickSize float64) float64 {
	if price <= 0 || tickSize <= 0 {
		return 0
	}

	snapped := math.RoundToEven(price/tickSize) * tickSize

	// Trim the floating point noise the multiplication reintroduces.
	precision := decimalsOf(tickSize)
	pow := math.Pow(10, float64(precision))
	return math.Round(snapped*pow) / pow
}

// decimalsOf returns the number of decimal places a step or tick implies:
// 0.001 maps to 3, 1 maps to 0.
func decimalsOf(step float64) int {
	precision := 0
	for step < 0.999999999 && precision < 10 {
		step *= 10
		precision++
	}
	return precision
}
