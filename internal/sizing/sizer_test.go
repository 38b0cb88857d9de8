package sizing

import (
	"math"
	"testing"

	"signal-trading-bot/internal/market"
	"signal-trading-bot/internal/scoring"
)

func TestCalculateQuantityChain(t *testing.T) {
	sizer := NewPositionSizer(NewStaticPrecisionProvider())

	// 10000 * 2% = 200, capped to 100, * 0.8 conf * 1.0 strong * 0.9 vol
	// damp = 72 quote units -> 0.00144 BTC -> 0.001 after step rounding.
	qty := sizer.CalculateQuantity(SizingInput{
		Symbol:          "BTCUSDT",
		MarketType:      market.MarketSpot,
		Balance:         10000,
		RiskPercentage:  2,
		MaxPositionSize: 100,
		Confidence:      0.8,
		Strength:        scoring.StrengthStrong,
		Volatility:      0.01,
		Price:           50000,
	})
	if qty != 0.001 {
		t.Errorf("quantity = %v, want 0.001", qty)
	}
}

func TestCalculateQuantityStrengthScaling(t *testing.T) {
	sizer := NewPositionSizer(NewStaticPrecisionProvider())

	base := SizingInput{
		Symbol:          "ETHUSDT",
		MarketType:      market.MarketSpot,
		Balance:         100000,
		RiskPercentage:  2,
		MaxPositionSize: 2000,
		Confidence:      1.0,
		Volatility:      0,
		Price:           2000,
	}

	tests := []struct {
		strength scoring.Strength
		want     float64
	}{
		{scoring.StrengthVeryStrong, 1.25},
		{scoring.StrengthStrong, 1.0},
		{scoring.StrengthModerate, 0.75},
		{scoring.StrengthWeak, 0.5},
	}

	for _, tt := range tests {
		input := base
		input.Strength = tt.strength
		if got := sizer.CalculateQuantity(input); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("strength %s quantity = %v, want %v", tt.strength, got, tt.want)
		}
	}
}

func TestVolatilityMultiplier(t *testing.T) {
	if got := volatilityMultiplier(0); got != 1.0 {
		t.Errorf("multiplier at zero volatility = %v, want 1.0", got)
	}
	if got := volatilityMultiplier(0.03); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("multiplier at 3%% volatility = %v, want 0.7", got)
	}
	// Beyond 5% the damping floors at half size.
	if got := volatilityMultiplier(0.2); got != 0.5 {
		t.Errorf("multiplier at 20%% volatility = %v, want floor 0.5", got)
	}
}

func TestCalculateQuantityRejections(t *testing.T) {
	sizer := NewPositionSizer(NewStaticPrecisionProvider())

	base := SizingInput{
		Symbol:          "BTCUSDT",
		MarketType:      market.MarketSpot,
		Balance:         10000,
		RiskPercentage:  2,
		MaxPositionSize: 100,
		Confidence:      0.8,
		Strength:        scoring.StrengthStrong,
		Price:           50000,
	}

	zeroPrice := base
	zeroPrice.Price = 0
	if got := sizer.CalculateQuantity(zeroPrice); got != 0 {
		t.Errorf("non-positive price quantity = %v, want 0", got)
	}

	negativePrice := base
	negativePrice.Price = -1
	if got := sizer.CalculateQuantity(negativePrice); got != 0 {
		t.Errorf("negative price quantity = %v, want 0", got)
	}

	zeroBalance := base
	zeroBalance.Balance = 0
	if got := sizer.CalculateQuantity(zeroBalance); got != 0 {
		t.Errorf("zero balance quantity = %v, want 0", got)
	}

	// A tiny budget rounds below BTCUSDT's 0.001 minimum.
	tiny := base
	tiny.Balance = 100
	tiny.MaxPositionSize = 0
	if got := sizer.CalculateQuantity(tiny); got != 0 {
		t.Errorf("below-minimum quantity = %v, want 0", got)
	}
}

func TestCalculateQuantityNoCap(t *testing.T) {
	sizer := NewPositionSizer(NewStaticPrecisionProvider())

	// MaxPositionSize 0 means uncapped: the full risk budget flows through.
	qty := sizer.CalculateQuantity(SizingInput{
		Symbol:          "ETHUSDT",
		MarketType:      market.MarketSpot,
		Balance:         10000,
		RiskPercentage:  2,
		MaxPositionSize: 0,
		Confidence:      1.0,
		Strength:        scoring.StrengthStrong,
		Volatility:      0,
		Price:           2000,
	})
	if qty != 0.1 {
		t.Errorf("uncapped quantity = %v, want 0.1", qty)
	}
}

func TestCalculateQuantityWholeStepFloor(t *testing.T) {
	sizer := NewPositionSizer(NewStaticPrecisionProvider())

	// 10000 * 2% = 200 -> cap 100 -> * 0.719 = 71.9 -> / 0.5 = 143.8,
	// floored to the whole-unit step.
	qty := sizer.CalculateQuantity(SizingInput{
		Symbol:          "XRPUSDT",
		MarketType:      market.MarketSpot,
		Balance:         10000,
		RiskPercentage:  2,
		MaxPositionSize: 100,
		Confidence:      0.719,
		Strength:        scoring.StrengthStrong,
		Volatility:      0,
		Price:           0.5,
	})
	if qty != 143 {
		t.Errorf("quantity = %v, want floored 143", qty)
	}
}

func TestRoundQuantity(t *testing.T) {
	tests := []struct {
		quantity float64
		step     float64
		want     float64
	}{
		{0.00144, 0.001, 0.001},
		{0.0017, 0.001, 0.002},
		{143.8, 1, 143},
		{0.9, 1, 0},    // below one whole step
		{5.4, 2, 4},    // multi-unit step floors to the step multiple
		{0, 0.001, 0},  // nothing to round
		{1.5, 0, 0},    // invalid step
		{-2, 0.001, 0}, // negative quantity
	}

	for _, tt := range tests {
		if got := RoundQuantity(tt.quantity, tt.step); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("RoundQuantity(%v, %v) = %v, want %v", tt.quantity, tt.step, got, tt.want)
		}
	}
}

func TestRoundQuantityIdempotent(t *testing.T) {
	for _, step := range []float64{0.001, 0.01, 1} {
		for _, qty := range []float64{0.12345, 3.7, 143.8} {
			once := RoundQuantity(qty, step)
			if once == 0 {
				continue
			}
			twice := RoundQuantity(once, step)
			if once != twice {
				t.Errorf("RoundQuantity not idempotent for qty=%v step=%v: %v then %v", qty, step, once, twice)
			}
		}
	}
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		price float64
		tick  float64
		want  float64
	}{
		{50123.456, 0.01, 50123.46},
		{100.125, 0.25, 100.0}, // half-ticks round to even
		{100.375, 0.25, 100.5},
		{100.25, 0.5, 100.0},
		{100.75, 0.5, 101.0},
		{0.123456, 0.0001, 0.1235},
		{0, 0.01, 0},
		{100, 0, 0},
	}

	for _, tt := range tests {
		if got := RoundPrice(tt.price, tt.tick); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("RoundPrice(%v, %v) = %v, want %v", tt.price, tt.tick, got, tt.want)
		}
	}
}

func TestStaticPrecisionLookup(t *testing.T) {
	provider := NewStaticPrecisionProvider()

	spot := provider.Lookup("SOLUSDT", market.MarketSpot)
	if spot.StepSize != 0.01 {
		t.Errorf("SOLUSDT spot step = %v, want 0.01", spot.StepSize)
	}

	futures := provider.Lookup("SOLUSDT", market.MarketFutures)
	if futures.StepSize != 1 {
		t.Errorf("SOLUSDT futures step = %v, want 1", futures.StepSize)
	}

	unknown := provider.Lookup("NOPEUSDT", market.MarketSpot)
	if unknown != DefaultPrecision {
		t.Errorf("unknown symbol precision = %+v, want DefaultPrecision", unknown)
	}
}

func TestRoundOrderPrice(t *testing.T) {
	sizer := NewPositionSizer(NewStaticPrecisionProvider())

	// BTCUSDT futures ticks at 0.1.
	if got := sizer.RoundOrderPrice("BTCUSDT", market.MarketFutures, 50123.456); got != 50123.5 {
		t.Errorf("futures price = %v, want 50123.5", got)
	}
	if got := sizer.RoundOrderPrice("BTCUSDT", market.MarketSpot, 50123.456); got != 50123.46 {
		t.Errorf("spot price = %v, want 50123.46", got)
	}
}
