package indicator

import (
	"math"
	"testing"

	"signal-trading-bot/internal/market"
)

// candlesFromCloses builds candles whose high/low hug the close, for
// tests that only care about the close series.
func candlesFromCloses(closes ...float64) []market.Candle {
	candles := make([]market.Candle, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		candles[i] = market.Candle{
			Open:   open,
			High:   math.Max(open, c),
			Low:    math.Min(open, c),
			Close:  c,
			Volume: 1000,
		}
	}
	return candles
}

func flatCandles(n int, price float64) []market.Candle {
	candles := make([]market.Candle, n)
	for i := range candles {
		candles[i] = market.Candle{Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return candles
}

func uptrendCandles(n int, start, step float64) []market.Candle {
	candles := make([]market.Candle, n)
	price := start
	for i := range candles {
		candles[i] = market.Candle{
			Open:   price,
			High:   price + step,
			Low:    price - step*0.1,
			Close:  price + step,
			Volume: 1000,
		}
		price += step
	}
	return candles
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCalculateSMA(t *testing.T) {
	candles := candlesFromCloses(1, 2, 3, 4, 5)

	if got := CalculateSMA(candles, 5); got != 3 {
		t.Errorf("SMA(5) = %f, want 3", got)
	}
	if got := CalculateSMA(candles, 2); got != 4.5 {
		t.Errorf("SMA(2) = %f, want 4.5", got)
	}
	if got := CalculateSMA(candles, 10); got != 0 {
		t.Errorf("SMA with short history = %f, want 0", got)
	}
	if got := CalculateSMA(nil, 5); got != 0 {
		t.Errorf("SMA of empty series = %f, want 0", got)
	}
}

func TestCalculateEMA(t *testing.T) {
	// A constant series converges to the constant regardless of period.
	flat := flatCandles(30, 42)
	if got := CalculateEMA(flat, 12); !almostEqual(got, 42, 1e-9) {
		t.Errorf("EMA of constant series = %f, want 42", got)
	}

	// Short history falls back to the mean of what exists.
	short := candlesFromCloses(10, 20, 30)
	if got := CalculateEMA(short, 12); !almostEqual(got, 20, 1e-9) {
		t.Errorf("EMA with short history = %f, want 20", got)
	}

	// A rising series keeps the EMA below the last close but above the SMA lag.
	rising := uptrendCandles(50, 100, 1)
	ema := CalculateEMA(rising, 12)
	last := rising[len(rising)-1].Close
	if ema >= last {
		t.Errorf("EMA %f should lag the last close %f in an uptrend", ema, last)
	}
	if ema <= CalculateSMA(rising, 50) {
		t.Errorf("EMA %f should sit above the long SMA in an uptrend", ema)
	}
}

func TestCalculateRSI(t *testing.T) {
	if got := CalculateRSI(candlesFromCloses(1, 2, 3), 14); got != 50 {
		t.Errorf("RSI with short history = %f, want neutral 50", got)
	}

	// Monotonic gains have no losses in the window.
	if got := CalculateRSI(uptrendCandles(30, 100, 1), 14); got != 100 {
		t.Errorf("RSI of pure uptrend = %f, want 100", got)
	}

	// Alternating +1/-1 closes balance gains and losses exactly.
	closes := make([]float64, 15)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 1
		} else {
			closes[i] = closes[i-1] - 1
		}
	}
	if got := CalculateRSI(candlesFromCloses(closes...), 14); !almostEqual(got, 50, 1e-9) {
		t.Errorf("RSI of balanced series = %f, want 50", got)
	}
}

func TestCalculateMACDFaithful(t *testing.T) {
	candles := uptrendCandles(100, 100, 0.5)

	macd := CalculateMACD(candles, 12, 26, 9, SignalLineFaithful)
	if macd.MACD <= 0 {
		t.Errorf("MACD line = %f, want positive in an uptrend", macd.MACD)
	}
	if macd.Signal != macd.MACD {
		t.Errorf("faithful mode signal = %f, want equal to MACD line %f", macd.Signal, macd.MACD)
	}
	if macd.Histogram != 0 {
		t.Errorf("faithful mode histogram = %f, want 0", macd.Histogram)
	}
}

func TestCalculateMACDEMASignal(t *testing.T) {
	// Accelerating uptrend: the MACD series keeps rising, so its EMA lags
	// below the current MACD value.
	closes := make([]float64, 100)
	price := 100.0
	for i := range closes {
		price *= 1.005
		closes[i] = price
	}
	candles := candlesFromCloses(closes...)

	macd := CalculateMACD(candles, 12, 26, 9, SignalLineEMA)
	if macd.MACD <= 0 {
		t.Fatalf("MACD line = %f, want positive", macd.MACD)
	}
	if macd.Signal >= macd.MACD {
		t.Errorf("signal %f should lag MACD %f in a rising series", macd.Signal, macd.MACD)
	}
	if macd.Histogram <= 0 {
		t.Errorf("histogram = %f, want positive", macd.Histogram)
	}

	if got := CalculateMACD(nil, 12, 26, 9, SignalLineEMA); got.MACD != 0 || got.Signal != 0 {
		t.Errorf("MACD of empty series = %+v, want zero result", got)
	}
}

func TestCalculateBollingerBands(t *testing.T) {
	// Flat series: zero deviation, all bands collapse to the price.
	bb := CalculateBollingerBands(flatCandles(25, 50), 20, 2.0)
	if bb.Upper != 50 || bb.Middle != 50 || bb.Lower != 50 {
		t.Errorf("flat series bands = %+v, want all 50", bb)
	}
	if bb.Width() != 0 {
		t.Errorf("flat series width = %f, want 0", bb.Width())
	}

	// Known small case: closes {1, 3}, period 2, population stddev 1.
	bb = CalculateBollingerBands(candlesFromCloses(1, 3), 2, 2.0)
	if !almostEqual(bb.Middle, 2, 1e-9) || !almostEqual(bb.Upper, 4, 1e-9) || !almostEqual(bb.Lower, 0, 1e-9) {
		t.Errorf("bands = %+v, want middle 2, upper 4, lower 0", bb)
	}

	// Short history degrades to a flat band at the mean.
	bb = CalculateBollingerBands(candlesFromCloses(10, 20), 20, 2.0)
	if bb.Upper != 15 || bb.Middle != 15 || bb.Lower != 15 {
		t.Errorf("short history bands = %+v, want flat at mean 15", bb)
	}
}

func TestCalculateATR(t *testing.T) {
	if got := CalculateATR(flatCandles(10, 100), 14); got != 0 {
		t.Errorf("ATR with short history = %f, want 0", got)
	}

	// Flat series has zero true range.
	if got := CalculateATR(flatCandles(30, 100), 14); got != 0 {
		t.Errorf("ATR of flat series = %f, want 0", got)
	}

	// Constant 2-point range with close at high: TR is high-low = 2 each bar.
	candles := make([]market.Candle, 20)
	for i := range candles {
		candles[i] = market.Candle{Open: 99, High: 101, Low: 99, Close: 101, Volume: 1000}
	}
	if got := CalculateATR(candles, 14); !almostEqual(got, 2, 1e-9) {
		t.Errorf("ATR = %f, want 2", got)
	}
}

func TestCalculateADX(t *testing.T) {
	if got := CalculateADX(candlesFromCloses(1, 2, 3), 14); got != 0 {
		t.Errorf("ADX with short history = %f, want 0", got)
	}
	if got := CalculateADX(flatCandles(30, 100), 14); got != 0 {
		t.Errorf("ADX of flat series = %f, want 0", got)
	}

	// One-directional movement: all +DM, no -DM, maximum directionality.
	if got := CalculateADX(uptrendCandles(30, 100, 1), 14); !almostEqual(got, 100, 1e-9) {
		t.Errorf("ADX of pure uptrend = %f, want 100", got)
	}
}

func TestCalculateCCI(t *testing.T) {
	if got := CalculateCCI(candlesFromCloses(1, 2), 20); got != 0 {
		t.Errorf("CCI with short history = %f, want 0", got)
	}
	if got := CalculateCCI(flatCandles(30, 100), 20); got != 0 {
		t.Errorf("CCI of flat series = %f, want 0", got)
	}

	// Rising typical prices put the latest well above the window mean.
	if got := CalculateCCI(uptrendCandles(30, 100, 1), 20); got <= 100 {
		t.Errorf("CCI of steady uptrend = %f, want > 100", got)
	}
}

func TestCalculateWilliamsR(t *testing.T) {
	if got := CalculateWilliamsR(candlesFromCloses(1, 2), 14); got != -50 {
		t.Errorf("Williams %%R with short history = %f, want -50", got)
	}
	if got := CalculateWilliamsR(flatCandles(30, 100), 14); got != -50 {
		t.Errorf("Williams %%R of flat range = %f, want -50", got)
	}

	// Close at the very top of the range reads 0; at the bottom, -100.
	top := uptrendCandles(30, 100, 1)
	if got := CalculateWilliamsR(top, 14); got > -0.0 || got < -15 {
		t.Errorf("Williams %%R near range top = %f, want close to 0", got)
	}
}

func TestCalculateStochasticK(t *testing.T) {
	if got := CalculateStochasticK(candlesFromCloses(1, 2), 14); got != 50 {
		t.Errorf("Stochastic %%K with short history = %f, want 50", got)
	}
	if got := CalculateStochasticK(flatCandles(30, 100), 14); got != 50 {
		t.Errorf("Stochastic %%K of flat range = %f, want 50", got)
	}

	got := CalculateStochasticK(uptrendCandles(30, 100, 1), 14)
	if got < 85 || got > 100 {
		t.Errorf("Stochastic %%K near range top = %f, want close to 100", got)
	}
}

func TestCalculateOBV(t *testing.T) {
	candles := candlesFromCloses(100, 101, 100, 102)
	for i := range candles {
		candles[i].Volume = 10
	}

	// +10 (up), -10 (down), +10 (up) = 10
	if got := CalculateOBV(candles); got != 10 {
		t.Errorf("OBV = %f, want 10", got)
	}

	// Unchanged closes contribute nothing.
	if got := CalculateOBV(flatCandles(10, 100)); got != 0 {
		t.Errorf("OBV of flat series = %f, want 0", got)
	}
}

func TestFindSupportResistance(t *testing.T) {
	candles := uptrendCandles(60, 100, 1)
	support, resistance := FindSupportResistance(candles, 50)
	if support >= resistance {
		t.Fatalf("support %f should be below resistance %f", support, resistance)
	}
	if resistance != candles[len(candles)-1].High {
		t.Errorf("resistance = %f, want the window high %f", resistance, candles[len(candles)-1].High)
	}

	// A flat series has degenerate extremes: fall back to a 5% band.
	support, resistance = FindSupportResistance(flatCandles(60, 100), 50)
	if !almostEqual(support, 95, 1e-9) || !almostEqual(resistance, 105, 1e-9) {
		t.Errorf("degenerate levels = (%f, %f), want (95, 105)", support, resistance)
	}
}

func TestCalculateTrendStrength(t *testing.T) {
	if got := CalculateTrendStrength(candlesFromCloses(1, 2, 3)); got != 0.5 {
		t.Errorf("trend strength with short history = %f, want 0.5 sentinel", got)
	}
	if got := CalculateTrendStrength(flatCandles(30, 100)); got != 0 {
		t.Errorf("trend strength of flat series = %f, want 0", got)
	}

	// A very steep trend clamps at 1.
	if got := CalculateTrendStrength(uptrendCandles(30, 100, 50)); got != 1 {
		t.Errorf("trend strength of steep series = %f, want clamped 1", got)
	}

	got := CalculateTrendStrength(uptrendCandles(30, 100, 1))
	if got <= 0 || got > 1 {
		t.Errorf("trend strength = %f, want in (0, 1]", got)
	}
}

func TestCalculateVolatility(t *testing.T) {
	if got := CalculateVolatility(candlesFromCloses(1, 2, 3)); got != 0 {
		t.Errorf("volatility with short history = %f, want 0", got)
	}
	if got := CalculateVolatility(flatCandles(30, 100)); got != 0 {
		t.Errorf("volatility of flat series = %f, want 0", got)
	}

	got := CalculateVolatility(uptrendCandles(30, 100, 1))
	if got <= 0 {
		t.Errorf("volatility of moving series = %f, want positive", got)
	}
}

func TestCalculateMomentum(t *testing.T) {
	if got := CalculateMomentum(candlesFromCloses(1, 2, 3)); got != 0 {
		t.Errorf("momentum with short history = %f, want 0", got)
	}

	// 11 closes rising by 1: (111 - 101) / 101
	closes := make([]float64, 11)
	for i := range closes {
		closes[i] = 101 + float64(i)
	}
	want := 10.0 / 101.0
	if got := CalculateMomentum(candlesFromCloses(closes...)); !almostEqual(got, want, 1e-9) {
		t.Errorf("momentum = %f, want %f", got, want)
	}
}

func TestCalculateVolumeRatio(t *testing.T) {
	candles := flatCandles(21, 100)
	candles[len(candles)-1].Volume = 2000

	if got := CalculateVolumeRatio(candles, 20); !almostEqual(got, 2, 1e-9) {
		t.Errorf("volume ratio = %f, want 2", got)
	}

	if got := CalculateVolumeRatio(flatCandles(1, 100), 20); got != 1 {
		t.Errorf("volume ratio with a single candle = %f, want neutral 1", got)
	}

	// Zero preceding volume is neutral, not a division blowup.
	zero := flatCandles(21, 100)
	for i := range zero {
		zero[i].Volume = 0
	}
	zero[len(zero)-1].Volume = 500
	if got := CalculateVolumeRatio(zero, 20); got != 1 {
		t.Errorf("volume ratio over zero average = %f, want neutral 1", got)
	}
}

func TestEngineComputeEmptySeries(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if _, err := engine.Compute(nil); err != ErrEmptySeries {
		t.Errorf("Compute(nil) error = %v, want ErrEmptySeries", err)
	}
}

func TestEngineComputeSentinels(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	set, err := engine.Compute(flatCandles(1, 100))
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if set.RSI != 50 {
		t.Errorf("RSI sentinel = %f, want 50", set.RSI)
	}
	if set.StochasticK != 50 {
		t.Errorf("Stochastic sentinel = %f, want 50", set.StochasticK)
	}
	if set.WilliamsR != -50 {
		t.Errorf("Williams sentinel = %f, want -50", set.WilliamsR)
	}
	if set.TrendStrength != 0.5 {
		t.Errorf("trend strength sentinel = %f, want 0.5", set.TrendStrength)
	}
	if set.SMA20 != 0 || set.ATR != 0 || set.ADX != 0 || set.Volatility != 0 {
		t.Errorf("zero sentinels violated: SMA20=%f ATR=%f ADX=%f Vol=%f",
			set.SMA20, set.ATR, set.ADX, set.Volatility)
	}
}

func TestEngineComputeFullHistory(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	set, err := engine.Compute(uptrendCandles(250, 100, 0.5))
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if set.SMA20 <= set.SMA50 || set.SMA50 <= set.SMA200 {
		t.Errorf("uptrend should order SMAs: 20=%f 50=%f 200=%f", set.SMA20, set.SMA50, set.SMA200)
	}
	if set.RSI != 100 {
		t.Errorf("RSI of pure uptrend = %f, want 100", set.RSI)
	}
	if set.Support <= 0 || set.Resistance <= set.Support {
		t.Errorf("support/resistance invalid: %f / %f", set.Support, set.Resistance)
	}
	if math.IsNaN(set.Volatility) || math.IsInf(set.Volatility, 0) {
		t.Errorf("volatility is not finite: %f", set.Volatility)
	}
}
