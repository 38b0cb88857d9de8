package indicator

import (
	"math"

	"signal-trading-bot/internal/market"
)

// Indicator functions degrade gracefully on short history: when fewer
// samples exist than the required period, each returns its documented
// neutral sentinel instead of failing. None of them produce NaN or Inf
// for degenerate inputs.

// ============================================================================
// MOVING AVERAGES
// ============================================================================

// CalculateSMA calculates Simple Moving Average over the last period closes.
// Returns 0 when fewer samples exist than the period.
func CalculateSMA(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period {
		return 0
	}

	sum := 0.0
	startIdx := len(candles) - period

	for i := startIdx; i < len(candles); i++ {
		sum += candles[i].Close
	}

	return sum / float64(period)
}

// CalculateEMA calculates Exponential Moving Average seeded from the first
// close and iterated over the full series. Falls back to the SMA of all
// available samples when the series is shorter than the period.
func CalculateEMA(candles []market.Candle, period int) float64 {
	if len(candles) == 0 || period <= 0 {
		return 0
	}

	if len(candles) < period {
		sum := 0.0
		for _, c := range candles {
			sum += c.Close
		}
		return sum / float64(len(candles))
	}

	multiplier := 2.0 / float64(period+1)

	ema := candles[0].Close
	for i := 1; i < len(candles); i++ {
		ema = (candles[i].Close * multiplier) + (ema * (1 - multiplier))
	}

	return ema
}

// ============================================================================
// RSI (Relative Strength Index)
// ============================================================================

// CalculateRSI calculates the Relative Strength Index over the last period
// deltas. Returns the neutral 50 when history is insufficient and 100 when
// there are no losses in the window.
func CalculateRSI(candles []market.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 50.0 // Neutral RSI
	}

	gains := 0.0
	losses := 0.0

	for i := len(candles) - period; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// ============================================================================
// MACD (Moving Average Convergence Divergence)
// ============================================================================

// SignalLineMode selects how the MACD signal line is derived.
type SignalLineMode string

const (
	// SignalLineFaithful sets the signal line equal to the MACD value
	// itself, which forces the histogram to zero. This matches the
	// long-standing production behavior and is the default.
	SignalLineFaithful SignalLineMode = "faithful"

	// SignalLineEMA derives the signal line as a true EMA of the MACD
	// series over the signal period.
	SignalLineEMA SignalLineMode = "ema"
)

// MACDResult holds MACD indicator values.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD calculates the MACD line and derives the signal line and
// histogram according to the given mode.
func CalculateMACD(candles []market.Candle, fastPeriod, slowPeriod, signalPeriod int, mode SignalLineMode) *MACDResult {
	if len(candles) == 0 {
		return &MACDResult{}
	}

	fastEMA := CalculateEMA(candles, fastPeriod)
	slowEMA := CalculateEMA(candles, slowPeriod)
	macdLine := fastEMA - slowEMA

	var signalLine float64
	switch mode {
	case SignalLineEMA:
		signalLine = emaOfSeries(macdSeries(candles, fastPeriod, slowPeriod), signalPeriod)
	default:
		signalLine = macdLine
	}

	return &MACDResult{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: macdLine - signalLine,
	}
}

// macdSeries computes the MACD value at every bar by running the fast and
// slow EMA recurrences in lockstep over the series.
func macdSeries(candles []market.Candle, fastPeriod, slowPeriod int) []float64 {
	if len(candles) == 0 {
		return nil
	}

	fastMult := 2.0 / float64(fastPeriod+1)
	slowMult := 2.0 / float64(slowPeriod+1)

	fast := candles[0].Close
	slow := candles[0].Close

	series := make([]float64, len(candles))
	series[0] = 0

	for i := 1; i < len(candles); i++ {
		fast = (candles[i].Close * fastMult) + (fast * (1 - fastMult))
		slow = (candles[i].Close * slowMult) + (slow * (1 - slowMult))
		series[i] = fast - slow
	}

	return series
}

// emaOfSeries applies the same EMA recurrence used for prices to an
// arbitrary series, falling back to the mean when history is short.
func emaOfSeries(series []float64, period int) float64 {
	if len(series) == 0 || period <= 0 {
		return 0
	}

	if len(series) < period {
		sum := 0.0
		for _, v := range series {
			sum += v
		}
		return sum / float64(len(series))
	}

	multiplier := 2.0 / float64(period+1)

	ema := series[0]
	for i := 1; i < len(series); i++ {
		ema = (series[i] * multiplier) + (ema * (1 - multiplier))
	}

	return ema
}

// ============================================================================
// BOLLINGER BANDS
// ============================================================================

// BollingerBands holds Bollinger Band values.
type BollingerBands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// CalculateBollingerBands calculates Bollinger Bands using population
// standard deviation over the window. Degrades to a flat band at the mean
// of the available closes when history is insufficient.
func CalculateBollingerBands(candles []market.Candle, period int, stdDevMultiplier float64) *BollingerBands {
	if len(candles) == 0 || period <= 0 {
		return &BollingerBands{}
	}

	if len(candles) < period {
		sum := 0.0
		for _, c := range candles {
			sum += c.Close
		}
		mean := sum / float64(len(candles))
		return &BollingerBands{Upper: mean, Middle: mean, Lower: mean}
	}

	middle := CalculateSMA(candles, period)

	variance := 0.0
	startIdx := len(candles) - period

	for i := startIdx; i < len(candles); i++ {
		diff := candles[i].Close - middle
		variance += diff * diff
	}

	stdDev := math.Sqrt(variance / float64(period))

	return &BollingerBands{
		Upper:  middle + (stdDev * stdDevMultiplier),
		Middle: middle,
		Lower:  middle - (stdDev * stdDevMultiplier),
	}
}

// Width returns the band width relative to the middle band. Returns 0 for
// a degenerate middle band.
func (b *BollingerBands) Width() float64 {
	if b.Middle == 0 {
		return 0
	}
	return (b.Upper - b.Lower) / b.Middle
}

// ============================================================================
// ATR (Average True Range)
// ============================================================================

// CalculateATR calculates Average True Range as the mean of true range over
// the last period bars. Returns 0 when history is insufficient.
func CalculateATR(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}

	trSum := 0.0
	startIdx := len(candles) - period

	for i := startIdx; i < len(candles); i++ {
		high := candles[i].High
		low := candles[i].Low
		prevClose := candles[i-1].Close

		tr := math.Max(
			high-low,
			math.Max(
				math.Abs(high-prevClose),
				math.Abs(low-prevClose),
			),
		)

		trSum += tr
	}

	return trSum / float64(period)
}

// ============================================================================
// ADX (Average Directional Index)
// ============================================================================

// CalculateADX calculates a simplified directional movement index from
// +DM/-DM over ATR. Returns 0 when history is insufficient or when both
// directional indicators are zero.
func CalculateADX(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}

	atr := CalculateATR(candles, period)
	if atr == 0 {
		return 0
	}

	var plusDMSum, minusDMSum float64

	for i := len(candles) - period; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		if upMove > downMove && upMove > 0 {
			plusDMSum += upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDMSum += downMove
		}
	}

	plusDI := (plusDMSum / float64(period)) / atr * 100
	minusDI := (minusDMSum / float64(period)) / atr * 100

	if plusDI+minusDI == 0 {
		return 0
	}

	return math.Abs(plusDI-minusDI) / (plusDI + minusDI) * 100
}

// ============================================================================
// CCI (Commodity Channel Index)
// ============================================================================

// CalculateCCI calculates the Commodity Channel Index over typical prices.
// Returns 0 when history is insufficient or mean deviation is zero.
func CalculateCCI(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period {
		return 0
	}

	startIdx := len(candles) - period

	typicals := make([]float64, period)
	sum := 0.0
	for i := startIdx; i < len(candles); i++ {
		tp := (candles[i].High + candles[i].Low + candles[i].Close) / 3
		typicals[i-startIdx] = tp
		sum += tp
	}

	mean := sum / float64(period)

	meanDeviation := 0.0
	for _, tp := range typicals {
		meanDeviation += math.Abs(tp - mean)
	}
	meanDeviation /= float64(period)

	if meanDeviation == 0 {
		return 0
	}

	return (typicals[period-1] - mean) / (0.015 * meanDeviation)
}

// ============================================================================
// WILLIAMS %R
// ============================================================================

// CalculateWilliamsR calculates Williams %R over the last period bars.
// Returns the -50 midpoint sentinel on insufficient history or a flat range.
func CalculateWilliamsR(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period {
		return -50.0
	}

	highestHigh, lowestLow := rangeExtremes(candles, period)
	if highestHigh == lowestLow {
		return -50.0
	}

	close := candles[len(candles)-1].Close
	return (highestHigh - close) / (highestHigh - lowestLow) * -100
}

// ============================================================================
// OBV (On-Balance Volume)
// ============================================================================

// CalculateOBV calculates cumulative On-Balance Volume over the full series:
// volume is added on an up-close, subtracted on a down-close, and ignored
// when the close is unchanged.
func CalculateOBV(candles []market.Candle) float64 {
	obv := 0.0
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			obv += candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			obv -= candles[i].Volume
		}
	}
	return obv
}

// ============================================================================
// STOCHASTIC OSCILLATOR
// ============================================================================

// CalculateStochasticK calculates the Stochastic %K over the last period
// bars. Returns the neutral 50 on insufficient history or a flat range.
func CalculateStochasticK(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period {
		return 50.0
	}

	highestHigh, lowestLow := rangeExtremes(candles, period)
	if highestHigh == lowestLow {
		return 50.0
	}

	close := candles[len(candles)-1].Close
	return (close - lowestLow) / (highestHigh - lowestLow) * 100
}

// ============================================================================
// SUPPORT AND RESISTANCE
// ============================================================================

// FindSupportResistance identifies support and resistance as the extremes
// of the last lookback bars (or fewer when unavailable). Degenerate levels
// fall back to a band of plus/minus 5% around the mean close.
func FindSupportResistance(candles []market.Candle, lookback int) (support, resistance float64) {
	if len(candles) == 0 {
		return 0, 0
	}

	window := lookback
	if len(candles) < window {
		window = len(candles)
	}

	startIdx := len(candles) - window
	resistance = candles[startIdx].High
	support = candles[startIdx].Low
	meanClose := 0.0

	for i := startIdx; i < len(candles); i++ {
		if candles[i].High > resistance {
			resistance = candles[i].High
		}
		if candles[i].Low < support {
			support = candles[i].Low
		}
		meanClose += candles[i].Close
	}
	meanClose /= float64(window)

	if support >= resistance || support <= 0 || resistance <= 0 {
		support = meanClose * 0.95
		resistance = meanClose * 1.05
	}

	return support, resistance
}

// ============================================================================
// TREND, VOLATILITY AND MOMENTUM
// ============================================================================

// CalculateTrendStrength measures the per-bar price change over the last 20
// samples relative to their mean, clamped to [0, 1]. Returns the 0.5
// midpoint sentinel on insufficient history.
func CalculateTrendStrength(candles []market.Candle) float64 {
	const window = 20

	if len(candles) < window {
		return 0.5
	}

	startIdx := len(candles) - window

	mean := 0.0
	for i := startIdx; i < len(candles); i++ {
		mean += candles[i].Close
	}
	mean /= float64(window)

	if mean == 0 {
		return 0.5
	}

	slope := (candles[len(candles)-1].Close - candles[startIdx].Close) / float64(window)
	strength := math.Abs(slope) / mean * 100

	if strength > 1 {
		strength = 1
	}

	return strength
}

// CalculateVolatility computes the sample standard deviation of simple
// returns over the full series. Returns 0 with fewer than 20 samples or a
// completely flat series.
func CalculateVolatility(candles []market.Candle) float64 {
	if len(candles) < 20 {
		return 0
	}

	closes := market.Closes(candles)
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}

	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance)
}

// CalculateMomentum computes the relative price change over the last 10
// bars. Returns 0 on insufficient history.
func CalculateMomentum(candles []market.Candle) float64 {
	const period = 10

	if len(candles) < period+1 {
		return 0
	}

	current := candles[len(candles)-1].Close
	past := candles[len(candles)-period-1].Close
	if past == 0 {
		return 0
	}

	return (current - past) / past
}

// ============================================================================
// VOLUME ANALYSIS
// ============================================================================

// CalculateAverageVolume calculates average volume over the last period
// bars, shrinking the window when fewer bars exist.
func CalculateAverageVolume(candles []market.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}

	if len(candles) < period {
		period = len(candles)
	}

	volumes := market.Volumes(candles)

	sum := 0.0
	for _, v := range volumes[len(volumes)-period:] {
		sum += v
	}

	return sum / float64(period)
}

// CalculateVolumeRatio compares the latest bar's volume to the average of
// the preceding window. Returns 1 (neutral) when the average is zero.
func CalculateVolumeRatio(candles []market.Candle, period int) float64 {
	if len(candles) < 2 {
		return 1
	}

	avg := CalculateAverageVolume(candles[:len(candles)-1], period)
	if avg == 0 {
		return 1
	}

	return candles[len(candles)-1].Volume / avg
}

func rangeExtremes(candles []market.Candle, period int) (highestHigh, lowestLow float64) {
	startIdx := len(candles) - period
	highestHigh = candles[startIdx].High
	lowestLow = candles[startIdx].Low

	for i := startIdx; i < len(candles); i++ {
		if candles[i].High > highestHigh {
			highestHigh = candles[i].High
		}
		if candles[i].Low < lowestLow {
			lowestLow = candles[i].Low
		}
	}

	return highestHigh, lowestLow
}
