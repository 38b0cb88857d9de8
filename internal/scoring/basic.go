package scoring

import (
	"math"

	"signal-trading-bot/internal/indicator"
)

// BasicModel is the single-layer additive point system. Points accumulate
// across trend, RSI, MACD, Bollinger proximity, volume-confirmed momentum
// and 24h price momentum; the integer total maps directly to a decision.
type BasicModel struct{}

// Name implements Model.
func (m *BasicModel) Name() string { return "basic" }

// Score implements Model.
func (m *BasicModel) Score(ind *indicator.Set, snapshot MarketSnapshot) *Signal {
	price := snapshot.Price
	score := 0

	// Trend: SMA cross and price position
	if ind.SMA20 > ind.SMA50 {
		score += 2
	} else if ind.SMA20 < ind.SMA50 {
		score -= 2
	}
	if price > ind.SMA20 {
		score++
	} else if price < ind.SMA20 {
		score--
	}

	// RSI bands
	switch {
	case ind.RSI < 30:
		score += 3
	case ind.RSI < 40:
		score++
	case ind.RSI > 70:
		score -= 3
	case ind.RSI > 60:
		score--
	}

	// MACD cross and histogram sign
	if ind.MACD.MACD > ind.MACD.Signal {
		score += 2
	} else if ind.MACD.MACD < ind.MACD.Signal {
		score -= 2
	}
	if ind.MACD.Histogram > 0 {
		score++
	} else if ind.MACD.Histogram < 0 {
		score--
	}

	// Bollinger proximity
	if price > 0 && ind.Bollinger.Upper > ind.Bollinger.Lower {
		if price <= ind.Bollinger.Lower {
			score += 2
		} else if price >= ind.Bollinger.Upper {
			score -= 2
		}
	}

	// Volume-confirmed momentum: sign follows the 24h change
	if ind.VolumeRatio > 1.5 {
		if snapshot.Change24hPct > 0 {
			score += 2
		} else if snapshot.Change24hPct < 0 {
			score -= 2
		}
	}

	// 24h price momentum tiers
	switch {
	case snapshot.Change24hPct > 5:
		score += 2
	case snapshot.Change24hPct > 2:
		score++
	case snapshot.Change24hPct < -5:
		score -= 2
	case snapshot.Change24hPct < -2:
		score--
	}

	signalType := Hold
	confidence := 0.3
	switch {
	case score >= 5:
		signalType = Buy
		confidence = math.Min(float64(score)/10.0, 1.0)
	case score <= -5:
		signalType = Sell
		confidence = math.Min(math.Abs(float64(score))/10.0, 1.0)
	}

	// Dampen conviction when RSI contradicts the direction
	if confidence > 0.7 {
		if (signalType == Buy && ind.RSI > 70) || (signalType == Sell && ind.RSI < 30) {
			confidence *= 0.7
		}
	}
	if signalType != Hold && ind.VolumeRatio < 1.2 {
		confidence *= 0.8
	}

	sig := &Signal{
		SignalType: signalType,
		Confidence: confidence,
		Strength:   strengthFromConfidence(confidence),
		Score:      Score{Total: float64(score)},
	}

	applyTargets(sig, price, ind.ATR)
	sig.TimeHorizon = horizonFor(ind)
	sig.MarketSentiment = SentimentNeutral
	if score >= 5 {
		sig.MarketSentiment = SentimentBullish
	} else if score <= -5 {
		sig.MarketSentiment = SentimentBearish
	}

	return sig
}
