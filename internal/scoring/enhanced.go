package scoring

import (
	"math"

	"signal-trading-bot/internal/indicator"
)

// Layer weights for the enhanced model. They sum to 1.0 so the weighted
// total stays inside [0, 10].
const (
	weightTrend             = 0.25
	weightMomentum          = 0.20
	weightVolume            = 0.15
	weightVolatility        = 0.10
	weightSupportResistance = 0.15
	weightMarketStructure   = 0.15
)

// EnhancedModel scores six independent analysis layers on a 0-10 scale and
// combines them through fixed weights into a total score, which maps to a
// signal classification with confidence.
type EnhancedModel struct{}

// Name implements Model.
func (m *EnhancedModel) Name() string { return "enhanced" }

// Score implements Model.
func (m *EnhancedModel) Score(ind *indicator.Set, snapshot MarketSnapshot) *Signal {
	score := Score{
		Trend:             m.scoreTrend(ind, snapshot.Price),
		Momentum:          m.scoreMomentum(ind),
		Volume:            m.scoreVolume(ind),
		Volatility:        m.scoreVolatility(ind),
		SupportResistance: m.scoreSupportResistance(ind, snapshot.Price),
		MarketStructure:   m.scoreMarketStructure(ind, snapshot.Change24hPct),
	}

	score.Total = score.Trend*weightTrend +
		score.Momentum*weightMomentum +
		score.Volume*weightVolume +
		score.Volatility*weightVolatility +
		score.SupportResistance*weightSupportResistance +
		score.MarketStructure*weightMarketStructure

	signalType, confidence := classify(score.Total)

	sig := &Signal{
		SignalType: signalType,
		Confidence: confidence,
		Strength:   strengthFromConfidence(confidence),
		Score:      score,
	}

	applyTargets(sig, snapshot.Price, ind.ATR)
	sig.TimeHorizon = horizonFor(ind)
	sig.MarketSentiment = sentimentFor(score.Total)

	return sig
}

// scoreTrend rates trend alignment. Unlike the other layers it builds up
// from zero: each satisfied alignment adds points, to a ceiling of 10.
func (m *EnhancedModel) scoreTrend(ind *indicator.Set, price float64) float64 {
	score := 0.0

	if ind.SMA20 > ind.SMA50 {
		score += 2
	}
	if ind.SMA50 > ind.SMA200 {
		score += 2
	}
	if price > ind.SMA20 {
		score++
	}
	if price > ind.SMA50 {
		score++
	}
	if ind.EMA12 > ind.EMA26 {
		score++
	}
	if ind.ADX > 25 {
		score++
		if ind.ADX > 40 {
			score++
		}
	}

	return clampLayer(score)
}

func (m *EnhancedModel) scoreMomentum(ind *indicator.Set) float64 {
	score := 5.0

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

	if ind.MACD.MACD > ind.MACD.Signal {
		score += 2
	} else {
		score -= 2
	}
	if ind.MACD.Histogram > 0 {
		score++
	} else {
		score--
	}

	if ind.StochasticK < 20 {
		score += 2
	} else if ind.StochasticK > 80 {
		score -= 2
	}

	return clampLayer(score)
}

func (m *EnhancedModel) scoreVolume(ind *indicator.Set) float64 {
	score := 5.0

	switch {
	case ind.VolumeRatio > 2.0:
		score += 3
	case ind.VolumeRatio > 1.5:
		score += 2
	case ind.VolumeRatio > 1.2:
		score++
	case ind.VolumeRatio < 0.5:
		score -= 2
	}

	if ind.OBV > 0 {
		score++
	} else {
		score--
	}

	return clampLayer(score)
}

func (m *EnhancedModel) scoreVolatility(ind *indicator.Set) float64 {
	score := 5.0

	bbWidth := ind.Bollinger.Width()
	if bbWidth > 0.1 {
		score += 2
	} else if bbWidth < 0.02 {
		score--
	}

	if ind.SMA20 > 0 && ind.ATR > ind.SMA20*0.05 {
		score++
	}

	return clampLayer(score)
}

func (m *EnhancedModel) scoreSupportResistance(ind *indicator.Set, price float64) float64 {
	score := 5.0

	// Invalid levels leave the layer at its neutral base.
	if ind.Support <= 0 || ind.Resistance <= 0 || ind.Support >= ind.Resistance || price <= 0 {
		return score
	}

	if price <= ind.Support*1.02 {
		score += 3
	} else if price >= ind.Resistance*0.98 {
		score -= 3
	}

	if price <= ind.Bollinger.Lower {
		score += 2
	} else if price >= ind.Bollinger.Upper {
		score -= 2
	}

	return clampLayer(score)
}

func (m *EnhancedModel) scoreMarketStructure(ind *indicator.Set, change24hPct float64) float64 {
	score := 5.0

	switch {
	case change24hPct > 5:
		score += 3
	case change24hPct > 2:
		score++
	case change24hPct < -5:
		score -= 3
	case change24hPct < -2:
		score--
	}

	if ind.CCI > 100 {
		score++
	} else if ind.CCI < -100 {
		score--
	}

	if ind.WilliamsR < -80 {
		score += 2
	} else if ind.WilliamsR > -20 {
		score -= 2
	}

	return clampLayer(score)
}

// classify maps a weighted total score onto a signal type and confidence.
func classify(total float64) (SignalType, float64) {
	switch {
	case total >= 7:
		return StrongBuy, math.Min(0.7+(total-7)*0.05, 0.95)
	case total >= 5:
		return Buy, 0.7 + (total-5)*0.1
	case total >= 3:
		return Hold, 0.5 + (total-3)*0.1
	case total >= 1:
		return Sell, 0.7 + (1-total)*0.1
	default:
		return StrongSell, math.Min(0.7+(1-total)*0.05, 0.95)
	}
}

func sentimentFor(total float64) Sentiment {
	switch {
	case total >= 6:
		return SentimentBullish
	case total <= 2:
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

// horizonFor chooses the holding period from volatility and trend strength.
func horizonFor(ind *indicator.Set) TimeHorizon {
	if ind.Volatility > 0.05 && ind.TrendStrength > 0.7 {
		return HorizonShort
	}
	if ind.TrendStrength > 0.5 {
		return HorizonMedium
	}
	return HorizonLong
}

// applyTargets sets ATR-based target and stop prices: two ATRs of profit
// against one and a half ATRs of risk, mirrored for sells. Holds get none.
func applyTargets(sig *Signal, price, atr float64) {
	if price <= 0 || atr <= 0 {
		return
	}

	switch {
	case sig.SignalType.IsBuy():
		sig.TargetPrice = price + 2*atr
		sig.StopLossPrice = price - 1.5*atr
	case sig.SignalType.IsSell():
		sig.TargetPrice = price - 2*atr
		sig.StopLossPrice = price + 1.5*atr
	}
}

func clampLayer(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
