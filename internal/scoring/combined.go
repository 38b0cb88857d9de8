package scoring

// Weights applied when blending spot and futures analyses of the same
// symbol. Futures carries more weight because its flows lead spot.
const (
	combinedSpotWeight    = 0.4
	combinedFuturesWeight = 0.6
)

// Combine blends a spot and a futures signal for the same symbol into one
// decision. Scores and confidences are weighted 0.4 spot / 0.6 futures.
// The signal type is the common type when both layers agree; a BUY paired
// with a STRONG_BUY (or the symmetric sell case) keeps the shared
// direction at STRONG strength; any other disagreement falls back to HOLD.
func Combine(spot, futures *Signal) *Signal {
	if spot == nil && futures == nil {
		return nil
	}
	if spot == nil {
		return futures
	}
	if futures == nil {
		return spot
	}

	combined := &Signal{
		Symbol:      spot.Symbol,
		TradingType: TradingBoth,
		Confidence:  spot.Confidence*combinedSpotWeight + futures.Confidence*combinedFuturesWeight,
		Score: Score{
			Total: spot.Score.Total*combinedSpotWeight + futures.Score.Total*combinedFuturesWeight,
		},
	}

	switch {
	case spot.SignalType == futures.SignalType:
		combined.SignalType = spot.SignalType
		combined.Strength = strengthFromConfidence(combined.Confidence)
	case bothBuyFamily(spot.SignalType, futures.SignalType):
		combined.SignalType = Buy
		combined.Strength = StrengthStrong
	case bothSellFamily(spot.SignalType, futures.SignalType):
		combined.SignalType = Sell
		combined.Strength = StrengthStrong
	default:
		combined.SignalType = Hold
		combined.Strength = StrengthWeak
	}

	// Carry execution levels from the dominant futures layer.
	combined.TargetPrice = futures.TargetPrice
	combined.StopLossPrice = futures.StopLossPrice
	combined.TimeHorizon = futures.TimeHorizon
	combined.MarketSentiment = futures.MarketSentiment

	return combined
}

func bothBuyFamily(a, b SignalType) bool {
	return a.IsBuy() && b.IsBuy()
}

func bothSellFamily(a, b SignalType) bool {
	return a.IsSell() && b.IsSell()
}
