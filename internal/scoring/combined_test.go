package scoring

import (
	"math"
	"testing"
)

func TestCombineNilHandling(t *testing.T) {
	if got := Combine(nil, nil); got != nil {
		t.Errorf("Combine(nil, nil) = %+v, want nil", got)
	}

	spot := &Signal{Symbol: "BTCUSDT", SignalType: Buy}
	if got := Combine(spot, nil); got != spot {
		t.Errorf("Combine(spot, nil) should pass the spot signal through")
	}

	futures := &Signal{Symbol: "BTCUSDT", SignalType: Sell}
	if got := Combine(nil, futures); got != futures {
		t.Errorf("Combine(nil, futures) should pass the futures signal through")
	}
}

func TestCombineAgreement(t *testing.T) {
	spot := &Signal{
		Symbol:     "ETHUSDT",
		SignalType: Buy,
		Confidence: 0.7,
		Score:      Score{Total: 6},
	}
	futures := &Signal{
		Symbol:          "ETHUSDT",
		SignalType:      Buy,
		Confidence:      0.8,
		Score:           Score{Total: 6.5},
		TargetPrice:     2100,
		StopLossPrice:   1900,
		TimeHorizon:     HorizonShort,
		MarketSentiment: SentimentBullish,
	}

	got := Combine(spot, futures)

	if got.SignalType != Buy {
		t.Errorf("signal type = %s, want BUY", got.SignalType)
	}
	if got.TradingType != TradingBoth {
		t.Errorf("trading type = %s, want BOTH", got.TradingType)
	}

	wantConf := 0.7*0.4 + 0.8*0.6
	if math.Abs(got.Confidence-wantConf) > 1e-9 {
		t.Errorf("confidence = %f, want %f", got.Confidence, wantConf)
	}
	wantTotal := 6*0.4 + 6.5*0.6
	if math.Abs(got.Score.Total-wantTotal) > 1e-9 {
		t.Errorf("total = %f, want %f", got.Score.Total, wantTotal)
	}
	if got.Strength != strengthFromConfidence(got.Confidence) {
		t.Errorf("strength = %s, want derived from blended confidence", got.Strength)
	}

	// Execution levels come from the futures layer.
	if got.TargetPrice != 2100 || got.StopLossPrice != 1900 {
		t.Errorf("targets = (%f, %f), want futures' (2100, 1900)", got.TargetPrice, got.StopLossPrice)
	}
	if got.TimeHorizon != HorizonShort {
		t.Errorf("horizon = %s, want futures' SHORT", got.TimeHorizon)
	}
	if got.MarketSentiment != SentimentBullish {
		t.Errorf("sentiment = %s, want futures' BULLISH", got.MarketSentiment)
	}
}

func TestCombineFamilyEscalation(t *testing.T) {
	tests := []struct {
		name         string
		spotType     SignalType
		futuresType  SignalType
		wantType     SignalType
		wantStrength Strength
	}{
		{"buy with strong buy", Buy, StrongBuy, Buy, StrengthStrong},
		{"strong buy with buy", StrongBuy, Buy, Buy, StrengthStrong},
		{"sell with strong sell", Sell, StrongSell, Sell, StrengthStrong},
		{"strong sell with sell", StrongSell, Sell, Sell, StrengthStrong},
		{"buy against sell", Buy, Sell, Hold, StrengthWeak},
		{"strong buy against hold", StrongBuy, Hold, Hold, StrengthWeak},
		{"hold against sell", Hold, Sell, Hold, StrengthWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spot := &Signal{Symbol: "BNBUSDT", SignalType: tt.spotType, Confidence: 0.8}
			futures := &Signal{Symbol: "BNBUSDT", SignalType: tt.futuresType, Confidence: 0.8}

			got := Combine(spot, futures)
			if got.SignalType != tt.wantType {
				t.Errorf("signal type = %s, want %s", got.SignalType, tt.wantType)
			}
			if got.Strength != tt.wantStrength {
				t.Errorf("strength = %s, want %s", got.Strength, tt.wantStrength)
			}
		})
	}
}

func TestCombineSameStrongType(t *testing.T) {
	spot := &Signal{Symbol: "BTCUSDT", SignalType: StrongBuy, Confidence: 0.9}
	futures := &Signal{Symbol: "BTCUSDT", SignalType: StrongBuy, Confidence: 0.9}

	got := Combine(spot, futures)
	if got.SignalType != StrongBuy {
		t.Errorf("signal type = %s, want STRONG_BUY preserved", got.SignalType)
	}
	if got.Strength != StrengthVeryStrong {
		t.Errorf("strength = %s, want VERY_STRONG at confidence 0.9", got.Strength)
	}
}
