package market

import "testing"

func TestSyntheticGetCandles(t *testing.T) {
	source := NewSyntheticDataSource(42)

	candles, err := source.GetCandles("BTCUSDT", "15m", 100)
	if err != nil {
		t.Fatalf("GetCandles returned error: %v", err)
	}
	if len(candles) != 100 {
		t.Fatalf("got %d candles, want 100", len(candles))
	}

	for i, c := range candles {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			t.Fatalf("candle %d has non-positive prices: %+v", i, c)
		}
		if c.High < c.Low {
			t.Fatalf("candle %d high %f below low %f", i, c.High, c.Low)
		}
		if c.Volume < 1000 || c.Volume > 6000 {
			t.Fatalf("candle %d volume %f outside expected range", i, c.Volume)
		}
		if i > 0 && candles[i].OpenTime <= candles[i-1].OpenTime {
			t.Fatalf("candles not oldest-first at index %d", i)
		}
	}
}

func TestSyntheticDeterministicWithSeed(t *testing.T) {
	a, err := NewSyntheticDataSource(7).GetCandles("ETHUSDT", "1h", 50)
	if err != nil {
		t.Fatalf("GetCandles returned error: %v", err)
	}
	b, err := NewSyntheticDataSource(7).GetCandles("ETHUSDT", "1h", 50)
	if err != nil {
		t.Fatalf("GetCandles returned error: %v", err)
	}

	// Timestamps depend on the wall clock; the price walk must not.
	for i := range a {
		if a[i].Open != b[i].Open || a[i].Close != b[i].Close || a[i].Volume != b[i].Volume {
			t.Fatalf("same seed diverged at candle %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSyntheticUnknownSymbol(t *testing.T) {
	source := NewSyntheticDataSource(1)

	candles, err := source.GetCandles("NOPEUSDT", "1h", 10)
	if err != nil {
		t.Fatalf("GetCandles returned error: %v", err)
	}

	// Unknown symbols walk from the fallback base price of 100.
	newest := candles[len(candles)-1]
	if newest.Open < 50 || newest.Open > 150 {
		t.Errorf("unknown symbol newest open = %f, want near base 100", newest.Open)
	}
}

func TestSyntheticGetTicker(t *testing.T) {
	source := NewSyntheticDataSource(3)

	ticker, err := source.GetTicker("SOLUSDT")
	if err != nil {
		t.Fatalf("GetTicker returned error: %v", err)
	}

	if ticker.Symbol != "SOLUSDT" {
		t.Errorf("symbol = %s, want SOLUSDT", ticker.Symbol)
	}
	if ticker.LastPrice <= 0 {
		t.Errorf("last price = %f, want positive", ticker.LastPrice)
	}
	if ticker.HighPrice != ticker.LastPrice*1.05 {
		t.Errorf("high price = %f, want 5%% above last", ticker.HighPrice)
	}
	if ticker.LowPrice != ticker.LastPrice*0.95 {
		t.Errorf("low price = %f, want 5%% below last", ticker.LowPrice)
	}
	if ticker.Volume <= 0 || ticker.QuoteVolume <= 0 {
		t.Errorf("volumes = (%f, %f), want positive", ticker.Volume, ticker.QuoteVolume)
	}
}

func TestCandleHelpers(t *testing.T) {
	candles := []Candle{
		{Close: 1, Volume: 10},
		{Close: 2, Volume: 20},
		{Close: 3, Volume: 30},
	}

	closes := Closes(candles)
	if len(closes) != 3 || closes[0] != 1 || closes[2] != 3 {
		t.Errorf("Closes = %v, want [1 2 3]", closes)
	}

	volumes := Volumes(candles)
	if len(volumes) != 3 || volumes[0] != 10 || volumes[2] != 30 {
		t.Errorf("Volumes = %v, want [10 20 30]", volumes)
	}
}

func TestIntervalToDuration(t *testing.T) {
	tests := []struct {
		interval string
		want     string
	}{
		{"1m", "1m0s"},
		{"5m", "5m0s"},
		{"15m", "15m0s"},
		{"1h", "1h0m0s"},
		{"4h", "4h0m0s"},
		{"1d", "24h0m0s"},
		{"bogus", "1h0m0s"},
	}

	for _, tt := range tests {
		if got := intervalToDuration(tt.interval).String(); got != tt.want {
			t.Errorf("intervalToDuration(%q) = %s, want %s", tt.interval, got, tt.want)
		}
	}
}
