package market

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// SyntheticDataSource provides simulated market data for development,
// dry runs, and tests. Prices follow a random walk seeded from a fixed
// table of realistic base prices, so indicator math sees plausible
// series without any network access.
type SyntheticDataSource struct {
	prices     map[string]float64
	rng        *rand.Rand
	lastUpdate time.Time
	mu         sync.Mutex
}

// NewSyntheticDataSource creates a synthetic source. A seed of 0 uses
// the current time, giving fresh data each run; tests pass a fixed seed
// for reproducibility.
func NewSyntheticDataSource(seed int64) *SyntheticDataSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &SyntheticDataSource{
		rng:        rand.New(rand.NewSource(seed)),
		lastUpdate: time.Now(),
		prices: map[string]float64{
			"BTCUSDT":  104500.00,
			"ETHUSDT":  3900.00,
			"BNBUSDT":  710.00,
			"SOLUSDT":  220.00,
			"XRPUSDT":  2.35,
			"ADAUSDT":  1.05,
			"DOGEUSDT": 0.40,
			"AVAXUSDT": 50.00,
			"DOTUSDT":  9.50,
			"LINKUSDT": 28.00,
		},
	}
}

// updatePrices adds small random variations to simulate market movement.
func (s *SyntheticDataSource) updatePrices() {
	if time.Since(s.lastUpdate) < time.Second {
		return
	}

	for symbol, price := range s.prices {
		// Random walk: -0.5% to +0.5% change
		change := (s.rng.Float64() - 0.5) * 0.01
		s.prices[symbol] = price * (1 + change)
	}
	s.lastUpdate = time.Now()
}

// GetCandles returns simulated candlestick data, oldest-first.
func (s *SyntheticDataSource) GetCandles(symbol, interval string, limit int) ([]Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updatePrices()

	basePrice, ok := s.prices[symbol]
	if !ok {
		basePrice = 100.0
	}

	intervalDuration := intervalToDuration(interval)
	candles := make([]Candle, limit)
	now := time.Now()

	currentPrice := basePrice
	for i := limit - 1; i >= 0; i-- {
		openTime := now.Add(-time.Duration(limit-i) * intervalDuration)
		closeTime := openTime.Add(intervalDuration)

		volatility := 0.02
		open := currentPrice
		change := (s.rng.Float64() - 0.5) * volatility * 2
		close := open * (1 + change)

		high := math.Max(open, close) * (1 + s.rng.Float64()*volatility*0.5)
		low := math.Min(open, close) * (1 - s.rng.Float64()*volatility*0.5)

		volume := 1000 + s.rng.Float64()*5000

		candles[i] = Candle{
			OpenTime:  openTime.UnixMilli(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
			CloseTime: closeTime.UnixMilli(),
		}

		currentPrice = close
	}

	return candles, nil
}

// GetTicker returns simulated 24hr ticker statistics.
func (s *SyntheticDataSource) GetTicker(symbol string) (*Ticker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updatePrices()

	price, ok := s.prices[symbol]
	if !ok {
		price = 100.0
	}

	priceChange := (s.rng.Float64() - 0.5) * price * 0.1
	volume := 1000000 + s.rng.Float64()*10000000

	return &Ticker{
		Symbol:             symbol,
		LastPrice:          price,
		PriceChangePercent: (priceChange / price) * 100,
		Volume:             volume,
		QuoteVolume:        price * volume,
		HighPrice:          price * 1.05,
		LowPrice:           price * 0.95,
	}, nil
}

func intervalToDuration(interval string) time.Duration {
	switch interval {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return time.Hour
	}
}
