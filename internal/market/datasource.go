package market

// DataSource supplies market data to the analysis pipeline. The pipeline
// never talks to an exchange directly; it consumes whatever candles and
// tickers the configured source returns.
//
// Two implementations exist: LiveDataSource (Binance REST) and
// SyntheticDataSource (simulated random-walk data for development and
// dry runs). The caller selects one explicitly at startup.
type DataSource interface {
	// GetCandles returns up to limit candles for the symbol and interval,
	// ordered oldest-first.
	GetCandles(symbol, interval string, limit int) ([]Candle, error)

	// GetTicker returns 24hr rolling statistics for the symbol.
	GetTicker(symbol string) (*Ticker, error)
}

// MarketType distinguishes the spot and futures markets for a symbol.
type MarketType string

const (
	MarketSpot    MarketType = "SPOT"
	MarketFutures MarketType = "FUTURES"
)
