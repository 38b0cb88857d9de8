package indicator

import (
	"errors"

	"signal-trading-bot/internal/market"
)

// ErrEmptySeries reports a contract violation: the engine was invoked
// without any candles at all. Degenerate-but-present data never errors;
// it degrades to sentinels per indicator.
var ErrEmptySeries = errors.New("indicator: empty candle series")

// Set holds every indicator computed from a single candle sequence. It has
// no persisted identity and is recomputed on every analysis call.
type Set struct {
	SMA20  float64
	SMA50  float64
	SMA200 float64
	EMA12  float64
	EMA26  float64

	RSI       float64
	MACD      MACDResult
	Bollinger BollingerBands
	ATR       float64
	ADX       float64
	CCI       float64
	WilliamsR float64

	OBV         float64
	StochasticK float64
	VolumeRatio float64

	Support    float64
	Resistance float64

	TrendStrength float64
	Volatility    float64
	Momentum      float64
}

// Config holds the periods used by the engine. Zero values are replaced by
// the conventional defaults.
type Config struct {
	RSIPeriod        int
	MACDFast         int
	MACDSlow         int
	MACDSignal       int
	SignalLine       SignalLineMode
	BollingerPeriod  int
	BollingerStdDev  float64
	ATRPeriod        int
	ADXPeriod        int
	CCIPeriod        int
	WilliamsPeriod   int
	StochasticPeriod int
	SRLookback       int
	VolumePeriod     int
}

// DefaultConfig returns the conventional indicator periods.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:        14,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		SignalLine:       SignalLineFaithful,
		BollingerPeriod:  20,
		BollingerStdDev:  2.0,
		ATRPeriod:        14,
		ADXPeriod:        14,
		CCIPeriod:        20,
		WilliamsPeriod:   14,
		StochasticPeriod: 14,
		SRLookback:       50,
		VolumePeriod:     20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.MACDFast <= 0 {
		c.MACDFast = d.MACDFast
	}
	if c.MACDSlow <= 0 {
		c.MACDSlow = d.MACDSlow
	}
	if c.MACDSignal <= 0 {
		c.MACDSignal = d.MACDSignal
	}
	if c.SignalLine == "" {
		c.SignalLine = d.SignalLine
	}
	if c.BollingerPeriod <= 0 {
		c.BollingerPeriod = d.BollingerPeriod
	}
	if c.BollingerStdDev <= 0 {
		c.BollingerStdDev = d.BollingerStdDev
	}
	if c.ATRPeriod <= 0 {
		c.ATRPeriod = d.ATRPeriod
	}
	if c.ADXPeriod <= 0 {
		c.ADXPeriod = d.ADXPeriod
	}
	if c.CCIPeriod <= 0 {
		c.CCIPeriod = d.CCIPeriod
	}
	if c.WilliamsPeriod <= 0 {
		c.WilliamsPeriod = d.WilliamsPeriod
	}
	if c.StochasticPeriod <= 0 {
		c.StochasticPeriod = d.StochasticPeriod
	}
	if c.SRLookback <= 0 {
		c.SRLookback = d.SRLookback
	}
	if c.VolumePeriod <= 0 {
		c.VolumePeriod = d.VolumePeriod
	}
	return c
}

// Engine computes indicator sets from candle sequences. It holds no state
// between invocations.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Compute derives the full indicator set from an oldest-first candle
// sequence. Short history degrades individual indicators to their
// documented sentinels; only a fully empty series is an error.
func (e *Engine) Compute(candles []market.Candle) (*Set, error) {
	if len(candles) == 0 {
		return nil, ErrEmptySeries
	}

	support, resistance := FindSupportResistance(candles, e.cfg.SRLookback)

	return &Set{
		SMA20:  CalculateSMA(candles, 20),
		SMA50:  CalculateSMA(candles, 50),
		SMA200: CalculateSMA(candles, 200),
		EMA12:  CalculateEMA(candles, e.cfg.MACDFast),
		EMA26:  CalculateEMA(candles, e.cfg.MACDSlow),

		RSI:       CalculateRSI(candles, e.cfg.RSIPeriod),
		MACD:      *CalculateMACD(candles, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal, e.cfg.SignalLine),
		Bollinger: *CalculateBollingerBands(candles, e.cfg.BollingerPeriod, e.cfg.BollingerStdDev),
		ATR:       CalculateATR(candles, e.cfg.ATRPeriod),
		ADX:       CalculateADX(candles, e.cfg.ADXPeriod),
		CCI:       CalculateCCI(candles, e.cfg.CCIPeriod),
		WilliamsR: CalculateWilliamsR(candles, e.cfg.WilliamsPeriod),

		OBV:         CalculateOBV(candles),
		StochasticK: CalculateStochasticK(candles, e.cfg.StochasticPeriod),
		VolumeRatio: CalculateVolumeRatio(candles, e.cfg.VolumePeriod),

		Support:    support,
		Resistance: resistance,

		TrendStrength: CalculateTrendStrength(candles),
		Volatility:    CalculateVolatility(candles),
		Momentum:      CalculateMomentum(candles),
	}, nil
}
