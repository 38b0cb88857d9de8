package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"signal-trading-bot/internal/logging"
	"signal-trading-bot/internal/market"
	"signal-trading-bot/internal/risk"
)

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Order is a request to trade a snapped quantity at market.
type Order struct {
	Symbol     string
	Side       OrderSide
	Quantity   float64
	Price      float64 // reference price at decision time
	MarketType market.MarketType
}

// Fill reports the executed order.
type Fill struct {
	Price    float64
	Quantity float64
	Time     time.Time
}

// OrderExecutor places orders. Implementations must be safe for use from
// the scan loop goroutine.
type OrderExecutor interface {
	ExecuteOrder(ctx context.Context, order Order) (*Fill, error)
}

// AccountSnapshot is the account state risk checks run against.
type AccountSnapshot struct {
	Balance   float64
	Portfolio risk.PortfolioState
}

// AccountProvider supplies the current account state.
type AccountProvider interface {
	Snapshot(ctx context.Context) (AccountSnapshot, error)
}

// PaperTrader simulates execution for dry runs. It fills every order at
// the reference price and tracks the resulting positions in memory, so the
// risk gate sees a realistic portfolio without touching an exchange.
// It implements both OrderExecutor and AccountProvider.
type PaperTrader struct {
	mu          sync.Mutex
	balance     float64
	positions   map[string]risk.Position
	dailyTrades int
	dayStart    time.Time
	logger      zerolog.Logger
}

// NewPaperTrader creates a paper trader with the given starting balance.
func NewPaperTrader(balance float64) *PaperTrader {
	return &PaperTrader{
		balance:   balance,
		positions: make(map[string]risk.Position),
		dayStart:  time.Now().UTC().Truncate(24 * time.Hour),
		logger:    logging.Component("paper_trader"),
	}
}

// ExecuteOrder implements OrderExecutor.
func (t *PaperTrader) ExecuteOrder(ctx context.Context, order Order) (*Fill, error) {
	if order.Quantity <= 0 {
		return nil, fmt.Errorf("invalid quantity %f", order.Quantity)
	}
	if order.Price <= 0 {
		return nil, fmt.Errorf("invalid price %f", order.Price)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollDayLocked()

	notional := order.Quantity * order.Price

	switch order.Side {
	case SideBuy:
		if notional > t.balance {
			return nil, fmt.Errorf("insufficient balance: need %.2f, have %.2f", notional, t.balance)
		}
		t.balance -= notional
		t.positions[order.Symbol] = risk.Position{
			Symbol:     order.Symbol,
			Quantity:   order.Quantity,
			EntryPrice: order.Price,
		}
	case SideSell:
		if pos, ok := t.positions[order.Symbol]; ok {
			t.balance += pos.Quantity * order.Price
			delete(t.positions, order.Symbol)
		} else {
			// No holdings to close: treat as a short entry and track the
			// exposure so portfolio heat stays honest.
			t.positions[order.Symbol] = risk.Position{
				Symbol:     order.Symbol,
				Quantity:   order.Quantity,
				EntryPrice: order.Price,
			}
		}
	default:
		return nil, fmt.Errorf("unknown order side %q", order.Side)
	}

	t.dailyTrades++

	t.logger.Info().
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Float64("quantity", order.Quantity).
		Float64("price", order.Price).
		Float64("balance", t.balance).
		Msg("Paper order filled")

	return &Fill{
		Price:    order.Price,
		Quantity: order.Quantity,
		Time:     time.Now(),
	}, nil
}

// Snapshot implements AccountProvider.
func (t *PaperTrader) Snapshot(ctx context.Context) (AccountSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollDayLocked()

	positions := make([]risk.Position, 0, len(t.positions))
	total := t.balance
	for _, pos := range t.positions {
		positions = append(positions, pos)
		total += pos.Notional()
	}

	return AccountSnapshot{
		Balance: t.balance,
		Portfolio: risk.PortfolioState{
			Positions:   positions,
			TotalValue:  total,
			DailyTrades: t.dailyTrades,
		},
	}, nil
}

// rollDayLocked resets the daily trade counter at UTC midnight.
func (t *PaperTrader) rollDayLocked() {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if today.After(t.dayStart) {
		t.dayStart = today
		t.dailyTrades = 0
	}
}
