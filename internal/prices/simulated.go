package prices

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Tick is one simulated price movement.
type Tick struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent float64         `json:"change_percent"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Simulator is a random-walk quote board over a fixed symbol table.
// Each Step moves one random symbol by up to ±2%. It backs both the
// ledger's price lookups and the websocket stream, so trades and the
// chart see the same quotes.
type Simulator struct {
	mu      sync.RWMutex
	symbols []string
	quotes  map[string]decimal.Decimal
	rng     *rand.Rand
}

// Large-cap NSE seed quotes, in rupees.
var defaultQuotes = map[string]decimal.Decimal{
	"RELIANCE":  decimal.NewFromInt(2500),
	"TCS":       decimal.NewFromInt(3600),
	"INFY":      decimal.NewFromInt(1500),
	"HDFCBANK":  decimal.NewFromInt(1650),
	"ICICIBANK": decimal.NewFromInt(1000),
	"SBIN":      decimal.NewFromInt(620),
	"ITC":       decimal.NewFromInt(440),
	"LT":        decimal.NewFromInt(3400),
}

// NewSimulator creates a simulator seeded with the default quote
// table.
func NewSimulator() *Simulator {
	return NewSimulatorWith(defaultQuotes)
}

// NewSimulatorWith creates a simulator over the given seed quotes.
func NewSimulatorWith(seed map[string]decimal.Decimal) *Simulator {
	s := &Simulator{
		quotes: make(map[string]decimal.Decimal, len(seed)),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for sym, price := range seed {
		s.symbols = append(s.symbols, sym)
		s.quotes[sym] = price
	}
	return s
}

// GetCurrentPrice implements Source.
func (s *Simulator) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.quotes[symbol]
	if !ok {
		return decimal.Zero, ErrUnknownSymbol
	}
	return price, nil
}

// Snapshot returns the current quote for every symbol.
func (s *Simulator) Snapshot() []Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Quote, 0, len(s.symbols))
	for _, sym := range s.symbols {
		out = append(out, QuoteFromMarket(sym, s.quotes[sym]))
	}
	return out
}

// Step moves one random symbol by -2% to +2% and returns the tick.
func (s *Simulator) Step() Tick {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := s.symbols[s.rng.Intn(len(s.symbols))]
	changePercent := (s.rng.Float64() - 0.5) * 4

	old := s.quotes[symbol]
	factor := decimal.NewFromFloat(1 + changePercent/100)
	next := old.Mul(factor).Round(2)
	s.quotes[symbol] = next

	return Tick{
		Symbol:        symbol,
		Price:         next,
		ChangePercent: changePercent,
		Timestamp:     time.Now(),
	}
}
