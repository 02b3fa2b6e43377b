package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger owns one portfolio: cash, held positions and the append-only
// transaction log. All mutation goes through Buy and Sell, so replaying
// the log against the initial cash always reproduces the current state.
//
// A single mutex guards the whole portfolio. Price lookup happens
// before the lock is taken (callers pass the price in), so the critical
// section never blocks on I/O.
type Ledger struct {
	mu sync.Mutex

	cash              decimal.Decimal
	initialInvestment decimal.Decimal
	positions         map[string]*Position
	transactions      []Transaction

	now func() time.Time
}

// New creates a portfolio seeded with initialInvestment in cash and no
// positions.
func New(initialInvestment decimal.Decimal) *Ledger {
	return &Ledger{
		cash:              initialInvestment,
		initialInvestment: initialInvestment,
		positions:         make(map[string]*Position),
		now:               time.Now,
	}
}

// Buy spends up to amountToInvest on whole shares of symbol at
// currentPrice. The share count is floored, so the actual cost can be
// below the requested amount. Nothing is mutated on failure.
func (l *Ledger) Buy(symbol string, amountToInvest, currentPrice decimal.Decimal) (Transaction, error) {
	if !currentPrice.IsPositive() {
		return Transaction{}, ErrPriceUnavailable
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// 1. Whole shares only - exact integer quotient, remainder stays
	// in cash (rounding division could misfloor a near-integer ratio)
	quotient, _ := amountToInvest.QuoRem(currentPrice, 0)
	shares := quotient.IntPart()
	if shares <= 0 {
		return Transaction{}, ErrInvalidOrder
	}

	// 2. Check cash covers the actual cost
	cost := currentPrice.Mul(decimal.NewFromInt(shares))
	if cost.GreaterThan(l.cash) {
		return Transaction{}, ErrInsufficientFunds
	}

	// 3. Deduct cash
	l.cash = l.cash.Sub(cost)

	// 4. Update the position, recomputing the weighted average cost
	if existing, ok := l.positions[symbol]; ok {
		oldBasis := existing.AverageCost.Mul(decimal.NewFromInt(existing.Shares))
		newShares := existing.Shares + shares
		existing.AverageCost = oldBasis.Add(cost).Div(decimal.NewFromInt(newShares))
		existing.Shares = newShares
		existing.CurrentPrice = currentPrice
	} else {
		l.positions[symbol] = &Position{
			Symbol:       symbol,
			Shares:       shares,
			AverageCost:  currentPrice,
			CurrentPrice: currentPrice,
		}
	}

	// 5. Record the trade
	tx := Transaction{
		ID:     uuid.NewString(),
		Date:   l.now(),
		Ticker: symbol,
		Type:   SideBuy,
		Shares: shares,
		Price:  currentPrice,
		Total:  cost,
	}
	l.transactions = append(l.transactions, tx)

	return tx, nil
}

// Sell disposes of sharesToSell shares of symbol at currentPrice. A
// request for more shares than held is clamped to the held quantity
// ("sell everything"), not rejected. Selling a position down to zero
// removes it entirely; the average cost of what remains is untouched.
func (l *Ledger) Sell(symbol string, sharesToSell int64, currentPrice decimal.Decimal) (Transaction, error) {
	if currentPrice.IsNegative() {
		return Transaction{}, ErrPriceUnavailable
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.positions[symbol]
	if !ok {
		return Transaction{}, ErrNoSuchPosition
	}

	// 1. Clamp to the held quantity
	if sharesToSell > existing.Shares {
		sharesToSell = existing.Shares
	}
	if sharesToSell <= 0 {
		return Transaction{}, ErrInvalidOrder
	}

	// 2. Add proceeds to cash
	proceeds := currentPrice.Mul(decimal.NewFromInt(sharesToSell))
	l.cash = l.cash.Add(proceeds)

	// 3. Reduce or remove the position
	remaining := existing.Shares - sharesToSell
	if remaining == 0 {
		delete(l.positions, symbol)
	} else {
		existing.Shares = remaining
		existing.CurrentPrice = currentPrice
	}

	// 4. Record the trade
	tx := Transaction{
		ID:     uuid.NewString(),
		Date:   l.now(),
		Ticker: symbol,
		Type:   SideSell,
		Shares: sharesToSell,
		Price:  currentPrice,
		Total:  proceeds,
	}
	l.transactions = append(l.transactions, tx)

	return tx, nil
}

// SetPrice refreshes the latest known market price of a held position.
// Symbols not currently held are ignored.
func (l *Ledger) SetPrice(symbol string, price decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.positions[symbol]; ok {
		p.CurrentPrice = price
	}
}

// Valuation returns cash plus the market value of every position at its
// latest known price. Callers wanting an up-to-date number refresh the
// held prices first via SetPrice.
func (l *Ledger) Valuation() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.valuationLocked()
}

func (l *Ledger) valuationLocked() decimal.Decimal {
	total := l.cash
	for _, p := range l.positions {
		total = total.Add(p.totalValue())
	}
	return total
}

// ReturnPercentage returns the overall gain or loss relative to the
// initial investment, in percent.
func (l *Ledger) ReturnPercentage() (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialInvestment.IsZero() {
		return decimal.Zero, ErrZeroInitialInvestment
	}
	return l.valuationLocked().
		Sub(l.initialInvestment).
		Div(l.initialInvestment).
		Mul(decimal.NewFromInt(100)), nil
}

// Holdings returns a snapshot of every position with its derived
// fields (market value, profit/loss, portfolio weight) computed at the
// latest known prices. Order follows no particular sequence.
func (l *Ledger) Holdings() []Holding {
	l.mu.Lock()
	defer l.mu.Unlock()

	totalValue := l.valuationLocked()
	hundred := decimal.NewFromInt(100)

	holdings := make([]Holding, 0, len(l.positions))
	for _, p := range l.positions {
		h := Holding{
			Symbol:       p.Symbol,
			Shares:       p.Shares,
			AverageCost:  p.AverageCost,
			CurrentPrice: p.CurrentPrice,
			TotalValue:   p.totalValue(),
			ProfitLoss:   p.CurrentPrice.Sub(p.AverageCost),
		}
		if p.AverageCost.IsPositive() {
			h.ProfitLossPercentage = h.ProfitLoss.Div(p.AverageCost).Mul(hundred)
		}
		if totalValue.IsPositive() {
			h.Weight = h.TotalValue.Div(totalValue).Mul(hundred)
		}
		holdings = append(holdings, h)
	}
	return holdings
}

// HeldSymbols returns the symbols currently held.
func (l *Ledger) HeldSymbols() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	symbols := make([]string, 0, len(l.positions))
	for s := range l.positions {
		symbols = append(symbols, s)
	}
	return symbols
}

// Transactions returns a copy of the transaction log in chronological
// order.
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Cash returns the cash available for trading.
func (l *Ledger) Cash() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// InitialInvestment returns the cash the portfolio was seeded with.
func (l *Ledger) InitialInvestment() decimal.Decimal {
	return l.initialInvestment
}
