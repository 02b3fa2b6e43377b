package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Window is a named time range bounding an equity-curve query.
type Window string

const (
	Window1W  Window = "1W"
	Window1M  Window = "1M"
	Window3M  Window = "3M"
	Window6M  Window = "6M"
	Window1Y  Window = "1Y"
	WindowAll Window = "ALL"
)

// ParseWindow maps a query string like "1m" or "all" to a Window.
func ParseWindow(s string) (Window, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1W":
		return Window1W, nil
	case "", "1M":
		return Window1M, nil
	case "3M":
		return Window3M, nil
	case "6M":
		return Window6M, nil
	case "1Y":
		return Window1Y, nil
	case "ALL":
		return WindowAll, nil
	default:
		return "", fmt.Errorf("unknown range %q (use 1W|1M|3M|6M|1Y|ALL)", s)
	}
}

// start returns the window's lower bound. ALL starts at the first
// transaction, or at now for an empty log.
func (w Window) start(now, firstTx time.Time) time.Time {
	switch w {
	case Window1W:
		return now.AddDate(0, 0, -7)
	case Window1M:
		return now.AddDate(0, -1, 0)
	case Window3M:
		return now.AddDate(0, -3, 0)
	case Window6M:
		return now.AddDate(0, -6, 0)
	case Window1Y:
		return now.AddDate(-1, 0, 0)
	default:
		if firstTx.IsZero() {
			return now
		}
		return firstTx
	}
}

// EquityPoint is one sample of total portfolio value.
type EquityPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// EquityCurve reconstructs portfolio value over the window by replaying
// the transaction log from the initial cash. Holdings are valued at
// each symbol's latest known price, not the price on the sampled date:
// per-day historical prices are not retained, so the curve is a
// best-effort approximation rather than a true mark-to-market.
//
// The result always holds at least two points, ends today, and is
// non-decreasing in date. It is recomputed from scratch on every call.
func (l *Ledger) EquityCurve(w Window) []EquityPoint {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if len(l.transactions) == 0 {
		start := w.start(now, time.Time{})
		return []EquityPoint{
			{Date: start, Value: l.initialInvestment},
			{Date: now, Value: l.initialInvestment},
		}
	}

	start := w.start(now, l.transactions[0].Date)

	// Latest known price per symbol: the live position price for held
	// symbols, the last traded price for symbols since sold out.
	latest := make(map[string]decimal.Decimal, len(l.positions))
	for _, tx := range l.transactions {
		latest[tx.Ticker] = tx.Price
	}
	for sym, p := range l.positions {
		latest[sym] = p.CurrentPrice
	}

	cash := l.initialInvestment
	shares := make(map[string]int64)

	var points []EquityPoint
	for _, tx := range l.transactions {
		switch tx.Type {
		case SideBuy:
			cash = cash.Sub(tx.Total)
			shares[tx.Ticker] += tx.Shares
		case SideSell:
			cash = cash.Add(tx.Total)
			shares[tx.Ticker] -= tx.Shares
		}

		if tx.Date.Before(start) {
			continue
		}

		value := cash
		for sym, n := range shares {
			if n > 0 {
				value = value.Add(latest[sym].Mul(decimal.NewFromInt(n)))
			}
		}
		points = append(points, EquityPoint{Date: tx.Date, Value: value})
	}

	if len(points) == 0 || !sameDay(points[len(points)-1].Date, now) {
		points = append(points, EquityPoint{Date: now, Value: l.valuationLocked()})
	}
	if len(points) < 2 {
		points = append(points, EquityPoint{Date: now, Value: points[0].Value})
	}
	return points
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
