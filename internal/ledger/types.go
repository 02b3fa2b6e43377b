package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Position represents a holding of one stock
type Position struct {
	Symbol       string          `json:"symbol"`
	Shares       int64           `json:"shares"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// Transaction is one executed buy or sell, recorded in the log
type Transaction struct {
	ID     string          `json:"id"`
	Date   time.Time       `json:"date"`
	Ticker string          `json:"ticker"`
	Type   Side            `json:"type"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Total  decimal.Decimal `json:"total"`
}

// Holding is a read-only snapshot row of one position with its
// derived fields filled in
type Holding struct {
	Symbol               string          `json:"symbol"`
	Shares               int64           `json:"shares"`
	AverageCost          decimal.Decimal `json:"average_cost"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	TotalValue           decimal.Decimal `json:"total_value"`
	ProfitLoss           decimal.Decimal `json:"profit_loss"`
	ProfitLossPercentage decimal.Decimal `json:"profit_loss_percentage"`
	Weight               decimal.Decimal `json:"weight"`
}

// totalValue is shares * currentPrice
func (p *Position) totalValue() decimal.Decimal {
	return p.CurrentPrice.Mul(decimal.NewFromInt(p.Shares))
}
