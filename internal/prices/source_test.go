package prices

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Sarish05/AIvestor-sub000/internal/ledger"
)

// Market rows and held positions project to the same shape, so the
// trading path never handles their differing fields.
func TestQuoteProjections(t *testing.T) {
	market := QuoteFromMarket("RELIANCE", decimal.NewFromInt(2500))
	if market.Symbol != "RELIANCE" || !market.Price.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("Unexpected market projection: %+v", market)
	}

	held := QuoteFromPosition(ledger.Position{
		Symbol:       "RELIANCE",
		Shares:       3,
		AverageCost:  decimal.NewFromInt(2400),
		CurrentPrice: decimal.NewFromInt(2500),
	})
	if held.Symbol != market.Symbol || !held.Price.Equal(market.Price) {
		t.Errorf("Position projection %+v differs from market projection %+v", held, market)
	}
}
