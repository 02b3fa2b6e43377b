package prices

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Sarish05/AIvestor-sub000/internal/ledger"
)

// Source supplies the latest market price for a symbol. The ledger
// makes no assumption about where prices come from: a live market-data
// API, a cached quote or the simulator all satisfy it.
type Source interface {
	GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// ErrUnknownSymbol - the source has no quote for the requested symbol
var ErrUnknownSymbol = errors.New("unknown symbol")

// Quote is the projection both market rows and held positions reduce
// to before the ledger consumes them: a symbol and a price, nothing
// else.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// QuoteFromMarket projects a market data row to a Quote.
func QuoteFromMarket(symbol string, price decimal.Decimal) Quote {
	return Quote{Symbol: symbol, Price: price}
}

// QuoteFromPosition projects a held position's latest known price to a
// Quote.
func QuoteFromPosition(p ledger.Position) Quote {
	return Quote{Symbol: p.Symbol, Price: p.CurrentPrice}
}
