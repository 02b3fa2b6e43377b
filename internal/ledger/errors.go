package ledger

import "errors"

// Trade failures are reported as typed errors so callers can map them
// to user-facing responses without parsing messages.
var (
	// ErrInvalidOrder - the amount buys zero shares at the current
	// price, or a sell resolves to zero shares
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInsufficientFunds - buy cost exceeds available cash
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoSuchPosition - sell requested on a stock not currently held
	ErrNoSuchPosition = errors.New("position not held")

	// ErrPriceUnavailable - no usable price could be obtained for the
	// symbol, the trade was not started
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrZeroInitialInvestment - return percentage is undefined for a
	// portfolio seeded with zero cash
	ErrZeroInitialInvestment = errors.New("initial investment is zero")
)
