package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Sarish05/AIvestor-sub000/internal/ledger"
	"github.com/Sarish05/AIvestor-sub000/internal/prices"
	"github.com/Sarish05/AIvestor-sub000/internal/session"
)

// OrderResult is what a submitted order resolves to.
type OrderResult struct {
	Transaction ledger.Transaction
	Err         error
}

// orderRequest is one buy or sell waiting in the queue.
type orderRequest struct {
	sessionID string
	side      ledger.Side
	symbol    string
	amount    decimal.Decimal // buy: cash to invest
	shares    int64           // sell: quantity
	resultCh  chan OrderResult
}

// OrderProcessor runs trades through a worker pool. The price is
// fetched before the ledger is touched, so a failed or timed-out
// lookup leaves the portfolio untouched; the ledger's own mutex keeps
// concurrent orders against one session from reading stale cash.
type OrderProcessor struct {
	workers      int
	orderQueue   chan orderRequest
	stopCh       chan struct{}
	wg           sync.WaitGroup
	sessions     *session.Registry
	source       prices.Source
	priceTimeout time.Duration
}

// NewOrderProcessor creates a processor backed by the given sessions
// and price source.
func NewOrderProcessor(workers int, sessions *session.Registry, source prices.Source) *OrderProcessor {
	return &OrderProcessor{
		workers:      workers,
		orderQueue:   make(chan orderRequest, 100),
		stopCh:       make(chan struct{}),
		sessions:     sessions,
		source:       source,
		priceTimeout: 5 * time.Second,
	}
}

// Start starts the worker pool.
func (op *OrderProcessor) Start() {
	for i := 0; i < op.workers; i++ {
		op.wg.Add(1)
		go op.worker(i)
	}
	log.Info().Int("workers", op.workers).Msg("order workers started")
}

// Stop gracefully stops all workers.
func (op *OrderProcessor) Stop() {
	close(op.stopCh)
	op.wg.Wait()
	log.Info().Msg("order processor stopped")
}

func (op *OrderProcessor) worker(id int) {
	defer op.wg.Done()

	for {
		select {
		case <-op.stopCh:
			log.Debug().Int("worker", id).Msg("worker stopping")
			return

		case req := <-op.orderQueue:
			log.Info().
				Int("worker", id).
				Str("session", req.sessionID).
				Str("side", string(req.side)).
				Str("symbol", req.symbol).
				Msg("processing order")

			req.resultCh <- op.process(req)
		}
	}
}

func (op *OrderProcessor) process(req orderRequest) OrderResult {
	l := op.sessions.Ledger(req.sessionID)

	// Obtain the price before entering the ledger's critical section
	ctx, cancel := context.WithTimeout(context.Background(), op.priceTimeout)
	defer cancel()

	price, err := op.source.GetCurrentPrice(ctx, req.symbol)
	if err != nil {
		return OrderResult{Err: fmt.Errorf("%w: %w", ledger.ErrPriceUnavailable, err)}
	}

	var tx ledger.Transaction
	switch req.side {
	case ledger.SideBuy:
		tx, err = l.Buy(req.symbol, req.amount, price)
	case ledger.SideSell:
		tx, err = l.Sell(req.symbol, req.shares, price)
	}
	return OrderResult{Transaction: tx, Err: err}
}

// SubmitBuy queues a buy order and waits for its result.
func (op *OrderProcessor) SubmitBuy(sessionID, symbol string, amount decimal.Decimal) OrderResult {
	return op.submit(orderRequest{
		sessionID: sessionID,
		side:      ledger.SideBuy,
		symbol:    symbol,
		amount:    amount,
	})
}

// SubmitSell queues a sell order and waits for its result.
func (op *OrderProcessor) SubmitSell(sessionID, symbol string, shares int64) OrderResult {
	return op.submit(orderRequest{
		sessionID: sessionID,
		side:      ledger.SideSell,
		symbol:    symbol,
		shares:    shares,
	})
}

func (op *OrderProcessor) submit(req orderRequest) OrderResult {
	req.resultCh = make(chan OrderResult)
	op.orderQueue <- req
	return <-req.resultCh
}
