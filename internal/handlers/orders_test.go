package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Sarish05/AIvestor-sub000/internal/ledger"
	"github.com/Sarish05/AIvestor-sub000/internal/prices"
	"github.com/Sarish05/AIvestor-sub000/internal/session"
)

// stubSource serves fixed prices without any market simulation.
type stubSource struct {
	quotes map[string]decimal.Decimal
	err    error
}

func (s *stubSource) GetCurrentPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	price, ok := s.quotes[symbol]
	if !ok {
		return decimal.Zero, prices.ErrUnknownSymbol
	}
	return price, nil
}

func newTestProcessor(t *testing.T, workers int, initialCash int64, source prices.Source) (*OrderProcessor, *session.Registry) {
	t.Helper()
	sessions := session.NewRegistry(decimal.NewFromInt(initialCash))
	op := NewOrderProcessor(workers, sessions, source)
	op.Start()
	t.Cleanup(op.Stop)
	return op, sessions
}

func fixedQuotes() *stubSource {
	return &stubSource{quotes: map[string]decimal.Decimal{
		"RELIANCE": decimal.NewFromInt(2500),
		"TCS":      decimal.NewFromInt(3600),
	}}
}

func TestSubmitBuy_Success(t *testing.T) {
	op, sessions := newTestProcessor(t, 1, 100000, fixedQuotes())

	result := op.SubmitBuy("s1", "RELIANCE", decimal.NewFromInt(10000))
	if result.Err != nil {
		t.Fatalf("Expected buy to succeed, got error: %v", result.Err)
	}
	if result.Transaction.Shares != 4 {
		t.Errorf("Expected 4 shares, got %d", result.Transaction.Shares)
	}

	cash := sessions.Ledger("s1").Cash()
	if !cash.Equal(decimal.NewFromInt(90000)) {
		t.Errorf("Expected cash 90000, got %s", cash)
	}
}

func TestSubmitBuy_InsufficientFunds(t *testing.T) {
	op, sessions := newTestProcessor(t, 1, 100, fixedQuotes())

	result := op.SubmitBuy("s1", "RELIANCE", decimal.NewFromInt(5000))
	if !errors.Is(result.Err, ledger.ErrInsufficientFunds) {
		t.Errorf("Expected ErrInsufficientFunds, got %v", result.Err)
	}

	if !sessions.Ledger("s1").Cash().Equal(decimal.NewFromInt(100)) {
		t.Error("Failed buy must not touch cash")
	}
}

func TestSubmitBuy_UnknownSymbol(t *testing.T) {
	op, sessions := newTestProcessor(t, 1, 100000, fixedQuotes())

	result := op.SubmitBuy("s1", "DOESNOTEXIST", decimal.NewFromInt(5000))
	if !errors.Is(result.Err, ledger.ErrPriceUnavailable) {
		t.Errorf("Expected ErrPriceUnavailable, got %v", result.Err)
	}
	if !errors.Is(result.Err, prices.ErrUnknownSymbol) {
		t.Errorf("Expected wrapped ErrUnknownSymbol, got %v", result.Err)
	}
	if len(sessions.Ledger("s1").Transactions()) != 0 {
		t.Error("Failed price lookup must not record a transaction")
	}
}

func TestSubmitBuy_SourceDown(t *testing.T) {
	op, sessions := newTestProcessor(t, 1, 100000, &stubSource{err: errors.New("feed offline")})

	result := op.SubmitBuy("s1", "RELIANCE", decimal.NewFromInt(5000))
	if !errors.Is(result.Err, ledger.ErrPriceUnavailable) {
		t.Errorf("Expected ErrPriceUnavailable, got %v", result.Err)
	}
	if !sessions.Ledger("s1").Cash().Equal(decimal.NewFromInt(100000)) {
		t.Error("Failed price lookup must not touch cash")
	}
}

func TestSubmitSell_SellEverything(t *testing.T) {
	op, sessions := newTestProcessor(t, 1, 100000, fixedQuotes())

	if r := op.SubmitBuy("s1", "TCS", decimal.NewFromInt(7200)); r.Err != nil {
		t.Fatalf("Setup buy failed: %v", r.Err)
	}

	// Over-asking clamps to the held quantity
	result := op.SubmitSell("s1", "TCS", 99)
	if result.Err != nil {
		t.Fatalf("Expected sell to succeed, got error: %v", result.Err)
	}
	if result.Transaction.Shares != 2 {
		t.Errorf("Expected sell clamped to 2 shares, got %d", result.Transaction.Shares)
	}
	if len(sessions.Ledger("s1").Holdings()) != 0 {
		t.Error("Expected position removed after selling all")
	}
}

func TestSubmitSell_NotHeld(t *testing.T) {
	op, _ := newTestProcessor(t, 1, 100000, fixedQuotes())

	result := op.SubmitSell("s1", "TCS", 1)
	if !errors.Is(result.Err, ledger.ErrNoSuchPosition) {
		t.Errorf("Expected ErrNoSuchPosition, got %v", result.Err)
	}
}

func TestConcurrentBuying_SameSession(t *testing.T) {
	op, sessions := newTestProcessor(t, 5, 100000, fixedQuotes())

	numTrades := 10
	results := make(chan OrderResult, numTrades)

	for i := 0; i < numTrades; i++ {
		go func() {
			results <- op.SubmitBuy("s1", "RELIANCE", decimal.NewFromInt(2500))
		}()
	}

	successCount := 0
	for i := 0; i < numTrades; i++ {
		if r := <-results; r.Err == nil {
			successCount++
		}
	}

	if successCount != numTrades {
		t.Errorf("Expected %d successful trades, got %d", numTrades, successCount)
	}

	expected := decimal.NewFromInt(100000 - 2500*int64(numTrades))
	if cash := sessions.Ledger("s1").Cash(); !cash.Equal(expected) {
		t.Errorf("Race condition detected! Expected cash %s, got %s", expected, cash)
	}

	holdings := sessions.Ledger("s1").Holdings()
	if len(holdings) != 1 || holdings[0].Shares != int64(numTrades) {
		t.Errorf("Race condition detected! Expected %d shares, got %+v", numTrades, holdings)
	}
}

func TestConcurrentBuying_DifferentSessions(t *testing.T) {
	op, sessions := newTestProcessor(t, 5, 100000, fixedQuotes())

	numSessions, tradesEach := 5, 10
	totalTrades := numSessions * tradesEach
	results := make(chan OrderResult, totalTrades)

	for s := 0; s < numSessions; s++ {
		sid := fmt.Sprintf("session%d", s)
		for i := 0; i < tradesEach; i++ {
			go func(sid string) {
				results <- op.SubmitBuy(sid, "RELIANCE", decimal.NewFromInt(2500))
			}(sid)
		}
	}

	successCount := 0
	for i := 0; i < totalTrades; i++ {
		if r := <-results; r.Err == nil {
			successCount++
		}
	}
	if successCount != totalTrades {
		t.Errorf("Expected %d successful trades, got %d", totalTrades, successCount)
	}

	expected := decimal.NewFromInt(100000 - 2500*int64(tradesEach))
	for s := 0; s < numSessions; s++ {
		sid := fmt.Sprintf("session%d", s)
		if cash := sessions.Ledger(sid).Cash(); !cash.Equal(expected) {
			t.Errorf("Session %s: expected cash %s, got %s", sid, expected, cash)
		}
	}
}

func TestConcurrentBuying_NeverOverdraws(t *testing.T) {
	// Cash funds only 4 of the 10 competing buys
	op, sessions := newTestProcessor(t, 5, 10000, fixedQuotes())

	numTrades := 10
	results := make(chan OrderResult, numTrades)
	for i := 0; i < numTrades; i++ {
		go func() {
			results <- op.SubmitBuy("s1", "RELIANCE", decimal.NewFromInt(2500))
		}()
	}

	successCount := 0
	for i := 0; i < numTrades; i++ {
		r := <-results
		if r.Err == nil {
			successCount++
		} else if !errors.Is(r.Err, ledger.ErrInsufficientFunds) {
			t.Errorf("Unexpected error: %v", r.Err)
		}
	}

	if successCount != 4 {
		t.Errorf("Expected exactly 4 funded trades, got %d", successCount)
	}
	if cash := sessions.Ledger("s1").Cash(); cash.IsNegative() {
		t.Errorf("Overdraft! Cash is %s", cash)
	}
}

func BenchmarkOrderProcessing(b *testing.B) {
	sessions := session.NewRegistry(decimal.NewFromInt(1_000_000_000))
	op := NewOrderProcessor(5, sessions, fixedQuotes())
	op.Start()
	defer op.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		op.SubmitBuy("bench", "RELIANCE", decimal.NewFromInt(2500))
	}
}

func BenchmarkConcurrentOrders(b *testing.B) {
	sessions := session.NewRegistry(decimal.NewFromInt(1_000_000_000))
	op := NewOrderProcessor(10, sessions, fixedQuotes())
	op.Start()
	defer op.Stop()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			op.SubmitBuy("bench", "RELIANCE", decimal.NewFromInt(2500))
		}
	})
}
