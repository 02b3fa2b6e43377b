package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Sarish05/AIvestor-sub000/internal/ledger"
	"github.com/Sarish05/AIvestor-sub000/internal/prices"
	"github.com/Sarish05/AIvestor-sub000/internal/session"
)

// defaultSession is used when a request carries no X-Session-ID.
const defaultSession = "default"

// Handler binds the portfolio ledger to the HTTP API.
type Handler struct {
	sessions *session.Registry
	source   prices.Source
	orders   *OrderProcessor
}

func New(sessions *session.Registry, source prices.Source, orders *OrderProcessor) *Handler {
	return &Handler{sessions: sessions, source: source, orders: orders}
}

func sessionID(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-ID"); sid != "" {
		return sid
	}
	return defaultSession
}

// statusForError maps ledger failures to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, prices.ErrUnknownSymbol):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrNoSuchPosition):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidOrder), errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrPriceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// BuyRequest - what the client sends to buy stocks. Amount is the cash
// to invest, not a share count; the ledger floors it to whole shares.
type BuyRequest struct {
	Symbol string          `json:"symbol" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SellRequest - what the client sends to sell stocks.
type SellRequest struct {
	Symbol string `json:"symbol" binding:"required"`
	Shares int64  `json:"shares" binding:"required"`
}

// BuyStock handles POST /api/trades/buy
func (h *Handler) BuyStock(c *gin.Context) {
	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	sid := sessionID(c)
	result := h.orders.SubmitBuy(sid, req.Symbol, req.Amount)
	if result.Err != nil {
		c.JSON(statusForError(result.Err), gin.H{"error": result.Err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Trade executed successfully",
		"transaction": result.Transaction,
		"cash":        h.sessions.Ledger(sid).Cash(),
	})
}

// SellStock handles POST /api/trades/sell
func (h *Handler) SellStock(c *gin.Context) {
	var req SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sid := sessionID(c)
	result := h.orders.SubmitSell(sid, req.Symbol, req.Shares)
	if result.Err != nil {
		c.JSON(statusForError(result.Err), gin.H{"error": result.Err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Stock sold successfully",
		"transaction": result.Transaction,
		"cash":        h.sessions.Ledger(sid).Cash(),
	})
}

// refreshPrices pulls the latest quote for every held symbol into the
// ledger. Symbols the source can no longer price keep their last known
// quote.
func (h *Handler) refreshPrices(l *ledger.Ledger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, symbol := range l.HeldSymbols() {
		price, err := h.source.GetCurrentPrice(ctx, symbol)
		if err != nil {
			continue
		}
		l.SetPrice(symbol, price)
	}
}

// GetPortfolio handles GET /api/portfolio
func (h *Handler) GetPortfolio(c *gin.Context) {
	l := h.sessions.Ledger(sessionID(c))
	h.refreshPrices(l)

	resp := gin.H{
		"cash":               l.Cash(),
		"initial_investment": l.InitialInvestment(),
		"valuation":          l.Valuation(),
		"holdings":           l.Holdings(),
	}
	if ret, err := l.ReturnPercentage(); err == nil {
		resp["return_percentage"] = ret
	}
	c.JSON(http.StatusOK, resp)
}

// GetPortfolioHistory handles GET /api/portfolio/history?range=1M
func (h *Handler) GetPortfolioHistory(c *gin.Context) {
	window, err := ledger.ParseWindow(c.Query("range"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l := h.sessions.Ledger(sessionID(c))
	h.refreshPrices(l)

	c.JSON(http.StatusOK, gin.H{
		"range":  window,
		"points": l.EquityCurve(window),
	})
}

// GetTradeHistory handles GET /api/trades
func (h *Handler) GetTradeHistory(c *gin.Context) {
	transactions := h.sessions.Ledger(sessionID(c)).Transactions()

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"count":        len(transactions),
	})
}
