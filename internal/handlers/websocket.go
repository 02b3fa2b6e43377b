package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Sarish05/AIvestor-sub000/internal/prices"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (for development and demo)
	},
}

// PriceStream steps the shared simulator on a single ticker and fans
// each tick out to every connected client. The board advances at one
// pace no matter how many clients watch, and every client sees the
// same quotes the ledger trades against.
type PriceStream struct {
	sim      *prices.Simulator
	interval time.Duration

	mu          sync.Mutex
	subscribers map[chan prices.Tick]struct{}

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewPriceStream(sim *prices.Simulator, interval time.Duration) *PriceStream {
	return &PriceStream{
		sim:         sim,
		interval:    interval,
		subscribers: make(map[chan prices.Tick]struct{}),
		stopCh:      make(chan struct{}),
	}
}

// Start begins stepping the simulator and broadcasting ticks.
func (ps *PriceStream) Start() {
	ps.wg.Add(1)
	go ps.run()
	log.Info().Dur("interval", ps.interval).Msg("price stream started")
}

// Stop halts the ticker and releases connected clients.
func (ps *PriceStream) Stop() {
	close(ps.stopCh)
	ps.wg.Wait()
	log.Info().Msg("price stream stopped")
}

func (ps *PriceStream) run() {
	defer ps.wg.Done()

	ticker := time.NewTicker(ps.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ps.stopCh:
			return
		case <-ticker.C:
			ps.broadcast(ps.sim.Step())
		}
	}
}

func (ps *PriceStream) broadcast(tick prices.Tick) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for ch := range ps.subscribers {
		select {
		case ch <- tick:
		default:
			// Slow client: drop the tick rather than stall the board
		}
	}
}

func (ps *PriceStream) subscribe() chan prices.Tick {
	ch := make(chan prices.Tick, 16)
	ps.mu.Lock()
	ps.subscribers[ch] = struct{}{}
	ps.mu.Unlock()
	return ch
}

func (ps *PriceStream) unsubscribe(ch chan prices.Tick) {
	ps.mu.Lock()
	delete(ps.subscribers, ch)
	ps.mu.Unlock()
}

// Quotes handles GET /api/quotes with a one-shot snapshot of the board.
func (ps *PriceStream) Quotes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quotes": ps.sim.Snapshot()})
}

// Stream handles websocket connections for price updates.
func (ps *PriceStream) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("price stream client connected")

	ch := ps.subscribe()
	defer ps.unsubscribe(ch)

	for {
		select {
		case <-ps.stopCh:
			return
		case tick := <-ch:
			if err := conn.WriteJSON(tick); err != nil {
				log.Info().Err(err).Msg("price stream client gone")
				return
			}
		}
	}
}
