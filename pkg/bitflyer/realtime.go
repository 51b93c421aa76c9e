package bitflyer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"vcts/internal/market"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultRealtimeURL is the bitFlyer Lightning realtime JSON-RPC endpoint.
const DefaultRealtimeURL = "wss://ws.lightstream.bitflyer.com/json-rpc"

// RealtimeClient subscribes to the lightning_ticker channel over WebSocket
// and keeps the most recent ticker in memory. It satisfies
// market.TickerFetcher, so the poller can read from the stream instead of
// the REST endpoint.
type RealtimeClient struct {
	url     string
	channel string
	conn    *websocket.Conn
	logger  *zap.Logger

	mu     sync.RWMutex
	latest market.Ticker
	has    bool
}

type rpcRequest struct {
	Version string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int       `json:"id"`
}

type rpcParams struct {
	Channel string `json:"channel"`
}

type rpcMessage struct {
	Method string `json:"method"`
	Params struct {
		Channel string         `json:"channel"`
		Message TickerResponse `json:"message"`
	} `json:"params"`
}

// NewRealtimeClient creates a client for the product's ticker channel.
// url may be empty for production.
func NewRealtimeClient(url, product string, logger *zap.Logger) *RealtimeClient {
	if url == "" {
		url = DefaultRealtimeURL
	}
	return &RealtimeClient{
		url:     url,
		channel: "lightning_ticker_" + strings.ToUpper(product),
		logger:  logger,
	}
}

// Connect establishes the WebSocket connection and subscribes to the ticker
// channel. It does not start the listener.
func (c *RealtimeClient) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		c.logger.Error("failed to connect to WebSocket", zap.String("url", c.url), zap.Error(err))
		return err
	}
	c.conn = conn
	c.logger.Info("WebSocket connected", zap.String("url", c.url))

	if err := c.subscribe(); err != nil {
		c.logger.Error("failed to send subscription", zap.Error(err))
		return err
	}
	return nil
}

func (c *RealtimeClient) subscribe() error {
	sub := rpcRequest{
		Version: "2.0",
		Method:  "subscribe",
		Params:  rpcParams{Channel: c.channel},
		ID:      1,
	}
	if err := c.conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("websocket subscribe failed: %w", err)
	}
	return nil
}

// Listen reads channel messages and keeps the latest ticker, reconnecting
// indefinitely on read errors.
func (c *RealtimeClient) Listen() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Error("WebSocket read error", zap.Error(err))

			// Retry reconnecting indefinitely
			for {
				time.Sleep(3 * time.Second)
				if err := c.reconnectAndResubscribe(); err != nil {
					c.logger.Warn("retrying reconnect...")
					continue
				}
				c.logger.Info("reconnected successfully")
				break
			}
			continue // Start listening again with the new connection
		}

		c.handle(msg)
	}
}

func (c *RealtimeClient) handle(msg []byte) {
	var parsed rpcMessage
	if err := json.Unmarshal(msg, &parsed); err != nil {
		c.logger.Warn("failed to parse message", zap.Error(err))
		return
	}
	// Ignore non-ticker traffic (e.g., subscription acknowledgements).
	if parsed.Method != "channelMessage" || parsed.Params.Channel != c.channel {
		return
	}

	tick := parsed.Params.Message
	c.mu.Lock()
	c.latest = market.Ticker{
		Product:         strings.ToLower(strings.TrimPrefix(parsed.Params.Channel, "lightning_ticker_")),
		CapturedAt:      time.Now(),
		Timestamp:       tick.Timestamp,
		BestBid:         tick.BestBid,
		BestAsk:         tick.BestAsk,
		Last:            tick.LTP,
		BestBidSize:     tick.BestBidSize,
		BestAskSize:     tick.BestAskSize,
		TotalBidDepth:   tick.TotalBidDepth,
		TotalAskDepth:   tick.TotalAskDepth,
		Volume:          tick.Volume,
		VolumeByProduct: tick.VolumeByProduct,
	}
	c.has = true
	c.mu.Unlock()
}

func (c *RealtimeClient) reconnectAndResubscribe() error {
	newConn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return err
	}

	// Close the old connection if it exists
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = newConn

	return c.subscribe()
}

// FetchTicker returns the most recent streamed ticker. It fails with a
// fetch error until the first channel message arrives.
func (c *RealtimeClient) FetchTicker(ctx context.Context, product string) (market.Ticker, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.has {
		return market.Ticker{}, fmt.Errorf("%w: no streamed ticker yet", market.ErrFetch)
	}
	return c.latest, nil
}
