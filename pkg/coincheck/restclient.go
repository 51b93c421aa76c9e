package coincheck

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"vcts/internal/market"
)

// DefaultBaseURL is the production coincheck REST endpoint.
const DefaultBaseURL = "https://coincheck.com"

// RESTClient talks to the coincheck REST API. coincheck is a spot-only
// exchange: it trades btc_jpy, carries no leveraged positions and exposes
// no market-health endpoint.
type RESTClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewRESTClient creates a client. baseURL may be empty for production.
func NewRESTClient(baseURL, apiKey, apiSecret string, timeout time.Duration) *RESTClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &RESTClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchTicker returns one bid/ask/last observation. coincheck serves a
// single pair, so the product argument only labels the result.
func (c *RESTClient) FetchTicker(ctx context.Context, product string) (market.Ticker, error) {
	var resp TickerResponse
	if err := c.doPublic(ctx, "/api/ticker", &resp); err != nil {
		return market.Ticker{}, fmt.Errorf("%w: ticker: %v", market.ErrFetch, err)
	}

	return market.Ticker{
		Product:    product,
		CapturedAt: time.Now(),
		Timestamp:  time.Unix(resp.Timestamp, 0).UTC().Format(time.RFC3339),
		BestBid:    resp.Bid,
		BestAsk:    resp.Ask,
		Last:       resp.Last,
	}, nil
}

// SubmitOrder places one order through /api/exchange/orders.
func (c *RESTClient) SubmitOrder(ctx context.Context, order market.Order) error {
	body := OrderRequest{
		Pair:      order.Product,
		OrderType: orderType(order),
		Amount:    strconv.FormatFloat(order.Size, 'f', -1, 64),
	}
	if order.Type == market.OrderTypeLimit {
		body.Rate = strconv.FormatFloat(order.Price, 'f', -1, 64)
	}

	var resp OrderResponse
	if err := c.doPrivate(ctx, http.MethodPost, "/api/exchange/orders", body, &resp); err != nil {
		return fmt.Errorf("orders: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("orders rejected: %s", resp.Error)
	}
	return nil
}

// orderType maps a generic order onto coincheck's order_type values.
func orderType(order market.Order) string {
	switch {
	case order.Type == market.OrderTypeMarket && order.Side == market.SideBuy:
		return "market_buy"
	case order.Type == market.OrderTypeMarket && order.Side == market.SideSell:
		return "market_sell"
	case order.Side == market.SideBuy:
		return "buy"
	default:
		return "sell"
	}
}

// Positions always fails: coincheck has no leveraged positions.
func (c *RESTClient) Positions(ctx context.Context, product string) ([]market.Position, error) {
	return nil, fmt.Errorf("%w: coincheck is spot-only, no positions endpoint", market.ErrQuery)
}

// Executions returns the caller's past transactions, viewed as positions.
func (c *RESTClient) Executions(ctx context.Context, product string) ([]market.Position, error) {
	var resp TransactionsResponse
	if err := c.doPrivate(ctx, http.MethodGet, "/api/exchange/orders/transactions", nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: transactions: %v", market.ErrQuery, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: transactions: %s", market.ErrQuery, resp.Error)
	}

	positions := make([]market.Position, 0, len(resp.Transactions))
	for _, tx := range resp.Transactions {
		rate, err := strconv.ParseFloat(tx.Rate, 64)
		if err != nil {
			continue
		}
		size, err := strconv.ParseFloat(tx.Funds.BTC, 64)
		if err != nil {
			continue
		}
		if size < 0 {
			size = -size
		}
		openedAt, _ := time.Parse(time.RFC3339, tx.CreatedAt)
		positions = append(positions, market.Position{
			Product:  tx.Pair,
			Side:     side(tx.Side),
			Price:    rate,
			Size:     size,
			OpenedAt: openedAt,
		})
	}
	return positions, nil
}

// coincheck covers everything except the health probe.
var (
	_ market.TickerFetcher   = (*RESTClient)(nil)
	_ market.OrderSubmitter  = (*RESTClient)(nil)
	_ market.PositionQuerier = (*RESTClient)(nil)
)

func side(s string) market.Side {
	if s == "sell" {
		return market.SideSell
	}
	return market.SideBuy
}

func (c *RESTClient) doPublic(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("coincheck error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *RESTClient) doPrivate(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	// ACCESS-SIGNATURE is HMAC-SHA256 over nonce + url + body.
	nonce := strconv.FormatInt(time.Now().UnixNano(), 10)
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(nonce + c.baseURL + path + string(payload)))

	req.Header.Set("ACCESS-KEY", c.apiKey)
	req.Header.Set("ACCESS-NONCE", nonce)
	req.Header.Set("ACCESS-SIGNATURE", hex.EncodeToString(mac.Sum(nil)))
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", market.ErrAuth, resp.StatusCode, body)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("coincheck error: status %d: %s", resp.StatusCode, body)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
