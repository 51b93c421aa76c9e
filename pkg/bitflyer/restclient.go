package bitflyer

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
	"strings"
	"time"

	"vcts/internal/market"
)

// DefaultBaseURL is the production bitFlyer REST endpoint.
const DefaultBaseURL = "https://api.bitflyer.jp"

// RESTClient talks to the bitFlyer Lightning REST API. Public endpoints
// need no credentials; private endpoints sign every request with the
// configured key pair.
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

// FetchTicker returns one best-bid/best-ask/last observation for the product.
func (c *RESTClient) FetchTicker(ctx context.Context, product string) (market.Ticker, error) {
	path := "/v1/ticker?product_code=" + strings.ToUpper(product)

	var resp TickerResponse
	if err := c.doPublic(ctx, path, &resp); err != nil {
		return market.Ticker{}, fmt.Errorf("%w: ticker: %v", market.ErrFetch, err)
	}

	return market.Ticker{
		Product:         product,
		CapturedAt:      time.Now(),
		Timestamp:       resp.Timestamp,
		BestBid:         resp.BestBid,
		BestAsk:         resp.BestAsk,
		Last:            resp.LTP,
		BestBidSize:     resp.BestBidSize,
		BestAskSize:     resp.BestAskSize,
		TotalBidDepth:   resp.TotalBidDepth,
		TotalAskDepth:   resp.TotalAskDepth,
		Volume:          resp.Volume,
		VolumeByProduct: resp.VolumeByProduct,
	}, nil
}

// Health returns the exchange-reported market status for the product.
func (c *RESTClient) Health(ctx context.Context, product string) (market.Health, error) {
	path := "/v1/gethealth?product_code=" + strings.ToUpper(product)

	var resp HealthResponse
	if err := c.doPublic(ctx, path, &resp); err != nil {
		return "", fmt.Errorf("%w: gethealth: %v", market.ErrFetch, err)
	}
	return market.Health(resp.Status), nil
}

// SubmitOrder places one child order through /v1/me/sendchildorder.
func (c *RESTClient) SubmitOrder(ctx context.Context, order market.Order) error {
	body := ChildOrderRequest{
		ProductCode:    strings.ToUpper(order.Product),
		ChildOrderType: string(order.Type),
		Side:           string(order.Side),
		Size:           order.Size,
	}
	if order.Type == market.OrderTypeLimit {
		body.Price = order.Price
		body.MinuteToExpire = order.ExpireMinutes
		body.TimeInForce = "GTC"
	}

	var resp ChildOrderResponse
	if err := c.doPrivate(ctx, http.MethodPost, "/v1/me/sendchildorder", body, &resp); err != nil {
		return fmt.Errorf("sendchildorder: %w", err)
	}
	return nil
}

// Positions returns the caller's open leveraged positions.
func (c *RESTClient) Positions(ctx context.Context, product string) ([]market.Position, error) {
	path := "/v1/me/getpositions?product_code=" + strings.ToUpper(product)

	var resp []PositionResponse
	if err := c.doPrivate(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: getpositions: %v", market.ErrQuery, err)
	}

	positions := make([]market.Position, 0, len(resp))
	for _, p := range resp {
		positions = append(positions, market.Position{
			Product:  product,
			Side:     market.Side(p.Side),
			Price:    p.Price,
			Size:     p.Size,
			OpenedAt: parseTime(p.OpenDate),
		})
	}
	return positions, nil
}

// Executions returns the caller's recent executions, viewed as positions.
func (c *RESTClient) Executions(ctx context.Context, product string) ([]market.Position, error) {
	path := fmt.Sprintf("/v1/me/getexecutions?product_code=%s&count=500", strings.ToUpper(product))

	var resp []ExecutionResponse
	if err := c.doPrivate(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: getexecutions: %v", market.ErrQuery, err)
	}

	positions := make([]market.Position, 0, len(resp))
	for _, e := range resp {
		positions = append(positions, market.Position{
			Product:  product,
			Side:     market.Side(e.Side),
			Price:    e.Price,
			Size:     e.Size,
			OpenedAt: parseTime(e.ExecDate),
		})
	}
	return positions, nil
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
		return fmt.Errorf("bitflyer error: status %d: %s", resp.StatusCode, body)
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

	// ACCESS-SIGN is HMAC-SHA256 over timestamp + method + path + body.
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(ts + method + path + string(payload)))

	req.Header.Set("ACCESS-KEY", c.apiKey)
	req.Header.Set("ACCESS-TIMESTAMP", ts)
	req.Header.Set("ACCESS-SIGN", hex.EncodeToString(mac.Sum(nil)))
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
		return fmt.Errorf("bitflyer error: status %d: %s", resp.StatusCode, body)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// the REST client carries every exchange capability.
var _ market.Exchange = (*RESTClient)(nil)

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
