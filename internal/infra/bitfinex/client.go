package bitfinex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"maker_go/internal/domain"
	"maker_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Client is the Bitfinex v2 REST API client (boundary layer). It
// implements domain.Venue. SubmitOrder hands back the raw response body
// because the submission response shape varies; the engine owns
// identity resolution.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	logger     *slog.Logger
}

// NewClient creates a new Bitfinex API client.
func NewClient(cfg *infra.Config) *Client {
	baseURL := cfg.API.Bitfinex.RestURL
	if baseURL == "" {
		baseURL = BaseURLMainnet
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		signer: NewSigner(cfg.API.Bitfinex.APIKey, cfg.API.Bitfinex.APISecret),
		logger: slog.Default().With("module", "bitfinex_client"),
	}
}

// SubmitOrder places a limit order. Sell orders travel as a negative
// amount on the wire. The raw body is returned even on success so the
// caller can attempt identity resolution against whatever shape came
// back.
func (c *Client) SubmitOrder(ctx context.Context, symbol string, side domain.Side, amount, price decimal.Decimal, postOnly bool) (json.RawMessage, error) {
	signedAmount := amount.Abs()
	if side == domain.SideSell {
		signedAmount = signedAmount.Neg()
	}

	reqBody := submitOrderRequest{
		Type:   orderTypeExchangeLimit,
		Symbol: symbol,
		Price:  price.String(),
		Amount: signedAmount.String(),
	}
	if postOnly {
		reqBody.Flags = FlagPostOnly
	}

	body, err := c.doRequest(ctx, "/v2/auth/w/order/submit", reqBody)
	if err != nil {
		return nil, domain.NewNetworkError("submit", err)
	}

	if status, text, ok := notificationStatus(body); ok && status == "ERROR" {
		return nil, fmt.Errorf("order submit rejected: %s", text)
	}

	c.logger.Debug("Order submitted", "symbol", symbol, "side", side, "price", price.String())
	return body, nil
}

// CancelOrder cancels a single order by venue id.
func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, "/v2/auth/w/order/cancel", cancelOrderRequest{ID: id})
	if err != nil {
		return domain.NewNetworkError("cancel", err)
	}
	return nil
}

// CancelOrderMulti cancels a batch of orders in one request.
func (c *Client) CancelOrderMulti(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.doRequest(ctx, "/v2/auth/w/order/cancel/multi", cancelOrderMultiRequest{ID: ids})
	if err != nil {
		return domain.NewNetworkError("cancel_multi", err)
	}
	return nil
}

// GetOpenOrders fetches the open orders resting for symbol.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]domain.OpenOrder, error) {
	body, err := c.doRequest(ctx, "/v2/auth/r/orders/"+symbol, nil)
	if err != nil {
		return nil, domain.NewNetworkError("open_orders", err)
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse open orders: %w", err)
	}

	orders := make([]domain.OpenOrder, 0, len(rows))
	for _, row := range rows {
		order, ok := parseOpenOrder(row)
		if !ok {
			c.logger.Warn("Skipping malformed open order row", "fields", len(row))
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// GetTicker fetches the public top-of-book snapshot for symbol.
func (c *Client) GetTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/ticker/"+symbol, nil)
	if err != nil {
		return domain.Ticker{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Ticker{}, domain.NewNetworkError("ticker", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return domain.Ticker{}, fmt.Errorf("ticker error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var vals []decimal.Decimal
	if err := json.Unmarshal(body, &vals); err != nil {
		return domain.Ticker{}, fmt.Errorf("failed to parse ticker: %w", err)
	}
	if len(vals) < tickerFieldLen {
		return domain.Ticker{}, fmt.Errorf("short ticker response: %d fields", len(vals))
	}

	return domain.Ticker{
		Bid:       vals[tickerFieldBid],
		BidSize:   vals[tickerFieldBidSize],
		Ask:       vals[tickerFieldAsk],
		AskSize:   vals[tickerFieldAskSize],
		LastPrice: vals[tickerFieldLast],
	}, nil
}

// doRequest signs and sends an authenticated POST, returning the body.
func (c *Client) doRequest(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	var bodyStr string
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyStr = string(jsonBytes)
	} else {
		bodyStr = "{}"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBufferString(bodyStr))
	if err != nil {
		return nil, err
	}

	headers := c.signer.GenerateHeaders(path, bodyStr)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// parseOpenOrder maps one positional order array to a domain.OpenOrder.
func parseOpenOrder(row []json.RawMessage) (domain.OpenOrder, bool) {
	if len(row) < orderFieldLen {
		return domain.OpenOrder{}, false
	}

	var order domain.OpenOrder
	if json.Unmarshal(row[orderFieldID], &order.ID) != nil {
		return domain.OpenOrder{}, false
	}
	if json.Unmarshal(row[orderFieldSymbol], &order.Symbol) != nil {
		return domain.OpenOrder{}, false
	}
	if json.Unmarshal(row[orderFieldAmount], &order.Amount) != nil {
		return domain.OpenOrder{}, false
	}
	if json.Unmarshal(row[orderFieldPrice], &order.Price) != nil {
		return domain.OpenOrder{}, false
	}
	// Type and creation time are informational; tolerate absence.
	json.Unmarshal(row[orderFieldType], &order.Type)
	json.Unmarshal(row[orderFieldMTSCreate], &order.CreatedAtMilli)

	return order, true
}

// notificationStatus extracts (STATUS, TEXT) from an on-req notification
// array, reporting ok=false for any other shape.
func notificationStatus(body json.RawMessage) (status, text string, ok bool) {
	var fields []json.RawMessage
	if json.Unmarshal(body, &fields) != nil || len(fields) < notifyFieldLen {
		return "", "", false
	}

	var notifyType string
	if json.Unmarshal(fields[notifyFieldType], &notifyType) != nil || !strings.Contains(notifyType, "on-req") {
		return "", "", false
	}

	json.Unmarshal(fields[notifyFieldStatus], &status)
	json.Unmarshal(fields[notifyFieldText], &text)
	return status, text, true
}
