package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/fxgate/broker"
)

const (
	// DefaultBaseURL is the London region of the hosted trading API.
	DefaultBaseURL = "https://mt-client-api-v1.london.agiliumtrade.ai"

	DefaultTimeout = 30 * time.Second

	maxErrorBody = 64 * 1024
)

// Trade return codes that mean the request went through.
const (
	codePlaced  = 10008
	codeDone    = 10009
	codePartial = 10010
)

// Client talks to one trading account. It implements broker.Broker.
type Client struct {
	baseURL    string
	token      string
	accountID  string
	httpClient *http.Client
}

var _ broker.Broker = (*Client)(nil)

// NewClient creates a client for accountID. An empty baseURL selects
// DefaultBaseURL; a zero timeout selects DefaultTimeout.
func NewClient(baseURL, token, accountID string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		accountID: accountID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type accountInformation struct {
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Currency string  `json:"currency"`
}

type currentPrice struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Time   string  `json:"time,omitempty"`
}

type tradeRequest struct {
	ActionType string   `json:"actionType"`
	Symbol     string   `json:"symbol,omitempty"`
	Volume     float64  `json:"volume,omitempty"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`
	PositionID string   `json:"positionId,omitempty"`
	Magic      int64    `json:"magic,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

type tradeResponse struct {
	NumericCode int    `json:"numericCode"`
	StringCode  string `json:"stringCode"`
	Message     string `json:"message"`
	OrderID     string `json:"orderId"`
	PositionID  string `json:"positionId"`
}

func (c *Client) accountPath(parts ...string) string {
	p := "/users/current/accounts/" + url.PathEscape(c.accountID)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// GetAccount fetches balance and equity.
func (c *Client) GetAccount(ctx context.Context) (broker.Account, error) {
	var info accountInformation
	if err := c.do(ctx, http.MethodGet, c.accountPath("account-information"), nil, &info); err != nil {
		return broker.Account{}, err
	}
	return broker.Account{
		Balance:  info.Balance,
		Equity:   info.Equity,
		Currency: info.Currency,
	}, nil
}

// ListPositions returns every open position on the account.
func (c *Client) ListPositions(ctx context.Context) ([]broker.Position, error) {
	var positions []broker.Position
	if err := c.do(ctx, http.MethodGet, c.accountPath("positions"), nil, &positions); err != nil {
		return nil, err
	}
	if positions == nil {
		positions = []broker.Position{}
	}
	return positions, nil
}

// ClosePosition closes the position with the given id in full.
func (c *Client) ClosePosition(ctx context.Context, positionID string) (broker.CloseResult, error) {
	if positionID == "" {
		return broker.CloseResult{}, errors.New("position id is required")
	}

	resp, err := c.trade(ctx, tradeRequest{
		ActionType: "POSITION_CLOSE_ID",
		PositionID: positionID,
	})
	if err != nil {
		return broker.CloseResult{}, err
	}
	return broker.CloseResult{OrderID: resp.OrderID, Message: resp.Message}, nil
}

// GetQuote fetches the current bid/ask for symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (broker.Quote, error) {
	if symbol == "" {
		return broker.Quote{}, errors.New("symbol is required")
	}

	var px currentPrice
	if err := c.do(ctx, http.MethodGet, c.accountPath("symbols", symbol, "current-price"), nil, &px); err != nil {
		return broker.Quote{}, err
	}
	if px.Symbol == "" {
		px.Symbol = symbol
	}
	return broker.Quote{Symbol: px.Symbol, Bid: px.Bid, Ask: px.Ask}, nil
}

// CreateOrder submits a market order.
func (c *Client) CreateOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	resp, err := c.trade(ctx, tradeRequest{
		ActionType: string(req.Type),
		Symbol:     req.Symbol,
		Volume:     req.Volume,
		StopLoss:   req.StopLoss,
		Magic:      req.Magic,
		Comment:    req.Comment,
	})
	if err != nil {
		return broker.OrderResult{}, err
	}
	return broker.OrderResult{
		OrderID:    resp.OrderID,
		PositionID: resp.PositionID,
		Message:    resp.Message,
	}, nil
}

func (c *Client) trade(ctx context.Context, req tradeRequest) (tradeResponse, error) {
	var resp tradeResponse
	if err := c.do(ctx, http.MethodPost, c.accountPath("trade"), req, &resp); err != nil {
		return tradeResponse{}, err
	}

	switch resp.NumericCode {
	case 0, codePlaced, codeDone, codePartial:
		return resp, nil
	default:
		return tradeResponse{}, &APIError{
			StatusCode: http.StatusOK,
			Code:       resp.StringCode,
			Message:    resp.Message,
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(b, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(b))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
