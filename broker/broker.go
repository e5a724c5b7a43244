package broker

import (
	"context"
)

// Broker is the remote trading-account service. Every call is one
// round-trip against a single, fixed account.
type Broker interface {
	GetAccount(ctx context.Context) (Account, error)
	ListPositions(ctx context.Context) ([]Position, error)
	ClosePosition(ctx context.Context, positionID string) (CloseResult, error)
	GetQuote(ctx context.Context, symbol string) (Quote, error)
	CreateOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}

type OrderType string

const (
	OrderTypeBuy  OrderType = "ORDER_TYPE_BUY"
	OrderTypeSell OrderType = "ORDER_TYPE_SELL"
)

type Account struct {
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Currency string  `json:"currency,omitempty"`
}

type Position struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Type         string   `json:"type"`
	Volume       float64  `json:"volume"`
	OpenPrice    float64  `json:"openPrice"`
	CurrentPrice float64  `json:"currentPrice,omitempty"`
	Profit       float64  `json:"profit"`
	StopLoss     *float64 `json:"stopLoss,omitempty"`
	TakeProfit   *float64 `json:"takeProfit,omitempty"`
	Magic        int64    `json:"magic,omitempty"`
	Comment      string   `json:"comment,omitempty"`
}

// Quote is the bid/ask of a symbol at one instant.
type Quote struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}

func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

type OrderRequest struct {
	Symbol   string
	Volume   float64
	Type     OrderType
	StopLoss *float64
	Magic    int64
	Comment  string
}

type OrderResult struct {
	OrderID    string
	PositionID string
	Message    string
}

type CloseResult struct {
	OrderID string
	Message string
}

// FilterBySymbol keeps the positions whose Symbol equals symbol exactly.
func FilterBySymbol(positions []Position, symbol string) []Position {
	out := make([]Position, 0, len(positions))
	for _, p := range positions {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	return out
}
