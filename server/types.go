package server

import (
	"github.com/rustyeddy/fxgate/broker"
	"github.com/rustyeddy/fxgate/trade"
)

// Every response carries a success flag.

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
}

type BalanceResponse struct {
	Success bool    `json:"success"`
	Balance float64 `json:"balance"`
	Equity  float64 `json:"equity"`
}

type PositionsResponse struct {
	Success   bool              `json:"success"`
	Positions []broker.Position `json:"positions"`
}

type ClosePositionRequest struct {
	PositionID string `json:"positionId"`
}

type ClosePositionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TradeRequest is the body of POST /api/trade.
type TradeRequest struct {
	Direction    string   `json:"direction"`
	Symbol       string   `json:"symbol,omitempty"`
	LotSize      *float64 `json:"lotSize,omitempty"`
	RiskPercent  *float64 `json:"riskPercent,omitempty"`
	StopLossPips *float64 `json:"stopLossPips,omitempty"`
}

// toRequest maps the body onto a trade request. A lotSize or riskPercent
// of 0 counts as absent.
func (t TradeRequest) toRequest() trade.Request {
	return trade.Request{
		Direction:    trade.Direction(t.Direction),
		Symbol:       t.Symbol,
		Volume:       nonZero(t.LotSize),
		RiskPercent:  nonZero(t.RiskPercent),
		StopLossPips: t.StopLossPips,
	}
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

type TradeResponse struct {
	Success     bool     `json:"success"`
	OrderID     string   `json:"orderId"`
	PositionID  string   `json:"positionId,omitempty"`
	Symbol      string   `json:"symbol"`
	Direction   string   `json:"direction"`
	Volume      float64  `json:"volume"`
	StopLoss    *float64 `json:"stopLoss,omitempty"`
	Magic       int64    `json:"magic"`
	Comment     string   `json:"comment"`
	RiskPercent *float64 `json:"riskPercent,omitempty"`
}
