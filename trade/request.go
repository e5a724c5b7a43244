package trade

import (
	"github.com/rustyeddy/fxgate/broker"
	"github.com/rustyeddy/fxgate/risk"
)

type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

// Side maps the direction onto the calculator's side.
func (d Direction) Side() risk.Side {
	if d == Buy {
		return risk.Buy
	}
	return risk.Sell
}

func (d Direction) OrderType() broker.OrderType {
	if d == Buy {
		return broker.OrderTypeBuy
	}
	return broker.OrderTypeSell
}

// Request is one order to place. Either Volume is set, or both RiskPercent
// and StopLossPips are. StopLossPips alongside Volume still sets a stop.
type Request struct {
	Direction    Direction
	Symbol       string
	Volume       *float64
	RiskPercent  *float64
	StopLossPips *float64
}

// Result describes a submitted order.
type Result struct {
	OrderID     string
	PositionID  string
	Symbol      string
	Direction   Direction
	Volume      float64
	StopLoss    *float64
	Magic       int64
	Comment     string
	RiskPercent *float64
}
