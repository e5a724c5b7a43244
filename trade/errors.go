package trade

import "errors"

// Input errors. Requests failing with these never reach the broker.
var (
	ErrInvalidDirection   = errors.New("Invalid direction. Use BUY or SELL")
	ErrMissingSizingInput = errors.New("Provide lotSize or riskPercent + stopLossPips")
	ErrInvalidStopLoss    = errors.New("stopLossPips must be a positive number")
)

// Stage prefixes for upstream failures.
const (
	StageBalance   = "Balance check failed"
	StagePositions = "Position fetch failed"
	StageClose     = "Close position failed"
	StageQuote     = "Quote fetch failed"
	StageTrade     = "Trade failed"
)

// IsInvalidInput reports whether err was caused by the request itself.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidDirection) ||
		errors.Is(err, ErrMissingSizingInput) ||
		errors.Is(err, ErrInvalidStopLoss)
}
