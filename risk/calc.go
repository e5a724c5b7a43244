package risk

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

const (
	// MaxRiskPercent is the largest share of the balance a single trade may risk.
	MaxRiskPercent = 5.0

	// DefaultPipValue applies to any symbol missing from PipValues.
	DefaultPipValue = 10.0

	// PipScale converts a stop distance in pips to a price offset.
	// NOTE: this is 0.01 for every instrument, including EURUSD (0.0001)
	// and yen pairs. Stop prices for those are off by the pip-size ratio.
	PipScale = 0.01
)

var (
	ErrRiskLimitExceeded = errors.New("Risk exceeds 5% limit")
	ErrNonFiniteVolume   = errors.New("volume is not a finite number")
)

// PipValues is the account-currency value of one pip on one standard lot.
// Lookups are exact and case-sensitive. The table is never written at runtime.
var PipValues = map[string]float64{
	"EURUSD": 10,
	"GBPUSD": 10,
	"AUDUSD": 10,
	"NZDUSD": 10,
	"USDJPY": 9.09,
	"USDCHF": 10.87,
	"USDCAD": 7.46,
	"XAUUSD": 10,
}

// PipValue returns the pip value for symbol, falling back to DefaultPipValue.
func PipValue(symbol string) float64 {
	if v, ok := PipValues[symbol]; ok {
		return v
	}
	return DefaultPipValue
}

// ComputeVolume sizes a position so that hitting a stop stopPips away
// loses riskPercent of balance.
func ComputeVolume(balance, riskPercent, stopPips float64, symbol string) (float64, error) {
	if riskPercent > MaxRiskPercent {
		return 0, ErrRiskLimitExceeded
	}

	riskAmount := balance * (riskPercent / 100)
	volume := riskAmount / (stopPips * PipValue(symbol))

	if math.IsInf(volume, 0) || math.IsNaN(volume) {
		return 0, ErrNonFiniteVolume
	}
	return Round2(volume), nil
}

// StopLossPrice places a stop stopPips away from ref on the losing side
// of a position opened in direction side.
func StopLossPrice(side Side, ref, stopPips float64) float64 {
	adj := stopPips * PipScale
	if side == Buy {
		return Round2(ref - adj)
	}
	return Round2(ref + adj)
}

// Round2 rounds half away from zero to two decimal places. Rounding goes
// through the shortest decimal form of x, so 1.005 becomes 1.01.
func Round2(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}
