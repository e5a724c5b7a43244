package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rustyeddy/fxgate/broker"
	"github.com/rustyeddy/fxgate/broker/brokertest"
	"github.com/rustyeddy/fxgate/risk"
)

func f64(v float64) *float64 { return &v }

func newFake() *brokertest.Fake {
	return &brokertest.Fake{
		Account: broker.Account{Balance: 10000, Equity: 10050},
		Quotes: map[string]broker.Quote{
			"XAUUSD": {Symbol: "XAUUSD", Bid: 1949.80, Ask: 1950.00},
			"EURUSD": {Symbol: "EURUSD", Bid: 1.0849, Ask: 1.0851},
		},
		OrderID: "42",
	}
}

func newOrchestrator(t *testing.T, b broker.Broker) *Orchestrator {
	t.Helper()
	o := NewOrchestrator(b, "XAUUSD", zaptest.NewLogger(t))
	o.magic = func() int64 { return 123456 }
	return o
}

func TestPlaceTrade_RiskSized(t *testing.T) {
	t.Parallel()

	fake := newFake()
	o := newOrchestrator(t, fake)

	res, err := o.PlaceTrade(context.Background(), Request{
		Direction:    Buy,
		Symbol:       "EURUSD",
		RiskPercent:  f64(2),
		StopLossPips: f64(20),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"GetAccount", "GetQuote", "CreateOrder"}, fake.Calls())
	assert.Equal(t, "42", res.OrderID)
	assert.Equal(t, "EURUSD", res.Symbol)
	assert.Equal(t, Buy, res.Direction)
	assert.InDelta(t, 1.00, res.Volume, 1e-9)
	assert.Equal(t, "Risk: 2%", res.Comment)
	assert.Equal(t, int64(123456), res.Magic)
	require.NotNil(t, res.StopLoss)
	// 1.0851 - 20*0.01, rounded
	assert.InDelta(t, 0.89, *res.StopLoss, 1e-9)

	orders := fake.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, broker.OrderTypeBuy, orders[0].Type)
	assert.Equal(t, "EURUSD", orders[0].Symbol)
	assert.InDelta(t, 1.00, orders[0].Volume, 1e-9)
	assert.Equal(t, int64(123456), orders[0].Magic)
	assert.Equal(t, "Risk: 2%", orders[0].Comment)
}

func TestPlaceTrade_StopUsesAskForBuyAndBidForSell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir  Direction
		want float64
		typ  broker.OrderType
	}{
		{Buy, 1949.50, broker.OrderTypeBuy},   // ask 1950.00 - 0.50
		{Sell, 1950.30, broker.OrderTypeSell}, // bid 1949.80 + 0.50
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.dir), func(t *testing.T) {
			t.Parallel()

			fake := newFake()
			o := newOrchestrator(t, fake)

			res, err := o.PlaceTrade(context.Background(), Request{
				Direction:    tt.dir,
				Volume:       f64(0.5),
				StopLossPips: f64(50),
			})
			require.NoError(t, err)
			require.NotNil(t, res.StopLoss)
			assert.InDelta(t, tt.want, *res.StopLoss, 1e-9)
			assert.Equal(t, "XAUUSD", res.Symbol)

			orders := fake.Orders()
			require.Len(t, orders, 1)
			assert.Equal(t, tt.typ, orders[0].Type)
			require.NotNil(t, orders[0].StopLoss)
			assert.InDelta(t, tt.want, *orders[0].StopLoss, 1e-9)
		})
	}
}

func TestPlaceTrade_FixedVolumeSkipsBalance(t *testing.T) {
	t.Parallel()

	fake := newFake()
	o := newOrchestrator(t, fake)

	res, err := o.PlaceTrade(context.Background(), Request{
		Direction:   Sell,
		Volume:      f64(0.256),
		RiskPercent: f64(9), // recorded only, not checked against the ceiling
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"CreateOrder"}, fake.Calls())
	assert.Equal(t, FixedComment, res.Comment)
	assert.InDelta(t, 0.26, res.Volume, 1e-9)
	assert.Nil(t, res.StopLoss)
	require.NotNil(t, res.RiskPercent)
	assert.Equal(t, 9.0, *res.RiskPercent)

	orders := fake.Orders()
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].StopLoss)
	assert.Equal(t, FixedComment, orders[0].Comment)
}

func TestPlaceTrade_InvalidInputMakesNoCalls(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"empty direction", Request{Volume: f64(1)}, ErrInvalidDirection},
		{"lowercase direction", Request{Direction: "buy", Volume: f64(1)}, ErrInvalidDirection},
		{"unknown direction", Request{Direction: "HOLD", Volume: f64(1)}, ErrInvalidDirection},
		{"no sizing", Request{Direction: Buy}, ErrMissingSizingInput},
		{"risk without stop", Request{Direction: Buy, RiskPercent: f64(1)}, ErrMissingSizingInput},
		{"stop without risk", Request{Direction: Sell, StopLossPips: f64(20)}, ErrMissingSizingInput},
		{"zero stop", Request{Direction: Buy, RiskPercent: f64(1), StopLossPips: f64(0)}, ErrInvalidStopLoss},
		{"negative stop", Request{Direction: Buy, Volume: f64(1), StopLossPips: f64(-5)}, ErrInvalidStopLoss},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := newFake()
			o := newOrchestrator(t, fake)

			_, err := o.PlaceTrade(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsInvalidInput(err))
			assert.Empty(t, fake.Calls())
		})
	}
}

func TestPlaceTrade_RiskLimitAbortsBeforeOrder(t *testing.T) {
	t.Parallel()

	fake := newFake()
	o := newOrchestrator(t, fake)

	_, err := o.PlaceTrade(context.Background(), Request{
		Direction:    Buy,
		Symbol:       "EURUSD",
		RiskPercent:  f64(6),
		StopLossPips: f64(20),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, risk.ErrRiskLimitExceeded)
	assert.False(t, IsInvalidInput(err))
	assert.Equal(t, "Trade failed: Risk exceeds 5% limit", err.Error())

	assert.Equal(t, []string{"GetAccount"}, fake.Calls())
	assert.Empty(t, fake.Orders())
}

func TestPlaceTrade_UpstreamFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name      string
		setup     func(f *brokertest.Fake)
		req       Request
		wantCalls []string
		wantMsg   string
	}{
		{
			name:      "balance",
			setup:     func(f *brokertest.Fake) { f.AccountErr = boom },
			req:       Request{Direction: Buy, RiskPercent: f64(1), StopLossPips: f64(10)},
			wantCalls: []string{"GetAccount"},
			wantMsg:   "Trade failed: Balance check failed: boom",
		},
		{
			name:      "quote",
			setup:     func(f *brokertest.Fake) { f.QuoteErr = boom },
			req:       Request{Direction: Buy, RiskPercent: f64(1), StopLossPips: f64(10)},
			wantCalls: []string{"GetAccount", "GetQuote"},
			wantMsg:   "Trade failed: Quote fetch failed: boom",
		},
		{
			name:      "order",
			setup:     func(f *brokertest.Fake) { f.OrderErr = boom },
			req:       Request{Direction: Sell, Volume: f64(1)},
			wantCalls: []string{"CreateOrder"},
			wantMsg:   "Trade failed: boom",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := newFake()
			tt.setup(fake)
			o := newOrchestrator(t, fake)

			_, err := o.PlaceTrade(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.False(t, IsInvalidInput(err))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.wantCalls, fake.Calls())
			assert.Empty(t, fake.Orders())
		})
	}
}

func TestPlaceTrade_ZeroStopNeverReachesCalculator(t *testing.T) {
	t.Parallel()

	fake := newFake()
	o := newOrchestrator(t, fake)

	_, err := o.PlaceTrade(context.Background(), Request{
		Direction: Buy, RiskPercent: f64(2), StopLossPips: f64(0),
	})
	assert.ErrorIs(t, err, ErrInvalidStopLoss)
	assert.NotErrorIs(t, err, risk.ErrNonFiniteVolume)
}

func TestBalance(t *testing.T) {
	t.Parallel()

	fake := newFake()
	o := newOrchestrator(t, fake)

	acct, err := o.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10000.0, acct.Balance)
	assert.Equal(t, 10050.0, acct.Equity)

	fake.AccountErr = errors.New("down")
	_, err = o.Balance(context.Background())
	assert.EqualError(t, err, "Balance check failed: down")
}

func TestPositions(t *testing.T) {
	t.Parallel()

	fake := newFake()
	fake.Positions = []broker.Position{
		{ID: "1", Symbol: "XAUUSD"},
		{ID: "2", Symbol: "GBPUSD"},
		{ID: "3", Symbol: "XAUUSD"},
	}
	o := newOrchestrator(t, fake)

	got, err := o.Positions(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = o.Positions(context.Background(), "GBPUSD")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	fake.PositionsErr = errors.New("down")
	_, err = o.Positions(context.Background(), "GBPUSD")
	assert.EqualError(t, err, "Position fetch failed: down")
}

func TestClosePosition(t *testing.T) {
	t.Parallel()

	fake := newFake()
	o := newOrchestrator(t, fake)

	res, err := o.ClosePosition(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "close-77", res.OrderID)
	assert.Equal(t, []string{"77"}, fake.Closed())

	fake.CloseErr = errors.New("gone")
	_, err = o.ClosePosition(context.Background(), "78")
	assert.EqualError(t, err, "Close position failed: gone")
}

func TestDirection(t *testing.T) {
	t.Parallel()

	assert.True(t, Buy.Valid())
	assert.True(t, Sell.Valid())
	assert.False(t, Direction("Buy").Valid())
	assert.Equal(t, risk.Buy, Buy.Side())
	assert.Equal(t, risk.Sell, Sell.Side())
	assert.Equal(t, broker.OrderTypeSell, Sell.OrderType())
}
