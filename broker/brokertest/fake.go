// Package brokertest provides an in-memory broker.Broker for tests.
package brokertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/rustyeddy/fxgate/broker"
)

// Fake is a scripted broker. Set the exported fields before use; the
// *Err fields make the matching call fail. Every call is recorded.
type Fake struct {
	Account   broker.Account
	Positions []broker.Position
	Quotes    map[string]broker.Quote
	OrderID   string

	AccountErr   error
	PositionsErr error
	CloseErr     error
	QuoteErr     error
	OrderErr     error

	mu     sync.Mutex
	calls  []string
	orders []broker.OrderRequest
	closed []string
}

var _ broker.Broker = (*Fake)(nil)

func (f *Fake) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

// Calls returns the names of the methods invoked, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Orders returns every order request that reached CreateOrder.
func (f *Fake) Orders() []broker.OrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]broker.OrderRequest(nil), f.orders...)
}

// Closed returns the position ids passed to ClosePosition.
func (f *Fake) Closed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.closed...)
}

func (f *Fake) GetAccount(ctx context.Context) (broker.Account, error) {
	f.record("GetAccount")
	if f.AccountErr != nil {
		return broker.Account{}, f.AccountErr
	}
	return f.Account, nil
}

func (f *Fake) ListPositions(ctx context.Context) ([]broker.Position, error) {
	f.record("ListPositions")
	if f.PositionsErr != nil {
		return nil, f.PositionsErr
	}
	return append([]broker.Position{}, f.Positions...), nil
}

func (f *Fake) ClosePosition(ctx context.Context, positionID string) (broker.CloseResult, error) {
	f.record("ClosePosition")
	if f.CloseErr != nil {
		return broker.CloseResult{}, f.CloseErr
	}

	f.mu.Lock()
	f.closed = append(f.closed, positionID)
	f.mu.Unlock()

	return broker.CloseResult{OrderID: "close-" + positionID, Message: "Request completed"}, nil
}

func (f *Fake) GetQuote(ctx context.Context, symbol string) (broker.Quote, error) {
	f.record("GetQuote")
	if f.QuoteErr != nil {
		return broker.Quote{}, f.QuoteErr
	}
	q, ok := f.Quotes[symbol]
	if !ok {
		return broker.Quote{}, fmt.Errorf("no quote for %s", symbol)
	}
	return q, nil
}

func (f *Fake) CreateOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	f.record("CreateOrder")
	if f.OrderErr != nil {
		return broker.OrderResult{}, f.OrderErr
	}

	f.mu.Lock()
	f.orders = append(f.orders, req)
	n := len(f.orders)
	f.mu.Unlock()

	orderID := f.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("order-%d", n)
	}
	return broker.OrderResult{OrderID: orderID, PositionID: orderID, Message: "Request completed"}, nil
}
