package trade

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/rustyeddy/fxgate/broker"
	"github.com/rustyeddy/fxgate/pkg/id"
	"github.com/rustyeddy/fxgate/risk"
)

// FixedComment marks orders whose volume was supplied by the caller.
const FixedComment = "Fixed"

// Orchestrator runs account requests against a single broker account.
// It holds no mutable state and is safe for concurrent use.
type Orchestrator struct {
	broker        broker.Broker
	defaultSymbol string
	log           *zap.Logger

	// magic is swapped out in tests.
	magic func() int64
}

func NewOrchestrator(b broker.Broker, defaultSymbol string, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		broker:        b,
		defaultSymbol: defaultSymbol,
		log:           log,
		magic:         id.Magic,
	}
}

// DefaultSymbol is used when a request names no symbol.
func (o *Orchestrator) DefaultSymbol() string {
	return o.defaultSymbol
}

func (o *Orchestrator) symbolOrDefault(symbol string) string {
	if symbol == "" {
		return o.defaultSymbol
	}
	return symbol
}

// Balance returns the account balance and equity.
func (o *Orchestrator) Balance(ctx context.Context) (broker.Account, error) {
	acct, err := o.broker.GetAccount(ctx)
	if err != nil {
		return broker.Account{}, fmt.Errorf("%s: %w", StageBalance, err)
	}
	return acct, nil
}

// Positions returns the open positions on symbol (default symbol if empty).
func (o *Orchestrator) Positions(ctx context.Context, symbol string) ([]broker.Position, error) {
	all, err := o.broker.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StagePositions, err)
	}
	return broker.FilterBySymbol(all, o.symbolOrDefault(symbol)), nil
}

// ClosePosition closes positionID in full.
func (o *Orchestrator) ClosePosition(ctx context.Context, positionID string) (broker.CloseResult, error) {
	res, err := o.broker.ClosePosition(ctx, positionID)
	if err != nil {
		return broker.CloseResult{}, fmt.Errorf("%s: %w", StageClose, err)
	}
	o.log.Info("position closed", zap.String("position_id", positionID), zap.String("order_id", res.OrderID))
	return res, nil
}

// PlaceTrade validates req, sizes it, derives its stop and submits it.
// Steps run strictly in order and the first failure ends the request;
// no order is created unless every earlier step succeeded.
func (o *Orchestrator) PlaceTrade(ctx context.Context, req Request) (Result, error) {
	if !req.Direction.Valid() {
		return Result{}, ErrInvalidDirection
	}
	if req.Volume == nil && (req.RiskPercent == nil || req.StopLossPips == nil) {
		return Result{}, ErrMissingSizingInput
	}
	if req.StopLossPips != nil && !(*req.StopLossPips > 0) {
		return Result{}, ErrInvalidStopLoss
	}

	symbol := o.symbolOrDefault(req.Symbol)
	log := o.log.With(zap.String("symbol", symbol), zap.String("direction", string(req.Direction)))

	res, err := o.placeTrade(ctx, req, symbol, log)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", StageTrade, err)
	}

	log.Info("order placed",
		zap.String("order_id", res.OrderID),
		zap.Float64("volume", res.Volume),
		zap.Int64("magic", res.Magic),
		zap.String("comment", res.Comment),
	)
	return res, nil
}

func (o *Orchestrator) placeTrade(ctx context.Context, req Request, symbol string, log *zap.Logger) (Result, error) {
	var (
		volume  float64
		comment string
	)

	if req.Volume != nil {
		volume = risk.Round2(*req.Volume)
		comment = FixedComment
	} else {
		acct, err := o.broker.GetAccount(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", StageBalance, err)
		}

		volume, err = risk.ComputeVolume(acct.Balance, *req.RiskPercent, *req.StopLossPips, symbol)
		if err != nil {
			return Result{}, err
		}
		comment = riskComment(*req.RiskPercent)

		log.Debug("volume sized from balance",
			zap.Float64("balance", acct.Balance),
			zap.Float64("risk_percent", *req.RiskPercent),
			zap.Float64("stop_loss_pips", *req.StopLossPips),
			zap.Float64("volume", volume),
		)
	}

	var stopLoss *float64
	if req.StopLossPips != nil {
		q, err := o.broker.GetQuote(ctx, symbol)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", StageQuote, err)
		}

		ref := q.Bid
		if req.Direction == Buy {
			ref = q.Ask
		}
		sl := risk.StopLossPrice(req.Direction.Side(), ref, *req.StopLossPips)
		stopLoss = &sl

		log.Debug("stop loss derived", zap.Float64("reference", ref), zap.Float64("stop_loss", sl))
	}

	order := broker.OrderRequest{
		Symbol:   symbol,
		Volume:   volume,
		Type:     req.Direction.OrderType(),
		StopLoss: stopLoss,
		Magic:    o.magic(),
		Comment:  comment,
	}

	placed, err := o.broker.CreateOrder(ctx, order)
	if err != nil {
		return Result{}, err
	}

	return Result{
		OrderID:     placed.OrderID,
		PositionID:  placed.PositionID,
		Symbol:      symbol,
		Direction:   req.Direction,
		Volume:      volume,
		StopLoss:    stopLoss,
		Magic:       order.Magic,
		Comment:     comment,
		RiskPercent: req.RiskPercent,
	}, nil
}

func riskComment(pct float64) string {
	return "Risk: " + strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}
