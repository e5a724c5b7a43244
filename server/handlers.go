package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/fxgate/trade"
)

const maxBodyBytes = 64 * 1024

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Success: true,
		Status:  "ok",
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	acct, err := s.orch.Balance(r.Context())
	if err != nil {
		s.fail(w, r, trade.StageBalance, err)
		return
	}

	respondJSON(w, http.StatusOK, BalanceResponse{
		Success: true,
		Balance: acct.Balance,
		Equity:  acct.Equity,
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.orch.Positions(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		s.fail(w, r, trade.StagePositions, err)
		return
	}

	respondJSON(w, http.StatusOK, PositionsResponse{
		Success:   true,
		Positions: positions,
	})
}

func (s *Server) handleClosePosition(w http.ResponseWriter, r *http.Request) {
	var body ClosePositionRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.badRequest(w, r, err.Error())
		return
	}
	if strings.TrimSpace(body.PositionID) == "" {
		s.badRequest(w, r, "positionId is required")
		return
	}

	res, err := s.orch.ClosePosition(r.Context(), body.PositionID)
	if err != nil {
		s.fail(w, r, trade.StageClose, err)
		return
	}

	msg := res.Message
	if msg == "" {
		msg = "Position " + body.PositionID + " closed"
	}
	respondJSON(w, http.StatusOK, ClosePositionResponse{
		Success: true,
		Message: msg,
	})
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var body TradeRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.badRequest(w, r, err.Error())
		return
	}

	res, err := s.orch.PlaceTrade(r.Context(), body.toRequest())
	if err != nil {
		if trade.IsInvalidInput(err) {
			s.badRequest(w, r, err.Error())
			return
		}
		s.fail(w, r, trade.StageTrade, err)
		return
	}

	sizing := "risk"
	if res.Comment == trade.FixedComment {
		sizing = "fixed"
	}
	s.metrics.RecordOrder(res.Symbol, string(res.Direction), sizing, res.Volume)

	respondJSON(w, http.StatusOK, TradeResponse{
		Success:     true,
		OrderID:     res.OrderID,
		PositionID:  res.PositionID,
		Symbol:      res.Symbol,
		Direction:   string(res.Direction),
		Volume:      res.Volume,
		StopLoss:    res.StopLoss,
		Magic:       res.Magic,
		Comment:     res.Comment,
		RiskPercent: res.RiskPercent,
	})
}

// fail logs err and answers 500 with its message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, stage string, err error) {
	s.metrics.RecordFailure(stage)
	loggerFrom(r).Error("request failed", zap.String("stage", stage), zap.Error(err))
	respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	loggerFrom(r).Warn("bad request", zap.String("reason", msg))
	respondError(w, http.StatusBadRequest, msg)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Success: false, Message: message})
}
