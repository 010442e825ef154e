package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nimasrn/trader-ledger/internal/idempotency"
	"github.com/nimasrn/trader-ledger/internal/ledger"
	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/id"
	"github.com/nimasrn/trader-ledger/pkg/logger"
	"github.com/nimasrn/trader-ledger/pkg/prom"
)

func validateConversion(req model.ConversionRequest) error {
	switch {
	case strings.TrimSpace(req.TraderID) == "":
		return fmt.Errorf("%w: trader id is required", model.ErrValidation)
	case req.DebtProductType == "" || req.ReceivableProductType == "":
		return fmt.Errorf("%w: both product types are required", model.ErrValidation)
	case req.DebtQuantity <= 0:
		return fmt.Errorf("%w: debt quantity must be positive", model.ErrValidation)
	case req.ReceivableQuantity < 0 || req.Multiplier < 0:
		return fmt.Errorf("%w: receivable quantity and multiplier must not be negative", model.ErrValidation)
	case req.ReceivableQuantity == 0 && req.Multiplier == 0:
		return fmt.Errorf("%w: receivable quantity or multiplier is required", model.ErrValidation)
	}
	return nil
}

// ConvertDebt records a commodity debt settled with another commodity as two
// linked transactions written in one unit of work. When the receivable
// quantity is omitted it is derived from the multiplier. A non-empty
// idempotencyKey makes a repeated request return the first result.
func (s *LedgerService) ConvertDebt(ctx context.Context, userID string, req model.ConversionRequest, idempotencyKey string) ([]model.Transaction, error) {
	if err := validateConversion(req); err != nil {
		return nil, err
	}
	if req.ReceivableQuantity == 0 {
		req.ReceivableQuantity = ledger.DeriveReceivable(req.DebtQuantity, req.Multiplier)
	}

	var claim *idempotency.Claim
	if idempotencyKey != "" && s.idem != nil {
		key := "conversion:" + userID + ":" + idempotencyKey
		c, err := s.idem.Acquire(ctx, key)
		switch {
		case errors.Is(err, idempotency.ErrAlreadyProcessed):
			prom.IncConversion("replayed")
			return s.replayConversion(ctx, key)
		case errors.Is(err, idempotency.ErrLockAcquireFailed):
			return nil, ErrConversionInProgress
		case err != nil:
			return nil, err
		}
		claim = c
	}

	txs, err := s.writeConversion(ctx, userID, req)
	if err != nil {
		prom.IncConversion("failed")
		if claim != nil {
			_ = s.idem.Release(ctx, claim)
		}
		return nil, err
	}
	prom.IncConversion("ok")

	if claim != nil {
		if err := s.idem.MarkSuccess(ctx, claim, encodeTransactions(txs)); err != nil {
			logger.Warn("conversion saved but result not cached", "user_id", userID, "error", err)
		}
	}
	return txs, nil
}

func (s *LedgerService) writeConversion(ctx context.Context, userID string, req model.ConversionRequest) ([]model.Transaction, error) {
	req.ConversionID = id.Correlation()
	drafts := ledger.ComposeConversion(req, s.now())
	txs := []model.Transaction{
		drafts[0].ToTransaction(s.newID()),
		drafts[1].ToTransaction(s.newID()),
	}

	err := s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.TouchTrader(ctx, userID, req.TraderID, s.now()); err != nil {
			return fmt.Errorf("touch trader: %w", err)
		}
		for _, tx := range txs {
			if err := s.store.SaveTransaction(ctx, userID, tx); err != nil {
				return fmt.Errorf("save conversion half %s: %w", tx.Type, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("debt converted",
		"user_id", userID,
		"trader_id", req.TraderID,
		"conversion_id", req.ConversionID,
		"multiplier", req.Multiplier)
	return txs, nil
}

func (s *LedgerService) replayConversion(ctx context.Context, key string) ([]model.Transaction, error) {
	raw, err := s.idem.Result(ctx, key)
	if err != nil {
		return nil, err
	}
	// the processed marker expired after Acquire saw it
	if raw == nil {
		return nil, ErrConversionInProgress
	}
	var docs []model.TransactionDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode cached conversion: %w", err)
	}
	txs := make([]model.Transaction, 0, len(docs))
	for _, d := range docs {
		txs = append(txs, d.Model())
	}
	return txs, nil
}

func encodeTransactions(txs []model.Transaction) []byte {
	docs := make([]model.TransactionDocument, 0, len(txs))
	for _, tx := range txs {
		docs = append(docs, tx.Document())
	}
	raw, _ := json.Marshal(docs)
	return raw
}
