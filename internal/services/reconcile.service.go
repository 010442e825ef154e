package services

import (
	"context"
	"fmt"

	"github.com/nimasrn/trader-ledger/internal/ledger"
	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/logger"
	"github.com/nimasrn/trader-ledger/pkg/prom"
)

// Reconcile finds debt conversions that were not written as a complete pair.
// With repair set, conversion groups left with a single half are deleted.
func (s *LedgerService) Reconcile(ctx context.Context, userID string, repair bool) (*model.ReconcileResult, error) {
	txs, err := s.store.ListTransactions(ctx, userID, model.TransactionFilter{})
	if err != nil {
		prom.IncReconcileRun("failed")
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	res := &model.ReconcileResult{
		Incomplete: ledger.FindIncompleteConversions(txs),
	}
	if res.Incomplete == nil {
		res.Incomplete = []model.IncompleteConversion{}
	}
	if len(res.Incomplete) == 0 {
		prom.IncReconcileRun("clean")
		return res, nil
	}

	for _, ic := range res.Incomplete {
		logger.Warn("incomplete debt conversion",
			"user_id", userID,
			"conversion_id", ic.ConversionID,
			"transaction_ids", ic.TransactionIDs)
	}
	if !repair {
		prom.IncReconcileRun("incomplete")
		return res, nil
	}

	err = s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, ic := range res.Incomplete {
			if len(ic.TransactionIDs) != 1 {
				continue
			}
			if err := s.store.DeleteTransaction(ctx, userID, ic.TransactionIDs[0]); err != nil {
				return fmt.Errorf("delete orphan %s: %w", ic.TransactionIDs[0], err)
			}
			res.Repaired++
		}
		return nil
	})
	if err != nil {
		prom.IncReconcileRun("failed")
		return nil, err
	}
	prom.AddRepairedConversions(res.Repaired)
	prom.IncReconcileRun("repaired")
	logger.Info("reconciliation repaired orphans", "user_id", userID, "repaired", res.Repaired)
	return res, nil
}
