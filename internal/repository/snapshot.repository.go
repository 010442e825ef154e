package repository

import (
	"context"
	"sort"
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/pg"
	"github.com/nimasrn/trader-ledger/pkg/prom"
)

// Store bundles the three repositories over one connection pair and adds
// whole-user reads.
type Store struct {
	*pg.DB
	*TraderRepository
	*TransactionRepository
	*ProductTypeRepository
}

func NewStore(db *pg.DB) *Store {
	return &Store{
		DB:                    db,
		TraderRepository:      NewTraderRepository(db),
		TransactionRepository: NewTransactionRepository(db),
		ProductTypeRepository: NewProductTypeRepository(db),
	}
}

func (s *Store) Snapshot(ctx context.Context, userID string) (model.Snapshot, error) {
	defer prom.ObserveStoreOp(backend, "snapshot", time.Now())

	var snap model.Snapshot
	var err error
	if snap.Traders, err = s.ListTraders(ctx, userID); err != nil {
		return snap, err
	}
	if snap.Transactions, err = s.ListTransactions(ctx, userID, model.TransactionFilter{}); err != nil {
		return snap, err
	}
	if snap.ProductTypes, err = s.ListProductTypes(ctx, userID); err != nil {
		return snap, err
	}
	return snap, nil
}

// ListUsers returns every user id that owns at least one record.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, m := range []interface{}{&TraderEntity{}, &TransactionEntity{}, &ProductTypeEntity{}} {
		var ids []string
		if err := s.Read(ctx).Model(m).Distinct().Pluck("user_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	users := make([]string, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}
