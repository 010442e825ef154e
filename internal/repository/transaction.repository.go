package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/pg"
	"github.com/nimasrn/trader-ledger/pkg/prom"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

// ListTransactions returns the user's transactions matching filter. Date
// bounds are applied after parsing since stored dates may be malformed.
func (r *TransactionRepository) ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	defer prom.ObserveStoreOp(backend, "list_transactions", time.Now())

	q := r.Read(ctx).Where("user_id = ?", userID)
	if filter.TraderID != "" {
		q = q.Where("trader_id = ?", filter.TraderID)
	}

	var entities []*TransactionEntity
	if err := q.Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}

	txs := toTransactionModels(entities)
	if filter.From == nil && filter.To == nil {
		return txs, nil
	}
	out := txs[:0]
	for _, tx := range txs {
		if filter.From != nil && tx.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && tx.Date.After(*filter.To) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *TransactionRepository) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

// SaveTransaction inserts the transaction or replaces the stored one with the same id.
func (r *TransactionRepository) SaveTransaction(ctx context.Context, userID string, tx model.Transaction) error {
	defer prom.ObserveStoreOp(backend, "save_transaction", time.Now())

	return r.Write(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(toTransactionEntity(userID, &tx)).
		Error
}

func (r *TransactionRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	defer prom.ObserveStoreOp(backend, "delete_transaction", time.Now())

	result := r.Write(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&TransactionEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) CountByProductType(ctx context.Context, userID, productTypeID string) (int64, error) {
	var count int64
	err := r.Read(ctx).
		Model(&TransactionEntity{}).
		Where("user_id = ? AND product_type = ?", userID, productTypeID).
		Count(&count).
		Error
	return count, err
}
