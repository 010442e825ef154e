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

const backend = "postgres"

type TraderRepository struct {
	*pg.DB
}

func NewTraderRepository(db *pg.DB) *TraderRepository {
	return &TraderRepository{
		db,
	}
}

func (r *TraderRepository) ListTraders(ctx context.Context, userID string) ([]model.Trader, error) {
	defer prom.ObserveStoreOp(backend, "list_traders", time.Now())

	var entities []*TraderEntity
	err := r.Read(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toTraderModels(entities), nil
}

func (r *TraderRepository) GetTrader(ctx context.Context, userID, id string) (*model.Trader, error) {
	var entity TraderEntity
	err := r.Read(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrTraderNotFound
		}
		return nil, err
	}
	return toTraderModel(&entity), nil
}

// SaveTrader inserts the trader or replaces the stored one with the same id.
func (r *TraderRepository) SaveTrader(ctx context.Context, userID string, t model.Trader) error {
	defer prom.ObserveStoreOp(backend, "save_trader", time.Now())

	return r.Write(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(toTraderEntity(userID, &t)).
		Error
}

// TouchTrader sets the trader's last transaction date.
func (r *TraderRepository) TouchTrader(ctx context.Context, userID, id string, at time.Time) error {
	result := r.Write(ctx).
		Model(&TraderEntity{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("last_transaction_date", model.FormatDate(at))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrTraderNotFound
	}
	return nil
}

// DeleteTrader removes the trader together with every transaction that
// references it.
func (r *TraderRepository) DeleteTrader(ctx context.Context, userID, id string) error {
	defer prom.ObserveStoreOp(backend, "delete_trader", time.Now())

	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		err := r.Write(ctx).
			Where("user_id = ? AND trader_id = ?", userID, id).
			Delete(&TransactionEntity{}).
			Error
		if err != nil {
			return err
		}

		result := r.Write(ctx).
			Where("user_id = ? AND id = ?", userID, id).
			Delete(&TraderEntity{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return model.ErrTraderNotFound
		}
		return nil
	})
}
