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

type ProductTypeRepository struct {
	*pg.DB
}

func NewProductTypeRepository(db *pg.DB) *ProductTypeRepository {
	return &ProductTypeRepository{
		db,
	}
}

func (r *ProductTypeRepository) ListProductTypes(ctx context.Context, userID string) ([]model.ProductType, error) {
	defer prom.ObserveStoreOp(backend, "list_product_types", time.Now())

	var entities []*ProductTypeEntity
	err := r.Read(ctx).
		Where("user_id = ?", userID).
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	pts := toProductTypeModels(entities)
	model.SortProductTypes(pts)
	return pts, nil
}

func (r *ProductTypeRepository) GetProductType(ctx context.Context, userID, id string) (*model.ProductType, error) {
	var entity ProductTypeEntity
	err := r.Read(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProductTypeNotFound
		}
		return nil, err
	}
	return toProductTypeModel(&entity), nil
}

func (r *ProductTypeRepository) SaveProductType(ctx context.Context, userID string, p model.ProductType) error {
	defer prom.ObserveStoreOp(backend, "save_product_type", time.Now())

	return r.Write(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(toProductTypeEntity(userID, &p)).
		Error
}

func (r *ProductTypeRepository) DeleteProductType(ctx context.Context, userID, id string) error {
	result := r.Write(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&ProductTypeEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrProductTypeNotFound
	}
	return nil
}
