package repository

import (
	"github.com/nimasrn/trader-ledger/internal/model"
)

type ProductTypeEntity struct {
	UserID       string  `db:"user_id"       gorm:"primaryKey;column:user_id"`
	ID           string  `db:"id"            gorm:"primaryKey;column:id"`
	Name         string  `db:"name"          gorm:"column:name;not null"`
	Unit         string  `db:"unit"          gorm:"column:unit;not null"`
	CurrentPrice float64 `db:"current_price" gorm:"column:current_price;not null;default:0"`
	SortOrder    *int    `db:"sort_order"    gorm:"column:sort_order"`
}

func (ProductTypeEntity) TableName() string {
	return "product_types"
}

func toProductTypeEntity(userID string, m *model.ProductType) *ProductTypeEntity {
	if m == nil {
		return nil
	}
	return &ProductTypeEntity{
		UserID:       userID,
		ID:           m.ID,
		Name:         m.Name,
		Unit:         string(m.Unit),
		CurrentPrice: m.CurrentPrice,
		SortOrder:    m.Order,
	}
}

func toProductTypeModel(e *ProductTypeEntity) *model.ProductType {
	if e == nil {
		return nil
	}
	return &model.ProductType{
		ID:           e.ID,
		Name:         e.Name,
		Unit:         model.Unit(e.Unit),
		CurrentPrice: e.CurrentPrice,
		Order:        e.SortOrder,
	}
}

func toProductTypeModels(entities []*ProductTypeEntity) []model.ProductType {
	models := make([]model.ProductType, 0, len(entities))
	for _, e := range entities {
		models = append(models, *toProductTypeModel(e))
	}
	return models
}
