package repository

import (
	"github.com/nimasrn/trader-ledger/internal/model"
)

type TraderEntity struct {
	UserID              string `db:"user_id"               gorm:"primaryKey;column:user_id"`
	ID                  string `db:"id"                    gorm:"primaryKey;column:id"`
	Name                string `db:"name"                  gorm:"column:name;not null"`
	Phone               string `db:"phone"                 gorm:"column:phone"`
	Notes               string `db:"notes"                 gorm:"column:notes"`
	LastTransactionDate string `db:"last_transaction_date" gorm:"column:last_transaction_date"`
}

func (TraderEntity) TableName() string {
	return "traders"
}

func toTraderEntity(userID string, m *model.Trader) *TraderEntity {
	if m == nil {
		return nil
	}
	d := m.Document()
	return &TraderEntity{
		UserID:              userID,
		ID:                  d.ID,
		Name:                d.Name,
		Phone:               d.Phone,
		Notes:               d.Notes,
		LastTransactionDate: d.LastTransactionDate,
	}
}

func toTraderModel(e *TraderEntity) *model.Trader {
	if e == nil {
		return nil
	}
	m := model.TraderDocument{
		ID:                  e.ID,
		Name:                e.Name,
		Phone:               e.Phone,
		Notes:               e.Notes,
		LastTransactionDate: e.LastTransactionDate,
	}.Model()
	return &m
}

func toTraderModels(entities []*TraderEntity) []model.Trader {
	models := make([]model.Trader, 0, len(entities))
	for _, e := range entities {
		models = append(models, *toTraderModel(e))
	}
	return models
}
