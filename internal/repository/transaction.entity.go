package repository

import (
	"github.com/nimasrn/trader-ledger/internal/model"
)

// TransactionEntity keeps the date as the ISO-8601 string it was written
// with; it is parsed leniently when read back.
type TransactionEntity struct {
	UserID       string   `db:"user_id"       gorm:"primaryKey;column:user_id"`
	ID           string   `db:"id"            gorm:"primaryKey;column:id"`
	TraderID     string   `db:"trader_id"     gorm:"column:trader_id;not null;index"`
	Date         string   `db:"date"          gorm:"column:date;not null"`
	Type         string   `db:"type"          gorm:"column:type;not null"`
	ProductType  string   `db:"product_type"  gorm:"column:product_type;index"`
	Quantity     *float64 `db:"quantity"      gorm:"column:quantity"`
	UnitPrice    *float64 `db:"unit_price"    gorm:"column:unit_price"`
	Amount       float64  `db:"amount"        gorm:"column:amount;not null;default:0"`
	Notes        string   `db:"notes"         gorm:"column:notes"`
	ConversionID string   `db:"conversion_id" gorm:"column:conversion_id;index"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(userID string, m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	d := m.Document()
	return &TransactionEntity{
		UserID:       userID,
		ID:           d.ID,
		TraderID:     d.TraderID,
		Date:         d.Date,
		Type:         d.Type,
		ProductType:  d.ProductType,
		Quantity:     d.Quantity,
		UnitPrice:    d.UnitPrice,
		Amount:       d.Amount,
		Notes:        d.Notes,
		ConversionID: d.ConversionID,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	m := model.TransactionDocument{
		ID:           e.ID,
		TraderID:     e.TraderID,
		Date:         e.Date,
		Type:         e.Type,
		ProductType:  e.ProductType,
		Quantity:     e.Quantity,
		UnitPrice:    e.UnitPrice,
		Amount:       e.Amount,
		Notes:        e.Notes,
		ConversionID: e.ConversionID,
	}.Model()
	if m.Date.IsZero() {
		m.Date = model.ParseDate(e.Date)
	}
	return &m
}

func toTransactionModels(entities []*TransactionEntity) []model.Transaction {
	models := make([]model.Transaction, 0, len(entities))
	for _, e := range entities {
		models = append(models, *toTransactionModel(e))
	}
	return models
}
