package model

import (
	"strings"
	"time"

	"github.com/nimasrn/trader-ledger/pkg/logger"
)

// DateLayout is the ISO-8601 form dates are persisted and exported in.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

var dateLayouts = []string{
	time.RFC3339Nano,
	DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var now = time.Now

// ParseDate reads a stored date. A malformed value is never an error: it is
// replaced with the current time and a warning is logged.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	logger.Warn("invalid date, substituting current time", "value", raw)
	return now()
}

// ParseOptionalDate is ParseDate for nullable fields; empty input stays nil.
func ParseOptionalDate(raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t := ParseDate(raw)
	return &t
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

// TraderDocument is the serialized form of a Trader used by the key-value
// store, request bodies and exports.
type TraderDocument struct {
	ID                  string `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	Phone               string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Notes               string `json:"notes,omitempty" yaml:"notes,omitempty"`
	LastTransactionDate string `json:"lastTransactionDate,omitempty" yaml:"lastTransactionDate,omitempty"`
}

type TransactionDocument struct {
	ID           string   `json:"id" yaml:"id"`
	TraderID     string   `json:"traderId" yaml:"traderId"`
	Date         string   `json:"date" yaml:"date"`
	Type         string   `json:"type" yaml:"type"`
	ProductType  string   `json:"productType,omitempty" yaml:"productType,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	UnitPrice    *float64 `json:"unitPrice,omitempty" yaml:"unitPrice,omitempty"`
	Amount       float64  `json:"amount" yaml:"amount"`
	Notes        string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	ConversionID string   `json:"conversionId,omitempty" yaml:"conversionId,omitempty"`
}

type ProductTypeDocument struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Unit         string  `json:"unit" yaml:"unit"`
	CurrentPrice float64 `json:"currentPrice" yaml:"currentPrice"`
	Order        *int    `json:"order,omitempty" yaml:"order,omitempty"`
}

type SnapshotDocument struct {
	Traders      []TraderDocument      `json:"traders" yaml:"traders"`
	Transactions []TransactionDocument `json:"transactions" yaml:"transactions"`
	ProductTypes []ProductTypeDocument `json:"productTypes" yaml:"productTypes"`
}

func (t Trader) Document() TraderDocument {
	return TraderDocument{
		ID:                  t.ID,
		Name:                t.Name,
		Phone:               t.Phone,
		Notes:               t.Notes,
		LastTransactionDate: formatOptionalDate(t.LastTransactionDate),
	}
}

func (d TraderDocument) Model() Trader {
	return Trader{
		ID:                  d.ID,
		Name:                d.Name,
		Phone:               d.Phone,
		Notes:               d.Notes,
		LastTransactionDate: ParseOptionalDate(d.LastTransactionDate),
	}
}

func (t Transaction) Document() TransactionDocument {
	return TransactionDocument{
		ID:           t.ID,
		TraderID:     t.TraderID,
		Date:         FormatDate(t.Date),
		Type:         string(t.Type),
		ProductType:  t.ProductType,
		Quantity:     t.Quantity,
		UnitPrice:    t.UnitPrice,
		Amount:       t.Amount,
		Notes:        t.Notes,
		ConversionID: t.ConversionID,
	}
}

// Model converts the document; an empty date is left zero so callers can
// apply their own default.
func (d TransactionDocument) Model() Transaction {
	tx := Transaction{
		ID:           d.ID,
		TraderID:     d.TraderID,
		Type:         TransactionType(d.Type),
		ProductType:  d.ProductType,
		Quantity:     d.Quantity,
		UnitPrice:    d.UnitPrice,
		Amount:       d.Amount,
		Notes:        d.Notes,
		ConversionID: d.ConversionID,
	}
	if strings.TrimSpace(d.Date) != "" {
		tx.Date = ParseDate(d.Date)
	}
	return tx
}

func (p ProductType) Document() ProductTypeDocument {
	return ProductTypeDocument{
		ID:           p.ID,
		Name:         p.Name,
		Unit:         string(p.Unit),
		CurrentPrice: p.CurrentPrice,
		Order:        p.Order,
	}
}

func (d ProductTypeDocument) Model() ProductType {
	return ProductType{
		ID:           d.ID,
		Name:         d.Name,
		Unit:         Unit(d.Unit),
		CurrentPrice: d.CurrentPrice,
		Order:        d.Order,
	}
}

func (s Snapshot) Document() SnapshotDocument {
	doc := SnapshotDocument{
		Traders:      make([]TraderDocument, 0, len(s.Traders)),
		Transactions: make([]TransactionDocument, 0, len(s.Transactions)),
		ProductTypes: make([]ProductTypeDocument, 0, len(s.ProductTypes)),
	}
	for _, t := range s.Traders {
		doc.Traders = append(doc.Traders, t.Document())
	}
	for _, t := range s.Transactions {
		doc.Transactions = append(doc.Transactions, t.Document())
	}
	for _, p := range s.ProductTypes {
		doc.ProductTypes = append(doc.ProductTypes, p.Document())
	}
	return doc
}

func (d SnapshotDocument) Model() Snapshot {
	s := Snapshot{
		Traders:      make([]Trader, 0, len(d.Traders)),
		Transactions: make([]Transaction, 0, len(d.Transactions)),
		ProductTypes: make([]ProductType, 0, len(d.ProductTypes)),
	}
	for _, t := range d.Traders {
		s.Traders = append(s.Traders, t.Model())
	}
	for _, t := range d.Transactions {
		tx := t.Model()
		if tx.Date.IsZero() {
			tx.Date = ParseDate(t.Date)
		}
		s.Transactions = append(s.Transactions, tx)
	}
	for _, p := range d.ProductTypes {
		s.ProductTypes = append(s.ProductTypes, p.Model())
	}
	return s
}
