package model

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType values are persisted verbatim; they must not be renamed.
type TransactionType string

const (
	GoodsPurchased         TransactionType = "mal_alimi"
	GoodsSold              TransactionType = "mal_satisi"
	CashPaymentMade        TransactionType = "odeme_yapildi"
	CashCollected          TransactionType = "tahsilat"
	CashLoanGiven          TransactionType = "nakit_borc"
	CashCollectedAlt       TransactionType = "nakit_tahsilat"
	PaidWithGoods          TransactionType = "urun_ile_odeme_yapildi"
	ReceivedGoodsAsPayment TransactionType = "urun_ile_odeme_alindi"
	LentViaGoods           TransactionType = "urun_ile_borc_verme"
	BorrowedViaGoods       TransactionType = "urun_ile_borc_alma"
)

var typeLabels = map[TransactionType]string{
	GoodsPurchased:         "Mal Alımı",
	GoodsSold:              "Mal Satışı",
	CashPaymentMade:        "Nakit Ödeme Yaptım",
	CashCollected:          "Nakit Tahsilat Yaptım (Borcum Arttı)",
	CashLoanGiven:          "Nakit Borç Verdim",
	CashCollectedAlt:       "Nakit Tahsilat Yaptım (Borcum Arttı)",
	PaidWithGoods:          "Ürün ile Ödeme Yaptım (Borcum Azaldı)",
	ReceivedGoodsAsPayment: "Ürün ile Ödeme Aldım (Alacağım Azaldı)",
	LentViaGoods:           "Ürün ile Borç Verdim (Alacak Oluştu)",
	BorrowedViaGoods:       "Ürün ile Borç Aldım (Borç Oluştu)",
}

// TransactionTypes lists every known kind in display order.
func TransactionTypes() []TransactionType {
	return []TransactionType{
		GoodsPurchased, GoodsSold, CashPaymentMade, CashCollected, CashLoanGiven,
		CashCollectedAlt, PaidWithGoods, ReceivedGoodsAsPayment, LentViaGoods, BorrowedViaGoods,
	}
}

func (t TransactionType) Known() bool {
	_, ok := typeLabels[t]
	return ok
}

// TypeLabel returns the human label of a kind, or the raw value when unknown.
func TypeLabel(t TransactionType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// IsTrade reports buy/sell kinds, whose amount derives from quantity and unit price.
func (t TransactionType) IsTrade() bool {
	return t == GoodsPurchased || t == GoodsSold
}

// IsGoodsSettlement reports the four barter kinds that move goods against debt.
func (t TransactionType) IsGoodsSettlement() bool {
	switch t {
	case PaidWithGoods, ReceivedGoodsAsPayment, LentViaGoods, BorrowedViaGoods:
		return true
	}
	return false
}

// RequiresProduct reports whether a kind must reference a commodity.
func (t TransactionType) RequiresProduct() bool {
	return t.IsTrade() || t.IsGoodsSettlement()
}

type Transaction struct {
	ID           string          `json:"id"`
	TraderID     string          `json:"traderId"`
	Date         time.Time       `json:"date"`
	Type         TransactionType `json:"type"`
	ProductType  string          `json:"productType,omitempty"`
	Quantity     *float64        `json:"quantity,omitempty"`
	UnitPrice    *float64        `json:"unitPrice,omitempty"`
	Amount       float64         `json:"amount"`
	Notes        string          `json:"notes,omitempty"`
	ConversionID string          `json:"conversionId,omitempty"`
}

// QuantityValue returns the quantity, zero when absent.
func (t Transaction) QuantityValue() float64 {
	if t.Quantity == nil {
		return 0
	}
	return *t.Quantity
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.TraderID) == "" {
		return fmt.Errorf("%w: trader id is required", ErrValidation)
	}
	if !t.Type.Known() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrValidation, t.Type)
	}
	if t.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if t.Quantity != nil && *t.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	if t.UnitPrice != nil && *t.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must not be negative", ErrValidation)
	}
	if t.Type.RequiresProduct() {
		if t.ProductType == "" {
			return fmt.Errorf("%w: %s requires a product type", ErrValidation, t.Type)
		}
		if t.Quantity == nil || *t.Quantity <= 0 {
			return fmt.Errorf("%w: %s requires a positive quantity", ErrValidation, t.Type)
		}
	}
	return nil
}

// TransactionDraft is an unsaved transaction without an id.
type TransactionDraft struct {
	TraderID     string
	Date         time.Time
	Type         TransactionType
	ProductType  string
	Quantity     float64
	Amount       float64
	Notes        string
	ConversionID string
}

func (d TransactionDraft) ToTransaction(id string) Transaction {
	q := d.Quantity
	return Transaction{
		ID:           id,
		TraderID:     d.TraderID,
		Date:         d.Date,
		Type:         d.Type,
		ProductType:  d.ProductType,
		Quantity:     &q,
		Amount:       d.Amount,
		Notes:        d.Notes,
		ConversionID: d.ConversionID,
	}
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	TraderID string
	From     *time.Time
	To       *time.Time
}
