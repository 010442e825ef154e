package ledger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// ComposeConversion builds the two transactions recording a commodity debt
// settled with another commodity. The multiplier is only written to notes.
func ComposeConversion(req model.ConversionRequest, at time.Time) [2]model.TransactionDraft {
	debt := num(req.DebtQuantity)
	receivable := num(req.ReceivableQuantity)
	multiplier := num(req.Multiplier)

	return [2]model.TransactionDraft{
		{
			TraderID:    req.TraderID,
			Date:        at,
			Type:        model.PaidWithGoods,
			ProductType: req.DebtProductType,
			Quantity:    req.DebtQuantity,
			Notes: fmt.Sprintf("Borç dönüştürme: %s %s borcu %s %s ile takas edildi (Çarpan: %s)",
				debt, req.DebtProductType, receivable, req.ReceivableProductType, multiplier),
			ConversionID: req.ConversionID,
		},
		{
			TraderID:    req.TraderID,
			Date:        at,
			Type:        model.ReceivedGoodsAsPayment,
			ProductType: req.ReceivableProductType,
			Quantity:    req.ReceivableQuantity,
			Notes: fmt.Sprintf("Borç dönüştürme: %s %s alacağı %s %s ile takas edildi (Çarpan: %s)",
				receivable, req.ReceivableProductType, debt, req.DebtProductType, multiplier),
			ConversionID: req.ConversionID,
		},
	}
}

// DeriveReceivable is the receivable quantity a caller would normally pass
// for a debt converted at multiplier, rounded to 2 decimals.
func DeriveReceivable(debtQty, multiplier float64) float64 {
	return decimal.NewFromFloat(debtQty).
		Mul(decimal.NewFromFloat(multiplier)).
		Round(2).
		InexactFloat64()
}

// TradeAmount is quantity times unit price rounded to cents.
func TradeAmount(quantity, unitPrice float64) float64 {
	return decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(unitPrice)).
		Round(MoneyDecimals).
		InexactFloat64()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
