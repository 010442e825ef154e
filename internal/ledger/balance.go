package ledger

import (
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
)

// effect holds the sign each kind applies to the money and commodity balances.
type effect struct {
	money     float64
	commodity float64
}

var effects = map[model.TransactionType]effect{
	model.GoodsPurchased:         {money: -1, commodity: +1},
	model.GoodsSold:              {money: +1, commodity: -1},
	model.CashPaymentMade:        {money: +1},
	model.CashCollected:          {money: -1},
	model.CashLoanGiven:          {money: +1},
	model.CashCollectedAlt:       {money: -1},
	model.PaidWithGoods:          {money: +1, commodity: +1},
	model.ReceivedGoodsAsPayment: {money: -1, commodity: -1},
	model.LentViaGoods:           {money: +1, commodity: +1},
	model.BorrowedViaGoods:       {money: -1, commodity: -1},
}

// ComputeBalances folds every transaction of traderID into its money and
// commodity balances.
func ComputeBalances(txs []model.Transaction, traderID string) model.Balances {
	return accumulate(txs, traderID, nil)
}

// ComputeBalancesAsOf only counts transactions dated at or before asOf.
func ComputeBalancesAsOf(txs []model.Transaction, traderID string, asOf time.Time) model.Balances {
	return accumulate(txs, traderID, &asOf)
}

func accumulate(txs []model.Transaction, traderID string, asOf *time.Time) model.Balances {
	var money float64
	products := make(map[string]float64)

	for _, tx := range txs {
		if tx.TraderID != traderID {
			continue
		}
		if asOf != nil && tx.Date.After(*asOf) {
			continue
		}
		e, ok := effects[tx.Type]
		if !ok {
			continue
		}
		money += e.money * tx.Amount
		if q := tx.QuantityValue(); tx.ProductType != "" && q != 0 && e.commodity != 0 {
			products[tx.ProductType] += e.commodity * q
		}
	}

	for k, v := range products {
		products[k] = RoundQuantity(v)
	}
	return model.Balances{Money: RoundMoney(money), Products: products}
}
