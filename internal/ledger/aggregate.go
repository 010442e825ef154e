package ledger

import (
	"sort"
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
)

// Aggregate sums the balances of every trader into portfolio totals.
func Aggregate(traders []model.Trader, txs []model.Transaction) model.Portfolio {
	return aggregate(traders, txs, nil)
}

// AggregateAsOf is Aggregate restricted to transactions dated at or before asOf.
func AggregateAsOf(traders []model.Trader, txs []model.Transaction, asOf time.Time) model.Portfolio {
	return aggregate(traders, txs, &asOf)
}

func aggregate(traders []model.Trader, txs []model.Transaction, asOf *time.Time) model.Portfolio {
	byTrader := make(map[string][]model.Transaction, len(traders))
	for _, tx := range txs {
		byTrader[tx.TraderID] = append(byTrader[tx.TraderID], tx)
	}

	p := model.Portfolio{
		PerCommodityNet: make(map[string]float64),
		Traders:         make([]model.TraderPosition, 0, len(traders)),
	}
	for _, tr := range traders {
		b := accumulate(byTrader[tr.ID], tr.ID, asOf)
		switch {
		case b.Money > 0:
			p.TotalReceivable += b.Money
		case b.Money < 0:
			p.TotalDebt += -b.Money
		}
		for k, v := range b.Products {
			p.PerCommodityNet[k] += v
		}
		p.Traders = append(p.Traders, model.TraderPosition{
			TraderID: tr.ID,
			Name:     tr.Name,
			Balances: b,
			Active:   IsActive(b),
		})
	}

	p.TotalReceivable = RoundMoney(p.TotalReceivable)
	p.TotalDebt = RoundMoney(p.TotalDebt)
	p.NetBalance = RoundMoney(p.TotalReceivable - p.TotalDebt)
	for k, v := range p.PerCommodityNet {
		p.PerCommodityNet[k] = RoundQuantity(v)
	}
	return p
}

// IsActive reports whether a trader has any open money or commodity position.
func IsActive(b model.Balances) bool {
	if b.Money != 0 {
		return true
	}
	for _, v := range b.Products {
		if v != 0 {
			return true
		}
	}
	return false
}

// FindIncompleteConversions returns conversion groups that do not hold
// exactly two transactions, ordered by conversion id.
func FindIncompleteConversions(txs []model.Transaction) []model.IncompleteConversion {
	groups := make(map[string][]string)
	for _, tx := range txs {
		if tx.ConversionID == "" {
			continue
		}
		groups[tx.ConversionID] = append(groups[tx.ConversionID], tx.ID)
	}

	var out []model.IncompleteConversion
	for cid, ids := range groups {
		if len(ids) == 2 {
			continue
		}
		sort.Strings(ids)
		out = append(out, model.IncompleteConversion{ConversionID: cid, TransactionIDs: ids})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConversionID < out[j].ConversionID })
	return out
}
