package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/nimasrn/trader-ledger/internal/ledger"
	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/prom"
	"github.com/shopspring/decimal"
)

// TraderBalance derives one trader's balances, as of a date when given.
// A date without a clock part covers the whole day. Lines only cover
// commodities present in the catalog; the raw map keeps every id.
func (s *LedgerService) TraderBalance(ctx context.Context, userID, traderID string, asOf *time.Time) (*model.TraderBalance, error) {
	asOf = cutoff(asOf)
	trader, err := s.store.GetTrader(ctx, userID, traderID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, userID, model.TransactionFilter{TraderID: traderID})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	catalog, err := s.ListProductTypes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list product types: %w", err)
	}

	var b model.Balances
	if asOf != nil {
		b = ledger.ComputeBalancesAsOf(txs, traderID, *asOf)
	} else {
		b = ledger.ComputeBalances(txs, traderID)
	}
	prom.IncBalanceComputation("trader")

	lines := make([]model.ProductLine, 0, len(b.Products))
	for _, p := range catalog {
		if q, ok := b.Products[p.ID]; ok && q != 0 {
			lines = append(lines, model.ProductLine{ProductType: p.ID, Name: p.Name, Unit: p.Unit, Quantity: q})
		}
	}

	return &model.TraderBalance{
		Trader:   *trader,
		AsOf:     asOf,
		Balances: b,
		Lines:    lines,
	}, nil
}

// Report aggregates every trader of the user, as of a date when given.
func (s *LedgerService) Report(ctx context.Context, userID string, asOf *time.Time) (*model.Report, error) {
	asOf = cutoff(asOf)
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	var p model.Portfolio
	counted := snap.Transactions
	if asOf != nil {
		p = ledger.AggregateAsOf(snap.Traders, snap.Transactions, *asOf)
		counted = counted[:0:0]
		for _, tx := range snap.Transactions {
			if !tx.Date.After(*asOf) {
				counted = append(counted, tx)
			}
		}
	} else {
		p = ledger.Aggregate(snap.Traders, snap.Transactions)
	}
	prom.IncBalanceComputation("portfolio")

	r := &model.Report{
		AsOf:              asOf,
		Portfolio:         p,
		TotalTraders:      len(snap.Traders),
		TotalTransactions: len(counted),
	}
	for _, pos := range p.Traders {
		if pos.Active {
			r.ActiveTraders++
		}
		switch {
		case pos.Balances.Money > 0:
			r.ReceivableTraders++
		case pos.Balances.Money < 0:
			r.DebtorTraders++
		}
	}
	return r, nil
}

// Statement lists a trader's transactions between from and to, newest first,
// together with current balances. A to value without a clock part covers
// the whole day.
func (s *LedgerService) Statement(ctx context.Context, userID, traderID string, from, to *time.Time) (*model.Statement, error) {
	trader, err := s.store.GetTrader(ctx, userID, traderID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListTransactions(ctx, userID, model.TransactionFilter{TraderID: traderID})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	catalog, err := s.ListProductTypes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list product types: %w", err)
	}
	names := make(map[string]string, len(catalog))
	for _, p := range catalog {
		names[p.ID] = p.Name
	}

	to = cutoff(to)

	entries := make([]model.StatementEntry, 0, len(all))
	for _, tx := range all {
		if from != nil && tx.Date.Before(*from) {
			continue
		}
		if to != nil && tx.Date.After(*to) {
			continue
		}
		e := model.StatementEntry{
			Transaction: tx,
			Label:       model.TypeLabel(tx.Type),
			Amount:      s.formatMoney(tx.Amount),
		}
		if tx.ProductType != "" {
			e.Product = tx.ProductType
			if n, ok := names[tx.ProductType]; ok {
				e.Product = n
			}
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Transaction, entries[j].Transaction
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.ID > b.ID
	})

	b := ledger.ComputeBalances(all, traderID)
	prom.IncBalanceComputation("statement")

	st := &model.Statement{
		Trader:       *trader,
		From:         from,
		To:           to,
		Entries:      entries,
		Money:        b.Money,
		MoneyDisplay: s.formatMoney(b.Money),
		Receivables:  []model.ProductLine{},
		Debts:        []model.ProductLine{},
	}
	for _, p := range catalog {
		q := b.Products[p.ID]
		switch {
		case q > 0:
			st.Receivables = append(st.Receivables, model.ProductLine{ProductType: p.ID, Name: p.Name, Unit: p.Unit, Quantity: q})
		case q < 0:
			st.Debts = append(st.Debts, model.ProductLine{ProductType: p.ID, Name: p.Name, Unit: p.Unit, Quantity: math.Abs(q)})
		}
	}
	return st, nil
}

func cutoff(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := endOfDay(*t)
	return &end
}

func endOfDay(t time.Time) time.Time {
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return t
	}
	return t.Add(24*time.Hour - time.Millisecond)
}

// formatMoney renders amount in the configured currency.
func (s *LedgerService) formatMoney(amount float64) string {
	c := money.GetCurrency(s.currency)
	fraction := 2
	if c != nil {
		fraction = c.Fraction
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(fraction)).Round(0).IntPart()
	return money.New(minor, s.currency).Display()
}
