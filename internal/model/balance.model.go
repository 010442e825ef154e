package model

import "time"

// Balances is the derived position with one trader. Positive values mean the
// trader owes the business.
type Balances struct {
	Money    float64            `json:"moneyBalance"`
	Products map[string]float64 `json:"productBalances"`
}

// ConversionRequest asks to settle a commodity debt with another commodity.
// ReceivableQuantity is taken as given; Multiplier is only recorded.
type ConversionRequest struct {
	TraderID              string  `json:"traderId"`
	DebtProductType       string  `json:"debtProductType"`
	DebtQuantity          float64 `json:"debtQuantity"`
	ReceivableProductType string  `json:"receivableProductType"`
	ReceivableQuantity    float64 `json:"receivableQuantity"`
	Multiplier            float64 `json:"multiplier"`
	ConversionID          string  `json:"-"`
}

type TraderPosition struct {
	TraderID string   `json:"traderId"`
	Name     string   `json:"name"`
	Balances Balances `json:"balances"`
	Active   bool     `json:"active"`
}

// Portfolio sums trader balances across the book.
type Portfolio struct {
	TotalReceivable float64            `json:"totalReceivable"`
	TotalDebt       float64            `json:"totalDebt"`
	NetBalance      float64            `json:"netBalance"`
	PerCommodityNet map[string]float64 `json:"perCommodityNet"`
	Traders         []TraderPosition   `json:"traders"`
}

// ProductLine is one commodity balance joined with its catalog entry.
type ProductLine struct {
	ProductType string  `json:"productType"`
	Name        string  `json:"name"`
	Unit        Unit    `json:"unit"`
	Quantity    float64 `json:"quantity"`
}

type TraderBalance struct {
	Trader   Trader        `json:"trader"`
	AsOf     *time.Time    `json:"asOf,omitempty"`
	Balances Balances      `json:"balances"`
	Lines    []ProductLine `json:"lines"`
}

type Report struct {
	AsOf              *time.Time `json:"asOf,omitempty"`
	Portfolio         Portfolio  `json:"portfolio"`
	ActiveTraders     int        `json:"activeTraders"`
	ReceivableTraders int        `json:"receivableTraders"`
	DebtorTraders     int        `json:"debtorTraders"`
	TotalTraders      int        `json:"totalTraders"`
	TotalTransactions int        `json:"totalTransactions"`
}

type StatementEntry struct {
	Transaction Transaction `json:"transaction"`
	Label       string      `json:"label"`
	Product     string      `json:"product,omitempty"`
	Amount      string      `json:"amount"`
}

// Statement is a trader's account extract for a date range.
type Statement struct {
	Trader       Trader           `json:"trader"`
	From         *time.Time       `json:"from,omitempty"`
	To           *time.Time       `json:"to,omitempty"`
	Entries      []StatementEntry `json:"entries"`
	Money        float64          `json:"moneyBalance"`
	MoneyDisplay string           `json:"moneyDisplay"`
	Receivables  []ProductLine    `json:"receivables"`
	Debts        []ProductLine    `json:"debts"`
}

// IncompleteConversion is a conversion group that does not hold exactly two halves.
type IncompleteConversion struct {
	ConversionID   string   `json:"conversionId"`
	TransactionIDs []string `json:"transactionIds"`
}

type ReconcileResult struct {
	Incomplete []IncompleteConversion `json:"incomplete"`
	Repaired   int                    `json:"repaired"`
}
