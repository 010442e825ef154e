package model

// Snapshot is the full data set of one user.
type Snapshot struct {
	Traders      []Trader      `json:"traders"`
	Transactions []Transaction `json:"transactions"`
	ProductTypes []ProductType `json:"productTypes"`
}
