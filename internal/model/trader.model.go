package model

import (
	"fmt"
	"strings"
	"time"
)

// Trader is a counterparty. Balances are never stored on it; they are derived
// from the transaction log on read.
type Trader struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Phone               string     `json:"phone,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	LastTransactionDate *time.Time `json:"lastTransactionDate,omitempty"`
}

func (t Trader) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: trader name is required", ErrValidation)
	}
	return nil
}
