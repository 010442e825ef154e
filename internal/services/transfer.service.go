package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/logger"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type ImportResult struct {
	Traders      int `json:"traders"`
	Transactions int `json:"transactions"`
	ProductTypes int `json:"productTypes"`
}

func normalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Export serializes the user's whole data set.
func (s *LedgerService) Export(ctx context.Context, userID, format string) ([]byte, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	doc := snap.Document()
	if format == FormatYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import merges an exported data set into the user's records, replacing
// records with the same id. Malformed dates become the import time.
func (s *LedgerService) Import(ctx context.Context, userID string, data []byte, format string) (*ImportResult, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}

	var doc model.SnapshotDocument
	if format == FormatYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	snap := doc.Model()

	res := &ImportResult{}
	err = s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, p := range snap.ProductTypes {
			if p.ID == "" {
				p.ID = s.newID()
			}
			if err := s.store.SaveProductType(ctx, userID, p); err != nil {
				return fmt.Errorf("import product type %s: %w", p.ID, err)
			}
			res.ProductTypes++
		}
		for _, t := range snap.Traders {
			if t.ID == "" {
				t.ID = s.newID()
			}
			if err := s.store.SaveTrader(ctx, userID, t); err != nil {
				return fmt.Errorf("import trader %s: %w", t.ID, err)
			}
			res.Traders++
		}
		for _, tx := range snap.Transactions {
			if tx.ID == "" {
				tx.ID = s.newID()
			}
			if err := s.store.SaveTransaction(ctx, userID, tx); err != nil {
				return fmt.Errorf("import transaction %s: %w", tx.ID, err)
			}
			res.Transactions++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("import finished",
		"user_id", userID,
		"traders", res.Traders,
		"transactions", res.Transactions,
		"product_types", res.ProductTypes)
	return res, nil
}
