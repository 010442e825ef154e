package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/nimasrn/trader-ledger/internal/idempotency"
	"github.com/nimasrn/trader-ledger/internal/ledger"
	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/id"
	"github.com/nimasrn/trader-ledger/pkg/logger"
)

var (
	ErrProductTypeInUse     = errors.New("product type is referenced by transactions")
	ErrProductTypeExists    = errors.New("product type already exists")
	ErrConversionInProgress = errors.New("conversion with this idempotency key is in progress")
	ErrUnsupportedFormat    = errors.New("unsupported format")
)

type TraderRepository interface {
	ListTraders(ctx context.Context, userID string) ([]model.Trader, error)
	GetTrader(ctx context.Context, userID, id string) (*model.Trader, error)
	SaveTrader(ctx context.Context, userID string, t model.Trader) error
	TouchTrader(ctx context.Context, userID, id string, at time.Time) error
	DeleteTrader(ctx context.Context, userID, id string) error
}

type TransactionRepository interface {
	ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error)
	SaveTransaction(ctx context.Context, userID string, tx model.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
	CountByProductType(ctx context.Context, userID, productTypeID string) (int64, error)
}

type ProductTypeRepository interface {
	ListProductTypes(ctx context.Context, userID string) ([]model.ProductType, error)
	GetProductType(ctx context.Context, userID, id string) (*model.ProductType, error)
	SaveProductType(ctx context.Context, userID string, p model.ProductType) error
	DeleteProductType(ctx context.Context, userID, id string) error
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Snapshotter interface {
	Snapshot(ctx context.Context, userID string) (model.Snapshot, error)
	ListUsers(ctx context.Context) ([]string, error)
}

// Store is implemented by both the postgres repositories and the redis store.
type Store interface {
	TraderRepository
	TransactionRepository
	ProductTypeRepository
	Transactor
	Snapshotter
}

type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (*idempotency.Claim, error)
	MarkSuccess(ctx context.Context, c *idempotency.Claim, result []byte) error
	Release(ctx context.Context, c *idempotency.Claim) error
	Result(ctx context.Context, key string) ([]byte, error)
}

type LedgerService struct {
	store    Store
	idem     IdempotencyGuard
	currency string
	now      func() time.Time
	newID    func() string
}

// NewLedgerService builds the service. idem may be nil, in which case
// idempotency keys are ignored.
func NewLedgerService(store Store, idem IdempotencyGuard, currency string) *LedgerService {
	if money.GetCurrency(currency) == nil {
		logger.Warn("unknown currency, falling back to TRY", "currency", currency)
		currency = "TRY"
	}
	return &LedgerService{
		store:    store,
		idem:     idem,
		currency: currency,
		now:      time.Now,
		newID:    id.New,
	}
}

// Snapshot loads everything the user owns. An empty catalog is replaced with
// the default one.
func (s *LedgerService) Snapshot(ctx context.Context, userID string) (model.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx, userID)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: %w", err)
	}
	if len(snap.ProductTypes) == 0 {
		snap.ProductTypes = model.DefaultProductTypes()
	}
	for _, ic := range ledger.FindIncompleteConversions(snap.Transactions) {
		logger.Warn("incomplete debt conversion",
			"user_id", userID,
			"conversion_id", ic.ConversionID,
			"transaction_ids", ic.TransactionIDs)
	}
	return snap, nil
}

func (s *LedgerService) ListTraders(ctx context.Context, userID string) ([]model.Trader, error) {
	return s.store.ListTraders(ctx, userID)
}

func (s *LedgerService) GetTrader(ctx context.Context, userID, id string) (*model.Trader, error) {
	return s.store.GetTrader(ctx, userID, id)
}

func (s *LedgerService) CreateTrader(ctx context.Context, userID string, t model.Trader) (*model.Trader, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Phone = strings.TrimSpace(t.Phone)
	t.Notes = strings.TrimSpace(t.Notes)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = s.newID()
	}
	if err := s.store.SaveTrader(ctx, userID, t); err != nil {
		return nil, fmt.Errorf("save trader: %w", err)
	}
	return &t, nil
}

// UpdateTrader replaces the trader. The last transaction date is kept when
// the replacement does not carry one.
func (s *LedgerService) UpdateTrader(ctx context.Context, userID, id string, t model.Trader) (*model.Trader, error) {
	t.ID = id
	t.Name = strings.TrimSpace(t.Name)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.store.GetTrader(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t.LastTransactionDate == nil {
		t.LastTransactionDate = existing.LastTransactionDate
	}
	if err := s.store.SaveTrader(ctx, userID, t); err != nil {
		return nil, fmt.Errorf("save trader: %w", err)
	}
	return &t, nil
}

// DeleteTrader removes the trader and all of its transactions.
func (s *LedgerService) DeleteTrader(ctx context.Context, userID, id string) error {
	return s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.store.DeleteTrader(ctx, userID, id)
	})
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, filter)
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *LedgerService) CreateTransaction(ctx context.Context, userID string, tx model.Transaction) (*model.Transaction, error) {
	tx.ID = s.newID()
	if err := s.saveTransaction(ctx, userID, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateTransaction replaces the transaction with id. A replacement without a
// conversion id keeps the stored one so conversion pairs stay linked.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, id string, tx model.Transaction) (*model.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	tx.ID = id
	if tx.ConversionID == "" {
		tx.ConversionID = existing.ConversionID
	}
	if err := s.saveTransaction(ctx, userID, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id string) error {
	return s.store.DeleteTransaction(ctx, userID, id)
}

// saveTransaction fills entry defaults, validates and persists tx together
// with the trader's last transaction date.
func (s *LedgerService) saveTransaction(ctx context.Context, userID string, tx *model.Transaction) error {
	s.applyDefaults(ctx, userID, tx)
	if err := tx.Validate(); err != nil {
		return err
	}

	return s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.TouchTrader(ctx, userID, tx.TraderID, s.now()); err != nil {
			return fmt.Errorf("touch trader: %w", err)
		}
		if err := s.store.SaveTransaction(ctx, userID, *tx); err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		return nil
	})
}

func (s *LedgerService) applyDefaults(ctx context.Context, userID string, tx *model.Transaction) {
	tx.Notes = strings.TrimSpace(tx.Notes)
	if tx.Date.IsZero() {
		tx.Date = s.now()
	}
	if !tx.Type.IsTrade() {
		return
	}
	if tx.UnitPrice == nil && tx.ProductType != "" {
		if p := s.lookupProductType(ctx, userID, tx.ProductType); p != nil {
			price := p.CurrentPrice
			tx.UnitPrice = &price
		}
	}
	if tx.Amount == 0 && tx.Quantity != nil && tx.UnitPrice != nil {
		tx.Amount = ledger.TradeAmount(*tx.Quantity, *tx.UnitPrice)
	}
}

// lookupProductType finds a commodity in the user's catalog, or in the
// default one while the user has none.
func (s *LedgerService) lookupProductType(ctx context.Context, userID, id string) *model.ProductType {
	pts, err := s.ListProductTypes(ctx, userID)
	if err != nil {
		logger.Warn("failed to load product types", "user_id", userID, "error", err)
		return nil
	}
	for i := range pts {
		if pts[i].ID == id {
			return &pts[i]
		}
	}
	return nil
}

// ListProductTypes returns the user's catalog, or the default one when empty.
func (s *LedgerService) ListProductTypes(ctx context.Context, userID string) ([]model.ProductType, error) {
	pts, err := s.store.ListProductTypes(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return model.DefaultProductTypes(), nil
	}
	return pts, nil
}

// SeedDefaults persists the default catalog for a user that has none yet.
func (s *LedgerService) SeedDefaults(ctx context.Context, userID string) error {
	pts, err := s.store.ListProductTypes(ctx, userID)
	if err != nil {
		return err
	}
	if len(pts) > 0 {
		return nil
	}
	return s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, p := range model.DefaultProductTypes() {
			if err := s.store.SaveProductType(ctx, userID, p); err != nil {
				return fmt.Errorf("seed product type %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (s *LedgerService) CreateProductType(ctx context.Context, userID string, p model.ProductType) (*model.ProductType, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.SeedDefaults(ctx, userID); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = s.newID()
	} else if _, err := s.store.GetProductType(ctx, userID, p.ID); err == nil {
		return nil, ErrProductTypeExists
	} else if !errors.Is(err, model.ErrProductTypeNotFound) {
		return nil, err
	}
	if err := s.store.SaveProductType(ctx, userID, p); err != nil {
		return nil, fmt.Errorf("save product type: %w", err)
	}
	return &p, nil
}

func (s *LedgerService) UpdateProductType(ctx context.Context, userID, id string, p model.ProductType) (*model.ProductType, error) {
	p.ID = id
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.SeedDefaults(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProductType(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.store.SaveProductType(ctx, userID, p); err != nil {
		return nil, fmt.Errorf("save product type: %w", err)
	}
	return &p, nil
}

// DeleteProductType refuses to remove a commodity that any transaction uses.
func (s *LedgerService) DeleteProductType(ctx context.Context, userID, id string) error {
	if err := s.SeedDefaults(ctx, userID); err != nil {
		return err
	}
	n, err := s.store.CountByProductType(ctx, userID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d transactions", ErrProductTypeInUse, n)
	}
	return s.store.DeleteProductType(ctx, userID, id)
}

// Users lists every user id known to the store.
func (s *LedgerService) Users(ctx context.Context) ([]string, error) {
	return s.store.ListUsers(ctx)
}
