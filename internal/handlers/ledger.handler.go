package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/internal/services"
)

type LedgerService interface {
	ListTraders(ctx context.Context, userID string) ([]model.Trader, error)
	GetTrader(ctx context.Context, userID, id string) (*model.Trader, error)
	CreateTrader(ctx context.Context, userID string, t model.Trader) (*model.Trader, error)
	UpdateTrader(ctx context.Context, userID, id string, t model.Trader) (*model.Trader, error)
	DeleteTrader(ctx context.Context, userID, id string) error

	ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error)
	CreateTransaction(ctx context.Context, userID string, tx model.Transaction) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, tx model.Transaction) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error

	ListProductTypes(ctx context.Context, userID string) ([]model.ProductType, error)
	CreateProductType(ctx context.Context, userID string, p model.ProductType) (*model.ProductType, error)
	UpdateProductType(ctx context.Context, userID, id string, p model.ProductType) (*model.ProductType, error)
	DeleteProductType(ctx context.Context, userID, id string) error

	ConvertDebt(ctx context.Context, userID string, req model.ConversionRequest, idempotencyKey string) ([]model.Transaction, error)
	TraderBalance(ctx context.Context, userID, traderID string, asOf *time.Time) (*model.TraderBalance, error)
	Statement(ctx context.Context, userID, traderID string, from, to *time.Time) (*model.Statement, error)
	Report(ctx context.Context, userID string, asOf *time.Time) (*model.Report, error)

	Export(ctx context.Context, userID, format string) ([]byte, error)
	Import(ctx context.Context, userID string, data []byte, format string) (*services.ImportResult, error)
	Reconcile(ctx context.Context, userID string, repair bool) (*model.ReconcileResult, error)
}

type LedgerHandler struct {
	svc LedgerService
}

func NewLedgerHandler(svc LedgerService) *LedgerHandler {
	return &LedgerHandler{
		svc: svc,
	}
}

func RegisterLedgerRoutes(e *router.Group, h *LedgerHandler) {
	u := RequireUser

	e.GET("/traders", u(h.ListTraders))
	e.POST("/traders", u(h.CreateTrader))
	e.GET("/traders/{id}", u(h.GetTrader))
	e.PUT("/traders/{id}", u(h.UpdateTrader))
	e.DELETE("/traders/{id}", u(h.DeleteTrader))
	e.GET("/traders/{id}/balance", u(h.GetBalance))
	e.GET("/traders/{id}/statement", u(h.GetStatement))
	e.POST("/traders/{id}/conversions", u(h.ConvertDebt))

	e.GET("/transactions", u(h.ListTransactions))
	e.POST("/transactions", u(h.CreateTransaction))
	e.GET("/transactions/{id}", u(h.GetTransaction))
	e.PUT("/transactions/{id}", u(h.UpdateTransaction))
	e.DELETE("/transactions/{id}", u(h.DeleteTransaction))

	e.GET("/product-types", u(h.ListProductTypes))
	e.POST("/product-types", u(h.CreateProductType))
	e.PUT("/product-types/{id}", u(h.UpdateProductType))
	e.DELETE("/product-types/{id}", u(h.DeleteProductType))

	e.GET("/reports/summary", u(h.GetReport))
	e.GET("/export", u(h.Export))
	e.POST("/import", u(h.Import))
	e.POST("/reconcile", u(h.Reconcile))
}
