package handlers

import (
	"github.com/nimasrn/trader-ledger/internal/model"
	xhttp "github.com/nimasrn/trader-ledger/pkg/http"
)

func transactionDocuments(txs []model.Transaction) []model.TransactionDocument {
	out := make([]model.TransactionDocument, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.Document())
	}
	return out
}

func (h *LedgerHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	var (
		f   model.TransactionFilter
		err error
	)
	f.TraderID = query(ctx, "trader_id")
	if f.From, err = queryTime(ctx, "from"); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	if f.To, err = queryTime(ctx, "to"); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	items, err := h.svc.ListTransactions(ctx, userID(ctx), f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, transactionDocuments(items))
}

func (h *LedgerHandler) GetTransaction(ctx *xhttp.RequestCtx) {
	tx, err := h.svc.GetTransaction(ctx, userID(ctx), pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, tx.Document())
}

func (h *LedgerHandler) CreateTransaction(ctx *xhttp.RequestCtx) {
	var req model.TransactionDocument
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	tx, err := h.svc.CreateTransaction(ctx, userID(ctx), req.Model())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, tx.Document())
}

func (h *LedgerHandler) UpdateTransaction(ctx *xhttp.RequestCtx) {
	var req model.TransactionDocument
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	tx, err := h.svc.UpdateTransaction(ctx, userID(ctx), pathParam(ctx, "id"), req.Model())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, tx.Document())
}

func (h *LedgerHandler) DeleteTransaction(ctx *xhttp.RequestCtx) {
	if err := h.svc.DeleteTransaction(ctx, userID(ctx), pathParam(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

// ConvertDebt settles the trader's commodity debt with another commodity.
// The Idempotency-Key header makes retries safe.
func (h *LedgerHandler) ConvertDebt(ctx *xhttp.RequestCtx) {
	var req model.ConversionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.TraderID = pathParam(ctx, "id")
	key := string(ctx.Request.Header.Peek(idempotencyHeader))

	txs, err := h.svc.ConvertDebt(ctx, userID(ctx), req, key)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, transactionDocuments(txs))
}
