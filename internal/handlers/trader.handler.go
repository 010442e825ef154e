package handlers

import (
	"github.com/nimasrn/trader-ledger/internal/model"
	xhttp "github.com/nimasrn/trader-ledger/pkg/http"
)

func traderDocuments(ts []model.Trader) []model.TraderDocument {
	out := make([]model.TraderDocument, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Document())
	}
	return out
}

func (h *LedgerHandler) ListTraders(ctx *xhttp.RequestCtx) {
	items, err := h.svc.ListTraders(ctx, userID(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, traderDocuments(items))
}

func (h *LedgerHandler) GetTrader(ctx *xhttp.RequestCtx) {
	t, err := h.svc.GetTrader(ctx, userID(ctx), pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, t.Document())
}

func (h *LedgerHandler) CreateTrader(ctx *xhttp.RequestCtx) {
	var req model.TraderDocument
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	t, err := h.svc.CreateTrader(ctx, userID(ctx), req.Model())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, t.Document())
}

func (h *LedgerHandler) UpdateTrader(ctx *xhttp.RequestCtx) {
	var req model.TraderDocument
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	t, err := h.svc.UpdateTrader(ctx, userID(ctx), pathParam(ctx, "id"), req.Model())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, t.Document())
}

func (h *LedgerHandler) DeleteTrader(ctx *xhttp.RequestCtx) {
	if err := h.svc.DeleteTrader(ctx, userID(ctx), pathParam(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}
