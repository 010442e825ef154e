package handlers

import (
	"github.com/nimasrn/trader-ledger/internal/model"
	xhttp "github.com/nimasrn/trader-ledger/pkg/http"
)

func (h *LedgerHandler) ListProductTypes(ctx *xhttp.RequestCtx) {
	items, err := h.svc.ListProductTypes(ctx, userID(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	out := make([]model.ProductTypeDocument, 0, len(items))
	for _, p := range items {
		out = append(out, p.Document())
	}
	writeJSON(ctx, xhttp.StatusOK, out)
}

func (h *LedgerHandler) CreateProductType(ctx *xhttp.RequestCtx) {
	var req model.ProductTypeDocument
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	p, err := h.svc.CreateProductType(ctx, userID(ctx), req.Model())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, p.Document())
}

func (h *LedgerHandler) UpdateProductType(ctx *xhttp.RequestCtx) {
	var req model.ProductTypeDocument
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	p, err := h.svc.UpdateProductType(ctx, userID(ctx), pathParam(ctx, "id"), req.Model())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, p.Document())
}

func (h *LedgerHandler) DeleteProductType(ctx *xhttp.RequestCtx) {
	if err := h.svc.DeleteProductType(ctx, userID(ctx), pathParam(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}
