package handlers

import (
	"strconv"
	"strings"

	"github.com/nimasrn/trader-ledger/internal/services"
	xhttp "github.com/nimasrn/trader-ledger/pkg/http"
)

func (h *LedgerHandler) GetBalance(ctx *xhttp.RequestCtx) {
	asOf, err := queryTime(ctx, "as_of")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	b, err := h.svc.TraderBalance(ctx, userID(ctx), pathParam(ctx, "id"), asOf)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, b)
}

func (h *LedgerHandler) GetStatement(ctx *xhttp.RequestCtx) {
	from, err := queryTime(ctx, "from")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	to, err := queryTime(ctx, "to")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	st, err := h.svc.Statement(ctx, userID(ctx), pathParam(ctx, "id"), from, to)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, st)
}

func (h *LedgerHandler) GetReport(ctx *xhttp.RequestCtx) {
	asOf, err := queryTime(ctx, "as_of")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	r, err := h.svc.Report(ctx, userID(ctx), asOf)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, r)
}

func (h *LedgerHandler) Export(ctx *xhttp.RequestCtx) {
	format := strings.ToLower(query(ctx, "format"))
	data, err := h.svc.Export(ctx, userID(ctx), format)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ext := extension(format)
	ctx.Response.Header.Set("Content-Type", "application/"+ext+"; charset=utf-8")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="ledger.`+ext+`"`)
	ctx.Response.SetStatusCode(xhttp.StatusOK)
	ctx.Response.SetBodyRaw(data)
}

func extension(format string) string {
	if format == services.FormatYAML || format == "yml" {
		return "yaml"
	}
	return "json"
}

func (h *LedgerHandler) Import(ctx *xhttp.RequestCtx) {
	format := strings.ToLower(query(ctx, "format"))
	res, err := h.svc.Import(ctx, userID(ctx), ctx.PostBody(), format)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}

func (h *LedgerHandler) Reconcile(ctx *xhttp.RequestCtx) {
	repair := false
	if v := query(ctx, "repair"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "invalid repair: "+v)
			return
		}
		repair = b
	}
	res, err := h.svc.Reconcile(ctx, userID(ctx), repair)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}
