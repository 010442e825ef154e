package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/internal/services"
	xhttp "github.com/nimasrn/trader-ledger/pkg/http"
)

const (
	userHeader        = "X-User-Id"
	idempotencyHeader = "Idempotency-Key"
	userIDKey         = "userID"
)

var errMissingUser = errors.New("missing " + userHeader + " header")

// RequireUser scopes a request to the caller in the X-User-Id header.
func RequireUser(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		uid := strings.TrimSpace(string(ctx.Request.Header.Peek(userHeader)))
		if uid == "" {
			writeError(ctx, xhttp.StatusUnauthorized, errMissingUser.Error())
			return
		}
		ctx.SetUserValue(userIDKey, uid)
		next(ctx)
	}
}

func userID(ctx *xhttp.RequestCtx) string {
	uid, _ := ctx.UserValue(userIDKey).(string)
	return uid
}

func pathParam(ctx *xhttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	writeError(ctx, statusOf(err), err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, services.ErrUnsupportedFormat):
		return xhttp.StatusBadRequest
	case errors.Is(err, model.ErrTraderNotFound),
		errors.Is(err, model.ErrTransactionNotFound),
		errors.Is(err, model.ErrProductTypeNotFound):
		return xhttp.StatusNotFound
	case errors.Is(err, services.ErrProductTypeInUse),
		errors.Is(err, services.ErrProductTypeExists),
		errors.Is(err, services.ErrConversionInProgress):
		return xhttp.StatusConflict
	default:
		return xhttp.StatusInternalServerError
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

// queryTime reads an optional date query argument. Absent means nil.
func queryTime(ctx *xhttp.RequestCtx, key string) (*time.Time, error) {
	v := strings.TrimSpace(query(ctx, key))
	if v == "" {
		return nil, nil
	}
	t, err := parseTime(v)
	if err != nil {
		return nil, errors.New("invalid " + key + ": " + v)
	}
	return &t, nil
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
