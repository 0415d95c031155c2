// Package http provides the JSON API server and its handlers.
//
// This file implements helpers for reading identity, query parameters and
// JSON bodies from requests.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"hisab/internal/core"
	applog "hisab/internal/log"
)

// HeaderUserID carries the caller identity. It is trusted as-is.
const HeaderUserID = "x-user-id"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type contextKey string

const userIDKey contextKey = "user_id"

// RequireUser rejects requests without an identity header and stores the
// identity, and a logger carrying it, in the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			UnauthorizedError().Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = applog.NewContext(ctx, applog.FromContext(ctx).With(applog.FieldUserID, userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the caller identity stored by RequireUser.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// ParseListQuery reads page, limit and the optional filters. Unparseable
// numbers fall back to the defaults; out-of-range values are clamped later.
func ParseListQuery(query url.Values, userID string) core.ListQuery {
	q := core.ListQuery{
		UserID:   userID,
		Page:     intParam(query, "page", core.DefaultPage),
		Limit:    intParam(query, "limit", core.DefaultLimit),
		Category: strings.TrimSpace(query.Get("category")),
		TenantID: strings.TrimSpace(query.Get("tenantId")),
	}
	q.Normalize()
	return q
}

// ParseOptionalListQuery is ParseListQuery for collections that are only
// paginated on request: without page or limit every row is listed.
func ParseOptionalListQuery(query url.Values, userID string) core.ListQuery {
	q := ParseListQuery(query, userID)
	q.All = strings.TrimSpace(query.Get("page")) == "" && strings.TrimSpace(query.Get("limit")) == ""
	return q
}

func intParam(query url.Values, key string, def int) int {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// decodeJSON reads a single JSON value from the body into dst. Malformed
// bodies are reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if core.IsValidation(err) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &core.ValidationError{Field: "body", Reason: "empty"}
		}
		return &core.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

// errorType classifies err for logging.
func errorType(err error) string {
	switch {
	case core.IsValidation(err):
		return applog.ErrorTypeValidation
	case errors.Is(err, context.DeadlineExceeded):
		return applog.ErrorTypeTimeout
	default:
		return applog.ErrorTypeInternal
	}
}

// describe renders an operation for log messages.
func describe(op, entity string) string {
	return fmt.Sprintf("%s %s", op, entity)
}
