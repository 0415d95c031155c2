package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"hisab/internal/core"
	applog "hisab/internal/log"
)

// The record handlers below share one shape per operation. Each takes the
// ledger method for its entity; ownership is enforced by the ledger.

func listHandler[T any](s *Server, entity, key string, parse queryParser, list func(context.Context, core.ListQuery) (core.Page[T], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := parse(r.URL.Query(), UserID(r.Context()))
		page, err := list(r.Context(), q)
		if err != nil {
			s.writeServiceError(w, r, applog.OpList, entity, err, msgNotFound)
			return
		}
		OK(pageBody(key, page)).Write(w)
	}
}

type queryParser func(url.Values, string) core.ListQuery

func pageBody[T any](key string, p core.Page[T]) map[string]any {
	return map[string]any{
		key:     p.Items,
		"total": p.Total,
		"page":  p.Page,
		"limit": p.Limit,
		"pages": p.Pages,
	}
}

func getHandler[T any](s *Server, entity string, get func(ctx context.Context, caller, id string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := get(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			s.writeServiceError(w, r, applog.OpRead, entity, err, msgNotFound)
			return
		}
		OK(rec).Write(w)
	}
}

func createHandler[T any](s *Server, entity string, create func(ctx context.Context, caller string, rec T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := decodeJSON(w, r, &in); err != nil {
			s.writeServiceError(w, r, applog.OpCreate, entity, err, msgNotFound)
			return
		}
		rec, err := create(r.Context(), UserID(r.Context()), in)
		if err != nil {
			s.writeServiceError(w, r, applog.OpCreate, entity, err, msgNotFound)
			return
		}
		Created(rec).Write(w)
	}
}

func updateHandler[T any](s *Server, entity string, update func(ctx context.Context, caller, id string, rec T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := decodeJSON(w, r, &in); err != nil {
			s.writeServiceError(w, r, applog.OpUpdate, entity, err, msgNotFound)
			return
		}
		rec, err := update(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), in)
		if err != nil {
			s.writeServiceError(w, r, applog.OpUpdate, entity, err, msgNotFound)
			return
		}
		OK(rec).Write(w)
	}
}

func deleteHandler(s *Server, entity string, del func(ctx context.Context, caller, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := del(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
			s.writeServiceError(w, r, applog.OpDelete, entity, err, msgNotFound)
			return
		}
		OK(map[string]bool{"success": true}).Write(w)
	}
}

// handleListAccounts adds the balance across all of the caller's accounts.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	q := ParseOptionalListQuery(r.URL.Query(), UserID(r.Context()))
	page, err := s.ledger.ListAccounts(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, applog.OpList, "account", err, msgNotFound)
		return
	}
	body := pageBody("accounts", page.Page)
	body["totalBalance"] = page.TotalBalance
	OK(body).Write(w)
}
