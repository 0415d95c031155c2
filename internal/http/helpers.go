package http

import (
	"errors"
	"net/http"

	"hisab/internal/core"
	applog "hisab/internal/log"
)

// writeServiceError maps ledger errors to responses. Anything that is not a
// missing identity or a missing record is logged and reported as a 500 with
// a generic message, malformed input included.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op, entity string, err error, notFound string) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		UnauthorizedError().Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(notFound).Write(w)
	default:
		fields := applog.NewFields().
			WithUserID(UserID(r.Context())).
			WithErrorType(errorType(err))
		fields[applog.FieldEntity] = entity
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Failed to "+describe(op, entity), err, applog.ComponentHTTP, op, fields)
		InternalServerError(msgInternal).Write(w)
	}
}
