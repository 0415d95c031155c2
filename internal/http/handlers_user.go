package http

import (
	"net/http"

	"hisab/internal/core"
	applog "hisab/internal/log"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.ledger.Profile(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, applog.OpRead, "profile", err, msgUserNotFound)
		return
	}
	OK(u).Write(w)
}

// handleUpdateProfile applies only the non-empty fields of the body.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd core.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		s.writeServiceError(w, r, applog.OpUpdate, "profile", err, msgUserNotFound)
		return
	}
	u, err := s.ledger.UpdateProfile(r.Context(), UserID(r.Context()), upd)
	if err != nil {
		s.writeServiceError(w, r, applog.OpUpdate, "profile", err, msgUserNotFound)
		return
	}
	OK(u).Write(w)
}

// handleGetSettings answers null when the user has no settings yet.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.ledger.Settings(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, applog.OpRead, "settings", err, msgNotFound)
		return
	}
	if settings == nil {
		NewJSONResponse().Body(nullBody{}).Write(w)
		return
	}
	OK(settings).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var upd core.SettingsUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		s.writeServiceError(w, r, applog.OpUpdate, "settings", err, msgNotFound)
		return
	}
	settings, err := s.ledger.UpdateSettings(r.Context(), UserID(r.Context()), upd)
	if err != nil {
		s.writeServiceError(w, r, applog.OpUpdate, "settings", err, msgNotFound)
		return
	}
	OK(settings).Write(w)
}

// nullBody encodes as JSON null.
type nullBody struct{}

func (nullBody) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
