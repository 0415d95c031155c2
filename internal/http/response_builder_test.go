package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusAccepted).
		Header("X-Custom", "1").
		Body(map[string]int{"n": 3}).
		Write(w)

	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
	if w.Header().Get("X-Custom") != "1" {
		t.Errorf("custom header missing")
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"n":3}` {
		t.Errorf("body = %q", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		builder  *JSONResponseBuilder
		wantCode int
		wantBody string
	}{
		{"unauthorized", UnauthorizedError(), http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"not found", NotFoundError(msgUserNotFound), http.StatusNotFound, `{"error":"User not found"}`},
		{"bad request", BadRequestError(msgInvalidReport), http.StatusBadRequest, `{"error":"Invalid report type"}`},
		{"internal", InternalServerError(msgInternal), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}

func TestCreatedAndNull(t *testing.T) {
	w := httptest.NewRecorder()
	Created(map[string]string{"id": "x"}).Write(w)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	OK(nullBody{}).Write(w)
	if got := strings.TrimSpace(w.Body.String()); got != "null" {
		t.Errorf("body = %q", got)
	}
}
