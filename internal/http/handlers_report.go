package http

import (
	"errors"
	"net/http"
	"strconv"

	applog "hisab/internal/log"
	"hisab/internal/report"
)

type reportRequest struct {
	Type      string          `json:"type"`
	Timeframe string          `json:"timeframe"`
	Data      report.Snapshot `json:"data"`
}

// handleGenerateReport renders the posted snapshot as a PDF attachment.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentReport)

	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.ErrorContext(ctx, "Failed to decode report request",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeValidation)
		InternalServerError(msgReportFailed).Write(w)
		return
	}

	typ, err := report.ParseType(req.Type)
	if err != nil {
		BadRequestError(msgInvalidReport).Write(w)
		return
	}

	now := s.now()
	layout, err := report.Build(typ, req.Timeframe, req.Data, report.Options{
		Brand:    s.reportBrand,
		Currency: s.reportCurrency,
		Now:      now,
	})
	if err != nil {
		s.reportFailed(w, r, typ, err)
		return
	}
	pdf, err := report.Render(layout)
	if err != nil {
		s.reportFailed(w, r, typ, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(typ, now)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
	logger.InfoContext(ctx, "Report generated",
		applog.FieldReportType, string(typ),
		"bytes", len(pdf))
}

func (s *Server) reportFailed(w http.ResponseWriter, r *http.Request, typ report.Type, err error) {
	errType := applog.ErrorTypeInternal
	if errors.Is(err, report.ErrInvalidType) {
		errType = applog.ErrorTypeValidation
	}
	applog.FromContext(r.Context()).WithComponent(applog.ComponentReport).ErrorContext(r.Context(), "Failed to generate report",
		applog.FieldReportType, string(typ),
		applog.FieldError, err.Error(),
		applog.FieldErrorType, errType)
	InternalServerError(msgReportFailed).Write(w)
}
