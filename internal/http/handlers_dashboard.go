package http

import (
	"net/http"

	"hisab/internal/core"
	applog "hisab/internal/log"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.Stats(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, applog.OpRead, "dashboard stats", err, msgNotFound)
		return
	}
	OK(stats).Write(w)
}

// handleChartData serves ?period=month|quarter|year; anything else means month.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	period := core.ParseChartPeriod(r.URL.Query().Get("period"))
	data, err := s.ledger.ChartData(r.Context(), UserID(r.Context()), period)
	if err != nil {
		s.writeServiceError(w, r, applog.OpRead, "chart data", err, msgNotFound)
		return
	}
	OK(data).Write(w)
}
