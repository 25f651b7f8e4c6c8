package http

import (
	"errors"
	"net/http"

	"timetrack/internal/bot"
	"timetrack/internal/chart"
	"timetrack/internal/core"
	applog "timetrack/internal/log"
	"timetrack/internal/services"
)

type dailyResponse struct {
	core.DailyReport
	Breakdown []core.CategoryShare `json:"breakdown"`
}

type rangeResponse struct {
	Period string `json:"period"`
	core.RangeReport
	Breakdown []core.CategoryShare `json:"breakdown"`
}

// handleMessage feeds one chat message to the bot. A store failure still carries
// the user-facing reply, served with 503.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg bot.Message
	if err := decodeJSON(w, r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg.DisplayName = sanitizeInput(msg.DisplayName)
	msg.Text = sanitizeInput(msg.Text)

	reply, err := s.bot.HandleMessage(r.Context(), msg)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, core.ErrMissingUser):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrStoreFailure):
		writeJSON(w, http.StatusServiceUnavailable, reply)
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Message handling failed",
			applog.FieldError, err, applog.FieldUserID, msg.UserID)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleDailyReport serves GET /v1/users/{id}/reports/daily?date=...; date accepts
// the same keywords and day-first formats as the chat flow and defaults to today.
func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	user, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	date := s.today()
	if v := sanitizeInput(r.URL.Query().Get("date")); v != "" {
		date, err = core.ParseReportDate(v, date)
		if err != nil {
			writeParseError(w, err)
			return
		}
	}

	report, err := s.reports.Daily(r.Context(), user, date)
	if err != nil {
		s.writeReportError(w, r, err)
		return
	}
	if wantsSVG(r) {
		s.writeChart(w, r, func() (chart.Artifact, error) { return s.charts.RenderDaily(r.Context(), report) })
		return
	}
	writeJSON(w, http.StatusOK, dailyResponse{DailyReport: report, Breakdown: report.Breakdown()})
}

// handlePeriodReport serves the named trailing periods ending today.
func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	user, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	period := r.PathValue("period")
	if _, err := services.GetPeriodResolver(period); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	report, err := s.reports.Period(r.Context(), user, period, s.today())
	if err != nil {
		s.writeReportError(w, r, err)
		return
	}
	if wantsSVG(r) {
		s.writeChart(w, r, func() (chart.Artifact, error) { return s.charts.RenderRange(r.Context(), report) })
		return
	}
	writeJSON(w, http.StatusOK, rangeResponse{Period: period, RangeReport: report, Breakdown: report.Breakdown()})
}

func wantsSVG(r *http.Request) bool {
	return r.URL.Query().Get("format") == "svg"
}

func (s *Server) writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrStoreFailure) {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report failed", applog.FieldError, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, render func() (chart.Artifact, error)) {
	if s.charts == nil {
		writeError(w, http.StatusNotImplemented, "charts are disabled")
		return
	}
	art, err := render()
	switch {
	case errors.Is(err, chart.ErrEmptyReport):
		writeError(w, http.StatusNotFound, "no data")
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Chart rendering failed",
			applog.FieldError, errors.Join(core.ErrRenderFailure, err))
		writeError(w, http.StatusInternalServerError, "chart unavailable")
		return
	}
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+art.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}
