package analytics

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"placemate/cmd/internal/auth/gate"
	"placemate/cmd/internal/tracker"
	"placemate/cmd/internal/webutil"
)

// Source provides the applications the statistics are computed from.
// Satisfied by any tracker.Store.
type Source interface {
	ListAll(ctx context.Context, userID string) ([]tracker.Application, error)
}

// Handler serves the /analytics routes.
type Handler struct {
	src    Source
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(src Source, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{src: src, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// SetNow overrides the clock. Tests only.
func (h *Handler) SetNow(now func() time.Time) { h.now = now }

// Register mounts the analytics routes. Every route requires authentication.
func (h *Handler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	authed := func(fn http.HandlerFunc) http.Handler { return requireAuth(fn) }

	mux.Handle("GET /analytics/dashboard", authed(h.handleDashboard))
	mux.Handle("GET /analytics/stage-distribution", authed(h.handleStageDistribution))
	mux.Handle("GET /analytics/by-month", authed(h.handleByMonth))
	mux.Handle("GET /analytics/top-companies", authed(h.handleTopCompanies))
	mux.Handle("GET /analytics/conversion-rates", authed(h.handleConversionRates))
	mux.Handle("GET /analytics/full", authed(h.handleFull))
}

// fullReport bundles every analytics block in one response.
type fullReport struct {
	Dashboard         DashboardStats   `json:"dashboard"`
	StageDistribution []StageCount     `json:"stageDistribution"`
	ByMonth           []MonthCount     `json:"byMonth"`
	TopCompanies      []CompanyCount   `json:"topCompanies"`
	ConversionRates   []ConversionRate `json:"conversionRates"`
	AvgResponseDays   float64          `json:"avgResponseDays"`
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]tracker.Application, bool) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	apps, err := h.src.ListAll(r.Context(), ident.UserID)
	if err != nil {
		h.logger.Error("analytics load failed", "userId", ident.UserID, "error", err)
		webutil.WriteDomainError(w, err)
		return nil, false
	}
	return apps, true
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	apps, ok := h.load(w, r)
	if !ok {
		return
	}
	webutil.WriteData(w, http.StatusOK, "", Dashboard(apps))
}

func (h *Handler) handleStageDistribution(w http.ResponseWriter, r *http.Request) {
	apps, ok := h.load(w, r)
	if !ok {
		return
	}
	webutil.WriteData(w, http.StatusOK, "", StageDistribution(apps))
}

func (h *Handler) handleByMonth(w http.ResponseWriter, r *http.Request) {
	apps, ok := h.load(w, r)
	if !ok {
		return
	}

	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			webutil.WriteError(w, http.StatusBadRequest, "months must be a positive integer")
			return
		}
		months = n
	}
	webutil.WriteData(w, http.StatusOK, "", ByMonth(apps, months, h.now()))
}

func (h *Handler) handleTopCompanies(w http.ResponseWriter, r *http.Request) {
	apps, ok := h.load(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			webutil.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	webutil.WriteData(w, http.StatusOK, "", TopCompanies(apps, limit))
}

func (h *Handler) handleConversionRates(w http.ResponseWriter, r *http.Request) {
	apps, ok := h.load(w, r)
	if !ok {
		return
	}
	webutil.WriteData(w, http.StatusOK, "", ConversionRates(apps))
}

func (h *Handler) handleFull(w http.ResponseWriter, r *http.Request) {
	apps, ok := h.load(w, r)
	if !ok {
		return
	}
	webutil.WriteData(w, http.StatusOK, "", fullReport{
		Dashboard:         Dashboard(apps),
		StageDistribution: StageDistribution(apps),
		ByMonth:           ByMonth(apps, 0, h.now()),
		TopCompanies:      TopCompanies(apps, 0),
		ConversionRates:   ConversionRates(apps),
		AvgResponseDays:   AvgResponseDays(apps),
	})
}
