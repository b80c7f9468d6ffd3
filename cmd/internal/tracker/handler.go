package tracker

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"placemate/cmd/internal/auth/gate"
	"placemate/cmd/internal/auth/session"
	"placemate/cmd/internal/pagination"
	"placemate/cmd/internal/webutil"
)

const maxBodyBytes = 256 << 10 // contacts and notes can get long

// ReminderCleaner removes reminders tied to an application. Satisfied by
// *reminder.Service.
type ReminderCleaner interface {
	DeleteByApplication(ctx context.Context, userID, applicationID string) (int64, error)
}

// Handler serves the /applications routes.
type Handler struct {
	svc       *Service
	reminders ReminderCleaner
	logger    *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// WithReminderCleanup makes Delete also drop the application's reminders.
// The Postgres schema cascades on its own; in-memory stores need this hook.
func (h *Handler) WithReminderCleanup(rc ReminderCleaner) *Handler {
	h.reminders = rc
	return h
}

// Register mounts the application routes. Every route requires authentication.
func (h *Handler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	authed := func(fn http.HandlerFunc) http.Handler { return requireAuth(fn) }

	mux.Handle("POST /applications", authed(h.handleCreate))
	mux.Handle("GET /applications", authed(h.handleList))
	mux.Handle("GET /applications/upcoming-interviews", authed(h.handleUpcomingInterviews))
	mux.Handle("GET /applications/{id}", authed(h.handleGet))
	mux.Handle("PUT /applications/{id}", authed(h.handleUpdate))
	mux.Handle("DELETE /applications/{id}", authed(h.handleDelete))
	mux.Handle("PATCH /applications/{id}/stage", authed(h.handleUpdateStage))
	mux.Handle("POST /applications/{id}/timeline", authed(h.handleAddTimelineEvent))
	mux.Handle("POST /applications/{id}/archive", authed(h.handleArchive))
	mux.Handle("POST /applications/{id}/unarchive", authed(h.handleUnarchive))
}

type createRequest struct {
	CompanyName       string     `json:"companyName"`
	CompanyLogo       *string    `json:"companyLogo"`
	Role              string     `json:"role"`
	Location          string     `json:"location"`
	JobType           string     `json:"jobType"`
	Salary            *string    `json:"salary"`
	Stage             string     `json:"stage"`
	AppliedDate       *time.Time `json:"appliedDate"`
	Deadline          *time.Time `json:"deadline"`
	NextInterviewDate *time.Time `json:"nextInterviewDate"`
	Source            string     `json:"source"`
	JobURL            *string    `json:"jobUrl"`
	Notes             string     `json:"notes"`
	Contacts          []Contact  `json:"contacts"`
}

type updateRequest struct {
	CompanyName       *string    `json:"companyName"`
	CompanyLogo       *string    `json:"companyLogo"`
	Role              *string    `json:"role"`
	Location          *string    `json:"location"`
	JobType           *string    `json:"jobType"`
	Salary            *string    `json:"salary"`
	AppliedDate       *time.Time `json:"appliedDate"`
	Deadline          *time.Time `json:"deadline"`
	NextInterviewDate *time.Time `json:"nextInterviewDate"`
	Source            *string    `json:"source"`
	JobURL            *string    `json:"jobUrl"`
	Notes             *string    `json:"notes"`
	Contacts          []Contact  `json:"contacts"`
}

type stageRequest struct {
	Stage string `json:"stage"`
	Note  string `json:"note"`
}

type timelineRequest struct {
	Title string     `json:"title"`
	Note  string     `json:"note"`
	Date  *time.Time `json:"date"`
}

type listData struct {
	Applications []Application   `json:"applications"`
	Pagination   pagination.Meta `json:"pagination"`
}

func mustIdentity(w http.ResponseWriter, r *http.Request) (session.Identity, bool) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
	}
	return ident, ok
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := webutil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, err := h.svc.Create(r.Context(), ident.UserID, CreateInput{
		CompanyName:       req.CompanyName,
		CompanyLogo:       req.CompanyLogo,
		Role:              req.Role,
		Location:          req.Location,
		JobType:           req.JobType,
		Salary:            req.Salary,
		Stage:             req.Stage,
		AppliedDate:       req.AppliedDate,
		Deadline:          req.Deadline,
		NextInterviewDate: req.NextInterviewDate,
		Source:            req.Source,
		JobURL:            req.JobURL,
		Notes:             req.Notes,
		Contacts:          req.Contacts,
	})
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}

	h.logger.Info("application created", "userId", ident.UserID, "applicationId", app.ID)
	webutil.WriteData(w, http.StatusCreated, "Application created", app)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	p := pagination.Parse(q, "created_at", SortColumns...)

	f := ListFilter{
		Stage:  q.Get("stage"),
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	if f.Stage != "" && !ValidStage(f.Stage) {
		webutil.WriteError(w, http.StatusBadRequest, "Unknown stage filter")
		return
	}
	if v := q.Get("appliedFrom"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			webutil.WriteError(w, http.StatusBadRequest, "appliedFrom must be RFC 3339")
			return
		}
		f.AppliedFrom = &t
	}
	if v := q.Get("appliedTo"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			webutil.WriteError(w, http.StatusBadRequest, "appliedTo must be RFC 3339")
			return
		}
		f.AppliedTo = &t
	}

	apps, total, err := h.svc.List(r.Context(), ident.UserID, f, p)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	if apps == nil {
		apps = []Application{}
	}

	webutil.WriteData(w, http.StatusOK, "", listData{
		Applications: apps,
		Pagination:   pagination.NewMeta(p, total),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	app, err := h.svc.Get(r.Context(), ident.UserID, r.PathValue("id"))
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "", app)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := webutil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, err := h.svc.Update(r.Context(), ident.UserID, r.PathValue("id"), UpdateInput{
		CompanyName:       req.CompanyName,
		CompanyLogo:       req.CompanyLogo,
		Role:              req.Role,
		Location:          req.Location,
		JobType:           req.JobType,
		Salary:            req.Salary,
		AppliedDate:       req.AppliedDate,
		Deadline:          req.Deadline,
		NextInterviewDate: req.NextInterviewDate,
		Source:            req.Source,
		JobURL:            req.JobURL,
		Notes:             req.Notes,
		Contacts:          req.Contacts,
	})
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Application updated", app)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := h.svc.Delete(r.Context(), ident.UserID, id); err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	if h.reminders != nil {
		if _, err := h.reminders.DeleteByApplication(r.Context(), ident.UserID, id); err != nil {
			h.logger.Error("reminder cleanup failed", "applicationId", id, "error", err)
		}
	}
	webutil.WriteMessage(w, http.StatusOK, "Application deleted")
}

func (h *Handler) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	var req stageRequest
	if err := webutil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, err := h.svc.UpdateStage(r.Context(), ident.UserID, r.PathValue("id"), req.Stage, req.Note)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Stage updated", app)
}

func (h *Handler) handleAddTimelineEvent(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	var req timelineRequest
	if err := webutil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	app, err := h.svc.AddTimelineEvent(r.Context(), ident.UserID, r.PathValue("id"), req.Title, req.Note, date)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Timeline event added", app)
}

func (h *Handler) handleUpcomingInterviews(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
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

	apps, err := h.svc.UpcomingInterviews(r.Context(), ident.UserID, limit)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	if apps == nil {
		apps = []Application{}
	}
	webutil.WriteData(w, http.StatusOK, "", apps)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	app, err := h.svc.Archive(r.Context(), ident.UserID, r.PathValue("id"))
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Application archived", app)
}

func (h *Handler) handleUnarchive(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	app, err := h.svc.Unarchive(r.Context(), ident.UserID, r.PathValue("id"))
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Application restored", app)
}
