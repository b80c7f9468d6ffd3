package reminder

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"placemate/cmd/internal/auth/gate"
	"placemate/cmd/internal/pagination"
	"placemate/cmd/internal/webutil"
)

const maxBodyBytes = 64 << 10

// Handler serves the /reminders routes.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the reminder routes. Every route requires authentication.
func (h *Handler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	authed := func(fn http.HandlerFunc) http.Handler { return requireAuth(fn) }

	mux.Handle("POST /reminders", authed(h.handleCreate))
	mux.Handle("GET /reminders", authed(h.handleList))
	mux.Handle("GET /reminders/upcoming", authed(h.handleUpcoming))
	mux.Handle("GET /reminders/overdue", authed(h.handleOverdue))
	mux.Handle("GET /reminders/{id}", authed(h.handleGet))
	mux.Handle("PUT /reminders/{id}", authed(h.handleUpdate))
	mux.Handle("DELETE /reminders/{id}", authed(h.handleDelete))
	mux.Handle("PATCH /reminders/{id}/complete", authed(h.handleComplete))
	mux.Handle("PATCH /reminders/{id}/incomplete", authed(h.handleUncomplete))
}

type createRequest struct {
	ApplicationID *string    `json:"applicationId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	ReminderDate  *time.Time `json:"reminderDate"`
}

type updateRequest struct {
	ApplicationID *string    `json:"applicationId"`
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Type          *string    `json:"type"`
	ReminderDate  *time.Time `json:"reminderDate"`
}

type listData struct {
	Reminders  []Reminder      `json:"reminders"`
	Pagination pagination.Meta `json:"pagination"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createRequest
	if err := webutil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ReminderDate == nil {
		webutil.WriteError(w, http.StatusBadRequest, "reminderDate is required")
		return
	}

	rem, err := h.svc.Create(r.Context(), ident.UserID, CreateInput{
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		ReminderDate:  *req.ReminderDate,
	})
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}

	h.logger.Info("reminder created", "userId", ident.UserID, "reminderId", rem.ID)
	webutil.WriteData(w, http.StatusCreated, "Reminder created", rem)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	q := r.URL.Query()
	p := pagination.Parse(q, "reminder_date", SortColumns...)

	f := ListFilter{
		Type:          q.Get("type"),
		ApplicationID: q.Get("applicationId"),
	}
	if f.Type != "" && !validType(f.Type) {
		webutil.WriteError(w, http.StatusBadRequest, "Unknown type filter")
		return
	}
	if v := q.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			webutil.WriteError(w, http.StatusBadRequest, "completed must be true or false")
			return
		}
		f.Completed = &b
	}

	rems, total, err := h.svc.List(r.Context(), ident.UserID, f, p)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	if rems == nil {
		rems = []Reminder{}
	}

	webutil.WriteData(w, http.StatusOK, "", listData{
		Reminders:  rems,
		Pagination: pagination.NewMeta(p, total),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	rem, err := h.svc.Get(r.Context(), ident.UserID, r.PathValue("id"))
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "", rem)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req updateRequest
	if err := webutil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rem, err := h.svc.Update(r.Context(), ident.UserID, r.PathValue("id"), UpdateInput{
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		ReminderDate:  req.ReminderDate,
	})
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Reminder updated", rem)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.svc.Delete(r.Context(), ident.UserID, r.PathValue("id")); err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteMessage(w, http.StatusOK, "Reminder deleted")
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	rem, err := h.svc.Complete(r.Context(), ident.UserID, r.PathValue("id"))
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Reminder completed", rem)
}

func (h *Handler) handleUncomplete(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	rem, err := h.svc.Uncomplete(r.Context(), ident.UserID, r.PathValue("id"))
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Reminder reopened", rem)
}

func (h *Handler) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
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

	rems, err := h.svc.Upcoming(r.Context(), ident.UserID, limit)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	if rems == nil {
		rems = []Reminder{}
	}
	webutil.WriteData(w, http.StatusOK, "", rems)
}

func (h *Handler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	rems, err := h.svc.Overdue(r.Context(), ident.UserID)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	if rems == nil {
		rems = []Reminder{}
	}
	webutil.WriteData(w, http.StatusOK, "", rems)
}
