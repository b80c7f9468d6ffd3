package tracker

import (
	"context"
	"strings"
	"time"

	"placemate/cmd/identity"
	"placemate/cmd/internal/pagination"
)

// CreateInput describes a new application.
type CreateInput struct {
	CompanyName string
	CompanyLogo *string
	Role        string
	Location    string
	JobType     string
	Salary      *string
	Stage       string
	AppliedDate *time.Time

	Deadline          *time.Time
	NextInterviewDate *time.Time

	Source string
	JobURL *string
	Notes  string

	Contacts []Contact
}

// UpdateInput carries partial edits; nil fields stay untouched. Stage and
// status are managed by UpdateStage/Archive, not here.
type UpdateInput struct {
	CompanyName *string
	CompanyLogo *string
	Role        *string
	Location    *string
	JobType     *string
	Salary      *string
	AppliedDate *time.Time

	Deadline          *time.Time
	NextInterviewDate *time.Time

	Source *string
	JobURL *string
	Notes  *string

	Contacts []Contact
}

// Service enforces application business rules over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// SetNow overrides the clock. Tests only.
func (s *Service) SetNow(now func() time.Time) { s.now = now }

// startOfDay truncates to midnight UTC; "not in the past" checks allow today.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) validateDates(op string, deadline, interview *time.Time) error {
	today := startOfDay(s.now())
	if deadline != nil && deadline.Before(today) {
		return invalid(op, "deadline cannot be in the past")
	}
	if interview != nil && interview.Before(today) {
		return invalid(op, "nextInterviewDate cannot be in the past")
	}
	return nil
}

// Create validates input and persists a new application with its initial
// timeline event.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Application, error) {
	const op = "tracker.Create"

	company := strings.TrimSpace(in.CompanyName)
	role := strings.TrimSpace(in.Role)
	if company == "" {
		return Application{}, invalid(op, "companyName is required")
	}
	if role == "" {
		return Application{}, invalid(op, "role is required")
	}
	if !validJobType(in.JobType) {
		return Application{}, invalid(op, "jobType must be full-time, internship or contract")
	}

	stage := in.Stage
	if stage == "" {
		stage = StageApplied
	}
	if !ValidStage(stage) {
		return Application{}, invalid(op, "unknown stage")
	}

	if err := s.validateDates(op, in.Deadline, in.NextInterviewDate); err != nil {
		return Application{}, err
	}

	now := s.now()
	applied := now
	if in.AppliedDate != nil {
		applied = *in.AppliedDate
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Application{}, identity.OpError{Op: op, Kind: err}
	}

	status := StatusActive
	if stage == StageOffer || stage == StageRejected {
		status = StatusCompleted
	}

	app := Application{
		ID:                id,
		UserID:            userID,
		CompanyName:       company,
		CompanyLogo:       in.CompanyLogo,
		Role:              role,
		Location:          strings.TrimSpace(in.Location),
		JobType:           in.JobType,
		Salary:            in.Salary,
		Stage:             stage,
		Status:            status,
		AppliedDate:       applied,
		Deadline:          in.Deadline,
		NextInterviewDate: in.NextInterviewDate,
		Source:            strings.TrimSpace(in.Source),
		JobURL:            in.JobURL,
		Notes:             in.Notes,
		Contacts:          in.Contacts,
		Timeline: []TimelineEvent{{
			Event: EventCreated,
			Title: "Application Created",
			Date:  now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if app.Contacts == nil {
		app.Contacts = []Contact{}
	}

	if err := s.store.Create(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Application, error) {
	return s.store.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter, p pagination.Params) ([]Application, int64, error) {
	return s.store.List(ctx, userID, f, p)
}

// Update applies partial edits to fields outside the stage machinery.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Application, error) {
	const op = "tracker.Update"

	app, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return Application{}, err
	}

	if err := s.validateDates(op, in.Deadline, in.NextInterviewDate); err != nil {
		return Application{}, err
	}

	if in.CompanyName != nil {
		v := strings.TrimSpace(*in.CompanyName)
		if v == "" {
			return Application{}, invalid(op, "companyName cannot be empty")
		}
		app.CompanyName = v
	}
	if in.Role != nil {
		v := strings.TrimSpace(*in.Role)
		if v == "" {
			return Application{}, invalid(op, "role cannot be empty")
		}
		app.Role = v
	}
	if in.JobType != nil {
		if !validJobType(*in.JobType) {
			return Application{}, invalid(op, "jobType must be full-time, internship or contract")
		}
		app.JobType = *in.JobType
	}
	if in.CompanyLogo != nil {
		app.CompanyLogo = in.CompanyLogo
	}
	if in.Location != nil {
		app.Location = strings.TrimSpace(*in.Location)
	}
	if in.Salary != nil {
		app.Salary = in.Salary
	}
	if in.AppliedDate != nil {
		app.AppliedDate = *in.AppliedDate
	}
	if in.Deadline != nil {
		app.Deadline = in.Deadline
	}
	if in.NextInterviewDate != nil {
		app.NextInterviewDate = in.NextInterviewDate
	}
	if in.Source != nil {
		app.Source = strings.TrimSpace(*in.Source)
	}
	if in.JobURL != nil {
		app.JobURL = in.JobURL
	}
	if in.Notes != nil {
		app.Notes = *in.Notes
	}
	if in.Contacts != nil {
		app.Contacts = in.Contacts
	}

	app.UpdatedAt = s.now()
	if err := s.store.Update(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}

// UpdateStage moves an application through the pipeline. Reaching offer or
// rejected completes the application; every move appends a timeline event.
func (s *Service) UpdateStage(ctx context.Context, userID, id, stage, note string) (Application, error) {
	const op = "tracker.UpdateStage"

	if !ValidStage(stage) {
		return Application{}, invalid(op, "unknown stage")
	}

	app, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return Application{}, err
	}

	now := s.now()
	app.Stage = stage
	if stage == StageOffer || stage == StageRejected {
		app.Status = StatusCompleted
	}
	app.Timeline = append(app.Timeline, TimelineEvent{
		Event: EventStageChange,
		Title: StageLabel(stage),
		Date:  now,
		Note:  note,
	})
	app.UpdatedAt = now

	if err := s.store.Update(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// AddTimelineEvent appends a free-form note to the history.
func (s *Service) AddTimelineEvent(ctx context.Context, userID, id, title, note string, date time.Time) (Application, error) {
	const op = "tracker.AddTimelineEvent"

	title = strings.TrimSpace(title)
	if title == "" {
		return Application{}, invalid(op, "title is required")
	}

	app, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return Application{}, err
	}

	now := s.now()
	if date.IsZero() {
		date = now
	}
	app.Timeline = append(app.Timeline, TimelineEvent{
		Event: EventNote,
		Title: title,
		Date:  date,
		Note:  note,
	})
	app.UpdatedAt = now

	if err := s.store.Update(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// UpcomingInterviews lists active applications with interviews from today on.
func (s *Service) UpcomingInterviews(ctx context.Context, userID string, limit int) ([]Application, error) {
	if limit <= 0 || limit > 100 {
		limit = 5
	}
	return s.store.UpcomingInterviews(ctx, userID, startOfDay(s.now()), limit)
}

// Archive hides an application from active views without deleting history.
func (s *Service) Archive(ctx context.Context, userID, id string) (Application, error) {
	return s.setStatus(ctx, userID, id, StatusArchived)
}

// Unarchive returns an archived application to the active pipeline.
func (s *Service) Unarchive(ctx context.Context, userID, id string) (Application, error) {
	return s.setStatus(ctx, userID, id, StatusActive)
}

func (s *Service) setStatus(ctx context.Context, userID, id, status string) (Application, error) {
	app, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return Application{}, err
	}
	app.Status = status
	app.UpdatedAt = s.now()
	if err := s.store.Update(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}
