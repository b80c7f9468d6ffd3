package tracker

import (
	"context"
	"testing"
	"time"

	"placemate/cmd/identity"
	"placemate/cmd/internal/pagination"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T) (*Service, *MemoryStore, time.Time) {
	t.Helper()
	store := NewMemoryStore()
	svc := NewService(store)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	svc.SetNow(fixedClock(now))
	return svc, store, now
}

func validInput() CreateInput {
	return CreateInput{
		CompanyName: "Acme Corp",
		Role:        "Backend Engineer",
		JobType:     JobFullTime,
	}
}

func TestCreate_Defaults(t *testing.T) {
	t.Parallel()
	svc, _, now := newTestService(t)

	app, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if app.ID == "" {
		t.Error("expected generated ID")
	}
	if app.Stage != StageApplied {
		t.Errorf("stage = %q, want %q", app.Stage, StageApplied)
	}
	if app.Status != StatusActive {
		t.Errorf("status = %q, want %q", app.Status, StatusActive)
	}
	if !app.AppliedDate.Equal(now) {
		t.Errorf("appliedDate = %v, want %v", app.AppliedDate, now)
	}
	if len(app.Timeline) != 1 {
		t.Fatalf("timeline length = %d, want 1", len(app.Timeline))
	}
	ev := app.Timeline[0]
	if ev.Event != EventCreated || ev.Title != "Application Created" {
		t.Errorf("initial event = %+v", ev)
	}
	if app.Contacts == nil {
		t.Error("contacts should be an empty slice, not nil")
	}
}

func TestCreate_OfferStageCompletesImmediately(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	in := validInput()
	in.Stage = StageOffer
	app, err := svc.Create(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if app.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", app.Status, StatusCompleted)
	}
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()
	svc, _, now := newTestService(t)

	yesterday := now.AddDate(0, 0, -1)

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing company", func(in *CreateInput) { in.CompanyName = "  " }},
		{"missing role", func(in *CreateInput) { in.Role = "" }},
		{"bad job type", func(in *CreateInput) { in.JobType = "gig" }},
		{"unknown stage", func(in *CreateInput) { in.Stage = "phone-screen" }},
		{"past deadline", func(in *CreateInput) { in.Deadline = &yesterday }},
		{"past interview", func(in *CreateInput) { in.NextInterviewDate = &yesterday }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), "user-1", in)
			if !identity.IsInvalidInput(err) {
				t.Fatalf("err = %v, want invalid input", err)
			}
		})
	}
}

func TestCreate_TodayDeadlineAllowed(t *testing.T) {
	t.Parallel()
	svc, _, now := newTestService(t)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	in := validInput()
	in.Deadline = &today
	if _, err := svc.Create(context.Background(), "user-1", in); err != nil {
		t.Fatalf("deadline today should be accepted: %v", err)
	}
}

func TestUpdateStage_AppendsTimelineAndCompletes(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	app, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	app, err = svc.UpdateStage(context.Background(), "user-1", app.ID, StageTech, "panel with two engineers")
	if err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	if app.Stage != StageTech || app.Status != StatusActive {
		t.Errorf("after tech: stage=%q status=%q", app.Stage, app.Status)
	}
	if len(app.Timeline) != 2 {
		t.Fatalf("timeline length = %d, want 2", len(app.Timeline))
	}
	ev := app.Timeline[1]
	if ev.Event != EventStageChange || ev.Title != "Technical Round" || ev.Note != "panel with two engineers" {
		t.Errorf("stage event = %+v", ev)
	}

	app, err = svc.UpdateStage(context.Background(), "user-1", app.ID, StageRejected, "")
	if err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	if app.Status != StatusCompleted {
		t.Errorf("status after rejection = %q, want %q", app.Status, StatusCompleted)
	}
	if app.Timeline[len(app.Timeline)-1].Title != "Rejected" {
		t.Errorf("last event title = %q", app.Timeline[len(app.Timeline)-1].Title)
	}
}

func TestUpdateStage_Unknown(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	app, _ := svc.Create(context.Background(), "user-1", validInput())
	if _, err := svc.UpdateStage(context.Background(), "user-1", app.ID, "screening", ""); !identity.IsInvalidInput(err) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestUpdate_PartialEdits(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	app, _ := svc.Create(context.Background(), "user-1", validInput())

	role := "Platform Engineer"
	notes := "referred by Sam"
	got, err := svc.Update(context.Background(), "user-1", app.ID, UpdateInput{
		Role:  &role,
		Notes: &notes,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Role != role || got.Notes != notes {
		t.Errorf("got role=%q notes=%q", got.Role, got.Notes)
	}
	if got.CompanyName != "Acme Corp" {
		t.Errorf("untouched field changed: companyName=%q", got.CompanyName)
	}

	empty := " "
	if _, err := svc.Update(context.Background(), "user-1", app.ID, UpdateInput{Role: &empty}); !identity.IsInvalidInput(err) {
		t.Fatalf("blank role: err = %v, want invalid input", err)
	}
}

func TestGet_OtherUsersApplicationIsNotFound(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	app, _ := svc.Create(context.Background(), "user-1", validInput())

	if _, err := svc.Get(context.Background(), "user-2", app.ID); !identity.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := svc.UpdateStage(context.Background(), "user-2", app.ID, StageOA, ""); !identity.IsNotFound(err) {
		t.Fatalf("UpdateStage err = %v, want not found", err)
	}
	if err := svc.Delete(context.Background(), "user-2", app.ID); !identity.IsNotFound(err) {
		t.Fatalf("Delete err = %v, want not found", err)
	}
}

func TestList_FiltersAndPagination(t *testing.T) {
	t.Parallel()
	svc, _, now := newTestService(t)
	ctx := context.Background()

	companies := []string{"Alpha", "Beta", "Gamma"}
	for i, c := range companies {
		in := validInput()
		in.CompanyName = c
		applied := now.AddDate(0, 0, -i)
		in.AppliedDate = &applied
		app, err := svc.Create(ctx, "user-1", in)
		if err != nil {
			t.Fatalf("Create %s: %v", c, err)
		}
		if c == "Beta" {
			if _, err := svc.UpdateStage(ctx, "user-1", app.ID, StageOffer, ""); err != nil {
				t.Fatalf("UpdateStage: %v", err)
			}
		}
	}

	apps, total, err := svc.List(ctx, "user-1", ListFilter{}, pagination.Params{Page: 1, Limit: 2, SortBy: "company_name"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(apps) != 2 {
		t.Fatalf("total=%d len=%d, want 3 and 2", total, len(apps))
	}

	apps, total, err = svc.List(ctx, "user-1", ListFilter{Stage: StageOffer}, pagination.Params{Page: 1, Limit: 10, SortBy: "created_at"})
	if err != nil {
		t.Fatalf("List stage filter: %v", err)
	}
	if total != 1 || apps[0].CompanyName != "Beta" {
		t.Fatalf("stage filter: total=%d apps=%v", total, apps)
	}

	apps, total, err = svc.List(ctx, "user-1", ListFilter{Search: "gam"}, pagination.Params{Page: 1, Limit: 10, SortBy: "created_at"})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if total != 1 || apps[0].CompanyName != "Gamma" {
		t.Fatalf("search: total=%d apps=%v", total, apps)
	}

	from := now.AddDate(0, 0, -1)
	_, total, err = svc.List(ctx, "user-1", ListFilter{AppliedFrom: &from}, pagination.Params{Page: 1, Limit: 10, SortBy: "created_at"})
	if err != nil {
		t.Fatalf("List date filter: %v", err)
	}
	if total != 2 {
		t.Fatalf("appliedFrom filter: total=%d, want 2", total)
	}
}

func TestUpcomingInterviews(t *testing.T) {
	t.Parallel()
	svc, _, now := newTestService(t)
	ctx := context.Background()

	mk := func(company string, interviewIn int) Application {
		in := validInput()
		in.CompanyName = company
		if interviewIn != 0 {
			d := now.AddDate(0, 0, interviewIn)
			in.NextInterviewDate = &d
		}
		app, err := svc.Create(ctx, "user-1", in)
		if err != nil {
			t.Fatalf("Create %s: %v", company, err)
		}
		return app
	}

	mk("NoInterview", 0)
	mk("Soon", 1)
	mk("Later", 5)
	archived := mk("Archived", 2)
	if _, err := svc.Archive(ctx, "user-1", archived.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	apps, err := svc.UpcomingInterviews(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("UpcomingInterviews: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("len = %d, want 2 (no interview and archived excluded)", len(apps))
	}
	if apps[0].CompanyName != "Soon" || apps[1].CompanyName != "Later" {
		t.Errorf("order = %q, %q", apps[0].CompanyName, apps[1].CompanyName)
	}

	apps, err = svc.UpcomingInterviews(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("UpcomingInterviews limit: %v", err)
	}
	if len(apps) != 1 || apps[0].CompanyName != "Soon" {
		t.Errorf("limited = %v", apps)
	}
}

func TestArchiveUnarchive(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	app, _ := svc.Create(ctx, "user-1", validInput())

	got, err := svc.Archive(ctx, "user-1", app.ID)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if got.Status != StatusArchived {
		t.Errorf("status = %q, want %q", got.Status, StatusArchived)
	}

	got, err = svc.Unarchive(ctx, "user-1", app.ID)
	if err != nil {
		t.Fatalf("Unarchive: %v", err)
	}
	if got.Status != StatusActive {
		t.Errorf("status = %q, want %q", got.Status, StatusActive)
	}
}

func TestAddTimelineEvent(t *testing.T) {
	t.Parallel()
	svc, _, now := newTestService(t)
	ctx := context.Background()

	app, _ := svc.Create(ctx, "user-1", validInput())

	got, err := svc.AddTimelineEvent(ctx, "user-1", app.ID, "Sent thank-you note", "emailed the recruiter", time.Time{})
	if err != nil {
		t.Fatalf("AddTimelineEvent: %v", err)
	}
	if len(got.Timeline) != 2 {
		t.Fatalf("timeline length = %d, want 2", len(got.Timeline))
	}
	ev := got.Timeline[1]
	if ev.Event != EventNote || ev.Title != "Sent thank-you note" || !ev.Date.Equal(now) {
		t.Errorf("event = %+v", ev)
	}

	if _, err := svc.AddTimelineEvent(ctx, "user-1", app.ID, "  ", "", time.Time{}); !identity.IsInvalidInput(err) {
		t.Fatalf("blank title: err = %v, want invalid input", err)
	}
}
