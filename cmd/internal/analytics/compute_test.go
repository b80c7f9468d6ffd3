package analytics

import (
	"testing"
	"time"

	"placemate/cmd/internal/tracker"
)

func app(company, stage, status string, applied time.Time, timeline ...tracker.TimelineEvent) tracker.Application {
	return tracker.Application{
		CompanyName: company,
		Role:        "SWE",
		JobType:     tracker.JobFullTime,
		Stage:       stage,
		Status:      status,
		AppliedDate: applied,
		Timeline:    timeline,
	}
}

func stageEvent(stage string, date time.Time) tracker.TimelineEvent {
	return tracker.TimelineEvent{
		Event: tracker.EventStageChange,
		Title: tracker.StageLabel(stage),
		Date:  date,
	}
}

var baseDate = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func TestDashboard(t *testing.T) {
	t.Parallel()

	apps := []tracker.Application{
		app("Alpha", tracker.StageApplied, tracker.StatusActive, baseDate),
		app("Beta", tracker.StageTech, tracker.StatusActive, baseDate),
		app("Gamma", tracker.StageOffer, tracker.StatusCompleted, baseDate),
		app("Delta", tracker.StageRejected, tracker.StatusCompleted, baseDate),
		app("Epsilon", tracker.StageApplied, tracker.StatusArchived, baseDate),
	}

	got := Dashboard(apps)
	want := DashboardStats{
		Total: 5, Active: 2, Completed: 2, Archived: 1,
		Offers: 1, Rejections: 1, Interviewing: 1,
		ResponseRate: 60, // 3 of 5 moved past applied
	}
	if got != want {
		t.Errorf("Dashboard = %+v, want %+v", got, want)
	}
}

func TestDashboard_Empty(t *testing.T) {
	t.Parallel()

	got := Dashboard(nil)
	if got.Total != 0 || got.ResponseRate != 0 {
		t.Errorf("empty dashboard = %+v", got)
	}
}

func TestStageDistribution(t *testing.T) {
	t.Parallel()

	apps := []tracker.Application{
		app("A", tracker.StageApplied, tracker.StatusActive, baseDate),
		app("B", tracker.StageApplied, tracker.StatusActive, baseDate),
		app("C", tracker.StageOffer, tracker.StatusCompleted, baseDate),
	}

	dist := StageDistribution(apps)
	if len(dist) != 6 {
		t.Fatalf("len = %d, want 6 (five pipeline stages plus rejected)", len(dist))
	}
	if dist[0].Stage != tracker.StageApplied || dist[0].Count != 2 || dist[0].Percentage != 66.7 {
		t.Errorf("applied slice = %+v", dist[0])
	}
	if dist[5].Stage != tracker.StageRejected || dist[5].Count != 0 {
		t.Errorf("rejected slice = %+v", dist[5])
	}
}

func TestByMonth(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	apps := []tracker.Application{
		app("A", tracker.StageApplied, tracker.StatusActive, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)),
		app("B", tracker.StageApplied, tracker.StatusActive, time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)),
		app("C", tracker.StageApplied, tracker.StatusActive, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)),
		// Outside the 3-month window.
		app("D", tracker.StageApplied, tracker.StatusActive, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := ByMonth(apps, 3, now)
	want := []MonthCount{
		{Month: "Jan 2026", Count: 2},
		{Month: "Feb 2026", Count: 0},
		{Month: "Mar 2026", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestByMonth_DefaultWindow(t *testing.T) {
	t.Parallel()

	got := ByMonth(nil, 0, baseDate)
	if len(got) != 6 {
		t.Errorf("default window = %d months, want 6", len(got))
	}
	if got[5].Month != "Mar 2026" || got[0].Month != "Oct 2025" {
		t.Errorf("window edges = %q .. %q", got[0].Month, got[5].Month)
	}
}

func TestTopCompanies(t *testing.T) {
	t.Parallel()

	apps := []tracker.Application{
		app("Acme", tracker.StageApplied, tracker.StatusActive, baseDate),
		app("Acme", tracker.StageOffer, tracker.StatusCompleted, baseDate),
		app("Globex", tracker.StageApplied, tracker.StatusActive, baseDate),
		app("Initech", tracker.StageApplied, tracker.StatusActive, baseDate),
	}

	got := TopCompanies(apps, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Company != "Acme" || got[0].Count != 2 || got[0].Offers != 1 {
		t.Errorf("top = %+v", got[0])
	}
	// Tie between Globex and Initech breaks alphabetically.
	if got[1].Company != "Globex" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestConversionRates(t *testing.T) {
	t.Parallel()

	apps := []tracker.Application{
		app("A", tracker.StageApplied, tracker.StatusActive, baseDate),
		app("B", tracker.StageOA, tracker.StatusActive, baseDate),
		app("C", tracker.StageOffer, tracker.StatusCompleted, baseDate),
		// Rejected after the technical round; the timeline credits oa and tech.
		app("D", tracker.StageRejected, tracker.StatusCompleted, baseDate,
			stageEvent(tracker.StageOA, baseDate.AddDate(0, 0, 3)),
			stageEvent(tracker.StageTech, baseDate.AddDate(0, 0, 7)),
		),
	}

	got := ConversionRates(apps)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}

	wantReached := []int{4, 3, 2, 1, 1}
	for i, want := range wantReached {
		if got[i].Reached != want {
			t.Errorf("%s reached = %d, want %d", got[i].Stage, got[i].Reached, want)
		}
	}
	if got[0].Rate != 100 {
		t.Errorf("applied rate = %v, want 100", got[0].Rate)
	}
	if got[1].Rate != 75 { // 3 of 4
		t.Errorf("oa rate = %v, want 75", got[1].Rate)
	}
	if got[2].Rate != 66.7 { // 2 of 3
		t.Errorf("tech rate = %v, want 66.7", got[2].Rate)
	}
}

func TestConversionRates_Empty(t *testing.T) {
	t.Parallel()

	got := ConversionRates(nil)
	for _, cr := range got {
		if cr.Reached != 0 || cr.Rate != 0 {
			t.Errorf("empty input: %+v", cr)
		}
	}
}

func TestAvgResponseDays(t *testing.T) {
	t.Parallel()

	apps := []tracker.Application{
		// First movement 2 days after applying.
		app("A", tracker.StageOA, tracker.StatusActive, baseDate,
			stageEvent(tracker.StageOA, baseDate.AddDate(0, 0, 2)),
		),
		// First movement 5 days after applying; later events are ignored.
		app("B", tracker.StageTech, tracker.StatusActive, baseDate,
			stageEvent(tracker.StageOA, baseDate.AddDate(0, 0, 5)),
			stageEvent(tracker.StageTech, baseDate.AddDate(0, 0, 20)),
		),
		// Never moved; excluded from the average.
		app("C", tracker.StageApplied, tracker.StatusActive, baseDate),
	}

	if got := AvgResponseDays(apps); got != 3.5 {
		t.Errorf("AvgResponseDays = %v, want 3.5", got)
	}
	if got := AvgResponseDays(nil); got != 0 {
		t.Errorf("AvgResponseDays(nil) = %v, want 0", got)
	}
}
