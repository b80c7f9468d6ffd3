// Package analytics derives dashboard statistics from a user's applications.
// Everything is computed in Go from the full application list, so the
// Postgres and in-memory stores share one source of truth.
package analytics

import (
	"math"
	"sort"
	"time"

	"placemate/cmd/internal/tracker"
)

// DashboardStats is the headline summary block.
type DashboardStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Completed  int `json:"completed"`
	Archived   int `json:"archived"`
	Offers     int `json:"offers"`
	Rejections int `json:"rejections"`
	// Interviewing counts applications currently in an interview stage.
	Interviewing int `json:"interviewing"`
	// ResponseRate is the percentage of applications that moved past the
	// applied stage, rounded to the nearest integer.
	ResponseRate int `json:"responseRate"`
}

// Dashboard summarizes a set of applications.
func Dashboard(apps []tracker.Application) DashboardStats {
	var s DashboardStats
	s.Total = len(apps)

	responded := 0
	for _, a := range apps {
		switch a.Status {
		case tracker.StatusActive:
			s.Active++
		case tracker.StatusCompleted:
			s.Completed++
		case tracker.StatusArchived:
			s.Archived++
		}
		switch a.Stage {
		case tracker.StageOffer:
			s.Offers++
		case tracker.StageRejected:
			s.Rejections++
		case tracker.StageOA, tracker.StageTech, tracker.StageHR:
			s.Interviewing++
		}
		if a.Stage != tracker.StageApplied {
			responded++
		}
	}
	if s.Total > 0 {
		s.ResponseRate = int(math.Round(float64(responded) / float64(s.Total) * 100))
	}
	return s
}

// StageCount is one slice of the stage distribution.
type StageCount struct {
	Stage      string  `json:"stage"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StageDistribution counts applications per current stage, in pipeline order
// with rejected last. Percentages are rounded to one decimal place.
func StageDistribution(apps []tracker.Application) []StageCount {
	counts := make(map[string]int)
	for _, a := range apps {
		counts[a.Stage]++
	}

	order := append(append([]string{}, tracker.StageOrder...), tracker.StageRejected)
	out := make([]StageCount, 0, len(order))
	for _, stage := range order {
		sc := StageCount{Stage: stage, Label: tracker.StageLabel(stage), Count: counts[stage]}
		if len(apps) > 0 {
			sc.Percentage = math.Round(float64(sc.Count)/float64(len(apps))*1000) / 10
		}
		out = append(out, sc)
	}
	return out
}

// MonthCount is one month's application volume.
type MonthCount struct {
	Month string `json:"month"` // e.g. "Jan 2026"
	Count int    `json:"count"`
}

// ByMonth buckets applications by applied month over the trailing window,
// oldest first. Months without applications appear with a zero count.
func ByMonth(apps []tracker.Application, months int, now time.Time) []MonthCount {
	if months <= 0 || months > 24 {
		months = 6
	}

	counts := make(map[string]int)
	for _, a := range apps {
		counts[a.AppliedDate.UTC().Format("Jan 2006")]++
	}

	out := make([]MonthCount, 0, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("Jan 2006")
		out = append(out, MonthCount{Month: key, Count: counts[key]})
	}
	return out
}

// CompanyCount is one company's application volume.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
	Offers  int    `json:"offers"`
}

// TopCompanies ranks companies by application count, ties broken by name.
func TopCompanies(apps []tracker.Application, limit int) []CompanyCount {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	byName := make(map[string]*CompanyCount)
	for _, a := range apps {
		c, ok := byName[a.CompanyName]
		if !ok {
			c = &CompanyCount{Company: a.CompanyName}
			byName[a.CompanyName] = c
		}
		c.Count++
		if a.Stage == tracker.StageOffer {
			c.Offers++
		}
	}

	out := make([]CompanyCount, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Company < out[j].Company
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ConversionRate reports how many applications reached a stage and what share
// of the previous stage's cohort advanced to it.
type ConversionRate struct {
	Stage   string  `json:"stage"`
	Label   string  `json:"label"`
	Reached int     `json:"reached"`
	// Rate is reached/previous-stage-reached as a percentage, rounded to one
	// decimal place. The first stage is always 100 when any exist.
	Rate float64 `json:"rate"`
}

// ConversionRates walks the pipeline and reports stage-to-stage progression.
// An application counts toward every stage it has passed through, using its
// timeline history so rejected applications still credit earlier rounds.
func ConversionRates(apps []tracker.Application) []ConversionRate {
	reached := make([]int, len(tracker.StageOrder))
	for _, a := range apps {
		max := highestStageIndex(a)
		for i := 0; i <= max && i < len(reached); i++ {
			reached[i]++
		}
	}

	out := make([]ConversionRate, 0, len(tracker.StageOrder))
	prev := 0
	for i, stage := range tracker.StageOrder {
		cr := ConversionRate{Stage: stage, Label: tracker.StageLabel(stage), Reached: reached[i]}
		switch {
		case i == 0:
			if reached[0] > 0 {
				cr.Rate = 100
			}
		case prev > 0:
			cr.Rate = math.Round(float64(reached[i])/float64(prev)*1000) / 10
		}
		prev = reached[i]
		out = append(out, cr)
	}
	return out
}

// highestStageIndex finds the furthest pipeline stage an application reached,
// from its current stage and any stage changes recorded in the timeline.
func highestStageIndex(a tracker.Application) int {
	max := stageIndex(a.Stage)
	for _, ev := range a.Timeline {
		if ev.Event != tracker.EventStageChange {
			continue
		}
		if i := labelIndex(ev.Title); i > max {
			max = i
		}
	}
	return max
}

func stageIndex(stage string) int {
	for i, s := range tracker.StageOrder {
		if s == stage {
			return i
		}
	}
	return -1 // rejected or unknown; timeline determines progress
}

func labelIndex(label string) int {
	for i, s := range tracker.StageOrder {
		if tracker.StageLabel(s) == label {
			return i
		}
	}
	return -1
}

// AvgResponseDays is the mean gap between applying and the first recorded
// movement, in days rounded to one decimal place. Zero when no application
// has moved yet.
func AvgResponseDays(apps []tracker.Application) float64 {
	var total float64
	n := 0
	for _, a := range apps {
		for _, ev := range a.Timeline {
			if ev.Event != tracker.EventStageChange {
				continue
			}
			gap := ev.Date.Sub(a.AppliedDate)
			if gap < 0 {
				gap = 0
			}
			total += gap.Hours() / 24
			n++
			break
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(total/float64(n)*10) / 10
}
