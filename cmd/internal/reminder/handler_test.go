package reminder

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"placemate/cmd/internal/auth/gate"
	"placemate/cmd/internal/auth/session"
)

// stubVerifier maps bearer tokens directly to user IDs.
type stubVerifier struct{}

func (stubVerifier) VerifyAccess(tok string) (session.Identity, error) {
	if !strings.HasPrefix(tok, "user-") {
		return session.Identity{}, session.ErrInvalidToken
	}
	return session.Identity{UserID: tok, Email: tok + "@example.com"}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var testClock = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) *httptest.Server {
	t.Helper()

	svc := NewService(NewMemoryStore())
	svc.SetNow(func() time.Time { return testClock })

	h := NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	h.Register(mux, gate.RequireAuth(stubVerifier{}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func createReminder(t *testing.T, srv *httptest.Server, token string, body map[string]any) Reminder {
	t.Helper()

	if body == nil {
		body = map[string]any{
			"title":        "Prep for interview",
			"type":         "interview",
			"reminderDate": testClock.Add(24 * time.Hour).Format(time.RFC3339),
		}
	}
	resp, env := doJSON(t, srv, http.MethodPost, "/reminders", token, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, message = %q", resp.StatusCode, env.Message)
	}
	var rem Reminder
	if err := json.Unmarshal(env.Data, &rem); err != nil {
		t.Fatalf("unmarshal reminder: %v", err)
	}
	return rem
}

func TestHandler_CreateAndGet(t *testing.T) {
	t.Parallel()
	srv := newTestHandler(t)

	rem := createReminder(t, srv, "user-1", nil)
	if rem.Type != TypeInterview || rem.IsCompleted {
		t.Errorf("created = %+v", rem)
	}

	resp, env := doJSON(t, srv, http.MethodGet, "/reminders/"+rem.ID, "user-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var got Reminder
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != rem.ID {
		t.Errorf("got = %+v", got)
	}

	resp, _ = doJSON(t, srv, http.MethodGet, "/reminders/"+rem.ID, "user-2", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("other user's get status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_CreateValidation(t *testing.T) {
	t.Parallel()
	srv := newTestHandler(t)

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{
			"missing date",
			map[string]any{"title": "x"},
			"reminderDate is required",
		},
		{
			"past date",
			map[string]any{"title": "x", "reminderDate": testClock.Add(-time.Hour).Format(time.RFC3339)},
			"reminderDate must be in the future",
		},
		{
			"bad type",
			map[string]any{"title": "x", "type": "nudge", "reminderDate": testClock.Add(time.Hour).Format(time.RFC3339)},
			"type must be interview, deadline, follow-up or custom",
		},
		{
			"unknown field",
			map[string]any{"title": "x", "bogus": 1, "reminderDate": testClock.Add(time.Hour).Format(time.RFC3339)},
			"Invalid request body",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := doJSON(t, srv, http.MethodPost, "/reminders", "user-1", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if env.Message != tc.message {
				t.Errorf("message = %q, want %q", env.Message, tc.message)
			}
		})
	}
}

func TestHandler_CompleteRoundTrip(t *testing.T) {
	t.Parallel()
	srv := newTestHandler(t)

	rem := createReminder(t, srv, "user-1", nil)

	resp, env := doJSON(t, srv, http.MethodPatch, "/reminders/"+rem.ID+"/complete", "user-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete status = %d", resp.StatusCode)
	}
	var got Reminder
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.IsCompleted || got.CompletedAt == nil {
		t.Errorf("completed = %+v", got)
	}

	resp, env = doJSON(t, srv, http.MethodPatch, "/reminders/"+rem.ID+"/incomplete", "user-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("incomplete status = %d", resp.StatusCode)
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.IsCompleted || got.CompletedAt != nil {
		t.Errorf("reopened = %+v", got)
	}
}

func TestHandler_ListAndFilters(t *testing.T) {
	t.Parallel()
	srv := newTestHandler(t)

	createReminder(t, srv, "user-1", nil)
	createReminder(t, srv, "user-1", map[string]any{
		"title":        "Submit by Friday",
		"type":         "deadline",
		"reminderDate": testClock.Add(48 * time.Hour).Format(time.RFC3339),
	})

	resp, env := doJSON(t, srv, http.MethodGet, "/reminders?type=deadline", "user-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var data struct {
		Reminders []Reminder `json:"reminders"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(data.Reminders) != 1 || data.Reminders[0].Type != TypeDeadline {
		t.Errorf("filtered = %v", data.Reminders)
	}

	resp, _ = doJSON(t, srv, http.MethodGet, "/reminders?completed=maybe", "user-1", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad completed filter status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_UpcomingAndOverdue(t *testing.T) {
	t.Parallel()
	srv := newTestHandler(t)

	createReminder(t, srv, "user-1", nil)

	resp, env := doJSON(t, srv, http.MethodGet, "/reminders/upcoming", "user-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upcoming status = %d", resp.StatusCode)
	}
	var rems []Reminder
	if err := json.Unmarshal(env.Data, &rems); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rems) != 1 {
		t.Errorf("upcoming = %v", rems)
	}

	resp, env = doJSON(t, srv, http.MethodGet, "/reminders/overdue", "user-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("overdue status = %d", resp.StatusCode)
	}
	if err := json.Unmarshal(env.Data, &rems); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rems) != 0 {
		t.Errorf("overdue = %v", rems)
	}
}

func TestHandler_DeleteAndAuth(t *testing.T) {
	t.Parallel()
	srv := newTestHandler(t)

	rem := createReminder(t, srv, "user-1", nil)

	resp, _ := doJSON(t, srv, http.MethodDelete, "/reminders/"+rem.ID, "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated delete status = %d, want 401", resp.StatusCode)
	}

	resp, _ = doJSON(t, srv, http.MethodDelete, "/reminders/"+rem.ID, "user-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, srv, http.MethodGet, "/reminders/"+rem.ID, "user-1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}
