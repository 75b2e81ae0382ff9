package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type failingStore struct{}

func (failingStore) Load(ctx context.Context) ([]Entry, error) { return nil, errors.New("disk on fire") }
func (failingStore) Save(ctx context.Context, entries []Entry) error {
	return errors.New("disk on fire")
}

func fullStore(n int) *MemoryStore {
	entries := make([]Entry, n)
	for i := range entries {
		// Scores 1000, 990, ... so the last one is the lowest
		entries[i] = Entry{ID: fmt.Sprintf("e%d", i), Name: fmt.Sprintf("p%d", i), Score: 1000 - i*10, Date: "2024-01-01T00:00:00Z"}
	}
	return NewMemoryStore(entries...)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"Ada", "Ada", nil},
		{"  Ada  ", "Ada", nil},
		{"", "", ErrNameRequired},
		{"   ", "", ErrNameRequired},
		{strings.Repeat("a", 20), strings.Repeat("a", 20), nil},
		{strings.Repeat("a", 21), "", ErrNameTooLong},
		{strings.Repeat("é", 20), strings.Repeat("é", 20), nil},
	}
	for _, tt := range tests {
		got, err := ValidateName(tt.in)
		if !errors.Is(err, tt.wantErr) || got != tt.want {
			t.Errorf("ValidateName(%q) = %q, %v; want %q, %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestRank(t *testing.T) {
	entries := []Entry{{Name: "a", Score: 30}, {Name: "b", Score: 20}, {Name: "b", Score: 20}}
	if r := Rank(entries, "b", 20); r != 2 {
		t.Errorf("Rank = %d, want 2 (first match)", r)
	}
	if r := Rank(entries, "c", 20); r != 0 {
		t.Errorf("Rank of missing entry = %d, want 0", r)
	}
}

func TestBoardSubmitSortsAndCaps(t *testing.T) {
	const limit = 5
	b := NewBoard(fullStore(limit), limit)
	b.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.FixedZone("X", 3600)) }

	entries, err := b.Submit(context.Background(), "newbie", 975)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(entries) != limit {
		t.Fatalf("len = %d, want %d (capped)", len(entries), limit)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Score < entries[i].Score {
			t.Fatalf("not sorted descending at %d: %v", i, entries)
		}
	}
	for _, e := range entries {
		if e.Name == "p4" {
			t.Error("lowest entry should have been dropped")
		}
	}

	idx := Rank(entries, "newbie", 975)
	if idx != 4 {
		t.Errorf("rank = %d, want 4", idx)
	}
	got := entries[idx-1]
	if got.ID == "" || got.Date != "2024-05-01T08:30:00Z" {
		t.Errorf("entry id/date = %q / %q", got.ID, got.Date)
	}

	// A score below the whole list does not make it
	entries, _ = b.Submit(context.Background(), "late", 1)
	if Rank(entries, "late", 1) != 0 || len(entries) != limit {
		t.Error("low score should fall off a full list")
	}
}

func TestBoardRejectsNegativeScore(t *testing.T) {
	store := NewMemoryStore()
	b := NewBoard(store, 5)
	if _, err := b.Submit(context.Background(), "Ada", -5000); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("err = %v, want ErrInvalidScore", err)
	}
	entries, err := b.List(context.Background())
	if err != nil || len(entries) != 0 {
		t.Errorf("entries = %v, err = %v, want empty board", entries, err)
	}
}

func TestBoardTiesKeepOlderFirst(t *testing.T) {
	b := NewBoard(NewMemoryStore(), 10)
	ctx := context.Background()
	b.Submit(ctx, "first", 50)
	entries, _ := b.Submit(ctx, "second", 50)
	if entries[0].Name != "first" || entries[1].Name != "second" {
		t.Errorf("tie order = %s, %s", entries[0].Name, entries[1].Name)
	}
}

func TestBoardReport(t *testing.T) {
	b := NewBoard(NewMemoryStore(Entry{Name: "top", Score: 500}), 10)
	var hook []Entry
	b.OnSubmit = func(entries []Entry, err error) { hook = entries }

	rank, err := b.Report(context.Background(), " me ", 120)
	if err != nil || rank != 2 {
		t.Errorf("Report = %d, %v; want 2", rank, err)
	}
	if len(hook) != 2 {
		t.Errorf("OnSubmit saw %d entries", len(hook))
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leaderboard.json")
	s := NewFileStore(path)

	entries, err := s.Load(context.Background())
	if err != nil || len(entries) != 0 {
		t.Fatalf("missing file: %v, %v", entries, err)
	}

	b := NewBoard(s, 3)
	for i, name := range []string{"a", "b", "c", "d"} {
		if _, err := b.Submit(context.Background(), name, (i+1)*10); err != nil {
			t.Fatal(err)
		}
	}

	reopened, err := NewBoard(NewFileStore(path), 3).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(reopened) != 3 || reopened[0].Name != "d" || reopened[2].Name != "b" {
		t.Errorf("reloaded = %+v", reopened)
	}
}

func newTestServer(t *testing.T, b *Board) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(Routes(b))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var msg map[string]string
	if resp.StatusCode >= 400 {
		json.NewDecoder(resp.Body).Decode(&msg)
	}
	return resp, msg
}

func TestRoutesValidation(t *testing.T) {
	srv := newTestServer(t, NewBoard(NewMemoryStore(), 10))

	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"valid", `{"name":"Ada","score":120}`, http.StatusCreated, ""},
		{"missing name", `{"score":120}`, http.StatusBadRequest, "Invalid name or score"},
		{"string score", `{"name":"Ada","score":"120"}`, http.StatusBadRequest, "Invalid name or score"},
		{"missing score", `{"name":"Ada"}`, http.StatusBadRequest, "Invalid name or score"},
		{"fractional score", `{"name":"Ada","score":1.5}`, http.StatusBadRequest, "Invalid name or score"},
		{"negative score", `{"name":"Ada","score":-5000}`, http.StatusBadRequest, "Invalid name or score"},
		{"long name", `{"name":"` + strings.Repeat("x", 21) + `","score":1}`, http.StatusBadRequest, "Name too long (max 20 chars)"},
		{"malformed", `{"name":`, http.StatusBadRequest, "Invalid name or score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, msg := post(t, srv.URL+"/", tt.body)
			if resp.StatusCode != tt.code {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.code)
			}
			if tt.message != "" && msg["message"] != tt.message {
				t.Errorf("message = %q, want %q", msg["message"], tt.message)
			}
		})
	}
}

func TestRoutesStorageFailure(t *testing.T) {
	srv := newTestServer(t, NewBoard(failingStore{}, 10))

	resp, _ := post(t, srv.URL+"/", `{"name":"Ada","score":10}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("POST status = %d, want 500", resp.StatusCode)
	}
	get, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	get.Body.Close()
	if get.StatusCode != http.StatusInternalServerError {
		t.Errorf("GET status = %d, want 500", get.StatusCode)
	}
}

func TestClientAgainstRoutes(t *testing.T) {
	b := NewBoard(fullStore(100), 100)
	srv := httptest.NewServer(http.StripPrefix("/api/leaderboard", Routes(b)))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/", time.Second)
	ctx := context.Background()

	before, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(before) != 100 {
		t.Fatalf("List len = %d, want 100", len(before))
	}

	rank, err := c.Report(ctx, "Friedman", 995)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rank != 2 {
		t.Errorf("rank = %d, want 2", rank)
	}

	after, _ := c.List(ctx)
	if len(after) != 100 || after[99].Score != 20 {
		t.Errorf("capped list wrong: len=%d last=%d", len(after), after[len(after)-1].Score)
	}

	if _, err := c.Submit(ctx, strings.Repeat("y", 25), 5); err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("expected 400 error, got %v", err)
	}
	if _, err := c.Report(ctx, "", 5); !errors.Is(err, ErrNameRequired) {
		t.Errorf("Report blank name: %v", err)
	}
}
