package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/kent-tracker/app/database"
	"github.com/lysyi3m/kent-tracker/app/feed"
	"github.com/lysyi3m/kent-tracker/app/rules"
	"github.com/lysyi3m/kent-tracker/app/tasks"
)

type stubScheduler struct {
	triggered int
	err       error
	last      *database.Run
}

func (s *stubScheduler) Start() {}
func (s *stubScheduler) Stop()  {}

func (s *stubScheduler) Trigger() error {
	if s.err != nil {
		return s.err
	}
	s.triggered++
	return nil
}

func (s *stubScheduler) LastRun() *database.Run {
	return s.last
}

func newTestRouter(t *testing.T, scheduler tasks.TaskSchedulerInterface) (*gin.Engine, *database.FileStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	store := database.NewFileStore(filepath.Join(dir, "state.json"), filepath.Join(dir, "feed.json"), time.Second)

	published := feed.NewDate(time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC))
	store.SaveFeed([]feed.FeedItem{
		{ID: "https://a.example/1", URL: "https://a.example/1", Title: "Man jailed for homophobic attack in Maidstone", Published: &published, Label: feed.LabelCourtUpdate, Tags: []string{"homophobic"}, FoundAt: time.Date(2025, 5, 29, 8, 0, 0, 0, time.UTC)},
		{ID: "https://a.example/2", URL: "https://a.example/2", Title: "Pride event in Kent, Ohio", Label: feed.LabelNewsReport},
	})
	store.SaveState(database.State{SeenURLs: []string{"https://a.example/1", "https://a.example/2", "https://a.example/3"}})

	sources := feed.NewSourceCache("")
	for _, source := range feed.DefaultSources() {
		sources.Put(source)
	}

	registry := rules.NewRegistry("")

	handler := NewHandler(store, nil, sources, registry, scheduler, HandlerOptions{
		RulesVersion:  rules.DefaultVersion,
		LookbackYears: 5,
		BaseURL:       "https://feeds.example.com/",
		Version:       "test",
	})

	return NewServer(handler, "secret"), store
}

func TestGetFeed(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feed", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Expected XML content type, got %s", ct)
	}
	if w.Header().Get("X-Feed-Items") != "2" {
		t.Errorf("Expected X-Feed-Items 2, got %s", w.Header().Get("X-Feed-Items"))
	}

	body := w.Body.String()
	for _, want := range []string{
		`<atom:link href="https://feeds.example.com/feed"`,
		"<title>Man jailed for homophobic attack in Maidstone</title>",
		"<category>Court update</category>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected feed to contain %q", want)
		}
	}
}

func TestGetFeedJSON(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feed.json", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var items []feed.FeedItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(items) != 2 || items[0].Published.String() != "2025-05-28" {
		t.Errorf("Unexpected items: %+v", items)
	}
}

func TestGetStats(t *testing.T) {
	scheduler := &stubScheduler{last: &database.Run{ID: "run-1", Admitted: 2}}
	router, _ := newTestRouter(t, scheduler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var stats struct {
		Feed struct {
			Items   int            `json:"items"`
			ByLabel map[string]int `json:"by_label"`
		} `json:"feed"`
		Seen    int                    `json:"seen"`
		LastRun map[string]interface{} `json:"last_run"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if stats.Feed.Items != 2 || stats.Feed.ByLabel["Court update"] != 1 {
		t.Errorf("Unexpected feed stats: %+v", stats.Feed)
	}
	if stats.Seen != 3 {
		t.Errorf("Expected 3 seen, got %d", stats.Seen)
	}
	if stats.LastRun["id"] != "run-1" {
		t.Errorf("Expected last run run-1, got %v", stats.LastRun)
	}
}

func TestAPIAuth(t *testing.T) {
	scheduler := &stubScheduler{}
	router, _ := newTestRouter(t, scheduler)

	cases := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"header key", "X-API-Key", "secret", http.StatusAccepted},
		{"bearer token", "Authorization", "Bearer secret", http.StatusAccepted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, w.Code)
			}
		})
	}

	if scheduler.triggered != 2 {
		t.Errorf("Expected 2 triggered runs, got %d", scheduler.triggered)
	}
}

func TestAPIRunAlreadyQueued(t *testing.T) {
	router, _ := newTestRouter(t, &stubScheduler{err: tasks.ErrRunQueued})

	req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", w.Code)
	}
}

func TestAPIAudit(t *testing.T) {
	router, store := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report tasks.AuditReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if report.Checked != 2 || len(report.Rejected) != 1 || report.Rejected[0].URL != "https://a.example/2" {
		t.Errorf("Unexpected report: %+v", report)
	}
	if len(store.LoadFeed()) != 2 {
		t.Error("Audit must not modify the feed")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/audit?version=missing", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown ruleset, got %d", w.Code)
	}
}

func TestAPISource(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sources/kent-police", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var source struct {
		Name     string   `json:"name"`
		Kind     string   `json:"kind"`
		Queries  []string `json:"queries"`
		Settings struct {
			Enabled          bool `json:"enabled"`
			MaxLinksPerQuery int  `json:"max_links_per_query"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &source); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if source.Name != "kent-police" || source.Kind != feed.SourceKindPoliceSearch {
		t.Errorf("Unexpected source: %+v", source)
	}
	if !source.Settings.Enabled || source.Settings.MaxLinksPerQuery != 25 || len(source.Queries) == 0 {
		t.Errorf("Unexpected settings: %+v", source)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sources/missing", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown source, got %d", w.Code)
	}
}
