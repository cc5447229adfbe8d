package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/veracity/internal/model"
)

func init() {
	checkSleepFunc = func(d time.Duration) {}
}

func newChecker(authConfig *model.AuthorityConfig) *SourceChecker {
	return NewSourceChecker(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test-agent"}, 4, authConfig)
}

func record(id, url string) model.FactRecord {
	return model.FactRecord{ID: id, Source: model.FactSource{Name: id, URL: url}}
}

func TestSourceChecker_CheckOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if r.Method != http.MethodHead {
				t.Errorf("Expected HEAD request, got %s", r.Method)
			}
			if r.UserAgent() != "test-agent" {
				t.Errorf("Expected user agent test-agent, got %s", r.UserAgent())
			}
			w.Header().Set("Last-Modified", "Mon, 02 Jan 2023 15:04:05 GMT")
		case "/gone":
			w.WriteHeader(http.StatusGone)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "/no-head":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	checker := newChecker(nil)
	checker.now = func() time.Time { return time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC) }

	tests := []struct {
		path           string
		wantAccessible bool
		wantDead       bool
		wantStatus     int
	}{
		{"/ok", true, false, http.StatusOK},
		{"/missing", false, true, http.StatusNotFound},
		{"/gone", false, true, http.StatusGone},
		{"/forbidden", false, false, http.StatusForbidden},
		{"/no-head", true, false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := checker.checkOne(context.Background(), "fact", server.URL+tt.path)
			if result.IsAccessible != tt.wantAccessible {
				t.Errorf("Expected accessible=%v, got %v", tt.wantAccessible, result.IsAccessible)
			}
			if result.IsDead != tt.wantDead {
				t.Errorf("Expected dead=%v, got %v", tt.wantDead, result.IsDead)
			}
			if result.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, result.StatusCode)
			}
			if result.FactID != "fact" {
				t.Errorf("Expected fact id to be kept, got %q", result.FactID)
			}
		})
	}

	ok := checker.checkOne(context.Background(), "fact", server.URL+"/ok")
	if ok.LastModified == nil || ok.Age == nil {
		t.Fatal("Expected Last-Modified to be parsed")
	}
	if *ok.Age != 365 || ok.IsStale {
		t.Errorf("Expected 365 days and not stale, got %d/%v", *ok.Age, ok.IsStale)
	}
}

func TestSourceChecker_Staleness(t *testing.T) {
	modified := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
	}))
	defer server.Close()

	checker := newChecker(nil)
	checker.now = func() time.Time { return modified.AddDate(2, 0, 0) }

	result := checker.checkOne(context.Background(), "fact", server.URL)
	if !result.IsStale {
		t.Error("Expected two-year-old source to be stale")
	}
}

func TestSourceChecker_Redirect(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer final.Close()
	redirect := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusMovedPermanently)
	}))
	defer redirect.Close()

	result := newChecker(nil).checkOne(context.Background(), "fact", redirect.URL)
	if !result.IsAccessible {
		t.Error("Expected redirected source to be accessible")
	}
	if result.RedirectURL != final.URL {
		t.Errorf("Expected redirect to %s, got %s", final.URL, result.RedirectURL)
	}
}

func TestSourceChecker_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := newChecker(nil).checkWithRetry(context.Background(), "fact", url)
	if result.IsAccessible || !result.IsDead {
		t.Errorf("Expected unreachable source to be dead, got %+v", result)
	}
	if result.Error == "" {
		t.Error("Expected error message")
	}
}

func TestSourceChecker_Retry(t *testing.T) {
	tests := []struct {
		desc         string
		failures     int32
		failStatus   int
		wantAttempts int32
		wantOK       bool
	}{
		{"transient then success", 2, http.StatusServiceUnavailable, 3, true},
		{"rate limited once", 1, http.StatusTooManyRequests, 2, true},
		{"exhausted", 10, http.StatusBadGateway, 3, false},
		{"permanent failure", 10, http.StatusNotFound, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if attempts.Add(1) <= tt.failures {
					w.WriteHeader(tt.failStatus)
				}
			}))
			defer server.Close()

			result := newChecker(nil).checkWithRetry(context.Background(), "fact", server.URL)
			if result.IsAccessible != tt.wantOK {
				t.Errorf("Expected accessible=%v, got %v", tt.wantOK, result.IsAccessible)
			}
			if attempts.Load() != tt.wantAttempts {
				t.Errorf("Expected %d attempts, got %d", tt.wantAttempts, attempts.Load())
			}
		})
	}
}

func TestSourceChecker_Check(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		if r.URL.Path == "/dead" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	records := []model.FactRecord{
		record("a", server.URL+"/a"),
		record("no_url", ""),
		record("dead", server.URL+"/dead"),
	}
	for i := 0; i < 8; i++ {
		records = append(records, record("extra", server.URL+"/x"))
	}

	results := newChecker(nil).Check(context.Background(), records)
	if len(results) != len(records) {
		t.Fatalf("Expected %d results, got %d", len(records), len(results))
	}
	if results[0].FactID != "a" || !results[0].IsAccessible {
		t.Errorf("Expected first source accessible, got %+v", results[0])
	}
	if results[1].Error != "no source url" || results[1].IsAccessible {
		t.Errorf("Expected missing URL to be reported, got %+v", results[1])
	}
	if !results[2].IsDead {
		t.Errorf("Expected dead source, got %+v", results[2])
	}
	if peak.Load() > 4 {
		t.Errorf("Expected at most 4 concurrent checks, got %d", peak.Load())
	}
}

func TestSourceChecker_Authority(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	checker := newChecker(&model.AuthorityConfig{PrimaryDomains: []string{"127.0.0.1"}})
	result := checker.checkOne(context.Background(), "fact", server.URL)
	if result.Authority != model.TierPrimary {
		t.Errorf("Expected primary authority, got %v", result.Authority)
	}
}

func TestSourceChecker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newChecker(nil).Check(ctx, []model.FactRecord{record("a", "http://127.0.0.1:1/")})
	if results[0].IsAccessible || results[0].IsDead {
		t.Errorf("Expected cancelled check to be neither accessible nor dead, got %+v", results[0])
	}
}

func TestIsRetryableSourceCheck(t *testing.T) {
	tests := []struct {
		desc      string
		result    model.SourceCheck
		retryable bool
	}{
		{"200 OK", model.SourceCheck{StatusCode: 200, IsAccessible: true}, false},
		{"404 Not Found", model.SourceCheck{StatusCode: 404, IsDead: true}, false},
		{"500 Server Error", model.SourceCheck{StatusCode: 500}, true},
		{"429 Too Many Requests", model.SourceCheck{StatusCode: 429}, true},
		{"timeout error", model.SourceCheck{Error: "request failed: i/o timeout"}, true},
		{"connection refused", model.SourceCheck{Error: "request failed: connection refused"}, true},
		{"create request error", model.SourceCheck{Error: "create request: invalid URL"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := isRetryableSourceCheck(tt.result); got != tt.retryable {
				t.Errorf("Expected retryable=%v, got %v", tt.retryable, got)
			}
		})
	}
}
