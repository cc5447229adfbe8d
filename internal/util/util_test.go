package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestRobotsChecker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: Veracity\nDisallow: /private\nCrawl-delay: 2\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("Veracity/0.1 (+https://github.com/ppiankov/veracity)", server.Client())

	allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/articles/1")
	if err != nil || !allowed {
		t.Errorf("Expected public path to be allowed, got %v (%v)", allowed, err)
	}
	if delay != 2*time.Second {
		t.Errorf("Expected crawl delay 2s, got %v", delay)
	}

	err = checker.Check(context.Background(), server.URL+"/private/page")
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("Expected ErrDisallowed, got %v", err)
	}
}

func TestRobotsChecker_MissingOrUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker("Veracity/0.1", server.Client())
	if err := checker.Check(context.Background(), server.URL+"/anything"); err != nil {
		t.Errorf("Expected missing robots.txt to allow, got %v", err)
	}

	unreachable := NewRobotsChecker("Veracity/0.1", &http.Client{Timeout: time.Second})
	if err := unreachable.Check(context.Background(), "http://127.0.0.1:1/page"); err != nil {
		t.Errorf("Expected unreachable robots.txt to allow, got %v", err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Veracity/0.1 (+https://github.com/ppiankov/veracity)", "Veracity"},
		{"curl/8.0", "curl"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeUserAgent(tt.ua); got != tt.want {
			t.Errorf("NormalizeUserAgent(%q): expected %q, got %q", tt.ua, tt.want, got)
		}
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:8080", "http://secure-proxy:8443", "localhost,.internal")

	tests := []struct {
		target string
		want   string
	}{
		{"http://example.com/a", "http://proxy:8080"},
		{"https://example.com/a", "http://secure-proxy:8443"},
		{"http://localhost/a", ""},
		{"https://api.internal/a", ""},
		{"https://internal/a", ""},
	}

	for _, tt := range tests {
		u, _ := url.Parse(tt.target)
		got, err := proxy(&http.Request{URL: u})
		if err != nil {
			t.Fatalf("%s: %v", tt.target, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("%s: expected proxy %q, got %q", tt.target, tt.want, gotStr)
		}
	}
}
