package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"jobcal/internal/model"
)

const recordsJSON = `[
  {"id": "a1", "company_name": "Acme", "position": "Eng", "applied_date": "2024-03-04T09:00",
   "events": [{"title": "Interview", "date": "2024-03-06T14:00", "description": "panel"}]}
]`

func TestRemoteFetchAndConditionalRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("apikey") != "k" || r.Header.Get("Authorization") != "Bearer k" {
			http.Error(w, "no key", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(recordsJSON))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL+"/rest/v1/applications?select=*", "k", t.TempDir())
	ctx := context.Background()

	first, err := r.Applications(ctx)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if len(first) != 1 || first[0].Company != "Acme" || len(first[0].Timeline) != 1 || first[0].Timeline[0].Description != "panel" {
		t.Fatalf("unexpected records: %+v", first)
	}

	second, err := r.Applications(ctx)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if len(second) != 1 || second[0].ID != "a1" {
		t.Fatalf("304 should reuse cached body, got %+v", second)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", calls.Load())
	}
}

func TestRemoteFallsBackToCacheOnError(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(recordsJSON))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "", t.TempDir())
	if _, err := r.Applications(context.Background()); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	fail.Store(true)
	records, err := r.Applications(context.Background())
	if err != nil {
		t.Fatalf("expected cached fallback, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected cached records, got %d", len(records))
	}
}

func TestRemoteErrorsWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "", "")
	if _, err := r.Applications(context.Background()); err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected 503 error, got %v", err)
	}
}

func TestRemoteIsReadOnly(t *testing.T) {
	r := NewRemote("https://example.com", "", "")
	if _, err := r.AddApplication(context.Background(), model.ApplicationRecord{}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := r.AddTimelineEntry(context.Background(), "x", model.TimelineEntry{}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://abc.supabase.co/rest/v1/applications?apikey=secret")
	if got != "https://abc.supabase.co/...(redacted)" {
		t.Fatalf("redactURL = %q", got)
	}
	if redactURL("::::") != "(redacted)" {
		t.Fatalf("unparsable URL should be fully redacted")
	}
}

func TestRemoteKeepsCacheWhenBodyIsNotRecords(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Header().Set("ETag", `"v1"`)
			_, _ = w.Write([]byte(recordsJSON))
		case 2:
			w.Header().Set("ETag", `"portal"`)
			_, _ = w.Write([]byte("<html>captive portal</html>"))
		default:
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "", t.TempDir())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		records, err := r.Applications(ctx)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(records) != 1 || records[0].ID != "a1" {
			t.Fatalf("fetch %d: expected cached record a1, got %+v", i, records)
		}
	}

	meta, err := loadCacheMeta(r.cachePath())
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if meta.ETag != `"v1"` {
		t.Fatalf("cache meta overwritten: etag=%q", meta.ETag)
	}
}

func TestRemoteRejectsNonRecordBodyWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>captive portal</html>"))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "", t.TempDir())
	if _, err := r.Applications(context.Background()); err == nil || !strings.Contains(err.Error(), "decode records") {
		t.Fatalf("expected decode error, got %v", err)
	}
	if _, err := loadCacheMeta(r.cachePath()); err == nil {
		t.Fatalf("invalid body must not be cached")
	}
}
