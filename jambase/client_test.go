package jambase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"jambase_sync/config"
)

func testSource(endpoint string) *config.SourceConfig {
	return &config.SourceConfig{
		ID:            "jambase",
		Name:          "Jambase",
		Endpoint:      endpoint,
		PerPage:       100,
		RetryAttempts: 3,
		RetryBaseMS:   1,
	}
}

func TestFetchPage_Success(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write(loadFixture(t, "events_page.json"))
	}))
	defer srv.Close()

	client := NewClient(testSource(srv.URL), "test-key", srv.Client())

	page, err := client.FetchPage(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(page.Events))
	}
	if page.Events[0].Identifier != "jambase:100" {
		t.Fatalf("unexpected first event %s", page.Events[0].Identifier)
	}
	if page.Pagination.TotalPages != 1 || page.Pagination.TotalItems != 2 {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}

	if gotQuery.Get("apikey") != "test-key" {
		t.Fatalf("unexpected apikey %q", gotQuery.Get("apikey"))
	}
	if gotQuery.Get("expandExternalIdentifiers") != "true" {
		t.Fatal("expected expandExternalIdentifiers=true")
	}
	if gotQuery.Get("perPage") != "100" {
		t.Fatalf("unexpected perPage %q", gotQuery.Get("perPage"))
	}
	if gotQuery.Get("page") != "1" {
		t.Fatalf("unexpected page %q", gotQuery.Get("page"))
	}
	if gotQuery.Has("eventDateModifiedFrom") {
		t.Fatal("expected no modified-since filter on full fetch")
	}
	if client.APICalls() != 1 {
		t.Fatalf("expected 1 API call, got %d", client.APICalls())
	}
}

func TestFetchPage_ModifiedSince(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"success":true,"events":[],"pagination":{"page":3,"totalItems":0,"totalPages":0}}`))
	}))
	defer srv.Close()

	client := NewClient(testSource(srv.URL), "test-key", srv.Client())

	page, err := client.FetchPage(context.Background(), 3, "2024-04-01")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(page.Events) != 0 {
		t.Fatalf("expected empty page, got %d events", len(page.Events))
	}
	if gotQuery.Get("eventDateModifiedFrom") != "2024-04-01" {
		t.Fatalf("unexpected modified-since %q", gotQuery.Get("eventDateModifiedFrom"))
	}
	if gotQuery.Get("page") != "3" {
		t.Fatalf("unexpected page %q", gotQuery.Get("page"))
	}
}

func TestFetchPage_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "upstream busy", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"events":[],"pagination":{"page":1,"totalItems":0,"totalPages":1}}`))
	}))
	defer srv.Close()

	client := NewClient(testSource(srv.URL), "test-key", srv.Client())

	if _, err := client.FetchPage(context.Background(), 1, ""); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if client.APICalls() != 3 {
		t.Fatalf("expected retries counted as API calls, got %d", client.APICalls())
	}
}

func TestFetchPage_Exhausted(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(testSource(srv.URL), "test-key", srv.Client())

	_, err := client.FetchPage(context.Background(), 4, "")
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if !strings.Contains(err.Error(), "page 4 after 3 attempts") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFetchPage_APIFailureFlagRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	client := NewClient(testSource(srv.URL), "test-key", srv.Client())

	_, err := client.FetchPage(context.Background(), 1, "")
	if err == nil {
		t.Fatal("expected an error for success=false")
	}
	if attempts != 3 {
		t.Fatalf("expected success=false to be retried, got %d attempts", attempts)
	}
}

func TestFetchPage_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(testSource(srv.URL), "test-key", srv.Client())
	client.SetRetryPolicy(RetryPolicy{MaxAttempts: 5, BaseDelay: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := client.FetchPage(ctx, 1, "")
	if err == nil {
		t.Fatal("expected an error for cancelled context")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("expected cancellation to short-circuit the retry wait")
	}
}

func TestFetchPage_OnRequestHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"events":[],"pagination":{"page":1,"totalItems":0,"totalPages":1}}`))
	}))
	defer srv.Close()

	client := NewClient(testSource(srv.URL), "test-key", srv.Client())
	calls := 0
	client.OnRequest = func() { calls++ }

	if _, err := client.FetchPage(context.Background(), 1, ""); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected hook to fire once, got %d", calls)
	}
}
