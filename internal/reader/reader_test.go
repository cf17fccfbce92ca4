package reader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestCleanTextCollapsesWhitespaceAndPreservesParagraphs(t *testing.T) {
	input := "  First   paragraph \n\n Second\tparagraph \r\n\r\nThird line "
	got := CleanText(input)
	want := "First paragraph\n\nSecond paragraph\n\nThird line"
	if got != want {
		t.Fatalf("CleanText mismatch\nwant: %q\ngot:  %q", want, got)
	}
}

func TestLines(t *testing.T) {
	got := Lines("  NOV 7 \n\n\tNike   Air Max 1 $150\r\n")
	if len(got) != 2 || got[0] != "NOV 7" || got[1] != "Nike Air Max 1 $150" {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("unexpected user agent: %q", got)
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(FetchOptions{
		Retries:      2,
		RetryBackoff: time.Millisecond,
		UserAgent:    "test-agent",
	})
	page, err := fetcher.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if string(page.Body) != "hello" {
		t.Fatalf("unexpected body: %q", page.Body)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}

	text, err := ReadableText(page)
	if err != nil || text != "hello" {
		t.Fatalf("unexpected plain text extraction: %q %v", text, err)
	}
}

func TestFetcherDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewFetcher(FetchOptions{Retries: 3, RetryBackoff: time.Millisecond})
	_, err := fetcher.Fetch(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestFetcherRejectsEmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := NewFetcher(FetchOptions{}).Fetch(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
