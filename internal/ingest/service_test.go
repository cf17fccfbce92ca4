package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dev-bikash-roy/briloai/internal/db"
	"github.com/dev-bikash-roy/briloai/internal/release"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
)

type fakeStore struct {
	runs      map[int64]string
	upserted  []db.ArchiveRow
	upsertErr error
	failedMsg string
	completed bool
	listed    []db.ArchivedRelease
	listStart time.Time
	listEnd   time.Time
	listLimit int
	runUUID   string
}

func (f *fakeStore) InsertScrapeRun(_ context.Context, runUUID, source string, _ time.Time) (int64, error) {
	if f.runs == nil {
		f.runs = map[int64]string{}
	}
	f.runUUID = runUUID
	f.runs[7] = source
	return 7, nil
}

func (f *fakeStore) CompleteScrapeRun(_ context.Context, runID int64, _, _ int, _ time.Time) error {
	if runID != 7 {
		return errors.New("unknown run")
	}
	f.completed = true
	return nil
}

func (f *fakeStore) FailScrapeRun(_ context.Context, _ int64, message string, _ time.Time) error {
	f.failedMsg = message
	return nil
}

func (f *fakeStore) UpsertArchivedReleases(_ context.Context, _ string, rows []db.ArchiveRow, _ time.Time) (int64, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = append(f.upserted, rows...)
	return int64(len(rows)), nil
}

func (f *fakeStore) ListArchivedReleases(_ context.Context, start, end time.Time, limit int) ([]db.ArchivedRelease, error) {
	f.listStart, f.listEnd, f.listLimit = start, end, limit
	return f.listed, nil
}

func strPtr(v string) *string { return &v }

func TestArchiveReleasesSkipsReleasesWithoutURL(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := NewService(store, zerolog.Nop())
	when := time.Date(2025, time.October, 20, 12, 0, 0, 0, time.UTC)

	res, err := svc.ArchiveReleases(context.Background(), "kicksonfire", []release.Release{
		{Title: "Air Jordan 4 Rare Air", URL: strPtr("https://example.com/aj4"), ReleaseInstant: &when, Brand: strPtr("Jordan")},
		{Title: "No link release"},
	})
	if err != nil {
		t.Fatalf("unexpected archive error: %v", err)
	}
	if res.Seen != 2 || res.Archived != 1 || res.Status != "completed" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := uuid.Parse(res.RunUUID); err != nil || res.RunUUID != store.runUUID {
		t.Fatalf("expected a generated run uuid, got %q", res.RunUUID)
	}
	if !store.completed {
		t.Fatalf("expected run to be completed")
	}
	if len(store.upserted) != 1 {
		t.Fatalf("expected one archived row, got %d", len(store.upserted))
	}
	row := store.upserted[0]
	if row.Source != "kicksonfire" || row.NormalizedTitle != "air jordan 4 rare air" {
		t.Fatalf("unexpected archived row: %+v", row)
	}
}

func TestArchiveReleasesMarksRunFailed(t *testing.T) {
	t.Parallel()

	store := &fakeStore{upsertErr: errors.New("connection reset")}
	svc := NewService(store, zerolog.Nop())

	_, err := svc.ArchiveReleases(context.Background(), "gbny", []release.Release{
		{Title: "Nike Air Max 1", URL: strPtr("https://example.com/am1")},
	})
	if err == nil {
		t.Fatalf("expected archive error")
	}
	if !strings.Contains(store.failedMsg, "connection reset") {
		t.Fatalf("expected run failure to be recorded, got %q", store.failedMsg)
	}
	if store.completed {
		t.Fatalf("did not expect run to be completed")
	}
}

func TestArchiveReleasesRequiresSource(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeStore{}, zerolog.Nop())
	if _, err := svc.ArchiveReleases(context.Background(), "  ", nil); err == nil {
		t.Fatalf("expected error for empty source")
	}

	var nilSvc *Service
	if _, err := nilSvc.ArchiveReleases(context.Background(), "x", nil); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestListBetweenConvertsRows(t *testing.T) {
	t.Parallel()

	when := time.Date(2025, time.October, 25, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{listed: []db.ArchivedRelease{
		{URL: "https://example.com/a", Title: "Nike Dunk Low", Brand: strPtr("Nike"), ReleaseAt: &when, ImageURL: strPtr(" "), Source: "kicksonfire"},
	}}
	svc := NewService(store, zerolog.Nop())
	window := releasedate.ComputeWindow(2, time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC))

	got, err := svc.ListBetween(context.Background(), window, 0)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if store.listLimit != defaultHistoryLimit || !store.listStart.Equal(window.Start) || !store.listEnd.Equal(window.End) {
		t.Fatalf("unexpected list arguments: %v %v %d", store.listStart, store.listEnd, store.listLimit)
	}
	if len(got) != 1 {
		t.Fatalf("expected one release, got %d", len(got))
	}
	r := got[0]
	if r.URLKey() != "https://example.com/a" || r.BrandName() != "Nike" || r.Image != nil {
		t.Fatalf("unexpected release: %+v", r)
	}
	if r.ReleaseInstant == nil || !r.ReleaseInstant.Equal(when) {
		t.Fatalf("unexpected release instant: %v", r.ReleaseInstant)
	}
}
