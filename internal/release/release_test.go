package release

import (
	"testing"
	"time"

	"github.com/dev-bikash-roy/briloai/internal/releasedate"
)

func TestNormalizeBrand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{input: "Air Jordan 4 Retro White Cement", want: "Jordan"},
		{input: "Jordan 1 Low OG", want: "Jordan"},
		{input: "Nike Air Jordan 1 High", want: "Jordan"},
		{input: "Nike Dunk Low Panda", want: "Nike"},
		{input: "adidas Samba OG", want: "Adidas"},
		{input: "New Balance 990v6", want: "New Balance"},
		{input: "ASICS GEL-1130", want: "Asics"},
		{input: "Under Armour Curry 12", want: "Under Armour"},
		{input: "Bape Sta", want: "Bape"},
	}
	for _, tc := range cases {
		got := NormalizeBrand(tc.input)
		if got == nil || *got != tc.want {
			t.Fatalf("unexpected brand for %q: %v", tc.input, got)
		}
	}

	if got := NormalizeBrand("Salomon XT-6"); got != nil {
		t.Fatalf("did not expect brand for unknown title, got %q", *got)
	}
	if got := NormalizeBrand("Michael Jordan biography"); got != nil {
		t.Fatalf("did not expect brand for non-leading jordan, got %q", *got)
	}
	if len(Brands()) != 13 {
		t.Fatalf("unexpected brand vocabulary size: %d", len(Brands()))
	}
}

func TestNormalizerNormalize(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 1, 10, 0, 0, 0, time.UTC)
	n := NewNormalizer(releasedate.DefaultPolicy())

	got, ok := n.Normalize(Candidate{
		Title:     "  Air Jordan 4   Retro  ",
		BrandHint: "",
		DateText:  "Dec 20",
		URL:       "https://www.kicksonfire.com/air-jordan-4",
		Image:     "//images.example.com/aj4.jpg",
		Price:     "$215",
		Source:    "kicksonfire",
		Tag:       TagCurrent,
	}, now)
	if !ok {
		t.Fatalf("expected candidate to normalize")
	}
	if got.Title != "Air Jordan 4 Retro" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if got.BrandName() != "Jordan" {
		t.Fatalf("unexpected brand: %q", got.BrandName())
	}
	if got.ReleaseInstant == nil || !got.ReleaseInstant.Equal(time.Date(2025, time.December, 20, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected release instant: %v", got.ReleaseInstant)
	}
	if got.Image == nil || *got.Image != "https://images.example.com/aj4.jpg" {
		t.Fatalf("unexpected image: %v", got.Image)
	}
	if got.PriceHint == nil || *got.PriceHint != "$215" {
		t.Fatalf("unexpected price hint: %v", got.PriceHint)
	}
}

func TestNormalizerUsesHistoricalInferenceForHistoricalTag(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 1, 10, 0, 0, 0, time.UTC)
	n := NewNormalizer(releasedate.DefaultPolicy())

	current, _ := n.Normalize(Candidate{Title: "Nike Dunk Low", DateText: "Oct 20", Tag: TagCurrent}, now)
	historical, _ := n.Normalize(Candidate{Title: "Nike Dunk Low", DateText: "Oct 20", Tag: TagHistorical}, now)

	if current.ReleaseInstant == nil || current.ReleaseInstant.Year() != 2026 {
		t.Fatalf("expected current candidate to roll forward, got %v", current.ReleaseInstant)
	}
	if historical.ReleaseInstant == nil || historical.ReleaseInstant.Year() != 2025 {
		t.Fatalf("expected historical candidate to stay in 2025, got %v", historical.ReleaseInstant)
	}
}

func TestNormalizerDropsUnusableTitles(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 1, 10, 0, 0, 0, time.UTC)
	n := NewNormalizer(releasedate.DefaultPolicy())

	out := n.NormalizeAll([]Candidate{
		{Title: ""},
		{Title: "   "},
		{Title: "!!!"},
		{Title: "Vans Old Skool", DateText: "garbage"},
	}, now)
	if len(out) != 1 {
		t.Fatalf("expected one usable release, got %d", len(out))
	}
	if out[0].ReleaseInstant != nil {
		t.Fatalf("expected unparseable date to be nil")
	}
	if out[0].URL != nil {
		t.Fatalf("expected empty url to be nil")
	}
}

func TestFilterByBrand(t *testing.T) {
	t.Parallel()

	nike := "Nike"
	jordan := "Jordan"
	releases := []Release{
		{Title: "a", Brand: &nike},
		{Title: "b", Brand: &jordan},
		{Title: "c"},
	}

	got := FilterByBrand(releases, " NIK ")
	if len(got) != 1 || got[0].Title != "a" {
		t.Fatalf("unexpected brand filter result: %+v", got)
	}
	if got := FilterByBrand(releases, ""); len(got) != 3 {
		t.Fatalf("expected empty filter to keep all releases, got %d", len(got))
	}
}
