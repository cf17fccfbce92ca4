package release

import (
	"strings"
	"time"

	"github.com/dev-bikash-roy/briloai/internal/releasedate"
	"github.com/dev-bikash-roy/briloai/internal/titles"
)

// SourceTag says which batch a candidate was scraped for.
type SourceTag string

const (
	TagCurrent    SourceTag = "current"
	TagHistorical SourceTag = "historical"
)

// Candidate is one raw scraped listing, before any normalization.
type Candidate struct {
	Title     string    `json:"title"`
	BrandHint string    `json:"brand_hint,omitempty"`
	DateText  string    `json:"date_text,omitempty"`
	URL       string    `json:"url,omitempty"`
	Image     string    `json:"image,omitempty"`
	Price     string    `json:"price,omitempty"`
	Source    string    `json:"source,omitempty"`
	Tag       SourceTag `json:"tag,omitempty"`
}

// Release is a normalized listing. Values are never mutated after creation.
type Release struct {
	Title          string     `json:"title"`
	Brand          *string    `json:"brand"`
	ReleaseInstant *time.Time `json:"release_date"`
	URL            *string    `json:"url"`
	Image          *string    `json:"image"`
	PriceHint      *string    `json:"price_hint,omitempty"`
	Source         string     `json:"source,omitempty"`
}

// NormalizedTitle is the title as used for duplicate detection.
func (r Release) NormalizedTitle() string {
	return titles.Normalize(r.Title)
}

// URLKey returns the URL used for exact duplicate detection, or "".
func (r Release) URLKey() string {
	if r.URL == nil {
		return ""
	}
	return strings.TrimSpace(*r.URL)
}

// BrandName returns the brand or "".
func (r Release) BrandName() string {
	if r.Brand == nil {
		return ""
	}
	return *r.Brand
}

// Normalizer turns candidates into releases.
type Normalizer struct {
	Policy releasedate.Policy
}

func NewNormalizer(policy releasedate.Policy) Normalizer {
	return Normalizer{Policy: policy}
}

// Normalize converts one candidate. It reports false for candidates without a
// usable title. Historical candidates parse their date with historical year
// inference.
func (n Normalizer) Normalize(c Candidate, now time.Time) (Release, bool) {
	title := cleanTitle(c.Title)
	if title == "" || titles.Normalize(title) == "" {
		return Release{}, false
	}

	brand := NormalizeBrand(c.BrandHint)
	if brand == nil {
		brand = NormalizeBrand(title)
	}

	return Release{
		Title:          title,
		Brand:          brand,
		ReleaseInstant: n.Policy.NormalizeDate(c.DateText, c.Tag == TagHistorical, now),
		URL:            nullableString(c.URL),
		Image:          normalizeImageURL(c.Image),
		PriceHint:      nullableString(c.Price),
		Source:         strings.TrimSpace(c.Source),
	}, true
}

// NormalizeAll converts a batch, dropping candidates without a usable title.
func (n Normalizer) NormalizeAll(candidates []Candidate, now time.Time) []Release {
	out := make([]Release, 0, len(candidates))
	for _, c := range candidates {
		r, ok := n.Normalize(c, now)
		if !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

func cleanTitle(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func nullableString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeImageURL turns protocol-relative image references into https URLs.
func normalizeImageURL(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "//") {
		trimmed = "https:" + trimmed
	}
	return &trimmed
}
