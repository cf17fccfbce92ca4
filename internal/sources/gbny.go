package sources

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/dev-bikash-roy/briloai/internal/reader"
	"github.com/dev-bikash-roy/briloai/internal/release"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
	"github.com/dev-bikash-roy/briloai/internal/titles"
)

const (
	GBNYName        = "gbny"
	GBNYUpcomingURL = "https://gbny.com/pages/upcoming"
)

var (
	gbnyPricePattern = regexp.MustCompile(`\$\s*\d+`)
	// "NOV 7 Friday, 10:00 AM Nike Air ... - Men's IB0497-001 $170"
	gbnyDatedLinePattern = regexp.MustCompile(`^([A-Za-z]{3,9})\s+(\d{1,2})\s+[A-Za-z]+day,\s*\d{1,2}:\d{2}\s*[AaPp][Mm]\s+(.+?)\s*\$\s*(\d+)`)
	// "NOV 7" or "NOV 7 Friday" on a line of its own.
	gbnyDateHeaderPattern = regexp.MustCompile(`^([A-Za-z]{3,9})\s+(\d{1,2})(?:\s+[A-Za-z]+day)?$`)
	gbnyProductPattern    = regexp.MustCompile(`(?i)(Nike|Air Jordan|Jordan|Adidas|New Balance|Asics|Puma|Reebok|Converse|Saucony|Vans|Balenciaga|Bape|Under Armour)(.+?)\$\s*(\d+)`)
)

// GBNY reads the store's upcoming releases page, which is plain text lines
// rather than structured cards.
type GBNY struct {
	name    string
	pageURL string
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewGBNY(fetcher Fetcher, name, pageURL string, logger zerolog.Logger) (*GBNY, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	name = firstNonEmpty(name, GBNYName)
	return &GBNY{
		name:    name,
		pageURL: firstNonEmpty(pageURL, GBNYUpcomingURL),
		fetcher: fetcher,
		logger:  logger.With().Str("source", name).Logger(),
	}, nil
}

func (g *GBNY) Name() string {
	return g.name
}

func (g *GBNY) Collect(ctx context.Context, req Request) ([]release.Candidate, error) {
	req = req.withDefaults()

	page, err := g.fetcher.Fetch(ctx, g.pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch upcoming page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	candidates := ParseGBNYLines(reader.Lines(doc.Find("body").Text()), g.pageURL)
	if len(candidates) > req.Limit {
		candidates = candidates[:req.Limit]
	}
	for i := range candidates {
		candidates[i].Source = g.name
		candidates[i].Tag = req.Tag
	}
	g.logger.Debug().Int("candidates", len(candidates)).Msg("parsed upcoming page")
	return candidates, nil
}

// ParseGBNYLines turns page lines into candidates. A standalone date line
// applies to the product lines below it until the next date line.
func ParseGBNYLines(lines []string, pageURL string) []release.Candidate {
	out := make([]release.Candidate, 0)
	currentDate := ""

	for _, line := range lines {
		if m := gbnyDateHeaderPattern.FindStringSubmatch(line); m != nil {
			if _, ok := releasedate.MonthNumber(m[1]); ok {
				currentDate = m[1] + " " + m[2]
			}
			continue
		}
		if !gbnyPricePattern.MatchString(line) {
			continue
		}

		if m := gbnyDatedLinePattern.FindStringSubmatch(line); m != nil {
			if _, ok := releasedate.MonthNumber(m[1]); ok {
				title := productTitle(m[3])
				out = append(out, gbnyCandidate(title, m[1]+" "+m[2], "$"+m[4], pageURL))
				continue
			}
		}

		if m := gbnyProductPattern.FindStringSubmatch(line); m != nil {
			title := productTitle(m[1] + " " + m[2])
			out = append(out, gbnyCandidate(title, currentDate, "$"+m[3], pageURL))
		}
	}
	return out
}

func productTitle(raw string) string {
	return strings.TrimSpace(strings.TrimRight(collapseSpaces(raw), "- "))
}

func gbnyCandidate(title, dateText, price, pageURL string) release.Candidate {
	return release.Candidate{
		Title:    title,
		DateText: dateText,
		Price:    price,
		URL:      itemURL(pageURL, title),
	}
}

// itemURL gives each product on a shared page its own URL so exact URL
// duplicate detection does not collapse distinct products.
func itemURL(pageURL, title string) string {
	slug := strings.ReplaceAll(titles.Normalize(title), " ", "-")
	if slug == "" {
		return pageURL
	}
	return pageURL + "#" + slug
}
