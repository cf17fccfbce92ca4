package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dev-bikash-roy/briloai/internal/reader"
	"github.com/dev-bikash-roy/briloai/internal/release"
)

const (
	KicksOnFireName         = "kicksonfire"
	KicksOnFireBaseURL      = "https://www.kicksonfire.com"
	KicksOnFireCalendarPath = "/sneaker-release-dates"

	defaultDetailConcurrency = 4
)

var detailReleaseDatePattern = regexp.MustCompile(`(?i)Release Date\s*([A-Za-z]{3,9}\s+\d{1,2},\s*\d{4})`)

type KicksOnFireOptions struct {
	Name              string
	BaseURL           string
	CalendarPath      string
	SkipDetails       bool
	DetailConcurrency int
}

// KicksOnFire reads the paginated release calendar and optionally enriches
// each card from its detail page.
type KicksOnFire struct {
	name              string
	base              *url.URL
	calendarPath      string
	skipDetails       bool
	detailConcurrency int
	fetcher           Fetcher
	logger            zerolog.Logger
}

func NewKicksOnFire(fetcher Fetcher, opts KicksOnFireOptions, logger zerolog.Logger) (*KicksOnFire, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	rawBase := firstNonEmpty(opts.BaseURL, KicksOnFireBaseURL)
	base, err := url.Parse(rawBase)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	concurrency := opts.DetailConcurrency
	if concurrency <= 0 {
		concurrency = defaultDetailConcurrency
	}
	name := firstNonEmpty(opts.Name, KicksOnFireName)
	return &KicksOnFire{
		name:              name,
		base:              base,
		calendarPath:      firstNonEmpty(opts.CalendarPath, KicksOnFireCalendarPath),
		skipDetails:       opts.SkipDetails,
		detailConcurrency: concurrency,
		fetcher:           fetcher,
		logger:            logger.With().Str("source", name).Logger(),
	}, nil
}

func (k *KicksOnFire) Name() string {
	return k.name
}

func (k *KicksOnFire) Collect(ctx context.Context, req Request) ([]release.Candidate, error) {
	req = req.withDefaults()

	cards := make([]release.Candidate, 0, req.Limit)
	seen := make(map[string]struct{})
	fetchedAny := false
	var lastErr error

	for page := req.StartPage; page < req.StartPage+req.Pages; page++ {
		pageURL := k.pageURL(page)
		doc, err := k.fetchDocument(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			k.logger.Warn().Err(err).Int("page", page).Msg("calendar page fetch failed")
			continue
		}
		fetchedAny = true

		parsed := ParseKicksOnFireCards(doc, k.base)
		if len(parsed) == 0 {
			break
		}
		for _, card := range parsed {
			if card.URL != "" {
				if _, ok := seen[card.URL]; ok {
					continue
				}
				seen[card.URL] = struct{}{}
			}
			card.Source = k.name
			card.Tag = req.Tag
			cards = append(cards, card)
			if len(cards) >= req.Limit {
				break
			}
		}
		if len(cards) >= req.Limit {
			break
		}
	}

	if !fetchedAny && lastErr != nil {
		return nil, fmt.Errorf("fetch calendar: %w", lastErr)
	}
	if k.skipDetails || len(cards) == 0 {
		return cards, nil
	}
	return k.enrich(ctx, cards), nil
}

func (k *KicksOnFire) pageURL(page int) string {
	u := *k.base
	u.Path = strings.TrimRight(u.Path, "/") + k.calendarPath
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

func (k *KicksOnFire) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	page, err := k.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// enrich visits detail pages concurrently. A failed detail keeps the card.
func (k *KicksOnFire) enrich(ctx context.Context, cards []release.Candidate) []release.Candidate {
	out := make([]release.Candidate, len(cards))
	copy(out, cards)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(k.detailConcurrency)
	for i := range out {
		if out[i].URL == "" {
			continue
		}
		group.Go(func() error {
			page, err := k.fetcher.Fetch(groupCtx, out[i].URL)
			if err != nil {
				k.logger.Debug().Err(err).Str("url", out[i].URL).Msg("detail fetch failed, keeping calendar card")
				return nil
			}
			out[i] = ApplyKicksOnFireDetail(out[i], page)
			return nil
		})
	}
	_ = group.Wait()
	return out
}

// ParseKicksOnFireCards extracts calendar cards. A stamp starting with "$" is
// a price; otherwise it is the date text.
func ParseKicksOnFireCards(doc *goquery.Document, base *url.URL) []release.Candidate {
	cards := make([]release.Candidate, 0)
	seen := make(map[string]struct{})

	doc.Find(".releases-container .release-item-continer").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a.release-item").First()
		if link.Length() == 0 {
			return
		}

		title := collapseSpaces(link.Find(".release-item-title").First().Text())
		if title == "" {
			title = collapseSpaces(link.AttrOr("title", ""))
		}
		if title == "" {
			return
		}

		href, _ := link.Attr("href")
		pageURL := absoluteURL(base, href)
		if pageURL != "" {
			if _, ok := seen[pageURL]; ok {
				return
			}
			seen[pageURL] = struct{}{}
		}

		card := release.Candidate{
			Title: title,
			URL:   pageURL,
			Image: cardImage(link),
		}
		stamp := collapseSpaces(link.Find(".release-price-from").First().Text())
		if strings.HasPrefix(stamp, "$") {
			card.Price = stamp
		} else {
			card.DateText = stamp
		}
		cards = append(cards, card)
	})

	return cards
}

func cardImage(link *goquery.Selection) string {
	if src, ok := link.Find(".release-item-image img").First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	img := link.Find("img").First()
	return firstNonEmpty(img.AttrOr("data-src", ""), img.AttrOr("src", ""))
}

// ApplyKicksOnFireDetail overlays detail page facts onto a calendar card:
// the h1 title, the labelled release date and the first image.
func ApplyKicksOnFireDetail(card release.Candidate, page *reader.Page) release.Candidate {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return card
	}

	if heading := collapseSpaces(doc.Find("h1").First().Text()); heading != "" {
		card.Title = heading
	}

	if dateText := detailReleaseDate(doc, page); dateText != "" {
		card.DateText = dateText
	}

	img := doc.Find("img").First()
	if src := firstNonEmpty(img.AttrOr("src", ""), img.AttrOr("data-src", "")); src != "" {
		card.Image = src
	}
	return card
}

func detailReleaseDate(doc *goquery.Document, page *reader.Page) string {
	if text, err := reader.ReadableText(page); err == nil {
		if m := detailReleaseDatePattern.FindStringSubmatch(collapseSpaces(text)); m != nil {
			return m[1]
		}
	}
	if m := detailReleaseDatePattern.FindStringSubmatch(collapseSpaces(doc.Find("body").Text())); m != nil {
		return m[1]
	}
	return ""
}
