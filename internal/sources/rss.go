package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/dev-bikash-roy/briloai/internal/release"
)

// RSS reads release posts from an RSS or Atom feed. A "Release Date" label in
// the item text wins over the publish date.
type RSS struct {
	name    string
	feedURL string
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewRSS(fetcher Fetcher, name, feedURL string, logger zerolog.Logger) (*RSS, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("feed name is required")
	}
	if strings.TrimSpace(feedURL) == "" {
		return nil, fmt.Errorf("feed url is required")
	}
	return &RSS{
		name:    strings.TrimSpace(name),
		feedURL: strings.TrimSpace(feedURL),
		fetcher: fetcher,
		logger:  logger.With().Str("source", name).Logger(),
	}, nil
}

func (r *RSS) Name() string {
	return r.name
}

func (r *RSS) Collect(ctx context.Context, req Request) ([]release.Candidate, error) {
	req = req.withDefaults()

	page, err := r.fetcher.Fetch(ctx, r.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]release.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		candidate, ok := FeedItemCandidate(item)
		if !ok {
			continue
		}
		candidate.Source = r.name
		candidate.Tag = req.Tag
		out = append(out, candidate)
		if len(out) >= req.Limit {
			break
		}
	}
	r.logger.Debug().Int("items", len(feed.Items)).Int("candidates", len(out)).Msg("parsed feed")
	return out, nil
}

// FeedItemCandidate maps one feed item.
func FeedItemCandidate(item *gofeed.Item) (release.Candidate, bool) {
	if item == nil {
		return release.Candidate{}, false
	}
	title := collapseSpaces(item.Title)
	if title == "" {
		return release.Candidate{}, false
	}

	text := collapseSpaces(item.Description + " " + item.Content)
	candidate := release.Candidate{
		Title: title,
		URL:   strings.TrimSpace(item.Link),
		Image: feedItemImage(item),
	}
	if m := detailReleaseDatePattern.FindStringSubmatch(text); m != nil {
		candidate.DateText = m[1]
	} else if item.PublishedParsed != nil {
		candidate.DateText = item.PublishedParsed.UTC().Format("2006-01-02")
	} else if item.UpdatedParsed != nil {
		candidate.DateText = item.UpdatedParsed.UTC().Format("2006-01-02")
	}
	if m := titlePricePattern.FindStringSubmatch(title + " " + text); m != nil {
		candidate.Price = "$" + m[1]
	}
	return candidate, true
}

func feedItemImage(item *gofeed.Item) string {
	if item.Image != nil && strings.TrimSpace(item.Image.URL) != "" {
		return strings.TrimSpace(item.Image.URL)
	}
	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}
		if strings.HasPrefix(enclosure.Type, "image/") && strings.TrimSpace(enclosure.URL) != "" {
			return strings.TrimSpace(enclosure.URL)
		}
	}
	return ""
}
