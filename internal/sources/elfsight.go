package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/dev-bikash-roy/briloai/internal/release"
)

const (
	ElfsightName     = "elfsight"
	ElfsightBootURL  = "https://core.service.elfsight.com/p/boot/"
	ElfsightWidgetID = "484318bf-f059-4367-8e84-a6481c2be688"
)

var (
	trailingPricePattern = regexp.MustCompile(`\s*\$\d+$`)
	titlePricePattern    = regexp.MustCompile(`\$(\d+)`)
)

type elfsightBoot struct {
	Data struct {
		Widgets map[string]struct {
			Data struct {
				Settings struct {
					Events []map[string]any `json:"events"`
				} `json:"settings"`
			} `json:"data"`
		} `json:"widgets"`
	} `json:"data"`
}

// Elfsight reads events from an embedded event calendar widget.
type Elfsight struct {
	name     string
	bootURL  string
	widgetID string
	fetcher  Fetcher
	logger   zerolog.Logger
}

func NewElfsight(fetcher Fetcher, name, bootURL, widgetID string, logger zerolog.Logger) (*Elfsight, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	name = firstNonEmpty(name, ElfsightName)
	return &Elfsight{
		name:     name,
		bootURL:  firstNonEmpty(bootURL, ElfsightBootURL),
		widgetID: firstNonEmpty(widgetID, ElfsightWidgetID),
		fetcher:  fetcher,
		logger:   logger.With().Str("source", name).Logger(),
	}, nil
}

func (e *Elfsight) Name() string {
	return e.name
}

func (e *Elfsight) Collect(ctx context.Context, req Request) ([]release.Candidate, error) {
	req = req.withDefaults()

	endpoint, err := url.Parse(e.bootURL)
	if err != nil {
		return nil, fmt.Errorf("parse boot url: %w", err)
	}
	q := endpoint.Query()
	q.Set("w", e.widgetID)
	endpoint.RawQuery = q.Encode()

	page, err := e.fetcher.Fetch(ctx, endpoint.String())
	if err != nil {
		return nil, fmt.Errorf("fetch widget settings: %w", err)
	}

	events, err := ParseElfsightEvents(page.Body, e.widgetID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		e.logger.Warn().Msg("widget returned no events")
	}

	out := make([]release.Candidate, 0, len(events))
	for _, event := range events {
		candidate, ok := ElfsightCandidate(event)
		if !ok {
			continue
		}
		candidate.Source = e.name
		candidate.Tag = req.Tag
		out = append(out, candidate)
		if len(out) >= req.Limit {
			break
		}
	}
	return out, nil
}

// ParseElfsightEvents extracts the events array of one widget from a boot
// response.
func ParseElfsightEvents(body []byte, widgetID string) ([]map[string]any, error) {
	var boot elfsightBoot
	if err := json.Unmarshal(body, &boot); err != nil {
		return nil, fmt.Errorf("decode widget response: %w", err)
	}
	widget, ok := boot.Data.Widgets[widgetID]
	if !ok {
		return nil, fmt.Errorf("widget %s not found in response", widgetID)
	}
	return widget.Data.Settings.Events, nil
}

// ElfsightCandidate maps one widget event. Events without a title or brand
// are skipped.
func ElfsightCandidate(event map[string]any) (release.Candidate, bool) {
	title := firstString(event, "title", "name", "productName", "headline")
	title = strings.TrimSpace(trailingPricePattern.ReplaceAllString(title, ""))
	brand := firstString(event, "brand", "brandName", "manufacturer")
	if title == "" && brand == "" {
		return release.Candidate{}, false
	}

	return release.Candidate{
		Title:     title,
		BrandHint: brand,
		DateText:  elfsightDate(event),
		URL:       firstString(event, "link"),
		Image:     elfsightImage(event["image"]),
		Price:     elfsightPrice(event),
	}, true
}

func firstString(event map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := event[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// elfsightDate renders the first usable date field as YYYY-MM-DD. Unparseable
// strings pass through for the date normalizer to try.
func elfsightDate(event map[string]any) string {
	for _, key := range []string{"date", "releaseDate", "launchDate", "startDate", "dateTime", "start"} {
		value, ok := event[key]
		if !ok || value == nil {
			continue
		}
		if text := dateValueText(value); text != "" {
			return text
		}
	}
	return ""
}

func dateValueText(value any) string {
	switch v := value.(type) {
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return ""
		}
		parsed, err := dateparse.ParseIn(raw, time.UTC)
		if err != nil {
			return raw
		}
		return parsed.UTC().Format("2006-01-02")
	case float64:
		if v <= 0 {
			return ""
		}
		return time.UnixMilli(int64(v)).UTC().Format("2006-01-02")
	case map[string]any:
		for _, key := range []string{"date", "start"} {
			if nested, ok := v[key]; ok {
				if text := dateValueText(nested); text != "" {
					return text
				}
			}
		}
	}
	return ""
}

func elfsightImage(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if src, ok := v["url"].(string); ok {
			return strings.TrimSpace(src)
		}
	case []any:
		if len(v) > 0 {
			return elfsightImage(v[0])
		}
	}
	return ""
}

func elfsightPrice(event map[string]any) string {
	for _, key := range []string{"price", "pricing", "cost", "officialPricing", "retailPrice"} {
		switch v := event[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			if v > 0 {
				return fmt.Sprintf("$%g", v)
			}
		}
	}
	title := firstString(event, "title", "name")
	if m := titlePricePattern.FindStringSubmatch(title); m != nil {
		return "$" + m[1]
	}
	return ""
}
