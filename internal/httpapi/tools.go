package httpapi

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dev-bikash-roy/briloai/internal/feed"
	"github.com/dev-bikash-roy/briloai/internal/globaltime"
	"github.com/dev-bikash-roy/briloai/internal/merge"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
	payloadschema "github.com/dev-bikash-roy/briloai/schema"
)

var errMustBeRFC3339 = errors.New("must be an RFC3339 timestamp")

type normalizeDateResponse struct {
	Text        string     `json:"text"`
	Historical  bool       `json:"historical"`
	ReleaseDate *time.Time `json:"release_date"`
	Now         time.Time  `json:"now"`
}

type windowResponse struct {
	releasedate.Window
	Description string    `json:"description"`
	Now         time.Time `json:"now"`
}

func (s *Server) handleNormalizeDate(c echo.Context) error {
	fieldErrors := map[string]string{}
	text := strings.TrimSpace(c.QueryParam("text"))
	if text == "" {
		fieldErrors["text"] = "is required"
	}
	historical, err := parseBool(c.QueryParam("historical"))
	if err != nil {
		fieldErrors["historical"] = err.Error()
	}
	now, err := parseNowParam(c.QueryParam("now"))
	if err != nil {
		fieldErrors["now"] = err.Error()
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	return success(c, normalizeDateResponse{
		Text:        text,
		Historical:  historical,
		ReleaseDate: s.opts.Policy.NormalizeDate(text, historical, now),
		Now:         now,
	})
}

func (s *Server) handleWindow(c echo.Context) error {
	now, err := parseNowParam(c.QueryParam("now"))
	if err != nil {
		return failValidation(c, map[string]string{"now": err.Error()})
	}

	var weeksBack any
	if raw := strings.TrimSpace(c.QueryParam("weeks_back")); raw != "" {
		weeksBack = raw
	}
	window := releasedate.ComputeWindow(weeksBack, now)
	return success(c, windowResponse{
		Window:      window,
		Description: window.Description(),
		Now:         now,
	})
}

// handleMerge normalizes and merges two caller-supplied candidate batches.
func (s *Server) handleMerge(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return failValidation(c, map[string]string{"body": "could not be read"})
	}
	req, err := payloadschema.ValidateMergeRequest(raw)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	result := feed.MergeBatches(s.opts.Policy, req.Current, req.Historical, merge.Options{
		IncludeHistorical: req.Options.IncludeHistorical,
		HistoricalOnly:    req.Options.HistoricalOnly,
		Limit:             req.Options.Limit,
		WeeksBack:         releasedate.CoerceWeeksBack(req.Options.WeeksBack),
		Matcher:           s.opts.Matcher,
	}, req.NowOr(globaltime.UTC()))
	return success(c, result)
}

func parseNowParam(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return globaltime.UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, errMustBeRFC3339
	}
	return ts.UTC(), nil
}
