package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dev-bikash-roy/briloai/internal/feed"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
)

const maxParamValue = 1_000_000

// handleReleases serves the legacy feed contract: {results, meta} on
// success and {error} otherwise. Unparseable numbers fall back to defaults.
func (s *Server) handleReleases(c echo.Context) error {
	params, err := requestParams(c)
	if err != nil {
		return legacyError(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	q := feed.Query{
		Brand:             paramString(params, "brand"),
		Time:              paramString(params, "time"),
		Limit:             lenientInt(paramString(params, "limit")),
		StartPage:         lenientInt(paramString(params, "page")),
		Pages:             lenientInt(paramString(params, "pages")),
		IncludeHistorical: lenientBool(paramString(params, "include_historical", "includeHistorical")),
		HistoricalOnly:    lenientBool(paramString(params, "historical_only", "historicalOnly")),
		WeeksBack:         weeksBackParam(params),
	}

	payload, err := s.feed.Releases(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, feed.ErrInvalidQuery) {
			return legacyError(c, http.StatusBadRequest, err.Error(), nil)
		}
		s.logger.Error().Err(err).Msg("release feed failed")
		return legacyError(c, http.StatusInternalServerError, "Failed to fetch releases", nil)
	}
	return c.JSON(http.StatusOK, payload)
}

// handleReleasesV1 is the strict jsend variant of the feed.
func (s *Server) handleReleasesV1(c echo.Context) error {
	fieldErrors := map[string]string{}
	q := feed.Query{
		Brand: c.QueryParam("brand"),
		Time:  c.QueryParam("time"),
	}

	var err error
	if q.Limit, err = parsePositiveInt(c.QueryParam("limit"), 0, 1, maxParamValue); err != nil {
		fieldErrors["limit"] = err.Error()
	}
	if q.StartPage, err = parsePositiveInt(c.QueryParam("page"), 1, 1, maxParamValue); err != nil {
		fieldErrors["page"] = err.Error()
	}
	if q.Pages, err = parsePositiveInt(c.QueryParam("pages"), 0, 1, maxParamValue); err != nil {
		fieldErrors["pages"] = err.Error()
	}
	if q.IncludeHistorical, err = parseBool(c.QueryParam("include_historical")); err != nil {
		fieldErrors["include_historical"] = err.Error()
	}
	if q.HistoricalOnly, err = parseBool(c.QueryParam("historical_only")); err != nil {
		fieldErrors["historical_only"] = err.Error()
	}
	if raw := strings.TrimSpace(c.QueryParam("weeks_back")); raw != "" {
		if q.WeeksBack, err = parsePositiveInt(raw, 0, 1, maxParamValue); err != nil {
			fieldErrors["weeks_back"] = err.Error()
		}
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	payload, err := s.feed.Releases(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, feed.ErrInvalidQuery) {
			return failValidation(c, map[string]string{"time": err.Error()})
		}
		s.logger.Error().Err(err).Msg("release feed failed")
		return internalError(c, "Failed to fetch releases")
	}
	return success(c, payload)
}

// requestParams merges query parameters with a JSON body. A body of the form
// {"parameters": {...}} contributes its inner object; any other object is
// used as is. Body values win over query values.
func requestParams(c echo.Context) (map[string]any, error) {
	params := map[string]any{}
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	if c.Request().Method != http.MethodPost || c.Request().Body == nil {
		return params, nil
	}
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return params, nil
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if inner, ok := body["parameters"].(map[string]any); ok {
		body = inner
	}
	for key, value := range body {
		params[key] = value
	}
	return params, nil
}

// paramString returns the first present key rendered as a string.
func paramString(params map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := params[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			return strings.TrimSpace(v)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		default:
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

func weeksBackParam(params map[string]any) int {
	for _, key := range []string{"weeks_back", "weeksBack"} {
		if value, ok := params[key]; ok && value != nil {
			return releasedate.CoerceWeeksBack(value)
		}
	}
	return 0
}

// lenientInt parses a leading integer; anything else is zero so the feed
// applies its default.
func lenientInt(raw string) int {
	value, err := strconv.Atoi(raw)
	if err == nil {
		return value
	}
	if f, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
		return int(f)
	}
	return 0
}

func lenientBool(raw string) bool {
	value, err := parseBool(raw)
	return err == nil && value
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return false, nil
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("must be a boolean")
	}
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
