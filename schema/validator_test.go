package payloadschema

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dev-bikash-roy/briloai/internal/release"
)

func TestValidateCandidateBatch_Valid(t *testing.T) {
	payload := json.RawMessage(`[
		{
			"title":"Air Jordan 4 Rare Air",
			"brand_hint":"Jordan",
			"date_text":"Sep 13",
			"url":"https://www.kicksonfire.com/air-jordan-4-rare-air",
			"image":"//cdn.example.com/aj4.jpg",
			"price":"$215",
			"source":"kicksonfire",
			"tag":"current"
		},
		{"title":"Nike Dunk Low Panda"}
	]`)

	batch, err := ValidateCandidateBatch(payload)
	if err != nil {
		t.Fatalf("expected batch to be valid, got error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(batch))
	}
	if batch[0].Tag != release.TagCurrent || batch[0].Price != "$215" {
		t.Fatalf("unexpected first candidate: %+v", batch[0])
	}
}

func TestValidateCandidateBatch_MissingTitle(t *testing.T) {
	_, err := ValidateCandidateBatch(json.RawMessage(`[{"date_text":"Nov 7"}]`))
	if err == nil {
		t.Fatalf("expected validation to fail for missing title")
	}
}

func TestValidateCandidateBatch_WhitespaceTitle(t *testing.T) {
	_, err := ValidateCandidateBatch(json.RawMessage(`[{"title":"Ok"},{"title":"   "}]`))
	if err == nil {
		t.Fatalf("expected validation to fail for whitespace-only title")
	}
	if !strings.Contains(err.Error(), "[1].title must not be empty") {
		t.Fatalf("expected title semantic error, got: %v", err)
	}
}

func TestValidateCandidateBatch_RejectsUnknownFieldsAndTags(t *testing.T) {
	if _, err := ValidateCandidateBatch(json.RawMessage(`[{"title":"Nike","release":"soon"}]`)); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
	if _, err := ValidateCandidateBatch(json.RawMessage(`[{"title":"Nike","tag":"archive"}]`)); err == nil {
		t.Fatalf("expected unknown tag to be rejected")
	}
	if _, err := ValidateCandidateBatch(json.RawMessage(`{"title":"Nike"}`)); err == nil {
		t.Fatalf("expected non-array batch to be rejected")
	}
}

func TestValidateCandidateBatch_InvalidURL(t *testing.T) {
	_, err := ValidateCandidateBatch(json.RawMessage(`[{"title":"Nike Air Max 1","url":"not a url"}]`))
	if err == nil {
		t.Fatalf("expected invalid url to be rejected")
	}
	if !strings.Contains(err.Error(), "[0].url") {
		t.Fatalf("expected url error, got: %v", err)
	}
}

func TestValidateCandidateBatch_TrailingContent(t *testing.T) {
	_, err := ValidateCandidateBatch(json.RawMessage(`[{"title":"Nike"}] []`))
	if err == nil {
		t.Fatalf("expected trailing content to be rejected")
	}
	if !strings.Contains(err.Error(), "trailing content") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCandidateBatch_Empty(t *testing.T) {
	if _, err := ValidateCandidateBatch(json.RawMessage("  ")); err == nil {
		t.Fatalf("expected empty payload to be rejected")
	}
}

func TestValidateMergeRequest_Valid(t *testing.T) {
	payload := json.RawMessage(`{
		"current":[{"title":"Nike Vomero 5","date_text":"Nov 8","url":"https://example.com/vomero"}],
		"historical":[{"title":"Adidas Samba OG","date_text":"Oct 25","tag":"historical"}],
		"options":{"include_historical":true,"limit":10,"weeks_back":"3","now":"2025-11-01T12:00:00Z"}
	}`)

	req, err := ValidateMergeRequest(payload)
	if err != nil {
		t.Fatalf("expected merge request to be valid, got error: %v", err)
	}
	if len(req.Current) != 1 || len(req.Historical) != 1 {
		t.Fatalf("unexpected batches: %+v", req)
	}
	if !req.Options.IncludeHistorical || req.Options.Limit != 10 || req.Options.WeeksBack != "3" {
		t.Fatalf("unexpected options: %+v", req.Options)
	}
	want := time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)
	if got := req.NowOr(time.Time{}); !got.Equal(want) {
		t.Fatalf("unexpected now: %v", got)
	}
}

func TestValidateMergeRequest_NumericWeeksBack(t *testing.T) {
	req, err := ValidateMergeRequest(json.RawMessage(`{"options":{"weeks_back":2.7}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := req.Options.WeeksBack.(float64); !ok || v != 2.7 {
		t.Fatalf("unexpected weeks_back: %#v", req.Options.WeeksBack)
	}
	fallback := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if got := req.NowOr(fallback); !got.Equal(fallback) {
		t.Fatalf("expected fallback now, got %v", got)
	}
}

func TestValidateMergeRequest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "negative limit", payload: `{"options":{"limit":-1}}`, want: "schema validation failed"},
		{name: "bad now", payload: `{"options":{"now":"yesterday"}}`, want: "options.now must be RFC3339"},
		{name: "unknown option", payload: `{"options":{"sort":"asc"}}`, want: "schema validation failed"},
		{name: "blank historical title", payload: `{"historical":[{"title":" "}]}`, want: "historical[0].title"},
		{name: "weeks back object", payload: `{"options":{"weeks_back":{"n":2}}}`, want: "schema validation failed"},
	}

	for _, tt := range tests {
		_, err := ValidateMergeRequest(json.RawMessage(tt.payload))
		if err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
	}
}
