package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dev-bikash-roy/briloai/internal/release"
)

//go:embed candidate_batch.schema.json
var candidateBatchSchemaJSON string

//go:embed merge_request.schema.json
var mergeRequestSchemaJSON string

// MergeOptions mirrors merge.Options on the wire. WeeksBack stays untyped so
// strings and fractional values reach the week-count coercion unchanged.
type MergeOptions struct {
	IncludeHistorical bool   `json:"include_historical"`
	HistoricalOnly    bool   `json:"historical_only"`
	Limit             int    `json:"limit"`
	WeeksBack         any    `json:"weeks_back"`
	Now               string `json:"now"`
}

type MergeRequest struct {
	Current    []release.Candidate `json:"current"`
	Historical []release.Candidate `json:"historical"`
	Options    MergeOptions        `json:"options"`
}

// NowOr returns the parsed options.now, or fallback when it is unset.
func (r *MergeRequest) NowOr(fallback time.Time) time.Time {
	if r == nil || strings.TrimSpace(r.Options.Now) == "" {
		return fallback
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(r.Options.Now))
	if err != nil {
		return fallback
	}
	return ts.UTC()
}

type embeddedSchema struct {
	name   string
	source string

	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

var (
	candidateBatchSchema = &embeddedSchema{name: "candidate_batch.schema.json", source: candidateBatchSchemaJSON}
	mergeRequestSchema   = &embeddedSchema{name: "merge_request.schema.json", source: mergeRequestSchemaJSON}
)

// ValidateCandidateBatch checks a JSON array of release candidates.
func ValidateCandidateBatch(payload json.RawMessage) ([]release.Candidate, error) {
	var batch []release.Candidate
	if err := validateInto(candidateBatchSchema, payload, &batch); err != nil {
		return nil, err
	}
	if err := validateCandidates("", batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ValidateMergeRequest checks a merge request body.
func ValidateMergeRequest(payload json.RawMessage) (*MergeRequest, error) {
	var req MergeRequest
	if err := validateInto(mergeRequestSchema, payload, &req); err != nil {
		return nil, err
	}
	if err := validateCandidates("current", req.Current); err != nil {
		return nil, err
	}
	if err := validateCandidates("historical", req.Historical); err != nil {
		return nil, err
	}
	if now := strings.TrimSpace(req.Options.Now); now != "" {
		if _, err := time.Parse(time.RFC3339, now); err != nil {
			return nil, fmt.Errorf("options.now must be RFC3339: %w", err)
		}
	}
	return &req, nil
}

func validateInto(s *embeddedSchema, payload json.RawMessage, out any) error {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := s.load()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("normalize payload JSON: %w", err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

func (s *embeddedSchema) load() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource(s.name, strings.NewReader(s.source)); err != nil {
			s.err = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile(s.name)
		if err != nil {
			s.err = fmt.Errorf("compile schema: %w", err)
			return
		}

		s.schema = schema
	})

	if s.err != nil {
		return nil, s.err
	}
	if s.schema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return s.schema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateCandidates(field string, batch []release.Candidate) error {
	for i, c := range batch {
		prefix := fmt.Sprintf("[%d]", i)
		if field != "" {
			prefix = field + prefix
		}
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("%s.title must not be empty", prefix)
		}
		if strings.TrimSpace(c.URL) != "" {
			if err := validateURI(prefix+".url", c.URL); err != nil {
				return err
			}
		}
		if strings.TrimSpace(c.Image) != "" && !strings.HasPrefix(strings.TrimSpace(c.Image), "//") {
			if err := validateURI(prefix+".image", c.Image); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateURI(fieldName, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return fmt.Errorf("%s is not a valid URI: %w", fieldName, err)
	}
	return nil
}
