package sources

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	KindKicksOnFire = "kicksonfire"
	KindGBNY        = "gbny"
	KindElfsight    = "elfsight"
	KindRSS         = "rss"
)

//go:embed default_sources.yaml
var defaultRegistryYAML []byte

// Entry is one configured source.
type Entry struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	URL         string `yaml:"url,omitempty"`
	WidgetID    string `yaml:"widget_id,omitempty"`
	Enabled     *bool  `yaml:"enabled,omitempty"`
	Historical  bool   `yaml:"historical,omitempty"`
	SkipDetails bool   `yaml:"skip_details,omitempty"`
}

func (e Entry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Registry lists the sources a deployment scrapes.
type Registry struct {
	Sources []Entry `yaml:"sources"`
}

// LoadRegistry reads a registry file, or the built-in registry when path is
// empty.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return ParseRegistry(defaultRegistryYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return ParseRegistry(data)
}

func ParseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Registry) Validate() error {
	seen := make(map[string]struct{}, len(r.Sources))
	for i, entry := range r.Sources {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, name)
		}
		seen[name] = struct{}{}

		switch strings.ToLower(strings.TrimSpace(entry.Kind)) {
		case KindKicksOnFire, KindGBNY, KindElfsight:
		case KindRSS:
			if strings.TrimSpace(entry.URL) == "" {
				return fmt.Errorf("sources[%d]: rss source %q needs a url", i, name)
			}
		default:
			return fmt.Errorf("sources[%d]: unknown kind %q", i, entry.Kind)
		}
	}
	return nil
}

// Build instantiates enabled sources split into the current and historical
// batches.
func (r *Registry) Build(fetcher Fetcher, logger zerolog.Logger) (current []Source, historical []Source, err error) {
	for _, entry := range r.Sources {
		if !entry.IsEnabled() {
			continue
		}
		src, err := buildSource(entry, fetcher, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("source %s: %w", entry.Name, err)
		}
		if entry.Historical {
			historical = append(historical, src)
		} else {
			current = append(current, src)
		}
	}
	return current, historical, nil
}

func buildSource(entry Entry, fetcher Fetcher, logger zerolog.Logger) (Source, error) {
	name := strings.TrimSpace(entry.Name)
	switch strings.ToLower(strings.TrimSpace(entry.Kind)) {
	case KindKicksOnFire:
		return NewKicksOnFire(fetcher, KicksOnFireOptions{
			Name:        name,
			BaseURL:     entry.URL,
			SkipDetails: entry.SkipDetails,
		}, logger)
	case KindGBNY:
		return NewGBNY(fetcher, name, entry.URL, logger)
	case KindElfsight:
		return NewElfsight(fetcher, name, entry.URL, entry.WidgetID, logger)
	case KindRSS:
		return NewRSS(fetcher, name, entry.URL, logger)
	default:
		return nil, fmt.Errorf("unknown kind %q", entry.Kind)
	}
}
