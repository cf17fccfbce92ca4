package titles

import (
	"strings"
	"unicode"
)

const (
	DefaultSimilarityThreshold = 0.8
	// Words at or below this many characters are ignored by the matcher.
	DefaultShortWordLength = 2
)

// Normalize lowercases a title, strips punctuation and symbols, and collapses
// whitespace. Letters, digits and underscores survive.
func Normalize(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	lastSpace := false
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if !isWordRune(r) {
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Matcher decides whether two normalized titles name the same release.
type Matcher struct {
	Threshold       float64
	ShortWordLength int
}

func DefaultMatcher() Matcher {
	return Matcher{
		Threshold:       DefaultSimilarityThreshold,
		ShortWordLength: DefaultShortWordLength,
	}
}

func (m Matcher) withDefaults() Matcher {
	if m.Threshold <= 0 || m.Threshold > 1 {
		m.Threshold = DefaultSimilarityThreshold
	}
	if m.ShortWordLength <= 0 {
		m.ShortWordLength = DefaultShortWordLength
	}
	return m
}

// Overlap returns |A ∩ B| / max(|A|, |B|) over the long-word sets of two
// normalized titles. An empty set on either side scores zero.
func (m Matcher) Overlap(a, b string) float64 {
	m = m.withDefaults()
	left := m.wordSet(a)
	right := m.wordSet(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	shared := 0
	for word := range left {
		if _, ok := right[word]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(len(left), len(right)))
}

// AreSimilar reports whether two normalized titles overlap at or above the threshold.
func (m Matcher) AreSimilar(a, b string) bool {
	m = m.withDefaults()
	return m.Overlap(a, b) >= m.Threshold
}

func (m Matcher) wordSet(text string) map[string]struct{} {
	words := strings.Fields(text)
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		if len([]rune(word)) <= m.ShortWordLength {
			continue
		}
		set[word] = struct{}{}
	}
	return set
}

// AreSimilar uses DefaultMatcher.
func AreSimilar(a, b string) bool {
	return DefaultMatcher().AreSimilar(a, b)
}
