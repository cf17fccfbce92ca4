package release

import "strings"

type brandRule struct {
	name   string
	needle string
}

// Checked in order after the Jordan rule.
var brandRules = []brandRule{
	{name: "Nike", needle: "nike"},
	{name: "Adidas", needle: "adidas"},
	{name: "New Balance", needle: "new balance"},
	{name: "Asics", needle: "asics"},
	{name: "Puma", needle: "puma"},
	{name: "Reebok", needle: "reebok"},
	{name: "Converse", needle: "converse"},
	{name: "Saucony", needle: "saucony"},
	{name: "Vans", needle: "vans"},
	{name: "Balenciaga", needle: "balenciaga"},
	{name: "Bape", needle: "bape"},
	{name: "Under Armour", needle: "under armour"},
}

// Brands lists the vocabulary NormalizeBrand maps into.
func Brands() []string {
	out := []string{"Jordan"}
	for _, rule := range brandRules {
		out = append(out, rule.name)
	}
	return out
}

// NormalizeBrand maps free text (a brand hint or a title) onto the fixed
// brand vocabulary. It returns nil when nothing matches.
func NormalizeBrand(text string) *string {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return nil
	}
	if strings.Contains(t, "air jordan") || strings.HasPrefix(t, "jordan") {
		return brandPtr("Jordan")
	}
	for _, rule := range brandRules {
		if strings.Contains(t, rule.needle) {
			return brandPtr(rule.name)
		}
	}
	return nil
}

// MatchesBrand reports a case-insensitive substring match of filter on the
// release brand. An empty filter matches everything.
func MatchesBrand(r Release, filter string) bool {
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.BrandName()), needle)
}

// FilterByBrand keeps releases whose brand matches filter.
func FilterByBrand(releases []Release, filter string) []Release {
	if strings.TrimSpace(filter) == "" {
		return releases
	}
	out := make([]Release, 0, len(releases))
	for _, r := range releases {
		if MatchesBrand(r, filter) {
			out = append(out, r)
		}
	}
	return out
}

func brandPtr(name string) *string {
	return &name
}
