package titles

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{input: "  Air Jordan 1 Retro High!! ", want: "air jordan 1 retro high"},
		{input: "Nike Dunk Low \"Panda\"", want: "nike dunk low panda"},
		{input: "New Balance 990v6\t–\tGrey", want: "new balance 990v6 grey"},
		{input: "adidas Samba OG (W)", want: "adidas samba og w"},
		{input: "snake_case_name", want: "snake_case_name"},
		{input: "Asics Gel-Kayano 14 'Cream/Black'", want: "asics gelkayano 14 creamblack"},
		{input: "!!!", want: ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.input); got != tc.want {
			t.Fatalf("unexpected normalized title for %q: got %q want %q", tc.input, got, tc.want)
		}
	}
}

func TestAreSimilarCatchesPunctuationVariants(t *testing.T) {
	t.Parallel()

	a := Normalize("Air Jordan 1 Retro High")
	b := Normalize("air jordan 1 retro high!!")
	if !AreSimilar(a, b) {
		t.Fatalf("expected punctuation variants to be similar")
	}
}

func TestAreSimilarThresholdBoundary(t *testing.T) {
	t.Parallel()

	// 4 of 5 long words shared: exactly 0.8.
	a := Normalize("Nike Dunk Low Panda Black")
	b := Normalize("Nike Dunk Low Panda White")
	if !AreSimilar(a, b) {
		t.Fatalf("expected 0.8 overlap to be similar")
	}

	// 3 of 5 shared: 0.6.
	c := Normalize("Nike Dunk Low Grey Fog")
	if AreSimilar(a, c) {
		t.Fatalf("did not expect 0.6 overlap to be similar")
	}
}

func TestAreSimilarIgnoresShortWords(t *testing.T) {
	t.Parallel()

	if AreSimilar("aj 1 og", "aj 1 og") {
		t.Fatalf("expected titles without long words to never match")
	}
	if AreSimilar("", "nike dunk low") {
		t.Fatalf("expected empty title to never match")
	}
}

func TestMatcherThresholdIsOverridable(t *testing.T) {
	t.Parallel()

	strict := Matcher{Threshold: 0.95, ShortWordLength: DefaultShortWordLength}
	a := Normalize("Nike Dunk Low Panda Black")
	b := Normalize("Nike Dunk Low Panda White")
	if strict.AreSimilar(a, b) {
		t.Fatalf("did not expect strict matcher to accept 0.8 overlap")
	}

	if got := (Matcher{}).Overlap(a, b); got != 0.8 {
		t.Fatalf("unexpected overlap: %v", got)
	}
}
