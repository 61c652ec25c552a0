// README: Matcher tests with a fake provider (no network).
package places

import (
	"context"
	"fmt"
	"testing"

	"yahu/internal/config"
	"yahu/internal/maps"
	"yahu/internal/types"
)

var testOrigin = types.Point{Lat: 33.51, Lng: 36.27}

type fakeProvider struct {
	responses map[string][]maps.Prediction
	details   map[string]maps.PlaceDetail
	calls     []string
}

func (f *fakeProvider) SearchPlaces(_ context.Context, query string, _ types.Point, _ int) []maps.Prediction {
	f.calls = append(f.calls, query)
	return f.responses[query]
}

func (f *fakeProvider) PlaceDetails(_ context.Context, placeID string) (maps.PlaceDetail, error) {
	d, ok := f.details[placeID]
	if !ok {
		return maps.PlaceDetail{}, maps.ErrNoResults
	}
	return d, nil
}

func testConfig() config.DialogConfig {
	return config.DialogConfig{
		SessionTTLMinutes: 30,
		FuzzyCutoff:       0.6,
		SearchEarlyHits:   3,
		MaxCandidates:     5,
	}
}

func newTestMatcher(p *fakeProvider) *Matcher {
	return NewMatcher(p, testConfig())
}

func TestCleanQueryStripsStopWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"بدي أروح على الشعلان", "الشعلان"},
		{"من إلى في", ""},
		{"  ساحة   الأمويين!! ", "ساحة الأمويين"},
		{"أريد أذهب الى المزة", "المزة"},
	}
	for _, tt := range tests {
		if got := cleanQuery(tt.in); got != tt.want {
			t.Errorf("cleanQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveStopWordsOnlyShortCircuits(t *testing.T) {
	p := &fakeProvider{}
	m := newTestMatcher(p)

	got := m.Resolve(context.Background(), "بدي أروح", testOrigin)
	if got != nil {
		t.Fatalf("expected no candidates, got %v", got)
	}
	if len(p.calls) != 0 {
		t.Fatalf("expected no provider calls, got %d", len(p.calls))
	}
}

func TestResolveEarlyExitAfterEnoughHits(t *testing.T) {
	p := &fakeProvider{
		responses: map[string][]maps.Prediction{
			"باب توما": {
				{Description: "باب توما، دمشق", PlaceID: "g1"},
				{Description: "شارع باب توما، دمشق", PlaceID: "g2"},
				{Description: "كنيسة باب توما، دمشق", PlaceID: "g3"},
			},
		},
	}
	m := newTestMatcher(p)

	got := m.Resolve(context.Background(), "باب توما", testOrigin)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	if len(p.calls) != 1 {
		t.Fatalf("expected expansion to stop after the first variant, got %d calls: %v", len(p.calls), p.calls)
	}
}

func TestResolveAccumulatesAcrossVariantsAndDedups(t *testing.T) {
	// Two variants each return fewer than the early-exit threshold, with one
	// shared place id between them.
	p := &fakeProvider{
		responses: map[string][]maps.Prediction{
			"القصاع":      {{Description: "القصاع، دمشق", PlaceID: "a"}},
			"شارع القصاع": {{Description: "القصاع، دمشق", PlaceID: "a"}, {Description: "شارع القصاع، دمشق", PlaceID: "b"}},
		},
	}
	m := newTestMatcher(p)

	got := m.Resolve(context.Background(), "القصاع", testOrigin)
	if len(got) != 2 {
		t.Fatalf("expected 2 deduplicated candidates, got %d: %v", len(got), got)
	}
	if got[0].Ref != "a" || got[1].Ref != "b" {
		t.Fatalf("expected discovery order [a b], got [%s %s]", got[0].Ref, got[1].Ref)
	}
	if len(p.calls) < 2 {
		t.Fatalf("expected expansion to continue past the first variant, calls: %v", p.calls)
	}
}

func TestResolveGazetteerSubstringFallback(t *testing.T) {
	p := &fakeProvider{} // provider returns nothing for every variant
	m := newTestMatcher(p)

	got := m.Resolve(context.Background(), "الشعلان", testOrigin)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 gazetteer candidate, got %d: %v", len(got), got)
	}
	if !IsLocalRef(got[0].Ref) {
		t.Fatalf("expected a local ref, got %s", got[0].Ref)
	}
	if got[0].DisplayText != "الشعلان، دمشق، سوريا" {
		t.Fatalf("unexpected display text %q", got[0].DisplayText)
	}
}

func TestResolveGazetteerFuzzyFallback(t *testing.T) {
	p := &fakeProvider{}
	m := newTestMatcher(p)

	// "المزا" is a near miss for "المزة" (one edit over five runes).
	got := m.Resolve(context.Background(), "المزا", testOrigin)
	if len(got) == 0 {
		t.Fatal("expected fuzzy gazetteer candidates")
	}
	if got[0].DisplayText != "المزة، دمشق، سوريا" {
		t.Fatalf("expected closest match first, got %q", got[0].DisplayText)
	}
	if len(got) > maxFuzzyMatches {
		t.Fatalf("expected at most %d fuzzy matches, got %d", maxFuzzyMatches, len(got))
	}
}

func TestResolveFuzzyCutoffRejectsDistantMatches(t *testing.T) {
	p := &fakeProvider{}
	m := newTestMatcher(p)

	got := m.Resolve(context.Background(), "قدسيا", testOrigin)
	for _, c := range got {
		if similarity("قدسيا", c.DisplayText) < 0.3 {
			t.Errorf("candidate %q too distant from query", c.DisplayText)
		}
	}
}

func TestResolveTruncatesToLimit(t *testing.T) {
	var preds []maps.Prediction
	for i := 0; i < 8; i++ {
		preds = append(preds, maps.Prediction{
			Description: fmt.Sprintf("نتيجة %d", i),
			PlaceID:     fmt.Sprintf("p%d", i),
		})
	}
	p := &fakeProvider{responses: map[string][]maps.Prediction{"الميدان": preds}}
	m := newTestMatcher(p)

	got := m.Resolve(context.Background(), "الميدان", testOrigin)
	if len(got) != 5 {
		t.Fatalf("expected candidates truncated to 5, got %d", len(got))
	}
}

func TestDetailLocalRefIsStatic(t *testing.T) {
	m := newTestMatcher(&fakeProvider{})

	place, err := m.Detail(context.Background(), localRefPrefix+"الشعلان")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if place.Address != "الشعلان، دمشق، سوريا" {
		t.Fatalf("unexpected address %q", place.Address)
	}
	if place.Location.Lat == 0 || place.Location.Lng == 0 {
		t.Fatal("expected static coordinates")
	}
}

func TestDetailProviderRef(t *testing.T) {
	p := &fakeProvider{details: map[string]maps.PlaceDetail{
		"g9": {Address: "ساحة المحافظة، دمشق، سوريا", Location: types.Point{Lat: 33.512, Lng: 36.297}},
	}}
	m := newTestMatcher(p)

	place, err := m.Detail(context.Background(), "g9")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if place.Address != "ساحة المحافظة، دمشق، سوريا" {
		t.Fatalf("unexpected address %q", place.Address)
	}

	if _, err := m.Detail(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown provider ref")
	}
}

func TestSimilarity(t *testing.T) {
	if s := similarity("المزة", "المزة"); s != 1 {
		t.Errorf("identical strings: got %f", s)
	}
	if s := similarity("المزا", "المزة"); s < 0.75 || s > 0.85 {
		t.Errorf("one edit over five runes: got %f, want 0.8", s)
	}
	if s := similarity("", ""); s != 1 {
		t.Errorf("empty strings: got %f", s)
	}
}
