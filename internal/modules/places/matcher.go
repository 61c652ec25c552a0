// README: Layered place matcher: query expansion → provider search → gazetteer fallback.
package places

import (
	"context"
	"regexp"
	"strings"

	"yahu/internal/config"
	"yahu/internal/maps"
	"yahu/internal/types"
)

// Provider is the slice of the maps service the matcher needs.
type Provider interface {
	SearchPlaces(ctx context.Context, query string, origin types.Point, limit int) []maps.Prediction
	PlaceDetails(ctx context.Context, placeID string) (maps.PlaceDetail, error)
}

// Matcher turns one free-text query into zero or more ranked, deduplicated
// place candidates. Strategies are layered in order of cost: provider
// autocomplete over expanded query variants first, then the curated
// gazetteer (substring, then approximate match).
type Matcher struct {
	provider Provider
	cfg      config.DialogConfig
}

func NewMatcher(provider Provider, cfg config.DialogConfig) *Matcher {
	return &Matcher{provider: provider, cfg: cfg}
}

// stopWords are prepositions and verb fillers stripped before searching.
var stopWords = map[string]bool{
	"من": true, "إلى": true, "في": true, "على": true, "عند": true,
	"بدي": true, "أريد": true, "أروح": true, "أذهب": true, "بدك": true,
	"تريد": true, "تروح": true, "تذهب": true, "الى": true, "انا": true, "أنا": true,
}

// expansionCities are appended to variants lacking a city qualifier.
var expansionCities = []string{"دمشق", "حلب", "حمص", "حماة", "اللاذقية", "طرطوس"}

var queryStreetMarkers = []string{"شارع", "طريق"}

// commonCorrections maps frequent misspellings to canonical query forms.
// Slice of pairs so variant order stays deterministic.
var commonCorrections = []struct {
	mistake  string
	variants []string
}{
	{"شعلان", []string{"الشعلان", "شارع الشعلان"}},
	{"مزه", []string{"المزة", "حي المزة"}},
	{"جسر", []string{"الجسر الأبيض", "جسر فيكتوريا"}},
	{"ساحة", []string{"ساحة الأمويين", "ساحة المحافظة"}},
}

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
var spaceRe = regexp.MustCompile(`\s+`)

// cleanQuery strips punctuation and stop words and collapses whitespace.
func cleanQuery(text string) string {
	text = nonWordRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if !stopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// expandQuery generates search variants for a cleaned query: the query
// itself, street-marker prefixed/suffixed forms, city-qualified forms and
// canonical corrections for known misspellings. Insertion order is preserved
// and duplicates dropped.
func expandQuery(query string) []string {
	var variants []string
	seen := make(map[string]bool)
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	add(query)

	hasStreet := false
	for _, marker := range queryStreetMarkers {
		if strings.Contains(query, marker) {
			hasStreet = true
			break
		}
	}
	if !hasStreet {
		add("شارع " + query)
		add(query + " شارع")
	}

	for _, city := range expansionCities {
		if !strings.Contains(query, city) {
			add(query + " " + city)
			add(query + "، " + city)
		}
	}

	lower := strings.ToLower(query)
	for _, c := range commonCorrections {
		if strings.Contains(lower, c.mistake) {
			for _, v := range c.variants {
				add(v)
			}
		}
	}

	return variants
}

// Resolve runs the layered search for query near origin and returns up to the
// configured candidate limit. An all-stop-word query short-circuits to no
// results without issuing provider calls.
func (m *Matcher) Resolve(ctx context.Context, query string, origin types.Point) []Candidate {
	cleaned := cleanQuery(query)
	if cleaned == "" {
		return nil
	}

	var raw []maps.Prediction
	for _, variant := range expandQuery(cleaned) {
		hits := m.provider.SearchPlaces(ctx, variant, origin, m.cfg.MaxCandidates)
		raw = append(raw, hits...)
		// Cost control: one variant that already matched well is enough.
		if len(hits) >= m.cfg.SearchEarlyHits {
			break
		}
	}

	candidates := dedupPredictions(raw)
	if len(candidates) == 0 {
		candidates = m.gazetteerSearch(cleaned)
	}

	if len(candidates) > m.cfg.MaxCandidates {
		candidates = candidates[:m.cfg.MaxCandidates]
	}
	return candidates
}

// Detail resolves a candidate ref to a full address and coordinates.
// Gazetteer refs are a static lookup; provider refs hit the Places API.
func (m *Matcher) Detail(ctx context.Context, ref string) (ResolvedPlace, error) {
	if IsLocalRef(ref) {
		if p, ok := gazetteerDetail(ref); ok {
			return p, nil
		}
		return ResolvedPlace{}, maps.ErrNoResults
	}
	d, err := m.provider.PlaceDetails(ctx, ref)
	if err != nil {
		return ResolvedPlace{}, err
	}
	return ResolvedPlace{Address: d.Address, Location: d.Location}, nil
}

func (m *Matcher) gazetteerSearch(query string) []Candidate {
	if c, ok := gazetteerExact(query); ok {
		return []Candidate{c}
	}
	return gazetteerFuzzy(query, m.cfg.FuzzyCutoff)
}

// dedupPredictions keeps the first occurrence per place id, preserving
// discovery order.
func dedupPredictions(preds []maps.Prediction) []Candidate {
	var out []Candidate
	seen := make(map[string]bool)
	for _, p := range preds {
		if seen[p.PlaceID] {
			continue
		}
		seen[p.PlaceID] = true
		out = append(out, Candidate{DisplayText: p.Description, Ref: p.PlaceID})
	}
	return out
}
