// README: Curated gazetteer of well-known local places used as a search fallback tier.
package places

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"yahu/internal/types"
)

// localRefPrefix marks candidate refs that resolve against the gazetteer
// instead of the provider.
const localRefPrefix = "local:"

// maxFuzzyMatches caps how many approximate gazetteer matches are returned.
const maxFuzzyMatches = 3

type gazetteerEntry struct {
	Key      string
	Address  string
	Location types.Point
}

// gazetteer lists known places that the provider's index often misses for
// bare neighbourhood names. Order matters: it is the tiebreak for equal
// fuzzy-match scores.
var gazetteer = []gazetteerEntry{
	{"الشعلان", "الشعلان، دمشق، سوريا", types.Point{Lat: 33.5138, Lng: 36.2765}},
	{"شعلان", "الشعلان، دمشق، سوريا", types.Point{Lat: 33.5138, Lng: 36.2765}},
	{"المزة", "المزة، دمشق، سوريا", types.Point{Lat: 33.5024, Lng: 36.2213}},
	{"مزه", "المزة، دمشق، سوريا", types.Point{Lat: 33.5024, Lng: 36.2213}},
	{"مزة جبل", "مزة جبل، دمشق، سوريا", types.Point{Lat: 33.4956, Lng: 36.2338}},
	{"باب توما", "باب توما، دمشق، سوريا", types.Point{Lat: 33.5158, Lng: 36.3175}},
	{"سوق الحميدية", "سوق الحميدية، دمشق، سوريا", types.Point{Lat: 33.5112, Lng: 36.3036}},
	{"شارع بغداد", "شارع بغداد، دمشق، سوريا", types.Point{Lat: 33.5219, Lng: 36.3108}},
	{"ساحة الأمويين", "ساحة الأمويين، دمشق، سوريا", types.Point{Lat: 33.5125, Lng: 36.2750}},
	{"مشروع دمر", "مشروع دمر، دمشق، سوريا", types.Point{Lat: 33.5429, Lng: 36.2330}},
	{"حي القصور", "حي القصور، دمشق، سوريا", types.Point{Lat: 33.5264, Lng: 36.3044}},
	{"كفرسوسة", "كفرسوسة، دمشق، سوريا", types.Point{Lat: 33.4948, Lng: 36.2684}},
	{"الحمدانية", "الحمدانية، حلب، سوريا", types.Point{Lat: 36.1903, Lng: 37.1343}},
	{"حمدانية", "الحمدانية، حلب، سوريا", types.Point{Lat: 36.1903, Lng: 37.1343}},
	{"صلاح الدين", "صلاح الدين، حلب، سوريا", types.Point{Lat: 36.1866, Lng: 37.1229}},
	{"الأزبكية", "الأزبكية، حلب، سوريا", types.Point{Lat: 36.2135, Lng: 37.1648}},
	{"أزبكية", "الأزبكية، حلب، سوريا", types.Point{Lat: 36.2135, Lng: 37.1648}},
	{"جرمانا", "جرمانا، ريف دمشق، سوريا", types.Point{Lat: 33.4862, Lng: 36.3463}},
	{"دوما", "دوما، ريف دمشق، سوريا", types.Point{Lat: 33.5713, Lng: 36.4021}},
	{"حرستا", "حرستا، ريف دمشق، سوريا", types.Point{Lat: 33.5587, Lng: 36.3650}},
	{"معضمية", "المعضمية، ريف دمشق، سوريا", types.Point{Lat: 33.4615, Lng: 36.1935}},
	{"التل", "التل، ريف دمشق، سوريا", types.Point{Lat: 33.6101, Lng: 36.3107}},
	{"صحنايا", "صحنايا، ريف دمشق، سوريا", types.Point{Lat: 33.4268, Lng: 36.2465}},
}

// IsLocalRef reports whether ref resolves against the gazetteer.
func IsLocalRef(ref string) bool {
	return strings.HasPrefix(ref, localRefPrefix)
}

func localCandidate(e gazetteerEntry) Candidate {
	return Candidate{DisplayText: e.Address, Ref: localRefPrefix + e.Key}
}

// gazetteerDetail resolves a local ref to its static address and coordinates.
func gazetteerDetail(ref string) (ResolvedPlace, bool) {
	key := strings.TrimPrefix(ref, localRefPrefix)
	for _, e := range gazetteer {
		if e.Key == key {
			return ResolvedPlace{Address: e.Address, Location: e.Location}, true
		}
	}
	return ResolvedPlace{}, false
}

// gazetteerExact performs a case-insensitive substring match in either
// direction and returns immediately on the first hit.
func gazetteerExact(query string) (Candidate, bool) {
	q := strings.ToLower(query)
	for _, e := range gazetteer {
		k := strings.ToLower(e.Key)
		if strings.Contains(q, k) || strings.Contains(k, q) {
			return localCandidate(e), true
		}
	}
	return Candidate{}, false
}

// gazetteerFuzzy ranks gazetteer keys by similarity ratio against the query
// and returns up to maxFuzzyMatches candidates above cutoff. Ties keep table
// order.
func gazetteerFuzzy(query string, cutoff float64) []Candidate {
	type scored struct {
		entry gazetteerEntry
		score float64
	}
	var hits []scored
	for _, e := range gazetteer {
		s := similarity(query, e.Key)
		if s >= cutoff {
			hits = append(hits, scored{entry: e, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	var out []Candidate
	seen := make(map[string]bool)
	for _, h := range hits {
		if seen[h.entry.Address] {
			continue
		}
		seen[h.entry.Address] = true
		out = append(out, localCandidate(h.entry))
		if len(out) >= maxFuzzyMatches {
			break
		}
	}
	return out
}

// similarity is 1 - normalized Levenshtein distance, computed over runes.
func similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 1
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
