package assistant

import (
	"regexp"
	"strconv"
	"strings"

	a "github.com/petar-dambovaliev/aho-corasick"

	"github.com/jelajah/jelajah-api/internal/types"
)

// TripQuery is the structured trip request recovered from free text.
type TripQuery struct {
	Destination  string
	DurationDays int
	Budget       types.BudgetTier
	Interests    []string
}

// destinationAliases maps lowercase aliases found in free text to the
// canonical city name. Declarative so the table can grow without touching
// the extraction control flow.
var destinationAliases = map[string]string{
	"bali": "Bali", "denpasar": "Bali", "ubud": "Bali", "canggu": "Bali",
	"seminyak": "Bali", "kuta": "Bali", "sanur": "Bali",
	"jakarta": "Jakarta", "depok": "Jakarta", "bekasi": "Jakarta",
	"tangerang": "Jakarta", "bogor": "Jakarta",
	"yogyakarta": "Yogyakarta", "yogya": "Yogyakarta", "jogja": "Yogyakarta",
	"bandung": "Bandung", "cimahi": "Bandung",
	"lombok": "Lombok", "mataram": "Lombok",
	"surabaya": "Surabaya", "sidoarjo": "Surabaya",
	"banjarmasin": "Banjarmasin", "balikpapan": "Balikpapan", "samarinda": "Samarinda",
	"pontianak": "Pontianak", "palangkaraya": "Palangkaraya", "tarakan": "Tarakan",
	"medan": "Medan", "palembang": "Palembang", "pekanbaru": "Pekanbaru",
	"padang": "Padang", "jambi": "Jambi", "bengkulu": "Bengkulu", "lampung": "Lampung",
	"banda aceh": "Banda Aceh", "aceh": "Banda Aceh",
	"makassar": "Makassar", "manado": "Manado", "palu": "Palu", "kendari": "Kendari",
	"semarang": "Semarang", "solo": "Solo", "malang": "Malang", "kediri": "Kediri",
	"purwokerto": "Purwokerto", "tegal": "Tegal", "cirebon": "Cirebon",
	"jayapura": "Jayapura", "sorong": "Sorong", "merauke": "Merauke",
	"kupang": "Kupang", "bima": "Bima",
	"ambon": "Ambon", "ternate": "Ternate",
}

// interestAliases maps lowercase trigger words to canonical interest tags.
var interestAliases = map[string][]string{
	"kuliner": {"food", "culinary"}, "makanan": {"food", "culinary"},
	"makan": {"food", "culinary"}, "restoran": {"food", "culinary"},
	"warung": {"food", "culinary"}, "street food": {"food", "culinary"},
	"pantai": {"beach", "relaxation"}, "beach": {"beach", "relaxation"},
	"laut": {"beach", "relaxation"}, "snorkeling": {"beach", "adventure"},
	"diving": {"beach", "adventure"},
	"budaya": {"culture", "history"}, "sejarah": {"culture", "history"},
	"museum": {"culture", "history"}, "candi": {"culture", "history"},
	"pura": {"culture", "history"}, "tradisional": {"culture", "history"},
	"petualangan": {"adventure", "nature"}, "hiking": {"adventure", "nature"},
	"trekking": {"adventure", "nature"}, "gunung": {"adventure", "nature"},
	"alam": {"adventure", "nature"},
	"belanja": {"shopping", "city"}, "shopping": {"shopping", "city"},
	"mall": {"shopping", "city"}, "pasar": {"shopping", "culture"},
	"wisata": {"culture", "city"}, "destinasi": {"culture", "city"},
	"foto": {"photography", "scenic"}, "fotografi": {"photography", "scenic"},
	"pemandangan": {"photography", "scenic"},
}

// Aho-Corasick matchers scan the whole message once per table.
var (
	destinationMatcherBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
	})
	destinationMatcher = destinationMatcherBuilder.Build(mapKeys(destinationAliases))

	interestMatcherBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
	})
	interestMatcher = interestMatcherBuilder.Build(interestKeys())

	durationMatcherBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
	})
	durationMatcher = durationMatcherBuilder.Build(durationKeys())
)

var (
	durationPattern  = regexp.MustCompile(`(\d+)\s*hari`)
	budgetPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*juta`)
	titleWordPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

	// durationWordDays maps spelled-out durations to a day count. Number
	// words only count next to "hari"; "seminggu" and "sehari" stand alone.
	durationWordDays = map[string]int{
		"seminggu": 7, "sehari": 1,
		"satu": 1, "dua": 2, "tiga": 3, "empat": 4, "lima": 5,
		"enam": 6, "tujuh": 7, "delapan": 8, "sembilan": 9, "sepuluh": 10,
	}
)

// Words that are never destinations even when capitalized mid-sentence.
var destinationStopwords = map[string]bool{
	"Ke": true, "Di": true, "Dari": true, "Saya": true, "Aku": true,
	"Mau": true, "Ingin": true, "Liburan": true, "Budget": true,
}

// ExtractTripQuery recovers destination, duration, budget tier and interest
// tags from a free-text Indonesian travel request. Purely lexical and
// deterministic: the same message always yields the same query.
func ExtractTripQuery(message string) TripQuery {
	lower := strings.ToLower(message)

	q := TripQuery{
		DurationDays: 3,
		Budget:       types.BudgetMedium,
	}

	q.Destination = extractDestination(message, lower)
	q.DurationDays = extractDuration(lower)
	q.Budget = extractBudget(lower)
	q.Interests = extractInterests(lower)

	return q
}

func extractDestination(original, lower string) string {
	matches := destinationMatcher.FindAll(lower)
	if len(matches) > 0 {
		first := matches[0]
		if city, ok := destinationAliases[lower[first.Start():first.End()]]; ok {
			return city
		}
	}

	// Unknown city: fall back to the first capitalized word that is not a
	// known function word.
	for _, word := range titleWordPattern.FindAllString(original, -1) {
		if !destinationStopwords[word] {
			return word
		}
	}
	return "Unknown City"
}

func extractDuration(lower string) int {
	if m := durationPattern.FindStringSubmatch(lower); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil && days > 0 {
			return days
		}
	}
	for _, match := range durationMatcher.FindAll(lower) {
		word := lower[match.Start():match.End()]
		if word == "seminggu" || word == "sehari" || strings.Contains(lower, "hari") {
			return durationWordDays[word]
		}
	}
	return 3
}

func extractBudget(lower string) types.BudgetTier {
	if m := budgetPattern.FindStringSubmatch(lower); m != nil {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			switch {
			case amount <= 1.5:
				return types.BudgetLow
			case amount <= 4:
				return types.BudgetMedium
			default:
				return types.BudgetHigh
			}
		}
	}
	for _, w := range []string{"hemat", "murah", "budget rendah", "terbatas"} {
		if strings.Contains(lower, w) {
			return types.BudgetLow
		}
	}
	for _, w := range []string{"premium", "mewah", "mahal", "luxury", "eksklusif"} {
		if strings.Contains(lower, w) {
			return types.BudgetHigh
		}
	}
	return types.BudgetMedium
}

func extractInterests(lower string) []string {
	var interests []string
	seen := make(map[string]bool)

	for _, match := range interestMatcher.FindAll(lower) {
		tags, ok := interestAliases[lower[match.Start():match.End()]]
		if !ok {
			continue
		}
		for _, tag := range tags {
			if !seen[tag] {
				seen[tag] = true
				interests = append(interests, tag)
			}
		}
	}

	if len(interests) == 0 {
		interests = []string{"culture", "food"}
	}
	return interests
}

func mapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func interestKeys() []string {
	keys := make([]string, 0, len(interestAliases))
	for k := range interestAliases {
		keys = append(keys, k)
	}
	return keys
}

func durationKeys() []string {
	keys := make([]string, 0, len(durationWordDays))
	for k := range durationWordDays {
		keys = append(keys, k)
	}
	return keys
}
