package assistant

import (
	"fmt"
	"time"

	"github.com/jelajah/jelajah-api/internal/types"
)

// BaselineConfidence is the single low-confidence constant attached to every
// baseline result, regardless of use case. The envelope's confidence field
// signals degraded quality to the caller; the chain guarantees a result but
// not provider quality.
const BaselineConfidence = 0.1

// Per-activity flat cost bands for the minimal structured-input baseline.
var activityCostByTier = map[types.BudgetTier]float64{
	types.BudgetLow:    100000,
	types.BudgetMedium: 200000,
	types.BudgetHigh:   500000,
}

// Daily cost bands for the enhanced free-text baseline.
var dailyCostByTier = map[types.BudgetTier]float64{
	types.BudgetLow:    400000,
	types.BudgetMedium: 800000,
	types.BudgetHigh:   1500000,
}

// baselinePlan synthesizes an itinerary without any network call. Free-text
// requests go through keyword extraction and the activity tables; structured
// requests get the minimal one-activity-per-day template.
func baselinePlan(req *types.AssistantRequest) *types.ResultEnvelope {
	return baselinePlanAt(req, time.Now())
}

// baselinePlanAt is the clock-injected variant. Output is fully determined
// by the request and the start date.
func baselinePlanAt(req *types.AssistantRequest, now time.Time) *types.ResultEnvelope {
	// Free-text entry: the enhanced extraction-driven planner is canonical.
	if req.Message != "" {
		q := ExtractTripQuery(req.Message)
		return enhancedBaselinePlan(q, now)
	}

	destination := req.Destination
	if destination == "" {
		destination = "Jakarta"
	}
	duration := req.DurationDays
	if duration == 0 {
		duration = 3
	}
	budget := req.Budget
	if budget == "" {
		budget = types.BudgetMedium
	}

	activityCost := activityCostByTier[budget]

	days := make([]types.DayPlan, 0, duration)
	for day := 1; day <= duration; day++ {
		activity := types.Activity{
			Time:        "09:00",
			Name:        fmt.Sprintf("Jelajahi %s - Hari %d", destination, day),
			Location:    destination,
			Description: "Kunjungi tempat wisata populer di sekitar area",
			Cost:        activityCost,
		}
		days = append(days, types.DayPlan{
			Day:           day,
			Date:          now.AddDate(0, 0, day-1).Format("2006-01-02"),
			Activities:    []types.Activity{activity},
			EstimatedCost: activityCost,
		})
	}

	var total float64
	for _, d := range days {
		total += d.EstimatedCost
	}

	plan := &types.TravelPlan{
		Title:        fmt.Sprintf("Perjalanan %d Hari ke %s", duration, destination),
		Destination:  destination,
		DurationDays: duration,
		DailyRoutes:  days,
		CostEstimate: splitCosts(total),
	}

	return &types.ResultEnvelope{
		Plan:       plan,
		Source:     types.SourceBaseline,
		Confidence: BaselineConfidence,
	}
}

// orderedCategories fixes iteration order over the activity tables so
// padding is deterministic.
var orderedCategories = []string{"culture", "food", "culinary", "nature", "adventure", "city", "shopping"}

func activityTable(destination string) map[string][]string {
	return map[string][]string{
		"culture": {
			fmt.Sprintf("Masjid Agung %s (arsitektur Islam lokal)", destination),
			fmt.Sprintf("Museum %s (sejarah dan budaya lokal)", destination),
			fmt.Sprintf("Pasar tradisional %s (budaya lokal)", destination),
			fmt.Sprintf("Kampung heritage %s (wisata budaya)", destination),
			fmt.Sprintf("Rumah adat %s (arsitektur tradisional)", destination),
		},
		"food": {
			fmt.Sprintf("Kuliner khas %s di warung lokal", destination),
			fmt.Sprintf("Makanan tradisional %s autentik", destination),
			fmt.Sprintf("Street food tour %s", destination),
			fmt.Sprintf("Pasar malam %s (kuliner lokal)", destination),
		},
		"culinary": {
			fmt.Sprintf("Food tour %s dengan guide lokal", destination),
			fmt.Sprintf("Cooking class masakan %s", destination),
			fmt.Sprintf("Local restaurant hopping %s", destination),
		},
		"nature": {
			fmt.Sprintf("Taman kota %s (ruang hijau)", destination),
			fmt.Sprintf("Wisata alam sekitar %s", destination),
			fmt.Sprintf("Air terjun dekat %s", destination),
			fmt.Sprintf("Bukit atau gunung dekat %s", destination),
		},
		"adventure": {
			fmt.Sprintf("Hiking di sekitar %s", destination),
			fmt.Sprintf("River tubing dekat %s", destination),
			fmt.Sprintf("Adventure park %s", destination),
			fmt.Sprintf("Camping ground dekat %s", destination),
		},
		"city": {
			fmt.Sprintf("Alun-alun %s (pusat kota)", destination),
			fmt.Sprintf("Landmark %s (ikon kota)", destination),
			fmt.Sprintf("City tour %s", destination),
		},
		"shopping": {
			fmt.Sprintf("Mall %s (modern shopping)", destination),
			fmt.Sprintf("Pusat oleh-oleh %s", destination),
			fmt.Sprintf("Traditional craft market %s", destination),
		},
	}
}

var budgetTips = map[types.BudgetTier]string{
	types.BudgetLow:    "Gunakan transportasi umum (angkot), makan di warung lokal, pilih homestay atau guesthouse",
	types.BudgetMedium: "Kombinasi transportasi umum dan ojek online, hotel bintang 3, restaurant lokal dan cafe",
	types.BudgetHigh:   "Private car dengan driver, hotel bintang 4-5, fine dining dan aktivitas premium",
}

var cityTips = map[string]string{
	"Banjarmasin": "Gunakan klotok (perahu tradisional) untuk wisata sungai, kunjungi pasar terapung sebelum jam 8 pagi",
	"Samarinda":   "Kunjungi Mahakam riverfront untuk sunset, coba ikan patin bakar khas Kalimantan",
	"Jayapura":    "Siapkan dokumen untuk area perbatasan, coba papeda makanan khas Papua",
}

// enhancedBaselinePlan builds an interest-weighted itinerary from the
// extracted trip query: two activities per day, deduplicated, padded from
// the remaining categories in a fixed order when interests alone do not
// cover the duration.
func enhancedBaselinePlan(q TripQuery, now time.Time) *types.ResultEnvelope {
	table := activityTable(q.Destination)
	dailyCost := dailyCostByTier[q.Budget]

	var selected []string
	seen := make(map[string]bool)
	appendUnique := func(names []string, limit int) {
		for i, name := range names {
			if limit > 0 && i >= limit {
				break
			}
			if !seen[name] {
				seen[name] = true
				selected = append(selected, name)
			}
		}
	}

	// Interest-weighted selection first, then a balanced mix when nothing
	// matched.
	for _, interest := range q.Interests {
		if names, ok := table[interest]; ok {
			appendUnique(names, 4)
		}
	}
	if len(selected) == 0 {
		appendUnique(table["culture"], 3)
		appendUnique(table["food"], 3)
		appendUnique(table["city"], 2)
	}

	// Pad until two slots per day are covered.
	needed := q.DurationDays * 2
	for _, category := range orderedCategories {
		if len(selected) >= needed {
			break
		}
		appendUnique(table[category], 0)
	}

	activityCost := dailyCost / 2

	days := make([]types.DayPlan, 0, q.DurationDays)
	for day := 1; day <= q.DurationDays; day++ {
		morning := fmt.Sprintf("Eksplorasi bebas %s (pagi)", q.Destination)
		afternoon := fmt.Sprintf("Eksplorasi bebas %s (sore)", q.Destination)
		if idx := (day - 1) * 2; idx < len(selected) {
			morning = selected[idx]
		}
		if idx := (day-1)*2 + 1; idx < len(selected) {
			afternoon = selected[idx]
		}

		activities := []types.Activity{
			{Time: "09:00", Name: morning, Location: q.Destination, Description: "Aktivitas pagi sesuai minat Anda", Cost: activityCost},
			{Time: "15:00", Name: afternoon, Location: q.Destination, Description: "Aktivitas sore sesuai minat Anda", Cost: activityCost},
		}
		days = append(days, types.DayPlan{
			Day:           day,
			Date:          now.AddDate(0, 0, day-1).Format("2006-01-02"),
			Activities:    activities,
			EstimatedCost: activityCost * 2,
		})
	}

	total := dailyCost * float64(q.DurationDays)

	tip := cityTips[q.Destination]
	if tip == "" {
		tip = fmt.Sprintf("Nikmati pengalaman lokal yang autentik di %s", q.Destination)
	}

	plan := &types.TravelPlan{
		Title:        fmt.Sprintf("Perjalanan %d Hari ke %s", q.DurationDays, q.Destination),
		Destination:  q.Destination,
		DurationDays: q.DurationDays,
		DailyRoutes:  days,
		CostEstimate: splitCosts(total),
		Tips:         fmt.Sprintf("%s. %s.", tip, budgetTips[q.Budget]),
	}

	return &types.ResultEnvelope{
		Plan:       plan,
		Source:     types.SourceBaseline,
		Confidence: BaselineConfidence,
	}
}

// splitCosts applies the fixed percentage breakdown to a plan total.
func splitCosts(total float64) types.CostEstimate {
	return types.CostEstimate{
		Accommodation: total * 0.4,
		Food:          total * 0.3,
		Transport:     total * 0.2,
		Activities:    total * 0.1,
		Total:         total,
		Currency:      "IDR",
	}
}

func baselineChat(_ *types.AssistantRequest) *types.ResultEnvelope {
	return &types.ResultEnvelope{
		Chat: &types.ChatAnswer{
			Answer: "Maaf, saya sedang mengalami gangguan teknis. Silakan coba lagi nanti atau hubungi customer service.",
		},
		Source:     types.SourceBaseline,
		Confidence: BaselineConfidence,
		Suggestions: []string{
			"Coba tanyakan tentang destinasi wisata populer",
			"Tanyakan tentang budget perjalanan",
		},
	}
}

func baselineVision(_ *types.AssistantRequest) *types.ResultEnvelope {
	return &types.ResultEnvelope{
		Vision: &types.VisionResult{
			Landmarks: []types.Landmark{{
				Name:        "Landmark tidak dikenali",
				Description: "Mohon coba dengan gambar yang lebih jelas",
				Confidence:  BaselineConfidence,
			}},
			Summary:    "Tidak dapat mengidentifikasi landmark dalam gambar",
			Confidence: BaselineConfidence,
		},
		Source:     types.SourceBaseline,
		Confidence: BaselineConfidence,
	}
}
