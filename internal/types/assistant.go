package types

import (
	"errors"
	"time"
)

// AISource identifies which stage of the fallback chain produced a result.
type AISource string

const (
	SourceGemini      AISource = "gemini"
	SourceHuggingFace AISource = "huggingface"
	SourceReplicate   AISource = "replicate"
	SourceBaseline    AISource = "baseline"
)

// BudgetTier is the coarse budget classification used across planning.
type BudgetTier string

const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

// AssistantRequest is the normalized request descriptor consumed by the
// assistant core. The web layer fills it after auth and input validation.
type AssistantRequest struct {
	Destination  string            `json:"destination,omitempty"`
	DurationDays int               `json:"duration_days,omitempty"`
	Budget       BudgetTier        `json:"budget_range,omitempty"`
	Preferences  []string          `json:"preferences,omitempty"`
	Message      string            `json:"message,omitempty"`
	Image        []byte            `json:"-"`
	Context      map[string]string `json:"context,omitempty"`
}

// Validate checks the request descriptor invariants: at least one of the
// structured fields, the free-text message, or the image must be present,
// and a structured duration must fall in the supported range.
func (r *AssistantRequest) Validate() error {
	if r.Destination == "" && r.Message == "" && len(r.Image) == 0 {
		return ErrBadRequest
	}
	if r.Destination != "" {
		if r.DurationDays < 1 || r.DurationDays > 14 {
			return errors.New("duration_days must be between 1 and 14")
		}
	}
	return nil
}

// AttemptOutcome classifies a single provider attempt.
type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptEmpty   AttemptOutcome = "empty"
	AttemptError   AttemptOutcome = "error"
	AttemptSkip    AttemptOutcome = "skip"
)

// ProviderAttempt records one adapter call. It only ever reaches the log
// sink and the metrics registry, never storage.
type ProviderAttempt struct {
	Provider AISource       `json:"provider"`
	Outcome  AttemptOutcome `json:"outcome"`
	Raw      string         `json:"raw,omitempty"`
	Elapsed  time.Duration  `json:"elapsed"`
}

// Activity is a single scheduled entry inside a day plan.
type Activity struct {
	Time        string  `json:"time"`
	Name        string  `json:"activity"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Cost        float64 `json:"estimated_cost"`
}

// DayPlan holds the ordered activities for one day of the itinerary.
// Day indices are contiguous 1..duration and EstimatedCost equals the sum
// of the contained activity costs.
type DayPlan struct {
	Day           int        `json:"day"`
	Date          string     `json:"date"`
	Activities    []Activity `json:"activities"`
	EstimatedCost float64    `json:"estimated_cost"`
}

// CostEstimate is the aggregated cost breakdown of a travel plan.
type CostEstimate struct {
	Accommodation float64 `json:"accommodation"`
	Food          float64 `json:"food"`
	Transport     float64 `json:"transport"`
	Activities    float64 `json:"activities"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
}

// TravelPlan is the structured itinerary payload.
type TravelPlan struct {
	Title        string       `json:"title"`
	Destination  string       `json:"destination"`
	DurationDays int          `json:"duration_days"`
	DailyRoutes  []DayPlan    `json:"daily_routes"`
	CostEstimate CostEstimate `json:"cost_estimate"`
	Tips         string       `json:"tips,omitempty"`
}

// Landmark is a single identified landmark from image analysis.
type Landmark struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    string  `json:"location,omitempty"`
	Category    string  `json:"category,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// VisionResult is the landmark identification payload. Confidence is the
// maximum of the contained landmark confidences.
type VisionResult struct {
	Landmarks  []Landmark `json:"landmarks"`
	Summary    string     `json:"summary"`
	Confidence float64    `json:"confidence"`
}

// ChatAnswer is the conversational payload.
type ChatAnswer struct {
	Answer string `json:"answer"`
}

// ResultEnvelope is the single output contract of the assistant core.
// Exactly one of Plan, Chat or Vision is set; Source is always set, even
// for baseline results, and Confidence stays within [0,1]. Envelopes are
// read-only once returned: the orchestrator caches and shares them.
type ResultEnvelope struct {
	Plan        *TravelPlan   `json:"plan,omitempty"`
	Chat        *ChatAnswer   `json:"chat,omitempty"`
	Vision      *VisionResult `json:"vision,omitempty"`
	Source      AISource      `json:"ai_source"`
	Confidence  float64       `json:"confidence"`
	Suggestions []string      `json:"suggestions,omitempty"`
}
