package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/jelajah/jelajah-api/internal/types"
)

// heuristicConfidence is used when a provider does not self-report one.
const heuristicConfidence = 0.8

// PlanUseCase returns the trip-planning strategy.
func PlanUseCase() UseCase { return planUseCase{} }

// ChatUseCase returns the conversational strategy.
func ChatUseCase() UseCase { return chatUseCase{} }

// VisionUseCase returns the landmark identification strategy.
func VisionUseCase() UseCase { return visionUseCase{} }

type planUseCase struct{}

func (planUseCase) Kind() UseCaseKind { return KindPlan }

func (planUseCase) Prompt(req *types.AssistantRequest) string { return buildPlanPrompt(req) }

func (planUseCase) RequiredFields() []string {
	return []string{"title", "destination", "duration_days", "daily_routes", "cost_estimate"}
}

func (planUseCase) Params() GenerationParams {
	return GenerationParams{MaxTokens: 1000, Temperature: 0.7}
}

func (planUseCase) Decode(data []byte) (*types.ResultEnvelope, error) {
	var payload struct {
		types.TravelPlan
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode travel plan: %w", err)
	}
	if len(payload.DailyRoutes) == 0 {
		return nil, fmt.Errorf("travel plan has no daily routes")
	}
	return &types.ResultEnvelope{
		Plan:       &payload.TravelPlan,
		Confidence: clampConfidence(payload.Confidence),
	}, nil
}

func (planUseCase) Baseline(req *types.AssistantRequest) *types.ResultEnvelope {
	return baselinePlan(req)
}

type chatUseCase struct{}

func (chatUseCase) Kind() UseCaseKind { return KindChat }

func (chatUseCase) Prompt(req *types.AssistantRequest) string { return buildChatPrompt(req) }

func (chatUseCase) RequiredFields() []string { return []string{"answer"} }

func (chatUseCase) Params() GenerationParams {
	return GenerationParams{MaxTokens: 500, Temperature: 0.7}
}

func (chatUseCase) Decode(data []byte) (*types.ResultEnvelope, error) {
	var payload struct {
		Answer      string   `json:"answer"`
		Confidence  *float64 `json:"confidence"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode chat answer: %w", err)
	}
	if payload.Answer == "" {
		return nil, fmt.Errorf("chat answer is empty")
	}
	if len(payload.Suggestions) > 3 {
		payload.Suggestions = payload.Suggestions[:3]
	}
	return &types.ResultEnvelope{
		Chat:        &types.ChatAnswer{Answer: payload.Answer},
		Confidence:  clampConfidence(payload.Confidence),
		Suggestions: payload.Suggestions,
	}, nil
}

func (chatUseCase) Baseline(req *types.AssistantRequest) *types.ResultEnvelope {
	return baselineChat(req)
}

type visionUseCase struct{}

func (visionUseCase) Kind() UseCaseKind { return KindVision }

func (visionUseCase) Prompt(req *types.AssistantRequest) string { return buildVisionPrompt(req) }

func (visionUseCase) RequiredFields() []string { return []string{"landmarks", "summary"} }

func (visionUseCase) Params() GenerationParams {
	return GenerationParams{MaxTokens: 500, Temperature: 0.3}
}

func (visionUseCase) Decode(data []byte) (*types.ResultEnvelope, error) {
	var payload types.VisionResult
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode vision result: %w", err)
	}
	if len(payload.Landmarks) == 0 {
		return nil, fmt.Errorf("vision result has no landmarks")
	}
	// Overall confidence is the best landmark confidence. Provider-reported
	// scores are untrusted and clamped into [0, 1].
	payload.Confidence = 0
	for i := range payload.Landmarks {
		c := clampConfidence(&payload.Landmarks[i].Confidence)
		payload.Landmarks[i].Confidence = c
		if c > payload.Confidence {
			payload.Confidence = c
		}
	}
	return &types.ResultEnvelope{
		Vision:     &payload,
		Confidence: payload.Confidence,
	}, nil
}

func (visionUseCase) Baseline(req *types.AssistantRequest) *types.ResultEnvelope {
	return baselineVision(req)
}

func clampConfidence(v *float64) float64 {
	if v == nil {
		return heuristicConfidence
	}
	switch {
	case *v < 0:
		return 0
	case *v > 1:
		return 1
	default:
		return *v
	}
}
