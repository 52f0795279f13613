package assistant

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jelajah/jelajah-api/internal/types"
)

const defaultHFBaseURL = "https://api-inference.huggingface.co"

// Fixed, fully enumerated candidate order. The first candidate whose output
// parses wins; a candidate is never retried.
var hfTextModels = []string{
	"microsoft/DialoGPT-medium",
	"facebook/blenderbot-400M-distill",
	"google/flan-t5-base",
}

const (
	hfCaptionModel = "Salesforce/blip-image-captioning-base"
	hfClipModel    = "openai/clip-vit-base-patch32"
)

var hfClipCandidates = []string{
	"Monas Jakarta", "Borobudur Temple", "Prambanan Temple",
	"Uluwatu Temple Bali", "Mount Bromo", "Lake Toba",
	"Komodo Island", "Raja Ampat", "Tana Toraja",
	"Yogyakarta Palace", "Bandung", "Malioboro Street",
}

var _ Adapter = (*HuggingFaceAdapter)(nil)

// HuggingFaceAdapter calls the Hugging Face inference API. Text use cases
// iterate the candidate model list; vision captions the image first and
// falls back to zero-shot classification against known landmarks.
type HuggingFaceAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHuggingFaceAdapter builds the adapter around a pooled HTTP client.
func NewHuggingFaceAdapter(apiKey string, httpClient *http.Client, logger *slog.Logger) *HuggingFaceAdapter {
	return &HuggingFaceAdapter{
		baseURL:    defaultHFBaseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (h *HuggingFaceAdapter) Source() types.AISource { return types.SourceHuggingFace }

func (h *HuggingFaceAdapter) Configured() bool { return h.apiKey != "" }

func (h *HuggingFaceAdapter) Attempt(ctx context.Context, req *types.AssistantRequest, uc UseCase) (*types.ResultEnvelope, error) {
	if !h.Configured() {
		return nil, nil
	}
	if uc.Kind() == KindVision {
		return h.attemptVision(ctx, req)
	}
	return h.attemptText(ctx, req, uc)
}

func (h *HuggingFaceAdapter) attemptText(ctx context.Context, req *types.AssistantRequest, uc UseCase) (*types.ResultEnvelope, error) {
	prompt := uc.Prompt(req)
	params := uc.Params()

	payload, err := json.Marshal(map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"max_new_tokens":   params.MaxTokens,
			"temperature":      params.Temperature,
			"return_full_text": false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal inference payload: %w", err)
	}

	var lastErr error
	for _, model := range hfTextModels {
		body, err := h.post(ctx, "/models/"+model, "application/json", bytes.NewReader(payload))
		if err != nil {
			lastErr = err
			h.logger.DebugContext(ctx, "huggingface model failed",
				slog.String("model", model), slog.Any("error", err))
			continue
		}

		var results []struct {
			GeneratedText string `json:"generated_text"`
		}
		if err := json.Unmarshal(body, &results); err != nil || len(results) == 0 {
			continue
		}

		data, ok := ExtractJSONObject(results[0].GeneratedText, uc.RequiredFields())
		if !ok {
			continue
		}
		env, err := uc.Decode(data)
		if err != nil {
			continue
		}
		return env, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all huggingface models failed: %w", lastErr)
	}
	return nil, nil
}

func (h *HuggingFaceAdapter) attemptVision(ctx context.Context, req *types.AssistantRequest) (*types.ResultEnvelope, error) {
	if len(req.Image) == 0 {
		return nil, nil
	}

	// Captioning first, keyword matching against the landmark table after.
	body, err := h.post(ctx, "/models/"+hfCaptionModel, "application/octet-stream", bytes.NewReader(req.Image))
	if err == nil {
		var results []struct {
			GeneratedText string `json:"generated_text"`
		}
		if jsonErr := json.Unmarshal(body, &results); jsonErr == nil && len(results) > 0 && results[0].GeneratedText != "" {
			vision := DetectLandmarks(results[0].GeneratedText)
			return &types.ResultEnvelope{Vision: vision, Confidence: vision.Confidence}, nil
		}
	} else {
		h.logger.DebugContext(ctx, "blip captioning failed", slog.Any("error", err))
	}

	// Zero-shot classification as the in-adapter fallback.
	payload, err := json.Marshal(map[string]any{
		"inputs": map[string]any{
			"image":      base64.StdEncoding.EncodeToString(req.Image),
			"candidates": hfClipCandidates,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal clip payload: %w", err)
	}

	body, err = h.post(ctx, "/models/"+hfClipModel, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("clip classification: %w", err)
	}

	var scored []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(body, &scored); err != nil || len(scored) == 0 {
		return nil, nil
	}

	best := scored[0]
	for _, s := range scored[1:] {
		if s.Score > best.Score {
			best = s
		}
	}

	score := clampConfidence(&best.Score)
	vision := &types.VisionResult{
		Landmarks: []types.Landmark{{
			Name:        best.Label,
			Description: fmt.Sprintf("Landmark yang teridentifikasi dengan tingkat kepercayaan %.2f", score),
			Confidence:  score,
		}},
		Summary:    fmt.Sprintf("Teridentifikasi sebagai %s", best.Label),
		Confidence: score,
	}
	return &types.ResultEnvelope{Vision: vision, Confidence: vision.Confidence}, nil
}

// post issues one inference call and returns the response body on 2xx.
func (h *HuggingFaceAdapter) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("inference call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inference call returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
