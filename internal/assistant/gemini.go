package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/jelajah/jelajah-api/internal/types"
)

const geminiModel = "gemini-2.0-flash"

var _ Adapter = (*GeminiAdapter)(nil)

// GeminiAdapter calls Google's Gemini models through the genai SDK. It is
// the primary stage for planning and chat and handles vision through the
// model's multimodal input.
type GeminiAdapter struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiAdapter builds the adapter. With an empty API key the adapter is
// constructed unconfigured and the orchestrator will skip it.
func NewGeminiAdapter(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiAdapter, error) {
	adapter := &GeminiAdapter{model: geminiModel, logger: logger}
	if apiKey == "" {
		return adapter, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	adapter.client = client
	return adapter, nil
}

func (g *GeminiAdapter) Source() types.AISource { return types.SourceGemini }

func (g *GeminiAdapter) Configured() bool { return g.client != nil }

// Attempt sends the use-case prompt (plus the image for vision) and hands
// the raw text to the response parser. Any failure surfaces as a miss.
func (g *GeminiAdapter) Attempt(ctx context.Context, req *types.AssistantRequest, uc UseCase) (*types.ResultEnvelope, error) {
	if !g.Configured() {
		return nil, nil
	}

	prompt := uc.Prompt(req)
	params := uc.Params()
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](params.Temperature),
		MaxOutputTokens:  params.MaxTokens,
		ResponseMIMEType: "application/json",
	}

	contents := genai.Text(prompt)
	if uc.Kind() == KindVision {
		if len(req.Image) == 0 {
			return nil, nil
		}
		contents = []*genai.Content{genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.Image, "image/jpeg"),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser)}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		g.logger.DebugContext(ctx, "gemini returned empty response", slog.String("use_case", string(uc.Kind())))
		return nil, nil
	}

	data, ok := ExtractJSONObject(raw, uc.RequiredFields())
	if !ok {
		g.logger.DebugContext(ctx, "gemini response rejected by parser", slog.String("use_case", string(uc.Kind())))
		return nil, nil
	}

	env, err := uc.Decode(data)
	if err != nil {
		return nil, nil
	}
	return env, nil
}
