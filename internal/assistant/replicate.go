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
	"strings"
	"time"

	"github.com/jelajah/jelajah-api/internal/types"
)

const (
	defaultReplicateBaseURL = "https://api.replicate.com"

	// Bounded poll loop: a fixed sleep before a single fetch races the job
	// completing, so every job is polled at a fixed interval up to a hard
	// iteration cap.
	replicatePollInterval = 1 * time.Second
	replicateMaxPolls     = 30
)

var _ Adapter = (*ReplicateAdapter)(nil)

// ReplicateAdapter drives Replicate's asynchronous prediction API:
// submit, poll until a terminal status, fetch the output. It is the
// tertiary stage and is additionally gated by a feature flag.
type ReplicateAdapter struct {
	baseURL      string
	token        string
	enabled      bool
	httpClient   *http.Client
	logger       *slog.Logger
	pollInterval time.Duration
	maxPolls     int
}

// NewReplicateAdapter builds the adapter. Both the enabled flag and the
// token must be present for the stage to participate in the chain.
func NewReplicateAdapter(token string, enabled bool, httpClient *http.Client, logger *slog.Logger) *ReplicateAdapter {
	return &ReplicateAdapter{
		baseURL:      defaultReplicateBaseURL,
		token:        token,
		enabled:      enabled,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: replicatePollInterval,
		maxPolls:     replicateMaxPolls,
	}
}

func (r *ReplicateAdapter) Source() types.AISource { return types.SourceReplicate }

func (r *ReplicateAdapter) Configured() bool { return r.enabled && r.token != "" }

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (r *ReplicateAdapter) Attempt(ctx context.Context, req *types.AssistantRequest, uc UseCase) (*types.ResultEnvelope, error) {
	if !r.Configured() {
		return nil, nil
	}

	input := map[string]any{
		"prompt":      uc.Prompt(req),
		"max_tokens":  uc.Params().MaxTokens,
		"temperature": uc.Params().Temperature,
	}
	if uc.Kind() == KindVision {
		if len(req.Image) == 0 {
			return nil, nil
		}
		input["image"] = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(req.Image)
	}

	prediction, err := r.submit(ctx, input)
	if err != nil {
		return nil, err
	}

	output, err := r.poll(ctx, prediction)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return nil, nil
	}

	if uc.Kind() == KindVision {
		// Replicate vision models return a caption, not JSON.
		vision := DetectLandmarks(output)
		return &types.ResultEnvelope{Vision: vision, Confidence: vision.Confidence}, nil
	}

	data, ok := ExtractJSONObject(output, uc.RequiredFields())
	if !ok {
		return nil, nil
	}
	env, err := uc.Decode(data)
	if err != nil {
		return nil, nil
	}
	return env, nil
}

func (r *ReplicateAdapter) submit(ctx context.Context, input map[string]any) (*replicatePrediction, error) {
	payload, err := json.Marshal(map[string]any{
		"version": "latest",
		"input":   input,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal prediction payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/predictions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+r.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit prediction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("submit prediction returned status %d", resp.StatusCode)
	}

	var prediction replicatePrediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	return &prediction, nil
}

// poll fetches the prediction status at a fixed interval until it reaches a
// terminal state, the iteration cap is hit, or the caller cancels.
func (r *ReplicateAdapter) poll(ctx context.Context, prediction *replicatePrediction) (string, error) {
	getURL := prediction.URLs.Get
	if getURL == "" {
		getURL = fmt.Sprintf("%s/v1/predictions/%s", r.baseURL, prediction.ID)
	}

	for i := 0; i < r.maxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.pollInterval):
		}

		current, err := r.fetch(ctx, getURL)
		if err != nil {
			return "", err
		}

		switch current.Status {
		case "succeeded":
			return flattenOutput(current.Output), nil
		case "failed", "canceled":
			// Terminal failure is a miss, not an error worth surfacing.
			r.logger.DebugContext(ctx, "replicate prediction did not succeed",
				slog.String("prediction_id", current.ID),
				slog.String("status", current.Status))
			return "", nil
		}
	}

	r.logger.DebugContext(ctx, "replicate prediction poll cap reached",
		slog.String("prediction_id", prediction.ID),
		slog.Int("max_polls", r.maxPolls))
	return "", nil
}

func (r *ReplicateAdapter) fetch(ctx context.Context, url string) (*replicatePrediction, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+r.token)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("poll prediction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll prediction returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read poll response: %w", err)
	}

	var current replicatePrediction
	if err := json.Unmarshal(body, &current); err != nil {
		return nil, fmt.Errorf("decode poll response: %w", err)
	}
	return &current, nil
}

// flattenOutput joins replicate output, which is either a string or a list
// of string chunks.
func flattenOutput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var chunks []string
	if err := json.Unmarshal(raw, &chunks); err == nil {
		return strings.Join(chunks, "")
	}
	return ""
}
