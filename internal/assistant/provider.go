package assistant

import (
	"context"

	"github.com/jelajah/jelajah-api/internal/types"
)

// UseCaseKind names one of the three assistant flows.
type UseCaseKind string

const (
	KindPlan   UseCaseKind = "plan"
	KindChat   UseCaseKind = "chat"
	KindVision UseCaseKind = "vision"
)

// GenerationParams carries the provider-agnostic sampling knobs. Each
// adapter translates them into its own wire format.
type GenerationParams struct {
	MaxTokens   int32
	Temperature float32
}

// UseCase parameterizes the shared orchestration shape. The fallback state
// machine is identical for planning, chat and vision; only the prompt, the
// required response fields, the payload decoder and the baseline differ.
type UseCase interface {
	Kind() UseCaseKind
	// Prompt renders the provider prompt, embedding the expected output
	// schema inline for structured use cases.
	Prompt(req *types.AssistantRequest) string
	// RequiredFields lists the top-level JSON fields a provider response
	// must carry to be accepted.
	RequiredFields() []string
	// Decode turns a validated JSON object into a result envelope. The
	// envelope's Source is left unset; the orchestrator tags it with the
	// stage that produced it.
	Decode(data []byte) (*types.ResultEnvelope, error)
	// Baseline deterministically synthesizes a last-resort envelope. It
	// cannot fail.
	Baseline(req *types.AssistantRequest) *types.ResultEnvelope
	Params() GenerationParams
}

// Adapter translates a normalized request into one provider's wire format
// and back. Attempt never lets transport, auth, timeout or decode failures
// escape as panics: a miss is (nil, nil), a failure is (nil, err), and the
// orchestrator treats both as a transition to the next stage.
type Adapter interface {
	Source() types.AISource
	// Configured reports whether the adapter has the credentials it needs.
	// An unconfigured adapter is skipped, not failed.
	Configured() bool
	Attempt(ctx context.Context, req *types.AssistantRequest, uc UseCase) (*types.ResultEnvelope, error)
}
