package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelajah/jelajah-api/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAdapter is a function-field test double for the Adapter interface.
type fakeAdapter struct {
	source     types.AISource
	configured bool
	calls      int
	attempt    func(ctx context.Context, req *types.AssistantRequest, uc UseCase) (*types.ResultEnvelope, error)
}

func (f *fakeAdapter) Source() types.AISource { return f.source }

func (f *fakeAdapter) Configured() bool { return f.configured }

func (f *fakeAdapter) Attempt(ctx context.Context, req *types.AssistantRequest, uc UseCase) (*types.ResultEnvelope, error) {
	f.calls++
	return f.attempt(ctx, req, uc)
}

func planRequest() *types.AssistantRequest {
	return &types.AssistantRequest{
		Destination:  "Bali",
		DurationDays: 3,
		Budget:       types.BudgetMedium,
	}
}

func chatEnvelope(answer string) *types.ResultEnvelope {
	return &types.ResultEnvelope{
		Chat:       &types.ChatAnswer{Answer: answer},
		Confidence: 0.9,
	}
}

func TestRunAllUnconfiguredFallsBackToBaseline(t *testing.T) {
	chain := []Adapter{
		&fakeAdapter{source: types.SourceGemini},
		&fakeAdapter{source: types.SourceHuggingFace},
		&fakeAdapter{source: types.SourceReplicate},
	}
	o := NewOrchestrator(chain, testLogger())

	env := o.Run(context.Background(), planRequest(), PlanUseCase())

	require.NotNil(t, env)
	assert.Equal(t, types.SourceBaseline, env.Source)
	assert.Equal(t, BaselineConfidence, env.Confidence)
	require.NotNil(t, env.Plan)
	for _, adapter := range chain {
		assert.Zero(t, adapter.(*fakeAdapter).calls, "unconfigured adapter must never be called")
	}
}

func TestRunFirstSuccessStopsChain(t *testing.T) {
	first := &fakeAdapter{
		source:     types.SourceGemini,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			return chatEnvelope("dari gemini"), nil
		},
	}
	second := &fakeAdapter{
		source:     types.SourceHuggingFace,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			return chatEnvelope("dari huggingface"), nil
		},
	}
	o := NewOrchestrator([]Adapter{first, second}, testLogger())

	env := o.Run(context.Background(), &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	require.NotNil(t, env.Chat)
	assert.Equal(t, "dari gemini", env.Chat.Answer)
	assert.Equal(t, types.SourceGemini, env.Source)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls, "later stage must not run after a success")
}

func TestRunErrorAdvancesToNextStage(t *testing.T) {
	failing := &fakeAdapter{
		source:     types.SourceGemini,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	succeeding := &fakeAdapter{
		source:     types.SourceHuggingFace,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			return chatEnvelope("cadangan"), nil
		},
	}
	o := NewOrchestrator([]Adapter{failing, succeeding}, testLogger())

	env := o.Run(context.Background(), &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	assert.Equal(t, types.SourceHuggingFace, env.Source)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, succeeding.calls)
}

func TestRunPanicIsContained(t *testing.T) {
	panicking := &fakeAdapter{
		source:     types.SourceGemini,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			panic("nil map write")
		},
	}
	succeeding := &fakeAdapter{
		source:     types.SourceHuggingFace,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			return chatEnvelope("selamat"), nil
		},
	}
	o := NewOrchestrator([]Adapter{panicking, succeeding}, testLogger())

	var env *types.ResultEnvelope
	require.NotPanics(t, func() {
		env = o.Run(context.Background(), &types.AssistantRequest{Message: "Halo"}, ChatUseCase())
	})
	assert.Equal(t, types.SourceHuggingFace, env.Source)
}

func TestRunSourceTagComesFromStageNotPayload(t *testing.T) {
	// The adapter decodes a payload that lies about its origin; the
	// orchestrator must overwrite it with the stage that actually ran.
	lying := &fakeAdapter{
		source:     types.SourceHuggingFace,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			env := chatEnvelope("jawaban")
			env.Source = types.SourceGemini
			return env, nil
		},
	}
	o := NewOrchestrator([]Adapter{lying}, testLogger())

	env := o.Run(context.Background(), &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	assert.Equal(t, types.SourceHuggingFace, env.Source)
}

func TestRunEmptyResultAdvances(t *testing.T) {
	empty := &fakeAdapter{
		source:     types.SourceGemini,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			return nil, nil
		},
	}
	o := NewOrchestrator([]Adapter{empty}, testLogger())

	env := o.Run(context.Background(), &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	assert.Equal(t, types.SourceBaseline, env.Source)
	assert.Equal(t, 1, empty.calls)
}

func TestRunCachesSuccessfulResponses(t *testing.T) {
	counting := &fakeAdapter{
		source:     types.SourceGemini,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			return chatEnvelope("pertama"), nil
		},
	}
	o := NewOrchestrator([]Adapter{counting}, testLogger())

	req := &types.AssistantRequest{Message: "Rekomendasi wisata Bali?"}
	first := o.Run(context.Background(), req, ChatUseCase())
	second := o.Run(context.Background(), req, ChatUseCase())

	assert.Equal(t, 1, counting.calls, "second identical request must hit the cache")
	assert.Same(t, first, second)

	// A different message misses the cache.
	o.Run(context.Background(), &types.AssistantRequest{Message: "Rekomendasi wisata Lombok?"}, ChatUseCase())
	assert.Equal(t, 2, counting.calls)
}

func TestRunCanceledContextSkipsProviders(t *testing.T) {
	counting := &fakeAdapter{
		source:     types.SourceGemini,
		configured: true,
		attempt: func(context.Context, *types.AssistantRequest, UseCase) (*types.ResultEnvelope, error) {
			return chatEnvelope("tidak pernah"), nil
		},
	}
	o := NewOrchestrator([]Adapter{counting}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := o.Run(ctx, &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	assert.Zero(t, counting.calls)
	assert.Equal(t, types.SourceBaseline, env.Source)
}

func TestRunBaselineConfidenceWithinRange(t *testing.T) {
	o := NewOrchestrator(nil, testLogger())

	for _, uc := range []UseCase{PlanUseCase(), ChatUseCase(), VisionUseCase()} {
		env := o.Run(context.Background(), &types.AssistantRequest{
			Destination:  "Bali",
			DurationDays: 2,
			Message:      "Halo",
			Image:        []byte{0x01},
		}, uc)
		require.NotNil(t, env, "use case %s", uc.Kind())
		assert.Equal(t, types.SourceBaseline, env.Source)
		assert.GreaterOrEqual(t, env.Confidence, 0.0)
		assert.LessOrEqual(t, env.Confidence, 1.0)
	}
}
