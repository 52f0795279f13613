package assistant

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jelajah/jelajah-api/internal/types"
	"github.com/jelajah/jelajah-api/pkg/observability"
)

const defaultAttemptTimeout = 30 * time.Second

// Runner is the orchestration contract consumed by the domain services.
type Runner interface {
	Run(ctx context.Context, req *types.AssistantRequest, uc UseCase) *types.ResultEnvelope
}

var _ Runner = (*Orchestrator)(nil)

// Orchestrator drives the ordered fallback chain. Stages run strictly in
// priority order, never concurrently: a later stage's cost is only paid once
// the previous stage has definitively failed. The baseline stage terminates
// the machine and cannot fail, so Run always returns an envelope.
type Orchestrator struct {
	logger         *slog.Logger
	chain          []Adapter
	cache          *cache.Cache
	metrics        *observability.AssistantMetrics
	attemptTimeout time.Duration
}

// Option tweaks orchestrator construction.
type Option func(*Orchestrator)

// WithMetrics attaches the Prometheus metric set.
func WithMetrics(m *observability.AssistantMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithAttemptTimeout overrides the per-adapter call timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.attemptTimeout = d }
}

// WithCacheTTL overrides the response cache expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) { o.cache = cache.New(ttl, ttl/2) }
}

// NewOrchestrator builds the fallback chain over the given adapters, in
// priority order.
func NewOrchestrator(chain []Adapter, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:         logger,
		chain:          chain,
		cache:          cache.New(1*time.Hour, 10*time.Minute),
		attemptTimeout: defaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run tries each stage in order and returns the first usable envelope,
// falling back to the use case's deterministic baseline when every provider
// misses. The returned envelope is tagged with exactly the stage that
// produced it; the tag is never inferred from payload content.
//
// Envelopes may be served from cache and shared between concurrent callers.
// Callers must treat the result as read-only.
func (o *Orchestrator) Run(ctx context.Context, req *types.AssistantRequest, uc UseCase) *types.ResultEnvelope {
	ctx, span := otel.Tracer("AssistantOrchestrator").Start(ctx, "Run", trace.WithAttributes(
		attribute.String("assistant.use_case", string(uc.Kind())),
	))
	defer span.End()

	cacheKey := responseCacheKey(uc, req)
	if cached, found := o.cache.Get(cacheKey); found {
		if env, ok := cached.(*types.ResultEnvelope); ok {
			span.SetAttributes(attribute.Bool("assistant.cache_hit", true))
			return env
		}
	}

	depth := 0
	for _, adapter := range o.chain {
		if ctx.Err() != nil {
			// Caller went away; the baseline still guarantees an envelope,
			// no provider call should be started.
			break
		}

		if !adapter.Configured() {
			// A skip, not a failure: identical in effect, distinguishable
			// in logs and metrics.
			o.logger.DebugContext(ctx, "provider skipped, not configured",
				slog.String("provider", string(adapter.Source())))
			o.metrics.RecordAttempt(string(adapter.Source()), string(types.AttemptSkip), 0)
			continue
		}

		depth++
		attempt := o.tryAdapter(ctx, adapter, req, uc)
		o.metrics.RecordAttempt(string(attempt.Provider), string(attempt.Outcome), attempt.Elapsed)

		if attempt.Outcome == types.AttemptSuccess && attempt.result != nil {
			env := attempt.result
			env.Source = adapter.Source()
			o.cache.Set(cacheKey, env, cache.DefaultExpiration)
			o.metrics.RecordResult(string(env.Source), depth)
			span.SetAttributes(attribute.String("assistant.source", string(env.Source)))
			span.SetStatus(codes.Ok, "provider result")
			return env
		}
	}

	env := uc.Baseline(req)
	env.Source = types.SourceBaseline
	o.metrics.RecordResult(string(env.Source), depth+1)
	span.SetAttributes(attribute.String("assistant.source", string(env.Source)))
	span.SetStatus(codes.Ok, "baseline result")
	return env
}

type attemptRecord struct {
	types.ProviderAttempt
	result *types.ResultEnvelope
}

// tryAdapter invokes one stage with a bounded timeout. Errors and panics are
// contained here: one misbehaving provider can never prevent the chain from
// continuing.
func (o *Orchestrator) tryAdapter(ctx context.Context, adapter Adapter, req *types.AssistantRequest, uc UseCase) attemptRecord {
	attemptCtx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
	defer cancel()

	start := time.Now()
	record := attemptRecord{ProviderAttempt: types.ProviderAttempt{Provider: adapter.Source()}}

	env, err := o.safeAttempt(attemptCtx, adapter, req, uc)
	record.Elapsed = time.Since(start)

	switch {
	case err != nil:
		record.Outcome = types.AttemptError
		o.logger.WarnContext(ctx, "provider attempt failed",
			slog.String("provider", string(adapter.Source())),
			slog.String("use_case", string(uc.Kind())),
			slog.Duration("elapsed", record.Elapsed),
			slog.Any("error", err))
	case env == nil:
		record.Outcome = types.AttemptEmpty
		o.logger.WarnContext(ctx, "provider returned no usable result",
			slog.String("provider", string(adapter.Source())),
			slog.String("use_case", string(uc.Kind())),
			slog.Duration("elapsed", record.Elapsed))
	default:
		record.Outcome = types.AttemptSuccess
		record.result = env
		o.logger.InfoContext(ctx, "provider attempt succeeded",
			slog.String("provider", string(adapter.Source())),
			slog.String("use_case", string(uc.Kind())),
			slog.Duration("elapsed", record.Elapsed))
	}
	return record
}

func (o *Orchestrator) safeAttempt(ctx context.Context, adapter Adapter, req *types.AssistantRequest, uc UseCase) (env *types.ResultEnvelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			env = nil
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()
	return adapter.Attempt(ctx, req, uc)
}

func responseCacheKey(uc UseCase, req *types.AssistantRequest) string {
	h := md5.New()
	h.Write([]byte(uc.Prompt(req)))
	// The vision prompt is constant; the image is the real input.
	h.Write(req.Image)
	return fmt.Sprintf("%s:%s", uc.Kind(), hex.EncodeToString(h.Sum(nil)))
}
