package plan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jelajah/jelajah-api/internal/assistant"
	"github.com/jelajah/jelajah-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service generates itineraries through the assistant core and persists
// them for authenticated users.
type Service interface {
	CreatePlan(ctx context.Context, userID uuid.UUID, req *types.AssistantRequest) (*types.ResultEnvelope, error)
	CreatePlanFromText(ctx context.Context, userID uuid.UUID, message string) (*types.ResultEnvelope, error)
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*types.SavedPlan, error)
	ListPlans(ctx context.Context, userID uuid.UUID, page, limit int) ([]types.SavedPlan, error)
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error
}

//revive:disable-next-line:exported
type ServiceImpl struct {
	logger  *slog.Logger
	runner  assistant.Runner
	repo    Repository
	useCase assistant.UseCase
}

func NewServiceImpl(runner assistant.Runner, repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		runner:  runner,
		repo:    repo,
		useCase: assistant.PlanUseCase(),
	}
}

// CreatePlan serves the structured form entry point.
func (s *ServiceImpl) CreatePlan(ctx context.Context, userID uuid.UUID, req *types.AssistantRequest) (*types.ResultEnvelope, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "CreatePlan", trace.WithAttributes(
		attribute.String("plan.destination", req.Destination),
		attribute.Int("plan.duration_days", req.DurationDays),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrBadRequest, err)
	}

	env := s.runner.Run(ctx, req, s.useCase)
	s.persist(ctx, userID, env)
	return env, nil
}

// CreatePlanFromText serves the free-text entry point: the trip query is
// recovered lexically first so providers get a structured prompt, and the
// baseline gets the enhanced extraction-driven path.
func (s *ServiceImpl) CreatePlanFromText(ctx context.Context, userID uuid.UUID, message string) (*types.ResultEnvelope, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "CreatePlanFromText")
	defer span.End()

	if message == "" {
		return nil, fmt.Errorf("%w: message is required", types.ErrBadRequest)
	}

	q := assistant.ExtractTripQuery(message)
	s.logger.InfoContext(ctx, "extracted trip query from message",
		slog.String("destination", q.Destination),
		slog.Int("duration_days", q.DurationDays),
		slog.String("budget", string(q.Budget)))

	req := &types.AssistantRequest{
		Destination:  q.Destination,
		DurationDays: q.DurationDays,
		Budget:       q.Budget,
		Preferences:  q.Interests,
		Message:      message,
	}

	env := s.runner.Run(ctx, req, s.useCase)
	s.persist(ctx, userID, env)
	return env, nil
}

func (s *ServiceImpl) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*types.SavedPlan, error) {
	return s.repo.GetPlan(ctx, userID, planID)
}

func (s *ServiceImpl) ListPlans(ctx context.Context, userID uuid.UUID, page, limit int) ([]types.SavedPlan, error) {
	return s.repo.ListPlans(ctx, userID, page, limit)
}

func (s *ServiceImpl) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	return s.repo.DeletePlan(ctx, userID, planID)
}

// persist stores the result for authenticated callers. Persistence sits
// outside the assistant core; a storage failure degrades to a log entry,
// the caller still gets the envelope.
func (s *ServiceImpl) persist(ctx context.Context, userID uuid.UUID, env *types.ResultEnvelope) {
	if userID == uuid.Nil || env.Plan == nil {
		return
	}

	record := &types.SavedPlan{
		UserID:       userID,
		Destination:  env.Plan.Destination,
		DurationDays: env.Plan.DurationDays,
		Plan:         *env.Plan,
		Source:       env.Source,
		Confidence:   env.Confidence,
	}
	if _, err := s.repo.SavePlan(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "failed to persist travel plan",
			slog.String("user_id", userID.String()),
			slog.Any("error", err))
	}
}
