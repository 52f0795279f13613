package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jelajah/jelajah-api/internal/assistant"
	"github.com/jelajah/jelajah-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service runs conversational turns against the assistant core and keeps
// per-session context so follow-up questions stay on topic.
type Service interface {
	SendMessage(ctx context.Context, userID, sessionID uuid.UUID, message string) (*TurnResult, error)
	GetHistory(ctx context.Context, userID, sessionID uuid.UUID, limit int) ([]types.ConversationMessage, error)
}

// TurnResult is what one chat turn returns to the handler.
type TurnResult struct {
	SessionID   uuid.UUID      `json:"session_id"`
	Answer      string         `json:"answer"`
	Source      types.AISource `json:"ai_source"`
	Confidence  float64        `json:"confidence"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

//revive:disable-next-line:exported
type ServiceImpl struct {
	logger  *slog.Logger
	runner  assistant.Runner
	repo    Repository
	topics  *cache.Cache
	useCase assistant.UseCase
}

func NewServiceImpl(runner assistant.Runner, repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		runner:  runner,
		repo:    repo,
		topics:  cache.New(30*time.Minute, 10*time.Minute),
		useCase: assistant.ChatUseCase(),
	}
}

// SendMessage runs one conversational turn. A Nil sessionID starts a fresh
// session for authenticated users; anonymous turns are answered without
// persistence and without a session.
func (s *ServiceImpl) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, message string) (*TurnResult, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "SendMessage")
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, types.ErrBadRequest
	}

	authenticated := userID != uuid.Nil
	if authenticated {
		if sessionID == uuid.Nil {
			id, err := s.repo.CreateSession(ctx, &types.ChatSession{
				UserID: userID,
				Title:  sessionTitle(message),
			})
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("create session: %w", err)
			}
			sessionID = id
		} else if _, err := s.repo.GetSession(ctx, userID, sessionID); err != nil {
			span.RecordError(err)
			return nil, err
		}
		span.SetAttributes(attribute.String("session.id", sessionID.String()))
	}

	req := &types.AssistantRequest{Message: message}
	if sessionID != uuid.Nil {
		if topic, ok := s.topics.Get(sessionID.String()); ok {
			req.Context = map[string]string{"last_topic": topic.(string)}
		}
	}

	env := s.runner.Run(ctx, req, s.useCase)
	if env == nil || env.Chat == nil {
		return nil, fmt.Errorf("assistant returned no chat payload")
	}

	if sessionID != uuid.Nil {
		if topic := extractTopic(message); topic != "" {
			s.topics.Set(sessionID.String(), topic, cache.DefaultExpiration)
		}
	}

	if authenticated {
		s.persistTurn(ctx, sessionID, message, env)
	}

	return &TurnResult{
		SessionID:   sessionID,
		Answer:      env.Chat.Answer,
		Source:      env.Source,
		Confidence:  env.Confidence,
		Suggestions: env.Suggestions,
	}, nil
}

func (s *ServiceImpl) GetHistory(ctx context.Context, userID, sessionID uuid.UUID, limit int) ([]types.ConversationMessage, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "GetHistory")
	defer span.End()

	if _, err := s.repo.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, sessionID, limit)
}

// persistTurn stores both sides of the exchange. Storage failures are logged
// and swallowed so a broken database never breaks the conversation itself.
func (s *ServiceImpl) persistTurn(ctx context.Context, sessionID uuid.UUID, message string, env *types.ResultEnvelope) {
	if err := s.repo.AddMessage(ctx, &types.ConversationMessage{
		SessionID: sessionID,
		Role:      "user",
		Content:   message,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to persist user message",
			slog.String("session_id", sessionID.String()), slog.Any("error", err))
		return
	}
	if err := s.repo.AddMessage(ctx, &types.ConversationMessage{
		SessionID:  sessionID,
		Role:       "assistant",
		Content:    env.Chat.Answer,
		Source:     env.Source,
		Confidence: env.Confidence,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to persist assistant message",
			slog.String("session_id", sessionID.String()), slog.Any("error", err))
		return
	}
	if err := s.repo.TouchSession(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to touch session",
			slog.String("session_id", sessionID.String()), slog.Any("error", err))
	}
}

// sessionTitle derives a short title from the opening message.
func sessionTitle(message string) string {
	const maxTitle = 60
	title := strings.Join(strings.Fields(message), " ")
	if runes := []rune(title); len(runes) > maxTitle {
		title = string(runes[:maxTitle])
	}
	return title
}

// extractTopic keeps the destination of the turn, if any, as the carry-over
// topic for the next one.
func extractTopic(message string) string {
	q := assistant.ExtractTripQuery(message)
	return q.Destination
}
