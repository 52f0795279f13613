package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jelajah/jelajah-api/internal/types"
)

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists chat sessions and their turns.
type Repository interface {
	CreateSession(ctx context.Context, session *types.ChatSession) (uuid.UUID, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.ChatSession, error)
	TouchSession(ctx context.Context, sessionID uuid.UUID) error
	AddMessage(ctx context.Context, message *types.ConversationMessage) error
	ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]types.ConversationMessage, error)
}

//revive:disable-next-line:exported
type RepositoryImpl struct {
	logger *slog.Logger
	db     Querier
}

func NewRepositoryImpl(db Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *RepositoryImpl) CreateSession(ctx context.Context, session *types.ChatSession) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "CreateSession", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_sessions"),
		attribute.String("user.id", session.UserID.String()),
	))
	defer span.End()

	query, args, err := psql.Insert("chat_sessions").
		Columns("user_id", "title").
		Values(session.UserID, session.Title).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("build insert: %w", err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create session")
		return uuid.Nil, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.ChatSession, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "GetSession", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_sessions"),
	))
	defer span.End()

	query, args, err := psql.Select("id", "user_id", "title", "created_at", "updated_at").
		From("chat_sessions").
		Where(sq.Eq{"id": sessionID, "user_id": userID}).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build select: %w", err)
	}

	var session types.ChatSession
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&session.ID, &session.UserID, &session.Title, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (r *RepositoryImpl) TouchSession(ctx context.Context, sessionID uuid.UUID) error {
	query, args, err := psql.Update("chat_sessions").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) AddMessage(ctx context.Context, message *types.ConversationMessage) error {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "AddMessage", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_messages"),
		attribute.String("session.id", message.SessionID.String()),
	))
	defer span.End()

	query, args, err := psql.Insert("chat_messages").
		Columns("session_id", "role", "content", "ai_source", "confidence").
		Values(message.SessionID, message.Role, message.Content, string(message.Source), message.Confidence).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add message")
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]types.ConversationMessage, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "ListMessages", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_messages"),
	))
	defer span.End()

	if limit < 1 || limit > 200 {
		limit = 50
	}

	query, args, err := psql.Select("id", "session_id", "role", "content", "ai_source", "confidence", "created_at").
		From("chat_messages").
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []types.ConversationMessage
	for rows.Next() {
		var m types.ConversationMessage
		var source string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &source, &m.Confidence, &m.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Source = types.AISource(source)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
