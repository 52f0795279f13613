package plan

import (
	"context"
	"encoding/json"
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

// Querier is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists generated itineraries for authenticated users.
type Repository interface {
	SavePlan(ctx context.Context, record *types.SavedPlan) (uuid.UUID, error)
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*types.SavedPlan, error)
	ListPlans(ctx context.Context, userID uuid.UUID, page, limit int) ([]types.SavedPlan, error)
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error
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

func (r *RepositoryImpl) SavePlan(ctx context.Context, record *types.SavedPlan) (uuid.UUID, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "SavePlan", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "travel_plans"),
		attribute.String("user.id", record.UserID.String()),
	))
	defer span.End()

	payload, err := json.Marshal(record.Plan)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("marshal plan payload: %w", err)
	}

	query, args, err := psql.Insert("travel_plans").
		Columns("user_id", "destination", "duration_days", "plan", "ai_source", "confidence").
		Values(record.UserID, record.Destination, record.DurationDays, payload, string(record.Source), record.Confidence).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("build insert: %w", err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save plan")
		return uuid.Nil, fmt.Errorf("save plan: %w", err)
	}

	span.SetStatus(codes.Ok, "plan saved")
	return id, nil
}

func (r *RepositoryImpl) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*types.SavedPlan, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "GetPlan", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "travel_plans"),
	))
	defer span.End()

	query, args, err := psql.Select("id", "user_id", "destination", "duration_days", "plan", "ai_source", "confidence", "created_at").
		From("travel_plans").
		Where(sq.Eq{"id": planID, "user_id": userID}).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build select: %w", err)
	}

	record, err := scanPlan(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return record, nil
}

func (r *RepositoryImpl) ListPlans(ctx context.Context, userID uuid.UUID, page, limit int) ([]types.SavedPlan, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "ListPlans", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "travel_plans"),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query, args, err := psql.Select("id", "user_id", "destination", "duration_days", "plan", "ai_source", "confidence", "created_at").
		From("travel_plans").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var records []types.SavedPlan
	for rows.Next() {
		record, err := scanPlan(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return records, nil
}

func (r *RepositoryImpl) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "DeletePlan", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "travel_plans"),
	))
	defer span.End()

	query, args, err := psql.Delete("travel_plans").
		Where(sq.Eq{"id": planID, "user_id": userID}).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func scanPlan(row pgx.Row) (*types.SavedPlan, error) {
	var record types.SavedPlan
	var payload []byte
	var source string
	if err := row.Scan(&record.ID, &record.UserID, &record.Destination, &record.DurationDays,
		&payload, &source, &record.Confidence, &record.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &record.Plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan payload: %w", err)
	}
	record.Source = types.AISource(source)
	return &record, nil
}
