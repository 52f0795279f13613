package plan

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelajah/jelajah-api/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepositoryImpl(mock, testLogger()), mock
}

func samplePlan() types.TravelPlan {
	return types.TravelPlan{
		Title:        "Perjalanan 2 Hari ke Bali",
		Destination:  "Bali",
		DurationDays: 2,
		DailyRoutes: []types.DayPlan{
			{Day: 1, Activities: []types.Activity{{Time: "09:00", Name: "Pantai Kuta", Cost: 50000}}, EstimatedCost: 50000},
			{Day: 2, Activities: []types.Activity{{Time: "10:00", Name: "Ubud", Cost: 150000}}, EstimatedCost: 150000},
		},
		CostEstimate: types.CostEstimate{Total: 200000, Currency: "IDR"},
	}
}

func TestSavePlan(t *testing.T) {
	repo, mock := newMockRepo(t)

	userID := uuid.New()
	planID := uuid.New()
	record := &types.SavedPlan{
		UserID:       userID,
		Destination:  "Bali",
		DurationDays: 2,
		Plan:         samplePlan(),
		Source:       types.SourceGemini,
		Confidence:   0.8,
	}
	payload, err := json.Marshal(record.Plan)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO travel_plans (user_id,destination,duration_days,plan,ai_source,confidence) VALUES ($1,$2,$3,$4,$5,$6) RETURNING id")).
		WithArgs(userID, "Bali", 2, payload, "gemini", 0.8).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(planID))

	id, err := repo.SavePlan(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, planID, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlan(t *testing.T) {
	repo, mock := newMockRepo(t)

	userID := uuid.New()
	planID := uuid.New()
	payload, err := json.Marshal(samplePlan())
	require.NoError(t, err)
	createdAt := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, user_id, destination, duration_days, plan, ai_source, confidence, created_at FROM travel_plans WHERE id = $1 AND user_id = $2")).
		WithArgs(planID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "destination", "duration_days", "plan", "ai_source", "confidence", "created_at"}).
			AddRow(planID, userID, "Bali", 2, payload, "gemini", 0.8, createdAt))

	record, err := repo.GetPlan(context.Background(), userID, planID)

	require.NoError(t, err)
	assert.Equal(t, planID, record.ID)
	assert.Equal(t, "Bali", record.Destination)
	assert.Equal(t, types.SourceGemini, record.Source)
	assert.Len(t, record.Plan.DailyRoutes, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlanNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .* FROM travel_plans").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetPlan(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPlans(t *testing.T) {
	repo, mock := newMockRepo(t)

	userID := uuid.New()
	payload, err := json.Marshal(samplePlan())
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, user_id, destination, duration_days, plan, ai_source, confidence, created_at FROM travel_plans WHERE user_id = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "destination", "duration_days", "plan", "ai_source", "confidence", "created_at"}).
			AddRow(uuid.New(), userID, "Bali", 2, payload, "gemini", 0.8, time.Now()).
			AddRow(uuid.New(), userID, "Lombok", 3, payload, "baseline", 0.1, time.Now()))

	records, err := repo.ListPlans(context.Background(), userID, 1, 20)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Lombok", records[1].Destination)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePlan(t *testing.T) {
	repo, mock := newMockRepo(t)

	userID := uuid.New()
	planID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM travel_plans WHERE id = $1 AND user_id = $2")).
		WithArgs(planID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.DeletePlan(context.Background(), userID, planID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePlanNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM travel_plans").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeletePlan(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSavePlanQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO travel_plans").
		WillReturnError(errors.New("connection reset"))

	record := &types.SavedPlan{UserID: uuid.New(), Plan: samplePlan(), Source: types.SourceBaseline}
	_, err := repo.SavePlan(context.Background(), record)

	assert.Error(t, err)
}
