package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelajah/jelajah-api/internal/assistant"
	"github.com/jelajah/jelajah-api/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRunner struct {
	env  *types.ResultEnvelope
	last *types.AssistantRequest
}

func (f *fakeRunner) Run(_ context.Context, req *types.AssistantRequest, _ assistant.UseCase) *types.ResultEnvelope {
	f.last = req
	return f.env
}

type fakeRepo struct {
	sessions     map[uuid.UUID]*types.ChatSession
	messages     []*types.ConversationMessage
	createErr    error
	addErr       error
	touchedCount int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[uuid.UUID]*types.ChatSession)}
}

func (f *fakeRepo) CreateSession(_ context.Context, session *types.ChatSession) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	id := uuid.New()
	session.ID = id
	f.sessions[id] = session
	return id, nil
}

func (f *fakeRepo) GetSession(_ context.Context, userID, sessionID uuid.UUID) (*types.ChatSession, error) {
	session, ok := f.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, types.ErrNotFound
	}
	return session, nil
}

func (f *fakeRepo) TouchSession(context.Context, uuid.UUID) error {
	f.touchedCount++
	return nil
}

func (f *fakeRepo) AddMessage(_ context.Context, message *types.ConversationMessage) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeRepo) ListMessages(_ context.Context, sessionID uuid.UUID, _ int) ([]types.ConversationMessage, error) {
	var out []types.ConversationMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func chatEnvelope(answer string) *types.ResultEnvelope {
	return &types.ResultEnvelope{
		Chat:        &types.ChatAnswer{Answer: answer},
		Source:      types.SourceGemini,
		Confidence:  0.8,
		Suggestions: []string{"Lanjut?"},
	}
}

func TestSendMessageAnonymous(t *testing.T) {
	runner := &fakeRunner{env: chatEnvelope("Halo juga!")}
	repo := newFakeRepo()
	service := NewServiceImpl(runner, repo, testLogger())

	result, err := service.SendMessage(context.Background(), uuid.Nil, uuid.Nil, "Halo")

	require.NoError(t, err)
	assert.Equal(t, "Halo juga!", result.Answer)
	assert.Equal(t, uuid.Nil, result.SessionID, "anonymous turns never get a session")
	assert.Empty(t, repo.sessions)
	assert.Empty(t, repo.messages)
}

func TestSendMessageCreatesSessionAndPersists(t *testing.T) {
	runner := &fakeRunner{env: chatEnvelope("Coba ke Bali!")}
	repo := newFakeRepo()
	service := NewServiceImpl(runner, repo, testLogger())

	userID := uuid.New()
	result, err := service.SendMessage(context.Background(), userID, uuid.Nil, "Rekomendasi liburan?")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.SessionID)
	require.Len(t, repo.messages, 2)
	assert.Equal(t, "user", repo.messages[0].Role)
	assert.Equal(t, "Rekomendasi liburan?", repo.messages[0].Content)
	assert.Equal(t, "assistant", repo.messages[1].Role)
	assert.Equal(t, "Coba ke Bali!", repo.messages[1].Content)
	assert.Equal(t, types.SourceGemini, repo.messages[1].Source)
	assert.Equal(t, 1, repo.touchedCount)
}

func TestSendMessageExistingSessionOwnership(t *testing.T) {
	runner := &fakeRunner{env: chatEnvelope("ok")}
	repo := newFakeRepo()
	service := NewServiceImpl(runner, repo, testLogger())

	owner := uuid.New()
	sessionID, err := repo.CreateSession(context.Background(), &types.ChatSession{UserID: owner})
	require.NoError(t, err)

	// Another user cannot post into someone else's session.
	_, err = service.SendMessage(context.Background(), uuid.New(), sessionID, "Halo")
	assert.ErrorIs(t, err, types.ErrNotFound)

	// The owner can.
	result, err := service.SendMessage(context.Background(), owner, sessionID, "Halo")
	require.NoError(t, err)
	assert.Equal(t, sessionID, result.SessionID)
}

func TestSendMessageCarriesTopicBetweenTurns(t *testing.T) {
	runner := &fakeRunner{env: chatEnvelope("ok")}
	repo := newFakeRepo()
	service := NewServiceImpl(runner, repo, testLogger())

	userID := uuid.New()
	first, err := service.SendMessage(context.Background(), userID, uuid.Nil, "Saya mau ke Bali minggu depan")
	require.NoError(t, err)

	_, err = service.SendMessage(context.Background(), userID, first.SessionID, "Berapa budget yang cukup?")
	require.NoError(t, err)

	require.NotNil(t, runner.last.Context)
	assert.Equal(t, "Bali", runner.last.Context["last_topic"])
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	service := NewServiceImpl(&fakeRunner{env: chatEnvelope("ok")}, newFakeRepo(), testLogger())

	_, err := service.SendMessage(context.Background(), uuid.Nil, uuid.Nil, "   ")

	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestSendMessageStorageFailureStillAnswers(t *testing.T) {
	runner := &fakeRunner{env: chatEnvelope("tetap jalan")}
	repo := newFakeRepo()
	repo.addErr = errors.New("database down")
	service := NewServiceImpl(runner, repo, testLogger())

	result, err := service.SendMessage(context.Background(), uuid.New(), uuid.Nil, "Halo")

	require.NoError(t, err)
	assert.Equal(t, "tetap jalan", result.Answer)
}

func TestSessionTitleTruncatesOnRuneBoundary(t *testing.T) {
	long := "Café " + strings.Repeat("é", 80)

	title := sessionTitle(long)

	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, 60, utf8.RuneCountInString(title))
}

func TestSessionTitleKeepsShortMessages(t *testing.T) {
	assert.Equal(t, "Mau ke Bali", sessionTitle("  Mau   ke \n Bali "))
}

func TestGetHistoryEnforcesOwnership(t *testing.T) {
	repo := newFakeRepo()
	service := NewServiceImpl(&fakeRunner{env: chatEnvelope("ok")}, repo, testLogger())

	owner := uuid.New()
	sessionID, err := repo.CreateSession(context.Background(), &types.ChatSession{UserID: owner})
	require.NoError(t, err)
	require.NoError(t, repo.AddMessage(context.Background(), &types.ConversationMessage{
		SessionID: sessionID, Role: "user", Content: "Halo",
	}))

	_, err = service.GetHistory(context.Background(), uuid.New(), sessionID, 50)
	assert.ErrorIs(t, err, types.ErrNotFound)

	messages, err := service.GetHistory(context.Background(), owner, sessionID, 50)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}
