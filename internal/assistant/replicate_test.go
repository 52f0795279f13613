package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jelajah/jelajah-api/internal/types"
)

func newReplicateAdapter(t *testing.T, handler http.HandlerFunc) *ReplicateAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter := NewReplicateAdapter("test-token", true, server.Client(), testLogger())
	adapter.baseURL = server.URL
	adapter.pollInterval = time.Millisecond
	adapter.maxPolls = 5
	return adapter
}

func TestReplicateGating(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		enabled bool
		want    bool
	}{
		{"enabled with token", "tok", true, true},
		{"enabled without token", "", true, false},
		{"disabled with token", "tok", false, false},
		{"disabled without token", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewReplicateAdapter(tt.token, tt.enabled, http.DefaultClient, testLogger())
			assert.Equal(t, tt.want, adapter.Configured())
		})
	}
}

func TestReplicateSubmitPollSucceeded(t *testing.T) {
	polls := 0
	adapter := newReplicateAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/predictions":
			assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(replicatePrediction{ID: "p1", Status: "starting"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/predictions/p1":
			polls++
			status := "processing"
			var output json.RawMessage
			if polls >= 2 {
				status = "succeeded"
				output = json.RawMessage(`["{\"answer\": \"Dari", " replicate\"}"]`)
			}
			json.NewEncoder(w).Encode(replicatePrediction{ID: "p1", Status: status, Output: output})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	env, err := adapter.Attempt(context.Background(), &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "Dari replicate", env.Chat.Answer)
	assert.Equal(t, 2, polls)
}

func TestReplicateTerminalFailureIsMiss(t *testing.T) {
	adapter := newReplicateAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(replicatePrediction{ID: "p1", Status: "starting"})
			return
		}
		json.NewEncoder(w).Encode(replicatePrediction{ID: "p1", Status: "failed"})
	})

	env, err := adapter.Attempt(context.Background(), &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	assert.NoError(t, err, "a failed prediction is a miss, not an error")
	assert.Nil(t, env)
}

func TestReplicatePollCapReached(t *testing.T) {
	polls := 0
	adapter := newReplicateAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(replicatePrediction{ID: "p1", Status: "starting"})
			return
		}
		polls++
		json.NewEncoder(w).Encode(replicatePrediction{ID: "p1", Status: "processing"})
	})

	env, err := adapter.Attempt(context.Background(), &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	assert.NoError(t, err)
	assert.Nil(t, env)
	assert.Equal(t, adapter.maxPolls, polls)
}

func TestReplicateSubmitRejectedStatus(t *testing.T) {
	adapter := newReplicateAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	env, err := adapter.Attempt(context.Background(), &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	assert.Error(t, err)
	assert.Nil(t, env)
}

func TestReplicateCanceledContextStopsPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	adapter := newReplicateAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(replicatePrediction{ID: "p1", Status: "starting"})
			// Caller goes away while the prediction is still running.
			cancel()
			return
		}
		t.Error("poll must not run after cancellation")
	})
	adapter.pollInterval = 50 * time.Millisecond

	env, err := adapter.Attempt(ctx, &types.AssistantRequest{Message: "Halo"}, ChatUseCase())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, env)
}

func TestReplicateVisionCaption(t *testing.T) {
	adapter := newReplicateAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var payload struct {
				Input map[string]any `json:"input"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Contains(t, payload.Input["image"], "data:image/jpeg;base64,")

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(replicatePrediction{ID: "p1", Status: "starting"})
			return
		}
		json.NewEncoder(w).Encode(replicatePrediction{
			ID:     "p1",
			Status: "succeeded",
			Output: json.RawMessage(`"an aerial photo of mount bromo with volcanic smoke"`),
		})
	})

	env, err := adapter.Attempt(context.Background(), &types.AssistantRequest{Image: []byte{0xFF, 0xD8}}, VisionUseCase())

	require.NoError(t, err)
	require.NotNil(t, env)
	require.NotEmpty(t, env.Vision.Landmarks)
	assert.Equal(t, "Gunung Bromo", env.Vision.Landmarks[0].Name)
}

func TestFlattenOutput(t *testing.T) {
	assert.Equal(t, "abc", flattenOutput(json.RawMessage(`"abc"`)))
	assert.Equal(t, "abc", flattenOutput(json.RawMessage(`["a", "b", "c"]`)))
	assert.Equal(t, "", flattenOutput(nil))
	assert.Equal(t, "", flattenOutput(json.RawMessage(`{"k": 1}`)))
}
