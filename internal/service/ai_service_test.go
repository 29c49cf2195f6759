package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz_admin_backend/internal/config"

	"github.com/stretchr/testify/require"
)

func TestAIServiceHint(t *testing.T) {
	question := testQuestions()[0]

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)
		require.Contains(t, req.Messages[0].Content, "NEVER the answer")
		require.Contains(t, req.Messages[1].Content, question.Question)
		// 提示词不得泄露正确答案
		require.NotContains(t, req.Messages[1].Content, "Answer: "+question.Answer)

		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []struct {
				Message AIChatMessage `json:"message"`
			}{
				{Message: AIChatMessage{Role: "assistant", Content: "consider the acronym"}},
			},
		})
	}))
	defer server.Close()

	svc := NewAIService(config.AIConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})

	hint, err := svc.Hint(context.Background(), question, "where do I start?")
	require.NoError(t, err)
	require.Equal(t, "consider the acronym", hint)
}

func TestAIServiceHintUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewAIService(config.AIConfig{BaseURL: server.URL, Timeout: 5 * time.Second})

	_, err := svc.Hint(context.Background(), testQuestions()[0], "hint")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "429"))
}

func TestAIServiceHintNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	svc := NewAIService(config.AIConfig{BaseURL: server.URL, Timeout: 5 * time.Second})

	_, err := svc.Hint(context.Background(), testQuestions()[0], "hint")
	require.Error(t, err)
}

func TestAIServiceUpdateConfig(t *testing.T) {
	svc := NewAIService(config.AIConfig{BaseURL: "http://old", Model: "old-model", Timeout: time.Second})

	svc.UpdateConfig(config.AIConfig{BaseURL: "http://new", Model: "new-model", Timeout: 2 * time.Second})

	svc.mu.RLock()
	defer svc.mu.RUnlock()
	require.Equal(t, "http://new", svc.config.BaseURL)
	require.Equal(t, "new-model", svc.config.Model)
	require.Equal(t, 2*time.Second, svc.client.Timeout)
}
