package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"quiz_admin_backend/internal/config"
	"quiz_admin_backend/internal/model"
)

// HintProvider 外部提示能力：给定题目与学生追问，返回一条提示文本。
// 可能超时或失败，失败不得消耗配额（由调用方保证）。
type HintProvider interface {
	Hint(ctx context.Context, question model.Question, userQuery string) (string, error)
}

// AIService 调用OpenAI兼容的chat completions接口生成提示
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// UpdateConfig 配置热更新回调用
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.client.Timeout = cfg.Timeout
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) Hint(ctx context.Context, question model.Question, userQuery string) (string, error) {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()

	// 提示词只带题干和选项，绝不带正确答案
	prompt := fmt.Sprintf(
		"Give me a hint for this question: %s\nOptions:\nA) %s\nB) %s\nC) %s\nD) %s\nMy query: %s",
		question.Question,
		question.OptionA, question.OptionB, question.OptionC, question.OptionD,
		userQuery,
	)

	messages := []AIChatMessage{
		{
			Role:    "system",
			Content: "You are a Teaching Assistant. Give hints, but NEVER the answer.",
		},
		{
			Role:    "user",
			Content: prompt,
		},
	}

	reqBody := ChatCompletionRequest{
		Model:    cfg.Model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}
