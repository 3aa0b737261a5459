package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nutricoach/backend/internal/chatparse"
	"github.com/nutricoach/backend/internal/logging"
	"github.com/nutricoach/backend/internal/models"
	"github.com/nutricoach/backend/internal/nutrition"
	"github.com/nutricoach/backend/internal/prompt"
	"github.com/nutricoach/backend/internal/types"
)

const (
	chatHistoryTTL      = 24 * time.Hour
	maxHistoryMessages  = 20
	chatTemperature     = 0.7
	maxErrorBodyPreview = 512
)

// LLMConfig configures the OpenAI-compatible chat completions endpoint
type LLMConfig struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
}

// LLMService runs the coaching conversation against a chat completions API
type LLMService struct {
	apiKey   string
	apiURL   string
	model    string
	client   *http.Client
	redis    *redis.Client
	profiles IDietProfileService
	plans    IPlanService
	logger   *zap.Logger
}

var _ IChatService = (*LLMService)(nil)

// NewLLMService creates a new LLMService instance. redis may be nil, which
// makes every conversation stateless.
func NewLLMService(cfg LLMConfig, redisClient *redis.Client, profiles IDietProfileService, plans IPlanService, logger *zap.Logger) *LLMService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLMService{
		apiKey:   cfg.APIKey,
		apiURL:   cfg.APIURL,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
		redis:    redisClient,
		profiles: profiles,
		plans:    plans,
		logger:   logging.OrNop(logger),
	}
}

// Request represents a chat completions request
type Request struct {
	Model       string           `json:"model"`
	Messages    []prompt.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends the user's message with their profile context and recent
// history, parses the reply and saves any plan it contains
func (s *LLMService) Chat(ctx context.Context, userID uuid.UUID, message string) (*types.ChatResponse, error) {
	stored, err := s.profiles.GetDietProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := stored.ToProfile()
	system := prompt.BuildSystemPrompt(profile, nutrition.CalculateTargets(profile))

	history := s.loadHistory(ctx, userID)
	raw, err := s.complete(ctx, prompt.BuildMessages(system, history, message))
	if err != nil {
		s.logger.Error("chat completion failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	s.appendHistory(ctx, userID,
		prompt.Message{Role: prompt.RoleUser, Content: message},
		prompt.Message{Role: prompt.RoleAssistant, Content: raw},
	)

	parsed := chatparse.Parse(raw)
	resp := &types.ChatResponse{Bubbles: parsed.Bubbles, DietPlan: parsed.DietPlan}
	if resp.Bubbles == nil {
		resp.Bubbles = []string{}
	}

	if parsed.DietPlan != nil {
		saved, err := s.plans.SavePlan(ctx, userID, models.PlanSourceChat, *parsed.DietPlan)
		if err != nil {
			// the reply is still useful without the saved copy
			s.logger.Warn("failed to save chat plan", zap.String("user_id", userID.String()), zap.Error(err))
		} else {
			resp.PlanID = &saved.ID
		}
	}

	return resp, nil
}

// ClearHistory forgets the user's conversation
func (s *LLMService) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	if err := s.redis.Del(ctx, chatHistoryKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}

func (s *LLMService) complete(ctx context.Context, messages []prompt.Message) (string, error) {
	if s.apiKey == "" {
		return "", errors.New("LLM_API_KEY is not set")
	}

	reqBody := Request{
		Model:       s.model,
		Messages:    messages,
		Temperature: chatTemperature,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyPreview))
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no choices in API response")
	}
	return result.Choices[0].Message.Content, nil
}

func chatHistoryKey(userID uuid.UUID) string {
	return fmt.Sprintf("chat:history:%s", userID)
}

func (s *LLMService) loadHistory(ctx context.Context, userID uuid.UUID) []prompt.Message {
	if s.redis == nil {
		return nil
	}
	items, err := s.redis.LRange(ctx, chatHistoryKey(userID), 0, -1).Result()
	if err != nil {
		s.logger.Warn("failed to load chat history", zap.Error(err))
		return nil
	}
	history := make([]prompt.Message, 0, len(items))
	for _, item := range items {
		var m prompt.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		history = append(history, m)
	}
	return history
}

// appendHistory keeps the last maxHistoryMessages messages for a day
func (s *LLMService) appendHistory(ctx context.Context, userID uuid.UUID, msgs ...prompt.Message) {
	if s.redis == nil {
		return
	}
	key := chatHistoryKey(userID)
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			continue
		}
		values = append(values, data)
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, -maxHistoryMessages, -1)
		pipe.Expire(ctx, key, chatHistoryTTL)
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to save chat history", zap.Error(err))
	}
}
