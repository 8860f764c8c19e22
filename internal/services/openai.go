package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"persona-chat/internal/conversation"
)

var (
	ErrMissingAPIKey = errors.New("missing OpenAI API key (set OPENAI_API_KEY)")
	ErrEmptyResponse = errors.New("empty response from OpenAI")
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIService sends conversation requests to an OpenAI-compatible chat
// completion endpoint.
type OpenAIService struct {
	client chatClient
}

// NewOpenAIService never fails on an empty key; requests fail instead.
func NewOpenAIService(apiKey, baseURL string) *OpenAIService {
	if apiKey == "" {
		return &OpenAIService{}
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIService{client: openai.NewClientWithConfig(config)}
}

func (s *OpenAIService) Complete(ctx context.Context, req conversation.CompletionRequest) (string, error) {
	if s.client == nil {
		return "", ErrMissingAPIKey
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, toChatCompletionRequest(req))
	if err != nil {
		log.Warn().Err(err).Str("model", req.Model).Msg("OpenAI chat completion failed")
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	log.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("OpenAI chat completion done")

	return resp.Choices[0].Message.Content, nil
}

func toChatCompletionRequest(req conversation.CompletionRequest) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	// go-openai drops a zero temperature from the payload, which the API
	// then treats as its default of 1.
	temperature := float32(req.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	}
}
