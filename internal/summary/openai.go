package summary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// Саммари статей через chat completion
type OpenAISummarizer struct {
	client *openai.Client
	model  string
	prompt string
	// Без ключа summarizer ничего не делает
	enabled bool
	mu      sync.Mutex
}

func NewOpenAISummarizer(apiKey, model, prompt string) *OpenAISummarizer {
	s := &OpenAISummarizer{
		client:  openai.NewClient(apiKey),
		model:   model,
		prompt:  prompt,
		enabled: apiKey != "",
	}

	log.Printf("[INFO] openai summarizer enabled: %v", s.enabled)

	return s
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || strings.TrimSpace(text) == "" {
		return "", nil
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("%s%s", text, s.prompt),
			},
		},
		MaxTokens:   256,
		Temperature: 0.7,
		TopP:        1,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}

	return trimToSentence(resp.Choices[0].Message.Content), nil
}

// Модель может оборвать ответ на полуслове: отрезаем недописанное предложение
func trimToSentence(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasSuffix(raw, ".") {
		return raw
	}

	idx := strings.LastIndex(raw, ".")
	if idx < 0 {
		return raw
	}

	return raw[:idx+1]
}
