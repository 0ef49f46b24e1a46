package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

type openAIBackend struct {
	settings   domain.BackendSettings
	httpClient *http.Client
}

func newOpenAIBackend(settings domain.BackendSettings, client *http.Client) ports.Backend {
	return &openAIBackend{settings: settings, httpClient: client}
}

func (b *openAIBackend) Name() string {
	return "openai"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (b *openAIBackend) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	apiKey := resolveAuth(b.settings.AuthEnvVar, "OPENAI_API_KEY")
	if apiKey == "" {
		return newHeuristicBackend().Complete(ctx, req)
	}

	payload := chatCompletionRequest{
		Model:    valueOrDefault(b.settings.Model, "gpt-4o-mini"),
		Messages: toMessages(req),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := valueOrDefault(b.settings.Endpoint, "https://api.openai.com/v1/chat/completions")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("authorization", "Bearer "+apiKey)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openai %s: %w", resp.Status, domain.ErrTransport)
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("openai decode: %w", domain.ErrTransport)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("openai empty response: %w", domain.ErrTransport)
	}
	return decoded.Choices[0].Message.Content, nil
}

func toMessages(req ports.CompletionRequest) []chatMessage {
	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})
	return messages
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, domain.ErrTimeout)
	}
	return fmt.Errorf("%v: %w", err, domain.ErrTransport)
}

func resolveAuth(primary string, fallback string) string {
	if primary != "" {
		if value := os.Getenv(primary); value != "" {
			return value
		}
	}
	if fallback == "" {
		return ""
	}
	return os.Getenv(fallback)
}

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}
