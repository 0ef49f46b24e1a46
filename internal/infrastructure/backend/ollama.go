package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

type ollamaBackend struct {
	settings   domain.BackendSettings
	httpClient *http.Client
}

func newOllamaBackend(settings domain.BackendSettings, client *http.Client) ports.Backend {
	return &ollamaBackend{settings: settings, httpClient: client}
}

func (b *ollamaBackend) Name() string {
	return "ollama"
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (b *ollamaBackend) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + prompt
	}

	payload := ollamaRequest{
		Model:  valueOrDefault(b.settings.Model, "qwen2.5"),
		Prompt: prompt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	host := strings.TrimRight(valueOrDefault(b.settings.Endpoint, "http://localhost:11434"), "/")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("content-type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama %s: %w", resp.Status, domain.ErrTransport)
	}

	var decoded ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("ollama decode: %w", domain.ErrTransport)
	}
	return strings.TrimSpace(decoded.Response), nil
}
