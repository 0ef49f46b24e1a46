// Package backend adapts external language-model providers to the narrow
// completion contract the pipeline depends on.
package backend

import (
	"net/http"
	"strings"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// Factory builds backends from configuration. The rest of the pipeline never
// learns which provider answered.
type Factory struct {
	httpClient *http.Client
}

// NewFactory returns a factory with a shared HTTP client. Per-request
// deadlines come from the caller's context, not the client.
func NewFactory() *Factory {
	return &Factory{httpClient: &http.Client{}}
}

// ForConfig implements ports.BackendFactory.
func (f *Factory) ForConfig(cfg domain.Config) (ports.Backend, error) {
	switch inferProvider(cfg.Backend) {
	case "openai":
		return newOpenAIBackend(cfg.Backend, f.httpClient), nil
	case "ollama":
		return newOllamaBackend(cfg.Backend, f.httpClient), nil
	default:
		return newHeuristicBackend(), nil
	}
}

func inferProvider(settings domain.BackendSettings) string {
	if settings.Provider != "" {
		return strings.ToLower(settings.Provider)
	}
	switch {
	case strings.Contains(settings.Endpoint, "openai.com"):
		return "openai"
	case strings.Contains(settings.Endpoint, "11434"), strings.Contains(settings.Endpoint, "localhost"):
		return "ollama"
	default:
		return "heuristic"
	}
}

var _ ports.BackendFactory = (*Factory)(nil)
