package backend

import (
	"context"
	"strings"

	"github.com/kaalsec/kaalsec/internal/ports"
)

// heuristicBackend is the offline fallback used when no provider is
// configured or no credentials are present. It answers suggest-mode requests
// with a canned JSON batch so the rest of the pipeline stays exercisable.
type heuristicBackend struct{}

func newHeuristicBackend() ports.Backend {
	return heuristicBackend{}
}

func (heuristicBackend) Name() string {
	return "heuristic"
}

func (heuristicBackend) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	if req.Mode == ports.ModeSuggest {
		return guessSuggestions(req.Prompt), nil
	}
	return "No AI backend configured. Set backend.provider in ~/.kaalsec/config.yaml.", nil
}

func guessSuggestions(prompt string) string {
	lower := strings.ToLower(prompt)
	target := firstIPToken(lower)
	if target == "" {
		target = "10.0.0.5"
	}
	switch {
	case strings.Contains(lower, "web") || strings.Contains(lower, "http"):
		return `[{"tool": "nikto", "command": "nikto -h http://` + target + `", "description": "Baseline web server scan"},
 {"tool": "gobuster", "command": "gobuster dir -u http://` + target + ` -w /usr/share/wordlists/dirb/common.txt", "description": "Directory enumeration"}]`
	case strings.Contains(lower, "scan") || strings.Contains(lower, "port") || strings.Contains(lower, "nmap"):
		return `[{"tool": "nmap", "command": "nmap -sCV -p 22,80,443 ` + target + `", "description": "Service and version detection on common ports"},
 {"tool": "nmap", "command": "nmap -sn ` + target + `", "description": "Host discovery sweep"}]`
	default:
		return `[{"tool": "nmap", "command": "nmap -sV ` + target + `", "description": "Version scan of the target"}]`
	}
}

func firstIPToken(text string) string {
	for _, field := range strings.Fields(text) {
		trimmed := strings.Trim(field, ",;")
		if looksLikeTarget(trimmed) {
			return trimmed
		}
	}
	return ""
}

func looksLikeTarget(token string) bool {
	dots := strings.Count(token, ".")
	if dots != 3 {
		return false
	}
	for _, r := range token {
		if (r < '0' || r > '9') && r != '.' && r != '/' {
			return false
		}
	}
	return true
}
