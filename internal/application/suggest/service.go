// Package suggest turns a task description into a cached batch of proposed
// commands: prompt construction, backend completion, response parsing, policy
// screening and batch publication.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

const (
	maxSuggestions = 4

	systemPrompt = `You are a penetration-testing command assistant running on a Kali-style workstation.
Respond with a JSON array only, no prose and no code fences. Each element:
{"tool": "<binary name>", "command": "<full command line>", "description": "<one-line rationale>"}.
Propose between 2 and 4 commands. Only propose actions appropriate for an
authorized engagement against targets the operator names.`
)

// Request is one suggest invocation.
type Request struct {
	Task string
	// Tool, when set, biases the prompt toward a specific utility.
	Tool string
}

// Result carries the published batch and the policy decision on the prompt
// itself, so the CLI can show the legal banner when required.
type Result struct {
	Batch    domain.Batch
	Decision domain.PolicyDecision
}

// Service produces suggestion batches.
type Service struct {
	Backend ports.Backend
	Policy  ports.PolicyEngine
	Store   ports.SuggestionRepository
	Plugins ports.PluginRepository
	Shell   ports.ShellContextCollector
	Logger  ports.Logger
	Config  domain.Config
	Now     func() time.Time
}

// Suggest asks the backend for commands, screens them and publishes the batch.
func (s *Service) Suggest(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Task) == "" {
		return Result{}, fmt.Errorf("empty task description")
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	decision := s.Policy.Evaluate(domain.PolicySubject{
		Kind: domain.SubjectPrompt,
		Text: req.Task,
	})
	if decision.Blocked() {
		return Result{Decision: decision}, fmt.Errorf("task %q: %w", req.Task, domain.ErrBlocked)
	}

	raw, err := s.Backend.Complete(ctx, ports.CompletionRequest{
		Prompt: s.buildPrompt(req),
		System: systemPrompt,
		Mode:   ports.ModeSuggest,
	})
	if err != nil {
		return Result{Decision: decision}, err
	}

	drafts, err := parseSuggestions(raw)
	if err != nil {
		return Result{Decision: decision}, err
	}

	for i := range drafts {
		verdict := s.Policy.Evaluate(domain.PolicySubject{
			Kind: domain.SubjectCommand,
			Text: drafts[i].CommandText,
			Tool: drafts[i].Tool,
		})
		drafts[i].RiskLevel = verdict.RiskLevel()
	}

	batch, err := s.Store.PutBatch(drafts, now())
	if err != nil {
		return Result{Decision: decision}, err
	}
	s.Logger.Debug("batch published", map[string]interface{}{
		"handle": batch.Handle,
		"count":  len(batch.Items),
	})
	return Result{Batch: batch, Decision: decision}, nil
}

// buildPrompt enriches the task with whatever local context is available:
// the last typed command, recent history and plugin knowledge for the tool.
func (s *Service) buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", req.Task)
	if req.Tool != "" {
		fmt.Fprintf(&b, "Preferred tool: %s\n", req.Tool)
		if s.Plugins != nil {
			if plugin, ok := s.Plugins.Lookup(req.Tool); ok {
				b.WriteString("Known usage examples for this tool:\n")
				for _, example := range plugin.AllExamples() {
					fmt.Fprintf(&b, "  %s  # %s\n", example.Cmd, example.Desc)
				}
			}
		}
	}
	if s.Shell != nil {
		sctx := s.Shell.Collect(s.Config)
		if sctx.LastCommand != "" {
			fmt.Fprintf(&b, "Operator's last shell command: %s\n", sctx.LastCommand)
		}
		if len(sctx.RecentHistory) > 0 {
			b.WriteString("Recent shell history:\n")
			for _, line := range sctx.RecentHistory {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		if len(sctx.InstalledTools) > 0 {
			fmt.Fprintf(&b, "Installed tools: %s\n", strings.Join(sctx.InstalledTools, ", "))
		}
	}
	return b.String()
}

type backendSuggestion struct {
	Tool        string `json:"tool"`
	Command     string `json:"command"`
	Description string `json:"description"`
}

// parseSuggestions extracts the JSON array from the backend response. Models
// wrap answers in fences or prose often enough that scanning for the array
// delimiters is more reliable than strict decoding.
func parseSuggestions(raw string) ([]domain.Suggestion, error) {
	payload := extractArray(raw)
	if payload == "" {
		return nil, fmt.Errorf("backend response contains no suggestion array")
	}
	var parsed []backendSuggestion
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}

	drafts := make([]domain.Suggestion, 0, len(parsed))
	for _, p := range parsed {
		command := strings.TrimSpace(p.Command)
		if command == "" {
			continue
		}
		tool := strings.TrimSpace(p.Tool)
		if tool == "" {
			tool = firstToken(command)
		}
		drafts = append(drafts, domain.Suggestion{
			Tool:        tool,
			CommandText: command,
			Rationale:   strings.TrimSpace(p.Description),
		})
		if len(drafts) == maxSuggestions {
			break
		}
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("backend proposed no usable commands")
	}
	return drafts, nil
}

func extractArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func firstToken(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
