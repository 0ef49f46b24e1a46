// Package query handles the free-form backend flows: ask a question, explain
// a command. Both screen the prompt through policy first so blocked requests
// never leave the machine.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

const (
	askSystemPrompt = `You are a penetration-testing assistant on a Kali-style workstation.
Answer concisely and practically. Assume the operator works inside an
authorized engagement and cite the relevant tools where useful.`

	explainSystemPrompt = `You are a penetration-testing assistant. Explain the given shell
command for an operator reviewing it before execution: what it does, each
significant flag, and what side effects to expect. Be concise.`
)

// Answer is a backend response plus the policy decision on the prompt.
type Answer struct {
	Text     string
	Decision domain.PolicyDecision
}

// Service answers ask and explain requests.
type Service struct {
	Backend ports.Backend
	Policy  ports.PolicyEngine
	Logger  ports.Logger
}

// Ask sends a free-form question to the backend.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	return s.complete(ctx, question, question, askSystemPrompt, ports.ModeAsk)
}

// Explain asks the backend to break down a command before the operator runs
// it.
func (s *Service) Explain(ctx context.Context, command string) (Answer, error) {
	prompt := fmt.Sprintf("Explain this command:\n\n%s", command)
	return s.complete(ctx, command, prompt, explainSystemPrompt, ports.ModeExplain)
}

func (s *Service) complete(ctx context.Context, subject, prompt, system string, mode ports.CompletionMode) (Answer, error) {
	if strings.TrimSpace(subject) == "" {
		return Answer{}, fmt.Errorf("empty %s input", mode)
	}
	decision := s.Policy.Evaluate(domain.PolicySubject{
		Kind: domain.SubjectPrompt,
		Text: subject,
	})
	if decision.Blocked() {
		return Answer{Decision: decision}, fmt.Errorf("request refused: %w", domain.ErrBlocked)
	}

	text, err := s.Backend.Complete(ctx, ports.CompletionRequest{
		Prompt: prompt,
		System: system,
		Mode:   mode,
	})
	if err != nil {
		return Answer{Decision: decision}, err
	}
	return Answer{Text: strings.TrimSpace(text), Decision: decision}, nil
}
