package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

type fakeBackend struct {
	response string
	err      error
	calls    int
	lastReq  ports.CompletionRequest
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	b.calls++
	b.lastReq = req
	return b.response, b.err
}

type screeningPolicy struct{}

func (screeningPolicy) Evaluate(subject domain.PolicySubject) domain.PolicyDecision {
	if strings.Contains(subject.Text, "steal") {
		return domain.PolicyDecision{Verdict: domain.VerdictBlock, Reasons: []string{"illegal activity"}}
	}
	return domain.PolicyDecision{Verdict: domain.VerdictAllow}
}

func (screeningPolicy) Anonymise(text string) string { return text }

func TestAskReturnsTrimmedAnswer(t *testing.T) {
	backend := &fakeBackend{response: "  Use nmap with -sV.  \n"}
	svc := &Service{Backend: backend, Policy: screeningPolicy{}}

	answer, err := svc.Ask(context.Background(), "how do I fingerprint services?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Text != "Use nmap with -sV." {
		t.Errorf("text = %q", answer.Text)
	}
	if backend.lastReq.Mode != ports.ModeAsk {
		t.Errorf("mode = %s", backend.lastReq.Mode)
	}
}

func TestExplainWrapsCommandInPrompt(t *testing.T) {
	backend := &fakeBackend{response: "Scans every TCP port."}
	svc := &Service{Backend: backend, Policy: screeningPolicy{}}

	if _, err := svc.Explain(context.Background(), "nmap -p- target"); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !strings.Contains(backend.lastReq.Prompt, "nmap -p- target") {
		t.Errorf("prompt missing command: %q", backend.lastReq.Prompt)
	}
	if backend.lastReq.Mode != ports.ModeExplain {
		t.Errorf("mode = %s", backend.lastReq.Mode)
	}
}

func TestBlockedPromptNeverReachesBackend(t *testing.T) {
	backend := &fakeBackend{response: "never"}
	svc := &Service{Backend: backend, Policy: screeningPolicy{}}

	_, err := svc.Ask(context.Background(), "how to steal credentials from a stranger")
	if !errors.Is(err, domain.ErrBlocked) {
		t.Fatalf("err = %v, want ErrBlocked", err)
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times for a blocked prompt", backend.calls)
	}
}

func TestBackendErrorsPassThrough(t *testing.T) {
	svc := &Service{Backend: &fakeBackend{err: domain.ErrTransport}, Policy: screeningPolicy{}}

	if _, err := svc.Ask(context.Background(), "anything"); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestEmptyInputRejected(t *testing.T) {
	svc := &Service{Backend: &fakeBackend{}, Policy: screeningPolicy{}}

	if _, err := svc.Ask(context.Background(), "   "); err == nil {
		t.Error("Ask accepted blank input")
	}
	if _, err := svc.Explain(context.Background(), ""); err == nil {
		t.Error("Explain accepted blank input")
	}
}
