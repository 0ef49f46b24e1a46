package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

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

type capturingStore struct {
	drafts []domain.Suggestion
}

func (s *capturingStore) PutBatch(drafts []domain.Suggestion, now time.Time) (domain.Batch, error) {
	s.drafts = drafts
	items := make([]domain.Suggestion, len(drafts))
	copy(items, drafts)
	for i := range items {
		items[i].ID = i + 1
	}
	return domain.Batch{Handle: "test-handle", CreatedAt: now, ExpiresAt: now.Add(time.Hour), Items: items}, nil
}

func (s *capturingStore) Resolve(id int, selector string, now time.Time) (domain.Suggestion, error) {
	return domain.Suggestion{}, domain.ErrNotFound
}

func (s *capturingStore) Latest() (domain.Batch, bool, error) { return domain.Batch{}, false, nil }

type rulePolicy struct{}

func (rulePolicy) Evaluate(subject domain.PolicySubject) domain.PolicyDecision {
	switch {
	case strings.Contains(subject.Text, "rm -rf /"):
		return domain.PolicyDecision{Verdict: domain.VerdictBlock, Reasons: []string{"destructive"}}
	case strings.Contains(subject.Text, "/8"):
		return domain.PolicyDecision{Verdict: domain.VerdictWarn, Reasons: []string{"broad range"}}
	default:
		return domain.PolicyDecision{Verdict: domain.VerdictAllow}
	}
}

func (rulePolicy) Anonymise(text string) string { return text }

type fixedPlugins struct {
	plugin domain.ToolPlugin
	found  bool
}

func (p fixedPlugins) Lookup(toolName string) (domain.ToolPlugin, bool) { return p.plugin, p.found }

type fixedShell struct {
	ctx domain.ShellContext
}

func (s fixedShell) Collect(cfg domain.Config) domain.ShellContext { return s.ctx }

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}

func newService(backend *fakeBackend, store *capturingStore) *Service {
	return &Service{
		Backend: backend,
		Policy:  rulePolicy{},
		Store:   store,
		Logger:  nopLogger{},
		Now:     func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) },
	}
}

func TestSuggestPublishesScreenedBatch(t *testing.T) {
	backend := &fakeBackend{response: "Here you go:\n```json\n" + `[
  {"tool": "nmap", "command": "nmap -sV 10.0.0.0/24", "description": "service scan"},
  {"tool": "nmap", "command": "nmap -sn 10.0.0.0/8", "description": "broad ping sweep"}
]` + "\n```\n"}
	store := &capturingStore{}
	svc := newService(backend, store)

	result, err := svc.Suggest(context.Background(), Request{Task: "scan the lab network"})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(result.Batch.Items) != 2 {
		t.Fatalf("batch size = %d, want 2", len(result.Batch.Items))
	}
	for i, item := range result.Batch.Items {
		if item.ID != i+1 {
			t.Errorf("item %d has id %d", i, item.ID)
		}
	}
	want := []domain.Suggestion{
		{Tool: "nmap", CommandText: "nmap -sV 10.0.0.0/24", Rationale: "service scan", RiskLevel: domain.RiskLow},
		{Tool: "nmap", CommandText: "nmap -sn 10.0.0.0/8", Rationale: "broad ping sweep", RiskLevel: domain.RiskMedium},
	}
	if diff := cmp.Diff(want, store.drafts); diff != "" {
		t.Errorf("drafts mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggestBlockedTaskNeverReachesBackend(t *testing.T) {
	backend := &fakeBackend{response: "[]"}
	svc := newService(backend, &capturingStore{})

	_, err := svc.Suggest(context.Background(), Request{Task: "run rm -rf / on the target"})
	if !errors.Is(err, domain.ErrBlocked) {
		t.Fatalf("err = %v, want ErrBlocked", err)
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times for a blocked task", backend.calls)
	}
}

func TestSuggestBackendFailurePassesThrough(t *testing.T) {
	backend := &fakeBackend{err: domain.ErrTimeout}
	svc := newService(backend, &capturingStore{})

	_, err := svc.Suggest(context.Background(), Request{Task: "scan something"})
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestSuggestRejectsUnusableResponse(t *testing.T) {
	for _, response := range []string{"sorry, cannot help", "[]", `[{"tool": "x", "command": "   "}]`} {
		backend := &fakeBackend{response: response}
		svc := newService(backend, &capturingStore{})
		if _, err := svc.Suggest(context.Background(), Request{Task: "scan"}); err == nil {
			t.Errorf("response %q: expected an error", response)
		}
	}
}

func TestSuggestClampsBatchSize(t *testing.T) {
	var parts []string
	for i := 0; i < 7; i++ {
		parts = append(parts, `{"tool": "nmap", "command": "nmap host`+strings.Repeat("x", i)+`", "description": "d"}`)
	}
	backend := &fakeBackend{response: "[" + strings.Join(parts, ",") + "]"}
	store := &capturingStore{}
	svc := newService(backend, store)

	result, err := svc.Suggest(context.Background(), Request{Task: "scan"})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(result.Batch.Items) != 4 {
		t.Errorf("batch size = %d, want clamp at 4", len(result.Batch.Items))
	}
}

func TestSuggestPromptCarriesLocalContext(t *testing.T) {
	backend := &fakeBackend{response: `[{"tool": "nikto", "command": "nikto -h target", "description": "d"}]`}
	svc := newService(backend, &capturingStore{})
	svc.Plugins = fixedPlugins{found: true, plugin: domain.ToolPlugin{
		Tool: "nikto",
		Categories: []domain.PluginCategory{{
			Name:     "web",
			Examples: []domain.PluginExample{{Cmd: "nikto -h http://host", Desc: "basic web scan"}},
		}},
	}}
	svc.Shell = fixedShell{ctx: domain.ShellContext{
		LastCommand:    "curl -I http://target",
		InstalledTools: []string{"nikto", "nmap"},
	}}

	if _, err := svc.Suggest(context.Background(), Request{Task: "check the web server", Tool: "nikto"}); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	prompt := backend.lastReq.Prompt
	for _, fragment := range []string{"nikto -h http://host", "curl -I http://target", "nikto, nmap", "Preferred tool: nikto"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
	if backend.lastReq.Mode != ports.ModeSuggest {
		t.Errorf("mode = %s", backend.lastReq.Mode)
	}
}

func TestSuggestDefaultsToolFromCommand(t *testing.T) {
	backend := &fakeBackend{response: `[{"command": "gobuster dir -u http://t -w list.txt", "description": "d"}]`}
	store := &capturingStore{}
	svc := newService(backend, store)

	if _, err := svc.Suggest(context.Background(), Request{Task: "enumerate"}); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got := store.drafts[0].Tool; got != "gobuster" {
		t.Errorf("tool = %q, want first command token", got)
	}
}

var _ ports.Backend = (*fakeBackend)(nil)
var _ ports.SuggestionRepository = (*capturingStore)(nil)
var _ ports.PolicyEngine = rulePolicy{}
var _ ports.PluginRepository = fixedPlugins{}
var _ ports.ShellContextCollector = fixedShell{}
