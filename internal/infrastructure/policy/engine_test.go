package policy

import (
	"testing"

	"github.com/kaalsec/kaalsec/internal/domain"
)

func newTestEngine(t *testing.T, settings domain.PolicySettings) *Engine {
	t.Helper()
	engine, err := NewEngine("/nonexistent/policy.yaml", settings)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	return engine
}

func TestEngineBlocksDestructiveCommands(t *testing.T) {
	engine := newTestEngine(t, domain.PolicySettings{})

	decision := engine.Evaluate(domain.PolicySubject{
		Kind: domain.SubjectCommand,
		Text: "rm -rf /",
	})
	if decision.Verdict != domain.VerdictBlock {
		t.Fatalf("expected block, got %+v", decision)
	}
	if len(decision.Reasons) == 0 {
		t.Fatal("block decision must carry a reason")
	}
}

func TestEngineAllowsKnownToolCommand(t *testing.T) {
	engine := newTestEngine(t, domain.PolicySettings{})

	decision := engine.Evaluate(domain.PolicySubject{
		Kind: domain.SubjectCommand,
		Text: "nmap -sCV -p 22,80,443 10.0.0.5",
		Tool: "nmap",
	})
	if decision.Verdict != domain.VerdictAllow {
		t.Fatalf("expected allow, got %+v", decision)
	}
	if len(decision.Reasons) != 0 {
		t.Fatalf("allow decision must have no reasons, got %v", decision.Reasons)
	}
}

func TestEngineWarnsOnBroadRange(t *testing.T) {
	engine := newTestEngine(t, domain.PolicySettings{})

	decision := engine.Evaluate(domain.PolicySubject{
		Kind: domain.SubjectCommand,
		Text: "nmap 10.0.0.0/8",
		Tool: "nmap",
	})
	if decision.Verdict != domain.VerdictWarn {
		t.Fatalf("expected warn for /8 range, got %+v", decision)
	}
	if !decision.RequiresBanner {
		t.Fatal("warn decision must require the banner")
	}
}

func TestEngineWarnsOnUnknownTool(t *testing.T) {
	engine := newTestEngine(t, domain.PolicySettings{})

	decision := engine.Evaluate(domain.PolicySubject{
		Kind: domain.SubjectCommand,
		Text: "frobnicator --target 10.0.0.5",
		Tool: "frobnicator",
	})
	if decision.Verdict != domain.VerdictWarn {
		t.Fatalf("unknown tool must warn, got %+v", decision)
	}
}

func TestRedTeamModeRelaxesWarnNeverBlock(t *testing.T) {
	cases := []struct {
		name    string
		redTeam bool
		text    string
		want    domain.Verdict
	}{
		{"illegal pattern warns by default", false, "hydra -l admin -P rockyou.txt ssh://10.0.0.5 brute force", domain.VerdictWarn},
		{"illegal pattern allowed in red team mode", true, "hydra -l admin -P rockyou.txt ssh://10.0.0.5 brute force", domain.VerdictAllow},
		{"destructive blocks by default", false, "dd if=/dev/zero of=/dev/sda", domain.VerdictBlock},
		{"destructive still blocks in red team mode", true, "dd if=/dev/zero of=/dev/sda", domain.VerdictBlock},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(t, domain.PolicySettings{RedTeamMode: tc.redTeam})
			decision := engine.Evaluate(domain.PolicySubject{
				Kind: domain.SubjectCommand,
				Text: tc.text,
				Tool: "hydra",
			})
			if decision.Verdict != tc.want {
				t.Fatalf("verdict = %s, want %s (%+v)", decision.Verdict, tc.want, decision)
			}
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	engine := newTestEngine(t, domain.PolicySettings{})
	subject := domain.PolicySubject{Kind: domain.SubjectCommand, Text: "nmap 192.168.0.0/16", Tool: "nmap"}

	first := engine.Evaluate(subject)
	for i := 0; i < 5; i++ {
		again := engine.Evaluate(subject)
		if again.Verdict != first.Verdict || len(again.Reasons) != len(first.Reasons) {
			t.Fatalf("evaluation drifted on iteration %d: %+v vs %+v", i, again, first)
		}
	}
}

func TestAnonymiseRewritesOnlyDisplayText(t *testing.T) {
	engine := newTestEngine(t, domain.PolicySettings{AnonymiseIPs: true})

	in := "nmap -sV 192.168.1.37 && ping 10.0.0.1"
	got := engine.Anonymise(in)
	want := "nmap -sV 192.168.1.X && ping 10.0.0.X"
	if got != want {
		t.Fatalf("Anonymise() = %q, want %q", got, want)
	}
}

func TestEmbeddedDefaultRulesAreComplete(t *testing.T) {
	rules, err := embeddedRules()
	if err != nil {
		t.Fatalf("embeddedRules: %v", err)
	}
	if len(rules.Rules.Destructive) == 0 {
		t.Error("embedded defaults carry no destructive rules")
	}
	if len(rules.Rules.Illegal) == 0 {
		t.Error("embedded defaults carry no illegal-activity rules")
	}
	if len(rules.Rules.Scope) == 0 {
		t.Error("embedded defaults carry no scope rules")
	}
	if len(rules.KnownTools) == 0 {
		t.Error("embedded defaults carry no known tools")
	}
	for _, group := range [][]Rule{rules.Rules.Destructive, rules.Rules.Illegal, rules.Rules.Scope} {
		if _, err := compileRules(group); err != nil {
			t.Errorf("embedded rule does not compile: %v", err)
		}
	}
}

func TestAnonymiseDisabledIsIdentity(t *testing.T) {
	engine := newTestEngine(t, domain.PolicySettings{AnonymiseIPs: false})

	in := "nmap -sV 192.168.1.37"
	if got := engine.Anonymise(in); got != in {
		t.Fatalf("Anonymise() = %q, want unchanged input", got)
	}
}
