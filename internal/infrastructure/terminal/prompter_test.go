package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kaalsec/kaalsec/internal/domain"
)

func TestConfirmAcceptsYesOnAllow(t *testing.T) {
	for _, input := range []string{"y\n", "Y\n", "yes\n", "YES\n"} {
		var out bytes.Buffer
		p := NewTestPrompter(strings.NewReader(input), &out)

		ok, err := p.Confirm(context.Background(), domain.PolicyDecision{Verdict: domain.VerdictAllow}, "whoami", "")
		if err != nil {
			t.Fatalf("input %q: %v", input, err)
		}
		if !ok {
			t.Errorf("input %q rejected", input)
		}
	}
}

func TestConfirmDefaultsToDecline(t *testing.T) {
	for _, input := range []string{"\n", "n\n", "no\n", "maybe\n"} {
		var out bytes.Buffer
		p := NewTestPrompter(strings.NewReader(input), &out)

		ok, err := p.Confirm(context.Background(), domain.PolicyDecision{Verdict: domain.VerdictAllow}, "whoami", "")
		if err != nil {
			t.Fatalf("input %q: %v", input, err)
		}
		if ok {
			t.Errorf("input %q accepted", input)
		}
	}
}

func TestConfirmWarnDemandsFullYes(t *testing.T) {
	decision := domain.PolicyDecision{
		Verdict: domain.VerdictWarn,
		Reasons: []string{"unrecognised tool"},
	}

	var out bytes.Buffer
	p := NewTestPrompter(strings.NewReader("y\n"), &out)
	ok, err := p.Confirm(context.Background(), decision, "oddtool --x", "oddtool")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if ok {
		t.Error("bare 'y' accepted on a warn verdict")
	}
	if !strings.Contains(out.String(), "unrecognised tool") {
		t.Errorf("warning reason not shown:\n%s", out.String())
	}

	p = NewTestPrompter(strings.NewReader("yes\n"), &out)
	ok, err = p.Confirm(context.Background(), decision, "oddtool --x", "oddtool")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !ok {
		t.Error("explicit 'yes' rejected on a warn verdict")
	}
}

func TestConfirmShowsDisplayedCommand(t *testing.T) {
	var out bytes.Buffer
	p := NewTestPrompter(strings.NewReader("n\n"), &out)

	if _, err := p.Confirm(context.Background(), domain.PolicyDecision{Verdict: domain.VerdictAllow}, "nmap -sV 10.0.0.X", "nmap"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !strings.Contains(out.String(), "nmap -sV 10.0.0.X") {
		t.Errorf("displayed command not shown:\n%s", out.String())
	}
}

func TestConfirmShowsBannerWhenRequired(t *testing.T) {
	decision := domain.PolicyDecision{
		Verdict:        domain.VerdictWarn,
		Reasons:        []string{"broad network range requires explicit scope acknowledgment"},
		RequiresBanner: true,
	}

	var out bytes.Buffer
	p := NewTestPrompter(strings.NewReader("yes\n"), &out)
	if _, err := p.Confirm(context.Background(), decision, "nmap -sn 10.0.0.0/8", "nmap"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !strings.Contains(out.String(), "LEGAL DISCLAIMER") {
		t.Errorf("banner not shown before a flagged confirmation:\n%s", out.String())
	}
}

func TestConfirmNoBannerOnPlainAllow(t *testing.T) {
	var out bytes.Buffer
	p := NewTestPrompter(strings.NewReader("y\n"), &out)
	if _, err := p.Confirm(context.Background(), domain.PolicyDecision{Verdict: domain.VerdictAllow}, "whoami", ""); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if strings.Contains(out.String(), "LEGAL DISCLAIMER") {
		t.Errorf("banner shown for an unflagged confirmation:\n%s", out.String())
	}
}

func TestConfirmCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	// a reader that never delivers a line
	p := NewTestPrompter(blockedReader{}, &out)

	if _, err := p.Confirm(ctx, domain.PolicyDecision{Verdict: domain.VerdictAllow}, "whoami", ""); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

type blockedReader struct{}

func (blockedReader) Read(p []byte) (int, error) {
	select {}
}
