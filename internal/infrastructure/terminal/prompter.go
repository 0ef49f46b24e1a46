// Package terminal implements the interactive confirmation prompt.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/infrastructure/policy"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// Prompter asks for confirmation on the controlling terminal. Outside a TTY
// it reports itself disabled and every run is declined rather than silently
// approved.
type Prompter struct {
	in  io.Reader
	out io.Writer
	tty bool
}

// NewPrompter wires the prompter to stdin/stderr. Prompts go to stderr so
// they never contaminate piped stdout.
func NewPrompter() *Prompter {
	return &Prompter{
		in:  os.Stdin,
		out: os.Stderr,
		tty: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// NewTestPrompter builds a prompter over explicit streams, always enabled.
func NewTestPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, tty: true}
}

// Enabled implements ports.ConfirmationPrompter.
func (p *Prompter) Enabled() bool { return p.tty }

// Confirm implements ports.ConfirmationPrompter. The wait is unbounded; a
// cancelled ctx or a closed input stream counts as a decline. A warn verdict
// demands the literal word "yes", not just "y".
func (p *Prompter) Confirm(ctx context.Context, decision domain.PolicyDecision, displayed string, tool string) (bool, error) {
	if decision.RequiresBanner {
		fmt.Fprintln(p.out, policy.LegalBanner)
	}
	fmt.Fprintln(p.out)
	if tool != "" {
		fmt.Fprintf(p.out, "  tool:    %s\n", tool)
	}
	fmt.Fprintf(p.out, "  command: %s\n", displayed)
	for _, reason := range decision.Reasons {
		fmt.Fprintf(p.out, "  warning: %s\n", reason)
	}

	question := "Run this command? [y/N] "
	if decision.Verdict == domain.VerdictWarn {
		question = "This command was flagged. Type 'yes' to run it anyway: "
	}
	fmt.Fprint(p.out, question)

	line, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if decision.Verdict == domain.VerdictWarn {
		return answer == "yes", nil
	}
	return answer == "y" || answer == "yes", nil
}

// readLine reads one line off p.in without outliving ctx. The read goroutine
// may linger on a blocked stdin after cancellation; the process is about to
// exit in that case anyway.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	type lineResult struct {
		text string
		err  error
	}
	ch := make(chan lineResult, 1)
	go func() {
		reader := bufio.NewReader(p.in)
		text, err := reader.ReadString('\n')
		ch <- lineResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case result := <-ch:
		if result.err != nil && result.text == "" {
			return "", result.err
		}
		return result.text, nil
	}
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
