package domain

// RiskLevel classifies how dangerous a suggested command looks.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Verdict is the policy engine's classification of a command or prompt.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictWarn  Verdict = "warn"
	VerdictBlock Verdict = "block"
)

// SubjectKind distinguishes what kind of text is being evaluated.
type SubjectKind string

const (
	SubjectPrompt  SubjectKind = "prompt"
	SubjectCommand SubjectKind = "command"
)

// PolicySubject is the input to a policy evaluation.
type PolicySubject struct {
	Kind SubjectKind
	Text string
	Tool string
}

// PolicyDecision is the outcome of evaluating a subject. Reasons is empty
// exactly when the verdict is allow. Block is terminal and may never be
// overridden by any execution path; warn demands a stronger confirmation.
type PolicyDecision struct {
	Verdict        Verdict
	Reasons        []string
	RequiresBanner bool
}

// Blocked reports whether the decision vetoes execution outright.
func (d PolicyDecision) Blocked() bool {
	return d.Verdict == VerdictBlock
}

// RiskLevel maps the verdict onto the risk scale shown next to suggestions.
func (d PolicyDecision) RiskLevel() RiskLevel {
	switch d.Verdict {
	case VerdictBlock:
		return RiskHigh
	case VerdictWarn:
		return RiskMedium
	default:
		return RiskLow
	}
}
