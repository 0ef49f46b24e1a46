// Package policy implements the rule-driven safety gate applied to every
// prompt and command before it is shown or executed.
package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kaalsec/kaalsec/assets"
	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// Engine implements the ports.PolicyEngine port. Evaluation is pure: the
// rule set and flags are fixed at construction and no state is mutated.
type Engine struct {
	redTeamMode  bool
	anonymiseIPs bool
	blockRules   []compiledRule
	warnRules    []compiledRule
	scopeRules   []compiledRule
	knownTools   map[string]struct{}
}

type compiledRule struct {
	re     *regexp.Regexp
	reason string
}

// Rule describes a regex-based policy rule as written in the rules file.
type Rule struct {
	Pattern string `yaml:"pattern"`
	Reason  string `yaml:"reason"`
}

// RulesFile is the YAML schema root of ~/.kaalsec/policy.yaml.
type RulesFile struct {
	Rules struct {
		Destructive []Rule `yaml:"destructive"`
		Illegal     []Rule `yaml:"illegal"`
		Scope       []Rule `yaml:"scope"`
	} `yaml:"rules"`
	KnownTools []string `yaml:"known_tools"`
}

// NewEngine loads rules from the given path (or compiled defaults when the
// file is missing) and fixes the policy flags for the process lifetime.
func NewEngine(rulesPath string, settings domain.PolicySettings) (*Engine, error) {
	rules, err := loadRules(rulesPath)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		redTeamMode:  settings.RedTeamMode,
		anonymiseIPs: settings.AnonymiseIPs,
		knownTools:   map[string]struct{}{},
	}
	if engine.blockRules, err = compileRules(rules.Rules.Destructive); err != nil {
		return nil, err
	}
	if engine.warnRules, err = compileRules(rules.Rules.Illegal); err != nil {
		return nil, err
	}
	if engine.scopeRules, err = compileRules(rules.Rules.Scope); err != nil {
		return nil, err
	}
	for _, tool := range rules.KnownTools {
		engine.knownTools[strings.ToLower(tool)] = struct{}{}
	}
	return engine, nil
}

// Evaluate implements ports.PolicyEngine.
//
// Destructive rules always block; block is terminal and red_team_mode never
// relaxes it. Illegal-activity rules warn, relaxed to allow under
// red_team_mode. Scope rules always warn: broad targets need an explicit
// acknowledgment regardless of mode. An unknown tool warns too, because
// unknown is not necessarily unsafe but must never pass silently.
func (e *Engine) Evaluate(subject domain.PolicySubject) domain.PolicyDecision {
	lower := strings.ToLower(subject.Text)

	decision := domain.PolicyDecision{Verdict: domain.VerdictAllow}

	for _, rule := range e.blockRules {
		if rule.re.MatchString(lower) {
			decision.Verdict = domain.VerdictBlock
			decision.Reasons = append(decision.Reasons, rule.reason)
		}
	}
	if decision.Verdict == domain.VerdictBlock {
		decision.RequiresBanner = true
		return decision
	}

	warn := func(reason string) {
		decision.Verdict = domain.VerdictWarn
		decision.Reasons = append(decision.Reasons, reason)
	}

	if !e.redTeamMode {
		for _, rule := range e.warnRules {
			if rule.re.MatchString(lower) {
				warn(rule.reason)
			}
		}
	}
	for _, rule := range e.scopeRules {
		if rule.re.MatchString(lower) {
			warn(rule.reason)
		}
	}
	if subject.Kind == domain.SubjectCommand && subject.Tool != "" {
		if _, ok := e.knownTools[strings.ToLower(subject.Tool)]; !ok {
			warn(fmt.Sprintf("tool %q is not in the known-tool list", subject.Tool))
		}
	}

	decision.RequiresBanner = decision.Verdict != domain.VerdictAllow
	return decision
}

var ipv4Pattern = regexp.MustCompile(`\b(\d{1,3}\.){3}\d{1,3}\b`)

// Anonymise rewrites IPv4 tokens for display and logging, replacing the last
// octet with X. The executed command text must never pass through here: the
// real command still has to run against the real target.
func (e *Engine) Anonymise(text string) string {
	if !e.anonymiseIPs {
		return text
	}
	return ipv4Pattern.ReplaceAllStringFunc(text, func(ip string) string {
		parts := strings.Split(ip, ".")
		parts[len(parts)-1] = "X"
		return strings.Join(parts, ".")
	})
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	var compiled []compiledRule
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("policy rule %q: %w", rule.Pattern, err)
		}
		compiled = append(compiled, compiledRule{re: re, reason: rule.Reason})
	}
	return compiled, nil
}

func loadRules(path string) (RulesFile, error) {
	defaults, err := embeddedRules()
	if err != nil {
		return RulesFile{}, err
	}
	if path == "" {
		path = filepath.Join(userHomeDir(), ".kaalsec", "policy.yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// missing rules file falls back to the embedded defaults
		return defaults, nil
	}
	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	if len(rules.Rules.Destructive) == 0 {
		rules.Rules.Destructive = defaults.Rules.Destructive
	}
	if len(rules.KnownTools) == 0 {
		rules.KnownTools = defaults.KnownTools
	}
	return rules, nil
}

func embeddedRules() (RulesFile, error) {
	var rules RulesFile
	if err := yaml.Unmarshal(assets.DefaultPolicyYAML, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("embedded policy rules: %w", err)
	}
	return rules, nil
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.PolicyEngine = (*Engine)(nil)
