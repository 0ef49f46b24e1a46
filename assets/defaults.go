package assets

import (
	_ "embed"
)

// DefaultPolicyYAML contains the embedded default policy rules, used when
// ~/.kaalsec/policy.yaml is absent or leaves a section empty.
//
//go:embed defaults/policy.yaml
var DefaultPolicyYAML []byte
