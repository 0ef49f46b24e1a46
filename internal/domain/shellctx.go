package domain

// ShellContext is the read-only environmental context fed into prompt
// construction. Collected best-effort; empty values are fine.
type ShellContext struct {
	LastCommand    string
	RecentHistory  []string
	InstalledTools []string
}
