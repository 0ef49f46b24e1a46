// Package shellctx is the read-only provider of shell surroundings used to
// enrich prompts: the last typed command (exported by the optional shell
// hook) and recent history lines.
package shellctx

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/infrastructure/tools"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// LastCommandEnv is exported by the shell integration hook.
const LastCommandEnv = "KAALSEC_LAST_CMD"

// Collector gathers context best-effort; every field may come back empty.
type Collector struct {
	homeDir   string
	discovery *tools.Discovery
}

// NewCollector builds a collector. homeDir empty means the user's home.
func NewCollector(homeDir string, discovery *tools.Discovery) *Collector {
	if homeDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			homeDir = home
		} else {
			homeDir = "."
		}
	}
	return &Collector{homeDir: homeDir, discovery: discovery}
}

// Collect implements ports.ShellContextCollector.
func (c *Collector) Collect(cfg domain.Config) domain.ShellContext {
	ctx := domain.ShellContext{
		LastCommand:   os.Getenv(LastCommandEnv),
		RecentHistory: c.recentHistory(cfg.Core.HistoryLines),
	}
	if c.discovery != nil {
		ctx.InstalledTools = c.discovery.InstalledTools()
	}
	return ctx
}

func (c *Collector) recentHistory(lines int) []string {
	if lines <= 0 {
		lines = 25
	}
	candidates := []string{
		filepath.Join(c.homeDir, ".bash_history"),
		filepath.Join(c.homeDir, ".zsh_history"),
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var history []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			// zsh extended history prefixes entries with ": <ts>:<dur>;"
			if strings.HasPrefix(line, ": ") {
				if idx := strings.Index(line, ";"); idx >= 0 {
					line = line[idx+1:]
				}
			}
			history = append(history, line)
		}
		if len(history) > lines {
			history = history[len(history)-lines:]
		}
		if len(history) > 0 {
			return history
		}
	}
	return nil
}

var _ ports.ShellContextCollector = (*Collector)(nil)
