// Package plugins loads YAML tool-knowledge files used to enrich prompts.
package plugins

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// Loader reads every *.yml under the plugins directory once at construction.
// Unreadable or malformed files are skipped; plugins are advisory context,
// never load-bearing.
type Loader struct {
	plugins map[string]domain.ToolPlugin
}

// NewLoader scans dir (default ~/.kaalsec/plugins).
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = filepath.Join(userHome(), ".kaalsec", "plugins")
	}
	loader := &Loader{plugins: map[string]domain.ToolPlugin{}}

	files, err := os.ReadDir(dir)
	if err != nil {
		return loader
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			continue
		}
		var plugin domain.ToolPlugin
		if err := yaml.Unmarshal(data, &plugin); err != nil || plugin.Tool == "" {
			continue
		}
		loader.plugins[strings.ToLower(plugin.Tool)] = plugin
	}
	return loader
}

// Lookup implements ports.PluginRepository.
func (l *Loader) Lookup(toolName string) (domain.ToolPlugin, bool) {
	plugin, ok := l.plugins[strings.ToLower(toolName)]
	return plugin, ok
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.PluginRepository = (*Loader)(nil)
