// Package tools discovers which Kali pentesting utilities are installed so
// prompts and displays can prefer tools the operator actually has.
package tools

import (
	"os/exec"
	"sort"
	"sync"
)

// Categories maps tool categories to their best-known members. Trimmed to
// the tools that matter for suggestion quality.
var Categories = map[string][]string{
	"information_gathering": {
		"nmap", "masscan", "dnsrecon", "theharvester", "whatweb", "nikto", "wpscan",
	},
	"web_application_analysis": {
		"nikto", "sqlmap", "gobuster", "dirb", "wfuzz", "whatweb", "wpscan",
	},
	"password_attacks": {
		"hydra", "john", "hashcat", "cewl", "fcrackzip",
	},
	"wireless_attacks": {
		"aircrack-ng", "wifite", "kismet", "tshark",
	},
	"exploitation_tools": {
		"msfconsole", "searchsploit", "sqlmap",
	},
	"sniffing_spoofing": {
		"bettercap", "ettercap", "mitmproxy", "responder", "tshark", "tcpdump",
	},
}

// Discovery probes PATH once and memoizes the result.
type Discovery struct {
	once      sync.Once
	installed map[string]string
}

// NewDiscovery builds a lazy discovery.
func NewDiscovery() *Discovery {
	return &Discovery{}
}

func (d *Discovery) probe() {
	d.installed = map[string]string{}
	seen := map[string]struct{}{}
	for _, toolsInCategory := range Categories {
		for _, tool := range toolsInCategory {
			if _, done := seen[tool]; done {
				continue
			}
			seen[tool] = struct{}{}
			if path, err := exec.LookPath(tool); err == nil {
				d.installed[tool] = path
			}
		}
	}
}

// InstalledTools returns the sorted names of installed tools.
func (d *Discovery) InstalledTools() []string {
	d.once.Do(d.probe)
	names := make([]string, 0, len(d.installed))
	for name := range d.installed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsInstalled reports whether a tool is on PATH.
func (d *Discovery) IsInstalled(tool string) bool {
	d.once.Do(d.probe)
	_, ok := d.installed[tool]
	return ok
}

// Path returns the resolved location of a tool, if installed.
func (d *Discovery) Path(tool string) string {
	d.once.Do(d.probe)
	return d.installed[tool]
}

// CategoryNames returns all category names, sorted.
func CategoryNames() []string {
	names := make([]string, 0, len(Categories))
	for name := range Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
