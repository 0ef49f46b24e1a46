package plugins

import (
	"os"
	"path/filepath"
	"testing"
)

const nmapPlugin = `tool: nmap
description: Network scanner
categories:
  - name: discovery
    examples:
      - cmd: nmap -sn 10.0.0.0/24
        desc: Host discovery sweep
  - name: services
    examples:
      - cmd: nmap -sCV -p 22,80 10.0.0.5
        desc: Service detection
`

func TestLoaderParsesPlugin(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "nmap.yml"), []byte(nmapPlugin), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}

	loader := NewLoader(dir)
	plugin, ok := loader.Lookup("NMAP")
	if !ok {
		t.Fatal("plugin lookup is case-insensitive and must succeed")
	}
	if got := len(plugin.AllExamples()); got != 2 {
		t.Fatalf("AllExamples() returned %d examples, want 2", got)
	}
}

func TestLoaderSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("tool: [oops"), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nmap.yml"), []byte(nmapPlugin), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}

	loader := NewLoader(dir)
	if _, ok := loader.Lookup("nmap"); !ok {
		t.Fatal("valid plugin must load despite a broken sibling")
	}
	if _, ok := loader.Lookup("broken"); ok {
		t.Fatal("malformed plugin must not load")
	}
}

func TestLoaderMissingDir(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope"))
	if _, ok := loader.Lookup("nmap"); ok {
		t.Fatal("lookup against empty loader must miss")
	}
}
