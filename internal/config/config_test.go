package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	for _, name := range RuleNames {
		if !cfg.Enabled(name) {
			t.Errorf("rule %s must be enabled by default", name)
		}
	}
	if _, ok := cfg.Options("no-such-rule"); ok {
		t.Fatal("unknown rule must not have options")
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "dioxide.toml", `
[rules.line-length]
max_line_length = 200

[rules.naming]
enabled = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts, _ := cfg.Options("line-length")
	if opts.MaxLineLength != 200 || opts.TabWidth != 4 || !opts.Enabled {
		t.Fatalf("line-length options = %+v", opts)
	}
	if cfg.Enabled("naming") {
		t.Fatal("naming must be disabled")
	}
	if len(cfg.General.ExcludeDirs) == 0 {
		t.Fatal("general defaults lost")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "dioxide.toml", `
[rules.no-such-rule]
enabled = true
`)
	_, err := Load(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "rules.no-such-rule") {
		t.Fatalf("error must name the key: %v", err)
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "dioxide.toml", "[general\n")
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestValidateLayers(t *testing.T) {
	cfg := Default()
	cfg.Architecture.Layers = []Layer{
		{Name: "domain", Packages: []string{"example.com/m/domain/**"}},
		{Name: "app", Packages: []string{"example.com/m/app/**"}, MayImport: []string{"domain", "infra"}},
	}
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) || !strings.Contains(err.Error(), `undeclared layer "infra"`) {
		t.Fatalf("expected undeclared layer error, got %v", err)
	}

	cfg.Architecture.Layers[1].MayImport = []string{"domain"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid layers rejected: %v", err)
	}

	cfg.Rules.LineLength.MaxLineLength = -1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("negative threshold accepted")
	}
}

func TestFindSearchOrder(t *testing.T) {
	dir := t.TempDir()
	if _, ok, err := Find("", dir); ok || err != nil {
		t.Fatalf("empty dir: ok=%v err=%v", ok, err)
	}
	nested := writeConfig(t, dir, filepath.Join(".config", "dioxide.toml"), "")
	if path, ok, _ := Find("", dir); !ok || path != nested {
		t.Fatalf("expected %s, got %s", nested, path)
	}
	hidden := writeConfig(t, dir, ".dioxide.toml", "")
	if path, _, _ := Find("", dir); path != hidden {
		t.Fatalf("expected %s, got %s", hidden, path)
	}
	if _, _, err := Find(filepath.Join(dir, "missing.toml"), dir); err == nil {
		t.Fatal("explicit missing config must fail")
	}
}

func TestResolveWithoutFileUsesDefaults(t *testing.T) {
	cfg, path, err := Resolve("", t.TempDir())
	if err != nil || path != "" {
		t.Fatalf("Resolve: path=%q err=%v", path, err)
	}
	if cfg.Rules.LineLength.MaxLineLength != Default().Rules.LineLength.MaxLineLength {
		t.Fatal("expected defaults")
	}
}

func TestWriteDefaultIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dioxide.toml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatal("existing config must not be overwritten")
	}
}

func TestSetEnabled(t *testing.T) {
	cfg := Default()
	if !cfg.SetEnabled("dead-code", false) || cfg.Enabled("dead-code") {
		t.Fatal("SetEnabled did not switch dead-code off")
	}
	if cfg.SetEnabled("bogus", true) {
		t.Fatal("unknown rule accepted")
	}
}
