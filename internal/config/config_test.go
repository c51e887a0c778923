package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := load("", filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults %+v", cfg, Default())
	}
}

func TestLayering(t *testing.T) {
	file := writeFile(t, "sockowner.toml", `
proc_root = "/host/proc"
owned_only = false
log_level = "info"
format = "json"
`)
	dotenv := writeFile(t, ".env", "SOCKOWNER_LOG_LEVEL=debug\nSOCKOWNER_COLOR=never\n")
	t.Setenv("SOCKOWNER_COLOR", "always")

	cfg, err := load(file, dotenv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Config{
		ProcRoot:  "/host/proc",
		OwnedOnly: false,
		LogLevel:  "debug",
		Color:     "always",
		Format:    "json",
	}
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestEnvironmentBool(t *testing.T) {
	t.Setenv("SOCKOWNER_OWNED_ONLY", "false")
	cfg, err := load("", filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OwnedOnly {
		t.Error("expected OwnedOnly=false from environment")
	}

	t.Setenv("SOCKOWNER_OWNED_ONLY", "sometimes")
	if _, err := load("", filepath.Join(t.TempDir(), ".env")); err == nil {
		t.Error("expected error for invalid bool")
	}
}

func TestLoadDefersValidation(t *testing.T) {
	t.Setenv("SOCKOWNER_COLOR", "bogus")
	cfg, err := load("", filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Validate() == nil {
		t.Fatal("expected invalid color before override")
	}
	cfg.Color = "never"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate after override: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	missingEnv := filepath.Join(t.TempDir(), ".env")
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.toml"), "read config"},
		{"bad toml", writeFile(t, "bad.toml", "proc_root = ["), "parse config"},
		{"bad level", writeFile(t, "lvl.toml", `log_level = "loud"`), "invalid log level"},
		{"bad color", writeFile(t, "color.toml", `color = "rainbow"`), "invalid color mode"},
		{"bad format", writeFile(t, "fmt.toml", `format = "xml"`), "invalid format"},
		{"empty root", writeFile(t, "root.toml", `proc_root = ""`), "proc root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(tt.path, missingEnv)
			if err == nil {
				err = cfg.Validate()
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
