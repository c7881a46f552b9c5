package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/jotter/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Notes.Extension != ".txt" || cfg.Notes.JunkFiles[0] != ".DS_Store" {
		t.Errorf("notes defaults = %+v", cfg.Notes)
	}
}

func TestNotesConfig_Extension(t *testing.T) {
	for _, ext := range []string{"txt", ".", "../x", ".a/b", ""} {
		cfg := NotesConfig{Extension: ext}
		if err := cfg.Validate(); err == nil {
			t.Errorf("extension %q should be rejected", ext)
		}
	}
	cfg := NotesConfig{Extension: ".md", JunkFiles: []string{"Thumbs.db"}}
	if err := cfg.Validate(); err != nil {
		t.Errorf(".md should pass: %v", err)
	}
}

func TestUIConfig_SidebarNotBelowMinimum(t *testing.T) {
	cfg := UIConfig{SidebarWidth: 10, MinSidebarWidth: 12, ResizeBand: 5}
	if err := cfg.Validate(); err == nil {
		t.Error("sidebar narrower than its minimum should fail")
	}
}

func TestWatchConfig_DisabledSkipsDebounce(t *testing.T) {
	cfg := WatchConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled watcher should pass: %v", err)
	}
	cfg.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("enabled watcher without debounce should fail")
	}
}

func TestMenuConfig_Timeout(t *testing.T) {
	cfg := MenuConfig{Timeout: time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Error("sub-second menu timeout should fail")
	}
}

func TestRemoteConfig_URL(t *testing.T) {
	cases := map[string]bool{
		"":                      true,
		"http://localhost:8080": true,
		"https://notes.example": true,
		"ftp://host":            false,
		"localhost:8080":        false,
	}
	for u, ok := range cases {
		cfg := RemoteConfig{URL: u}
		if err := cfg.Validate(); (err == nil) != ok {
			t.Errorf("url %q: err = %v, want ok = %v", u, err, ok)
		}
	}
	if (&RemoteConfig{}).Enabled() {
		t.Error("empty URL should not enable remote mode")
	}
}

func TestConfigLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("JOTTER_TEST_TOKEN", "s3cret")
	yaml := `app:
  log_level: debug
  http:
    port: 9000
menu:
  timeout: 30s
watch:
  enabled: true
  debounce: 50ms
auth:
  mode: token
  token: ${JOTTER_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.LoadOptional(path, cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9000 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Menu.Timeout != 30*time.Second || cfg.Watch.Debounce != 50*time.Millisecond {
		t.Errorf("durations = %v, %v", cfg.Menu.Timeout, cfg.Watch.Debounce)
	}
	if cfg.Auth.Token != "s3cret" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Notes.Extension != ".txt" {
		t.Errorf("untouched section lost its default: %+v", cfg.Notes)
	}
}
