package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("QLINE_CONFIG_HOME", "/tmp/qline-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/qline-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/qline-config")
	}

	t.Setenv("QLINE_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/qline" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/qline")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("QLINE_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.Prompt != "> " {
		t.Fatalf("Prompt = %q, want %q", cfg.Editor.Prompt, "> ")
	}
	if !cfg.Completion.Tooltips() {
		t.Fatalf("tooltips should default to on")
	}
	if cfg.Completion.QueryItems != 100 {
		t.Fatalf("QueryItems = %d, want 100", cfg.Completion.QueryItems)
	}
	if cfg.Completion.Timeout() != 2*time.Second {
		t.Fatalf("Timeout = %v, want 2s", cfg.Completion.Timeout())
	}
	if cfg.Keymap.Insert["tab"] != "complete" {
		t.Fatalf("keymap tab = %q, want %q", cfg.Keymap.Insert["tab"], "complete")
	}
	if cfg.Keymap.Insert["ctrl+space"] != "menu_complete" {
		t.Fatalf("keymap ctrl+space = %q, want %q", cfg.Keymap.Insert["ctrl+space"], "menu_complete")
	}
}

func TestLoadWithThemeAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QLINE_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "test.toml"), `
foreground = "#111111"
background = "#222222"
menu-foreground = "#333333"
`)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[editor]
prompt = "$ "
bell = "none"

[completion]
show-tooltips = false
query-items = 20
path-separator = "/"
provider-timeout = "250ms"
providers = ["path"]

[theme]
theme = "test"
menu-background = "#123456"

[keymap.insert]
tab = "menu_complete"
"ctrl+t" = "none"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.Prompt != "$ " {
		t.Fatalf("Prompt = %q, want %q", cfg.Editor.Prompt, "$ ")
	}
	if cfg.Editor.Bell != "none" {
		t.Fatalf("Bell = %q, want %q", cfg.Editor.Bell, "none")
	}
	if cfg.Editor.TabWidth != 4 {
		t.Fatalf("TabWidth = %d, want 4", cfg.Editor.TabWidth)
	}
	if cfg.Completion.Tooltips() {
		t.Fatalf("tooltips should be off")
	}
	if cfg.Completion.QueryItems != 20 {
		t.Fatalf("QueryItems = %d, want 20", cfg.Completion.QueryItems)
	}
	if cfg.Completion.ColumnPadding != 2 {
		t.Fatalf("ColumnPadding = %d, want 2", cfg.Completion.ColumnPadding)
	}
	if cfg.Completion.Separator() != '/' {
		t.Fatalf("Separator = %q, want '/'", cfg.Completion.Separator())
	}
	if cfg.Completion.Timeout() != 250*time.Millisecond {
		t.Fatalf("Timeout = %v, want 250ms", cfg.Completion.Timeout())
	}
	if len(cfg.Completion.Providers) != 1 || cfg.Completion.Providers[0] != "path" {
		t.Fatalf("Providers = %v, want [path]", cfg.Completion.Providers)
	}
	if cfg.Theme.Foreground != "#111111" {
		t.Fatalf("Foreground = %q, want %q", cfg.Theme.Foreground, "#111111")
	}
	if cfg.Theme.MenuForeground != "#333333" {
		t.Fatalf("MenuForeground = %q, want %q", cfg.Theme.MenuForeground, "#333333")
	}
	if cfg.Theme.MenuBackground != "#123456" {
		t.Fatalf("MenuBackground = %q, want %q", cfg.Theme.MenuBackground, "#123456")
	}
	if cfg.Keymap.Insert["tab"] != "menu_complete" {
		t.Fatalf("keymap tab = %q, want %q", cfg.Keymap.Insert["tab"], "menu_complete")
	}
	if _, ok := cfg.Keymap.Insert["ctrl+t"]; ok {
		t.Fatalf("ctrl+t should be unbound")
	}
	if cfg.Keymap.Insert["ctrl+a"] != "line_start" {
		t.Fatalf("keymap ctrl+a = %q, want %q", cfg.Keymap.Insert["ctrl+a"], "line_start")
	}
}

func TestLoadInvalidToml(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QLINE_CONFIG_HOME", dir)
	writeFile(t, filepath.Join(dir, "config.toml"), "[editor\nprompt = 1")
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Editor.Prompt != "> " {
		t.Fatalf("defaults should survive a parse error, got prompt %q", cfg.Editor.Prompt)
	}
}

func TestTimeoutFallback(t *testing.T) {
	c := CompletionOptions{ProviderTimeout: "soon"}
	if c.Timeout() != 2*time.Second {
		t.Fatalf("Timeout = %v, want 2s", c.Timeout())
	}
}

func TestLoadThemeWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QLINE_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "wrapped.toml"), `
[theme]
foreground = "#aaaaaa"
background = "#bbbbbb"
`)

	theme, err := LoadTheme("wrapped")
	if err != nil {
		t.Fatalf("LoadTheme error: %v", err)
	}
	if theme.Foreground != "#aaaaaa" {
		t.Fatalf("Foreground = %q, want %q", theme.Foreground, "#aaaaaa")
	}
	if theme.Background != "#bbbbbb" {
		t.Fatalf("Background = %q, want %q", theme.Background, "#bbbbbb")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QLINE_CONFIG_HOME", dir)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[editor]\nprompt = \"a> \"\n")

	got := make(chan Config, 4)
	w, err := Watch(path, func(c Config) { got <- c }, nil)
	if err != nil {
		t.Fatalf("Watch error: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "other.toml"), "x = 1\n")
	writeFile(t, path, "[editor]\nprompt = \"b> \"\n")

	select {
	case cfg := <-got:
		if cfg.Editor.Prompt != "b> " {
			t.Fatalf("Prompt = %q, want %q", cfg.Editor.Prompt, "b> ")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no reload after writing config.toml")
	}
}
