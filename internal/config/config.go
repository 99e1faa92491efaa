package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

type Keymap struct {
	Insert map[string]string `toml:"insert"`
}

type EditorOptions struct {
	Prompt   string `toml:"prompt"`
	TabWidth int    `toml:"tab-width"`
	Bell     string `toml:"bell"`
}

// CompletionOptions configures the completion menu and the providers feeding
// it. ProviderTimeout is a Go duration string.
type CompletionOptions struct {
	ShowTooltips    *bool    `toml:"show-tooltips"`
	QueryItems      int      `toml:"query-items"`
	ColumnPadding   int      `toml:"column-padding"`
	TruncateTail    int      `toml:"truncate-tail"`
	PathSeparator   string   `toml:"path-separator"`
	ProviderTimeout string   `toml:"provider-timeout"`
	Providers       []string `toml:"providers"`
}

// Tooltips reports whether tooltips are shown; unset means on.
func (c CompletionOptions) Tooltips() bool {
	return c.ShowTooltips == nil || *c.ShowTooltips
}

// Timeout parses ProviderTimeout, falling back to two seconds when it is
// empty or malformed.
func (c CompletionOptions) Timeout() time.Duration {
	d, err := time.ParseDuration(c.ProviderTimeout)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// Separator returns the first rune of PathSeparator or the OS separator.
func (c CompletionOptions) Separator() rune {
	for _, r := range c.PathSeparator {
		return r
	}
	return os.PathSeparator
}

type Theme struct {
	Theme               string `toml:"theme"`
	Foreground          string `toml:"foreground"`
	Background          string `toml:"background"`
	SelectionForeground string `toml:"selection-foreground"`
	SelectionBackground string `toml:"selection-background"`
	MenuForeground      string `toml:"menu-foreground"`
	MenuBackground      string `toml:"menu-background"`
	TooltipForeground   string `toml:"tooltip-foreground"`
	PromptForeground    string `toml:"prompt-foreground"`
}

type Config struct {
	Editor     EditorOptions     `toml:"editor"`
	Completion CompletionOptions `toml:"completion"`
	Theme      Theme             `toml:"theme"`
	Keymap     Keymap            `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			Prompt:   "> ",
			TabWidth: 4,
			Bell:     "audible",
		},
		Completion: CompletionOptions{
			QueryItems:      100,
			ColumnPadding:   2,
			TruncateTail:    10,
			PathSeparator:   string(os.PathSeparator),
			ProviderTimeout: "2s",
			Providers:       []string{"git", "env", "command", "path"},
		},
		Theme: Theme{
			Theme:               "",
			Foreground:          "#B3B1AD",
			Background:          "",
			SelectionForeground: "#B3B1AD",
			SelectionBackground: "#27425A",
			MenuForeground:      "#B3B1AD",
			MenuBackground:      "",
			TooltipForeground:   "#5C6773",
			PromptForeground:    "#E6B450",
		},
		Keymap: Keymap{
			Insert: map[string]string{
				// Motion
				"left":       "move_left",
				"ctrl+b":     "move_left",
				"right":      "move_right",
				"ctrl+f":     "move_right",
				"home":       "line_start",
				"ctrl+a":     "line_start",
				"end":        "line_end",
				"ctrl+e":     "line_end",
				"ctrl+left":  "word_left",
				"alt+b":      "word_left",
				"ctrl+right": "word_right",
				"alt+f":      "word_right",

				// Editing
				"backspace": "backspace",
				"del":       "delete_char",
				"ctrl+d":    "delete_char_or_exit",
				"ctrl+w":    "delete_word_left",
				"ctrl+z":    "undo",
				"ctrl+y":    "redo",
				"enter":     "accept_line",
				"ctrl+c":    "cancel_line",
				"ctrl+x":    "cut",
				"alt+w":     "copy",
				"ctrl+v":    "paste",
				"alt+a":     "select_all",
				"ctrl+t":    "insert_tab",

				// Completion
				"tab":        "complete",
				"ctrl+space": "menu_complete",
				"shift+tab":  "tab_complete_previous",
				"alt+n":      "tab_complete_next",
				"alt+=":      "possible_completions",
			},
		},
	}
}

// Load reads config.toml from ConfigDir and merges it over Default. A missing
// file is not an error.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read %s", path)
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, errors.Wrapf(err, "parse %s", path)
	}

	if userCfg.Editor.Prompt != "" {
		cfg.Editor.Prompt = userCfg.Editor.Prompt
	}
	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.Bell != "" {
		cfg.Editor.Bell = userCfg.Editor.Bell
	}

	if userCfg.Completion.ShowTooltips != nil {
		cfg.Completion.ShowTooltips = userCfg.Completion.ShowTooltips
	}
	if userCfg.Completion.QueryItems != 0 {
		cfg.Completion.QueryItems = userCfg.Completion.QueryItems
	}
	if userCfg.Completion.ColumnPadding > 0 {
		cfg.Completion.ColumnPadding = userCfg.Completion.ColumnPadding
	}
	if userCfg.Completion.TruncateTail > 0 {
		cfg.Completion.TruncateTail = userCfg.Completion.TruncateTail
	}
	if userCfg.Completion.PathSeparator != "" {
		cfg.Completion.PathSeparator = userCfg.Completion.PathSeparator
	}
	if userCfg.Completion.ProviderTimeout != "" {
		cfg.Completion.ProviderTimeout = userCfg.Completion.ProviderTimeout
	}
	if userCfg.Completion.Providers != nil {
		cfg.Completion.Providers = userCfg.Completion.Providers
	}

	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	for key, action := range userCfg.Keymap.Insert {
		key = strings.ToLower(key)
		if action == "" || action == "none" {
			delete(cfg.Keymap.Insert, key)
			continue
		}
		cfg.Keymap.Insert[key] = action
	}
	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.SelectionForeground != "" {
		dst.SelectionForeground = src.SelectionForeground
	}
	if src.SelectionBackground != "" {
		dst.SelectionBackground = src.SelectionBackground
	}
	if src.MenuForeground != "" {
		dst.MenuForeground = src.MenuForeground
	}
	if src.MenuBackground != "" {
		dst.MenuBackground = src.MenuBackground
	}
	if src.TooltipForeground != "" {
		dst.TooltipForeground = src.TooltipForeground
	}
	if src.PromptForeground != "" {
		dst.PromptForeground = src.PromptForeground
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, errors.Wrapf(err, "theme %q", name)
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil && t != (Theme{}) {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, errors.Wrapf(err, "theme %q", name)
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QLINE_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qline"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qline"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
