package provider

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/kobzarvs/qline/internal/completion"
	"github.com/kobzarvs/qline/internal/treesitter"
)

// Path completes file and directory names relative to the request
// directory. Names that need quoting come back single-quoted.
type Path struct {
	// Home defaults to os.UserHomeDir.
	Home string
}

func (Path) Name() string { return "path" }

func (p Path) Complete(ctx context.Context, req Request) ([]completion.Candidate, error) {
	if req.Word.Kind == treesitter.WordVariable {
		return nil, nil
	}
	typed := unescape(req.Word.Text)

	tilde := ""
	if typed == "~" {
		typed = "~/"
	}
	if strings.HasPrefix(typed, "~/") {
		tilde, typed = "~/", typed[2:]
	}
	dirPart, base := "", typed
	if i := strings.LastIndex(typed, "/"); i >= 0 {
		dirPart, base = typed[:i+1], typed[i+1:]
	}

	fsDir := dirPart
	switch {
	case tilde != "":
		home := p.Home
		if home == "" {
			h, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			home = h
		}
		fsDir = filepath.Join(home, dirPart)
	case !filepath.IsAbs(dirPart):
		fsDir = filepath.Join(req.Dir, dirPart)
	}

	ents, err := os.ReadDir(fsDir)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ents))
	dirs := make(map[string]bool)
	for _, ent := range ents {
		name := ent.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		full := filepath.Join(fsDir, name)
		isDir := ent.IsDir()
		if ent.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(full); err == nil {
				isDir = info.IsDir()
			}
		}
		dirs[name] = isDir
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]completion.Candidate, 0, len(names))
	for _, name := range names {
		kind := completion.KindOther
		if dirs[name] {
			kind = completion.KindContainer
		}
		insertion := tilde + shellquote.Join(dirPart+name)
		out = append(out, completion.NewCandidate(insertion, name, filepath.Join(fsDir, name), kind))
	}
	return out, nil
}

// unescape strips shell quoting from a partially typed word. An open quote
// with no closing partner is dropped.
func unescape(text string) string {
	if text == "" {
		return ""
	}
	if parts, err := shellquote.Split(text); err == nil {
		if len(parts) == 1 {
			return parts[0]
		}
		return text
	}
	for _, q := range []string{"'", `"`} {
		if strings.HasPrefix(text, q) {
			if parts, err := shellquote.Split(text + q); err == nil && len(parts) == 1 {
				return parts[0]
			}
		}
	}
	return text
}
