package provider

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kobzarvs/qline/internal/completion"
	"github.com/kobzarvs/qline/internal/treesitter"
)

// Command completes executable names found on $PATH.
type Command struct {
	// Path defaults to $PATH.
	Path string
}

func (Command) Name() string { return "command" }

func (c Command) Complete(ctx context.Context, req Request) ([]completion.Candidate, error) {
	prefix := req.Word.Text
	if req.Word.Kind != treesitter.WordCommand || strings.ContainsRune(prefix, '/') {
		return nil, nil
	}
	pathList := c.Path
	if pathList == "" {
		pathList = os.Getenv("PATH")
	}
	found := make(map[string]string)
	for _, dir := range filepath.SplitList(pathList) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if dir == "" {
			dir = "."
		}
		ents, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, ent := range ents {
			name := ent.Name()
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			if _, seen := found[name]; seen {
				continue
			}
			full := filepath.Join(dir, name)
			if !isExecutable(full) {
				continue
			}
			found[name] = full
		}
	}
	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]completion.Candidate, 0, len(names))
	for _, name := range names {
		out = append(out, completion.NewCandidate(name, name, found[name], completion.KindOther))
	}
	return out, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
