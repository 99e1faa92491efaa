package gitinfo

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrNotRepo = errors.New("not a git repository")

func Branch(path string) string {
	gitDir, err := findGitDir(path)
	if err != nil || gitDir == "" {
		return ""
	}
	branch, err := readHead(gitDir)
	if err != nil {
		return ""
	}
	return branch
}

func Root(path string) string {
	gitDir, err := findGitDir(path)
	if err != nil || gitDir == "" {
		return ""
	}
	return filepath.Dir(gitDir)
}

// ListBranches returns the local branches and the current one. It asks the
// git binary and falls back to reading refs when git is not installed.
func ListBranches(ctx context.Context, path string) ([]string, string, error) {
	gitDir, err := findGitDir(path)
	if err != nil {
		return nil, "", ErrNotRepo
	}
	current, _ := readHead(gitDir)
	if _, err := exec.LookPath("git"); err != nil {
		branches, err := readRefs(gitDir)
		return branches, current, err
	}
	root := filepath.Dir(gitDir)
	out, err := exec.CommandContext(ctx, "git", "-C", root, "branch", "--format=%(refname:short)").CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return nil, "", errors.Wrap(err, msg)
		}
		return nil, "", errors.Wrap(err, "git branch")
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	branches := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		branches = append(branches, line)
	}
	return branches, current, nil
}

// readRefs lists refs/heads, loose and packed.
func readRefs(gitDir string) ([]string, error) {
	seen := make(map[string]bool)
	heads := filepath.Join(gitDir, "refs", "heads")
	err := filepath.WalkDir(heads, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(heads, p)
		if err != nil {
			return err
		}
		seen[filepath.ToSlash(rel)] = true
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "read refs")
	}
	if f, err := os.Open(filepath.Join(gitDir, "packed-refs")); err == nil {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) != 2 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			if name, ok := strings.CutPrefix(fields[1], "refs/heads/"); ok {
				seen[name] = true
			}
		}
	}
	branches := make([]string, 0, len(seen))
	for name := range seen {
		branches = append(branches, name)
	}
	sort.Strings(branches)
	return branches, nil
}

func findGitDir(path string) (string, error) {
	start := path
	info, err := os.Stat(start)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		start = filepath.Dir(start)
	}
	for {
		gitPath := filepath.Join(start, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return gitPath, nil
			}
			if info.Mode().IsRegular() {
				data, err := os.ReadFile(gitPath)
				if err != nil {
					return "", err
				}
				line := strings.TrimSpace(string(data))
				const prefix = "gitdir:"
				if strings.HasPrefix(line, prefix) {
					dir := strings.TrimSpace(strings.TrimPrefix(line, prefix))
					if !filepath.IsAbs(dir) {
						dir = filepath.Join(start, dir)
					}
					return dir, nil
				}
			}
		}
		parent := filepath.Dir(start)
		if parent == start {
			break
		}
		start = parent
	}
	return "", ErrNotRepo
}

func readHead(gitDir string) (string, error) {
	headPath := filepath.Join(gitDir, "HEAD")
	f, err := os.Open(headPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", errors.New("empty HEAD")
	}
	line := strings.TrimSpace(scanner.Text())
	const refPrefix = "ref:"
	if strings.HasPrefix(line, refPrefix) {
		ref := strings.TrimSpace(strings.TrimPrefix(line, refPrefix))
		return strings.TrimPrefix(ref, "refs/heads/"), nil
	}
	if len(line) >= 7 {
		return "detached:" + line[:7], nil
	}
	return "detached", nil
}
