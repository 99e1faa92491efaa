package provider

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/kobzarvs/qline/internal/completion"
	"github.com/kobzarvs/qline/internal/gitinfo"
	"github.com/kobzarvs/qline/internal/treesitter"
)

type gitEntry struct {
	name string
	help string
}

var gitSubcommands = []gitEntry{
	{"add", "Add file contents to the index"},
	{"bisect", "Find the commit that introduced a bug"},
	{"branch", "List, create, or delete branches"},
	{"checkout", "Switch branches or restore working tree files"},
	{"cherry-pick", "Apply the changes introduced by some existing commits"},
	{"clone", "Clone a repository into a new directory"},
	{"commit", "Record changes to the repository"},
	{"diff", "Show changes between commits, commit and working tree, etc"},
	{"fetch", "Download objects and refs from another repository"},
	{"init", "Create an empty Git repository"},
	{"log", "Show commit logs"},
	{"merge", "Join two or more development histories together"},
	{"mv", "Move or rename a file, a directory, or a symlink"},
	{"pull", "Fetch from and integrate with another repository or a local branch"},
	{"push", "Update remote refs along with associated objects"},
	{"rebase", "Reapply commits on top of another base tip"},
	{"reset", "Reset current HEAD to the specified state"},
	{"restore", "Restore working tree files"},
	{"rm", "Remove files from the working tree and from the index"},
	{"show", "Show various types of objects"},
	{"stash", "Stash the changes in a dirty working directory away"},
	{"status", "Show the working tree status"},
	{"switch", "Switch branches"},
	{"tag", "Create, list, delete or verify a tag object"},
}

var gitFlags = map[string][]gitEntry{
	"": {
		{"--help", "Show help for the command"},
		{"--version", "Print the git version"},
		{"--no-pager", "Do not pipe output into a pager"},
	},
	"add": {
		{"--all", "Add changes from all tracked and untracked files"},
		{"--patch", "Interactively choose hunks"},
		{"--update", "Update tracked files only"},
	},
	"branch": {
		{"--delete", "Delete a branch"},
		{"--list", "List branches"},
		{"--move", "Move or rename a branch"},
		{"-d", "Delete a fully merged branch"},
		{"-D", "Delete a branch irrespective of its merged status"},
	},
	"checkout": {
		{"--force", "Throw away local modifications"},
		{"--track", "Set upstream when creating a branch"},
		{"-b", "Create and check out a new branch"},
	},
	"commit": {
		{"--all", "Stage all modified and deleted files"},
		{"--amend", "Replace the tip of the current branch"},
		{"--message", "Use the given message"},
		{"--no-verify", "Bypass the pre-commit and commit-msg hooks"},
	},
	"log": {
		{"--graph", "Draw a text-based graph of the history"},
		{"--oneline", "Shorthand for --pretty=oneline --abbrev-commit"},
		{"--stat", "Generate a diffstat"},
	},
	"push": {
		{"--force-with-lease", "Force only if the remote ref is as expected"},
		{"--set-upstream", "Add upstream tracking reference"},
		{"--tags", "Push all tags"},
	},
	"switch": {
		{"--create", "Create a new branch"},
		{"--detach", "Switch to a commit for inspection"},
		{"-c", "Create a new branch"},
	},
}

// branchCommands take a local branch name as argument.
var branchCommands = map[string]bool{
	"branch":   true,
	"checkout": true,
	"merge":    true,
	"rebase":   true,
	"switch":   true,
}

// Git completes git subcommands, their flags and local branch names.
type Git struct {
	branches func(ctx context.Context, dir string) ([]string, string, error)
}

func NewGit() Git {
	return Git{branches: gitinfo.ListBranches}
}

func (Git) Name() string { return "git" }

func (g Git) Complete(ctx context.Context, req Request) ([]completion.Candidate, error) {
	if req.Command() != "git" || req.Word.Kind == treesitter.WordVariable {
		return nil, nil
	}
	sub := subcommand(req.Args)
	prefix := req.Word.Text
	if strings.HasPrefix(prefix, "-") {
		return entries(gitFlags[sub], prefix, completion.KindParameterName), nil
	}
	if sub == "" {
		return entries(gitSubcommands, prefix, completion.KindMethod), nil
	}
	if !branchCommands[sub] || g.branches == nil {
		return nil, nil
	}
	branches, current, err := g.branches(ctx, req.Dir)
	if err != nil {
		return nil, err
	}
	matched := lo.Filter(branches, func(b string, _ int) bool { return strings.HasPrefix(b, prefix) })
	sort.Strings(matched)
	return lo.Map(matched, func(b string, _ int) completion.Candidate {
		tip := "branch"
		if b == current {
			tip = "current branch"
		}
		return completion.NewCandidate(b, b, tip, completion.KindParameterValue)
	}), nil
}

// subcommand is the first non-flag argument after git.
func subcommand(args []string) string {
	for _, a := range args[1:] {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

func entries(list []gitEntry, prefix string, kind completion.Kind) []completion.Candidate {
	matched := lo.Filter(list, func(e gitEntry, _ int) bool { return strings.HasPrefix(e.name, prefix) })
	return lo.Map(matched, func(e gitEntry, _ int) completion.Candidate {
		return completion.NewCandidate(e.name, e.name, e.help, kind)
	})
}
