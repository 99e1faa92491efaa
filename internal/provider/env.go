package provider

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/kobzarvs/qline/internal/completion"
)

// Env completes $NAME and ${NAME} references to environment variables.
type Env struct {
	// Environ defaults to os.Environ.
	Environ func() []string
}

func (Env) Name() string { return "env" }

func (e Env) Complete(_ context.Context, req Request) ([]completion.Candidate, error) {
	text := req.Word.Text
	i := strings.LastIndex(text, "$")
	if i < 0 {
		return nil, nil
	}
	lead, name := text[:i], text[i+1:]
	open, shut := "$", ""
	if strings.HasPrefix(name, "{") {
		open, shut = "${", "}"
		name = name[1:]
	}
	if strings.ContainsAny(name, "/}") {
		return nil, nil
	}

	environ := os.Environ
	if e.Environ != nil {
		environ = e.Environ
	}
	vars := make(map[string]string)
	for _, kv := range environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, name) {
			continue
		}
		vars[k] = v
	}
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]completion.Candidate, 0, len(names))
	for _, k := range names {
		tip := vars[k]
		if tip == "" {
			tip = "(empty)"
		}
		out = append(out, completion.NewCandidate(lead+open+k+shut, "$"+k, tip, completion.KindVariable))
	}
	return out, nil
}
