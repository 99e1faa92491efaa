// Package app runs the interactive line reader.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kobzarvs/qline/internal/config"
	"github.com/kobzarvs/qline/internal/console"
	"github.com/kobzarvs/qline/internal/editor"
	"github.com/kobzarvs/qline/internal/gitinfo"
	"github.com/kobzarvs/qline/internal/logger"
	"github.com/kobzarvs/qline/internal/provider"
	"github.com/kobzarvs/qline/internal/treesitter"
)

// Options are the command line settings.
type Options struct {
	Debug bool
	// Prompt overrides the configured prompt when not empty.
	Prompt string
	// Once reads a single line, prints it to Out and exits.
	Once bool
	Out  io.Writer
}

// App is the top-level runtime for qline.
type App struct {
	opts Options
}

func New(opts Options) *App {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &App{opts: opts}
}

func (a *App) Run(ctx context.Context) error {
	runtime.LockOSThread()
	if err := logger.Init(a.opts.Debug); err != nil {
		fmt.Fprintln(os.Stderr, "qline: logging disabled:", err)
	}
	defer logger.Close()
	log := logger.Named("app")

	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFile(cfgPath)
	if err != nil {
		// keep going with the defaults, the file may be fixed while we run
		log.Warn("config not loaded", zap.String("path", cfgPath), zap.Error(err))
	}
	a.applyFlags(&cfg)

	sources, err := provider.FromConfig(cfg.Completion.Providers)
	if err != nil {
		log.Warn("completion providers", zap.Error(err))
	}
	analyzer := treesitter.New()
	defer analyzer.Close()
	shell := provider.NewShell(analyzer, sources, "", logger.Named("provider"))

	s, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "open terminal")
	}
	if err := s.Init(); err != nil {
		return errors.Wrap(err, "init terminal")
	}
	defer s.Fini()

	con := console.New(s, tcell.StyleDefault, true)
	ed := editor.New(cfg, con, shell, logger.Named("editor"))

	watcher, err := config.Watch(cfgPath, func(next config.Config) {
		a.applyFlags(&next)
		// reloads arrive on the watcher goroutine; the editor is not
		// safe for concurrent use
		if err := con.Post(func() { ed.SetConfig(next) }); err != nil {
			log.Debug("config reload dropped", zap.Error(err))
		}
	}, logger.Named("config"))
	if err != nil {
		log.Warn("config watch disabled", zap.Error(err))
	} else {
		defer func() { _ = watcher.Close() }()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	if wd, err := os.Getwd(); err == nil {
		if branch := gitinfo.Branch(wd); branch != "" {
			log.Info("session started", zap.String("dir", wd), zap.String("branch", branch))
		}
	}

	if a.opts.Once {
		line, err := ed.ReadLine(ctx)
		s.Fini()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, editor.ErrInterrupt) {
				return nil
			}
			return err
		}
		_, err = fmt.Fprintln(a.opts.Out, line)
		return err
	}
	return a.repl(ctx, ed, log)
}

// repl reads lines until end of input and echoes each accepted one.
func (a *App) repl(ctx context.Context, ed *editor.Editor, log *zap.Logger) error {
	for {
		line, err := ed.ReadLine(ctx)
		switch {
		case errors.Is(err, editor.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		log.Debug("line", zap.String("text", line))
		if strings.TrimSpace(line) == "exit" {
			return nil
		}
		ed.Println(line)
	}
}

func (a *App) applyFlags(cfg *config.Config) {
	if a.opts.Prompt != "" {
		cfg.Editor.Prompt = a.opts.Prompt
	}
}
