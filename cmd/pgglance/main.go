package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/cli"
	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/db/connection"
	"github.com/rebeliceyang/pgglance/internal/db/discovery"
	"github.com/rebeliceyang/pgglance/internal/db/queries"
	"github.com/rebeliceyang/pgglance/internal/history"
	"github.com/rebeliceyang/pgglance/internal/logging"
	"github.com/rebeliceyang/pgglance/internal/recorder"
	"github.com/rebeliceyang/pgglance/internal/runtime"
	"github.com/rebeliceyang/pgglance/internal/ui"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

const connectTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}

	opts, err := cli.Parse(os.Args[1:], discovery.EnvironmentConfig(), cfg, os.Stderr)
	if errors.Is(err, cli.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if opts.Version {
		fmt.Println("pgglance", version)
		return
	}

	logger, closer, err := logging.New(opts.LogFile, opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Replay() {
		err = runReplay(ctx, cfg, opts, logger)
	} else {
		err = runLive(ctx, cfg, opts, logger)
	}
	if err != nil {
		logger.Error("exiting with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		closer.Close()
		os.Exit(1)
	}
}

func loopOptions(cfg *config.Config, logger *slog.Logger) runtime.Options {
	width, height := ui.TerminalSize()
	return runtime.Options{
		Config: cfg,
		Render: func(a *app.App, w, h int) string {
			return ui.Render(a, theme.FromConfig(a.Config), w, h)
		},
		SaveConfig: (*config.Config).Save,
		Logger:     logger,
		Width:      width,
		Height:     height,
	}
}

func runReplay(ctx context.Context, cfg *config.Config, opts *cli.Options, logger *slog.Logger) error {
	loop := runtime.NewLoop(nil, loopOptions(cfg, logger))
	logger.Info("replaying recording", "path", opts.ReplayPath)
	return runProgram(ctx, loop, nil, func(ctx context.Context) error {
		return loop.RunReplay(ctx, opts.ReplayPath)
	})
}

func runLive(ctx context.Context, cfg *config.Config, opts *cli.Options, logger *slog.Logger) error {
	conn := opts.Connection

	entries, err := discovery.ParsePgPass(discovery.PgPassPath())
	if err != nil {
		logger.Warn("failed to read pgpass", "error", err)
	}
	var passwords *discovery.PasswordStore
	if dir, err := config.GetConfigPath(); err == nil {
		passwords, err = discovery.OpenPasswordStore(dir)
		if err != nil {
			logger.Warn("keyring unavailable", "error", err)
		}
	}
	source := discovery.ResolvePassword(&conn, entries, passwords)
	logger.Debug("password resolved", "source", source)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	pool, err := connection.NewPool(connectCtx, conn)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	if opts.SavePassword && passwords != nil && conn.Password != "" {
		if err := passwords.Save(conn.Host, conn.Port, conn.Database, conn.User, conn.Password); err != nil {
			logger.Warn("failed to save password", "error", err)
		}
	}

	info, err := queries.FetchServerInfo(ctx, pool.GetPool())
	if err != nil {
		return fmt.Errorf("failed to read server info: %w", err)
	}
	connInfo := pool.Info()
	logger.Info("connected", "server", connInfo.Display(), "ssl", connInfo.SSLLabel, "version", info.Version)

	a := app.New(connInfo, opts.RefreshSecs, opts.HistoryLength, cfg, info)
	loopOpts := loopOptions(cfg, logger)

	dir := recorder.Dir(cfg.Recording.Dir)
	if n := recorder.CleanupOld(time.Duration(cfg.Recording.RetentionSecs)*time.Second, dir); n > 0 {
		logger.Info("removed old recordings", "count", n, "dir", dir)
	}
	if !opts.NoRecord && cfg.Recording.Enabled {
		rec, err := recorder.New(connInfo, info, dir)
		if err != nil {
			logger.Warn("recording disabled", "error", err)
		} else {
			defer rec.Close()
			loopOpts.Recorder = rec
			logger.Info("recording session", "path", rec.Path())
		}
	}
	if watcher, err := recorder.Watch(dir); err != nil {
		logger.Warn("recordings watch disabled", "error", err)
	} else {
		defer watcher.Close()
		loopOpts.Watcher = watcher
	}

	if path, err := history.DefaultPath(); err == nil {
		store, err := history.NewStore(path)
		if err != nil {
			logger.Warn("action log disabled", "error", err)
		} else {
			defer store.Close()
			loopOpts.Store = store
		}
	}

	loop := runtime.NewLoop(a, loopOpts)
	worker := runtime.NewWorker(queries.NewClient(queries.PoolConns{Pool: pool.GetPool()}, info), logger)
	return runProgram(ctx, loop, worker, loop.Run)
}

// runProgram runs the Bubble Tea program next to the loop and, when given,
// the worker. The program quits once body returns; everything else stops
// once the program has quit.
func runProgram(ctx context.Context, loop *runtime.Loop, worker *runtime.Worker, body func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	p := tea.NewProgram(runtime.NewBridge(loop.Input(), done), tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	if worker != nil {
		g.Go(func() error {
			return worker.Run(gctx, loop.Commands(), loop.Results())
		})
	}
	g.Go(func() error {
		defer p.Quit()
		defer close(done)
		return body(gctx)
	})
	g.Go(func() error {
		runtime.ForwardFrames(gctx, loop.Frames(), p.Send)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("failed to run program: %w", err)
		}
		return nil
	})
	return g.Wait()
}
