package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kstenerud/builder-go/internal/buildtool"
	"github.com/kstenerud/builder-go/internal/cache"
	"github.com/kstenerud/builder-go/internal/config"
	"github.com/kstenerud/builder-go/internal/fetch"
	"github.com/kstenerud/builder-go/internal/launcher"
	"github.com/kstenerud/builder-go/internal/logging"
	"github.com/kstenerud/builder-go/internal/paths"
	"github.com/kstenerud/builder-go/internal/trust"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version":
			fmt.Printf("builder launcher %s\n", Version)
			return 0
		case "--cache-help":
			printCacheHelp()
			return 0
		case "--trust-yes":
			return withApp(func(a *app) int { return runTrustYes(a, args[1:]) })
		case "--trust-no":
			return withApp(func(a *app) int { return runTrustNo(a, args[1:]) })
		case "--trust-list":
			return withApp(func(a *app) int { return runTrustList(a) })
		case "--cache-prune-older-than":
			return withApp(func(a *app) int { return runCachePruneOlder(a, args[1:]) })
		case "--cache-prune-builder":
			return withApp(func(a *app) int { return runCachePruneBuilder(a, args[1:]) })
		}
	}

	// Everything else is forwarded to the project's builder executable.
	return withApp(func(a *app) int { return runForward(a, args) })
}

// app holds the wired-up components shared by all commands.
type app struct {
	paths    *paths.Paths
	trust    *trust.Store
	cache    *cache.Manager
	launcher *launcher.Launcher
	logger   logging.Logger
}

func newApp() (*app, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determine home directory: %w", err)
	}
	projectRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}

	logger := logging.NewSlog(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	})))

	p, err := paths.New(home, projectRoot)
	if err != nil {
		return nil, err
	}

	store := trust.NewStore(p, logger)

	mgr, err := cache.NewManager(p, logger, cache.RealClock{})
	if err != nil {
		return nil, err
	}

	l, err := launcher.New(launcher.Config{
		Paths:   p,
		Trust:   store,
		Cache:   mgr,
		Fetcher: fetch.NewFetcher(logger),
		Builder: buildtool.NewBuilder(buildtool.NewExecRunner(), logger),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		paths:    p,
		trust:    store,
		cache:    mgr,
		launcher: l,
		logger:   logger,
	}, nil
}

func withApp(fn func(*app) int) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return fn(a)
}

func logLevel() slog.Level {
	if os.Getenv("BUILDER_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// projectLocator loads builder.yaml from the project root and returns the
// configured builder_binary locator.
func projectLocator(a *app) (string, error) {
	project, err := config.Load(a.paths.ProjectConfigFile())
	if err != nil {
		return "", err
	}
	return project.BuilderBinary, nil
}

// runForward ensures the project's builder is available and runs it with
// the given arguments, forwarding its exit code.
func runForward(a *app, args []string) int {
	locator, err := projectLocator(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return a.launcher.Run(context.Background(), locator, args)
}
