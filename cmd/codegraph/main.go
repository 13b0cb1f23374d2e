package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"codegraph/internal/core/config"
	"codegraph/internal/core/ports"
	"codegraph/internal/core/watcher"
	"codegraph/internal/data/store"
	"codegraph/internal/engine/analysis"
	"codegraph/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./codegraph.toml", "Path to config file")
	root       = flag.String("root", "", "Project root to analyze (overrides config)")
	once       = flag.Bool("once", false, "Run a single analysis and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

type osFileSource struct{}

func (osFileSource) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("codegraph v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./codegraph.toml" {
			cfg, err = config.Load("./codegraph.example.toml")
		}
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if *root != "" {
		cfg.ProjectRoot = *root
	}
	if flag.NArg() > 0 {
		cfg.ProjectRoot = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracing(ctx, cfg.Tracing.Endpoint)
		if err != nil {
			slog.Error("failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown(context.Background())
	}

	if cfg.Metrics.Enabled {
		server := observability.NewServer(cfg.Metrics.Address, nil)
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
		defer server.Stop(context.Background())
	}

	var graphStore ports.GraphStore
	if cfg.DB.Enabled {
		graphStore, err = store.OpenSQLite(cfg.DB.Path)
		if err != nil {
			slog.Error("failed to open graph database", "error", err)
			os.Exit(1)
		}
	} else {
		graphStore = store.NewMemory()
	}
	defer graphStore.Close()

	orchestrator, err := analysis.New(cfg, graphStore, osFileSource{})
	if err != nil {
		slog.Error("failed to initialize analysis", "error", err)
		os.Exit(1)
	}

	report := orchestrator.Run(ctx)
	printIssues(report)
	if report.Status == analysis.StatusFailed {
		os.Exit(1)
	}

	if *once || !cfg.Watch.Enabled {
		return
	}

	rootDir, err := cfg.AbsoluteRoot()
	if err != nil {
		slog.Error("failed to resolve project root", "error", err)
		os.Exit(1)
	}

	w, err := watcher.New(cfg.Watch.Debounce, cfg.Exclude.Dirs, func(changed []string) {
		rep := orchestrator.RunIncremental(ctx, changed)
		printIssues(rep)
	})
	if err != nil {
		slog.Error("failed to initialize watcher", "error", err)
		os.Exit(1)
	}
	defer w.Close()

	if err := w.Watch(rootDir); err != nil {
		slog.Error("failed to watch project root", "error", err)
		os.Exit(1)
	}

	slog.Info("watching for changes", "root", rootDir, "debounce", cfg.Watch.Debounce)
	<-ctx.Done()
}

func printIssues(report *analysis.Report) {
	for _, issue := range report.Issues {
		switch issue.Severity {
		case analysis.SeverityError:
			slog.Error(issue.Message, "file", issue.File)
		case analysis.SeverityWarning:
			slog.Warn(issue.Message, "file", issue.File)
		default:
			slog.Info(issue.Message, "file", issue.File)
		}
	}
}
