package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devrank/pkg/config"
	"github.com/Sumatoshi-tech/devrank/pkg/gitlib"
	"github.com/Sumatoshi-tech/devrank/pkg/history"
	"github.com/Sumatoshi-tech/devrank/pkg/observability"
	"github.com/Sumatoshi-tech/devrank/pkg/pipeline"
	"github.com/Sumatoshi-tech/devrank/pkg/report"
	"github.com/Sumatoshi-tech/devrank/pkg/terminal"
	"github.com/Sumatoshi-tech/devrank/pkg/version"
)

const logFileMode = 0o644

// SourceFactory opens the history source for a repository path.
type SourceFactory func(path string, opts gitlib.CollectOptions, logger *slog.Logger) history.Source

// ObservabilityInit sets up tracing, metrics and logging for one run.
type ObservabilityInit func(ctx context.Context, cfg observability.Config) (observability.Providers, error)

// AnalyzeCommand holds the analyze command state.
type AnalyzeCommand struct {
	newSource SourceFactory
	initObs   ObservabilityInit
	now       func() time.Time
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	return newAnalyzeCommandWithDeps(gitSource, observability.Init, time.Now)
}

func newAnalyzeCommandWithDeps(
	newSource SourceFactory,
	initObs ObservabilityInit,
	now func() time.Time,
) *cobra.Command {
	ac := &AnalyzeCommand{newSource: newSource, initObs: initObs, now: now}

	cmd := &cobra.Command{
		Use:   "analyze [repository]",
		Short: "Rate developer productivity from git history",
		Long: `Walk the repository history, classify every change as substantial or not,
aggregate per-developer statistics and rate each developer's usefulness.

Examples:
  devrank analyze .
  devrank analyze /path/to/repo --since 2025-01-01 --format text
  devrank analyze . --exclude bot@example.com --weight impact=0.3
  devrank analyze . --output report.json.lz4`,
		Args: cobra.MaximumNArgs(1),
		RunE: ac.run,
	}

	flags := cmd.Flags()
	flags.StringP(flagConfig, "c", "", "Configuration file (default .devrank.yaml)")
	flags.String("since", "", "Only commits after this date (YYYY-MM-DD or RFC3339)")
	flags.String("until", "", "Only commits up to this date (YYYY-MM-DD or RFC3339)")
	flags.Int(flagMinChanges, config.DefaultMinChangeSize, "Weighted size a change needs to be substantial")
	flags.Bool(flagIgnoreWS, config.DefaultIgnoreWhitespaceOnly, "Treat whitespace-only changes as not substantial")
	flags.Bool("commit-weighting", config.DefaultCommitTypeWeighting, "Weight changes by commit message type")
	flags.Bool("ignore-reverts", false, "Drop revert commits")
	flags.Bool("ignore-merges", false, "Drop merge commits")
	flags.Bool("first-parent", false, "Follow only first parents")
	flags.Int("limit", 0, "Maximum number of commits to analyze (0 = all)")
	flags.IntP("workers", "w", config.DefaultWorkers, "Parallel detail extraction workers")
	flags.String("blob-cache-size", config.DefaultBlobCacheSize, "Per-worker blob cache budget (e.g. 64MB, 0 disables)")
	flags.Bool("skip-vendor", false, "Skip vendored and generated paths")
	flags.StringSlice("exclude", nil, "Developer emails to exclude (repeatable)")
	addWeightFlags(flags)
	flags.StringP("format", "f", config.DefaultOutputFormat, "Output format: json, yaml, text or plot")
	flags.StringP("output", "o", "", "Write the report to a file (.lz4 suffix compresses)")
	flags.Bool(flagNoColor, false, "Disable colored output")
	flags.BoolP(flagVerbose, "v", false, "Debug logging")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	flags.Bool("log-json", false, "JSON log output")
	flags.String("log-file", "", "Write logs to a file instead of stderr")
	flags.String("otlp-endpoint", "", "OTLP gRPC endpoint for traces and metrics")
	flags.Bool("otlp-insecure", false, "Disable TLS for OTLP")
	flags.String("metrics-file", "", "Write a Prometheus text snapshot of run metrics")

	return cmd
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) (err error) {
	repo := "."
	if len(args) > 0 {
		repo = args[0]
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runCfg, collectOpts, err := pipeline.Settings(cfg, repoName(repo))
	if err != nil {
		return err
	}

	runCfg.ToolVersion = version.Version

	obsCfg, closeLog, err := observabilityConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	providers, err := ac.initObs(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		err = errors.Join(err, providers.Shutdown(context.WithoutCancel(ctx)))
	}()

	analysisMetrics, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	runner := pipeline.New(
		pipeline.WithLogger(providers.Logger),
		pipeline.WithTracer(providers.Tracer),
		pipeline.WithMetrics(analysisMetrics),
		pipeline.WithClock(ac.now),
	)

	rep, err := runner.Run(ctx, ac.newSource(repo, collectOpts, providers.Logger), runCfg)
	if err != nil {
		return err
	}

	term := terminal.NewConfig()
	term.NoColor = term.NoColor || cfg.Output.NoColor

	opts := report.Options{Format: cfg.Output.Format, Terminal: term}

	if cfg.Output.Path != "" {
		if err := report.Save(cfg.Output.Path, rep, opts); err != nil {
			return err
		}

		providers.Logger.InfoContext(ctx, "report written", "path", cfg.Output.Path)

		return nil
	}

	return report.Render(cmd.OutOrStdout(), rep, opts)
}

// observabilityConfig maps loaded settings onto observability.Config. The
// returned closer releases the log file, if one was opened.
func observabilityConfig(cfg *config.Config, stderr io.Writer) (observability.Config, func(), error) {
	obs := observability.DefaultConfig()
	obs.ServiceVersion = version.Version
	obs.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obs.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obs.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obs.MetricsFile = cfg.Telemetry.MetricsFile
	obs.LogJSON = cfg.Logging.JSON
	obs.LogWriter = stderr

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return obs, func() {}, err
	}

	obs.LogLevel = level

	if cfg.Logging.File == "" {
		return obs, func() {}, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return obs, func() {}, fmt.Errorf("open log file: %w", err)
	}

	obs.LogWriter = f

	return obs, func() { _ = f.Close() }, nil
}

// repoName is the repository label recorded in report metadata.
func repoName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return filepath.Base(abs)
}

func gitSource(path string, opts gitlib.CollectOptions, logger *slog.Logger) history.Source {
	return &gitlib.Collector{Path: path, Options: opts, Logger: logger}
}
