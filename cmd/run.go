package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/user/nessus-rider/pkg/config"
	"github.com/user/nessus-rider/pkg/engine"
	"github.com/user/nessus-rider/pkg/ghostwriter"
	"github.com/user/nessus-rider/pkg/nessus"
	"github.com/user/nessus-rider/pkg/report"
	"github.com/user/nessus-rider/pkg/telemetry"
	"github.com/user/nessus-rider/pkg/translate"
)

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("12")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("12")).
	Padding(0, 2)

type runOptions struct {
	ScanIDs     []string
	ProjectID   int
	Language    string
	Insecure    bool
	DryRun      bool
	MetricsFile string
	FromDump    string
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Convert Nessus scans into Ghostwriter findings",
	Example: `  nessus-rider run --scan-ids 12,15 --project-id 3
  nessus-rider run --scan-ids 12 --project-id 3 --language italian --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), bannerStyle.Render("nessus-rider  ·  Nessus → Ghostwriter"))

		if len(runOpts.ScanIDs) == 0 && runOpts.FromDump == "" {
			return errors.New("--scan-ids is required unless --from-dump is given")
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return executeRun(ctx, runOpts, cfg, config.LoadCredentials(), newGeminiGenerator, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// generatorFactory builds the translation backend and its cleanup.
type generatorFactory func(ctx context.Context, apiKey, model string) (translate.Generator, func(), error)

func newGeminiGenerator(ctx context.Context, apiKey, model string) (translate.Generator, func(), error) {
	g, err := translate.NewGeminiGenerator(ctx, apiKey, model)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize Gemini: %w", err)
	}
	return g, g.Close, nil
}

// requiredServices lists the credentials a run must have. Replaying a dump
// never talks to Nessus.
func requiredServices(opts runOptions) []config.Service {
	if opts.FromDump != "" {
		return []config.Service{config.Ghostwriter, config.Gemini}
	}
	return config.AllServices
}

// executeRun checks credentials before any network activity, builds the
// generator when the target language differs from the source, then converts.
func executeRun(ctx context.Context, opts runOptions, cfg *config.Config, creds *config.Credentials, newGen generatorFactory, out, progressOut io.Writer) error {
	if opts.Language == "" {
		opts.Language = cfg.SourceLanguage
	}
	if err := creds.Validate(requiredServices(opts)...); err != nil {
		return err
	}

	var gen translate.Generator
	if !strings.EqualFold(opts.Language, cfg.SourceLanguage) {
		g, closeGen, err := newGen(ctx, creds.GeminiAPIKey, cfg.Model)
		if err != nil {
			return err
		}
		defer closeGen()
		gen = g
	}

	return runConvert(ctx, opts, cfg, creds, gen, out, progressOut)
}

// runConvert is the whole conversion: aggregate, format, rank, submit.
// gen may be nil when no translation is needed.
func runConvert(ctx context.Context, opts runOptions, cfg *config.Config, creds *config.Credentials, gen translate.Generator, out, progressOut io.Writer) error {
	metrics := telemetry.NewMetrics()

	var graph *engine.FindingGraph
	if opts.FromDump != "" {
		g, err := engine.LoadSnapshot(opts.FromDump)
		if err != nil {
			return err
		}
		slog.Info("Loaded aggregated findings from dump", "path", opts.FromDump, "findings", g.Len())
		graph = g
	} else {
		nc := nessus.NewClient(creds.NessusURL, creds.NessusAccessKey, creds.NessusSecretKey, !opts.Insecure)
		agg := &engine.Aggregator{Source: nc, Metrics: metrics}
		graph = agg.Run(ctx, opts.ScanIDs)

		if cfg.DumpFile != "" {
			if err := graph.SaveSnapshot(cfg.DumpFile); err != nil {
				telemetry.LogError("Error saving data to JSON", err, "path", cfg.DumpFile)
			} else {
				slog.Info("Data saved", "path", cfg.DumpFile)
			}
		}
	}
	slog.Debug(graph.GetReport())

	formatter := &engine.Formatter{
		ReportID:       opts.ProjectID,
		Language:       opts.Language,
		SourceLanguage: cfg.SourceLanguage,
		MinSeverity:    cfg.MinSeverity,
	}
	if gen != nil {
		cache, err := translate.LoadCache(cfg.TranslationsFile)
		if err != nil {
			return err
		}
		slog.Info("Translation cache loaded", "path", cache.Path(), "entries", cache.Len())
		quota := translate.NewQuota(cfg.Quota.Threshold, cfg.Quota.Cost, cfg.Quota.Cooldown)
		formatter.Translator = translate.NewTranslator(gen, cache, quota).WithMetrics(metrics)
	}

	pipeline := &engine.Pipeline{
		Formatter: formatter,
		Metrics:   metrics,
		Progress: func(done, total int, title string) {
			fmt.Fprintf(progressOut, "\r\033[KFindings %d/%d: %s", done, total, title)
			if done == total {
				fmt.Fprintln(progressOut)
			}
		},
	}
	findings := pipeline.Run(ctx, graph.Findings())

	if err := report.PrintSummary(out, findings); err != nil {
		return err
	}

	if opts.DryRun {
		slog.Info("Dry run, nothing submitted to Ghostwriter", "findings", len(findings))
	} else {
		gw := ghostwriter.NewClient(creds.GhostwriterURL, creds.GhostwriterAPIKey, !opts.Insecure)
		gw.Delay = cfg.SubmitDelay
		sum := gw.InsertFindings(ctx, findings)
		metrics.SubmissionResults(sum.Inserted, sum.Failed)
		slog.Info("Submission complete", "inserted", sum.Inserted, "failed", sum.Failed)
	}

	if opts.MetricsFile != "" {
		if err := metrics.WriteTextfile(opts.MetricsFile); err != nil {
			telemetry.LogError("Failed to write metrics", err, "path", opts.MetricsFile)
		}
	}
	return nil
}

func init() {
	runCmd.Flags().StringSliceVar(&runOpts.ScanIDs, "scan-ids", nil, "Nessus scan ids, comma separated")
	runCmd.Flags().IntVar(&runOpts.ProjectID, "project-id", 0, "Ghostwriter report id")
	runCmd.Flags().StringVar(&runOpts.Language, "language", "english", "Language of the submitted findings")
	runCmd.Flags().BoolVar(&runOpts.Insecure, "insecure", false, "Skip TLS verification for Nessus and Ghostwriter")
	runCmd.Flags().BoolVar(&runOpts.DryRun, "dry-run", false, "Format and print findings without submitting them")
	runCmd.Flags().StringVar(&runOpts.MetricsFile, "metrics-file", "", "Write run metrics in Prometheus textfile format")
	runCmd.Flags().StringVar(&runOpts.FromDump, "from-dump", "", "Read aggregated findings from a previous dump instead of Nessus")
	_ = runCmd.MarkFlagRequired("project-id")
	rootCmd.AddCommand(runCmd)
}
