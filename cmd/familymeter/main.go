// Package main provides the CLI entry point for the family height chart viewer.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"familymeter/internal/app"
	"familymeter/internal/config"
	"familymeter/internal/exporter"
	"familymeter/internal/infrastructure"
	"familymeter/internal/services"
	"familymeter/internal/tui"
	"familymeter/internal/validation"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	sourcePath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "familymeter",
		Short:         "Chart family height measurements by age",
		Long:          `familymeter reads the family measurement table and serves one age/height chart per group.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.sourcePath, "source", "", "Measurement table path (overrides configuration)")

	rootCmd.AddCommand(newServeCmd(opts), newCheckCmd(opts), newExportCmd(opts), newBrowseCmd(opts))
	return rootCmd
}

func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.sourcePath != "" {
		cfg.Source.Path = o.sourcePath
	}
	return cfg, nil
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			defer infrastructure.CloseLogFile()

			application, err := app.NewApplication(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			if err := application.Run(); err != nil {
				application.Logger.Error("Application error", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	}
}

func newPipeline(opts *options, logs io.Writer) (*services.PipelineService, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}
	return services.NewPipelineService(cfg, infrastructure.NewLogger(cfg.Logging.Level, logs))
}

// runPipeline runs one pipeline pass with logs going to stderr.
func runPipeline(cmd *cobra.Command, opts *options) (*services.Result, error) {
	pipeline, err := newPipeline(opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	ctx := infrastructure.EnsureTraceID(cmd.Context())
	return pipeline.Run(ctx)
}

func newBrowseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the groups in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// the terminal belongs to the browser, so logs are dropped
			pipeline, err := newPipeline(opts, io.Discard)
			if err != nil {
				return err
			}
			return tui.Run(infrastructure.EnsureTraceID(cmd.Context()), pipeline.Run)
		},
	}
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the pipeline once and print a per-group summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(cmd, opts)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), res)
		},
	}
}

func printSummary(w io.Writer, res *services.Result) error {
	fmt.Fprintf(w, "people: %d, skipped rows: %d, observations: %d\n",
		res.Stats.People, res.Stats.SkippedRows, res.Stats.Observations)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tKIND\tSERIES\tPOINTS")
	for _, g := range res.Groups.Groups {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", g.Key, g.Kind, len(g.Series), g.Observations())
	}
	return tw.Flush()
}

func writeExport(w io.Writer, format string, res *services.Result) error {
	if format == "xlsx" {
		return exporter.WriteTableXLSX(w, res.Table, "merania")
	}
	cw := exporter.NewCSVWriter(w, exporter.WriteOptions{Headers: exporter.ObservationHeaders})
	return exporter.WriteObservationsCSV(cw, res.People)
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		format     string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the table as xlsx or the observations as csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("invalid format: %s (must be csv or xlsx)", format)
			}

			if outputPath != "" {
				v := validation.NewFileValidator(nil)
				if err := v.ValidateOutputFile(outputPath, "."+format); err != nil {
					return err
				}
			}

			res, err := runPipeline(cmd, opts)
			if err != nil {
				return err
			}

			if outputPath == "" {
				return writeExport(cmd.OutOrStdout(), format, res)
			}

			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			if err := writeExport(f, format, res); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format: csv or xlsx")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}
