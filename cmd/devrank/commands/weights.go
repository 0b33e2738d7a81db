package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/devrank/pkg/config"
	"github.com/Sumatoshi-tech/devrank/pkg/pipeline"
	"github.com/Sumatoshi-tech/devrank/pkg/rating"
	"github.com/Sumatoshi-tech/devrank/pkg/terminal"
)

// ErrUnsupportedFormat is returned when a command cannot render the requested format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// effectiveWeights is the machine-readable weights listing.
type effectiveWeights struct {
	Weights map[string]float64 `json:"weights"                   yaml:"weights"`
	Unknown []string           `json:"unknown_factors,omitempty" yaml:"unknown_factors,omitempty"`
}

// NewWeightsCommand creates the weights command.
func NewWeightsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Show the effective rating weights",
		Long: `Resolve rating weights from defaults, the weights file and overrides,
then print the result. Unknown factor names are reported and ignored.`,
		Args: cobra.NoArgs,
		RunE: runWeights,
	}

	flags := cmd.Flags()
	flags.StringP(flagConfig, "c", "", "Configuration file (default .devrank.yaml)")
	addWeightFlags(flags)
	flags.StringP("format", "f", config.FormatText, "Output format: text, json or yaml")
	flags.Bool(flagNoColor, false, "Disable colored output")

	return cmd
}

func runWeights(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runCfg, _, err := pipeline.Settings(cfg, "")
	if err != nil {
		return err
	}

	weights, diag, err := rating.Resolve(runCfg.WeightSources, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch cfg.Output.Format {
	case config.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(effectiveWeights{Weights: weights, Unknown: diag.Unknown})
	case config.FormatYAML:
		enc := yaml.NewEncoder(out)
		defer enc.Close()

		return enc.Encode(effectiveWeights{Weights: weights, Unknown: diag.Unknown})
	case config.FormatText:
		term := terminal.NewConfig()
		term.NoColor = term.NoColor || cfg.Output.NoColor

		writeWeightsTable(out, weights, diag, term)

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, cfg.Output.Format)
	}
}

func writeWeightsTable(w io.Writer, weights rating.Weights, diag rating.Diagnostics, term terminal.Config) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Factor", "Weight", "Default", "Description"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, WidthMax: term.Width / 2},
	})

	for _, f := range rating.Factors {
		value := fmt.Sprintf("%.2f", weights[f.Name])
		if weights[f.Name] != f.Default {
			value = term.Colorize(value, terminal.ColorYellow)
		}

		tbl.AppendRow(table.Row{f.Name, value, fmt.Sprintf("%.2f", f.Default), f.Description})
	}

	tbl.Render()

	for _, e := range diag.Errors() {
		fmt.Fprintln(w, term.Colorize("warning: "+e.Error(), terminal.ColorYellow))
	}
}
