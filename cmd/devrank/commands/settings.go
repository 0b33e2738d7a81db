// Package commands implements the devrank CLI command handlers.
package commands

import (
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/devrank/pkg/config"
	"github.com/Sumatoshi-tech/devrank/pkg/rating"
)

// Flag names shared by several commands.
const (
	flagConfig      = "config"
	flagWeightsFile = "weights-file"
	flagWeight      = "weight"
	flagVerbose     = "verbose"
	flagNoColor     = "no-color"
	flagMinChanges  = "min-changes"
	flagIgnoreWS    = "ignore-whitespace"
	weightFlagStem  = "weight-"
)

// flagBindings maps flags to configuration keys.
var flagBindings = map[string]string{
	"since":            "analysis.since",
	"until":            "analysis.until",
	flagMinChanges:     "analysis.min_change_size",
	flagIgnoreWS:       "analysis.ignore_whitespace_only",
	"commit-weighting": "analysis.commit_type_weighting",
	"ignore-reverts":   "analysis.ignore_reverts",
	"ignore-merges":    "analysis.ignore_merges",
	"first-parent":     "analysis.first_parent",
	"limit":            "analysis.limit",
	"workers":          "analysis.workers",
	"blob-cache-size":  "analysis.blob_cache_size",
	"skip-vendor":      "analysis.skip_vendor",
	"exclude":          "analysis.exclude_developers",
	flagWeightsFile:    "weights.file",
	"format":           "output.format",
	"output":           "output.path",
	flagNoColor:        "output.no_color",
	"log-level":        "logging.level",
	"log-json":         "logging.json",
	"log-file":         "logging.file",
	"otlp-endpoint":    "telemetry.otlp_endpoint",
	"otlp-insecure":    "telemetry.otlp_insecure",
	"metrics-file":     "telemetry.metrics_file",
}

// weightFlagName returns the per-factor flag for a factor name.
func weightFlagName(factor string) string {
	return weightFlagStem + strings.ReplaceAll(factor, "_", "-")
}

// addWeightFlags registers --weights-file, --weight and one --weight-<factor>
// flag per rating factor.
func addWeightFlags(flags *pflag.FlagSet) {
	flags.String(flagWeightsFile, "", "JSON or YAML file of rating weights")
	flags.StringArray(flagWeight, nil, "Override a rating weight as name=value (repeatable)")

	for _, f := range rating.Factors {
		flags.Float64(weightFlagName(f.Name), f.Default, fmt.Sprintf("Weight of %s", f.Name))
	}
}

// loadConfig reads the configuration with every bound flag of cmd applied.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()
	flags := cmd.Flags()

	for name, key := range flagBindings {
		if err := loader.BindFlag(key, flags.Lookup(name)); err != nil {
			return nil, err
		}
	}

	if verbose, err := flags.GetBool(flagVerbose); err == nil && verbose {
		loader.Set("logging.level", "debug")
	}

	path, _ := flags.GetString(flagConfig)

	cfg, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	overrides, err := weightOverrides(flags, cfg.Weights.Overrides)
	if err != nil {
		return nil, err
	}

	cfg.Weights.Overrides = overrides

	return cfg, nil
}

// weightOverrides layers per-factor flags, then --weight assignments, over
// the configured overrides. Only flags set on the command line apply.
func weightOverrides(flags *pflag.FlagSet, base map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(base))
	maps.Copy(out, base)

	for _, f := range rating.Factors {
		flag := flags.Lookup(weightFlagName(f.Name))
		if flag == nil || !flag.Changed {
			continue
		}

		out[f.Name] = flag.Value.String()
	}

	assignments, err := flags.GetStringArray(flagWeight)
	if err != nil {
		return out, nil //nolint:nilerr // command has no --weight flag.
	}

	for _, a := range assignments {
		name, value, parseErr := rating.ParseAssignment(a)
		if parseErr != nil {
			return nil, parseErr
		}

		out[name] = value
	}

	return out, nil
}
