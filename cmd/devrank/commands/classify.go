package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devrank/pkg/config"
	"github.com/Sumatoshi-tech/devrank/pkg/significance"
	"github.com/Sumatoshi-tech/devrank/pkg/terminal"
)

const stdinArg = "-"

// NewClassifyCommand creates the classify command.
func NewClassifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [diff-file]",
		Short: "Classify one diff as substantial or not",
		Long: `Evaluate a unified diff the way analyze does and print the weight
breakdown. Reads stdin when the file is omitted or "-".

Examples:
  git diff HEAD~1 -- main.go | devrank classify --path main.go
  devrank classify change.diff --path pkg/api.go --message "fix: nil map"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClassify,
	}

	flags := cmd.Flags()
	flags.StringP(flagConfig, "c", "", "Configuration file (default .devrank.yaml)")
	flags.String("path", "", "File path the diff applies to")
	flags.StringP("message", "m", "", "Commit message used for commit type weighting")
	flags.Int(flagMinChanges, config.DefaultMinChangeSize, "Weighted size a change needs to be substantial")
	flags.Bool(flagIgnoreWS, config.DefaultIgnoreWhitespaceOnly, "Treat whitespace-only changes as not substantial")
	flags.StringP("format", "f", config.FormatText, "Output format: text or json")
	flags.Bool(flagNoColor, false, "Disable colored output")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	diff, err := readDiff(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("path")
	message, _ := cmd.Flags().GetString("message")

	classifier := significance.New(significance.Config{
		MinChangeThreshold:   cfg.Analysis.MinChangeSize,
		IgnoreWhitespaceOnly: cfg.Analysis.IgnoreWhitespaceOnly,
	})

	verdict := classifier.Evaluate(diff, path, message)
	out := cmd.OutOrStdout()

	switch cfg.Output.Format {
	case config.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(verdict)
	case config.FormatText:
		term := terminal.NewConfig()
		term.NoColor = term.NoColor || cfg.Output.NoColor

		writeVerdict(out, verdict, cfg.Analysis.MinChangeSize, term)

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, cfg.Output.Format)
	}
}

func readDiff(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == stdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read diff: %w", err)
	}

	return string(data), nil
}

func writeVerdict(w io.Writer, v significance.Verdict, threshold int, term terminal.Config) {
	label := term.Colorize("not substantial", terminal.ColorRed)
	if v.Substantial {
		label = term.Colorize("substantial", terminal.ColorGreen)
	}

	fmt.Fprintf(w, "%s (%s)\n", label, v.Reason)
	fmt.Fprintf(w, "  lines      +%d -%d (%d)\n", v.Added, v.Removed, v.Total)

	if v.Reason != significance.ReasonWeighted && v.Reason != significance.ReasonBelowThreshold {
		return
	}

	fmt.Fprintf(w, "  file       x%.2f\n", v.FileWeight)
	fmt.Fprintf(w, "  complexity x%.2f\n", v.ComplexityWeight)
	fmt.Fprintf(w, "  commit     x%.2f\n", v.CommitWeight)
	fmt.Fprintf(w, "  weighted   %.2f / %d\n", v.Weighted, threshold)
}
