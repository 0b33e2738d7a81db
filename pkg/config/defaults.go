package config

import "github.com/Sumatoshi-tech/devrank/pkg/history"

// Analysis defaults.
const (
	DefaultMinChangeSize        = 5
	DefaultIgnoreWhitespaceOnly = true
	DefaultCommitTypeWeighting  = true
	DefaultWorkers              = 4
	DefaultBlobCacheSize        = "64MB"
)

// Output defaults.
const (
	DefaultOutputFormat = FormatText
	DefaultLogLevel     = "info"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
	FormatPlot = "plot"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatPlot}

// LogLevels lists the accepted logging levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// DefaultIgnoredFiles returns the basenames skipped by the collector.
func DefaultIgnoredFiles() []string {
	return append([]string(nil), history.DefaultIgnoredFiles...)
}
