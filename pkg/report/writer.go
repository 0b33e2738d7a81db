package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/devrank/pkg/config"
	"github.com/Sumatoshi-tech/devrank/pkg/terminal"
)

// CompressedSuffix marks output paths written through lz4.
const CompressedSuffix = ".lz4"

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown report format")

// Options controls rendering.
type Options struct {
	Format   string
	Terminal terminal.Config
}

// Render writes r to w in the requested format.
func Render(w io.Writer, r *Report, opts Options) error {
	switch opts.Format {
	case config.FormatJSON, "":
		return writeJSON(w, r)
	case config.FormatYAML:
		return writeYAML(w, r)
	case config.FormatText:
		return writeText(w, r, opts.Terminal)
	case config.FormatPlot:
		return writePlot(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// Save renders r into path, compressing with lz4 when path ends in ".lz4".
func Save(path string, r *Report, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if !strings.HasSuffix(path, CompressedSuffix) {
		return Render(f, r, opts)
	}

	zw := lz4.NewWriter(f)

	if err := Render(zw, r, opts); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close lz4 stream: %w", err)
	}

	return nil
}

// Load reads a JSON report written by Save, decompressing ".lz4" files.
func Load(path string) (r *Report, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	var src io.Reader = f
	if strings.HasSuffix(path, CompressedSuffix) {
		src = lz4.NewReader(f)
	}

	var out Report

	if err := json.NewDecoder(src).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	return &out, nil
}

func writeJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	return nil
}
