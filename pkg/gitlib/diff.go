package gitlib

import (
	"fmt"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff wraps a libgit2 diff.
type Diff struct {
	diff *git2go.Diff
}

// NumDeltas returns the number of deltas in the diff.
func (d *Diff) NumDeltas() (int, error) {
	n, err := d.diff.NumDeltas()
	if err != nil {
		return 0, fmt.Errorf("get num deltas: %w", err)
	}

	return n, nil
}

// Delta returns the delta at the given index.
func (d *Diff) Delta(index int) (DiffDelta, error) {
	delta, err := d.diff.Delta(index)
	if err != nil {
		return DiffDelta{}, fmt.Errorf("get delta: %w", err)
	}

	return DiffDelta{
		Status:    delta.Status,
		OldFile:   DiffFile{Path: delta.OldFile.Path, Hash: HashFromOid(delta.OldFile.Oid)},
		NewFile:   DiffFile{Path: delta.NewFile.Path, Hash: HashFromOid(delta.NewFile.Oid)},
		Binary:    delta.Flags&git2go.DiffFlagBinary != 0,
		Submodule: git2go.Filemode(delta.OldFile.Mode) == git2go.FilemodeCommit ||
			git2go.Filemode(delta.NewFile.Mode) == git2go.FilemodeCommit,
	}, nil
}

// Stats returns files changed, insertions and deletions of the diff.
func (d *Diff) Stats() (files, insertions, deletions int, err error) {
	stats, err := d.diff.Stats()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("get diff stats: %w", err)
	}
	defer func() { _ = stats.Free() }()

	return stats.FilesChanged(), stats.Insertions(), stats.Deletions(), nil
}

// Free releases the diff resources.
func (d *Diff) Free() {
	if d.diff == nil {
		return
	}

	_ = d.diff.Free()
	d.diff = nil
}

// DiffDelta is one file entry of a diff.
type DiffDelta struct {
	Status    git2go.Delta
	OldFile   DiffFile
	NewFile   DiffFile
	Binary    bool
	Submodule bool
}

// DiffFile is one side of a delta.
type DiffFile struct {
	Path string
	Hash Hash
}

// LineDiff renders a line-level diff of two blob contents as patch text:
// a "--- a/" and "+++ b/" header, then "+" and "-" lines with an "@@" line
// opening every run of changes. Unchanged lines are omitted.
func LineDiff(path string, oldData, newData []byte) string {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(string(oldData), string(newData))
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lines)

	var b strings.Builder

	b.WriteString("--- a/" + path + "\n")
	b.WriteString("+++ b/" + path + "\n")

	inHunk := false

	for _, d := range diffs {
		var marker byte

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			marker = '+'
		case diffmatchpatch.DiffDelete:
			marker = '-'
		case diffmatchpatch.DiffEqual:
			inHunk = false

			continue
		}

		if !inHunk {
			b.WriteString("@@\n")

			inHunk = true
		}

		for _, line := range splitLines(d.Text) {
			b.WriteByte(marker)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}

	return strings.Split(text, "\n")
}
