// Package history defines the commit and file-change records that flow from a
// history source into classification, aggregation and rating.
package history

import (
	"path"
	"strings"
	"time"
)

// DateLayout is the textual rendering used for commit dates in reports.
const DateLayout = "2006-01-02 15:04:05"

// Commit is a single history entry. It is created once and never mutated.
type Commit struct {
	Hash        string    `json:"hash"         yaml:"hash"`
	AuthorName  string    `json:"author_name"  yaml:"author_name"`
	AuthorEmail string    `json:"author_email" yaml:"author_email"`
	When        time.Time `json:"timestamp"    yaml:"timestamp"`
	Subject     string    `json:"subject"      yaml:"subject"`
	IsRevert    bool      `json:"is_revert"    yaml:"is_revert"`
	IsMerge     bool      `json:"is_merge"     yaml:"is_merge"`
}

// NewCommit builds a Commit and derives the revert and merge flags from the subject.
func NewCommit(hash, authorName, authorEmail string, when time.Time, subject string) Commit {
	return Commit{
		Hash:        hash,
		AuthorName:  authorName,
		AuthorEmail: authorEmail,
		When:        when,
		Subject:     subject,
		IsRevert:    DetectRevert(subject),
		IsMerge:     DetectMerge(subject),
	}
}

// Identity returns the case-normalized author address.
func (c Commit) Identity() string {
	return NormalizeIdentity(c.AuthorEmail)
}

// Date returns the commit time formatted with DateLayout.
func (c Commit) Date() string {
	return c.When.Format(DateLayout)
}

// NormalizeIdentity lower-cases an author address.
func NormalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DetectRevert reports whether a subject line looks like a revert.
func DetectRevert(subject string) bool {
	return strings.HasPrefix(subject, `Revert "`) || strings.Contains(strings.ToLower(subject), "revert")
}

// DetectMerge reports whether a subject line looks like a merge.
func DetectMerge(subject string) bool {
	return strings.HasPrefix(subject, "Merge ") || strings.Contains(strings.ToLower(subject), "merge")
}

// SubjectOf returns the first line of a commit message.
func SubjectOf(message string) string {
	subject, _, _ := strings.Cut(message, "\n")

	return strings.TrimRight(subject, "\r ")
}

// CommitStats holds the per-commit line statistics.
type CommitStats struct {
	FilesChanged int `json:"files_changed" yaml:"files_changed"`
	Insertions   int `json:"insertions"    yaml:"insertions"`
	Deletions    int `json:"deletions"     yaml:"deletions"`
}

// Impact returns files_changed * (insertions + deletions).
func (s CommitStats) Impact() int {
	return s.FilesChanged * (s.Insertions + s.Deletions)
}

// ChangeType is the git status letter of a file change.
type ChangeType string

// Change type codes as reported by git.
const (
	ChangeAdded      ChangeType = "A"
	ChangeModified   ChangeType = "M"
	ChangeDeleted    ChangeType = "D"
	ChangeRenamed    ChangeType = "R"
	ChangeCopied     ChangeType = "C"
	ChangeTypeChange ChangeType = "T"
)

// FileChange is one file touched by a commit.
type FileChange struct {
	CommitHash  string     `json:"commit_hash"    yaml:"commit_hash"`
	Path        string     `json:"file_path"      yaml:"file_path"`
	Ext         string     `json:"file_ext"       yaml:"file_ext"`
	Type        ChangeType `json:"change_type"    yaml:"change_type"`
	Diff        string     `json:"diff,omitempty" yaml:"diff,omitempty"`
	Substantial bool       `json:"is_substantial" yaml:"is_substantial"`
}

// NewFileChange builds a FileChange with the extension derived from the path.
func NewFileChange(commitHash, filePath string, changeType ChangeType, diff string) FileChange {
	return FileChange{
		CommitHash: commitHash,
		Path:       filePath,
		Ext:        Ext(filePath),
		Type:       changeType,
		Diff:       diff,
	}
}

// Ext returns the lower-cased extension of a path including the dot.
func Ext(filePath string) string {
	return strings.ToLower(path.Ext(filePath))
}

// DefaultIgnoredFiles lists basenames that carry no authorship signal.
var DefaultIgnoredFiles = []string{
	"package-lock.json",
	"yarn.lock",
	".gitignore",
	".gitattributes",
	"Pipfile.lock",
	"poetry.lock",
	"requirements.txt",
}

// IsIgnored reports whether the basename of filePath is in ignored.
func IsIgnored(filePath string, ignored []string) bool {
	base := path.Base(filePath)

	for _, name := range ignored {
		if base == name {
			return true
		}
	}

	return false
}
