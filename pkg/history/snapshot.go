package history

import (
	"context"
	"time"
)

// Snapshot is the complete input handed to classification and aggregation.
// Commits are in source order; Stats and Changes are keyed by commit hash and
// may lack entries for any commit.
type Snapshot struct {
	Commits []Commit                `json:"commits"      yaml:"commits"`
	Stats   map[string]CommitStats  `json:"stats"        yaml:"stats"`
	Changes map[string][]FileChange `json:"file_changes" yaml:"file_changes"`
}

// NewSnapshot returns an empty snapshot with initialized lookups.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Stats:   make(map[string]CommitStats),
		Changes: make(map[string][]FileChange),
	}
}

// StatsFor returns the stats of a commit, or zero stats when absent.
func (s *Snapshot) StatsFor(hash string) CommitStats {
	if s == nil || s.Stats == nil {
		return CommitStats{}
	}

	return s.Stats[hash]
}

// ChangesFor returns the file changes of a commit, or nil when absent.
func (s *Snapshot) ChangesFor(hash string) []FileChange {
	if s == nil || s.Changes == nil {
		return nil
	}

	return s.Changes[hash]
}

// FileChangeCount returns the total number of file changes in the snapshot.
func (s *Snapshot) FileChangeCount() int {
	total := 0

	for _, changes := range s.Changes {
		total += len(changes)
	}

	return total
}

// Filter narrows the commits included in a snapshot.
type Filter struct {
	Since         *time.Time
	Until         *time.Time
	IgnoreReverts bool
	IgnoreMerges  bool
}

// Accept reports whether a commit passes the filter.
func (f Filter) Accept(c Commit) bool {
	if f.Since != nil && c.When.Before(*f.Since) {
		return false
	}

	if f.Until != nil && c.When.After(*f.Until) {
		return false
	}

	if f.IgnoreReverts && c.IsRevert {
		return false
	}

	if f.IgnoreMerges && c.IsMerge {
		return false
	}

	return true
}

// Apply returns a new snapshot with only the accepted commits and their details.
func (f Filter) Apply(s *Snapshot) *Snapshot {
	out := NewSnapshot()

	for _, c := range s.Commits {
		if !f.Accept(c) {
			continue
		}

		out.Commits = append(out.Commits, c)

		if st, ok := s.Stats[c.Hash]; ok {
			out.Stats[c.Hash] = st
		}

		if changes, ok := s.Changes[c.Hash]; ok {
			out.Changes[c.Hash] = changes
		}
	}

	return out
}

// Source supplies a snapshot of repository history.
type Source interface {
	Collect(ctx context.Context) (*Snapshot, error)
}

// StaticSource serves a prebuilt snapshot.
type StaticSource struct {
	Snapshot *Snapshot
}

// Collect returns the held snapshot, or an empty one.
func (s StaticSource) Collect(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.Snapshot == nil {
		return NewSnapshot(), nil
	}

	return s.Snapshot, nil
}
