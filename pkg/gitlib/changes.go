package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/devrank/pkg/history"
)

// changeTypes maps libgit2 delta statuses to git status letters.
var changeTypes = map[git2go.Delta]history.ChangeType{
	git2go.DeltaAdded:      history.ChangeAdded,
	git2go.DeltaModified:   history.ChangeModified,
	git2go.DeltaDeleted:    history.ChangeDeleted,
	git2go.DeltaRenamed:    history.ChangeRenamed,
	git2go.DeltaCopied:     history.ChangeCopied,
	git2go.DeltaTypeChange: history.ChangeTypeChange,
}

// ChangeOptions controls how deltas become file changes.
type ChangeOptions struct {
	IgnoredFiles []string
	SkipVendor   bool
}

// CommitDetail is the extracted statistics and file changes of one commit.
type CommitDetail struct {
	Stats   history.CommitStats
	Changes []history.FileChange
	HasData bool
}

// ExtractDetail diffs a commit against its first parent, or the empty tree
// for a root commit. Merge commits yield no detail.
func ExtractDetail(repo *Repository, cache *BlobCache, hash Hash, opts ChangeOptions) (CommitDetail, error) {
	commit, err := repo.LookupCommit(hash)
	if err != nil {
		return CommitDetail{}, err
	}
	defer commit.Free()

	if commit.NumParents() > 1 {
		return CommitDetail{}, nil
	}

	tree, err := commit.Tree()
	if err != nil {
		return CommitDetail{}, err
	}
	defer tree.Free()

	var parentTree *Tree

	if commit.NumParents() == 1 {
		parent, parentErr := commit.Parent(0)
		if parentErr != nil {
			return CommitDetail{}, parentErr
		}

		parentTree, err = parent.Tree()
		parent.Free()

		if err != nil {
			return CommitDetail{}, err
		}
		defer parentTree.Free()
	}

	diff, err := repo.DiffTreeToTree(parentTree, tree)
	if err != nil {
		return CommitDetail{}, err
	}
	defer diff.Free()

	files, ins, del, err := diff.Stats()
	if err != nil {
		return CommitDetail{}, err
	}

	changes, err := fileChanges(repo, cache, diff, hash.String(), opts)
	if err != nil {
		return CommitDetail{}, err
	}

	return CommitDetail{
		Stats:   history.CommitStats{FilesChanged: files, Insertions: ins, Deletions: del},
		Changes: changes,
		HasData: true,
	}, nil
}

func fileChanges(repo *Repository, cache *BlobCache, diff *Diff, commitHash string, opts ChangeOptions) ([]history.FileChange, error) {
	n, err := diff.NumDeltas()
	if err != nil {
		return nil, err
	}

	changes := make([]history.FileChange, 0, n)

	for i := range n {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			return nil, deltaErr
		}

		changeType, ok := changeTypes[delta.Status]
		if !ok {
			continue
		}

		path := delta.NewFile.Path
		if delta.Status == git2go.DeltaDeleted {
			path = delta.OldFile.Path
		}

		if history.IsIgnored(path, opts.IgnoredFiles) {
			continue
		}

		text, textErr := deltaText(repo, cache, delta, path, opts)
		if textErr != nil {
			return nil, fmt.Errorf("diff %s: %w", path, textErr)
		}

		changes = append(changes, history.NewFileChange(commitHash, path, changeType, text))
	}

	return changes, nil
}

// deltaText renders the patch text of one delta. Binary files, submodules
// and optionally vendored files get an empty text.
func deltaText(repo *Repository, cache *BlobCache, delta DiffDelta, path string, opts ChangeOptions) (string, error) {
	if delta.Binary || delta.Submodule || (opts.SkipVendor && enry.IsVendor(path)) {
		return "", nil
	}

	oldData, err := loadSide(repo, cache, delta.OldFile.Hash)
	if err != nil {
		return "", err
	}

	newData, err := loadSide(repo, cache, delta.NewFile.Hash)
	if err != nil {
		return "", err
	}

	if enry.IsBinary(oldData) || enry.IsBinary(newData) {
		return "", nil
	}

	return LineDiff(path, oldData, newData), nil
}

func loadSide(repo *Repository, cache *BlobCache, h Hash) ([]byte, error) {
	if h.IsZero() {
		return nil, nil
	}

	return cache.Load(repo, h)
}
