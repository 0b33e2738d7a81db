package gitlib

import (
	"context"
	"fmt"
	"runtime"
)

// detailJob asks for the detail of the commit at walk position Index.
type detailJob struct {
	Index int
	Hash  Hash
}

// Worker owns one repository handle and extracts commit details on a locked
// OS thread. Each worker has its own blob cache.
type Worker struct {
	path  string
	opts  ChangeOptions
	cache *BlobCache
}

// NewWorker creates a worker for the repository at path.
func NewWorker(path string, opts ChangeOptions, cacheBudget int64) *Worker {
	return &Worker{path: path, opts: opts, cache: NewBlobCache(cacheBudget)}
}

// Run drains jobs and stores each detail at its walk position in out.
// It returns on the first error or when ctx is canceled.
func (w *Worker) Run(ctx context.Context, jobs <-chan detailJob, out []CommitDetail) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	repo, err := OpenRepository(w.path)
	if err != nil {
		return err
	}
	defer repo.Free()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}

		detail, err := ExtractDetail(repo, w.cache, job.Hash, w.opts)
		if err != nil {
			return fmt.Errorf("commit %s: %w", job.Hash, err)
		}

		out[job.Index] = detail
	}

	return nil
}
