package gitlib

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	git2go "github.com/libgit2/git2go/v34"
)

// Blob wraps a libgit2 blob.
type Blob struct {
	blob *git2go.Blob
}

// Size returns the blob size.
func (b *Blob) Size() int64 {
	return b.blob.Size()
}

// Contents returns a copy of the blob contents.
func (b *Blob) Contents() []byte {
	return append([]byte(nil), b.blob.Contents()...)
}

// Free releases the blob resources.
func (b *Blob) Free() {
	if b.blob != nil {
		b.blob.Free()
		b.blob = nil
	}
}

// maxCachedBlobs bounds the entry count independent of the byte budget.
const maxCachedBlobs = 1 << 16

// BlobCache is an LRU of blob contents bounded by total bytes.
type BlobCache struct {
	mu       sync.Mutex
	cache    *lru.Cache[Hash, []byte]
	budget   int64
	used     int64
	disabled bool
	hits     atomic.Int64
	misses   atomic.Int64
}

// NewBlobCache creates a cache holding at most budget bytes. A non-positive
// budget disables caching.
func NewBlobCache(budget int64) *BlobCache {
	c := &BlobCache{budget: budget, disabled: budget <= 0}
	if c.disabled {
		return c
	}

	cache, err := lru.NewWithEvict[Hash, []byte](maxCachedBlobs, func(_ Hash, data []byte) {
		c.used -= int64(len(data))
	})
	if err != nil {
		c.disabled = true

		return c
	}

	c.cache = cache

	return c
}

// Get returns cached contents.
func (c *BlobCache) Get(h Hash) ([]byte, bool) {
	if c.disabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Get(h)
}

// Add stores contents, evicting least recently used entries over budget.
// Entries larger than the whole budget are not stored.
func (c *BlobCache) Add(h Hash, data []byte) {
	size := int64(len(data))
	if c.disabled || size > c.budget {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache.Contains(h) {
		return
	}

	c.cache.Add(h, data)
	c.used += size

	for c.used > c.budget {
		if _, _, ok := c.cache.RemoveOldest(); !ok {
			break
		}
	}
}

// Used returns the bytes currently held.
func (c *BlobCache) Used() int64 {
	if c.disabled {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.used
}

// Len returns the number of cached blobs.
func (c *BlobCache) Len() int {
	if c.disabled {
		return 0
	}

	return c.cache.Len()
}

// Hits returns how many Load calls were served from the cache.
func (c *BlobCache) Hits() int64 { return c.hits.Load() }

// Misses returns how many Load calls read the repository.
func (c *BlobCache) Misses() int64 { return c.misses.Load() }

// Load returns blob contents through the cache.
func (c *BlobCache) Load(repo *Repository, h Hash) ([]byte, error) {
	if data, ok := c.Get(h); ok {
		c.hits.Add(1)

		return data, nil
	}

	c.misses.Add(1)

	blob, err := repo.LookupBlob(h)
	if err != nil {
		return nil, err
	}
	defer blob.Free()

	data := blob.Contents()
	c.Add(h, data)

	return data, nil
}
