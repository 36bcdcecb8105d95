// Package hashtable implements an in-memory extendible hash table: a
// directory of buckets, sized to the working set, that grows by directory
// doubling and bucket splitting rather than by rehashing the whole table.
//
// It is meant to back a page table for a buffer pool manager (key =
// logical page identifier, value = frame handle) but has no dependency on
// that use case; it is generic over any comparable key and any value.
package hashtable

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
)

// Table is a thread-safe extendible hash table. The zero value is not
// usable; construct one with New.
type Table[K comparable, V any] struct {
	mu          sync.Mutex
	globalDepth uint
	directory   []*bucket[K, V]
	bucketSize  int
	bucketCount int
	pairCount   int
	hash        func(K) uint64
}

// Option configures a Table at construction time.
type Option[K comparable, V any] func(*Table[K, V])

// WithHasher overrides the table's key hasher. The hasher must be
// deterministic and stable across the table's lifetime; its output
// quality otherwise does not affect correctness, only how evenly buckets
// fill.
func WithHasher[K comparable, V any](hash func(K) uint64) Option[K, V] {
	return func(t *Table[K, V]) {
		t.hash = hash
	}
}

// New creates an empty table: global depth 0, one empty bucket at
// directory index 0. bucketSize is the maximum number of entries a
// bucket holds before it is split; it is fixed for the table's lifetime.
// New panics if bucketSize is not positive.
func New[K comparable, V any](bucketSize int, opts ...Option[K, V]) *Table[K, V] {
	if bucketSize <= 0 {
		panic("hashtable: bucketSize must be positive")
	}
	t := &Table[K, V]{
		directory:   []*bucket[K, V]{newBucket[K, V](0, 0)},
		bucketSize:  bucketSize,
		bucketCount: 1,
		hash:        defaultHash[K],
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func defaultHash[K comparable](k K) uint64 {
	return xxhash.Sum64String(fmt.Sprint(k))
}

func (t *Table[K, V]) bucketIndex(hash uint64) uint64 {
	return hash & (uint64(1)<<t.globalDepth - 1)
}

// Find returns the value stored for key, if any. It never mutates the
// table.
func (t *Table[K, V]) Find(key K) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.directory[t.bucketIndex(t.hash(key))]
	v, ok := b.items[key]
	return v, ok
}

// Insert upserts key/value. If key already exists its value is replaced
// and no structural change occurs. Otherwise the pair is added, and if
// the target bucket then exceeds bucketSize and is not already in
// overflow, the bucket is split and the directory updated accordingly.
func (t *Table[K, V]) Insert(key K, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.bucketIndex(t.hash(key))
	b := t.directory[idx]

	if _, exists := b.items[key]; exists {
		b.items[key] = value
		return
	}

	b.items[key] = value
	t.pairCount++

	if len(b.items) > t.bucketSize && !b.overflow {
		t.splitAndRedistribute(b)
	}
}

// splitAndRedistribute splits b by exactly one bit and patches the
// directory to match. A split can be unproductive: every entry in b
// agrees on the new bit, so the sibling comes back empty, in which
// case b is still over capacity and this recurses to split it again at
// the next bit, growing the directory one more level each time. This
// mirrors the bit-at-a-time nature of directory doubling: a single call
// only repoints the directory slots that pointed at b before the split,
// never slots belonging to unrelated buckets.
func (t *Table[K, V]) splitAndRedistribute(b *bucket[K, V]) {
	oldDepth := b.localDepth
	oldID := b.id

	sib := b.split(t.hash)
	if sib == nil {
		// Saturated: b.overflow is now set, directory is untouched.
		return
	}
	t.bucketCount++

	if b.localDepth > t.globalDepth {
		t.growDirectory(b.localDepth)
		t.globalDepth = b.localDepth
	}

	oldMask := uint64(1)<<oldDepth - 1
	newMask := uint64(1)<<b.localDepth - 1
	for i := range t.directory {
		if uint64(i)&oldMask != oldID {
			continue
		}
		if uint64(i)&newMask == b.id {
			t.directory[i] = b
		} else {
			t.directory[i] = sib
		}
	}

	if len(b.items) > t.bucketSize && !b.overflow {
		t.splitAndRedistribute(b)
	}
	if len(sib.items) > t.bucketSize && !sib.overflow {
		t.splitAndRedistribute(sib)
	}
}

// growDirectory doubles the directory (possibly several times at once)
// to length 2^newDepth, replicating every existing bucket pointer across
// its enlarged footprint. Slots belonging to the bucket that just split
// are fixed up by the caller.
func (t *Table[K, V]) growDirectory(newDepth uint) {
	oldLen := len(t.directory)
	newLen := 1 << newDepth
	grown := make([]*bucket[K, V], newLen)
	for i := range grown {
		grown[i] = t.directory[i%oldLen]
	}
	t.directory = grown
}

// Remove deletes key if present and reports whether a pair was removed.
// It never shrinks the directory or merges buckets.
func (t *Table[K, V]) Remove(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.directory[t.bucketIndex(t.hash(key))]
	if _, exists := b.items[key]; !exists {
		return false
	}
	delete(b.items, key)
	t.pairCount--
	return true
}

// GlobalDepth returns the number of low-order hash bits the directory
// currently discriminates on.
func (t *Table[K, V]) GlobalDepth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.globalDepth)
}

// LocalDepth returns the local depth of the bucket at the given
// directory index, or -1 if the index is out of range.
func (t *Table[K, V]) LocalDepth(directoryIndex int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if directoryIndex < 0 || directoryIndex >= len(t.directory) {
		return -1
	}
	return int(t.directory[directoryIndex].localDepth)
}

// NumBuckets returns the number of distinct buckets reachable from the
// directory.
func (t *Table[K, V]) NumBuckets() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bucketCount
}

// Size returns the number of distinct keys currently stored.
func (t *Table[K, V]) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pairCount
}

// String renders a short debug summary; it is not part of the table's
// correctness contract.
func (t *Table[K, V]) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("hashtable{depth=%d, buckets=%s, pairs=%s}",
		t.globalDepth,
		humanize.Comma(int64(t.bucketCount)),
		humanize.Comma(int64(t.pairCount)),
	)
}
