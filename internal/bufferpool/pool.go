// Package bufferpool is a thin, non-persistent reference consumer of
// internal/hashtable and internal/replacer: it shows the two collaborator
// contracts a buffer pool manager needs (a page table keyed by page
// identifier, and a replacer used as the victim picker) composed by an
// external caller, the way a real buffer pool manager would. It carries
// no disk I/O; pages live in memory only.
package bufferpool

import (
	"fmt"
	"sync"

	"github.com/gopageix/pageix/internal/hashtable"
	"github.com/gopageix/pageix/internal/replacer"
	"github.com/gopageix/pageix/internal/util"
)

// Options configures a Pool.
type Options struct {
	// BucketSize is the hash table's maximum entries per bucket before a
	// split is attempted.
	BucketSize int
}

// DefaultOptions returns the options a Pool uses when none are supplied.
func DefaultOptions() Options {
	return Options{BucketSize: 4}
}

// Pool composes a page table (hashtable.Table) and a victim picker
// (replacer.LRU) into a fixed-capacity cache of pages. It pins a page on
// NewPage/FetchPage and only makes it evictable once its pin count drops
// to zero.
type Pool struct {
	mu        sync.Mutex
	capacity  int
	pageTable *hashtable.Table[util.PageID, *frame]
	victims   *replacer.LRU[util.PageID]
	nextID    util.PageID
}

// NewPool creates a pool that holds at most capacity pages at once.
// NewPool panics if capacity is not positive.
func NewPool(capacity int, options Options) *Pool {
	if capacity <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	if options.BucketSize <= 0 {
		options = DefaultOptions()
	}
	return &Pool{
		capacity: capacity,
		pageTable: hashtable.New[util.PageID, *frame](
			options.BucketSize,
			hashtable.WithHasher[util.PageID, *frame](func(id util.PageID) uint64 { return uint64(id) }),
		),
		victims: replacer.New[util.PageID](),
	}
}

// NewPage allocates a fresh, pinned page. If the pool is at capacity it
// first asks the replacer for a victim among currently-unpinned pages
// and evicts it from the page table; if none is evictable, NewPage
// fails.
func (p *Pool) NewPage() (*Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pageTable.Size() >= p.capacity {
		if err := p.evictOne(); err != nil {
			return nil, err
		}
	}

	id := p.nextID
	p.nextID++
	pg := &Page{ID: id}
	p.pageTable.Insert(id, &frame{page: pg, pinCount: 1})
	return pg, nil
}

func (p *Pool) evictOne() error {
	victim, ok := p.victims.Victim()
	if !ok {
		return util.ErrNoFreeFrame
	}
	p.pageTable.Remove(victim)
	return nil
}

// FetchPage returns the page for id, pinning it. A page that was
// evictable (unpinned) becomes unevictable again, mirroring the Erase
// half of the replacer collaborator contract.
func (p *Pool) FetchPage(id util.PageID) (*Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.pageTable.Find(id)
	if !ok {
		return nil, util.ErrPageNotFound
	}
	if f.pinCount == 0 {
		p.victims.Erase(id)
	}
	f.pinCount++
	return f.page, nil
}

// UnpinPage decrements id's pin count, optionally marking it dirty. Once
// the pin count reaches zero the page becomes evictable and is handed to
// the replacer.
func (p *Pool) UnpinPage(id util.PageID, dirty bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.pageTable.Find(id)
	if !ok {
		return util.ErrPageNotFound
	}
	if f.pinCount == 0 {
		return util.ErrFrameNotPinned
	}
	if dirty {
		f.dirty = true
	}
	f.pinCount--
	if f.pinCount == 0 {
		p.victims.Insert(id)
	}
	return nil
}

// Size returns the number of pages currently held by the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageTable.Size()
}

// Capacity returns the pool's fixed maximum page count.
func (p *Pool) Capacity() int {
	return p.capacity
}

func (p *Pool) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("bufferpool{size=%d/%d}", p.pageTable.Size(), p.capacity)
}
