package bufferpool

import "github.com/gopageix/pageix/internal/util"

// Page is the in-memory payload a Pool hands back to a caller. It carries
// no on-disk representation: persistence, serialization, and mmap'd
// storage are a surrounding buffer-pool manager's job, not this package's.
type Page struct {
	ID   util.PageID
	Data [util.PageSize]byte
}

// frame is the page table's value type: a Page plus the bookkeeping a
// pool needs to decide when the page becomes evictable.
type frame struct {
	page     *Page
	pinCount int
	dirty    bool
}
