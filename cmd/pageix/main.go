// Command pageix is a small demonstration of the two core structures
// wired together the way a buffer pool manager would use them: a page
// table (internal/hashtable) keyed by page identifier, and an LRU
// replacer (internal/replacer) used to pick eviction victims once the
// pool fills up.
package main

import (
	"fmt"

	"github.com/gopageix/pageix/internal/bufferpool"
)

func main() {
	pool := bufferpool.NewPool(3, bufferpool.DefaultOptions())

	pages := make([]uint64, 0, 4)
	for i := 0; i < 3; i++ {
		p, err := pool.NewPage()
		if err != nil {
			panic(err)
		}
		pages = append(pages, uint64(p.ID))
		if err := pool.UnpinPage(p.ID, false); err != nil {
			panic(err)
		}
	}
	fmt.Println(pool)

	// The pool is full but every page is unpinned, so this allocates by
	// evicting the least-recently-used page (pages[0]).
	victim, err := pool.NewPage()
	if err != nil {
		panic(err)
	}
	fmt.Printf("allocated page %d, evicting oldest unpinned page %d\n", victim.ID, pages[0])
	fmt.Println(pool)
}
