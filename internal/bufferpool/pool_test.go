package bufferpool

import (
	"testing"

	"github.com/gopageix/pageix/internal/util"
	"github.com/stretchr/testify/assert"
)

func TestNewPoolPanicsOnNonPositiveCapacity(t *testing.T) {
	assert.Panics(t, func() { NewPool(0, DefaultOptions()) })
	assert.Panics(t, func() { NewPool(-1, DefaultOptions()) })
}

func TestFetch(t *testing.T) {
	t.Run("returnsCachedPage", func(t *testing.T) {
		pool := NewPool(2, DefaultOptions())

		p0, err := pool.NewPage()
		assert.NoError(t, err)
		assert.Equal(t, util.PageID(0), p0.ID)
		assert.Equal(t, 1, pool.Size())

		fetched, err := pool.FetchPage(p0.ID)
		assert.NoError(t, err)
		assert.Same(t, p0, fetched, "fetch returns the same page instance")
	})

	t.Run("unknownPageErrors", func(t *testing.T) {
		pool := NewPool(2, DefaultOptions())
		_, err := pool.FetchPage(99)
		assert.ErrorIs(t, err, util.ErrPageNotFound)
	})

	t.Run("repins", func(t *testing.T) {
		pool := NewPool(1, DefaultOptions())
		p0, err := pool.NewPage()
		assert.NoError(t, err)

		assert.NoError(t, pool.UnpinPage(p0.ID, false))
		_, err = pool.FetchPage(p0.ID) // re-pins; the replacer's entry for p0 must be erased
		assert.NoError(t, err)

		// Pool is full again with a pinned page; no eviction possible.
		_, err = pool.NewPage()
		assert.ErrorIs(t, err, util.ErrNoFreeFrame)
	})
}

func TestUnpin(t *testing.T) {
	t.Run("makesPageEvictable", func(t *testing.T) {
		pool := NewPool(1, DefaultOptions())

		p0, err := pool.NewPage()
		assert.NoError(t, err)

		// Pool is full and p0 is still pinned: no room for a second page.
		_, err = pool.NewPage()
		assert.ErrorIs(t, err, util.ErrNoFreeFrame)

		assert.NoError(t, pool.UnpinPage(p0.ID, false))

		// Now p0 is evictable; a new page should succeed by evicting it.
		p1, err := pool.NewPage()
		assert.NoError(t, err)
		assert.NotEqual(t, p0.ID, p1.ID)

		_, err = pool.FetchPage(p0.ID)
		assert.ErrorIs(t, err, util.ErrPageNotFound, "evicted page should be gone")
	})

	t.Run("errorsWhenAlreadyUnpinned", func(t *testing.T) {
		pool := NewPool(1, DefaultOptions())
		p0, err := pool.NewPage()
		assert.NoError(t, err)

		assert.NoError(t, pool.UnpinPage(p0.ID, false))
		assert.ErrorIs(t, pool.UnpinPage(p0.ID, false), util.ErrFrameNotPinned)
	})

	t.Run("dirtyTracksFlag", func(t *testing.T) {
		pool := NewPool(1, DefaultOptions())
		p0, err := pool.NewPage()
		assert.NoError(t, err)

		assert.NoError(t, pool.UnpinPage(p0.ID, true))
		f, ok := pool.pageTable.Find(p0.ID)
		assert.True(t, ok)
		assert.True(t, f.dirty)
	})
}

func TestStringDoesNotPanic(t *testing.T) {
	pool := NewPool(1, DefaultOptions())
	assert.NotEmpty(t, pool.String())
}
