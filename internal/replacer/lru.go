// Package replacer implements an LRU replacer: a thread-safe tracker for
// a dynamic set of evictable values, ordered by recency of insertion.
//
// It is meant to back a buffer pool manager's victim-selection policy
// (insert a frame when it becomes unpinned, erase it when it's pinned
// again, victimize when a frame must be freed) but has no dependency on
// that use case; it is generic over any comparable value.
package replacer

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
)

// node is one entry in the recency list. next is the owning forward
// link (the node reachable from head through next pointers is kept
// alive by that chain); prev is a non-owning back-reference used only
// to splice a node out in O(1) without walking the list.
type node[V comparable] struct {
	value V
	prev  *node[V]
	next  *node[V]
}

// LRU is a thread-safe LRU replacer. The zero value is not usable;
// construct one with New.
type LRU[V comparable] struct {
	mu    sync.Mutex
	head  *node[V] // sentinel; never holds a tracked value
	tail  *node[V] // most-recently-inserted node, or head when empty
	index map[V]*node[V]
}

// New creates an empty replacer.
func New[V comparable]() *LRU[V] {
	l := &LRU[V]{index: make(map[V]*node[V])}
	l.head = &node[V]{}
	l.tail = l.head
	return l
}

// Insert tracks value as evictable, most-recently-used. If value is
// already tracked, this is the "touch" operation: its position moves to
// the most-recently-used end without changing Size.
func (l *LRU[V]) Insert(value V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n, ok := l.index[value]; ok {
		l.moveToTail(n)
		return
	}

	n := &node[V]{value: value, prev: l.tail}
	l.tail.next = n
	l.tail = n
	l.index[value] = n
}

func (l *LRU[V]) moveToTail(n *node[V]) {
	if n == l.tail {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev

	n.prev = l.tail
	n.next = nil
	l.tail.next = n
	l.tail = n
}

// Victim removes and returns the least-recently-inserted tracked value.
// It returns false if the replacer is empty.
func (l *LRU[V]) Victim() (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero V
	if len(l.index) == 0 {
		return zero, false
	}

	n := l.head.next
	l.head.next = n.next
	if l.head.next != nil {
		l.head.next.prev = l.head
	} else {
		l.tail = l.head
	}
	delete(l.index, n.value)
	return n.value, true
}

// Erase removes value if tracked and reports whether a removal occurred.
func (l *LRU[V]) Erase(value V) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.index[value]
	if !ok {
		return false
	}

	if n == l.tail {
		l.tail = n.prev
		l.tail.next = nil
	} else {
		n.prev.next = n.next
		n.next.prev = n.prev
	}
	delete(l.index, value)
	return true
}

// Size returns the number of currently tracked values.
func (l *LRU[V]) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.index)
}

// String renders a short debug summary; it is not part of the
// replacer's correctness contract.
func (l *LRU[V]) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprintf("replacer{tracked=%s}", humanize.Comma(int64(len(l.index))))
}
