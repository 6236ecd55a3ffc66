// Package btree provides an append-only, in-memory B-tree keyed by strings.
package btree

import (
	"iter"
	"sort"
	"strings"
)

// BTree is an append-only, in-memory B-tree mapping string keys to values of
// type V in lexicographic key order. Not thread-safe.
//
// Append-only means keys are never removed; a key's value can only be
// replaced. Callers that need deletes store a tombstone value.
//
// Example usage:
//
//	var tree BTree[int]
//	tree.Put("apple", 1)
//	val, found := tree.Get("apple") // val == 1, found == true
//
//	for key, val := range tree.All() {
//		fmt.Println(key, val)
//	}
//
//	tree.Reset()
type BTree[V any] struct {
	items   []item[V]
	nodes   []*node[V]
	last    *node[V]
	count   int
	version uint64
}

type item[V any] struct {
	key string
	val V
}

// Reset clears all data. Live iterators resynchronize on their next call.
func (tree *BTree[V]) Reset() {
	tree.items = nil
	tree.nodes = nil
	tree.last = nil
	tree.count = 0
	tree.version++
}

// Put sets the value for key, inserting the key if it is new.
func (tree *BTree[V]) Put(key string, val V) {
	tree.version++
	tree.put(key, val)
}

// Get returns the value for key.
func (tree *BTree[V]) Get(key string) (val V, found bool) {
	index, found := tree.find(key)
	if found {
		return tree.items[index].val, true
	}

	node := tree.node(index)
	for node != nil {
		index, found = node.find(key)
		if found {
			return node.vals[index], true
		}
		node = node.node(index)
	}
	return
}

// Len returns the number of keys.
func (tree *BTree[V]) Len() int {
	return tree.count
}

// Empty returns true if the tree has no keys.
func (tree *BTree[V]) Empty() bool {
	return tree.count == 0
}

// All iterates every key and value in ascending key order.
func (tree *BTree[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if tree.last == nil {
			for _, item := range tree.items {
				if !yield(item.key, item.val) {
					return
				}
			}
			return
		}
		for i, item := range tree.items {
			if !tree.nodes[i].all(yield) {
				return
			}
			if !yield(item.key, item.val) {
				return
			}
		}
		tree.last.all(yield)
	}
}

func (tree *BTree[V]) put(key string, val V) {
	e := entry[V]{key: key, val: val}
	index, found := tree.find(key)
	if found {
		tree.items[index].val = val
		return
	}
	next := tree.node(index)
	if next == nil {
		tree.count++
		tree.insertItem(index, &e)
		return
	}
	if !e.set(next) {
		tree.insertEntry(index, &e)
	}
	if !e.updated {
		tree.count++
	}
}

func (tree *BTree[V]) node(i int) *node[V] {
	if i >= len(tree.nodes) {
		return tree.last
	}
	return tree.nodes[i]
}

func (tree *BTree[V]) find(key string) (int, bool) {
	return sort.Find(len(tree.items), func(i int) int {
		return strings.Compare(key, tree.items[i].key)
	})
}

// insertItem inserts into the root while the root has no children.
func (tree *BTree[V]) insertItem(i int, e *entry[V]) {
	tree.items = insertAt(tree.items, i, item[V]{e.key, e.val})
	if len(tree.items) < double {
		return
	}

	lnode, rnode := new(node[V]), new(node[V])
	lnode.fill(tree.items[:order])
	rnode.fill(tree.items[order+1:])

	tree.items[0] = tree.items[order]
	tree.items = tree.items[:1]
	tree.nodes = []*node[V]{lnode}
	tree.last = rnode
}

// insertEntry inserts a separator promoted from a split child.
func (tree *BTree[V]) insertEntry(i int, e *entry[V]) {
	tree.items = insertAt(tree.items, i, item[V]{e.key, e.val})
	tree.nodes = insertAt(tree.nodes, i, e.node)
	if len(tree.items) < double {
		return
	}

	lnode, rnode := new(node[V]), new(node[V])
	lnode.fill(tree.items[:order])
	copy(lnode.nodes[:], tree.nodes[:order])
	lnode.last = tree.nodes[order]

	rnode.fill(tree.items[order+1:])
	copy(rnode.nodes[:], tree.nodes[order+1:])
	rnode.last = tree.last

	tree.items[0] = tree.items[order]
	tree.items = tree.items[:1]
	tree.nodes[0] = lnode
	tree.nodes = tree.nodes[:1]
	tree.last = rnode
}

func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:len(s)-1])
	s[i] = v
	return s
}
