package btree

import (
	"sort"
	"strings"
)

const order = 6 // min: 2
const half = (order + 1) / 2
const double = 2*order + 1

type node[V any] struct {
	count int
	keys  [order]string
	vals  [order]V
	nodes [order]*node[V]
	last  *node[V]
}

func (n *node[V]) node(i int) *node[V] {
	if i == n.count {
		return n.last
	}
	return n.nodes[i]
}

func (n *node[V]) find(key string) (int, bool) {
	return sort.Find(n.count, func(i int) int {
		return strings.Compare(key, n.keys[i])
	})
}

// fill loads a leaf-level copy of items into an empty node.
func (n *node[V]) fill(items []item[V]) {
	for i, item := range items {
		n.keys[i] = item.key
		n.vals[i] = item.val
	}
	n.count = len(items)
}

func (n *node[V]) insert(i int, e *entry[V]) {
	if i != n.count {
		l := i + 1
		copy(n.keys[l:], n.keys[i:n.count])
		copy(n.vals[l:], n.vals[i:n.count])
		copy(n.nodes[l:], n.nodes[i:n.count])
	}
	n.count++
	n.keys[i] = e.key
	n.vals[i] = e.val
	n.nodes[i] = e.node
}

func (n *node[V]) all(yield func(string, V) bool) bool {
	if n.last == nil {
		for i := 0; i < n.count; i++ {
			if !yield(n.keys[i], n.vals[i]) {
				return false
			}
		}
		return true
	}
	for i := 0; i < n.count; i++ {
		if !n.nodes[i].all(yield) {
			return false
		}
		if !yield(n.keys[i], n.vals[i]) {
			return false
		}
	}
	return n.last.all(yield)
}
