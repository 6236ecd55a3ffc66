package btree

// Iter creates an iterator that follows the tree as it changes (it is not a
// snapshot). When the tree is modified the iterator re-seeks its current key
// on the next call, so it continues from the same place in key order.
// Call SeekFirst, SeekLast, or Seek to position it before use.
func (tree *BTree[V]) Iter() *Iter[V] {
	return &Iter[V]{
		root:    tree,
		version: tree.version,
		index:   len(tree.items),
	}
}

// Iter is an iterator over a BTree.
type Iter[V any] struct {
	root    *BTree[V]
	path    []cursor[V]
	key     string
	version uint64
	index   int
}

type cursor[V any] struct {
	node  *node[V]
	index int
}

// Clone creates an independent copy of the iterator at its current position.
func (it *Iter[V]) Clone() *Iter[V] {
	clone := *it
	clone.path = append([]cursor[V](nil), it.path...)
	return &clone
}

// stale re-seeks the current key after the tree changed.
// It reports whether the iterator is still positioned.
func (it *Iter[V]) stale() (valid, changed bool) {
	if it.version == it.root.version {
		return false, false
	}
	if len(it.root.items) == 0 {
		it.clear()
		return false, true
	}
	return it.seek(it.key), true
}

func (it *Iter[V]) clear() {
	it.version = it.root.version
	it.path = it.path[:0]
	it.index = len(it.root.items)
	it.key = ""
}

// Valid returns true if positioned at a key.
func (it *Iter[V]) Valid() bool {
	if valid, changed := it.stale(); changed {
		return valid
	}
	if len(it.path) == 0 {
		return it.index < len(it.root.items)
	}
	return true
}

// Key returns the current key, or "" if invalid.
func (it *Iter[V]) Key() string {
	return it.key
}

// Val returns the current value, or the zero value if invalid.
func (it *Iter[V]) Val() (val V) {
	if valid, changed := it.stale(); changed && !valid {
		return
	}
	if len(it.path) == 0 {
		if it.index >= len(it.root.items) {
			return
		}
		return it.root.items[it.index].val
	}
	c := it.path[len(it.path)-1]
	return c.node.vals[c.index]
}

// Next advances to the next key. Returns false if no more items.
func (it *Iter[V]) Next() bool {
	if valid, changed := it.stale(); changed && !valid {
		return false
	}

	if len(it.path) == 0 {
		if it.index >= len(it.root.items) {
			return false
		}
		it.index++
		if child := it.root.node(it.index); child != nil {
			return it.descendFirst(child)
		}
		return it.atRoot()
	}

	c := &it.path[len(it.path)-1]
	c.index++
	if child := c.node.node(c.index); child != nil {
		return it.descendFirst(child)
	}
	for l := len(it.path) - 1; l >= 0; l-- {
		c = &it.path[l]
		if c.index < c.node.count {
			it.path = it.path[:l+1]
			it.key = c.node.keys[c.index]
			return true
		}
	}
	it.path = it.path[:0]
	return it.atRoot()
}

// Prev moves to the previous key. Returns false if no more items.
func (it *Iter[V]) Prev() bool {
	if valid, changed := it.stale(); changed && !valid {
		return false
	}

	if len(it.path) == 0 {
		if it.index >= len(it.root.items) {
			return false
		}
		if child := it.root.node(it.index); child != nil {
			return it.descendLast(child)
		}
		return it.stepBackAtRoot()
	}

	c := &it.path[len(it.path)-1]
	if child := c.node.node(c.index); child != nil {
		return it.descendLast(child)
	}
	for l := len(it.path) - 1; l >= 0; l-- {
		c = &it.path[l]
		if c.index > 0 {
			c.index--
			it.path = it.path[:l+1]
			it.key = c.node.keys[c.index]
			return true
		}
	}
	it.path = it.path[:0]
	return it.stepBackAtRoot()
}

// SeekFirst positions the iterator at the first key. Returns false if the tree is empty.
func (it *Iter[V]) SeekFirst() bool {
	it.clear()
	if len(it.root.items) == 0 {
		return false
	}
	it.index = 0
	if child := it.root.node(0); child != nil {
		return it.descendFirst(child)
	}
	return it.atRoot()
}

// SeekLast positions the iterator at the last key. Returns false if the tree is empty.
func (it *Iter[V]) SeekLast() bool {
	it.clear()
	if len(it.root.items) == 0 {
		return false
	}
	if it.root.last == nil {
		it.index = len(it.root.items) - 1
		return it.atRoot()
	}
	return it.descendLast(it.root.last)
}

// Seek positions the iterator at the first key >= key.
// Returns false if no such key exists.
func (it *Iter[V]) Seek(key string) bool {
	if len(it.root.items) == 0 {
		it.clear()
		return false
	}
	return it.seek(key)
}

func (it *Iter[V]) seek(key string) bool {
	it.version = it.root.version
	it.path = it.path[:0]

	index, found := it.root.find(key)
	it.index = index
	if found {
		return it.atRoot()
	}
	n := it.root.node(index)
	for n != nil {
		index, found = n.find(key)
		it.path = append(it.path, cursor[V]{n, index})
		if found {
			it.key = n.keys[index]
			return true
		}
		n = n.node(index)
	}
	for l := len(it.path) - 1; l >= 0; l-- {
		c := &it.path[l]
		if c.index < c.node.count {
			it.path = it.path[:l+1]
			it.key = c.node.keys[c.index]
			return true
		}
	}
	it.path = it.path[:0]
	return it.atRoot()
}

// descendFirst walks to the leftmost key under n.
func (it *Iter[V]) descendFirst(n *node[V]) bool {
	for {
		it.path = append(it.path, cursor[V]{n, 0})
		child := n.node(0)
		if child == nil {
			it.key = n.keys[0]
			return true
		}
		n = child
	}
}

// descendLast walks to the rightmost key under n.
func (it *Iter[V]) descendLast(n *node[V]) bool {
	for n.last != nil {
		it.path = append(it.path, cursor[V]{n, n.count})
		n = n.last
	}
	it.path = append(it.path, cursor[V]{n, n.count - 1})
	it.key = n.keys[n.count-1]
	return true
}

// atRoot lands on the root item at it.index, or past the end.
func (it *Iter[V]) atRoot() bool {
	if it.index < len(it.root.items) {
		it.key = it.root.items[it.index].key
		return true
	}
	it.key = ""
	return false
}

func (it *Iter[V]) stepBackAtRoot() bool {
	if it.index > 0 {
		it.index--
		return it.atRoot()
	}
	it.index = len(it.root.items)
	it.key = ""
	return false
}
