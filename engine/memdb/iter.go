package memdb

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// treeIter walks the tree, skipping keys that have no live version at seq.
// Tree nodes are never removed, so a node pointer stays a valid position
// across commits.
type treeIter struct {
	db   *DB
	seq  uint64
	node *redblacktree.Node
	key  []byte
	val  []byte
}

func (it *treeIter) Valid() bool {
	return it.node != nil
}

func (it *treeIter) Error() error {
	return nil
}

func (it *treeIter) Key() []byte {
	return it.key
}

func (it *treeIter) Val() []byte {
	return it.val
}

func (it *treeIter) Close() {
	it.node = nil
}

func (it *treeIter) Next() bool {
	if it.node == nil {
		return false
	}
	it.db.mu.RLock()
	defer it.db.mu.RUnlock()
	return it.forward(it.step(it.node, true))
}

func (it *treeIter) Prev() bool {
	if it.node == nil {
		return false
	}
	it.db.mu.RLock()
	defer it.db.mu.RUnlock()
	return it.backward(it.step(it.node, false))
}

func (it *treeIter) SeekFirst() bool {
	it.db.mu.RLock()
	defer it.db.mu.RUnlock()
	return it.forward(it.db.tree.Left())
}

func (it *treeIter) SeekLast() bool {
	it.db.mu.RLock()
	defer it.db.mu.RUnlock()
	return it.backward(it.db.tree.Right())
}

func (it *treeIter) Seek(key []byte) bool {
	it.db.mu.RLock()
	defer it.db.mu.RUnlock()
	node, _ := it.db.tree.Ceiling(string(key))
	return it.forward(node)
}

func (it *treeIter) step(node *redblacktree.Node, next bool) *redblacktree.Node {
	iter := it.db.tree.IteratorAt(node)
	var ok bool
	if next {
		ok = iter.Next()
	} else {
		ok = iter.Prev()
	}
	if !ok {
		return nil
	}
	return iter.Node()
}

func (it *treeIter) forward(node *redblacktree.Node) bool {
	for ; node != nil; node = it.step(node, true) {
		if it.land(node) {
			return true
		}
	}
	return it.land(nil)
}

func (it *treeIter) backward(node *redblacktree.Node) bool {
	for ; node != nil; node = it.step(node, false) {
		if it.land(node) {
			return true
		}
	}
	return it.land(nil)
}

// land positions on node if it has a live version at seq.
func (it *treeIter) land(node *redblacktree.Node) bool {
	if node == nil {
		it.node, it.key, it.val = nil, nil, nil
		return false
	}
	val, ok := node.Value.(*history).at(it.seq)
	if !ok {
		return false
	}
	it.node = node
	it.key = append(it.key[:0], node.Key.(string)...)
	it.val = val
	return true
}
