package btree

// entry is a key on its way into the tree. After a split it carries the
// separator key and the new left sibling up to the parent.
type entry[V any] struct {
	key     string
	val     V
	node    *node[V]
	updated bool
}

// set descends from n and inserts e, splitting full nodes on the way back up.
// It returns false when the split reached n and e must go into n's parent.
func (e *entry[V]) set(n *node[V]) bool {
	var path []cursor[V]
	var index int
	var found bool
	for {
		index, found = n.find(e.key)
		if found {
			n.vals[index] = e.val
			e.updated = true
			return true
		}
		next := n.node(index)
		if next == nil {
			break
		}
		path = append(path, cursor[V]{n, index})
		n = next
	}
	if e.insert(index, n) {
		return true
	}
	for i := len(path) - 1; i >= 0; i-- {
		if e.insert(path[i].index, path[i].node) {
			return true
		}
	}
	return false
}

func (e *entry[V]) insert(i int, n *node[V]) bool {
	if n.count < order {
		n.insert(i, e)
		return true
	}
	e.split(i, n)
	return false
}

// split inserts e into the full node n. The lower half moves to a new node
// carried by e, the median becomes e, and n keeps the upper half.
func (e *entry[V]) split(i int, n *node[V]) {
	const total = order + 1
	var keys [total]string
	var vals [total]V
	var nodes [total]*node[V]

	copy(keys[:i], n.keys[:i])
	copy(vals[:i], n.vals[:i])
	copy(nodes[:i], n.nodes[:i])
	keys[i], vals[i], nodes[i] = e.key, e.val, e.node
	copy(keys[i+1:], n.keys[i:])
	copy(vals[i+1:], n.vals[i:])
	copy(nodes[i+1:], n.nodes[i:])

	left := new(node[V])
	copy(left.keys[:], keys[:half])
	copy(left.vals[:], vals[:half])
	copy(left.nodes[:], nodes[:half])
	left.count = half
	left.last = nodes[half]

	e.key, e.val, e.node = keys[half], vals[half], left

	const r = half + 1
	var zero V
	copy(n.keys[:], keys[r:])
	copy(n.vals[:], vals[r:])
	copy(n.nodes[:], nodes[r:])
	for j := order - half; j < order; j++ {
		n.keys[j], n.vals[j], n.nodes[j] = "", zero, nil
	}
	n.count = order - half
}
