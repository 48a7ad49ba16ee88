package cache

// ageNode links one key into the recency ring.
type ageNode[K comparable] struct {
	key        K
	prev, next *ageNode[K]
}

// ageRing orders keys from most recently touched (after the sentinel) to
// least recently touched (before it). It is not safe for concurrent use.
type ageRing[K comparable] struct {
	root ageNode[K]
	n    int
}

func newAgeRing[K comparable]() *ageRing[K] {
	r := &ageRing[K]{}
	r.root.prev = &r.root
	r.root.next = &r.root
	return r
}

// Push links key as the most recently touched and returns its node.
func (r *ageRing[K]) Push(key K) *ageNode[K] {
	node := &ageNode[K]{key: key}
	r.insertFront(node)
	r.n++
	return node
}

// Touch moves node to the front.
func (r *ageRing[K]) Touch(node *ageNode[K]) {
	if node == nil || r.root.next == node {
		return
	}
	r.detach(node)
	r.insertFront(node)
}

// Remove unlinks node.
func (r *ageRing[K]) Remove(node *ageNode[K]) {
	if node == nil || node.next == nil {
		return
	}
	r.detach(node)
	r.n--
}

// Back returns the least recently touched node, or nil.
func (r *ageRing[K]) Back() *ageNode[K] {
	if r.n == 0 {
		return nil
	}
	return r.root.prev
}

// Newer returns the node touched just after node, or nil at the front.
func (r *ageRing[K]) Newer(node *ageNode[K]) *ageNode[K] {
	if node.prev == &r.root {
		return nil
	}
	return node.prev
}

func (r *ageRing[K]) insertFront(node *ageNode[K]) {
	node.prev = &r.root
	node.next = r.root.next
	r.root.next.prev = node
	r.root.next = node
}

func (r *ageRing[K]) detach(node *ageNode[K]) {
	node.prev.next = node.next
	node.next.prev = node.prev
	node.prev = nil
	node.next = nil
}
