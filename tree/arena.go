package tree

// Arena is a slab-backed allocator for Node structs. Unlike
// gotreesitter's nodeArena, which ref-counts slabs so trees that
// reuse subtrees from older trees can keep arena memory alive
// concurrently, a single eco session owns exactly one token tree at a
// time, so a slab is simply released and recreated on a full reparse
// rather than reference counted.
type Arena struct {
	slab []Node
	used int
}

const defaultSlabNodes = 4096

// NewArena creates an arena sized for roughly defaultSlabNodes nodes
// before it falls back to individual allocation.
func NewArena() *Arena {
	return &Arena{slab: make([]Node, defaultSlabNodes)}
}

// Alloc returns a zeroed *Node, preferring slab storage and falling
// back to a plain allocation once the slab is exhausted.
func (a *Arena) Alloc() *Node {
	if a == nil {
		return &Node{}
	}
	if a.used < len(a.slab) {
		n := &a.slab[a.used]
		a.used++
		return n
	}
	return &Node{}
}

// Reset releases the arena's slab for reuse, zeroing all nodes handed
// out so far. Callers must not retain pointers obtained before Reset.
func (a *Arena) Reset() {
	if a == nil {
		return
	}
	for i := 0; i < a.used; i++ {
		a.slab[i] = Node{}
	}
	a.used = 0
}
