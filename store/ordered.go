package store

import "strings"

// Ordered is a Store over string keys kept in a crit-bit tree, so entries can
// be traversed in ascending byte order.
//
// Keys are compared as sequences of 9-bit symbols: every present byte carries
// a presence bit and positions past the end of a key read as zero. That way a
// key always differs from its own extensions ("a" vs "a\x00").
type Ordered[V any] struct {
	size uint64
	root ref[V]
}

var _ Store[string, int] = (*Ordered[int])(nil)

type leaf[V any] struct {
	key string
	val V
}

// ref holds either a leaf or a node pointer
type ref[V any] struct {
	leaf *leaf[V]
	node *node[V]
}

type node[V any] struct {
	child [2]ref[V]
	// off is the offset of the differing symbol
	off int
	// bit contains the single crit bit in the differing symbol
	bit uint16
}

// NewOrdered returns an empty Ordered store.
func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{}
}

func symbol(key string, off int) uint16 {
	if off < len(key) {
		return 0x100 | uint16(key[off])
	}
	return 0
}

// dir calculates the direction for the given key
func (n *node[V]) dir(key string) int {
	if symbol(key, n.off)&n.bit != 0 {
		return 1
	}
	return 0
}

// critBit finds the first differing symbol of two keys and its highest
// differing bit. ok is false for equal keys.
func critBit(a, b string) (off int, bit uint16, ok bool) {
	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	for off = 0; off < size; off++ {
		if x := symbol(a, off) ^ symbol(b, off); x != 0 {
			bit = x
			break
		}
	}
	if bit == 0 {
		return 0, 0, false
	}
	bit |= bit >> 1
	bit |= bit >> 2
	bit |= bit >> 4
	bit |= bit >> 8
	bit &^= bit >> 1
	return off, bit, true
}

// closest walks down to the leaf that shares the most crit bits with key.
func (t *Ordered[V]) closest(key string) *leaf[V] {
	p := t.root
	for p.node != nil {
		p = p.node.child[p.node.dir(key)]
	}
	return p.leaf
}

func (t *Ordered[V]) lookup(key string) *leaf[V] {
	if t.size == 0 {
		return nil
	}
	if l := t.closest(key); l.key == key {
		return l
	}
	return nil
}

func (t *Ordered[V]) Add(key string, val V) error {
	if t.size == 0 {
		t.root = ref[V]{leaf: &leaf[V]{key, val}}
		t.size++
		return nil
	}
	best := t.closest(key)
	off, bit, ok := critBit(best.key, key)
	if !ok {
		return duplicateKey(key)
	}
	ndir := 0
	if symbol(best.key, off)&bit != 0 {
		ndir = 1
	}
	nn := &node[V]{off: off, bit: bit}
	nn.child[1-ndir].leaf = &leaf[V]{key, val}

	// walk for best insertion node
	wp := &t.root
	for wp.node != nil {
		n := wp.node
		if n.off > off || n.off == off && n.bit < bit {
			break
		}
		wp = &n.child[n.dir(key)]
	}
	nn.child[ndir] = *wp
	*wp = ref[V]{node: nn}
	t.size++
	return nil
}

func (t *Ordered[V]) Remove(key string) (val V, err error) {
	if t.size == 0 {
		return val, keyNotFound(key)
	}
	var (
		dir int
		wp  *ref[V]
		p   = &t.root
	)
	for p.node != nil {
		wp = p
		dir = p.node.dir(key)
		p = &p.node.child[dir]
	}
	if p.leaf.key != key {
		return val, keyNotFound(key)
	}
	val = p.leaf.val
	t.size--
	if wp == nil {
		t.root = ref[V]{}
		return val, nil
	}
	*wp = wp.node.child[1-dir]
	return val, nil
}

func (t *Ordered[V]) Borrow(key string) (val V, err error) {
	l := t.lookup(key)
	if l == nil {
		return val, keyNotFound(key)
	}
	return l.val, nil
}

func (t *Ordered[V]) BorrowMut(key string) (*V, error) {
	l := t.lookup(key)
	if l == nil {
		return nil, keyNotFound(key)
	}
	return &l.val, nil
}

func (t *Ordered[V]) Contains(key string) bool {
	return t.lookup(key) != nil
}

// Len returns the number of keys in the tree.
func (t *Ordered[V]) Len() uint64 {
	return t.size
}

func (t *Ordered[V]) DestroyEmpty() error {
	if t.size != 0 {
		return notEmpty(t.size)
	}
	t.root = ref[V]{}
	return nil
}

// Iter calls a handler for all keys with a given prefix, in ascending order.
// It returns whether all prefixed keys were iterated.
// The handler can continue the process by returning true or abort with false.
func (t *Ordered[V]) Iter(prefix string, handler func(string, V) bool) bool {
	if t.size == 0 {
		return true
	}
	if prefix == "" {
		return t.iterate(t.root, handler)
	}
	// walk for best member
	p, top := t.root, t.root
	for p.node != nil {
		newtop := p.node.off < len(prefix)
		p = p.node.child[p.node.dir(prefix)]
		if newtop {
			top = p
		}
	}
	if !strings.HasPrefix(p.leaf.key, prefix) {
		return true
	}
	return t.iterate(top, handler)
}

// iterate calls the handler or traverses both node children unless aborted.
func (t *Ordered[V]) iterate(p ref[V], h func(string, V) bool) bool {
	if p.node != nil {
		return t.iterate(p.node.child[0], h) && t.iterate(p.node.child[1], h)
	}
	return h(p.leaf.key, p.leaf.val)
}

// Keys returns all keys in ascending order.
func (t *Ordered[V]) Keys() []string {
	keys := make([]string, 0, t.size)
	t.Iter("", func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
