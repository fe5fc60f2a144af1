// Package vebset implements a set of uint64 values as a fixed-depth trie of
// 256-way bitmap nodes. Children are packed densely and located with a
// popcount over the bitmap, so sparse sets stay small.
package vebset

import (
	"github.com/hideo55/go-popcount"
)

const depth = 8 // one level per byte of a uint64

type Set struct {
	root *node
	size uint64
}

type node struct {
	bitmap   [4]uint64 // 256 bits representing 2**8 entries
	children []*node
}

func New() *Set {
	return &Set{root: &node{}}
}

func (t *Set) Len() uint64 {
	if t == nil {
		return 0
	}
	return t.size
}

// slot splits a byte into a bitmap word offset and a bit index within it.
func slot(b byte) (ofs byte, idx byte) {
	return b >> 6, b & 0x3F
}

// rank returns the position of bit (ofs, idx) among the set bits of n.
func (n *node) rank(ofs, idx byte) int {
	cnt := popcount.Count(n.bitmap[ofs] & ((1 << idx) - 1))
	for j := byte(0); j < ofs; j++ {
		cnt += popcount.Count(n.bitmap[j])
	}
	return int(cnt)
}

func (t *Set) Has(val uint64) bool {
	if t == nil {
		return false
	}
	n := t.root
	for i := 0; i < depth; i++ {
		ofs, idx := slot(byte(val >> (56 - 8*i)))
		if (n.bitmap[ofs]>>idx)&0x01 == 0 {
			return false
		}
		if i == depth-1 {
			break // leaf level has no children
		}
		n = n.children[n.rank(ofs, idx)]
	}
	return true
}

// Add inserts val and reports whether it was absent before.
func (t *Set) Add(val uint64) (added bool) {
	n := t.root
	for i := 0; i < depth; i++ {
		ofs, idx := slot(byte(val >> (56 - 8*i)))
		present := (n.bitmap[ofs]>>idx)&0x01 != 0
		if i == depth-1 {
			if !present {
				n.bitmap[ofs] |= 1 << idx
				t.size++
			}
			return !present
		}
		cnt := n.rank(ofs, idx)
		if !present {
			n.bitmap[ofs] |= 1 << idx
			n.children = append(n.children, nil)
			copy(n.children[cnt+1:], n.children[cnt:])
			n.children[cnt] = &node{}
		}
		n = n.children[cnt]
	}
	return false
}

// Each calls handler for every member in ascending order until it returns
// false. It reports whether all members were visited.
func (t *Set) Each(handler func(uint64) bool) bool {
	if t == nil {
		return true
	}
	return t.root.each(0, 0, handler)
}

func (n *node) each(level int, prefix uint64, h func(uint64) bool) bool {
	child := 0
	for ofs := 0; ofs < 4; ofs++ {
		for bmp := n.bitmap[ofs]; bmp != 0; bmp &= bmp - 1 {
			idx := uint64(popcount.Count((bmp & -bmp) - 1))
			val := prefix<<8 | uint64(ofs)<<6 | idx
			if level == depth-1 {
				if !h(val) {
					return false
				}
				continue
			}
			if !n.children[child].each(level+1, val, h) {
				return false
			}
			child++
		}
	}
	return true
}
