// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package chain

import (
	"fmt"

	"github.com/nuggets/dig/internal/bitset"
)

// BitChain packs n boolean values into ⌈n/64⌉ 64-bit words. Sum is the
// popcount, cached and updated on every conjunction.
type BitChain struct {
	clause Clause
	role   Role
	n      int
	bits   bitset.BitSet
	sum    int
}

// NewBitChain builds a leaf Bit chain for a single predicate id from a
// boolean column.
func NewBitChain(id int, role Role, values []bool) *BitChain {
	c := &BitChain{
		clause: Clause{id},
		role:   role,
		n:      len(values),
	}
	for i, v := range values {
		if v {
			c.bits.Set(uint(i))
		}
	}
	c.sum = c.bits.Count()
	return c
}

func (c *BitChain) Clause() Clause { return c.clause }
func (c *BitChain) Role() Role     { return c.role }
func (c *BitChain) Sum() float64   { return float64(c.sum) }
func (c *BitChain) Size() int      { return c.n }

func (c *BitChain) At(i int) float64 {
	if c.bits.Test(uint(i)) {
		return 1
	}
	return 0
}

// Get reports the boolean value of row i.
func (c *BitChain) Get(i int) bool { return c.bits.Test(uint(i)) }

// conjoin computes the word-parallel AND of c and other, producing a chain
// with the given clause and role. Both operands must share n; this is
// enforced by Conjoin before conjoin is called.
func (c *BitChain) conjoin(other *BitChain, clause Clause, role Role) *BitChain {
	bits := c.bits.Clone()
	bits.InPlaceIntersection(other.bits)

	return &BitChain{
		clause: clause,
		role:   role,
		n:      c.n,
		bits:   bits,
		sum:    bits.Count(),
	}
}

// Equal reports whether c and o have the same size, bits, and cached sum.
func (c *BitChain) Equal(o *BitChain) bool {
	if c.n != o.n || c.sum != o.sum {
		return false
	}
	for i := 0; i < c.n; i++ {
		if c.Get(i) != o.Get(i) {
			return false
		}
	}
	return true
}

func (c *BitChain) String() string {
	return fmt.Sprintf("BitChain{clause=%v role=%s n=%d sum=%d}", c.clause, c.role, c.n, c.sum)
}
