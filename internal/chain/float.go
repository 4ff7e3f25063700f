// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package chain

import "fmt"

// FloatChain stores n fuzzy membership degrees as a flat array of 32-bit
// floats. Conjunction is elementwise under a fixed t-norm; sum is a plain
// reduction, recomputed on every conjunction.
type FloatChain struct {
	clause Clause
	role   Role
	tnorm  TNorm
	values []float32
	sum    float64
}

// NewFloatChain builds a leaf Float chain for a single predicate id from a
// fuzzy column. Every value must lie in [0,1].
func NewFloatChain(id int, role Role, tnorm TNorm, values []float64) (*FloatChain, error) {
	c := &FloatChain{
		clause: Clause{id},
		role:   role,
		tnorm:  tnorm,
		values: make([]float32, len(values)),
	}
	for i, v := range values {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("chain: fuzzy value %v at row %d out of range [0,1]", v, i)
		}
		c.values[i] = float32(v)
		c.sum += v
	}
	return c, nil
}

func (c *FloatChain) Clause() Clause { return c.clause }
func (c *FloatChain) Role() Role     { return c.role }
func (c *FloatChain) Sum() float64   { return c.sum }
func (c *FloatChain) Size() int      { return len(c.values) }
func (c *FloatChain) At(i int) float64 {
	return float64(c.values[i])
}

// TNorm reports the t-norm this chain was built with.
func (c *FloatChain) TNorm() TNorm { return c.tnorm }

// conjoin computes the elementwise t-norm of c and other. The scalar tail
// handles any remainder past a SIMD batch; batching itself is left to the
// compiler's auto-vectorizer, matching the teacher's scalar-first style.
func (c *FloatChain) conjoin(other *FloatChain, clause Clause, role Role) *FloatChain {
	n := len(c.values)
	result := &FloatChain{
		clause: clause,
		role:   role,
		tnorm:  c.tnorm,
		values: make([]float32, n),
	}

	const batch = 8
	i := 0
	for ; i+batch <= n; i += batch {
		for j := 0; j < batch; j++ {
			v := float32(Apply(c.tnorm, float64(c.values[i+j]), float64(other.values[i+j])))
			result.values[i+j] = v
			result.sum += float64(v)
		}
	}
	for ; i < n; i++ {
		v := float32(Apply(c.tnorm, float64(c.values[i]), float64(other.values[i])))
		result.values[i] = v
		result.sum += float64(v)
	}

	return result
}

func (c *FloatChain) String() string {
	return fmt.Sprintf("FloatChain{clause=%v role=%s tnorm=%s n=%d sum=%.4f}", c.clause, c.role, c.tnorm, len(c.values), c.sum)
}
