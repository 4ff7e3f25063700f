// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package chain

import (
	"fmt"
	"math"
)

// FubitChain packs n fuzzy values into ⌈n·k/64⌉ 64-bit words, k bits per
// value (k ∈ {4, 8, 16}). The high bit of each k-bit block is an overflow
// sentinel used only during conjunction; the remaining k-1 bits hold a
// t-norm-specific quantised code.
type FubitChain struct {
	clause Clause
	role   Role
	tnorm  TNorm
	k      uint
	n      int
	data   []uint64
	sum    float64
}

// fubitParams holds the constants derived from a block size k, computed
// once per chain rather than recomputed on every access.
type fubitParams struct {
	k             uint
	maxValue      uint64
	blockMask     uint64
	dblBlockMask  uint64
	oddBlockMask  uint64
	overflowMask  uint64
	negOverflow   uint64
	step          int
	logBase       float64
	logLogBase    float64
	reciprocalMax float64
}

func paramsFor(k uint) (fubitParams, error) {
	if k != 4 && k != 8 && k != 16 {
		return fubitParams{}, fmt.Errorf("chain: unsupported fubit block size %d", k)
	}

	maxValue := uint64(1)<<(k-1) - 1
	blockMask := uint64(1)<<k - 1

	overflow := uint64(1) << (k - 1)
	for pos := uint(1); pos*k < 64; pos++ {
		overflow |= uint64(1) << (pos*k + k - 1)
	}

	odd := blockMask
	for pos := uint(2); pos*k < 64; pos += 2 {
		odd |= blockMask << (pos * k)
	}

	dbl := (blockMask << k) | blockMask

	step := int(dbl / maxValue / 2)
	if step <= 0 {
		step = 1
	}

	logBase := math.Pow(float64(maxValue), -1.0/float64(maxValue-1))

	return fubitParams{
		k:             k,
		maxValue:      maxValue,
		blockMask:     blockMask,
		dblBlockMask:  dbl,
		oddBlockMask:  odd,
		overflowMask:  overflow,
		negOverflow:   ^overflow,
		step:          step,
		logBase:       logBase,
		logLogBase:    math.Log(logBase),
		reciprocalMax: 1.0 / float64(maxValue),
	}, nil
}

// NewFubitChain builds a leaf Fubit chain for a single predicate id from a
// fuzzy column, quantised with block size k under t-norm tnorm.
func NewFubitChain(id int, role Role, tnorm TNorm, k uint, values []float64) (*FubitChain, error) {
	p, err := paramsFor(k)
	if err != nil {
		return nil, err
	}

	n := len(values)
	words := (n*int(k) + 63) / 64

	c := &FubitChain{
		clause: Clause{id},
		role:   role,
		tnorm:  tnorm,
		k:      k,
		n:      n,
		data:   make([]uint64, words),
	}

	for i, v := range values {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("chain: fuzzy value %v at row %d out of range [0,1]", v, i)
		}
		c.setBlock(i, encode(tnorm, p, v))
	}
	c.sum = c.computeSum(p)

	return c, nil
}

func encode(t TNorm, p fubitParams, v float64) uint64 {
	switch t {
	case Goedel:
		return uint64(math.Round(v * float64(p.maxValue)))
	case Lukasiewicz:
		return uint64(math.Round((1 - v) * float64(p.maxValue)))
	case Goguen:
		if v <= p.reciprocalMax {
			return p.maxValue
		}
		return uint64(math.Round(math.Log(v) / p.logLogBase))
	default:
		return 0
	}
}

func decode(t TNorm, p fubitParams, code uint64) float64 {
	switch t {
	case Goedel:
		return float64(code) / float64(p.maxValue)
	case Lukasiewicz:
		return 1 - float64(code)/float64(p.maxValue)
	case Goguen:
		if code >= p.maxValue {
			return 0
		}
		return math.Pow(p.logBase, float64(code))
	default:
		return 0
	}
}

func (c *FubitChain) setBlock(i int, value uint64) {
	wordIdx := i * int(c.k) / 64
	shift := uint(i*int(c.k)) % 64
	c.data[wordIdx] |= value << shift
}

func (c *FubitChain) blockAt(i int) uint64 {
	wordIdx := i * int(c.k) / 64
	shift := uint(i*int(c.k)) % 64
	mask := uint64(1)<<c.k - 1
	return (c.data[wordIdx] >> shift) & mask
}

func (c *FubitChain) Clause() Clause    { return c.clause }
func (c *FubitChain) Role() Role        { return c.role }
func (c *FubitChain) Sum() float64      { return c.sum }
func (c *FubitChain) Size() int         { return c.n }
func (c *FubitChain) TNorm() TNorm      { return c.tnorm }
func (c *FubitChain) BlockSize() uint   { return c.k }

func (c *FubitChain) At(i int) float64 {
	p, _ := paramsFor(c.k)
	return decode(c.tnorm, p, c.blockAt(i))
}

// cloneHighBits replicates each block's overflow bit across the whole
// block via right-shifts 1/2/4/(8), depending on k.
func cloneHighBits(x uint64, k uint, overflowMask uint64) uint64 {
	res := x & overflowMask
	for s := uint(1); s < k; s <<= 1 {
		res |= res >> s
	}
	return res
}

// conjoin computes the packed conjunction of c and other under their
// shared t-norm and block size.
func (c *FubitChain) conjoin(other *FubitChain, clause Clause, role Role) *FubitChain {
	p, _ := paramsFor(c.k)

	result := &FubitChain{
		clause: clause,
		role:   role,
		tnorm:  c.tnorm,
		k:      c.k,
		n:      c.n,
		data:   make([]uint64, len(c.data)),
	}

	for i := range c.data {
		a, b := c.data[i], other.data[i]

		switch c.tnorm {
		case Goedel:
			s := cloneHighBits(a-b, c.k, p.overflowMask)
			result.data[i] = (a & s) | (b &^ s)
		case Lukasiewicz, Goguen:
			sum := a + b
			s := cloneHighBits(sum, c.k, p.overflowMask)
			result.data[i] = (sum | s) & p.negOverflow
		}
	}

	result.sum = result.computeSum(p)
	return result
}

// computeSum decodes the chain's cached total. Gödel and Łukasiewicz sum
// the packed codes with a two-chunk accumulator refreshed every
// ⌊DBL/MAX⌋ blocks to avoid intra-word carry between adjacent blocks, then
// decode once; Goguen's log-domain codes do not sum meaningfully, so they
// are decoded elementwise and accumulated in floating point, exactly as
// the reference codec does.
func (c *FubitChain) computeSum(p fubitParams) float64 {
	switch c.tnorm {
	case Goedel:
		return float64(c.rawSum(p)) / float64(p.maxValue)
	case Lukasiewicz:
		return float64(c.n) - float64(c.rawSum(p))/float64(p.maxValue)
	case Goguen:
		var sum float64
		for i := 0; i < c.n; i++ {
			sum += decode(Goguen, p, c.blockAt(i))
		}
		return sum
	default:
		return 0
	}
}

func (c *FubitChain) rawSum(p fubitParams) uint64 {
	var result uint64
	index := 0
	for index < len(c.data) {
		var tempsum uint64
		border := index + p.step
		if border > len(c.data) {
			border = len(c.data)
		}
		for ; index < border; index++ {
			val := c.data[index]
			tempsum += (val & p.oddBlockMask) + ((val >> c.k) & p.oddBlockMask)
		}
		for shift := uint(0); shift < 64; shift += 2 * c.k {
			result += (tempsum >> shift) & p.dblBlockMask
		}
	}
	return result
}

func (c *FubitChain) String() string {
	return fmt.Sprintf("FubitChain{clause=%v role=%s tnorm=%s k=%d n=%d sum=%.4f}", c.clause, c.role, c.tnorm, c.k, c.n, c.sum)
}
