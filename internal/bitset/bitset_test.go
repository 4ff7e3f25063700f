// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

//
// Some tests are taken and modified from:
//
//  github.com/bits-and-blooms/bitset
//
// All introduced bugs belong to me!
//
// original license:
// ---------------------------------------------------
// Copyright 2014 Will Fitzgerald. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// ---------------------------------------------------

package bitset

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestNil(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Error("A nil bitset must not panic")
		}
	}()

	b := BitSet(nil)
	b.Set(0)

	b = BitSet(nil)
	_ = b.Clone()

	b = BitSet(nil)
	b.Count()

	b = BitSet(nil)
	b.Test(42)

	b = BitSet(nil)
	c := BitSet(nil)
	b.InPlaceIntersection(c)
}

func TestZeroValue(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Error("A zero value bitset must not panic")
		}
	}()

	b := BitSet{}
	b.Set(0)

	b = BitSet{}
	b.Clone()

	b = BitSet{}
	b.Count()

	b = BitSet{}
	b.Test(42)

	b = BitSet{}
	c := BitSet{}
	b.InPlaceIntersection(c)
}

func TestBitSetUntil(t *testing.T) {
	var b BitSet
	var last uint = 900
	b.Set(last)
	for i := range last {
		if b.Test(i) {
			t.Errorf("Bit %d is set, and it shouldn't be.", i)
		}
	}
}

func TestExpand(t *testing.T) {
	var b BitSet
	for i := range 512 {
		b.Set(uint(i))
	}
	want := 8
	if len(b) != want {
		t.Errorf("Set(511), want len: %d, got: %d", want, len(b))
	}
	if cap(b) != want {
		t.Errorf("Set(511), want cap: %d, got: %d", want, cap(b))
	}
}

func TestClone(t *testing.T) {
	var b BitSet
	c := b.Clone()

	if !slices.Equal(b, c) {
		t.Error("clone of nil BitSet should also be nil")
	}

	// make random numbers
	var rands []uint64
	for range 8 {
		rands = append(rands, rand.Uint64())
	}

	b = rands
	c = b.Clone()

	if !slices.Equal(b, c) {
		t.Error("cloned random BitSet is not equal")
	}
}

func TestTest(t *testing.T) {
	var b BitSet
	b.Set(100)
	if !b.Test(100) {
		t.Errorf("Bit %d is clear, and it shouldn't be.", 100)
	}
}

func TestCount(t *testing.T) {
	var b BitSet
	tot := uint(64*4 + 11) // just an unmagic number
	checkLast := true
	for i := range tot {
		sz := uint(b.Count())
		if sz != i {
			t.Errorf("Count reported as %d, but it should be %d", sz, i)
			checkLast = false
			break
		}
		b.Set(i)
	}
	if checkLast {
		sz := uint(b.Count())
		if sz != tot {
			t.Errorf("After all bits set, size reported as %d, but it should be %d", sz, tot)
		}
	}
}

// test setting every 3rd bit, just in case something odd is happening
func TestCount2(t *testing.T) {
	var b BitSet
	tot := uint(64*4 + 11)
	for i := uint(0); i < tot; i += 3 {
		sz := uint(b.Count())
		if sz != i/3 {
			t.Errorf("Count reported as %d, but it should be %d", sz, i/3)
			break
		}
		b.Set(i)
	}
}

func TestInplaceIntersection(t *testing.T) {
	var a BitSet
	var b BitSet
	for i := uint(1); i < 100; i += 2 {
		a.Set(i)
		b.Set(i - 1)
		b.Set(i)
	}
	for i := uint(100); i < 200; i++ {
		b.Set(i)
	}
	c := a.Clone()
	c.InPlaceIntersection(b)
	d := b.Clone()
	d.InPlaceIntersection(a)
	if c.Count() != 50 {
		t.Errorf("Intersection should have 50 bits set, but had %d", c.Count())
	}
	if d.Count() != 50 {
		t.Errorf("Intersection should have 50 bits set, but had %d", d.Count())
	}
}

func TestPopcntSlice(t *testing.T) {
	s := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	res := uint64(popcntSlice(s))
	const l uint64 = 27
	if res != l {
		t.Errorf("Wrong popcount %d != %d", res, l)
	}
}
