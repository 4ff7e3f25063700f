// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig

import (
	"testing"

	"github.com/nuggets/dig/internal/chain"
)

func leafBit(id int, role Role, vals ...int) Chain {
	bits := make([]bool, len(vals))
	for i, v := range vals {
		bits[i] = v != 0
	}
	return chain.NewBitChain(id, role, bits)
}

func TestChainCollectionOrdering(t *testing.T) {
	// sums: p1=2, p2=3, p3=1 (Condition); b1=2 (Both); f1=3, f2=1 (Focus)
	p1 := leafBit(1, Condition, 1, 1, 0, 0)
	p2 := leafBit(2, Condition, 1, 1, 1, 0)
	p3 := leafBit(3, Condition, 1, 0, 0, 0)
	b1 := leafBit(4, Both, 1, 1, 0, 0)
	f1 := leafBit(5, Focus, 1, 1, 1, 0)
	f2 := leafBit(6, Focus, 1, 0, 0, 0)

	cc := NewChainCollection([]Chain{p1, p2, p3, b1, f1, f2})

	if cc.Size() != 6 {
		t.Fatalf("Size() = %d, want 6", cc.Size())
	}
	// Condition band (p2,p1,p3 by sum desc), then Both, then Focus band.
	wantOrder := []int{2, 1, 3, 4, 5, 6}
	for i, want := range wantOrder {
		id, _ := cc.At(i).Clause().Last()
		if id != want {
			t.Errorf("At(%d) id = %d, want %d", i, id, want)
		}
	}

	if cc.ConditionCount() != 4 { // p1,p2,p3 + b1
		t.Errorf("ConditionCount() = %d, want 4", cc.ConditionCount())
	}
	if cc.FocusCount() != 3 { // b1,f1,f2
		t.Errorf("FocusCount() = %d, want 3", cc.FocusCount())
	}
	if cc.FirstFocusIndex() != 3 {
		t.Errorf("FirstFocusIndex() = %d, want 3", cc.FirstFocusIndex())
	}
	if !cc.HasFoci() {
		t.Error("HasFoci() = false, want true")
	}
}

func TestChainCollectionEmpty(t *testing.T) {
	cc := NewChainCollection(nil)
	if !cc.Empty() {
		t.Error("Empty() = false, want true")
	}
	if cc.HasFoci() {
		t.Error("HasFoci() = true, want false")
	}
}
