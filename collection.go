// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig

import (
	"cmp"
	"slices"

	"github.com/nuggets/dig/internal/chain"
)

// Chain is the per-row truth/degree vector bound to a clause, re-exported
// from internal/chain so callers never import the codec package directly.
type Chain = chain.Chain

// ChainCollection is a stably sorted sequence of chains: Condition-role
// chains first, then Both, then Focus, each band ordered by sum
// descending. Both-role chains are stored once, at the Condition/Focus
// boundary, and participate in both bands.
type ChainCollection struct {
	chains []Chain

	conditionCount  int
	focusCount      int
	firstFocusIndex int
}

// NewChainCollection builds and sorts a collection from a parallel chain
// slice produced by the caller's column-to-chain marshaling.
func NewChainCollection(chains []Chain) ChainCollection {
	cs := make([]Chain, len(chains))
	copy(cs, chains)

	slices.SortStableFunc(cs, func(a, b Chain) int {
		if c := cmp.Compare(roleOrder(a.Role()), roleOrder(b.Role())); c != 0 {
			return c
		}
		return cmp.Compare(b.Sum(), a.Sum())
	})

	var conditions, foci, both int
	for _, c := range cs {
		switch c.Role() {
		case Condition:
			conditions++
		case Focus:
			foci++
		case Both:
			both++
		}
	}

	return ChainCollection{
		chains:          cs,
		conditionCount:  conditions + both,
		focusCount:      foci + both,
		firstFocusIndex: conditions,
	}
}

func roleOrder(r Role) int {
	switch r {
	case Condition:
		return 0
	case Both:
		return 1
	case Focus:
		return 2
	default:
		return 3
	}
}

func (cc *ChainCollection) Size() int  { return len(cc.chains) }
func (cc *ChainCollection) Empty() bool { return len(cc.chains) == 0 }
func (cc *ChainCollection) At(i int) Chain { return cc.chains[i] }

func (cc *ChainCollection) ConditionCount() int  { return cc.conditionCount }
func (cc *ChainCollection) FocusCount() int      { return cc.focusCount }
func (cc *ChainCollection) FirstFocusIndex() int { return cc.firstFocusIndex }
func (cc *ChainCollection) HasFoci() bool        { return cc.focusCount > 0 }
