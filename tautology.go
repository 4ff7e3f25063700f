// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig

import "sort"

// wildcardConsequent is the synthetic "deduce anything" consequent used
// to encode an excluded predicate subset: once its antecedent matches a
// clause, the clause is treated as self-deducing regardless of which
// predicate it last extended by.
const wildcardConsequent = 0

// tautNode is one trie node in the arena. Children are referenced by
// arena index, keyed by enumeration position, rather than by pointer.
type tautNode struct {
	children    map[int]int // enumeration position -> arena index
	consequents []int
}

// TautologyTree stores rules "antecedent ⇒ consequent" and deduces, for
// a given clause, the set of predicate ids implied by some subsequence
// of its (reverse-enumeration-ordered) predicates.
type TautologyTree struct {
	nodes     []tautNode
	posOf     map[int]int // predicate id -> enumeration position
	declared  map[int]bool
}

// NewTautologyTree builds an empty tree over the given predicate
// enumeration order (index i is the i-th predicate in sorted-collection
// order).
func NewTautologyTree(predicateIDsInEnumOrder []int) *TautologyTree {
	t := &TautologyTree{
		nodes:    []tautNode{{children: map[int]int{}}},
		posOf:    make(map[int]int, len(predicateIDsInEnumOrder)),
		declared: make(map[int]bool, len(predicateIDsInEnumOrder)),
	}
	for i, id := range predicateIDsInEnumOrder {
		t.posOf[id] = i
		t.declared[id] = true
	}
	return t
}

// AddTautology inserts antecedent ⇒ consequent. Antecedent predicate ids
// are sorted by enumeration position descending before insertion, so
// that traversal (which walks a clause from its most recently added
// predicate backward) can match them directly. Per the error-handling
// policy, any predicate absent from the declared set causes the whole
// rule to be silently ignored.
func (t *TautologyTree) AddTautology(antecedent []int, consequent int) {
	for _, id := range antecedent {
		if !t.declared[id] {
			return
		}
	}
	if consequent != wildcardConsequent && !t.declared[consequent] {
		return
	}

	sorted := append([]int(nil), antecedent...)
	sort.Slice(sorted, func(i, j int) bool {
		return t.posOf[sorted[i]] > t.posOf[sorted[j]]
	})

	node := 0
	for _, id := range sorted {
		pos := t.posOf[id]
		next, ok := t.nodes[node].children[pos]
		if !ok {
			t.nodes = append(t.nodes, tautNode{children: map[int]int{}})
			next = len(t.nodes) - 1
			t.nodes[node].children[pos] = next
		}
		node = next
	}
	t.nodes[node].consequents = append(t.nodes[node].consequents, consequent)
}

// AddExcluded forbids clause as an antecedent: once a clause matches it
// (in any order, via subsequence), the clause self-deduces and is
// therefore treated as redundant by the enumerator.
func (t *TautologyTree) AddExcluded(antecedent []int) {
	t.AddTautology(antecedent, wildcardConsequent)
}

// Deduce returns, for clause (given in enumeration order, i.e. oldest
// predicate first), the union of consequents of every stored rule whose
// antecedent is a subsequence of the clause read from its most recently
// added predicate backward.
func (t *TautologyTree) Deduce(clause Clause) []int {
	reversed := make([]int, len(clause))
	for i, id := range clause {
		reversed[len(clause)-1-i] = id
	}

	seen := map[int]bool{}
	var out []int
	t.deduceAt(0, reversed, seen, &out)
	return out
}

func (t *TautologyTree) deduceAt(node int, seq []int, seen map[int]bool, out *[]int) {
	for _, c := range t.nodes[node].consequents {
		if !seen[c] {
			seen[c] = true
			*out = append(*out, c)
		}
	}
	for i, id := range seq {
		pos, ok := t.posOf[id]
		if !ok {
			continue
		}
		if next, ok := t.nodes[node].children[pos]; ok {
			t.deduceAt(next, seq[i+1:], seen, out)
		}
	}
}

// DeducesItself reports whether deduced (the result of a prior Deduce
// call on chain's clause) contains the wildcard marker or any predicate
// id already present in clause.
func DeducesItself(clause Clause, deduced []int) bool {
	for _, d := range deduced {
		if d == wildcardConsequent {
			return true
		}
		for _, id := range clause {
			if d == id {
				return true
			}
		}
	}
	return false
}
