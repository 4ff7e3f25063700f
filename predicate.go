// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig

import "github.com/nuggets/dig/internal/chain"

// Role describes how a predicate may participate in a clause.
type Role = chain.Role

const (
	// Condition predicates may only extend the antecedent of a clause.
	Condition = chain.Condition
	// Both predicates may act as either a condition or a focus.
	Both = chain.Both
	// Focus predicates are candidate consequents combined with a condition.
	Focus = chain.Focus
)

// TNorm selects the fuzzy conjunction semantics for Float and Fubit chains.
type TNorm = chain.TNorm

const (
	Goedel      = chain.Goedel
	Goguen      = chain.Goguen
	Lukasiewicz = chain.Lukasiewicz
)

// Clause is a strictly ordered sequence of predicate ids representing a
// conjunction.
type Clause = chain.Clause

// Predicate is a column identity: its display name, its role in a clause,
// and its disjoint-group membership (0 = ungrouped). The digger prunes
// disjoint groups from Config.Disjoint only; it does not read the
// Disjoint field here.
type Predicate struct {
	ID       int
	Name     string
	Role     Role
	Disjoint int
}
