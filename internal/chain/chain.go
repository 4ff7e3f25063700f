// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package chain implements the per-row truth/degree vectors ("chains")
// that back every predicate in a conjunctive-pattern search: a Bit chain
// for crisp (boolean) columns, and Float/Fubit chains for fuzzy columns
// under a fixed t-norm.
//
// Chains are a tagged variant over {Bit, Float, Fubit}: the digger is
// generic over the Chain interface and never type-switches on codec
// except inside Conjoin, which monomorphises the conjunction per codec
// pairing and falls back to a bit-to-float promotion when a crisp chain
// is conjoined with a fuzzy one.
package chain

import "fmt"

// Role describes how a chain's predicate may participate in a clause.
type Role uint8

const (
	// Condition chains may only extend the antecedent of a clause.
	Condition Role = iota
	// Both chains may act as either a condition or a focus.
	Both
	// Focus chains are candidate consequents combined with a condition.
	Focus
)

func (r Role) String() string {
	switch r {
	case Condition:
		return "condition"
	case Both:
		return "both"
	case Focus:
		return "focus"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Clause is an ordered sequence of predicate ids representing a
// conjunction, in the order the predicates were added (the enumeration
// order of the sorted collection, not necessarily ascending by id).
// Equality is elementwise.
type Clause []int

// Last returns the most recently added predicate id.
func (c Clause) Last() (int, bool) {
	if len(c) == 0 {
		return 0, false
	}
	return c[len(c)-1], true
}

// Extend returns a new clause equal to c with id appended; c is not mutated.
func (c Clause) Extend(id int) Clause {
	out := make(Clause, len(c)+1)
	copy(out, c)
	out[len(c)] = id
	return out
}

// Equal reports whether c and o name the same predicates in the same order.
func (c Clause) Equal(o Clause) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if c[i] != o[i] {
			return false
		}
	}
	return true
}

// Chain is the common capability set shared by Bit, Float and Fubit chains.
//
// A chain exclusively owns its raw vector: it is never copied, only moved.
// Conjunction consumes neither operand and produces a new chain; callers
// retain both inputs untouched.
type Chain interface {
	// Clause returns the ordered predicate ids this chain represents.
	Clause() Clause
	// Role reports whether the chain may act as a condition, a focus, or both.
	Role() Role
	// Sum is the cached reduction of the raw vector (popcount for Bit,
	// plain sum for Float/Fubit).
	Sum() float64
	// Size is the number of rows (n).
	Size() int
	// At returns the decoded truth/degree value of row i.
	At(i int) float64
}

// Conjoin computes the chain representing a ∧ last(b.Clause()), i.e. the
// conjunction of a with the rightmost predicate of b. The result's clause
// is a.Clause() extended by the last id of b.Clause(); its role is b's role
// unless toFocus forces Focus (used when the digger promotes a Both-role
// chain encountered earlier in the sorted collection order). Forcing Focus
// on a b that is not Both-role is an error.
//
// Same-codec pairs are dispatched to the monomorphised per-codec
// conjunction. A Bit chain conjoined with a Float or Fubit chain is
// promoted: the bit is coerced to 0.0/1.0 and combined elementwise under
// the fuzzy operand's t-norm, mirroring how a boolean column degenerates
// into a crisp fuzzy set.
func Conjoin(a, b Chain, toFocus bool) (Chain, error) {
	if a.Size() != b.Size() {
		return nil, fmt.Errorf("chain: incompatible sizes %d and %d", a.Size(), b.Size())
	}

	lastID, ok := b.Clause().Last()
	if !ok {
		return nil, fmt.Errorf("chain: conjunction operand has empty clause")
	}

	role := b.Role()
	if toFocus {
		if role != Both {
			return nil, fmt.Errorf("chain: cannot force Focus on a %s-role chain", role)
		}
		role = Focus
	}
	clause := a.Clause().Extend(lastID)

	switch av := a.(type) {
	case *BitChain:
		if bv, ok := b.(*BitChain); ok {
			return av.conjoin(bv, clause, role), nil
		}
	case *FloatChain:
		if bv, ok := b.(*FloatChain); ok {
			if av.tnorm != bv.tnorm {
				return nil, fmt.Errorf("chain: mismatched t-norms in Float conjunction")
			}
			return av.conjoin(bv, clause, role), nil
		}
	case *FubitChain:
		if bv, ok := b.(*FubitChain); ok {
			if av.tnorm != bv.tnorm || av.k != bv.k {
				return nil, fmt.Errorf("chain: mismatched Fubit parameters in conjunction")
			}
			return av.conjoin(bv, clause, role), nil
		}
	}

	return conjoinMixed(a, b, clause, role)
}

// conjoinMixed promotes a Bit operand to its fuzzy 0.0/1.0 equivalent and
// combines it elementwise with the fuzzy operand under that operand's
// t-norm, producing a Float result. At least one operand must be Float or
// Fubit; two Bit operands are handled by Conjoin before reaching here.
func conjoinMixed(a, b Chain, clause Clause, role Role) (Chain, error) {
	t, ok := tnormOf(a)
	if !ok {
		t, ok = tnormOf(b)
	}
	if !ok {
		return nil, fmt.Errorf("chain: cannot conjoin two Bit chains of different codecs")
	}

	n := a.Size()
	values := make([]float32, n)
	var sum float64
	for i := 0; i < n; i++ {
		v := float32(Apply(t, a.At(i), b.At(i)))
		values[i] = v
		sum += float64(v)
	}

	return &FloatChain{
		clause: clause,
		role:   role,
		tnorm:  t,
		values: values,
		sum:    sum,
	}, nil
}

func tnormOf(c Chain) (TNorm, bool) {
	switch v := c.(type) {
	case *FloatChain:
		return v.tnorm, true
	case *FubitChain:
		return v.tnorm, true
	default:
		return 0, false
	}
}
