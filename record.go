// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig

// Record is one mined pattern delivered to the user callback: a condition
// clause together with the requested statistics for a single focus (or,
// when FilterEmptyFoci is false and no focus survived selection, the bare
// condition).
type Record struct {
	// Condition is the ordered predicate-id clause of the antecedent.
	Condition Clause

	// Focus is the predicate id of the consequent this record reports on,
	// or -1 if the record carries no focus (condition-only pattern).
	Focus int

	// Sum is the accumulated t-norm weight of the condition chain.
	Sum float64

	// Support is Sum / NRow.
	Support float64

	// Indices lists the row numbers where the condition chain's value is
	// greater than zero; populated only when requested via ArgIndices.
	Indices []int

	// Weights holds the membership degree of the condition chain for every
	// row (one entry per row, not only the rows in Indices); populated
	// only when requested via ArgWeights.
	Weights []float64

	// FociSupports holds a single entry, keyed by this record's Focus id:
	// the sum of the condition-and-focus chain divided by NRow. Populated
	// only when requested via ArgFociSupports.
	FociSupports map[int]float64

	// PP, NP, PN, NN are the 2x2 contingency counts between Condition and
	// Focus: positive-condition/positive-focus, negative/positive,
	// positive/negative, negative/negative.
	PP, NP, PN, NN float64
}

// AssocRecord is one row of an association-rule frame: a condition
// (antecedent) paired with exactly one focus (consequent), carrying the
// derived association metrics alongside the raw contingency counts.
type AssocRecord struct {
	Antecedent Clause
	Consequent int

	Support        float64
	Confidence     float64
	Coverage       float64
	ConseqSupport  float64
	Lift           float64
	Count          float64
	Length         int

	PP, NP, PN, NN float64
}

// newAssocRecord derives an association row from the raw contingency
// counts of an antecedent/consequent pair evaluated over nrow rows.
func newAssocRecord(antecedent Clause, consequent int, nrow int, pp, np, pn, nn float64) AssocRecord {
	n := float64(nrow)

	r := AssocRecord{
		Antecedent: antecedent,
		Consequent: consequent,
		Count:      pp,
		Length:     len(antecedent),
		PP:         pp,
		NP:         np,
		PN:         pn,
		NN:         nn,
	}

	antecedentSum := pp + pn
	consequentSum := pp + np

	if n > 0 {
		r.Support = pp / n
		r.Coverage = antecedentSum / n
		r.ConseqSupport = consequentSum / n
	}
	if antecedentSum > 0 {
		r.Confidence = pp / antecedentSum
	}
	if r.ConseqSupport > 0 {
		r.Lift = r.Confidence / r.ConseqSupport
	}

	return r
}
