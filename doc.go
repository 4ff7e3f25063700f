// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package dig implements a depth-first combinatorial search over
// conjunctions of predicates in tabular data.
//
// Each column (predicate) is either crisp (boolean) or fuzzy (a membership
// degree in [0,1]); dig encodes every participating column as a Chain — a
// per-row truth/degree vector bound to the ordered clause of predicate ids
// it represents — and enumerates conjunctions of predicates (clauses),
// pruning by support and length, evaluating focus (consequent) predicates
// against each surviving candidate, filtering redundancy via disjoint
// groups and tautology deduction, and emitting results through a
// user-supplied callback or into an association-rule frame.
//
// dig is the pattern-mining engine only. Marshaling host columns into
// chains, reading CLI/config files, generating fuzzy-set memberships, and
// computing antichains over set families are the caller's responsibility;
// dig consumes already-built columns and a Config and produces an ordered
// sequence of results.
package dig
