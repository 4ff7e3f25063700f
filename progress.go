// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig

import "sync/atomic"

// CombinatorialProgress estimates total DFS work as Σ C(elements, k) for
// k in [0, min(maxLength, elements)] and tracks how much of it has been
// visited, so early pruning of a subtree still advances the counter by
// the subtree's full theoretical weight instead of stalling.
type CombinatorialProgress struct {
	binom     [][]float64
	elements  int
	maxDepth  int
	total     float64
	done      atomic.Uint64 // fixed-point, scaled by doneScale
	cancelled atomic.Bool
}

const doneScale = 1 << 20

// NewCombinatorialProgress builds the binomial table for elements choose
// k, 0 <= k <= maxDepth.
func NewCombinatorialProgress(elements, maxDepth int) *CombinatorialProgress {
	if maxDepth < 0 || maxDepth > elements {
		maxDepth = elements
	}

	binom := make([][]float64, elements+1)
	for n := 0; n <= elements; n++ {
		binom[n] = make([]float64, maxDepth+1)
		binom[n][0] = 1
		for k := 1; k <= maxDepth && k <= n; k++ {
			if k == n {
				binom[n][k] = 1
				continue
			}
			binom[n][k] = binom[n-1][k-1] + binom[n-1][k]
		}
	}

	var total float64
	for k := 0; k <= maxDepth; k++ {
		total += binom[elements][k]
	}

	return &CombinatorialProgress{
		binom:    binom,
		elements: elements,
		maxDepth: maxDepth,
		total:    total,
	}
}

// subtreeSize returns C(remaining, k) for k in [0, maxDepth-depth],
// i.e. the theoretical count of clauses reachable below a node that has
// `remaining` candidate predicates left and sits at depth `depth`.
func (p *CombinatorialProgress) subtreeSize(remaining, depth int) float64 {
	budget := p.maxDepth - depth
	if budget < 0 {
		return 0
	}
	if budget > remaining {
		budget = remaining
	}
	var sum float64
	for k := 0; k <= budget; k++ {
		sum += p.binom[remaining][k]
	}
	return sum
}

// Batch is a progress token opened for one recursion level. Close snaps
// the running counter forward by this node's full subtree weight,
// guaranteeing forward progress even when the subtree is pruned early.
type Batch struct {
	p      *CombinatorialProgress
	weight float64
}

// OpenBatch opens a batch for a node with `remaining` candidates left to
// explore at depth `depth`.
func (p *CombinatorialProgress) OpenBatch(remaining, depth int) *Batch {
	return &Batch{p: p, weight: p.subtreeSize(remaining, depth)}
}

// Close advances the progress counter by this batch's full subtree
// weight. Idempotent beyond the first call.
func (b *Batch) Close() {
	if b.weight == 0 {
		return
	}
	delta := uint64(b.weight * doneScale)
	b.p.done.Add(delta)
	b.weight = 0
}

// Fraction returns the estimated completion in [0,1].
func (p *CombinatorialProgress) Fraction() float64 {
	if p.total == 0 {
		return 1
	}
	done := float64(p.done.Load()) / doneScale
	f := done / p.total
	if f > 1 {
		f = 1
	}
	return f
}

// Cancel sets the cooperative cancellation flag; workers observe it at
// their next progress tick.
func (p *CombinatorialProgress) Cancel() { p.cancelled.Store(true) }

// Cancelled reports whether Cancel has been called.
func (p *CombinatorialProgress) Cancelled() bool { return p.cancelled.Load() }
