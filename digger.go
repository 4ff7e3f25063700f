// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig

import "github.com/nuggets/dig/internal/chain"

// Rule is one antecedent/consequent pair fed into the Digger's
// TautologyTree before a run starts.
type Rule struct {
	Antecedent []int
	Consequent int
}

// Digger drives the depth-first enumeration described in the package
// doc: it expands condition prefixes, prunes redundant and low-support
// branches, and hands surviving nodes to a Storage.
type Digger struct {
	cfg           *Config
	predicates    map[int]Predicate
	tree          *TautologyTree
	predicateSums map[int]float64
	storage       Storage
	progress      *CombinatorialProgress
	columns       []Chain
}

// rootChain represents the always-true empty condition: every row
// satisfies it, so Sum equals the row count and At is 1 everywhere.
type rootChain struct{ n int }

func (r rootChain) Clause() Clause    { return nil }
func (r rootChain) Role() Role        { return Condition }
func (r rootChain) Sum() float64      { return float64(r.n) }
func (r rootChain) Size() int         { return r.n }
func (r rootChain) At(int) float64    { return 1 }

// NewDigger builds a Digger over the given predicate metadata and leaf
// chains (one per declared predicate, already encoded by the caller's
// column marshaling). rules and cfg.Excluded are both loaded into the
// TautologyTree before the first call to Run.
func NewDigger(predicates []Predicate, columns []Chain, cfg *Config, storage Storage, rules []Rule) (*Digger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(predicates) != len(columns) {
		return nil, inputErrorf("predicate count %d does not match column count %d", len(predicates), len(columns))
	}

	predicateMap := make(map[int]Predicate, len(predicates))
	predicateSums := make(map[int]float64, len(predicates))
	for _, p := range predicates {
		predicateMap[p.ID] = p
	}
	for _, c := range columns {
		id, _ := c.Clause().Last()
		if c.Size() != cfg.NRow {
			return nil, inputErrorf("column %d has %d rows, want nrow %d", id, c.Size(), cfg.NRow)
		}
		predicateSums[id] = c.Sum()
	}

	// The TautologyTree indexes predicates by their position in the sorted
	// enumeration order, not by declaration order, since that is the order
	// the digger actually walks clauses in.
	sorted := NewChainCollection(columns)
	predicateIDs := make([]int, sorted.Size())
	for i := 0; i < sorted.Size(); i++ {
		id, _ := sorted.At(i).Clause().Last()
		predicateIDs[i] = id
	}

	tree := NewTautologyTree(predicateIDs)
	for _, r := range rules {
		tree.AddTautology(r.Antecedent, r.Consequent)
	}
	for _, excl := range cfg.Excluded {
		tree.AddExcluded(excl)
	}

	elements := len(predicates)
	progress := NewCombinatorialProgress(elements, cfg.effectiveMaxLength(elements))

	return &Digger{
		cfg:           cfg,
		predicates:    predicateMap,
		tree:          tree,
		predicateSums: predicateSums,
		storage:       storage,
		progress:      progress,
		columns:       columns,
	}, nil
}

// Progress exposes the run's combinatorial progress tracker, readable
// concurrently with Run for UI reporting.
func (d *Digger) Progress() *CombinatorialProgress { return d.progress }

// Cancel requests cooperative cancellation; Run returns a *Cancelled
// error once the flag is observed.
func (d *Digger) Cancel() { d.progress.Cancel() }

// buildRoot constructs the synthetic always-true root chain and the
// filtered, sorted collection of top-level candidate chains beneath it.
func (d *Digger) buildRoot() (rootChain, *ChainCollection) {
	leaf := NewChainCollection(d.columns)
	root := rootChain{n: d.cfg.NRow}
	rootDeduced := d.tree.Deduce(root.Clause())

	filtered := make([]Chain, 0, leaf.Size())
	for i := 0; i < leaf.Size(); i++ {
		c := leaf.At(i)
		if !isCandidate(c, d.cfg) {
			continue
		}
		if !isNonRedundant(root, c, d.cfg.Disjoint, rootDeduced) {
			continue
		}
		filtered = append(filtered, c)
	}
	child := NewChainCollection(filtered)
	return root, &child
}

// Run executes the single-threaded DFS to completion.
func (d *Digger) Run() error {
	root, child := d.buildRoot()
	return d.processChildrenChains(root, child, 0)
}

func (d *Digger) processChains(collection *ChainCollection, depth int) error {
	for i := 0; i < collection.ConditionCount(); i++ {
		if d.progress.Cancelled() {
			return &Cancelled{}
		}

		parent := collection.At(i)
		batch := d.progress.OpenBatch(collection.Size()-i-1, depth)

		deduced := d.tree.Deduce(parent.Clause())
		if DeducesItself(parent.Clause(), deduced) {
			batch.Close()
			continue
		}

		var childChains []Chain
		var err error
		switch {
		case isExtendable(parent, d.cfg, d.storage):
			childChains, err = d.combine(collection, i, false, deduced)
		case collection.HasFoci():
			childChains, err = d.combine(collection, i, true, deduced)
		}
		if err != nil {
			batch.Close()
			return err
		}

		child := NewChainCollection(childChains)
		if err := d.processChildrenChains(parent, &child, depth+1); err != nil {
			batch.Close()
			return err
		}
		batch.Close()
	}
	return nil
}

func (d *Digger) processChildrenChains(parent Chain, child *ChainCollection, depth int) error {
	recurse, err := d.handleNode(parent, child)
	if err != nil || !recurse {
		return err
	}
	return d.processChains(child, depth)
}

// handleNode stores parent if storable and reports whether the caller
// should recurse into child. Shared by the single-threaded DFS and the
// multi-threaded worker loop, which differ only in how they schedule
// that recursion.
func (d *Digger) handleNode(parent Chain, child *ChainCollection) (recurse bool, err error) {
	if d.cfg.FilterEmptyFoci && !child.HasFoci() {
		return false, nil
	}

	if isStorable(parent, d.cfg, d.storage) {
		sel := d.buildSelector(parent, child)
		if !d.cfg.FilterEmptyFoci || sel.Count() > 0 {
			if err := d.storage.store(parent, child, &sel, d.predicateSums, d.predicates, d.cfg); err != nil {
				return false, err
			}
		}
	}

	return isExtendable(parent, d.cfg, d.storage), nil
}

// combine emits every candidate-passing conjunction of collection[i] with
// a later, non-redundant chain (only focus-band chains when onlyFoci is
// set), plus its conjunction with each Both-role chain that precedes it in
// the focus band, whose result is forced to the Focus role.
func (d *Digger) combine(collection *ChainCollection, i int, onlyFoci bool, parentDeduced []int) ([]Chain, error) {
	parent := collection.At(i)
	first := collection.FirstFocusIndex()
	var out []Chain

	for j := first; j < i; j++ {
		cand := collection.At(j)
		if !isNonRedundant(parent, cand, d.cfg.Disjoint, parentDeduced) {
			continue
		}
		conj, err := chain.Conjoin(parent, cand, true)
		if err != nil {
			return nil, invariantViolationf("%v", err)
		}
		if isCandidate(conj, d.cfg) {
			out = append(out, conj)
		}
	}

	for j := i + 1; j < collection.Size(); j++ {
		if onlyFoci && j < first {
			continue
		}
		cand := collection.At(j)
		if !isNonRedundant(parent, cand, d.cfg.Disjoint, parentDeduced) {
			continue
		}
		conj, err := chain.Conjoin(parent, cand, false)
		if err != nil {
			return nil, invariantViolationf("%v", err)
		}
		if isCandidate(conj, d.cfg) {
			out = append(out, conj)
		}
	}

	return out, nil
}

func (d *Digger) buildSelector(parent Chain, child *ChainCollection) Selector {
	focusCount := child.FocusCount()
	if d.cfg.MinConditionalFocusSupport <= 0 {
		return newConstantSelector(focusCount)
	}

	sel := newSelector(focusCount)
	for i := 0; i < focusCount; i++ {
		f := child.At(child.FirstFocusIndex() + i)
		if parent.Sum() <= 0 || f.Sum()/parent.Sum() < d.cfg.MinConditionalFocusSupport {
			_ = sel.Unselect(i)
		}
	}
	return sel
}

// isNonRedundant applies the three redundancy rules: same last predicate
// as parent, same nonzero disjoint group as parent, or already deducible
// from parent's prefix.
func isNonRedundant(parent Chain, candidate Chain, disjoint map[int]int, parentDeduced []int) bool {
	curr, _ := candidate.Clause().Last()

	if pref := parent.Clause(); len(pref) > 0 {
		last, _ := pref.Last()
		if last == curr {
			return false
		}
		if g := disjoint[last]; g != 0 && g == disjoint[curr] {
			return false
		}
	}

	for _, d := range parentDeduced {
		if d == curr {
			return false
		}
	}
	return true
}

func isCandidate(c Chain, cfg *Config) bool {
	n := float64(cfg.NRow)
	if c.Role() == Focus {
		return c.Sum() >= cfg.MinFocusSupport*n
	}
	return c.Sum() >= cfg.MinSupport*n
}

func isExtendable(c Chain, cfg *Config, storage Storage) bool {
	if cfg.MaxLength >= 0 && len(c.Clause()) >= cfg.MaxLength {
		return false
	}
	if c.Sum() < cfg.MinSupport*float64(cfg.NRow) {
		return false
	}
	if cfg.MaxResults >= 0 && storage.Size() >= cfg.MaxResults {
		return false
	}
	return true
}

func isStorable(c Chain, cfg *Config, storage Storage) bool {
	if len(c.Clause()) < cfg.MinLength {
		return false
	}
	n := float64(cfg.NRow)
	if c.Sum() < cfg.MinSupport*n || c.Sum() > cfg.MaxSupport*n {
		return false
	}
	if cfg.MaxResults >= 0 && storage.Size() >= cfg.MaxResults {
		return false
	}
	return true
}
