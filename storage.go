// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig

import "sync"

// Storage collects emitted patterns. Two variants exist: CallbackStorage
// hands each record to a user callback and keeps its return values;
// AssocStorage assembles a full association-rule frame. Both are safe
// for concurrent use by the multi-threaded digger.
type Storage interface {
	// store is invoked once per storable node with the surviving foci
	// already narrowed by sel.
	store(parent Chain, child *ChainCollection, sel *Selector, predicateSums map[int]float64, predicates map[int]Predicate, cfg *Config) error

	// Size reports how many results have been stored so far.
	Size() int
}

func contingency(parentSum, focusSum, totalFocusSum, n float64) (pp, np, pn, nn float64) {
	pp = focusSum
	pn = parentSum - focusSum
	np = totalFocusSum - focusSum
	nn = n - parentSum - totalFocusSum + focusSum
	return
}

func buildIndicesAndWeights(parent Chain) ([]int, []float64) {
	n := parent.Size()
	indices := make([]int, 0, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		v := parent.At(i)
		weights[i] = v
		if v > 0 {
			indices = append(indices, i)
		}
	}
	return indices, weights
}

// buildBaseRecord constructs the condition-only fields shared by every
// focus this parent reports on.
func buildBaseRecord(parent Chain, cfg *Config) Record {
	n := float64(cfg.NRow)
	r := Record{Focus: -1}
	if cfg.wantsArg(ArgCondition) {
		r.Condition = append(Clause(nil), parent.Clause()...)
	}
	if cfg.wantsArg(ArgSum) {
		r.Sum = parent.Sum()
	}
	if cfg.wantsArg(ArgSupport) && n > 0 {
		r.Support = parent.Sum() / n
	}
	if cfg.wantsArg(ArgIndices) || cfg.wantsArg(ArgWeights) {
		indices, weights := buildIndicesAndWeights(parent)
		if cfg.wantsArg(ArgIndices) {
			r.Indices = indices
		}
		if cfg.wantsArg(ArgWeights) {
			r.Weights = weights
		}
	}
	return r
}

// CallbackStorage hands each record (one per selected focus, or a bare
// condition record when the parent has no foci) to a user callback and
// preserves the callback's return values in visit order.
type CallbackStorage struct {
	callback func(Record) (any, error)

	mu      sync.Mutex
	results []any
}

// NewCallbackStorage wraps callback for use as a Storage.
func NewCallbackStorage(callback func(Record) (any, error)) *CallbackStorage {
	return &CallbackStorage{callback: callback}
}

func (s *CallbackStorage) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Results returns the callback return values collected so far, in visit
// order.
func (s *CallbackStorage) Results() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]any, len(s.results))
	copy(out, s.results)
	return out
}

func (s *CallbackStorage) store(parent Chain, child *ChainCollection, sel *Selector, predicateSums map[int]float64, predicates map[int]Predicate, cfg *Config) error {
	base := buildBaseRecord(parent, cfg)
	n := float64(cfg.NRow)

	records := make([]Record, 0, 1)
	if !child.HasFoci() || sel.Count() == 0 {
		records = append(records, base)
	} else {
		wantFoci := cfg.wantsArg(ArgFociSupports)
		wantPP := cfg.wantsArg(ArgPP)
		wantNP := cfg.wantsArg(ArgNP)
		wantPN := cfg.wantsArg(ArgPN)
		wantNN := cfg.wantsArg(ArgNN)

		for i := child.FirstFocusIndex(); i < child.Size(); i++ {
			if !sel.Selected(i - child.FirstFocusIndex()) {
				continue
			}
			f := child.At(i)
			focusID, _ := f.Clause().Last()

			rec := base
			rec.Focus = focusID
			if wantFoci {
				rec.FociSupports = map[int]float64{focusID: f.Sum() / n}
			}
			if wantPP || wantNP || wantPN || wantNN {
				pp, np, pn, nn := contingency(parent.Sum(), f.Sum(), predicateSums[focusID], n)
				if wantPP {
					rec.PP = pp
				}
				if wantNP {
					rec.NP = np
				}
				if wantPN {
					rec.PN = pn
				}
				if wantNN {
					rec.NN = nn
				}
			}
			records = append(records, rec)
		}
		if len(records) == 0 && !cfg.FilterEmptyFoci {
			records = append(records, base)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		v, err := s.callback(rec)
		if err != nil {
			return &CallbackFailure{Err: err}
		}
		s.results = append(s.results, v)
	}
	return nil
}

// AssocStorage assembles a full association-rule frame: one row per
// (antecedent, selected focus) pair.
type AssocStorage struct {
	mu   sync.Mutex
	rows []AssocRecord
}

// NewAssocStorage returns an empty association-frame storage.
func NewAssocStorage() *AssocStorage { return &AssocStorage{} }

func (s *AssocStorage) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Rows returns the accumulated association rows in visit order.
func (s *AssocStorage) Rows() []AssocRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AssocRecord, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *AssocStorage) store(parent Chain, child *ChainCollection, sel *Selector, predicateSums map[int]float64, predicates map[int]Predicate, cfg *Config) error {
	if !child.HasFoci() {
		return nil
	}

	n := float64(cfg.NRow)
	var rows []AssocRecord
	for i := child.FirstFocusIndex(); i < child.Size(); i++ {
		if !sel.Selected(i - child.FirstFocusIndex()) {
			continue
		}
		f := child.At(i)
		focusID, _ := f.Clause().Last()
		pp, np, pn, nn := contingency(parent.Sum(), f.Sum(), predicateSums[focusID], n)
		rows = append(rows, newAssocRecord(parent.Clause(), focusID, cfg.NRow, pp, np, pn, nn))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}
