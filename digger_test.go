// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig_test

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/nuggets/dig"
	"github.com/nuggets/dig/internal/chain"
)

func bitCol(id int, role dig.Role, values ...int) dig.Chain {
	bits := make([]bool, len(values))
	for i, v := range values {
		bits[i] = v != 0
	}
	return chain.NewBitChain(id, role, bits)
}

func clauseKey(c dig.Clause) string {
	parts := make([]string, len(c))
	for i, id := range c {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// Scenario A: binary, no foci, pure frequent itemsets.
func TestScenarioA_FrequentItemsets(t *testing.T) {
	p1 := bitCol(1, dig.Condition, 1, 1, 1, 0, 0)
	p2 := bitCol(2, dig.Condition, 1, 1, 0, 1, 0)
	p3 := bitCol(3, dig.Condition, 0, 1, 1, 1, 0)
	p4 := bitCol(4, dig.Condition, 1, 0, 0, 0, 1)

	predicates := []dig.Predicate{
		{ID: 1, Name: "p1", Role: dig.Condition},
		{ID: 2, Name: "p2", Role: dig.Condition},
		{ID: 3, Name: "p3", Role: dig.Condition},
		{ID: 4, Name: "p4", Role: dig.Condition},
	}

	cfg := &dig.Config{
		NRow:       5,
		MinSupport: 0.4,
		MaxSupport: 1.0,
		MinLength:  1,
		MaxLength:  3,
		MaxResults: -1,
	}

	var got []string
	storage := dig.NewCallbackStorage(func(r dig.Record) (any, error) {
		got = append(got, clauseKey(r.Condition))
		return nil, nil
	})

	digger, err := dig.NewDigger(predicates, []dig.Chain{p1, p2, p3, p4}, cfg, storage, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := digger.Run(); err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{
		"1": true, "2": true, "3": true, "4": true,
		"1,2": true, "1,3": true, "2,3": true,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records %v, want %d", len(got), got, len(want))
	}
	for _, k := range got {
		if !want[k] {
			t.Errorf("unexpected clause %q emitted", k)
		}
	}
	notWant := []string{"1,4", "2,4", "3,4", "1,2,3"}
	for _, k := range notWant {
		for _, g := range got {
			if g == k {
				t.Errorf("clause %q should not survive support pruning", k)
			}
		}
	}
}

// Scenario D: disjoint pruning.
func TestScenarioD_DisjointPruning(t *testing.T) {
	p1 := bitCol(1, dig.Condition, 1, 1, 1, 1, 1)
	p2 := bitCol(2, dig.Condition, 1, 1, 1, 1, 1)
	p3 := bitCol(3, dig.Condition, 1, 1, 1, 1, 1)
	p4 := bitCol(4, dig.Condition, 1, 1, 1, 1, 1)

	predicates := []dig.Predicate{
		{ID: 1, Name: "p1", Role: dig.Condition, Disjoint: 1},
		{ID: 2, Name: "p2", Role: dig.Condition, Disjoint: 1},
		{ID: 3, Name: "p3", Role: dig.Condition, Disjoint: 2},
		{ID: 4, Name: "p4", Role: dig.Condition, Disjoint: 2},
	}

	cfg := &dig.Config{
		NRow:       5,
		MinSupport: 0,
		MaxSupport: 1,
		MinLength:  2,
		MaxLength:  2,
		MaxResults: -1,
		Disjoint:   map[int]int{1: 1, 2: 1, 3: 2, 4: 2},
	}

	var got []string
	storage := dig.NewCallbackStorage(func(r dig.Record) (any, error) {
		got = append(got, clauseKey(r.Condition))
		return nil, nil
	})

	digger, err := dig.NewDigger(predicates, []dig.Chain{p1, p2, p3, p4}, cfg, storage, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := digger.Run(); err != nil {
		t.Fatal(err)
	}

	sort.Strings(got)
	want := []string{"1,3", "1,4", "2,3", "2,4"}
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

// Scenario F: tautology deduction prunes a predicate already implied by
// the current prefix.
func TestScenarioF_TautologyDeduction(t *testing.T) {
	p1 := bitCol(1, dig.Condition, 1, 1, 1, 1, 1)
	p2 := bitCol(2, dig.Condition, 1, 1, 1, 1, 1)
	p3 := bitCol(3, dig.Condition, 1, 1, 1, 1, 1)

	predicates := []dig.Predicate{
		{ID: 1, Name: "p1", Role: dig.Condition},
		{ID: 2, Name: "p2", Role: dig.Condition},
		{ID: 3, Name: "p3", Role: dig.Condition},
	}

	cfg := &dig.Config{
		NRow:       5,
		MinSupport: 0,
		MaxSupport: 1,
		MinLength:  1,
		MaxLength:  3,
		MaxResults: -1,
	}

	var got []string
	storage := dig.NewCallbackStorage(func(r dig.Record) (any, error) {
		got = append(got, clauseKey(r.Condition))
		return nil, nil
	})

	rules := []dig.Rule{{Antecedent: []int{1, 2}, Consequent: 3}}
	digger, err := dig.NewDigger(predicates, []dig.Chain{p1, p2, p3}, cfg, storage, rules)
	if err != nil {
		t.Fatal(err)
	}
	if err := digger.Run(); err != nil {
		t.Fatal(err)
	}

	for _, k := range got {
		if k == "1,2,3" {
			t.Errorf("clause {1,2,3} should have been pruned by the {1,2}=>3 tautology")
		}
	}
}

// Scenario E (adapted): callback contingency fields are internally
// consistent with the raw input vectors.
func TestScenarioE_CallbackContingency(t *testing.T) {
	p1 := bitCol(1, dig.Condition, 1, 1, 1, 0, 0)
	f := bitCol(2, dig.Focus, 1, 0, 1, 1, 0)

	predicates := []dig.Predicate{
		{ID: 1, Name: "p1", Role: dig.Condition},
		{ID: 2, Name: "f", Role: dig.Focus},
	}

	cfg := &dig.Config{
		NRow:       5,
		MinSupport: 0,
		MaxSupport: 1,
		MinLength:  1,
		MaxLength:  1,
		MaxResults: -1,
		Arguments: map[dig.Argument]bool{
			dig.ArgCondition: true,
			dig.ArgSupport:   true,
			dig.ArgPP:        true,
			dig.ArgNP:        true,
			dig.ArgPN:        true,
			dig.ArgNN:        true,
		},
	}

	var rec *dig.Record
	storage := dig.NewCallbackStorage(func(r dig.Record) (any, error) {
		if len(r.Condition) == 1 && r.Focus == 2 {
			cp := r
			rec = &cp
		}
		return nil, nil
	})

	digger, err := dig.NewDigger(predicates, []dig.Chain{p1, f}, cfg, storage, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := digger.Run(); err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("expected a record reporting on focus f")
	}

	if rec.Support != 0.6 {
		t.Errorf("support = %v, want 0.6", rec.Support)
	}
	if rec.PP+rec.PN != 3 {
		t.Errorf("pp+pn = %v, want 3 (parent sum)", rec.PP+rec.PN)
	}
	if rec.PP+rec.NP != 3 {
		t.Errorf("pp+np = %v, want 3 (focus column sum)", rec.PP+rec.NP)
	}
	if rec.PP+rec.PN+rec.NP+rec.NN != 5 {
		t.Errorf("contingency cells sum to %v, want 5 (nrow)", rec.PP+rec.PN+rec.NP+rec.NN)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  dig.Config
		ok   bool
	}{
		{"zero value is valid", dig.Config{}, true},
		{"negative nrow", dig.Config{NRow: -1}, false},
		{"maxLength below minLength", dig.Config{MinLength: 3, MaxLength: 1}, false},
		{"support out of range", dig.Config{MinSupport: 1.5}, false},
		{"maxSupport below minSupport", dig.Config{MinSupport: 0.5, MaxSupport: 0.1}, false},
		{"empty excluded subset", dig.Config{Excluded: [][]int{{}}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err == nil) != tc.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}
