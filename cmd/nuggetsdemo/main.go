// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command nuggetsdemo reads a CSV table of boolean and/or fuzzy columns
// and runs the pattern-mining engine over it, printing every surviving
// condition to stdout. It exists to exercise the dig package end to
// end; marshaling a real host's columns into chains is the caller's
// responsibility, not this package's.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nuggets/dig"
	"github.com/nuggets/dig/internal/chain"
)

func main() {
	path := flag.String("csv", "", "path to a CSV file; first row is the header")
	focusNames := flag.String("foci", "", "comma-separated column names to treat as foci")
	tnorm := flag.String("tnorm", "goedel", "one of: goedel, goguen, lukas")
	minSupport := flag.Float64("min-support", 0.1, "minimum support in [0,1]")
	maxLength := flag.Int("max-length", -1, "maximum clause length, negative for unbounded")
	threads := flag.Int("threads", 0, "worker count; 0 runs single-threaded")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *path == "" {
		log.Fatal("nuggetsdemo: -csv is required")
	}

	if *verbose {
		log.SetFlags(log.Lmicroseconds)
	}

	columns, names, err := readCSV(*path)
	if err != nil {
		log.Fatalf("nuggetsdemo: %v", err)
	}

	focusSet := splitSet(*focusNames)

	tn, err := chain.ParseTNorm(*tnorm)
	if err != nil {
		log.Fatalf("nuggetsdemo: %v", err)
	}

	predicates := make([]dig.Predicate, 0, len(names))
	chains := make([]dig.Chain, 0, len(names))
	for i, name := range names {
		role := dig.Condition
		if focusSet[name] {
			role = dig.Both
		}
		predicates = append(predicates, dig.Predicate{ID: i + 1, Name: name, Role: role})

		isBool := true
		for _, v := range columns[i] {
			if v != 0 && v != 1 {
				isBool = false
				break
			}
		}

		var c dig.Chain
		var cerr error
		if isBool {
			bits := make([]bool, len(columns[i]))
			for r, v := range columns[i] {
				bits[r] = v != 0
			}
			c = chain.NewBitChain(i+1, role, bits)
		} else {
			c, cerr = chain.NewFloatChain(i+1, role, tn, columns[i])
		}
		if cerr != nil {
			log.Fatalf("nuggetsdemo: column %q: %v", name, cerr)
		}
		chains = append(chains, c)
	}

	cfg := &dig.Config{
		NRow:       len(columns[0]),
		Threads:    *threads,
		MinSupport: *minSupport,
		MaxSupport: 1,
		MinLength:  1,
		MaxLength:  *maxLength,
		MaxResults: -1,
		TNorm:      tn,
		Verbose:    *verbose,
	}

	printed := 0
	storage := dig.NewCallbackStorage(func(r dig.Record) (any, error) {
		printed++
		fmt.Printf("%s support=%.3f focus=%d\n", clauseNames(r.Condition, names), r.Support, r.Focus)
		return nil, nil
	})

	digger, err := dig.NewDigger(predicates, chains, cfg, storage, nil)
	if err != nil {
		log.Fatalf("nuggetsdemo: %v", err)
	}

	if err := digger.RunMT(); err != nil {
		log.Fatalf("nuggetsdemo: run failed: %v", err)
	}

	log.Printf("nuggetsdemo: %d records emitted", printed)
}

func clauseNames(clause dig.Clause, names []string) string {
	parts := make([]string, len(clause))
	for i, id := range clause {
		parts[i] = names[id-1]
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func splitSet(csvList string) map[string]bool {
	set := make(map[string]bool)
	for _, name := range strings.Split(csvList, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			set[name] = true
		}
	}
	return set
}

// readCSV loads a header row plus numeric columns (0/1 or [0,1] reals),
// returning columns[i] as the i-th column's per-row values.
func readCSV(path string) (columns [][]float64, names []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("csv must have a header and at least one row")
	}

	names = records[0]
	columns = make([][]float64, len(names))
	for i := range columns {
		columns[i] = make([]float64, 0, len(records)-1)
	}

	for _, row := range records[1:] {
		for i, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row value %q: %w", cell, err)
			}
			columns[i] = append(columns[i], v)
		}
	}

	return columns, names, nil
}
