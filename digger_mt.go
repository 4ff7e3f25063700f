// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dig

import (
	"log"
	"sync"
)

// mtTask is one ready DFS frame: a single index to process within a
// sorted ChainCollection. Frames are pushed onto a shared LIFO deque and
// popped by whichever worker wakes up next.
type mtTask struct {
	collection *ChainCollection
	index      int
	depth      int
}

// mtPool coordinates a worker pool over a shared LIFO deque with a
// mutex/condvar handoff: a worker blocks on the deque's condition
// variable while the deque is empty and other workers are still
// active, and the whole pool unwinds once the deque drains and nobody
// is working.
type mtPool struct {
	digger *Digger

	mu      sync.Mutex
	cond    *sync.Cond
	deque   []mtTask
	working int

	errOnce sync.Once
	err     error
}

func newMTPool(d *Digger) *mtPool {
	p := &mtPool{digger: d}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *mtPool) push(t mtTask) {
	p.mu.Lock()
	p.deque = append(p.deque, t)
	p.cond.Signal()
	p.mu.Unlock()
}

func (p *mtPool) pushMany(ts []mtTask) {
	if len(ts) == 0 {
		return
	}
	p.mu.Lock()
	p.deque = append(p.deque, ts...)
	p.cond.Broadcast()
	p.mu.Unlock()
}

// pop returns the next task to run, blocking while the deque is empty
// but other workers are still active. It reports false once the deque
// is empty and no worker is in flight, signalling pool shutdown.
func (p *mtPool) pop() (mtTask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.deque) == 0 && p.working > 0 {
		p.cond.Wait()
	}
	if len(p.deque) == 0 {
		p.cond.Broadcast() // wake siblings also waiting to observe shutdown
		return mtTask{}, false
	}

	last := len(p.deque) - 1
	t := p.deque[last]
	p.deque = p.deque[:last]
	p.working++
	return t, true
}

func (p *mtPool) done() {
	p.mu.Lock()
	p.working--
	p.cond.Broadcast()
	p.mu.Unlock()
}

func (p *mtPool) setErr(err error) {
	p.errOnce.Do(func() {
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
	})
}

func (p *mtPool) failed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err != nil
}

func (p *mtPool) worker(id int) {
	for {
		task, ok := p.pop()
		if !ok {
			return
		}
		if p.failed() || p.digger.progress.Cancelled() {
			p.done()
			continue
		}
		if err := p.process(task); err != nil {
			p.setErr(err)
		}
		p.done()
	}
}

// process runs one DFS frame body: redundancy/candidacy filtering,
// combine, storing, and — if the parent is still extendable — pushing
// the resulting child's own indices back onto the deque for any worker
// to pick up.
func (p *mtPool) process(task mtTask) error {
	d := p.digger
	parent := task.collection.At(task.index)

	deduced := d.tree.Deduce(parent.Clause())
	if DeducesItself(parent.Clause(), deduced) {
		return nil
	}

	var childChains []Chain
	var err error
	switch {
	case isExtendable(parent, d.cfg, d.storage):
		childChains, err = d.combine(task.collection, task.index, false, deduced)
	case task.collection.HasFoci():
		childChains, err = d.combine(task.collection, task.index, true, deduced)
	}
	if err != nil {
		return err
	}

	child := NewChainCollection(childChains)
	recurse, err := d.handleNode(parent, &child)
	if err != nil {
		return err
	}
	if !recurse {
		return nil
	}

	tasks := make([]mtTask, 0, child.ConditionCount())
	for i := 0; i < child.ConditionCount(); i++ {
		tasks = append(tasks, mtTask{collection: &child, index: i, depth: task.depth + 1})
	}
	p.pushMany(tasks)
	return nil
}

// RunMT executes the DFS using the configured worker count
// (cfg.Threads). A Threads value of 0 runs the single-threaded variant.
func (d *Digger) RunMT() error {
	if d.cfg.Threads <= 0 {
		return d.Run()
	}

	root, child := d.buildRoot()
	recurse, err := d.handleNode(root, child)
	if err != nil || !recurse {
		return err
	}

	pool := newMTPool(d)
	initial := make([]mtTask, 0, child.ConditionCount())
	for i := 0; i < child.ConditionCount(); i++ {
		initial = append(initial, mtTask{collection: child, index: i, depth: 1})
	}
	// The deque is seeded before any worker starts, so the first pop()
	// calls find tasks instead of an empty, all-idle deque.
	pool.mu.Lock()
	pool.deque = initial
	pool.mu.Unlock()

	var wg sync.WaitGroup
	for w := 0; w < d.cfg.Threads; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if d.cfg.Verbose {
				log.Printf("dig: worker %d starting", id)
			}
			pool.worker(id)
			if d.cfg.Verbose {
				log.Printf("dig: worker %d exiting", id)
			}
		}(w)
	}
	wg.Wait()

	return pool.err
}
