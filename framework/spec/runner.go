package spec

import (
	"golang.org/x/sync/errgroup"

	"github.com/launchdarkly/speccheck/framework"
)

const filteredOutReason = "excluded by filter parameters"

// RunOptions controls a suite run. The zero value runs every example, one at a time, and
// discards progress output.
type RunOptions struct {
	// Filter, if set, decides which examples run. The others get a skipped result.
	Filter framework.Filter

	// TestLogger receives progress for every example, in declaration order.
	TestLogger framework.TestLogger

	// Parallel is the maximum number of examples to run at once. Values below 2 mean the
	// examples run sequentially.
	Parallel int
}

type plannedExample struct {
	example *example
	id      framework.TestID
	chain   []*Scope
}

// Run executes every example in the suite, depth first in declaration order: the examples
// of a scope come before those of its nested scopes. There is exactly one result per example,
// in that same order.
//
// Run fails without running anything if a declaration was rejected while the suite was being
// built, such as a duplicate binding. After Run starts, the tree can no longer be changed.
func (s *Suite) Run(opts RunOptions) (framework.Results, error) {
	s.lock.Lock()
	if s.err != nil {
		err := s.err
		s.lock.Unlock()
		return framework.Results{}, err
	}
	s.started = true
	s.lock.Unlock()

	var plan []plannedExample
	s.root.collect(&plan)

	recorder := framework.NewRecorder(opts.TestLogger)
	if opts.Parallel < 2 {
		for _, p := range plan {
			recorder.Started(p.id)
			recorder.Record(runExample(p, opts.Filter))
		}
		return recorder.Results(), nil
	}

	results := make([]framework.TestResult, len(plan))
	done := make([]chan struct{}, len(plan))
	for i := range done {
		done[i] = make(chan struct{})
	}
	go func() {
		var g errgroup.Group
		g.SetLimit(opts.Parallel)
		for i, p := range plan {
			i, p := i, p
			g.Go(func() error {
				results[i] = runExample(p, opts.Filter)
				close(done[i])
				return nil
			})
		}
		_ = g.Wait()
	}()
	for i, p := range plan {
		<-done[i]
		recorder.Started(p.id)
		recorder.Record(results[i])
	}
	return recorder.Results(), nil
}

func (s *Scope) collect(plan *[]plannedExample) {
	chain := s.chain()
	for _, ex := range s.examples {
		*plan = append(*plan, plannedExample{
			example: ex,
			id:      s.ID().Plus(ex.description),
			chain:   chain,
		})
	}
	for _, child := range s.children {
		child.collect(plan)
	}
}

func runExample(p plannedExample, filter framework.Filter) framework.TestResult {
	if filter != nil && !filter(p.id) {
		return framework.SkippedResult(p.id, filteredOutReason)
	}
	if p.example.pending {
		reason := "pending"
		if p.example.pendingWhy != "" {
			reason += ": " + p.example.pendingWhy
		}
		return framework.SkippedResult(p.id, reason)
	}

	scope := p.example.scope
	context := framework.NewContext(p.id)
	return context.Run(func(c *framework.Context) {
		e := &E{
			context: c,
			example: p.example,
			cache:   newCache(scope.env, scope.Path()),
		}

		for _, s := range p.chain {
			for _, name := range s.env.order {
				if s.env.bindings[name].eager {
					e.Get(name)
				}
			}
		}
		if c.Failed() {
			c.Debug("an eager binding failed; the setup hooks and example body were not run")
			c.FailNow()
		}

		for _, s := range p.chain {
			for i, hook := range s.setup {
				hook(e)
				if c.Failed() {
					c.Debug("setup hook %d of %q failed; the example body was not run", i+1, s.Path())
					c.FailNow()
				}
			}
		}

		p.example.body(e)
	})
}
