package spec

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/launchdarkly/speccheck/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statuses(results framework.Results) []framework.Status {
	var ret []framework.Status
	for _, t := range results.Tests {
		ret = append(ret, t.Status)
	}
	return ret
}

func ids(results framework.Results) []string {
	var ret []string
	for _, t := range results.Tests {
		ret = append(ret, t.TestID.String())
	}
	return ret
}

func value(v interface{}) Thunk {
	return func(*E) interface{} { return v }
}

func mathSuite(t *testing.T, expectedSum int, extra func(d *DSL)) *Suite {
	suite := NewSuite("math")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Describe("addition", func(d *DSL) {
			d.Let("x", value(2))
			d.Let("y", value(3))
			d.It("adds", func(e *E) {
				assert.Equal(e, expectedSum, Get[int](e, "x")+Get[int](e, "y"))
			})
			if extra != nil {
				extra(d)
			}
		})
	}))
	return suite
}

func TestPassingExample(t *testing.T) {
	results, err := mathSuite(t, 5, nil).Run(RunOptions{})
	require.NoError(t, err)

	require.Len(t, results.Tests, 1)
	assert.Equal(t, framework.StatusPassed, results.Tests[0].Status)
	assert.Equal(t, "math/addition/adds", results.Tests[0].TestID.String())
	assert.True(t, results.OK())
}

func TestFailingExample(t *testing.T) {
	results, err := mathSuite(t, 6, nil).Run(RunOptions{})
	require.NoError(t, err)

	require.Len(t, results.Tests, 1)
	result := results.Tests[0]
	assert.Equal(t, framework.StatusFailed, result.Status)
	require.Len(t, result.Errors, 1)
	var failure *framework.AssertionFailure
	assert.True(t, errors.As(result.Errors[0], &failure))
	assert.False(t, results.OK())
}

func TestExampleThatPanicsIsErroredWithoutAffectingSiblings(t *testing.T) {
	suite := mathSuite(t, 5, func(d *DSL) {
		d.It("explodes", func(e *E) {
			panic("boom")
		})
	})
	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []framework.Status{framework.StatusPassed, framework.StatusErrored}, statuses(results))
	var unhandled *framework.UnhandledError
	require.True(t, errors.As(results.Tests[1].Errors[0], &unhandled))
	assert.Equal(t, "boom", unhandled.Value)
	assert.Len(t, results.Failures, 1)
}

func TestDuplicateBindingIsRejectedAtDeclaration(t *testing.T) {
	suite := NewSuite("root")
	require.NoError(t, suite.Root().Let("x", value(1)))

	err := suite.Root().Let("x", value(2))
	var dup *DuplicateBindingError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "x", dup.Name)

	err = suite.Root().LetEager("x", value(3))
	assert.True(t, errors.As(err, &dup))

	_, runErr := suite.Run(RunOptions{})
	assert.True(t, errors.As(runErr, &dup))
}

func TestDuplicateBindingInDSLPreventsRun(t *testing.T) {
	suite := NewSuite("root")
	ran := false
	err := Build(suite.Root(), func(d *DSL) {
		d.Let("x", value(1))
		d.Let("x", value(2))
		d.It("never runs", func(*E) { ran = true })
	})
	var dup *DuplicateBindingError
	require.True(t, errors.As(err, &dup))

	_, runErr := suite.Run(RunOptions{})
	assert.Equal(t, err, runErr)
	assert.False(t, ran)
}

func TestRegisteringAfterRunIsAStructureError(t *testing.T) {
	suite := mathSuite(t, 5, nil)
	_, err := suite.Run(RunOptions{})
	require.NoError(t, err)

	var structureErr *StructureError
	_, err = suite.Root().Describe("late")
	assert.True(t, errors.As(err, &structureErr))
	assert.True(t, errors.As(suite.Root().Let("late", value(1)), &structureErr))
	assert.True(t, errors.As(suite.Root().Before(func(*E) {}), &structureErr))
	assert.True(t, errors.As(suite.Root().It("late", func(*E) {}), &structureErr))
}

func TestChildBindingsShadowParentBindings(t *testing.T) {
	seen := make(map[string]int)
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Let("x", value(1))
		d.Let("y", value(10))
		d.Let("sum", func(e *E) interface{} { return Get[int](e, "x") + Get[int](e, "y") })
		d.It("outer", func(e *E) { seen["outer"] = Get[int](e, "sum") })
		d.Describe("inner", func(d *DSL) {
			d.Let("x", value(2))
			d.It("inner", func(e *E) { seen["inner"] = Get[int](e, "sum") })
		})
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, map[string]int{"outer": 11, "inner": 12}, seen)
}

func TestBindingsAreMemoizedPerExample(t *testing.T) {
	type thing struct{ n int }
	created := 0
	var seen []*thing

	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Let("thing", func(*E) interface{} {
			created++
			return &thing{n: created}
		})
		for i := 0; i < 2; i++ {
			d.It(fmt.Sprintf("example %d", i), func(e *E) {
				first := Get[*thing](e, "thing")
				assert.Same(e, first, Get[*thing](e, "thing"))
				seen = append(seen, first)
			})
		}
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, 2, created)
	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
}

func TestSetupHooksRunOutermostFirst(t *testing.T) {
	var order []string
	suite := NewSuite("A")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Before(func(*E) { order = append(order, "A") })
		d.Describe("B", func(d *DSL) {
			d.Before(func(*E) { order = append(order, "B") })
			d.Describe("C", func(d *DSL) {
				d.Before(func(*E) { order = append(order, "C1") })
				d.Before(func(*E) { order = append(order, "C2") })
				d.It("first", func(*E) { order = append(order, "body1") })
				d.It("second", func(*E) { order = append(order, "body2") })
			})
		})
	}))

	_, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"A", "B", "C1", "C2", "body1",
		"A", "B", "C1", "C2", "body2",
	}, order)
}

func TestEagerBindingsRunBeforeSetupEvenIfUnreferenced(t *testing.T) {
	var order []string
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Before(func(*E) { order = append(order, "outer before") })
		d.Let("lazy", func(*E) interface{} {
			order = append(order, "lazy")
			return nil
		})
		d.Describe("inner", func(d *DSL) {
			d.LetBang("eager", func(*E) interface{} {
				order = append(order, "eager")
				return nil
			})
			d.It("checks", func(e *E) {
				assert.True(e, e.Evaluated("eager"))
				assert.False(e, e.Evaluated("lazy"))
			})
		})
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, []string{"eager", "outer before"}, order)
}

func TestSetupFailureSkipsBodyAndContinues(t *testing.T) {
	bodyRan := false
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Describe("broken", func(d *DSL) {
			d.Before(func(e *E) { assert.Fail(e, "setup went wrong") })
			d.It("body", func(*E) { bodyRan = true })
		})
		d.Describe("erroring", func(d *DSL) {
			d.Before(func(*E) { panic(errors.New("no database")) })
			d.It("body", func(*E) { bodyRan = true })
		})
		d.Describe("fine", func(d *DSL) {
			d.It("body", func(*E) {})
		})
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.False(t, bodyRan)
	assert.Equal(t, []framework.Status{
		framework.StatusFailed,
		framework.StatusErrored,
		framework.StatusPassed,
	}, statuses(results))
}

func TestUnresolvedBinding(t *testing.T) {
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Let("a", func(e *E) interface{} { return e.Get("missing") })
		d.It("uses a", func(e *E) { e.Get("a") })
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	require.Len(t, results.Tests, 1)
	assert.Equal(t, framework.StatusErrored, results.Tests[0].Status)
	var unresolved *UnresolvedBindingError
	require.True(t, errors.As(results.Tests[0].Errors[0], &unresolved))
	assert.Equal(t, "missing", unresolved.Name)
}

func TestCyclicBinding(t *testing.T) {
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Let("a", func(e *E) interface{} { return e.Get("b") })
		d.Let("b", func(e *E) interface{} { return e.Get("a") })
		d.It("uses a", func(e *E) { e.Get("a") })
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	var cyclic *CyclicBindingError
	require.True(t, errors.As(results.Tests[0].Errors[0], &cyclic))
	assert.Equal(t, []string{"a", "b", "a"}, cyclic.Names)
}

func TestWrongBindingTypeIsErrored(t *testing.T) {
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Let("name", value("widget"))
		d.It("reads an int", func(e *E) { Get[int](e, "name") })
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, framework.StatusErrored, results.Tests[0].Status)
}

func TestSubjectAndTags(t *testing.T) {
	var hookRuns []string
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Subject(value("the subject"))
		d.Before(func(e *E) {
			if e.HasTag("skip_before") {
				return
			}
			hookRuns = append(hookRuns, e.Description())
		})
		d.It("tagged", func(e *E) {
			assert.Equal(e, "the subject", e.Subject())
		}, Tags("skip_before"))
		d.It("untagged", func(*E) {})
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, []string{"untagged"}, hookRuns)
}

func TestAnonymousExamplesAreNumbered(t *testing.T) {
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.It("", func(*E) {})
		d.It("", func(*E) {})
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"root/example #1", "root/example #2"}, ids(results))
}

func TestExamplesRunBeforeNestedScopes(t *testing.T) {
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Describe("first", func(d *DSL) {
			d.It("a", func(*E) {})
		})
		d.It("own", func(*E) {})
		d.Describe("second", func(d *DSL) {
			d.It("b", func(*E) {})
		})
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"root/own", "root/first/a", "root/second/b"}, ids(results))
}

func TestFilteredAndPendingExamplesAreSkipped(t *testing.T) {
	ran := false
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.It("wanted", func(*E) {})
		d.It("unwanted", func(*E) { ran = true })
		d.It("later", func(*E) { ran = true }, Pending("not written yet"))
	}))

	results, err := suite.Run(RunOptions{
		Filter: func(id framework.TestID) bool { return id.String() != "root/unwanted" },
	})
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, []framework.Status{
		framework.StatusPassed,
		framework.StatusSkipped,
		framework.StatusSkipped,
	}, statuses(results))
	assert.Equal(t, filteredOutReason, results.Tests[1].SkipReason)
	assert.Equal(t, "pending: not written yet", results.Tests[2].SkipReason)
	assert.True(t, results.OK())
}

func TestSkipAndDeferFromExample(t *testing.T) {
	var cleanups []string
	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.It("skips", func(e *E) {
			e.Defer(func() { cleanups = append(cleanups, "first") })
			e.Defer(func() { cleanups = append(cleanups, "second") })
			e.SkipWithReason("not today")
		})
	}))

	results, err := suite.Run(RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, framework.StatusSkipped, results.Tests[0].Status)
	assert.Equal(t, "not today", results.Tests[0].SkipReason)
	assert.Equal(t, []string{"second", "first"}, cleanups)
}

func TestParallelRunKeepsOrderAndIsolation(t *testing.T) {
	const count = 20
	var lock sync.Mutex
	seen := make(map[int]int)

	suite := NewSuite("root")
	require.NoError(t, Build(suite.Root(), func(d *DSL) {
		d.Let("box", func(*E) interface{} { return new(int) })
		for i := 0; i < count; i++ {
			n := i
			d.It(fmt.Sprintf("%02d", n), func(e *E) {
				box := Get[*int](e, "box")
				*box += n
				lock.Lock()
				seen[n] = *box
				lock.Unlock()
				if n%5 == 0 {
					assert.Fail(e, "multiple of five")
				}
			})
		}
	}))

	results, err := suite.Run(RunOptions{Parallel: 4})
	require.NoError(t, err)
	require.Len(t, results.Tests, count)
	for i, r := range results.Tests {
		assert.Equal(t, fmt.Sprintf("root/%02d", i), r.TestID.String())
		assert.Equal(t, i%5 == 0, r.Status == framework.StatusFailed)
		assert.Equal(t, i, seen[i])
	}
	assert.Len(t, results.Failures, 4)
}
