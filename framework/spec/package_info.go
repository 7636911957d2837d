// Package spec implements a declarative test runner in the style of RSpec: nested scopes
// created with Describe, named fixtures declared with Let and LetEager, setup hooks declared
// with Before, and examples declared with It.
//
// The tree is declared first and then executed. Every example gets a fresh binding cache,
// so a fixture computed for one example is never seen by another. Before running the body,
// the runner forces the eager bindings and then calls the setup hooks of every enclosing
// scope, outermost first, in the order they were declared.
//
// Example bodies, hooks and binding thunks all receive an *E, which can be passed to the
// testify assert and require packages:
//
//	suite := spec.NewSuite("math")
//	err := spec.Build(suite.Root(), func(d *spec.DSL) {
//		d.Describe("addition", func(d *spec.DSL) {
//			d.Let("x", func(*spec.E) interface{} { return 2 })
//			d.Let("y", func(*spec.E) interface{} { return 3 })
//			d.It("adds", func(e *spec.E) {
//				assert.Equal(e, 5, spec.Get[int](e, "x")+spec.Get[int](e, "y"))
//			})
//		})
//	})
//	results, err := suite.Run(spec.RunOptions{})
package spec
