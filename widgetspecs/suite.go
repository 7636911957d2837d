package widgetspecs

import (
	"github.com/launchdarkly/speccheck/framework"
	"github.com/launchdarkly/speccheck/framework/spec"
)

// NewTestSuite declares all of the bundled specs.
func NewTestSuite(env *Environment) (*spec.Suite, error) {
	suite := spec.NewSuite("widgets")
	err := spec.Build(suite.Root(), func(d *spec.DSL) {
		d.Describe("WidgetController", func(d *spec.DSL) { DoWidgetControllerTests(d, env) })
		d.Describe("search", func(d *spec.DSL) { DoSearchRequestTests(d, env) })
		d.Describe("MyModel", DoModelTests)
	})
	return suite, err
}

func RunTestSuite(env *Environment, opts spec.RunOptions) (framework.Results, error) {
	suite, err := NewTestSuite(env)
	if err != nil {
		return framework.Results{}, err
	}
	return suite.Run(opts)
}
