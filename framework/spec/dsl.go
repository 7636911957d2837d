package spec

// DSL is a convenience wrapper for declaring a scope tree in nested blocks, without checking
// an error after every call.
//
// The first declaration error is kept and returned by Build. It is also remembered by the
// suite, so that Suite.Run refuses to start. Once an error has occurred, the remaining
// declarations are ignored.
type DSL struct {
	scope *Scope
	err   *error
}

// Build calls fn with a DSL that declares things in the given scope.
func Build(scope *Scope, fn func(d *DSL)) error {
	var err error
	fn(&DSL{scope: scope, err: &err})
	if err != nil {
		scope.suite.recordError(err)
	}
	return err
}

// Scope returns the scope that this DSL declares things in.
func (d *DSL) Scope() *Scope {
	return d.scope
}

// Err returns the first declaration error so far, if any.
func (d *DSL) Err() error {
	return *d.err
}

func (d *DSL) do(action func() error) {
	if *d.err != nil {
		return
	}
	if err := action(); err != nil {
		*d.err = err
	}
}

// Describe declares a nested scope and calls fn to declare its contents.
func (d *DSL) Describe(description string, fn func(d *DSL)) {
	d.do(func() error {
		child, err := d.scope.Describe(description)
		if err != nil {
			return err
		}
		fn(&DSL{scope: child, err: d.err})
		return nil
	})
}

// Context is the same as Describe. By convention it is used for scopes that describe a
// situation ("as JSON", "with invalid params") rather than a thing.
func (d *DSL) Context(description string, fn func(d *DSL)) {
	d.Describe(description, fn)
}

func (d *DSL) Let(name string, thunk Thunk) {
	d.do(func() error { return d.scope.Let(name, thunk) })
}

// LetBang declares an eager binding, like RSpec's let!.
func (d *DSL) LetBang(name string, thunk Thunk) {
	d.do(func() error { return d.scope.LetEager(name, thunk) })
}

func (d *DSL) Subject(thunk Thunk) {
	d.do(func() error { return d.scope.Subject(thunk) })
}

func (d *DSL) Before(hook Hook) {
	d.do(func() error { return d.scope.Before(hook) })
}

func (d *DSL) It(description string, body Body, options ...ExampleOption) {
	d.do(func() error { return d.scope.It(description, body, options...) })
}
