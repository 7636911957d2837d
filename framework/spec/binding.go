package spec

// Thunk computes the value of a binding. It is called at most once per example.
type Thunk func(e *E) interface{}

type binding struct {
	name  string
	thunk Thunk
	eager bool
}

// frame holds the bindings declared directly in one scope and points to the frame of the
// enclosing scope. Lookups walk outward, so an inner binding shadows an outer one.
type frame struct {
	parent   *frame
	bindings map[string]*binding
	order    []string
}

func newFrame(parent *frame) *frame {
	return &frame{parent: parent, bindings: make(map[string]*binding)}
}

func (f *frame) lookup(name string) *binding {
	for cur := f; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b
		}
	}
	return nil
}

func (f *frame) add(b *binding) bool {
	if _, exists := f.bindings[b.name]; exists {
		return false
	}
	f.bindings[b.name] = b
	f.order = append(f.order, b.name)
	return true
}

type cellState int

const (
	cellEmpty cellState = iota
	cellEvaluating
	cellDone
)

type cell struct {
	state cellState
	value interface{}
}

// cache memoizes binding values for a single example. Names are always resolved from the
// example's own scope, so a thunk in an outer scope sees inner overrides of the names it uses.
type cache struct {
	env       *frame
	scopePath string
	cells     map[string]*cell
	resolving []string
}

func newCache(env *frame, scopePath string) *cache {
	return &cache{env: env, scopePath: scopePath, cells: make(map[string]*cell)}
}

func (c *cache) get(e *E, name string) interface{} {
	b := c.env.lookup(name)
	if b == nil {
		panic(&UnresolvedBindingError{Scope: c.scopePath, Name: name})
	}
	cl := c.cells[name]
	if cl == nil {
		cl = &cell{}
		c.cells[name] = cl
	}
	switch cl.state {
	case cellDone:
		return cl.value
	case cellEvaluating:
		panic(&CyclicBindingError{Names: append(append([]string(nil), c.resolving...), name)})
	}

	cl.state = cellEvaluating
	c.resolving = append(c.resolving, name)
	defer func() {
		c.resolving = c.resolving[:len(c.resolving)-1]
		if cl.state == cellEvaluating {
			cl.state = cellEmpty
		}
	}()
	value := b.thunk(e)
	cl.value, cl.state = value, cellDone
	return value
}

func (c *cache) evaluated(name string) bool {
	cl := c.cells[name]
	return cl != nil && cl.state == cellDone
}
