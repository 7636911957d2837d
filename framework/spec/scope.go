package spec

import (
	"fmt"
	"strings"
	"sync"

	"github.com/launchdarkly/speccheck/framework"
)

// Hook is a setup callback. It runs before the body of every example in its scope and in
// all nested scopes.
type Hook func(e *E)

// Body is the code of one example.
type Body func(e *E)

// Suite owns a tree of scopes. The tree can only be changed until Run is first called.
type Suite struct {
	root    *Scope
	started bool
	err     error
	lock    sync.Mutex
}

// Scope is a node in the tree: a description, the bindings and setup hooks that apply to
// everything inside it, its own examples, and nested scopes.
type Scope struct {
	suite       *Suite
	parent      *Scope
	description string
	env         *frame
	setup       []Hook
	examples    []*example
	children    []*Scope
}

type example struct {
	scope       *Scope
	description string
	body        Body
	tags        map[string]bool
	pending     bool
	pendingWhy  string
}

// ExampleOption customizes an example declared with It.
type ExampleOption func(*example)

// Tags attaches metadata to an example. Setup hooks can check it with E.HasTag.
func Tags(tags ...string) ExampleOption {
	return func(ex *example) {
		for _, t := range tags {
			ex.tags[t] = true
		}
	}
}

// Pending marks an example as not yet runnable. It produces a skipped result.
func Pending(reason string) ExampleOption {
	return func(ex *example) {
		ex.pending = true
		ex.pendingWhy = reason
	}
}

func NewSuite(description string) *Suite {
	s := &Suite{}
	s.root = &Scope{suite: s, description: description, env: newFrame(nil)}
	return s
}

func (s *Suite) Root() *Scope {
	return s.root
}

func (s *Suite) checkOpen(scope *Scope, what string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started {
		return &StructureError{Scope: scope.Path(), Reason: fmt.Sprintf("cannot add %s after the suite has started running", what)}
	}
	return nil
}

func (s *Suite) recordError(err error) {
	s.lock.Lock()
	if s.err == nil {
		s.err = err
	}
	s.lock.Unlock()
}

// reject records a malformed declaration, which prevents the suite from running, and
// returns it.
func (s *Suite) reject(err error) error {
	s.recordError(err)
	return err
}

func (s *Scope) Description() string {
	return s.description
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

// ID returns the test identifier prefix for everything in this scope.
func (s *Scope) ID() framework.TestID {
	if s.parent == nil {
		return framework.TestID{Path: []string{s.description}}
	}
	return s.parent.ID().Plus(s.description)
}

// Path is the human-readable location of the scope, used in error messages.
func (s *Scope) Path() string {
	return s.ID().String()
}

// chain returns the scopes from the root down to this one.
func (s *Scope) chain() []*Scope {
	var ret []*Scope
	for cur := s; cur != nil; cur = cur.parent {
		ret = append(ret, cur)
	}
	for i, j := 0, len(ret)-1; i < j; i, j = i+1, j-1 {
		ret[i], ret[j] = ret[j], ret[i]
	}
	return ret
}

// Describe creates a nested scope.
func (s *Scope) Describe(description string) (*Scope, error) {
	if err := s.suite.checkOpen(s, "a scope"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, s.suite.reject(&StructureError{Scope: s.Path(), Reason: "a nested scope needs a description"})
	}
	child := &Scope{
		suite:       s.suite,
		parent:      s,
		description: description,
		env:         newFrame(s.env),
	}
	s.children = append(s.children, child)
	return child, nil
}

// Let declares a lazy binding, computed only if an example or hook asks for it.
func (s *Scope) Let(name string, thunk Thunk) error {
	return s.bind(name, thunk, false)
}

// LetEager declares a binding that is computed before the setup hooks of every example in
// the scope, whether or not anything refers to it.
func (s *Scope) LetEager(name string, thunk Thunk) error {
	return s.bind(name, thunk, true)
}

// Subject declares the binding returned by E.Subject.
func (s *Scope) Subject(thunk Thunk) error {
	return s.bind(subjectName, thunk, false)
}

func (s *Scope) bind(name string, thunk Thunk, eager bool) error {
	if err := s.suite.checkOpen(s, "a binding"); err != nil {
		return err
	}
	if name == "" || thunk == nil {
		return s.suite.reject(&StructureError{Scope: s.Path(), Reason: "a binding needs a name and a thunk"})
	}
	if !s.env.add(&binding{name: name, thunk: thunk, eager: eager}) {
		return s.suite.reject(&DuplicateBindingError{Scope: s.Path(), Name: name})
	}
	return nil
}

// Before appends a setup hook.
func (s *Scope) Before(hook Hook) error {
	if err := s.suite.checkOpen(s, "a setup hook"); err != nil {
		return err
	}
	if hook == nil {
		return s.suite.reject(&StructureError{Scope: s.Path(), Reason: "a setup hook cannot be nil"})
	}
	s.setup = append(s.setup, hook)
	return nil
}

// It appends an example. An empty description is replaced by "example #N", N being the
// position of the example within its scope.
func (s *Scope) It(description string, body Body, options ...ExampleOption) error {
	if err := s.suite.checkOpen(s, "an example"); err != nil {
		return err
	}
	if body == nil {
		return s.suite.reject(&StructureError{Scope: s.Path(), Reason: "an example needs a body"})
	}
	if description == "" {
		description = fmt.Sprintf("example #%d", len(s.examples)+1)
	}
	ex := &example{scope: s, description: description, body: body, tags: make(map[string]bool)}
	for _, o := range options {
		o(ex)
	}
	s.examples = append(s.examples, ex)
	return nil
}
