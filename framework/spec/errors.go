package spec

import (
	"fmt"
	"strings"
)

// StructureError means the scope tree was declared incorrectly, for instance by adding to it
// after the suite started running.
type StructureError struct {
	Scope  string
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("invalid declaration in %q: %s", e.Scope, e.Reason)
}

// DuplicateBindingError means the same name was bound twice in one scope. Binding a name
// that an enclosing scope already binds is allowed and shadows the outer binding.
type DuplicateBindingError struct {
	Scope string
	Name  string
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("%q is already bound in %q", e.Name, e.Scope)
}

// UnresolvedBindingError means an example referred to a name that no enclosing scope binds.
type UnresolvedBindingError struct {
	Scope string
	Name  string
}

func (e *UnresolvedBindingError) Error() string {
	return fmt.Sprintf("no binding named %q is visible from %q", e.Name, e.Scope)
}

// CyclicBindingError means a binding depends on its own value.
type CyclicBindingError struct {
	Names []string
}

func (e *CyclicBindingError) Error() string {
	return "binding cycle: " + strings.Join(e.Names, " -> ")
}
