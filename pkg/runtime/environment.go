package runtime

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUndefinedVariable is wrapped by lookups and assignments that find no binding.
	ErrUndefinedVariable = errors.New("undefined variable")
	// ErrBindingMismatch is wrapped by GetAt and AssignAt when the frame at the
	// requested distance does not hold the name.
	ErrBindingMismatch = errors.New("binding table mismatch")
)

// Environment provides lexical scoping for Lox runtime values. Frames are
// shared by every closure, bound method and nested scope that references them.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define inserts or overwrites a binding in the current frame.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Assign updates an existing binding in the first frame where it appears.
// Assignment never creates a binding.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return fmt.Errorf("%w '%s'", ErrUndefinedVariable, name)
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w '%s'", ErrUndefinedVariable, name)
}

// Ancestor returns the frame exactly distance parent links away.
func (e *Environment) Ancestor(distance int) (*Environment, error) {
	env := e
	for hop := 0; hop < distance; hop++ {
		if env.parent == nil {
			return nil, fmt.Errorf("%w: no frame at distance %d", ErrBindingMismatch, distance)
		}
		env = env.parent
	}
	return env, nil
}

// GetAt reads name from the frame at distance without searching.
func (e *Environment) GetAt(distance int, name string) (Value, error) {
	env, err := e.Ancestor(distance)
	if err != nil {
		return nil, err
	}
	v, ok := env.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' not found at distance %d", ErrBindingMismatch, name, distance)
	}
	return v, nil
}

// AssignAt writes name in the frame at distance without searching.
func (e *Environment) AssignAt(distance int, name string, value Value) error {
	env, err := e.Ancestor(distance)
	if err != nil {
		return err
	}
	if _, ok := env.values[name]; !ok {
		return fmt.Errorf("%w: '%s' not found at distance %d", ErrBindingMismatch, name, distance)
	}
	env.values[name] = value
	return nil
}

// Keys returns the names bound in this frame, sorted.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend creates a new child scope of the current environment.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
