package eval

import (
	"sort"
	"sync"
)

// ReadOnlyScope is the view of a scope available to evaluators.
type ReadOnlyScope interface {
	Get(name string) (Value, bool)
}

// Scope contains a set of named values. Names are case sensitive.
type Scope struct {
	variables map[string]Value
}

// NewScope initializes a new empty Scope.
func NewScope() *Scope {
	return &Scope{
		variables: make(map[string]Value),
	}
}

// NewScopeFrom builds a scope from raw Go values, see ValueOf.
func NewScopeFrom(values map[string]interface{}) *Scope {
	s := &Scope{
		variables: make(map[string]Value, len(values)),
	}
	for name, v := range values {
		s.variables[name] = ValueOf(v)
	}
	return s
}

// Set defines a name -> value pairing in the scope.
func (s *Scope) Set(name string, value Value) {
	s.variables[name] = value
}

// Get returns the value of 'name' and whether it is defined.
func (s *Scope) Get(name string) (Value, bool) {
	v, ok := s.variables[name]
	return v, ok
}

// Has returns whether or not the scope contains a definition for 'name'.
func (s *Scope) Has(name string) bool {
	_, ok := s.variables[name]
	return ok
}

// Names returns the defined names in sorted order.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.variables))
	for name := range s.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of defined names.
func (s *Scope) Len() int {
	return len(s.variables)
}

// Reset removes all definitions, keeping the allocated storage.
func (s *Scope) Reset() {
	for name := range s.variables {
		delete(s.variables, name)
	}
}

// ScopePool - pooling mechanism for Scope
// Scopes are reset when put back so a recalculation always starts empty.
type ScopePool struct {
	pool sync.Pool
}

// NewScopePool creates a new ScopePool
func NewScopePool() *ScopePool {
	return &ScopePool{
		pool: sync.Pool{
			New: func() interface{} {
				return NewScope()
			},
		},
	}
}

// Get - returns an empty scope from the pool
func (p *ScopePool) Get() *Scope {
	return p.pool.Get().(*Scope)
}

// Put - put used scope back to the pool
func (p *ScopePool) Put(scope *Scope) {
	scope.Reset()
	p.pool.Put(scope)
}
