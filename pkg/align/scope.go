package align

import "sort"

// Def declares an alignment in a scope.
type Def struct {
	Name string
	Kind Kind
	// Column is the absolute column for Absolute and the offset for
	// Relative. Consensus ignores it.
	Column int
}

// Scope is a set of alignments visible to a subtree. Lookups fall back to
// the enclosing scope.
type Scope struct {
	parent *Scope
	defs   map[string]*Alignment
}

// NewScope creates a scope nested in parent (which may be nil). A relative
// definition uses the same-named alignment of the enclosing scope as its
// base, so nesting a relative alignment accumulates offsets.
func NewScope(parent *Scope, defs ...Def) *Scope {
	s := &Scope{parent: parent, defs: make(map[string]*Alignment, len(defs))}
	for _, d := range defs {
		switch d.Kind {
		case Absolute:
			s.defs[d.Name] = NewAbsolute(d.Name, d.Column)
		case Relative:
			s.defs[d.Name] = NewRelative(d.Name, parent.Lookup(d.Name), d.Column)
		default:
			s.defs[d.Name] = NewConsensus(d.Name)
		}
	}
	return s
}

// Lookup finds the innermost alignment named name, or nil.
func (s *Scope) Lookup(name string) *Alignment {
	for ; s != nil; s = s.parent {
		if a, ok := s.defs[name]; ok {
			return a
		}
	}
	return nil
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Names returns the names defined directly in s, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.defs))
	for n := range s.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close detaches the scope's relative alignments from their bases.
func (s *Scope) Close() {
	for _, a := range s.defs {
		a.Detach()
	}
}
