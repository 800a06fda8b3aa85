package passes

import m "gooze.dev/pkg/purebundle/internal/model"

// annotatePureCalls marks call expressions in value positions as free of
// side effects so a minifier may drop them when the value is unused.
// Purity is inferred from shape alone: missing a call is acceptable, marking
// a call that must run is not.
type annotatePureCalls struct {
	notes  m.AnnotationSink
	marked map[int]struct{}
}

// NewAnnotatePureCalls returns the purity annotation pass.
func NewAnnotatePureCalls() Pass {
	return &annotatePureCalls{marked: make(map[int]struct{})}
}

func (p *annotatePureCalls) Name() m.PassName {
	return m.PassAnnotatePure
}

func (p *annotatePureCalls) Apply(mod *m.Module, notes m.AnnotationSink, stats *m.Stats) {
	p.notes = notes
	m.Walk(p, mod)
	stats.PureMarkers += len(p.marked)
}

func (p *annotatePureCalls) Visit(n m.Node) m.Node {
	switch n := n.(type) {
	case *m.Assign:
		// x = pureCall()
		// a.x = pureCall()
		p.mark(n.Value)
	case *m.Property:
		if n.Kind == m.PropKeyValue || n.Kind == m.PropAssign {
			p.mark(n.Value)
		}
	case *m.Array:
		for _, elem := range n.Elems {
			p.mark(elem)
		}
	case *m.VarDeclarator:
		if id, ok := n.Name(); ok && n.Init != nil && !references(n.Init, id.Name) {
			p.mark(n.Init)
		}
	case *m.Call:
		for _, arg := range n.Args {
			p.mark(arg)
		}
	}

	m.WalkChildren(p, n)

	return n
}

func (p *annotatePureCalls) mark(n m.Node) {
	call, ok := m.UnwrapParens(n).(*m.Call)
	if !ok || !call.Span().Valid() {
		return
	}

	offset := call.Span().Start
	p.notes.AddPure(offset)
	p.marked[offset] = struct{}{}
}

// referenceScan looks for a value reference to name. Property names, member
// names and type arguments are not references; an arrow function that binds
// the name as a parameter shadows it.
type referenceScan struct {
	name  string
	found bool
}

func references(root m.Node, name string) bool {
	s := &referenceScan{name: name}
	m.Walk(s, root)

	return s.found
}

func (s *referenceScan) Visit(n m.Node) m.Node {
	if s.found {
		return n
	}

	switch n := n.(type) {
	case *m.Ident:
		s.found = n.Name == s.name
		return n
	case *m.Arrow:
		if n.Binds(s.name) {
			return n
		}
	case *m.Member:
		m.Walk(s, n.Object)
		return n
	case *m.Property:
		if n.Kind == m.PropShorthand {
			m.Walk(s, n.Key)
			return n
		}

		if _, computed := n.Key.(*m.Raw); computed {
			m.Walk(s, n.Key)
		}

		m.Walk(s, n.Value)

		return n
	case *m.TypeArgs:
		return n
	}

	m.WalkChildren(s, n)

	return n
}
