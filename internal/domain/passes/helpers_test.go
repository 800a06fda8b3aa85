package passes

import m "gooze.dev/pkg/purebundle/internal/model"

func ident(name string) *m.Ident {
	return m.NewIdent(name)
}

func callAt(start, end int, callee m.Node, args ...m.Node) *m.Call {
	c := m.NewCall(callee, args...)
	c.Loc = m.Span{Start: start, End: end}

	return c
}

func declare(name string, init m.Node) *m.VarDeclarator {
	return &m.VarDeclarator{Binding: ident(name), Init: init}
}

func arrowAt(start, end int, body m.Node, params ...string) *m.Arrow {
	return &m.Arrow{
		Base:   m.Base{Loc: m.Span{Start: start, End: end}},
		Head:   &m.Raw{Segments: []string{"() => "}},
		Params: params,
		Body:   body,
	}
}

func element(tag string) *m.Element {
	return &m.Element{Tag: tag, Body: &m.Raw{Segments: []string{"<" + tag + " />"}}}
}

func module(items ...m.Node) *m.Module {
	return &m.Module{Items: items}
}

func run(p Pass, mod *m.Module) (*m.Annotations, m.Stats) {
	notes := m.NewAnnotations()

	var stats m.Stats
	p.Apply(mod, notes, &stats)

	return notes, stats
}
