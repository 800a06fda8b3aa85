package passes

import (
	"maps"
	"slices"

	m "gooze.dev/pkg/purebundle/internal/model"
)

// accessControl wraps arrow functions bound to access-control names with the
// guard matching their naming convention:
//
//	const AcX = () => <AcY />
//
// becomes
//
//	const AcX = __mustAllOf(AcY)(() => <AcY />)
//
// Guard arguments are the access-control names the arrow references, sorted.
// The guard import is prepended to the module once at least one wrap happened.
type accessControl struct {
	opts     m.Options
	usesOne  bool
	usesAll  bool
	wrapped  int
	injected int
}

// NewAccessControl returns the naming-convention call-wrapping pass.
func NewAccessControl(opts m.Options) Pass {
	return &accessControl{opts: opts}
}

func (p *accessControl) Name() m.PassName {
	return m.PassAccessControl
}

func (p *accessControl) Apply(mod *m.Module, _ m.AnnotationSink, stats *m.Stats) {
	m.Walk(p, mod)
	stats.Wrapped += p.wrapped
	stats.ImportsInjected += p.injected
}

func (p *accessControl) Visit(n m.Node) m.Node {
	switch n := n.(type) {
	case *m.Module:
		m.WalkChildren(p, n)
		p.injectImport(n)

		return n
	case *m.VarDeclarator:
		// Declarators are roots: a wrapped arrow is never revisited.
		p.wrap(n)
		return n
	}

	m.WalkChildren(p, n)

	return n
}

func (p *accessControl) wrap(d *m.VarDeclarator) {
	id, ok := d.Name()
	if !ok {
		return
	}

	arrow, ok := d.Init.(*m.Arrow)
	if !ok {
		return
	}

	conv := Classify(id.Name)
	if conv == NotMatched {
		return
	}

	names := permissionNames(arrow)
	if len(names) == 0 {
		return
	}

	args := make([]m.Node, 0, len(names))
	for _, name := range names {
		args = append(args, m.NewIdent(name))
	}

	outer := m.NewCall(m.NewCall(m.NewIdent(conv.Alias()), args...), arrow)
	outer.Loc = arrow.Loc
	outer.Trivia, arrow.Trivia = arrow.Trivia, ""
	d.Init = outer

	switch conv {
	case OneOf:
		p.usesOne = true
	case AllOf:
		p.usesAll = true
	}

	p.wrapped++
}

// permissionNames collects the access-control names referenced inside an
// arrow: element tags, called names and identifiers passed to request hooks.
func permissionNames(arrow *m.Arrow) []string {
	names := make(map[string]struct{})

	m.Inspect(arrow, func(n m.Node) bool {
		switch n := n.(type) {
		case *m.Element:
			if n.TagIsIdent() && IsGuarded(n.Tag) {
				names[n.Tag] = struct{}{}
			}
		case *m.Call:
			callee, ok := n.Callee.(*m.Ident)
			if !ok {
				break
			}

			if IsGuarded(callee.Name) {
				names[callee.Name] = struct{}{}
			}

			if IsRequestHook(callee.Name) {
				for _, arg := range n.Args {
					if id, ok := arg.(*m.Ident); ok {
						names[id.Name] = struct{}{}
					}
				}
			}
		}

		return true
	})

	return slices.Sorted(maps.Keys(names))
}

func (p *accessControl) injectImport(mod *m.Module) {
	var specs []*m.ImportSpecifier

	if p.usesOne {
		specs = append(specs, m.NewNamedSpecifier(p.opts.OneOfGuard(), m.OneOfAlias))
	}

	if p.usesAll {
		specs = append(specs, m.NewNamedSpecifier(p.opts.AllOfGuard(), m.AllOfAlias))
	}

	if len(specs) == 0 {
		return
	}

	mod.Items = slices.Insert(mod.Items, 0, m.Node(m.NewImport(p.opts.Source(), specs...)))
	p.injected++
}
