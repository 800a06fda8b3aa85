package passes

import (
	"strings"

	m "gooze.dev/pkg/purebundle/internal/model"
)

const whitespace = " \t\r\n"

// elideSideImports drops import declarations that bind nothing. Such imports
// only exist for their side effects, which a bundled module no longer needs.
type elideSideImports struct {
	removed int
}

// NewElideSideImports returns the dead-import elision pass.
func NewElideSideImports() Pass {
	return &elideSideImports{}
}

func (p *elideSideImports) Name() m.PassName {
	return m.PassElideSideImports
}

func (p *elideSideImports) Apply(mod *m.Module, _ m.AnnotationSink, stats *m.Stats) {
	m.Walk(p, mod)
	stats.ImportsElided += p.removed
}

func (p *elideSideImports) Visit(n m.Node) m.Node {
	m.WalkChildren(p, n)

	mod, ok := n.(*m.Module)
	if !ok {
		return n
	}

	kept := make([]m.Node, 0, len(mod.Items))

	// A run of removed imports hands its leading text to the next kept item,
	// so the layout before the run and any comments inside it survive.
	var (
		carry   string
		pending bool
	)

	for _, item := range mod.Items {
		if imp, ok := item.(*m.Import); ok && len(imp.Specifiers) == 0 {
			p.removed++

			if pending {
				carry += strings.TrimLeft(item.Leading(), whitespace)
			} else {
				carry, pending = item.Leading(), true
			}

			continue
		}

		if pending {
			item.Meta().Trivia = carry + strings.TrimLeft(item.Leading(), whitespace)
			carry, pending = "", false
		}

		kept = append(kept, item)
	}

	if pending {
		mod.Trailing = carry + strings.TrimLeft(mod.Trailing, whitespace)
	}

	mod.Items = kept

	return n
}
