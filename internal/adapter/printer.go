package adapter

import (
	"bytes"
	"strings"

	m "gooze.dev/pkg/purebundle/internal/model"
)

// Print renders mod. Nodes that still match their parsed layout are written
// verbatim; synthesized or reshaped nodes are written in a canonical
// single-line form. Each pure annotation is emitted once, in front of the
// call that starts at the annotated offset, unless the source already carries
// a pure comment there.
func (a *TreeSitterAdapter) Print(mod *m.Module, notes *m.Annotations) []byte {
	p := &printer{notes: notes.Clone()}
	p.module(mod)

	return p.buf.Bytes()
}

type printer struct {
	buf   bytes.Buffer
	notes *m.Annotations
}

func (p *printer) write(s string) {
	p.buf.WriteString(s)
}

func (p *printer) module(mod *m.Module) {
	p.write(mod.Trivia)

	for i, item := range mod.Items {
		lead := item.Leading()

		if i > 0 && !strings.HasPrefix(lead, "\n") && (lead == "" || !mod.Items[i-1].Span().Valid()) {
			p.write("\n")
		}

		p.write(lead)
		p.node(item)
	}

	p.write(mod.Trailing)
}

// hasMarker reports whether the output already ends with a pure comment,
// in either the #__PURE__ or the @__PURE__ spelling.
func (p *printer) hasMarker() bool {
	tail := bytes.TrimRight(p.buf.Bytes(), " \t\r\n")
	if !bytes.HasSuffix(tail, []byte("*/")) {
		return false
	}

	start := bytes.LastIndex(tail, []byte("/*"))
	if start < 0 || start+2 > len(tail)-2 {
		return false
	}

	body := strings.TrimSpace(string(tail[start+2 : len(tail)-2]))

	return body == "#__PURE__" || body == "@__PURE__"
}

func (p *printer) annotate(call *m.Call) {
	span := call.Span()
	if !span.Valid() {
		return
	}

	if kind, ok := p.notes.Take(span.Start); ok && kind == m.AnnotationPure && !p.hasMarker() {
		p.write(m.PureMarker + " ")
	}
}

func (p *printer) node(n m.Node) {
	switch n := n.(type) {
	case nil:
		return
	case *m.Ident:
		p.write(n.Name)
		return
	case *m.Literal:
		p.write(n.Raw)
		return
	case *m.Raw:
		p.interleave(n.Segments, n.Children)
		return
	case *m.Call:
		p.annotate(n)
	}

	children := m.Children(n)
	gaps := n.Meta().Gaps

	if len(gaps) == len(children)+1 {
		p.interleave(gaps, children)
		return
	}

	if call, ok := n.(*m.Call); ok && p.appendedArgs(call, gaps, children) {
		return
	}

	p.canonical(n)
}

func (p *printer) interleave(gaps []string, children []m.Node) {
	for i, c := range children {
		if i < len(gaps) {
			p.write(gaps[i])
		}

		p.node(c)
	}

	for i := len(children); i < len(gaps); i++ {
		p.write(gaps[i])
	}
}

// appendedArgs prints a parsed call whose argument list only grew at the end,
// keeping the original layout and splicing the new arguments in before the
// closing parenthesis.
func (p *printer) appendedArgs(call *m.Call, gaps []string, children []m.Node) bool {
	if len(gaps) == 0 {
		return false
	}

	parsed := len(gaps) - 1

	fixed := 1
	if call.TypeArgs != nil {
		fixed++
	}

	if parsed < fixed || len(children) <= parsed {
		return false
	}

	last := gaps[len(gaps)-1]
	at, sep := 0, ", "

	if parsed == fixed {
		at = strings.LastIndex(last, ")")
		if at < 0 {
			return false
		}

		sep = ""
	}

	p.interleave(gaps[:parsed], children[:parsed])
	p.write(last[:at])
	p.write(sep)
	p.list(children[parsed:], ", ")
	p.write(last[at:])

	return true
}

func (p *printer) list(nodes []m.Node, sep string) {
	for i, n := range nodes {
		if i > 0 {
			p.write(sep)
		}

		p.node(n)
	}
}

//nolint:cyclop,funlen // One case per node kind.
func (p *printer) canonical(n m.Node) {
	switch n := n.(type) {
	case *m.Call:
		p.node(n.Callee)

		if n.TypeArgs != nil {
			p.node(n.TypeArgs)
		}

		p.write("(")
		p.list(n.Args, ", ")
		p.write(")")
	case *m.Arrow:
		if n.Head != nil {
			p.node(n.Head)
		} else {
			p.write("() => ")
		}

		p.node(n.Body)
	case *m.Member:
		p.node(n.Object)

		if n.Optional {
			p.write("?.")
		} else {
			p.write(".")
		}

		if n.Property != nil {
			p.node(n.Property)
		}
	case *m.Array:
		p.write("[")
		p.list(n.Elems, ", ")
		p.write("]")
	case *m.Object:
		if len(n.Props) == 0 {
			p.write("{}")
			return
		}

		p.write("{ ")
		p.list(n.Props, ", ")
		p.write(" }")
	case *m.Property:
		p.node(n.Key)

		if n.Kind == m.PropKeyValue {
			p.write(": ")
			p.node(n.Value)
		} else if n.Kind == m.PropAssign {
			p.write(" = ")
			p.node(n.Value)
		}
	case *m.Assign:
		op := n.Op
		if op == "" {
			op = "="
		}

		p.node(n.Target)
		p.write(" " + op + " ")
		p.node(n.Value)
	case *m.Paren:
		p.write("(")
		p.node(n.Expr)
		p.write(")")
	case *m.VarDeclarator:
		p.node(n.Binding)
		p.write(n.Annotation)

		if n.Init != nil {
			p.write(" = ")
			p.node(n.Init)
		}
	case *m.Import:
		p.importDecl(n)
	case *m.ImportSpecifier:
		p.importSpecifier(n)
	case *m.Element:
		p.node(n.Body)
	case *m.TypeArgs:
		if n.Text != "" {
			p.write(n.Text)
			return
		}

		p.write("<")
		p.list(n.Params, ", ")
		p.write(">")
	case *m.ObjectType:
		p.write("{ ")
		p.list(n.Members, "; ")
		p.write(" }")
	case *m.PropertySignature:
		p.node(n.Key)

		if n.Optional {
			p.write("?")
		}
	}
}

func (p *printer) importDecl(n *m.Import) {
	p.write("import ")

	if n.TypeOnly {
		p.write("type ")
	}

	var (
		named []m.Node
		parts int
	)

	for _, spec := range n.Specifiers {
		if spec.Kind == m.SpecNamed {
			named = append(named, spec)
			continue
		}

		if parts > 0 {
			p.write(", ")
		}

		p.node(spec)
		parts++
	}

	if len(named) > 0 {
		if parts > 0 {
			p.write(", ")
		}

		p.write("{ ")
		p.list(named, ", ")
		p.write(" }")
		parts++
	}

	if parts > 0 {
		p.write(" from ")
	}

	if n.Source != nil {
		p.node(n.Source)
	}

	p.write(";")
}

func (p *printer) importSpecifier(n *m.ImportSpecifier) {
	switch n.Kind {
	case m.SpecDefault:
		p.node(n.Local)
	case m.SpecNamespace:
		p.write("* as ")
		p.node(n.Local)
	case m.SpecNamed:
		if n.TypeOnly {
			p.write("type ")
		}

		if n.Imported != nil {
			p.node(n.Imported)
			p.write(" as ")
		}

		p.node(n.Local)
	}
}
