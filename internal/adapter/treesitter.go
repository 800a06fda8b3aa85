package adapter

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	m "gooze.dev/pkg/purebundle/internal/model"
)

// ErrSyntax is returned for sources that do not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// SyntaxAdapter converts between source text and the tree model so the domain
// layer never sees a concrete parser.
type SyntaxAdapter interface {
	// Parse builds a module from src using the grammar for dialect.
	Parse(ctx context.Context, dialect m.Dialect, src []byte) (*m.Module, error)

	// Print renders a module, emitting the annotations recorded for it.
	Print(mod *m.Module, notes *m.Annotations) []byte
}

// TreeSitterAdapter is the SyntaxAdapter backed by tree-sitter grammars.
// It is safe for concurrent use: every Parse call owns its parser.
type TreeSitterAdapter struct{}

// NewTreeSitterAdapter constructs a TreeSitterAdapter.
func NewTreeSitterAdapter() *TreeSitterAdapter {
	return &TreeSitterAdapter{}
}

func languageFor(dialect m.Dialect) (*sitter.Language, error) {
	switch dialect {
	case m.DialectTSX:
		return tsx.GetLanguage(), nil
	case m.DialectTypeScript:
		return typescript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// Parse converts src into a module. Any error or missing node in the
// tree-sitter output fails the whole file with ErrSyntax.
func (a *TreeSitterAdapter) Parse(ctx context.Context, dialect m.Dialect, src []byte) (*m.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lang, err := languageFor(dialect)
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrSyntax)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: empty tree", ErrSyntax)
	}

	if root.HasError() {
		if bad := firstError(root); bad != nil {
			pos := bad.StartPoint()
			return nil, fmt.Errorf("%w at %d:%d", ErrSyntax, pos.Row+1, pos.Column+1)
		}

		return nil, ErrSyntax
	}

	b := &builder{src: src}

	return b.module(root), nil
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}

		if bad := firstError(child); bad != nil {
			return bad
		}
	}

	return nil
}

// builder converts a tree-sitter tree into model nodes. Kinds the passes care
// about become structural nodes; everything else becomes Raw text with the
// structural descendants embedded.
type builder struct {
	src []byte
}

func (b *builder) span(n *sitter.Node) m.Span {
	return m.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func (b *builder) base(n *sitter.Node) m.Base {
	return m.Base{Loc: b.span(n)}
}

func (b *builder) text(n *sitter.Node) string {
	return n.Content(b.src)
}

// gaps slices the source text of span around the given children.
func (b *builder) gaps(span m.Span, children []m.Node) []string {
	out := make([]string, 0, len(children)+1)
	pos := span.Start

	for _, c := range children {
		cs := c.Span()
		out = append(out, string(b.src[pos:cs.Start]))
		pos = cs.End
	}

	return append(out, string(b.src[pos:span.End]))
}

// frame records the verbatim layout of a freshly built structural node.
func (b *builder) frame(n m.Node) m.Node {
	n.Meta().Gaps = b.gaps(n.Span(), m.Children(n))
	return n
}

func (b *builder) module(root *sitter.Node) *m.Module {
	mod := &m.Module{Base: b.base(root)}
	prev := 0

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)

		switch child.Type() {
		case "comment":
			continue
		case "hash_bang_line":
			if len(mod.Items) == 0 {
				mod.Trivia = string(b.src[prev:child.EndByte()])
				prev = int(child.EndByte())
			}

			continue
		}

		item := b.node(child)
		item.Meta().Trivia = string(b.src[prev:child.StartByte()])
		mod.Items = append(mod.Items, item)
		prev = int(child.EndByte())
	}

	mod.Trailing = string(b.src[prev:])

	return mod
}

// node converts n to a structural node where possible and to Raw otherwise.
func (b *builder) node(n *sitter.Node) m.Node {
	if s := b.structural(n); s != nil {
		return s
	}

	return b.raw(n)
}

//nolint:cyclop // One case per mapped grammar kind.
func (b *builder) structural(n *sitter.Node) m.Node {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return b.ident(n)
	case "string", "number", "true", "false", "null", "regex":
		return b.literal(n)
	case "template_string":
		if hasChildOfType(n, "template_substitution") {
			return nil
		}

		return b.literal(n)
	case "call_expression":
		return b.call(n)
	case "arrow_function":
		return b.arrow(n)
	case "member_expression":
		return b.member(n)
	case "array":
		return b.array(n)
	case "object", "object_pattern":
		return b.object(n)
	case "assignment_expression", "augmented_assignment_expression":
		return b.assign(n)
	case "parenthesized_expression":
		return b.paren(n)
	case "variable_declarator":
		return b.declarator(n)
	case "import_statement":
		return b.importDecl(n)
	case "jsx_element", "jsx_self_closing_element":
		return b.element(n)
	default:
		return nil
	}
}

func (b *builder) raw(n *sitter.Node) *m.Raw {
	r := &m.Raw{Base: b.base(n)}
	b.collect(n, 0, int(n.ChildCount()), &r.Children)
	r.Segments = b.gaps(r.Loc, r.Children)

	return r
}

// collect gathers the structural descendants of children [from, to) of n.
func (b *builder) collect(n *sitter.Node, from, to int, out *[]m.Node) {
	for i := from; i < to; i++ {
		child := n.Child(i)

		if s := b.structural(child); s != nil {
			*out = append(*out, s)
			continue
		}

		b.collect(child, 0, int(child.ChildCount()), out)
	}
}

func (b *builder) ident(n *sitter.Node) *m.Ident {
	return &m.Ident{Base: b.base(n), Name: b.text(n)}
}

func (b *builder) literal(n *sitter.Node) *m.Literal {
	return &m.Literal{Base: b.base(n), Raw: b.text(n)}
}

func (b *builder) namedChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() != "comment" {
			out = append(out, child)
		}
	}

	return out
}

func hasChildOfType(n *sitter.Node, kind string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == kind {
			return true
		}
	}

	return false
}

func (b *builder) call(n *sitter.Node) m.Node {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")

	// Tagged templates carry a template string instead of an argument list.
	if fn == nil || args == nil || args.Type() != "arguments" {
		return nil
	}

	call := &m.Call{Base: b.base(n), Callee: b.node(fn)}

	if ta := n.ChildByFieldName("type_arguments"); ta != nil {
		call.TypeArgs = b.typeArgs(ta)
	}

	for _, arg := range b.namedChildren(args) {
		call.Args = append(call.Args, b.node(arg))
	}

	return b.frame(call)
}

func (b *builder) typeArgs(n *sitter.Node) *m.TypeArgs {
	ta := &m.TypeArgs{Base: b.base(n), Text: b.text(n)}

	for _, param := range b.namedChildren(n) {
		if param.Type() == "object_type" {
			ta.Params = append(ta.Params, b.objectType(param))
			continue
		}

		ta.Params = append(ta.Params, b.raw(param))
	}

	b.frame(ta)

	return ta
}

func (b *builder) objectType(n *sitter.Node) *m.ObjectType {
	obj := &m.ObjectType{Base: b.base(n)}

	for _, member := range b.namedChildren(n) {
		if member.Type() != "property_signature" {
			obj.Members = append(obj.Members, b.raw(member))
			continue
		}

		sig := &m.PropertySignature{Base: b.base(member), Optional: hasChildOfType(member, "?")}

		name := member.ChildByFieldName("name")
		if name == nil {
			obj.Members = append(obj.Members, b.raw(member))
			continue
		}

		sig.Key = b.key(name)
		obj.Members = append(obj.Members, b.frame(sig))
	}

	b.frame(obj)

	return obj
}

// key converts a property name. Plain names become identifiers; computed
// names stay raw.
func (b *builder) key(n *sitter.Node) m.Node {
	switch n.Type() {
	case "property_identifier", "private_property_identifier", "identifier":
		return b.ident(n)
	default:
		return b.node(n)
	}
}

func (b *builder) arrow(n *sitter.Node) m.Node {
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	head := &m.Raw{Base: m.Base{Loc: m.Span{Start: int(n.StartByte()), End: int(body.StartByte())}}}

	bodyIndex := int(n.ChildCount())

	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).StartByte() >= body.StartByte() {
			bodyIndex = i
			break
		}
	}

	b.collect(n, 0, bodyIndex, &head.Children)
	head.Segments = b.gaps(head.Loc, head.Children)

	arrow := &m.Arrow{Base: b.base(n), Head: head, Body: b.node(body)}

	if p := n.ChildByFieldName("parameter"); p != nil {
		arrow.Params = b.bindings(p, nil)
	} else if ps := n.ChildByFieldName("parameters"); ps != nil {
		arrow.Params = b.bindings(ps, nil)
	}

	return b.frame(arrow)
}

// bindings lists the names a parameter pattern declares. Default values and
// type annotations are skipped.
func (b *builder) bindings(n *sitter.Node, names []string) []string {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return append(names, b.text(n))
	case "required_parameter", "optional_parameter":
		if p := n.ChildByFieldName("pattern"); p != nil {
			return b.bindings(p, names)
		}
	case "assignment_pattern", "object_assignment_pattern":
		if left := n.ChildByFieldName("left"); left != nil {
			return b.bindings(left, names)
		}
	case "pair_pattern":
		if value := n.ChildByFieldName("value"); value != nil {
			return b.bindings(value, names)
		}
	case "formal_parameters", "object_pattern", "array_pattern", "rest_pattern":
		for _, child := range b.namedChildren(n) {
			names = b.bindings(child, names)
		}
	}

	return names
}

func (b *builder) member(n *sitter.Node) m.Node {
	obj := n.ChildByFieldName("object")
	prop := n.ChildByFieldName("property")

	if obj == nil || prop == nil {
		return nil
	}

	switch prop.Type() {
	case "property_identifier", "private_property_identifier":
	default:
		return nil
	}

	member := &m.Member{
		Base:     b.base(n),
		Object:   b.node(obj),
		Property: b.ident(prop),
		Optional: hasChildOfType(n, "optional_chain"),
	}

	return b.frame(member)
}

func (b *builder) array(n *sitter.Node) m.Node {
	arr := &m.Array{Base: b.base(n)}

	for _, elem := range b.namedChildren(n) {
		arr.Elems = append(arr.Elems, b.node(elem))
	}

	return b.frame(arr)
}

func (b *builder) object(n *sitter.Node) m.Node {
	obj := &m.Object{Base: b.base(n)}

	for _, child := range b.namedChildren(n) {
		obj.Props = append(obj.Props, b.property(child))
	}

	return b.frame(obj)
}

func (b *builder) property(n *sitter.Node) m.Node {
	switch n.Type() {
	case "pair", "pair_pattern":
		key := n.ChildByFieldName("key")
		value := n.ChildByFieldName("value")

		if key == nil || value == nil {
			return b.raw(n)
		}

		return b.frame(&m.Property{Base: b.base(n), Kind: m.PropKeyValue, Key: b.key(key), Value: b.node(value)})
	case "shorthand_property_identifier", "shorthand_property_identifier_pattern":
		return b.frame(&m.Property{Base: b.base(n), Kind: m.PropShorthand, Key: b.ident(n)})
	case "object_assignment_pattern":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")

		if left == nil || right == nil {
			return b.raw(n)
		}

		return b.frame(&m.Property{Base: b.base(n), Kind: m.PropAssign, Key: b.node(left), Value: b.node(right)})
	default:
		return b.node(n)
	}
}

func (b *builder) assign(n *sitter.Node) m.Node {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	if left == nil || right == nil {
		return nil
	}

	op := "="
	if operator := n.ChildByFieldName("operator"); operator != nil {
		op = b.text(operator)
	}

	return b.frame(&m.Assign{Base: b.base(n), Target: b.node(left), Op: op, Value: b.node(right)})
}

func (b *builder) paren(n *sitter.Node) m.Node {
	inner := b.namedChildren(n)
	if len(inner) != 1 {
		return nil
	}

	return b.frame(&m.Paren{Base: b.base(n), Expr: b.node(inner[0])})
}

func (b *builder) declarator(n *sitter.Node) m.Node {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}

	decl := &m.VarDeclarator{Base: b.base(n), Binding: b.node(name)}

	if typ := n.ChildByFieldName("type"); typ != nil {
		decl.Annotation = b.text(typ)
	}

	if value := n.ChildByFieldName("value"); value != nil {
		decl.Init = b.node(value)
	}

	return b.frame(decl)
}

func (b *builder) importDecl(n *sitter.Node) m.Node {
	if hasChildOfType(n, "import_require_clause") {
		return nil
	}

	source := n.ChildByFieldName("source")
	if source == nil {
		return nil
	}

	imp := &m.Import{Base: b.base(n), Source: b.literal(source)}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)

		switch child.Type() {
		case "type":
			imp.TypeOnly = true
		case "import_clause":
			imp.Specifiers = b.importClause(child)
		}
	}

	return b.frame(imp)
}

func (b *builder) importClause(n *sitter.Node) []*m.ImportSpecifier {
	var specs []*m.ImportSpecifier

	for _, child := range b.namedChildren(n) {
		switch child.Type() {
		case "identifier":
			spec := &m.ImportSpecifier{Base: b.base(child), Kind: m.SpecDefault, Local: b.ident(child)}
			b.frame(spec)
			specs = append(specs, spec)
		case "namespace_import":
			for _, id := range b.namedChildren(child) {
				if id.Type() != "identifier" {
					continue
				}

				spec := &m.ImportSpecifier{Base: b.base(child), Kind: m.SpecNamespace, Local: b.ident(id)}
				b.frame(spec)
				specs = append(specs, spec)
			}
		case "named_imports":
			for _, named := range b.namedChildren(child) {
				if named.Type() != "import_specifier" {
					continue
				}

				if spec := b.importSpecifier(named); spec != nil {
					specs = append(specs, spec)
				}
			}
		}
	}

	return specs
}

func (b *builder) importSpecifier(n *sitter.Node) *m.ImportSpecifier {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}

	spec := &m.ImportSpecifier{
		Base:     b.base(n),
		Kind:     m.SpecNamed,
		TypeOnly: hasChildOfType(n, "type"),
	}

	if alias := n.ChildByFieldName("alias"); alias != nil {
		spec.Imported = b.ident(name)
		spec.Local = b.ident(alias)
	} else {
		spec.Local = b.ident(name)
	}

	b.frame(spec)

	return spec
}

func (b *builder) element(n *sitter.Node) m.Node {
	tag := n

	if n.Type() == "jsx_element" {
		tag = n.ChildByFieldName("open_tag")
		if tag == nil && n.NamedChildCount() > 0 {
			tag = n.NamedChild(0)
		}
	}

	var name *sitter.Node
	if tag != nil {
		name = tag.ChildByFieldName("name")
	}

	el := &m.Element{Base: b.base(n), Body: b.raw(n)}
	if name != nil {
		el.Tag = b.text(name)
	}

	return b.frame(el)
}
