// Package model defines the syntax tree, annotation side-table and run data
// shared by every rewrite pass.
package model

import "strconv"

// Span is a half-open byte range [Start, End) in the original source.
// The zero value marks a synthesized node that has no source position.
type Span struct {
	Start int
	End   int
}

// Valid reports whether the span points at real source text.
func (s Span) Valid() bool {
	return s.End > s.Start
}

// Contains reports whether offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return s.Valid() && offset >= s.Start && offset < s.End
}

// Node is implemented by every syntax node.
type Node interface {
	Span() Span
	// Leading returns the trivia (whitespace, comments) printed before a
	// module item.
	Leading() string
	// Meta gives access to the position and layout shared by all nodes.
	Meta() *Base
}

// Base carries the position, leading trivia and layout of a node.
//
// Gaps holds the verbatim source text around the node's children as parsed,
// one more entry than Children(n) returned at parse time. A printer may only
// reuse it while the child count still matches.
type Base struct {
	Loc    Span
	Trivia string
	Gaps   []string
}

// Span implements Node.
func (b *Base) Span() Span { return b.Loc }

// Leading implements Node.
func (b *Base) Leading() string { return b.Trivia }

// Meta implements Node.
func (b *Base) Meta() *Base { return b }

// Module is one compilation unit. Item order is significant. The module's own
// Trivia holds a leading hashbang line, if any; each item carries the text
// between the previous item and itself.
type Module struct {
	Base
	Items []Node
	// Trailing holds the source text after the last item.
	Trailing string
}

// Raw is verbatim source text with structural nodes embedded in it.
// Segments always has exactly one more element than Children.
type Raw struct {
	Base
	Segments []string
	Children []Node
}

// Text returns the raw text when the node has no embedded children.
func (r *Raw) Text() string {
	if len(r.Children) == 0 && len(r.Segments) == 1 {
		return r.Segments[0]
	}

	return ""
}

// Ident is an identifier reference or binding.
type Ident struct {
	Base
	Name string
}

// Literal is a string, number, boolean, null, regex or plain template literal,
// stored as written.
type Literal struct {
	Base
	Raw string
}

// StringValue returns the unquoted value of a string literal.
func (l *Literal) StringValue() (string, bool) {
	if len(l.Raw) < 2 {
		return "", false
	}

	quote := l.Raw[0]
	if (quote != '"' && quote != '\'') || l.Raw[len(l.Raw)-1] != quote {
		return "", false
	}

	if quote == '\'' {
		return l.Raw[1 : len(l.Raw)-1], true
	}

	v, err := strconv.Unquote(l.Raw)
	if err != nil {
		return l.Raw[1 : len(l.Raw)-1], true
	}

	return v, true
}

// Call is a call expression. Callee may itself be a Call (curried factories).
type Call struct {
	Base
	Callee   Node
	TypeArgs *TypeArgs
	Args     []Node
}

// Arrow is an arrow function. Head holds everything before the body,
// including the parameter list and the arrow token.
type Arrow struct {
	Base
	Head   *Raw
	Params []string
	Body   Node
}

// Binds reports whether the arrow declares a parameter with the given name.
func (a *Arrow) Binds(name string) bool {
	for _, p := range a.Params {
		if p == name {
			return true
		}
	}

	return false
}

// Member is a static property access such as a.b or a?.b.
type Member struct {
	Base
	Object   Node
	Property *Ident
	Optional bool
}

// Array is an array literal.
type Array struct {
	Base
	Elems []Node
}

// Object is an object literal or object pattern. Props holds *Property
// entries and Raw entries for spreads and methods.
type Object struct {
	Base
	Props []Node
}

// PropertyKind distinguishes the property forms the passes care about.
type PropertyKind int

const (
	// PropKeyValue is `key: value`.
	PropKeyValue PropertyKind = iota
	// PropAssign is `key = value`.
	PropAssign
	// PropShorthand is `key`.
	PropShorthand
)

// Property is one entry of an Object.
type Property struct {
	Base
	Kind  PropertyKind
	Key   Node
	Value Node
}

// Assign is an assignment expression, including compound operators.
type Assign struct {
	Base
	Target Node
	Op     string
	Value  Node
}

// Paren is a parenthesized expression.
type Paren struct {
	Base
	Expr Node
}

// VarDeclarator is one binding of a const/let/var declaration.
type VarDeclarator struct {
	Base
	Binding Node
	// Annotation is the verbatim type annotation including its colon.
	Annotation string
	Init       Node
}

// Name returns the bound identifier, if the binding is a simple identifier.
func (d *VarDeclarator) Name() (*Ident, bool) {
	id, ok := d.Binding.(*Ident)
	return id, ok
}

// Import is an import declaration.
type Import struct {
	Base
	TypeOnly   bool
	Specifiers []*ImportSpecifier
	Source     *Literal
}

// SpecifierKind is the shape of an import binding.
type SpecifierKind int

const (
	// SpecNamed is `{ imported as local }`.
	SpecNamed SpecifierKind = iota
	// SpecDefault is `local`.
	SpecDefault
	// SpecNamespace is `* as local`.
	SpecNamespace
)

// ImportSpecifier is one binding of an import declaration. Imported is nil
// when the exported name equals the local one.
type ImportSpecifier struct {
	Base
	Kind     SpecifierKind
	TypeOnly bool
	Imported *Ident
	Local    *Ident
}

// Element is an inline JSX element. Body holds the full element source.
type Element struct {
	Base
	Tag  string
	Body *Raw
}

// TagIsIdent reports whether the tag is a plain identifier (not a.b or a:b).
func (e *Element) TagIsIdent() bool {
	for i := 0; i < len(e.Tag); i++ {
		switch e.Tag[i] {
		case '.', ':', '-':
			return false
		}
	}

	return e.Tag != ""
}

// TypeArgs is the generic type-argument list of a call. Text is the verbatim
// source including the angle brackets; Params carries the structure of each
// argument (*ObjectType for inline object-type literals, *Raw otherwise).
type TypeArgs struct {
	Base
	Text   string
	Params []Node
}

// ObjectType is an inline object-type literal such as { a: string }.
type ObjectType struct {
	Base
	Members []Node
}

// PropertySignature is a member of an ObjectType.
type PropertySignature struct {
	Base
	Key      Node
	Optional bool
}

// Children returns the direct children of n in source order, skipping absent
// optional parts. Module items are not included: they carry their own trivia.
//
//nolint:cyclop // One case per node kind.
func Children(n Node) []Node {
	var out []Node

	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *Raw:
		add(n.Children...)
	case *Call:
		add(n.Callee)
		if n.TypeArgs != nil {
			add(n.TypeArgs)
		}

		add(n.Args...)
	case *Arrow:
		if n.Head != nil {
			add(n.Head)
		}

		add(n.Body)
	case *Member:
		add(n.Object)
		if n.Property != nil {
			add(n.Property)
		}
	case *Array:
		add(n.Elems...)
	case *Object:
		add(n.Props...)
	case *Property:
		add(n.Key)
		if n.Kind != PropShorthand {
			add(n.Value)
		}
	case *Assign:
		add(n.Target, n.Value)
	case *Paren:
		add(n.Expr)
	case *VarDeclarator:
		add(n.Binding, n.Init)
	case *Import:
		for _, spec := range n.Specifiers {
			add(spec)
		}

		if n.Source != nil {
			add(n.Source)
		}
	case *ImportSpecifier:
		if n.Imported != nil {
			add(n.Imported)
		}

		if n.Local != nil {
			add(n.Local)
		}
	case *Element:
		if n.Body != nil {
			add(n.Body)
		}
	case *TypeArgs:
		add(n.Params...)
	case *ObjectType:
		add(n.Members...)
	case *PropertySignature:
		add(n.Key)
	}

	return out
}

// UnwrapParens strips any number of enclosing parentheses.
func UnwrapParens(n Node) Node {
	for {
		p, ok := n.(*Paren)
		if !ok || p.Expr == nil {
			return n
		}

		n = p.Expr
	}
}

// NewIdent returns a synthesized identifier.
func NewIdent(name string) *Ident {
	return &Ident{Name: name}
}

// NewString returns a synthesized double-quoted string literal.
func NewString(value string) *Literal {
	return &Literal{Raw: strconv.Quote(value)}
}

// NewCall returns a synthesized call expression.
func NewCall(callee Node, args ...Node) *Call {
	return &Call{Callee: callee, Args: args}
}

// NewKeyValue returns a synthesized `key: value` property.
func NewKeyValue(key string, value Node) *Property {
	return &Property{Kind: PropKeyValue, Key: NewIdent(key), Value: value}
}

// NewStringArray returns a synthesized array of string literals.
func NewStringArray(values []string) *Array {
	elems := make([]Node, 0, len(values))
	for _, v := range values {
		elems = append(elems, NewString(v))
	}

	return &Array{Elems: elems}
}

// NewNamedSpecifier returns `imported as local`.
func NewNamedSpecifier(imported, local string) *ImportSpecifier {
	spec := &ImportSpecifier{Kind: SpecNamed, Local: NewIdent(local)}
	if imported != local {
		spec.Imported = NewIdent(imported)
	}

	return spec
}

// NewImport returns a synthesized import declaration.
func NewImport(source string, specs ...*ImportSpecifier) *Import {
	return &Import{Source: NewString(source), Specifiers: specs}
}
