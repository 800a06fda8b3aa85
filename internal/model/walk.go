package model

import "fmt"

// Visitor rewrites a tree in place. Visit receives a node and returns the node
// that takes its place in the parent, which may be n itself. Traversal never
// descends on its own: an implementation that wants to reach the children of
// n calls WalkChildren. Unhandled kinds should fall through to
//
//	WalkChildren(v, n)
//	return n
type Visitor interface {
	Visit(n Node) Node
}

// Walk dispatches n to v and returns the replacement.
func Walk(v Visitor, n Node) Node {
	if n == nil {
		return nil
	}

	return v.Visit(n)
}

// walkAs walks n and requires the replacement to keep n's concrete type.
func walkAs[T Node](v Visitor, n T) T {
	r := Walk(v, n)

	t, ok := r.(T)
	if !ok {
		panic(fmt.Sprintf("model: cannot replace %T with %T", n, r))
	}

	return t
}

func walkList(v Visitor, list []Node) {
	for i := range list {
		list[i] = Walk(v, list[i])
	}
}

// WalkChildren visits every direct child of n in source order, storing
// replacements back into n.
//
//nolint:cyclop,gocyclo // One case per node kind.
func WalkChildren(v Visitor, n Node) {
	switch n := n.(type) {
	case *Module:
		walkList(v, n.Items)
	case *Raw:
		walkList(v, n.Children)
	case *Call:
		n.Callee = Walk(v, n.Callee)
		if n.TypeArgs != nil {
			n.TypeArgs = walkAs(v, n.TypeArgs)
		}

		walkList(v, n.Args)
	case *Arrow:
		if n.Head != nil {
			n.Head = walkAs(v, n.Head)
		}

		n.Body = Walk(v, n.Body)
	case *Member:
		n.Object = Walk(v, n.Object)
		if n.Property != nil {
			n.Property = walkAs(v, n.Property)
		}
	case *Array:
		walkList(v, n.Elems)
	case *Object:
		walkList(v, n.Props)
	case *Property:
		n.Key = Walk(v, n.Key)
		if n.Kind != PropShorthand {
			n.Value = Walk(v, n.Value)
		}
	case *Assign:
		n.Target = Walk(v, n.Target)
		n.Value = Walk(v, n.Value)
	case *Paren:
		n.Expr = Walk(v, n.Expr)
	case *VarDeclarator:
		n.Binding = Walk(v, n.Binding)
		n.Init = Walk(v, n.Init)
	case *Import:
		for i := range n.Specifiers {
			n.Specifiers[i] = walkAs(v, n.Specifiers[i])
		}

		if n.Source != nil {
			n.Source = walkAs(v, n.Source)
		}
	case *ImportSpecifier:
		if n.Imported != nil {
			n.Imported = walkAs(v, n.Imported)
		}

		if n.Local != nil {
			n.Local = walkAs(v, n.Local)
		}
	case *Element:
		if n.Body != nil {
			n.Body = walkAs(v, n.Body)
		}
	case *TypeArgs:
		walkList(v, n.Params)
	case *ObjectType:
		walkList(v, n.Members)
	case *PropertySignature:
		n.Key = Walk(v, n.Key)
	case *Ident, *Literal:
		// leaves
	default:
		panic(fmt.Sprintf("model: unexpected node %T", n))
	}
}

// inspector adapts a read-only callback to the Visitor contract.
type inspector func(Node) bool

func (f inspector) Visit(n Node) Node {
	if f(n) {
		WalkChildren(f, n)
	}

	return n
}

// Inspect traverses the tree rooted at n in pre-order without modifying it.
// If f returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil {
		return
	}

	inspector(f).Visit(n)
}
