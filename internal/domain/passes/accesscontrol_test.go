package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/purebundle/internal/model"
)

func identNames(t *testing.T, nodes []m.Node) []string {
	t.Helper()

	names := make([]string, 0, len(nodes))

	for _, n := range nodes {
		id, ok := n.(*m.Ident)
		require.True(t, ok, "expected identifier, got %T", n)

		names = append(names, id.Name)
	}

	return names
}

// unwrapGuard returns the guard alias, its arguments and the wrapped arrow.
func unwrapGuard(t *testing.T, n m.Node) (string, []string, m.Node) {
	t.Helper()

	outer, ok := n.(*m.Call)
	require.True(t, ok, "expected call, got %T", n)
	require.Len(t, outer.Args, 1)

	guard, ok := outer.Callee.(*m.Call)
	require.True(t, ok, "expected guard call, got %T", outer.Callee)

	alias, ok := guard.Callee.(*m.Ident)
	require.True(t, ok)

	return alias.Name, identNames(t, guard.Args), outer.Args[0]
}

func TestAccessControl(t *testing.T) {
	t.Run("wraps an all-of component with the sorted permissions it references", func(t *testing.T) {
		// export const useAcXX = () => { const { data } = useRequest(putApp); return <AcOther />; };
		body := &m.Raw{
			Segments: []string{"{ const { data } = ", "; return ", "; }"},
			Children: []m.Node{
				callAt(40, 58, ident("useRequest"), ident("putApp")),
				element("AcOther"),
			},
		}
		arrow := arrowAt(22, 90, body)
		decl := declare("useAcXX", arrow)
		mod := module(&m.Raw{Segments: []string{"export const ", ";"}, Children: []m.Node{decl}})

		_, stats := run(NewAccessControl(m.Options{}), mod)

		alias, args, wrapped := unwrapGuard(t, decl.Init)
		assert.Equal(t, "__mustAllOf", alias)
		assert.Equal(t, []string{"AcOther", "putApp"}, args)
		assert.Same(t, arrow, wrapped)
		assert.Equal(t, arrow.Span(), decl.Init.Span())

		require.Len(t, mod.Items, 2)
		imp, ok := mod.Items[0].(*m.Import)
		require.True(t, ok)
		require.Len(t, imp.Specifiers, 1)
		assert.Equal(t, "mustAllOfPermissions", imp.Specifiers[0].Imported.Name)
		assert.Equal(t, "__mustAllOf", imp.Specifiers[0].Local.Name)

		source, ok := imp.Source.StringValue()
		require.True(t, ok)
		assert.Equal(t, "@pkg/access", source)

		assert.Equal(t, 1, stats.Wrapped)
		assert.Equal(t, 1, stats.ImportsInjected)
	})

	t.Run("includes the declared name when the body refers to it", func(t *testing.T) {
		// const useAcXX = () => useAcXX()
		decl := declare("useAcXX", arrowAt(16, 31, callAt(22, 31, ident("useAcXX"))))
		mod := module(decl)

		run(NewAccessControl(m.Options{}), mod)

		_, args, _ := unwrapGuard(t, decl.Init)
		assert.Equal(t, []string{"useAcXX"}, args)
	})

	t.Run("one-of names use the one-of guard", func(t *testing.T) {
		decl := declare("AcSomePanel", arrowAt(20, 40, element("AcAdmin")))
		mod := module(decl)

		run(NewAccessControl(m.Options{}), mod)

		alias, args, _ := unwrapGuard(t, decl.Init)
		assert.Equal(t, "__mustOneOf", alias)
		assert.Equal(t, []string{"AcAdmin"}, args)
	})

	t.Run("imports one-of before all-of when both are used", func(t *testing.T) {
		mod := module(
			declare("AcEveryA", arrowAt(10, 20, element("AcX"))),
			declare("useAcSomeB", arrowAt(30, 40, callAt(36, 40, ident("AcY")))),
		)

		_, stats := run(NewAccessControl(m.Options{}), mod)

		imp, ok := mod.Items[0].(*m.Import)
		require.True(t, ok)
		require.Len(t, imp.Specifiers, 2)
		assert.Equal(t, "__mustOneOf", imp.Specifiers[0].Local.Name)
		assert.Equal(t, "__mustAllOf", imp.Specifiers[1].Local.Name)
		assert.Equal(t, 2, stats.Wrapped)
		assert.Equal(t, 1, stats.ImportsInjected)
	})

	t.Run("honours configured source and guard names", func(t *testing.T) {
		opts := m.Options{ImportSource: "~/acl", OneOfGuardName: "anyOf", AllOfGuardName: "allOf"}
		mod := module(
			declare("AcA", arrowAt(10, 20, element("AcB"))),
			declare("AcSomeC", arrowAt(30, 40, element("AcD"))),
		)

		run(NewAccessControl(opts), mod)

		imp, ok := mod.Items[0].(*m.Import)
		require.True(t, ok)

		source, _ := imp.Source.StringValue()
		assert.Equal(t, "~/acl", source)
		assert.Equal(t, "anyOf", imp.Specifiers[0].Imported.Name)
		assert.Equal(t, "allOf", imp.Specifiers[1].Imported.Name)
	})

	t.Run("leaves declarations without collected names untouched", func(t *testing.T) {
		arrow := arrowAt(10, 20, &m.Literal{Raw: "null"})
		decl := declare("AcEmpty", arrow)
		mod := module(decl)

		_, stats := run(NewAccessControl(m.Options{}), mod)

		assert.Same(t, arrow, decl.Init)
		assert.Len(t, mod.Items, 1)
		assert.Zero(t, stats.Total())
	})

	t.Run("ignores names outside the convention and non-arrow initializers", func(t *testing.T) {
		plain := arrowAt(10, 20, element("AcX"))
		call := callAt(30, 40, ident("make"), element("AcX"))
		mod := module(declare("Panel", plain), declare("AcPanel", call))

		run(NewAccessControl(m.Options{}), mod)

		decls := []*m.VarDeclarator{mod.Items[0].(*m.VarDeclarator), mod.Items[1].(*m.VarDeclarator)}
		assert.Same(t, plain, decls[0].Init)
		assert.Same(t, call, decls[1].Init)
	})

	t.Run("member tags and non-identifier hook arguments are not collected", func(t *testing.T) {
		body := &m.Raw{Segments: []string{"", "", ""}, Children: []m.Node{
			element("Ac.Panel"),
			callAt(20, 30, ident("useRequest"), &m.Member{Object: ident("api"), Property: ident("AcX")}),
		}}
		arrow := arrowAt(10, 40, body)
		decl := declare("AcA", arrow)

		run(NewAccessControl(m.Options{}), module(decl))

		assert.Same(t, arrow, decl.Init)
	})

	t.Run("moves leading comments to the wrapping call", func(t *testing.T) {
		arrow := arrowAt(10, 20, element("AcX"))
		arrow.Trivia = "/* c */ "
		decl := declare("AcA", arrow)

		run(NewAccessControl(m.Options{}), module(decl))

		assert.Equal(t, "/* c */ ", decl.Init.Leading())
		assert.Empty(t, arrow.Leading())
	})
}
