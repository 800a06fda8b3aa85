package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/purebundle/internal/model"
)

func parse(t *testing.T, dialect m.Dialect, src string) *m.Module {
	t.Helper()

	mod, err := NewTreeSitterAdapter().Parse(context.Background(), dialect, []byte(src))
	require.NoError(t, err)

	return mod
}

func findAll[T m.Node](root m.Node) []T {
	var out []T

	m.Inspect(root, func(n m.Node) bool {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}

		return true
	})

	return out
}

func TestTreeSitterAdapter_Parse(t *testing.T) {
	t.Run("maps imports and declarators", func(t *testing.T) {
		mod := parse(t, m.DialectTSX, "import \"x\";\nconst a = f(b);\n")

		require.Len(t, mod.Items, 2)

		imp, ok := mod.Items[0].(*m.Import)
		require.True(t, ok)
		assert.Empty(t, imp.Specifiers)

		source, ok := imp.Source.StringValue()
		require.True(t, ok)
		assert.Equal(t, "x", source)

		decls := findAll[*m.VarDeclarator](mod)
		require.Len(t, decls, 1)

		name, ok := decls[0].Name()
		require.True(t, ok)
		assert.Equal(t, "a", name.Name)

		call, ok := decls[0].Init.(*m.Call)
		require.True(t, ok)
		assert.Equal(t, m.Span{Start: 22, End: 26}, call.Span())
		assert.Equal(t, "f", call.Callee.(*m.Ident).Name)
		require.Len(t, call.Args, 1)
		assert.Equal(t, "b", call.Args[0].(*m.Ident).Name)

		assert.Equal(t, "\n", mod.Items[1].Leading())
		assert.Equal(t, "\n", mod.Trailing)
	})

	t.Run("maps every specifier form", func(t *testing.T) {
		mod := parse(t, m.DialectTypeScript, "import React, { a as b, c } from \"r\";\nimport * as ns from \"n\";\n")

		first, ok := mod.Items[0].(*m.Import)
		require.True(t, ok)
		require.Len(t, first.Specifiers, 3)

		assert.Equal(t, m.SpecDefault, first.Specifiers[0].Kind)
		assert.Equal(t, "React", first.Specifiers[0].Local.Name)

		assert.Equal(t, m.SpecNamed, first.Specifiers[1].Kind)
		assert.Equal(t, "a", first.Specifiers[1].Imported.Name)
		assert.Equal(t, "b", first.Specifiers[1].Local.Name)

		assert.Nil(t, first.Specifiers[2].Imported)
		assert.Equal(t, "c", first.Specifiers[2].Local.Name)

		second, ok := mod.Items[1].(*m.Import)
		require.True(t, ok)
		require.Len(t, second.Specifiers, 1)
		assert.Equal(t, m.SpecNamespace, second.Specifiers[0].Kind)
		assert.Equal(t, "ns", second.Specifiers[0].Local.Name)
	})

	t.Run("collects arrow parameter bindings", func(t *testing.T) {
		mod := parse(t, m.DialectTSX, "const f = (a, { b }, [c], d = e) => a;\n")

		arrows := findAll[*m.Arrow](mod)
		require.Len(t, arrows, 1)
		assert.Equal(t, []string{"a", "b", "c", "d"}, arrows[0].Params)
		assert.False(t, arrows[0].Binds("e"))
	})

	t.Run("records element tags", func(t *testing.T) {
		mod := parse(t, m.DialectTSX, "const x = <Foo.Bar />;\nconst y = <AcX>hi</AcX>;\n")

		elements := findAll[*m.Element](mod)
		require.Len(t, elements, 2)
		assert.Equal(t, "Foo.Bar", elements[0].Tag)
		assert.False(t, elements[0].TagIsIdent())
		assert.Equal(t, "AcX", elements[1].Tag)
		assert.True(t, elements[1].TagIsIdent())
	})

	t.Run("maps inline object type arguments", func(t *testing.T) {
		mod := parse(t, m.DialectTypeScript, "const C = component<{ a?: string; onB: () => void }>();\n")

		calls := findAll[*m.Call](mod)
		require.Len(t, calls, 1)
		require.NotNil(t, calls[0].TypeArgs)
		require.Len(t, calls[0].TypeArgs.Params, 1)

		obj, ok := calls[0].TypeArgs.Params[0].(*m.ObjectType)
		require.True(t, ok)
		require.Len(t, obj.Members, 2)

		first := obj.Members[0].(*m.PropertySignature)
		assert.Equal(t, "a", first.Key.(*m.Ident).Name)
		assert.True(t, first.Optional)

		second := obj.Members[1].(*m.PropertySignature)
		assert.Equal(t, "onB", second.Key.(*m.Ident).Name)
		assert.False(t, second.Optional)
	})

	t.Run("tagged templates are not calls", func(t *testing.T) {
		mod := parse(t, m.DialectTSX, "const S = styled.div`color: red;`;\n")

		assert.Empty(t, findAll[*m.Call](mod))
		assert.Len(t, findAll[*m.Member](mod), 1)
	})

	t.Run("keeps a hashbang out of the items", func(t *testing.T) {
		mod := parse(t, m.DialectTSX, "#!/usr/bin/env node\nrun();\n")

		assert.Equal(t, "#!/usr/bin/env node", mod.Trivia)
		require.Len(t, mod.Items, 1)
		assert.Equal(t, "\n", mod.Items[0].Leading())
	})
}

func TestTreeSitterAdapter_Parse_Errors(t *testing.T) {
	a := NewTreeSitterAdapter()

	t.Run("syntax errors", func(t *testing.T) {
		_, err := a.Parse(context.Background(), m.DialectTSX, []byte("const = ;"))
		require.ErrorIs(t, err, ErrSyntax)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := a.Parse(context.Background(), m.DialectTSX, []byte{'a', 0xff, 0xfe})
		require.ErrorIs(t, err, ErrSyntax)
	})

	t.Run("unknown dialect", func(t *testing.T) {
		_, err := a.Parse(context.Background(), m.Dialect("coffee"), []byte("x"))
		require.Error(t, err)
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := a.Parse(ctx, m.DialectTSX, []byte("run();"))
		require.ErrorIs(t, err, context.Canceled)
	})
}
