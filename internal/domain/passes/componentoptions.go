package passes

import (
	"strings"
	"unicode"
	"unicode/utf8"

	m "gooze.dev/pkg/purebundle/internal/model"
)

var factoryNames = map[string]struct{}{
	"styled":     {},
	"component":  {},
	"component$": {},
}

// componentOptions appends an options object to component factory calls
// bound by a declarator. The object carries the binding name as displayName
// plus the props and emits derived from the factory's inline type argument.
type componentOptions struct {
	completed int
}

// NewComponentOptions returns the component-option completion pass.
func NewComponentOptions() Pass {
	return &componentOptions{}
}

func (p *componentOptions) Name() m.PassName {
	return m.PassComponentOptions
}

func (p *componentOptions) Apply(mod *m.Module, _ m.AnnotationSink, stats *m.Stats) {
	m.Walk(p, mod)
	stats.Completed += p.completed
}

func (p *componentOptions) Visit(n m.Node) m.Node {
	if d, ok := n.(*m.VarDeclarator); ok {
		if id, ok := d.Name(); ok {
			if call, ok := m.UnwrapParens(d.Init).(*m.Call); ok {
				p.complete(call, id.Name)
			}
		}
	}

	m.WalkChildren(p, n)

	return n
}

// complete follows curried callees, styled("div")({}), down to the factory
// call and appends the options there.
func (p *componentOptions) complete(call *m.Call, displayName string) {
	for {
		switch callee := m.UnwrapParens(call.Callee).(type) {
		case *m.Ident:
			if _, ok := factoryNames[callee.Name]; ok {
				call.Args = append(call.Args, optionsObject(call.TypeArgs, displayName))
				p.completed++
			}

			return
		case *m.Call:
			call = callee
		default:
			return
		}
	}
}

func optionsObject(typeArgs *m.TypeArgs, displayName string) *m.Object {
	props, emits := partitionMembers(typeArgs)

	obj := &m.Object{Props: []m.Node{m.NewKeyValue("displayName", m.NewString(displayName))}}

	if len(props) > 0 {
		obj.Props = append(obj.Props, m.NewKeyValue("props", m.NewStringArray(props)))
	}

	if len(emits) > 0 {
		obj.Props = append(obj.Props, m.NewKeyValue("emits", m.NewStringArray(emits)))
	}

	return obj
}

// partitionMembers splits the property names of every inline object type in
// typeArgs into props and event names, in declaration order.
func partitionMembers(typeArgs *m.TypeArgs) (props, emits []string) {
	if typeArgs == nil {
		return nil, nil
	}

	for _, param := range typeArgs.Params {
		obj, ok := param.(*m.ObjectType)
		if !ok {
			continue
		}

		for _, member := range obj.Members {
			sig, ok := member.(*m.PropertySignature)
			if !ok {
				continue
			}

			key, ok := sig.Key.(*m.Ident)
			if !ok {
				continue
			}

			switch {
			case isEventName(key.Name):
				emits = append(emits, kebabCase(key.Name[2:]))
			case strings.HasPrefix(key.Name, "$"):
			default:
				props = append(props, key.Name)
			}
		}
	}

	return props, emits
}

// isEventName reports whether name is "on" followed by an upper-case letter.
func isEventName(name string) bool {
	if !strings.HasPrefix(name, "on") || len(name) <= 2 {
		return false
	}

	r, _ := utf8.DecodeRuneInString(name[2:])

	return unicode.IsUpper(r)
}

// kebabCase lower-cases s and joins its words with hyphens. Words break at
// separators, lower-to-upper transitions, letter/digit transitions and before
// the last capital of an acronym (HTMLInput -> html-input).
func kebabCase(s string) string {
	runes := []rune(s)

	var (
		words []string
		word  []rune
	)

	flush := func() {
		if len(word) > 0 {
			words = append(words, strings.ToLower(string(word)))
			word = word[:0]
		}
	}

	for i, r := range runes {
		if r == '_' || r == '-' || r == ' ' {
			flush()
			continue
		}

		if len(word) > 0 {
			prev := runes[i-1]

			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(r):
				flush()
			case unicode.IsDigit(prev) != unicode.IsDigit(r) && (unicode.IsLetter(prev) || unicode.IsLetter(r)):
				flush()
			case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			}
		}

		word = append(word, r)
	}

	flush()

	return strings.Join(words, "-")
}
