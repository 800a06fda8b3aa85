// Package passes implements the individual syntax-tree rewrite passes.
package passes

import (
	"regexp"

	m "gooze.dev/pkg/purebundle/internal/model"
)

// Convention is the guard family a name belongs to.
type Convention int

const (
	// NotMatched names are left alone.
	NotMatched Convention = iota
	// AllOf names require every collected permission.
	AllOf
	// OneOf names require at least one collected permission.
	OneOf
)

func (c Convention) String() string {
	switch c {
	case AllOf:
		return "all-of"
	case OneOf:
		return "one-of"
	default:
		return "not-matched"
	}
}

var (
	allOfPattern       = regexp.MustCompile(`^(use)?Ac(Every)?[A-Z]`)
	oneOfPattern       = regexp.MustCompile(`^(use)?AcSome[A-Z]`)
	requestHookPattern = regexp.MustCompile(`^use(\w+)?Request$`)
)

// Classify maps an identifier onto its guard convention. A name such as
// AcSomeX satisfies both patterns; the one-of family wins.
func Classify(name string) Convention {
	switch {
	case oneOfPattern.MatchString(name):
		return OneOf
	case allOfPattern.MatchString(name):
		return AllOf
	default:
		return NotMatched
	}
}

// IsGuarded reports whether name follows either guard convention.
func IsGuarded(name string) bool {
	return Classify(name) != NotMatched
}

// IsRequestHook reports whether name looks like a data-fetching hook whose
// identifier arguments carry permissions, e.g. useRequest or useAppRequest.
func IsRequestHook(name string) bool {
	return requestHookPattern.MatchString(name)
}

// Alias returns the local guard binding used for the convention.
func (c Convention) Alias() string {
	switch c {
	case OneOf:
		return m.OneOfAlias
	case AllOf:
		return m.AllOfAlias
	default:
		return ""
	}
}
