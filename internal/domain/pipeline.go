// Package domain composes the rewrite passes and drives them over a set of
// source files.
package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"

	"gooze.dev/pkg/purebundle/internal/domain/passes"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// ErrUnknownPass is returned when a pipeline names a pass that does not exist.
var ErrUnknownPass = errors.New("unknown pass")

// Preset names.
const (
	PresetPurebundle        = "purebundle"
	PresetAccessControl     = "access-control"
	PresetComponentComplete = "component-complete"
)

// canonicalOrder is the order passes run in, whatever order they were listed.
var canonicalOrder = []m.PassName{
	m.PassElideSideImports,
	m.PassAccessControl,
	m.PassComponentOptions,
	m.PassAnnotatePure,
}

var presets = map[string][]m.PassName{
	PresetPurebundle:        {m.PassElideSideImports, m.PassAnnotatePure},
	PresetAccessControl:     {m.PassElideSideImports, m.PassAccessControl, m.PassAnnotatePure},
	PresetComponentComplete: {m.PassComponentOptions, m.PassAnnotatePure},
}

// Presets returns the preset names in a stable order.
func Presets() []string {
	return []string{PresetPurebundle, PresetAccessControl, PresetComponentComplete}
}

// Pipeline is an immutable, validated sequence of passes.
type Pipeline struct {
	name   string
	passes []m.PassName
	opts   m.Options
}

// NewPreset builds the pipeline registered under name.
func NewPreset(name string, opts m.Options) (*Pipeline, error) {
	names, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: preset %q", ErrUnknownPass, name)
	}

	p, err := NewPipeline(names, opts)
	if err != nil {
		return nil, err
	}

	p.name = name

	return p, nil
}

// NewPipeline validates the options and pass names and returns a pipeline
// that runs the named passes in canonical order. Duplicates are collapsed.
func NewPipeline(names []m.PassName, opts m.Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: empty pass list", ErrUnknownPass)
	}

	for _, name := range names {
		if !slices.Contains(canonicalOrder, name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPass, name)
		}
	}

	ordered := make([]m.PassName, 0, len(canonicalOrder))

	for _, name := range canonicalOrder {
		if slices.Contains(names, name) {
			ordered = append(ordered, name)
		}
	}

	return &Pipeline{passes: ordered, opts: opts}, nil
}

// ParsePassNames splits a comma separated pass list.
func ParsePassNames(list string) []m.PassName {
	var names []m.PassName

	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, m.PassName(part))
		}
	}

	return names
}

// Passes returns the pass names in execution order.
func (p *Pipeline) Passes() []m.PassName {
	return slices.Clone(p.passes)
}

// Options returns the options the pipeline was built with.
func (p *Pipeline) Options() m.Options {
	return p.opts
}

func (p *Pipeline) String() string {
	if p.name != "" {
		return p.name
	}

	parts := make([]string, 0, len(p.passes))
	for _, name := range p.passes {
		parts = append(parts, string(name))
	}

	return strings.Join(parts, ",")
}

// Fingerprint identifies the pass list and options. Cached results are only
// valid for an identical fingerprint.
func (p *Pipeline) Fingerprint() string {
	h := xxh3.New()

	for _, name := range p.passes {
		_, _ = h.Write([]byte(name))
		_, _ = h.Write([]byte{0})
	}

	for _, v := range []string{p.opts.Source(), p.opts.OneOfGuard(), p.opts.AllOfGuard()} {
		_, _ = h.Write([]byte(v))
		_, _ = h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Transform runs every pass over mod in order. Each call gets fresh pass
// state, so one Pipeline may transform many modules concurrently as long as
// each module is owned by a single goroutine.
func (p *Pipeline) Transform(mod *m.Module) (*m.Annotations, m.Stats) {
	notes := m.NewAnnotations()

	var stats m.Stats

	for _, name := range p.passes {
		p.newPass(name).Apply(mod, notes, &stats)
	}

	return notes, stats
}

func (p *Pipeline) newPass(name m.PassName) passes.Pass {
	switch name {
	case m.PassElideSideImports:
		return passes.NewElideSideImports()
	case m.PassAccessControl:
		return passes.NewAccessControl(p.opts)
	case m.PassComponentOptions:
		return passes.NewComponentOptions()
	case m.PassAnnotatePure:
		return passes.NewAnnotatePureCalls()
	default:
		panic(fmt.Sprintf("pipeline: unvalidated pass %q", name))
	}
}
