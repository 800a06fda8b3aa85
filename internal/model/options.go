package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
)

const (
	// DefaultImportSource is the module the guard functions are imported from.
	DefaultImportSource = "@pkg/access"
	// DefaultOneOfGuard is the exported name of the "some permission" guard.
	DefaultOneOfGuard = "mustOneOfPermissions"
	// DefaultAllOfGuard is the exported name of the "every permission" guard.
	DefaultAllOfGuard = "mustAllOfPermissions"

	// OneOfAlias is the local binding of the one-of guard.
	OneOfAlias = "__mustOneOf"
	// AllOfAlias is the local binding of the all-of guard.
	AllOfAlias = "__mustAllOf"
)

// ErrInvalidOptions is returned for malformed pass configuration.
var ErrInvalidOptions = errors.New("invalid options")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Options configures the naming-convention wrapping pass. Empty fields fall
// back to the defaults. Options are immutable once a pipeline is built.
type Options struct {
	ImportSource   string `json:"importSource,omitempty"   mapstructure:"importSource"   yaml:"importSource,omitempty"`
	OneOfGuardName string `json:"oneOfGuardName,omitempty" mapstructure:"oneOfGuardName" yaml:"oneOfGuardName,omitempty"`
	AllOfGuardName string `json:"allOfGuardName,omitempty" mapstructure:"allOfGuardName" yaml:"allOfGuardName,omitempty"`
}

// ParseOptions decodes a host-supplied JSON configuration blob. Unknown
// fields are rejected. An empty blob yields the defaults.
func ParseOptions(blob []byte) (Options, error) {
	var opts Options

	if len(bytes.TrimSpace(blob)) == 0 {
		return opts, nil
	}

	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("%w: trailing data after options object", ErrInvalidOptions)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}

	return opts, nil
}

// Validate checks that overridden guard names are usable as identifiers.
func (o Options) Validate() error {
	guards := []struct{ field, name string }{
		{"oneOfGuardName", o.OneOfGuardName},
		{"allOfGuardName", o.AllOfGuardName},
	}

	for _, g := range guards {
		if g.name != "" && !identifierPattern.MatchString(g.name) {
			return fmt.Errorf("%w: %s %q is not an identifier", ErrInvalidOptions, g.field, g.name)
		}
	}

	return nil
}

// Source returns the configured import source.
func (o Options) Source() string {
	if o.ImportSource == "" {
		return DefaultImportSource
	}

	return o.ImportSource
}

// OneOfGuard returns the exported name of the one-of guard.
func (o Options) OneOfGuard() string {
	if o.OneOfGuardName == "" {
		return DefaultOneOfGuard
	}

	return o.OneOfGuardName
}

// AllOfGuard returns the exported name of the all-of guard.
func (o Options) AllOfGuard() string {
	if o.AllOfGuardName == "" {
		return DefaultAllOfGuard
	}

	return o.AllOfGuardName
}
