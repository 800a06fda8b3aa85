package model

// PassName identifies a rewrite pass.
type PassName string

const (
	// PassElideSideImports drops specifier-less import declarations.
	PassElideSideImports PassName = "elide-side-imports"
	// PassAccessControl wraps naming-convention components in guard calls.
	PassAccessControl PassName = "access-control"
	// PassComponentOptions appends inferred options to component factory calls.
	PassComponentOptions PassName = "component-options"
	// PassAnnotatePure records pure-call markers.
	PassAnnotatePure PassName = "annotate-pure-calls"
)

// Stats counts what a pipeline run changed in one module.
type Stats struct {
	ImportsElided   int `yaml:"importsElided"`
	ImportsInjected int `yaml:"importsInjected"`
	Wrapped         int `yaml:"wrapped"`
	Completed       int `yaml:"completed"`
	PureMarkers     int `yaml:"pureMarkers"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.ImportsElided += other.ImportsElided
	s.ImportsInjected += other.ImportsInjected
	s.Wrapped += other.Wrapped
	s.Completed += other.Completed
	s.PureMarkers += other.PureMarkers
}

// Total returns the number of individual rewrites.
func (s Stats) Total() int {
	return s.ImportsElided + s.ImportsInjected + s.Wrapped + s.Completed + s.PureMarkers
}
