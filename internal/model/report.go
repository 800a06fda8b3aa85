package model

import "time"

// Status is the outcome of transforming one file.
type Status int

const (
	// Unchanged indicates the printed output equals the input.
	Unchanged Status = iota
	// Changed indicates the output differs from the input.
	Changed
	// Cached indicates the file was skipped because a previous run covered it.
	Cached
	// Failed indicates the file could not be read, parsed or written.
	Failed
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Cached:
		return "cached"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the in-memory outcome of transforming one source.
type Result struct {
	Source Source
	Status Status
	Stats  Stats
	Output []byte
	Err    error
}

// FileReport is the persisted record of one file in a run.
type FileReport struct {
	Path       Path   `yaml:"path"`
	Status     string `yaml:"status"`
	InputHash  string `yaml:"inputHash"`
	OutputHash string `yaml:"outputHash,omitempty"`
	Stats      Stats  `yaml:"stats"`
	Error      string `yaml:"error,omitempty"`
}

// RunReport is the persisted record of a whole run. Fingerprint identifies
// the pipeline configuration, so cached entries are only reused when it
// matches.
type RunReport struct {
	ID          string       `yaml:"id"`
	Pipeline    string       `yaml:"pipeline"`
	Fingerprint string       `yaml:"fingerprint"`
	StartedAt   time.Time    `yaml:"startedAt"`
	Files       []FileReport `yaml:"files"`
}

// Lookup returns the report entry for path.
func (r *RunReport) Lookup(path Path) (FileReport, bool) {
	if r == nil {
		return FileReport{}, false
	}

	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}

	return FileReport{}, false
}

// Totals sums the stats of every file in the run.
func (r *RunReport) Totals() Stats {
	var total Stats

	if r == nil {
		return total
	}

	for _, f := range r.Files {
		total.Add(f.Stats)
	}

	return total
}
