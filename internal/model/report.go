package model

import "time"

// Report is the catalogue checker's verdict on one painting record
type Report struct {
	Key        string       `json:"key" yaml:"key"`                         // artist/painting as requested
	Name       string       `json:"name,omitempty" yaml:"name,omitempty"`   // Painting display name
	Path       string       `json:"path,omitempty" yaml:"path,omitempty"`   // Canonical viewer path
	CheckedAt  time.Time    `json:"checked_at" yaml:"checked_at"`           // When the check ran
	FactsCount int          `json:"facts_count" yaml:"facts_count"`         // Facts actually returned
	Declared   int          `json:"declared_facts" yaml:"declared_facts"`   // facts_count on the painting
	Slugs      []string     `json:"slugs,omitempty" yaml:"slugs,omitempty"` // Derived fact slugs in order
	Links      []LinkResult `json:"links,omitempty" yaml:"links,omitempty"` // Attribution link checks
	Signals    []Signal     `json:"signals" yaml:"signals"`                 // Findings, may be empty
}

// Worst returns the highest severity among the report's signals
func (r *Report) Worst() SignalSeverity {
	worst := SignalSeverity("")
	for _, s := range r.Signals {
		if s.Severity.rank() > worst.rank() {
			worst = s.Severity
		}
	}
	return worst
}

// Signal is a single finding with the data that produced it
type Signal struct {
	Type        SignalType             `json:"type" yaml:"type"`
	Severity    SignalSeverity         `json:"severity" yaml:"severity"`
	Description string                 `json:"description" yaml:"description"`
	Data        map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

// SignalType classifies a finding
type SignalType string

const (
	SignalPaintingMissing     SignalType = "painting_missing"       // Painting fetch failed
	SignalFactsCountMismatch  SignalType = "facts_count_mismatch"   // facts_count differs from facts returned
	SignalGeometryOutOfBounds SignalType = "geometry_out_of_bounds" // Box outside [0,1] or empty
	SignalUnsupportedGeometry SignalType = "unsupported_geometry"   // geometry_type other than rect
	SignalSlugCollision       SignalType = "slug_collision"         // Several facts share a base slug
	SignalDeadLink            SignalType = "dead_link"              // Attribution link unreachable
)

// SignalSeverity indicates how much a finding matters
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

func (s SignalSeverity) rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}
