package audit

import (
	"fmt"
	"sort"

	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/slug"
)

// edgeTolerance absorbs float noise from the annotation tool when checking
// whether a box extends past the right or bottom edge
const edgeTolerance = 1e-9

// Auditor inspects a painting record and its facts and generates signals
type Auditor struct{}

// NewAuditor creates a new auditor
func NewAuditor() *Auditor {
	return &Auditor{}
}

// Missing returns the signal for a painting that could not be fetched
func (a *Auditor) Missing(key string, err error) model.Signal {
	return model.Signal{
		Type:        model.SignalPaintingMissing,
		Severity:    model.SeverityCritical,
		Description: fmt.Sprintf("Painting %s could not be fetched", key),
		Data: map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		},
	}
}

// Audit runs every check and returns the signals found, ordered by severity
// (critical first) and then by type
func (a *Auditor) Audit(painting *model.Painting, facts []model.Fact, mapping slug.Mapping, links []model.LinkResult) []model.Signal {
	var signals []model.Signal

	if s, ok := a.checkFactsCount(painting, facts); ok {
		signals = append(signals, s)
	}
	signals = append(signals, a.checkGeometry(facts)...)
	signals = append(signals, a.checkSlugs(facts, mapping)...)
	signals = append(signals, a.checkLinks(links)...)

	sort.SliceStable(signals, func(i, j int) bool {
		ri, rj := severityOrder(signals[i].Severity), severityOrder(signals[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return signals[i].Type < signals[j].Type
	})

	if signals == nil {
		signals = []model.Signal{}
	}
	return signals
}

// checkFactsCount compares the declared facts_count with the facts returned
func (a *Auditor) checkFactsCount(painting *model.Painting, facts []model.Fact) (model.Signal, bool) {
	if painting.FactsCount == len(facts) {
		return model.Signal{}, false
	}
	return model.Signal{
		Type:        model.SignalFactsCountMismatch,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("Painting declares %d facts but %d were returned", painting.FactsCount, len(facts)),
		Data: map[string]interface{}{
			"declared": painting.FactsCount,
			"returned": len(facts),
		},
	}, true
}

// checkGeometry flags non-rect facts and rect facts outside the image
func (a *Auditor) checkGeometry(facts []model.Fact) []model.Signal {
	var signals []model.Signal

	for _, f := range facts {
		if !f.IsRect() {
			signals = append(signals, model.Signal{
				Type:        model.SignalUnsupportedGeometry,
				Severity:    model.SeverityInfo,
				Description: fmt.Sprintf("Fact %q has geometry %q and will not be drawn", f.Name, f.GeometryType),
				Data: map[string]interface{}{
					"fact_id":       f.ID.String(),
					"geometry_type": f.GeometryType,
				},
			})
			continue
		}

		box := f.Box()
		data := map[string]interface{}{
			"fact_id": f.ID.String(),
			"x":       box.X,
			"y":       box.Y,
			"w":       box.W,
			"h":       box.H,
		}

		if !box.Valid() {
			signals = append(signals, model.Signal{
				Type:        model.SignalGeometryOutOfBounds,
				Severity:    model.SeverityCritical,
				Description: fmt.Sprintf("Fact %q has a box outside [0,1] or with no area", f.Name),
				Data:        data,
			})
			continue
		}

		if box.X+box.W > 1+edgeTolerance || box.Y+box.H > 1+edgeTolerance {
			signals = append(signals, model.Signal{
				Type:        model.SignalGeometryOutOfBounds,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("Fact %q extends past the image edge", f.Name),
				Data:        data,
			})
		}
	}

	return signals
}

// checkSlugs reports base slugs shared by several facts. Deep links still
// work, but the suffixed slugs depend on fact order.
func (a *Auditor) checkSlugs(facts []model.Fact, mapping slug.Mapping) []model.Signal {
	collisions := mapping.Collisions(facts)

	bases := make([]string, 0, len(collisions))
	for base := range collisions {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	signals := make([]model.Signal, 0, len(bases))
	for _, base := range bases {
		slugs := collisions[base]
		signals = append(signals, model.Signal{
			Type:        model.SignalSlugCollision,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("%d facts share the slug %q", len(slugs), base),
			Data: map[string]interface{}{
				"base":  base,
				"slugs": slugs,
			},
		})
	}
	return signals
}

// checkLinks reports dead attribution links
func (a *Auditor) checkLinks(links []model.LinkResult) []model.Signal {
	var signals []model.Signal
	for _, l := range links {
		if !l.IsDead {
			continue
		}
		data := map[string]interface{}{
			"url":  l.URL,
			"kind": string(l.Kind),
		}
		if l.StatusCode != 0 {
			data["status"] = l.StatusCode
		}
		if l.Error != "" {
			data["error"] = l.Error
		}
		signals = append(signals, model.Signal{
			Type:        model.SignalDeadLink,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("The %s link is unreachable", l.Kind),
			Data:        data,
		})
	}
	return signals
}

func severityOrder(s model.SignalSeverity) int {
	switch s {
	case model.SeverityCritical:
		return 3
	case model.SeverityWarning:
		return 2
	case model.SeverityInfo:
		return 1
	default:
		return 0
	}
}
