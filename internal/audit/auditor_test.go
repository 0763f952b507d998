package audit

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/slug"
)

func rectFact(name string, x, y, w, h float64) model.Fact {
	return model.Fact{ID: uuid.New(), Name: name, GeometryType: model.GeometryRect, X: x, Y: y, W: w, H: h}
}

func countType(signals []model.Signal, typ model.SignalType) int {
	n := 0
	for _, s := range signals {
		if s.Type == typ {
			n++
		}
	}
	return n
}

func TestAudit_Clean(t *testing.T) {
	facts := []model.Fact{
		rectFact("Moon", 0.8, 0.05, 0.1, 0.1),
		rectFact("Cypress", 0.0, 0.2, 0.25, 0.8),
	}
	painting := &model.Painting{FactsCount: 2}

	signals := NewAuditor().Audit(painting, facts, slug.Assign(facts), nil)

	if len(signals) != 0 {
		t.Errorf("expected no signals, got %+v", signals)
	}
	if signals == nil {
		t.Error("expected empty, non-nil signals")
	}
}

func TestAudit_FactsCountMismatch(t *testing.T) {
	facts := []model.Fact{rectFact("Moon", 0.1, 0.1, 0.1, 0.1)}
	signals := NewAuditor().Audit(&model.Painting{FactsCount: 3}, facts, slug.Assign(facts), nil)

	if countType(signals, model.SignalFactsCountMismatch) != 1 {
		t.Fatalf("expected facts_count_mismatch, got %+v", signals)
	}
	if signals[0].Data["declared"] != 3 || signals[0].Data["returned"] != 1 {
		t.Errorf("unexpected data: %+v", signals[0].Data)
	}
}

func TestAudit_Geometry(t *testing.T) {
	facts := []model.Fact{
		rectFact("Negative", -0.1, 0.1, 0.2, 0.2),
		rectFact("Empty", 0.1, 0.1, 0, 0.2),
		rectFact("Overflow", 0.9, 0.1, 0.2, 0.2),
		{ID: uuid.New(), Name: "Halo", GeometryType: "polygon"},
	}
	signals := NewAuditor().Audit(&model.Painting{FactsCount: 4}, facts, slug.Assign(facts), nil)

	if n := countType(signals, model.SignalGeometryOutOfBounds); n != 3 {
		t.Errorf("expected 3 geometry signals, got %d", n)
	}
	if n := countType(signals, model.SignalUnsupportedGeometry); n != 1 {
		t.Errorf("expected 1 unsupported geometry signal, got %d", n)
	}

	// Critical findings sort first
	if signals[0].Severity != model.SeverityCritical || signals[1].Severity != model.SeverityCritical {
		t.Errorf("expected critical signals first, got %s, %s", signals[0].Severity, signals[1].Severity)
	}
	if signals[len(signals)-1].Severity != model.SeverityInfo {
		t.Errorf("expected info signal last, got %s", signals[len(signals)-1].Severity)
	}
}

func TestAudit_SlugCollision(t *testing.T) {
	facts := []model.Fact{
		rectFact("Eyes", 0.1, 0.1, 0.1, 0.1),
		rectFact("Eyes", 0.3, 0.1, 0.1, 0.1),
		rectFact("Mouth", 0.2, 0.5, 0.1, 0.1),
	}
	signals := NewAuditor().Audit(&model.Painting{FactsCount: 3}, facts, slug.Assign(facts), nil)

	if countType(signals, model.SignalSlugCollision) != 1 {
		t.Fatalf("expected one slug collision, got %+v", signals)
	}
	slugs, ok := signals[0].Data["slugs"].([]string)
	if !ok || len(slugs) != 2 || slugs[0] != "eyes" || slugs[1] != "eyes-2" {
		t.Errorf("unexpected slugs: %v", signals[0].Data["slugs"])
	}
}

func TestAudit_DeadLinks(t *testing.T) {
	links := []model.LinkResult{
		{URL: "https://example.com/a.jpg", Kind: model.LinkImage, IsAccessible: true, StatusCode: 200},
		{URL: "https://example.com/gone", Kind: model.LinkSource, IsDead: true, StatusCode: 404},
		{URL: "https://example.com/license", Kind: model.LinkLicense, Skipped: true},
	}
	signals := NewAuditor().Audit(&model.Painting{}, nil, slug.Assign(nil), links)

	if countType(signals, model.SignalDeadLink) != 1 {
		t.Fatalf("expected one dead link, got %+v", signals)
	}
	if signals[0].Data["kind"] != "source" || signals[0].Data["status"] != 404 {
		t.Errorf("unexpected data: %+v", signals[0].Data)
	}
}

func TestMissing(t *testing.T) {
	s := NewAuditor().Missing("van-gogh/nope", errors.New("painting not found: unexpected status: 404"))

	if s.Type != model.SignalPaintingMissing || s.Severity != model.SeverityCritical {
		t.Errorf("unexpected signal: %+v", s)
	}
	if s.Data["key"] != "van-gogh/nope" {
		t.Errorf("unexpected key: %v", s.Data["key"])
	}
}
