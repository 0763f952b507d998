// Package slug derives the human-readable identifiers used in ?fact= links.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/artexplorer/internal/model"
)

// Make lower-cases and NFKD-normalizes value, collapses every run of
// characters that are not letters or numbers into a single hyphen and trims
// hyphens from both ends.
//
// Lowering uses the full Unicode mapping, so a word-final capital sigma
// becomes "ς" and "İ" becomes "i" plus a combining dot. Combining marks split
// off by NFKD are not letters: "Résumé" yields "re-sume", "İstanbul" yields
// "i-stanbul" and a trailing mark is trimmed ("é" yields "e").
func Make(value string) string {
	decomposed := norm.NFKD.String(cases.Lower(language.Und).String(value))

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingHyphen := false
	for _, r := range decomposed {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Mapping is the bidirectional fact id <-> slug table for one fact list
type Mapping struct {
	byID   map[uuid.UUID]string
	bySlug map[string]uuid.UUID
	order  []string
}

// Assign derives a unique slug for every fact. Facts whose names produce an
// empty slug fall back to "fact-<position>". Repeated base slugs get "-2",
// "-3", ... suffixes in list order. The result depends only on the list.
func Assign(facts []model.Fact) Mapping {
	m := Mapping{
		byID:   make(map[uuid.UUID]string, len(facts)),
		bySlug: make(map[string]uuid.UUID, len(facts)),
		order:  make([]string, 0, len(facts)),
	}

	counts := make(map[string]int, len(facts))
	for i, fact := range facts {
		base := Make(fact.Name)
		if base == "" {
			base = "fact-" + strconv.Itoa(i+1)
		}

		slug := base
		for n := counts[base]; ; n++ {
			if n > 0 {
				slug = base + "-" + strconv.Itoa(n+1)
			}
			if _, taken := m.bySlug[slug]; !taken {
				counts[base] = n + 1
				break
			}
		}

		m.byID[fact.ID] = slug
		m.bySlug[slug] = fact.ID
		m.order = append(m.order, slug)
	}

	return m
}

// SlugOf returns the slug assigned to the fact id
func (m Mapping) SlugOf(id uuid.UUID) (string, bool) {
	s, ok := m.byID[id]
	return s, ok
}

// IDOf resolves a slug back to its fact id
func (m Mapping) IDOf(slug string) (uuid.UUID, bool) {
	id, ok := m.bySlug[slug]
	return id, ok
}

// Slugs returns the slugs in fact list order
func (m Mapping) Slugs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of facts in the mapping
func (m Mapping) Len() int {
	return len(m.order)
}

// Collisions groups base slugs that were shared by more than one fact
func (m Mapping) Collisions(facts []model.Fact) map[string][]string {
	groups := make(map[string][]string)
	for i, fact := range facts {
		base := Make(fact.Name)
		if base == "" {
			base = "fact-" + strconv.Itoa(i+1)
		}
		groups[base] = append(groups[base], m.byID[fact.ID])
	}
	for base, slugs := range groups {
		if len(slugs) < 2 {
			delete(groups, base)
		}
	}
	return groups
}
