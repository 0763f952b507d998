package model

import (
	"strings"

	"github.com/google/uuid"
)

// Painting is a single artwork record as served by the backend API
type Painting struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ArtistName   string    `json:"artist_name"`
	ArtistSlug   string    `json:"artist_slug"`
	PaintingSlug string    `json:"painting_slug"`
	MuseumName   *string   `json:"museum_name"`  // Optional museum holding the work
	GenreNames   []string  `json:"genre_name"`   // Optional, may contain empty entries
	ImageURL     string    `json:"image_url"`    // Full-resolution image
	SourceURL    string    `json:"source_url"`   // Where the image was obtained
	LicenseName  *string   `json:"license_name"` // Optional license label
	LicenseURL   *string   `json:"license_url"`  // Optional license link
	FactsCount   int       `json:"facts_count"`  // Number of facts attached on the backend
}

// Path returns the canonical viewer path for the painting
func (p *Painting) Path() string {
	return "/" + p.ArtistSlug + "/" + p.PaintingSlug
}

// AltText returns the image alternative text
func (p *Painting) AltText() string {
	return p.Name + " by " + p.ArtistName
}

// GenresLabel joins the non-empty genre names
func (p *Painting) GenresLabel() string {
	genres := make([]string, 0, len(p.GenreNames))
	for _, g := range p.GenreNames {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return strings.Join(genres, ", ")
}

// Museum returns the museum name or an empty string
func (p *Painting) Museum() string {
	return deref(p.MuseumName)
}

// License returns the license name or an empty string
func (p *Painting) License() string {
	return deref(p.LicenseName)
}

// LicenseLink returns the license URL or an empty string
func (p *Painting) LicenseLink() string {
	return deref(p.LicenseURL)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
