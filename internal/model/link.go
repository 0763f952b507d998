package model

// LinkKind names which painting attribute a link came from
type LinkKind string

const (
	LinkImage   LinkKind = "image"
	LinkSource  LinkKind = "source"
	LinkLicense LinkKind = "license"
)

// Link is an outbound URL referenced by a painting record
type Link struct {
	URL  string   `json:"url" yaml:"url"`
	Kind LinkKind `json:"kind" yaml:"kind"`
}

// Links lists the painting's outbound links, skipping empty ones
func (p *Painting) Links() []Link {
	var links []Link
	if p.ImageURL != "" {
		links = append(links, Link{URL: p.ImageURL, Kind: LinkImage})
	}
	if p.SourceURL != "" {
		links = append(links, Link{URL: p.SourceURL, Kind: LinkSource})
	}
	if u := p.LicenseLink(); u != "" {
		links = append(links, Link{URL: u, Kind: LinkLicense})
	}
	return links
}

// LinkResult is the outcome of checking one link
type LinkResult struct {
	URL          string   `json:"url" yaml:"url"`
	Kind         LinkKind `json:"kind" yaml:"kind"`
	IsAccessible bool     `json:"is_accessible" yaml:"is_accessible"`
	StatusCode   int      `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	IsDead       bool     `json:"is_dead" yaml:"is_dead"`                               // 404, 410 or network failure
	Skipped      bool     `json:"skipped,omitempty" yaml:"skipped,omitempty"`           // Disallowed by robots.txt
	RedirectURL  string   `json:"redirect_url,omitempty" yaml:"redirect_url,omitempty"` // Final URL if redirected
	Error        string   `json:"error,omitempty" yaml:"error,omitempty"`
}
