package models

import "time"

// Project is one entry of projects.json as consumed by the portfolio pages.
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tech        []string  `json:"tech"`
	GitHub      string    `json:"github"`
	Demo        *string   `json:"demo"`
	Language    *string   `json:"language"`
	Stars       int       `json:"stars"`
	Topics      []string  `json:"topics"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	Featured    bool      `json:"featured"`
}

// ProjectsDocument is the persisted projects.json envelope.
type ProjectsDocument struct {
	LastUpdated   time.Time `json:"lastUpdated"`
	TotalProjects int       `json:"totalProjects"`
	Projects      []Project `json:"projects"`
}

// NewProjectsDocument wraps projects generated at now. TotalProjects always
// matches len(Projects).
func NewProjectsDocument(now time.Time, projects []Project) ProjectsDocument {
	if projects == nil {
		projects = []Project{}
	}
	return ProjectsDocument{
		LastUpdated:   now.UTC(),
		TotalProjects: len(projects),
		Projects:      projects,
	}
}

// FeaturedCount returns how many projects are flagged as featured.
func (d ProjectsDocument) FeaturedCount() int {
	n := 0
	for _, p := range d.Projects {
		if p.Featured {
			n++
		}
	}
	return n
}
