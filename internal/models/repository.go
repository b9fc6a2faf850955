package models

import "time"

// Repository is a repository as returned by the GitHub REST API, either from
// the account listing or from the single-repository resource. HasPages is only
// populated by the latter.
type Repository struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description *string   `json:"description"`
	Language    *string   `json:"language"`
	Fork        bool      `json:"fork"`
	Stars       int       `json:"stargazers_count"`
	Topics      []string  `json:"topics"`
	Homepage    *string   `json:"homepage"`
	HasPages    bool      `json:"has_pages"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	HTMLURL     string    `json:"html_url"`
}

// Details is the outcome of the optional per-repository detail fetch. The
// zero value is Absent.
type Details struct {
	repo    Repository
	present bool
}

func Found(repo Repository) Details {
	return Details{repo: repo, present: true}
}

func Absent() Details {
	return Details{}
}

func (d Details) Present() bool { return d.present }

// Repository returns the detail payload and whether it was fetched.
func (d Details) Repository() (Repository, bool) {
	return d.repo, d.present
}

// Topics returns the detail topics, or nil when absent or the detail payload
// carried no topics field.
func (d Details) Topics() []string {
	if !d.present {
		return nil
	}
	return d.repo.Topics
}

// Homepage returns the detail homepage when present and non-empty.
func (d Details) Homepage() (string, bool) {
	if !d.present || d.repo.Homepage == nil || *d.repo.Homepage == "" {
		return "", false
	}
	return *d.repo.Homepage, true
}

func (d Details) HasPages() bool {
	return d.present && d.repo.HasPages
}
