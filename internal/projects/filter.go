package projects

import "github.com/miqdad-dev/portfolio/internal/models"

// FilterOptions selects which listed repositories become projects.
type FilterOptions struct {
	ExcludeForks bool
	ExcludeRepos []string
	// MinStars is inclusive: repositories with fewer stars are dropped.
	MinStars int
}

// Filter returns the repositories that pass opts, in input order. The input
// slice is not modified.
func Filter(repos []models.Repository, opts FilterOptions) []models.Repository {
	excluded := make(map[string]struct{}, len(opts.ExcludeRepos))
	for _, name := range opts.ExcludeRepos {
		excluded[name] = struct{}{}
	}

	out := make([]models.Repository, 0, len(repos))
	for _, r := range repos {
		if opts.ExcludeForks && r.Fork {
			continue
		}
		if _, ok := excluded[r.Name]; ok {
			continue
		}
		if r.Stars < opts.MinStars {
			continue
		}
		out = append(out, r)
	}
	return out
}
