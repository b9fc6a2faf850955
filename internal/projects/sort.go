package projects

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miqdad-dev/portfolio/internal/models"
)

// Sort orders projects by stars, most first, breaking ties by the most
// recent update.
func Sort(projects []models.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if a.Stars != b.Stars {
			return a.Stars > b.Stars
		}
		return a.Updated.After(b.Updated)
	})
}

// SummaryLine renders one project for the end-of-run listing.
func SummaryLine(p models.Project) string {
	tech := p.Tech[:min(3, len(p.Tech))]
	line := fmt.Sprintf("%s (%s)", p.Title, strings.Join(tech, ", "))
	if p.Featured {
		line += " ⭐"
	}
	return line
}
