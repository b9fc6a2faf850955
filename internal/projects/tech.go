package projects

import (
	"strings"

	"github.com/miqdad-dev/portfolio/internal/models"
)

// MaxTech caps the number of technology labels on a project.
const MaxTech = 5

// Keyword maps a lowercase substring of "name description" to a label.
type Keyword struct {
	Pattern string
	Label   string
}

// TechKeywords is matched in order; the order decides which labels survive
// the MaxTech cut.
var TechKeywords = []Keyword{
	{"react", "React"},
	{"vue", "Vue.js"},
	{"angular", "Angular"},
	{"express", "Express.js"},
	{"fastapi", "FastAPI"},
	{"flask", "Flask"},
	{"django", "Django"},
	{"spring", "Spring Boot"},
	{"nextjs", "Next.js"},
	{"nuxt", "Nuxt.js"},
	{"gatsby", "Gatsby"},
	{"svelte", "Svelte"},
	{"tailwind", "TailwindCSS"},
	{"bootstrap", "Bootstrap"},
	{"jquery", "jQuery"},
	{"tensorflow", "TensorFlow"},
	{"pytorch", "PyTorch"},
	{"scikit", "Scikit-learn"},
	{"pandas", "Pandas"},
	{"numpy", "NumPy"},
	{"mysql", "MySQL"},
	{"postgresql", "PostgreSQL"},
	{"mongodb", "MongoDB"},
	{"redis", "Redis"},
	{"docker", "Docker"},
	{"kubernetes", "Kubernetes"},
	{"aws", "AWS"},
	{"azure", "Azure"},
	{"gcp", "Google Cloud"},
	{"firebase", "Firebase"},
	{"api", "REST API"},
	{"graphql", "GraphQL"},
	{"websocket", "WebSocket"},
	{"etl", "ETL"},
	{"ml", "Machine Learning"},
	{"ai", "Artificial Intelligence"},
	{"data", "Data Science"},
	{"analytics", "Analytics"},
	{"dashboard", "Dashboard"},
	{"scraper", "Web Scraping"},
	{"bot", "Bot/Automation"},
	{"blockchain", "Blockchain"},
	{"crypto", "Cryptocurrency"},
}

// techSet is an insertion-ordered string set.
type techSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *techSet) add(v string) {
	if v == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

// DetectTech infers up to MaxTech technology labels: the primary language,
// then keyword matches against the name and description, then the topics
// with their first letter capitalized.
func DetectTech(repo models.Repository, details models.Details) []string {
	var set techSet

	if repo.Language != nil {
		set.add(*repo.Language)
	}

	text := strings.ToLower(repo.Name + " " + deref(repo.Description))
	for _, kw := range TechKeywords {
		if strings.Contains(text, kw.Pattern) {
			set.add(kw.Label)
		}
	}

	for _, topic := range Topics(repo, details) {
		set.add(capitalize(topic))
	}

	if len(set.items) > MaxTech {
		return set.items[:MaxTech]
	}
	if set.items == nil {
		return []string{}
	}
	return set.items
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
