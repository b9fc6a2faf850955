package projects

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"emperror.dev/errors"
	"github.com/miqdad-dev/portfolio/internal/models"
)

const (
	featuredTopic      = "featured"
	defaultPagesDomain = "github.io"
)

// TransformOptions carries the account-level settings a project record
// depends on.
type TransformOptions struct {
	// Username owns the repositories; it forms the Pages URL.
	Username string
	// PagesDomain defaults to github.io.
	PagesDomain string
}

// Transform maps a repository and its optional details to a project record.
// It fails only on records too incomplete to render.
func Transform(repo models.Repository, details models.Details, opts TransformOptions) (models.Project, error) {
	if strings.TrimSpace(repo.Name) == "" {
		return models.Project{}, errors.Errorf("repository %d has no name", repo.ID)
	}
	if repo.HTMLURL == "" {
		return models.Project{}, errors.Errorf("repository %s has no html_url", repo.Name)
	}

	tech := DetectTech(repo, details)
	topics := Topics(repo, details)

	return models.Project{
		ID:          repo.ID,
		Title:       Humanize(repo.Name),
		Description: Describe(repo, tech),
		Tech:        tech,
		GitHub:      repo.HTMLURL,
		Demo:        DemoURL(repo, details, opts),
		Language:    nonEmpty(repo.Language),
		Stars:       repo.Stars,
		Topics:      topics,
		Created:     repo.CreatedAt,
		Updated:     repo.UpdatedAt,
		Featured:    repo.Stars >= 1 || slices.Contains(details.Topics(), featuredTopic) || slices.Contains(repo.Topics, featuredTopic),
	}, nil
}

// Topics prefers the detail topics over the listing topics and never returns
// nil.
func Topics(repo models.Repository, details models.Details) []string {
	if t := details.Topics(); t != nil {
		return t
	}
	if repo.Topics != nil {
		return repo.Topics
	}
	return []string{}
}

// Describe returns the repository description, or a generated sentence
// naming the language and the first two technologies.
func Describe(repo models.Repository, tech []string) string {
	if d := strings.TrimSpace(deref(repo.Description)); d != "" {
		return d
	}
	lang := "Software"
	if l := deref(repo.Language); l != "" {
		lang = l
	}
	if len(tech) == 0 {
		return lang + " project"
	}
	return fmt.Sprintf("%s project with %s", lang, strings.Join(tech[:min(2, len(tech))], " and "))
}

// DemoURL resolves the live demo link: details homepage, listing homepage,
// then the GitHub Pages site when the details report one.
func DemoURL(repo models.Repository, details models.Details, opts TransformOptions) *string {
	if hp, ok := details.Homepage(); ok {
		return &hp
	}
	if hp := nonEmpty(repo.Homepage); hp != nil {
		return hp
	}
	if details.HasPages() && opts.Username != "" {
		domain := opts.PagesDomain
		if domain == "" {
			domain = defaultPagesDomain
		}
		u := fmt.Sprintf("https://%s.%s/%s/", opts.Username, domain, repo.Name)
		return &u
	}
	return nil
}

// Humanize turns a repository name like "my-cool_app" into "My Cool App".
func Humanize(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	var b strings.Builder
	b.Grow(len(name))
	prevWord := false
	for _, r := range name {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWord && !prevWord {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevWord = isWord
	}
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
