package surrealdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/miqdad-dev/portfolio/internal/config"
	"github.com/miqdad-dev/portfolio/internal/models"
	sdk "github.com/surrealdb/surrealdb.go"
)

// Client mirrors the synced project records into SurrealDB so they can be
// queried outside the static site.
type Client struct {
	db *sdk.DB
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	db, err := sdk.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, sdk.Auth{
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}

	if err := db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting ns/db: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
DEFINE TABLE IF NOT EXISTS project SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS repo_id     ON TABLE project TYPE int;
DEFINE FIELD IF NOT EXISTS title       ON TABLE project TYPE string;
DEFINE FIELD IF NOT EXISTS description ON TABLE project TYPE string;
DEFINE FIELD IF NOT EXISTS tech        ON TABLE project TYPE array<string>;
DEFINE FIELD IF NOT EXISTS github      ON TABLE project TYPE string;
DEFINE FIELD IF NOT EXISTS demo        ON TABLE project TYPE option<string>;
DEFINE FIELD IF NOT EXISTS language    ON TABLE project TYPE option<string>;
DEFINE FIELD IF NOT EXISTS stars       ON TABLE project TYPE int;
DEFINE FIELD IF NOT EXISTS topics      ON TABLE project TYPE array<string>;
DEFINE FIELD IF NOT EXISTS created     ON TABLE project TYPE datetime;
DEFINE FIELD IF NOT EXISTS updated     ON TABLE project TYPE datetime;
DEFINE FIELD IF NOT EXISTS featured    ON TABLE project TYPE bool;
DEFINE FIELD IF NOT EXISTS synced_at   ON TABLE project TYPE datetime;

DEFINE INDEX IF NOT EXISTS idx_repo_id ON TABLE project FIELDS repo_id UNIQUE;
`
	_, err := sdk.Query[any](ctx, c.db, schema, nil)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// UpsertProject writes p keyed by its GitHub repository id.
func (c *Client) UpsertProject(ctx context.Context, p models.Project, syncedAt time.Time) error {
	_, err := sdk.Query[any](ctx, c.db,
		`UPSERT type::thing("project", $id) CONTENT $data`,
		map[string]any{
			"id":   p.ID,
			"data": projectData(p, syncedAt),
		})
	if err != nil {
		return fmt.Errorf("upserting %s: %w", p.Title, err)
	}
	return nil
}

// projectData omits nil optionals to avoid the CBOR NULL vs SurrealDB NONE
// mismatch.
func projectData(p models.Project, syncedAt time.Time) map[string]any {
	tech := p.Tech
	if tech == nil {
		tech = []string{}
	}
	topics := p.Topics
	if topics == nil {
		topics = []string{}
	}
	data := map[string]any{
		"repo_id":     p.ID,
		"title":       p.Title,
		"description": p.Description,
		"tech":        tech,
		"github":      p.GitHub,
		"stars":       p.Stars,
		"topics":      topics,
		"created":     p.Created.UTC(),
		"updated":     p.Updated.UTC(),
		"featured":    p.Featured,
		"synced_at":   syncedAt.UTC(),
	}
	if p.Demo != nil {
		data["demo"] = *p.Demo
	}
	if p.Language != nil {
		data["language"] = *p.Language
	}
	return data
}

// PruneExcept removes mirrored projects that are no longer in the synced set.
func (c *Client) PruneExcept(ctx context.Context, keep []int64) error {
	if keep == nil {
		keep = []int64{}
	}
	_, err := sdk.Query[any](ctx, c.db,
		`DELETE project WHERE repo_id NOTINSIDE $keep`,
		map[string]any{"keep": keep})
	if err != nil {
		return fmt.Errorf("pruning projects: %w", err)
	}
	return nil
}

type Stats struct {
	Total    int
	Featured int
	Stars    int
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	results, err := sdk.Query[[]map[string]any](ctx, c.db,
		`SELECT
			count() AS total,
			math::sum(IF featured THEN 1 ELSE 0 END) AS featured,
			math::sum(stars) AS stars
		FROM project GROUP ALL`,
		nil)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	if len(*results) == 0 || len((*results)[0].Result) == 0 {
		return &Stats{}, nil
	}
	row := (*results)[0].Result[0]
	return &Stats{
		Total:    toInt(row["total"]),
		Featured: toInt(row["featured"]),
		Stars:    toInt(row["stars"]),
	}, nil
}

type LanguageCount struct {
	Language string
	Count    int
}

func (c *Client) GetLanguageBreakdown(ctx context.Context) ([]LanguageCount, error) {
	// Fetch languages and count in Go
	results, err := sdk.Query[[]map[string]any](ctx, c.db,
		`SELECT language FROM project`, nil)
	if err != nil {
		return nil, fmt.Errorf("getting languages: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	var langs []string
	for _, row := range (*results)[0].Result {
		if s, ok := row["language"].(string); ok {
			langs = append(langs, s)
		} else {
			langs = append(langs, "")
		}
	}
	return countLanguages(langs), nil
}

// countLanguages groups by language, most common first, then by name. Empty
// languages count as "Other".
func countLanguages(langs []string) []LanguageCount {
	counts := map[string]int{}
	for _, l := range langs {
		if l == "" {
			l = "Other"
		}
		counts[l]++
	}
	out := make([]LanguageCount, 0, len(counts))
	for l, n := range counts {
		out = append(out, LanguageCount{Language: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Language < out[j].Language
	})
	return out
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}
