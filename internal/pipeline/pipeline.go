package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"emperror.dev/errors"
	"github.com/miqdad-dev/portfolio/internal/config"
	"github.com/miqdad-dev/portfolio/internal/github"
	"github.com/miqdad-dev/portfolio/internal/llm"
	"github.com/miqdad-dev/portfolio/internal/models"
	"github.com/miqdad-dev/portfolio/internal/projects"
	"github.com/miqdad-dev/portfolio/internal/surrealdb"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// DryRun builds the document and prints it instead of writing it.
	DryRun bool
	// SkipDetails skips the per-repository detail request.
	SkipDetails bool
	// AIDescriptions fills missing descriptions from the configured LLM.
	AIDescriptions bool
	// Output receives the dry-run document. Defaults to stdout.
	Output io.Writer
}

// Fetcher is the part of the GitHub API the sync reads from.
type Fetcher interface {
	ListUserRepos(ctx context.Context, user string) ([]models.Repository, error)
	GetRepo(ctx context.Context, owner, name string) (models.Repository, error)
}

// Describer writes a description for a repository that has none.
type Describer interface {
	Describe(ctx context.Context, repo models.Repository, tech []string) (string, error)
}

// Syncer runs one fetch, filter, enrich, transform, sort and write pass.
type Syncer struct {
	cfg       *config.Config
	gh        Fetcher
	describer Describer
	stdout    io.Writer
	now       func() time.Time
}

func NewSyncer(cfg *config.Config, gh Fetcher) *Syncer {
	return &Syncer{
		cfg:    cfg,
		gh:     gh,
		stdout: os.Stdout,
		now:    time.Now,
	}
}

// WithDescriber enables AI descriptions for repositories without one.
func (s *Syncer) WithDescriber(d Describer) *Syncer {
	s.describer = d
	return s
}

// WithOutput redirects the dry-run document.
func (s *Syncer) WithOutput(w io.Writer) *Syncer {
	s.stdout = w
	return s
}

// Run wires the real GitHub, LLM and SurrealDB clients and performs a sync.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	s := NewSyncer(cfg, github.NewClient(cfg.APIURL, cfg.GitHubToken))
	if opts.Output != nil {
		s.WithOutput(opts.Output)
	}

	if opts.AIDescriptions {
		if cfg.LLMAPIKey == "" {
			logrus.Warn("--ai-descriptions needs LLM_API_KEY, using generated descriptions")
		} else {
			s.WithDescriber(llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel))
		}
	}

	doc, err := s.Sync(ctx, opts)
	if err != nil {
		return err
	}

	if cfg.MirrorEnabled() && !opts.DryRun {
		if err := mirror(ctx, cfg, doc); err != nil {
			logrus.Warnf("mirroring to SurrealDB: %v", err)
		}
	}
	return nil
}

// Sync produces the projects document and, unless opts.DryRun, overwrites the
// configured output file with it. Only the initial repository listing can
// fail the run; per-repository failures are logged and skipped.
func (s *Syncer) Sync(ctx context.Context, opts Options) (models.ProjectsDocument, error) {
	logrus.Info("Syncing projects from GitHub...")
	if opts.DryRun {
		logrus.Info("Dry run mode - no files will be written")
	}

	// Step 1: List repositories
	logrus.Infof("Fetching repositories for %s...", s.cfg.Username)
	repos, err := s.gh.ListUserRepos(ctx, s.cfg.Username)
	if err != nil {
		return models.ProjectsDocument{}, errors.Wrap(err, "fetching repositories")
	}
	logrus.Infof("Found %d repositories", len(repos))

	// Step 2: Filter
	filtered := projects.Filter(repos, projects.FilterOptions{
		ExcludeForks: s.cfg.ExcludeForks,
		ExcludeRepos: s.cfg.ExcludeRepos,
		MinStars:     s.cfg.MinStars,
	})
	logrus.Infof("Filtered to %d repositories", len(filtered))

	// Step 3: Enrich and transform
	out, err := s.buildProjects(ctx, filtered, !opts.SkipDetails && s.cfg.FetchDetails)
	if err != nil {
		return models.ProjectsDocument{}, err
	}

	// Step 4: Sort and wrap
	projects.Sort(out)
	doc := models.NewProjectsDocument(s.now(), out)

	// Step 5: Write
	if opts.DryRun {
		if err := encodeDocument(s.stdout, doc); err != nil {
			return doc, errors.Wrap(err, "printing document")
		}
	} else {
		if err := WriteDocument(s.cfg.OutputFile, doc); err != nil {
			return doc, err
		}
		logrus.Infof("Successfully updated %s", s.cfg.OutputFile)
	}

	logrus.Infof("Total projects: %d", doc.TotalProjects)
	logrus.Infof("Featured projects: %d", doc.FeaturedCount())
	for _, p := range doc.Projects {
		logrus.Info("  • " + projects.SummaryLine(p))
	}
	return doc, nil
}

// buildProjects processes repos in order, at most cfg.Concurrency at a time,
// and returns the successes in input order.
func (s *Syncer) buildProjects(ctx context.Context, repos []models.Repository, withDetails bool) ([]models.Project, error) {
	slots := make([]*models.Project, len(repos))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.Concurrency))

	for i, repo := range repos {
		g.Go(func() error {
			logrus.Debugf("Processing: %s", repo.Name)
			p, err := s.processRepo(gCtx, repo, withDetails)
			if err != nil {
				logrus.Warnf("Error processing %s: %v", repo.Name, err)
				return nil // continue with other repos
			}
			slots[i] = &p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "sync interrupted")
	}

	out := make([]models.Project, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *Syncer) processRepo(ctx context.Context, repo models.Repository, withDetails bool) (models.Project, error) {
	details := models.Absent()
	if withDetails {
		d, err := s.gh.GetRepo(ctx, s.cfg.Username, repo.Name)
		if err != nil {
			return models.Project{}, errors.Wrap(err, "fetching details")
		}
		details = models.Found(d)
	}

	p, err := projects.Transform(repo, details, projects.TransformOptions{
		Username:    s.cfg.Username,
		PagesDomain: s.cfg.PagesDomain,
	})
	if err != nil {
		return models.Project{}, err
	}

	if s.describer != nil && (repo.Description == nil || *repo.Description == "") {
		desc, err := s.describer.Describe(ctx, repo, p.Tech)
		if err != nil {
			logrus.Warnf("describing %s: %v", repo.Name, err)
		} else {
			p.Description = desc
		}
	}
	return p, nil
}

func encodeDocument(w io.Writer, doc models.ProjectsDocument) error {
	data, err := marshalDocument(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func marshalDocument(doc models.ProjectsDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	return append(data, '\n'), nil
}

// WriteDocument replaces path with doc. The content goes to a temporary file
// in the same directory first, so readers never see a partial document.
func WriteDocument(path string, doc models.ProjectsDocument) error {
	data, err := marshalDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

func mirror(ctx context.Context, cfg *config.Config, doc models.ProjectsDocument) error {
	logrus.Info("Mirroring projects to SurrealDB...")
	db, err := surrealdb.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(ctx) }()

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	keep := make([]int64, 0, len(doc.Projects))
	for _, p := range doc.Projects {
		if err := db.UpsertProject(ctx, p, doc.LastUpdated); err != nil {
			return err
		}
		keep = append(keep, p.ID)
	}
	if err := db.PruneExcept(ctx, keep); err != nil {
		return err
	}
	logrus.Infof("Mirrored %d projects", len(keep))
	return nil
}
