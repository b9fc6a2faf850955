package github

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/miqdad-dev/portfolio/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.github.com"

	// RequestTimeout bounds every request. There are no retries.
	RequestTimeout = 10 * time.Second

	userAgent    = "Portfolio-Sync-Script"
	acceptHeader = "application/vnd.github.v3+json"
	perPage      = 100
)

// Client is a thin wrapper around the GitHub REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient returns a client for baseURL (DefaultBaseURL when empty). The
// token is optional; without it requests are made anonymously.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: RequestTimeout},
	}
}

// ListUserRepos returns up to 100 repositories owned by user, most recently
// updated first.
func (c *Client) ListUserRepos(ctx context.Context, user string) ([]models.Repository, error) {
	if strings.TrimSpace(user) == "" {
		return nil, errors.New("github: account handle is empty")
	}

	q := url.Values{}
	q.Set("per_page", "100")
	q.Set("sort", "updated")
	endpoint := "/users/" + url.PathEscape(user) + "/repos?" + q.Encode()

	body, reqURL, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var repos []models.Repository
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, &ParseError{URL: reqURL, Err: err}
	}
	if len(repos) > perPage {
		repos = repos[:perPage]
	}
	return repos, nil
}

// GetRepo returns the single-repository resource, which unlike the listing
// carries has_pages.
func (c *Client) GetRepo(ctx context.Context, owner, name string) (models.Repository, error) {
	endpoint := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name)

	body, reqURL, err := c.get(ctx, endpoint)
	if err != nil {
		return models.Repository{}, err
	}

	var repo models.Repository
	if err := json.Unmarshal(body, &repo); err != nil {
		return models.Repository{}, &ParseError{URL: reqURL, Err: err}
	}
	return repo, nil
}

// --- internal ---

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, string, error) {
	reqURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, reqURL, errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	logrus.WithField("url", reqURL).Debug("GET")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, reqURL, &TransportError{URL: reqURL, Timeout: isTimeout(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		logrus.WithField("remaining", remaining).Debug("rate limit")
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, reqURL, &TransportError{URL: reqURL, Timeout: isTimeout(err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, reqURL, &APIError{
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Message:    apiMessage(respBody),
		}
	}

	return respBody, reqURL, nil
}

func apiMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}
	return strings.TrimSpace(string(body))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
