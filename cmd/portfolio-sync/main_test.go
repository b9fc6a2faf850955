package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const listBody = `[
	{"id": 1, "name": "my-app", "description": null, "language": "Python", "fork": false,
	 "stargazers_count": 2, "topics": ["api"], "html_url": "https://github.com/octo/my-app",
	 "created_at": "2023-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z"},
	{"id": 2, "name": "someone-elses", "fork": true, "stargazers_count": 99,
	 "html_url": "https://github.com/octo/someone-elses",
	 "created_at": "2023-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z"}
]`

// setupEnv points the CLI at a fake GitHub API and an isolated working
// directory, returning the output path.
func setupEnv(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })

	out := filepath.Join(dir, "projects.json")
	t.Setenv("PORTFOLIO_USERNAME", "octo")
	t.Setenv("PORTFOLIO_API_URL", srv.URL)
	t.Setenv("PORTFOLIO_OUTPUT_FILE", out)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("SURREAL_URL", "")
	return out
}

func fakeGitHub(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/users/octo/repos":
		_, _ = w.Write([]byte(listBody))
	case strings.HasPrefix(r.URL.Path, "/repos/octo/"):
		name := strings.TrimPrefix(r.URL.Path, "/repos/octo/")
		_, _ = w.Write([]byte(`{"id": 1, "name": "` + name + `", "topics": ["api"], "has_pages": false}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLI_Help(t *testing.T) {
	for _, arg := range []string{"--help", "-h"} {
		stdout, _, err := execute(t, arg)
		if err != nil {
			t.Fatalf("%s: %v", arg, err)
		}
		for _, want := range []string{"--dry-run", "--verbose", "Usage:"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("%s output missing %q:\n%s", arg, want, stdout)
			}
		}
	}
}

func TestCLI_Sync(t *testing.T) {
	out := setupEnv(t, fakeGitHub)

	_, stderr, err := execute(t)
	if err != nil {
		t.Fatalf("sync: %v\n%s", err, stderr)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc struct {
		TotalProjects int `json:"totalProjects"`
		Projects      []struct {
			Title    string   `json:"title"`
			Tech     []string `json:"tech"`
			Featured bool     `json:"featured"`
		} `json:"projects"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if doc.TotalProjects != 1 || len(doc.Projects) != 1 {
		t.Fatalf("forked repo should be filtered out: %s", data)
	}
	p := doc.Projects[0]
	if p.Title != "My App" || !p.Featured {
		t.Errorf("unexpected project: %+v", p)
	}
	if strings.Join(p.Tech, ",") != "Python,Api" {
		t.Errorf("Tech = %v", p.Tech)
	}
	if !strings.Contains(stderr, "Successfully updated") {
		t.Errorf("missing progress output:\n%s", stderr)
	}
}

func TestCLI_DryRun(t *testing.T) {
	out := setupEnv(t, fakeGitHub)
	original := []byte("existing content\n")
	if err := os.WriteFile(out, original, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stdout, _, err := execute(t, "--dry-run", "-v")
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}

	after, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(after, original) {
		t.Errorf("dry run changed the output file: %q", after)
	}
	if !strings.Contains(stdout, `"totalProjects": 1`) {
		t.Errorf("dry run should print the document:\n%s", stdout)
	}
}

func TestCLI_UnknownArgsRunSync(t *testing.T) {
	out := setupEnv(t, fakeGitHub)

	if _, stderr, err := execute(t, "--bogus", "extra"); err != nil {
		t.Fatalf("unknown args should not fail: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("default sync should have written %s: %v", out, err)
	}
}

func TestCLI_ListFailure(t *testing.T) {
	out := setupEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	})

	_, _, err := execute(t)
	if err == nil {
		t.Fatal("expected error when the repository list fails")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry the status: %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no file should be written on failure")
	}
}

func TestCLI_Config(t *testing.T) {
	setupEnv(t, fakeGitHub)
	t.Setenv("GITHUB_TOKEN", "ghp_should_not_print")

	stdout, _, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(stdout, "username: octo") {
		t.Errorf("config output:\n%s", stdout)
	}
	if strings.Contains(stdout, "ghp_should_not_print") {
		t.Error("token leaked in config output")
	}
}

func TestCLI_StatsRequiresMirror(t *testing.T) {
	setupEnv(t, fakeGitHub)
	if _, _, err := execute(t, "stats"); err == nil {
		t.Fatal("expected error without SURREAL_URL")
	}
}
