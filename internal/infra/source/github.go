package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// RepoFetcher downloads a repository snapshot as a ZIP archive and returns
// the local path. The caller owns cleanup of the returned file.
type RepoFetcher interface {
	FetchArchive(ctx context.Context, repoURL, destDir string) (string, error)
}

// GitHubFetcher fetches <owner>/<repo>/archive/HEAD.zip over HTTPS.
type GitHubFetcher struct {
	Client *http.Client
}

func NewGitHubFetcher() *GitHubFetcher {
	return &GitHubFetcher{Client: &http.Client{Timeout: 60 * time.Second}}
}

func (g *GitHubFetcher) FetchArchive(ctx context.Context, repoURL, destDir string) (string, error) {
	owner, repo, err := parseGitHubURL(repoURL)
	if err != nil {
		return "", err
	}

	archiveURL := fmt.Sprintf("https://github.com/%s/%s/archive/HEAD.zip", owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch repo archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: repository archive returned status %d", ErrBadArchive, resp.StatusCode)
	}

	out, err := os.CreateTemp(destDir, "repo-*.zip")
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("download repo archive: %w", err)
	}
	return out.Name(), nil
}

// parseGitHubURL accepts https://github.com/<owner>/<repo>[.git] and
// rejects everything else.
func parseGitHubURL(raw string) (owner, repo string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid repository url: %w", err)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return "", "", fmt.Errorf("unsupported repository host: %q", u.Host)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository path: %q", u.Path)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
