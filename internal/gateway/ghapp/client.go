// Package ghapp talks to GitHub as a GitHub App installation: it reads the
// files a pull request touches and posts the analysis back as a comment.
package ghapp

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"
)

const (
	listPageSize   = 100
	fetchWorkers   = 4
	removedFileTag = "removed"
)

// Client is scoped to one installation.
type Client struct {
	gh       *github.Client
	maxBytes int
}

// NewClient wraps an authenticated go-github client. maxBytes caps the total
// content returned by ChangedFiles; zero or negative disables the cap.
func NewClient(gh *github.Client, maxBytes int) *Client {
	return &Client{gh: gh, maxBytes: maxBytes}
}

// ChangedFiles returns the contents at ref of every file the pull request
// adds or modifies. Files that cannot be decoded or look binary are skipped.
// Walking in name order, a file that would overflow the byte budget is dropped.
func (c *Client) ChangedFiles(ctx context.Context, owner, repo string, number int, ref string) (map[string]string, error) {
	names, err := c.listChanged(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	fetched := make(map[string]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for _, name := range names {
		g.Go(func() error {
			content, ok, err := c.fetch(gctx, owner, repo, name, ref)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			mu.Lock()
			fetched[name] = content
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c.withinBudget(fetched), nil
}

func (c *Client) listChanged(ctx context.Context, owner, repo string, number int) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: listPageSize}
	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list files of %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, f := range files {
			if f.GetStatus() == removedFileTag || f.GetFilename() == "" {
				continue
			}
			names = append(names, f.GetFilename())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	sort.Strings(names)
	return names, nil
}

// fetch reports ok=false for entries that are not analyzable text.
func (c *Client) fetch(ctx context.Context, owner, repo, path, ref string) (string, bool, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", false, fmt.Errorf("get %s@%s: %w", path, ref, err)
	}
	if file == nil {
		return "", false, nil
	}
	content, err := file.GetContent()
	if err != nil {
		log.Printf("ghapp: skip %s: %v", path, err)
		return "", false, nil
	}
	if strings.IndexByte(content, 0) >= 0 {
		return "", false, nil
	}
	return content, true, nil
}

func (c *Client) withinBudget(files map[string]string) map[string]string {
	if c.maxBytes <= 0 {
		return files
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string, len(files))
	used := 0
	for _, name := range names {
		size := len(files[name])
		if len(out) > 0 {
			size++ // separator in the merged corpus
		}
		if used+size > c.maxBytes {
			log.Printf("ghapp: byte budget reached, skip %s", name)
			continue
		}
		used += size
		out[name] = files[name]
	}
	return out
}

// Comment posts body as an issue comment on the pull request.
func (c *Client) Comment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{Body: github.String(body)})
	if err != nil {
		return fmt.Errorf("comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}
