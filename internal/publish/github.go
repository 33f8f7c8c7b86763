// Package publish pushes the updated codes document to a GitHub
// repository. Publishing happens only after a successful local persist
// and its failure is reported without rolling the local write back.
package publish

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Publisher uploads one file to a fixed owner/repo, creating or updating
// it on the target branch. API calls go through a client-side rate
// limiter so batch runs stay well under GitHub's secondary limits.
type Publisher struct {
	client  *github.Client
	limiter *rate.Limiter
	owner   string
	repo    string
	branch  string
	logger  *zap.Logger
}

// New returns a Publisher authenticated with token. branch may be empty,
// in which case the repository's default branch is used.
func New(owner, repo, token, branch string, rps float64, logger *zap.Logger) *Publisher {
	if rps <= 0 {
		rps = 2
	}
	return &Publisher{
		client:  github.NewClient(nil).WithAuthToken(token),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		owner:   owner,
		repo:    repo,
		branch:  branch,
		logger:  logger,
	}
}

// Publish uploads the file at filePath under its basename with the given
// commit message.
func (p *Publisher) Publish(ctx context.Context, filePath, commitMsg string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	dest := filepath.Base(filePath)
	if commitMsg == "" {
		commitMsg = fmt.Sprintf("Update %s via shiftsweep", dest)
	}

	branch := p.branch
	if branch == "" {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		repo, _, err := p.client.Repositories.Get(ctx, p.owner, p.repo)
		if err != nil {
			return fmt.Errorf("failed to resolve repository %s/%s: %w", p.owner, p.repo, err)
		}
		branch = repo.GetDefaultBranch()
		if branch == "" {
			branch = "main"
		}
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(commitMsg),
		Content: content,
		Branch:  github.String(branch),
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	existing, _, resp, err := p.client.Repositories.GetContents(ctx, p.owner, p.repo, dest,
		&github.RepositoryContentGetOptions{Ref: branch})
	switch {
	case err == nil && existing != nil:
		opts.SHA = existing.SHA
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		if _, _, err := p.client.Repositories.UpdateFile(ctx, p.owner, p.repo, dest, opts); err != nil {
			return fmt.Errorf("failed to update %s in %s/%s: %w", dest, p.owner, p.repo, err)
		}
		p.logger.Info("updated file on GitHub",
			zap.String("file", dest),
			zap.String("repo", p.owner+"/"+p.repo),
			zap.String("branch", branch))
		return nil

	case resp != nil && resp.StatusCode == http.StatusNotFound:
		// Also covers an empty repository: the contents API creates
		// the initial commit and branch.
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		if _, _, err := p.client.Repositories.CreateFile(ctx, p.owner, p.repo, dest, opts); err != nil {
			return fmt.Errorf("failed to create %s in %s/%s: %w", dest, p.owner, p.repo, err)
		}
		p.logger.Info("created file on GitHub",
			zap.String("file", dest),
			zap.String("repo", p.owner+"/"+p.repo),
			zap.String("branch", branch))
		return nil

	default:
		return fmt.Errorf("failed to look up %s in %s/%s: %w", dest, p.owner, p.repo, err)
	}
}
