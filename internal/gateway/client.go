package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/worldlore/lorekeeper/internal/config"
	"github.com/worldlore/lorekeeper/internal/model"
	appErr "github.com/worldlore/lorekeeper/internal/pkg/errors"
)

const cacheKeyCanon = "canon"

// Gateway executes validated, cached, resilient calls against the
// document host. Caching is read-through: a hit bypasses the network
// entirely, a miss always attempts the call and populates the cache
// only on success.
type Gateway struct {
	gh         *gh.Client
	cfg        config.DocumentHostConfig
	pagination config.PaginationConfig
	cache      *Cache
	limiter    *rate.Limiter
	timeout    time.Duration

	apiHost        string
	contentsPrefix string
}

func New(cfg config.DocumentHostConfig, pagination config.PaginationConfig, cache *Cache, timeout time.Duration) (*Gateway, error) {
	httpClient, err := newHTTPClient(cfg, timeout)
	if err != nil {
		return nil, err
	}

	client := gh.NewClient(httpClient)
	mirror := cfg.APIMirrors[0]
	base, err := url.Parse(strings.TrimSuffix(mirror, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse api mirror %q: %w", mirror, err)
	}
	client.BaseURL = base

	return &Gateway{
		gh:             client,
		cfg:            cfg,
		pagination:     pagination,
		cache:          cache,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		timeout:        timeout,
		apiHost:        base.Host,
		contentsPrefix: fmt.Sprintf("/repos/%s/%s/contents", cfg.Owner, cfg.Repo),
	}, nil
}

func newHTTPClient(cfg config.DocumentHostConfig, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy: %w", err)
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	httpClient := &http.Client{Timeout: timeout, Transport: transport}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = timeout
	}
	return httpClient, nil
}

// GetCanonicalDocument fetches and decodes the canonical lore
// document, caching the decoded text under a fixed key.
func (g *Gateway) GetCanonicalDocument(ctx context.Context) (string, error) {
	if cached, ok := g.cache.Get(cacheKeyCanon); ok {
		return cached.(string), nil
	}

	text, err := g.fetchContents(ctx, g.cfg.DocumentPath, g.cfg.Branch)
	if err != nil {
		return "", err
	}
	g.cache.Put(cacheKeyCanon, text)
	return text, nil
}

// ListOpenProposals returns one validated page of open proposals.
// The upstream page number is offset/limit+1; the approximate total
// is derived from the upstream last-page pagination hint when present.
func (g *Gateway) ListOpenProposals(ctx context.Context, limit, offset int) (*model.ProposalPage, error) {
	limit, offset = g.clampPagination(limit, offset)

	key := fmt.Sprintf("proposals:%d:%d", limit, offset)
	if cached, ok := g.cache.Get(key); ok {
		return cached.(*model.ProposalPage), nil
	}

	page := offset/limit + 1
	var pulls []*gh.PullRequest
	var resp *gh.Response
	err := g.call(ctx, func(ctx context.Context) error {
		var err error
		pulls, resp, err = g.gh.PullRequests.List(ctx, g.cfg.Owner, g.cfg.Repo, &gh.PullRequestListOptions{
			State:       "open",
			ListOptions: gh.ListOptions{Page: page, PerPage: limit},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &model.ProposalPage{
		Items:  make([]model.ProposalSummary, 0, len(pulls)),
		Limit:  limit,
		Offset: offset,
	}
	for _, pull := range pulls {
		item := model.ProposalSummary{
			Number: pull.GetNumber(),
			Title:  pull.GetTitle(),
			State:  pull.GetState(),
		}
		if created := pull.GetCreatedAt(); !created.IsZero() {
			item.CreatedAt = created.Format(time.RFC3339)
		}
		result.Items = append(result.Items, item)
	}
	if resp != nil && resp.LastPage > 0 {
		total := resp.LastPage * limit
		result.TotalApprox = &total
	}

	g.cache.Put(key, result)
	return result, nil
}

// ListProposalFiles returns the files changed by one proposal. Call
// volume is low, so results are not cached.
func (g *Gateway) ListProposalFiles(ctx context.Context, number int) ([]model.ProposalFile, error) {
	if number <= 0 {
		return nil, appErr.NewValidationError("invalid proposal number: %d", number)
	}

	var files []*gh.CommitFile
	err := g.call(ctx, func(ctx context.Context) error {
		var err error
		files, _, err = g.gh.PullRequests.ListFiles(ctx, g.cfg.Owner, g.cfg.Repo, number, &gh.ListOptions{PerPage: 100})
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.ProposalFile, 0, len(files))
	for _, file := range files {
		out = append(out, model.ProposalFile{
			Filename:    file.GetFilename(),
			Status:      file.GetStatus(),
			ContentsURL: file.GetContentsURL(),
		})
	}
	return out, nil
}

// GetRawContent fetches an arbitrary content-host URL. URLs outside
// the canonical repository's contents path are rejected before any
// network call so the gateway cannot be driven as an open proxy.
func (g *Gateway) GetRawContent(ctx context.Context, rawURL string) (string, error) {
	path, ref, err := g.allowContentURL(rawURL)
	if err != nil {
		return "", err
	}
	return g.fetchContents(ctx, path, ref)
}

// allowContentURL validates a contents URL against the allow-list
// and resolves it to a repository path plus ref.
func (g *Gateway) allowContentURL(rawURL string) (string, string, error) {
	if rawURL == "" {
		return "", "", appErr.NewValidationError("url is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", appErr.NewValidationError("malformed url: %s", rawURL)
	}
	if parsed.Host != g.apiHost {
		return "", "", appErr.NewValidationError("host %q is not allowed", parsed.Host)
	}
	if !strings.HasPrefix(parsed.Path, g.contentsPrefix+"/") {
		return "", "", appErr.NewValidationError("path %q is outside the contents allow-list", parsed.Path)
	}

	path := strings.TrimPrefix(parsed.Path, g.contentsPrefix+"/")
	ref := parsed.Query().Get("ref")
	if ref == "" {
		ref = g.cfg.Branch
	}
	return path, ref, nil
}

func (g *Gateway) fetchContents(ctx context.Context, path, ref string) (string, error) {
	var file *gh.RepositoryContent
	err := g.call(ctx, func(ctx context.Context) error {
		var err error
		file, _, _, err = g.gh.Repositories.GetContents(ctx, g.cfg.Owner, g.cfg.Repo, path, &gh.RepositoryContentGetOptions{Ref: ref})
		return err
	})
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", appErr.NewUpstreamError(http.StatusBadGateway, fmt.Sprintf("%s is a directory, not a file", path))
	}
	text, err := file.GetContent()
	if err != nil {
		return "", appErr.NewUpstreamError(http.StatusBadGateway, fmt.Sprintf("decode content: %v", err))
	}
	return text, nil
}

// call runs one outbound request under the rate limiter and per-call
// timeout, mapping any failure to an UpstreamError.
func (g *Gateway) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return appErr.NewUpstreamError(http.StatusBadGateway, err.Error())
	}
	if err := fn(ctx); err != nil {
		mapped := mapUpstreamError(err)
		logutil.GetLogger(ctx).Warn("document host call failed",
			zap.Int("status", mapped.Status), zap.String("note", mapped.Note))
		return mapped
	}
	return nil
}

func (g *Gateway) clampPagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = g.pagination.DefaultLimit
	}
	if limit > g.pagination.MaxLimit {
		limit = g.pagination.MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Mirrors reports the configured document host mirrors, for the
// health endpoint.
func (g *Gateway) Mirrors() []string {
	return g.cfg.APIMirrors
}

func mapUpstreamError(err error) *appErr.UpstreamError {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return appErr.NewUpstreamError(ghErr.Response.StatusCode, ghErr.Message)
	}
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return appErr.NewUpstreamError(rateErr.Response.StatusCode, rateErr.Message)
	}
	return appErr.NewUpstreamError(http.StatusBadGateway, err.Error())
}
