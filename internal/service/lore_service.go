package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/worldlore/lorekeeper/internal/lore"
	"github.com/worldlore/lorekeeper/internal/markdown"
	"github.com/worldlore/lorekeeper/internal/model"
	appErr "github.com/worldlore/lorekeeper/internal/pkg/errors"
)

// enrichConcurrency bounds the number of proposals enriched at once.
const enrichConcurrency = 4

var errNoMarkdownFile = errors.New("proposal has no markdown file")

// Upstream is the slice of the gateway the aggregation flow needs.
type Upstream interface {
	GetCanonicalDocument(ctx context.Context) (string, error)
	ListOpenProposals(ctx context.Context, limit, offset int) (*model.ProposalPage, error)
	ListProposalFiles(ctx context.Context, number int) ([]model.ProposalFile, error)
	GetRawContent(ctx context.Context, rawURL string) (string, error)
}

// LoreService aggregates the canonical document and open proposals
// into one in-memory index, rebuilt wholesale on each pass.
type LoreService struct {
	upstream  Upstream
	pageLimit int

	mu    sync.RWMutex
	index *lore.Index
}

func NewLoreService(upstream Upstream, pageLimit int) *LoreService {
	return &LoreService{upstream: upstream, pageLimit: pageLimit}
}

// Refresh rebuilds the index from upstream and swaps it in. The old
// index stays current until the new one is complete.
func (s *LoreService) Refresh(ctx context.Context) (*lore.Index, error) {
	idx, err := s.buildIndex(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
	return idx, nil
}

// Current returns the latest built index, or nil before first build.
func (s *LoreService) Current() *lore.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Ensure returns the current index, building it on first use.
func (s *LoreService) Ensure(ctx context.Context) (*lore.Index, error) {
	if idx := s.Current(); idx != nil {
		return idx, nil
	}
	return s.Refresh(ctx)
}

func (s *LoreService) Search(ctx context.Context, query, tag string) (*lore.Index, error) {
	idx, err := s.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	return lore.Search(idx, query, tag), nil
}

func (s *LoreService) Related(ctx context.Context, sectionID string) ([]model.RelatedSection, error) {
	idx, err := s.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	return lore.FindRelated(sectionID, idx)
}

func (s *LoreService) GetSection(ctx context.Context, sectionID string) (*model.Section, error) {
	idx, err := s.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	section, ok := idx.Get(sectionID)
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return section, nil
}

func (s *LoreService) buildIndex(ctx context.Context) (*lore.Index, error) {
	logger := logutil.GetLogger(ctx)

	canonText, err := s.upstream.GetCanonicalDocument(ctx)
	if err != nil {
		return nil, err
	}
	canon := markdown.Parse(canonText)
	logger.Info("canonical document parsed", zap.Int("sections", len(canon)))

	page, err := s.upstream.ListOpenProposals(ctx, s.pageLimit, 0)
	if err != nil {
		return nil, err
	}

	proposals := s.enrichProposals(ctx, page.Items)
	logger.Info("proposals enriched",
		zap.Int("open", len(page.Items)), zap.Int("kept", len(proposals)))

	return lore.Build(canon, proposals), nil
}

// enrichProposals resolves each open proposal to its parsed markdown
// sections concurrently. A failed or empty proposal is dropped from
// the result, never surfaced as a global failure; survivors keep the
// original proposal order.
func (s *LoreService) enrichProposals(ctx context.Context, items []model.ProposalSummary) []model.Proposal {
	results := make([]*model.Proposal, len(items))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(enrichConcurrency)
	for i, item := range items {
		group.Go(func() error {
			proposal, err := s.enrichProposal(groupCtx, item)
			if err != nil {
				logutil.GetLogger(groupCtx).Warn("proposal enrichment dropped",
					zap.Int("number", item.Number), zap.Error(err))
				return nil
			}
			results[i] = proposal
			return nil
		})
	}
	// Goroutines never return an error; Wait only joins them.
	_ = group.Wait()

	proposals := make([]model.Proposal, 0, len(items))
	for _, proposal := range results {
		if proposal != nil {
			proposals = append(proposals, *proposal)
		}
	}
	return proposals
}

func (s *LoreService) enrichProposal(ctx context.Context, item model.ProposalSummary) (*model.Proposal, error) {
	files, err := s.upstream.ListProposalFiles(ctx, item.Number)
	if err != nil {
		return nil, err
	}

	var markdownFile *model.ProposalFile
	for i := range files {
		if strings.HasSuffix(files[i].Filename, ".md") {
			markdownFile = &files[i]
			break
		}
	}
	if markdownFile == nil {
		return nil, errNoMarkdownFile
	}

	content, err := s.upstream.GetRawContent(ctx, markdownFile.ContentsURL)
	if err != nil {
		return nil, err
	}
	sections := markdown.Parse(content)
	if len(sections) == 0 {
		return nil, errors.New("no sections after parsing")
	}

	return &model.Proposal{
		Title:    item.Title,
		State:    item.State,
		PRNumber: item.Number,
		Date:     item.CreatedAt,
		Sections: sections,
	}, nil
}
