package lore

import (
	"sort"
	"strconv"
	"strings"

	"github.com/worldlore/lorekeeper/internal/model"
)

// Index maps section IDs to fully annotated sections while preserving
// insertion order: canonical sections first in document order, then
// proposed sections grouped by proposal in fetch order. An index is
// rebuilt wholesale on each aggregation pass and never mutated.
type Index struct {
	keys     []string
	sections map[string]*model.Section
}

func newIndex() *Index {
	return &Index{sections: map[string]*model.Section{}}
}

func (x *Index) add(s *model.Section) {
	if _, dup := x.sections[s.SectionID]; !dup {
		x.keys = append(x.keys, s.SectionID)
	}
	x.sections[s.SectionID] = s
}

func (x *Index) Get(sectionID string) (*model.Section, bool) {
	s, ok := x.sections[sectionID]
	return s, ok
}

// Keys returns section IDs in insertion order.
func (x *Index) Keys() []string {
	keys := make([]string, len(x.keys))
	copy(keys, x.keys)
	return keys
}

func (x *Index) Len() int {
	return len(x.keys)
}

// Sections returns all sections in insertion order.
func (x *Index) Sections() []*model.Section {
	out := make([]*model.Section, 0, len(x.keys))
	for _, key := range x.keys {
		out = append(out, x.sections[key])
	}
	return out
}

// Build merges canonical sections and proposal sections into a fresh
// index. A proposed section whose normalized title duplicates a
// canonical heading is dropped, so the index never shadows canon.
func Build(canon []model.Section, proposals []model.Proposal) *Index {
	idx := newIndex()

	canonTitles := map[string]struct{}{}
	for i, section := range canon {
		s := section
		s.SectionID = "canon-" + strconv.Itoa(i)
		s.Source = "canon"
		annotate(&s)
		idx.add(&s)
		canonTitles[normalizeTitle(s.Title)] = struct{}{}
	}

	for _, proposal := range proposals {
		source := "proposed-" + strconv.Itoa(proposal.PRNumber)
		for j, section := range proposal.Sections {
			if _, dup := canonTitles[normalizeTitle(section.Title)]; dup {
				continue
			}
			s := section
			s.SectionID = source + "-" + strconv.Itoa(j)
			s.Source = source
			s.Metadata = mergeProposalMetadata(s.Metadata, proposal)
			annotate(&s)
			idx.add(&s)
		}
	}
	return idx
}

// annotate computes the tag profile and chunks for a section. The
// profile spans title, metadata values and body text; metadata keys
// are visited in sorted order so the first-seen tie-break is stable.
func annotate(s *model.Section) {
	parts := []string{s.Title}
	metaKeys := make([]string, 0, len(s.Metadata))
	for key := range s.Metadata {
		metaKeys = append(metaKeys, key)
	}
	sort.Strings(metaKeys)
	for _, key := range metaKeys {
		parts = append(parts, s.Metadata[key])
	}
	parts = append(parts, s.Content)

	s.Tags, s.TokenCounts = tagProfile(strings.Join(parts, "\n"))
	s.Chunks = chunkContent(s.Content)
}

func mergeProposalMetadata(meta map[string]string, p model.Proposal) map[string]string {
	merged := make(map[string]string, len(meta)+3)
	for key, value := range meta {
		merged[key] = value
	}
	merged["prtitle"] = p.Title
	merged["prnumber"] = strconv.Itoa(p.PRNumber)
	merged["date"] = p.Date
	return merged
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
