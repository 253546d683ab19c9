package lore

import (
	"sort"

	"github.com/worldlore/lorekeeper/internal/model"
	appErr "github.com/worldlore/lorekeeper/internal/pkg/errors"
)

const maxRelated = 8

// FindRelated ranks every other section sharing at least one tag with
// the target by weighted token overlap. The shared weight sums, per
// shared tag, the smaller of the two occurrence counts; it is divided
// by the larger of the two sections' total token counts, so the score
// is intentionally not symmetric between the two directions.
func FindRelated(sectionID string, idx *Index) ([]model.RelatedSection, error) {
	target, ok := idx.Get(sectionID)
	if !ok {
		return nil, appErr.ErrNotFound
	}

	targetTags := map[string]struct{}{}
	for _, tag := range target.Tags {
		targetTags[tag] = struct{}{}
	}
	targetWeight := totalWeight(target.TokenCounts)

	var related []model.RelatedSection
	for _, other := range idx.Sections() {
		if other.SectionID == sectionID {
			continue
		}
		var shared []string
		sharedWeight := 0
		for _, tag := range other.Tags {
			if _, ok := targetTags[tag]; !ok {
				continue
			}
			shared = append(shared, tag)
			sharedWeight += min(target.TokenCounts[tag], other.TokenCounts[tag])
		}
		if len(shared) == 0 {
			continue
		}
		denom := max(targetWeight, max(totalWeight(other.TokenCounts), 1))
		related = append(related, model.RelatedSection{
			SectionID:  other.SectionID,
			Title:      other.Title,
			Source:     other.Source,
			SharedTags: shared,
			Similarity: float64(sharedWeight) / float64(denom),
		})
	}

	sort.SliceStable(related, func(i, j int) bool {
		if related[i].Similarity != related[j].Similarity {
			return related[i].Similarity > related[j].Similarity
		}
		return len(related[i].SharedTags) > len(related[j].SharedTags)
	})
	if len(related) > maxRelated {
		related = related[:maxRelated]
	}
	return related, nil
}

func totalWeight(counts map[string]int) int {
	total := 0
	for _, count := range counts {
		total += count
	}
	return total
}
