package lore

import "strings"

// Search filters the index by free text and/or a selected tag. Every
// query token must appear as a substring of the section's lower-cased
// title and content for the section to match; the tag filter requires
// exact membership in the section's tag list. With neither filter
// active the index is returned unchanged. Key order is preserved.
func Search(idx *Index, query, selectedTag string) *Index {
	query = strings.TrimSpace(query)
	selectedTag = strings.ToLower(strings.TrimSpace(selectedTag))
	if query == "" && selectedTag == "" {
		return idx
	}

	tokens := tokenize(query)
	results := newIndex()
	for _, key := range idx.keys {
		section := idx.sections[key]
		haystack := strings.ToLower(section.Title + "\n" + section.Content)

		matches := true
		for _, tok := range tokens {
			if !strings.Contains(haystack, tok) {
				matches = false
				break
			}
		}
		if matches && selectedTag != "" {
			matches = false
			for _, tag := range section.Tags {
				if tag == selectedTag {
					matches = true
					break
				}
			}
		}
		if matches {
			results.add(section)
		}
	}
	return results
}
