package markdown

import (
	"strings"

	"github.com/worldlore/lorekeeper/internal/model"
)

// Parse splits raw markdown into ordered section records. Tags,
// chunks and source attribution are filled in later by the indexer.
//
// A line consisting solely of "---" toggles front-matter mode; inside
// it, "key: value" lines populate the current section's metadata with
// lower-cased keys and are not treated as content. A heading line
// closes the current section and opens a new one at the heading's
// depth. Sections whose trimmed content is empty are dropped, which
// also discards a title-only preamble before the first heading.
func Parse(raw string) []model.Section {
	if raw == "" {
		return nil
	}

	var sections []model.Section
	current := newSection("", 1)
	var buf []string
	inFrontMatter := false

	flush := func() {
		content := strings.TrimSpace(strings.Join(buf, "\n"))
		if current.Title != "" || content != "" {
			current.Content = content
			sections = append(sections, current)
		}
		buf = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "---" {
			inFrontMatter = !inFrontMatter
			continue
		}
		if inFrontMatter {
			key, value, ok := strings.Cut(trimmed, ":")
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			if ok && key != "" && value != "" {
				current.Metadata[strings.ToLower(key)] = value
			}
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			flush()
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			current = newSection(strings.TrimSpace(trimmed[level:]), level)
			continue
		}

		if trimmed != "" {
			buf = append(buf, line)
		}
	}
	flush()

	kept := sections[:0]
	for _, s := range sections {
		if s.Content != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func newSection(title string, level int) model.Section {
	return model.Section{
		Title:    title,
		Level:    level,
		Metadata: map[string]string{},
	}
}
