package lore

import "strings"

// chunkSize is the accumulated character length at which a chunk is
// closed and a new one started.
const chunkSize = 700

// chunkContent splits content into paragraph-grouped slices sized for
// incremental display. Paragraphs are blocks separated by a blank
// line; consecutive paragraphs accumulate into the current chunk
// until its joined length reaches the threshold. Joining all chunks
// back with "\n\n" reproduces the content exactly, and even empty or
// short content yields a single chunk.
func chunkContent(content string) []string {
	paragraphs := strings.Split(content, "\n\n")

	var chunks []string
	var current []string
	for _, paragraph := range paragraphs {
		current = append(current, paragraph)
		if len(strings.Join(current, "\n\n")) >= chunkSize {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}
	if len(chunks) == 0 {
		chunks = []string{content}
	}
	return chunks
}
