package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// RenderHTML renders a markdown fragment (typically a section chunk)
// to HTML for clients that do not ship their own formatter.
func RenderHTML(raw string) (string, error) {
	var out bytes.Buffer
	if err := goldmark.New().Convert([]byte(raw), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}
