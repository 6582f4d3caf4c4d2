package app

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	postPolicy    = bluemonday.UGCPolicy()
	commentPolicy = bluemonday.StrictPolicy()
)

func init() {
	postPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	postPolicy.RequireNoReferrerOnLinks(true)
}

// renderPostBody converts a Markdown post body to sanitized HTML.
func renderPostBody(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return string(postPolicy.SanitizeBytes(buf.Bytes())), nil
}

// sanitizeComment strips all markup from a comment body.
func sanitizeComment(source string) string {
	return commentPolicy.Sanitize(source)
}
