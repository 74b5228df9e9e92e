package utils

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	sanitizer = bluemonday.UGCPolicy()
	markdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// RenderMarkdown converts a markdown body into sanitized HTML. On a render
// failure the sanitized source is returned as plain text rather than
// failing the view.
func RenderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		if Sugar != nil {
			Sugar.Warnf("markdown render failed: %v", err)
		}
		return Sanitize(src)
	}
	return Sanitize(buf.String())
}

// ReadTime estimates reading minutes from word count at 200 wpm, minimum 1.
func ReadTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
