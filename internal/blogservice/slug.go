package blogservice

import (
	"regexp"
	"strings"
)

var (
	nonWordRX      = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRX   = regexp.MustCompile(`\s+`)
	repeatHyphenRX = regexp.MustCompile(`-+`)
)

// GenerateSlug derives the URL slug a blog is unique by: lowercase, word
// characters only, single hyphens between words, no leading or trailing
// hyphen. The same title always yields the same slug, so duplicate titles are
// rejected at creation.
func GenerateSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonWordRX.ReplaceAllString(slug, "")
	slug = whitespaceRX.ReplaceAllString(slug, "-")
	slug = repeatHyphenRX.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
