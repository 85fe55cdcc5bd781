// Package prompts holds the pure prompt-text logic: ##keyword extraction,
// category classification, variation generation and the structural
// constraint block shared by every generation.
package prompts

import (
	"regexp"
	"strings"
)

// keywordPattern matches two literal '#' characters immediately followed by
// one or more word characters; the captured word is the keyword.
var keywordPattern = regexp.MustCompile(`##(\w+)`)

// ExtractKeywords scans text for ##keyword markers and returns the matched
// words lowercased, deduplicated, in first-occurrence order. A prompt with
// no markers yields an empty slice.
func ExtractKeywords(text string) []string {
	matches := keywordPattern.FindAllStringSubmatch(text, -1)
	keywords := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		kw := strings.ToLower(m[1])
		if seen[kw] {
			continue
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}
	return keywords
}

// StripMarkers removes the ## markers from a prompt before it is sent to
// the image API. The markers exist only for tracking.
func StripMarkers(prompt string) string {
	return strings.ReplaceAll(prompt, "##", "")
}
