// Package codeblock pulls fenced code blocks out of markdown text.
package codeblock

import (
	"regexp"
	"strings"
)

// NoText is returned when there is nothing to search.
const NoText = "no text provided"

// Extract returns the trimmed body of the first fenced block tagged with
// lang, or "" when there is none.
func Extract(text, lang string) string {
	if text == "" {
		return NoText
	}

	lang = strings.ToLower(strings.TrimSpace(lang))
	re, err := regexp.Compile("(?s)```" + regexp.QuoteMeta(lang) + `\s+(.*?)` + "```")
	if err != nil {
		return ""
	}

	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
