package codeblock

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		lang     string
		expected string
	}{
		{
			name:     "single html block",
			text:     "Here you go:\n```html\n  <h1>Hello</h1>\n```\nEnjoy.",
			lang:     "html",
			expected: "<h1>Hello</h1>",
		},
		{
			name:     "language is case insensitive on the caller side",
			text:     "```css\nbody { margin: 0; }\n```",
			lang:     "CSS",
			expected: "body { margin: 0; }",
		},
		{
			name:     "first match wins",
			text:     "```html\n<p>one</p>\n```\n```html\n<p>two</p>\n```",
			lang:     "html",
			expected: "<p>one</p>",
		},
		{
			name:     "skips other languages",
			text:     "```css\nh1 {}\n```\n```html\n<h1></h1>\n```",
			lang:     "html",
			expected: "<h1></h1>",
		},
		{
			name:     "multiline body",
			text:     "```html\n<ul>\n  <li>a</li>\n</ul>\n```",
			lang:     "html",
			expected: "<ul>\n  <li>a</li>\n</ul>",
		},
		{
			name:     "no matching block",
			text:     "```js\nconsole.log(1)\n```",
			lang:     "html",
			expected: "",
		},
		{
			name:     "plain text",
			text:     "just words",
			lang:     "html",
			expected: "",
		},
		{
			name:     "empty text",
			text:     "",
			lang:     "html",
			expected: NoText,
		},
		{
			name:     "language with regex metacharacters",
			text:     "```c++\nint main() {}\n```",
			lang:     "c++",
			expected: "int main() {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Extract(tt.text, tt.lang)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestExtractProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a single html block round trips its trimmed body", prop.ForAll(
		func(body string) bool {
			text := "intro\n```html\n  " + body + "  \n```\noutro"
			return Extract(text, "html") == body
		},
		gen.AlphaString(),
	))

	properties.Property("text without fences never yields a block", prop.ForAll(
		func(text string) bool {
			return Extract("x"+text, "html") == ""
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
