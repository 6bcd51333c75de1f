package models

// ImageEntry describes one image file found in the project directory
type ImageEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     string `json:"size"`
	Format   string `json:"format"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// ImageDetail is an ImageEntry plus the snippets needed to reference it from HTML
type ImageDetail struct {
	ImageEntry
	RelativePath string `json:"relative_path"`
	HTMLUsage    string `json:"html_usage"`
}

// Suggestion is a heuristic hint on where an image fits in a page
type Suggestion struct {
	Image          string `json:"image"`
	SuggestedUsage string `json:"suggested_usage"`
	HTMLExample    string `json:"html_example"`
	Confidence     string `json:"confidence"` // "high", "medium"
}

// SessionSummary is the API view of a checkpointed conversation thread
type SessionSummary struct {
	ID       string `json:"id"`
	Messages int    `json:"messages"`
	Current  bool   `json:"current"`
}
