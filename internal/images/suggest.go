package images

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/sitebuilder/internal/models"
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// Suggest guesses where each image belongs from its file name and a short
// description of the site. The rules are keyword matches, nothing smarter.
func Suggest(entries []models.ImageEntry, websiteContext string) []models.Suggestion {
	ctx := strings.ToLower(websiteContext)

	suggestions := make([]models.Suggestion, 0, len(entries))
	for _, e := range entries {
		suggestions = append(suggestions, suggestOne(e.Name, ctx))
	}
	return suggestions
}

func suggestOne(name, ctx string) models.Suggestion {
	lower := strings.ToLower(name)
	s := models.Suggestion{
		Image:       name,
		HTMLExample: ImgTag(name),
		Confidence:  ConfidenceMedium,
	}

	switch {
	case strings.Contains(lower, "logo"):
		s.SuggestedUsage = "Use as website logo in header"
		s.HTMLExample = fmt.Sprintf(`<img src="%s" alt="Company Logo" class="logo" style="height: 50px;">`, name)
		s.Confidence = ConfidenceHigh
	case containsAny(lower, "hero", "banner"):
		s.SuggestedUsage = "Use as hero/banner background image"
		s.HTMLExample = fmt.Sprintf(`<div style="background-image: url('%s'); background-size: cover; background-position: center;"></div>`, name)
		s.Confidence = ConfidenceHigh
	case strings.Contains(lower, "product"):
		s.SuggestedUsage = "Use in product showcase or gallery"
		s.HTMLExample = fmt.Sprintf(`<img src="%s" alt="Product" class="product-image" style="max-width: 300px;">`, name)
		s.Confidence = ConfidenceHigh
	case containsAny(lower, "team", "staff"):
		s.SuggestedUsage = "Use in team/about section"
		s.HTMLExample = fmt.Sprintf(`<img src="%s" alt="Team Member" class="team-photo" style="border-radius: 50%%; width: 150px;">`, name)
		s.Confidence = ConfidenceHigh
	case strings.Contains(lower, "icon"):
		s.SuggestedUsage = "Use as icon or small decorative element"
		s.HTMLExample = fmt.Sprintf(`<img src="%s" alt="Icon" style="width: 32px; height: 32px;">`, name)
		s.Confidence = ConfidenceMedium
	}

	// the site description can override what the file name implied
	switch {
	case strings.Contains(ctx, "portfolio") && containsAny(lower, "work", "project", "portfolio"):
		s.SuggestedUsage = "Perfect for portfolio showcase"
		s.Confidence = ConfidenceHigh
	case strings.Contains(ctx, "landing") && strings.Contains(lower, "hero"):
		s.SuggestedUsage = "Ideal for landing page hero section"
		s.Confidence = ConfidenceHigh
	}

	return s
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
