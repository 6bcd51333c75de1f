package images

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/lehigh-university-libraries/sitebuilder/internal/models"
)

const (
	emptyGallery  = "<!-- No images available for gallery -->"
	galleryHeader = "<!-- Image Gallery -->\n"
	galleryFooter = "\n<!-- End Image Gallery -->"
)

// html/template drops comments, so the markers are added around the output
var galleryTemplate = template.Must(template.New("gallery").Parse(`<div class="image-gallery" style="display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; padding: 20px;">
{{- range .}}
    <div class="gallery-item" style="text-align: center; padding: 15px; border: 1px solid #ddd; border-radius: 8px;">
        <img src="{{.Name}}" alt="{{.Alt}}" style="max-width: 100%; height: 150px; object-fit: cover; border-radius: 4px;">
        <p style="margin-top: 10px; font-size: 14px; color: #666;">{{.Name}}</p>
        <small style="color: #999;">{{.Size}}</small>
    </div>
{{- end}}
</div>`))

type galleryItem struct {
	Name string
	Alt  string
	Size string
}

// Gallery renders a responsive grid showing every entry.
func Gallery(entries []models.ImageEntry) (string, error) {
	if len(entries) == 0 {
		return emptyGallery, nil
	}

	items := make([]galleryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, galleryItem{Name: e.Name, Alt: Stem(e.Name), Size: e.Size})
	}

	var buf bytes.Buffer
	buf.WriteString(galleryHeader)
	if err := galleryTemplate.Execute(&buf, items); err != nil {
		return "", fmt.Errorf("failed to render gallery: %w", err)
	}
	buf.WriteString(galleryFooter)
	return strings.TrimSpace(buf.String()), nil
}
