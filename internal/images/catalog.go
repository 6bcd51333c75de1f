// Package images catalogs the image assets available to the website.
package images

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/sitebuilder/internal/models"
)

// ErrNotFound is returned by Lookup for names that are not in the catalog.
var ErrNotFound = errors.New("image not found")

// SupportedFormats lists the file extensions treated as images.
var SupportedFormats = []string{".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".bmp", ".ico"}

// Catalog scans a directory for images. Nothing is cached; every call sees
// the directory as it is now.
type Catalog struct {
	dir string
}

func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

func (c *Catalog) Dir() string {
	return c.dir
}

// ScanResult is the outcome of a directory scan. Notice is set instead of
// Entries when there is nothing to show.
type ScanResult struct {
	Entries []models.ImageEntry
	Notice  string
}

// Names returns the file names of all entries
func (r *ScanResult) Names() []string {
	names := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		names = append(names, e.Name)
	}
	return names
}

// Scan lists supported images in the directory, creating it if missing.
func (c *Catalog) Scan() (*ScanResult, error) {
	if _, err := os.Stat(c.dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create images directory: %w", err)
		}
		slog.Info("Created images directory", "dir", c.dir)
		return &ScanResult{
			Notice: fmt.Sprintf("Images directory created at: %s. Please add some images.", c.dir),
		}, nil
	}

	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan images directory: %w", err)
	}

	var entries []models.ImageEntry
	for _, de := range dirEntries {
		if de.IsDir() || !IsSupported(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			slog.Debug("Skipping image", "name", de.Name(), "err", err)
			continue
		}
		entries = append(entries, c.entry(de.Name(), info.Size()))
	}

	if len(entries) == 0 {
		return &ScanResult{
			Notice: "No supported image files found. Please add images to the directory.",
		}, nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return &ScanResult{Entries: entries}, nil
}

// Lookup returns the entry for name along with the scan it came from.
func (c *Catalog) Lookup(name string) (*models.ImageEntry, *ScanResult, error) {
	result, err := c.Scan()
	if err != nil {
		return nil, nil, err
	}
	for i := range result.Entries {
		if result.Entries[i].Name == name {
			return &result.Entries[i], result, nil
		}
	}
	return nil, result, fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Detail adds the HTML reference snippets to an entry.
func Detail(e models.ImageEntry) models.ImageDetail {
	return models.ImageDetail{
		ImageEntry:   e,
		RelativePath: e.Name,
		HTMLUsage:    ImgTag(e.Name),
	}
}

// ImgTag is the plain <img> element for a file in the site root.
func ImgTag(name string) string {
	return fmt.Sprintf(`<img src="%s" alt="%s">`, name, Stem(name))
}

// Stem is the file name without its extension.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// IsSupported reports whether name has an image extension.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range SupportedFormats {
		if ext == f {
			return true
		}
	}
	return false
}

// HumanSize formats a byte count the way the catalog reports it.
func HumanSize(bytes int64) string {
	return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
}

func (c *Catalog) entry(name string, size int64) models.ImageEntry {
	path := filepath.Join(c.dir, name)
	ext := strings.ToLower(filepath.Ext(name))

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = "image/unknown"
	}
	// TypeByExtension may append parameters such as charset for svg
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	e := models.ImageEntry{
		Name:     name,
		Path:     path,
		Size:     HumanSize(size),
		Format:   ext,
		MimeType: mimeType,
	}

	width, height, err := dimensions(path)
	if err == nil {
		e.Width, e.Height = width, height
	}
	return e
}

func dimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	img, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}

	return img.Width, img.Height, nil
}
