package toolserver

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/sitebuilder/internal/images"
	"github.com/lehigh-university-libraries/sitebuilder/internal/netlify"
	"github.com/lehigh-university-libraries/sitebuilder/internal/workspace"
	"github.com/mark3labs/mcp-go/mcp"
)

type stubRunner struct {
	results map[string]netlify.Result
	dirs    []string
}

func (r *stubRunner) Run(ctx context.Context, dir, name string, args ...string) (netlify.Result, error) {
	r.dirs = append(r.dirs, dir)
	key := name
	if len(args) > 0 {
		key += " " + args[0]
	}
	return r.results[key], nil
}

type fixture struct {
	srv    *Server
	dir    string
	runner *stubRunner
	opened []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{runner: &stubRunner{results: map[string]netlify.Result{}}}

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f.dir = dir

	ws, err := workspace.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	ws.SetOpener(func(path string) error {
		f.opened = append(f.opened, path)
		return nil
	})

	cli := netlify.New(f.runner)
	cli.SetLookPath(func(string) (string, error) { return "/usr/bin/netlify", nil })

	f.srv = New(ws, cli, "test")
	return f
}

func (f *fixture) writePNG(t *testing.T, name string, w, h int) {
	t.Helper()
	file, err := os.Create(filepath.Join(f.dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

type handlerFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, h handlerFunc, args map[string]any) string {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("handler returned no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestSaveCodeToPath(t *testing.T) {
	f := newFixture(t)
	f.writePNG(t, "logo.png", 4, 2)

	out := call(t, f.srv.saveCodeToPath, map[string]any{
		"the_extracted_code_blocks": "<h1>Bakery</h1>",
		"name_of_the_file":          "index.html",
	})

	want := filepath.Join(f.dir, "index.html")
	if !strings.HasPrefix(out, "✅ Website file saved successfully: "+want) {
		t.Errorf("Unexpected output %q", out)
	}
	if !strings.Contains(out, "📸 Available images in directory: logo.png") {
		t.Errorf("Expected image hint, got %q", out)
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "<h1>Bakery</h1>" {
		t.Errorf("Unexpected file contents %q (%v)", data, err)
	}

	// the saved page must not show up as an image
	listing := call(t, f.srv.listAvailableImages, nil)
	if strings.Contains(listing, "index.html") {
		t.Errorf("Listing includes saved code file: %s", listing)
	}
}

func TestSaveCodeToPathRejectsEscape(t *testing.T) {
	f := newFixture(t)
	out := call(t, f.srv.saveCodeToPath, map[string]any{
		"the_extracted_code_blocks": "x",
		"name_of_the_file":          "../outside.html",
	})
	if !strings.HasPrefix(out, "❌ Failed to save file") {
		t.Errorf("Expected failure, got %q", out)
	}
}

func TestSaveCodeToPathWithoutImages(t *testing.T) {
	f := newFixture(t)
	out := call(t, f.srv.saveCodeToPath, map[string]any{
		"the_extracted_code_blocks": "body{}",
		"name_of_the_file":          "style.css",
	})
	if strings.Contains(out, "📸") {
		t.Errorf("Expected no image hint, got %q", out)
	}
}

func TestListAvailableImages(t *testing.T) {
	f := newFixture(t)

	var empty map[string]string
	if err := json.Unmarshal([]byte(call(t, f.srv.listAvailableImages, nil)), &empty); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(empty["message"], "No supported image files found") {
		t.Errorf("Expected empty notice, got %v", empty)
	}

	f.writePNG(t, "hero.png", 10, 5)
	var listing struct {
		AvailableImages map[string]struct {
			Name     string `json:"name"`
			MimeType string `json:"mime_type"`
			Width    int    `json:"width"`
		} `json:"available_images"`
		TotalImages      int      `json:"total_images"`
		SupportedFormats []string `json:"supported_formats"`
		ImagesDirectory  string   `json:"images_directory"`
	}
	if err := json.Unmarshal([]byte(call(t, f.srv.listAvailableImages, nil)), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.TotalImages != 1 || listing.AvailableImages["hero.png"].MimeType != "image/png" {
		t.Errorf("Unexpected listing %+v", listing)
	}
	if listing.AvailableImages["hero.png"].Width != 10 {
		t.Errorf("Expected width 10, got %d", listing.AvailableImages["hero.png"].Width)
	}
	if listing.ImagesDirectory != f.dir || len(listing.SupportedFormats) != len(images.SupportedFormats) {
		t.Errorf("Unexpected metadata %+v", listing)
	}
}

func TestGetImageInfo(t *testing.T) {
	f := newFixture(t)
	f.writePNG(t, "logo.png", 1, 1)

	out := call(t, f.srv.getImageInfo, map[string]any{"image_name": "logo.png"})
	if !strings.Contains(out, `"html_usage": "<img src=\"logo.png\" alt=\"logo\">"`) {
		t.Errorf("Expected unescaped html usage, got %s", out)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatal(err)
	}
	if info["relative_path"] != "logo.png" || info["name"] != "logo.png" {
		t.Errorf("Unexpected info %v", info)
	}

	var missing struct {
		Error           string   `json:"error"`
		AvailableImages []string `json:"available_images"`
	}
	if err := json.Unmarshal([]byte(call(t, f.srv.getImageInfo, map[string]any{"image_name": "nope.png"})), &missing); err != nil {
		t.Fatal(err)
	}
	if missing.Error != "Image 'nope.png' not found." || len(missing.AvailableImages) != 1 {
		t.Errorf("Unexpected not found payload %+v", missing)
	}
}

func TestGetImageInfoRequiresName(t *testing.T) {
	f := newFixture(t)
	req := mcp.CallToolRequest{}
	res, err := f.srv.getImageInfo(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("Expected a tool error for missing image_name")
	}
}

func TestCopyImageToWebsite(t *testing.T) {
	f := newFixture(t)
	f.writePNG(t, "team.png", 2, 2)

	out := call(t, f.srv.copyImageToWebsite, map[string]any{"image_name": "team.png"})
	if !strings.HasPrefix(out, "✅ Image 'team.png' is already in the website directory.") {
		t.Errorf("Unexpected output %q", out)
	}

	out = call(t, f.srv.copyImageToWebsite, map[string]any{"image_name": "team.png", "new_name": "about.png"})
	if !strings.HasPrefix(out, "✅ Image copied successfully!") || !strings.Contains(out, `<img src="about.png" alt="about">`) {
		t.Errorf("Unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "about.png")); err != nil {
		t.Errorf("Expected copy to exist: %v", err)
	}

	out = call(t, f.srv.copyImageToWebsite, map[string]any{"image_name": "ghost.png"})
	if !strings.HasPrefix(out, "❌ Image 'ghost.png' not found.\nAvailable images: about.png, team.png") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestGenerateImageGalleryHTML(t *testing.T) {
	f := newFixture(t)
	f.writePNG(t, "a.png", 1, 1)
	f.writePNG(t, "b.png", 1, 1)

	out := call(t, f.srv.generateImageGalleryHTML, nil)
	if !strings.HasPrefix(out, "<!-- Image Gallery -->") || !strings.HasSuffix(out, "<!-- End Image Gallery -->") {
		t.Errorf("Expected gallery markers, got %q", out)
	}
	if strings.Count(out, `class="gallery-item"`) != 2 {
		t.Errorf("Expected two gallery items, got %q", out)
	}
}

func TestSuggestImageUsage(t *testing.T) {
	f := newFixture(t)
	f.writePNG(t, "logo.png", 1, 1)
	f.writePNG(t, "sunset.png", 1, 1)

	var result struct {
		WebsiteContext string `json:"website_context"`
		TotalImages    int    `json:"total_images"`
		Suggestions    []struct {
			Image          string `json:"image"`
			SuggestedUsage string `json:"suggested_usage"`
			Confidence     string `json:"confidence"`
		} `json:"suggestions"`
	}
	out := call(t, f.srv.suggestImageUsage, map[string]any{"website_context": "bakery"})
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatal(err)
	}
	if result.WebsiteContext != "bakery" || result.TotalImages != 2 {
		t.Errorf("Unexpected result %+v", result)
	}
	for _, s := range result.Suggestions {
		switch s.Image {
		case "logo.png":
			if s.Confidence != images.ConfidenceHigh || s.SuggestedUsage != "Use as website logo in header" {
				t.Errorf("Unexpected logo suggestion %+v", s)
			}
		case "sunset.png":
			if s.SuggestedUsage == "Use as website logo in header" {
				t.Errorf("Unrelated image labelled as logo: %+v", s)
			}
		}
	}
}

func TestExtractCodeBlocks(t *testing.T) {
	f := newFixture(t)
	out := call(t, f.srv.extractCodeBlocks, map[string]any{
		"text": "Here:\n```html\n  <p>hi</p>\n```\n",
		"lang": "HTML",
	})
	if out != "<p>hi</p>" {
		t.Errorf("Unexpected %q", out)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"text": "no code", "lang": "css"}
	res, err := f.srv.extractCodeBlocks(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if text := res.Content[0].(mcp.TextContent).Text; text != "" {
		t.Errorf("Expected empty string, got %q", text)
	}
}

func TestDisplayTheWebsite(t *testing.T) {
	f := newFixture(t)

	out := call(t, f.srv.displayTheWebsite, nil)
	if !strings.HasPrefix(out, "❌ Failed to open website") {
		t.Errorf("Expected failure without index.html, got %q", out)
	}

	if err := os.WriteFile(filepath.Join(f.dir, "index.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	out = call(t, f.srv.displayTheWebsite, nil)
	if out != "✅ Website opened successfully in the default web browser." {
		t.Errorf("Unexpected %q", out)
	}
	if len(f.opened) != 1 || f.opened[0] != filepath.Join(f.dir, "index.html") {
		t.Errorf("Unexpected opened files %v", f.opened)
	}
}

func TestDeployNetlify(t *testing.T) {
	f := newFixture(t)
	f.runner.results["netlify deploy"] = netlify.Result{Output: "Deploying\n{\"deploy_url\": \"https://abc.netlify.app\"}"}

	out := call(t, f.srv.deployNetlify, map[string]any{"production": true})
	if out != "✅ Deploy successful!\n\nURL: https://abc.netlify.app" {
		t.Errorf("Unexpected %q", out)
	}
	if f.runner.dirs[len(f.runner.dirs)-1] != f.dir {
		t.Errorf("Expected deploy to run in project dir, got %v", f.runner.dirs)
	}

	f.runner.results["netlify deploy"] = netlify.Result{Output: "Error: Not authorized"}
	out = call(t, f.srv.deployNetlify, nil)
	if !strings.Contains(out, "Could not find deploy URL") || !strings.Contains(out, "Error: Not authorized") {
		t.Errorf("Unexpected %q", out)
	}
}

func TestGoToProjectFolder(t *testing.T) {
	f := newFixture(t)
	out := call(t, f.srv.goToProjectFolder, nil)
	if out != "✅ Changed working directory to: "+f.dir {
		t.Errorf("Unexpected %q", out)
	}
}

func TestCheckNetlifyCLI(t *testing.T) {
	f := newFixture(t)
	f.runner.results["netlify --version"] = netlify.Result{Output: "netlify-cli/17.0.0"}
	if out := call(t, f.srv.checkNetlifyCLI, nil); out != "Netlify CLI is installed.\n\nnetlify-cli/17.0.0" {
		t.Errorf("Unexpected %q", out)
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw     string
		want    Endpoint
		wantErr bool
	}{
		{raw: DefaultURL, want: Endpoint{Addr: "127.0.0.1:7860", BaseURL: "http://127.0.0.1:7860", BasePath: "/mcp"}},
		{raw: "http://localhost/sse", want: Endpoint{Addr: "localhost:80", BaseURL: "http://localhost", BasePath: ""}},
		{raw: "https://tools.example.com/api/mcp/sse", want: Endpoint{Addr: "tools.example.com:443", BaseURL: "https://tools.example.com", BasePath: "/api/mcp"}},
		{raw: "http://127.0.0.1:7860/mcp", wantErr: true},
		{raw: "http://127.0.0.1:7860/mcp/sse/", wantErr: true},
		{raw: "http://127.0.0.1:7860", wantErr: true},
		{raw: "http://127.0.0.1:7860/mcp/notsse", wantErr: true},
		{raw: "ftp://x/sse", wantErr: true},
		{raw: "/mcp/sse", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseEndpoint(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if *got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, *got)
			}
		})
	}
}
