package toolserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/sitebuilder/internal/codeblock"
	"github.com/lehigh-university-libraries/sitebuilder/internal/images"
	"github.com/lehigh-university-libraries/sitebuilder/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

const indexFile = "index.html"

func (s *Server) register() {
	s.mcp.AddTool(mcp.NewTool("check_netlify_cli",
		mcp.WithDescription("Check if Netlify CLI is installed. Returns the CLI version when it is."),
	), s.checkNetlifyCLI)

	s.mcp.AddTool(mcp.NewTool("install_netlify_cli",
		mcp.WithDescription("Install Netlify CLI with npm if it is not already installed."),
	), s.installNetlifyCLI)

	s.mcp.AddTool(mcp.NewTool("login_netlify",
		mcp.WithDescription("Log in to Netlify. Opens a browser for the user to authorize the CLI."),
	), s.loginNetlify)

	s.mcp.AddTool(mcp.NewTool("deploy_netlify",
		mcp.WithDescription("Deploy the website folder to Netlify and return the deploy URL."),
		mcp.WithBoolean("production",
			mcp.Description("Publish to the live site instead of a draft deploy"),
		),
	), s.deployNetlify)

	s.mcp.AddTool(mcp.NewTool("extract_code_blocks",
		mcp.WithDescription("Extract the first fenced code block of a language from Markdown text."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Markdown text containing code blocks"),
		),
		mcp.WithString("lang",
			mcp.Required(),
			mcp.Description("Language tag of the block to extract, e.g. html or css"),
		),
	), s.extractCodeBlocks)

	s.mcp.AddTool(mcp.NewTool("save_code_to_path",
		mcp.WithDescription("Save code to a file in the website directory, overwriting any existing file."),
		mcp.WithString("the_extracted_code_blocks",
			mcp.Required(),
			mcp.Description("The code to write"),
		),
		mcp.WithString("name_of_the_file",
			mcp.Required(),
			mcp.Description("File name to save, e.g. index.html or style.css"),
		),
	), s.saveCodeToPath)

	s.mcp.AddTool(mcp.NewTool("display_the_website",
		mcp.WithDescription("Open index.html from the website directory in the default web browser."),
	), s.displayTheWebsite)

	s.mcp.AddTool(mcp.NewTool("go_to_project_folder_for_deployment",
		mcp.WithDescription("Prepare the website folder so it is used for deployment."),
	), s.goToProjectFolder)

	s.mcp.AddTool(mcp.NewTool("list_available_images",
		mcp.WithDescription("List all images available in the website directory as JSON."),
	), s.listAvailableImages)

	s.mcp.AddTool(mcp.NewTool("get_image_info",
		mcp.WithDescription("Get details and an HTML snippet for one image."),
		mcp.WithString("image_name",
			mcp.Required(),
			mcp.Description("Image file name, e.g. logo.png"),
		),
	), s.getImageInfo)

	s.mcp.AddTool(mcp.NewTool("copy_image_to_website",
		mcp.WithDescription("Copy an image into the website directory, optionally under a new name."),
		mcp.WithString("image_name",
			mcp.Required(),
			mcp.Description("Name of the source image"),
		),
		mcp.WithString("new_name",
			mcp.Description("New file name, defaults to the original name"),
		),
	), s.copyImageToWebsite)

	s.mcp.AddTool(mcp.NewTool("generate_image_gallery_html",
		mcp.WithDescription("Generate HTML for a gallery showing every available image."),
	), s.generateImageGalleryHTML)

	s.mcp.AddTool(mcp.NewTool("suggest_image_usage",
		mcp.WithDescription("Suggest where each image could be used on the website."),
		mcp.WithString("website_context",
			mcp.Required(),
			mcp.Description("Description of the website, e.g. 'portfolio website' or 'landing page'"),
		),
	), s.suggestImageUsage)
}

func (s *Server) checkNetlifyCLI(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.cli.Check(ctx)), nil
}

func (s *Server) installNetlifyCLI(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.cli.Install(ctx)
	if err != nil {
		slog.Error("Netlify CLI install failed", "err", err)
		return mcp.NewToolResultText(fmt.Sprintf("❌ %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) loginNetlify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.cli.Login(ctx)
	if err != nil {
		slog.Error("Netlify login failed", "err", err)
		return mcp.NewToolResultText(fmt.Sprintf("❌ %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) deployNetlify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prod := req.GetBool("production", false)

	if err := s.ws.Ensure(); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("❌ Failed to prepare website folder: %v", err)), nil
	}

	var summary string
	err := s.ws.View(func(dir string) error {
		d, err := s.cli.Deploy(ctx, dir, prod)
		if err != nil {
			return err
		}
		summary = d.Summary()
		return nil
	})
	if err != nil {
		slog.Error("Deploy failed", "err", err)
		return mcp.NewToolResultText(fmt.Sprintf("❌ Deploy failed: %v", err)), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func (s *Server) extractCodeBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	lang := req.GetString("lang", "")
	return mcp.NewToolResultText(codeblock.Extract(text, lang)), nil
}

func (s *Server) saveCodeToPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name_of_the_file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code := req.GetString("the_extracted_code_blocks", "")

	path, err := s.ws.SaveFile(name, code)
	if err != nil {
		slog.Error("Unable to save website file", "name", name, "err", err)
		return mcp.NewToolResultText(fmt.Sprintf("❌ Failed to save file: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Website file saved successfully: %s", path)

	scan, err := s.catalog.Scan()
	if err != nil {
		slog.Warn("Unable to list images after save", "err", err)
	} else if len(scan.Entries) > 0 {
		fmt.Fprintf(&b, "\n\n📸 Available images in directory: %s", strings.Join(scan.Names(), ", "))
		b.WriteString("\n💡 You can reference these images in your HTML using: <img src=\"image_name.ext\" alt=\"description\">")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) displayTheWebsite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.ws.Open(indexFile); err != nil {
		slog.Error("Unable to open website", "err", err)
		return mcp.NewToolResultText(fmt.Sprintf("❌ Failed to open website: %v", err)), nil
	}
	return mcp.NewToolResultText("✅ Website opened successfully in the default web browser."), nil
}

// goToProjectFolder does not chdir the process: deploys always run in the
// project directory, so this only makes sure it exists.
func (s *Server) goToProjectFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.ws.Ensure(); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("❌ Failed to change directory: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Changed working directory to: %s", s.ws.Dir())), nil
}

func (s *Server) listAvailableImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scan, res := s.scan()
	if res != nil {
		return res, nil
	}

	available := make(map[string]models.ImageEntry, len(scan.Entries))
	for _, e := range scan.Entries {
		available[e.Name] = e
	}
	return jsonResult(map[string]any{
		"available_images":  available,
		"total_images":      len(scan.Entries),
		"supported_formats": images.SupportedFormats,
		"images_directory":  s.catalog.Dir(),
	}), nil
}

func (s *Server) getImageInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("image_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry, scan, err := s.catalog.Lookup(name)
	switch {
	case errors.Is(err, images.ErrNotFound):
		if scan.Notice != "" {
			return jsonResult(map[string]string{"message": scan.Notice}), nil
		}
		return jsonResult(map[string]any{
			"error":            fmt.Sprintf("Image '%s' not found.", name),
			"available_images": scan.Names(),
		}), nil
	case err != nil:
		return scanError(err), nil
	}
	return jsonResult(images.Detail(*entry)), nil
}

func (s *Server) copyImageToWebsite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("image_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry, scan, err := s.catalog.Lookup(name)
	switch {
	case errors.Is(err, images.ErrNotFound):
		if scan.Notice != "" {
			return jsonResult(map[string]string{"message": scan.Notice}), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("❌ Image '%s' not found.\nAvailable images: %s", name, strings.Join(scan.Names(), ", "))), nil
	case err != nil:
		return scanError(err), nil
	}

	dest := strings.TrimSpace(req.GetString("new_name", ""))
	if dest == "" {
		dest = name
	}

	dst, copied, err := s.ws.CopyFile(entry.Path, dest)
	if err != nil {
		slog.Error("Unable to copy image", "image", name, "dest", dest, "err", err)
		return mcp.NewToolResultText(fmt.Sprintf("❌ Failed to copy image: %v", err)), nil
	}

	usage := images.ImgTag(dest)
	if !copied {
		return mcp.NewToolResultText(fmt.Sprintf("✅ Image '%s' is already in the website directory.\n\nHTML usage: %s\n\nPath: %s", name, usage, dst)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Image copied successfully!\n\nSource: %s\nDestination: %s\n\nHTML usage: %s", entry.Path, dst, usage)), nil
}

func (s *Server) generateImageGalleryHTML(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scan, res := s.scan()
	if res != nil {
		return res, nil
	}

	html, err := images.Gallery(scan.Entries)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("<!-- Error generating gallery: %v -->", err)), nil
	}
	return mcp.NewToolResultText(html), nil
}

func (s *Server) suggestImageUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	websiteContext := req.GetString("website_context", "")

	scan, res := s.scan()
	if res != nil {
		return res, nil
	}

	return jsonResult(map[string]any{
		"website_context": websiteContext,
		"total_images":    len(scan.Entries),
		"suggestions":     images.Suggest(scan.Entries, websiteContext),
	}), nil
}

// scan returns the catalog, or a ready made result when there is nothing to list.
func (s *Server) scan() (*images.ScanResult, *mcp.CallToolResult) {
	scan, err := s.catalog.Scan()
	if err != nil {
		return nil, scanError(err)
	}
	if scan.Notice != "" {
		return nil, jsonResult(map[string]string{"message": scan.Notice})
	}
	return scan, nil
}

func scanError(err error) *mcp.CallToolResult {
	slog.Error("Image scan failed", "err", err)
	return jsonResult(map[string]string{"error": err.Error()})
}

// jsonResult renders v with two space indentation. HTML is left unescaped
// because the snippets are meant to be pasted into pages.
func jsonResult(v any) *mcp.CallToolResult {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(strings.TrimRight(buf.String(), "\n"))
}
