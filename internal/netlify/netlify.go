// Package netlify drives the Netlify command line tool.
//
// Outcomes are judged by exit status and by the --json output of deploy, never
// by matching human readable (and localized) messages.
package netlify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	defaultBinary = "netlify"
	packageName   = "netlify-cli"
)

// CLI wraps the netlify binary.
type CLI struct {
	runner   Runner
	bin      string
	npm      string
	lookPath func(file string) (string, error)
}

// New returns a CLI that runs commands through runner
func New(runner Runner) *CLI {
	return &CLI{
		runner:   runner,
		bin:      defaultBinary,
		npm:      "npm",
		lookPath: exec.LookPath,
	}
}

// SetLookPath overrides how the binary is located on PATH.
func (c *CLI) SetLookPath(fn func(file string) (string, error)) {
	c.lookPath = fn
}

// Version returns the CLI version output, or ok=false if the CLI is not usable.
func (c *CLI) Version(ctx context.Context) (string, bool) {
	if _, err := c.lookPath(c.bin); err != nil {
		slog.Debug("Netlify CLI not on PATH", "err", err)
		return "", false
	}
	res, err := c.runner.Run(ctx, "", c.bin, "--version")
	if err != nil || !res.OK() {
		slog.Debug("Netlify CLI did not report a version", "exit_code", res.ExitCode, "err", err)
		return res.Output, false
	}
	return strings.TrimSpace(Clean(res.Output)), true
}

// Check describes whether the CLI is installed.
func (c *CLI) Check(ctx context.Context) string {
	version, ok := c.Version(ctx)
	if !ok {
		return "Netlify CLI is NOT installed."
	}
	return "Netlify CLI is installed.\n\n" + version
}

// Install installs the CLI globally with npm unless it is already present.
func (c *CLI) Install(ctx context.Context) (string, error) {
	if version, ok := c.Version(ctx); ok {
		return "Netlify CLI is already installed.\n\n" + version, nil
	}

	slog.Info("Installing Netlify CLI", "package", packageName)
	res, err := c.runner.Run(ctx, "", c.npm, "install", "-g", packageName)
	if err != nil {
		return "", fmt.Errorf("failed to install Netlify CLI: %w", err)
	}
	out := Clean(res.Output)
	if !res.OK() {
		return fmt.Sprintf("❌ Netlify CLI installation failed (exit status %d).\n\n%s", res.ExitCode, out), nil
	}
	return "✅ Netlify CLI installed.\n\n" + out, nil
}

// Login runs the interactive login flow, which usually opens a browser.
func (c *CLI) Login(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, "", c.bin, "login")
	if err != nil {
		return "", fmt.Errorf("failed to run netlify login: %w", err)
	}
	out := Clean(res.Output)
	if !res.OK() {
		return fmt.Sprintf("❌ Netlify login failed (exit status %d).\n\n%s", res.ExitCode, out), nil
	}
	return out, nil
}

// Deployment is the outcome of a deploy.
type Deployment struct {
	URL      string
	Output   string
	ExitCode int
}

// Summary renders the deployment for the user.
func (d *Deployment) Summary() string {
	if d.URL != "" && d.ExitCode == 0 {
		return "✅ Deploy successful!\n\nURL: " + d.URL
	}
	if d.ExitCode != 0 {
		return fmt.Sprintf("⚠️ Could not find deploy URL (exit status %d).\n\nFull output:\n%s", d.ExitCode, d.Output)
	}
	return "⚠️ Could not find deploy URL.\n\nFull output:\n" + d.Output
}

// Deploy publishes dir. Draft deploys are the default; prod promotes the
// deploy to the live site.
func (c *CLI) Deploy(ctx context.Context, dir string, prod bool) (*Deployment, error) {
	args := []string{"deploy", "--json", "--dir", dir}
	if prod {
		args = append(args, "--prod")
	}

	res, err := c.runner.Run(ctx, dir, c.bin, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run netlify deploy: %w", err)
	}

	out := Clean(res.Output)
	d := &Deployment{
		Output:   out,
		ExitCode: res.ExitCode,
		URL:      DeployURL(out),
	}
	slog.Info("Netlify deploy finished", "dir", dir, "prod", prod, "exit_code", d.ExitCode, "url", d.URL)
	return d, nil
}

// DeployURL pulls deploy_url out of the JSON object printed by
// `netlify deploy --json`. Progress and warning lines around the object are
// ignored, even when they contain braces.
func DeployURL(output string) string {
	for i := 0; i < len(output); i++ {
		next := strings.IndexByte(output[i:], '{')
		if next == -1 {
			break
		}
		i += next

		var payload struct {
			DeployURL string `json:"deploy_url"`
		}
		if err := json.NewDecoder(strings.NewReader(output[i:])).Decode(&payload); err != nil {
			continue
		}
		if payload.DeployURL != "" {
			return payload.DeployURL
		}
	}
	slog.Debug("No deploy_url in deploy output")
	return ""
}

// Clean removes terminal escape sequences from command output.
func Clean(s string) string {
	return ansi.Strip(s)
}
