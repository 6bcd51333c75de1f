// Package chat is a line based terminal front end for the assistant.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Assistant is the subset of the assistant the chat loop drives.
type Assistant interface {
	ProcessPrompt(ctx context.Context, input string) string
	StartNewProject() string
	SessionInfo() string
	ClearSession() string
}

// Examples build on each other when sent in order.
var Examples = []string{
	"Create a modern landing page with hero section",
	"Add a navigation bar with glassmorphism effect",
	"Change the hero background to a gradient",
	"Make the text larger and add a call-to-action button",
	"Add a features section below the hero",
	"Change the color scheme to dark mode",
	"Deploy the website to Netlify",
}

const help = `Commands:
  /new       start a new website project
  /info      show the active session
  /clear     clear the session and start fresh
  /examples  show example requests
  /help      show this help
  /quit      exit
Anything else is sent to the assistant.`

// Run reads requests from in until EOF, /quit or ctx is done.
func Run(ctx context.Context, in io.Reader, out io.Writer, a Assistant) error {
	st := newStyles(out)

	fmt.Fprintln(out, st.title.Render("🌐 Website Creation Assistant"))
	fmt.Fprintln(out, st.dim.Render("Describe your website or a change to it. Type /help for commands."))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(out, "\n"+st.prompt.Render("you ›")+" ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "/quit", "/exit":
			fmt.Fprintln(out, st.dim.Render("Bye!"))
			return nil
		case "/help":
			fmt.Fprintln(out, st.dim.Render(help))
		case "/new":
			fmt.Fprintln(out, st.notice.Render(a.StartNewProject()))
		case "/info":
			fmt.Fprintln(out, st.notice.Render(a.SessionInfo()))
		case "/clear":
			fmt.Fprintln(out, st.notice.Render(a.ClearSession()))
		case "/examples":
			for i, ex := range Examples {
				fmt.Fprintf(out, "%s %s\n", st.dim.Render(fmt.Sprintf("%d.", i+1)), ex)
			}
		default:
			if strings.HasPrefix(line, "/") {
				fmt.Fprintln(out, st.err.Render("Unknown command "+line+". Type /help for commands."))
				continue
			}
			fmt.Fprintln(out, st.dim.Render("Working on it..."))
			reply := a.ProcessPrompt(ctx, line)
			style := st.assistant
			if strings.HasPrefix(reply, "Error:") {
				style = st.err
			}
			fmt.Fprintln(out, style.Render(reply))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
