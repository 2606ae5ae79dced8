// ABOUTME: Writes a chat transcript snapshot as Markdown or HTML.
// ABOUTME: HTML goes through goldmark so fenced code and line breaks survive.

// Package transcript exports session transcripts to files.
package transcript

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/2389/docchat/internal/session"
)

// Format is an export file format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use .md or .html)", filepath.Ext(path))
	}
}

// md converts assistant markdown. Hard wraps keep single newlines as line
// breaks, matching how the chat displays replies.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// WriteMarkdown writes messages as a Markdown document.
func WriteMarkdown(w io.Writer, messages []session.Message) error {
	var buf bytes.Buffer
	buf.WriteString("# Chat transcript\n")

	for _, m := range messages {
		fmt.Fprintf(&buf, "\n## %s\n\n", roleTitle(m.Role))
		buf.WriteString(strings.TrimRight(m.Content, "\n"))
		buf.WriteString("\n")
		if len(m.Sources) > 0 {
			buf.WriteString("\nSources:\n\n")
			for _, s := range m.Sources {
				fmt.Fprintf(&buf, "- %s\n", s)
			}
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteHTML writes messages as a standalone HTML page.
func WriteHTML(w io.Writer, messages []session.Message) error {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Chat transcript</title>\n</head>\n<body>\n")

	for _, m := range messages {
		fmt.Fprintf(&buf, "<div class=\"message %s-message\">\n", m.Role)
		fmt.Fprintf(&buf, "<div class=\"message-author\">%s</div>\n", roleTitle(m.Role))
		fmt.Fprintf(&buf, "<time datetime=\"%s\"></time>\n", m.CreatedAt.UTC().Format(time.RFC3339))

		buf.WriteString("<div class=\"message-content\">\n")
		if m.Role == session.RoleUser {
			// User input is shown as typed.
			fmt.Fprintf(&buf, "<p>%s</p>\n", strings.ReplaceAll(html.EscapeString(m.Content), "\n", "<br>\n"))
		} else if err := md.Convert([]byte(m.Content), &buf); err != nil {
			return fmt.Errorf("converting message %s: %w", m.ID, err)
		}
		buf.WriteString("</div>\n")

		if len(m.Sources) > 0 {
			buf.WriteString("<div class=\"message-sources\">\n<p>Sources:</p>\n<ul>\n")
			for _, src := range m.Sources {
				fmt.Fprintf(&buf, "<li>%s</li>\n", html.EscapeString(src))
			}
			buf.WriteString("</ul>\n</div>\n")
		}
		buf.WriteString("</div>\n")
	}

	buf.WriteString("</body>\n</html>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile exports messages to path, choosing the format by extension.
func WriteFile(path string, messages []session.Message) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	switch format {
	case FormatHTML:
		err = WriteHTML(f, messages)
	default:
		err = WriteMarkdown(f, messages)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}

func roleTitle(r session.Role) string {
	switch r {
	case session.RoleUser:
		return "User"
	case session.RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}
