// ABOUTME: Tests for transcript export to Markdown and HTML.
// ABOUTME: Checks code block conversion, escaping of user input, and format selection.

package transcript

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/docchat/internal/session"
)

func sampleMessages() []session.Message {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	return []session.Message{
		{ID: "m1", Role: session.RoleUser, Content: "Show me <code>\nplease", CreatedAt: now},
		{
			ID:        "m2",
			Role:      session.RoleAssistant,
			Content:   "Here:\n\n```\nfmt.Println(\"hi\")\n```\nline one\nline two",
			Sources:   []string{"guide.pdf"},
			CreatedAt: now.Add(time.Second),
		},
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"chat.md", FormatMarkdown, false},
		{"chat.MARKDOWN", FormatMarkdown, false},
		{"/tmp/out.html", FormatHTML, false},
		{"out.htm", FormatHTML, false},
		{"out.txt", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, sampleMessages()))

	out := buf.String()
	assert.Contains(t, out, "# Chat transcript")
	assert.Contains(t, out, "## User\n\nShow me <code>\nplease\n")
	assert.Contains(t, out, "## Assistant\n\nHere:")
	assert.Contains(t, out, "Sources:\n\n- guide.pdf\n")
}

func TestWriteHTML_ConvertsAssistantMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleMessages()))

	out := buf.String()
	assert.Contains(t, out, "<pre><code>")
	assert.Contains(t, out, "fmt.Println(&quot;hi&quot;)")
	assert.Contains(t, out, "line one<br")
	assert.Contains(t, out, `class="message assistant-message"`)
	assert.Contains(t, out, `datetime="2026-10-14T12:00:01Z"`)
}

func TestWriteHTML_ListsSources(t *testing.T) {
	msgs := sampleMessages()
	msgs[1].Sources = []string{"guide.pdf", "a&b.txt"}

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, msgs))

	out := buf.String()
	assert.Contains(t, out, `<div class="message-sources">`)
	assert.Contains(t, out, "<li>guide.pdf</li>")
	assert.Contains(t, out, "<li>a&amp;b.txt</li>")
	// Only the assistant message carries sources
	assert.Equal(t, 1, strings.Count(out, "message-sources"))
}

func TestWriteHTML_EscapesUserInput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleMessages()))

	out := buf.String()
	assert.Contains(t, out, "Show me &lt;code&gt;<br>\nplease")
	assert.NotContains(t, out, "Show me <code>")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	mdPath := filepath.Join(dir, "chat.md")
	require.NoError(t, WriteFile(mdPath, sampleMessages()))
	data, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Assistant")

	htmlPath := filepath.Join(dir, "chat.html")
	require.NoError(t, WriteFile(htmlPath, sampleMessages()))
	data, err = os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")

	assert.Error(t, WriteFile(filepath.Join(dir, "chat.pdf"), sampleMessages()))
}

func TestWriteMarkdown_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, nil))
	assert.Equal(t, "# Chat transcript\n", buf.String())
}
