// ABOUTME: Document library: owns the list of uploaded filenames and its refresh cycle.
// ABOUTME: Upload validates extensions; list and delete failures log and keep the prior list.

package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/2389/docchat/internal/api"
)

// DefaultExtensions are the formats the backend accepts.
var DefaultExtensions = []string{".pdf", ".txt"}

var (
	// ErrUnsupportedFile is returned when a file's extension is not allowed.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrUploadFailed is returned when the backend rejects an upload.
	ErrUploadFailed = errors.New("failed to upload documents")
)

// API is what the library needs from the backend client.
type API interface {
	ListDocuments(ctx context.Context) (*api.DocumentsResponse, error)
	Upload(ctx context.Context, files []api.UploadFile) (*api.UploadResponse, error)
	DeleteDocument(ctx context.Context, filename string) (*api.AckResponse, error)
	DeleteAllDocuments(ctx context.Context) (*api.AckResponse, error)
}

// Resetter clears the chat transcript.
type Resetter interface {
	Reset()
}

// Library holds the current document list.
type Library struct {
	client     API
	chat       Resetter
	extensions []string
	logger     *slog.Logger

	mu   sync.RWMutex
	docs []string
}

// New creates a Library. chat may be nil; when set it is reset after all
// documents are deleted. Empty extensions means DefaultExtensions.
func New(client API, chat Resetter, extensions []string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	return &Library{
		client:     client,
		chat:       chat,
		extensions: normalized,
		logger:     logger.With("component", "documents"),
	}
}

// Documents returns a snapshot of the document list.
func (l *Library) Documents() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.docs)
}

// Count returns the number of known documents.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs)
}

// Refresh fetches the document list. On failure the previous list is kept.
func (l *Library) Refresh(ctx context.Context) {
	resp, err := l.client.ListDocuments(ctx)
	if err != nil {
		l.logger.Error("failed to fetch documents", "error", err)
		return
	}

	docs := []string{}
	if resp != nil && resp.Documents != nil {
		docs = slices.Clone(resp.Documents)
	}

	l.mu.Lock()
	l.docs = docs
	l.mu.Unlock()
}

// Allowed reports whether name has an accepted extension.
func (l *Library) Allowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext != "" && slices.Contains(l.extensions, ext)
}

// Upload sends the files at paths in one request and refreshes the list.
// An empty path list does nothing.
func (l *Library) Upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	for _, p := range paths {
		if !l.Allowed(p) {
			return fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedFile, filepath.Base(p), strings.Join(l.extensions, ", "))
		}
	}

	files := make([]api.UploadFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll(files)
			return fmt.Errorf("opening %s: %w", p, err)
		}
		files = append(files, api.UploadFile{Name: filepath.Base(p), Content: f})
	}
	defer closeAll(files)

	resp, err := l.client.Upload(ctx, files)
	if err != nil {
		l.logger.Error("upload failed", "files", len(files), "error", err)
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	stored := len(files)
	if resp != nil && len(resp.Files) > 0 {
		stored = len(resp.Files)
	}
	l.logger.Info("documents uploaded", "files", stored)

	l.Refresh(ctx)
	return nil
}

// Delete removes one document. Failures are logged and the list is unchanged.
func (l *Library) Delete(ctx context.Context, filename string) {
	if _, err := l.client.DeleteDocument(ctx, filename); err != nil {
		l.logger.Error("failed to delete document", "filename", filename, "error", err)
		return
	}
	l.Refresh(ctx)
}

// DeleteAll removes every document, refreshes the list, and resets the chat.
// Failures are logged and nothing else changes.
func (l *Library) DeleteAll(ctx context.Context) {
	if _, err := l.client.DeleteAllDocuments(ctx); err != nil {
		l.logger.Error("failed to delete all documents", "error", err)
		return
	}
	l.Refresh(ctx)
	if l.chat != nil {
		l.chat.Reset()
	}
}

func closeAll(files []api.UploadFile) {
	for _, f := range files {
		if c, ok := f.Content.(*os.File); ok {
			c.Close()
		}
	}
}
