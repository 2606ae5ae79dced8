// ABOUTME: Interactive loop for docchat: questions, math, document management and export.
// ABOUTME: Input is not read while a submission is outstanding.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-shellwords"

	"github.com/2389/docchat/internal/documents"
	"github.com/2389/docchat/internal/session"
	"github.com/2389/docchat/internal/transcript"
)

var (
	assistantColor = color.New(color.FgGreen)
	dimColor       = color.New(color.Faint)
	errorColor     = color.New(color.FgRed)
	headerColor    = color.New(color.FgCyan)
)

// repl reads commands and drives the session and document library.
type repl struct {
	session *session.Manager
	docs    *documents.Library
	scanner *bufio.Scanner
	out     io.Writer

	// printed is how many transcript messages have been shown.
	printed int
}

func newREPL(mgr *session.Manager, docs *documents.Library, in io.Reader, out io.Writer) *repl {
	return &repl{
		session: mgr,
		docs:    docs,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// run loops until EOF, /quit, or ctx is cancelled.
func (r *repl) run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprintf(r.out, "[%d docs]> ", r.docs.Count())

		input, err := r.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		if quit := r.handle(ctx, input); quit {
			return nil
		}
	}
}

// readLine reads one line, returning early if ctx is cancelled.
func (r *repl) readLine(ctx context.Context) (string, error) {
	inputCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		if r.scanner.Scan() {
			inputCh <- r.scanner.Text()
			return
		}
		if err := r.scanner.Err(); err != nil {
			errCh <- err
		} else {
			errCh <- io.EOF
		}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", err
	case line := <-inputCh:
		return line, nil
	}
}

// handle processes one input line. It returns true when the user quits.
// Plain questions are sent exactly as typed.
func (r *repl) handle(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	if !strings.HasPrefix(input, "/") {
		r.submit(func() { r.session.SubmitQuery(ctx, line) })
		return false
	}

	cmd, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "/quit", "/exit", "/q":
		return true

	case "/help":
		r.printHelp()

	case "/math":
		if args == "" {
			fmt.Fprintln(r.out, "Usage: /math <expression>")
			break
		}
		r.submit(func() { r.session.SubmitMath(ctx, args) })

	case "/new", "/reset":
		r.session.Reset()
		r.printed = 0
		fmt.Fprintln(r.out, "Started a new chat")

	case "/docs":
		r.docs.Refresh(ctx)
		r.printDocuments()

	case "/upload":
		paths, err := shellwords.Parse(args)
		if err != nil {
			errorColor.Fprintf(r.out, "[error] %v\n", err)
			break
		}
		if len(paths) == 0 {
			fmt.Fprintln(r.out, "Usage: /upload <file.pdf|file.txt>...")
			break
		}
		if err := r.docs.Upload(ctx, paths); err != nil {
			errorColor.Fprintf(r.out, "[error] %v\n", err)
			break
		}
		fmt.Fprintf(r.out, "Uploaded %d file(s)\n", len(paths))
		r.printDocuments()

	case "/delete":
		if args == "" {
			fmt.Fprintln(r.out, "Usage: /delete <filename>")
			break
		}
		r.docs.Delete(ctx, args)
		r.printDocuments()

	case "/delete-all":
		fmt.Fprint(r.out, "Are you sure you want to delete all documents? [y/N] ")
		answer, err := r.readLine(ctx)
		if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Fprintln(r.out, "Cancelled")
			break
		}
		before := r.session.Len()
		r.docs.DeleteAll(ctx)
		if r.session.Len() < before {
			r.printed = 0
		}
		r.printDocuments()

	case "/export":
		if args == "" {
			fmt.Fprintln(r.out, "Usage: /export <file.md|file.html>")
			break
		}
		msgs := r.session.Messages()
		if err := transcript.WriteFile(args, msgs); err != nil {
			errorColor.Fprintf(r.out, "[error] %v\n", err)
			break
		}
		fmt.Fprintf(r.out, "Exported %d message(s) to %s\n", len(msgs), args)

	default:
		fmt.Fprintf(r.out, "Unknown command: %s (try /help)\n", cmd)
	}

	return false
}

// submit runs one session submission and prints the reply. The call blocks,
// so no further input is read until the backend answers.
func (r *repl) submit(fn func()) {
	dimColor.Fprintln(r.out, "thinking...")
	fn()
	r.printNew()
}

// printNew prints assistant messages appended since the last call.
func (r *repl) printNew() {
	msgs := r.session.Messages()
	if len(msgs) < r.printed {
		r.printed = 0
	}

	for _, m := range msgs[r.printed:] {
		if m.Role != session.RoleAssistant {
			continue
		}
		assistantColor.Fprintln(r.out, m.Content)
		if len(m.Sources) > 0 {
			dimColor.Fprintf(r.out, "(%d source(s): %s)\n", len(m.Sources), strings.Join(m.Sources, ", "))
		}
	}
	fmt.Fprintln(r.out)

	r.printed = len(msgs)
}

func (r *repl) printDocuments() {
	docs := r.docs.Documents()
	headerColor.Fprintf(r.out, "Documents (%d)\n", len(docs))
	if len(docs) == 0 {
		fmt.Fprintln(r.out, "  No documents uploaded")
		return
	}
	for _, d := range docs {
		fmt.Fprintf(r.out, "  %s\n", d)
	}
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  <question>            Ask about your documents")
	fmt.Fprintln(r.out, "  /math <expression>    Evaluate a math expression")
	fmt.Fprintln(r.out, "  /upload <path>...     Upload PDF or text files (quote paths with spaces)")
	fmt.Fprintln(r.out, "  /docs                 List uploaded documents")
	fmt.Fprintln(r.out, "  /delete <filename>    Delete one document")
	fmt.Fprintln(r.out, "  /delete-all           Delete all documents and start a new chat")
	fmt.Fprintln(r.out, "  /new                  Start a new chat")
	fmt.Fprintln(r.out, "  /export <file>        Save the chat as .md or .html")
	fmt.Fprintln(r.out, "  /help                 Show this help")
	fmt.Fprintln(r.out, "  /quit                 Exit")
}
