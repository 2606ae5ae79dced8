// ABOUTME: Terminal client for a document question-answering backend.
// ABOUTME: Wires config, logging, the REST client, the chat session and the document library.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/docchat/internal/api"
	"github.com/2389/docchat/internal/config"
	"github.com/2389/docchat/internal/documents"
	"github.com/2389/docchat/internal/session"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $DOCCHAT_CONFIG or ~/.config/docchat/config.yaml)")
	server := flag.String("server", "", "Backend URL, overrides backend.base_url")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options{
		configPath: *configPath,
		server:     *server,
		verbose:    *verbose,
	}, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line overrides applied on top of the config file.
type options struct {
	configPath string
	server     string
	verbose    bool
}

// loadConfig reads the config file. A path given by -config or DOCCHAT_CONFIG
// must exist; only the XDG default may be absent.
func loadConfig(flagPath string) (*config.Config, string, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv("DOCCHAT_CONFIG")
	}
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	path = config.DefaultPath()
	cfg, err := config.LoadOrDefault(path)
	return cfg, path, err
}

func run(ctx context.Context, opts options, in io.Reader, out, errOut io.Writer) error {
	cfg, path, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.server != "" {
		cfg.Backend.BaseURL = opts.server
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	logger := setupLogger(cfg.Logging, errOut)

	client, err := api.New(cfg.Backend.BaseURL,
		api.WithTimeout(cfg.Backend.Timeout),
		api.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	mgr := session.New(client, logger)
	defer mgr.Close()

	library := documents.New(client, mgr, cfg.Uploads.AllowedExtensions, logger)
	library.Refresh(ctx)

	logger.Debug("docchat starting", "backend", client.BaseURL(), "config", path)

	color.New(color.FgCyan, color.Bold).Fprintln(out, "docchat")
	fmt.Fprintf(out, "Backend: %s\n", client.BaseURL())
	fmt.Fprintf(out, "Documents: %d\n", library.Count())
	fmt.Fprintln(out, "Type a question, or /help for commands.")
	fmt.Fprintln(out)

	r := newREPL(mgr, library, in, out)
	if err := r.run(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nGoodbye!")
	return nil
}
