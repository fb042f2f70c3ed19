package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/shakesearch/internal/logger"
	"github.com/kailas-cloud/shakesearch/internal/searchui"
	"github.com/kailas-cloud/shakesearch/internal/version"
	shakesearch "github.com/kailas-cloud/shakesearch/pkg/sdk"
)

const (
	defaultServer  = "http://localhost:3001"
	defaultTimeout = 5 * time.Second
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "shakequery:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "shakequery",
		Usage:   "Search the complete works of Shakespeare on a shakesearch server",
		Version: version.Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Base URL of the shakesearch server",
				EnvVars: []string{"SHAKESEARCH_URL"},
				Value:   defaultServer,
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query string to search for; positional arg is a fallback",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the search request",
				Value: defaultTimeout,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw JSON array and fail on any error",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "warn",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	query := c.String("query")
	if query == "" && c.NArg() > 0 {
		query = strings.Join(c.Args().Slice(), " ")
	}
	if query == "" {
		return errors.New("a query is required (--query or positional argument)")
	}

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger, err := logpkg.NewLogger("local", c.String("log-level"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()

	server := c.String("server")
	logger.Debug("executing query",
		zap.String("server", server),
		zap.String("query", query),
		zap.Duration("timeout", timeout),
		zap.Bool("json", c.Bool("json")),
	)

	if c.Bool("json") {
		return runJSON(ctx, c.App.Writer, server, query, timeout)
	}
	return runTable(ctx, c.App.Writer, server, query, timeout, logger)
}

// runTable drives the page controller against a text document: failures print "0 lines found".
func runTable(ctx context.Context, out io.Writer, server, query string, timeout time.Duration, logger *zap.Logger) error {
	ctrl, err := searchui.NewController(server, &http.Client{Timeout: timeout}, logger)
	if err != nil {
		return err
	}

	doc := searchui.NewTextDocument(out)
	ctrl.Bind(doc).Submit(ctx, url.Values{searchui.QueryField: {query}})
	return doc.Flush()
}

// runJSON uses the strict SDK client.
func runJSON(ctx context.Context, out io.Writer, server, query string, timeout time.Duration) error {
	client, err := shakesearch.New(server, shakesearch.WithTimeout(timeout), shakesearch.WithUserAgent("shakequery/"+version.Version))
	if err != nil {
		return err
	}

	lines, err := client.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(lines); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
