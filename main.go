// DokuWiki MCP Server - A Model Context Protocol server for DokuWiki wikis
// Talks to lib/exe/xmlrpc.php and exposes page discovery and reading tools
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/dokuwiki-mcp-server/internal/dokuwiki"
	"github.com/olgasafonova/dokuwiki-mcp-server/internal/transport"
	"github.com/olgasafonova/dokuwiki-mcp-server/tools"
	"github.com/olgasafonova/dokuwiki-mcp-server/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ServerName    = "dokuwiki-mcp-server"
	ServerVersion = "1.0.0"
)

const serverInstructions = `DokuWiki MCP Server provides tools for exploring a DokuWiki wiki over its XML-RPC API.

Available tools:
- dokuwiki_login: Log in (uses DOKUWIKI_USERNAME/DOKUWIKI_PASSWORD when called without arguments)
- dokuwiki_check_status: Check the API answers and get version info
- dokuwiki_random_article: Pick a random readable page
- dokuwiki_suggest: Search for main-namespace pages
- dokuwiki_get_page_html: Get a page's rendered HTML
- dokuwiki_sub_pages: List pages linked from a page's first paragraph
- dokuwiki_page_title: Check a page exists
- dokuwiki_set_debug: Toggle raw request/response logging

Configure via environment variables:
- DOKUWIKI_URL: XML-RPC endpoint (e.g., https://wiki.example.com/lib/exe/xmlrpc.php)
- DOKUWIKI_USERNAME / DOKUWIKI_PASSWORD: Credentials for protected wikis
- DOKUWIKI_CONFIG: Optional TOML config file`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("%s: %v", ServerName, err)
	}
}

// run starts the server and blocks until stdin closes or a signal arrives.
// Deferred cleanup always runs before it returns.
func run(args []string) error {
	fs := flag.NewFlagSet(ServerName, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a TOML config file (default $DOKUWIKI_CONFIG)")
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090); disabled when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Configure logging to stderr (stdout is used for MCP protocol)
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	config, err := dokuwiki.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if config.Debug {
		level.Set(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	traceConfig := tracing.DefaultConfig()
	traceConfig.ServiceVersion = ServerVersion
	shutdownTracing, err := tracing.Setup(ctx, traceConfig)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, logger)
	}

	client := newClient(config, logger, level)
	server := newServer(client, logger)

	logger.Info("Starting DokuWiki MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"wiki_url", config.BaseURL,
	)

	if config.HasCredentials() {
		session := client.Login(ctx, config.Username, config.Password)
		if !session.Authenticated {
			logger.Warn("Startup login failed; continuing anonymously", "user", config.Username)
		}
	}

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		return err
	}
	return nil
}

// newClient wires the HTTP transport and the DokuWiki client from config
func newClient(config *dokuwiki.Config, logger *slog.Logger, level *slog.LevelVar) *dokuwiki.Client {
	tr := transport.NewHTTP(config.BaseURL,
		transport.WithLogger(logger),
		transport.WithTimeout(config.Timeout),
		transport.WithUserAgent(config.UserAgent),
		transport.WithMaxRetries(config.MaxRetries),
	)

	return dokuwiki.NewClient(tr,
		dokuwiki.WithLogger(logger),
		dokuwiki.WithLevelVar(level),
		dokuwiki.WithCredentials(config.Username, config.Password),
		dokuwiki.WithMainNamespaceOnly(config.MainNamespaceOnly),
	)
}

// newServer creates the MCP server with every tool registered
func newServer(client *dokuwiki.Client, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	tools.NewHandlerRegistry(client, logger).RegisterAll(server)
	return server
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", "error", err)
	}
}
