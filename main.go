package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/foomo/wikidata-links-mcp/mcp"
	"github.com/foomo/wikidata-links-mcp/render"
	"github.com/foomo/wikidata-links-mcp/scrape"
	"github.com/foomo/wikidata-links-mcp/service"
	"github.com/foomo/wikidata-links-mcp/service/vo"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	// Define command line flags
	stdioMode := flag.Bool("stdio", true, "Run in stdio mode")
	httpAddr := flag.String("http", "", "HTTP server address (e.g., ':8080')")
	endpoint := flag.String("endpoint", "/mcp", "HTTP endpoint path of the MCP server")
	configPath := flag.String("config", "", "YAML file with site settings")
	debug := flag.Bool("debug", false, "Enable debug logging")
	resolveURL := flag.String("resolve", "", "Resolve a single rendered page URL, print the result and exit")
	dump := flag.Bool("dump", false, "Dump the resolved value to stderr (with -resolve)")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP client timeout")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	settings, err := service.LoadSiteSettings(*configPath)
	if err != nil {
		logger.Fatal("failed to load site settings", zap.Error(err))
	}

	httpClient := &http.Client{Timeout: *timeout}
	serviceInstance := service.NewService(logger, settings, httpClient, nil)

	if *resolveURL != "" {
		if err := resolveOnce(context.Background(), httpClient, serviceInstance, *resolveURL, *dump); err != nil {
			logger.Fatal("failed to resolve page", zap.String("url", *resolveURL), zap.Error(err))
		}
		return
	}

	s := mcp.NewServer(httpClient, serviceInstance, render.DefaultOptions())

	if *httpAddr != "" {
		logger.Info("Starting MCP server", zap.String("address", *httpAddr), zap.String("endpoint", *endpoint))
		handler := mcp.NewMcpHTTPSSEServer(logger, s, serviceInstance, httpClient, render.DefaultOptions(), *endpoint, nil)
		if err := http.ListenAndServe(*httpAddr, handler); err != nil {
			logger.Fatal("MCP server stopped", zap.Error(err))
		}
		return
	}

	if *stdioMode {
		logger.Info("Starting MCP server in stdio mode...")
	} else {
		logger.Info("Starting MCP server in stdio mode (default)...")
	}
	if err := server.ServeStdio(s); err != nil {
		logger.Fatal("MCP server stopped", zap.Error(err))
	}
}

// newLogger logs to stderr so stdout stays free for the stdio transport
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func resolveOnce(ctx context.Context, httpClient *http.Client, serviceInstance service.Service, pageURL string, dump bool) error {
	pc, err := scrape.Scrape(ctx, httpClient, pageURL)
	if err != nil {
		return err
	}
	result := serviceInstance.Resolve(ctx, *pc)
	if dump {
		spew.Fdump(os.Stderr, pc, result)
	}
	markdown, err := render.Markdown(result, render.DefaultOptions())
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Page     vo.PageContext `json:"page"`
		Result   vo.Envelope    `json:"result"`
		Markdown string         `json:"markdown,omitempty"`
	}{
		Page:     *pc,
		Result:   vo.NewEnvelope(result),
		Markdown: markdown,
	})
}
