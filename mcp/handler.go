package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/foomo/wikidata-links-mcp/render"
	"github.com/foomo/wikidata-links-mcp/scrape"
	"github.com/foomo/wikidata-links-mcp/service"
	"github.com/foomo/wikidata-links-mcp/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "0.1.0"

type ResolveRequest struct {
	Site      string `json:"site"`      // Site database name, e.g. "enwiki"
	Namespace *int   `json:"namespace"` // Namespace number of the page
	Title     string `json:"title"`     // Page name including namespace prefix
	Hint      string `json:"hint"`      // Target of the sidebar Wikidata link
	PageURL   string `json:"pageUrl"`   // Rendered page to read the context from
}

type ResolveResponse struct {
	Page   vo.PageContext `json:"page"`
	Result vo.Envelope    `json:"result"`
}

type RenderLinksRequest struct {
	ResolveRequest
	Format string `json:"format"` // html or markdown
}

type RenderLinksResponse struct {
	Page   vo.PageContext `json:"page"`
	Format string         `json:"format"`
	Links  string         `json:"links"` // Empty when there is nothing to show
}

var errMissingPage = errors.New("either pageUrl or site, namespace and title are required")

// NewServer creates a new MCP server with the resolve and renderLinks tools
func NewServer(client *http.Client, serviceInstance service.Service, renderOptions render.Options) *server.MCPServer {
	if client == nil {
		client = http.DefaultClient
	}
	s := server.NewMCPServer(
		"Wikidata Links MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	pageArguments := []mcp.ToolOption{
		mcp.WithString("site",
			mcp.Description("Site database name of the page (e.g. 'enwiki', 'commonswiki', 'wikidatawiki')"),
		),
		mcp.WithNumber("namespace",
			mcp.Description("Namespace number of the page (0 for articles, 6 for files, negative for special pages)"),
		),
		mcp.WithString("title",
			mcp.Description("Page name including its namespace prefix (e.g. 'File:Example.jpg')"),
		),
		mcp.WithString("hint",
			mcp.Description("Target of the page's sidebar Wikidata link, if known"),
		),
		mcp.WithString("pageUrl",
			mcp.Description("URL of the rendered page; site, namespace, title and hint are read from it when not given"),
		),
	}

	resolveTool := mcp.NewTool("resolve", append([]mcp.ToolOption{
		mcp.WithDescription("Resolve the Wikidata items relevant to a wiki page"),
	}, pageArguments...)...)
	s.AddTool(resolveTool, mcp.NewTypedToolHandler(getResolveHandler(client, serviceInstance)))

	renderTool := mcp.NewTool("renderLinks", append([]mcp.ToolOption{
		mcp.WithDescription("Resolve the Wikidata items of a wiki page and render them as Wikidata and Reasonator links"),
		mcp.WithString("format",
			mcp.Description("Output format"),
			mcp.Enum(formatHTML, formatMarkdown),
		),
	}, pageArguments...)...)
	s.AddTool(renderTool, mcp.NewTypedToolHandler(getRenderLinksHandler(client, serviceInstance, renderOptions)))

	return s
}

const (
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

// getResolveHandler returns the typed handler of the resolve tool
func getResolveHandler(client *http.Client, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ResolveRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ResolveRequest) (*mcp.CallToolResult, error) {
		pc, err := pageContext(ctx, client, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		response := ResolveResponse{
			Page:   pc,
			Result: vo.NewEnvelope(serviceInstance.Resolve(ctx, pc)),
		}

		responseBytes, err := json.Marshal(response)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(responseBytes)), nil
	}
}

// getRenderLinksHandler returns the typed handler of the renderLinks tool
func getRenderLinksHandler(client *http.Client, serviceInstance service.Service, renderOptions render.Options) func(ctx context.Context, request mcp.CallToolRequest, args RenderLinksRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args RenderLinksRequest) (*mcp.CallToolResult, error) {
		format := args.Format
		if format == "" {
			format = formatMarkdown
		}
		if format != formatHTML && format != formatMarkdown {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", args.Format)), nil
		}

		pc, err := pageContext(ctx, client, args.ResolveRequest)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		links, err := renderResult(serviceInstance.Resolve(ctx, pc), format, renderOptions)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		responseBytes, err := json.Marshal(RenderLinksResponse{
			Page:   pc,
			Format: format,
			Links:  links,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(responseBytes)), nil
	}
}

func renderResult(result vo.ResolutionResult, format string, renderOptions render.Options) (string, error) {
	if format == formatHTML {
		return render.HTML(result, renderOptions)
	}
	return render.Markdown(result, renderOptions)
}

// pageContext builds the page context from the arguments, scraping pageUrl for anything not given
func pageContext(ctx context.Context, client *http.Client, args ResolveRequest) (vo.PageContext, error) {
	var pc vo.PageContext
	if args.PageURL != "" {
		scraped, err := scrape.Scrape(ctx, client, args.PageURL)
		if err != nil {
			return pc, fmt.Errorf("failed to read page context: %w", err)
		}
		pc = *scraped
	} else if args.Site == "" || args.Title == "" || args.Namespace == nil {
		return pc, errMissingPage
	}

	if args.Site != "" {
		pc.Site = args.Site
	}
	if args.Namespace != nil {
		pc.Namespace = *args.Namespace
	}
	if args.Title != "" {
		pc.Title = args.Title
	}
	if args.Hint != "" {
		pc.Hint = args.Hint
	}
	return pc, nil
}
