package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/foomo/wikidata-links-mcp/service/vo"
	"golang.org/x/net/html"
)

// HintSelector addresses the sidebar link to the page's linked-data item
const HintSelector = "#t-wikibase a"

var hintPattern = regexp.MustCompile(`/wiki/(Q[0-9]+)$`)

// ExtractIdentifier reads the item identifier out of a sidebar link target
func ExtractIdentifier(hint string) (vo.Identifier, bool) {
	if hint == "" {
		return "", false
	}
	match := hintPattern.FindStringSubmatch(hint)
	if match == nil {
		return "", false
	}
	return vo.ParseIdentifier(match[1])
}

// Scrape downloads a rendered wiki page and reads its page context from the markup
func Scrape(ctx context.Context, client *http.Client, url string) (*vo.PageContext, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download HTML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	return ExtractPageContext(resp.Body)
}

// ExtractPageContext parses rendered page markup into a PageContext.
// Site, namespace and title come from the embedded page configuration, the hint from HintSelector.
func ExtractPageContext(r io.Reader) (*vo.PageContext, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	cfg, err := extractPageConfig(root)
	if err != nil {
		return nil, err
	}

	hint, _ := extractHint(goquery.NewDocumentFromNode(root))
	return &vo.PageContext{
		Site:      cfg.DBName,
		Namespace: cfg.NamespaceNumber,
		Title:     cfg.PageName,
		Hint:      hint,
	}, nil
}

// ExtractHint returns the target of the sidebar linked-data link, if the page renders one
func ExtractHint(r io.Reader) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse HTML: %w", err)
	}
	hint, ok := extractHint(doc)
	return hint, ok, nil
}

func extractHint(doc *goquery.Document) (string, bool) {
	href, ok := doc.Find(HintSelector).First().Attr("href")
	if !ok || href == "" {
		return "", false
	}
	return href, true
}
