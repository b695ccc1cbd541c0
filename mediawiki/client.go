package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/foomo/wikidata-links-mcp/service/vo"
)

const DefaultUserAgent = "wikidata-links-mcp/0.1 (https://github.com/foomo/wikidata-links-mcp)"

// Lookup is the set of remote queries the resolver needs
type Lookup interface {
	// GetEntity returns the linked-data entity attached to a page, ErrNotFound if there is none
	GetEntity(ctx context.Context, site, title string) (*Entity, error)
	// GetUsage lists the pages on targetSite in targetNamespace that embed the file title
	GetUsage(ctx context.Context, site, title, targetSite string, targetNamespace int) ([]Usage, error)
	// GetPageIdentifier returns the item linked to a content page, ErrNotFound if there is none
	GetPageIdentifier(ctx context.Context, site, title string) (vo.Identifier, error)
}

type Usage struct {
	Site  string `json:"site"`
	Title string `json:"title"`
}

// Client talks to the MediaWiki Action API of each configured site
type Client struct {
	httpClient *http.Client
	endpoints  map[string]string
	userAgent  string
}

type ClientOption func(c *Client)

func ClientWithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func ClientWithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// NewClient creates a client; endpoints maps a site database name to its api.php URL
func NewClient(endpoints map[string]string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		endpoints:  make(map[string]string, len(endpoints)),
		userAgent:  DefaultUserAgent,
	}
	for site, endpoint := range endpoints {
		c.endpoints[site] = endpoint
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetEntity(ctx context.Context, site, title string) (*Entity, error) {
	var resp entitiesResponse
	if err := c.get(ctx, site, url.Values{
		"action": {"wbgetentities"},
		"sites":  {site},
		"titles": {title},
	}, &resp); err != nil {
		return nil, err
	}
	for _, entity := range resp.Entities {
		if entity.Missing != nil || entity.ID == "" {
			continue
		}
		return entity, nil
	}
	return nil, wrap(ErrNotFound, "entity for "+title, nil)
}

func (c *Client) GetUsage(ctx context.Context, site, title, targetSite string, targetNamespace int) ([]Usage, error) {
	var resp queryResponse
	if err := c.get(ctx, site, url.Values{
		"action":      {"query"},
		"prop":        {"globalusage"},
		"titles":      {title},
		"gusite":      {targetSite},
		"gunamespace": {strconv.Itoa(targetNamespace)},
		"gulimit":     {"max"},
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return nil, nil
	}
	page := resp.Query.Pages[0]
	usages := make([]Usage, 0, len(page.GlobalUsage))
	for _, u := range page.GlobalUsage {
		if u.Title == "" {
			continue
		}
		usages = append(usages, Usage{Site: u.Wiki, Title: u.Title})
	}
	return usages, nil
}

func (c *Client) GetPageIdentifier(ctx context.Context, site, title string) (vo.Identifier, error) {
	var resp queryResponse
	if err := c.get(ctx, site, url.Values{
		"action": {"query"},
		"prop":   {"pageprops"},
		"ppprop": {"wikibase_item"},
		"titles": {title},
	}, &resp); err != nil {
		return "", err
	}
	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return "", wrap(ErrNotFound, "page "+title, nil)
	}
	page := resp.Query.Pages[0]
	if page.Missing || page.PageProps == nil || page.PageProps.WikibaseItem == "" {
		return "", wrap(ErrNotFound, "identifier for "+title, nil)
	}
	id, ok := vo.ParseIdentifier(page.PageProps.WikibaseItem)
	if !ok {
		return "", wrap(ErrMalformed, fmt.Sprintf("identifier %q for %s", page.PageProps.WikibaseItem, title), nil)
	}
	return id, nil
}

func (c *Client) get(ctx context.Context, site string, params url.Values, target apiResponse) error {
	endpoint, ok := c.endpoints[site]
	if !ok {
		return wrap(ErrUnknownSite, site, nil)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return wrap(ErrUnknownSite, site, err)
	}
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("origin", "*")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrap(ErrUnreachable, params.Get("action")+" on "+site, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wrap(ErrAPI, fmt.Sprintf("%s on %s: HTTP status %d", params.Get("action"), site, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrap(ErrUnreachable, "failed to read response body", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return wrap(ErrMalformed, params.Get("action")+" on "+site, err)
	}
	if apiErr := target.apiError(); apiErr != nil {
		return wrap(ErrAPI, params.Get("action")+" on "+site, apiErr)
	}
	return nil
}
