package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foomo/wikidata-links-mcp/render"
	"github.com/foomo/wikidata-links-mcp/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService answers from a fixed table and records what it was asked
type fakeService struct {
	results map[string]vo.ResolutionResult
	asked   []vo.PageContext
}

func (f *fakeService) Resolve(_ context.Context, pc vo.PageContext) vo.ResolutionResult {
	f.asked = append(f.asked, pc)
	return f.results[pc.Title]
}

func newFakeService() *fakeService {
	return &fakeService{results: map[string]vo.ResolutionResult{
		"Douglas_Adams": vo.Single{ID: "Q42"},
		"File:Example.jpg": vo.MediaAggregate{
			Depicts: []vo.Identifier{"Q1"},
			Usage:   []vo.UsageEntry{{ID: "Q10", Title: "Page A"}},
		},
		"File:Unused.jpg": vo.MediaAggregate{},
	}}
}

func intPtr(i int) *int {
	return &i
}

func callRequest(name string, args interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNewServer(t *testing.T) {
	server := NewServer(http.DefaultClient, newFakeService(), render.DefaultOptions())
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
}

func TestResolveHandler(t *testing.T) {
	svc := newFakeService()
	handler := getResolveHandler(http.DefaultClient, svc)

	args := ResolveRequest{Site: "commonswiki", Namespace: intPtr(6), Title: "File:Example.jpg"}
	result, err := handler(context.Background(), callRequest("resolve", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response ResolveResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, vo.PageContext{Site: "commonswiki", Namespace: 6, Title: "File:Example.jpg"}, response.Page)
	assert.Equal(t, vo.ResultKindMedia, response.Result.Kind)
	assert.True(t, response.Result.Renderable)
	assert.Equal(t, []vo.Identifier{"Q1"}, response.Result.Depicts)
	assert.Equal(t, []vo.UsageEntry{{ID: "Q10", Title: "Page A"}}, response.Result.Usage)
}

func TestResolveHandlerNoData(t *testing.T) {
	handler := getResolveHandler(http.DefaultClient, newFakeService())

	args := ResolveRequest{Site: "enwiki", Namespace: intPtr(-1), Title: "Special:Search"}
	result, err := handler(context.Background(), callRequest("resolve", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"kind":"none"`)
}

func TestResolveHandlerValidation(t *testing.T) {
	svc := newFakeService()
	handler := getResolveHandler(http.DefaultClient, svc)

	for _, args := range []ResolveRequest{
		{},
		{Site: "enwiki", Title: "Douglas_Adams"},
		{Namespace: intPtr(0), Title: "Douglas_Adams"},
		{Site: "enwiki", Namespace: intPtr(0)},
	} {
		result, err := handler(context.Background(), callRequest("resolve", args), args)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.IsError, "expected error result for %+v", args)
	}
	assert.Empty(t, svc.asked)
}

func TestResolveHandlerPageURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><script>RLCONF={"wgPageName":"Douglas_Adams","wgNamespaceNumber":0,"wgDBname":"enwiki"};</script></head>` +
			`<body><li id="t-wikibase"><a href="https://www.wikidata.org/wiki/Q42">Wikidata item</a></li></body></html>`))
	}))
	defer srv.Close()

	svc := newFakeService()
	handler := getResolveHandler(srv.Client(), svc)

	args := ResolveRequest{PageURL: srv.URL + "/wiki/Douglas_Adams"}
	result, err := handler(context.Background(), callRequest("resolve", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	require.Len(t, svc.asked, 1)
	assert.Equal(t, vo.PageContext{
		Site:      "enwiki",
		Namespace: 0,
		Title:     "Douglas_Adams",
		Hint:      "https://www.wikidata.org/wiki/Q42",
	}, svc.asked[0])
	assert.Contains(t, resultText(t, result), `"id":"Q42"`)
}

func TestResolveHandlerPageURLFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	handler := getResolveHandler(srv.Client(), newFakeService())
	args := ResolveRequest{PageURL: srv.URL + "/wiki/Nope"}
	result, err := handler(context.Background(), callRequest("resolve", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestRenderLinksHandler(t *testing.T) {
	handler := getRenderLinksHandler(http.DefaultClient, newFakeService(), render.DefaultOptions())

	args := RenderLinksRequest{
		ResolveRequest: ResolveRequest{Site: "commonswiki", Namespace: intPtr(6), Title: "File:Example.jpg"},
		Format:         "html",
	}
	result, err := handler(context.Background(), callRequest("renderLinks", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response RenderLinksResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, "html", response.Format)
	assert.True(t, strings.HasPrefix(response.Links, `<div class="wikidata-links">`))
	assert.Contains(t, response.Links, "<hr/>")
	assert.Contains(t, response.Links, "https://www.wikidata.org/wiki/Q10")
}

func TestRenderLinksHandlerNothingToRender(t *testing.T) {
	handler := getRenderLinksHandler(http.DefaultClient, newFakeService(), render.DefaultOptions())

	args := RenderLinksRequest{
		ResolveRequest: ResolveRequest{Site: "commonswiki", Namespace: intPtr(6), Title: "File:Unused.jpg"},
	}
	result, err := handler(context.Background(), callRequest("renderLinks", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response RenderLinksResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, "markdown", response.Format)
	assert.Empty(t, response.Links)
}

func TestRenderLinksHandlerValidation(t *testing.T) {
	handler := getRenderLinksHandler(http.DefaultClient, newFakeService(), render.DefaultOptions())

	args := RenderLinksRequest{
		ResolveRequest: ResolveRequest{Site: "enwiki", Namespace: intPtr(0), Title: "Douglas_Adams"},
		Format:         "pdf",
	}
	result, err := handler(context.Background(), callRequest("renderLinks", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestResolveRequestUnmarshal(t *testing.T) {
	var req RenderLinksRequest
	require.NoError(t, json.Unmarshal([]byte(`{"site":"enwiki","namespace":0,"title":"X","format":"html"}`), &req))
	require.NotNil(t, req.Namespace)
	assert.Equal(t, 0, *req.Namespace)
	assert.Equal(t, "enwiki", req.Site)
	assert.Equal(t, "html", req.Format)
}
