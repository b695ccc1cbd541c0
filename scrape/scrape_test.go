package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foomo/wikidata-links-mcp/service/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Douglas Adams - Wikipedia</title>
<script>document.documentElement.className="client-js";RLCONF={"wgBreakFrames":false,"wgPageName":"Douglas_Adams","wgTitle":"Douglas Adams","wgNamespaceNumber":0,"wgDBname":"enwiki","wgCategories":["Writers {fiction}","Humorists \"British\""]};RLSTATE={"site.styles":"ready"};</script>
</head>
<body>
<h1 id="firstHeading" class="firstHeading">Douglas Adams</h1>
<div id="p-tb">
<ul>
<li id="t-whatlinkshere"><a href="/wiki/Special:WhatLinksHere/Douglas_Adams">What links here</a></li>
<li id="t-wikibase"><a href="https://www.wikidata.org/wiki/Q42" title="Structured data on this page hosted by Wikidata">Wikidata item</a></li>
</ul>
</div>
</body>
</html>`

func TestExtractIdentifier(t *testing.T) {
	tests := []struct {
		hint string
		want vo.Identifier
		ok   bool
	}{
		{"https://www.wikidata.org/wiki/Q42", "Q42", true},
		{"//www.wikidata.org/wiki/Q1", "Q1", true},
		{"/wiki/Q7", "Q7", true},
		{"", "", false},
		{"https://www.wikidata.org/wiki/Special:EntityPage/Q42x", "", false},
		{"https://www.wikidata.org/wiki/Q42?uselang=en", "", false},
		{"https://www.wikidata.org/wiki/Property:P31", "", false},
		{"https://www.wikidata.org/w/Q42", "", false},
		{"https://www.wikidata.org/wiki/q42", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			id, ok := ExtractIdentifier(tt.hint)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestExtractHint(t *testing.T) {
	hint, ok, err := ExtractHint(strings.NewReader(articleHTML))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://www.wikidata.org/wiki/Q42", hint)

	hint, ok, err = ExtractHint(strings.NewReader(`<html><body><p>no sidebar</p></body></html>`))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, hint)
}

func TestExtractPageContext(t *testing.T) {
	pc, err := ExtractPageContext(strings.NewReader(articleHTML))
	require.NoError(t, err)
	assert.Equal(t, &vo.PageContext{
		Site:      "enwiki",
		Namespace: 0,
		Title:     "Douglas_Adams",
		Hint:      "https://www.wikidata.org/wiki/Q42",
	}, pc)
}

func TestExtractPageContextWithoutConfig(t *testing.T) {
	_, err := ExtractPageContext(strings.NewReader(`<html><head><script>var x = 1;</script></head></html>`))
	require.ErrorIs(t, err, ErrNoPageConfig)
}

func TestObjectLiteralAfter(t *testing.T) {
	literal, ok := objectLiteralAfter(`a;RLCONF={"a":"}{","b":{"c":"\"}"}};x={}`, pageConfigMarker)
	require.True(t, ok)
	assert.Equal(t, `{"a":"}{","b":{"c":"\"}"}}`, literal)

	_, ok = objectLiteralAfter(`RLCONF={"a":1`, pageConfigMarker)
	assert.False(t, ok)

	_, ok = objectLiteralAfter(`RLCONF=null`, pageConfigMarker)
	assert.False(t, ok)
}

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/Douglas_Adams" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	pc, err := Scrape(context.Background(), srv.Client(), srv.URL+"/wiki/Douglas_Adams")
	require.NoError(t, err)
	assert.Equal(t, "enwiki", pc.Site)
	assert.Equal(t, "Douglas_Adams", pc.Title)

	_, err = Scrape(context.Background(), srv.Client(), srv.URL+"/wiki/Missing")
	require.Error(t, err)
}
