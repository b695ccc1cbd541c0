// Package render turns resolution results into the link block shown below a page heading.
package render

import (
	"bytes"
	"fmt"
	"net/url"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/foomo/wikidata-links-mcp/service/vo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	ContainerClass = "wikidata-links"
	SeparatorClass = "separator"
	Separator      = "◊"
)

type Options struct {
	WikidataBaseURL   string // Item pages are WikidataBaseURL + identifier
	ReasonatorBaseURL string
	Lang              string
}

func DefaultOptions() Options {
	return Options{
		WikidataBaseURL:   "https://www.wikidata.org/wiki/",
		ReasonatorBaseURL: "https://reasonator.toolforge.org/",
		Lang:              "en",
	}
}

func (o Options) WikidataURL(id vo.Identifier) string {
	return o.WikidataBaseURL + string(id)
}

func (o Options) ReasonatorURL(id vo.Identifier) string {
	return fmt.Sprintf("%s?q=%s&lang=%s", o.ReasonatorBaseURL, url.QueryEscape(string(id)), url.QueryEscape(o.Lang))
}

// Node builds the link block for a result, nil if there is nothing to show
func Node(r vo.ResolutionResult, opts Options) *html.Node {
	if !vo.Renderable(r) {
		return nil
	}
	container := element(atom.Div, "class", ContainerClass)

	switch v := r.(type) {
	case vo.Single:
		appendLinks(container, v.ID, opts)
	case *vo.Single:
		appendLinks(container, v.ID, opts)
	case vo.MediaAggregate:
		appendMedia(container, v, opts)
	case *vo.MediaAggregate:
		appendMedia(container, *v, opts)
	}
	return container
}

// HTML renders the link block, empty if there is nothing to show
func HTML(r vo.ResolutionResult, opts Options) (string, error) {
	n := Node(r, opts)
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

// Markdown renders the link block as markdown, empty if there is nothing to show
func Markdown(r vo.ResolutionResult, opts Options) (string, error) {
	n := Node(r, opts)
	if n == nil {
		return "", nil
	}
	markdownBytes, err := htmltomarkdown.ConvertNode(n)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return string(markdownBytes), nil
}

func appendMedia(container *html.Node, m vo.MediaAggregate, opts Options) {
	if m.HasDepicts() {
		section := element(atom.Div)
		section.AppendChild(text("Depicts: "))
		for i, id := range m.Depicts {
			if i > 0 {
				section.AppendChild(separator())
			}
			appendLinks(section, id, opts)
		}
		container.AppendChild(section)
	}

	if m.HasUsage() {
		if m.Separated() {
			container.AppendChild(element(atom.Hr))
		}
		section := element(atom.Div)
		section.AppendChild(text("Used in: "))
		for i, entry := range m.Usage {
			if i > 0 {
				section.AppendChild(separator())
			}
			span := element(atom.Span)
			span.AppendChild(text(entry.Title + " ("))
			section.AppendChild(span)
			appendLinks(section, entry.ID, opts)
			closing := element(atom.Span)
			closing.AppendChild(text(")"))
			section.AppendChild(closing)
		}
		container.AppendChild(section)
	}
}

// appendLinks adds "Wikidata ◊ Reasonator" for id
func appendLinks(parent *html.Node, id vo.Identifier, opts Options) {
	parent.AppendChild(link(opts.WikidataURL(id), "Wikidata"))
	parent.AppendChild(separator())
	parent.AppendChild(link(opts.ReasonatorURL(id), "Reasonator"))
}

func link(href, label string) *html.Node {
	a := element(atom.A, "href", href)
	a.AppendChild(text(label))
	return a
}

func separator() *html.Node {
	span := element(atom.Span, "class", SeparatorClass)
	span.AppendChild(text(Separator))
	return span
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}
