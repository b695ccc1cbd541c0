package scrape

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// pageConfigMarker starts the inline script assignment holding the page configuration
const pageConfigMarker = "RLCONF="

var ErrNoPageConfig = errors.New("page configuration not found")

type pageConfig struct {
	DBName          string `json:"wgDBname"`
	NamespaceNumber int    `json:"wgNamespaceNumber"`
	PageName        string `json:"wgPageName"`
}

func extractPageConfig(doc *html.Node) (*pageConfig, error) {
	script := findScriptContaining(doc, pageConfigMarker)
	if script == "" {
		return nil, ErrNoPageConfig
	}
	literal, ok := objectLiteralAfter(script, pageConfigMarker)
	if !ok {
		return nil, fmt.Errorf("%w: unterminated %s", ErrNoPageConfig, pageConfigMarker)
	}
	cfg := &pageConfig{}
	if err := json.Unmarshal([]byte(literal), cfg); err != nil {
		return nil, fmt.Errorf("failed to decode page configuration: %w", err)
	}
	if cfg.DBName == "" || cfg.PageName == "" {
		return nil, fmt.Errorf("%w: incomplete", ErrNoPageConfig)
	}
	return cfg, nil
}

// findScriptContaining returns the text of the first inline script that contains marker
func findScriptContaining(n *html.Node, marker string) string {
	if n.Type == html.ElementNode && n.Data == "script" {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		if text := sb.String(); strings.Contains(text, marker) {
			return text
		}
		return ""
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findScriptContaining(c, marker); result != "" {
			return result
		}
	}

	return ""
}

// objectLiteralAfter cuts the balanced {...} that follows marker in s, skipping braces inside string literals
func objectLiteralAfter(s, marker string) (string, bool) {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return "", false
	}
	s = s[idx+len(marker):]
	if !strings.HasPrefix(s, "{") {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
