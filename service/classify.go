package service

import "github.com/foomo/wikidata-links-mcp/service/vo"

type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyRepositoryPage
	StrategyMediaItem
	StrategyEmbeddedLink
)

func (s Strategy) String() string {
	switch s {
	case StrategyRepositoryPage:
		return "repository-page"
	case StrategyMediaItem:
		return "media-item"
	case StrategyEmbeddedLink:
		return "embedded-link"
	default:
		return "none"
	}
}

// Classify picks how a page's identifiers are resolved. It never touches the network.
func Classify(pc vo.PageContext, settings SiteSettings) Strategy {
	switch {
	case pc.Namespace < 0:
		return StrategyNone
	case pc.Site == settings.RepositorySite:
		// only item pages of the repository carry an identifier
		if _, ok := vo.ParseIdentifier(pc.Title); ok {
			return StrategyRepositoryPage
		}
		return StrategyNone
	case pc.Site == settings.CommonsSite && pc.Namespace == settings.FileNamespace:
		return StrategyMediaItem
	default:
		return StrategyEmbeddedLink
	}
}
