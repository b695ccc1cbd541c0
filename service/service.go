package service

import (
	"context"
	"net/http"

	"github.com/foomo/wikidata-links-mcp/mediawiki"
	"github.com/foomo/wikidata-links-mcp/scrape"
	"github.com/foomo/wikidata-links-mcp/service/vo"
	"go.uber.org/zap"
)

type Service interface {
	// Resolve returns the identifiers relevant to a page, or nil if there are none to look for.
	// It never fails; lookup problems degrade to empty results.
	Resolve(ctx context.Context, pc vo.PageContext) vo.ResolutionResult
}

type service struct {
	logger   *zap.Logger
	lookup   mediawiki.Lookup
	settings SiteSettings
}

// NewService wires a resolver; lookup defaults to a mediawiki.Client for the configured endpoints
func NewService(
	logger *zap.Logger,
	settings SiteSettings,
	httpClient *http.Client,
	lookup mediawiki.Lookup,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if settings.UsageConcurrency < 1 {
		settings.UsageConcurrency = 1
	}
	if lookup == nil {
		lookup = mediawiki.NewClient(
			settings.Endpoints,
			mediawiki.ClientWithHTTPClient(httpClient),
			mediawiki.ClientWithUserAgent(settings.UserAgent),
		)
	}
	return &service{
		logger:   logger,
		lookup:   lookup,
		settings: settings,
	}
}

func (s *service) Resolve(ctx context.Context, pc vo.PageContext) vo.ResolutionResult {
	strategy := Classify(pc, s.settings)
	logger := s.logger.With(
		zap.String("site", pc.Site),
		zap.Int("namespace", pc.Namespace),
		zap.String("title", pc.Title),
		zap.Stringer("strategy", strategy),
	)

	switch strategy {
	case StrategyRepositoryPage:
		id, _ := vo.ParseIdentifier(pc.Title)
		return vo.Single{ID: id}
	case StrategyEmbeddedLink:
		id, ok := scrape.ExtractIdentifier(pc.Hint)
		if !ok {
			logger.Debug("no identifier in page hint", zap.String("hint", pc.Hint))
			return nil
		}
		return vo.Single{ID: id}
	case StrategyMediaItem:
		result := s.resolveMedia(ctx, pc)
		logger.Debug("resolved media item",
			zap.Int("depicts", len(result.Depicts)),
			zap.Int("usage", len(result.Usage)),
		)
		return result
	default:
		logger.Debug("page not applicable")
		return nil
	}
}
