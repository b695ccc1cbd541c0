package service

import (
	"context"
	"errors"
	"strings"

	"github.com/foomo/wikidata-links-mcp/mediawiki"
	"github.com/foomo/wikidata-links-mcp/service/vo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const filePrefix = "File:"

// usageCandidate is a usage title whose identifier lookup succeeded
type usageCandidate struct {
	id    vo.Identifier
	title string
}

func fileTitle(title string) string {
	return filePrefix + strings.TrimPrefix(title, filePrefix)
}

// resolveMedia collects depicted items and the items of embedding pages for a file page.
// Lookup failures degrade to empty sub-results and are only logged.
func (s *service) resolveMedia(ctx context.Context, pc vo.PageContext) vo.MediaAggregate {
	title := fileTitle(pc.Title)
	logger := s.logger.With(zap.String("file", title))

	var (
		depicts            []vo.Identifier
		usages             []mediawiki.Usage
		depictsErr, useErr error
	)

	// errors are kept per branch so one failing lookup does not cancel the other
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		depicts, depictsErr = s.lookupDepicts(gctx, title)
		return nil
	})
	g.Go(func() error {
		usages, useErr = s.lookup.GetUsage(gctx, s.settings.CommonsSite, title, s.settings.UsageSite, s.settings.UsageNamespace)
		return nil
	})
	_ = g.Wait()

	if errors.Is(depictsErr, mediawiki.ErrUnreachable) && errors.Is(useErr, mediawiki.ErrUnreachable) {
		logger.Error("failed to reach remote service", zap.NamedError("depictsError", depictsErr), zap.NamedError("usageError", useErr))
		return vo.MediaAggregate{}
	}
	if depictsErr != nil {
		if errors.Is(depictsErr, mediawiki.ErrNotFound) {
			logger.Debug("file has no entity", zap.Error(depictsErr))
		} else {
			logger.Warn("depicts lookup failed", zap.Error(depictsErr))
		}
		depicts = nil
	}
	if useErr != nil {
		logger.Warn("usage lookup failed", zap.Error(useErr))
		usages = nil
	}

	return aggregate(depicts, s.resolveUsage(ctx, logger, usages))
}

func (s *service) lookupDepicts(ctx context.Context, title string) ([]vo.Identifier, error) {
	entity, err := s.lookup.GetEntity(ctx, s.settings.CommonsSite, title)
	if err != nil {
		return nil, err
	}
	return entity.PropertyValues(s.settings.DepictsProperty), nil
}

// resolveUsage looks up the identifier of every usage title, keeping source order and dropping failures
func (s *service) resolveUsage(ctx context.Context, logger *zap.Logger, usages []mediawiki.Usage) []usageCandidate {
	if len(usages) == 0 {
		return nil
	}

	results := make([]*usageCandidate, len(usages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.UsageConcurrency)
	for i, usage := range usages {
		g.Go(func() error {
			id, err := s.lookup.GetPageIdentifier(gctx, s.settings.UsageSite, usage.Title)
			if err != nil {
				logger.Debug("dropping usage", zap.String("title", usage.Title), zap.Error(err))
				return nil
			}
			results[i] = &usageCandidate{id: id, title: usage.Title}
			return nil
		})
	}
	_ = g.Wait()

	candidates := make([]usageCandidate, 0, len(results))
	for _, r := range results {
		if r != nil {
			candidates = append(candidates, *r)
		}
	}
	return candidates
}
