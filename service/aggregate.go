package service

import "github.com/foomo/wikidata-links-mcp/service/vo"

// aggregate merges depicted items and resolved usages, keeping first occurrences in source order
func aggregate(depicts []vo.Identifier, usage []usageCandidate) vo.MediaAggregate {
	result := vo.MediaAggregate{
		Depicts: make([]vo.Identifier, 0, len(depicts)),
		Usage:   make([]vo.UsageEntry, 0, len(usage)),
	}

	seen := make(map[vo.Identifier]struct{}, len(depicts))
	for _, id := range depicts {
		if _, ok := vo.ParseIdentifier(string(id)); !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result.Depicts = append(result.Depicts, id)
	}

	seen = make(map[vo.Identifier]struct{}, len(usage))
	for _, u := range usage {
		if _, ok := vo.ParseIdentifier(string(u.id)); !ok {
			continue
		}
		if _, ok := seen[u.id]; ok {
			continue
		}
		seen[u.id] = struct{}{}
		result.Usage = append(result.Usage, vo.UsageEntry{
			ID:    u.id,
			Title: vo.FormatTitle(u.title),
		})
	}

	return result
}
