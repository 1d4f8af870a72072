package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// SearchGameByName fuzzy-matches query against stored game names using
// case-insensitive edit distance. Results are ordered ascending by
// distance (best match first); names too far from the query to plausibly
// match are excluded, so a miss yields an empty result set.
func (r *Repository) SearchGameByName(ctx context.Context, query string) ([]GameMatch, error) {
	games, err := r.AllGames(ctx, 0)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	var matches []GameMatch
	for _, game := range games {
		if game.Name == "" {
			continue
		}
		distance := levenshtein.ComputeDistance(query, strings.ToLower(game.Name))
		// A distance at or beyond the query length means every query
		// character would need editing, which is no match at all.
		if distance >= len(query) {
			continue
		}
		matches = append(matches, GameMatch{
			AppID:    game.AppID,
			Name:     game.Name,
			Distance: distance,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches, nil
}
