package resolver

import (
	"sort"
	"strings"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// Score weights. Exact matches score domain.MaxScore.
const (
	prefixScore   = 0.9
	substrScore   = 0.8
	overlapWeight = 0.7
)

// confidentScore is the minimum top score that wins over runners-up without
// asking the user to pick.
const confidentScore = 0.9

// Score rates how well name matches query, in [0, 1]. Both strings are
// normalized first, so case and punctuation never matter.
//
//	exact match                          1.0
//	name starts with query               0.9
//	name contains query                  0.8
//	otherwise                            0.7 × share of query tokens found
//	                                     inside some name token
func Score(query, name string) float64 {
	return scoreNormalized(domain.NormalizeText(query), domain.NormalizeText(name))
}

func scoreNormalized(q, n string) float64 {
	if q == "" || n == "" {
		return 0
	}
	switch {
	case q == n:
		return domain.MaxScore
	case strings.HasPrefix(n, q):
		return prefixScore
	case strings.Contains(n, q):
		return substrScore
	}

	qTokens := domain.Tokens(q)
	nTokens := domain.Tokens(n)
	if len(qTokens) == 0 {
		return 0
	}

	found := 0
	for _, qt := range qTokens {
		for _, nt := range nTokens {
			if strings.Contains(nt, qt) {
				found++
				break
			}
		}
	}
	return overlapWeight * float64(found) / float64(len(qTokens))
}

// Rank scores items against query, drops those under minScore and returns
// at most topN matches. Order: score desc, shorter name, name, id.
func Rank(query string, items []domain.CatalogItem, minScore float64, topN int) []domain.Match {
	q := domain.NormalizeText(query)
	matches := make([]domain.Match, 0, len(items))
	if q == "" || topN <= 0 {
		return matches
	}

	for _, it := range items {
		n := it.NameNormalized
		if n == "" {
			n = domain.NormalizeText(it.Name)
		}
		s := scoreNormalized(q, n)
		if s <= 0 || s < minScore {
			continue
		}
		matches = append(matches, domain.Match{Item: it, Score: s})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.Item.Name) != len(b.Item.Name) {
			return len(a.Item.Name) < len(b.Item.Name)
		}
		if a.Item.Name != b.Item.Name {
			return a.Item.Name < b.Item.Name
		}
		return a.Item.ID < b.Item.ID
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

// Pick returns the match a caller may act on without asking the user:
// the only match, or a top match scoring at least 0.9 that strictly beats
// the runner-up.
func Pick(matches []domain.Match) (domain.Match, bool) {
	switch len(matches) {
	case 0:
		return domain.Match{}, false
	case 1:
		return matches[0], true
	}
	top := matches[0]
	if top.Score >= confidentScore && top.Score > matches[1].Score {
		return top, true
	}
	return domain.Match{}, false
}
