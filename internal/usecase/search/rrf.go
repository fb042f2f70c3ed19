package search

import "sort"

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges matcher rankings into one list of lines.
// score(line) = sum of 1/(k + rank_i(line)) over every ranking containing the line.
// Equal scores keep the order in which lines were first seen, so higher priority
// matchers win ties.
func fuseRRF(rankings [][]string, limit int) []string {
	type scored struct {
		line  string
		score float64
		first int
	}

	merged := make(map[string]*scored)
	seen := 0
	for _, ranking := range rankings {
		for rank, line := range ranking {
			s := 1.0 / float64(rrfK+rank+1)
			if existing, ok := merged[line]; ok {
				existing.score += s
				continue
			}
			merged[line] = &scored{line: line, score: s, first: seen}
			seen++
		}
	}

	all := make([]*scored, 0, len(merged))
	for _, s := range merged {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].first < all[j].first
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	lines := make([]string, len(all))
	for i, s := range all {
		lines[i] = s.line
	}
	return lines
}
