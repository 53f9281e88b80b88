// internal/engine/eligibility.go
package engine

import (
	"math"

	"abiturbot/internal/models"
)

// MinimumPassingScore returns the minimum, across all programs matching the
// pair, of each contract series' latest-year score. The second return is
// false when no program matches the pair at all.
//
// This is a cheap pre-check against the most recent contract threshold; the
// full ranking may compare against a multi-year average instead. The
// asymmetry is deliberate.
func MinimumPassingScore(pair models.SubjectPair, catalog *models.Catalog) (float64, bool) {
	normPair := NormalizePair(pair)

	minScore := math.Inf(1)
	found := false
	for i := range catalog.Universities {
		university := &catalog.Universities[i]
		for j := range university.Programs {
			program := &university.Programs[j]
			if !matchesPair(program, normPair) {
				continue
			}
			// A matching program with no contract history is skipped,
			// it does not force "not found".
			year, ok := program.PassingScores.Contract.LatestYear()
			if !ok {
				continue
			}
			if score := program.PassingScores.Contract[year]; score < minScore {
				minScore = score
				found = true
			}
		}
	}

	if !found {
		return 0, false
	}
	return minScore, true
}
