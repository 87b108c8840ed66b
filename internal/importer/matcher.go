package importer

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"cajabooks/internal/models"
)

// maxDistanceRatio is the approximate-match cutoff: candidates whose
// normalized edit distance is at or above this ratio are rejected.
// 0 means identical, 1 means nothing in common.
const maxDistanceRatio = 0.4

// MatchStoreName resolves a raw store name against the known stores.
// An exact case-insensitive match (after prefix cleaning) always wins with
// confidence 1.0. Otherwise the store with the lowest edit-distance ratio
// below the cutoff is returned with confidence 1 - ratio. Returns nil when
// nothing qualifies; the caller treats that as a review signal, not an
// error.
func MatchStoreName(rawName string, stores []models.StoreRef) *models.MatchResult {
	if rawName == "" || len(stores) == 0 {
		return nil
	}

	cleaned := CleanStoreName(rawName)
	if cleaned == "" {
		return nil
	}

	for _, s := range stores {
		if strings.EqualFold(s.Name, cleaned) {
			return &models.MatchResult{ID: s.ID, Name: s.Name, Confidence: 1.0}
		}
	}

	best := -1
	bestRatio := maxDistanceRatio
	for i, s := range stores {
		ratio, ok := distanceRatio(cleaned, s.Name)
		if ok && ratio < bestRatio {
			best = i
			bestRatio = ratio
		}
	}
	if best < 0 {
		return nil
	}

	return &models.MatchResult{
		ID:         stores[best].ID,
		Name:       stores[best].Name,
		Confidence: 1 - bestRatio,
	}
}

// distanceRatio is the case-insensitive edit distance between a and b
// divided by the longer length. ok is false when no ratio can be computed
// (both strings empty).
func distanceRatio(a, b string) (float64, bool) {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 0, false
	}
	dist := levenshtein.ComputeDistance(strings.ToUpper(a), strings.ToUpper(b))
	return float64(dist) / float64(maxLen), true
}
