package recommend

import (
	"math"
	"strings"

	"github.com/meltforce/fitrec/internal/catalog"
)

const (
	candidatesPerSource = 5

	pointsPerOccurrence = 10
	maxFrequencyPoints  = 40
	maxRatingPoints     = 40
	maxRating           = 5
	bodyweightBonus     = 20
	maxConfidence       = 100

	// MinConfidence is the lowest score an exercise needs to be recommended.
	MinConfidence = 60
)

// RecommendedExercise is an exercise suggested from the user's history.
type RecommendedExercise struct {
	Name            string `json:"name"`
	Target          string `json:"target"`
	Equipment       string `json:"equipment"`
	ConfidenceScore int    `json:"confidenceScore"`
}

// ScoreRecommendations merges the five best-rated and five most frequent
// exercises (rated first, first occurrence wins), drops those the catalog
// does not know, and keeps the ones scoring at least MinConfidence. The
// result keeps candidate order.
func ScoreRecommendations(p *Patterns, cat catalog.Lookup) []RecommendedExercise {
	candidates := append(p.TopRated(candidatesPerSource), p.MostFrequent(candidatesPerSource)...)

	seen := make(map[string]bool, len(candidates))
	result := []RecommendedExercise{}
	for _, name := range candidates {
		if seen[name] {
			continue
		}
		seen[name] = true

		entry, ok := cat.Lookup(name)
		if !ok {
			continue
		}
		score := ConfidenceScore(p, name, entry.Equipment)
		if score < MinConfidence {
			continue
		}
		result = append(result, RecommendedExercise{
			Name:            name,
			Target:          entry.BodyPart,
			Equipment:       entry.Equipment,
			ConfidenceScore: score,
		})
	}
	return result
}

// ConfidenceScore combines frequency (10 per occurrence, at most 40), average
// rating (scaled to at most 40) and a 20 point bonus for exercises needing no
// equipment. The sum is capped at 100 and rounded.
func ConfidenceScore(p *Patterns, name, equipment string) int {
	score := math.Min(float64(p.ExerciseFrequency(name)*pointsPerOccurrence), maxFrequencyPoints)
	if stat, ok := p.Rating(name); ok {
		score += stat.Average() / maxRating * maxRatingPoints
	}
	if isBodyweight(equipment) {
		score += bodyweightBonus
	}
	return int(math.Round(math.Min(score, maxConfidence)))
}

func isBodyweight(equipment string) bool {
	return strings.ToLower(equipment) == "none"
}
