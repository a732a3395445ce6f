package recommend

import (
	"math"
	"sort"

	"github.com/meltforce/fitrec/internal/models"
)

// SplitTypePreference is the share of saved workouts using a split type, 0-100.
type SplitTypePreference struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RankSplitTypes scores each split type by its share of the saved workouts
// that have one, highest first. Ties break by name.
func RankSplitTypes(saved []models.SavedWorkout) []SplitTypePreference {
	counts := make(map[string]int)
	total := 0
	for _, w := range saved {
		if w.SplitType == "" {
			continue
		}
		counts[w.SplitType]++
		total++
	}

	prefs := make([]SplitTypePreference, 0, len(counts))
	if total == 0 {
		return prefs
	}
	for name, n := range counts {
		prefs = append(prefs, SplitTypePreference{
			Name:  name,
			Score: int(math.Round(float64(n) / float64(total) * 100)),
		})
	}
	sort.SliceStable(prefs, func(i, j int) bool {
		if prefs[i].Score != prefs[j].Score {
			return prefs[i].Score > prefs[j].Score
		}
		return prefs[i].Name < prefs[j].Name
	})
	return prefs
}
