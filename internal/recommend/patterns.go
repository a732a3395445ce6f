package recommend

import (
	"sort"

	"github.com/meltforce/fitrec/internal/catalog"
	"github.com/meltforce/fitrec/internal/models"
)

// Count is one ranked entry of a counter.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RatingStat accumulates the ratings given to one exercise.
type RatingStat struct {
	Total float64 `json:"totalRating"`
	Count int     `json:"count"`
}

// Average returns Total/Count. Count is always positive for stored stats.
func (s RatingStat) Average() float64 {
	return s.Total / float64(s.Count)
}

// Patterns is the aggregate of a user's workout history. It is built once by
// ExtractPatterns and only read afterwards.
//
// Exercise-name keys are stored exactly as supplied; "Bench Press" and
// "bench press" are distinct entries in the frequency and rating maps.
type Patterns struct {
	exerciseFrequency map[string]int
	bodyPartFocus     map[string]int
	equipmentUsage    map[string]int
	ratings           map[string]RatingStat
}

// ExtractPatterns counts exercise occurrences across saved workouts and
// accumulates ratings across rated workouts. Body part and equipment are only
// counted for exercises the catalog knows.
func ExtractPatterns(saved, rated []models.SavedWorkout, cat catalog.Lookup) *Patterns {
	p := &Patterns{
		exerciseFrequency: make(map[string]int),
		bodyPartFocus:     make(map[string]int),
		equipmentUsage:    make(map[string]int),
		ratings:           make(map[string]RatingStat),
	}

	for _, w := range saved {
		for _, names := range w.Exercises {
			for _, name := range names {
				p.exerciseFrequency[name]++

				entry, ok := cat.Lookup(name)
				if !ok {
					continue
				}
				p.bodyPartFocus[entry.BodyPart]++
				p.equipmentUsage[entry.Equipment]++
			}
		}
	}

	for _, w := range rated {
		for name, rating := range w.Ratings {
			stat := p.ratings[name]
			stat.Total += rating
			stat.Count++
			p.ratings[name] = stat
		}
	}

	return p
}

// ExerciseFrequency returns how often the exact name occurred.
func (p *Patterns) ExerciseFrequency(name string) int {
	return p.exerciseFrequency[name]
}

// Rating returns the accumulated ratings for the exact name.
func (p *Patterns) Rating(name string) (RatingStat, bool) {
	stat, ok := p.ratings[name]
	return stat, ok
}

// BodyPartFocus returns body-part counts, most trained first.
func (p *Patterns) BodyPartFocus() []Count {
	return ranked(p.bodyPartFocus)
}

// EquipmentUsage returns equipment counts, most used first.
func (p *Patterns) EquipmentUsage() []Count {
	return ranked(p.equipmentUsage)
}

// MostFrequent returns up to n exercise names by descending frequency.
func (p *Patterns) MostFrequent(n int) []string {
	counts := ranked(p.exerciseFrequency)
	names := make([]string, 0, min(n, len(counts)))
	for _, c := range counts {
		if len(names) == n {
			break
		}
		names = append(names, c.Name)
	}
	return names
}

// TopRated returns up to n exercise names by descending average rating.
// Ties break by name.
func (p *Patterns) TopRated(n int) []string {
	type rated struct {
		name    string
		average float64
	}
	all := make([]rated, 0, len(p.ratings))
	for name, stat := range p.ratings {
		if stat.Count > 0 {
			all = append(all, rated{name: name, average: stat.Average()})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].average != all[j].average {
			return all[i].average > all[j].average
		}
		return all[i].name < all[j].name
	})

	names := make([]string, 0, min(n, len(all)))
	for _, r := range all {
		if len(names) == n {
			break
		}
		names = append(names, r.name)
	}
	return names
}

// ranked sorts a counter by count descending, then name ascending.
func ranked(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
