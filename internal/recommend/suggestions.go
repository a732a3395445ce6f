package recommend

import "fmt"

// GenerateSuggestions produces up to three sentences, in order: muscle
// balance, equipment variety, split variety. A sentence is omitted when its
// source has no data.
func GenerateSuggestions(p *Patterns, splits []SplitTypePreference) []string {
	suggestions := []string{}

	if focus := p.BodyPartFocus(); len(focus) > 0 {
		most, least := focus[0].Name, focus[len(focus)-1].Name
		suggestions = append(suggestions, fmt.Sprintf(
			"You frequently target %s. Consider adding more %s exercises for better balance.", most, least))
	}

	if usage := p.EquipmentUsage(); len(usage) > 0 {
		mostUsed := usage[0].Name
		if isBodyweight(mostUsed) {
			suggestions = append(suggestions,
				"You mostly train with bodyweight exercises. Consider adding some equipment-based exercises for progressive overload.")
		} else {
			suggestions = append(suggestions, fmt.Sprintf(
				"You often use %s. Try incorporating different equipment to add variety to your workouts.", mostUsed))
		}
	}

	if len(splits) > 0 {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your preferred split type is %s. Consider trying other split types to keep your training fresh.", splits[0].Name))
	}

	return suggestions
}
