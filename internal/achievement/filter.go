package achievement

import "github.com/ruckwell/achievement-service/internal/domain"

// filterByUnitPreference retains achievements that apply to the requested
// unit system: those with no preference plus those whose preference matches.
// Input order is preserved.
func filterByUnitPreference(achievements []domain.Achievement, pref string) []domain.Achievement {
	if pref == "" {
		pref = domain.DefaultUnitPreference
	}

	filtered := make([]domain.Achievement, 0, len(achievements))
	for _, a := range achievements {
		if a.UnitPreference == "" || a.UnitPreference == pref {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
