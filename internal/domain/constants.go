package domain

// Unit systems recognized by the unit-preference filter.
const (
	UnitMetric   = "metric"
	UnitImperial = "imperial"

	// DefaultUnitPreference applies when a request does not specify one.
	DefaultUnitPreference = UnitMetric
)

// ValidUnitPreference reports whether the given unit system is recognized.
func ValidUnitPreference(pref string) bool {
	return pref == UnitMetric || pref == UnitImperial
}
