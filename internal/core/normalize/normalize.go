package normalize

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeDate coerces partial registry dates instead of rejecting them:
// "YYYY-00-00" becomes "YYYY-01-01" and "YYYY-MM-00" becomes "YYYY-MM-01".
// Anything that still fails to parse comes back empty.
func NormalizeDate(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "-00-00", "-01-01")
	s = strings.ReplaceAll(s, "-00", "-01")
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

// SplitCityState splits a combined "city, state" value only when exactly two
// comma-separated parts are present; otherwise the whole string stays the
// city and state is empty.
func SplitCityState(s string) (string, string) {
	parts := strings.Split(s, ", ")
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return s, ""
}

// TagLaureateID prefixes a registry id with "l". Idempotent.
func TagLaureateID(id string) string {
	if strings.HasPrefix(id, "l") {
		return id
	}
	return "l" + id
}

// CanonicalCategory maps the registry's long category names onto the tree's
// short ones and lowercases. Idempotent.
func CanonicalCategory(category string) string {
	category = strings.ReplaceAll(category, "Physiology or Medicine", "Medicine")
	category = strings.ReplaceAll(category, "Economic Sciences", "Economics")
	return strings.ToLower(category)
}

// PrizeID is the stable composite prize key, e.g. "1956_physics".
func PrizeID(year int, category string) string {
	return fmt.Sprintf("%d_%s", year, CanonicalCategory(category))
}
