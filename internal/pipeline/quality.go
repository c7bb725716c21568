package pipeline

// MinCompleteness is the share of days since StartYear that must carry a
// value for an element to count as usable.
const MinCompleteness = 0.7

// Completeness is the valid/total ratio, 0 when there are no rows at all.
func Completeness(valid, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(valid) / float64(total)
}

// Usable reports whether an element series passes the quality gate.
func Usable(valid, total int) bool {
	return Completeness(valid, total) >= MinCompleteness
}
