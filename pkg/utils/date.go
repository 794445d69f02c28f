package utils

import "time"

// DaysInRange devolve cada dia entre start e end, inclusive, em ordem crescente
func DaysInRange(start, end time.Time) []time.Time {
	days := make([]time.Time, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
