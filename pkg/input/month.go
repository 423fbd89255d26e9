package input

import (
	"fmt"
	"strconv"
	"time"
)

// ParseMonth("MMYYYY") -> 1er jour du mois UTC
func ParseMonth(mmyyyy string) (time.Time, error) {
	if len(mmyyyy) != 6 {
		return time.Time{}, domainErr("month", mmyyyy, "expected MMYYYY (ex: 012025)")
	}
	month, err := strconv.Atoi(mmyyyy[:2])
	if err != nil {
		return time.Time{}, domainErr("month", mmyyyy, "expected MMYYYY (ex: 012025)")
	}
	year, err := strconv.Atoi(mmyyyy[2:])
	if err != nil {
		return time.Time{}, domainErr("month", mmyyyy, "expected MMYYYY (ex: 012025)")
	}
	if month < 1 || month > 12 {
		return time.Time{}, domainErr("month", mmyyyy, "invalid month")
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// MonthsBetweenInclusive renvoie le 1er de chaque mois de start à end inclus.
func MonthsBetweenInclusive(start, end time.Time) []time.Time {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// FormatMonth -> "MM/YYYY"
func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}
