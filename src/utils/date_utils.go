package utils

import "time"

const ISODateFormat = "2006-01-02"

// MonthRange returns the first and last day of the given month, formatted
// the way transaction dates are stored.
func MonthRange(month, year int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(ISODateFormat), last.Format(ISODateFormat)
}

// PreviousMonth resolves the calendar month before the given one,
// wrapping the year at January.
func PreviousMonth(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}
