package core

import "time"

// MonthWindow computes the half-open UTC window covering one calendar month:
// [first instant of (year, month), first instant of the following month).
// Variable month lengths and leap years come out of the calendar arithmetic,
// not a fixed day count.
func MonthWindow(year, month int) (start, end time.Time, err error) {
	if year < 1 {
		return time.Time{}, time.Time{}, ErrInvalidYear
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end, nil
}
