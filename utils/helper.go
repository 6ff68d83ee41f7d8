package utils

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the storage and wire format for ledger dates. Dates carry no
// time component; everything is a calendar day.
const DateLayout = "2006-01-02"

func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return d, nil
}

func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// MonthStart truncates a date to the first day of its month.
func MonthStart(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// WeekStart truncates a date to its Monday.
func WeekStart(date time.Time) time.Time {
	weekday := int(date.Weekday())
	// time.Sunday is 0; shift so the week starts on Monday.
	offset := (weekday + 6) % 7
	d := date.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStarts returns every first-of-month from the month containing from up
// to and including the month containing to, ascending.
func MonthStarts(from, to time.Time) []time.Time {
	var dates []time.Time
	current := MonthStart(from)
	end := MonthStart(to)
	for !current.After(end) {
		dates = append(dates, current)
		current = current.AddDate(0, 1, 0)
	}
	return dates
}

// WeekStarts returns every Monday from the week containing from up to and
// including the week containing to, ascending.
func WeekStarts(from, to time.Time) []time.Time {
	var dates []time.Time
	current := WeekStart(from)
	end := WeekStart(to)
	for !current.After(end) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 7)
	}
	return dates
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errorResponse["message"] = err.Error()
		return errorResponse
	}
	for _, fieldError := range validationErrors {
		errorResponse[fieldError.Field()] = fmt.Sprintf("failed on %s", fieldError.Tag())
	}
	return errorResponse
}
