// Package recurrence projects recurring definitions into the concrete
// occurrence dates they yield within a target month. Expansion is pure
// and deterministic: the same (definition, month) input always produces
// the same date list, which is what allows occurrences to be healed by
// re-materializing instead of being treated as the sole source of truth.
package recurrence

import (
	"fmt"
	"sort"
	"time"

	"paywise/internal/calendar"
	"paywise/internal/models"
)

// Expand returns the ordered ISO dates a definition yields within the
// target month. The list is empty when the definition is not automated,
// when the month precedes the series anchor month (past months are never
// backfilled), or when the validity window excludes the month.
func Expand(def *models.Definition, month calendar.Month) ([]string, error) {
	if def == nil || !def.IsAutomated {
		return nil, nil
	}

	start, err := calendar.ParseDate(def.StartDate)
	if err != nil {
		return nil, fmt.Errorf("definition %d: %w", def.ID, err)
	}
	anchorMonth := calendar.MonthOf(start)
	if month.Before(anchorMonth) {
		return nil, nil
	}

	var dates []string
	switch def.Frequency {
	case models.FrequencyMonthly:
		dates = []string{calendar.FormatDate(month.Clamp(def.AnchorDay))}

	case models.FrequencyBiMonthly:
		if calendar.MonthsBetween(anchorMonth, month)%2 == 0 {
			dates = []string{calendar.FormatDate(month.Clamp(def.AnchorDay))}
		}

	case models.FrequencySemiMonthly:
		first := calendar.FormatDate(month.Clamp(def.AnchorDay))
		second := calendar.FormatDate(month.Clamp(def.AnchorDay + 15))
		dates = []string{first}
		// Both positions can clamp onto the same day at the end of a
		// short month; keep a single occurrence then.
		if second != first {
			dates = append(dates, second)
		}
		sort.Strings(dates)

	case models.FrequencyWeekly, models.FrequencyBiWeekly:
		step := 7
		if def.Frequency == models.FrequencyBiWeekly {
			step = 14
		}
		dates = stepDates(start, step, month)

	default:
		return nil, fmt.Errorf("unknown frequency %q", def.Frequency)
	}

	// The validity window end is exclusive: a future-delete at date D
	// terminates the series so that D itself no longer projects. ISO
	// dates compare correctly as strings.
	if def.EndDate != nil {
		kept := dates[:0]
		for _, d := range dates {
			if d < *def.EndDate {
				kept = append(kept, d)
			}
		}
		dates = kept
	}
	if len(dates) == 0 {
		return nil, nil
	}
	return dates, nil
}

// stepDates enumerates the dates spaced step days apart from start that
// fall inside the target month, in ascending order.
func stepDates(start time.Time, step int, month calendar.Month) []string {
	first := month.First()
	cursor := start
	if cursor.Before(first) {
		// Jump to the first step on or after the month start instead of
		// iterating week by week from the anchor.
		days := int(first.Sub(cursor).Hours() / 24)
		skips := days / step
		if days%step != 0 {
			skips++
		}
		cursor = cursor.AddDate(0, 0, skips*step)
	}

	var dates []string
	for calendar.MonthOf(cursor) == month {
		dates = append(dates, calendar.FormatDate(cursor))
		cursor = cursor.AddDate(0, 0, step)
	}
	return dates
}
