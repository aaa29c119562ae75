// Package availability derives the unavailable dates of a property from its
// reservations and its manually blocked dates.
//
// Dates are civil dates held as UTC midnight. A reservation occupies the
// half-open range [check-in, check-out): the check-out day stays bookable.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

type Reason string

const (
	ReasonReservation Reason = "reservation"
	ReasonManual      Reason = "manual"
)

var ErrReservedDate = errors.New("date is held by a reservation")

// Range is the part of a reservation that matters for the calendar.
type Range struct {
	CheckIn  time.Time
	CheckOut time.Time
	Status   string
}

type BlockedDate struct {
	Date   time.Time `json:"date"`
	Reason Reason    `json:"reason"`
}

// Blocking reports whether a reservation status holds its dates.
func Blocking(status string) bool {
	return status == "confirmed" || status == "pending"
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) int64 {
	return Day(t).Unix() / 86400
}

// BlockedDates lists every blocked date in [from, to) in ascending order.
// A date held by both a reservation and the manual list reports the reservation.
func BlockedDates(reservations []Range, manual []time.Time, from, to time.Time) []BlockedDate {
	from, to = Day(from), Day(to)
	if !to.After(from) {
		return nil
	}

	reasons := make(map[int64]Reason)

	for _, r := range reservations {
		if !Blocking(r.Status) {
			continue
		}
		start, end := Day(r.CheckIn), Day(r.CheckOut)
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			reasons[dayKey(d)] = ReasonReservation
		}
	}

	for _, m := range manual {
		m = Day(m)
		if m.Before(from) || !m.Before(to) {
			continue
		}
		if _, ok := reasons[dayKey(m)]; !ok {
			reasons[dayKey(m)] = ReasonManual
		}
	}

	out := make([]BlockedDate, 0, len(reasons))
	for k, reason := range reasons {
		out = append(out, BlockedDate{Date: time.Unix(k*86400, 0).UTC(), Reason: reason})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return out
}

// IsBlocked reports whether a single date is unavailable.
func IsBlocked(reservations []Range, manual []time.Time, date time.Time) bool {
	return len(BlockedDates(reservations, manual, date, Day(date).AddDate(0, 0, 1))) > 0
}

// IsRangeAvailable checks the nights of a stay and returns the conflicting dates.
func IsRangeAvailable(reservations []Range, manual []time.Time, checkIn, checkOut time.Time) (bool, []time.Time) {
	blocked := BlockedDates(reservations, manual, checkIn, checkOut)
	if len(blocked) == 0 {
		return true, nil
	}

	conflicts := make([]time.Time, len(blocked))
	for i, b := range blocked {
		conflicts[i] = b.Date
	}
	return false, conflicts
}

// Block adds dates to the manual list. The result is sorted and free of duplicates.
func Block(manual []time.Time, dates []time.Time) []time.Time {
	return normalize(append(append([]time.Time{}, manual...), dates...))
}

// Unblock removes dates from the manual list. Dates held by a blocking
// reservation cannot be released this way.
func Unblock(manual []time.Time, dates []time.Time, reservations []Range) ([]time.Time, error) {
	for _, d := range dates {
		for _, r := range reservations {
			if !Blocking(r.Status) {
				continue
			}
			if !Day(d).Before(Day(r.CheckIn)) && Day(d).Before(Day(r.CheckOut)) {
				return nil, fmt.Errorf("%w: %s", ErrReservedDate, Day(d).Format("2006-01-02"))
			}
		}
	}

	remove := make(map[int64]struct{}, len(dates))
	for _, d := range dates {
		remove[dayKey(d)] = struct{}{}
	}

	kept := make([]time.Time, 0, len(manual))
	for _, m := range manual {
		if _, ok := remove[dayKey(m)]; !ok {
			kept = append(kept, m)
		}
	}

	return normalize(kept), nil
}

func normalize(dates []time.Time) []time.Time {
	seen := make(map[int64]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		k := dayKey(d)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, Day(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
