// Package timeutil holds the clan's fixed calendar zone (UTC-3, no DST) and the
// helpers that depend on it: cache day boundaries and ranking range presets.
package timeutil

import (
	"fmt"
	"strings"
	"time"

	"clan-tracker/internal/constants"
)

// ClanZone is the fixed UTC-3 offset used for every calendar decision.
var ClanZone = time.FixedZone("UTC-3", constants.CalendarUTCOffset)

// ProviderLayout is the timestamp layout the stats provider uses for createdAt.
const ProviderLayout = "2006-01-02T15:04:05Z"

func ToClan(t time.Time) time.Time {
	return t.In(ClanZone)
}

func StartOfDay(t time.Time) time.Time {
	c := ToClan(t)
	return time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, ClanZone)
}

// SameDay reports whether a and b fall on the same UTC-3 calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := ToClan(a).Date()
	by, bm, bd := ToClan(b).Date()
	return ay == by && am == bm && ad == bd
}

func StartOfWeek(t time.Time) time.Time {
	c := ToClan(t)
	weekday := int(c.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return StartOfDay(c.AddDate(0, 0, -(weekday - 1)))
}

func StartOfMonth(t time.Time) time.Time {
	c := ToClan(t)
	return time.Date(c.Year(), c.Month(), 1, 0, 0, 0, 0, ClanZone)
}

// ParseProviderTime decodes a provider createdAt string into a UTC instant.
func ParseProviderTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

type Range string

const (
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeAll   Range = "all"
)

// Window is a half-open [Start, End) interval in UTC. Nil bounds are unbounded.
type Window struct {
	Start *time.Time
	End   *time.Time
	Label string
}

// RangeBounds resolves a preset relative to now:
// day is yesterday, week the previous Monday-Sunday week, month the previous
// calendar month, all is unbounded. Unknown names resolve to all.
func RangeBounds(r Range, now time.Time) Window {
	var start, end time.Time
	switch Range(strings.ToLower(string(r))) {
	case RangeDay:
		start = StartOfDay(now).AddDate(0, 0, -1)
		end = start.AddDate(0, 0, 1)
		return window(start, end, start.Format("02/01/2006"))
	case RangeWeek:
		start = StartOfWeek(now).AddDate(0, 0, -7)
		end = start.AddDate(0, 0, 7)
		return window(start, end, fmt.Sprintf("%s - %s", start.Format("02/01/2006"), end.AddDate(0, 0, -1).Format("02/01/2006")))
	case RangeMonth:
		start = StartOfMonth(now).AddDate(0, -1, 0)
		end = start.AddDate(0, 1, 0)
		return window(start, end, fmt.Sprintf("%s - %s", start.Format("02/01/2006"), end.AddDate(0, 0, -1).Format("02/01/2006")))
	default:
		return Window{Label: "all time"}
	}
}

func window(start, end time.Time, label string) Window {
	s, e := start.UTC(), end.UTC()
	return Window{Start: &s, End: &e, Label: label}
}

// ParseRange accepts a preset name case-insensitively.
func ParseRange(s string) (Range, bool) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case RangeDay, RangeWeek, RangeMonth, RangeAll:
		return r, true
	}
	return "", false
}
