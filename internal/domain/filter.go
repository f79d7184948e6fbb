package domain

import (
	"sort"
	"strings"
)

// KindFilter narrows the trip set by kind. Unlike Kind it has an "all"
// member, so it is a distinct type rather than a reused Kind.
type KindFilter string

const (
	FilterAll      KindFilter = "all"
	FilterWork     KindFilter = KindFilter(KindWork)
	FilterPersonal KindFilter = KindFilter(KindPersonal)
)

// ParseKindFilter maps a raw query value to a KindFilter,
// falling back to FilterAll for anything unrecognized.
func ParseKindFilter(s string) KindFilter {
	switch KindFilter(s) {
	case FilterWork, FilterPersonal:
		return KindFilter(s)
	default:
		return FilterAll
	}
}

// Filter is a narrowing predicate over the session's trip cache.
// The zero value matches every trip.
//
// Date components are string facets over the ISO date representation:
// Year alone is a "2006" prefix match, Year+Month a "2006-01" prefix match,
// and Year+Month+Day an exact date match. Components compose conjunctively
// with the kind filter. A finer component without its coarser ones matches
// nothing, mirroring how the facet selects are only offered in order.
type Filter struct {
	Kind  KindFilter
	Year  string // "2006", or empty
	Month string // "01".."12", or empty
	Day   string // "01".."31", or empty
}

// SetKind narrows by kind without disturbing the date facets.
func (f *Filter) SetKind(k KindFilter) {
	f.Kind = k
}

// SetYear selects a year facet and clears the finer month and day facets.
// An empty year clears all date facets.
func (f *Filter) SetYear(year string) {
	f.Year = year
	f.Month = ""
	f.Day = ""
}

// SetMonth selects a month facet and clears the finer day facet.
func (f *Filter) SetMonth(month string) {
	f.Month = month
	f.Day = ""
}

// SetDay selects a day facet.
func (f *Filter) SetDay(day string) {
	f.Day = day
}

// Match reports whether the trip passes every selected component.
func (f Filter) Match(t Trip) bool {
	if f.Kind != "" && f.Kind != FilterAll && Kind(f.Kind) != t.Kind {
		return false
	}
	date := t.ISODate()
	if f.Year != "" && !strings.HasPrefix(date, f.Year) {
		return false
	}
	if f.Month != "" && !strings.HasPrefix(date, f.Year+"-"+f.Month) {
		return false
	}
	if f.Day != "" && date != f.Year+"-"+f.Month+"-"+f.Day {
		return false
	}
	return true
}

// Apply returns the trips matching the filter, preserving input order.
// The result is always a non-nil slice so callers can safely range over it.
func (f Filter) Apply(trips []Trip) []Trip {
	out := []Trip{}
	for _, t := range trips {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Years returns the distinct years across ALL trips (not pre-filtered by
// kind), sorted descending so the most recent year is offered first.
func Years(trips []Trip) []string {
	seen := map[string]struct{}{}
	for _, t := range trips {
		seen[t.Date.Format("2006")] = struct{}{}
	}
	out := keys(seen)
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Months returns the distinct months among trips in the given year,
// sorted ascending. An empty year yields no months: the month facet is only
// offered once a year is selected.
func Months(trips []Trip, year string) []string {
	if year == "" {
		return []string{}
	}
	seen := map[string]struct{}{}
	for _, t := range trips {
		if strings.HasPrefix(t.ISODate(), year) {
			seen[t.Date.Format("01")] = struct{}{}
		}
	}
	out := keys(seen)
	sort.Strings(out)
	return out
}

// Days returns the distinct days among trips in the given year and month,
// sorted ascending. Empty year or month yields no days.
func Days(trips []Trip, year, month string) []string {
	if year == "" || month == "" {
		return []string{}
	}
	seen := map[string]struct{}{}
	for _, t := range trips {
		if strings.HasPrefix(t.ISODate(), year+"-"+month) {
			seen[t.Date.Format("02")] = struct{}{}
		}
	}
	out := keys(seen)
	sort.Strings(out)
	return out
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
