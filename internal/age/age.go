// Package age derives a child's age from their birthdate. Ages are never
// stored; they are recomputed against a reference date on every use.
package age

import "time"

// Group labels a fixed age bracket used for template matching.
type Group string

const (
	Group0to3   Group = "0-3"
	Group3to6   Group = "3-6"
	Group6to11  Group = "6-11"
	Group11to15 Group = "11-15"
	Group15to18 Group = "15-18"
)

// Years returns the calendar-correct age in whole years, floored at 0.
func Years(birthdate, ref time.Time) int {
	years := ref.Year() - birthdate.Year()
	// Not yet reached this year's birthday.
	if ref.Month() < birthdate.Month() ||
		(ref.Month() == birthdate.Month() && ref.Day() < birthdate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Months returns the age in elapsed full months, floored at 0.
func Months(birthdate, ref time.Time) int {
	months := (ref.Year()-birthdate.Year())*12 + int(ref.Month()) - int(birthdate.Month())
	if ref.Day() < birthdate.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// GroupFor maps an age in years onto its bracket. Ages past the last
// boundary stay in the top bracket.
func GroupFor(years int) Group {
	switch {
	case years < 3:
		return Group0to3
	case years < 6:
		return Group3to6
	case years < 11:
		return Group6to11
	case years < 15:
		return Group11to15
	default:
		return Group15to18
	}
}
