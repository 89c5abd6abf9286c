// internal/app/system/inputval/inputval.go

// Package inputval holds the field-level validation rules shared by the
// registration and profile workflows.
package inputval

import (
	"time"
)

// MinimumAge is the age gate for event registrations.
const MinimumAge = 18

// PhoneDigits reports whether s is exactly ten ASCII digits.
func PhoneDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// AgeOn returns the whole-years age at `on` for someone born at `dob`:
// subtract the birth year, then decrement if the birthday has not yet
// occurred that year. Someone born exactly `MinimumAge` years before
// `on` is `MinimumAge` years old.
func AgeOn(dob, on time.Time) int {
	years := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		years--
	}
	return years
}

// OfAge reports whether a registrant born at dob meets MinimumAge as of
// `on`.
func OfAge(dob, on time.Time) bool {
	return AgeOn(dob, on) >= MinimumAge
}
