package inputval_test

import (
	"testing"
	"time"

	"github.com/ridehubhq/ridehub/internal/app/system/inputval"
)

func TestPhoneDigits(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"9876543210", true},
		{"98765432", false},    // 8 digits
		{"98765432100", false}, // 11 digits
		{"98765o3210", false},  // letter
		{"", false},
		{"987654321 ", false},
	}
	for _, c := range cases {
		if got := inputval.PhoneDigits(c.in); got != c.want {
			t.Errorf("PhoneDigits(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestOfAge_ExactBirthday(t *testing.T) {
	on := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

	// Exactly 18 years before: accepted.
	dob := time.Date(2008, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !inputval.OfAge(dob, on) {
		t.Error("expected someone turning 18 today to be of age")
	}

	// 18 years minus one day: rejected.
	dob = time.Date(2008, time.March, 16, 0, 0, 0, 0, time.UTC)
	if inputval.OfAge(dob, on) {
		t.Error("expected someone one day short of 18 to be underage")
	}
}

func TestAgeOn_YearBoundary(t *testing.T) {
	dob := time.Date(2000, time.December, 31, 0, 0, 0, 0, time.UTC)
	on := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := inputval.AgeOn(dob, on); got != 25 {
		t.Errorf("AgeOn = %d, want 25", got)
	}
}
