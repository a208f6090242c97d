package domain

import (
	"strings"
	"time"
)

// Gender is one of the values a profile can declare.
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderTransgender Gender = "transgender"
	GenderNonBinary   Gender = "non-binary"
	GenderOther       Gender = "other"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderTransgender, GenderNonBinary, GenderOther:
		return true
	}
	return false
}

// Location is where a user is looking for a home.
type Location struct {
	City  string
	State string
}

// User is a profile as read from the profile store.
// The core never mutates it.
type User struct {
	ID           uint64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	DateOfBirth  time.Time
	Gender       Gender
	Location     Location
	Bio          string
	ShowUserData bool
	Preferences  Preferences
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// MatchesSearch reports whether the first name, last name or email
// contains text, ignoring case. Empty text matches everyone.
func (u User) MatchesSearch(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	for _, field := range []string{u.FirstName, u.LastName, u.Email} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

// Preferences describe what a user is looking for in a homie.
// A nil field means the user has no preference for that dimension.
type Preferences struct {
	Smoking  *bool
	Drinking *bool
	Pets     *bool
	Rent     *RentPreference
	Age      *Range
	Genders  []Gender
}

// RentPreference is either an exact amount or a min/max range.
type RentPreference struct {
	Exact *float64
	Min   *float64
	Max   *float64
}

// HasRange reports whether at least one range bound is set.
func (r *RentPreference) HasRange() bool {
	return r != nil && (r.Min != nil || r.Max != nil)
}

// Contains reports whether v lies inside the (possibly half-open) range.
func (r *RentPreference) Contains(v float64) bool {
	if !r.HasRange() {
		return false
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Overlaps reports whether the two ranges share at least one value.
// Missing bounds are treated as open.
func (r *RentPreference) Overlaps(o *RentPreference) bool {
	if !r.HasRange() || !o.HasRange() {
		return false
	}
	if r.Max != nil && o.Min != nil && *o.Min > *r.Max {
		return false
	}
	if o.Max != nil && r.Min != nil && *r.Min > *o.Max {
		return false
	}
	return true
}

// Range is an inclusive integer interval, used for age.
type Range struct {
	Min *int
	Max *int
}

// Bounded reports whether both bounds are set.
func (r *Range) Bounded() bool {
	return r != nil && r.Min != nil && r.Max != nil
}

// Bool, Float and Int return pointers; handy for building preferences.
func Bool(v bool) *bool { return &v }

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

// IntRange builds a bounded range.
func IntRange(min, max int) *Range { return &Range{Min: &min, Max: &max} }
