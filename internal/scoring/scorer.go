// Package scoring ranks feed candidates against the current user's preferences.
package scoring

import (
	"slices"

	"github.com/oggyb/homies/internal/domain"
)

// MaxScore is the score of a candidate who satisfies every dimension.
const MaxScore = 6

// Candidate is a profile with its age already derived.
type Candidate struct {
	User domain.User
	Age  int
}

// Breakdown holds the per-dimension contribution, each 0 or 1.
type Breakdown struct {
	Smoking  int
	Drinking int
	Pets     int
	Rent     int
	Age      int
	Gender   int
}

// Total sums the dimensions.
func (b Breakdown) Total() int {
	return b.Smoking + b.Drinking + b.Pets + b.Rent + b.Age + b.Gender
}

// Score returns how well candidate fits prefs, between 0 and MaxScore.
func Score(prefs domain.Preferences, candidate Candidate) int {
	return Explain(prefs, candidate).Total()
}

// Explain returns the contribution of every dimension.
func Explain(prefs domain.Preferences, candidate Candidate) Breakdown {
	theirs := candidate.User.Preferences
	return Breakdown{
		Smoking:  flag(prefs.Smoking, theirs.Smoking),
		Drinking: flag(prefs.Drinking, theirs.Drinking),
		Pets:     flag(prefs.Pets, theirs.Pets),
		Rent:     rent(prefs.Rent, theirs.Rent),
		Age:      age(prefs.Age, candidate.Age),
		Gender:   gender(prefs.Genders, candidate.User.Gender),
	}
}

// flag scores smoking, drinking and pets. No preference is an automatic
// match; otherwise the candidate must have stated the same value.
func flag(mine, theirs *bool) int {
	if mine == nil {
		return 1
	}
	return point(theirs != nil && *theirs == *mine)
}

func rent(mine, theirs *domain.RentPreference) int {
	switch {
	case mine != nil && mine.Exact != nil:
		if theirs == nil {
			return 0
		}
		if theirs.Exact != nil {
			return point(*theirs.Exact == *mine.Exact)
		}
		return point(theirs.Contains(*mine.Exact))

	case mine.HasRange():
		if theirs == nil {
			return 0
		}
		if theirs.Exact != nil {
			return point(mine.Contains(*theirs.Exact))
		}
		return point(mine.Overlaps(theirs))

	default:
		return 1
	}
}

func age(mine *domain.Range, candidateAge int) int {
	if !mine.Bounded() {
		return 1
	}
	return point(candidateAge >= *mine.Min && candidateAge <= *mine.Max)
}

func gender(accepted []domain.Gender, g domain.Gender) int {
	if len(accepted) == 0 {
		return 1
	}
	return point(slices.Contains(accepted, g))
}

func point(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
