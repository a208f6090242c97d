package scoring

import (
	"cmp"
	"slices"

	"github.com/oggyb/homies/internal/domain"
)

// Ranked is a candidate with its score.
type Ranked struct {
	Candidate
	Score int
}

// Rank scores every candidate and sorts by score descending, then by user id
// ascending so that equal scores always come out in the same order.
func Rank(prefs domain.Preferences, candidates []Candidate) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, Ranked{Candidate: c, Score: Score(prefs, c)})
	}
	slices.SortFunc(ranked, func(a, b Ranked) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.User.ID, b.User.ID)
	})
	return ranked
}
