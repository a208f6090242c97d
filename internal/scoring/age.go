package scoring

import "time"

// Age returns the number of full years between dob and now. It is one less
// than the calendar-year difference until the birthday has happened this year.
// Someone born on 29 February turns a year older on 1 March in common years.
func Age(dob, now time.Time) int {
	if dob.IsZero() {
		return 0
	}
	now = now.In(dob.Location())
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
