package patient

import "time"

const dateLayout = "2006-01-02"

// ParseBirthDate parses a FHIR date (YYYY-MM-DD).
func ParseBirthDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AgeOn returns the age in whole years on the calendar date of today. The
// age drops by one while today's (month, day) is before the birthday.
// Missing or malformed birth dates report ok=false.
func AgeOn(birthDate string, today time.Time) (int, bool) {
	born, ok := ParseBirthDate(birthDate)
	if !ok {
		return 0, false
	}
	age := today.Year() - born.Year()
	if today.Month() < born.Month() || (today.Month() == born.Month() && today.Day() < born.Day()) {
		age--
	}
	return age, true
}

// Age is AgeOn for this record.
func (p *Patient) Age(today time.Time) (int, bool) {
	return AgeOn(p.BirthDate, today)
}
