package listing

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ehr/patientlist/internal/domain/patient"
)

// NotAvailable is shown for any value that is missing or unusable.
const NotAvailable = "N/A"

// DisplayName is the preferred full name, or "Unknown".
func DisplayName(p *patient.Patient) string {
	if name := p.FullName(); name != "" {
		return name
	}
	return "Unknown"
}

// FormatAge renders the age in whole years on today's date.
func FormatAge(p *patient.Patient, today time.Time) string {
	age, ok := p.Age(today)
	if !ok {
		return NotAvailable
	}
	return strconv.Itoa(age)
}

// FormatBirthDate renders a FHIR date as "Jan 2, 2006". Unparseable dates
// are shown verbatim.
func FormatBirthDate(s string) string {
	if s == "" {
		return NotAvailable
	}
	t, ok := patient.ParseBirthDate(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// FormatGender capitalises the gender code.
func FormatGender(g string) string {
	if g == "" {
		return NotAvailable
	}
	r, size := utf8.DecodeRuneInString(g)
	return string(unicode.ToUpper(r)) + g[size:]
}

// ContactValue is the first telecom value for system ("phone", "email").
func ContactValue(p *patient.Patient, system string) string {
	if v := p.Contact(system); v != "" {
		return v
	}
	return NotAvailable
}

// FormatAddress renders the first address on one line:
// "123 Main St, Springfield, IL 62701, USA".
func FormatAddress(p *patient.Patient) string {
	if len(p.Address) == 0 {
		return NotAvailable
	}
	a := p.Address[0]

	var parts []string
	for _, l := range a.Line {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if region := strings.TrimSpace(a.State + " " + a.PostalCode); region != "" {
		parts = append(parts, region)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	if len(parts) == 0 {
		return NotAvailable
	}
	return strings.Join(parts, ", ")
}
