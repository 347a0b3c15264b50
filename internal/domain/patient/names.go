package patient

import (
	"strings"

	"github.com/ehr/patientlist/internal/platform/fhir"
)

// namePriority is the order in which HumanName.use values are preferred
// when picking a display name.
var namePriority = []string{"official", "usual", "temp"}

// PreferredName returns the highest priority name by use, falling back to the
// first name on the record. ok is false when the record has no names.
func (p *Patient) PreferredName() (fhir.HumanName, bool) {
	for _, use := range namePriority {
		for _, n := range p.Name {
			if n.Use == use {
				return n, true
			}
		}
	}
	if len(p.Name) > 0 {
		return p.Name[0], true
	}
	return fhir.HumanName{}, false
}

// FullName is the preferred name's given names, space-joined, followed by
// the family name. Empty when the record has no names.
func (p *Patient) FullName() string {
	n, ok := p.PreferredName()
	if !ok {
		return ""
	}
	return FormatName(n)
}

// FormatName renders "Given1 Given2 Family".
func FormatName(n fhir.HumanName) string {
	return strings.TrimSpace(strings.Join(n.Given, " ") + " " + n.Family)
}

// MRN returns the primary identifier value: the first identifier typed MR,
// else the first identifier, else "".
func (p *Patient) MRN() string {
	for _, id := range p.Identifier {
		if id.TypeCode() == IdentifierTypeMRN {
			return id.Value
		}
	}
	if len(p.Identifier) > 0 {
		return p.Identifier[0].Value
	}
	return ""
}

// Contact returns the first contact point value for the given system
// ("phone", "email", ...), or "".
func (p *Patient) Contact(system string) string {
	for _, cp := range p.Telecom {
		if cp.System == system {
			return cp.Value
		}
	}
	return ""
}
