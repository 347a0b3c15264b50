package patient

import (
	"github.com/ehr/patientlist/internal/platform/fhir"
)

// Patient is the FHIR R4 Patient shape served by this system. Only the
// fields the directory displays or filters on are modelled.
type Patient struct {
	ResourceType string              `json:"resourceType"`
	ID           string              `json:"id"`
	Meta         *fhir.Meta          `json:"meta,omitempty"`
	Identifier   []fhir.Identifier   `json:"identifier,omitempty"`
	Active       bool                `json:"active"`
	Name         []fhir.HumanName    `json:"name,omitempty"`
	Telecom      []fhir.ContactPoint `json:"telecom,omitempty"`
	Gender       string              `json:"gender,omitempty"`
	BirthDate    string              `json:"birthDate,omitempty"`
	Address      []fhir.Address      `json:"address,omitempty"`
}

// Gender codes per FHIR administrative-gender.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

// IdentifierTypeMRN is the v2-0203 code for a medical record number.
const IdentifierTypeMRN = "MR"

// ToFHIR returns the resource ready for serialisation, with resourceType set.
func (p Patient) ToFHIR() Patient {
	p.ResourceType = "Patient"
	return p
}
