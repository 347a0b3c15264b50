package patient

import (
	"time"

	"github.com/ehr/patientlist/internal/platform/fhir"
)

var seedUpdated = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func mrnIdentifier(value string) fhir.Identifier {
	return fhir.Identifier{
		Use: "usual",
		Type: &fhir.CodeableConcept{
			Coding: []fhir.Coding{{System: "http://terminology.hl7.org/CodeSystem/v2-0203", Code: IdentifierTypeMRN}},
		},
		System: "http://hospital.example.org/mrn",
		Value:  value,
	}
}

// SeedPatients returns the fixed mock dataset. Each call returns fresh
// values so callers may keep them without aliasing.
func SeedPatients() []Patient {
	meta := func() *fhir.Meta {
		t := seedUpdated
		return &fhir.Meta{VersionID: "1", LastUpdated: &t}
	}
	return []Patient{
		{
			ResourceType: "Patient",
			ID:           "patient-001",
			Meta:         meta(),
			Identifier:   []fhir.Identifier{mrnIdentifier("MRN001")},
			Active:       true,
			Name: []fhir.HumanName{
				{Use: "official", Family: "Smith", Given: []string{"John", "Michael"}},
			},
			Telecom: []fhir.ContactPoint{
				{System: "phone", Value: "(555) 123-4567", Use: "home"},
				{System: "email", Value: "john.smith@example.com", Use: "home"},
			},
			Gender:    GenderMale,
			BirthDate: "1985-03-15",
			Address: []fhir.Address{
				{Use: "home", Line: []string{"123 Main St"}, City: "Springfield", State: "IL", PostalCode: "62701", Country: "USA"},
			},
		},
		{
			ResourceType: "Patient",
			ID:           "patient-002",
			Meta:         meta(),
			Identifier:   []fhir.Identifier{mrnIdentifier("MRN002")},
			Active:       true,
			Name: []fhir.HumanName{
				{Use: "official", Family: "Williams", Given: []string{"Sarah", "Elizabeth"}},
				{Use: "nickname", Given: []string{"Liz"}},
			},
			Telecom: []fhir.ContactPoint{
				{System: "phone", Value: "(555) 234-5678", Use: "mobile"},
				{System: "email", Value: "sarah.williams@example.com", Use: "work"},
			},
			Gender:    GenderFemale,
			BirthDate: "1992-07-22",
			Address: []fhir.Address{
				{Use: "home", Line: []string{"456 Oak Ave", "Apt 2B"}, City: "Portland", State: "OR", PostalCode: "97201", Country: "USA"},
			},
		},
		{
			ResourceType: "Patient",
			ID:           "patient-003",
			Meta:         meta(),
			Identifier:   []fhir.Identifier{mrnIdentifier("MRN003")},
			Active:       false,
			Name: []fhir.HumanName{
				{Use: "official", Family: "Davis", Given: []string{"Robert"}},
			},
			Telecom: []fhir.ContactPoint{
				{System: "phone", Value: "(555) 345-6789", Use: "home"},
			},
			Gender:    GenderMale,
			BirthDate: "1958-11-03",
			Address: []fhir.Address{
				{Use: "home", Line: []string{"789 Pine Rd"}, City: "Austin", State: "TX", PostalCode: "73301", Country: "USA"},
			},
		},
		{
			ResourceType: "Patient",
			ID:           "patient-004",
			Meta:         meta(),
			Identifier:   []fhir.Identifier{mrnIdentifier("MRN004")},
			Active:       true,
			Name: []fhir.HumanName{
				{Use: "usual", Family: "Garcia", Given: []string{"Maria"}},
			},
			Telecom: []fhir.ContactPoint{
				{System: "email", Value: "maria.garcia@example.com", Use: "home"},
			},
			Gender:    GenderFemale,
			BirthDate: "1978-01-30",
			Address: []fhir.Address{
				{Use: "home", Line: []string{"321 Elm St"}, City: "Denver", State: "CO", PostalCode: "80201", Country: "USA"},
			},
		},
		{
			ResourceType: "Patient",
			ID:           "patient-005",
			Meta:         meta(),
			Identifier:   []fhir.Identifier{mrnIdentifier("MRN005")},
			Active:       true,
			Name: []fhir.HumanName{
				{Use: "official", Family: "Taylor", Given: []string{"Alex"}},
			},
			Telecom: []fhir.ContactPoint{
				{System: "phone", Value: "(555) 456-7890", Use: "mobile"},
				{System: "email", Value: "alex.taylor@example.com", Use: "home"},
			},
			Gender:    GenderOther,
			BirthDate: "2001-09-12",
		},
	}
}
