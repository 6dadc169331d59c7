// Package profile defines the durable record of personal/professional
// attributes, custom answers, and learned field mappings, together with the
// store boundary the host persists it through.
package profile

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/form-agent/internal/fieldtype"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// Record is the long-lived profile shared across documents and sessions.
// Custom answers are keyed both raw and normalized so fuzzy lookups stay
// stable regardless of label drift.
type Record struct {
	// Identity
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	PreferredName string `json:"preferred_name,omitempty"`
	Pronouns      string `json:"pronouns,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`

	// Location
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	ZipCode     string `json:"zip_code,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`

	// Employment
	CurrentCompany   string `json:"current_company,omitempty"`
	CurrentTitle     string `json:"current_title,omitempty"`
	YearsExperience  string `json:"years_experience,omitempty"`
	NoticePeriod     string `json:"notice_period,omitempty"`
	StartDate        string `json:"start_date,omitempty"`
	Relocation       string `json:"relocation,omitempty"`
	RemotePreference string `json:"remote_preference,omitempty"`

	// Compensation
	DesiredSalary string `json:"desired_salary,omitempty"`
	CurrentSalary string `json:"current_salary,omitempty"`

	// Links
	LinkedIn  string `json:"linkedin,omitempty" validate:"omitempty,url"`
	GitHub    string `json:"github,omitempty" validate:"omitempty,url"`
	Portfolio string `json:"portfolio,omitempty" validate:"omitempty,url"`
	Website   string `json:"website,omitempty" validate:"omitempty,url"`

	// Education
	School         string `json:"school,omitempty"`
	Degree         string `json:"degree,omitempty"`
	Major          string `json:"major,omitempty"`
	GraduationYear string `json:"graduation_year,omitempty"`
	GPA            string `json:"gpa,omitempty"`

	// Authorization
	WorkAuthorized    string `json:"work_authorized,omitempty"`
	NeedsSponsorship  string `json:"needs_sponsorship,omitempty"`
	SecurityClearance string `json:"security_clearance,omitempty"`
	Citizenship       string `json:"citizenship,omitempty"`

	// Free text
	Skills      string `json:"skills,omitempty"`
	Languages   string `json:"languages,omitempty"`
	CoverLetter string `json:"cover_letter,omitempty"`

	// CustomAnswers maps question labels (raw and normalized) to the
	// user's literal answers.
	CustomAnswers map[string]string `json:"custom_answers,omitempty"`

	// LearnedMappings maps normalized labels to field types taught from
	// prior manual input or explicit corrections.
	LearnedMappings map[string]fieldtype.Type `json:"learned_mappings,omitempty"`
}

var validate = validator.New()

// Validate checks the record's structured fields.
func (r *Record) Validate() error {
	return validate.Struct(r)
}

// Attribute returns the profile value backing a field type. The demographic
// types deliberately have no backing attribute.
func (r *Record) Attribute(t fieldtype.Type) string {
	switch t {
	case fieldtype.FirstName:
		return r.FirstName
	case fieldtype.LastName:
		return r.LastName
	case fieldtype.FullName:
		return strings.TrimSpace(r.FirstName + " " + r.LastName)
	case fieldtype.PreferredName:
		if r.PreferredName != "" {
			return r.PreferredName
		}
		return r.FirstName
	case fieldtype.Pronouns:
		return r.Pronouns
	case fieldtype.Email:
		return r.Email
	case fieldtype.Phone:
		return r.Phone
	case fieldtype.DateOfBirth:
		return r.DateOfBirth
	case fieldtype.Address:
		return r.Address
	case fieldtype.City:
		return r.City
	case fieldtype.State:
		return r.State
	case fieldtype.ZipCode:
		return r.ZipCode
	case fieldtype.Country:
		return r.Country
	case fieldtype.CountryCode:
		return r.CountryCode
	case fieldtype.CurrentCompany:
		return r.CurrentCompany
	case fieldtype.CurrentTitle:
		return r.CurrentTitle
	case fieldtype.YearsExperience:
		return r.YearsExperience
	case fieldtype.NoticePeriod:
		return r.NoticePeriod
	case fieldtype.StartDate, fieldtype.Availability:
		return r.StartDate
	case fieldtype.Relocation:
		return r.Relocation
	case fieldtype.RemotePreference:
		return r.RemotePreference
	case fieldtype.DesiredSalary:
		return r.DesiredSalary
	case fieldtype.CurrentSalary:
		return r.CurrentSalary
	case fieldtype.LinkedIn:
		return r.LinkedIn
	case fieldtype.GitHub:
		return r.GitHub
	case fieldtype.Portfolio:
		return r.Portfolio
	case fieldtype.Website:
		return r.Website
	case fieldtype.School:
		return r.School
	case fieldtype.Degree:
		return r.Degree
	case fieldtype.Major:
		return r.Major
	case fieldtype.GraduationYear:
		return r.GraduationYear
	case fieldtype.GPA:
		return r.GPA
	case fieldtype.WorkAuth:
		return r.WorkAuthorized
	case fieldtype.Sponsorship:
		return r.NeedsSponsorship
	case fieldtype.SecurityClearance:
		return r.SecurityClearance
	case fieldtype.Citizenship:
		return r.Citizenship
	case fieldtype.Skills:
		return r.Skills
	case fieldtype.Languages:
		return r.Languages
	case fieldtype.CoverLetter:
		return r.CoverLetter
	}
	return ""
}

// CustomAnswer looks up a stored answer by exact raw label, then by
// normalized label.
func (r *Record) CustomAnswer(label string) (string, bool) {
	if r.CustomAnswers == nil {
		return "", false
	}
	if v, ok := r.CustomAnswers[label]; ok {
		return v, true
	}
	if v, ok := r.CustomAnswers[textnorm.Normalize(label)]; ok {
		return v, true
	}
	return "", false
}

// SetCustomAnswer stores an answer under both the raw and normalized label
// keys so later fuzzy lookups survive label drift.
func (r *Record) SetCustomAnswer(label, value string) {
	if r.CustomAnswers == nil {
		r.CustomAnswers = make(map[string]string)
	}
	r.CustomAnswers[label] = value
	if norm := textnorm.Normalize(label); norm != "" {
		r.CustomAnswers[norm] = value
	}
}

// LearnMapping records a label → field type association taught by the user.
func (r *Record) LearnMapping(label string, t fieldtype.Type) {
	if r.LearnedMappings == nil {
		r.LearnedMappings = make(map[string]fieldtype.Type)
	}
	if norm := textnorm.Normalize(label); norm != "" {
		r.LearnedMappings[norm] = t
	}
}
