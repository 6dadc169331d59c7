// Package fieldtype defines the closed semantic taxonomy of form fields and
// the classifier that maps resolved labels onto it.
package fieldtype

// Type is a member of the closed taxonomy. Downstream answer selection is a
// hard dictionary lookup keyed by Type, so classification must be confident
// or absent, never approximate.
type Type string

const (
	// Identity
	FirstName     Type = "firstName"
	LastName      Type = "lastName"
	FullName      Type = "fullName"
	PreferredName Type = "preferredName"
	Pronouns      Type = "pronouns"
	Email         Type = "email"
	Phone         Type = "phone"
	DateOfBirth   Type = "dateOfBirth"

	// Location
	Address     Type = "address"
	City        Type = "city"
	State       Type = "state"
	ZipCode     Type = "zipCode"
	Country     Type = "country"
	CountryCode Type = "countryCode"

	// Employment
	CurrentCompany   Type = "currentCompany"
	CurrentTitle     Type = "currentTitle"
	YearsExperience  Type = "yearsExperience"
	NoticePeriod     Type = "noticePeriod"
	Availability     Type = "availability"
	StartDate        Type = "startDate"
	Relocation       Type = "relocation"
	RemotePreference Type = "remotePreference"

	// Compensation
	DesiredSalary Type = "desiredSalary"
	CurrentSalary Type = "currentSalary"

	// Links
	LinkedIn  Type = "linkedin"
	GitHub    Type = "github"
	Portfolio Type = "portfolio"
	Website   Type = "website"

	// Education
	School         Type = "school"
	Degree         Type = "degree"
	Major          Type = "major"
	GraduationYear Type = "graduationYear"
	GPA            Type = "gpa"

	// Authorization
	WorkAuth          Type = "workAuth"
	Sponsorship       Type = "sponsorship"
	SecurityClearance Type = "securityClearance"
	Citizenship       Type = "citizenship"

	// Skills and free text
	Skills      Type = "skills"
	Languages   Type = "languages"
	CoverLetter Type = "coverLetter"

	// Documents
	Resume Type = "resume"

	// Demographic (resolved to empty by design, see answer package)
	Gender     Type = "gender"
	Ethnicity  Type = "ethnicity"
	Veteran    Type = "veteran"
	Disability Type = "disability"

	// Application meta
	HowDidYouHear Type = "howDidYouHear"
	ReferralName  Type = "referralName"
	DeviceType    Type = "deviceType"
)

// Sensitive reports whether answers for this type must never be fabricated.
func (t Type) Sensitive() bool {
	switch t {
	case Gender, Ethnicity, Veteran, Disability:
		return true
	}
	return false
}

// LocationKind reports whether the type participates in the country → state
// → city → postal ordering and the no-arbitrary-fallback rule.
func (t Type) LocationKind() bool {
	switch t {
	case Country, State, City, ZipCode, CountryCode:
		return true
	}
	return false
}

// FillPriority orders controls so option universes populate correctly:
// a state selector filled before its country may hold the wrong options.
func (t Type) FillPriority() int {
	switch t {
	case Country, CountryCode:
		return 0
	case State:
		return 1
	case City:
		return 2
	case ZipCode:
		return 3
	default:
		return 10
	}
}
