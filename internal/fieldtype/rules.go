package fieldtype

import "regexp"

// rule binds a label pattern to a type. Rules are evaluated in order and the
// first match wins, so highly specific patterns must precede generic ones:
// "notice period" before "availability", "country code" before "country",
// "desired salary" before bare "salary".
type rule struct {
	re *regexp.Regexp
	t  Type
}

func r(pattern string, t Type) rule {
	return rule{re: regexp.MustCompile("(?i)" + pattern), t: t}
}

var rules = []rule{
	// Application meta and high-specificity phrasings first.
	r(`how did you hear|where did you hear|hear about (us|this)`, HowDidYouHear),
	r(`referr(al|er)('s)? name|who referred`, ReferralName),
	r(`referral`, HowDidYouHear),
	r(`device type|type of device`, DeviceType),
	r(`notice period|weeks? notice`, NoticePeriod),
	r(`country (dial(ing)?|phone)? ?code|dial code`, CountryCode),

	// Authorization: sponsorship before the generic work-auth patterns.
	r(`sponsor(ship)?`, Sponsorship),
	r(`security clearance|clearance level`, SecurityClearance),
	r(`citizen(ship)?`, Citizenship),
	r(`(legally )?authori[sz]ed to work|work authori[sz]ation|right to work|eligib(le|ility) to work`, WorkAuth),

	// Compensation.
	r(`(desired|expected|salary) expectations?|desired (salary|compensation|pay)|expected (salary|compensation|pay)|salary requirement`, DesiredSalary),
	r(`current (salary|compensation|pay|ctc)`, CurrentSalary),
	r(`\bsalary\b|compensation`, DesiredSalary),

	// Links before generic "website".
	r(`linked ?in`, LinkedIn),
	r(`git ?hub`, GitHub),
	r(`portfolio`, Portfolio),
	r(`personal (web ?site|page)|\bweb ?site\b|\burl\b`, Website),

	// Documents and long-form text.
	r(`resume|\bcv\b|curriculum vitae`, Resume),
	r(`cover letter|why (are you interested|do you want)|motivation letter`, CoverLetter),

	// Education: graduation year before experience-years patterns.
	r(`graduation (year|date)|year of graduation|expected graduation`, GraduationYear),
	r(`\bgpa\b|grade point`, GPA),
	r(`school|university|college|alma mater|institution`, School),
	r(`degree|qualification level`, Degree),
	r(`major|field of study|discipline|area of study`, Major),

	// Employment.
	r(`years? of (relevant |professional |work )?experience|experience \(?years?\)?`, YearsExperience),
	r(`current (company|employer)|most recent (company|employer)|employer name`, CurrentCompany),
	r(`current (title|role|position)|job title|most recent (title|role)`, CurrentTitle),
	r(`(earliest |available )?start date|date available|when can you start`, StartDate),
	r(`availab(le|ility)`, Availability),
	r(`willing to relocate|relocat(e|ion)`, Relocation),
	r(`remote|work from home|hybrid|on-?site preference`, RemotePreference),

	// Demographic.
	r(`\bgender\b|\bsex\b`, Gender),
	r(`ethnic|race\b`, Ethnicity),
	r(`veteran|military`, Veteran),
	r(`disabilit`, Disability),
	r(`pronouns?`, Pronouns),

	// Identity and contact.
	r(`date of birth|birth ?date|\bdob\b`, DateOfBirth),
	r(`e-?mail`, Email),
	r(`(phone|mobile|cell|contact) (number|no\.?)|telephone|\bphone\b|\bmobile\b`, Phone),
	r(`first name|given name|\bfname\b|forename`, FirstName),
	r(`last name|family name|surname|\blname\b`, LastName),
	r(`preferred name|nickname`, PreferredName),
	r(`full name|legal name|your name|^name$|applicant name`, FullName),

	// Location: specific markers before generic ones. Ordered after contact
	// so "email address" never lands on Address.
	r(`(zip|postal) ?code|postcode`, ZipCode),
	r(`\bcity\b|town|municipality|locality`, City),
	r(`state|province|region`, State),
	r(`country of residence|\bcountry\b|nationality`, Country),
	r(`street|address line|mailing address|home address|\baddress\b`, Address),
	r(`\blocation\b`, City),

	// Skills.
	r(`languages? (spoken|known)|spoken languages?`, Languages),
	r(`skills?|technologies|tech stack`, Skills),
}
