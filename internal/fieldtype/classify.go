package fieldtype

import (
	"strings"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// Classify maps a resolved label plus control attributes to a taxonomy
// member. Priority: learned mappings, then the ordered rule table, then
// declared-purpose attribute hints. Returns false when nothing matches;
// a guess here would produce a wrong but confident answer downstream.
func Classify(label string, hints dom.AttrHints, learned map[string]Type) (Type, bool) {
	norm := textnorm.Normalize(label)

	if learned != nil {
		if t, ok := learned[norm]; ok {
			return t, true
		}
		if t, ok := learned[label]; ok {
			return t, true
		}
	}

	for _, rule := range rules {
		if rule.re.MatchString(norm) {
			return rule.t, true
		}
	}

	return fromHints(hints)
}

// autocompleteTypes maps WHATWG autocomplete tokens to taxonomy members.
var autocompleteTypes = map[string]Type{
	"given-name":         FirstName,
	"family-name":        LastName,
	"name":               FullName,
	"nickname":           PreferredName,
	"email":              Email,
	"tel":                Phone,
	"tel-national":       Phone,
	"street-address":     Address,
	"address-line1":      Address,
	"address-level1":     State,
	"address-level2":     City,
	"postal-code":        ZipCode,
	"country":            Country,
	"country-name":       Country,
	"organization":       CurrentCompany,
	"organization-title": CurrentTitle,
	"url":                Website,
	"bday":               DateOfBirth,
}

// fromHints is the last-resort fallback on declared input purpose.
func fromHints(hints dom.AttrHints) (Type, bool) {
	if hints.Autocomplete != "" {
		// Autocomplete values may carry section prefixes ("section-x shipping tel").
		fields := strings.Fields(strings.ToLower(hints.Autocomplete))
		if len(fields) > 0 {
			if t, ok := autocompleteTypes[fields[len(fields)-1]]; ok {
				return t, true
			}
		}
	}

	switch strings.ToLower(hints.InputType) {
	case "email":
		return Email, true
	case "tel":
		return Phone, true
	}

	return "", false
}
