package dom

import (
	"net/url"
	"strings"
)

// Platform identifies a known applicant-tracking portal.
type Platform string

const (
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS platform
	PlatformWorkday Platform = "workday"
	// PlatformAshby is the Ashby ATS platform
	PlatformAshby Platform = "ashby"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the portal from a document URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	if strings.Contains(host, "greenhouse.io") {
		return PlatformGreenhouse
	}
	if strings.Contains(host, "lever.co") {
		return PlatformLever
	}
	if strings.Contains(host, "workday.com") ||
		strings.Contains(host, "myworkdayjobs.com") {
		return PlatformWorkday
	}
	if strings.Contains(host, "ashbyhq.com") {
		return PlatformAshby
	}

	return PlatformUnknown
}
