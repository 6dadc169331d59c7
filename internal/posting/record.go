// Package posting locates, scores, and merges job-posting content from
// structured metadata, embedded page-state payloads, and the best-scoring
// visible subtree, then derives a structured breakdown from the canonical
// description.
package posting

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion tags every produced record. Consumers must tolerate
// additive fields within a major version.
const SchemaVersion = "1.1"

// Sponsorship is the classified visa-sponsorship stance of a posting.
type Sponsorship string

const (
	SponsorshipSponsored    Sponsorship = "sponsored"
	SponsorshipNotSponsored Sponsorship = "not-sponsored"
	SponsorshipUnspecified  Sponsorship = "unspecified"
)

// Record is the canonical, structured extraction of one job posting.
// Immutable once produced; a fresher extraction supersedes it wholesale.
type Record struct {
	ID             string `json:"id"`
	SchemaVersion  string `json:"schema_version"`
	Title          string `json:"title,omitempty"`
	Organization   string `json:"organization,omitempty"`
	Location       string `json:"location,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`

	Description      string   `json:"description"`
	Summary          string   `json:"summary,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Requirements     []string `json:"requirements,omitempty"`
	Preferred        []string `json:"preferred,omitempty"`
	Benefits         []string `json:"benefits,omitempty"`

	Compensation string      `json:"compensation,omitempty"`
	Sponsorship  Sponsorship `json:"sponsorship"`

	Skills        []string `json:"skills,omitempty"`
	YearsRequired int      `json:"years_required,omitempty"`

	Provenance Provenance `json:"provenance"`
}

// Provenance identifies where and when a record was extracted.
type Provenance struct {
	SourceURL string `json:"source_url,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Timestamp string `json:"timestamp"` // RFC3339
	Hash      string `json:"hash"`      // SHA256 hex digest of the description
}

func newProvenance(content, sourceURL, platform string) Provenance {
	return Provenance{
		SourceURL: sourceURL,
		Platform:  platform,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

func computeHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ToJSON marshals the record to pretty-printed JSON.
func (r *Record) ToJSON() ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal posting record: %w", err)
	}
	return out, nil
}

// ParseError reports unparseable source markup.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("posting parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("posting parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
