package model

import "time"

// StrikeSeverity grades a policy violation.
type StrikeSeverity string

const (
	StrikeSeverityMinor    StrikeSeverity = "minor"
	StrikeSeverityModerate StrikeSeverity = "moderate"
	StrikeSeveritySevere   StrikeSeverity = "severe"
)

// IsValidStrikeSeverity reports whether s is a known severity.
func IsValidStrikeSeverity(s string) bool {
	switch StrikeSeverity(s) {
	case StrikeSeverityMinor, StrikeSeverityModerate, StrikeSeveritySevere:
		return true
	}
	return false
}

// RelatedContent points a strike at the content that earned it.
type RelatedContent struct {
	Type string `json:"type"` // post, comment
	ID   string `json:"id"`
}

// Strike is a point-bearing penalty attached to a user. Strikes are never
// hard-deleted; expiry and lifting set IsActive false.
type Strike struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Points         int             `json:"points"`
	Severity       StrikeSeverity  `json:"severity"`
	Reason         string          `json:"reason"`
	IssuedBy       string          `json:"issued_by"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	IsActive       bool            `json:"is_active"`
	RelatedContent *RelatedContent `json:"related_content,omitempty"`
	LiftedBy       *string         `json:"lifted_by,omitempty"`
	LiftReason     *string         `json:"lift_reason,omitempty"`
	CreatedOn      time.Time       `json:"created_on"`
}

// Expired reports whether the strike has passed its expiry at the given time.
func (s *Strike) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// Suspension thresholds on the active strike point sum. Highest qualifying
// wins; PermanentThreshold suspends with no end date.
//
//	points  suspension
//	>= 10   permanent
//	>=  8   30 days
//	>=  5    7 days
//	>=  3    1 day
const (
	PermanentThreshold = 10
	ThirtyDayThreshold = 8
	SevenDayThreshold  = 5
	OneDayThreshold    = 3
)

// SuspensionForPoints returns the crossed threshold and suspension length in
// days for a point sum. A zero threshold means no suspension; days is -1 for
// a permanent suspension.
func SuspensionForPoints(points int) (threshold int, days int) {
	switch {
	case points >= PermanentThreshold:
		return PermanentThreshold, -1
	case points >= ThirtyDayThreshold:
		return ThirtyDayThreshold, 30
	case points >= SevenDayThreshold:
		return SevenDayThreshold, 7
	case points >= OneDayThreshold:
		return OneDayThreshold, 1
	}
	return 0, 0
}

// Constraints
const (
	MaxStrikePoints         = 10
	MaxStrikeReasonLength   = 500
	DefaultStrikeExpiryDays = 90
)

// IssueStrikeRequest attaches a strike to a user.
type IssueStrikeRequest struct {
	Points         int             `json:"points"`
	Severity       string          `json:"severity"`
	Reason         string          `json:"reason"`
	ExpiresInDays  *int            `json:"expires_in_days,omitempty"`
	RelatedContent *RelatedContent `json:"related_content,omitempty"`
}

// Validate checks the request fields.
func (r *IssueStrikeRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Points <= 0 || r.Points > MaxStrikePoints {
		errs = append(errs, FieldError{Field: "points", Message: "points must be between 1 and 10"})
	}
	if !IsValidStrikeSeverity(r.Severity) {
		errs = append(errs, FieldError{Field: "severity", Message: "unknown severity"})
	}
	if r.Reason == "" {
		errs = append(errs, FieldError{Field: "reason", Message: "reason is required"})
	}
	if len(r.Reason) > MaxStrikeReasonLength {
		errs = append(errs, FieldError{Field: "reason", Message: "reason exceeds maximum length"})
	}
	return errs
}

// LiftStrikeRequest voids a strike.
type LiftStrikeRequest struct {
	Reason string `json:"reason"`
}

// StrikeSummary is a user's current strike standing.
type StrikeSummary struct {
	UserID       string   `json:"user_id"`
	ActivePoints int      `json:"active_points"`
	Strikes      []Strike `json:"strikes"`
	Suspension   Suspension `json:"suspension"`
}
