package model

import "time"

// ReportTargetType identifies what a report is filed against.
type ReportTargetType string

const (
	ReportTargetPost    ReportTargetType = "post"
	ReportTargetComment ReportTargetType = "comment"
	ReportTargetUser    ReportTargetType = "user"
)

// ReportUrgency is the reporter-declared urgency.
type ReportUrgency string

const (
	ReportUrgencyLow    ReportUrgency = "low"
	ReportUrgencyMedium ReportUrgency = "medium"
	ReportUrgencyHigh   ReportUrgency = "high"
)

// ReportStatus is the lifecycle state: pending -> reviewed -> resolved or
// dismissed.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Report is a user-submitted report. TargetData is an immutable snapshot of
// the target taken at creation so audits survive later target deletion.
// Duplicate open reports against the same target increment ReportCount
// instead of creating new rows.
type Report struct {
	ID          string                 `json:"id"`
	TargetType  ReportTargetType       `json:"target_type"`
	TargetID    string                 `json:"target_id"`
	TargetData  map[string]interface{} `json:"target_data"`
	Reason      string                 `json:"reason"`
	Urgency     ReportUrgency          `json:"urgency"`
	Status      ReportStatus           `json:"status"`
	ReportCount int                    `json:"report_count"`
	ReportedBy  string                 `json:"reported_by"`
	ReviewedBy  *string                `json:"reviewed_by,omitempty"`
	ActionTaken *string                `json:"action_taken,omitempty"`
	DismissReason *string              `json:"dismiss_reason,omitempty"`
	CreatedOn   time.Time              `json:"created_on"`
	ReviewedOn  *time.Time             `json:"reviewed_on,omitempty"`
	ResolvedOn  *time.Time             `json:"resolved_on,omitempty"`
}

// IsOpen reports whether the report still awaits a terminal decision.
func (r *Report) IsOpen() bool {
	return r.Status == ReportStatusPending || r.Status == ReportStatusReviewed
}

// Valid target types
func IsValidReportTargetType(t string) bool {
	switch ReportTargetType(t) {
	case ReportTargetPost, ReportTargetComment, ReportTargetUser:
		return true
	}
	return false
}

// Valid urgencies
func IsValidReportUrgency(u string) bool {
	switch ReportUrgency(u) {
	case ReportUrgencyLow, ReportUrgencyMedium, ReportUrgencyHigh:
		return true
	}
	return false
}

// Valid statuses
func IsValidReportStatus(status string) bool {
	switch ReportStatus(status) {
	case ReportStatusPending, ReportStatusReviewed, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

// Constraints
const (
	MinReportReasonLength = 10
	MaxReportReasonLength = 1000
)

// CreateReportRequest files a report against content or a user.
type CreateReportRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Reason     string `json:"reason"`
	Urgency    string `json:"urgency"`
}

// ReviewReportRequest moves a report through its lifecycle. Resolved
// requires ActionTaken; dismissed requires DismissReason.
type ReviewReportRequest struct {
	Status        string  `json:"status"` // reviewed, resolved, dismissed
	ActionTaken   *string `json:"action_taken,omitempty"`
	DismissReason *string `json:"dismiss_reason,omitempty"`
}

// ReportFilter narrows report queries for the dashboard.
type ReportFilter struct {
	Status     *ReportStatus
	TargetType *ReportTargetType
	Urgency    *ReportUrgency
	Limit      int
}

// ReportDashboard aggregates report counts for the moderation dashboard.
type ReportDashboard struct {
	TotalReports   int `json:"total_reports"`
	PendingReports int `json:"pending_reports"`
	HighUrgency    int `json:"high_urgency_pending"`
	ResolvedToday  int `json:"resolved_today"`
}
