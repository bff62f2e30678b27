package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// ReportRepository handles report data access
type ReportRepository struct {
	db database.Store
}

// NewReportRepository creates a new report repository
func NewReportRepository(db database.Store) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create creates a new report with its target snapshot.
func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	query := `
		CREATE report CONTENT {
			target_type: $target_type,
			target_id: $target_id,
			target_data: $target_data,
			reason: $reason,
			urgency: $urgency,
			status: $status,
			report_count: 1,
			reported_by: $reported_by,
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"target_type": report.TargetType,
		"target_id":   report.TargetID,
		"target_data": report.TargetData,
		"reason":      report.Reason,
		"urgency":     report.Urgency,
		"status":      report.Status,
		"reported_by": report.ReportedBy,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	m, ok := extractFirstRow(result)
	if !ok {
		return errors.New("no report returned")
	}
	created := parseReportFromMap(m)
	report.ID = created.ID
	report.ReportCount = created.ReportCount
	report.CreatedOn = created.CreatedOn
	return nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return parseReportFromMap(m), nil
}

// FindOpenByTarget retrieves the open report for a target, if any. Open
// means pending or reviewed; terminal reports never absorb duplicates.
func (r *ReportRepository) FindOpenByTarget(ctx context.Context, targetType model.ReportTargetType, targetID string) (*model.Report, error) {
	query := `
		SELECT * FROM report
		WHERE target_type = $target_type
		AND target_id = $target_id
		AND status IN ["pending", "reviewed"]
		LIMIT 1
	`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{
		"target_type": targetType,
		"target_id":   targetID,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open report: %w", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return parseReportFromMap(m), nil
}

// IncrementCount bumps the duplicate counter and re-raises urgency when the
// new filing is more urgent than the existing one.
func (r *ReportRepository) IncrementCount(ctx context.Context, id string, urgency model.ReportUrgency) (*model.Report, error) {
	query := `
		UPDATE type::record($id)
		SET report_count += 1,
		    urgency = $urgency
		RETURN AFTER
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{
		"id":      id,
		"urgency": urgency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to increment report count: %w", err)
	}
	m, ok := extractFirstRow(result)
	if !ok {
		return nil, errors.New("no report returned")
	}
	return parseReportFromMap(m), nil
}

// Update applies field updates to a report and returns the updated row.
func (r *ReportRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Report, error) {
	query := "UPDATE type::record($id) SET "
	params := map[string]interface{}{"id": id}

	first := true
	for key, value := range updates {
		if !first {
			query += ", "
		}
		query += fmt.Sprintf("%s = $%s", key, key)
		params[key] = value
		first = false
	}
	query += " RETURN AFTER"

	result, err := r.db.Query(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}
	m, ok := extractFirstRow(result)
	if !ok {
		return nil, errors.New("no report returned")
	}
	return parseReportFromMap(m), nil
}

// List retrieves reports matching the filter, newest first with high urgency
// ranked above the rest.
func (r *ReportRepository) List(ctx context.Context, filter model.ReportFilter) ([]*model.Report, error) {
	query := `SELECT * FROM report WHERE true`
	vars := map[string]interface{}{}

	if filter.Status != nil {
		query += ` AND status = $status`
		vars["status"] = *filter.Status
	}
	if filter.TargetType != nil {
		query += ` AND target_type = $target_type`
		vars["target_type"] = *filter.TargetType
	}
	if filter.Urgency != nil {
		query += ` AND urgency = $urgency`
		vars["urgency"] = *filter.Urgency
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY created_on DESC LIMIT $limit`
	vars["limit"] = limit

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return parseReportsFromQuery(result), nil
}

// Dashboard aggregates report counts for the moderation dashboard.
func (r *ReportRepository) Dashboard(ctx context.Context) (*model.ReportDashboard, error) {
	dash := &model.ReportDashboard{}

	totalQuery := `SELECT count() FROM report GROUP ALL`
	if result, err := r.db.QueryOne(ctx, totalQuery, nil); err == nil {
		if m, ok := result.(map[string]interface{}); ok {
			dash.TotalReports = getInt(m, "count")
		}
	}

	pendingQuery := `SELECT count() FROM report WHERE status = "pending" GROUP ALL`
	if result, err := r.db.QueryOne(ctx, pendingQuery, nil); err == nil {
		if m, ok := result.(map[string]interface{}); ok {
			dash.PendingReports = getInt(m, "count")
		}
	}

	highQuery := `SELECT count() FROM report WHERE status = "pending" AND urgency = "high" GROUP ALL`
	if result, err := r.db.QueryOne(ctx, highQuery, nil); err == nil {
		if m, ok := result.(map[string]interface{}); ok {
			dash.HighUrgency = getInt(m, "count")
		}
	}

	todayQuery := `SELECT count() FROM report WHERE status = "resolved" AND resolved_on > time::floor(time::now(), 1d) GROUP ALL`
	if result, err := r.db.QueryOne(ctx, todayQuery, nil); err == nil {
		if m, ok := result.(map[string]interface{}); ok {
			dash.ResolvedToday = getInt(m, "count")
		}
	}

	return dash, nil
}

// Parsing

func parseReportFromMap(m map[string]interface{}) *model.Report {
	rep := &model.Report{
		ID:            extractRecordID(m["id"]),
		TargetType:    model.ReportTargetType(getString(m, "target_type")),
		TargetID:      getString(m, "target_id"),
		TargetData:    getMap(m, "target_data"),
		Reason:        getString(m, "reason"),
		Urgency:       model.ReportUrgency(getString(m, "urgency")),
		Status:        model.ReportStatus(getString(m, "status")),
		ReportCount:   getInt(m, "report_count"),
		ReportedBy:    getString(m, "reported_by"),
		ReviewedBy:    getStringPtr(m, "reviewed_by"),
		ActionTaken:   getStringPtr(m, "action_taken"),
		DismissReason: getStringPtr(m, "dismiss_reason"),
		CreatedOn:     parseTime(m["created_on"]),
		ReviewedOn:    getTime(m, "reviewed_on"),
		ResolvedOn:    getTime(m, "resolved_on"),
	}
	return rep
}

func parseReportsFromQuery(result []interface{}) []*model.Report {
	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.Report{}
	}
	reports := make([]*model.Report, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			reports = append(reports, parseReportFromMap(m))
		}
	}
	return reports
}
