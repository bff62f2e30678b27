package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// ModLogRepository handles the append-only moderation action log. Entries are
// never updated or deleted; dashboard counters live in modlog_counter rows
// bumped in the same batch as the entry they count.
type ModLogRepository struct {
	db database.Store
}

// NewModLogRepository creates a new moderation log repository
func NewModLogRepository(db database.Store) *ModLogRepository {
	return &ModLogRepository{db: db}
}

// AppendStatement inserts a log entry with a caller-chosen id so the append
// rides in the same batch as the action it records.
func (r *ModLogRepository) AppendStatement(id string, entry *model.ModerationLogEntry) database.Statement {
	return database.Statement{
		Query: `
			CREATE type::thing("modlog", $mid) CONTENT {
				action: $action,
				target_type: $target_type,
				target_id: $target_id,
				reason: $reason,
				performed_by: $performed_by,
				severity: IF $severity IS NOT NULL THEN $severity ELSE NONE END,
				automated: $automated,
				details: IF $details IS NOT NULL THEN $details ELSE NONE END,
				timestamp: time::now()
			}
		`,
		Vars: map[string]interface{}{
			"mid":          id,
			"action":       entry.Action,
			"target_type":  entry.TargetType,
			"target_id":    entry.TargetID,
			"reason":       entry.Reason,
			"performed_by": entry.PerformedBy,
			"severity":     nilIfEmpty(entry.Severity),
			"automated":    entry.Automated,
			"details":      nilIfEmptyMap(entry.Details),
		},
	}
}

// CounterStatements builds the incremental counter bumps for an entry, keyed
// by UTC day so dashboards read counters instead of rescanning the log: one
// per action type, one per moderator for manual actions, one for automated
// actions. UPDATE on a modlog_counter record creates it when missing.
func (r *ModLogRepository) CounterStatements(entry *model.ModerationLogEntry) []database.Statement {
	day := time.Now().UTC().Format("2006-01-02")
	stmts := []database.Statement{
		counterBump(day + ":action:" + string(entry.Action)),
	}
	if entry.Automated {
		stmts = append(stmts, counterBump(day+":automated"))
	} else {
		stmts = append(stmts, counterBump(day+":moderator:"+entry.PerformedBy))
	}
	if entry.Severity != "" {
		stmts = append(stmts, counterBump(day+":severity:"+entry.Severity))
	}
	return stmts
}

// CounterValue reads one incremental counter.
func (r *ModLogRepository) CounterValue(ctx context.Context, key string) (int, error) {
	query := `SELECT count FROM type::thing("modlog_counter", $key)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"key": key})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	if m, ok := result.(map[string]interface{}); ok {
		return getInt(m, "count"), nil
	}
	return 0, nil
}

func counterBump(key string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::thing("modlog_counter", $key) SET key = $key, count += 1`,
		Vars:  map[string]interface{}{"key": key},
	}
}

// List retrieves log entries matching the filter, newest first.
func (r *ModLogRepository) List(ctx context.Context, filter model.ModLogFilter) ([]*model.ModerationLogEntry, error) {
	query := `SELECT * FROM modlog WHERE true`
	vars := map[string]interface{}{}

	if filter.Action != nil {
		query += ` AND action = $action`
		vars["action"] = *filter.Action
	}
	if filter.PerformedBy != nil {
		query += ` AND performed_by = $performed_by`
		vars["performed_by"] = *filter.PerformedBy
	}
	if filter.Since != nil {
		query += ` AND timestamp >= $since`
		vars["since"] = filter.Since.UTC().Format(time.RFC3339)
	}
	if filter.Until != nil {
		query += ` AND timestamp < $until`
		vars["until"] = filter.Until.UTC().Format(time.RFC3339)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` ORDER BY timestamp DESC LIMIT $limit`
	vars["limit"] = limit

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	return parseLogEntriesFromQuery(result), nil
}

// Summarize aggregates entries since the given time into dashboard maps.
func (r *ModLogRepository) Summarize(ctx context.Context, since time.Time, window string) (*model.ModLogSummary, error) {
	query := `
		SELECT * FROM modlog
		WHERE timestamp >= $since
		ORDER BY timestamp DESC
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{
		"since": since.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize log: %w", err)
	}

	summary := &model.ModLogSummary{
		Window:      window,
		ByAction:    make(map[string]int),
		ByModerator: make(map[string]int),
		BySeverity:  make(map[string]int),
	}
	for _, entry := range parseLogEntriesFromQuery(result) {
		summary.Total++
		summary.ByAction[string(entry.Action)]++
		if entry.Automated {
			summary.Automated++
		} else {
			summary.ByModerator[entry.PerformedBy]++
		}
		if entry.Severity != "" {
			summary.BySeverity[entry.Severity]++
		}
	}
	return summary, nil
}

// Parsing

func parseLogEntryFromMap(m map[string]interface{}) *model.ModerationLogEntry {
	return &model.ModerationLogEntry{
		ID:          extractRecordID(m["id"]),
		Action:      model.ModerationActionType(getString(m, "action")),
		TargetType:  getString(m, "target_type"),
		TargetID:    getString(m, "target_id"),
		Reason:      getString(m, "reason"),
		PerformedBy: getString(m, "performed_by"),
		Severity:    getString(m, "severity"),
		Automated:   getBool(m, "automated"),
		Timestamp:   parseTime(m["timestamp"]),
	}
}

func parseLogEntriesFromQuery(result []interface{}) []*model.ModerationLogEntry {
	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.ModerationLogEntry{}
	}
	entries := make([]*model.ModerationLogEntry, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			entries = append(entries, parseLogEntryFromMap(m))
		}
	}
	return entries
}
