package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iota-uz/taskdesk/modules/logging/domain/entities/activitylog"
	"github.com/iota-uz/taskdesk/modules/logging/infrastructure/persistence/models"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/repo"
)

type ActivityLogRepository struct{}

func NewActivityLogRepository() activitylog.Repository {
	return &ActivityLogRepository{}
}

func (r *ActivityLogRepository) List(ctx context.Context, params *activitylog.FindParams) ([]*activitylog.ActivityLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildActivityLogFilters(params)
	query := `
		SELECT id, user_id, action, target_type, target_id, metadata, created_at
		FROM activity_logs
		` + repo.JoinWhere(where...) + `
		ORDER BY created_at DESC, id DESC
	`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*activitylog.ActivityLog
	for rows.Next() {
		var row models.ActivityLog
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Action,
			&row.TargetType,
			&row.TargetID,
			&row.Metadata,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainActivityLog(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ActivityLogRepository) Count(ctx context.Context, params *activitylog.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildActivityLogFilters(params)

	var count int64
	if err := tx.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM activity_logs `+repo.JoinWhere(where...),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *activitylog.ActivityLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	row := toDBActivityLog(entry)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}

	return tx.QueryRow(
		ctx,
		`INSERT INTO activity_logs (user_id, action, target_type, target_id, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		row.UserID,
		row.Action,
		row.TargetType,
		row.TargetID,
		row.Metadata,
		row.CreatedAt,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func buildActivityLogFilters(params *activitylog.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if params == nil {
		return where, args
	}
	argPos := 1

	if params.UserID != nil {
		where = append(where, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, *params.UserID)
		argPos++
	}
	if action := strings.TrimSpace(params.Action); action != "" {
		where = append(where, fmt.Sprintf("action = $%d", argPos))
		args = append(args, action)
		argPos++
	}
	if targetType := strings.TrimSpace(params.TargetType); targetType != "" {
		where = append(where, fmt.Sprintf("target_type = $%d", argPos))
		args = append(args, targetType)
		argPos++
	}
	if params.TargetID != nil {
		where = append(where, fmt.Sprintf("target_id = $%d", argPos))
		args = append(args, *params.TargetID)
		argPos++
	}
	if params.From != nil && !params.From.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, *params.From)
		argPos++
	}
	if params.To != nil && !params.To.IsZero() {
		where = append(where, fmt.Sprintf("created_at <= $%d", argPos))
		args = append(args, *params.To)
	}
	return where, args
}

func toDBActivityLog(entry *activitylog.ActivityLog) *models.ActivityLog {
	return &models.ActivityLog{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

func toDomainActivityLog(row *models.ActivityLog) *activitylog.ActivityLog {
	return &activitylog.ActivityLog{
		ID:         row.ID,
		UserID:     row.UserID,
		Action:     row.Action,
		TargetType: row.TargetType,
		TargetID:   row.TargetID,
		Metadata:   row.Metadata,
		CreatedAt:  row.CreatedAt,
	}
}
