package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/taskdesk/modules/notifications/domain/entities/notification"
	"github.com/iota-uz/taskdesk/modules/notifications/infrastructure/persistence/models"
	"github.com/iota-uz/taskdesk/pkg/composables"
	"github.com/iota-uz/taskdesk/pkg/repo"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

const notificationColumns = "id, recipient_id, title, body, kind, metadata, read, deep_link, created_at"

type NotificationRepository struct{}

func NewNotificationRepository() notification.Repository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Notification
	err = tx.QueryRow(
		ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`,
		id,
	).Scan(
		&row.ID, &row.RecipientID, &row.Title, &row.Body, &row.Kind,
		&row.Metadata, &row.Read, &row.DeepLink, &row.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, serrors.NewNotFoundError("notification", 0)
	}
	if err != nil {
		return nil, err
	}
	return toDomainNotification(&row)
}

func (r *NotificationRepository) List(ctx context.Context, params *notification.FindParams) ([]*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildNotificationFilters(params)
	query := repo.Join(
		`SELECT `+notificationColumns+` FROM notifications`,
		repo.JoinWhere(where...),
		`ORDER BY created_at DESC, id`,
	)
	if params != nil {
		query = repo.Join(query, repo.FormatLimitOffset(params.Limit, params.Offset))
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*notification.Notification
	for rows.Next() {
		var row models.Notification
		if err := rows.Scan(
			&row.ID, &row.RecipientID, &row.Title, &row.Body, &row.Kind,
			&row.Metadata, &row.Read, &row.DeepLink, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		entity, err := toDomainNotification(&row)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *NotificationRepository) Count(ctx context.Context, params *notification.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildNotificationFilters(params)

	var count int64
	if err := tx.QueryRow(
		ctx,
		repo.Join(`SELECT COUNT(*) FROM notifications`, repo.JoinWhere(where...)),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NotificationRepository) Create(ctx context.Context, entity *notification.Notification) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now()
	}
	_, err = tx.Exec(
		ctx,
		`INSERT INTO notifications (id, recipient_id, title, body, kind, metadata, read, deep_link, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entity.ID, entity.RecipientID, entity.Title, entity.Body, entity.Kind,
		[]byte(entity.Metadata), entity.Read, entity.DeepLink, entity.CreatedAt,
	)
	return err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return serrors.NewNotFoundError("notification", 0)
	}
	return nil
}

func (r *NotificationRepository) HasUnreadSince(ctx context.Context, recipientID uint, kind, deepLink string, since time.Time) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = tx.QueryRow(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE recipient_id = $1 AND kind = $2 AND deep_link = $3
			  AND read = FALSE AND created_at >= $4
		 )`,
		recipientID, kind, deepLink, since,
	).Scan(&exists)
	return exists, err
}

func (r *NotificationRepository) UnreadCountsSince(ctx context.Context, since time.Time) (map[uint]int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(
		ctx,
		`SELECT recipient_id, COUNT(*)
		 FROM notifications
		 WHERE read = FALSE AND created_at >= $1
		 GROUP BY recipient_id`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uint]int)
	for rows.Next() {
		var recipientID uint
		var count int
		if err := rows.Scan(&recipientID, &count); err != nil {
			return nil, err
		}
		counts[recipientID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func buildNotificationFilters(params *notification.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if params == nil {
		return where, args
	}
	argPos := 1

	if params.RecipientID != nil {
		where = append(where, fmt.Sprintf("recipient_id = $%d", argPos))
		args = append(args, *params.RecipientID)
		argPos++
	}
	if params.Unread != nil {
		where = append(where, fmt.Sprintf("read = $%d", argPos))
		args = append(args, !*params.Unread)
		argPos++
	}
	if params.From != nil && !params.From.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, *params.From)
	}
	return where, args
}

func toDomainNotification(row *models.Notification) (*notification.Notification, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, err
	}
	return &notification.Notification{
		ID:          id,
		RecipientID: row.RecipientID,
		Title:       row.Title,
		Body:        row.Body,
		Kind:        row.Kind,
		Metadata:    row.Metadata,
		Read:        row.Read,
		DeepLink:    row.DeepLink,
		CreatedAt:   row.CreatedAt,
	}, nil
}
