package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo/notification"
)

// Notification is an in-app alert addressed to one user.
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Type      notification.Type `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]any    `json:"data"`
	IsRead    bool              `json:"is_read"`
	ReadAt    *time.Time        `json:"read_at"`
	CreatedAt time.Time         `json:"created_at"`
}

type NotificationClient struct {
	conn dialect.ExecQuerier
}

// CreateBulk inserts all notifications in one statement.
func (c *NotificationClient) CreateBulk(ctx context.Context, ns ...*Notification) error {
	if len(ns) == 0 {
		return nil
	}
	now := time.Now().UTC()
	q := builder.Insert(notification.Table).Columns(notification.Columns...)
	for _, n := range ns {
		if n.ID == uuid.Nil {
			n.ID = newID()
		}
		n.CreatedAt = now
		data := n.Data
		if data == nil {
			data = map[string]any{}
		}
		dataJSON, err := jsonb(data)
		if err != nil {
			return err
		}
		q.Values(n.ID, n.UserID, string(n.Type), n.Title, n.Body, dataJSON, n.IsRead, n.ReadAt, n.CreatedAt)
	}
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	return nil
}

func (c *NotificationClient) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	sel := c.filtered(userID, unreadOnly).OrderBy(entsql.Desc(notification.FieldCreatedAt))
	var out []*Notification
	if err := query(ctx, c.conn, page(sel, limit, offset), &out); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (c *NotificationClient) Count(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int, error) {
	n, err := count(ctx, c.conn, c.filtered(userID, unreadOnly))
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

// MarkRead flags one of the user's notifications as read and reports whether
// it was found.
func (c *NotificationClient) MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	q := builder.Update(notification.Table).
		Set(notification.FieldIsRead, true).
		Set(notification.FieldReadAt, time.Now().UTC()).
		Where(entsql.And(
			entsql.EQ(notification.FieldID, id),
			entsql.EQ(notification.FieldUserID, userID),
		))
	n, err := exec(ctx, c.conn, q)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return n > 0, nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed.
func (c *NotificationClient) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	q := builder.Update(notification.Table).
		Set(notification.FieldIsRead, true).
		Set(notification.FieldReadAt, time.Now().UTC()).
		Where(entsql.And(
			entsql.EQ(notification.FieldUserID, userID),
			entsql.EQ(notification.FieldIsRead, false),
		))
	n, err := exec(ctx, c.conn, q)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}

func (c *NotificationClient) filtered(userID uuid.UUID, unreadOnly bool) *entsql.Selector {
	sel := builder.Select(notification.Columns...).
		From(builder.Table(notification.Table)).
		Where(entsql.EQ(notification.FieldUserID, userID))
	if unreadOnly {
		sel.Where(entsql.EQ(notification.FieldIsRead, false))
	}
	return sel
}
