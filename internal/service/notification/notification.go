// Package notification is the in-app inbox. Rows are written by the services
// that cause them, inside their own transactions; this package only reads
// and acknowledges them.
package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	"github.com/equidadeplus/equidade_backend/internal/service/paging"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

type Notifications interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*repo.Notification, error)
	Count(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, actor authorize.Actor, unreadOnly bool, page, perPage int) (*paging.Result[*repo.Notification], error)
	MarkRead(ctx context.Context, actor authorize.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor authorize.Actor) (int64, error)
	UnreadCount(ctx context.Context, actor authorize.Actor) (int, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	notifications Notifications
}

func New(notifications Notifications) Service {
	return &notificationService{notifications: notifications}
}

// Notifications are personal: they follow the user across units, so none of
// these operations look at the selected unit.
func (s *notificationService) List(ctx context.Context, actor authorize.Actor, unreadOnly bool, page, perPage int) (*paging.Result[*repo.Notification], error) {
	page, perPage = paging.Normalize(page, perPage)
	if !actor.Can(authorize.ResourceNotifications, authorize.ActionView) {
		return nil, ErrForbidden
	}
	rows, err := s.notifications.List(ctx, actor.UserID, unreadOnly, perPage, paging.Offset(page, perPage))
	if err != nil {
		return nil, err
	}
	total, err := s.notifications.Count(ctx, actor.UserID, unreadOnly)
	if err != nil {
		return nil, err
	}
	return paging.New(rows, total, page, perPage), nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor authorize.Actor, id uuid.UUID) error {
	if !actor.Can(authorize.ResourceNotifications, authorize.ActionUpdate) {
		return ErrForbidden
	}
	found, err := s.notifications.MarkRead(ctx, id, actor.UserID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor authorize.Actor) (int64, error) {
	if !actor.Can(authorize.ResourceNotifications, authorize.ActionUpdate) {
		return 0, ErrForbidden
	}
	return s.notifications.MarkAllRead(ctx, actor.UserID)
}

func (s *notificationService) UnreadCount(ctx context.Context, actor authorize.Actor) (int, error) {
	if !actor.Can(authorize.ResourceNotifications, authorize.ActionView) {
		return 0, ErrForbidden
	}
	return s.notifications.Count(ctx, actor.UserID, true)
}
