package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lienzo/lienzo-go/internal/models"
)

// NotificationService wraps the inbox endpoints.
type NotificationService struct {
	client *Client
}

// NewNotificationService constructs a NotificationService over the shared client.
func NewNotificationService(client *Client) *NotificationService {
	return &NotificationService{client: client}
}

// List returns one page of the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, page Pageable) (Page[models.Notification], error) {
	return getPage[models.Notification](ctx, s.client, "/notifications", page.Values(nil))
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	var count int
	err := s.client.doJSON(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &count)
	return count, err
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id int64) error {
	return s.client.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", id), nil, nil, nil)
}
