package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nhle/marketplace/internal/model"
)

// ListNotifications returns every notification of the logged-in user.
func (c *Client) ListNotifications(ctx context.Context, token string) ([]model.Notification, error) {
	var list []model.Notification
	if err := c.get(ctx, "/api/notifications", token, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkNotificationRead marks one notification as read on the server.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64, token string) error {
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/api/notifications/read/%d", id), nil, token, nil)
}

// MarkAllNotificationsRead marks every notification as read on the server.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, token string) error {
	return c.send(ctx, http.MethodPost, "/api/notifications/read-all", nil, token, nil)
}
