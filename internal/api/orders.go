package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nhle/marketplace/internal/model"
)

// Checkout turns the cart into one order per line.
func (c *Client) Checkout(ctx context.Context, token string) ([]model.Order, error) {
	var orders []model.Order
	if err := c.send(ctx, http.MethodPost, "/orders", nil, token, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Orders lists the logged-in customer's orders.
func (c *Client) Orders(ctx context.Context, token string) ([]model.Order, error) {
	var orders []model.Order
	if err := c.get(ctx, "/orders", token, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// MerchantOrders lists the orders for the logged-in merchant's products.
func (c *Client) MerchantOrders(ctx context.Context, token string) ([]model.Order, error) {
	var orders []model.Order
	if err := c.get(ctx, "/merchant/orders", token, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CancelOrder cancels a customer order with a reason. The request is sent
// as PATCH and retried once as POST when the method is refused.
func (c *Client) CancelOrder(
	ctx context.Context,
	orderID int64,
	reason string,
	token string,
) (*model.Order, error) {
	path := fmt.Sprintf("/orders/%d/cancel", orderID)
	raw, err := c.patchWithFallback(ctx, path, model.CancelOrderRequest{Reason: reason}, token)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw, path)
}

// UpdateOrderStatus sets a merchant order status. The request is sent as
// PATCH and retried once as POST when the method is refused.
func (c *Client) UpdateOrderStatus(
	ctx context.Context,
	orderID int64,
	req model.UpdateOrderStatusRequest,
	token string,
) (*model.Order, error) {
	path := fmt.Sprintf("/merchant/orders/%d/status", orderID)
	raw, err := c.patchWithFallback(ctx, path, req, token)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw, path)
}

// decodeOrder returns nil when the server answered without a body.
func decodeOrder(raw []byte, path string) (*model.Order, error) {
	if raw == nil {
		return nil, nil
	}
	var o model.Order
	if err := decode(raw, &o, "PATCH", path); err != nil {
		return nil, err
	}
	return &o, nil
}
