package api

import (
	"context"
	"net/http"

	"github.com/nhle/marketplace/internal/model"
)

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", req, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a customer or merchant account and returns its token.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/register", req, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CustomerProfile returns the profile of the logged-in customer.
func (c *Client) CustomerProfile(ctx context.Context, token string) (*model.CustomerProfile, error) {
	var p model.CustomerProfile
	if err := c.get(ctx, "/me", token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MerchantProfile returns the profile of the logged-in merchant.
func (c *Client) MerchantProfile(ctx context.Context, token string) (*model.MerchantProfile, error) {
	var p model.MerchantProfile
	if err := c.get(ctx, "/merchant/me", token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
