package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nhle/marketplace/internal/model"
)

// Categories lists all product categories.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := c.get(ctx, "/categories", "", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateCategory adds a category. Merchant only.
func (c *Client) CreateCategory(ctx context.Context, name, token string) (*model.Category, error) {
	var cat model.Category
	body := map[string]string{"name": name}
	if err := c.send(ctx, http.MethodPost, "/categories", body, token, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Wishlist returns the products on the customer's wishlist.
func (c *Client) Wishlist(ctx context.Context, token string) ([]model.Product, error) {
	var products []model.Product
	if err := c.get(ctx, "/wishlist", token, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// AddToWishlist puts a product on the wishlist.
func (c *Client) AddToWishlist(ctx context.Context, productID int64, token string) error {
	body := model.WishlistRequest{ProductID: productID}
	return c.send(ctx, http.MethodPost, "/wishlist", body, token, nil)
}

// RemoveFromWishlist takes a product off the wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID int64, token string) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/wishlist/%d", productID), nil, token, nil)
}

// Cart returns the lines of the customer's cart.
func (c *Client) Cart(ctx context.Context, token string) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := c.get(ctx, "/cart", token, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart adds count units of a product to the cart.
func (c *Client) AddToCart(ctx context.Context, productID int64, count int, token string) error {
	body := model.AddToCartRequest{ProductID: productID, Count: count}
	return c.send(ctx, http.MethodPost, "/cart/items", body, token, nil)
}

// RemoveCartItem deletes one cart line.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int64, token string) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemID), nil, token, nil)
}
