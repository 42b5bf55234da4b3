package model

// CartItem is a single line of the customer's cart.
type CartItem struct {
	ItemID       int64   `json:"itemId"`
	ProductID    int64   `json:"productId"`
	ProductName  string  `json:"productName"`
	Count        int     `json:"count"`
	PricePerUnit float64 `json:"pricePerUnit"`
	TotalPrice   float64 `json:"totalPrice"`
}

// AddToCartRequest is the body of POST /cart/items.
type AddToCartRequest struct {
	ProductID int64 `json:"productId"`
	Count     int   `json:"count"`
}

// WishlistRequest is the body of POST /wishlist.
type WishlistRequest struct {
	ProductID int64 `json:"productId"`
}

// CartTotal sums the line totals of a cart.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.TotalPrice
	}
	return total
}
