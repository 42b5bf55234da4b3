package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/nhle/marketplace/internal/model"
)

// Tokens accepted by the fake backend.
const (
	CustomerToken = "customer-token"
	MerchantToken = "merchant-token"
)

// MerchantID is the id of the single merchant known to the fake backend.
const MerchantID int64 = 4

// Backend is an in-memory marketplace server for view and end-to-end
// tests. It implements the endpoints the client uses with just enough
// business logic to observe state changes.
type Backend struct {
	URL string

	mu            gosync.Mutex
	products      map[int64]*model.Product
	categories    []model.Category
	cart          []model.CartItem
	wishlist      []int64
	orders        []model.Order
	notifications []model.Notification
	requests      []string
	nextID        int64

	// BlockPatch makes every PATCH answer 405 so callers fall back to POST.
	BlockPatch bool
}

// NewBackend starts a fake backend that is shut down with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		products:   make(map[int64]*model.Product),
		categories: []model.Category{{ID: 1, Name: "Home"}},
		nextID:     100,
	}

	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

// AddProduct registers a product sold by MerchantID and returns its id.
func (b *Backend) AddProduct(name string, price float64, stock int) int64 {
	return b.AddProductBy(MerchantID, "Acme", name, price, stock)
}

// AddProductBy registers a product sold by another merchant.
func (b *Backend) AddProductBy(merchantID int64, company, name string, price float64, stock int) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.id()
	b.products[id] = &model.Product{
		ID:                  id,
		Name:                name,
		Details:             name + " details",
		Price:               price,
		StockCount:          stock,
		MerchantID:          merchantID,
		MerchantCompanyName: company,
		CategoryID:          1,
		CategoryName:        "Home",
		CreatedAt:           time.Now().Format("2006-01-02T15:04:05"),
	}
	return id
}

// AddNotification stores a notification for the customer.
func (b *Backend) AddNotification(n model.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append(b.notifications, n)
}

// Product returns a copy of a stored product.
func (b *Backend) Product(id int64) (model.Product, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return model.Product{}, false
	}
	return *p, true
}

// Orders returns a copy of every order.
func (b *Backend) Orders() []model.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Order(nil), b.orders...)
}

// Requests returns "METHOD /path" for every request served so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/register", b.login)
	mux.HandleFunc("GET /me", b.customer(b.me))
	mux.HandleFunc("GET /merchant/me", b.merchant(b.merchantMe))

	mux.HandleFunc("GET /products", b.listProducts)
	mux.HandleFunc("GET /products/{id}", b.getProduct)
	mux.HandleFunc("POST /products", b.merchant(b.createProduct))
	mux.HandleFunc("PUT /products/{id}", b.merchant(b.updateProduct))
	mux.HandleFunc("DELETE /products/{id}", b.merchant(b.deleteProduct))
	mux.HandleFunc("POST /products/{id}/photos", b.merchant(b.uploadPhoto))
	mux.HandleFunc("GET /categories", b.listCategories)
	mux.HandleFunc("POST /categories", b.merchant(b.createCategory))

	mux.HandleFunc("GET /cart", b.customer(b.getCart))
	mux.HandleFunc("POST /cart/items", b.customer(b.addCartItem))
	mux.HandleFunc("DELETE /cart/items/{id}", b.customer(b.removeCartItem))
	mux.HandleFunc("GET /wishlist", b.customer(b.getWishlist))
	mux.HandleFunc("POST /wishlist", b.customer(b.addWishlist))
	mux.HandleFunc("DELETE /wishlist/{id}", b.customer(b.removeWishlist))

	mux.HandleFunc("POST /orders", b.customer(b.checkout))
	mux.HandleFunc("GET /orders", b.customer(b.listOrders))
	mux.HandleFunc("PATCH /orders/{id}/cancel", b.patchable(b.customer(b.cancelOrder)))
	mux.HandleFunc("POST /orders/{id}/cancel", b.customer(b.cancelOrder))
	mux.HandleFunc("GET /merchant/orders", b.merchant(b.listOrders))
	mux.HandleFunc("PATCH /merchant/orders/{id}/status", b.patchable(b.merchant(b.setStatus)))
	mux.HandleFunc("POST /merchant/orders/{id}/status", b.merchant(b.setStatus))

	mux.HandleFunc("GET /api/notifications", b.customer(b.listNotifications))
	mux.HandleFunc("POST /api/notifications/read/{id}", b.customer(b.readNotification))
	mux.HandleFunc("POST /api/notifications/read-all", b.customer(b.readAllNotifications))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func (b *Backend) withRole(role model.Role, next http.HandlerFunc) http.HandlerFunc {
	want := CustomerToken
	if role == model.RoleMerchant {
		want = MerchantToken
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+want {
			fail(w, http.StatusForbidden, "Access denied")
			return
		}
		next(w, r)
	}
}

func (b *Backend) customer(next http.HandlerFunc) http.HandlerFunc {
	return b.withRole(model.RoleCustomer, next)
}

func (b *Backend) merchant(next http.HandlerFunc) http.HandlerFunc {
	return b.withRole(model.RoleMerchant, next)
}

func (b *Backend) patchable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b.BlockPatch {
			fail(w, http.StatusMethodNotAllowed, "Request method 'PATCH' is not supported")
			return
		}
		next(w, r)
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string     `json:"email"`
		Type  model.Role `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "malformed body")
		return
	}

	resp := model.AuthResponse{Token: CustomerToken, TokenType: "Bearer", Email: req.Email, Type: model.RoleCustomer}
	if req.Type == model.RoleMerchant || strings.HasPrefix(req.Email, "merchant") {
		resp.Token = MerchantToken
		resp.Type = model.RoleMerchant
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) me(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.CustomerProfile{
		ID: 1, Name: "Ada", Surname: "Lovelace", Email: "ada@example.com", Balance: 1000,
	})
}

func (b *Backend) merchantMe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.MerchantProfile{
		ID: MerchantID, Name: "Grace", Surname: "Hopper", Email: "merchant@example.com", CompanyName: "Acme",
	})
}

func (b *Backend) listProducts(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := make([]model.Product, 0, len(b.products))
	for _, p := range b.products {
		list = append(list, *p)
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := b.Product(pathID(r))
	if !ok {
		fail(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		fail(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	stock, _ := strconv.Atoi(r.FormValue("stockCount"))
	catID, _ := strconv.ParseInt(r.FormValue("categoryId"), 10, 64)
	photos := len(r.MultipartForm.File["images"])

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.id()
	p := &model.Product{
		ID:                  id,
		Name:                r.FormValue("name"),
		Details:             r.FormValue("details"),
		Price:               price,
		StockCount:          stock,
		MerchantID:          MerchantID,
		MerchantCompanyName: "Acme",
		CategoryID:          catID,
	}
	for i := 0; i < photos; i++ {
		p.PhotoIDs = append(p.PhotoIDs, b.id())
	}
	b.products[id] = p
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "malformed body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.products[pathID(r)]
	if !ok {
		fail(w, http.StatusNotFound, "Product not found")
		return
	}
	p.Name, p.Details, p.Price, p.StockCount, p.CategoryID =
		req.Name, req.Details, req.Price, req.StockCount, req.CategoryID
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) deleteProduct(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.products, pathID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	if _, _, err := r.FormFile("file"); err != nil {
		fail(w, http.StatusBadRequest, "file is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.products[pathID(r)]
	if !ok {
		fail(w, http.StatusNotFound, "Product not found")
		return
	}
	photoID := b.id()
	p.PhotoIDs = append(p.PhotoIDs, photoID)
	writeJSON(w, http.StatusOK, model.ProductPhoto{
		ID:       photoID,
		PhotoURL: fmt.Sprintf("/uploads/%d.png", photoID),
	})
}

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.categories)
}

func (b *Backend) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	cat := model.Category{ID: b.id(), Name: req.Name}
	b.categories = append(b.categories, cat)
	writeJSON(w, http.StatusCreated, cat)
}

func (b *Backend) getCart(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]model.CartItem{}, b.cart...))
}

func (b *Backend) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "malformed body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.products[req.ProductID]
	if !ok {
		fail(w, http.StatusNotFound, "Product not found")
		return
	}
	for i := range b.cart {
		if b.cart[i].ProductID == req.ProductID {
			b.cart[i].Count += req.Count
			b.cart[i].TotalPrice = float64(b.cart[i].Count) * p.Price
			writeJSON(w, http.StatusOK, b.cart[i])
			return
		}
	}
	item := model.CartItem{
		ItemID:       b.id(),
		ProductID:    p.ID,
		ProductName:  p.Name,
		Count:        req.Count,
		PricePerUnit: p.Price,
		TotalPrice:   float64(req.Count) * p.Price,
	}
	b.cart = append(b.cart, item)
	writeJSON(w, http.StatusOK, item)
}

func (b *Backend) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.cart[:0]
	for _, it := range b.cart {
		if it.ItemID != id {
			kept = append(kept, it)
		}
	}
	b.cart = kept
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) getWishlist(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := []model.Product{}
	for _, id := range b.wishlist {
		if p, ok := b.products[id]; ok {
			list = append(list, *p)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) addWishlist(w http.ResponseWriter, r *http.Request) {
	var req model.WishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "malformed body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range b.wishlist {
		if id == req.ProductID {
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	b.wishlist = append(b.wishlist, req.ProductID)
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) removeWishlist(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.wishlist[:0]
	for _, pid := range b.wishlist {
		if pid != id {
			kept = append(kept, pid)
		}
	}
	b.wishlist = kept
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) checkout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.cart) == 0 {
		fail(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	placed := []model.Order{}
	for _, it := range b.cart {
		p := b.products[it.ProductID]
		if p == nil || p.StockCount < it.Count {
			fail(w, http.StatusConflict, "Not enough stock for "+it.ProductName)
			return
		}
	}
	for _, it := range b.cart {
		b.products[it.ProductID].StockCount -= it.Count
		o := model.Order{
			OrderID:     b.id(),
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Count:       it.Count,
			TotalAmount: it.TotalPrice,
			Status:      model.OrderCreated,
			CreatedAt:   time.Now().Format("2006-01-02T15:04:05"),
		}
		b.orders = append(b.orders, o)
		placed = append(placed, o)
	}
	b.cart = nil
	writeJSON(w, http.StatusOK, placed)
}

func (b *Backend) listOrders(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]model.Order{}, b.orders...))
}

func (b *Backend) findOrder(id int64) *model.Order {
	for i := range b.orders {
		if b.orders[i].OrderID == id {
			return &b.orders[i]
		}
	}
	return nil
}

func (b *Backend) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req model.CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		fail(w, http.StatusBadRequest, "Reason is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o := b.findOrder(pathID(r))
	if o == nil {
		fail(w, http.StatusNotFound, "Order not found")
		return
	}
	o.Status = model.OrderRejectByCustomer
	o.RejectReason = req.Reason
	writeJSON(w, http.StatusOK, o)
}

func (b *Backend) setStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "malformed body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o := b.findOrder(pathID(r))
	if o == nil {
		fail(w, http.StatusNotFound, "Order not found")
		return
	}
	o.Status = req.Status
	o.RejectReason = req.RejectReason
	b.notifications = append(b.notifications, model.Notification{
		ID:        b.id(),
		Message:   fmt.Sprintf("Order #%d is now %s", o.OrderID, o.Status),
		OrderID:   &o.OrderID,
		CreatedAt: time.Now().Format("2006-01-02T15:04:05"),
	})
	writeJSON(w, http.StatusOK, o)
}

func (b *Backend) listNotifications(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]model.Notification{}, b.notifications...))
}

func (b *Backend) readNotification(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.notifications {
		if b.notifications[i].ID == id {
			b.notifications[i].Read = true
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) readAllNotifications(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.notifications {
		b.notifications[i].Read = true
	}
	w.WriteHeader(http.StatusOK)
}
