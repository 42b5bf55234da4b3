package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/nhle/marketplace/internal/model"
)

// DefaultPageSize is the catalog page size used when none is given.
const DefaultPageSize = 9

// DefaultProductSort is the server-side ordering requested for the catalog.
const DefaultProductSort = "createdAt,DESC"

// PageQuery selects one page of the catalog.
type PageQuery struct {
	Page       int
	Size       int
	Search     string
	CategoryID int64
	Sort       string
}

func (q PageQuery) withDefaults() PageQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	if q.Sort == "" {
		q.Sort = DefaultProductSort
	}
	return q
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.CategoryID != 0 {
		v.Set("categoryId", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// NormalizePage turns a products response into a page envelope. Servers
// that ignore paging return a bare array; its page metadata is estimated
// from the item count. Envelopes are passed through unchanged.
func NormalizePage(raw json.RawMessage, page, size int) (*model.ProductPage, error) {
	if size <= 0 {
		size = DefaultPageSize
	}

	if raw == nil {
		return &model.ProductPage{Content: []model.Product{}, Number: page, Size: size, TotalPages: page + 1, Last: true}, nil
	}

	if !gjson.ParseBytes(raw).IsArray() {
		var p model.ProductPage
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding product page: %w", err)
		}
		return &p, nil
	}

	var items []model.Product
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding product list: %w", err)
	}
	if items == nil {
		items = []model.Product{}
	}

	n := len(items)
	last := n < size
	totalPages := page + 2
	if last {
		totalPages = page + 1
	}

	return &model.ProductPage{
		Content:       items,
		Number:        page,
		Size:          size,
		TotalElements: n,
		TotalPages:    totalPages,
		Last:          last,
	}, nil
}

// ProductsPaged fetches one page of the public catalog.
func (c *Client) ProductsPaged(ctx context.Context, q PageQuery) (*model.ProductPage, error) {
	q = q.withDefaults()
	path := "/products?" + q.values().Encode()

	raw, err := c.RequestJSON(ctx, path, RequestOptions{})
	if err != nil {
		return nil, err
	}
	return NormalizePage(raw, q.Page, q.Size)
}

// Products fetches the full catalog without paging.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.get(ctx, "/products", "", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", id), "", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct creates a product as multipart form data, attaching each
// path in photos as an "images" file.
func (c *Client) CreateProduct(
	ctx context.Context,
	req model.ProductRequest,
	photos []string,
	token string,
) (*model.Product, error) {
	fields := map[string]string{
		"categoryId": strconv.FormatInt(req.CategoryID, 10),
		"name":       req.Name,
		"details":    req.Details,
		"price":      strconv.FormatFloat(req.Price, 'f', -1, 64),
		"stockCount": strconv.Itoa(req.StockCount),
	}

	files := make([]FormFile, 0, len(photos))
	for _, p := range photos {
		files = append(files, FormFile{Field: "images", Path: p})
	}

	raw, err := c.requestForm(ctx, "/products", fields, files, token)
	if err != nil {
		return nil, err
	}

	var p model.Product
	if err := decode(raw, &p, http.MethodPost, "/products"); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct replaces the editable fields of a product.
func (c *Client) UpdateProduct(
	ctx context.Context,
	id int64,
	req model.ProductRequest,
	token string,
) (*model.Product, error) {
	var p model.Product
	path := fmt.Sprintf("/products/%d", id)
	if err := c.send(ctx, http.MethodPut, path, req, token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a product owned by the logged-in merchant.
func (c *Client) DeleteProduct(ctx context.Context, id int64, token string) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, token, nil)
}

// UploadProductPhoto attaches one more photo to an existing product.
func (c *Client) UploadProductPhoto(
	ctx context.Context,
	productID int64,
	photoPath string,
	token string,
) (*model.ProductPhoto, error) {
	path := fmt.Sprintf("/products/%d/photos", productID)
	raw, err := c.requestForm(ctx, path, nil, []FormFile{{Field: "file", Path: photoPath}}, token)
	if err != nil {
		return nil, err
	}

	var photo model.ProductPhoto
	if err := decode(raw, &photo, http.MethodPost, path); err != nil {
		return nil, err
	}
	return &photo, nil
}

// ProductPhotoURL returns the server URL that redirects to a product photo.
func (c *Client) ProductPhotoURL(productID, photoID int64) string {
	return fmt.Sprintf("%s/products/%d/photos/%d", c.baseURL, productID, photoID)
}

// NormalizePhotoURL resolves a stored photo URL against the API origin.
// Absolute URLs are returned unchanged.
func (c *Client) NormalizePhotoURL(raw string) string {
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if ref.IsAbs() {
		return raw
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

// PhotoURLs returns display URLs for every photo of p, preferring the
// redirecting photo endpoint when ids are known.
func (c *Client) PhotoURLs(p model.Product) []string {
	if len(p.PhotoIDs) > 0 {
		urls := make([]string, 0, len(p.PhotoIDs))
		for _, id := range p.PhotoIDs {
			urls = append(urls, c.ProductPhotoURL(p.ID, id))
		}
		return urls
	}

	urls := make([]string, 0, len(p.PhotoURLs))
	for _, u := range p.PhotoURLs {
		urls = append(urls, c.NormalizePhotoURL(u))
	}
	return urls
}
