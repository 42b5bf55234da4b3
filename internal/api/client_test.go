package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marketplace/internal/model"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) add(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Body:   string(body),
		Auth:   req.Header.Get("Authorization"),
	})
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *logtest.Hook) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewClient(srv.URL, 5*time.Second, logrus.NewEntry(logger)), hook
}

func TestRequestJSON_SetsHeaders(t *testing.T) {
	var got http.Header
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	})

	raw, err := c.RequestJSON(context.Background(), "/me", RequestOptions{Token: "tok-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":"yes"}`, string(raw))
	assert.Equal(t, "Bearer tok-1", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestRequestJSON_NoTokenNoAuthHeader(t *testing.T) {
	var auth string
	var hasAuth bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, []int{})
	})

	_, err := c.RequestJSON(context.Background(), "/products", RequestOptions{})
	require.NoError(t, err)
	assert.Empty(t, auth)
	assert.False(t, hasAuth)
}

func TestRequestJSON_NonJSONSuccessIsAbsent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("done"))
	})

	raw, err := c.RequestJSON(context.Background(), "/cart/items/3", RequestOptions{Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRequestJSON_NoContentIsAbsent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	raw, err := c.RequestJSON(context.Background(), "/products/1", RequestOptions{Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRequestJSON_ErrorBodyIsCompactedJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("{\n  \"message\": \"Not enough stock\"\n}"))
	})

	_, err := c.RequestJSON(context.Background(), "/cart/items", RequestOptions{Method: http.MethodPost})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, `{"message":"Not enough stock"}`, apiErr.Message)
	assert.Equal(t, "Not enough stock", UserMessage(err))
}

func TestRequestJSON_ErrorWithoutJSONUsesStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>boom</html>"))
	})

	_, err := c.RequestJSON(context.Background(), "/orders", RequestOptions{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "500", apiErr.Message)
	assert.Equal(t, "500", UserMessage(err))
}

func TestRequestJSON_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	_, err := c.RequestJSON(context.Background(), "/orders", RequestOptions{})
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, "cannot reach the marketplace server", UserMessage(err))
}

func TestCancelOrder_FallsBackToPOSTOnMethodNotAllowed(t *testing.T) {
	rec := &recorder{}
	c, hook := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		if r.Method == http.MethodPatch {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
			return
		}
		writeJSON(w, http.StatusOK, model.Order{OrderID: 7, Status: model.OrderRejectByCustomer, RejectReason: "changed my mind"})
	})

	order, err := c.CancelOrder(context.Background(), 7, "changed my mind", "tok")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, model.OrderRejectByCustomer, order.Status)

	reqs := rec.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
	assert.Equal(t, http.MethodPost, reqs[1].Method)
	assert.Equal(t, "/orders/7/cancel", reqs[1].Path)
	assert.Equal(t, reqs[0].Body, reqs[1].Body)
	assert.JSONEq(t, `{"reason":"changed my mind"}`, reqs[1].Body)
	assert.Equal(t, "Bearer tok", reqs[1].Auth)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "fallback should be logged")
}

func TestUpdateOrderStatus_FallsBackOnNoStaticResource(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		if r.Method == http.MethodPatch {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"message": "No static resource merchant/orders/3/status.",
			})
			return
		}
		writeJSON(w, http.StatusOK, model.Order{OrderID: 3, Status: model.OrderAccepted})
	})

	order, err := c.UpdateOrderStatus(context.Background(), 3, model.UpdateOrderStatusRequest{
		Status: model.OrderAccepted,
	}, "tok")
	require.NoError(t, err)
	assert.Equal(t, model.OrderAccepted, order.Status)

	reqs := rec.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[1].Method)
	assert.Equal(t, reqs[0].Body, reqs[1].Body)
}

func TestUpdateOrderStatus_BadRequestIsNotRetried(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Reject reason is required"})
	})

	_, err := c.UpdateOrderStatus(context.Background(), 3, model.UpdateOrderStatusRequest{
		Status: model.OrderRejectByMerchant,
	}, "tok")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Reject reason is required", UserMessage(err))

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
}

func TestCancelOrder_FallbackStatuses(t *testing.T) {
	for _, tc := range []struct {
		status   int
		requests int
	}{
		{status: http.StatusNotFound, requests: 2},
		{status: http.StatusMethodNotAllowed, requests: 2},
		{status: http.StatusNotImplemented, requests: 1},
		{status: http.StatusServiceUnavailable, requests: 1},
	} {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			rec := &recorder{}
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				rec.add(r)
				if r.Method == http.MethodPatch {
					writeJSON(w, tc.status, map[string]string{"error": http.StatusText(tc.status)})
					return
				}
				writeJSON(w, http.StatusOK, model.Order{OrderID: 7, Status: model.OrderRejectByCustomer})
			})

			_, err := c.CancelOrder(context.Background(), 7, "gone", "tok")
			if tc.requests == 1 {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tc.status, apiErr.StatusCode)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, rec.all(), tc.requests)
		})
	}
}

func TestCancelOrder_FallbackFailureSurfaces(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "gone"})
	})

	_, err := c.CancelOrder(context.Background(), 9, "x", "tok")
	require.Error(t, err)
	assert.Len(t, rec.all(), 2)
}

func TestNormalizePage_BareArrays(t *testing.T) {
	five := make([]model.Product, 5)
	nine := make([]model.Product, 9)
	rawFive, _ := json.Marshal(five)
	rawNine, _ := json.Marshal(nine)

	page, err := NormalizePage(rawFive, 0, 9)
	require.NoError(t, err)
	assert.True(t, page.Last)
	assert.Equal(t, 5, page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Content, 5)

	page, err = NormalizePage(rawNine, 2, 9)
	require.NoError(t, err)
	assert.False(t, page.Last)
	assert.Equal(t, 9, page.TotalElements)
	assert.Equal(t, 4, page.TotalPages)
	assert.Equal(t, 2, page.Number)
}

func TestNormalizePage_EnvelopePassesThrough(t *testing.T) {
	raw := []byte(`{"content":[{"id":1,"name":"Lamp"}],"number":3,"size":9,"totalElements":40,"totalPages":5,"last":false}`)

	page, err := NormalizePage(raw, 0, 9)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 40, page.TotalElements)
	assert.Equal(t, 5, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Lamp", page.Content[0].Name)
}

func TestProductsPaged_SendsQuery(t *testing.T) {
	var query map[string][]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(w, http.StatusOK, []model.Product{{ID: 1}})
	})

	page, err := c.ProductsPaged(context.Background(), PageQuery{Page: 1, Search: "mug", CategoryID: 4})
	require.NoError(t, err)
	assert.True(t, page.Last)
	assert.Equal(t, []string{"1"}, query["page"])
	assert.Equal(t, []string{"9"}, query["size"])
	assert.Equal(t, []string{"mug"}, query["search"])
	assert.Equal(t, []string{"4"}, query["categoryId"])
	assert.Equal(t, []string{DefaultProductSort}, query["sort"])
}

func TestPhotoURLs(t *testing.T) {
	c := NewClient("http://localhost:8080/", time.Second, nil)

	assert.Equal(t, "http://localhost:8080/products/5/photos/12", c.ProductPhotoURL(5, 12))
	assert.Equal(t, "http://localhost:8080/uploads/a.jpg", c.NormalizePhotoURL("/uploads/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/a.jpg", c.NormalizePhotoURL("https://cdn.example.com/a.jpg"))
	assert.Equal(t, "", c.NormalizePhotoURL(""))

	urls := c.PhotoURLs(model.Product{ID: 5, PhotoIDs: []int64{1, 2}})
	assert.Equal(t, []string{
		"http://localhost:8080/products/5/photos/1",
		"http://localhost:8080/products/5/photos/2",
	}, urls)
}

func TestCreateProduct_SendsMultipart(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "lamp.png")
	require.NoError(t, os.WriteFile(photo, []byte("png-bytes"), 0o600))

	var (
		fields   map[string]string
		fileName string
		fileType string
		fileBody string
	)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		fh := r.MultipartForm.File["images"][0]
		fileName = fh.Filename
		fileType = fh.Header.Get("Content-Type")
		f, _ := fh.Open()
		b, _ := io.ReadAll(f)
		fileBody = string(b)
		writeJSON(w, http.StatusOK, model.Product{ID: 11, Name: fields["name"]})
	})

	p, err := c.CreateProduct(context.Background(), model.ProductRequest{
		CategoryID: 2,
		Name:       "Lamp",
		Details:    "Desk lamp",
		Price:      19.5,
		StockCount: 3,
	}, []string{photo}, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.ID)
	assert.Equal(t, "Lamp", fields["name"])
	assert.Equal(t, "19.5", fields["price"])
	assert.Equal(t, "3", fields["stockCount"])
	assert.Equal(t, "2", fields["categoryId"])
	assert.Equal(t, "lamp.png", fileName)
	assert.Equal(t, "png-bytes", fileBody)
	assert.True(t, strings.HasPrefix(fileType, "text/plain"), "part type is sniffed from content, got %q", fileType)
}

func TestNotificationsEndpoints(t *testing.T) {
	rec := &recorder{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, []model.Notification{{ID: 1, Message: "hi"}})
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	list, err := c.ListNotifications(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.MarkNotificationRead(context.Background(), 1, "tok"))
	require.NoError(t, c.MarkAllNotificationsRead(context.Background(), "tok"))

	reqs := rec.all()
	require.Len(t, reqs, 3)
	assert.Equal(t, "/api/notifications/read/1", reqs[1].Path)
	assert.Equal(t, "/api/notifications/read-all", reqs[2].Path)
	assert.Equal(t, http.MethodPost, reqs[2].Method)
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsMethodBlocked(&APIError{StatusCode: 405}))
	assert.True(t, IsMethodBlocked(&APIError{StatusCode: 404}))
	assert.True(t, IsMethodBlocked(&APIError{StatusCode: 500, Message: `{"message":"No static resource x"}`}))
	assert.False(t, IsMethodBlocked(&APIError{StatusCode: 400}))
	assert.False(t, IsMethodBlocked(&NetworkError{Err: io.EOF}))

	assert.True(t, IsNetworkError(&NetworkError{Err: io.EOF}))
	assert.False(t, IsNetworkError(&NetworkError{Err: context.Canceled}))

	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 403}))
	assert.False(t, IsUnauthorized(&APIError{StatusCode: 500}))
}
