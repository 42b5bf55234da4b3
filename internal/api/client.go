package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Client is the gateway to the marketplace REST API. It attaches bearer
// tokens, serializes JSON, and normalizes error bodies into *APIError.
// Tokens are passed per call because the session can change while the
// client lives.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a new API client rooted at baseURL
// (e.g., http://localhost:8080).
func NewClient(baseURL string, timeout time.Duration, log *logrus.Entry) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.WithField("component", "api"),
	}
}

// BaseURL returns the API origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions describes a single JSON request. Method defaults to GET;
// Token is omitted from the request when empty.
type RequestOptions struct {
	Method string
	Body   interface{}
	Token  string
}

// RequestJSON performs a request and returns the raw JSON response body.
// A successful response without a JSON content type yields (nil, nil).
func (c *Client) RequestJSON(
	ctx context.Context,
	path string,
	opts RequestOptions,
) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	return c.execute(req, method, path, opts.Token)
}

// FormFile is a file attached to a multipart request.
type FormFile struct {
	Field string
	Path  string
}

// requestForm performs a multipart POST with plain fields and files read
// from disk.
func (c *Client) requestForm(
	ctx context.Context,
	path string,
	fields map[string]string,
	files []FormFile,
	token string,
) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("writing form field %s: %w", name, err)
		}
	}

	for _, f := range files {
		if err := attachFile(w, f); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.execute(req, http.MethodPost, path, token)
}

func attachFile(w *multipart.Writer, f FormFile) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Path, err)
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return fmt.Errorf("detecting type of %s: %w", f.Path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding %s: %w", f.Path, err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(f.Field), escapeQuotes(filepath.Base(f.Path))))
	h.Set("Content-Type", mt.String())

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating form file %s: %w", f.Field, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copying %s: %w", f.Path, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// execute sends req and classifies the outcome.
func (c *Client) execute(
	req *http.Request,
	method string,
	path string,
	token string,
) (json.RawMessage, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{
			Method: method,
			Path:   path,
			Err:    fmt.Errorf("reading response body: %w", err),
		}
	}

	log = log.WithField("status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debug("request rejected")
		return nil, newAPIError(resp.StatusCode, method, path, respBody)
	}

	log.Debug("request completed")

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "application/json") {
		return nil, nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}

	return json.RawMessage(respBody), nil
}

// newAPIError builds an APIError whose message is the compacted JSON body
// when there is one, or the numeric status otherwise.
func newAPIError(status int, method, path string, body []byte) *APIError {
	msg := strconv.Itoa(status)

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && gjson.ValidBytes(trimmed) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err == nil {
			msg = compact.String()
		}
	}

	return &APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Message:    msg,
	}
}

// decode unmarshals raw into out. A nil raw body leaves out untouched.
func decode(raw json.RawMessage, out interface{}, method, path string) error {
	if raw == nil || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}

// get performs a GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path, token string, out interface{}) error {
	raw, err := c.RequestJSON(ctx, path, RequestOptions{Token: token})
	if err != nil {
		return err
	}
	return decode(raw, out, http.MethodGet, path)
}

// send performs a request with a JSON body and decodes the response into
// out when out is non-nil.
func (c *Client) send(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	token string,
	out interface{},
) error {
	raw, err := c.RequestJSON(ctx, path, RequestOptions{
		Method: method,
		Body:   body,
		Token:  token,
	})
	if err != nil {
		return err
	}
	return decode(raw, out, method, path)
}
