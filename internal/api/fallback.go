package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// patchWithFallback sends body with PATCH and, when the method itself looks
// refused or the request never reached the server, repeats it exactly once
// as POST with the same body and token. Any other failure is returned as is.
func (c *Client) patchWithFallback(
	ctx context.Context,
	path string,
	body interface{},
	token string,
) (json.RawMessage, error) {
	raw, err := c.RequestJSON(ctx, path, RequestOptions{
		Method: http.MethodPatch,
		Body:   body,
		Token:  token,
	})
	if err == nil {
		return raw, nil
	}
	if !IsMethodBlocked(err) && !IsNetworkError(err) {
		return nil, err
	}

	c.log.WithError(err).WithField("path", path).Warn("PATCH refused, retrying as POST")

	return c.RequestJSON(ctx, path, RequestOptions{
		Method: http.MethodPost,
		Body:   body,
		Token:  token,
	})
}
