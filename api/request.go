package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// envelope is the part every Steamlytics response shares.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// fetch performs a GET on rawURL and returns the body once it is known to
// be JSON. A Location header is followed exactly once; whatever the second
// response holds is final.
func (c *Client) fetch(ctx context.Context, rawURL string) (body []byte, status int, err error) {
	reqID := uuid.NewString()
	target := rawURL

	for hop := 0; ; hop++ {
		resp, err := c.doRequest(ctx, target)
		if err != nil {
			return nil, 0, err
		}

		loc := resp.Header.Get("Location")
		if loc != "" && hop == 0 {
			resp.Body.Close()
			next, err := resp.Request.URL.Parse(loc)
			if err != nil {
				return nil, resp.StatusCode, fmt.Errorf("%w: bad redirect target %q: %w", ErrTransport, loc, err)
			}
			c.logger.Debug("following redirect",
				"request_id", reqID,
				"from", redactKey(target),
				"to", redactKey(next.String()),
			)
			target = next.String()
			continue
		}

		body, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, resp.StatusCode, fmt.Errorf("%w: read response: %w", ErrTransport, err)
		}

		c.logger.Debug("steamlytics response",
			"request_id", reqID,
			"url", redactKey(target),
			"status", resp.StatusCode,
			"hops", hop,
			"bytes", len(body),
		)

		if !json.Valid(body) {
			var probe any
			cause := json.Unmarshal(body, &probe)
			return nil, resp.StatusCode, &ParseError{
				Message:    parseFailureMessage,
				StatusCode: resp.StatusCode,
				Cause:      cause,
			}
		}
		return body, resp.StatusCode, nil
	}
}

// doRequest issues a single GET. The caller closes the body.
func (c *Client) doRequest(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if len(resp.Header) == 0 {
		resp.Body.Close()
		return nil, ErrTransport
	}
	return resp, nil
}

// getJSON fetches rawURL, checks the success flag and decodes the payload
// into result.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, result any) error {
	body, status, err := c.fetch(ctx, rawURL)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &ParseError{Message: parseFailureMessage, StatusCode: status, Cause: err}
	}
	if !env.Success {
		c.logger.Warn("steamlytics request failed",
			"endpoint", endpoint,
			"status", status,
			"message", env.Message,
		)
		return &UpstreamError{Endpoint: endpoint, StatusCode: status, Message: env.Message}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &ParseError{Message: parseFailureMessage, StatusCode: status, Cause: err}
	}
	return nil
}

// accountURL builds a URL on the account host. path must already be
// escaped.
func (c *Client) accountURL(path string, query url.Values) string {
	return c.buildURL(c.accountHost, path, query)
}

// marketURL builds a URL on the market host. path must already be escaped.
func (c *Client) marketURL(path string, query url.Values) string {
	return c.buildURL(c.marketHost, path, query)
}

func (c *Client) buildURL(host, path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.apiKey)
	return c.scheme + "://" + host + path + "?" + query.Encode()
}

// redactKey hides the API key in URLs that end up in logs.
func redactKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// pathEscape escapes each segment and joins them with "/".
func pathEscape(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
