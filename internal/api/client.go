package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rrhhdev/timesheet-client/internal/apierrors"
	"github.com/rrhhdev/timesheet-client/internal/models"
)

// TokenSource provides credentials to outbound requests and receives the new
// pair after a refresh. The session store implements it.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	SetCredentials(models.Credentials)
}

// Client is the single gateway every store talks through. It attaches the
// access token to each request, refreshes it once on a 401 and replays the
// original request, and retries mutations a bounded number of times on
// transient failures.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	retries int

	// refreshMu serializes credential refreshes so concurrent 401s do not
	// race each other into the refresh endpoint.
	refreshMu sync.Mutex
}

// New creates a gateway client. retries is the extra transport-level attempts
// for mutating calls (the 401 refresh replay is separate and always single).
func New(baseURL string, timeout time.Duration, retries int, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		retries: retries,
	}
}

// Do performs one API call and returns the response body. Error responses
// decode into *apierrors.APIError; a 401 that survives the refresh attempt
// comes back wrapped in apierrors.ErrSessionExpired.
func (c *Client) Do(ctx context.Context, method, path string, body any, params url.Values) ([]byte, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	attempts := 1
	if c.retries > 0 && method != http.MethodGet {
		attempts += c.retries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		data, retryable, err := c.once(ctx, method, path, payload, params)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// once runs one logical request, including the single refresh-and-replay for
// a 401. The second return value reports whether the failure is transient
// enough for a transport-level retry.
func (c *Client) once(ctx context.Context, method, path string, payload []byte, params url.Values) ([]byte, bool, error) {
	resp, err := c.send(ctx, method, path, payload, params, c.tokens.AccessToken())
	if err != nil {
		return nil, true, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		original := decodeError(resp)
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			return nil, false, fmt.Errorf("%w: %v", apierrors.ErrSessionExpired, original)
		}
		resp, err = c.send(ctx, method, path, payload, params, c.tokens.AccessToken())
		if err != nil {
			return nil, true, fmt.Errorf("%s %s (replay): %w", method, path, err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			// One refresh per original request; do not loop.
			return nil, false, fmt.Errorf("%w: %v", apierrors.ErrSessionExpired, decodeError(resp))
		}
	}

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode >= 500, decodeError(resp)
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}
	return data, false, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, params url.Values, token string) (*http.Response, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		// The backend expects the raw token, no "Bearer " prefix.
		req.Header.Set("Authorization", token)
	}
	return c.http.Do(req)
}

// refresh exchanges the refresh token for a new credential pair and installs
// it in the token source.
func (c *Client) refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		return fmt.Errorf("no refresh token")
	}

	payload, err := encodeBody(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, "/refresh", payload, nil, "")
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	defer resp.Body.Close()

	var creds models.Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return fmt.Errorf("refresh: decoding credentials: %w", err)
	}
	c.tokens.SetCredentials(creds)
	return nil
}

// GetJSON fetches path and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, out any) error {
	return c.json(ctx, http.MethodGet, path, nil, params, out)
}

// PostJSON posts body to path, decoding any response into out (nil to ignore).
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.json(ctx, http.MethodPost, path, body, nil, out)
}

// PutJSON puts body to path, decoding any response into out (nil to ignore).
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.json(ctx, http.MethodPut, path, body, nil, out)
}

// DeleteJSON issues a DELETE with an optional body.
func (c *Client) DeleteJSON(ctx context.Context, path string, body any, params url.Values) error {
	return c.json(ctx, http.MethodDelete, path, body, params, nil)
}

func (c *Client) json(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	data, err := c.Do(ctx, method, path, body, params)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

// Download posts body to path and returns the raw blob plus the filename from
// the Content-Disposition header, if any. Error responses surface the
// server's payload text.
func (c *Client) Download(ctx context.Context, path string, body any) ([]byte, string, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.send(ctx, http.MethodPost, path, payload, nil, c.tokens.AccessToken())
	if err != nil {
		return nil, "", fmt.Errorf("POST %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return nil, "", decodeError(resp)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("POST %s: reading blob: %w", path, err)
	}

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, dparams, err := mime.ParseMediaType(cd); err == nil {
			filename = dparams["filename"]
		}
	}
	return data, filename, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return data, nil
}

// decodeError turns an error response into an *apierrors.APIError, keeping
// the server's message and details when the body carries the structured
// envelope and falling back to the raw text otherwise.
func decodeError(resp *http.Response) error {
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	apiErr := &apierrors.APIError{StatusCode: resp.StatusCode}
	if len(data) > 0 && json.Unmarshal(data, apiErr) == nil && apiErr.Message != "" {
		return apiErr
	}

	message := http.StatusText(resp.StatusCode)
	if len(data) > 0 {
		message = string(data)
	}
	return apierrors.New(resp.StatusCode, apierrors.ErrCodeInternalError, message)
}
