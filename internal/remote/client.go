package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nerrad567/device-registrar/internal/device"
)

const (
	// apiPrefix is prepended to every route.
	apiPrefix = "/api/v1"

	// TokenSubject identifies the registrar in bearer tokens.
	TokenSubject = "registrar"

	// tokenTTL bounds how long a bearer token is accepted.
	tokenTTL = time.Minute

	// defaultTimeout applies when Config.Timeout is zero.
	defaultTimeout = 10 * time.Second

	// maxErrorBody limits how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Config contains the HTTP registry connection settings.
type Config struct {
	// BaseURL is the registry root, e.g. "http://registry:8080".
	BaseURL string

	// TokenSecret signs bearer tokens. Empty disables authentication.
	TokenSecret string

	// Timeout bounds each request.
	Timeout time.Duration
}

// Client talks to a device registry over its REST API.
type Client struct {
	baseURL *url.URL
	secret  []byte
	http    *http.Client
}

// New creates a Client. No request is made until the first call.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var secret []byte
	if cfg.TokenSecret != "" {
		secret = []byte(cfg.TokenSecret)
	}

	return &Client{
		baseURL: u,
		secret:  secret,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// PutDeviceProperties replaces the given properties of a device.
func (c *Client) PutDeviceProperties(ctx context.Context, name string, props device.Properties) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", device.ErrInvalidDevice)
	}
	if props == nil {
		props = device.Properties{}
	}

	q := url.Values{"device": {name}}
	return c.do(ctx, http.MethodPut, "/devices/properties", q, props, nil, device.ErrDeviceNotFound)
}

// AddDevice registers a device.
func (c *Client) AddDevice(ctx context.Context, desc device.Descriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/devices", nil, desc, nil, device.ErrDeviceNotFound)
}

// DeleteServer removes a server and its devices.
func (c *Client) DeleteServer(ctx context.Context, server string) error {
	q := url.Values{"server": {server}}
	return c.do(ctx, http.MethodDelete, "/servers", q, nil, nil, device.ErrServerNotFound)
}

// UnexportServer marks every device of a server as not exported.
func (c *Client) UnexportServer(ctx context.Context, server string) error {
	q := url.Values{"server": {server}}
	return c.do(ctx, http.MethodPost, "/servers/unexport", q, nil, nil, device.ErrServerNotFound)
}

// ImportDevice fetches the registry record of a device.
func (c *Client) ImportDevice(ctx context.Context, name string) (device.DeviceInfo, error) {
	var info device.DeviceInfo
	q := url.Values{"device": {name}}
	if err := c.do(ctx, http.MethodGet, "/devices/import", q, nil, &info, device.ErrDeviceNotFound); err != nil {
		return device.DeviceInfo{}, err
	}
	return info, nil
}

// do performs one request. A non-nil out receives the decoded 2xx body.
// notFound is the error a 404 maps to on this route.
func (c *Client) do(ctx context.Context, method, route string, query url.Values, body, out any, notFound error) error {
	u := *c.baseURL
	u.Path += apiPrefix + route
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s request: %w", method, route, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("building %s %s request: %w", method, route, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.secret != nil {
		token, err := c.token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, route, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, notFound)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, route, err)
	}
	return nil
}

// token signs a fresh bearer token.
func (c *Client) token() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   TokenSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing registry token: %w", err)
	}
	return signed, nil
}

// statusError maps a non-2xx response onto a device error where one applies.
func statusError(resp *http.Response, notFound error) error {
	msg := readErrorMessage(resp)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = notFound
	case http.StatusConflict:
		sentinel = device.ErrDeviceExists
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = device.ErrPermissionDenied
	default:
		return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, msg)
	}

	return fmt.Errorf("%w: %s", sentinel, msg)
}

// readErrorMessage extracts the message of a JSON error body, falling back to the raw text.
func readErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return http.StatusText(resp.StatusCode)
	}

	var apiErr apiError
	if err := json.Unmarshal(data, &apiErr); err != nil {
		return strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		return http.StatusText(resp.StatusCode)
	}
	return apiErr.Message
}
