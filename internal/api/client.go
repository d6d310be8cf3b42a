package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lienzo/lienzo-go/internal/logging"
	"github.com/lienzo/lienzo-go/internal/session"
)

const defaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// Store is the persistent session store the transport reads tokens from.
	Store session.Store
	// Timeout bounds each HTTP request end to end.
	Timeout time.Duration
	// RequestsPerMin throttles outgoing requests; zero disables throttling.
	RequestsPerMin int
	RequestBurst   int
	// OnSessionExpired runs after a failed silent refresh has cleared the
	// session. The terminal front end uses it to drop back to the login prompt.
	OnSessionExpired func()
	// Transport overrides the underlying round tripper. Useful for tests.
	Transport http.RoundTripper
}

// Client is the configured HTTP client behind every service. It owns the
// cookie jar carrying the ambient refresh credential and the transport
// implementing the bearer-attach and silent-refresh protocol.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient constructs a Client rooted at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, errors.New("api: session store must not be nil")
	}

	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMin > 0 {
		burst := opts.RequestBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMin)), burst)
	}

	transport := &authTransport{
		base:       base,
		store:      opts.Store,
		refreshURL: parsed.String() + "/auth/refresh",
		limiter:    limiter,
		onExpired:  opts.OnSessionExpired,
		// The refresh call bypasses the auth transport so it can never
		// recurse into another refresh; it shares the jar for the ambient
		// session cookie.
		refreshClient: &http.Client{Jar: jar, Timeout: timeout, Transport: base},
	}

	return &Client{
		baseURL: parsed,
		http:    &http.Client{Jar: jar, Timeout: timeout, Transport: transport},
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// doJSON performs one JSON request. body and out may each be nil. Non-2xx
// responses decode into *Error.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx = logging.WithRequestID(ctx, uuid.NewString())

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// getPage fetches one page of a listing endpoint, enforcing the envelope
// contract from decodePage.
func getPage[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	ctx = logging.WithRequestID(ctx, uuid.NewString())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return Page[T]{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Page[T]{}, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page[T]{}, decodeError(resp)
	}
	return decodePage[T](resp.Body)
}

// FilePart is one binary part of a multipart upload.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// doMultipart posts a multipart form holding a JSON "data" part plus any
// number of file parts, matching the upload contract of the publication and
// profile endpoints.
func (c *Client) doMultipart(ctx context.Context, method, path string, data any, files []FilePart, out any) error {
	ctx = logging.WithRequestID(ctx, uuid.NewString())

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode data part: %w", err)
		}
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="data"`)
		header.Set("Content-Type", "application/json")
		part, err := form.CreatePart(header)
		if err != nil {
			return fmt.Errorf("create data part: %w", err)
		}
		if _, err := part.Write(encoded); err != nil {
			return fmt.Errorf("write data part: %w", err)
		}
	}

	for _, file := range files {
		part, err := form.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return fmt.Errorf("create file part %q: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("write file part %q: %w", file.Field, err)
		}
	}

	if err := form.Close(); err != nil {
		return fmt.Errorf("finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
