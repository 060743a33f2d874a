package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	formkit "github.com/reoring/formkit"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithToken sends "Authorization: Bearer <token>" on every request. The
// token is opaque to the client.
func WithToken(token string) Option { return func(c *Client) { c.token = token } }

// WithRateLimit caps outgoing requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// Client talks to the forms/instances REST resource. It is safe for
// concurrent use.
type Client struct {
	base    *url.URL
	hc      *http.Client
	token   string
	limiter *rate.Limiter
	log     *slog.Logger
	forms   singleflight.Group
}

// NewClient returns a Client for baseURL, for example
// "http://localhost:8000/api/".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c := &Client{
		base: u,
		hc:   &http.Client{Timeout: 30 * time.Second},
		log:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func formPath(id formkit.SchemaID) string     { return "forms/" + id.String() + "/" }
func instancePath(id formkit.SchemaID) string { return "instances/" + id.String() + "/" }

// ListForms returns every schema visible to the token.
func (c *Client) ListForms(ctx context.Context) ([]formkit.RemoteForm, error) {
	var out []formkit.RemoteForm
	err := c.do(ctx, http.MethodGet, "forms/", nil, &out)
	return out, err
}

// GetForm fetches one schema. Concurrent calls for the same id share one
// request; the shared request is detached from any single caller's
// cancellation and each caller stops waiting when its own ctx is done.
func (c *Client) GetForm(ctx context.Context, id formkit.SchemaID) (formkit.RemoteForm, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.forms.DoChan(id.String(), func() (any, error) {
		var rf formkit.RemoteForm
		err := c.do(shared, http.MethodGet, formPath(id), nil, &rf)
		return rf, err
	})
	select {
	case <-ctx.Done():
		return formkit.RemoteForm{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return formkit.RemoteForm{}, res.Err
		}
		return res.Val.(formkit.RemoteForm), nil
	}
}

// LoadSchema fetches and normalizes one schema.
func (c *Client) LoadSchema(ctx context.Context, id formkit.SchemaID) (formkit.Schema, error) {
	rf, err := c.GetForm(ctx, id)
	if err != nil {
		return formkit.Schema{}, err
	}
	return rf.Schema(), nil
}

func (c *Client) CreateForm(ctx context.Context, p formkit.PublishPayload) (formkit.RemoteForm, error) {
	var rf formkit.RemoteForm
	err := c.do(ctx, http.MethodPost, "forms/", p, &rf)
	return rf, err
}

func (c *Client) UpdateForm(ctx context.Context, id formkit.SchemaID, p formkit.PublishPayload) (formkit.RemoteForm, error) {
	var rf formkit.RemoteForm
	err := c.do(ctx, http.MethodPut, formPath(id), p, &rf)
	return rf, err
}

func (c *Client) DeleteForm(ctx context.Context, id formkit.SchemaID) error {
	return c.do(ctx, http.MethodDelete, formPath(id), nil, nil)
}

func (c *Client) Preview(ctx context.Context, id formkit.SchemaID) (Preview, error) {
	var p Preview
	err := c.do(ctx, http.MethodGet, formPath(id)+"preview/", nil, &p)
	return p, err
}

// ListInstances returns stored records, newest first.
func (c *Client) ListInstances(ctx context.Context) ([]Instance, error) {
	var out []Instance
	err := c.do(ctx, http.MethodGet, "instances/", nil, &out)
	return out, err
}

func (c *Client) CreateInstance(ctx context.Context, p InstancePayload) (Instance, error) {
	var in Instance
	err := c.do(ctx, http.MethodPost, "instances/", p, &in)
	return in, err
}

func (c *Client) UpdateInstance(ctx context.Context, id formkit.SchemaID, p InstancePayload) (Instance, error) {
	var in Instance
	err := c.do(ctx, http.MethodPut, instancePath(id), p, &in)
	return in, err
}

func (c *Client) DeleteInstance(ctx context.Context, id formkit.SchemaID) error {
	return c.do(ctx, http.MethodDelete, instancePath(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}
	u := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	c.log.Debug("remote request", "method", method, "path", "/"+path, "status", resp.StatusCode, "duration", time.Since(start))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Method: method, Path: "/" + path, StatusCode: resp.StatusCode, Body: data}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// StatusCode returns the HTTP status of a *Error in err's chain, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
