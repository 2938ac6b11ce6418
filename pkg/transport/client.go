package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/metrics"
)

type Config struct {
	BaseURL string
	// System labels metrics and log lines, e.g. "powerdns_admin" or "phpipam".
	System        string
	Auth          Auth
	SkipTLSVerify bool
	Polarity      Polarity
	Logger        logging.Logger
}

// Client performs authenticated JSON calls against one base URL. It is not
// pooled: each Client owns a non-keepalive transport for the life of a run.
type Client struct {
	baseURL string
	system  string
	auth    Auth
	http    *http.Client
	logger  logging.Logger
}

type Response struct {
	StatusCode int
	Body       []byte
}

func New(cfg Config) *Client {
	tr := cleanhttp.DefaultTransport()
	tr.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: InsecureSkipVerify(cfg.SkipTLSVerify, cfg.Polarity),
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		system:  cfg.System,
		auth:    cfg.Auth,
		http:    &http.Client{Transport: tr},
		logger:  logging.OrDiscard(cfg.Logger),
	}
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

// Do sends payload (JSON encoded when non-nil) and returns the response
// whatever its status. Only transport failures produce an error.
func (c *Client) Do(ctx context.Context, method, path string, payload any) (*Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := c.URL(path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	c.setHeaders(req)

	c.logger.Debug("sending request", "system", c.system, "method", method, "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncrementRequest(c.system, method, 0)
		return nil, fmt.Errorf("error calling %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	metrics.IncrementRequest(c.system, method, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response from %s %s: %w", method, url, err)
	}
	c.logger.Debug("received response", "system", c.system, "method", method, "status", resp.StatusCode)

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// Expect calls Do and turns any status outside codes into an *APIError.
func (c *Client) Expect(ctx context.Context, method, path string, payload any, codes ...int) (*Response, error) {
	resp, err := c.Do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		if resp.StatusCode == code {
			return resp, nil
		}
	}
	return resp, &APIError{
		Method:     method,
		URL:        c.URL(path),
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("error decoding response (status %d): %w", r.StatusCode, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.auth != nil {
		c.auth.Apply(req)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
