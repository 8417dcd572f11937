// Package datawrapper pushes data into existing Datawrapper charts and
// republishes them.
package datawrapper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.datawrapper.de/v3"

// Client defines the Datawrapper chart operations used to refresh a chart.
type Client interface {
	UploadCSV(ctx context.Context, chartID string, csv []byte) error
	Publish(ctx context.Context, chartID string) (*PublishResponse, error)
}

// PublishResponse is the response from POST /charts/{id}/publish.
type PublishResponse struct {
	Data struct {
		ID              string `json:"id"`
		PublicURL       string `json:"publicUrl"`
		PublicVersion   int    `json:"publicVersion"`
		LastModifiedAt  string `json:"lastModifiedAt"`
		LastPublishedAt string `json:"publishedAt"`
	} `json:"data"`
	URL string `json:"url"`
}

// APIError is returned when Datawrapper responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("datawrapper: HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Datawrapper client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) UploadCSV(ctx context.Context, chartID string, csv []byte) error {
	path := "/charts/" + url.PathEscape(chartID) + "/data"
	req, err := c.newRequest(ctx, http.MethodPut, path, bytes.NewReader(csv))
	if err != nil {
		return eris.Wrapf(err, "datawrapper: upload %s", chartID)
	}
	req.Header.Set("Content-Type", "text/csv")

	if _, err := c.do(req); err != nil {
		return eris.Wrapf(err, "datawrapper: upload %s", chartID)
	}
	return nil
}

func (c *httpClient) Publish(ctx context.Context, chartID string) (*PublishResponse, error) {
	path := "/charts/" + url.PathEscape(chartID) + "/publish"
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "datawrapper: publish %s", chartID)
	}

	data, err := c.do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "datawrapper: publish %s", chartID)
	}

	var resp PublishResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, eris.Wrap(err, "datawrapper: decode publish response")
		}
	}
	return &resp, nil
}

func (c *httpClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return req, nil
}

func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
