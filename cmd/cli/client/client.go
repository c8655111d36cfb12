package client

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/crucial707/vigil/cmd/cli/config"
	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		msg += " (" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprintf("API error %d: %s", e.Status, msg)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Client talks to the Vigil API with an optional bearer token.
type Client struct {
	http *resty.Client
}

func New(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

// FromEnv builds a client for the configured API using the stored token.
func FromEnv() (*Client, error) {
	token, err := config.LoadToken()
	if err != nil {
		return nil, err
	}
	return New(config.APIURL(), token), nil
}

// Anonymous builds a client without credentials, for login.
func Anonymous() *Client {
	return New(config.APIURL(), "")
}

func (c *Client) Get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	return c.do(req, http.MethodGet, path, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(c.http.R().SetContext(ctx).SetBody(body), http.MethodPost, path, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	return c.do(req, http.MethodPut, path, out)
}

// Upload sends file as the multipart "file" field.
func (c *Client) Upload(ctx context.Context, path, file string, out interface{}) error {
	return c.do(c.http.R().SetContext(ctx).SetFile("file", file), http.MethodPost, path, out)
}

func (c *Client) do(req *resty.Request, method, path string, out interface{}) error {
	var apiErr errorBody
	req.SetError(&apiErr)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to call API: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return &APIError{Status: resp.StatusCode(), Message: msg, Fields: apiErr.Fields}
	}
	return nil
}
