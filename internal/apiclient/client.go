// Package apiclient issues single JSON requests against the infusion
// platform API and folds every outcome into a Result.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

// Request describes one call. A nil Body means no request body is sent at
// all; an empty Token means no Authorization header.
type Request struct {
	BaseURL string
	Path    string
	Method  Method
	Token   string
	Body    any
}

// Requester is anything that can perform a Request.
type Requester interface {
	Do(ctx context.Context, req Request) Result[Payload]
}

// Payload is a response body as received.
type Payload struct {
	Status      int
	ContentType string
	JSON        bool
	Raw         []byte
}

// Pretty renders JSON with two-space indentation and text verbatim. A JSON
// string is rendered unquoted.
func (p Payload) Pretty() string {
	if !p.JSON {
		return string(p.Raw)
	}
	var s string
	if err := json.Unmarshal(p.Raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, p.Raw, "", "  "); err != nil {
		return string(p.Raw)
	}
	return buf.String()
}

type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a Client. Any timeout comes from httpClient itself.
func New(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) Do(ctx context.Context, req Request) Result[Payload] {
	method := req.Method
	if method == "" {
		method = MethodGet
	}
	target := req.BaseURL + req.Path

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return Fail[Payload](KindRequest, "encode request body: "+err.Error(), 0)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(method), target, body)
	if err != nil {
		return Fail[Payload](KindRequest, err.Error(), 0)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "url", target, "err", err)
		return Fail[Payload](KindTransport, err.Error(), 0)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fail[Payload](KindTransport, "read response body: "+err.Error(), 0)
	}
	c.logger.Debug("api request", "method", method, "url", target, "status", resp.StatusCode, "bytes", len(raw))

	p := Payload{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         raw,
	}
	p.JSON = strings.Contains(p.ContentType, "application/json")
	if p.JSON && len(raw) > 0 && !json.Valid(raw) {
		return Fail[Payload](KindInvalidResponse,
			fmt.Sprintf("invalid JSON in response body (HTTP %d)", resp.StatusCode), resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := p.Pretty()
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return Fail[Payload](KindHTTPStatus, msg, resp.StatusCode)
	}
	return Success(p)
}
