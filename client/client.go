package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Client turns a [Spec] into a buffered [Response] in two steps,
// Prepare and Send, which a throttler can run at different times.
type Client struct {
	c           *http.Client
	logger      *slog.Logger
	maxBodySize int64
}

// Build returns a Client sending through http.DefaultTransport unless
// configured otherwise.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:           &http.Client{},
		logger:      slog.Default(),
		maxBodySize: defaultMaxBodySize,
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.maxBodySize > 0 {
		client.maxBodySize = opts.maxBodySize
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	client.c.Transport = transport

	return client, nil
}

// Prepare validates spec and builds the request it describes.
// The request is bound to ctx.
func (c *Client) Prepare(ctx context.Context, spec Spec) (*Prepared, error) {
	if err := Validate(spec); err != nil {
		return nil, fmt.Errorf("validating spec: %w", err)
	}

	reqURL, err := url.Parse(spec.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if len(spec.Query) > 0 {
		q := reqURL.Query()
		for k, v := range spec.Query {
			q.Set(k, v)
		}
		reqURL.RawQuery = q.Encode()
	}

	opts := []RequestOption{WithHeaders(spec.Headers), WithCookies(spec.Cookies...)}
	if spec.Payload != nil {
		opts = append(opts, WithPayload(spec.Payload))
	}
	if spec.ContentType != "" {
		opts = append(opts, WithContentType(spec.ContentType))
	}

	req, err := Request(ctx, reqURL, spec.Method, opts...)
	if err != nil {
		return nil, err
	}

	return &Prepared{Req: req, ExpCode: spec.ExpCode}, nil
}

// Send executes the prepared request and buffers the response body.
// Trace context carried by ctx is propagated in the request headers.
// A non-zero ExpCode is enforced with an [UnexpectedStatusError].
func (c *Client) Send(ctx context.Context, prep *Prepared) (*Response, error) {
	if prep == nil || prep.Req == nil {
		return nil, errors.New("prepared request must not be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(prep.Req.Header))

	var out *Response
	bufferFn := func(resp *http.Response) error {
		body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		if int64(len(body)) > c.maxBodySize {
			return fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.maxBodySize)
		}

		out = &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		}

		return nil
	}

	if err := c.exec(prep.Req, prep.ExpCode, bufferFn); err != nil {
		return nil, err
	}

	return out, nil
}

// exec runs the request and injected function on success after validating
// the expected status code. An expCode of zero accepts any status.
func (c *Client) exec(req *http.Request, expCode int, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("exec http do: %w", err)
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err = io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err = resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if expCode != 0 && resp.StatusCode != expCode {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		statusErr := ErrUnexpectedStatusCode
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			statusErr = errors.Join(ErrAuthFailure, ErrUnexpectedStatusCode)
		}

		return &UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(b),
			Err:        statusErr,
		}
	}

	if err := fn(resp); err != nil {
		discardBody = false
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// Request instantiates an *http.Request with the provided information.
// Content-Type defaults to `application/json` if unspecified via WithContentType.
func Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	var settings requestOpts
	for _, opt := range opts {
		err := opt(&settings)
		if err != nil {
			return nil, err
		}
	}

	var payload bytes.Buffer
	if settings.body != nil {
		if err := json.NewEncoder(&payload).Encode(settings.body); err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), &payload)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for _, cookie := range settings.cookies {
		req.AddCookie(cookie)
	}

	var contentType string
	if settings.contentType == nil {
		contentType = "application/json"
	} else {
		contentType = *settings.contentType
	}

	req.Header.Set("Content-Type", contentType)
	for k, v := range settings.headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	return req, nil
}
