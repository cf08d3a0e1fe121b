package client

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Option configures the [Client] returned by [Build]. Options apply to
// every request the client later sends, whether it is driven directly
// through [Client.Send] or by a throttler.
type Option func(*options) error

type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	noFollowRedirects bool
	maxBodySize       int64
	logger            *slog.Logger
}

// WithClient sends through hc instead of a fresh [http.Client].
// Its Transport is reused unless WithTransport is also given.
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets the [http.RoundTripper] under [Client.Send], such as a
// throttle.RoundTripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout bounds each [Client.Send], body buffering included.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent stamps the User-Agent header on every sent request,
// overriding any value set through [Spec] headers.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithNoFollowRedirects makes [Client.Send] return the redirect response
// itself, to be checked against the expected code.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithMaxBodySize caps the number of bytes [Client.Send] buffers per response.
func WithMaxBodySize(n int64) Option {
	return func(c *options) error {
		if n <= 0 {
			return errors.New("max body size must be positive")
		}
		c.maxBodySize = n
		return nil
	}
}

// WithLogger sets the logger used for body cleanup failures. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// userAgent sets the User-Agent header on a clone of each request.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// DecodeOption tunes [Response.Decode].
type DecodeOption func(options *decodeOpts)

type decodeOpts struct {
	useJSONNum bool
}

// WithJSONNumb decodes numbers into [json.Number] rather than float64.
func WithJSONNumb() DecodeOption {
	return func(opts *decodeOpts) {
		opts.useJSONNum = true
	}
}

// RequestOption shapes the *http.Request built by [Request]. [Client.Prepare]
// derives them from the [Spec] fields.
type RequestOption func(options *requestOpts) error

type requestOpts struct {
	body        any
	contentType *string
	cookies     []*http.Cookie
	headers     map[string][]string
}

// WithPayload JSON-encodes body as the request body ([Spec].Payload).
func WithPayload(body any) RequestOption {
	return func(opts *requestOpts) error {
		opts.body = body

		return nil
	}
}

// WithContentType replaces the application/json default ([Spec].ContentType).
func WithContentType(contentType string) RequestOption {
	return func(opts *requestOpts) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}

		opts.contentType = &contentType

		return nil
	}
}

// WithHeaders adds headers to the prepared request ([Spec].Headers).
func WithHeaders(headers map[string][]string) RequestOption {
	return func(opts *requestOpts) error {
		opts.headers = headers

		return nil
	}
}

// WithCookies attaches cookies to the prepared request ([Spec].Cookies).
func WithCookies(cookies ...*http.Cookie) RequestOption {
	return func(opts *requestOpts) error {
		opts.cookies = cookies

		return nil
	}
}
