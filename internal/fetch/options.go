package fetch

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Endpoint is the fixed request configuration a Client is bound to.
type Endpoint struct {
	URL    string
	Method string // empty means GET
	Header http.Header
	Body   []byte // sent by the automatic fetch and Refetch
}

func (e Endpoint) clone() Endpoint {
	out := Endpoint{
		URL:    e.URL,
		Method: strings.ToUpper(strings.TrimSpace(e.Method)),
		Header: e.Header.Clone(),
	}
	if len(e.Body) > 0 {
		out.Body = append([]byte(nil), e.Body...)
	}
	return out
}

// IsRead reports whether the endpoint is fetched automatically on Attach.
func (e Endpoint) IsRead() bool {
	m := strings.ToUpper(strings.TrimSpace(e.Method))
	return m == "" || m == http.MethodGet
}

func (e Endpoint) method() string {
	if e.Method == "" {
		return http.MethodGet
	}
	return e.Method
}

// Option configures a Client in New.
type Option func(*options)

type options struct {
	transport  Transport
	userAgent  string
	latestOnly bool
	notify     func()
	logger     zerolog.Logger
}

const defaultUserAgent = "coregym/0.1"

func defaultOptions() options {
	return options{
		transport: http.DefaultClient,
		userAgent: defaultUserAgent,
		logger:    zerolog.Nop(),
	}
}

// WithTransport replaces the default http.Client.
func WithTransport(t Transport) Option {
	return func(o *options) {
		if t != nil {
			o.transport = t
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every attempt.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if strings.TrimSpace(ua) != "" {
			o.userAgent = ua
		}
	}
}

// WithLatestOnly makes the client drop completions of attempts that were
// superseded by a newer one. Without it the last attempt to settle wins.
func WithLatestOnly() Option {
	return func(o *options) { o.latestOnly = true }
}

// WithNotify registers fn to run after every state change. fn runs on the
// goroutine that changed the state and must not block.
func WithNotify(fn func()) Option {
	return func(o *options) { o.notify = fn }
}

// WithLogger sets the logger used for attempt tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}
