package fetch

import (
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// NewHTTPTransport returns an *http.Client with the given timeout. When
// debug is true every request and response is dumped to logger at debug
// level.
func NewHTTPTransport(timeout time.Duration, debug bool, logger zerolog.Logger) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	if debug {
		rt = NewDebugTransport(rt, logger)
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}

type restyTransport struct {
	client *resty.Client
}

// NewRestyTransport adapts a resty client to Transport. The response body
// is left unread so the Client applies its own decoding rules.
func NewRestyTransport(client *resty.Client) Transport {
	return &restyTransport{client: client}
}

func (t *restyTransport) Do(req *http.Request) (*http.Response, error) {
	r := t.client.R().
		SetContext(req.Context()).
		SetDoNotParseResponse(true)
	for k, vs := range req.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}
	resp, err := r.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}
	return resp.RawResponse, nil
}

// debugTransport dumps request/response pairs. Bodies may carry passwords;
// only enable it locally.
type debugTransport struct {
	base   http.RoundTripper
	logger zerolog.Logger
}

// NewDebugTransport wraps base with request/response dump logging.
func NewDebugTransport(base http.RoundTripper, logger zerolog.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &debugTransport{base: base, logger: logger}
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if dump, err := httputil.DumpRequestOut(req, true); err == nil {
		dt.logger.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(dump)).Msg("HTTP request")
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		dt.logger.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if dump, err := httputil.DumpResponse(resp, true); err == nil {
		dt.logger.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(dump)).Msg("HTTP response")
	}
	return resp, nil
}
