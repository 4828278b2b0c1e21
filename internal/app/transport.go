package app

import (
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/five82/coregym/internal/config"
	"github.com/five82/coregym/internal/fetch"
)

// buildTransport returns the HTTP transport selected by cfg.Transport.
func buildTransport(cfg config.Config, logger zerolog.Logger) fetch.Transport {
	httpLog := logger.With().Str("component", "http").Logger()

	if cfg.Transport != config.TransportResty {
		return fetch.NewHTTPTransport(cfg.RequestTimeout, cfg.Debug, httpLog)
	}

	var rt http.RoundTripper = http.DefaultTransport
	if cfg.Debug {
		rt = fetch.NewDebugTransport(rt, httpLog)
	}
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetTransport(rt)
	return fetch.NewRestyTransport(client)
}
