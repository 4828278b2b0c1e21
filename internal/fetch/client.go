package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Transport issues a single HTTP request. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Ensure *http.Client implements Transport at compile time.
var _ Transport = (*http.Client)(nil)

// maxErrorBody bounds how much of a failed response is read into
// HTTPError.RawBody.
const maxErrorBody = 64 * 1024

// State is a copy of a Client's observable state.
//
// Data is nil when no value is held. It is shared with the client and must
// be treated as read-only.
type State[T any] struct {
	Data      *T
	Loading   bool
	Error     string
	Err       error
	Body      Body
	UpdatedAt time.Time
}

// Client issues requests against one Endpoint and tracks the outcome of
// each attempt. It is safe for concurrent use.
type Client[T any] struct {
	endpoint Endpoint
	opts     options

	root       context.Context
	cancelRoot context.CancelFunc
	stopAttach func() bool
	wg         sync.WaitGroup

	mu       sync.RWMutex
	state    State[T]
	seq      uint64
	attached bool
	detached bool
}

// New builds a Client for endpoint. The URL is not validated; a bad URL
// surfaces as a TransportError on the first attempt.
func New[T any](endpoint Endpoint, opts ...Option) *Client[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ep := endpoint.clone()
	root, cancel := context.WithCancel(context.Background())
	return &Client[T]{
		endpoint:   ep,
		opts:       o,
		root:       root,
		cancelRoot: cancel,
		state:      State[T]{Loading: ep.IsRead()},
	}
}

// Snapshot returns the current state.
func (c *Client[T]) Snapshot() State[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.state
	if len(c.state.Body.Raw) > 0 {
		snap.Body.Raw = append([]byte(nil), c.state.Body.Raw...)
	}
	return snap
}

// Attach marks the client as in use. Read endpoints start their first
// request immediately; write endpoints settle to Loading=false and wait for
// Post. When ctx ends the client is detached. Attach is a no-op after the
// first call or after Detach.
func (c *Client[T]) Attach(ctx context.Context) {
	c.mu.Lock()
	if c.attached || c.detached {
		c.mu.Unlock()
		return
	}
	c.attached = true
	auto := c.endpoint.IsRead()
	c.state.Loading = auto
	if auto {
		c.state.Error = ""
		c.state.Err = nil
	}
	if ctx != nil {
		c.stopAttach = context.AfterFunc(ctx, c.Detach)
	}
	c.mu.Unlock()
	c.notify()

	if auto {
		c.spawn(c.root)
	}
}

// Detach cancels every in-flight attempt. Completions that arrive later are
// discarded. A detached client never changes state again.
func (c *Client[T]) Detach() {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return
	}
	c.detached = true
	stop := c.stopAttach
	c.mu.Unlock()

	c.cancelRoot()
	if stop != nil {
		stop()
	}
}

// Detached reports whether Detach has been called.
func (c *Client[T]) Detached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.detached
}

// Wait blocks until every attempt started by Attach or Refetch returns.
func (c *Client[T]) Wait() {
	c.wg.Wait()
}

// Refetch re-issues the endpoint's configured request in the background.
// The returned func cancels this attempt only.
func (c *Client[T]) Refetch(ctx context.Context) (cancel func()) {
	return c.spawn(ctx)
}

// RefetchWait re-issues the configured request and waits for it to settle.
func (c *Client[T]) RefetchWait(ctx context.Context) (*T, error) {
	return c.execute(ctx, c.endpoint.method(), nil, nil, c.endpoint.Body)
}

// Post sends body as JSON with method POST and waits for the response.
// A nil result with a nil error means either an empty (204) response or a
// cancelled attempt.
func (c *Client[T]) Post(ctx context.Context, body any) (*T, error) {
	return c.PostWithHeader(ctx, body, nil)
}

// PostWithHeader is Post with per-call headers that take precedence over
// the endpoint's headers.
func (c *Client[T]) PostWithHeader(ctx context.Context, body any, header http.Header) (*T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	defaults := http.Header{}
	defaults.Set("Content-Type", "application/json")
	return c.execute(ctx, http.MethodPost, defaults, header, payload)
}

func (c *Client[T]) spawn(ctx context.Context) func() {
	actx, cancel := context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		_, _ = c.execute(actx, c.endpoint.method(), nil, nil, c.endpoint.Body)
	}()
	return cancel
}

func (c *Client[T]) execute(ctx context.Context, method string, defaults, call http.Header, payload []byte) (*T, error) {
	actx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.root, cancel)
	defer stop()

	seq, ok := c.begin(actx)
	if !ok {
		return nil, nil
	}

	log := c.opts.logger.With().
		Str("method", method).
		Str("url", c.endpoint.URL).
		Uint64("attempt", seq).
		Logger()
	log.Debug().Msg("request started")

	started := time.Now()
	data, body, err := c.roundTrip(actx, method, c.header(defaults, call), payload)

	applied, canceled := c.settle(actx, seq, data, body, err)
	if canceled {
		log.Debug().Dur("elapsed", time.Since(started)).Msg("request cancelled")
		return nil, nil
	}
	if !applied {
		log.Debug().Msg("request superseded")
	}
	if err != nil {
		ev := log.Warn().Err(err).Dur("elapsed", time.Since(started))
		if code, ok := StatusCode(err); ok {
			ev = ev.Int("status", code)
		}
		ev.Msg("request failed")
		return nil, err
	}
	log.Debug().Dur("elapsed", time.Since(started)).Str("body", body.Kind.String()).Msg("request settled")
	return data, nil
}

func (c *Client[T]) begin(ctx context.Context) (uint64, bool) {
	c.mu.Lock()
	if c.detached || isCanceled(ctx) {
		c.mu.Unlock()
		return 0, false
	}
	c.seq++
	seq := c.seq
	c.state.Loading = true
	c.state.Error = ""
	c.state.Err = nil
	c.mu.Unlock()

	c.notify()
	return seq, true
}

// settle records the outcome of attempt seq. The cancellation check and the
// write share the lock so a concurrent Detach cannot interleave.
func (c *Client[T]) settle(ctx context.Context, seq uint64, data *T, body Body, err error) (applied, canceled bool) {
	c.mu.Lock()
	if c.detached || isCanceled(ctx) {
		c.mu.Unlock()
		return false, true
	}
	if c.opts.latestOnly && seq != c.seq {
		c.mu.Unlock()
		return false, false
	}
	if err != nil {
		c.state.Data = nil
		c.state.Body = Body{}
		c.state.Error = err.Error()
		c.state.Err = err
	} else {
		c.state.Data = data
		c.state.Body = body
		c.state.Error = ""
		c.state.Err = nil
	}
	c.state.Loading = false
	c.state.UpdatedAt = time.Now()
	c.mu.Unlock()

	c.notify()
	return true, false
}

func (c *Client[T]) header(defaults, call http.Header) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", c.opts.userAgent)
	for _, layer := range []http.Header{defaults, c.endpoint.Header, call} {
		for k, vs := range layer {
			h.Del(k)
			for _, v := range vs {
				h.Add(k, v)
			}
		}
	}
	return h
}

func (c *Client[T]) roundTrip(ctx context.Context, method string, header http.Header, payload []byte) (*T, Body, error) {
	var reader io.Reader
	if len(payload) > 0 {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint.URL, reader)
	if err != nil {
		return nil, Body{}, &TransportError{Method: method, URL: c.endpoint.URL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header = header

	resp, err := c.opts.transport.Do(req)
	if err != nil {
		return nil, Body{}, &TransportError{Method: method, URL: c.endpoint.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			raw = nil
		}
		return nil, Body{}, newHTTPError(resp.StatusCode, statusText(resp), string(raw))
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, Body{Kind: BodyNone}, nil
	}

	ct := resp.Header.Get("Content-Type")
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Body{}, &TransportError{Method: method, URL: c.endpoint.URL, Err: fmt.Errorf("read response: %w", err)}
	}
	body := Body{Kind: BodyText, ContentType: ct, Raw: raw}
	if isJSONContentType(ct) {
		body.Kind = BodyJSON
	}
	data, err := decodeBody[T](body)
	if err != nil {
		return nil, Body{}, err
	}
	return data, body, nil
}

func (c *Client[T]) notify() {
	if c.opts.notify != nil {
		c.opts.notify()
	}
}

func isCanceled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
