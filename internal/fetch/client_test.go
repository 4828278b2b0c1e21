package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workout struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type pendingCall struct {
	req  *http.Request
	resp chan *http.Response
}

// gateTransport hands every request to the test and blocks until the test
// supplies a response. It ignores the request context on purpose so the
// response arrives even after cancellation.
type gateTransport struct {
	calls chan *pendingCall
}

func newGateTransport() *gateTransport {
	return &gateTransport{calls: make(chan *pendingCall, 8)}
}

func (g *gateTransport) Do(req *http.Request) (*http.Response, error) {
	p := &pendingCall{req: req, resp: make(chan *http.Response, 1)}
	g.calls <- p
	return <-p.resp, nil
}

func (g *gateTransport) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case p := <-g.calls:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for request")
		return nil
	}
}

func jsonResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     http.Header{"Content-Type": {"application/json; charset=utf-8"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestAttach_GetFetchesOnceAndReportsLoading(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","title":"Yoga"},{"id":"2","title":"Spin"},{"id":"3","title":"HIIT"}]`))
	}))
	t.Cleanup(server.Close)

	c := New[[]workout](Endpoint{URL: server.URL})
	c.Attach(context.Background())
	t.Cleanup(c.Detach)

	snap := c.Snapshot()
	assert.True(t, snap.Loading, "loading right after attach")
	assert.Empty(t, snap.Error)

	close(release)
	c.Wait()

	snap = c.Snapshot()
	assert.Equal(t, int32(1), hits.Load())
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	require.NotNil(t, snap.Data)
	require.Len(t, *snap.Data, 3)
	assert.Equal(t, []string{"Yoga", "Spin", "HIIT"}, []string{(*snap.Data)[0].Title, (*snap.Data)[1].Title, (*snap.Data)[2].Title})
	assert.Equal(t, BodyJSON, snap.Body.Kind)
}

func TestAttach_WriteEndpointDoesNotFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(server.Close)

	c := New[any](Endpoint{URL: server.URL, Method: "post"})
	c.Attach(context.Background())
	c.Wait()
	t.Cleanup(c.Detach)

	assert.False(t, c.Snapshot().Loading)
	assert.Equal(t, int32(0), hits.Load())
}

func TestAttach_SecondCallIsNoop(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c := New[any](Endpoint{URL: server.URL})
	c.Attach(context.Background())
	c.Attach(context.Background())
	c.Wait()
	c.Detach()

	assert.Equal(t, int32(1), hits.Load())
}

func TestPost_UnauthorizedIsClassified(t *testing.T) {
	var gotBody map[string]string
	var gotHeader http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c := New[any](Endpoint{URL: server.URL, Method: http.MethodPost})
	c.Attach(context.Background())
	t.Cleanup(c.Detach)

	res, err := c.Post(context.Background(), map[string]string{"Email": "a@b.com", "Password": "wrong"})
	require.Error(t, err)
	assert.Nil(t, res)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.StatusCode)
	assert.Equal(t, "401 Unauthorized", he.Message)
	assert.Empty(t, he.RawBody)

	code, ok := StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, 401, code)

	snap := c.Snapshot()
	assert.Equal(t, "401 Unauthorized", snap.Error)
	assert.Nil(t, snap.Data)
	assert.False(t, snap.Loading)

	assert.Equal(t, "a@b.com", gotBody["Email"])
	assert.Equal(t, "application/json", gotHeader.Get("Accept"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(gotHeader.Get("User-Agent"), "coregym/"))
}

func TestPost_SuccessReturnsDecodedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"a@b.com"}`))
	}))
	t.Cleanup(server.Close)

	type signIn struct {
		Email string `json:"email"`
	}
	c := New[signIn](Endpoint{URL: server.URL, Method: http.MethodPost})
	c.Attach(context.Background())
	t.Cleanup(c.Detach)

	res, err := c.Post(context.Background(), map[string]string{"Email": "a@b.com", "Password": "Secret123"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, signIn{Email: "a@b.com"}, *res)

	snap := c.Snapshot()
	assert.Empty(t, snap.Error)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.Data)
	assert.Equal(t, "a@b.com", snap.Data.Email)

	assert.Equal(t, BodyJSON, snap.Body.Kind)
	assert.JSONEq(t, `{"email":"a@b.com"}`, snap.Body.Text())
	var again signIn
	require.NoError(t, snap.Body.Decode(&again))
	assert.Equal(t, *res, again)
}

func TestPost_FailureThenSuccessClearsError(t *testing.T) {
	var n atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) == 1 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"ok"`))
	}))
	t.Cleanup(server.Close)

	c := New[string](Endpoint{URL: server.URL, Method: http.MethodPost})

	_, err := c.Post(context.Background(), struct{}{})
	require.Error(t, err)
	assert.Equal(t, "503 Service Unavailable – try later\n", c.Snapshot().Error)

	res, err := c.Post(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "ok", *res)
	assert.Empty(t, c.Snapshot().Error)
}

func TestPost_HeaderPrecedence(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c := New[any](Endpoint{
		URL:    server.URL,
		Method: http.MethodPost,
		Header: http.Header{"X-Tenant": {"endpoint"}, "X-Trace": {"endpoint"}},
	})

	_, err := c.PostWithHeader(context.Background(), 1, http.Header{"X-Tenant": {"call"}})
	require.NoError(t, err)
	assert.Equal(t, "call", got.Get("X-Tenant"))
	assert.Equal(t, "endpoint", got.Get("X-Trace"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
}

func TestPost_EncodeErrorLeavesStateAlone(t *testing.T) {
	c := New[any](Endpoint{URL: "http://127.0.0.1:1", Method: http.MethodPost})
	before := c.Snapshot()

	_, err := c.Post(context.Background(), make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode request body")
	assert.Equal(t, before, c.Snapshot())
}

func TestNoContent_YieldsNilWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c := New[[]workout](Endpoint{URL: server.URL})
	c.Attach(context.Background())
	c.Wait()
	t.Cleanup(c.Detach)

	snap := c.Snapshot()
	assert.Nil(t, snap.Data)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.Loading)
	assert.Equal(t, BodyNone, snap.Body.Kind)
}

func TestNonSuccessStatuses_SetErrorAndClearData(t *testing.T) {
	for _, code := range []int{400, 401, 404, 409, 500, 502} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var fail atomic.Bool
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if fail.Load() {
					w.WriteHeader(code)
					_, _ = w.Write([]byte("boom"))
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"id":"1"}]`))
			}))
			t.Cleanup(server.Close)

			c := New[[]workout](Endpoint{URL: server.URL})
			c.Attach(context.Background())
			c.Wait()
			require.NotNil(t, c.Snapshot().Data)

			fail.Store(true)
			_, err := c.RefetchWait(context.Background())
			require.Error(t, err)

			snap := c.Snapshot()
			assert.Equal(t, fmt.Sprintf("%d %s – boom", code, http.StatusText(code)), snap.Error)
			assert.Nil(t, snap.Data)
			assert.False(t, snap.Loading)
			c.Detach()
		})
	}
}

func TestRefetch_IdenticalPayloadIsStable(t *testing.T) {
	payload := `[{"id":"a","title":"Row"},{"id":"b","title":"Box"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	c := New[[]workout](Endpoint{URL: server.URL})
	c.Attach(context.Background())
	c.Wait()
	first := c.Snapshot()

	cancel := c.Refetch(context.Background())
	c.Wait()
	cancel()
	second := c.Snapshot()

	assert.Equal(t, first.Body.Raw, second.Body.Raw)
	assert.Equal(t, *first.Data, *second.Data)
	assert.Empty(t, second.Error)
	c.Detach()
}

func TestTextBody_DecodesIntoStringTargets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("a@b.com"))
	}))
	t.Cleanup(server.Close)

	s := New[string](Endpoint{URL: server.URL, Method: http.MethodPost})
	res, err := s.Post(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", *res)
	body := s.Snapshot().Body
	assert.Equal(t, BodyText, body.Kind)
	assert.Equal(t, "a@b.com", body.Text())
	var decoded string
	assert.EqualError(t, body.Decode(&decoded), "body is text, not json")

	a := New[any](Endpoint{URL: server.URL, Method: http.MethodPost})
	anyRes, err := a.Post(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", *anyRes)

	w := New[workout](Endpoint{URL: server.URL, Method: http.MethodPost})
	_, err = w.Post(context.Background(), nil)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.NotEmpty(t, w.Snapshot().Error)
}

func TestMalformedJSON_IsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not-json"))
	}))
	t.Cleanup(server.Close)

	c := New[[]workout](Endpoint{URL: server.URL})
	_, err := c.RefetchWait(context.Background())

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	_, isHTTP := StatusCode(err)
	assert.False(t, isHTTP)
	assert.Contains(t, c.Snapshot().Error, "decode response")
}

func TestTransportFailure_IsReported(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New[any](Endpoint{URL: url})
	c.Attach(context.Background())
	c.Wait()
	t.Cleanup(c.Detach)

	snap := c.Snapshot()
	require.Error(t, snap.Err)
	assert.True(t, IsTransport(snap.Err))
	assert.NotEmpty(t, snap.Error)
	assert.False(t, snap.Loading)
}

func TestEmptyURL_SurfacesAsTransportError(t *testing.T) {
	c := New[any](Endpoint{})
	_, err := c.RefetchWait(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestDetach_DiscardsLateCompletion(t *testing.T) {
	gate := newGateTransport()
	var notified atomic.Int32
	c := New[[]workout](Endpoint{URL: "http://gym.test/api/workout"},
		WithTransport(gate),
		WithNotify(func() { notified.Add(1) }),
	)
	c.Attach(context.Background())
	call := gate.next(t)

	before := c.Snapshot()
	beforeNotified := notified.Load()
	require.True(t, before.Loading)

	c.Detach()
	assert.True(t, c.Detached())
	require.Eventually(t, func() bool { return call.req.Context().Err() != nil },
		time.Second, 5*time.Millisecond, "request context cancelled on detach")

	call.resp <- jsonResponse(200, `[{"id":"1"}]`)
	c.Wait()

	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, beforeNotified, notified.Load())
}

func TestAttach_ContextEndDetaches(t *testing.T) {
	gate := newGateTransport()
	c := New[any](Endpoint{URL: "http://gym.test/x"}, WithTransport(gate))

	ctx, cancel := context.WithCancel(context.Background())
	c.Attach(ctx)
	call := gate.next(t)
	cancel()

	require.Eventually(t, c.Detached, time.Second, 5*time.Millisecond)
	call.resp <- jsonResponse(200, `{}`)
	c.Wait()
	assert.True(t, c.Snapshot().Loading)
}

func TestRefetch_CancelFuncSuppressesState(t *testing.T) {
	gate := newGateTransport()
	c := New[string](Endpoint{URL: "http://gym.test/x"}, WithTransport(gate))

	cancel := c.Refetch(context.Background())
	call := gate.next(t)
	before := c.Snapshot()
	cancel()
	call.resp <- jsonResponse(200, `"late"`)
	c.Wait()

	assert.Equal(t, before, c.Snapshot())
	assert.Nil(t, c.Snapshot().Data)
}

func TestPost_CallerCancellationIsSwallowed(t *testing.T) {
	gate := newGateTransport()
	c := New[string](Endpoint{URL: "http://gym.test/x", Method: http.MethodPost}, WithTransport(gate))

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		res *string
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := c.Post(ctx, "payload")
		done <- result{res, err}
	}()

	call := gate.next(t)
	cancel()
	call.resp <- jsonResponse(200, `"ignored"`)

	r := <-done
	assert.NoError(t, r.err)
	assert.Nil(t, r.res)
	assert.Nil(t, c.Snapshot().Data)
}

func overlapping(t *testing.T, opts ...Option) State[string] {
	t.Helper()
	gate := newGateTransport()
	c := New[string](Endpoint{URL: "http://gym.test/x"}, append(opts, WithTransport(gate))...)

	done1 := make(chan struct{})
	go func() {
		_, _ = c.RefetchWait(context.Background())
		close(done1)
	}()
	first := gate.next(t)

	done2 := make(chan struct{})
	go func() {
		_, _ = c.RefetchWait(context.Background())
		close(done2)
	}()
	second := gate.next(t)

	second.resp <- jsonResponse(200, `"second"`)
	<-done2
	first.resp <- jsonResponse(200, `"first"`)
	<-done1

	return c.Snapshot()
}

func TestOverlap_LastSettledWinsByDefault(t *testing.T) {
	snap := overlapping(t)
	require.NotNil(t, snap.Data)
	assert.Equal(t, "first", *snap.Data)
}

func TestOverlap_LatestOnlyKeepsNewest(t *testing.T) {
	snap := overlapping(t, WithLatestOnly())
	require.NotNil(t, snap.Data)
	assert.Equal(t, "second", *snap.Data)
	assert.False(t, snap.Loading)
}

func TestLoadingKeepsStaleData(t *testing.T) {
	gate := newGateTransport()
	c := New[string](Endpoint{URL: "http://gym.test/x"}, WithTransport(gate))

	done := make(chan struct{})
	go func() {
		_, _ = c.RefetchWait(context.Background())
		close(done)
	}()
	gate.next(t).resp <- jsonResponse(200, `"v1"`)
	<-done

	c.Refetch(context.Background())
	call := gate.next(t)
	snap := c.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Error)
	require.NotNil(t, snap.Data)
	assert.Equal(t, "v1", *snap.Data)

	call.resp <- jsonResponse(200, `"v2"`)
	c.Wait()
	assert.Equal(t, "v2", *c.Snapshot().Data)
}

func TestRestyTransport_FollowsSameRules(t *testing.T) {
	var gotCT string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "wrong") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"email":"a@b.com"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c := New[map[string]string](Endpoint{URL: server.URL, Method: http.MethodPost},
		WithTransport(NewRestyTransport(resty.New())))

	res, err := c.Post(context.Background(), map[string]string{"Password": "right"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", (*res)["email"])
	assert.Equal(t, "application/json", gotCT)

	_, err = c.Post(context.Background(), map[string]string{"Password": "wrong"})
	code, ok := StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "401 Unauthorized", c.Snapshot().Error)
}

func TestErrorsUnwrap(t *testing.T) {
	base := errors.New("dial failed")
	var err error = &TransportError{Method: "GET", URL: "x", Err: base}
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "dial failed", err.Error())

	de := &DecodeError{Err: base}
	assert.ErrorIs(t, de, base)
}

func TestHTTPError_BodyIsCappedAt64KiB(t *testing.T) {
	big := strings.Repeat("x", maxErrorBody+1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(big))
	}))
	t.Cleanup(server.Close)

	c := New[any](Endpoint{URL: server.URL})
	_, err := c.RefetchWait(context.Background())

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Len(t, he.RawBody, 64*1024)
	assert.Equal(t, big[:maxErrorBody], he.RawBody)
	assert.True(t, strings.HasPrefix(he.Message, "500 Internal Server Error – xxx"))
}
