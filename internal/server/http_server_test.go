package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchbox/internal/config"
	"github.com/oggyb/matchbox/internal/domain"
	"github.com/oggyb/matchbox/internal/events"
	"github.com/oggyb/matchbox/internal/logger"
)

type busFeed struct {
	bus *events.LocalBus[domain.Message]
}

func (f busFeed) Subscribe(ctx context.Context) (<-chan domain.Message, func(), error) {
	sub, err := f.bus.Subscribe(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sub.C, sub.Close, nil
}

type pingRoutes struct{}

func (pingRoutes) Register(r *mux.Router) {
	r.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}).Methods(http.MethodGet)
}

type hookRoutes struct{}

func (hookRoutes) Register(r *mux.Router) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	r.HandleFunc("/ping", ok).Methods(http.MethodGet)
	r.HandleFunc("/hook", ok).Methods(http.MethodPost).Name("test.hook")
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.HTTP.CORSOrigins = []string{"http://localhost:3000"}
	return cfg
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	log := logger.Discard()
	r := NewRouter(testConfig(), log, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "matchbox_http_requests_total")
}

func TestRouter_CORS(t *testing.T) {
	r := NewRouter(testConfig(), logger.Discard(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_MountsAndRateLimit(t *testing.T) {
	log := logger.Discard()
	limiter := NewRateLimiter(1, 2, log)
	r := NewRouter(testConfig(), log, limiter, nil,
		Mount{Prefix: "/limited", Routes: pingRoutes{}, Limited: true},
		Mount{Prefix: "/open", Routes: pingRoutes{}},
	)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited/ping", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open/ping", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
	}
}

func TestRouter_ExemptRouteSkipsLimiter(t *testing.T) {
	log := logger.Discard()
	r := NewRouter(testConfig(), log, NewRateLimiter(1, 1, log), nil,
		Mount{Prefix: "/pay", Routes: hookRoutes{}, Limited: true, Exempt: []string{"test.hook"}},
	)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pay/hook", nil))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pay/ping", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(10, 10, logger.Discard())
	rl.getLimiter("a")
	rl.getLimiter("b")
	require.Equal(t, 2, rl.size())

	rl.Cleanup(time.Hour)
	assert.Equal(t, 2, rl.size(), "recently used limiters survive")

	rl.Cleanup(-time.Second)
	assert.Equal(t, 0, rl.size())
}

func TestWebsocketFeed(t *testing.T) {
	log := logger.Discard()
	bus := events.NewLocalBus[domain.Message](log)
	defer bus.Close()

	ws := NewWSHandler(busFeed{bus}, []string{"http://localhost:3000"}, log)
	srv := httptest.NewServer(NewRouter(testConfig(), log, nil, ws))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/messages?userId=u2"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, domain.Message{ID: "m0", Sender: domain.User{ID: "x"}, Receiver: domain.User{ID: "y"}}))
	require.NoError(t, bus.Publish(ctx, domain.Message{ID: "m1", Content: "hi", Sender: domain.User{ID: "u1"}, Receiver: domain.User{ID: "u2"}}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got domain.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "m1", got.ID, "messages not involving the user are filtered")
	assert.Equal(t, "hi", got.Content)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return bus.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocket_RejectsForeignOrigin(t *testing.T) {
	log := logger.Discard()
	bus := events.NewLocalBus[domain.Message](log)
	defer bus.Close()

	ws := NewWSHandler(busFeed{bus}, []string{"http://localhost:3000"}, log)
	srv := httptest.NewServer(NewRouter(testConfig(), log, nil, ws))
	defer srv.Close()

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/messages", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	assert.Eventually(t, func() bool { return bus.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}
