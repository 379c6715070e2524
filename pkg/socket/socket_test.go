package socket

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/types"
)

func newTestServer(t *testing.T, production bool, allowedOrigins []string) (*Server, *httptest.Server, *events.Hub) {
	t.Helper()
	hub := events.NewHub()
	srv := NewServer(hub, allowedOrigins, production)

	mux := http.NewServeMux()
	mux.HandleFunc("/subscribe", srv.handleSubscribe)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/stats", srv.handleStats)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return srv, ts, hub
}

func dial(t *testing.T, ts *httptest.Server, origin string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscribe"
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		if resp != nil {
			t.Fatalf("dial failed: %v (status %d)", err, resp.StatusCode)
		}
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSubscribeSendsWelcomeFrame(t *testing.T) {
	_, ts, _ := newTestServer(t, false, nil)
	conn := dial(t, ts, "")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome welcomeMessage
	require.NoError(t, conn.ReadJSON(&welcome))

	assert.Equal(t, "welcome", welcome.Type)
	assert.NotEmpty(t, welcome.ClientID)
	assert.NotEmpty(t, welcome.Message)
}

func TestSubscribeForwardsHubMessages(t *testing.T) {
	_, ts, hub := newTestServer(t, false, nil)
	conn := dial(t, ts, "")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome welcomeMessage
	require.NoError(t, conn.ReadJSON(&welcome))

	price := 1.5
	hub.Publish(types.OutboundMessage{
		Kind: types.OutboundKindSwap,
		Swap: &types.SwapOutbound{PairID: "pair-1", Price: price, Timestamp: 100, TxSignature: "sig-1"},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "swap_event", decoded["type"])
	assert.Equal(t, "pair-1", decoded["pair"])
}

func TestSubscribeIncrementsAndDecrementsClientCount(t *testing.T) {
	srv, ts, _ := newTestServer(t, false, nil)
	conn := dial(t, ts, "")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome welcomeMessage
	require.NoError(t, conn.ReadJSON(&welcome))

	require.Eventually(t, func() bool {
		return srv.clientCount.Load() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return srv.clientCount.Load() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestCheckOriginPermissiveInDevelopment(t *testing.T) {
	srv, _, _ := newTestServer(t, false, []string{"https://allowed.example"})

	req := httptest.NewRequest(http.MethodGet, "/subscribe", nil)
	req.Header.Set("Origin", "https://anywhere.example")

	assert.True(t, srv.checkOrigin(req))
}

func TestCheckOriginRestrictedInProduction(t *testing.T) {
	srv, _, _ := newTestServer(t, true, []string{"https://allowed.example"})

	allowed := httptest.NewRequest(http.MethodGet, "/subscribe", nil)
	allowed.Header.Set("Origin", "https://allowed.example")
	assert.True(t, srv.checkOrigin(allowed))

	denied := httptest.NewRequest(http.MethodGet, "/subscribe", nil)
	denied.Header.Set("Origin", "https://denied.example")
	assert.False(t, srv.checkOrigin(denied))

	noOrigin := httptest.NewRequest(http.MethodGet, "/subscribe", nil)
	assert.False(t, srv.checkOrigin(noOrigin))
}

func TestHealthEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t, false, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestStatsEndpointReportsConnectedClients(t *testing.T) {
	_, ts, _ := newTestServer(t, false, nil)
	conn := dial(t, ts, "")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome welcomeMessage
	require.NoError(t, conn.ReadJSON(&welcome))

	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/stats")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		var stats struct {
			ConnectedClients int `json:"connected_clients"`
		}
		if err := json.Unmarshal(body, &stats); err != nil {
			return false
		}
		return stats.ConnectedClients == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDialRejectedWithDisallowedOriginInProduction(t *testing.T) {
	_, ts, _ := newTestServer(t, true, []string{"https://allowed.example"})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscribe"
	header := http.Header{}
	header.Set("Origin", "https://denied.example")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}
