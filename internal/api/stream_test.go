package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hogday/internal/engine"
	"github.com/talgya/hogday/internal/world"
)

func streamSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	f, err := os.Open("testdata/stream.schema.json")
	require.NoError(t, err)
	defer f.Close()

	const url = "mem://hogday/stream.schema.json"
	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource(url, f))
	schema, err := c.Compile(url)
	require.NoError(t, err)
	return schema
}

func dialStream(t *testing.T, baseURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	return raw
}

func TestStreamSendsCurrentFrameThenTicks(t *testing.T) {
	s, ts := testServer(t)
	schema := streamSchema(t)
	conn := dialStream(t, ts.URL)

	var first StreamMessage
	require.NoError(t, json.Unmarshal(readMessage(t, conn), &first))
	assert.Equal(t, MessageTick, first.Type)
	assert.Equal(t, uint64(0), first.Tick)
	require.NotNil(t, first.Frame)
	require.Len(t, first.Frame.Hogs, 1)
	assert.Equal(t, world.Coord{X: 1, Y: 3}, first.Frame.Hogs[0].Pos)

	require.Eventually(t, func() bool { return s.Hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	for tick := uint64(1); tick <= 6; tick++ {
		require.NoError(t, s.Sim.Step(tick))
		s.Hub.Publish(s.Sim.Frame())

		raw := readMessage(t, conn)
		var doc any
		require.NoError(t, json.Unmarshal(raw, &doc))
		require.NoError(t, schema.Validate(doc), "tick %d: %s", tick, raw)

		var msg StreamMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, tick, msg.Tick)
		assert.Equal(t, msg.Tick, msg.Frame.Tick)
	}
}

func TestStreamFramesWithExchangesMatchSchema(t *testing.T) {
	s, ts := testServer(t)
	schema := streamSchema(t)
	conn := dialStream(t, ts.URL)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return s.Hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	// A castle off the northeast corner of the loop gives wood somewhere to go.
	require.NoError(t, s.Sim.Apply(engine.Edit{Tool: engine.ToolCastle, At: world.Coord{X: 6, Y: 7}}))

	sawExchange := false
	for tick := uint64(1); tick <= 40; tick++ {
		require.NoError(t, s.Sim.Step(tick))
		s.Hub.Publish(s.Sim.Frame())

		raw := readMessage(t, conn)
		var doc any
		require.NoError(t, json.Unmarshal(raw, &doc))
		require.NoError(t, schema.Validate(doc), "tick %d: %s", tick, raw)

		var msg StreamMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		for _, h := range msg.Frame.Hogs {
			if h.GaveTo != nil || h.TookFrom != nil {
				sawExchange = true
			}
		}
	}
	assert.True(t, sawExchange)
}

func TestHubDropsClosedClients(t *testing.T) {
	s, ts := testServer(t)
	conn := dialStream(t, ts.URL)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return s.Hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return s.Hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	// Publishing with nobody listening is a no-op.
	s.Hub.Publish(s.Sim.Frame())
}

func TestHubRegisterHoldsTheCapUnderContention(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	var wg sync.WaitGroup
	var admitted atomic.Int32
	for i := 0; i < 4*maxStreamConns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if hub.register(&streamClient{send: make(chan []byte, sendBuffer)}) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(maxStreamConns), admitted.Load())
	assert.Equal(t, maxStreamConns, hub.Clients())
}

func TestFullHubRejectsStream(t *testing.T) {
	s, ts := testServer(t)
	for i := 0; i < maxStreamConns; i++ {
		require.True(t, s.Hub.register(&streamClient{send: make(chan []byte, sendBuffer)}))
	}

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, maxStreamConns, s.Hub.Clients())
}
