package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croncommander/cc-jobparse/internal/protocol"
)

// collector is a test WebSocket server that records every text frame and
// answers each one with reply, when set.
type collector struct {
	server *httptest.Server
	reply  func(frame map[string]interface{}) interface{}

	mu     sync.Mutex
	frames []map[string]interface{}
}

func newCollector(t *testing.T) *collector {
	t.Helper()
	c := &collector{}
	c.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame map[string]interface{}
			if err := json.Unmarshal(data, &frame); err != nil {
				continue
			}
			c.mu.Lock()
			c.frames = append(c.frames, frame)
			c.mu.Unlock()
			if c.reply != nil {
				if out := c.reply(frame); out != nil {
					_ = conn.WriteJSON(out)
				}
			}
		}
	}))
	t.Cleanup(c.server.Close)
	return c
}

func (c *collector) url() string {
	return "ws" + strings.TrimPrefix(c.server.URL, "http")
}

func (c *collector) received() []map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]map[string]interface{}(nil), c.frames...)
}

func TestForwardBatch(t *testing.T) {
	c := newCollector(t)
	c.reply = func(frame map[string]interface{}) interface{} {
		return protocol.Reply{Type: protocol.TypeAck, Received: 1}
	}

	f := newForwarder(ForwardConfig{URL: c.url(), Host: "build-01"})
	require.NoError(t, f.connect())

	results := sampleResults(t)
	require.NoError(t, f.forward(results))

	require.Eventually(t, func() bool { return len(c.received()) == 4 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		acked, _ := f.replies()
		return acked == 4
	}, 5*time.Second, 10*time.Millisecond)
	f.close()

	frames := c.received()
	types := make([]string, len(frames))
	for i, fr := range frames {
		types[i] = fr["type"].(string)
	}
	assert.Equal(t, []string{"descriptor", "descriptor", "decode_error", "batch_summary"}, types)

	batch := frames[0]["batch"].(string)
	_, err := uuid.Parse(batch)
	require.NoError(t, err)
	for _, fr := range frames {
		assert.Equal(t, batch, fr["batch"])
		assert.Equal(t, "build-01", fr["host"])
	}

	assert.Equal(t, "Backup", frames[0]["payload"].(map[string]interface{})["name"])
	assert.Equal(t, "broken.job", frames[2]["path"])
	assert.Contains(t, frames[2]["reason"], "unknown format")
	_, hasFormat := frames[2]["format"]
	assert.False(t, hasFormat)

	summary := frames[3]
	assert.Equal(t, float64(3), summary["files"])
	assert.Equal(t, float64(2), summary["decoded"])
	assert.Equal(t, float64(1), summary["failed"])
}

func TestForwardRecordsCollectorErrors(t *testing.T) {
	c := newCollector(t)
	c.reply = func(frame map[string]interface{}) interface{} {
		if frame["type"] == protocol.TypeBatchSummary {
			return map[string]string{"type": "error", "reason": "quota exceeded"}
		}
		return nil
	}

	f := newForwarder(ForwardConfig{URL: c.url()})
	require.NoError(t, f.connect())
	defer f.close()

	require.NoError(t, f.forward(nil))
	require.Eventually(t, func() bool {
		_, rejected := f.replies()
		return len(rejected) == 1
	}, 5*time.Second, 10*time.Millisecond)

	_, rejected := f.replies()
	assert.Equal(t, []string{"quota exceeded"}, rejected)
}

func TestForwarderConnectErrors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"http scheme", "http://localhost:1/jobs"},
		{"bad url", "ws://[::1"},
		{"nothing listening", "ws://127.0.0.1:1/jobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForwarder(ForwardConfig{URL: tt.url})
			assert.Error(t, f.connect())
		})
	}
}

func TestSendMessageNotConnected(t *testing.T) {
	f := &forwarder{}
	err := f.sendMessage(protocol.Message{Type: "ping"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")

	// close on an unconnected forwarder is a no-op.
	assert.NotPanics(t, f.close)
}

func TestHandleMessageIgnoresGarbage(t *testing.T) {
	f := &forwarder{}
	f.handleMessage([]byte("{not json"))
	f.handleMessage([]byte(`{"type":"ping"}`))
	f.handleMessage([]byte(`{"type":"ack","received":2}`))

	acked, rejected := f.replies()
	assert.Equal(t, 2, acked)
	assert.Empty(t, rejected)
}
