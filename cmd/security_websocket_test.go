package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croncommander/cc-jobparse/internal/protocol"
)

// dropConn closes the link without the close handshake so a test does not
// wait out the grace period.
func dropConn(f *forwarder) {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.conn != nil {
		f.conn.Close()
	}
}

func TestForwardHonoursWriteDeadline(t *testing.T) {
	c := newCollector(t)
	f := newForwarder(ForwardConfig{URL: c.url(), Host: "deadline-host"})
	require.NoError(t, f.connect())
	defer dropConn(f)

	results := sampleResults(t)[:1]
	require.NoError(t, f.forward(results))
	require.Eventually(t, func() bool { return len(c.received()) == 2 }, 5*time.Second, 10*time.Millisecond)

	first := c.received()
	assert.Equal(t, protocol.TypeDescriptor, first[0]["type"])
	assert.Equal(t, protocol.TypeBatchSummary, first[1]["type"])
	assert.NotEmpty(t, first[0]["batch"])
	assert.Equal(t, first[0]["batch"], first[1]["batch"])

	originalTimeout := websocketWriteTimeout
	defer func() { websocketWriteTimeout = originalTimeout }()
	websocketWriteTimeout = -1 * time.Second

	err := f.forward(results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forwarding "+results[0].Path)
	assert.Contains(t, err.Error(), "i/o timeout")

	// Nothing from the timed-out batch reached the collector.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, c.received(), 2)
}

func TestForwardConfiguredWriteTimeoutWins(t *testing.T) {
	c := newCollector(t)
	f := newForwarder(ForwardConfig{URL: c.url(), WriteTimeout: -1 * time.Second})
	require.NoError(t, f.connect())
	defer dropConn(f)

	err := f.forward(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forwarding batch summary")
	assert.Contains(t, err.Error(), "i/o timeout")
	assert.Empty(t, c.received())
}
