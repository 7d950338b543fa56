package cmd

import (
	"encoding/json"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/croncommander/cc-jobparse/internal/jobmodel"
	"github.com/croncommander/cc-jobparse/internal/logger"
	"github.com/croncommander/cc-jobparse/internal/protocol"
	"github.com/croncommander/cc-jobparse/internal/taskjob"
)

// websocketWriteTimeout bounds every frame write to the collector.
var websocketWriteTimeout = 10 * time.Second

const closeGracePeriod = 2 * time.Second

// forwarder streams decode results to a collector over one WebSocket
// connection.
type forwarder struct {
	serverURL    string
	host         string
	writeTimeout time.Duration

	conn   *websocket.Conn
	connMu sync.Mutex

	// done is closed when the reply reader exits.
	done chan struct{}

	repliesMu sync.Mutex
	acked     int
	rejected  []string
}

func newForwarder(c ForwardConfig) *forwarder {
	host := c.Host
	if host == "" {
		host = getHostname()
	}
	return &forwarder{serverURL: c.URL, host: host, writeTimeout: c.WriteTimeout}
}

// formatOf returns the sniffed format recorded in a decode error, or "".
func formatOf(err error) string {
	var de *taskjob.DecodeError
	if errors.As(err, &de) && de.Format != jobmodel.FormatUnknown {
		return de.Format.String()
	}
	return ""
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

func (f *forwarder) connect() error {
	u, err := url.Parse(f.serverURL)
	if err != nil {
		return errors.Wrap(err, "invalid collector URL")
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.WithHint(
			errors.Newf("unsupported collector scheme %q", u.Scheme),
			"use a ws:// or wss:// URL")
	}

	logger.Infow("connecting to collector", "url", u.Redacted())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "WebSocket dial failed")
	}

	f.connMu.Lock()
	f.conn = conn
	f.done = make(chan struct{})
	f.connMu.Unlock()

	go f.readReplies(conn, f.done)
	return nil
}

// readReplies logs what the collector sends back until the connection
// closes.
func (f *forwarder) readReplies(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.Debugw("collector read ended", "error", err)
			}
			return
		}
		f.handleMessage(data)
	}
}

func (f *forwarder) sendMessage(msg interface{}) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	if f.conn == nil {
		return errors.New("not connected")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	timeout := f.writeTimeout
	if timeout == 0 {
		timeout = websocketWriteTimeout
	}
	if err := f.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return f.conn.WriteMessage(websocket.TextMessage, data)
}

// forward sends one frame per result followed by the batch summary. All
// frames of the call share a fresh batch identifier.
func (f *forwarder) forward(results []result) error {
	batch := uuid.NewString()

	for _, r := range results {
		var msg interface{}
		if r.Err != nil {
			m := protocol.NewDecodeError(f.host, r.Path, formatOf(r.Err), r.Err.Error())
			m.Batch = batch
			msg = m
		} else {
			m := protocol.NewDescriptor(f.host, r.Descriptor)
			m.Batch = batch
			msg = m
		}
		if err := f.sendMessage(msg); err != nil {
			return errors.Wrapf(err, "forwarding %s", r.Path)
		}
	}

	s := summarize(results)
	summary := protocol.NewBatchSummary(f.host, s.Files, s.Decoded, s.Failed, s.Warnings)
	summary.Batch = batch
	if err := f.sendMessage(summary); err != nil {
		return errors.Wrap(err, "forwarding batch summary")
	}

	logger.Infow("forwarded batch", "batch", batch, "files", s.Files)
	return nil
}

// close sends a close frame and waits briefly for the collector to
// answer it before dropping the connection.
func (f *forwarder) close() {
	f.connMu.Lock()
	conn, done := f.conn, f.done
	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	}
	f.connMu.Unlock()

	if conn == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(closeGracePeriod):
	}

	f.connMu.Lock()
	conn.Close()
	f.conn = nil
	f.connMu.Unlock()
}
