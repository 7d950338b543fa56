package cmd

import (
	"encoding/json"

	"github.com/croncommander/cc-jobparse/internal/logger"
	"github.com/croncommander/cc-jobparse/internal/protocol"
)

// handleMessage processes one collector reply. protocol.Reply merges the
// fields of every reply type, so each frame is unmarshalled once.
func (f *forwarder) handleMessage(data []byte) {
	var msg protocol.Reply
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Warnw("failed to parse collector reply", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeAck:
		f.repliesMu.Lock()
		f.acked += msg.Received
		f.repliesMu.Unlock()
		logger.Debugw("collector acknowledged", "received", msg.Received)

	case protocol.TypeError:
		f.repliesMu.Lock()
		f.rejected = append(f.rejected, msg.Reason)
		f.repliesMu.Unlock()
		logger.Warnw("collector error", "reason", msg.Reason)

	default:
		logger.Debugw("unknown collector reply", "type", msg.Type)
	}
}

// replies returns the acknowledged frame count and the collector errors
// seen so far.
func (f *forwarder) replies() (int, []string) {
	f.repliesMu.Lock()
	defer f.repliesMu.Unlock()
	return f.acked, append([]string(nil), f.rejected...)
}
