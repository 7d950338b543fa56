// Package protocol defines the JSON frames exchanged with a collector
// over WebSocket.
package protocol

import "github.com/croncommander/cc-jobparse/internal/jobmodel"

// Message types.
const (
	TypeDescriptor   = "descriptor"
	TypeDecodeError  = "decode_error"
	TypeBatchSummary = "batch_summary"
	TypeAck          = "ack"
	TypeError        = "error"
)

// Message is the base message type. Frames sent for one batch share a
// Batch identifier.
type Message struct {
	Type string `json:"type"`
}

// DescriptorMessage carries one decoded job.
type DescriptorMessage struct {
	Type    string               `json:"type"`
	Batch   string               `json:"batch,omitempty"`
	Host    string               `json:"host,omitempty"`
	Payload *jobmodel.Descriptor `json:"payload"`
}

// DecodeErrorMessage reports a file that could not be decoded.
type DecodeErrorMessage struct {
	Type   string `json:"type"`
	Batch  string `json:"batch,omitempty"`
	Host   string `json:"host,omitempty"`
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
	Reason string `json:"reason"`
}

// BatchSummaryMessage closes a batch.
type BatchSummaryMessage struct {
	Type     string `json:"type"`
	Batch    string `json:"batch,omitempty"`
	Host     string `json:"host,omitempty"`
	Files    int    `json:"files"`
	Decoded  int    `json:"decoded"`
	Failed   int    `json:"failed"`
	Warnings int    `json:"warnings"`
}

// Reply is any frame the collector sends back. Fields from every reply
// type are merged so a frame is unmarshalled once.
type Reply struct {
	Type string `json:"type"`

	// ack
	Received int `json:"received,omitempty"`

	// error
	Reason string `json:"reason,omitempty"`
}

// NewDescriptor wraps d.
func NewDescriptor(host string, d *jobmodel.Descriptor) DescriptorMessage {
	return DescriptorMessage{Type: TypeDescriptor, Host: host, Payload: d}
}

// NewDecodeError builds a decode_error frame.
func NewDecodeError(host, path, format, reason string) DecodeErrorMessage {
	return DecodeErrorMessage{Type: TypeDecodeError, Host: host, Path: path, Format: format, Reason: reason}
}

// NewBatchSummary builds a batch_summary frame.
func NewBatchSummary(host string, files, decoded, failed, warnings int) BatchSummaryMessage {
	return BatchSummaryMessage{
		Type:     TypeBatchSummary,
		Host:     host,
		Files:    files,
		Decoded:  decoded,
		Failed:   failed,
		Warnings: warnings,
	}
}
