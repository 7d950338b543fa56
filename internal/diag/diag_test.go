package diag

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarningsAdd(t *testing.T) {
	var ws Warnings
	ws.Add(CodeOutOfBounds, "comment", 112, "length %d exceeds region", 40)
	ws.Add(CodeMissingElement, "Triggers", NoOffset, "no triggers")

	require.Len(t, ws, 2)
	assert.Equal(t, "length 40 exceeds region", ws[0].Message)
	assert.True(t, ws.Has(CodeMissingElement))
	assert.False(t, ws.Has(CodeSignature))
	assert.Len(t, ws.ForField("comment"), 1)
}

func TestWarningString(t *testing.T) {
	w := Warning{Code: CodeLayout, Field: "triggers", Offset: 200, Message: "offset mismatch"}
	assert.Equal(t, "layout: offset mismatch (field triggers, offset 200)", w.String())

	w = Warning{Code: CodeMissingElement, Offset: NoOffset, Message: "no actions"}
	assert.Equal(t, "missing_element: no actions (field -)", w.String())
}

func TestWarningsClone(t *testing.T) {
	ws := Warnings{{Code: CodeLayout, Message: "a"}}
	clone := ws.Clone()
	clone[0].Message = "b"
	assert.Equal(t, "a", ws[0].Message)
	assert.Nil(t, Warnings(nil).Clone())
}

func TestSentinelsWrap(t *testing.T) {
	err := errors.Wrapf(ErrTruncatedHeader, "buffer is %d bytes", 10)
	assert.True(t, errors.Is(err, ErrTruncatedHeader))
	assert.False(t, errors.Is(err, ErrOutOfBounds))
	assert.Contains(t, err.Error(), "truncated header")
}

func TestHint(t *testing.T) {
	assert.Equal(t, "", Hint(ErrFormatUnknown))
	err := errors.WithHint(ErrFormatUnknown, "pass --all to inspect every file")
	assert.Equal(t, "pass --all to inspect every file", Hint(err))
}
