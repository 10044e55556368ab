package types

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsByKind(t *testing.T) {
	err := NewError(KindHandshake, "handshake", io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("dial: %w", err)

	assert.ErrorIs(t, wrapped, ErrHandshake)
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, wrapped, ErrTransport)
	assert.Equal(t, KindHandshake, KindOf(wrapped))
	assert.Equal(t, "handshake: handshake: unexpected EOF", err.Error())
}

func TestError_Classification(t *testing.T) {
	assert.True(t, IsRetryable(NewError(KindTransport, "dial", errors.New("refused"))))
	assert.False(t, IsRetryable(NewError(KindHandshake, "dial", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))

	assert.True(t, IsTerminal(ErrEndOfStream))
	assert.True(t, IsTerminal(fmt.Errorf("x: %w", ErrCancelled)))
	assert.False(t, IsTerminal(ErrTamper))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestError_Strings(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.Equal(t, "conflict: boom", (&Error{Kind: KindConflict, Err: errors.New("boom")}).Error())
	assert.Equal(t, "receive: end of stream", NewError(KindEndOfStream, "receive", nil).Error())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestStatus_Err(t *testing.T) {
	assert.NoError(t, Found().Err())
	assert.ErrorIs(t, NotFound("Math/Sub").Err(), ErrNotFound)
	assert.ErrorIs(t, Status{}.Err(), ErrDeserialize)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"bincode", FormatBincode},
		{"JSON", FormatJSON},
		{"bson", FormatBSON},
		{"postcard", FormatPostcard},
		{"msgpack", FormatMessagePack},
		{"", FormatBincode},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.True(t, got.Valid())
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.False(t, Format(9).Valid())
	assert.Equal(t, "format(9)", Format(9).String())
}
