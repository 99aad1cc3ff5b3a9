package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		msgType byte
		payload []byte
	}{
		{"empty payload", MsgLeaveReq, nil},
		{"small payload", MsgChatFromHost, []byte("gg")},
		{"max-ish payload", MsgMapPart, bytes.Repeat([]byte{0xAB}, MapChunkSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteFrame(&buf, tt.msgType, tt.payload))

			f, err := ReadFrame(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.msgType, f.Type)
			assert.Equal(t, tt.payload, f.Payload)
		})
	}
}

func TestReadFrameBadHeader(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0x01, 0x04, 0x00})
	_, err := ReadFrame(buf)
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestReadFrameShort(t *testing.T) {
	buf := bytes.NewBuffer([]byte{HeaderByte, 0x01, 0x02, 0x00})
	_, err := ReadFrame(buf)
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestReadFramePayloadTooLarge(t *testing.T) {
	hdr := []byte{HeaderByte, 0x01, 0xFF, 0xFF}
	buf := bytes.NewBuffer(hdr)
	_, err := ReadFrame(buf)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestEncodeFrameMatchesWriteFrame(t *testing.T) {
	payload := []byte("hello")
	encoded, err := EncodeFrame(MsgChatFromHost, payload)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MsgChatFromHost, payload))
	assert.Equal(t, buf.Bytes(), encoded)
}
