package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// GPS shares the TCP game socket with W3GS but frames with a distinct
// two-byte header so the two protocols can never be confused mid-stream.
// The real GProxy header byte scheme isn't recoverable from the
// retrieved sources, so this codec picks its own distinguishing first byte
// disjoint from HeaderByte (0xF7); see the design notes for this choice.
const GPSHeaderByte = 0xF8

// GPSMinFrameLen is the smallest legal GPS frame: 4-byte header, zero payload.
const GPSMinFrameLen = 4

var ErrGPSBadHeader = errors.New("wire: bad GPS frame header byte")
var ErrGPSShortFrame = errors.New("wire: GPS frame length below header minimum")

// GPS message type tags.
const (
	GPSInit             byte = 0x01 // server->client: reconnect port, UID, key, empty-action budget
	GPSSupportExtended  byte = 0x02 // server->client: extended variant negotiation
	GPSAck              byte = 0x03 // either direction: cumulative received-packet count
	GPSReconnect        byte = 0x04 // client->server: UID, key, last-received count, optional game id
	GPSChangeKey        byte = 0x05 // server->client: rotate key after an invalid reconnect attempt
)

// GPSFrame is one decoded GPS message.
type GPSFrame struct {
	Type    byte
	Payload []byte
}

// ReadGPSFrame reads one frame: [GPSHeaderByte][type:u8][len:u16 LE][payload].
func ReadGPSFrame(r io.Reader) (GPSFrame, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return GPSFrame{}, fmt.Errorf("wire: reading GPS frame header: %w", err)
	}
	if hdr[0] != GPSHeaderByte {
		return GPSFrame{}, ErrGPSBadHeader
	}
	total := int(binary.LittleEndian.Uint16(hdr[2:4]))
	if total < GPSMinFrameLen {
		return GPSFrame{}, ErrGPSShortFrame
	}
	payload := make([]byte, total-GPSMinFrameLen)
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return GPSFrame{}, fmt.Errorf("wire: reading GPS frame payload: %w", err)
		}
	}
	return GPSFrame{Type: hdr[1], Payload: payload}, nil
}

// EncodeGPSFrame serializes a GPS message.
func EncodeGPSFrame(msgType byte, payload []byte) []byte {
	total := GPSMinFrameLen + len(payload)
	buf := make([]byte, total)
	buf[0] = GPSHeaderByte
	buf[1] = msgType
	binary.LittleEndian.PutUint16(buf[2:4], uint16(total))
	copy(buf[4:], payload)
	return buf
}

// GPSInitMsg advertises the reconnect port, UID, key, and the empty-action
// budget a basic (non-extended) reconnect-proxy client must hold in reserve.
type GPSInitMsg struct {
	ReconnectPort    uint16
	UID              byte
	ReconnectKey     uint32
	EmptyActionCount byte
}

func (p GPSInitMsg) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint16(p.ReconnectPort)
	w.WriteByte(p.UID)
	w.WriteUint32(p.ReconnectKey)
	w.WriteByte(p.EmptyActionCount)
	return EncodeGPSFrame(GPSInit, w.Bytes())
}

func DecodeGPSInitMsg(r *Reader) (GPSInitMsg, error) {
	var p GPSInitMsg
	var err error
	if p.ReconnectPort, err = r.UInt16(); err != nil {
		return p, fmt.Errorf("wire: GPSInit: %w", err)
	}
	if p.UID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: GPSInit: %w", err)
	}
	if p.ReconnectKey, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: GPSInit: %w", err)
	}
	if p.EmptyActionCount, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: GPSInit: %w", err)
	}
	return p, nil
}

// GPSSupportExtendedMsg negotiates the extended reconnect variant, which
// adds a game-id check so stale-game connections are refused.
type GPSSupportExtendedMsg struct {
	GameID uint32
}

func (p GPSSupportExtendedMsg) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.GameID)
	return EncodeGPSFrame(GPSSupportExtended, w.Bytes())
}

func DecodeGPSSupportExtendedMsg(r *Reader) (GPSSupportExtendedMsg, error) {
	var p GPSSupportExtendedMsg
	var err error
	if p.GameID, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: GPSSupportExtended: %w", err)
	}
	return p, nil
}

// GPSAckMsg carries a cumulative received-packet count, sent by either side
// roughly every 5s so the sender can drop acknowledged packets.
type GPSAckMsg struct {
	ReceivedCount uint32
}

func (p GPSAckMsg) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.ReceivedCount)
	return EncodeGPSFrame(GPSAck, w.Bytes())
}

func DecodeGPSAckMsg(r *Reader) (GPSAckMsg, error) {
	var p GPSAckMsg
	var err error
	if p.ReceivedCount, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: GPSAck: %w", err)
	}
	return p, nil
}

// GPSReconnectMsg is the client's bid to rebind an existing player slot to a
// new TCP connection. GameID is only meaningful for the extended variant.
type GPSReconnectMsg struct {
	UID           byte
	ReconnectKey  uint32
	LastReceived  uint32
	GameID        uint32
	HasGameID     bool
}

func (p GPSReconnectMsg) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.UID)
	w.WriteUint32(p.ReconnectKey)
	w.WriteUint32(p.LastReceived)
	if p.HasGameID {
		w.WriteUint32(p.GameID)
	}
	return EncodeGPSFrame(GPSReconnect, w.Bytes())
}

func DecodeGPSReconnectMsg(r *Reader) (GPSReconnectMsg, error) {
	var p GPSReconnectMsg
	var err error
	if p.UID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: GPSReconnect: %w", err)
	}
	if p.ReconnectKey, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: GPSReconnect: %w", err)
	}
	if p.LastReceived, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: GPSReconnect: %w", err)
	}
	if r.Remaining() >= 4 {
		if p.GameID, err = r.UInt32(); err != nil {
			return p, fmt.Errorf("wire: GPSReconnect: %w", err)
		}
		p.HasGameID = true
	}
	return p, nil
}

// GPSChangeKeyMsg rotates the reconnect key after an invalid attempt.
type GPSChangeKeyMsg struct {
	NewKey uint32
}

func (p GPSChangeKeyMsg) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.NewKey)
	return EncodeGPSFrame(GPSChangeKey, w.Bytes())
}

func DecodeGPSChangeKeyMsg(r *Reader) (GPSChangeKeyMsg, error) {
	var p GPSChangeKeyMsg
	var err error
	if p.NewKey, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: GPSChangeKey: %w", err)
	}
	return p, nil
}
