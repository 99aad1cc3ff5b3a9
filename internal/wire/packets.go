package wire

import (
	"fmt"
	"net"

	"github.com/wc3aura/aura/internal/slot"
)

// ReqJoin is the admission request a Connection must send within the grace
// period.
type ReqJoin struct {
	HostCounter uint32
	EntryKey    uint32
	Name        string
	InternalIP  net.IP
}

func (p ReqJoin) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.HostCounter)
	w.WriteUint32(p.EntryKey)
	w.WriteCString(p.Name)
	w.WriteIPv4(p.InternalIP)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeReqJoin(r *Reader) (ReqJoin, error) {
	var p ReqJoin
	var err error
	if p.HostCounter, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: ReqJoin: %w", err)
	}
	if p.EntryKey, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: ReqJoin: %w", err)
	}
	if p.Name, err = r.CString(); err != nil {
		return p, fmt.Errorf("wire: ReqJoin: %w", err)
	}
	if p.InternalIP, err = r.IPv4(); err != nil {
		return p, fmt.Errorf("wire: ReqJoin: %w", err)
	}
	return p, nil
}

// LeaveReq announces a graceful departure with a client-supplied reason.
type LeaveReq struct {
	Reason uint32
}

func (p LeaveReq) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.Reason)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeLeaveReq(r *Reader) (LeaveReq, error) {
	var p LeaveReq
	var err error
	if p.Reason, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: LeaveReq: %w", err)
	}
	return p, nil
}

// GameLoadedSelf carries no payload; receipt alone is the signal.
type GameLoadedSelf struct{}

func (GameLoadedSelf) Encode() []byte { return nil }

func DecodeGameLoadedSelf(r *Reader) (GameLoadedSelf, error) {
	return GameLoadedSelf{}, nil
}

// OutgoingAction is one player's per-tick action submission.
type OutgoingAction struct {
	CRC  uint16
	Data []byte
}

func (p OutgoingAction) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint16(p.CRC)
	w.WriteBytes(p.Data)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeOutgoingAction(r *Reader) (OutgoingAction, error) {
	var p OutgoingAction
	var err error
	if p.CRC, err = r.UInt16(); err != nil {
		return p, fmt.Errorf("wire: OutgoingAction: %w", err)
	}
	if p.Data, err = r.Bytes(r.Remaining()); err != nil {
		return p, fmt.Errorf("wire: OutgoingAction: %w", err)
	}
	if len(p.Data) > MaxActionPayload {
		return p, fmt.Errorf("wire: OutgoingAction: payload %d exceeds max %d", len(p.Data), MaxActionPayload)
	}
	return p, nil
}

// OutgoingKeepAlive carries a player's running desync checksum.
type OutgoingKeepAlive struct {
	Checksum uint32
}

func (p OutgoingKeepAlive) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.Checksum)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeOutgoingKeepAlive(r *Reader) (OutgoingKeepAlive, error) {
	var p OutgoingKeepAlive
	var err error
	if p.Checksum, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: OutgoingKeepAlive: %w", err)
	}
	return p, nil
}

// Chat flags distinguish a text message from a lobby settings change
// within CHAT_TO_HOST / CHAT_FROM_HOST.
const (
	ChatFlagMessage    byte = 0x10
	ChatFlagTeamChange byte = 0x11
	ChatFlagColorChange byte = 0x12
	ChatFlagRaceChange byte = 0x13
	ChatFlagHandicapChange byte = 0x14
)

// ChatToHost is either a chat line or a lobby settings change, selected by Flag.
type ChatToHost struct {
	ToSIDs     []byte
	FromUID    byte
	Flag       byte
	ExtraFlags uint32 // valid when Flag == ChatFlagMessage
	Message    string // valid when Flag == ChatFlagMessage
	Value      byte   // valid for the *Change flags
}

func (p ChatToHost) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(byte(len(p.ToSIDs)))
	w.WriteBytes(p.ToSIDs)
	w.WriteByte(p.FromUID)
	w.WriteByte(p.Flag)
	switch p.Flag {
	case ChatFlagMessage:
		w.WriteUint32(p.ExtraFlags)
		w.WriteCString(p.Message)
	default:
		w.WriteByte(p.Value)
	}
	return append([]byte(nil), w.Bytes()...)
}

func DecodeChatToHost(r *Reader) (ChatToHost, error) {
	var p ChatToHost
	n, err := r.Byte()
	if err != nil {
		return p, fmt.Errorf("wire: ChatToHost: %w", err)
	}
	if p.ToSIDs, err = r.Bytes(int(n)); err != nil {
		return p, fmt.Errorf("wire: ChatToHost: %w", err)
	}
	if p.FromUID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: ChatToHost: %w", err)
	}
	if p.Flag, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: ChatToHost: %w", err)
	}
	switch p.Flag {
	case ChatFlagMessage:
		if p.ExtraFlags, err = r.UInt32(); err != nil {
			return p, fmt.Errorf("wire: ChatToHost: %w", err)
		}
		if p.Message, err = r.CString(); err != nil {
			return p, fmt.Errorf("wire: ChatToHost: %w", err)
		}
	default:
		if p.Value, err = r.Byte(); err != nil {
			return p, fmt.Errorf("wire: ChatToHost: %w", err)
		}
	}
	return p, nil
}

// DropReq is an empty-payload vote to drop the current laggers.
type DropReq struct{}

func (DropReq) Encode() []byte { return nil }

func DecodeDropReq(r *Reader) (DropReq, error) { return DropReq{}, nil }

// MapSize reports the client's claimed map presence, or acknowledges bytes
// received so far once a download is underway.
type MapSize struct {
	SizeFlag byte
	MapSize  uint32
}

func (p MapSize) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.SizeFlag)
	w.WriteUint32(p.MapSize)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeMapSize(r *Reader) (MapSize, error) {
	var p MapSize
	var err error
	if p.SizeFlag, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: MapSize: %w", err)
	}
	if p.MapSize, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: MapSize: %w", err)
	}
	return p, nil
}

// PongToHost answers a PING_FROM_HOST, echoing its tick.
type PongToHost struct {
	Tick uint32
}

func (p PongToHost) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.Tick)
	return append([]byte(nil), w.Bytes()...)
}

func DecodePongToHost(r *Reader) (PongToHost, error) {
	var p PongToHost
	var err error
	if p.Tick, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: PongToHost: %w", err)
	}
	return p, nil
}

// encodeSlots/decodeSlots implement the shared slot-array wire shape used by
// SLOTINFOJOIN and SLOTINFO.
func encodeSlots(w *Writer, slots []slot.Slot) {
	w.WriteByte(byte(len(slots)))
	for _, s := range slots {
		w.WriteByte(s.UID)
		w.WriteByte(s.DownloadProgress)
		w.WriteByte(byte(s.Status))
		w.WriteByte(byte(s.Type))
		w.WriteByte(s.Team)
		w.WriteByte(s.Color)
		w.WriteByte(byte(s.Race))
		w.WriteByte(byte(s.CompDifficulty))
		w.WriteByte(s.Handicap)
	}
}

func decodeSlots(r *Reader) ([]slot.Slot, error) {
	n, err := r.Byte()
	if err != nil {
		return nil, fmt.Errorf("wire: slots: %w", err)
	}
	out := make([]slot.Slot, n)
	for i := range out {
		var s slot.Slot
		var b byte
		if s.UID, err = r.Byte(); err != nil {
			return nil, fmt.Errorf("wire: slots[%d]: %w", i, err)
		}
		if s.DownloadProgress, err = r.Byte(); err != nil {
			return nil, fmt.Errorf("wire: slots[%d]: %w", i, err)
		}
		if b, err = r.Byte(); err != nil {
			return nil, fmt.Errorf("wire: slots[%d]: %w", i, err)
		}
		s.Status = slot.Status(b)
		if b, err = r.Byte(); err != nil {
			return nil, fmt.Errorf("wire: slots[%d]: %w", i, err)
		}
		s.Type = slot.Type(b)
		if s.Team, err = r.Byte(); err != nil {
			return nil, fmt.Errorf("wire: slots[%d]: %w", i, err)
		}
		if s.Color, err = r.Byte(); err != nil {
			return nil, fmt.Errorf("wire: slots[%d]: %w", i, err)
		}
		if b, err = r.Byte(); err != nil {
			return nil, fmt.Errorf("wire: slots[%d]: %w", i, err)
		}
		s.Race = slot.Race(b)
		if b, err = r.Byte(); err != nil {
			return nil, fmt.Errorf("wire: slots[%d]: %w", i, err)
		}
		s.CompDifficulty = slot.Difficulty(b)
		if s.Handicap, err = r.Byte(); err != nil {
			return nil, fmt.Errorf("wire: slots[%d]: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// SlotInfoJoin is the admission reply carrying the joiner's UID and a full
// slot snapshot.
type SlotInfoJoin struct {
	UID          byte
	Slots        []slot.Slot
	RandomSeed   uint32
	LayoutStyle  byte
	NumPlayers   byte
}

func (p SlotInfoJoin) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.UID)
	encodeSlots(w, p.Slots)
	w.WriteUint32(p.RandomSeed)
	w.WriteByte(p.LayoutStyle)
	w.WriteByte(p.NumPlayers)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeSlotInfoJoin(r *Reader) (SlotInfoJoin, error) {
	var p SlotInfoJoin
	var err error
	if p.UID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: SlotInfoJoin: %w", err)
	}
	if p.Slots, err = decodeSlots(r); err != nil {
		return p, fmt.Errorf("wire: SlotInfoJoin: %w", err)
	}
	if p.RandomSeed, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: SlotInfoJoin: %w", err)
	}
	if p.LayoutStyle, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: SlotInfoJoin: %w", err)
	}
	if p.NumPlayers, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: SlotInfoJoin: %w", err)
	}
	return p, nil
}

// RejectJoin denies admission with a reason code.
type RejectJoin struct {
	Reason RejectReason
}

func (p RejectJoin) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(byte(p.Reason))
	return append([]byte(nil), w.Bytes()...)
}

func DecodeRejectJoin(r *Reader) (RejectJoin, error) {
	var p RejectJoin
	b, err := r.Byte()
	if err != nil {
		return p, fmt.Errorf("wire: RejectJoin: %w", err)
	}
	p.Reason = RejectReason(b)
	return p, nil
}

// PlayerInfo announces a player or the virtual host to a peer.
type PlayerInfo struct {
	UID        byte
	Name       string
	InternalIP net.IP
	ExternalIP net.IP
}

func (p PlayerInfo) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.UID)
	w.WriteCString(p.Name)
	w.WriteIPv4(p.InternalIP)
	w.WriteIPv4(p.ExternalIP)
	return append([]byte(nil), w.Bytes()...)
}

func DecodePlayerInfo(r *Reader) (PlayerInfo, error) {
	var p PlayerInfo
	var err error
	if p.UID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: PlayerInfo: %w", err)
	}
	if p.Name, err = r.CString(); err != nil {
		return p, fmt.Errorf("wire: PlayerInfo: %w", err)
	}
	if p.InternalIP, err = r.IPv4(); err != nil {
		return p, fmt.Errorf("wire: PlayerInfo: %w", err)
	}
	if p.ExternalIP, err = r.IPv4(); err != nil {
		return p, fmt.Errorf("wire: PlayerInfo: %w", err)
	}
	return p, nil
}

// PlayerLeaveOthers announces a departure; it must precede any later
// message reusing the freed UID.
type PlayerLeaveOthers struct {
	UID    byte
	Reason LeaveReason
}

func (p PlayerLeaveOthers) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.UID)
	w.WriteByte(byte(p.Reason))
	return append([]byte(nil), w.Bytes()...)
}

func DecodePlayerLeaveOthers(r *Reader) (PlayerLeaveOthers, error) {
	var p PlayerLeaveOthers
	var err error
	if p.UID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: PlayerLeaveOthers: %w", err)
	}
	b, err := r.Byte()
	if err != nil {
		return p, fmt.Errorf("wire: PlayerLeaveOthers: %w", err)
	}
	p.Reason = LeaveReason(b)
	return p, nil
}

// SlotInfo is a standalone slot snapshot, same shape as SlotInfoJoin minus
// the joiner UID.
type SlotInfo struct {
	Slots       []slot.Slot
	RandomSeed  uint32
	LayoutStyle byte
	NumPlayers  byte
}

func (p SlotInfo) Encode() []byte {
	w := Get()
	defer w.Put()
	encodeSlots(w, p.Slots)
	w.WriteUint32(p.RandomSeed)
	w.WriteByte(p.LayoutStyle)
	w.WriteByte(p.NumPlayers)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeSlotInfo(r *Reader) (SlotInfo, error) {
	var p SlotInfo
	var err error
	if p.Slots, err = decodeSlots(r); err != nil {
		return p, fmt.Errorf("wire: SlotInfo: %w", err)
	}
	if p.RandomSeed, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: SlotInfo: %w", err)
	}
	if p.LayoutStyle, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: SlotInfo: %w", err)
	}
	if p.NumPlayers, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: SlotInfo: %w", err)
	}
	return p, nil
}

// CountdownStart and CountdownEnd carry no payload.
type CountdownStart struct{}

func (CountdownStart) Encode() []byte { return nil }

type CountdownEnd struct{}

func (CountdownEnd) Encode() []byte { return nil }

// ActionData is one UID-tagged action within an action batch.
type ActionData struct {
	UID  byte
	Data []byte
}

func encodeActionData(w *Writer, actions []ActionData) {
	for _, a := range actions {
		w.WriteByte(a.UID)
		w.WriteUint16(uint16(len(a.Data)))
		w.WriteBytes(a.Data)
	}
}

func decodeActionData(r *Reader) ([]ActionData, error) {
	var out []ActionData
	for r.Remaining() > 0 {
		var a ActionData
		uid, err := r.Byte()
		if err != nil {
			return nil, fmt.Errorf("wire: action batch: %w", err)
		}
		n, err := r.UInt16()
		if err != nil {
			return nil, fmt.Errorf("wire: action batch: %w", err)
		}
		data, err := r.Bytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("wire: action batch: %w", err)
		}
		a.UID, a.Data = uid, data
		out = append(out, a)
	}
	return out, nil
}

// IncomingAction is the final frame of a batch window; it alone carries the
// sync-cadence interval used for pacing feedback.
type IncomingAction struct {
	Actions      []ActionData
	SendInterval uint16
}

func (p IncomingAction) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint16(p.SendInterval)
	encodeActionData(w, p.Actions)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeIncomingAction(r *Reader) (IncomingAction, error) {
	var p IncomingAction
	var err error
	if p.SendInterval, err = r.UInt16(); err != nil {
		return p, fmt.Errorf("wire: IncomingAction: %w", err)
	}
	if p.Actions, err = decodeActionData(r); err != nil {
		return p, fmt.Errorf("wire: IncomingAction: %w", err)
	}
	return p, nil
}

// IncomingAction2 is an oversize-spill batch that must precede its paired
// IncomingAction on the wire.
type IncomingAction2 struct {
	Actions []ActionData
}

func (p IncomingAction2) Encode() []byte {
	w := Get()
	defer w.Put()
	encodeActionData(w, p.Actions)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeIncomingAction2(r *Reader) (IncomingAction2, error) {
	var p IncomingAction2
	var err error
	if p.Actions, err = decodeActionData(r); err != nil {
		return p, fmt.Errorf("wire: IncomingAction2: %w", err)
	}
	return p, nil
}

// ChatFromHost delivers a relayed chat line to its recipients.
type ChatFromHost struct {
	FromUID    byte
	ToSIDs     []byte
	Flag       byte
	ExtraFlags uint32
	Message    string
}

func (p ChatFromHost) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.FromUID)
	w.WriteByte(byte(len(p.ToSIDs)))
	w.WriteBytes(p.ToSIDs)
	w.WriteByte(p.Flag)
	w.WriteUint32(p.ExtraFlags)
	w.WriteCString(p.Message)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeChatFromHost(r *Reader) (ChatFromHost, error) {
	var p ChatFromHost
	var err error
	if p.FromUID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: ChatFromHost: %w", err)
	}
	n, err := r.Byte()
	if err != nil {
		return p, fmt.Errorf("wire: ChatFromHost: %w", err)
	}
	if p.ToSIDs, err = r.Bytes(int(n)); err != nil {
		return p, fmt.Errorf("wire: ChatFromHost: %w", err)
	}
	if p.Flag, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: ChatFromHost: %w", err)
	}
	if p.ExtraFlags, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: ChatFromHost: %w", err)
	}
	if p.Message, err = r.CString(); err != nil {
		return p, fmt.Errorf("wire: ChatFromHost: %w", err)
	}
	return p, nil
}

// MapCheck reports the host's map identity for the joiner's download decision.
// SHA1 is only meaningful for version >= 23, which this codec always is.
type MapCheck struct {
	Path  string
	Size  uint32
	CRC32 uint32
	SHA1  [20]byte
}

func (p MapCheck) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteCString(p.Path)
	w.WriteUint32(p.Size)
	w.WriteUint32(p.CRC32)
	w.WriteBytes(p.SHA1[:])
	return append([]byte(nil), w.Bytes()...)
}

func DecodeMapCheck(r *Reader) (MapCheck, error) {
	var p MapCheck
	var err error
	if p.Path, err = r.CString(); err != nil {
		return p, fmt.Errorf("wire: MapCheck: %w", err)
	}
	if p.Size, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: MapCheck: %w", err)
	}
	if p.CRC32, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: MapCheck: %w", err)
	}
	sha, err := r.Bytes(20)
	if err != nil {
		return p, fmt.Errorf("wire: MapCheck: %w", err)
	}
	copy(p.SHA1[:], sha)
	return p, nil
}

// MapPart is one MapChunkSize-bounded map-transfer chunk.
type MapPart struct {
	FromUID  byte
	ToUID    byte
	ChunkPos uint32
	Data     []byte
}

func (p MapPart) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.FromUID)
	w.WriteByte(p.ToUID)
	w.WriteUint32(p.ChunkPos)
	w.WriteBytes(p.Data)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeMapPart(r *Reader) (MapPart, error) {
	var p MapPart
	var err error
	if p.FromUID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: MapPart: %w", err)
	}
	if p.ToUID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: MapPart: %w", err)
	}
	if p.ChunkPos, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: MapPart: %w", err)
	}
	if p.Data, err = r.Bytes(r.Remaining()); err != nil {
		return p, fmt.Errorf("wire: MapPart: %w", err)
	}
	return p, nil
}

// LagInfo is one lagger entry within START_LAG/STOP_LAG.
type LagInfo struct {
	UID            byte
	TicksSinceSync uint32
}

// StartLag lists every currently-lagging player.
type StartLag struct {
	Laggers []LagInfo
}

func (p StartLag) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(byte(len(p.Laggers)))
	for _, l := range p.Laggers {
		w.WriteByte(l.UID)
		w.WriteUint32(l.TicksSinceSync)
	}
	return append([]byte(nil), w.Bytes()...)
}

func DecodeStartLag(r *Reader) (StartLag, error) {
	var p StartLag
	n, err := r.Byte()
	if err != nil {
		return p, fmt.Errorf("wire: StartLag: %w", err)
	}
	p.Laggers = make([]LagInfo, n)
	for i := range p.Laggers {
		if p.Laggers[i].UID, err = r.Byte(); err != nil {
			return p, fmt.Errorf("wire: StartLag: %w", err)
		}
		if p.Laggers[i].TicksSinceSync, err = r.UInt32(); err != nil {
			return p, fmt.Errorf("wire: StartLag: %w", err)
		}
	}
	return p, nil
}

// StopLag clears one player from the lag screen.
type StopLag struct {
	UID            byte
	TicksSinceSync uint32
}

func (p StopLag) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.UID)
	w.WriteUint32(p.TicksSinceSync)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeStopLag(r *Reader) (StopLag, error) {
	var p StopLag
	var err error
	if p.UID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: StopLag: %w", err)
	}
	if p.TicksSinceSync, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: StopLag: %w", err)
	}
	return p, nil
}

// PingFromHost is a latency probe tagged with the sending tick.
type PingFromHost struct {
	Tick uint32
}

func (p PingFromHost) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.Tick)
	return append([]byte(nil), w.Bytes()...)
}

func DecodePingFromHost(r *Reader) (PingFromHost, error) {
	var p PingFromHost
	var err error
	if p.Tick, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: PingFromHost: %w", err)
	}
	return p, nil
}

// StartDownload instructs a client to begin the map transfer.
type StartDownload struct {
	ToUID byte
}

func (p StartDownload) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.ToUID)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeStartDownload(r *Reader) (StartDownload, error) {
	var p StartDownload
	var err error
	if p.ToUID, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: StartDownload: %w", err)
	}
	return p, nil
}

// GameInfo is the discovery advertisement payload. A discovery template is
// decoded into this struct per broadcast, its slot counts, uptime and port
// are updated, and it is encoded again.
type GameInfo struct {
	Version     byte
	HostCounter uint32
	EntryKey    uint32
	GameName    string
	MapData     []byte // opaque map-settings blob (width/flags/path/CRC encoded upstream)
	SlotsTotal  byte
	SlotsOpen   byte
	UpTimeSec   uint32
	Port        uint16
}

func (p GameInfo) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.Version)
	w.WriteUint32(p.HostCounter)
	w.WriteUint32(p.EntryKey)
	w.WriteCString(p.GameName)
	w.WriteUint16(uint16(len(p.MapData)))
	w.WriteBytes(p.MapData)
	w.WriteByte(p.SlotsTotal)
	w.WriteByte(p.SlotsOpen)
	w.WriteUint32(p.UpTimeSec)
	w.WriteUint16(p.Port)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeGameInfo(r *Reader) (GameInfo, error) {
	var p GameInfo
	var err error
	if p.Version, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	if p.HostCounter, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	if p.EntryKey, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	if p.GameName, err = r.CString(); err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	n, err := r.UInt16()
	if err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	if p.MapData, err = r.Bytes(int(n)); err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	if p.SlotsTotal, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	if p.SlotsOpen, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	if p.UpTimeSec, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	if p.Port, err = r.UInt16(); err != nil {
		return p, fmt.Errorf("wire: GameInfo: %w", err)
	}
	return p, nil
}

// CreateGame and DecreateGame bookend a session's GAMEINFO advertisements,
// one per supported version.
type CreateGame struct {
	Version     byte
	HostCounter uint32
}

func (p CreateGame) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(p.Version)
	w.WriteUint32(p.HostCounter)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeCreateGame(r *Reader) (CreateGame, error) {
	var p CreateGame
	var err error
	if p.Version, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: CreateGame: %w", err)
	}
	if p.HostCounter, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: CreateGame: %w", err)
	}
	return p, nil
}

// RefreshGame is the lax-mode recurring advertisement (open/total slots only).
type RefreshGame struct {
	HostCounter uint32
	SlotsOpen   byte
	SlotsTotal  byte
}

func (p RefreshGame) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.HostCounter)
	w.WriteByte(p.SlotsOpen)
	w.WriteByte(p.SlotsTotal)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeRefreshGame(r *Reader) (RefreshGame, error) {
	var p RefreshGame
	var err error
	if p.HostCounter, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: RefreshGame: %w", err)
	}
	if p.SlotsOpen, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: RefreshGame: %w", err)
	}
	if p.SlotsTotal, err = r.Byte(); err != nil {
		return p, fmt.Errorf("wire: RefreshGame: %w", err)
	}
	return p, nil
}

// DecreateGame withdraws a prior CreateGame advertisement.
type DecreateGame struct {
	HostCounter uint32
}

func (p DecreateGame) Encode() []byte {
	w := Get()
	defer w.Put()
	w.WriteUint32(p.HostCounter)
	return append([]byte(nil), w.Bytes()...)
}

func DecodeDecreateGame(r *Reader) (DecreateGame, error) {
	var p DecreateGame
	var err error
	if p.HostCounter, err = r.UInt32(); err != nil {
		return p, fmt.Errorf("wire: DecreateGame: %w", err)
	}
	return p, nil
}
