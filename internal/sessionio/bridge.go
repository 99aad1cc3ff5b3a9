// Package sessionio bridges the netio transport layer to one game.Session:
// it runs the admission handshake, decodes in-game frames onto Session
// method calls, and relays chat and slot-setting changes back out.
//
// Bridge itself satisfies host.Session and is what gets registered with the
// host controller, not the raw *game.Session: internal/host.Controller.Run
// is the one goroutine that is ever allowed to touch a Session, ticking
// every registered Session's Update in turn. Bridge.Update first drains the
// queue that per-connection goroutines post closures onto, then calls
// through to the real Session.Update — so every Session mutation, whether
// triggered by an inbound frame or by a timer, runs on that single
// goroutine, exactly as internal/host.Controller's doc comment assumes.
package sessionio

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/wc3aura/aura/internal/command"
	"github.com/wc3aura/aura/internal/game"
	"github.com/wc3aura/aura/internal/netio"
	"github.com/wc3aura/aura/internal/slot"
	"github.com/wc3aura/aura/internal/store"
	"github.com/wc3aura/aura/internal/wire"
)

const eventQueueSize = 128

// infoProbeUID is the throwaway UID used in the one-shot SLOTINFOJOIN reply
// to an information-probe REQJOIN (realm index 0x01); the connection closes
// immediately after, so it never collides with a real admission.
const infoProbeUID = 100

// Bridge owns one Session's connections and, by satisfying host.Session,
// lets the host controller's single tick loop be the only goroutine that
// ever calls into the underlying Session.
type Bridge struct {
	session    *game.Session
	listener   *netio.Listener
	hub        *netio.Hub
	mapCheck   wire.MapCheck
	dispatcher *command.Dispatcher
	modStore   store.ModerationStore
	realmID    int
	download   *DownloadPump

	events        chan func()
	closed        chan struct{}
	closeOnce     sync.Once
	checksumTable map[byte]uint32
}

// NewBridge wires session to listener through hub. dispatcher and modStore
// may be nil (no commands, no moderation lookups); download may be nil (no
// map-transfer support for this session).
func NewBridge(session *game.Session, listener *netio.Listener, hub *netio.Hub, mapCheck wire.MapCheck, dispatcher *command.Dispatcher, modStore store.ModerationStore, realmID int, download *DownloadPump) *Bridge {
	return &Bridge{
		session:    session,
		listener:   listener,
		hub:        hub,
		mapCheck:   mapCheck,
		dispatcher: dispatcher,
		modStore:   modStore,
		realmID:    realmID,
		download:   download,
		events:     make(chan func(), eventQueueSize),
		closed:     make(chan struct{}),
	}
}

// Serve runs the accept loop until ctx is canceled.
func (b *Bridge) Serve(ctx context.Context) error {
	return b.listener.Serve(ctx, b.handleConn)
}

// ID, InLobby, Started, JoinInProgress satisfy host.Session by forwarding
// to the wrapped Session; none of them mutate, so they're safe to call from
// any goroutine (the host controller's read-only Lobbies/Started snapshots
// included).
func (b *Bridge) ID() string           { return b.session.ID() }
func (b *Bridge) InLobby() bool        { return b.session.InLobby() }
func (b *Bridge) Started() bool        { return b.session.Started() }
func (b *Bridge) JoinInProgress() bool { return b.session.JoinInProgress() }

// Update satisfies host.Session: it drains every closure connection
// goroutines have queued since the last tick, then runs one tick of the
// Session itself, all on the caller's goroutine (the host controller's
// single tick loop).
func (b *Bridge) Update(ctx context.Context) bool {
	b.drainEvents()
	done := b.session.Update(ctx)
	if done {
		b.closeOnce.Do(func() { close(b.closed) })
	}
	return done
}

func (b *Bridge) drainEvents() {
	for {
		select {
		case fn := <-b.events:
			fn()
		default:
			return
		}
	}
}

// enqueue posts fn for the next Update to run, giving up once the Session
// has been torn down.
func (b *Bridge) enqueue(fn func()) {
	select {
	case b.events <- fn:
	case <-b.closed:
	}
}

// handleConn runs the admission handshake then routes every subsequent
// frame from conn into the session until the peer disconnects.
func (b *Bridge) handleConn(ctx context.Context, conn *netio.Conn) {
	var uid byte
	var joined bool

	conn.ReadLoop(ctx, func(f wire.Frame) {
		if !joined {
			if f.Type != wire.MsgReqJoin {
				return
			}
			req, err := wire.DecodeReqJoin(wire.NewReader(f.Payload))
			if err != nil {
				conn.Close()
				return
			}

			switch realm := wire.RealmIndex(req.HostCounter); {
			case realm == wire.RealmLAN:
				// proceeds to the normal admission path below, entry key required
			case realm == wire.RealmInfoProbe:
				if frame, err := b.infoProbe(ctx); err == nil {
					conn.WriteRaw(frame)
				}
				conn.Close()
				return
			default:
				// 0x02-0x0F are reserved, and with no realm registry to
				// resolve an id >= 0x10 against, every realm is unknown —
				// both fall back to an outright reject.
				if frame, ferr := wire.EncodeFrame(wire.MsgRejectJoin, wire.RejectJoin{Reason: wire.RejectFull}.Encode()); ferr == nil {
					conn.WriteRaw(frame)
				}
				conn.Close()
				return
			}

			assigned, rejectFrame, rejects, admitErr := b.admit(ctx, conn, req)
			if admitErr != nil {
				conn.Close()
				return
			}
			if len(rejects) > 0 {
				conn.WriteRaw(rejectFrame)
				conn.Close()
				return
			}
			uid = assigned
			joined = true
			return
		}
		b.dispatchInGame(ctx, uid, f)
	})

	if !joined {
		return
	}
	b.hub.Unbind(uid)
	b.enqueue(func() {
		if p := b.session.Players[uid]; p != nil && p.ReconnectCapable {
			b.session.NoteDisconnect(uid, time.Now())
			return
		}
		b.session.Leave(uid, "connection closed")
	})
}

// admitResult is admit's reply, delivered over a one-shot channel so the
// connection goroutine can block on the single-threaded admission decision
// without itself touching the Session.
type admitResult struct {
	uid     byte
	frame   []byte
	rejects []wire.RejectReason
	err     error
}

// admit resolves ban/reservation status, then peeks the UID Session.Admit
// will itself allocate and pre-binds it into hub before calling Admit — the
// only way to satisfy Admit's internal sink.SendTo calls, which happen
// before admit's caller ever learns the UID. The peek is safe because
// AllocateUID is a pure scan and every session mutation is serialized
// through this same dispatch goroutine, so nothing can allocate in between.
func (b *Bridge) admit(ctx context.Context, conn *netio.Conn, req wire.ReqJoin) (byte, []byte, []wire.RejectReason, error) {
	host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	externalIP := net.ParseIP(host)

	resultCh := make(chan admitResult, 1)
	b.enqueue(func() {
		var banned, reserved bool
		if b.modStore != nil {
			if ban, err := b.modStore.IsBanned(ctx, b.realmID, req.Name, host); err == nil && ban != nil {
				banned = true
			}
			if ok, err := b.modStore.IsReserved(ctx, b.session.ID(), req.Name); err == nil {
				reserved = ok
			}
		}

		uid, err := b.session.AllocateUID()
		if err != nil {
			resultCh <- admitResult{err: err}
			return
		}
		b.hub.Bind(uid, conn)

		joinReq := game.JoinRequest{
			Name:       req.Name,
			InternalIP: req.InternalIP,
			ExternalIP: externalIP,
			Reserved:   reserved,
			Banned:     banned,
			LAN:        wire.RealmIndex(req.HostCounter) == wire.RealmLAN,
			EntryKey:   req.EntryKey,
		}
		frame, rejects, admitErr := b.session.Admit(joinReq, b.mapCheck, time.Now())
		if admitErr != nil {
			b.hub.Unbind(uid)
			resultCh <- admitResult{err: admitErr}
			return
		}
		if len(rejects) > 0 {
			b.hub.Unbind(uid)
			resultCh <- admitResult{frame: frame, rejects: rejects}
			return
		}
		resultCh <- admitResult{uid: uid}
	})

	select {
	case r := <-resultCh:
		return r.uid, r.frame, r.rejects, r.err
	case <-ctx.Done():
		return 0, nil, nil, ctx.Err()
	}
}

// infoProbe answers a realm-0x01 REQJOIN with a one-shot SLOTINFOJOIN built
// from the current lobby snapshot, without allocating a UID or touching
// Players; the connection closes right after. Reads Table/RandomSeed
// through the dispatch goroutine like every other Session access.
func (b *Bridge) infoProbe(ctx context.Context) ([]byte, error) {
	resultCh := make(chan []byte, 1)
	b.enqueue(func() {
		frame, err := wire.EncodeFrame(wire.MsgSlotInfoJoin, wire.SlotInfoJoin{
			UID:        infoProbeUID,
			Slots:      b.session.Table.Slots(),
			RandomSeed: b.session.RandomSeed(),
			NumPlayers: byte(len(b.session.Players)),
		}.Encode())
		if err != nil {
			resultCh <- nil
			return
		}
		resultCh <- frame
	})
	select {
	case frame := <-resultCh:
		if frame == nil {
			return nil, fmt.Errorf("sessionio: encoding info-probe reply")
		}
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dispatchInGame decodes one post-admission frame and enqueues the Session
// call it implies.
func (b *Bridge) dispatchInGame(ctx context.Context, uid byte, f wire.Frame) {
	switch f.Type {
	case wire.MsgOutgoingAction:
		p, err := wire.DecodeOutgoingAction(wire.NewReader(f.Payload))
		if err != nil {
			return
		}
		b.enqueue(func() { b.session.QueueAction(uid, p.Data) })

	case wire.MsgOutgoingKeepAlive:
		p, err := wire.DecodeOutgoingKeepAlive(wire.NewReader(f.Payload))
		if err != nil {
			return
		}
		b.enqueue(func() {
			checksums := b.checksums()
			checksums[uid] = p.Checksum
			b.session.RecordKeepAlive(uid, p.Checksum, activeUIDs(b.session), checksums)
		})

	case wire.MsgGameLoadedSelf:
		b.enqueue(func() { b.session.RecordGameLoaded(uid, time.Now()) })

	case wire.MsgChatToHost:
		p, err := wire.DecodeChatToHost(wire.NewReader(f.Payload))
		if err != nil {
			return
		}
		b.handleChat(ctx, uid, p)

	case wire.MsgDropReq:
		b.enqueue(func() { b.session.VoteDrop(uid, activeUIDs(b.session)) })

	case wire.MsgLeaveReq:
		b.enqueue(func() {
			b.hub.Unbind(uid)
			b.session.Leave(uid, "left the game")
		})

	case wire.MsgMapSize:
		p, err := wire.DecodeMapSize(wire.NewReader(f.Payload))
		if err != nil || b.download == nil || p.MapSize >= b.mapCheck.Size {
			return
		}
		go b.download.Stream(ctx, uid, p.MapSize,
			func(frame []byte) { _ = b.hub.SendTo(uid, frame) },
			func(pct byte) {
				b.enqueue(func() {
					if sid, err := b.session.Table.FindByUID(uid); err == nil {
						_ = b.session.Table.SetDownloadProgress(sid, pct)
					}
				})
			})
	}
}

// checksums lazily builds the per-bridge keep-alive checksum table; kept on
// Bridge rather than Session since it is transport bookkeeping, not game
// state.
func (b *Bridge) checksums() map[byte]uint32 {
	if b.checksumTable == nil {
		b.checksumTable = make(map[byte]uint32)
	}
	return b.checksumTable
}

// activeUIDs lists every seated player's UID. Must only be called from the
// dispatch goroutine (it reads Session.Players directly).
func activeUIDs(s *game.Session) []byte {
	out := make([]byte, 0, len(s.Players))
	for uid := range s.Players {
		out = append(out, uid)
	}
	return out
}

// handleChat routes one CHAT_TO_HOST frame: a text message through
// RouteChat (and the command dispatcher, if it begins with the token), or a
// slot-setting change straight onto the slot table.
func (b *Bridge) handleChat(ctx context.Context, uid byte, p wire.ChatToHost) {
	switch p.Flag {
	case wire.ChatFlagMessage:
		b.enqueue(func() {
			if b.dispatcher != nil && strings.HasPrefix(p.Message, b.dispatcher.Token) {
				cmdCtx := command.Context{
					Service:      command.ServiceGameChat,
					SenderName:   b.senderName(uid),
					SenderRealm:  b.realmID,
					TargetGameID: b.session.ID(),
					Level:        b.levelFor(uid),
				}
				reply, err := b.session.DispatchCommand(ctx, b.dispatcher, cmdCtx, p.Message)
				if err != nil {
					reply = err.Error()
				}
				if reply != "" {
					b.sendChat(uid, []byte{uid}, reply)
				}
				return
			}

			recipient := game.ChatRecipient(p.ExtraFlags & 0xFF)
			targets := b.session.RouteChat(uid, recipient, false)
			if len(targets) > 0 {
				b.sendChat(uid, targets, p.Message)
			}
		})

	case wire.ChatFlagTeamChange, wire.ChatFlagColorChange, wire.ChatFlagRaceChange, wire.ChatFlagHandicapChange:
		b.enqueue(func() {
			sid, err := b.session.Table.FindByUID(uid)
			if err != nil {
				return
			}
			switch p.Flag {
			case wire.ChatFlagTeamChange:
				_ = b.session.Table.SetTeam(sid, p.Value)
			case wire.ChatFlagColorChange:
				_ = b.session.Table.SetColor(sid, p.Value)
			case wire.ChatFlagRaceChange:
				_ = b.session.Table.SetRace(sid, slot.Race(p.Value))
			case wire.ChatFlagHandicapChange:
				_ = b.session.Table.SetHandicap(sid, p.Value)
			}
		})
	}
}

// senderName and levelFor must only be called from the dispatch goroutine.
func (b *Bridge) senderName(uid byte) string {
	if p := b.session.Players[uid]; p != nil {
		return p.Name
	}
	return ""
}

// levelFor derives a caller's command permission from lobby ownership; a
// real deployment would also consult realm admin lists, which belong to the
// chat-adapter integration this session's scope doesn't build.
func (b *Bridge) levelFor(uid byte) command.Level {
	if p := b.session.Players[uid]; p != nil && b.session.HasOwner() && strings.EqualFold(b.session.OwnerName(), p.Name) {
		return command.LevelOwner
	}
	return command.LevelUnverified
}

func (b *Bridge) sendChat(from byte, to []byte, msg string) {
	frame, err := wire.EncodeFrame(wire.MsgChatFromHost, wire.ChatFromHost{
		FromUID: from,
		ToSIDs:  to,
		Flag:    wire.ChatFlagMessage,
		Message: msg,
	}.Encode())
	if err != nil {
		return
	}
	for _, uid := range to {
		_ = b.hub.SendTo(uid, frame)
	}
}
