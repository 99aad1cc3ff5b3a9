package slot

import "math/rand/v2"

// MapSettings describes the fixed, per-map constraints a Table enforces.
// These come from the map file (parsed by an external collaborator) and
// are supplied at Table construction.
type MapSettings struct {
	Version            uint8
	FixedPlayerSettings bool
	CustomForces        bool
	ObserversAllowed    bool
	MapCommSlot         int // index of the slot reserved for host-to-map communication, or -1
}

// Table is the authoritative slot table for one game session.
// Not safe for concurrent use — callers serialize access (the owning
// Session's single event loop).
type Table struct {
	slots    []Slot
	settings MapSettings
	dirty    bool
}

// NewTable builds a table of n slots, all open, for the given map settings.
func NewTable(n int, settings MapSettings) *Table {
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Slot{Status: StatusOpen}
	}
	return &Table{slots: slots, settings: settings}
}

// Settings returns the map settings this table was built with.
func (t *Table) Settings() MapSettings {
	return t.settings
}

// Len returns the number of slots.
func (t *Table) Len() int {
	return len(t.slots)
}

// Slots returns a read-only snapshot of the slot array.
func (t *Table) Slots() []Slot {
	out := make([]Slot, len(t.slots))
	copy(out, t.slots)
	return out
}

// Get returns the slot at sid.
func (t *Table) Get(sid int) (Slot, error) {
	if sid < 0 || sid >= len(t.slots) {
		return Slot{}, ErrSlotOutOfRange
	}
	return t.slots[sid], nil
}

// Dirty reports whether the table has unflushed mutations.
func (t *Table) Dirty() bool {
	return t.dirty
}

// ClearDirty marks the table as snapshotted (called after a SLOTINFO
// broadcast).
func (t *Table) ClearDirty() {
	t.dirty = false
}

func (t *Table) markDirty() {
	t.dirty = true
}

func (t *Table) inRange(sid int) bool {
	return sid >= 0 && sid < len(t.slots)
}

// occupiedControllerCount counts occupied non-observer slots (used to guard
// "would orphan the last controller").
func (t *Table) occupiedControllerCount() int {
	n := 0
	for _, s := range t.slots {
		if s.Status == StatusOccupied && s.Team != ObserverTeam(t.settings.Version) {
			n++
		}
	}
	return n
}

// OccupiedControllerCount is the exported form of occupiedControllerCount,
// used by the countdown precondition check (HCL length vs. occupied slots).
func (t *Table) OccupiedControllerCount() int {
	return t.occupiedControllerCount()
}

func (t *Table) colorInUse(color byte, except int) bool {
	for i, s := range t.slots {
		if i == except {
			continue
		}
		if s.Status == StatusOccupied && s.Team != ObserverTeam(t.settings.Version) && s.Color == color {
			return true
		}
	}
	return false
}

func (t *Table) lockedFixed(sid int) bool {
	return t.settings.FixedPlayerSettings && t.slots[sid].Status == StatusOccupied
}

// Open opens a vacant/closed slot.
func (t *Table) Open(sid int) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	if t.lockedFixed(sid) {
		return ErrLockedByFixedPlayerSettings
	}
	if t.settings.MapCommSlot == sid {
		return ErrTargetHoldsMapCommSlot
	}
	s := &t.slots[sid]
	if s.Status == StatusOccupied && t.occupiedControllerCount() <= 1 && s.Team != ObserverTeam(t.settings.Version) {
		return ErrWouldOrphanLastController
	}
	s.Status = StatusOpen
	s.UID = 0
	s.DownloadProgress = 0
	s.Type = TypeUser
	t.markDirty()
	return nil
}

// Close closes a slot (no joins accepted). Idempotent: closing an
// already-closed slot succeeds without mutation.
func (t *Table) Close(sid int) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	if t.slots[sid].Status == StatusClosed {
		return nil
	}
	if t.lockedFixed(sid) {
		return ErrLockedByFixedPlayerSettings
	}
	s := &t.slots[sid]
	s.Status = StatusClosed
	s.UID = 0
	s.DownloadProgress = 0
	s.Type = TypeNone
	t.markDirty()
	return nil
}

// SetComputer converts a slot to an AI controller of the given difficulty.
func (t *Table) SetComputer(sid int, difficulty Difficulty) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	if t.lockedFixed(sid) {
		return ErrLockedByFixedPlayerSettings
	}
	if t.settings.MapCommSlot == sid {
		return ErrTargetHoldsMapCommSlot
	}
	s := &t.slots[sid]
	s.Status = StatusOccupied
	s.Type = TypeComputer
	s.UID = 0
	s.CompDifficulty = difficulty
	s.DownloadProgress = 100
	t.markDirty()
	return nil
}

// Swap exchanges the contents of two slots. On custom-forces maps each slot
// keeps its own team and color, so Swap (not SetTeam) moves controllers
// between fixed teams.
func (t *Table) Swap(a, b int) error {
	if !t.inRange(a) || !t.inRange(b) {
		return ErrSlotOutOfRange
	}
	if a == b {
		return nil
	}
	if t.settings.FixedPlayerSettings && (t.slots[a].Status == StatusOccupied || t.slots[b].Status == StatusOccupied) {
		return ErrLockedByFixedPlayerSettings
	}
	if t.settings.MapCommSlot == a || t.settings.MapCommSlot == b {
		return ErrTargetHoldsMapCommSlot
	}
	teamA, colorA := t.slots[a].Team, t.slots[a].Color
	teamB, colorB := t.slots[b].Team, t.slots[b].Color
	t.slots[a], t.slots[b] = t.slots[b], t.slots[a]
	if t.settings.CustomForces {
		// Team (and its color) belongs to the physical slot; only the
		// occupants move.
		t.slots[a].Team, t.slots[a].Color = teamA, colorA
		t.slots[b].Team, t.slots[b].Color = teamB, colorB
	}
	t.markDirty()
	return nil
}

// SetTeam assigns a slot's team. Disallowed on fixed-player-settings and
// custom-forces maps — use Swap there instead.
func (t *Table) SetTeam(sid int, team byte) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	if t.settings.FixedPlayerSettings {
		return ErrLockedByFixedPlayerSettings
	}
	if t.settings.CustomForces {
		return ErrLockedByCustomForces
	}
	if team == ObserverTeam(t.settings.Version) && !t.settings.ObserversAllowed {
		return ErrLockedByFixedPlayerSettings
	}
	s := &t.slots[sid]
	s.Team = team
	if team == ObserverTeam(t.settings.Version) {
		s.Color = ObserverColor(t.settings.Version)
	}
	t.markDirty()
	return nil
}

// SetColor assigns a slot's color, rejecting duplicates among non-observer
// occupied slots.
func (t *Table) SetColor(sid int, color byte) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	if t.lockedFixed(sid) {
		return ErrLockedByFixedPlayerSettings
	}
	if t.slots[sid].Team == ObserverTeam(t.settings.Version) {
		return nil // observers mirror team; color changes are a no-op
	}
	if t.colorInUse(color, sid) {
		return ErrWouldDuplicateColor
	}
	t.slots[sid].Color = color
	t.markDirty()
	return nil
}

// SetRace assigns a slot's race bitfield.
func (t *Table) SetRace(sid int, race Race) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	if t.lockedFixed(sid) {
		return ErrLockedByFixedPlayerSettings
	}
	t.slots[sid].Race = race
	t.markDirty()
	return nil
}

// SetHandicap assigns a slot's handicap. h is stored as given; it is not
// checked against ValidHandicaps.
func (t *Table) SetHandicap(sid int, h byte) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	if t.lockedFixed(sid) {
		return ErrLockedByFixedPlayerSettings
	}
	t.slots[sid].Handicap = h
	t.markDirty()
	return nil
}

// Occupy seats uid into sid, marking it occupied by a real player.
func (t *Table) Occupy(sid int, uid byte) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	if t.settings.MapCommSlot == sid {
		return ErrTargetHoldsMapCommSlot
	}
	s := &t.slots[sid]
	s.Status = StatusOccupied
	s.Type = TypeUser
	s.UID = uid
	s.DownloadProgress = 0
	t.markDirty()
	return nil
}

// Vacate empties an occupied slot back to open, preserving team/color/race
// on fixed-player-settings and custom-forces maps so a later joiner can
// reoccupy the same seat.
func (t *Table) Vacate(sid int) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	s := &t.slots[sid]
	if s.Status != StatusOccupied {
		return nil
	}
	if t.occupiedControllerCount() <= 1 && s.Team != ObserverTeam(t.settings.Version) {
		return ErrWouldOrphanLastController
	}
	s.Status = StatusOpen
	s.UID = 0
	s.DownloadProgress = 0
	s.Type = TypeUser
	t.markDirty()
	return nil
}

// FindByUID returns the slot index holding uid.
func (t *Table) FindByUID(uid byte) (int, error) {
	for i, s := range t.slots {
		if s.Status == StatusOccupied && s.UID == uid {
			return i, nil
		}
	}
	return -1, ErrNoSuchUID
}

// FindOpen returns the index of the first open slot matching role, or -1.
// role selects among {player, observer, any} — a single helper covering
// what would otherwise be two separate "find empty slot" variants.
type Role int

const (
	RolePlayer Role = iota
	RoleObserver
	RoleAny
)

func (t *Table) FindOpen(role Role) int {
	obsTeam := ObserverTeam(t.settings.Version)
	for i, s := range t.slots {
		if s.Status != StatusOpen {
			continue
		}
		switch role {
		case RolePlayer:
			if s.Team == obsTeam {
				continue
			}
		case RoleObserver:
			if s.Team != obsTeam {
				continue
			}
		}
		return i
	}
	return -1
}

// OccupiedNonObserverTeams returns the distinct team values among occupied,
// non-observer slots — used by the countdown precondition "at least two
// distinct non-observer teams are represented".
func (t *Table) OccupiedNonObserverTeams() map[byte]struct{} {
	obsTeam := ObserverTeam(t.settings.Version)
	teams := map[byte]struct{}{}
	for _, s := range t.slots {
		if s.Status == StatusOccupied && s.Team != obsTeam {
			teams[s.Team] = struct{}{}
		}
	}
	return teams
}

// AllDownloadsComplete reports whether every occupied slot has reached 100%.
func (t *Table) AllDownloadsComplete() bool {
	for _, s := range t.slots {
		if s.Status == StatusOccupied && s.DownloadProgress != 100 {
			return false
		}
	}
	return true
}

// SetDownloadProgress updates a slot's progress without disturbing other
// dirty-tracking semantics beyond marking dirty (lobby ticks snapshot this
// at most once per second).
func (t *Table) SetDownloadProgress(sid int, pct byte) error {
	if !t.inRange(sid) {
		return ErrSlotOutOfRange
	}
	if pct > 100 {
		pct = 100
	}
	t.slots[sid].DownloadProgress = pct
	t.markDirty()
	return nil
}

// Shuffle randomly redistributes controllers among slots that share the
// same team (so it is a no-op on team composition). On fixed-player-
// settings maps it fails outright; custom-forces maps only shuffle within
// each physical team's slot group, since team is fixed per slot there.
func (t *Table) Shuffle() error {
	if t.settings.FixedPlayerSettings {
		return ErrLockedByFixedPlayerSettings
	}
	groups := map[byte][]int{}
	for i, s := range t.slots {
		if s.Status == StatusOccupied && (s.Type == TypeUser || s.Type == TypeComputer) {
			groups[s.Team] = append(groups[s.Team], i)
		}
	}
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		perm := rand.Perm(len(idxs))
		originals := make([]Slot, len(idxs))
		for i, sid := range idxs {
			originals[i] = t.slots[sid]
		}
		for i, sid := range idxs {
			src := originals[perm[i]]
			// Keep this slot's own team/color fixed (custom-forces safe);
			// only the controller identity/type/handicap/race/progress move.
			t.slots[sid].UID = src.UID
			t.slots[sid].Type = src.Type
			t.slots[sid].CompDifficulty = src.CompDifficulty
			t.slots[sid].DownloadProgress = src.DownloadProgress
			t.slots[sid].Race = src.Race
			t.slots[sid].Handicap = src.Handicap
		}
	}
	t.markDirty()
	return nil
}
