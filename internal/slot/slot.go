// Package slot implements the per-game slot table: the authoritative
// seating chart and its invariants.
package slot

import "errors"

// Type is the occupant kind of a slot.
type Type byte

const (
	TypeUser       Type = iota // a human or reconnecting player
	TypeComputer                // an AI opponent
	TypeNeutral                  // neutral hostile/passive slot (map-controlled)
	TypeRescuable                // a "rescuable" neutral slot
	TypeNone                     // not a usable slot on this map
)

// Status is the occupancy state of a slot.
type Status byte

const (
	StatusOpen Status = iota
	StatusClosed
	StatusOccupied
)

// Difficulty is the computer-controller difficulty.
type Difficulty byte

const (
	DifficultyEasy Difficulty = iota
	DifficultyNormal
	DifficultyHard
)

// Race is a bitfield; a slot may allow several races to be selectable.
type Race byte

const (
	RaceHuman     Race = 1 << 0
	RaceOrc       Race = 1 << 1
	RaceUndead    Race = 1 << 2
	RaceNightElf  Race = 1 << 3
	RaceRandom    Race = 1 << 4
	RaceSelectable Race = 1 << 5
)

// ObserverTeam returns the team value reserved for observers, which depends
// on the map's supported version tier: 12 pre-1.29, 24 from 1.29.
func ObserverTeam(version uint8) byte {
	if version >= 29 {
		return 24
	}
	return 12
}

// ObserverColor mirrors ObserverTeam for a slot's color field.
func ObserverColor(version uint8) byte {
	return ObserverTeam(version)
}

// ValidHandicaps lists the only handicap values a slot may hold outside of
// a transient HCL encoding window.
var ValidHandicaps = [...]byte{50, 60, 70, 80, 90, 100}

// IsValidHandicap reports whether h is one of the six supported values.
func IsValidHandicap(h byte) bool {
	for _, v := range ValidHandicaps {
		if v == h {
			return true
		}
	}
	return false
}

// Slot is one seat in a game.
type Slot struct {
	UID              byte
	DownloadProgress byte // 0..100
	Status           Status
	Type             Type
	Team             byte // or ObserverTeam(version)
	Color            byte // or ObserverColor(version)
	Race             Race
	CompDifficulty   Difficulty
	Handicap         byte
}

// IsComputer reports whether the slot is AI-controlled.
func (s Slot) IsComputer() bool {
	return s.Type == TypeComputer
}

// IsObserver reports whether the slot's team is the observer sentinel for
// the given protocol version.
func (s Slot) IsObserver(version uint8) bool {
	return s.Team == ObserverTeam(version)
}

// Vacant reports whether the slot holds no UID and is not occupied.
func (s Slot) Vacant() bool {
	return s.Status != StatusOccupied && s.UID == 0
}

// Failure modes for mutating Table operations.
var (
	ErrLockedByFixedPlayerSettings = errors.New("slot: locked by fixed player settings")
	ErrLockedByCustomForces        = errors.New("slot: locked by custom forces")
	ErrWouldDuplicateColor         = errors.New("slot: would duplicate a non-observer color")
	ErrWouldOrphanLastController   = errors.New("slot: would orphan the last controller")
	ErrSlotOutOfRange              = errors.New("slot: index out of range")
	ErrTargetHoldsMapCommSlot      = errors.New("slot: target holds the map-communication slot")
	ErrNoSuchUID                   = errors.New("slot: no slot holds that UID")
)
