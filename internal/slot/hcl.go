package slot

import "strings"

// hclAlphabet is every character an HCL string may contain.
const hclAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789 -=,."

// ValidHCLString reports whether s contains only characters the HCL
// encoding can represent.
func ValidHCLString(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune(hclAlphabet, r) {
			return false
		}
	}
	return true
}

// invalidHandicapValue returns the j-th handicap byte outside the valid
// {50,60,70,80,90,100} set, used to smuggle one HCL character per occupied
// slot. The map client reads these handicaps in-game and restores the
// real values once it has decoded the HCL string.
func invalidHandicapValue(charIndex int) byte {
	// Skip every value that collides with a real handicap so the encoded
	// byte is unambiguously "not a real handicap" to the reader on the
	// other end. 256 possible byte values minus 6 valid handicaps leaves
	// plenty of room for an HCL string far longer than any occupied-slot
	// count (max 24) will ever need.
	v := 0
	skipped := 0
	for {
		if !IsValidHandicap(byte(v)) {
			if skipped == charIndex {
				return byte(v)
			}
			skipped++
		}
		v++
		if v > 255 {
			return 0
		}
	}
}

// EncodeHCL rewrites the handicap of every occupied slot to smuggle one HCL
// character each. If hcl is empty, doesn't fit in the occupied slot
// count, or contains disallowed characters, it is a silent no-op — callers
// are expected to log-and-skip per spec, not treat this as an error.
func (t *Table) EncodeHCL(hcl string) bool {
	if hcl == "" {
		return false
	}
	if !ValidHCLString(hcl) {
		return false
	}
	occupied := make([]int, 0, len(t.slots))
	for i, s := range t.slots {
		if s.Status == StatusOccupied {
			occupied = append(occupied, i)
		}
	}
	if len(hcl) > len(occupied) {
		return false
	}
	for i, r := range []byte(hcl) {
		sid := occupied[i]
		t.slots[sid].Handicap = encodeHCLChar(r)
	}
	t.markDirty()
	return true
}

func encodeHCLChar(c byte) byte {
	idx := strings.IndexByte(hclAlphabet, c)
	if idx < 0 {
		idx = 0
	}
	return invalidHandicapValue(idx)
}

func decodeHCLChar(b byte) byte {
	// Inverse of invalidHandicapValue's skip-counting scheme.
	skipped := 0
	for v := 0; v <= 255; v++ {
		if !IsValidHandicap(byte(v)) {
			if byte(v) == b {
				if skipped < len(hclAlphabet) {
					return hclAlphabet[skipped]
				}
				return 0
			}
			skipped++
		}
	}
	return 0
}
