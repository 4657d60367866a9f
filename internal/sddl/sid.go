package sddl

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Binary SID layout: revision byte, sub-authority count byte, 6-byte
// big-endian identifier authority, then count little-endian uint32
// sub-authorities.
const (
	sidHeaderLen       = 8
	sidMaxSubAuthority = 15
)

// SIDLength returns the byte length of a SID with the given sub-authority
// count. The formula is exact for every count; there is no failure case.
func SIDLength(subAuthorityCount uint8) int {
	return sidHeaderLen + 4*int(subAuthorityCount)
}

// SIDToString renders the binary SID at the start of b in canonical
// S-R-I-S... form.
func SIDToString(b []byte) (string, error) {
	if len(b) < sidHeaderLen {
		return "", fmt.Errorf("binary SID too short: %d bytes", len(b))
	}

	revision := b[0]
	count := b[1]
	if len(b) < SIDLength(count) {
		return "", fmt.Errorf("binary SID too short for %d sub-authorities: %d bytes", count, len(b))
	}

	// The 48-bit identifier authority is big endian.
	authority := uint64(binary.BigEndian.Uint16(b[2:4]))<<32 |
		uint64(binary.BigEndian.Uint32(b[4:8]))

	var sb strings.Builder
	fmt.Fprintf(&sb, "S-%d-%d", revision, authority)
	for i := 0; i < int(count); i++ {
		off := sidHeaderLen + 4*i
		fmt.Fprintf(&sb, "-%d", binary.LittleEndian.Uint32(b[off:off+4]))
	}

	return sb.String(), nil
}

// StringToSID converts a textual SID, either the S-R-I-S... form or a
// two-letter SDDL shorthand, into its binary representation.
func StringToSID(s string) ([]byte, error) {
	if len(s) > 2 && (s[0] == 'S' || s[0] == 's') && s[1] == '-' {
		return numericStringToSID(s)
	}

	if wks, ok := shorthandToSID(s); ok {
		return sidFromValue(wks), nil
	}

	return nil, fmt.Errorf("invalid SID %q", s)
}

func numericStringToSID(s string) ([]byte, error) {
	parts := strings.Split(s[2:], "-")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid SID %q", s)
	}

	revision, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid SID revision in %q: %w", s, err)
	}
	if revision != sidRevision {
		return nil, fmt.Errorf("unsupported SID revision %d in %q", revision, s)
	}

	authority, err := strconv.ParseUint(parts[1], 10, 48)
	if err != nil {
		return nil, fmt.Errorf("invalid SID authority in %q: %w", s, err)
	}

	subAuths := parts[2:]
	if len(subAuths) > sidMaxSubAuthority {
		return nil, fmt.Errorf("SID %q has %d sub-authorities, max is %d", s, len(subAuths), sidMaxSubAuthority)
	}

	sid := make([]byte, SIDLength(uint8(len(subAuths))))
	sid[0] = byte(revision)
	sid[1] = byte(len(subAuths))
	binary.BigEndian.PutUint16(sid[2:4], uint16(authority>>32))
	binary.BigEndian.PutUint32(sid[4:8], uint32(authority))

	for i, part := range subAuths {
		sub, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid sub-authority %q in SID %q: %w", part, s, err)
		}
		off := sidHeaderLen + 4*i
		binary.LittleEndian.PutUint32(sid[off:off+4], uint32(sub))
	}

	return sid, nil
}

func sidFromValue(v wellKnownSID) []byte {
	sid := make([]byte, SIDLength(uint8(len(v.subAuths))))
	sid[0] = v.revision
	sid[1] = byte(len(v.subAuths))
	copy(sid[2:8], v.authority[:])
	for i, sub := range v.subAuths {
		off := sidHeaderLen + 4*i
		binary.LittleEndian.PutUint32(sid[off:off+4], sub)
	}
	return sid
}

// sidValueString renders a wellKnownSID value in canonical S-form without
// going through the binary representation; used to build the reverse
// shorthand table before any conversion helpers run.
func sidValueString(v wellKnownSID) string {
	authority := uint64(binary.BigEndian.Uint16(v.authority[0:2]))<<32 |
		uint64(binary.BigEndian.Uint32(v.authority[2:6]))

	var sb strings.Builder
	fmt.Fprintf(&sb, "S-%d-%d", v.revision, authority)
	for _, sub := range v.subAuths {
		fmt.Fprintf(&sb, "-%d", sub)
	}
	return sb.String()
}

// sidDisplayString renders the binary SID at the start of b the way the
// SDDL codec does: the two-letter shorthand when one exists, the canonical
// S-form otherwise.
func sidDisplayString(b []byte) (string, error) {
	s, err := SIDToString(b)
	if err != nil {
		return "", err
	}
	if short, ok := sidShorthands[s]; ok {
		return short, nil
	}
	return s, nil
}
