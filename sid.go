package secdesc

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/specterops/secdesc/internal/sddl"
)

// SID is a borrowed view of a security identifier: the fixed 8-byte header
// followed by the sub-authority array. Instances always point into a live
// descriptor or SID allocation; they are never constructed by value.
type SID struct {
	revision            byte
	subAuthorityCount   byte
	identifierAuthority [6]byte
}

// SidLengthRequired returns the byte length of a SID with the given number
// of sub-authorities. The formula holds for every count; there is no
// failure case.
func SidLengthRequired(subAuthorityCount uint8) int {
	return sddl.SIDLength(subAuthorityCount)
}

func (s *SID) Revision() uint8          { return s.revision }
func (s *SID) SubAuthorityCount() uint8 { return s.subAuthorityCount }

// IdentifierAuthority returns the 48-bit identifier authority in its
// big-endian wire order.
func (s *SID) IdentifierAuthority() [6]byte { return s.identifierAuthority }

// SubAuthority returns the i-th sub-authority. It panics when i is out of
// range, like any other out-of-bounds index.
func (s *SID) SubAuthority(i uint8) uint32 {
	if i >= s.subAuthorityCount {
		panic("secdesc: SID sub-authority index out of range")
	}
	b := s.bytes()
	off := 8 + 4*int(i)
	return binary.LittleEndian.Uint32(b[off:])
}

// Size returns the total byte length of the SID.
func (s *SID) Size() int {
	return SidLengthRequired(s.subAuthorityCount)
}

// Equal reports whether two SIDs are byte-for-byte identical. Views into
// different allocations compare equal when they name the same identity.
func (s *SID) Equal(o *SID) bool {
	if s == nil || o == nil {
		return s == o
	}
	return bytes.Equal(s.bytes(), o.bytes())
}

// String renders the SID in canonical S-R-I-S... form.
func (s *SID) String() string {
	out, err := sddl.SIDToString(s.bytes())
	if err != nil {
		return "<invalid SID>"
	}
	return out
}

func (s *SID) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(s)), s.Size())
}
