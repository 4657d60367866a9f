package secdesc

import (
	"fmt"

	"github.com/specterops/secdesc/internal/sddl"
)

// FromString converts an SDDL string into an owned security descriptor. On
// Windows the conversion is done by the OS; elsewhere the portable codec
// produces the same self-relative layout.
func FromString(s string) (*LocalBox[SecurityDescriptor], error) {
	return platformFromString(s)
}

// SIDFromString converts a textual SID, either the numeric S-form or a
// two-letter SDDL shorthand, into an owned SID.
func SIDFromString(s string) (*LocalBox[SID], error) {
	return platformSIDFromString(s)
}

// NewFromBytes copies a self-relative security descriptor blob, as returned
// by SMB QUERY_INFO or a raw OS API, into an owned allocation. The blob is
// validated before anything aliases it.
func NewFromBytes(b []byte) (*LocalBox[SecurityDescriptor], error) {
	if err := sddl.Validate(b); err != nil {
		return nil, fmt.Errorf("secdesc: invalid security descriptor: %w", err)
	}
	buf := make([]byte, len(b))
	copy(buf, b)
	return newLocalBox[SecurityDescriptor](trackBytes(buf)), nil
}
