package secdesc

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by descriptor lookup on platforms that have no
// way to query security descriptors.
var ErrUnsupported = errors.New("secdesc: security descriptor lookup is not supported on this platform")

// SDDLError reports a failed conversion between SDDL text and a binary
// security descriptor, keeping the offending input.
type SDDLError struct {
	SDDL string
	Err  error
}

func (e *SDDLError) Error() string {
	return fmt.Sprintf("secdesc: converting %q: %v", e.SDDL, e.Err)
}

func (e *SDDLError) Unwrap() error { return e.Err }
