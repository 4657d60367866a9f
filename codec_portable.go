//go:build !windows

package secdesc

import (
	"github.com/specterops/secdesc/internal/sddl"
)

func platformFromString(s string) (*LocalBox[SecurityDescriptor], error) {
	blob, err := sddl.FromString(s)
	if err != nil {
		return nil, &SDDLError{SDDL: s, Err: err}
	}
	return newLocalBox[SecurityDescriptor](trackBytes(blob)), nil
}

func platformSIDFromString(s string) (*LocalBox[SID], error) {
	sid, err := sddl.StringToSID(s)
	if err != nil {
		return nil, &SDDLError{SDDL: s, Err: err}
	}
	return newLocalBox[SID](trackBytes(sid)), nil
}

func platformSDDLFor(sd *SecurityDescriptor, info SecurityInformation) (string, error) {
	return sddl.ToString(sd.rawBytes(), sddl.Information(info))
}

func platformIsValid(sd *SecurityDescriptor) bool {
	return sddl.Validate(sd.rawBytes()) == nil
}
