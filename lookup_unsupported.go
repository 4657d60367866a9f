//go:build !windows && !linux

package secdesc

import "os"

// LookupPath is unavailable on this platform.
func LookupPath(path string) (*LocalBox[SecurityDescriptor], error) {
	return nil, ErrUnsupported
}

// LookupFile is unavailable on this platform.
func LookupFile(f *os.File) (*LocalBox[SecurityDescriptor], error) {
	return nil, ErrUnsupported
}

// LookupPathFor is unavailable on this platform.
func LookupPathFor(path string, info SecurityInformation) (*LocalBox[SecurityDescriptor], error) {
	return nil, ErrUnsupported
}

// LookupFileFor is unavailable on this platform.
func LookupFileFor(f *os.File, info SecurityInformation) (*LocalBox[SecurityDescriptor], error) {
	return nil, ErrUnsupported
}
