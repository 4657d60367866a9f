//go:build linux

package secdesc

import (
	"fmt"
	"os"

	"github.com/pkg/xattr"
)

// CIFS exposes the raw NT security descriptor of SMB-mounted files through
// extended attributes. Which attribute to read depends on how much of the
// descriptor is wanted; the kernel rejects the SACL variants on mounts
// without the right credentials.
const (
	xattrACL      = "system.cifs_acl"       // DACL only
	xattrNTSD     = "system.cifs_ntsd"      // owner, group, DACL
	xattrNTSDFull = "system.cifs_ntsd_full" // owner, group, DACL, SACL
)

func xattrKeyFor(info SecurityInformation) string {
	switch {
	case info&SACLSecurityInformation != 0:
		return xattrNTSDFull
	case info&(OwnerSecurityInformation|GroupSecurityInformation) != 0:
		return xattrNTSD
	default:
		return xattrACL
	}
}

// LookupPath reads the owner, group and DACL of a file on a CIFS mount.
func LookupPath(path string) (*LocalBox[SecurityDescriptor], error) {
	return LookupPathFor(path, defaultLookupInformation)
}

// LookupFile reads the owner, group and DACL of an open file on a CIFS
// mount.
func LookupFile(f *os.File) (*LocalBox[SecurityDescriptor], error) {
	return LookupFileFor(f, defaultLookupInformation)
}

// LookupPathFor reads the selected parts of a file's security descriptor.
// The descriptor comes back self-relative from the SMB server and is
// copied into an owned allocation.
func LookupPathFor(path string, info SecurityInformation) (*LocalBox[SecurityDescriptor], error) {
	key := xattrKeyFor(info)
	blob, err := xattr.Get(path, key)
	if err != nil {
		return nil, fmt.Errorf("secdesc: reading %s of %s: %w", key, path, err)
	}
	return NewFromBytes(blob)
}

// LookupFileFor reads the selected parts of an open file's security
// descriptor.
func LookupFileFor(f *os.File, info SecurityInformation) (*LocalBox[SecurityDescriptor], error) {
	key := xattrKeyFor(info)
	blob, err := xattr.FGet(f, key)
	if err != nil {
		return nil, fmt.Errorf("secdesc: reading %s of %s: %w", key, f.Name(), err)
	}
	return NewFromBytes(blob)
}
