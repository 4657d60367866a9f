//go:build windows

package secdesc

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// LookupPath queries the owner, group and DACL of a file or directory.
func LookupPath(path string) (*LocalBox[SecurityDescriptor], error) {
	return LookupPathFor(path, defaultLookupInformation)
}

// LookupFile queries the owner, group and DACL of an open file by handle.
func LookupFile(f *os.File) (*LocalBox[SecurityDescriptor], error) {
	return LookupFileFor(f, defaultLookupInformation)
}

// LookupPathFor queries the selected parts of a file or directory's
// security descriptor. The OS allocates the self-relative descriptor; the
// returned box owns it. Requesting SACLSecurityInformation needs
// SeSecurityPrivilege.
func LookupPathFor(path string, info SecurityInformation) (*LocalBox[SecurityDescriptor], error) {
	sd, err := windows.GetNamedSecurityInfo(path, windows.SE_FILE_OBJECT, windows.SECURITY_INFORMATION(info))
	if err != nil {
		return nil, err
	}
	return ownNative(sd), nil
}

// LookupFileFor queries the selected parts of an open file's security
// descriptor by handle.
func LookupFileFor(f *os.File, info SecurityInformation) (*LocalBox[SecurityDescriptor], error) {
	sd, err := windows.GetSecurityInfo(windows.Handle(f.Fd()), windows.SE_FILE_OBJECT, windows.SECURITY_INFORMATION(info))
	if err != nil {
		return nil, err
	}
	return ownNative(sd), nil
}

func ownNative(sd *windows.SECURITY_DESCRIPTOR) *LocalBox[SecurityDescriptor] {
	p := unsafe.Pointer(sd)
	trackNative(p, localFree)
	return newLocalBox[SecurityDescriptor](p)
}
