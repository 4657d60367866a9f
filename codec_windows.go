//go:build windows

package secdesc

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// The conversions go through raw advapi32 calls rather than the x/sys
// wrappers: the wrapper for string-to-descriptor copies the result onto the
// Go heap and frees the original, but the LocalBox ownership model needs
// the LocalAlloc pointer itself.
var (
	modadvapi32 = windows.NewLazySystemDLL("advapi32.dll")

	procConvertStringSDToSDW = modadvapi32.NewProc("ConvertStringSecurityDescriptorToSecurityDescriptorW")
	procConvertSDToStringSDW = modadvapi32.NewProc("ConvertSecurityDescriptorToStringSecurityDescriptorW")
	procConvertStringSidW    = modadvapi32.NewProc("ConvertStringSidToSidW")
)

const sddlRevision1 = 1

func localFree(p unsafe.Pointer) {
	windows.LocalFree(windows.Handle(uintptr(p)))
}

func platformFromString(s string) (*LocalBox[SecurityDescriptor], error) {
	text, err := windows.UTF16PtrFromString(s)
	if err != nil {
		return nil, &SDDLError{SDDL: s, Err: err}
	}

	var sd unsafe.Pointer
	r1, _, e1 := procConvertStringSDToSDW.Call(
		uintptr(unsafe.Pointer(text)),
		sddlRevision1,
		uintptr(unsafe.Pointer(&sd)),
		0,
	)
	if r1 == 0 {
		return nil, &SDDLError{SDDL: s, Err: e1}
	}

	trackNative(sd, localFree)
	return newLocalBox[SecurityDescriptor](sd), nil
}

func platformSIDFromString(s string) (*LocalBox[SID], error) {
	text, err := windows.UTF16PtrFromString(s)
	if err != nil {
		return nil, &SDDLError{SDDL: s, Err: err}
	}

	var sid unsafe.Pointer
	r1, _, e1 := procConvertStringSidW.Call(
		uintptr(unsafe.Pointer(text)),
		uintptr(unsafe.Pointer(&sid)),
	)
	if r1 == 0 {
		return nil, &SDDLError{SDDL: s, Err: e1}
	}

	trackNative(sid, localFree)
	return newLocalBox[SID](sid), nil
}

func platformSDDLFor(sd *SecurityDescriptor, info SecurityInformation) (string, error) {
	var text *uint16
	r1, _, e1 := procConvertSDToStringSDW.Call(
		uintptr(unsafe.Pointer(sd)),
		sddlRevision1,
		uintptr(info),
		uintptr(unsafe.Pointer(&text)),
		0,
	)
	if r1 == 0 {
		return "", e1
	}
	defer localFree(unsafe.Pointer(text))

	return windows.UTF16PtrToString(text), nil
}

func platformIsValid(sd *SecurityDescriptor) bool {
	return (*windows.SECURITY_DESCRIPTOR)(unsafe.Pointer(sd)).IsValid()
}
