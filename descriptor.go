package secdesc

import (
	"fmt"
	"unsafe"
)

// Control is the SECURITY_DESCRIPTOR control word.
type Control uint16

const (
	SEOwnerDefaulted     Control = 0x0001
	SEGroupDefaulted     Control = 0x0002
	SEDACLPresent        Control = 0x0004
	SEDACLDefaulted      Control = 0x0008
	SESACLPresent        Control = 0x0010
	SESACLDefaulted      Control = 0x0020
	SEDACLAutoInheritReq Control = 0x0100
	SESACLAutoInheritReq Control = 0x0200
	SEDACLAutoInherited  Control = 0x0400
	SESACLAutoInherited  Control = 0x0800
	SEDACLProtected      Control = 0x1000
	SESACLProtected      Control = 0x2000
	SERMControlValid     Control = 0x4000
	SESelfRelative       Control = 0x8000
)

// SecurityDescriptor is a borrowed view of a self-relative security
// descriptor. Its layout matches the 20-byte wire header; the sub-records
// live in the same allocation at the recorded offsets.
type SecurityDescriptor struct {
	revision byte
	sbz1     byte
	control  Control
	ownerOff uint32
	groupOff uint32
	saclOff  uint32
	daclOff  uint32
}

func (sd *SecurityDescriptor) Revision() uint8  { return sd.revision }
func (sd *SecurityDescriptor) Control() Control { return sd.control }

func (sd *SecurityDescriptor) atOffset(off uint32) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(sd), uintptr(off))
}

// Owner returns the owner SID, or nil when the descriptor has none.
func (sd *SecurityDescriptor) Owner() *SID {
	if sd.ownerOff == 0 {
		return nil
	}
	return (*SID)(sd.atOffset(sd.ownerOff))
}

// Group returns the primary group SID, or nil when the descriptor has none.
func (sd *SecurityDescriptor) Group() *SID {
	if sd.groupOff == 0 {
		return nil
	}
	return (*SID)(sd.atOffset(sd.groupOff))
}

// DACL returns the discretionary ACL. It is nil both when the descriptor
// has no DACL at all and when it carries a present null DACL; the two cases
// are told apart through Control and SEDACLPresent.
func (sd *SecurityDescriptor) DACL() *ACL {
	return sd.acl(sd.daclOff, SEDACLPresent)
}

// SACL returns the system ACL, with the same nil semantics as DACL.
func (sd *SecurityDescriptor) SACL() *ACL {
	return sd.acl(sd.saclOff, SESACLPresent)
}

func (sd *SecurityDescriptor) acl(off uint32, present Control) *ACL {
	if off == 0 {
		return nil
	}
	if sd.control&present == 0 {
		panic(fmt.Sprintf("secdesc: descriptor has an ACL at offset %d but control 0x%04x lacks the present bit", off, uint16(sd.control)))
	}
	return (*ACL)(sd.atOffset(off))
}

// SDDL renders the whole descriptor as an SDDL string.
func (sd *SecurityDescriptor) SDDL() (string, error) {
	return sd.SDDLFor(AllSecurityInformation)
}

// SDDLFor renders the parts of the descriptor selected by info as SDDL.
// Parts outside the mask are skipped even when set in the descriptor.
func (sd *SecurityDescriptor) SDDLFor(info SecurityInformation) (string, error) {
	return platformSDDLFor(sd, info)
}

// IsValid reports whether the descriptor is a structurally sound
// self-relative descriptor: known revision, self-relative control bit set,
// and every offset pointing at an in-bounds sub-record.
func (sd *SecurityDescriptor) IsValid() bool {
	return platformIsValid(sd)
}

// relativeLength returns the byte length of the descriptor allocation,
// computed from the offsets and the sizes of the sub-records they point to.
func (sd *SecurityDescriptor) relativeLength() int {
	end := 20
	grow := func(off uint32, size int) {
		if off != 0 && int(off)+size > end {
			end = int(off) + size
		}
	}
	if s := sd.Owner(); s != nil {
		grow(sd.ownerOff, s.Size())
	}
	if s := sd.Group(); s != nil {
		grow(sd.groupOff, s.Size())
	}
	if a := sd.SACL(); a != nil {
		grow(sd.saclOff, a.Size())
	}
	if a := sd.DACL(); a != nil {
		grow(sd.daclOff, a.Size())
	}
	return end
}

func (sd *SecurityDescriptor) rawBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(sd)), sd.relativeLength())
}

// String is a diagnostic rendering; use SDDL for machine consumption.
func (sd *SecurityDescriptor) String() string {
	owner, group := "<none>", "<none>"
	if s := sd.Owner(); s != nil {
		owner = s.String()
	}
	if s := sd.Group(); s != nil {
		group = s.String()
	}
	text, err := sd.SDDL()
	if err != nil {
		text = fmt.Sprintf("<invalid: %v>", err)
	}
	return fmt.Sprintf("SecurityDescriptor{owner: %s, group: %s, sddl: %q}", owner, group, text)
}
