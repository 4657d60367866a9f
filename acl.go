package secdesc

// ACL is a borrowed view of an access control list header. Like SID it
// always points into a live descriptor allocation.
type ACL struct {
	aclRevision byte
	sbz1        byte
	aclSize     uint16
	aceCount    uint16
	sbz2        uint16
}

func (a *ACL) Revision() uint8 { return a.aclRevision }

// Size returns the byte length of the ACL including all ACEs.
func (a *ACL) Size() int { return int(a.aclSize) }

// AceCount returns the number of ACEs in the list. A present ACL with zero
// ACEs denies all access; it is not the same as an absent ACL.
func (a *ACL) AceCount() int { return int(a.aceCount) }
