package secdesc

// SecurityInformation selects which parts of a security descriptor an
// operation touches. The values match the Windows SECURITY_INFORMATION
// bitmask, so they can be passed straight to OS APIs.
type SecurityInformation uint32

const (
	OwnerSecurityInformation SecurityInformation = 0x00000001
	GroupSecurityInformation SecurityInformation = 0x00000002
	DACLSecurityInformation  SecurityInformation = 0x00000004
	SACLSecurityInformation  SecurityInformation = 0x00000008

	// AllSecurityInformation selects every part this package handles.
	AllSecurityInformation = OwnerSecurityInformation | GroupSecurityInformation |
		DACLSecurityInformation | SACLSecurityInformation

	// defaultLookupInformation is what LookupPath and LookupFile ask for.
	// Reading the SACL needs extra privilege, so it is opt-in through the
	// For variants.
	defaultLookupInformation = OwnerSecurityInformation | GroupSecurityInformation |
		DACLSecurityInformation
)
