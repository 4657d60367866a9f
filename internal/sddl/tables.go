package sddl

// Revision numbers fixed by the on-disk formats.
const (
	sdRevision  = 1 // SECURITY_DESCRIPTOR.Revision, always 1
	sidRevision = 1 // SID.Revision, always 1
	aclRevision = 2 // ACL revision for the basic filesystem ACE types
	// ACL revision used when object ACEs are present. We do not emit it but
	// accept it on input; unsupported ACE types are rejected later anyway.
	aclRevisionDS = 4
)

// Information selects which parts of a security descriptor to render.
// The values match the Windows SECURITY_INFORMATION bitmask.
type Information uint32

const (
	OwnerInformation Information = 0x00000001
	GroupInformation Information = 0x00000002
	DACLInformation  Information = 0x00000004
	SACLInformation  Information = 0x00000008

	AllInformation = OwnerInformation | GroupInformation | DACLInformation | SACLInformation
)

// SECURITY_DESCRIPTOR.Control bits.
const (
	seOwnerDefaulted      = 0x0001
	seGroupDefaulted      = 0x0002
	seDACLPresent         = 0x0004
	seDACLDefaulted       = 0x0008
	seSACLPresent         = 0x0010
	seSACLDefaulted       = 0x0020
	seDACLAutoInheritReq  = 0x0100
	seSACLAutoInheritReq  = 0x0200
	seDACLAutoInherited   = 0x0400
	seSACLAutoInherited   = 0x0800
	seDACLProtected       = 0x1000
	seSACLProtected       = 0x2000
	seRMControlValid      = 0x4000
	seSelfRelative        = 0x8000
)

// ACE_HEADER.AceType values.
const (
	accessAllowedAceType     = 0x00
	accessDeniedAceType      = 0x01
	systemAuditAceType       = 0x02
	systemAlarmAceType       = 0x03
	systemMandatoryLabelType = 0x11
)

// ACE_HEADER.AceFlags bits.
const (
	objectInheritAce        = 0x01
	containerInheritAce     = 0x02
	noPropagateInheritAce   = 0x04
	inheritOnlyAce          = 0x08
	inheritedAce            = 0x10
	successfulAccessAceFlag = 0x40
	failedAccessAceFlag     = 0x80
)

// aceTypeNames maps SDDL ACE type tokens to AceType values. Only the
// non-object filesystem/audit types are supported; object and callback ACE
// types are rejected on both encode and decode.
var aceTypeNames = []struct {
	name string
	typ  byte
}{
	{"A", accessAllowedAceType},
	{"D", accessDeniedAceType},
	{"AU", systemAuditAceType},
	{"AL", systemAlarmAceType},
	{"ML", systemMandatoryLabelType},
}

// aceFlagNames maps SDDL ACE flag tokens to AceFlags bits, in the canonical
// rendering order.
var aceFlagNames = []struct {
	name string
	flag byte
}{
	{"OI", objectInheritAce},
	{"CI", containerInheritAce},
	{"NP", noPropagateInheritAce},
	{"IO", inheritOnlyAce},
	{"ID", inheritedAce},
	{"SA", successfulAccessAceFlag},
	{"FA", failedAccessAceFlag},
}

// Access mask bits and composites (winnt.h).
const (
	genericRead    = 0x80000000
	genericWrite   = 0x40000000
	genericExecute = 0x20000000
	genericAll     = 0x10000000

	rightDelete  = 0x00010000
	readControl  = 0x00020000
	writeDAC     = 0x00040000
	writeOwner   = 0x00080000
	synchronize  = 0x00100000
	standardAll  = 0x001F0000
	standardReqd = 0x000F0000

	dsCreateChild   = 0x0001
	dsDeleteChild   = 0x0002
	dsListChildren  = 0x0004
	dsSelf          = 0x0008
	dsReadProp      = 0x0010
	dsWriteProp     = 0x0020
	dsDeleteTree    = 0x0040
	dsListObject    = 0x0080
	dsControlAccess = 0x0100

	fileAllAccess      = standardReqd | synchronize | 0x1FF
	fileGenericRead    = readControl | 0x0001 | 0x0080 | 0x0008 | synchronize
	fileGenericWrite   = readControl | 0x0002 | 0x0100 | 0x0010 | 0x0004 | synchronize
	fileGenericExecute = readControl | 0x0080 | 0x0020 | synchronize

	keyRead      = (readControl | 0x0001 | 0x0008 | 0x0010) &^ synchronize
	keyWrite     = (readControl | 0x0002 | 0x0004) &^ synchronize
	keyExecute   = keyRead &^ synchronize
	keyAllAccess = (standardAll | 0x0001 | 0x0002 | 0x0004 | 0x0008 | 0x0010 | 0x0020) &^ synchronize

	labelNoWriteUp   = 0x1
	labelNoReadUp    = 0x2
	labelNoExecuteUp = 0x4
)

// aceRightNames maps SDDL rights tokens to access masks. Order matters: on
// encode the first exact match wins, then single-bit tokens are concatenated
// in this order, so rendering is deterministic.
var aceRightNames = []struct {
	name string
	mask uint32
}{
	{"GA", genericAll},
	{"GR", genericRead},
	{"GW", genericWrite},
	{"GX", genericExecute},
	{"RC", readControl},
	{"SD", rightDelete},
	{"WD", writeDAC},
	{"WO", writeOwner},
	{"RP", dsReadProp},
	{"WP", dsWriteProp},
	{"CC", dsCreateChild},
	{"DC", dsDeleteChild},
	{"LC", dsListChildren},
	{"SW", dsSelf},
	{"LO", dsListObject},
	{"DT", dsDeleteTree},
	{"CR", dsControlAccess},
	{"FA", fileAllAccess},
	{"FR", fileGenericRead},
	{"FW", fileGenericWrite},
	{"FX", fileGenericExecute},
	{"KA", keyAllAccess},
	{"KR", keyRead},
	{"KW", keyWrite},
	{"KX", keyExecute},
}

// labelRightNames are the mandatory-label policy tokens. Their masks
// collide numerically with the DS object rights, so rendering picks the
// table by ACE type; parsing accepts both sets since the bits are the same.
var labelRightNames = []struct {
	name string
	mask uint32
}{
	{"NR", labelNoReadUp},
	{"NW", labelNoWriteUp},
	{"NX", labelNoExecuteUp},
}

// aceRightComposites are the tokens that may not be combined with others on
// encode; everything before FA in aceRightNames is a single right that can
// be concatenated.
const singleRightCount = 17 // GA..CR above

// SID identifier authorities, big endian (winnt.h SECURITY_*_AUTHORITY).
var (
	authWorld          = [6]byte{0, 0, 0, 0, 0, 1}
	authLocal          = [6]byte{0, 0, 0, 0, 0, 2}
	authCreator        = [6]byte{0, 0, 0, 0, 0, 3}
	authNT             = [6]byte{0, 0, 0, 0, 0, 5}
	authAppPackage     = [6]byte{0, 0, 0, 0, 0, 15}
	authMandatoryLabel = [6]byte{0, 0, 0, 0, 0, 16}
	authAuthentication = [6]byte{0, 0, 0, 0, 0, 18}
)

// Well-known RIDs used by the shorthand table.
const (
	ridBuiltinDomain = 32
	ridNTNonUnique   = 21
)

type wellKnownSID struct {
	revision  byte
	authority [6]byte
	subAuths  []uint32
}

// placeholderDomain stands in for the local machine domain when resolving
// domain-relative shorthands (LA, LG, ...) without an account database. On
// Windows the OS codec resolves these against the real machine SID; here the
// fixed value keeps the textual round trip stable.
var placeholderDomain = []uint32{ridNTNonUnique, 0, 0, 0}

func domainRelative(rid uint32) wellKnownSID {
	subs := append(append([]uint32{}, placeholderDomain...), rid)
	return wellKnownSID{sidRevision, authNT, subs}
}

// wellKnownSIDNames maps two-letter SDDL SID tokens to SID values. Ordered so
// the reverse (SID to shorthand) lookup is deterministic.
var wellKnownSIDNames = []struct {
	name string
	sid  wellKnownSID
}{
	{"WD", wellKnownSID{sidRevision, authWorld, []uint32{0}}},
	{"CO", wellKnownSID{sidRevision, authCreator, []uint32{0}}},
	{"CG", wellKnownSID{sidRevision, authCreator, []uint32{1}}},
	{"OW", wellKnownSID{sidRevision, authCreator, []uint32{4}}},

	{"NU", wellKnownSID{sidRevision, authNT, []uint32{2}}},
	{"IU", wellKnownSID{sidRevision, authNT, []uint32{4}}},
	{"SU", wellKnownSID{sidRevision, authNT, []uint32{6}}},
	{"AN", wellKnownSID{sidRevision, authNT, []uint32{7}}},
	{"ED", wellKnownSID{sidRevision, authNT, []uint32{9}}},
	{"PS", wellKnownSID{sidRevision, authNT, []uint32{10}}},
	{"AU", wellKnownSID{sidRevision, authNT, []uint32{11}}},
	{"RC", wellKnownSID{sidRevision, authNT, []uint32{12}}},
	{"SY", wellKnownSID{sidRevision, authNT, []uint32{18}}},
	{"LS", wellKnownSID{sidRevision, authNT, []uint32{19}}},
	{"NS", wellKnownSID{sidRevision, authNT, []uint32{20}}},
	{"WR", wellKnownSID{sidRevision, authNT, []uint32{33}}},

	{"BA", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 544}}},
	{"BU", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 545}}},
	{"BG", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 546}}},
	{"PU", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 547}}},
	{"AO", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 548}}},
	{"SO", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 549}}},
	{"PO", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 550}}},
	{"BO", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 551}}},
	{"RE", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 552}}},
	{"RU", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 554}}},
	{"RD", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 555}}},
	{"NO", wellKnownSID{sidRevision, authNT, []uint32{ridBuiltinDomain, 556}}},

	{"LW", wellKnownSID{sidRevision, authMandatoryLabel, []uint32{0x1000}}},
	{"ME", wellKnownSID{sidRevision, authMandatoryLabel, []uint32{0x2000}}},
	{"MP", wellKnownSID{sidRevision, authMandatoryLabel, []uint32{0x2100}}},
	{"HI", wellKnownSID{sidRevision, authMandatoryLabel, []uint32{0x3000}}},
	{"SI", wellKnownSID{sidRevision, authMandatoryLabel, []uint32{0x4000}}},

	{"AC", wellKnownSID{sidRevision, authAppPackage, []uint32{2, 1}}},
	{"AS", wellKnownSID{sidRevision, authAuthentication, []uint32{1}}},
	{"SS", wellKnownSID{sidRevision, authAuthentication, []uint32{2}}},
}

// domainRIDNames maps shorthand tokens for domain-relative accounts to their
// RID; the SID is synthesized against placeholderDomain.
var domainRIDNames = []struct {
	name string
	rid  uint32
}{
	{"LA", 500},
	{"LG", 501},
	{"DA", 512},
	{"DU", 513},
	{"DG", 514},
	{"DC", 515},
	{"DD", 516},
	{"CA", 517},
	{"SA", 518},
	{"EA", 519},
	{"PA", 520},
}

// shorthandToSID resolves a two-letter SDDL token to a SID value.
func shorthandToSID(name string) (wellKnownSID, bool) {
	for _, e := range wellKnownSIDNames {
		if e.name == name {
			return e.sid, true
		}
	}
	for _, e := range domainRIDNames {
		if e.name == name {
			return domainRelative(e.rid), true
		}
	}
	return wellKnownSID{}, false
}

// sidShorthands maps the canonical S-form of every shorthand back to its
// token, built once in table order so duplicates resolve deterministically.
var sidShorthands = func() map[string]string {
	m := make(map[string]string, len(wellKnownSIDNames)+len(domainRIDNames))
	add := func(name string, sid wellKnownSID) {
		s := sidValueString(sid)
		if _, dup := m[s]; !dup {
			m[s] = name
		}
	}
	for _, e := range wellKnownSIDNames {
		add(e.name, e.sid)
	}
	for _, e := range domainRIDNames {
		add(e.name, domainRelative(e.rid))
	}
	return m
}()
