package sddl

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Self-relative SECURITY_DESCRIPTOR header layout. All multi-byte fields are
// little endian; the four offsets are relative to the start of the header
// and zero when the corresponding part is absent.
const (
	headerLength = 20

	offControl = 2
	offOwner   = 4
	offGroup   = 8
	offSACL    = 12
	offDACL    = 16

	aclHeaderLen = 8
	aceHeaderLen = 4
	aceFixedLen  = aceHeaderLen + 4 // header plus access mask
)

// control returns the descriptor control word. The caller must have
// validated sd.
func control(sd []byte) uint16 {
	return binary.LittleEndian.Uint16(sd[offControl:])
}

// offsets returns the owner, group, SACL and DACL offsets of a validated
// self-relative descriptor.
func offsets(sd []byte) (owner, group, sacl, dacl uint32) {
	return binary.LittleEndian.Uint32(sd[offOwner:]),
		binary.LittleEndian.Uint32(sd[offGroup:]),
		binary.LittleEndian.Uint32(sd[offSACL:]),
		binary.LittleEndian.Uint32(sd[offDACL:])
}

// FromString converts an SDDL string into a self-relative binary security
// descriptor. Sub-records are laid out owner, group, SACL, DACL after the
// header, each only when its section appears in the input.
func FromString(input string) ([]byte, error) {
	parsed, err := parseString(input)
	if err != nil {
		return nil, err
	}

	var owner, group []byte
	if parsed.Owner != "" {
		if owner, err = StringToSID(parsed.Owner); err != nil {
			return nil, fmt.Errorf("owner: %w", err)
		}
	}
	if parsed.Group != "" {
		if group, err = StringToSID(parsed.Group); err != nil {
			return nil, fmt.Errorf("group: %w", err)
		}
	}

	sacl, saclControl, err := buildACL(parsed.SACL, seSACLPresent, seSACLProtected, seSACLAutoInheritReq, seSACLAutoInherited)
	if err != nil {
		return nil, fmt.Errorf("SACL: %w", err)
	}
	dacl, daclControl, err := buildACL(parsed.DACL, seDACLPresent, seDACLProtected, seDACLAutoInheritReq, seDACLAutoInherited)
	if err != nil {
		return nil, fmt.Errorf("DACL: %w", err)
	}

	sd := make([]byte, headerLength+len(owner)+len(group)+len(sacl)+len(dacl))
	sd[0] = sdRevision
	binary.LittleEndian.PutUint16(sd[offControl:], seSelfRelative|saclControl|daclControl)

	off := headerLength
	place := func(fieldOff int, blob []byte) {
		if blob == nil {
			return
		}
		binary.LittleEndian.PutUint32(sd[fieldOff:], uint32(off))
		copy(sd[off:], blob)
		off += len(blob)
	}
	place(offOwner, owner)
	place(offGroup, group)
	place(offSACL, sacl)
	place(offDACL, dacl)

	return sd, nil
}

// buildACL converts one parsed ACL section into its binary blob and the
// control bits it contributes. An absent section yields (nil, 0); a
// NO_ACCESS_CONTROL section yields a nil blob but keeps the present bit, so
// the descriptor carries a present null ACL.
func buildACL(acl parsedACL, presentBit, protectedBit, autoReqBit, autoBit uint16) ([]byte, uint16, error) {
	if !acl.Present {
		return nil, 0, nil
	}

	control := presentBit
	null := false
	flags := acl.Flags
	for flags != "" {
		switch {
		case strings.HasPrefix(flags, "NO_ACCESS_CONTROL"):
			null = true
			flags = flags[len("NO_ACCESS_CONTROL"):]
		case strings.HasPrefix(flags, "AR"):
			control |= autoReqBit
			flags = flags[2:]
		case strings.HasPrefix(flags, "AI"):
			control |= autoBit
			flags = flags[2:]
		case flags[0] == 'P':
			control |= protectedBit
			flags = flags[1:]
		default:
			return nil, 0, fmt.Errorf("invalid ACL flags %q", acl.Flags)
		}
	}

	if null {
		if len(acl.Entries) != 0 {
			return nil, 0, fmt.Errorf("NO_ACCESS_CONTROL with %d ACEs", len(acl.Entries))
		}
		return nil, control, nil
	}

	var aces []byte
	for i, e := range acl.Entries {
		ace, err := buildACE(e)
		if err != nil {
			return nil, 0, fmt.Errorf("ACE %d: %w", i, err)
		}
		aces = append(aces, ace...)
	}

	size := aclHeaderLen + len(aces)
	if size > 0xFFFF {
		return nil, 0, fmt.Errorf("ACL size %d exceeds 65535", size)
	}
	if len(acl.Entries) > 0xFFFF {
		return nil, 0, fmt.Errorf("ACE count %d exceeds 65535", len(acl.Entries))
	}

	blob := make([]byte, aclHeaderLen, size)
	blob[0] = aclRevision
	binary.LittleEndian.PutUint16(blob[2:], uint16(size))
	binary.LittleEndian.PutUint16(blob[4:], uint16(len(acl.Entries)))
	return append(blob, aces...), control, nil
}

func buildACE(e aceEntry) ([]byte, error) {
	if len(e.Sections) != 6 {
		return nil, fmt.Errorf("has %d fields, want 6", len(e.Sections))
	}

	var aceType byte
	found := false
	for _, t := range aceTypeNames {
		if t.name == e.Sections[0] {
			aceType, found = t.typ, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unsupported ACE type %q", e.Sections[0])
	}

	aceFlags, err := parseACEFlags(e.Sections[1])
	if err != nil {
		return nil, err
	}
	mask, err := parseRights(e.Sections[2])
	if err != nil {
		return nil, err
	}

	// Object GUID fields imply an object ACE type, which has a larger
	// on-disk layout and is not handled.
	if e.Sections[3] != "" || e.Sections[4] != "" {
		return nil, fmt.Errorf("object GUIDs are not supported")
	}

	sid, err := StringToSID(e.Sections[5])
	if err != nil {
		return nil, err
	}

	size := aceFixedLen + len(sid)
	ace := make([]byte, size)
	ace[0] = aceType
	ace[1] = aceFlags
	binary.LittleEndian.PutUint16(ace[2:], uint16(size))
	binary.LittleEndian.PutUint32(ace[4:], mask)
	copy(ace[aceFixedLen:], sid)
	return ace, nil
}

func parseACEFlags(s string) (byte, error) {
	var flags byte
outer:
	for s != "" {
		if len(s) < 2 {
			return 0, fmt.Errorf("invalid ACE flags %q", s)
		}
		for _, f := range aceFlagNames {
			if f.name == s[:2] {
				flags |= f.flag
				s = s[2:]
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown ACE flag %q", s[:2])
	}
	return flags, nil
}

func parseRights(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		mask, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid rights %q: %w", s, err)
		}
		return uint32(mask), nil
	}

	var mask uint32
outer:
	for s != "" {
		if len(s) < 2 {
			return 0, fmt.Errorf("invalid rights %q", s)
		}
		for _, r := range aceRightNames {
			if r.name == s[:2] {
				mask |= r.mask
				s = s[2:]
				continue outer
			}
		}
		for _, r := range labelRightNames {
			if r.name == s[:2] {
				mask |= r.mask
				s = s[2:]
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown right %q", s[:2])
	}
	return mask, nil
}

// ToString renders a validated self-relative descriptor as SDDL. info masks
// which sections appear; parts whose bit is clear are skipped even when set
// in the descriptor.
func ToString(sd []byte, info Information) (string, error) {
	if err := Validate(sd); err != nil {
		return "", err
	}

	ctrl := control(sd)
	ownerOff, groupOff, saclOff, daclOff := offsets(sd)

	var sb strings.Builder
	if info&OwnerInformation != 0 && ownerOff != 0 {
		s, err := sidDisplayString(sd[ownerOff:])
		if err != nil {
			return "", fmt.Errorf("owner: %w", err)
		}
		sb.WriteString("O:")
		sb.WriteString(s)
	}
	if info&GroupInformation != 0 && groupOff != 0 {
		s, err := sidDisplayString(sd[groupOff:])
		if err != nil {
			return "", fmt.Errorf("group: %w", err)
		}
		sb.WriteString("G:")
		sb.WriteString(s)
	}
	if info&DACLInformation != 0 && ctrl&seDACLPresent != 0 {
		sb.WriteString("D:")
		if err := renderACL(&sb, sd, daclOff, ctrl, seDACLProtected, seDACLAutoInheritReq, seDACLAutoInherited); err != nil {
			return "", fmt.Errorf("DACL: %w", err)
		}
	}
	if info&SACLInformation != 0 && ctrl&seSACLPresent != 0 {
		sb.WriteString("S:")
		if err := renderACL(&sb, sd, saclOff, ctrl, seSACLProtected, seSACLAutoInheritReq, seSACLAutoInherited); err != nil {
			return "", fmt.Errorf("SACL: %w", err)
		}
	}

	return sb.String(), nil
}

func renderACL(sb *strings.Builder, sd []byte, off uint32, control, protectedBit, autoReqBit, autoBit uint16) error {
	if control&protectedBit != 0 {
		sb.WriteString("P")
	}
	if control&autoReqBit != 0 {
		sb.WriteString("AR")
	}
	if control&autoBit != 0 {
		sb.WriteString("AI")
	}
	if off == 0 {
		sb.WriteString("NO_ACCESS_CONTROL")
		return nil
	}

	acl := sd[off:]
	count := int(binary.LittleEndian.Uint16(acl[4:]))
	pos := aclHeaderLen
	for i := 0; i < count; i++ {
		ace := acl[pos:]
		size := int(binary.LittleEndian.Uint16(ace[2:]))
		if err := renderACE(sb, ace[:size]); err != nil {
			return fmt.Errorf("ACE %d: %w", i, err)
		}
		pos += size
	}
	return nil
}

func renderACE(sb *strings.Builder, ace []byte) error {
	typeName := ""
	for _, t := range aceTypeNames {
		if t.typ == ace[0] {
			typeName = t.name
			break
		}
	}
	if typeName == "" {
		return fmt.Errorf("unsupported ACE type 0x%02x", ace[0])
	}

	sid, err := sidDisplayString(ace[aceFixedLen:])
	if err != nil {
		return err
	}

	sb.WriteString("(")
	sb.WriteString(typeName)
	sb.WriteString(";")
	for _, f := range aceFlagNames {
		if ace[1]&f.flag != 0 {
			sb.WriteString(f.name)
		}
	}
	sb.WriteString(";")
	sb.WriteString(rightsString(binary.LittleEndian.Uint32(ace[4:]), ace[0] == systemMandatoryLabelType))
	sb.WriteString(";;;")
	sb.WriteString(sid)
	sb.WriteString(")")
	return nil
}

// rightsString renders an access mask: the first exact-match token,
// otherwise a concatenation of single-right tokens, otherwise hex. The
// fixed scan order makes rendering deterministic. Mandatory-label ACEs use
// the label token set, which shares bit values with the object rights.
func rightsString(mask uint32, label bool) string {
	if mask == 0 {
		return ""
	}
	if label {
		var sb strings.Builder
		remaining := mask
		for _, r := range labelRightNames {
			if remaining&r.mask == r.mask {
				sb.WriteString(r.name)
				remaining &^= r.mask
			}
		}
		if remaining != 0 {
			return fmt.Sprintf("0x%x", mask)
		}
		return sb.String()
	}
	for _, r := range aceRightNames {
		if r.mask == mask {
			return r.name
		}
	}

	var sb strings.Builder
	remaining := mask
	for _, r := range aceRightNames[:singleRightCount] {
		if remaining&r.mask == r.mask {
			sb.WriteString(r.name)
			remaining &^= r.mask
		}
	}
	if remaining != 0 {
		return fmt.Sprintf("0x%x", mask)
	}
	return sb.String()
}

// Validate checks that sd is a structurally sound self-relative security
// descriptor: header intact, every offset in bounds, SIDs and ACLs fully
// contained, present bits consistent with their offsets.
func Validate(sd []byte) error {
	if len(sd) < headerLength {
		return fmt.Errorf("descriptor too short: %d bytes", len(sd))
	}
	if sd[0] != sdRevision {
		return fmt.Errorf("unsupported descriptor revision %d", sd[0])
	}
	ctrl := control(sd)
	if ctrl&seSelfRelative == 0 {
		return fmt.Errorf("descriptor is not self-relative")
	}

	ownerOff, groupOff, saclOff, daclOff := offsets(sd)
	if err := validateSIDAt(sd, ownerOff); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if err := validateSIDAt(sd, groupOff); err != nil {
		return fmt.Errorf("group: %w", err)
	}

	if ctrl&seSACLPresent == 0 && saclOff != 0 {
		return fmt.Errorf("SACL offset set without SACL present")
	}
	if ctrl&seDACLPresent == 0 && daclOff != 0 {
		return fmt.Errorf("DACL offset set without DACL present")
	}
	if err := validateACLAt(sd, saclOff); err != nil {
		return fmt.Errorf("SACL: %w", err)
	}
	if err := validateACLAt(sd, daclOff); err != nil {
		return fmt.Errorf("DACL: %w", err)
	}
	return nil
}

func validateSIDAt(sd []byte, off uint32) error {
	if off == 0 {
		return nil
	}
	if int64(off)+sidHeaderLen > int64(len(sd)) {
		return fmt.Errorf("offset %d out of bounds", off)
	}
	sid := sd[off:]
	if sid[0] != sidRevision {
		return fmt.Errorf("unsupported SID revision %d", sid[0])
	}
	count := sid[1]
	if count > sidMaxSubAuthority {
		return fmt.Errorf("%d sub-authorities, max is %d", count, sidMaxSubAuthority)
	}
	if int64(off)+int64(SIDLength(count)) > int64(len(sd)) {
		return fmt.Errorf("SID at offset %d overruns descriptor", off)
	}
	return nil
}

func validateACLAt(sd []byte, off uint32) error {
	if off == 0 {
		return nil
	}
	if int64(off)+aclHeaderLen > int64(len(sd)) {
		return fmt.Errorf("offset %d out of bounds", off)
	}
	acl := sd[off:]
	if acl[0] != aclRevision && acl[0] != aclRevisionDS {
		return fmt.Errorf("unsupported ACL revision %d", acl[0])
	}
	size := int(binary.LittleEndian.Uint16(acl[2:]))
	if size < aclHeaderLen || int64(off)+int64(size) > int64(len(sd)) {
		return fmt.Errorf("ACL size %d overruns descriptor", size)
	}
	count := int(binary.LittleEndian.Uint16(acl[4:]))

	pos := aclHeaderLen
	for i := 0; i < count; i++ {
		if pos+aceFixedLen > size {
			return fmt.Errorf("ACE %d overruns ACL", i)
		}
		ace := acl[pos:]
		aceSize := int(binary.LittleEndian.Uint16(ace[2:]))
		if aceSize < aceFixedLen+sidHeaderLen || pos+aceSize > size {
			return fmt.Errorf("ACE %d has invalid size %d", i, aceSize)
		}
		sidLen := SIDLength(ace[aceFixedLen+1])
		if aceFixedLen+sidLen > aceSize {
			return fmt.Errorf("ACE %d SID overruns ACE", i)
		}
		pos += aceSize
	}
	return nil
}
