package sddl

import (
	"fmt"
	"strings"
)

// parsedSDDL is the textual form of a security descriptor, split into its
// four top-level sections. An ACL section that appears in the input is
// Present even when it carries no flags and no entries; "D:" and an absent
// DACL section are different descriptors.
type parsedSDDL struct {
	Owner string
	Group string
	DACL  parsedACL
	SACL  parsedACL
}

type parsedACL struct {
	Present bool
	Flags   string
	Entries []aceEntry
}

// aceEntry is one parenthesized ACE string split at top-level semicolons:
// type;flags;rights;object_guid;inherit_object_guid;sid[;extra].
type aceEntry struct {
	Sections []string
}

// parseString splits an SDDL string into sections. A section starts at a
// top-level "X:"; the only valid section letters are O, G, D and S. Values
// run to the next section start. Colons never appear inside SID tokens or
// ACE strings, so any top-level colon marks a section boundary.
func parseString(input string) (parsedSDDL, error) {
	var out parsedSDDL
	seen := map[byte]bool{}

	depth := 0
	inString := false
	section := byte(0)
	valueStart := 0

	commit := func(end int) error {
		if section == 0 {
			return nil
		}
		if seen[section] {
			return fmt.Errorf("duplicate %c: section", section)
		}
		seen[section] = true

		value := strings.TrimSpace(input[valueStart:end])
		switch section {
		case 'O':
			if value == "" {
				return fmt.Errorf("empty O: section")
			}
			out.Owner = value
		case 'G':
			if value == "" {
				return fmt.Errorf("empty G: section")
			}
			out.Group = value
		case 'D':
			acl, err := parseACLValue(value)
			if err != nil {
				return fmt.Errorf("in D: section: %w", err)
			}
			out.DACL = acl
		case 'S':
			acl, err := parseACLValue(value)
			if err != nil {
				return fmt.Errorf("in S: section: %w", err)
			}
			out.SACL = acl
		}
		return nil
	}

	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case inString:
			if c == '"' && input[i-1] != '\\' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				return out, fmt.Errorf("unbalanced ')' at offset %d", i)
			}
			depth--
		case depth == 0 && i+1 < len(input) && input[i+1] == ':':
			switch c {
			case 'O', 'G', 'D', 'S':
			default:
				return out, fmt.Errorf("invalid section %q", string(c))
			}
			if err := commit(i); err != nil {
				return out, err
			}
			section = c
			valueStart = i + 2
			i++ // skip the colon
		}
	}

	if inString {
		return out, fmt.Errorf("unterminated string literal")
	}
	if depth != 0 {
		return out, fmt.Errorf("unbalanced '('")
	}
	if section == 0 && strings.TrimSpace(input) != "" {
		return out, fmt.Errorf("no sections in %q", input)
	}
	if err := commit(len(input)); err != nil {
		return out, err
	}

	return out, nil
}

// parseACLValue splits an ACL section value into its flag prefix and the
// parenthesized ACE entries.
func parseACLValue(value string) (parsedACL, error) {
	acl := parsedACL{Present: true}

	open := strings.IndexByte(value, '(')
	if open < 0 {
		acl.Flags = strings.TrimSpace(value)
		return acl, nil
	}
	acl.Flags = strings.TrimSpace(value[:open])

	rest := value[open:]
	for rest != "" {
		if rest[0] != '(' {
			return acl, fmt.Errorf("unexpected %q between ACEs", string(rest[0]))
		}
		body, remainder, err := matchParen(rest)
		if err != nil {
			return acl, err
		}
		acl.Entries = append(acl.Entries, aceEntry{Sections: splitACESections(body)})
		rest = strings.TrimSpace(remainder)
	}

	return acl, nil
}

// matchParen returns the contents of the leading parenthesized group of s
// and whatever follows it. Nested parentheses and quoted strings (used by
// conditional ACEs) are skipped over, not interpreted.
func matchParen(s string) (body, rest string, err error) {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			if c == '"' && s[i-1] != '\\' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("unterminated ACE %q", s)
}

// splitACESections splits an ACE body at top-level semicolons.
func splitACESections(body string) []string {
	var sections []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case inString:
			if c == '"' && body[i-1] != '\\' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ';' && depth == 0:
			sections = append(sections, strings.TrimSpace(body[start:i]))
			start = i + 1
		}
	}
	sections = append(sections, strings.TrimSpace(body[start:]))
	return sections
}
