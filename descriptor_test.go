package secdesc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFromString(t *testing.T, s string) *SecurityDescriptor {
	t.Helper()
	box, err := FromString(s)
	require.NoError(t, err)
	t.Cleanup(box.Close)
	return box.View()
}

func TestFromStringRoundTrip(t *testing.T) {
	for _, input := range []string{
		"",
		"O:AOG:SY",
		"O:SU",
		"G:SI",
		"O:AOG:SYD:S:",
		"O:BAG:SYD:(A;;FA;;;SY)",
		"D:PAI(A;OICI;GRGW;;;BU)",
	} {
		t.Run(input, func(t *testing.T) {
			sd := mustFromString(t, input)
			out, err := sd.SDDL()
			require.NoError(t, err)
			assert.Equal(t, input, out)
		})
	}
}

func TestEmptyDescriptor(t *testing.T) {
	sd := mustFromString(t, "")

	assert.EqualValues(t, 1, sd.Revision())
	assert.NotZero(t, sd.Control()&SESelfRelative)
	assert.Nil(t, sd.Owner())
	assert.Nil(t, sd.Group())
	assert.Nil(t, sd.DACL())
	assert.Nil(t, sd.SACL())

	out, err := sd.SDDL()
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestACLPresence(t *testing.T) {
	cases := []struct {
		input       string
		daclPresent bool
		saclPresent bool
	}{
		{"O:LAG:AO", false, false},
		{"O:LAG:AOD:", true, false},
		{"O:LAG:AOS:", false, true},
		{"O:LAG:AOD:S:", true, true},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			sd := mustFromString(t, tc.input)

			assert.Equal(t, tc.daclPresent, sd.Control()&SEDACLPresent != 0)
			assert.Equal(t, tc.saclPresent, sd.Control()&SESACLPresent != 0)

			if tc.daclPresent {
				dacl := sd.DACL()
				require.NotNil(t, dacl, "empty present DACL is still a DACL")
				assert.Zero(t, dacl.AceCount())
			} else {
				assert.Nil(t, sd.DACL())
			}
			if tc.saclPresent {
				require.NotNil(t, sd.SACL())
			} else {
				assert.Nil(t, sd.SACL())
			}

			out, err := sd.SDDL()
			require.NoError(t, err)
			assert.Equal(t, tc.input, out)
		})
	}
}

func TestNullDACL(t *testing.T) {
	sd := mustFromString(t, "D:NO_ACCESS_CONTROL")

	assert.NotZero(t, sd.Control()&SEDACLPresent, "null DACL keeps the present bit")
	assert.Nil(t, sd.DACL(), "null DACL has no ACL view")
}

func TestDACLContents(t *testing.T) {
	sd := mustFromString(t, "D:(A;;FA;;;BA)(A;;FR;;;WD)")

	dacl := sd.DACL()
	require.NotNil(t, dacl)
	assert.EqualValues(t, 2, dacl.AceCount())
	assert.EqualValues(t, 2, dacl.Revision())
	assert.Greater(t, dacl.Size(), 8)
}

func TestSDDLFor(t *testing.T) {
	sd := mustFromString(t, "O:BAG:SYD:(A;;FA;;;WD)")

	cases := []struct {
		info SecurityInformation
		want string
	}{
		{OwnerSecurityInformation, "O:BA"},
		{GroupSecurityInformation, "G:SY"},
		{DACLSecurityInformation, "D:(A;;FA;;;WD)"},
		{SACLSecurityInformation, ""},
		{AllSecurityInformation, "O:BAG:SYD:(A;;FA;;;WD)"},
	}
	for _, tc := range cases {
		out, err := sd.SDDLFor(tc.info)
		require.NoError(t, err)
		assert.Equal(t, tc.want, out, "info 0x%x", uint32(tc.info))
	}
}

// testDescriptorBlob is a minimal self-relative descriptor: owner and group
// S-1-5-32-544, one DACL ACE granting Everyone full file access.
var testDescriptorBlob = []byte{
	// Header
	0x01, 0x00, // Revision, Sbz1
	0x04, 0x80, // Control: SE_DACL_PRESENT | SE_SELF_RELATIVE
	0x30, 0x00, 0x00, 0x00, // owner at 48
	0x40, 0x00, 0x00, 0x00, // group at 64
	0x00, 0x00, 0x00, 0x00, // no SACL
	0x14, 0x00, 0x00, 0x00, // DACL at 20

	// DACL: revision 2, 28 bytes, 1 ACE
	0x02, 0x00, 0x1c, 0x00, 0x01, 0x00, 0x00, 0x00,
	// ACE: allow, size 20, mask FILE_ALL_ACCESS, SID S-1-1-0
	0x00, 0x00, 0x14, 0x00,
	0xff, 0x01, 0x1f, 0x00,
	0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x00,

	// Owner: S-1-5-32-544
	0x01, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	0x20, 0x00, 0x00, 0x00, 0x20, 0x02, 0x00, 0x00,

	// Group: S-1-5-32-544
	0x01, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	0x20, 0x00, 0x00, 0x00, 0x20, 0x02, 0x00, 0x00,
}

func TestNewFromBytes(t *testing.T) {
	box, err := NewFromBytes(testDescriptorBlob)
	require.NoError(t, err)
	defer box.Close()
	sd := box.View()

	require.NotNil(t, sd.Owner())
	assert.Equal(t, "S-1-5-32-544", sd.Owner().String())
	require.NotNil(t, sd.Group())
	assert.Equal(t, "S-1-5-32-544", sd.Group().String())

	dacl := sd.DACL()
	require.NotNil(t, dacl)
	assert.EqualValues(t, 1, dacl.AceCount())
	assert.EqualValues(t, 28, dacl.Size())

	out, err := sd.SDDL()
	require.NoError(t, err)
	assert.Equal(t, "O:BAG:BAD:(A;;FA;;;WD)", out)
}

func TestNewFromBytesCopies(t *testing.T) {
	blob := append([]byte(nil), testDescriptorBlob...)
	box, err := NewFromBytes(blob)
	require.NoError(t, err)
	defer box.Close()

	// Mutating the caller's blob must not affect the owned descriptor.
	for i := range blob {
		blob[i] = 0xff
	}
	assert.Equal(t, "S-1-5-32-544", box.View().Owner().String())
}

func TestIsValid(t *testing.T) {
	for _, input := range []string{"", "O:BAG:SY", "O:BAG:SYD:(A;;FA;;;WD)"} {
		sd := mustFromString(t, input)
		assert.True(t, sd.IsValid(), "FromString(%q)", input)
	}

	// Corrupting the revision in place must flip the verdict.
	sd := mustFromString(t, "O:BA")
	sd.rawBytes()[0] = 0x07
	assert.False(t, sd.IsValid())
}

func TestNewFromBytesRejectsInvalid(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"short":          testDescriptorBlob[:10],
		"bad revision":   append([]byte{0x07}, testDescriptorBlob[1:]...),
		"absolute form":  {0x01, 0x00, 0x04, 0x00, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		"offset overrun": {0x01, 0x00, 0x00, 0x80, 0xff, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewFromBytes(blob)
			assert.Error(t, err)
		})
	}
}

func TestFromStringErrors(t *testing.T) {
	for _, input := range []string{
		"O:NOTASID",
		"X:BA",
		"O:BAO:SY",
		"D:(A;;FA;;WD)",
	} {
		_, err := FromString(input)
		require.Error(t, err, "input %q", input)

		var sddlErr *SDDLError
		if assert.ErrorAs(t, err, &sddlErr) {
			assert.Equal(t, input, sddlErr.SDDL)
		}
	}
}

func TestDescriptorString(t *testing.T) {
	sd := mustFromString(t, "O:BAG:SYD:(A;;FA;;;WD)")

	out := sd.String()
	assert.Contains(t, out, "S-1-5-32-544")
	assert.Contains(t, out, "S-1-5-18")
	assert.Contains(t, out, "O:BAG:SYD:(A;;FA;;;WD)")
}
