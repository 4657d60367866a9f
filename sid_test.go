package secdesc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidLengthRequired(t *testing.T) {
	for count := 0; count <= 255; count++ {
		assert.Equal(t, 8+4*count, SidLengthRequired(uint8(count)))
	}
}

func TestSIDFromString(t *testing.T) {
	box, err := SIDFromString("S-1-5-32-544")
	require.NoError(t, err)
	defer box.Close()
	sid := box.View()

	assert.EqualValues(t, 1, sid.Revision())
	assert.EqualValues(t, 2, sid.SubAuthorityCount())
	assert.Equal(t, [6]byte{0, 0, 0, 0, 0, 5}, sid.IdentifierAuthority())
	assert.EqualValues(t, 32, sid.SubAuthority(0))
	assert.EqualValues(t, 544, sid.SubAuthority(1))
	assert.Equal(t, 16, sid.Size())
	assert.Equal(t, "S-1-5-32-544", sid.String())
}

func TestSIDFromStringShorthand(t *testing.T) {
	box, err := SIDFromString("BA")
	require.NoError(t, err)
	defer box.Close()

	assert.Equal(t, "S-1-5-32-544", box.View().String())
}

func TestSIDFromStringInvalid(t *testing.T) {
	for _, input := range []string{"", "ZZ", "S-9-5-32", "S-1-5-32-notanumber"} {
		_, err := SIDFromString(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestSubAuthorityOutOfRange(t *testing.T) {
	box, err := SIDFromString("S-1-5-18")
	require.NoError(t, err)
	defer box.Close()

	assert.Panics(t, func() { box.View().SubAuthority(1) })
}

func TestSIDEqualAcrossAllocations(t *testing.T) {
	a := mustFromString(t, "O:BAG:SY")
	b := mustFromString(t, "O:BAG:AO")

	assert.True(t, a.Owner().Equal(b.Owner()), "same identity in different descriptors")
	assert.False(t, a.Group().Equal(b.Group()))
	assert.False(t, a.Owner().Equal(a.Group()))
	assert.True(t, a.Owner().Equal(a.Owner()))
}

func TestSIDEqualNil(t *testing.T) {
	sd := mustFromString(t, "O:BA")

	var nilSID *SID
	assert.True(t, nilSID.Equal(nil))
	assert.False(t, sd.Owner().Equal(nil))
	assert.False(t, nilSID.Equal(sd.Owner()))
	assert.Nil(t, sd.Group(), "descriptor without G: has no group")
}
