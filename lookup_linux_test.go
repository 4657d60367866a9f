//go:build linux

package secdesc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The CIFS security xattrs only exist on SMB mounts, so on an ordinary
// filesystem every lookup variant must surface the xattr error rather
// than fabricating a descriptor.
func TestLookupOutsideCIFSMount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	box, err := LookupPath(path)
	assert.Error(t, err)
	assert.Nil(t, box)

	box, err = LookupPathFor(path, SACLSecurityInformation)
	assert.Error(t, err)
	assert.Nil(t, box)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	box, err = LookupFile(f)
	assert.Error(t, err)
	assert.Nil(t, box)
}

func TestXattrKeySelection(t *testing.T) {
	cases := []struct {
		info SecurityInformation
		key  string
	}{
		{DACLSecurityInformation, xattrACL},
		{defaultLookupInformation, xattrNTSD},
		{OwnerSecurityInformation, xattrNTSD},
		{AllSecurityInformation, xattrNTSDFull},
		{SACLSecurityInformation, xattrNTSDFull},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.key, xattrKeyFor(tc.info), "info 0x%x", uint32(tc.info))
	}
}
