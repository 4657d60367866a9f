//go:build integration

// Integration tests against a live SMB server.
// Run with: go test -v -tags=integration ./smbquery -run TestIntegration
//
// Required environment variables:
//
//	SMB_TEST_HOST     - SMB server hostname or IP
//	SMB_TEST_USER     - Username for authentication
//	SMB_TEST_PASSWORD - Password for authentication
//	SMB_TEST_DOMAIN   - Domain (optional, defaults to "")
//	SMB_TEST_SHARE    - Share name to query
//	SMB_TEST_PATH     - File path on the share (optional, defaults to "")
package smbquery

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/specterops/secdesc"
)

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string) { l.t.Log(msg) }

func integrationSession(t *testing.T) *Session {
	t.Helper()
	host := os.Getenv("SMB_TEST_HOST")
	if host == "" {
		t.Skip("SMB_TEST_HOST not set, skipping integration test")
	}

	creds := Credentials{
		Username: os.Getenv("SMB_TEST_USER"),
		Password: os.Getenv("SMB_TEST_PASSWORD"),
		Domain:   os.Getenv("SMB_TEST_DOMAIN"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Dial(ctx, host, creds, WithLogger(testLogger{t}), WithTimeout(15*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIntegrationQuerySecurity(t *testing.T) {
	s := integrationSession(t)

	share := os.Getenv("SMB_TEST_SHARE")
	require.NotEmpty(t, share, "SMB_TEST_SHARE must be set")
	require.NoError(t, s.Mount(share))

	info := secdesc.OwnerSecurityInformation |
		secdesc.GroupSecurityInformation |
		secdesc.DACLSecurityInformation

	box, err := s.QuerySecurity(os.Getenv("SMB_TEST_PATH"), info)
	require.NoError(t, err)
	defer box.Close()

	sd := box.View()
	require.NotNil(t, sd.Owner(), "every file on a real server has an owner")
	t.Logf("descriptor: %s", sd)

	sddl, err := sd.SDDL()
	require.NoError(t, err)
	t.Logf("sddl: %s", sddl)
}
