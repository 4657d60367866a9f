package smbquery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"/":                 "",
		"file.txt":          "file.txt",
		"/dir/file.txt":     `dir\file.txt`,
		`dir\sub\file.txt`:  `dir\sub\file.txt`,
		"dir/../other/f":    `other\f`,
		"./dir//file":       `dir\file`,
	}
	for input, want := range cases {
		assert.Equal(t, want, normalizePath(input), "input %q", input)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err      error
		category string
	}{
		{nil, ErrorCategoryUnknown},
		{errors.New("response error: Logon Failure"), ErrorCategoryAuth},
		{errors.New("negotiate: dialect mismatch"), ErrorCategoryProtocol},
		{errors.New("dial tcp: connection refused"), ErrorCategoryNetwork},
		{errors.New("i/o timeout"), ErrorCategoryNetwork},
		{errors.New("something odd"), ErrorCategoryUnknown},
	}
	for _, tc := range cases {
		got := ClassifyError(tc.err)
		assert.Equal(t, tc.category, got.Category, "error %v", tc.err)
	}
}

func TestQueryWithoutMount(t *testing.T) {
	s := &Session{log: nopLogger{}}
	_, err := s.QuerySecurityRaw("file.txt", 0x7)
	assert.ErrorIs(t, err, ErrNotMounted)
}
