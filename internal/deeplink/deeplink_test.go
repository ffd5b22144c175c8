package deeplink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	cases := []struct {
		path string
		pin  string
		ok   bool
	}{
		{"/join/483920", "483920", true},
		{"/join/000000", "000000", true},
		{"/join/12345", "", false},
		{"/join/1234567", "", false},
		{"/join/48392a", "", false},
		{"/join/", "", false},
		{"/joined/483920", "", false},
		{"/join/483920/extra", "", false},
	}
	for _, tc := range cases {
		pin, ok := ParsePath(tc.path)
		assert.Equal(t, tc.ok, ok, "path %q", tc.path)
		assert.Equal(t, tc.pin, pin, "path %q", tc.path)
	}
}

func TestMemStagerOneShot(t *testing.T) {
	ctx := context.Background()
	s := NewMemStager()

	require.NoError(t, s.Stage(ctx, "profile-1", "483920"))

	pin, err := s.Take(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, "483920", pin)

	pin, err = s.Take(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, "", pin, "second take must find nothing")
}

func TestMemStagerReplacesPending(t *testing.T) {
	ctx := context.Background()
	s := NewMemStager()

	require.NoError(t, s.Stage(ctx, "profile-1", "111111"))
	require.NoError(t, s.Stage(ctx, "profile-1", "222222"))

	pin, err := s.Take(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, "222222", pin)
}
