package password_test

import (
	"strings"
	"testing"
	"tutorhub/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		err      error
	}{
		{name: "regular", password: "correct-horse-battery"},
		{name: "unicode", password: "pässwörd-日本"},
		{name: "at limit", password: strings.Repeat("a", password.MaxLength)},
		{name: "empty", password: "", err: password.ErrEmptyPassword},
		{name: "too long", password: strings.Repeat("a", password.MaxLength+1), err: password.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.password)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, hash)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, strings.HasPrefix(hash, "$2a$"))
			assert.NoError(t, password.Verify(tt.password, hash))
		})
	}
}

func TestHash_Salted(t *testing.T) {
	first, err := password.Hash("tutor-secret")
	require.NoError(t, err)

	second, err := password.Hash("tutor-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("student-secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		err      error
	}{
		{name: "match", password: "student-secret", hash: hash},
		{name: "mismatch", password: "Student-secret", hash: hash, err: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: hash, err: password.ErrInvalidPassword},
		{name: "empty hash", password: "student-secret", hash: "", err: password.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)
			if tt.err == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	err := password.Verify("student-secret", "not-a-bcrypt-hash")

	require.Error(t, err)
	assert.NotErrorIs(t, err, password.ErrInvalidPassword)
}
