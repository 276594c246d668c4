package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(4) // low cost to keep the test fast

	hash, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	require.NotEqual(t, "pw123456", hash)

	assert.NoError(t, hasher.Compare(hash, "pw123456"))
	assert.Error(t, hasher.Compare(hash, "wrong-password"))
}

func TestHashRejectsShortPassword(t *testing.T) {
	hasher := NewBcryptHasher(4)

	_, err := hasher.Hash("pw")
	assert.ErrorIs(t, err, ErrPasswordTooMin)
}

func TestInvalidCostFallsBackToDefault(t *testing.T) {
	hasher := NewBcryptHasher(9999)

	hash, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	assert.NoError(t, hasher.Compare(hash, "pw123456"))
}
