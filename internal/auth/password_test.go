package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_Bcrypt(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.True(t, h.Verify(hash, "correct horse"))
	assert.False(t, h.Verify(hash, "wrong horse"))
	assert.False(t, h.Verify("", "correct horse"))
}

func TestPasswordHasher_RejectsNonBcrypt(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	tests := []string{
		"plaintext",
		"$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		"$2a$04$truncated",
	}
	for _, hash := range tests {
		assert.False(t, h.Verify(hash, "anything"), hash)
	}
}
