package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("test-secret"), time.Hour)
	token, err := iss.Issue(Identity{UserID: 1337, Email: "a@b.fi", Role: RoleAdmin})
	require.NoError(t, err)

	id, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1337), id.UserID)
	assert.Equal(t, "a@b.fi", id.Email)
	assert.True(t, id.IsAdmin())
}

func TestIssuer_RejectsExpired(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("test-secret"), time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := iss.Issue(Identity{UserID: 1, Role: RoleCustomer})
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsOtherSecretAndAlg(t *testing.T) {
	t.Parallel()

	other, err := NewIssuer([]byte("other"), time.Hour).Issue(Identity{UserID: 1})
	require.NoError(t, err)

	iss := NewIssuer([]byte("test-secret"), time.Hour)
	_, err = iss.Verify(other)
	require.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Verify(none)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentity_CanActOn(t *testing.T) {
	t.Parallel()

	assert.True(t, Identity{UserID: 5, Role: RoleCustomer}.CanActOn(5))
	assert.False(t, Identity{UserID: 5, Role: RoleCustomer}.CanActOn(6))
	assert.True(t, Identity{UserID: 1, Role: RoleAdmin}.CanActOn(6))
}

func TestHasher(t *testing.T) {
	t.Parallel()

	h := Hasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, h.Check(hash, "hunter2"))
	assert.False(t, h.Check(hash, "hunter3"))
}
