package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidateName(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"bob", true},
		{"Player_01", true},
		{"ab", false},
		{"this_name_is_far_too_long_x", false},
		{"bad name", false},
		{"émile", false},
	}
	for _, tc := range cases {
		err := ValidateName(tc.name)
		if tc.ok {
			assert.NoError(t, err, tc.name)
		} else {
			assert.ErrorIs(t, err, ErrInvalidName, tc.name)
		}
	}
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour, "")
	assert.False(t, iss.PasswordRequired())

	tok, exp, err := iss.Issue("  alice ", "")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	name, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}

func TestIssuer_Rejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour, "")
	tok, _, err := iss.Issue("alice", "")
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour, "").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	_, err = iss.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer("secret", time.Minute, "")
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.Issue("alice", "")
	require.NoError(t, err)
	_, err = iss.Verify(old)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}

func TestIssuer_Password(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	iss := NewIssuer("secret", time.Hour, string(hash))
	assert.True(t, iss.PasswordRequired())

	_, _, err = iss.Issue("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, _, err = iss.Issue("alice", "hunter22")
	assert.NoError(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")))
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?token=q", nil)
	assert.Equal(t, "q", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer h")
	assert.Equal(t, "h", TokenFromRequest(r))

	assert.Empty(t, TokenFromRequest(httptest.NewRequest("GET", "/ws", nil)))
}
