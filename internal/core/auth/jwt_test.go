package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "user-admin", TTL: time.Hour}
}

func TestIssueAndParse(t *testing.T) {
	j := testJWTer()
	tok, err := j.Issue("u1", RoleAdmin)
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID)
	assert.Equal(t, RoleAdmin, c.Role)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	tok, err := testJWTer().Issue("u1", RoleAdmin)
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("other"), Issuer: "user-admin", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestIssueNeedsSecret(t *testing.T) {
	_, err := (&JWTer{TTL: time.Hour}).Issue("u1", RoleUser)
	assert.Error(t, err)
}

func TestMinterReusesToken(t *testing.T) {
	m := NewMinter(testJWTer(), "console", RoleAdmin)
	a, err := m.Token(context.Background())
	require.NoError(t, err)
	b, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
