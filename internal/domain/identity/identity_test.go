package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTestIdentity(t *testing.T) *Identity {
	t.Helper()
	i, err := NewIdentity("3f8a7c1e-0000-4000-8000-000000000001", "shadow", strPtr(" Shadow@Example.com "), testNow)
	require.NoError(t, err)
	return i
}

func TestNewIdentity(t *testing.T) {
	i := newTestIdentity(t)

	assert.Equal(t, "shadow", i.Alias())
	require.NotNil(t, i.Email())
	assert.Equal(t, "shadow@example.com", *i.Email())
	assert.True(t, i.IsClient())
	assert.Equal(t, RoleClient, i.Role())
	assert.False(t, i.HasCredential())
}

func TestNewIdentity_Validation(t *testing.T) {
	_, err := NewIdentity("", "shadow", nil, testNow)
	assert.Error(t, err)

	_, err = NewIdentity("id-1", "ab", nil, testNow)
	assert.Error(t, err)

	_, err = NewIdentity("id-1", "bad alias!", nil, testNow)
	assert.Error(t, err)
}

func TestRolePrecedence(t *testing.T) {
	tests := []struct {
		name       string
		isAdmin    bool
		isAnalyst  bool
		wantRole   Role
		wantClient bool
	}{
		{"client", false, false, RoleClient, true},
		{"analyst", false, true, RoleAnalyst, false},
		{"admin", true, false, RoleAdmin, false},
		{"admin and analyst", true, true, RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := newTestIdentity(t)
			i.SetRoles(tt.isAdmin, tt.isAnalyst)

			assert.Equal(t, tt.wantRole, i.Role())
			assert.Equal(t, tt.wantClient, i.IsClient())
			if tt.wantClient {
				assert.False(t, i.IsAdmin() || i.IsAnalyst())
			}
		})
	}
}

func TestCredentialLifecycle(t *testing.T) {
	i := newTestIdentity(t)
	expiry := testNow.Add(24 * time.Hour)

	require.NoError(t, i.IssueCredential("hash-1", expiry))
	assert.True(t, i.HasCredential())
	assert.False(t, i.CredentialExpired(testNow))
	assert.True(t, i.CredentialExpired(expiry), "expiry instant is already expired")
	assert.True(t, i.CredentialExpired(testNow.Add(25*time.Hour)))

	require.NoError(t, i.IssueCredential("hash-2", expiry))
	assert.Equal(t, "hash-2", *i.CredentialHash())

	i.ConsumeCredential(testNow)
	assert.False(t, i.HasCredential())
	assert.Nil(t, i.CredentialExpiresAt())
	require.NotNil(t, i.LastLoginAt())
	assert.Equal(t, testNow, *i.LastLoginAt())
}

func TestIssueCredential_RequiresHash(t *testing.T) {
	i := newTestIdentity(t)
	assert.Error(t, i.IssueCredential("", testNow))
}

func TestReconstructIdentity_CredentialPairing(t *testing.T) {
	expiry := testNow
	_, err := ReconstructIdentity("id-1", "shadow", nil, strPtr("h"), nil, false, false, testNow, nil, nil)
	assert.Error(t, err)

	i, err := ReconstructIdentity("id-1", "shadow", nil, strPtr("h"), &expiry, true, true, testNow, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, i.Role())
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.True(t, PrincipalFromContext(ctx).IsAnonymous())
	assert.Equal(t, "", PrincipalFromContext(ctx).IdentityID())

	i := newTestIdentity(t)
	ctx = WithPrincipal(ctx, NewPrincipal(i))
	p := PrincipalFromContext(ctx)
	assert.False(t, p.IsAnonymous())
	assert.Equal(t, i.ID(), p.IdentityID())

	assert.True(t, NewPrincipal(nil).IsAnonymous())
}

func TestNewSessionID(t *testing.T) {
	a, err := NewSessionID()
	require.NoError(t, err)
	b, err := NewSessionID()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
