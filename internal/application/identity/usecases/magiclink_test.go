package usecases

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/testutil"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type authFixture struct {
	identities *testutil.MockIdentityRepository
	sessions   *testutil.MockSessionStore
	audit      *testutil.MockAuditRepository
	mailer     *testutil.MockMailer
	tokens     *testutil.SequenceTokens
	clock      *testutil.FixedClock
	tx         *testutil.MockTransactor
	recorder   auditlog.Recorder

	request *RequestMagicLinkUseCase
	verify  *VerifyMagicLinkUseCase
}

func newAuthFixture(displayLink bool) *authFixture {
	f := &authFixture{
		identities: testutil.NewMockIdentityRepository(),
		sessions:   testutil.NewMockSessionStore(),
		audit:      testutil.NewMockAuditRepository(),
		mailer:     &testutil.MockMailer{},
		tokens:     &testutil.SequenceTokens{},
		clock:      testutil.NewFixedClock(testutil.BaseTime),
		tx:         &testutil.MockTransactor{},
	}
	log := logger.NewNopLogger()
	f.recorder = auditlog.NewRecorder(f.audit, f.clock, log)
	f.request = NewRequestMagicLinkUseCase(f.identities, f.tokens, f.mailer, f.recorder, f.tx, f.clock, MagicLinkOptions{
		BaseURL:     "https://shadowiq.test/",
		DisplayLink: displayLink,
	}, log)
	f.verify = NewVerifyMagicLinkUseCase(f.identities, f.sessions, f.tokens, f.recorder, f.tx, f.clock, time.Second, log)
	return f
}

func TestRequestMagicLink_CreatesIdentityForNewAlias(t *testing.T) {
	f := newAuthFixture(true)

	result, err := f.request.Execute(context.Background(), RequestMagicLinkCommand{Alias: "quiet-heron"})

	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.False(t, result.Delivered, "no email known")
	assert.Equal(t, "https://shadowiq.test/auth/verify?token=tok-1", result.MagicLink)
	assert.Equal(t, testutil.BaseTime.Add(24*time.Hour), result.ExpiresAt)

	stored := f.identities.Stored(result.IdentityID)
	require.NotNil(t, stored)
	require.NotNil(t, stored.CredentialHash())
	assert.Equal(t, f.tokens.Hash("tok-1"), *stored.CredentialHash(), "only the hash is stored")
	assert.True(t, stored.IsClient())

	entries := f.audit.WithAction(audit.ActionMagicLinkRequested)
	require.Len(t, entries, 1)
	assert.Equal(t, "quiet-heron", entries[0].Details()["alias"])
}

func TestRequestMagicLink_EmailOnlyGeneratesAliasAndMails(t *testing.T) {
	f := newAuthFixture(false)

	result, err := f.request.Execute(context.Background(), RequestMagicLinkCommand{Email: "Someone@Example.org"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Alias, "User-"))
	assert.True(t, result.Delivered)
	assert.Empty(t, result.MagicLink, "link is not displayed when mailing")
	require.Len(t, f.mailer.Sent, 1)
	assert.Equal(t, "someone@example.org", f.mailer.Sent[0].To)
	assert.Contains(t, f.mailer.Sent[0].Body, "/auth/verify?token=tok-1")
}

func TestRequestMagicLink_ExistingAliasKeepsStoredEmail(t *testing.T) {
	tests := []struct {
		name     string
		stored   *string
		wantTo   string
		wantSent int
	}{
		{name: "identity without email", stored: nil, wantSent: 0},
		{name: "identity with email", stored: strPtr("owner@example.org"), wantTo: "owner@example.org", wantSent: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(false)
			admin, err := identity.ReconstructIdentity(
				"8d6b1c2e-0000-4000-8000-00000000000a", "ops-admin", tt.stored, nil, nil,
				true, false, testutil.BaseTime, nil, nil,
			)
			require.NoError(t, err)
			f.identities.Add(admin)

			result, err := f.request.Execute(context.Background(), RequestMagicLinkCommand{
				Alias: "ops-admin",
				Email: "intruder@elsewhere.test",
			})

			require.NoError(t, err)
			assert.False(t, result.Created)
			assert.Equal(t, tt.wantSent == 1, result.Delivered)
			require.Len(t, f.mailer.Sent, tt.wantSent)
			for _, sent := range f.mailer.Sent {
				assert.Equal(t, tt.wantTo, sent.To)
			}

			stored := f.identities.Stored(admin.ID())
			assert.Equal(t, tt.stored, stored.Email(), "email is never changed by a link request")
		})
	}
}

func TestRequestMagicLink_MailFailureIsReportedNotReturned(t *testing.T) {
	f := newAuthFixture(false)
	f.mailer.Err = stderrors.New("smtp: connection refused")

	result, err := f.request.Execute(context.Background(), RequestMagicLinkCommand{Alias: "heron", Email: "h@example.org"})

	require.NoError(t, err)
	assert.False(t, result.Delivered)
	assert.Len(t, f.audit.WithAction(audit.ActionMagicLinkRequested), 1)
}

func TestRequestMagicLink_ReissueOverwritesCredential(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()

	first, err := f.request.Execute(ctx, RequestMagicLinkCommand{Alias: "heron"})
	require.NoError(t, err)
	second, err := f.request.Execute(ctx, RequestMagicLinkCommand{Alias: "HERON"})
	require.NoError(t, err)

	assert.Equal(t, first.IdentityID, second.IdentityID, "alias comparison is case-insensitive")
	assert.False(t, second.Created)

	_, err = f.verify.Execute(ctx, VerifyMagicLinkCommand{Token: "tok-1"})
	assert.True(t, errors.IsNotFoundError(err), "superseded token no longer works")

	_, err = f.verify.Execute(ctx, VerifyMagicLinkCommand{Token: "tok-2"})
	assert.NoError(t, err)
}

func TestRequestMagicLink_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  RequestMagicLinkCommand
	}{
		{"nothing supplied", RequestMagicLinkCommand{}},
		{"alias too short", RequestMagicLinkCommand{Alias: "ab"}},
		{"alias with spaces", RequestMagicLinkCommand{Alias: "two words"}},
		{"malformed email", RequestMagicLinkCommand{Email: "not-an-email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(true)
			_, err := f.request.Execute(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Empty(t, f.audit.Entries())
		})
	}
}

func TestVerifyMagicLink_SignsInOnce(t *testing.T) {
	f := newAuthFixture(true)
	ctx := auditlog.WithRequestMeta(context.Background(), auditlog.RequestMeta{IPAddress: "198.51.100.4", UserAgent: "curl/8"})

	issued, err := f.request.Execute(ctx, RequestMagicLinkCommand{Alias: "heron"})
	require.NoError(t, err)

	result, err := f.verify.Execute(ctx, VerifyMagicLinkCommand{Token: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, issued.IdentityID, result.Identity.ID())
	assert.Equal(t, "/dashboard", result.RedirectTo)
	assert.NotEmpty(t, result.SessionID)

	got, ok, err := f.sessions.Get(ctx, result.SessionID, identity.SessionKeyIdentityID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, issued.IdentityID, got)

	stored := f.identities.Stored(issued.IdentityID)
	assert.Nil(t, stored.CredentialHash())
	require.NotNil(t, stored.LastLoginAt())

	logins := f.audit.WithAction(audit.ActionUserLoggedIn)
	require.Len(t, logins, 1)
	require.NotNil(t, logins[0].IPAddress())
	assert.Equal(t, "198.51.100.4", *logins[0].IPAddress())
	require.NotNil(t, logins[0].UserAgent())
	assert.Equal(t, "curl/8", *logins[0].UserAgent())

	_, err = f.verify.Execute(ctx, VerifyMagicLinkCommand{Token: "tok-1"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.Len(t, f.audit.WithAction(audit.ActionUserLoggedIn), 1)
	assert.Equal(t, 1, f.sessions.Count())
}

func TestVerifyMagicLink_ExpiredAfter25Hours(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()

	issued, err := f.request.Execute(ctx, RequestMagicLinkCommand{Alias: "heron"})
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)
	_, err = f.verify.Execute(ctx, VerifyMagicLinkCommand{Token: "tok-1"})

	require.Error(t, err)
	assert.True(t, errors.IsTokenExpiredError(err))
	stored := f.identities.Stored(issued.IdentityID)
	assert.NotNil(t, stored.CredentialHash(), "expired credential is left in place")
	assert.Nil(t, stored.LastLoginAt())
	assert.Zero(t, f.sessions.Count())
	assert.Empty(t, f.audit.WithAction(audit.ActionUserLoggedIn))
}

func TestVerifyMagicLink_ExpiryBoundaryIsInclusive(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()
	_, err := f.request.Execute(ctx, RequestMagicLinkCommand{Alias: "heron"})
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = f.verify.Execute(ctx, VerifyMagicLinkCommand{Token: "tok-1"})

	assert.True(t, errors.IsTokenExpiredError(err))
}

func TestVerifyMagicLink_UnknownToken(t *testing.T) {
	f := newAuthFixture(true)

	_, err := f.verify.Execute(context.Background(), VerifyMagicLinkCommand{Token: "never-issued"})

	assert.True(t, errors.IsNotFoundError(err))
	assert.Empty(t, f.audit.Entries())
}

func TestVerifyMagicLink_RedirectFollowsRole(t *testing.T) {
	tests := []struct {
		name      string
		isAdmin   bool
		isAnalyst bool
		want      string
	}{
		{"client", false, false, "/dashboard"},
		{"analyst", false, true, "/analyst/dashboard"},
		{"admin", true, false, "/admin/dashboard"},
		{"admin takes precedence", true, true, "/admin/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(true)
			ctx := context.Background()
			issued, err := f.request.Execute(ctx, RequestMagicLinkCommand{Alias: "heron"})
			require.NoError(t, err)

			stored := f.identities.Stored(issued.IdentityID)
			stored.SetRoles(tt.isAdmin, tt.isAnalyst)
			require.NoError(t, f.identities.UpdateRoles(ctx, stored))

			result, err := f.verify.Execute(ctx, VerifyMagicLinkCommand{Token: "tok-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.RedirectTo)
		})
	}
}

func TestLogout_PopsSessionAndAudits(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()
	_, err := f.request.Execute(ctx, RequestMagicLinkCommand{Alias: "heron"})
	require.NoError(t, err)
	signedIn, err := f.verify.Execute(ctx, VerifyMagicLinkCommand{Token: "tok-1"})
	require.NoError(t, err)

	uc := NewLogoutUseCase(f.sessions, f.recorder, time.Second, logger.NewNopLogger())
	require.NoError(t, uc.Execute(ctx, LogoutCommand{SessionID: signedIn.SessionID}))

	assert.Zero(t, f.sessions.Count())
	entries := f.audit.WithAction(audit.ActionUserLoggedOut)
	require.Len(t, entries, 1)
	assert.Equal(t, signedIn.Identity.ID(), *entries[0].IdentityID())

	// A second logout has nothing to end.
	require.NoError(t, uc.Execute(ctx, LogoutCommand{SessionID: signedIn.SessionID}))
	assert.Len(t, f.audit.WithAction(audit.ActionUserLoggedOut), 1)
}

func strPtr(s string) *string { return &s }
