package servicetoken_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/terrafusion/auth-gateway/internal/apperror"
	"github.com/terrafusion/auth-gateway/token/servicetoken"
)

const testSecret = "test-service-token-secret"

func TestIssueValidateRoundTrip(t *testing.T) {
	m := servicetoken.NewManager([]byte(testSecret))

	raw, err := m.Issue("report-service", "user-service", 15*time.Minute)
	require.NoError(t, err)

	claims, err := m.Validate(raw, "user-service")
	require.NoError(t, err)
	require.Equal(t, "report-service", claims.Subject)
	require.Equal(t, "report-service", claims.Issuer)
	require.Equal(t, "user-service", claims.Audience)
	require.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestValidateExpiredToken(t *testing.T) {
	m := servicetoken.NewManager([]byte(testSecret))

	raw, err := m.Issue("report-service", "user-service", time.Minute)
	require.NoError(t, err)

	restore := servicetoken.NowTimeFunc
	servicetoken.NowTimeFunc = func() time.Time { return time.Now().Add(2 * time.Minute) }
	defer func() { servicetoken.NowTimeFunc = restore }()

	_, err = m.Validate(raw, "user-service")
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestValidateWrongAudience(t *testing.T) {
	m := servicetoken.NewManager([]byte(testSecret))

	raw, err := m.Issue("report-service", "property-service", 15*time.Minute)
	require.NoError(t, err)

	_, err = m.Validate(raw, "user-service")
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestValidateMissingAudience(t *testing.T) {
	m := servicetoken.NewManager([]byte(testSecret))

	raw, err := m.Issue("report-service", "", 15*time.Minute)
	require.NoError(t, err)

	_, err = m.Validate(raw, "user-service")
	require.Error(t, err)
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := servicetoken.NewManager([]byte("other-secret"))
	m := servicetoken.NewManager([]byte(testSecret))

	raw, err := issuer.Issue("report-service", "user-service", 15*time.Minute)
	require.NoError(t, err)

	_, err = m.Validate(raw, "user-service")
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestValidateGarbage(t *testing.T) {
	m := servicetoken.NewManager([]byte(testSecret))

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := m.Validate(raw, "user-service")
		require.Error(t, err, "raw=%q", raw)
	}
}
