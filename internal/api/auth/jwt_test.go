package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	_, err := NewTokenService(Config{Secret: "short"})
	assert.ErrorIs(t, err, ErrInvalidSecretLength)
}

func TestIssueAndValidate(t *testing.T) {
	service, err := NewTokenService(Config{Secret: testSecret})
	require.NoError(t, err)

	token, err := service.Issue("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenService(Config{Secret: testSecret})
	require.NoError(t, err)
	verifier, err := NewTokenService(Config{Secret: "ffffffffffffffffffffffffffffffff"})
	require.NoError(t, err)

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	service, err := NewTokenService(Config{
		Secret:        testSecret,
		TokenDuration: -time.Minute,
	})
	require.NoError(t, err)

	token, err := service.Issue("admin")
	require.NoError(t, err)

	_, err = service.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	service, err := NewTokenService(Config{Secret: testSecret})
	require.NoError(t, err)

	_, err = service.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
