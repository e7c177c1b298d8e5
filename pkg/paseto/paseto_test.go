package pasetotoken

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genKeys(t *testing.T, mode Mode) Keys {
	t.Helper()
	k, err := Generate(mode)
	require.NoError(t, err)
	return k
}

func newManager(t *testing.T, keys Keys) *Manager {
	t.Helper()
	m, err := New(Config{Mode: keys.Mode, Issuer: "equidade", Audience: "equidade-api"}, keys)
	require.NoError(t, err)
	return m
}

func TestIssueVerify_Local(t *testing.T) {
	m := newManager(t, genKeys(t, ModeLocal))
	uid := uuid.New()

	tok, err := m.Issue(uid, "ana@clinica.org")
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.GetUserID())
	assert.Equal(t, "ana@clinica.org", claims.GetEmail())
	assert.False(t, claims.IsExpired())
}

func TestIssueVerify_Public(t *testing.T) {
	m := newManager(t, genKeys(t, ModePublic))
	uid := uuid.New()

	tok, err := m.Issue(uid, "")
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.UserID)
	assert.Empty(t, claims.Email)
}

func TestVerify_Expired(t *testing.T) {
	m := newManager(t, genKeys(t, ModeLocal))

	tok, err := m.IssueWithTTL(uuid.New(), "", -time.Minute)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	var invalid ErrInvalidToken
	assert.True(t, errors.As(err, &invalid))
}

func TestVerify_WrongKey(t *testing.T) {
	issuer := newManager(t, genKeys(t, ModeLocal))
	verifier := newManager(t, genKeys(t, ModeLocal))

	tok, err := issuer.Issue(uuid.New(), "")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.Error(t, err)
}

func TestLoadKeys(t *testing.T) {
	_, err := LoadKeys(KeyStrings{Mode: ModeLocal})
	assert.Error(t, err)

	_, err = LoadKeys(KeyStrings{Mode: "hybrid"})
	assert.Error(t, err)

	k := genKeys(t, ModeLocal)
	loaded, err := LoadKeys(k.Strings())
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, loaded.Mode)

	pub := genKeys(t, ModePublic).Strings()
	pub.SecretHex = ""
	verifyOnly, err := LoadKeys(pub)
	require.NoError(t, err)
	assert.Nil(t, verifyOnly.Secret)
	assert.NotNil(t, verifyOnly.Public)

	_, err = Generate("hybrid")
	assert.Error(t, err)
}
