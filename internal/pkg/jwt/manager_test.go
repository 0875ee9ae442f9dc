package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrears-service/internal/domain/auth"
)

func writeTestKeys(t *testing.T) (privPath, pubPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath = filepath.Join(dir, "jwt_private.pem")
	pubPath = filepath.Join(dir, "jwt_public.pem")

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{
		Type: "PRIVATE KEY", Bytes: privDER,
	}), 0600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{
		Type: "PUBLIC KEY", Bytes: pubDER,
	}), 0644))

	return privPath, pubPath
}

func testManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	privPath, pubPath := writeTestKeys(t)
	m, err := LoadAndBuild(Config{
		PrivPath: privPath,
		PubPath:  pubPath,
		Issuer:   "arrears-service",
		Audience: "arrears-backoffice",
		TTL:      ttl,
		KID:      "test-key",
	})
	require.NoError(t, err)
	return m
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	m := testManager(t, time.Hour)

	p := auth.Principal{
		Kind:   auth.KindCaller,
		ID:     42,
		Role:   auth.RoleCaller,
		Region: "Western",
		RTOM:   "KDY",
	}

	token, jti, err := m.Generate(p)
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "caller", claims.Kind)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := testManager(t, -time.Minute)

	token, _, err := m.Generate(auth.Principal{Kind: auth.KindAdmin, ID: 1, Role: "superadmin"})
	require.NoError(t, err)

	_, _, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	issuer := testManager(t, time.Hour)
	verifier := testManager(t, time.Hour)

	token, _, err := issuer.Generate(auth.Principal{Kind: auth.KindAdmin, ID: 1, Role: "superadmin"})
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := testManager(t, time.Hour)

	_, _, err := m.Verify("not.a.token")
	assert.Error(t, err)
}
