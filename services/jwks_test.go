package services

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func rsaJWK(kid string, pub *rsa.PublicKey) jsonWebKey {
	return jsonWebKey{
		Kty: "RSA",
		Use: "sig",
		Alg: "RS256",
		Kid: kid,
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

// jwksServer serves the given keys and counts fetches.
func jwksServer(t *testing.T, fetches *int, keys ...jsonWebKey) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fetches != nil {
			*fetches++
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jsonWebKeySet{Keys: keys})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func tokenWithKid(kid string) *jwt.Token {
	token := jwt.New(jwt.SigningMethodRS256)
	if kid != "" {
		token.Header["kid"] = kid
	}
	return token
}

func TestKeySet_ResolvesKeyByKid(t *testing.T) {
	key := generateRSAKey(t)
	srv := jwksServer(t, nil, rsaJWK("k1", &key.PublicKey))

	ks := NewKeySet(srv.URL)
	got, err := ks.Keyfunc(tokenWithKid("k1"))
	require.NoError(t, err)

	pub, ok := got.(*rsa.PublicKey)
	require.True(t, ok)
	assert.True(t, pub.Equal(&key.PublicKey))
}

func TestKeySet_CachesBetweenCalls(t *testing.T) {
	key := generateRSAKey(t)
	fetches := 0
	srv := jwksServer(t, &fetches, rsaJWK("k1", &key.PublicKey))

	ks := NewKeySet(srv.URL)
	_, err := ks.Keyfunc(tokenWithKid("k1"))
	require.NoError(t, err)
	_, err = ks.Keyfunc(tokenWithKid("k1"))
	require.NoError(t, err)

	assert.Equal(t, 1, fetches)
}

func TestKeySet_RefetchesOnUnknownKid(t *testing.T) {
	key := generateRSAKey(t)
	fetches := 0
	srv := jwksServer(t, &fetches, rsaJWK("k1", &key.PublicKey))

	ks := NewKeySet(srv.URL)
	_, err := ks.Keyfunc(tokenWithKid("k1"))
	require.NoError(t, err)

	_, err = ks.Keyfunc(tokenWithKid("k2"))
	require.Error(t, err)
	assert.Equal(t, 2, fetches)
}

func TestKeySet_NoKidMatchesSingleKey(t *testing.T) {
	key := generateRSAKey(t)
	srv := jwksServer(t, nil, rsaJWK("k1", &key.PublicKey))

	ks := NewKeySet(srv.URL)
	got, err := ks.Keyfunc(tokenWithKid(""))
	require.NoError(t, err)

	pub, ok := got.(*rsa.PublicKey)
	require.True(t, ok)
	assert.True(t, pub.Equal(&key.PublicKey))
}

func TestKeySet_UnreachableEndpoint(t *testing.T) {
	ks := NewKeySet("http://127.0.0.1:1/jwks.json")
	_, err := ks.Keyfunc(tokenWithKid("k1"))
	assert.Error(t, err)
}

func TestKeySet_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	ks := NewKeySet(srv.URL)
	_, err := ks.Keyfunc(tokenWithKid("k1"))
	assert.Error(t, err)
}

func TestKeySet_NoUsableKeys(t *testing.T) {
	srv := jwksServer(t, nil, jsonWebKey{Kty: "oct", Kid: "sym"})

	ks := NewKeySet(srv.URL)
	_, err := ks.Keyfunc(tokenWithKid("sym"))
	assert.Error(t, err)
}

func TestJSONWebKey_ECPublicKey(t *testing.T) {
	// P-256 coordinates are 32 bytes
	k := jsonWebKey{
		Kty: "EC",
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(make([]byte, 32)),
		Y:   base64.RawURLEncoding.EncodeToString(make([]byte, 32)),
	}
	_, err := k.publicKey()
	require.NoError(t, err)

	k.Crv = "P-999"
	_, err = k.publicKey()
	assert.Error(t, err)
}
