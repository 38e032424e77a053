package services

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	jwksFetchTimeout = 4 * time.Second
	jwksCacheTTL     = 10 * time.Minute
)

type jsonWebKey struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

type jsonWebKeySet struct {
	Keys []jsonWebKey `json:"keys"`
}

// KeySet caches the verification keys published at a JWKS endpoint,
// indexed by key ID.
type KeySet struct {
	url    string
	client *http.Client

	mu        sync.Mutex
	keys      map[string]crypto.PublicKey
	fetchedAt time.Time
}

func NewKeySet(url string) *KeySet {
	return &KeySet{
		url:    url,
		client: &http.Client{Timeout: jwksFetchTimeout},
		keys:   map[string]crypto.PublicKey{},
	}
}

// Keyfunc resolves the verification key for a parsed token header and is
// handed to jwt.ParseWithClaims. Any error here fails verification of the
// current token only; the endpoint being down never takes the process with
// it.
func (ks *KeySet) Keyfunc(token *jwt.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)

	ks.mu.Lock()
	defer ks.mu.Unlock()

	key, ok := ks.lookup(kid)
	if ok && time.Since(ks.fetchedAt) < jwksCacheTTL {
		return key, nil
	}

	if err := ks.refresh(); err != nil {
		if ok {
			// stale key over a failed request
			return key, nil
		}
		return nil, err
	}

	if key, ok := ks.lookup(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("no key for kid %q in key set", kid)
}

// lookup must be called with the mutex held. A token without a kid header
// matches a key set holding exactly one key.
func (ks *KeySet) lookup(kid string) (crypto.PublicKey, bool) {
	if kid == "" {
		if len(ks.keys) == 1 {
			for _, key := range ks.keys {
				return key, true
			}
		}
		return nil, false
	}
	key, ok := ks.keys[kid]
	return key, ok
}

func (ks *KeySet) refresh() error {
	resp, err := ks.client.Get(ks.url)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var set jsonWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := map[string]crypto.PublicKey{}
	for _, k := range set.Keys {
		key, err := k.publicKey()
		if err != nil {
			// skip entries we cannot verify with, e.g. symmetric keys
			continue
		}
		keys[k.Kid] = key
	}
	if len(keys) == 0 {
		return errors.New("jwks contains no usable keys")
	}

	ks.keys = keys
	ks.fetchedAt = time.Now()
	return nil
}

func (k jsonWebKey) publicKey() (crypto.PublicKey, error) {
	switch k.Kty {
	case "RSA":
		n, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("decode modulus: %w", err)
		}
		e, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("decode exponent: %w", err)
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}, nil

	case "EC":
		var curve elliptic.Curve
		switch k.Crv {
		case "P-256":
			curve = elliptic.P256()
		case "P-384":
			curve = elliptic.P384()
		case "P-521":
			curve = elliptic.P521()
		default:
			return nil, fmt.Errorf("unsupported curve %q", k.Crv)
		}
		x, err := base64.RawURLEncoding.DecodeString(k.X)
		if err != nil {
			return nil, fmt.Errorf("decode x coordinate: %w", err)
		}
		y, err := base64.RawURLEncoding.DecodeString(k.Y)
		if err != nil {
			return nil, fmt.Errorf("decode y coordinate: %w", err)
		}
		return &ecdsa.PublicKey{
			Curve: curve,
			X:     new(big.Int).SetBytes(x),
			Y:     new(big.Int).SetBytes(y),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}
}
