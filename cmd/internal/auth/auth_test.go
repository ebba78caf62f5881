package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"clinic/cmd/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://cognito-idp.ca-central-1.amazonaws.com/ca-central-1_test"
	testClientID = "client-123"
	testKeyID    = "key-1"
)

type keyServer struct {
	key  *rsa.PrivateKey
	hits atomic.Int32
	srv  *httptest.Server
}

func newKeyServer(t *testing.T) *keyServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ks := &keyServer{key: key}
	ks.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ks.hits.Add(1)
		_ = json.NewEncoder(w).Encode(jwks{Keys: []jwk{
			{Kty: "EC", Kid: "ignored", N: "x", E: "y"},
			{
				Kty: "RSA",
				Kid: testKeyID,
				Use: "sig",
				Alg: "RS256",
				N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			},
		}})
	}))
	t.Cleanup(ks.srv.Close)
	return ks
}

func (ks *keyServer) sign(t *testing.T, claims Claims, kid string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	raw, err := tok.SignedString(ks.key)
	require.NoError(t, err)
	return raw
}

func accessClaims() Claims {
	return Claims{
		TokenUse: "access",
		ClientID: testClientID,
		Username: "jsmith",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-1",
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifier_AccessToken(t *testing.T) {
	ks := newKeyServer(t)
	v := NewVerifier(NewJWKSClient(ks.srv.URL, time.Minute), testIssuer, testClientID)

	data, err := v.Verify(ks.sign(t, accessClaims(), testKeyID))
	require.NoError(t, err)
	assert.Equal(t, "sub-1", data.Sub)
	assert.Equal(t, "jsmith", data.Username)
}

func TestVerifier_IDToken(t *testing.T) {
	ks := newKeyServer(t)
	v := NewVerifier(NewJWKSClient(ks.srv.URL, time.Minute), testIssuer, testClientID)

	claims := accessClaims()
	claims.TokenUse = "id"
	claims.ClientID = ""
	claims.Username = ""
	claims.CognitoUsername = "jsmith"
	claims.Email = "j@example.com"
	claims.Audience = jwt.ClaimStrings{testClientID}

	data, err := v.Verify(ks.sign(t, claims, testKeyID))
	require.NoError(t, err)
	assert.Equal(t, "jsmith", data.Username)
	assert.Equal(t, "j@example.com", data.Email)
}

func TestVerifier_Rejects(t *testing.T) {
	ks := newKeyServer(t)
	v := NewVerifier(NewJWKSClient(ks.srv.URL, time.Minute), testIssuer, testClientID)

	expired := accessClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := accessClaims()
	wrongIssuer.Issuer = "https://example.com"

	refresh := accessClaims()
	refresh.TokenUse = "refresh"

	otherClient := accessClaims()
	otherClient.ClientID = "someone-else"

	noExpiry := accessClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name string
		raw  string
	}{
		{"expired", ks.sign(t, expired, testKeyID)},
		{"wrong issuer", ks.sign(t, wrongIssuer, testKeyID)},
		{"refresh token", ks.sign(t, refresh, testKeyID)},
		{"other client", ks.sign(t, otherClient, testKeyID)},
		{"no expiry", ks.sign(t, noExpiry, testKeyID)},
		{"no kid", ks.sign(t, accessClaims(), "")},
		{"unknown kid", ks.sign(t, accessClaims(), "key-2")},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestVerifier_RejectsHMAC(t *testing.T) {
	ks := newKeyServer(t)
	v := NewVerifier(NewJWKSClient(ks.srv.URL, time.Minute), testIssuer, testClientID)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims())
	tok.Header["kid"] = testKeyID
	raw, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.Verify(raw)
	assert.Error(t, err)
}

func TestJWKSClient_CachesKeys(t *testing.T) {
	ks := newKeyServer(t)
	c := NewJWKSClient(ks.srv.URL, time.Minute)

	for i := 0; i < 3; i++ {
		key, err := c.Get(testKeyID)
		require.NoError(t, err)
		assert.Equal(t, ks.key.PublicKey.N, key.N)
	}
	assert.Equal(t, int32(1), ks.hits.Load())

	_, err := c.Get("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, int32(2), ks.hits.Load())
}

func TestJWKSClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewJWKSClient(srv.URL, time.Minute).Get(testKeyID)
	assert.Error(t, err)
}

type stubVerifier struct {
	data *utils.TokenData
	err  error
	raw  string
}

func (s *stubVerifier) Verify(raw string) (*utils.TokenData, error) {
	s.raw = raw
	return s.data, s.err
}

func runMiddleware(mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, *utils.TokenData) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *utils.TokenData
	_ = mw(func(c echo.Context) error {
		seen, _ = utils.ParseTokenDataCtx(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, seen
}

func TestMiddleware(t *testing.T) {
	stub := &stubVerifier{data: &utils.TokenData{Sub: "sub-1"}}

	rec, seen := runMiddleware(Middleware(stub), "Bearer abc.def.ghi")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "sub-1", seen.Sub)
	assert.Equal(t, "abc.def.ghi", stub.raw)

	rec, seen = runMiddleware(Middleware(stub), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)

	rec, _ = runMiddleware(Middleware(stub), "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	stub.err = ErrTokenUse
	rec, _ = runMiddleware(Middleware(stub), "Bearer abc.def.ghi")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDevMiddleware(t *testing.T) {
	rec, seen := runMiddleware(DevMiddleware("dev-user"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "dev-user", seen.Sub)
}
