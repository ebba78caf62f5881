package auth

import (
	"clinic/cmd/internal/utils"
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenUse = errors.New("token is neither an access nor an id token")
	ErrAudience = errors.New("token was issued for another client")
	ErrNoKeyID  = errors.New("token header has no kid")
)

type KeySource interface {
	Get(keyID string) (*rsa.PublicKey, error)
}

// Claims are the parts of a Cognito access or id token we rely on.
type Claims struct {
	TokenUse        string `json:"token_use"`
	ClientID        string `json:"client_id,omitempty"`
	Email           string `json:"email,omitempty"`
	Username        string `json:"username,omitempty"`
	CognitoUsername string `json:"cognito:username,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	keys     KeySource
	issuer   string
	clientID string
}

func NewVerifier(keys KeySource, issuer, clientID string) *Verifier {
	return &Verifier{keys: keys, issuer: issuer, clientID: clientID}
}

// Verify checks signature, issuer, expiry and the intended client of a raw
// bearer token and returns who it belongs to.
func (v *Verifier) Verify(raw string) (*utils.TokenData, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	switch claims.TokenUse {
	case "access":
		if v.clientID != "" && claims.ClientID != v.clientID {
			return nil, ErrAudience
		}
	case "id":
		if v.clientID != "" && !slices.Contains(claims.Audience, v.clientID) {
			return nil, ErrAudience
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrTokenUse, claims.TokenUse)
	}

	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	username := claims.Username
	if username == "" {
		username = claims.CognitoUsername
	}
	return &utils.TokenData{Sub: claims.Subject, Email: claims.Email, Username: username}, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, ErrNoKeyID
	}
	return v.keys.Get(kid)
}
