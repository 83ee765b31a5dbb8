package utils // package utils provides helpers for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// AccessToken represents a signed JWT session token along with its expiry.
// Sessions are stateless: the token itself carries the user id and role, so
// the server keeps no session table. When the token expires the client must
// log in again; there is no refresh mechanism.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims are the identity claims extracted from a verified token.
type Claims struct {
	UserID uint64
	Rol    string
}

var errInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a staff user. It takes
// the signing secret, the user ID, the user's role and a TTL in minutes
// (the panel uses an 8 hour shift-length window). The JWT carries the
// standard sub/exp/iat claims plus the custom "rol" claim that the access
// guard and payment attribution rely on.
func NewAccessToken(secret string, userID uint64, rol string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": userID,
		"rol": rol,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry of a raw token string and
// returns the embedded identity claims. Any verification failure collapses
// into a single error so callers cannot distinguish a forged token from an
// expired one.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC is ever used to sign panel tokens; reject anything else.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, errInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errInvalidToken
	}
	sub, ok := mc["sub"].(float64) // numeric JSON claims decode as float64
	if !ok || sub <= 0 {
		return Claims{}, errInvalidToken
	}
	rol, ok := mc["rol"].(string)
	if !ok || rol == "" {
		return Claims{}, errInvalidToken
	}
	return Claims{UserID: uint64(sub), Rol: rol}, nil
}
