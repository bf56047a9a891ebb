package utils // package utils provides helper functions for token creation and verification

import (
    "errors"
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token represents a signed HS256 JWT along with its expiry.  The Token
// field contains the serialized string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short‑lived and sent in the
// Authorization header; refresh tokens are long‑lived and travel only in
// an HttpOnly cookie.  Both carry the same claim set and differ in the
// secret used to sign them, so neither can be replayed as the other.
type Token struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims is the decoded identity carried by both token kinds.
type Claims struct {
    UserID int64
    Email  string
}

// ErrInvalidToken is returned by the parse helpers for any token that does
// not verify: wrong signature, wrong algorithm, expired, or claims of an
// unexpected shape.  Callers never learn which, matching the generic
// auth-failure contract.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user's identity claims and a TTL in minutes.  The
// JWT includes subject (sub), email, expiration (exp) and issued at (iat).
func NewAccessToken(secret string, userID int64, email string, ttlMin int) (Token, error) {
    return newToken(secret, userID, email, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken signs a refresh JWT carrying the same claims as the
// access token, valid for ttlDays days.  Refresh tokens are stateless: the
// server keeps no record of them, so possession of a valid one is the only
// credential needed to mint new access tokens until it expires.
func NewRefreshToken(secret string, userID int64, email string, ttlDays int) (Token, error) {
    return newToken(secret, userID, email, time.Duration(ttlDays)*24*time.Hour)
}

func newToken(secret string, userID int64, email string, ttl time.Duration) (Token, error) {
    exp := time.Now().UTC().Add(ttl)
    claims := jwt.MapClaims{
        "sub":   userID,
        "email": email,
        "exp":   exp.Unix(),
        "iat":   time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return Token{}, err
    }
    return Token{Token: signed, Exp: exp}, nil
}

// ParseToken verifies a token against the given secret and extracts its
// identity claims.  Only HMAC-signed tokens are accepted; anything else is
// rejected before the signature is even checked.
func ParseToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    sub, ok := mc["sub"].(float64) // JSON numbers decode as float64
    if !ok || sub <= 0 {
        return Claims{}, ErrInvalidToken
    }
    email, _ := mc["email"].(string)
    return Claims{UserID: int64(sub), Email: email}, nil
}
