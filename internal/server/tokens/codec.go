package tokens

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Codec turns a token entry into the bearer string handed to clients and
// back. Decode(Encode(e)) must return e for every valid entry.
type Codec interface {
	Encode(entry models.TokenEntry) (string, error)
	Decode(bearer string) (models.TokenEntry, error)
}

const plainTokenLen = 16

// PlainCodec packs owner and value as two big-endian int64s and encodes them
// with unpadded URL-safe base64.
type PlainCodec struct{}

func (PlainCodec) Encode(entry models.TokenEntry) (string, error) {
	if entry.OwnerID <= 0 || entry.Value <= 0 {
		return "", fmt.Errorf("%w: non-positive field", ErrMalformedToken)
	}
	buf := make([]byte, plainTokenLen)
	binary.BigEndian.PutUint64(buf[:8], uint64(entry.OwnerID))
	binary.BigEndian.PutUint64(buf[8:], uint64(entry.Value))
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (PlainCodec) Decode(bearer string) (models.TokenEntry, error) {
	buf, err := base64.RawURLEncoding.Strict().DecodeString(bearer)
	if err != nil {
		return models.TokenEntry{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if len(buf) != plainTokenLen {
		return models.TokenEntry{}, fmt.Errorf("%w: length %d", ErrMalformedToken, len(buf))
	}

	entry := models.TokenEntry{
		OwnerID: int64(binary.BigEndian.Uint64(buf[:8])),
		Value:   int64(binary.BigEndian.Uint64(buf[8:])),
	}
	if entry.OwnerID <= 0 || entry.Value <= 0 {
		return models.TokenEntry{}, fmt.Errorf("%w: non-positive field", ErrMalformedToken)
	}
	return entry, nil
}

// JWTCodec carries the entry in a HS256-signed JWT: sub is the owner, jti
// the token value. There is no expiry; a token lives until superseded or
// invalidated.
type JWTCodec struct {
	secretKey []byte
}

func NewJWTCodec(secretKey []byte) *JWTCodec {
	return &JWTCodec{secretKey: secretKey}
}

func (c *JWTCodec) Encode(entry models.TokenEntry) (string, error) {
	if entry.OwnerID <= 0 || entry.Value <= 0 {
		return "", fmt.Errorf("%w: non-positive field", ErrMalformedToken)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: strconv.FormatInt(entry.OwnerID, 10),
		ID:      strconv.FormatInt(entry.Value, 10),
	})

	tokenString, err := token.SignedString(c.secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func (c *JWTCodec) Decode(bearer string) (models.TokenEntry, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.TokenEntry{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if !token.Valid {
		return models.TokenEntry{}, ErrMalformedToken
	}

	owner, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.TokenEntry{}, fmt.Errorf("%w: subject: %w", ErrMalformedToken, err)
	}
	value, err := strconv.ParseInt(claims.ID, 10, 64)
	if err != nil {
		return models.TokenEntry{}, fmt.Errorf("%w: id: %w", ErrMalformedToken, err)
	}
	if owner <= 0 || value <= 0 {
		return models.TokenEntry{}, fmt.Errorf("%w: non-positive field", ErrMalformedToken)
	}
	return models.TokenEntry{OwnerID: owner, Value: value}, nil
}
