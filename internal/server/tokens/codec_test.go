package tokens

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleEntries = []models.TokenEntry{
	{OwnerID: 1, Value: 1},
	{OwnerID: 1234567, Value: 1000000000000},
	{OwnerID: 9999999, Value: 9999999999999},
	{OwnerID: 1<<63 - 1, Value: 1<<63 - 1},
}

func codecs() map[string]Codec {
	return map[string]Codec{
		"plain": PlainCodec{},
		"jwt":   NewJWTCodec([]byte("secret")),
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			for _, e := range sampleEntries {
				bearer, err := c.Encode(e)
				require.NoError(t, err)

				got, err := c.Decode(bearer)
				require.NoError(t, err)
				assert.Equal(t, e, got)
			}
		})
	}
}

func TestCodec_DistinctEntriesDistinctBearers(t *testing.T) {
	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			a, err := c.Encode(models.TokenEntry{OwnerID: 12, Value: 34})
			require.NoError(t, err)
			b, err := c.Encode(models.TokenEntry{OwnerID: 123, Value: 4})
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	}
}

func TestCodec_RejectsNonPositive(t *testing.T) {
	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			_, err := c.Encode(models.TokenEntry{OwnerID: 0, Value: 5})
			assert.ErrorIs(t, err, ErrMalformedToken)
			_, err = c.Encode(models.TokenEntry{OwnerID: 5, Value: -1})
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestPlainCodec_Format(t *testing.T) {
	bearer, err := PlainCodec{}.Encode(models.TokenEntry{OwnerID: 1234567, Value: 100000000000})
	require.NoError(t, err)
	assert.Len(t, bearer, 22)
	assert.NotContains(t, bearer, "=")
}

func TestPlainCodec_DecodeErrors(t *testing.T) {
	valid, err := PlainCodec{}.Encode(models.TokenEntry{OwnerID: 7, Value: 8})
	require.NoError(t, err)

	live, err := PlainCodec{}.Encode(models.TokenEntry{OwnerID: 1234567, Value: 1000000000001})
	require.NoError(t, err)
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := strings.IndexByte(alphabet, live[len(live)-1])
	require.GreaterOrEqual(t, last, 0)
	tampered := live[:len(live)-1] + string(alphabet[last+1])

	tests := []struct {
		name   string
		bearer string
	}{
		{name: "empty", bearer: ""},
		{name: "changed final character", bearer: tampered},
		{name: "bad alphabet", bearer: "!!!!!!!!!!!!!!!!!!!!!!"},
		{name: "too short", bearer: valid[:10]},
		{name: "too long", bearer: valid + "AAAA"},
		{name: "zero owner", bearer: "AAAAAAAAAAAAAAAAAAAAAA"},
		{name: "negative owner", bearer: "_____________________w"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlainCodec{}.Decode(tt.bearer)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestJWTCodec_DecodeErrors(t *testing.T) {
	c := NewJWTCodec([]byte("right"))
	valid, err := c.Encode(models.TokenEntry{OwnerID: 7, Value: 8})
	require.NoError(t, err)

	other, err := NewJWTCodec([]byte("wrong")).Encode(models.TokenEntry{OwnerID: 7, Value: 8})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7", ID: "8"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	nonNumeric, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice", ID: "8"}).
		SignedString([]byte("right"))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for name, bearer := range map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": other,
		"alg none":     none,
		"non numeric":  nonNumeric,
		"tampered":     tampered,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(bearer)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}
