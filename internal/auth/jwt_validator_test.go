package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"
)

func TestTokenValidatorValidate(t *testing.T) {
	now := time.Now()
	validator := TokenValidator{Issuer: "toko", Audience: "storefront", ClockSkew: time.Second, Algorithm: jwa.HS256}

	build := func(mutate func(*jwt.Builder) *jwt.Builder) jwt.Token {
		b := jwt.NewBuilder().
			Issuer("toko").
			Audience([]string{"storefront"}).
			Subject("user-1").
			IssuedAt(now).
			NotBefore(now).
			Expiration(now.Add(time.Minute))
		if mutate != nil {
			b = mutate(b)
		}
		tok, err := b.Build()
		require.NoError(t, err)
		return tok
	}

	cases := []struct {
		name      string
		token     jwt.Token
		algorithm jwa.SignatureAlgorithm
		wantErr   bool
	}{
		{name: "valid", token: build(nil), algorithm: jwa.HS256},
		{name: "issuer mismatch", token: build(func(b *jwt.Builder) *jwt.Builder { return b.Issuer("other") }), algorithm: jwa.HS256, wantErr: true},
		{name: "audience mismatch", token: build(func(b *jwt.Builder) *jwt.Builder { return b.Audience([]string{"admin"}) }), algorithm: jwa.HS256, wantErr: true},
		{name: "expired", token: build(func(b *jwt.Builder) *jwt.Builder { return b.Expiration(now.Add(-time.Minute)) }), algorithm: jwa.HS256, wantErr: true},
		{name: "not yet valid", token: build(func(b *jwt.Builder) *jwt.Builder { return b.NotBefore(now.Add(5 * time.Minute)) }), algorithm: jwa.HS256, wantErr: true},
		{name: "missing subject", token: build(func(b *jwt.Builder) *jwt.Builder { return b.Subject("") }), algorithm: jwa.HS256, wantErr: true},
		{name: "algorithm mismatch", token: build(nil), algorithm: jwa.RS256, wantErr: true},
		{name: "missing algorithm", token: build(nil), algorithm: "", wantErr: true},
		{name: "nil token", token: nil, algorithm: jwa.HS256, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Validate(tc.token, tc.algorithm, now)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
