package jwt_test

import (
	"context"
	"testing"
	"tutorhub/config"
	"tutorhub/infras/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "tutorhub"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireMin = 60

	return cfg
}

func TestJWT_GenerateAndValidate(t *testing.T) {
	ctx := context.Background()
	svc := jwt.New(newConfig())

	pair, err := svc.GenerateTokenPair(ctx, "user-1", "ada@example.com", "tutor")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(15*60), pair.ExpiresIn)

	claims, err := svc.ValidateToken(ctx, pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "tutor", claims.Role)
	assert.Equal(t, claims.ID, claims.TokenID)
	assert.Equal(t, "tutorhub", claims.Issuer)

	_, err = svc.ValidateToken(ctx, pair.AccessToken, jwt.RefreshToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, pair.RefreshToken, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestJWT_ValidateToken_Rejects(t *testing.T) {
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		cfg := newConfig()
		cfg.JWT.AccessExpireMin = -1

		svc := jwt.New(cfg)
		pair, err := svc.GenerateTokenPair(ctx, "user-1", "ada@example.com", "tutor")
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, pair.AccessToken, jwt.AccessToken)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong token type with a shared secret", func(t *testing.T) {
		cfg := newConfig()
		cfg.JWT.RefreshSecret = cfg.JWT.AccessSecret

		svc := jwt.New(cfg)
		pair, err := svc.GenerateTokenPair(ctx, "user-1", "ada@example.com", "tutor")
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, pair.RefreshToken, jwt.AccessToken)
		assert.ErrorIs(t, err, jwt.ErrInvalidClaim)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := newConfig()
		other.App.Name = "someone-else"

		pair, err := jwt.New(other).GenerateTokenPair(ctx, "user-1", "ada@example.com", "tutor")
		require.NoError(t, err)

		_, err = jwt.New(newConfig()).ValidateToken(ctx, pair.AccessToken, jwt.AccessToken)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, jwt.Claims{UserID: "user-1", Type: jwt.AccessToken}).
			SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = jwt.New(newConfig()).ValidateToken(ctx, token, jwt.AccessToken)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := jwt.New(newConfig()).ValidateToken(ctx, "not-a-token", jwt.AccessToken)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := jwt.New(newConfig()).ValidateToken(ctx, "not-a-token", jwt.TokenType("id"))
		assert.Error(t, err)
	})
}

func TestJWT_RefreshTokens(t *testing.T) {
	ctx := context.Background()
	svc := jwt.New(newConfig())

	pair, err := svc.GenerateTokenPair(ctx, "user-1", "ada@example.com", "student")
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, refreshed.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "student", claims.Role)

	_, err = svc.RefreshTokens(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{header: "Bearer abc.def", token: "abc.def"},
		{header: "bearer abc.def", token: "abc.def"},
		{header: "  Bearer   abc.def ", token: "abc.def"},
		{header: "", err: jwt.ErrMissingHeader},
		{header: "Basic abc", err: jwt.ErrMalformedHeader},
		{header: "Bearer", err: jwt.ErrMalformedHeader},
		{header: "Bearer ", err: jwt.ErrMalformedHeader},
		{header: "   ", err: jwt.ErrMissingHeader},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, err := jwt.ExtractTokenFromHeader(tt.header)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.token, token)
		})
	}
}
