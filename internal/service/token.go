package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"prompthub/internal/cache"
	"prompthub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "prompthub-api"
	TokenAudience = "prompthub-client"
	TokenTTL      = 7 * 24 * time.Hour
)

// ErrTokenRevoked is returned by Verify for a logged-out token.
var ErrTokenRevoked = errors.New("token has been revoked")

// TokenClaims are the parts of an access token the API relies on.
type TokenClaims struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// TokenService signs access tokens and tracks revoked token ids in the cache
// store.
type TokenService struct {
	secret []byte
	store  cache.Store
	now    func() time.Time
}

func NewTokenService(secret string, store cache.Store) *TokenService {
	return &TokenService{secret: []byte(secret), store: store, now: time.Now}
}

// Issue signs a 7-day HS256 token for user.
func (t *TokenService) Issue(user *models.User) (string, TokenClaims, error) {
	if len(t.secret) == 0 {
		return "", TokenClaims{}, fmt.Errorf("JWT secret not configured")
	}

	now := t.now()
	claims := TokenClaims{
		UserID:    user.ID,
		Username:  user.Username,
		JTI:       fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString()),
		ExpiresAt: now.Add(TokenTTL),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      claims.ExpiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      claims.JTI,
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", TokenClaims{}, err
	}
	return signed, claims, nil
}

// Parse validates signature, expiry, issuer and audience. It does not
// consult the revocation list.
func (t *TokenService) Parse(tokenString string) (TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return TokenClaims{}, err
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return TokenClaims{}, errors.New("invalid token claims")
	}

	sub, err := mc.GetSubject()
	if err != nil {
		return TokenClaims{}, err
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return TokenClaims{}, errors.New("invalid subject claim")
	}

	claims := TokenClaims{UserID: uint(userID)}
	claims.Username, _ = mc["username"].(string)
	claims.JTI, _ = mc["jti"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// Verify parses the token and rejects revoked ones. A failing revocation
// lookup lets the token through.
func (t *TokenService) Verify(ctx context.Context, tokenString string) (TokenClaims, error) {
	claims, err := t.Parse(tokenString)
	if err != nil {
		return TokenClaims{}, err
	}
	if claims.JTI == "" || t.store == nil {
		return claims, nil
	}
	_, revoked, err := t.store.Get(ctx, cache.TokenBlacklistKey(claims.JTI))
	if err == nil && revoked {
		return TokenClaims{}, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke blacklists the token id until the token would have expired anyway.
func (t *TokenService) Revoke(ctx context.Context, claims TokenClaims) error {
	if claims.JTI == "" || t.store == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(t.now())
	if ttl <= 0 {
		return nil
	}
	return t.store.Set(ctx, cache.TokenBlacklistKey(claims.JTI), []byte("1"), ttl)
}
