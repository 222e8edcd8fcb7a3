package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ExportLinkSigner generates and validates presigned single-use tokens for
// workbook export downloads. The jti claim is redeemed through the cache so a
// link cannot be used twice.
type ExportLinkSigner struct {
	secretKey []byte
	cache     CacheInterface
}

var (
	ErrTokenInvalid  = errors.New("export token is invalid or expired")
	ErrTokenConsumed = errors.New("export token was already used")
)

// NewExportLinkSigner creates a new export link signer
func NewExportLinkSigner(secretKey []byte, cache CacheInterface) *ExportLinkSigner {
	return &ExportLinkSigner{
		secretKey: secretKey,
		cache:     cache,
	}
}

func tokenCacheKey(jti string) string {
	return "catalogd:export:token:" + jti
}

// Generate issues a single-use download token valid for ttl.
func (s *ExportLinkSigner) Generate(ttl time.Duration) (string, time.Time, error) {
	tokenID := uuid.New().String()
	expiresAt := time.Now().Add(ttl)

	claims := jwt.MapClaims{
		"jti": tokenID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign export token: %w", err)
	}

	s.cache.Set(tokenCacheKey(tokenID), true, ttl)
	return signed, expiresAt, nil
}

// Redeem validates a token and consumes it. The second redemption of the
// same token fails with ErrTokenConsumed.
func (s *ExportLinkSigner) Redeem(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrTokenInvalid
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return ErrTokenInvalid
	}

	if _, found := s.cache.Get(tokenCacheKey(jti)); !found {
		return ErrTokenConsumed
	}
	s.cache.Delete(tokenCacheKey(jti))
	return nil
}
