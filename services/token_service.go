package services

import (
	"fmt"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const tokenIssuer = "team-hub"

// Claims are the JWT payload. ID (jti) is what SignOut revokes.
type Claims struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}

type TokenIssuer interface {
	Issue(user *models.User) (string, *Claims, error)
	Parse(tokenString string) (*Claims, error)
}

type jwtTokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) TokenIssuer {
	return &jwtTokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *jwtTokenIssuer) Issue(user *models.User) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

func (i *jwtTokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrAuthenticationFailed
	}
	if claims.UserID == uuid.Nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrAuthenticationFailed
	}
	return claims, nil
}
