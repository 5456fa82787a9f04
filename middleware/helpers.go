package middleware

import (
	"context"
	"errors"

	"github.com/Dosada05/team-hub/services"
	"github.com/google/uuid"
)

var ErrNoClaims = errors.New("user claims not found in context")

func GetClaimsFromContext(ctx context.Context) (*services.Claims, error) {
	claims, ok := ctx.Value(userContextKey).(*services.Claims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, errors.New("invalid user id in token claims")
	}
	return claims.UserID, nil
}

// WithClaims кладёт claims в контекст. Нужен тестам обработчиков.
func WithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}
