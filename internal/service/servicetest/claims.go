package servicetest

import (
	"context"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// WithClaims returns ctx carrying a verified token for userID, as jwtauth.Verifier would.
func WithClaims(ctx context.Context, userID string, isAdmin bool) context.Context {
	token := jwt.New()
	_ = token.Set("user_id", userID)
	_ = token.Set("is_admin", isAdmin)
	_ = token.Set("type", "access")
	return jwtauth.NewContext(ctx, token, nil)
}
