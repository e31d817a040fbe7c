package auth

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
)

// Claims is the subset of access-token claims the payroll services read.
type Claims struct {
	UserID  string
	IsAdmin bool
}

// ClaimsFromContext reads the verified token placed on ctx by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrMissingActor
	}
	isAdmin, _ := claims["is_admin"].(bool)

	return Claims{UserID: userID, IsAdmin: isAdmin}, nil
}
