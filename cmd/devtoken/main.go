// Command devtoken prints an access token signed with JWT_SECRET_KEY, for local testing
// against the API without the identity service.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/haulbook/haulbook-backend-go/internal/config"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/jwt"
)

func main() {
	userID := flag.String("user", "dev-user", "user_id claim")
	admin := flag.Bool("admin", false, "set the is_admin claim")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(*userID, *admin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error signing token:", err)
		os.Exit(1)
	}
	fmt.Printf("%s\n# expires at unix %d\n", token, expiresAt)
}
