package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mfai/ambassador/api/internal/model"
	"github.com/mfai/ambassador/api/pkg/jwt"
)

// admin-token mints a bearer token for local testing. The API reads the role
// from the stored ambassador, so the account must be active and hold the admin
// role. List its email in ADMIN_EMAILS and restart the server to grant it.
func main() {
	_ = godotenv.Load()

	ambassadorID := flag.String("ambassador", "", "Ambassador record id, e.g. ambassador:abc (required)")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 signing secret (default: $JWT_SECRET)")
	issuer := flag.String("issuer", envOr("JWT_ISSUER", "ambassador-api"), "JWT issuer")
	expHours := flag.Int("exp", 24*7, "Token expiration in hours")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	if *ambassadorID == "" {
		fmt.Fprintln(os.Stderr, "Error: -ambassador is required")
		flag.Usage()
		os.Exit(2)
	}

	jwtService, err := jwt.NewService(jwt.Config{
		Secret:          *secret,
		Issuer:          *issuer,
		ExpirationHours: *expHours,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating JWT service: %v\n", err)
		os.Exit(1)
	}

	token, err := jwtService.Sign(jwt.Claims{
		AmbassadorID: *ambassadorID,
		Role:         string(model.RoleAdmin),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"token":         token,
			"token_type":    "Bearer",
			"expires_in":    *expHours * 3600,
			"ambassador_id": *ambassadorID,
			"role":          model.RoleAdmin,
		})
		return
	}

	fmt.Println("Admin Token Generated")
	fmt.Println("=====================")
	fmt.Printf("Ambassador: %s\n", *ambassadorID)
	fmt.Printf("Expires:    %s\n", time.Now().Add(time.Duration(*expHours)*time.Hour).Format(time.RFC3339))
	fmt.Println()
	fmt.Println(token)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
