// Command admin-token mints access tokens for development and testing, and
// can generate the RSA key pair the server verifies against.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/medcircle/commons/api/pkg/identity"
)

func main() {
	privateKeyPath := flag.String("key", "./keys/private.pem", "Path to the signing private key")
	publicKeyPath := flag.String("pub", "./keys/public.pem", "Path to the public key (used with -generate)")
	generate := flag.Bool("generate", false, "Generate a new RSA key pair and exit")
	userID := flag.String("user", "user:admin-dev", "User ID for the token")
	email := flag.String("email", "admin@medcircle.health", "Email for the token")
	role := flag.String("role", "admin", "Platform role for the token")
	issuer := flag.String("issuer", "api.medcircle.health", "Token issuer")
	expMins := flag.Int("exp", 60*24*7, "Token expiration in minutes (default: 7 days)")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	if *generate {
		if err := identity.GenerateKeyPair(*privateKeyPath, *publicKeyPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating key pair: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s and %s\n", *privateKeyPath, *publicKeyPath)
		return
	}

	identityService, err := identity.NewService(identity.Config{
		PrivateKeyPath: *privateKeyPath,
		Issuer:         *issuer,
		ExpirationMins: *expMins,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating identity service: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nGenerate keys first with: admin-token -generate\n")
		os.Exit(1)
	}

	token, err := identityService.Sign(identity.Principal{
		UserID: *userID,
		Email:  *email,
		Role:   *role,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		output := map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   *expMins * 60,
			"user_id":      *userID,
			"email":        *email,
			"role":         *role,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
	} else {
		expTime := time.Now().Add(time.Duration(*expMins) * time.Minute)
		fmt.Println("Token Generated")
		fmt.Println("===============")
		fmt.Printf("User ID:  %s\n", *userID)
		fmt.Printf("Email:    %s\n", *email)
		fmt.Printf("Role:     %s\n", *role)
		fmt.Printf("Expires:  %s\n", expTime.Format(time.RFC3339))
		fmt.Println()
		fmt.Println("Token:")
		fmt.Println(token)
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080/v1/forums\n", token[:50]+"...")
	}
}
