// Command issue-token prints a bearer token for an API client such as the
// chat bot front end or an operator.
//
// Usage:
//
//	issue-token --subject=release-bot [--role=service|admin] [--ttl=8760h]
//
// Requires the auth settings of the server configuration.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/heartmarshall/ingrid-backend/internal/auth"
	"github.com/heartmarshall/ingrid-backend/internal/config"
	"github.com/heartmarshall/ingrid-backend/pkg/ctxutil"
)

func main() {
	subject := flag.String("subject", "", "client name carried by the token")
	role := flag.String("role", ctxutil.RoleService, "service or admin")
	ttl := flag.Duration("ttl", 0, "token lifetime (default: auth.token_ttl)")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "Usage: issue-token --subject=release-bot [--role=service|admin]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, lifetime).GenerateToken(*subject, *role)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println(token)
}
