// Command issue-token prints a signed bearer token for a member, for
// operators and local development.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/auth"
	"github.com/segyhp/sacco-ledger/internal/config"
	"github.com/segyhp/sacco-ledger/internal/domain"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		logrus.WithError(err).Fatal("failed to issue token")
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	memberID := fs.String("member", "", "member id the token is issued for")
	role := fs.String("role", string(domain.RoleMember), "role: member, manager or admin")
	ttl := fs.Duration("ttl", 0, "token lifetime, defaults to JWT_TOKEN_TTL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	actor := domain.Actor{MemberID: *memberID, Role: domain.Role(*role)}
	if actor.MemberID == "" {
		return fmt.Errorf("-member is required")
	}
	if !actor.Role.Valid() {
		return fmt.Errorf("unknown role %q", *role)
	}

	cfg, err := config.LoadAuth()
	if err != nil {
		return err
	}
	lifetime := cfg.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewTokens(cfg.JWTSecret, cfg.Issuer, lifetime).Issue(actor)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
