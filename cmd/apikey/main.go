// Command apikey provisions keys for the JSON API.
//
//	apikey -name "stats bot" -scopes asynctournament
//
// The key is printed once and cannot be recovered afterwards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Dosada05/async-tournament/db"
	"github.com/Dosada05/async-tournament/repositories"
	"github.com/Dosada05/async-tournament/services"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	name := flag.String("name", "", "human readable owner of the key")
	scopes := flag.String("scopes", services.APIScopeAsyncTournament, "comma separated scopes")
	flag.Parse()

	if err := run(*name, *scopes); err != nil {
		logger.Error("failed to issue api key", slog.Any("error", err))
		os.Exit(1)
	}
}

// run returns instead of exiting so the connection and context are released.
func run(name, rawScopes string) error {
	scopeList, err := parseScopes(rawScopes)
	if err != nil {
		return err
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}

	dbConn, err := db.Connect(dsn, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.CreateSchema(ctx, dbConn); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	auth := services.NewAuthService(
		repositories.NewPostgresAPIKeyRepository(dbConn),
		repositories.NewPostgresUserRepository(dbConn),
		nil,
		services.DiscordOAuthConfig{},
	)

	key, err := auth.IssueAPIKey(ctx, name, scopeList)
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

// parseScopes splits a comma separated list, dropping blanks. At least one
// scope is required.
func parseScopes(raw string) ([]string, error) {
	scopeList := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopeList = append(scopeList, s)
		}
	}
	if len(scopeList) == 0 {
		return nil, fmt.Errorf("no scopes in %q, expected e.g. %q", raw, services.APIScopeAsyncTournament)
	}
	return scopeList, nil
}
