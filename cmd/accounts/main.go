package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	accounts "github.com/goliatone/go-accounts"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	signingKey := os.Getenv("ACCOUNTS_SIGNING_KEY")
	if signingKey == "" {
		log.Fatal("ACCOUNTS_SIGNING_KEY is required")
	}

	dsn := envOr("ACCOUNTS_DSN", "file:accounts.db?cache=shared&_pragma=foreign_keys(1)")
	addr := envOr("ACCOUNTS_ADDR", ":3000")

	cfg := accounts.SimpleConfig{
		SigningKey:      signingKey,
		TokenExpiration: envInt("ACCOUNTS_TOKEN_EXPIRATION", accounts.DefaultTokenExpiration),
		CookieName:      os.Getenv("ACCOUNTS_COOKIE_NAME"),
		Issuer:          envOr("ACCOUNTS_ISSUER", "accounts"),
		Audience:        splitEnv("ACCOUNTS_AUDIENCE"),
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := applyMigrations(context.Background(), db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	repo := accounts.NewRepositoryManager(db)
	provider := accounts.NewAccountProvider(repo.Accounts())
	auther := accounts.NewAuthenticator(provider, cfg)

	routeAuth, err := accounts.NewHTTPAuthenticator(auther, cfg)
	if err != nil {
		log.Fatalf("http authenticator: %v", err)
	}

	controller := accounts.NewAccountsController(
		accounts.WithControllerRepo(repo),
		accounts.WithControllerAuther(routeAuth),
		accounts.WithControllerTokens(auther.TokenService()),
		accounts.WithControllerConfig(cfg),
		accounts.WithControllerDebug(os.Getenv("ACCOUNTS_DEBUG") == "true"),
	)

	protected := accounts.Protected(accounts.ProtectedConfig{
		Config: cfg,
		Tokens: auther.TokenService(),
		Store:  repo.Accounts(),
	})

	app := fiber.New(fiber.Config{AppName: "accounts"})
	accounts.RegisterAccountRoutes(app, controller, protected)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// applyMigrations executes the embedded schema files in name order. Files are
// idempotent so re-running on boot is safe.
func applyMigrations(ctx context.Context, db *bun.DB) error {
	migrations := accounts.GetMigrationsFS()

	var names []string
	err := fs.WalkDir(migrations, "data/sql/migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".up.sql") {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		ddl, err := fs.ReadFile(migrations, name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(ddl)); err != nil {
			return err
		}
	}

	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
