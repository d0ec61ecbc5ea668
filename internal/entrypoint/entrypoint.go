// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openshelf/bookshelf/internal/auth"
	"github.com/openshelf/bookshelf/internal/books"
	"github.com/openshelf/bookshelf/internal/config"
	"github.com/openshelf/bookshelf/internal/covers"
	"github.com/openshelf/bookshelf/internal/database"
	"github.com/openshelf/bookshelf/internal/database/catalog"
	"github.com/openshelf/bookshelf/internal/database/readinglists"
	"github.com/openshelf/bookshelf/internal/database/users"
	httpcontrollers "github.com/openshelf/bookshelf/internal/http"
)

// Run builds the application from config and serves until interrupted.
func Run(cfg *config.Config) {
	if cfg.Auth.JWTSecret == "" {
		secret, err := generateSecret()
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		cfg.Auth.JWTSecret = secret
		log.Printf("WARNING: AUTH_JWT_SECRET is not set. Generated an ephemeral secret; issued tokens will not survive a restart.")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	coverStore, err := covers.NewDiskStore(cfg.Covers.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize cover store: %v", err)
	}

	usersRepo := users.NewRepository(db.DB)
	catalogRepo := catalog.NewRepository(db.DB)
	listsRepo := readinglists.NewRepository(db.DB)

	authService := auth.NewService(usersRepo, cfg.Auth)
	booksService := books.NewService(catalogRepo, coverStore)

	router := httpcontrollers.NewRouter(httpcontrollers.RouterConfig{
		Database:     db,
		AuthService:  authService,
		BooksService: booksService,
		ListsRepo:    listsRepo,
		CatalogRepo:  catalogRepo,
		JWTSecret:    []byte(cfg.Auth.JWTSecret),
		CoversDir:    coverStore.Dir(),
	})

	serve(router, cfg)
}

func serve(handler http.Handler, cfg *config.Config) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: handler,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func generateSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
