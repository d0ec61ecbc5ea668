package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/bookshelf/internal/auth"
	"github.com/openshelf/bookshelf/internal/books"
	"github.com/openshelf/bookshelf/internal/database"
	"github.com/openshelf/bookshelf/internal/database/catalog"
	"github.com/openshelf/bookshelf/internal/database/readinglists"
)

// RouterConfig receives all handler dependencies, improving testability
// and reducing parameter count.
type RouterConfig struct {
	Database     *database.Database
	AuthService  *auth.Service
	BooksService *books.Service
	ListsRepo    *readinglists.Repository
	CatalogRepo  *catalog.Repository
	JWTSecret    []byte
	CoversDir    string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.Database)
	authController := NewAuthController(cfg.AuthService)
	booksController := NewBooksController(cfg.BooksService)
	listsController := NewReadingListsController(cfg.ListsRepo, cfg.CatalogRepo)

	router.GET("/health", healthController.Status)

	// Uploaded cover images
	if cfg.CoversDir != "" {
		router.Static("/covers", cfg.CoversDir)
	}

	// Public endpoints
	router.POST("/api/auth/register", authController.Register)
	router.POST("/api/auth/login", authController.Login)
	router.POST("/api/auth/refresh", authController.Refresh)

	// Everything else requires a Bearer access token
	api := router.Group("/api")
	api.Use(auth.RequireAuth(cfg.JWTSecret))
	{
		api.GET("/profile", authController.Profile)
		api.PATCH("/profile", authController.UpdateProfile)

		api.GET("/books", booksController.List)
		api.POST("/books", booksController.Upload)
		api.GET("/books/:slug", booksController.Get)
		api.PATCH("/books/:slug", booksController.Update)
		api.DELETE("/books/:slug", booksController.Delete)

		api.GET("/lists", listsController.MyLists)
		api.POST("/lists", listsController.Create)
		api.PUT("/lists/:id", listsController.Rename)
		api.DELETE("/lists/:id", listsController.Delete)
		api.GET("/lists/:id/books", listsController.Items)
		api.POST("/lists/:id/books", listsController.AddBook)
		api.DELETE("/lists/:id/books/:bookID", listsController.RemoveBook)
		api.PATCH("/lists/:id/reorder", listsController.Reorder)
	}

	return router
}
