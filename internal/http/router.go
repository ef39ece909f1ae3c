package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Health, cfg.Version)
	booksController := NewBooksController(cfg.Catalog)
	importsController := NewImportsController(cfg.Importer, cfg.TaskQueue, cfg.DefaultStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api")

	// Catalog endpoints
	api.GET("/books", booksController.ListBooks)
	api.GET("/books/:id", booksController.GetBook)
	api.POST("/books", booksController.AddBook)

	// Import endpoints
	api.POST("/imports/csv", importsController.ImportCSV)
	api.POST("/imports/json", importsController.ImportJSON)
	api.POST("/imports/woocommerce", importsController.ImportWooCommerce)
	api.GET("/imports", importsController.ListImports)
	api.GET("/imports/:id", importsController.GetImport)

	// Task status endpoint
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
