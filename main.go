package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	uuid "github.com/twinj/uuid"

	"cellscope/controllers"
	"cellscope/models"
	"cellscope/store"
	"cellscope/utils"
)

// corsMiddleware Use middleware for CORS (Cross-Origin Resource Sharing)
// TODO: This is too broad, cannot expose to the internet!
// CORS for * origins, allowing:
// - PUT, GET, POST, PATCH and DELETE methods
// - Origin header
// - Credentials share
// - Preflight requests cached for 12 hours
func corsMiddleware() gin.HandlerFunc {
	_corsMiddleware := cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"PUT", "GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"X-Requested-With, Content-Type, Origin, Authorization, Accept, Client-Security-Token, Accept-Encoding, x-access-token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
	return _corsMiddleware
}

// requestIDMiddleware Generate a UUID and attach it to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		_uuid := uuid.NewV4()
		c.Writer.Header().Set("X-Request-Id", _uuid.String())
		c.Next()
	}
}

func main() {
	log.Info("Starting CellScope...")

	// Generate our config based on the config supplied
	// by the user in the flags
	configPath, debugMode, err := utils.ParseFlags()
	if err != nil {
		log.Fatal(err)
	}
	config, err := utils.NewConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Debug mode enables gin-gonic debug mode
	if debugMode == false {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the image catalog
	models.ConnectDataBase(config.Sqlite.Filename)

	// Open the per-image annotation collections
	annotationStore, err := store.NewAnnotationStore(config.Storage.AnnotationsDir)
	if err != nil {
		log.Fatal(err)
	}

	r := gin.Default()

	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Version tag to test against
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "v0.1.0",
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// REST API for the image catalog and annotation collections
	// Currently no authentication is used
	api := r.Group("/api")
	v1 := api.Group("/v1")
	{
		v1.GET("/images", controllers.FindImages)
		v1.POST("/images", controllers.CreateImage)
		v1.GET("/images/:id", controllers.FindImage)
		v1.PATCH("/images/:id", controllers.UpdateImage)
		v1.DELETE("/images/:id", controllers.DeleteImage)

		v1.GET("/images/:id/annotations", controllers.FindAnnotations(annotationStore))
		v1.POST("/images/:id/annotations", controllers.CreateAnnotation(annotationStore))

		v1.GET("/annotations/export", controllers.ExportAnnotations(annotationStore))
		v1.GET("/annotations/:id", controllers.FindAnnotation(annotationStore))
		v1.PATCH("/annotations/:id", controllers.UpdateAnnotation(annotationStore))
		v1.DELETE("/annotations/:id", controllers.DeleteAnnotation(annotationStore))
		v1.POST("/annotations/:id/brush", controllers.BrushAnnotation(annotationStore))
		v1.POST("/annotations/merge", controllers.MergeAnnotations(annotationStore))
		v1.POST("/annotations/generate-points", controllers.GeneratePoints())
	}

	addr := fmt.Sprintf(":%s", config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 1 second.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	// catching ctx.Done(). timeout of 1 second.
	select {
	case <-ctx.Done():
		log.Info("Timeout of 1 second.")
	}

	log.Info("Server exiting")
}
