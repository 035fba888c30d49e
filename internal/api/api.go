package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yingtu-pmc/analyzer-go/internal/api/handlers"
	"github.com/yingtu-pmc/analyzer-go/internal/api/middleware"
	"github.com/yingtu-pmc/analyzer-go/internal/service"
)

type RouterConfig struct {
	AllowedOrigins []string
	InputDir       string
	ReportDir      string
}

func NewRouter(analysis *service.AnalysisService, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if analysis != nil {
		analysisHandler := handlers.NewAnalysisHandler(analysis, cfg.InputDir, cfg.ReportDir)
		analysisGroup := apiGroup.Group("/analysis")
		{
			analysisGroup.POST("/run", analysisHandler.RunAnalysis)
			analysisGroup.POST("/upload", analysisHandler.UploadAndRun)
			analysisGroup.GET("/summaries", analysisHandler.GetSummaries)
			analysisGroup.GET("/records", analysisHandler.GetRecords)
			analysisGroup.GET("/suppliers", analysisHandler.GetSupplierAudit)
			analysisGroup.GET("/stats", analysisHandler.GetStats)
			analysisGroup.POST("/report", analysisHandler.ExportReport)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
