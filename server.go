package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"regional-means/aggregator"
	"regional-means/config"
	"regional-means/models"
	"regional-means/providers"
	"regional-means/regions"
)

// startServer запускает HTTP сервер
func startServer() {
	gin.SetMode(gin.ReleaseMode)

	// Настройка сервера
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      newRouter(agg, cfg.DataDir, cfg.Variable, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("сервер запущен", slog.String("port", cfg.ServerPort), slog.String("data_dir", cfg.DataDir))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ошибка сервера", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-quit
	logger.Info("завершение работы сервера")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("ошибка при завершении работы сервера", slog.Any("err", err))
		return
	}

	logger.Info("сервер остановлен")
}

// newRouter регистрирует маршруты API
func newRouter(a *aggregator.Aggregator, dataDir, defaultVar string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/api/health", func(c *gin.Context) { healthHandler(c, a) })
	router.GET("/api/regions", func(c *gin.Context) { c.JSON(http.StatusOK, a.Catalog()) })
	router.GET("/api/means", func(c *gin.Context) { meansHandler(c, a, dataDir, defaultVar) })
	router.GET("/api/global", func(c *gin.Context) { globalHandler(c, a, dataDir, defaultVar) })
	router.DELETE("/api/cache", func(c *gin.Context) {
		a.ClearCache()
		c.Status(http.StatusNoContent)
	})

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("запрос",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)))
	}
}

// healthHandler проверка здоровья сервиса
func healthHandler(c *gin.Context, a *aggregator.Aggregator) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"timestamp":      time.Now().Format(time.RFC3339),
		"providers":      a.GetProviderCount(),
		"provider_names": a.GetProvidersInfo(),
		"regions":        a.Catalog().Names(),
	})
}

// meansHandler GET /api/means?file=...&var=...&regions=Arctic,Europe
func meansHandler(c *gin.Context, a *aggregator.Aggregator, dataDir, defaultVar string) {
	path, ok := resolveFile(c, dataDir)
	if !ok {
		return
	}

	rm, err := a.RegionalMeans(c.Request.Context(), path, c.DefaultQuery("var", defaultVar), config.SplitList(c.Query("regions"))...)
	if err != nil {
		writeError(c, "Не удалось вычислить региональные средние", err)
		return
	}
	c.JSON(http.StatusOK, rm)
}

// globalHandler GET /api/global?file=...&var=...
func globalHandler(c *gin.Context, a *aggregator.Aggregator, dataDir, defaultVar string) {
	path, ok := resolveFile(c, dataDir)
	if !ok {
		return
	}

	hm, err := a.HemisphericMeans(c.Request.Context(), path, c.DefaultQuery("var", defaultVar))
	if err != nil {
		writeError(c, "Не удалось вычислить глобальные средние", err)
		return
	}
	c.JSON(http.StatusOK, hm)
}

// resolveFile проверяет, что файл лежит внутри dataDir
func resolveFile(c *gin.Context, dataDir string) (string, bool) {
	name := c.Query("file")
	if name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Не указан файл"})
		return "", false
	}

	root, err := filepath.Abs(dataDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Некорректный DATA_DIR", Details: err.Error()})
		return "", false
	}
	path := filepath.Join(root, filepath.FromSlash(name))
	if rel, err := filepath.Rel(root, path); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Файл вне каталога данных"})
		return "", false
	}
	return path, true
}

// writeError переводит ошибку в HTTP статус
func writeError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, providers.ErrUnsupported),
		errors.Is(err, regions.ErrUnknownRegion),
		errors.Is(err, regions.ErrShapeMismatch),
		errors.Is(err, regions.ErrNonMonotonic),
		errors.Is(err, regions.ErrEmptyCoords),
		errors.Is(err, regions.ErrNonFiniteCoord),
		errors.Is(err, regions.ErrInvalidBounds):
		status = http.StatusBadRequest
	}
	c.JSON(status, models.ErrorResponse{Error: message, Details: err.Error()})
}
