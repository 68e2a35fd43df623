package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/internal"
	"github.com/peoplesync/absence-bridge/pkg/leavesync"
)

// setupRestAPI serves the operational surface: metrics, the rolling run
// log, the current mapping view, and the two run triggers. Webhook
// signature verification is a transport concern handled upstream of this
// service (reverse proxy), not here.
func setupRestAPI(port int, r *runner, directory *leavesync.MappingDirectory, runLog *internal.RunLog) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(zap.L(), true))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "online")
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	debug := router.Group("/debug")
	{
		debug.GET("/runs", func(c *gin.Context) {
			c.JSON(http.StatusOK, runLog.Entries())
		})
		debug.GET("/mappings", func(c *gin.Context) {
			mappings, err := directory.Mappings(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, mappings)
		})
	}

	router.POST("/sync/trigger", func(c *gin.Context) {
		report, err := r.fullSync()
		if handleRunError(c, err) {
			return
		}
		c.JSON(http.StatusOK, report)
	})

	// The HR platform posts here on leave events; the body is not trusted
	// or parsed, a webhook only tightens the polling loop.
	router.POST("/webhook/hr", func(c *gin.Context) {
		report, err := r.approvalCheck()
		if handleRunError(c, err) {
			return
		}
		c.JSON(http.StatusOK, report)
	})

	err := router.Run(fmt.Sprintf(":%d", port))
	if err != nil {
		zap.S().Fatalf("Failed to serve REST API: %s", err)
	}
}

func handleRunError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, errRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
	return true
}
