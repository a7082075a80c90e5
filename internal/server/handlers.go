package server

import (
	"net/http"
	"time"

	"github.com/Meesho/BharatMLStack/inferline/internal/audit"
	"github.com/Meesho/BharatMLStack/inferline/internal/pipeline"
	"github.com/Meesho/BharatMLStack/inferline/internal/predcache"
	"github.com/gin-gonic/gin"
)

var (
	pipelineInstance *pipeline.Pipeline
	cacheInstance    *predcache.Cache
)

type PredictRequest struct {
	Features []float32 `json:"features" binding:"required,min=1"`
}

type PredictResponse struct {
	Pred float64 `json:"pred"`
}

// RegisterRoutes registers all HTTP API routes.
func RegisterRoutes(router *gin.Engine, pipe *pipeline.Pipeline, cache *predcache.Cache) {
	pipelineInstance = pipe
	cacheInstance = cache

	router.POST("/predict", handlePredict)
	router.GET("/health/self", handleHealth)
}

func handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "true")
}

func handlePredict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "features must be a non-empty array of numbers"})
		return
	}

	if prob, ok := cacheInstance.Get(req.Features); ok {
		c.JSON(http.StatusOK, PredictResponse{Pred: prob})
		return
	}

	start := time.Now()
	outcome := pipelineInstance.Submit(req.Features)
	switch outcome.Kind {
	case pipeline.OutcomeCompleted:
		cacheInstance.Put(req.Features, outcome.Probability)
		audit.PublishPrediction(audit.Record{
			RequestID:   outcome.RequestID,
			Probability: outcome.Probability,
			LatencyMs:   time.Since(start).Milliseconds(),
			ServedAt:    time.Now().UTC().Format(time.RFC3339Nano),
		})
		c.JSON(http.StatusOK, PredictResponse{Pred: outcome.Probability})
	case pipeline.OutcomeRejected:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": outcome.Err.Error()})
	case pipeline.OutcomeTimedOut:
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": outcome.Err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": outcome.Err.Error()})
	}
}
