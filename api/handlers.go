package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-column-index/internal/analytics"
	"github.com/gcbaptista/go-column-index/services"
)

// API holds dependencies for API handlers, primarily the column manager.
type API struct {
	engine    services.ColumnManager
	analytics *analytics.Service
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.ColumnManager) *API {
	return &API{
		engine:    engine,
		analytics: analytics.NewService(engine),
	}
}

// SetupRoutes defines all the API routes of the column index server.
func SetupRoutes(router *gin.Engine, engine services.ColumnManager) {
	apiHandler := NewAPI(engine)

	router.Use(RequestIDMiddleware())

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(engine.Metrics().Handler()))
	router.GET("/stats", apiHandler.StatsHandler)
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)
	router.POST("/_persist", apiHandler.PersistHandler)

	router.GET("/jobs/:jobId", apiHandler.GetJobHandler)

	// Tables, value columns and the trigger path
	tableRoutes := router.Group("/tables")
	{
		tableRoutes.POST("", apiHandler.CreateTableHandler)
		tableRoutes.GET("", apiHandler.ListTablesHandler)
		tableRoutes.GET("/:table/columns", apiHandler.ListColumnsHandler)
		tableRoutes.POST("/:table/columns", apiHandler.CreateColumnHandler)
		tableRoutes.POST("/:table/index_columns", apiHandler.CreateIndexColumnHandler)
		tableRoutes.POST("/:table/rows", apiHandler.AddRowHandler)
		tableRoutes.PUT("/:table/rows/:row", apiHandler.SetRowHandler)
		tableRoutes.GET("/:table/rows/:row/:column", apiHandler.GetValueHandler)
	}

	// Columns by qualified name, the source registry and the update protocol
	columnRoutes := router.Group("/columns")
	{
		columnRoutes.GET("/:column", apiHandler.GetColumnHandler)
		columnRoutes.DELETE("/:column", apiHandler.RemoveColumnHandler)
		columnRoutes.GET("/:column/sources", apiHandler.GetSourcesHandler)
		columnRoutes.PUT("/:column/sources", apiHandler.SetSourcesHandler)
		columnRoutes.PUT("/:column/source", apiHandler.SetSourceHandler)
		columnRoutes.PUT("/:column/rows/:row", apiHandler.SetIndexRowHandler)
		columnRoutes.POST("/:column/rows", apiHandler.BulkSetHandler)
		columnRoutes.GET("/:column/rows/:row/postings", apiHandler.RowPostingsHandler)
		columnRoutes.GET("/:column/postings/:term", apiHandler.PostingsHandler)
		columnRoutes.GET("/:column/terms", apiHandler.TermsHandler)
		columnRoutes.GET("/:column/search", apiHandler.SearchHandler)
		columnRoutes.GET("/:column/jobs", apiHandler.ListJobsHandler)
	}
}

// HealthCheckHandler provides a simple health check endpoint.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "go-column-index",
	})
}

// StatsHandler returns the update counters of this process.
func (api *API) StatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Metrics().Snapshot())
}

// PersistHandler saves the database. With ?async=true it starts a job
// and answers 202 with the job id.
func (api *API) PersistHandler(c *gin.Context) {
	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	if async {
		jobID, err := api.engine.PersistAsync()
		if err != nil {
			SendJobExecutionError(c, "persist", err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":  "accepted",
			"message": "Persist started",
			"job_id":  jobID,
		})
		return
	}

	if err := api.engine.Persist(c.Request.Context()); err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Database persisted"})
}
