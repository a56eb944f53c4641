package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsHandler returns the schema, lexicon and search overview.
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	dashboard, err := api.analytics.GetDashboardData(c.Request.Context())
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
