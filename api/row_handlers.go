package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-column-index/services"
)

// BulkSetRequest is the body of POST /columns/:column/rows.
type BulkSetRequest struct {
	Updates []services.RawRowUpdate `json:"updates"`
}

// SetIndexRowHandler applies one update protocol Set call. The body is
// either the bare new value or {"section", "old_value", "value"}.
func (api *API) SetIndexRowHandler(c *gin.Context) {
	name := c.Param("column")
	row, validation := ParseRowID(c.Param("row"))
	if validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	var args any
	if err := decodeJSONBody(c, &args); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if err := api.engine.Updater().Set(c.Request.Context(), name, row, args); err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Row %d of '%s' updated", row, name),
		"column":  name,
		"row":     row,
	})
}

// BulkSetHandler applies many Set calls to one index column as a
// background job. Every update is checked before the job starts.
func (api *API) BulkSetHandler(c *gin.Context) {
	name := c.Param("column")

	var req BulkSetRequest
	if err := decodeJSONBody(c, &req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	result := &ValidationResult{Valid: true}
	if len(req.Updates) == 0 {
		result.AddError("updates", "No updates provided")
	}
	for i, u := range req.Updates {
		if u.Row == 0 {
			result.AddError(fmt.Sprintf("updates[%d].row", i), "Row ids start at 1")
		}
	}
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.engine.BulkSetAsync(name, req.Updates)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":       "accepted",
		"message":      fmt.Sprintf("Bulk update started for '%s' (%d updates)", name, len(req.Updates)),
		"job_id":       jobID,
		"update_count": len(req.Updates),
	})
}

// SetRowHandler stores column values of an existing row. Index columns
// fed by those columns follow.
func (api *API) SetRowHandler(c *gin.Context) {
	table := c.Param("table")
	row, validation := ParseRowID(c.Param("row"))
	if validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	var values map[string]any
	if err := decodeJSONBody(c, &values); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if err := api.engine.SetRow(c.Request.Context(), table, row, values); err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Row %d of '%s' updated", row, table),
		"table":   table,
		"row":     row,
	})
}

// AddRowHandler allocates a row and stores its column values.
func (api *API) AddRowHandler(c *gin.Context) {
	table := c.Param("table")

	var values map[string]any
	if err := decodeJSONBody(c, &values); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	row, err := api.engine.AddRow(c.Request.Context(), table, values)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Row %d added to '%s'", row, table),
		"table":   table,
		"row":     row,
	})
}

// GetValueHandler returns one stored cell.
func (api *API) GetValueHandler(c *gin.Context) {
	table := c.Param("table")
	column := c.Param("column")
	row, validation := ParseRowID(c.Param("row"))
	if validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	value, err := api.engine.GetValue(table, row, column)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"table":  table,
		"row":    row,
		"column": column,
		"value":  value,
	})
}
