package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-column-index/config"
	"github.com/gcbaptista/go-column-index/model"
)

// CreateTableRequest is the body of POST /tables.
type CreateTableRequest struct {
	Name string `json:"name"`
}

// CreateTableHandler handles the request to create a new table.
func (api *API) CreateTableHandler(c *gin.Context) {
	var req CreateTableRequest
	if validation := ValidateJSONBinding(c, &req); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}
	if validation := ValidateTableName(req.Name); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	table, err := api.engine.CreateTable(req.Name)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Table '" + req.Name + "' created successfully",
		"table":   table,
	})
}

// ListTablesHandler lists all tables.
func (api *API) ListTablesHandler(c *gin.Context) {
	tables := api.engine.Tables()
	c.JSON(http.StatusOK, gin.H{
		"tables": tables,
		"total":  len(tables),
	})
}

// ListColumnsHandler lists the columns of one table.
func (api *API) ListColumnsHandler(c *gin.Context) {
	table := c.Param("table")
	columns, err := api.engine.Columns(table)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"table":   table,
		"columns": columns,
		"total":   len(columns),
	})
}

// CreateColumnHandler adds a value column to a table.
func (api *API) CreateColumnHandler(c *gin.Context) {
	table := c.Param("table")

	var req CreateColumnRequest
	if validation := ValidateJSONBinding(c, &req); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}
	if validation := ValidateCreateColumnRequest(&req); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	col, err := api.engine.CreateColumn(table, req.Name, model.DataType(req.Type), req.Range, req.Vector)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Column '" + col.FullName() + "' created successfully",
		"column":  col,
	})
}

// CreateIndexColumnHandler adds an index column to a table.
// Request Body: config.ColumnSettings
func (api *API) CreateIndexColumnHandler(c *gin.Context) {
	table := c.Param("table")

	var settings config.ColumnSettings
	if validation := ValidateJSONBinding(c, &settings); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}
	if validation := ValidateColumnSettings(&settings); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	col, err := api.engine.CreateIndexColumn(table, settings)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Index column '" + col.FullName() + "' created successfully",
		"column":  col,
		"sources": settings.Sources,
	})
}

// GetColumnHandler returns a column definition; index columns also list
// their sources.
func (api *API) GetColumnHandler(c *gin.Context) {
	name := c.Param("column")
	if validation := ValidateColumnName(name); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	col, err := api.engine.Column(name)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	response := gin.H{
		"column":      col,
		"description": col.String(),
	}
	if col.IsIndex() {
		srcs, err := api.engine.Updater().Sources(name)
		if err != nil {
			SendDomainError(c, err)
			return
		}
		response["sources"] = sourceNames(srcs)
	}
	c.JSON(http.StatusOK, response)
}

// RemoveColumnHandler removes a column. Value columns that still feed an
// index column are refused.
func (api *API) RemoveColumnHandler(c *gin.Context) {
	name := c.Param("column")
	if validation := ValidateColumnName(name); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	if err := api.engine.RemoveColumn(c.Request.Context(), name); err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Column '" + name + "' removed"})
}

// SetSourcesRequest is the body of PUT /columns/:column/sources.
type SetSourcesRequest struct {
	Sources []any `json:"sources"`
}

// SetSourceRequest is the body of PUT /columns/:column/source.
type SetSourceRequest struct {
	Source any `json:"source"`
}

// GetSourcesHandler lists the sources of an index column in section order.
func (api *API) GetSourcesHandler(c *gin.Context) {
	name := c.Param("column")
	srcs, err := api.engine.Updater().Sources(name)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"column":  name,
		"sources": sourceNames(srcs),
	})
}

// SetSourcesHandler replaces the source list of an index column. Elements
// are column ids or qualified column names.
func (api *API) SetSourcesHandler(c *gin.Context) {
	name := c.Param("column")

	var req SetSourcesRequest
	if err := decodeJSONBody(c, &req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if req.Sources == nil {
		req.Sources = []any{}
	}

	if err := api.engine.Updater().SetSources(name, req.Sources); err != nil {
		SendDomainError(c, err)
		return
	}
	api.respondWithSources(c, name)
}

// SetSourceHandler sets a single source, or a full list when source is an array.
func (api *API) SetSourceHandler(c *gin.Context) {
	name := c.Param("column")

	var req SetSourceRequest
	if err := decodeJSONBody(c, &req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if err := api.engine.Updater().SetSource(name, req.Source); err != nil {
		SendDomainError(c, err)
		return
	}
	api.respondWithSources(c, name)
}

func (api *API) respondWithSources(c *gin.Context, name string) {
	srcs, err := api.engine.Updater().Sources(name)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Sources of '" + name + "' updated",
		"column":  name,
		"sources": sourceNames(srcs),
	})
}

func sourceNames(srcs []*model.Column) []string {
	names := make([]string, len(srcs))
	for i, src := range srcs {
		names[i] = src.FullName()
	}
	return names
}
