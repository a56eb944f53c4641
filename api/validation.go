// Package api provides validation utilities for API request handling.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-column-index/config"
	"github.com/gcbaptista/go-column-index/model"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateTableName validates a table name parameter
func ValidateTableName(table string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if table == "" {
		result.AddError("table", "Table name is required")
		return result
	}

	if strings.TrimSpace(table) != table {
		result.AddError("table", "Table name cannot have leading or trailing whitespace")
		return result
	}

	if strings.Contains(table, ".") {
		result.AddError("table", "Table name cannot contain '.'")
	}

	return result
}

// ValidateColumnName validates a qualified "Table.column" name parameter
func ValidateColumnName(fullName string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if fullName == "" {
		result.AddError("column", "Column name is required")
		return result
	}

	if strings.TrimSpace(fullName) != fullName {
		result.AddError("column", "Column name cannot have leading or trailing whitespace")
		return result
	}

	if _, _, ok := model.SplitFullName(fullName); !ok {
		result.AddError("column", "Column name must be qualified as 'Table.column'")
	}

	return result
}

// ParseRowID parses a row id path parameter. Row ids start at 1.
func ParseRowID(raw string) (model.RowID, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		result.AddError("row", fmt.Sprintf("Row id '%s' is not an unsigned 32-bit integer", raw))
		return 0, result
	}
	if n == 0 {
		result.AddError("row", "Row ids start at 1")
		return 0, result
	}

	return model.RowID(n), result
}

// CreateColumnRequest is the body of POST /tables/:table/columns.
type CreateColumnRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Vector bool   `json:"vector"`
	Range  string `json:"range"`
}

// ValidateCreateColumnRequest validates a value column definition
func ValidateCreateColumnRequest(req *CreateColumnRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if req.Name == "" {
		result.AddError("name", "Column name is required")
	} else if strings.ContainsAny(req.Name, ". /") {
		result.AddError("name", "Column name cannot contain '.', ' ' or '/'")
	}

	if req.Type == "" {
		result.AddError("type", "Column type is required")
	} else if dt, err := model.ParseDataType(req.Type); err != nil {
		result.AddError("type", err.Error())
	} else if dt == model.TypeReference && req.Range == "" {
		result.AddError("range", "Reference columns need the referenced table in 'range'")
	}

	return result
}

// ValidateColumnSettings validates index column settings for creation
func ValidateColumnSettings(settings *config.ColumnSettings) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if settings == nil {
		result.AddError("settings", "Index column settings are required")
		return result
	}

	settings.ApplyDefaults()

	for _, conflict := range settings.ValidateFieldNames() {
		result.AddError("field_validation", conflict)
	}

	return result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}

// decodeJSONBody decodes the request body keeping numbers as json.Number,
// so integers wider than a float64 mantissa reach the codec intact.
func decodeJSONBody(c *gin.Context, target interface{}) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return io.EOF
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after the JSON value")
	}
	return nil
}
