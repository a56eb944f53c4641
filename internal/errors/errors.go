package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrTypeMismatch is returned when a value cannot be coerced to the declared column type
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnresolvedSource is returned when a source reference does not name an existing column
	ErrUnresolvedSource = errors.New("unresolved source")

	// ErrIncompatibleSource is returned when a source column does not share the index's row space
	ErrIncompatibleSource = errors.New("incompatible source")

	// ErrNoSources is returned when an update targets an index column without sources
	ErrNoSources = errors.New("index column has no sources")

	// ErrInvalidSection is returned when a section number is out of range
	ErrInvalidSection = errors.New("invalid section")

	// ErrStorageFailure is returned when the posting storage rejects a write
	ErrStorageFailure = errors.New("storage failure")

	// ErrColumnNotFound is returned when a column is not found
	ErrColumnNotFound = errors.New("column not found")

	// ErrColumnAlreadyExists is returned when trying to define a column that already exists
	ErrColumnAlreadyExists = errors.New("column already exists")

	// ErrTableNotFound is returned when a table is not found
	ErrTableNotFound = errors.New("table not found")

	// ErrTableAlreadyExists is returned when trying to create a table that already exists
	ErrTableAlreadyExists = errors.New("table already exists")

	// ErrNotIndexColumn is returned when an index operation targets a value column
	ErrNotIndexColumn = errors.New("not an index column")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrJobNotFound is returned when a background job is not found
	ErrJobNotFound = errors.New("job not found")
)

// TypeMismatchError represents a value that cannot be coerced to a column type
type TypeMismatchError struct {
	Type  string
	Value interface{}
	Cause error
}

func (e *TypeMismatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot convert %v (%T) to %s: %v", e.Value, e.Value, e.Type, e.Cause)
	}
	return fmt.Sprintf("cannot convert %v (%T) to %s", e.Value, e.Value, e.Type)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func (e *TypeMismatchError) Unwrap() error {
	return e.Cause
}

// NewTypeMismatchError creates a new TypeMismatchError
func NewTypeMismatchError(typeName string, value interface{}, cause error) *TypeMismatchError {
	return &TypeMismatchError{Type: typeName, Value: value, Cause: cause}
}

// UnresolvedSourceError represents a source reference that cannot be resolved
type UnresolvedSourceError struct {
	Ref string
}

func (e *UnresolvedSourceError) Error() string {
	return fmt.Sprintf("source '%s' cannot be resolved to a column", e.Ref)
}

func (e *UnresolvedSourceError) Is(target error) bool {
	return target == ErrUnresolvedSource
}

// NewUnresolvedSourceError creates a new UnresolvedSourceError
func NewUnresolvedSourceError(ref string) *UnresolvedSourceError {
	return &UnresolvedSourceError{Ref: ref}
}

// IncompatibleSourceError represents a source column from an unrelated table
type IncompatibleSourceError struct {
	Source      string
	TargetTable string
}

func (e *IncompatibleSourceError) Error() string {
	return fmt.Sprintf("source '%s' does not belong to table '%s' or a table it references", e.Source, e.TargetTable)
}

func (e *IncompatibleSourceError) Is(target error) bool {
	return target == ErrIncompatibleSource
}

// NewIncompatibleSourceError creates a new IncompatibleSourceError
func NewIncompatibleSourceError(source, targetTable string) *IncompatibleSourceError {
	return &IncompatibleSourceError{Source: source, TargetTable: targetTable}
}

// NoSourcesError represents an update against an index column with zero sources
type NoSourcesError struct {
	Column string
}

func (e *NoSourcesError) Error() string {
	return fmt.Sprintf("index column '%s' has no sources", e.Column)
}

func (e *NoSourcesError) Is(target error) bool {
	return target == ErrNoSources
}

// NewNoSourcesError creates a new NoSourcesError
func NewNoSourcesError(column string) *NoSourcesError {
	return &NoSourcesError{Column: column}
}

// InvalidSectionError represents a section outside 1..NumSources
type InvalidSectionError struct {
	Column     string
	Section    uint32
	NumSources int
}

func (e *InvalidSectionError) Error() string {
	return fmt.Sprintf("section %d is out of range for index column '%s' with %d sources", e.Section, e.Column, e.NumSources)
}

func (e *InvalidSectionError) Is(target error) bool {
	return target == ErrInvalidSection
}

// NewInvalidSectionError creates a new InvalidSectionError
func NewInvalidSectionError(column string, section uint32, numSources int) *InvalidSectionError {
	return &InvalidSectionError{Column: column, Section: section, NumSources: numSources}
}

// StorageError wraps a failure reported by a posting storage backend
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("posting storage %s failed: %v", e.Op, e.Cause)
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError
func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{Op: op, Cause: cause}
}

// ColumnNotFoundError represents a column lookup miss
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column '%s' not found", e.Column)
}

func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// NewColumnNotFoundError creates a new ColumnNotFoundError
func NewColumnNotFoundError(column string) *ColumnNotFoundError {
	return &ColumnNotFoundError{Column: column}
}

// ColumnAlreadyExistsError represents a duplicate column definition
type ColumnAlreadyExistsError struct {
	Column string
}

func (e *ColumnAlreadyExistsError) Error() string {
	return fmt.Sprintf("column '%s' already exists", e.Column)
}

func (e *ColumnAlreadyExistsError) Is(target error) bool {
	return target == ErrColumnAlreadyExists
}

// NewColumnAlreadyExistsError creates a new ColumnAlreadyExistsError
func NewColumnAlreadyExistsError(column string) *ColumnAlreadyExistsError {
	return &ColumnAlreadyExistsError{Column: column}
}

// TableNotFoundError represents a table lookup miss
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table '%s' not found", e.Table)
}

func (e *TableNotFoundError) Is(target error) bool {
	return target == ErrTableNotFound
}

// NewTableNotFoundError creates a new TableNotFoundError
func NewTableNotFoundError(table string) *TableNotFoundError {
	return &TableNotFoundError{Table: table}
}

// TableAlreadyExistsError represents a duplicate table
type TableAlreadyExistsError struct {
	Table string
}

func (e *TableAlreadyExistsError) Error() string {
	return fmt.Sprintf("table '%s' already exists", e.Table)
}

func (e *TableAlreadyExistsError) Is(target error) bool {
	return target == ErrTableAlreadyExists
}

// NewTableAlreadyExistsError creates a new TableAlreadyExistsError
func NewTableAlreadyExistsError(table string) *TableAlreadyExistsError {
	return &TableAlreadyExistsError{Table: table}
}

// NotIndexColumnError represents an index operation on a value column
type NotIndexColumnError struct {
	Column string
}

func (e *NotIndexColumnError) Error() string {
	return fmt.Sprintf("column '%s' is not an index column", e.Column)
}

func (e *NotIndexColumnError) Is(target error) bool {
	return target == ErrNotIndexColumn
}

// NewNotIndexColumnError creates a new NotIndexColumnError
func NewNotIndexColumnError(column string) *NotIndexColumnError {
	return &NotIndexColumnError{Column: column}
}

// JobNotFoundError represents a lookup of an unknown job id
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
