package services

import (
	"context"

	"github.com/gcbaptista/go-column-index/config"
	"github.com/gcbaptista/go-column-index/index"
	"github.com/gcbaptista/go-column-index/internal/codec"
	"github.com/gcbaptista/go-column-index/internal/metrics"
	"github.com/gcbaptista/go-column-index/internal/typoutil"
	"github.com/gcbaptista/go-column-index/model"
)

// RawRowUpdate is one element of a bulk Set request: a row id and the
// bare-or-structured argument Set accepts.
type RawRowUpdate struct {
	Row  model.RowID `json:"row"`
	Args any         `json:"args"`
}

// ColumnIndexer maintains and reads the postings of one index column.
type ColumnIndexer interface {
	Name() string
	Column() *model.Column
	Update(ctx context.Context, row model.RowID, section model.Section, oldValue, newValue *codec.Value) error
	Postings(ctx context.Context, term string) (index.PostingList, error)
	RowPostings(ctx context.Context, row model.RowID, section model.Section) ([]index.Posting, error)
	Terms(ctx context.Context) ([]string, error)
	SimilarTerms(ctx context.Context, term string, maxDistance, limit int) ([]typoutil.Match, error)
	Search(ctx context.Context, query string) ([]model.RowID, error)
}

// UpdateProtocol reads and assigns the sources of index columns and
// pushes value changes into them.
type UpdateProtocol interface {
	Sources(ixName string) ([]*model.Column, error)
	SetSources(ixName string, raw []any) error
	SetSource(ixName string, raw any) error
	Set(ctx context.Context, ixName string, row model.RowID, raw any) error
}

// SchemaManager manages tables and columns
type SchemaManager interface {
	CreateTable(name string) (model.Table, error)
	Tables() []model.Table
	CreateColumn(table, name string, dt model.DataType, rangeTable string, vector bool) (*model.Column, error)
	CreateIndexColumn(table string, settings config.ColumnSettings) (*model.Column, error)
	RemoveColumn(ctx context.Context, fullName string) error
	Column(fullName string) (*model.Column, error)
	Columns(table string) ([]*model.Column, error)
	Indexer(fullName string) (ColumnIndexer, error)
}

// RowWriter stores row values; index columns follow their sources.
type RowWriter interface {
	SetValue(ctx context.Context, table string, row model.RowID, column string, raw any) error
	SetRow(ctx context.Context, table string, row model.RowID, values map[string]any) error
	AddRow(ctx context.Context, table string, values map[string]any) (model.RowID, error)
	GetValue(table string, row model.RowID, column string) (any, error)
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(column string, status *model.JobStatus) []*model.Job
}

// ColumnManager is everything the HTTP layer needs from a database.
type ColumnManager interface {
	SchemaManager
	RowWriter
	Updater() UpdateProtocol
	Jobs() JobManager
	Metrics() *metrics.Metrics
	BulkSetAsync(ixName string, rows []RawRowUpdate) (string, error)
	Persist(ctx context.Context) error
	PersistAsync() (string, error)
}
