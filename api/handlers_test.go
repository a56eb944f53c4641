package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-column-index/config"
	"github.com/gcbaptista/go-column-index/internal/engine"
	testutil "github.com/gcbaptista/go-column-index/internal/testing"
	"github.com/gcbaptista/go-column-index/model"
)

const bookmarksIndex = testutil.BookmarksIndex

func setupTestRouter(t *testing.T) (*gin.Engine, *engine.Database) {
	t.Helper()

	db := testutil.CreateTestDatabase(t)
	testutil.CreateBookmarksSchema(t, db)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, db)
	return router, db
}

// performRequest sends body as is when it is a string, JSON-encoded otherwise.
func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code ErrorCode) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())

	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, code, apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)
}

func searchRows(t *testing.T, router *gin.Engine, query string) []interface{} {
	t.Helper()
	w := performRequest(t, router, http.MethodGet, "/columns/"+bookmarksIndex+"/search?q="+query, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody(t, w)["rows"].([]interface{})
}

func TestHealthCheckHandler(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := performRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDMiddleware_ReusesHeader(t *testing.T) {
	router, _ := setupTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/columns/Nope.missing", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, "req-42", apiErr.RequestID)
}

func TestCreateTableHandler(t *testing.T) {
	router, _ := setupTestRouter(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedCode   ErrorCode
	}{
		{
			name:           "valid table",
			requestBody:    CreateTableRequest{Name: "Users"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate table",
			requestBody:    CreateTableRequest{Name: "Bookmarks"},
			expectedStatus: http.StatusConflict,
			expectedCode:   ErrorCodeAlreadyExists,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "dotted name",
			requestBody:    CreateTableRequest{Name: "a.b"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, http.MethodPost, "/tables", tt.requestBody)
			if tt.expectedCode != "" {
				assertErrorCode(t, w, tt.expectedStatus, tt.expectedCode)
				return
			}
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	w := performRequest(t, router, http.MethodGet, "/tables", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decodeBody(t, w)["total"])
}

func TestCreateColumnHandler(t *testing.T) {
	router, _ := setupTestRouter(t)

	tests := []struct {
		name           string
		table          string
		requestBody    interface{}
		expectedStatus int
		expectedCode   ErrorCode
	}{
		{
			name:           "valid column",
			table:          "Bookmarks",
			requestBody:    CreateColumnRequest{Name: "url", Type: "Text"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "reference column",
			table:          "Bookmarks",
			requestBody:    CreateColumnRequest{Name: "owner", Type: "Reference", Range: "Lexicon"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown type",
			table:          "Bookmarks",
			requestBody:    CreateColumnRequest{Name: "x", Type: "Decimal"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "reference without range",
			table:          "Bookmarks",
			requestBody:    CreateColumnRequest{Name: "y", Type: "Reference"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "missing table",
			table:          "Nope",
			requestBody:    CreateColumnRequest{Name: "x", Type: "Int32"},
			expectedStatus: http.StatusNotFound,
			expectedCode:   ErrorCodeTableNotFound,
		},
		{
			name:           "duplicate column",
			table:          "Bookmarks",
			requestBody:    CreateColumnRequest{Name: "title", Type: "ShortText"},
			expectedStatus: http.StatusConflict,
			expectedCode:   ErrorCodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, http.MethodPost, "/tables/"+tt.table+"/columns", tt.requestBody)
			if tt.expectedCode != "" {
				assertErrorCode(t, w, tt.expectedStatus, tt.expectedCode)
				return
			}
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	w := performRequest(t, router, http.MethodGet, "/tables/Bookmarks/columns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, decodeBody(t, w)["total"])
}

func TestCreateIndexColumnHandler(t *testing.T) {
	router, db := setupTestRouter(t)

	w := performRequest(t, router, http.MethodPost, "/tables/Lexicon/index_columns", config.ColumnSettings{
		Name:        "views_index",
		TargetTable: "Bookmarks",
		Tokenizer:   "none",
		Sources:     []string{"Bookmarks.n_viewed"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	col, err := db.Column("Lexicon.views_index")
	require.NoError(t, err)
	assert.True(t, col.IsIndex())

	w = performRequest(t, router, http.MethodPost, "/tables/Lexicon/index_columns", config.ColumnSettings{
		Name:        "bad_tokenizer",
		TargetTable: "Bookmarks",
		Tokenizer:   "snowball",
	})
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)

	w = performRequest(t, router, http.MethodPost, "/tables/Lexicon/index_columns", config.ColumnSettings{
		Name:        "dangling",
		TargetTable: "Bookmarks",
		Sources:     []string{"Bookmarks.missing"},
	})
	assertErrorCode(t, w, http.StatusNotFound, ErrorCodeUnresolvedSource)
	_, err = db.Column("Lexicon.dangling")
	assert.Error(t, err, "failed creation must not leave the column behind")
}

func TestGetColumnHandler(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := performRequest(t, router, http.MethodGet, "/columns/"+bookmarksIndex, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, []interface{}{"Bookmarks.title"}, body["sources"])
	assert.Contains(t, body["description"], "IndexColumn")

	w = performRequest(t, router, http.MethodGet, "/columns/Bookmarks.title", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decodeBody(t, w), "sources")

	w = performRequest(t, router, http.MethodGet, "/columns/unqualified", nil)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)

	w = performRequest(t, router, http.MethodGet, "/columns/Bookmarks.missing", nil)
	assertErrorCode(t, w, http.StatusNotFound, ErrorCodeColumnNotFound)
}

func TestSourcesHandlers(t *testing.T) {
	router, db := setupTestRouter(t)
	path := "/columns/" + bookmarksIndex

	w := performRequest(t, router, http.MethodPut, path+"/sources", SetSourcesRequest{
		Sources: []any{"Bookmarks.title", "Bookmarks.tags"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []interface{}{"Bookmarks.title", "Bookmarks.tags"}, decodeBody(t, w)["sources"])

	// All or nothing: one unresolved name leaves the list untouched.
	w = performRequest(t, router, http.MethodPut, path+"/sources", SetSourcesRequest{
		Sources: []any{"Bookmarks.n_viewed", "Bookmarks.missing"},
	})
	assertErrorCode(t, w, http.StatusNotFound, ErrorCodeUnresolvedSource)

	w = performRequest(t, router, http.MethodGet, path+"/sources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"Bookmarks.title", "Bookmarks.tags"}, decodeBody(t, w)["sources"])

	// A single source given by column id.
	views, err := db.Column("Bookmarks.n_viewed")
	require.NoError(t, err)
	w = performRequest(t, router, http.MethodPut, path+"/source", fmt.Sprintf(`{"source": %d}`, views.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []interface{}{"Bookmarks.n_viewed"}, decodeBody(t, w)["sources"])

	// An index column cannot feed another index column.
	w = performRequest(t, router, http.MethodPut, path+"/source", SetSourceRequest{Source: bookmarksIndex})
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeIncompatibleSource)

	w = performRequest(t, router, http.MethodGet, "/columns/Bookmarks.title/sources", nil)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeNotIndexColumn)

	w = performRequest(t, router, http.MethodPut, path+"/sources", "{")
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeInvalidJSON)
}

func TestSetIndexRowHandler(t *testing.T) {
	router, _ := setupTestRouter(t)
	path := "/columns/" + bookmarksIndex + "/rows/"

	w := performRequest(t, router, http.MethodPut, path+"10", `"hello world"`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(t, router, http.MethodGet, "/columns/"+bookmarksIndex+"/postings/hello", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.EqualValues(t, 1, body["total"])
	posting := body["postings"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 10, posting["row"])
	assert.EqualValues(t, 1, posting["section"])
	assert.EqualValues(t, 1, posting["freq"])
	assert.Equal(t, []interface{}{float64(0)}, posting["positions"])

	// Structured form replaces the old value.
	w = performRequest(t, router, http.MethodPut, path+"10", map[string]any{
		"section":   1,
		"old_value": "hello world",
		"value":     "goodbye",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, searchRows(t, router, "hello"))
	assert.Equal(t, []interface{}{float64(10)}, searchRows(t, router, "goodbye"))

	w = performRequest(t, router, http.MethodGet, "/columns/"+bookmarksIndex+"/rows/10/postings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["total"])

	w = performRequest(t, router, http.MethodGet, "/columns/"+bookmarksIndex+"/terms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"goodbye"}, decodeBody(t, w)["terms"])
}

func TestSetIndexRowHandler_Errors(t *testing.T) {
	router, _ := setupTestRouter(t)
	path := "/columns/" + bookmarksIndex

	w := performRequest(t, router, http.MethodPut, path+"/rows/0", `"x"`)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)

	w = performRequest(t, router, http.MethodPut, path+"/rows/abc", `"x"`)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)

	w = performRequest(t, router, http.MethodPut, path+"/rows/1", "")
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeInvalidJSON)

	w = performRequest(t, router, http.MethodPut, path+"/rows/1", map[string]any{"value": "x", "colour": "red"})
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)

	w = performRequest(t, router, http.MethodPut, path+"/rows/1", map[string]any{"section": "first", "value": "x"})
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeTypeMismatch)

	w = performRequest(t, router, http.MethodPut, "/columns/Bookmarks.missing/rows/1", `"x"`)
	assertErrorCode(t, w, http.StatusNotFound, ErrorCodeColumnNotFound)

	w = performRequest(t, router, http.MethodPut, "/columns/Bookmarks.title/rows/1", `"x"`)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeNotIndexColumn)

	// Two sources: sections outside 1..2 are rejected.
	w = performRequest(t, router, http.MethodPut, path+"/sources", SetSourcesRequest{
		Sources: []any{"Bookmarks.title", "Bookmarks.n_viewed"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(t, router, http.MethodPut, path+"/rows/1", map[string]any{"section": 3, "value": "x"})
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeInvalidSection)

	// Section 2 decodes with the Int32 type of n_viewed.
	w = performRequest(t, router, http.MethodPut, path+"/rows/1", map[string]any{"section": 2, "value": "many"})
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeTypeMismatch)

	w = performRequest(t, router, http.MethodPut, path+"/rows/1", map[string]any{"section": 2, "value": "100"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// No sources at all.
	w = performRequest(t, router, http.MethodPut, path+"/sources", SetSourcesRequest{Sources: []any{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = performRequest(t, router, http.MethodPut, path+"/rows/1", `"x"`)
	assertErrorCode(t, w, http.StatusConflict, ErrorCodeNoSources)
}

func TestRowHandlers_TriggerPath(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := performRequest(t, router, http.MethodPost, "/tables/Bookmarks/rows", map[string]any{
		"title":    "Go Programming",
		"n_viewed": 7,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decodeBody(t, w)["row"])
	assert.Equal(t, []interface{}{float64(1)}, searchRows(t, router, "go"))

	w = performRequest(t, router, http.MethodPut, "/tables/Bookmarks/rows/1", map[string]any{"title": "Rust Programming"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, searchRows(t, router, "go"))
	assert.Equal(t, []interface{}{float64(1)}, searchRows(t, router, "rust"))

	w = performRequest(t, router, http.MethodGet, "/tables/Bookmarks/rows/1/title", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Rust Programming", decodeBody(t, w)["value"])

	w = performRequest(t, router, http.MethodGet, "/tables/Bookmarks/rows/1/n_viewed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, decodeBody(t, w)["value"])

	w = performRequest(t, router, http.MethodPut, "/tables/Bookmarks/rows/1", map[string]any{"n_viewed": "lots"})
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeTypeMismatch)

	w = performRequest(t, router, http.MethodPut, "/tables/Nope/rows/1", map[string]any{"title": "x"})
	assertErrorCode(t, w, http.StatusNotFound, ErrorCodeColumnNotFound)
}

func TestSearchHandler(t *testing.T) {
	router, db := setupTestRouter(t)
	testutil.AddTestBookmarks(t, db)

	tests := []struct {
		query string
		rows  []interface{}
	}{
		{query: "go", rows: []interface{}{float64(1), float64(3)}},
		{query: "programming", rows: []interface{}{float64(1), float64(2)}},
		{query: "Go%20Programming", rows: []interface{}{float64(1)}},
		{query: "python", rows: []interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.rows, searchRows(t, router, tt.query))
		})
	}

	w := performRequest(t, router, http.MethodGet, "/columns/"+bookmarksIndex+"/search", nil)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)
}

func TestTermsHandler_Near(t *testing.T) {
	router, db := setupTestRouter(t)
	testutil.AddTestBookmarks(t, db)
	path := "/columns/" + bookmarksIndex + "/terms"

	w := performRequest(t, router, http.MethodGet, path+"?near=progamming", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	matches := decodeBody(t, w)["matches"].([]interface{})
	require.Len(t, matches, 1)
	assert.Equal(t, "programming", matches[0].(map[string]interface{})["term"])

	w = performRequest(t, router, http.MethodGet, path+"?near=go&distance=2&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decodeBody(t, w)["total"])

	w = performRequest(t, router, http.MethodGet, path+"?near=go&distance=5", nil)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)
}

func TestRemoveColumnHandler(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := performRequest(t, router, http.MethodDelete, "/columns/Bookmarks.title", nil)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)

	w = performRequest(t, router, http.MethodDelete, "/columns/"+bookmarksIndex, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(t, router, http.MethodDelete, "/columns/Bookmarks.title", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(t, router, http.MethodGet, "/columns/"+bookmarksIndex, nil)
	assertErrorCode(t, w, http.StatusNotFound, ErrorCodeColumnNotFound)
}

func TestBulkSetHandler(t *testing.T) {
	router, db := setupTestRouter(t)
	path := "/columns/" + bookmarksIndex + "/rows"

	w := performRequest(t, router, http.MethodPost, path, `{"updates": [
		{"row": 1, "args": "alpha beta"},
		{"row": 2, "args": {"value": "beta gamma"}}
	]}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	jobID := decodeBody(t, w)["job_id"].(string)

	job := testutil.WaitForJob(t, db.Jobs(), jobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeBulkUpdate, bookmarksIndex)
	assert.Equal(t, []interface{}{float64(1), float64(2)}, searchRows(t, router, "beta"))

	w = performRequest(t, router, http.MethodGet, "/jobs/"+jobID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(model.JobStatusCompleted), decodeBody(t, w)["status"])

	w = performRequest(t, router, http.MethodGet, "/columns/"+bookmarksIndex+"/jobs?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["total"])

	w = performRequest(t, router, http.MethodPost, path, `{"updates": []}`)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)

	w = performRequest(t, router, http.MethodPost, path, `{"updates": [{"row": 1, "args": {"value": "x", "bogus": 1}}]}`)
	assertErrorCode(t, w, http.StatusBadRequest, ErrorCodeValidationFailed)

	w = performRequest(t, router, http.MethodGet, "/jobs/does-not-exist", nil)
	assertErrorCode(t, w, http.StatusNotFound, ErrorCodeJobNotFound)
}

func TestPersistHandler(t *testing.T) {
	router, db := setupTestRouter(t)

	w := performRequest(t, router, http.MethodPost, "/_persist", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(t, router, http.MethodPost, "/_persist?async=true", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	jobID := decodeBody(t, w)["job_id"].(string)

	job := testutil.WaitForJob(t, db.Jobs(), jobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypePersist, "")
}

func TestStatsAndMetricsHandlers(t *testing.T) {
	router, db := setupTestRouter(t)
	testutil.AddTestBookmarks(t, db)

	w := performRequest(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decodeBody(t, w)["updates"])

	w = performRequest(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "column_index_")
}

func TestAnalyticsHandler(t *testing.T) {
	router, db := setupTestRouter(t)
	testutil.AddTestBookmarks(t, db)
	searchRows(t, router, "go")

	w := performRequest(t, router, http.MethodGet, "/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["tables"])
	assert.EqualValues(t, 3, body["value_columns"])
	assert.EqualValues(t, 1, body["index_columns"])
	assert.EqualValues(t, 1, body["total_searches_24h"])

	usage := body["index_usage"].([]interface{})
	require.Len(t, usage, 1)
	stats := usage[0].(map[string]interface{})
	assert.Equal(t, bookmarksIndex, stats["column"])
	assert.EqualValues(t, 5, stats["terms"])
	assert.EqualValues(t, 3, stats["rows"])
	assert.EqualValues(t, 1, stats["search_count"])
}
