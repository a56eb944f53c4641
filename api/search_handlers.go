package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-column-index/index"
	"github.com/gcbaptista/go-column-index/model"
	"github.com/gcbaptista/go-column-index/services"
)

const maxTermDistance = 2

// PostingResponse is one posting as returned by the read endpoints.
type PostingResponse struct {
	Term      string        `json:"term"`
	Row       model.RowID   `json:"row"`
	Section   model.Section `json:"section"`
	Freq      uint32        `json:"freq"`
	Positions []uint32      `json:"positions,omitempty"`
}

func toPostingResponses(list []index.Posting) []PostingResponse {
	out := make([]PostingResponse, len(list))
	for i, p := range list {
		out[i] = PostingResponse{
			Term:      p.Term,
			Row:       p.Row,
			Section:   p.Section,
			Freq:      p.Freq,
			Positions: p.Positions,
		}
	}
	return out
}

// PostingsHandler returns the posting list of one term.
func (api *API) PostingsHandler(c *gin.Context) {
	name := c.Param("column")
	term := c.Param("term")

	indexer, err := api.engine.Indexer(name)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	list, err := indexer.Postings(c.Request.Context(), term)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"column":   name,
		"term":     term,
		"postings": toPostingResponses(list),
		"total":    len(list),
	})
}

// RowPostingsHandler returns the postings one row contributes to a section
// (?section=, default 1).
func (api *API) RowPostingsHandler(c *gin.Context) {
	name := c.Param("column")
	row, validation := ParseRowID(c.Param("row"))
	if validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	section, err := strconv.ParseUint(c.DefaultQuery("section", "1"), 10, 32)
	if err != nil {
		result := &ValidationResult{Valid: true}
		result.AddError("section", "Section must be an unsigned 32-bit integer")
		SendValidationError(c, result)
		return
	}

	indexer, err := api.engine.Indexer(name)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	list, err := indexer.RowPostings(c.Request.Context(), row, model.Section(section))
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"column":   name,
		"row":      row,
		"section":  section,
		"postings": toPostingResponses(list),
		"total":    len(list),
	})
}

// TermsHandler lists the distinct terms of an index column. With ?near=
// it lists the terms within ?distance= edits (default 1, at most 2) of the
// given one instead, closest first, up to ?limit=.
func (api *API) TermsHandler(c *gin.Context) {
	name := c.Param("column")

	indexer, err := api.engine.Indexer(name)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	if near := c.Query("near"); near != "" {
		api.similarTerms(c, indexer, name, near)
		return
	}

	terms, err := indexer.Terms(c.Request.Context())
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"column": name,
		"terms":  terms,
		"total":  len(terms),
	})
}

func (api *API) similarTerms(c *gin.Context, indexer services.ColumnIndexer, name, near string) {
	result := &ValidationResult{Valid: true}
	distance, err := strconv.Atoi(c.DefaultQuery("distance", "1"))
	if err != nil || distance < 0 || distance > maxTermDistance {
		result.AddError("distance", "Distance must be an integer between 0 and 2")
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		result.AddError("limit", "Limit must be a non-negative integer")
	}
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	matches, err := indexer.SimilarTerms(c.Request.Context(), near, distance, limit)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"column":  name,
		"near":    near,
		"matches": matches,
		"total":   len(matches),
	})
}

// SearchHandler returns the rows containing every term of ?q=.
func (api *API) SearchHandler(c *gin.Context) {
	startTime := time.Now()
	name := c.Param("column")
	query := c.Query("q")

	if query == "" {
		result := &ValidationResult{Valid: true}
		result.AddError("q", "Query parameter 'q' is required")
		SendValidationError(c, result)
		return
	}

	indexer, err := api.engine.Indexer(name)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	rows, err := indexer.Search(c.Request.Context(), query)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	if rows == nil {
		rows = []model.RowID{}
	}

	took := time.Since(startTime)
	slog.Debug("search_completed",
		slog.String("column", name),
		slog.String("query", query),
		slog.Int("hits", len(rows)),
		slog.Duration("took", took))

	api.analytics.TrackSearchEvent(model.SearchEvent{
		Column:       name,
		Query:        query,
		ResponseTime: took,
		ResultCount:  len(rows),
	})

	c.JSON(http.StatusOK, gin.H{
		"column": name,
		"query":  query,
		"rows":   rows,
		"total":  len(rows),
		"took":   took.Milliseconds(),
	})
}
