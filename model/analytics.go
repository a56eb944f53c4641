package model

import "time"

// SearchEvent is one search against an index column, kept for analytics.
type SearchEvent struct {
	Column       string        `json:"column"`
	Query        string        `json:"query"`
	ResponseTime time.Duration `json:"response_time"`
	ResultCount  int           `json:"result_count"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularSearch represents aggregated data for popular search terms
type PopularSearch struct {
	Query       string `json:"query"`
	SearchCount int    `json:"search_count"`
}

// IndexStats describes the lexicon of one index column.
type IndexStats struct {
	Column      string   `json:"column"`
	TargetTable string   `json:"target_table"`
	Sources     []string `json:"sources"`
	Terms       int      `json:"terms"`
	Postings    int      `json:"postings"`
	Rows        int      `json:"rows"`
	SearchCount int      `json:"search_count"`
}

// SystemHealth represents system health metrics
type SystemHealth struct {
	Status     string  `json:"status"`
	Goroutines int     `json:"goroutines"`
	MemoryMB   float64 `json:"memory_mb"`
}

// AnalyticsDashboard is the overview served by GET /analytics.
type AnalyticsDashboard struct {
	Tables          int             `json:"tables"`
	ValueColumns    int             `json:"value_columns"`
	IndexColumns    int             `json:"index_columns"`
	Updates         int64           `json:"updates"`
	UpdatesFailed   int64           `json:"updates_failed"`
	SourceChanges   int64           `json:"source_changes"`
	TotalSearches   int             `json:"total_searches_24h"`
	AvgResponseTime int64           `json:"avg_response_time_ms"`
	PopularSearches []PopularSearch `json:"popular_searches"`
	IndexUsage      []IndexStats    `json:"index_usage"`
	SystemHealth    SystemHealth    `json:"system_health"`
}
