// Package analytics keeps recent search events and summarizes the schema
// and the lexicons of a database.
package analytics

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/gcbaptista/go-column-index/model"
	"github.com/gcbaptista/go-column-index/services"
)

const (
	maxEventsToKeep    = 10000
	maxPopularSearches = 10
)

// Service implements analytics tracking and reporting
type Service struct {
	mutex   sync.RWMutex
	events  []model.SearchEvent
	manager services.ColumnManager
	now     func() time.Time
}

// NewService creates a new analytics service
func NewService(manager services.ColumnManager) *Service {
	return &Service{
		events:  make([]model.SearchEvent, 0),
		manager: manager,
		now:     time.Now,
	}
}

// TrackSearchEvent records a new search event
func (s *Service) TrackSearchEvent(event model.SearchEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	event.Timestamp = s.now()
	s.events = append(s.events, event)

	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
}

// GetDashboardData returns complete analytics dashboard data
func (s *Service) GetDashboardData(ctx context.Context) (model.AnalyticsDashboard, error) {
	s.mutex.RLock()
	now := s.now()
	last24hEvents := filterEventsByTime(s.events, now.Add(-24*time.Hour))
	lastWeekEvents := filterEventsByTime(s.events, now.Add(-7*24*time.Hour))
	s.mutex.RUnlock()

	dashboard := model.AnalyticsDashboard{
		TotalSearches:   len(last24hEvents),
		AvgResponseTime: calculateAvgResponseTime(last24hEvents),
		PopularSearches: getPopularSearches(lastWeekEvents),
		SystemHealth:    getSystemHealth(),
	}

	snapshot := s.manager.Metrics().Snapshot()
	dashboard.Updates = snapshot.Updates
	dashboard.UpdatesFailed = snapshot.UpdatesFailed
	dashboard.SourceChanges = snapshot.SourceChanges

	searchesByColumn := make(map[string]int)
	for _, event := range lastWeekEvents {
		searchesByColumn[event.Column]++
	}

	tables := s.manager.Tables()
	dashboard.Tables = len(tables)
	dashboard.IndexUsage = make([]model.IndexStats, 0)
	for _, table := range tables {
		columns, err := s.manager.Columns(table.Name)
		if err != nil {
			return model.AnalyticsDashboard{}, err
		}
		for _, col := range columns {
			if !col.IsIndex() {
				dashboard.ValueColumns++
				continue
			}
			dashboard.IndexColumns++

			stats, err := s.indexStats(ctx, col)
			if err != nil {
				return model.AnalyticsDashboard{}, err
			}
			stats.SearchCount = searchesByColumn[stats.Column]
			dashboard.IndexUsage = append(dashboard.IndexUsage, stats)
		}
	}

	sort.Slice(dashboard.IndexUsage, func(i, j int) bool {
		return dashboard.IndexUsage[i].Column < dashboard.IndexUsage[j].Column
	})
	return dashboard, nil
}

// indexStats counts the terms, postings and distinct rows of one index column.
func (s *Service) indexStats(ctx context.Context, col *model.Column) (model.IndexStats, error) {
	name := col.FullName()
	stats := model.IndexStats{Column: name, TargetTable: col.Range, Sources: []string{}}

	srcs, err := s.manager.Updater().Sources(name)
	if err != nil {
		return stats, err
	}
	for _, src := range srcs {
		stats.Sources = append(stats.Sources, src.FullName())
	}

	indexer, err := s.manager.Indexer(name)
	if err != nil {
		return stats, err
	}
	terms, err := indexer.Terms(ctx)
	if err != nil {
		return stats, err
	}
	stats.Terms = len(terms)

	rows := make(map[model.RowID]struct{})
	for _, term := range terms {
		list, err := indexer.Postings(ctx, term)
		if err != nil {
			return stats, err
		}
		stats.Postings += len(list)
		for _, p := range list {
			rows[p.Row] = struct{}{}
		}
	}
	stats.Rows = len(rows)
	return stats, nil
}

// filterEventsByTime returns events after the given time
func filterEventsByTime(events []model.SearchEvent, after time.Time) []model.SearchEvent {
	var filtered []model.SearchEvent
	for _, event := range events {
		if event.Timestamp.After(after) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateAvgResponseTime returns the mean response time in milliseconds
func calculateAvgResponseTime(events []model.SearchEvent) int64 {
	if len(events) == 0 {
		return 0
	}

	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return (total / time.Duration(len(events))).Milliseconds()
}

// getPopularSearches returns the most frequent queries, most searched first
func getPopularSearches(events []model.SearchEvent) []model.PopularSearch {
	counts := make(map[string]int)
	for _, event := range events {
		counts[event.Query]++
	}

	popular := make([]model.PopularSearch, 0, len(counts))
	for query, count := range counts {
		popular = append(popular, model.PopularSearch{Query: query, SearchCount: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SearchCount != popular[j].SearchCount {
			return popular[i].SearchCount > popular[j].SearchCount
		}
		return popular[i].Query < popular[j].Query
	})

	if len(popular) > maxPopularSearches {
		popular = popular[:maxPopularSearches]
	}
	return popular
}

// getSystemHealth returns current system health metrics
func getSystemHealth() model.SystemHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return model.SystemHealth{
		Status:     "healthy",
		Goroutines: runtime.NumGoroutine(),
		MemoryMB:   float64(m.Alloc) / 1024 / 1024,
	}
}
