package models

import "time"

// SystemMetrics is a point-in-time summary of runtime and planner counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	PreviewsTotal            uint64    `json:"previews_total"`
	CommitsTotal             uint64    `json:"commits_total"`
	SeatsAssignedTotal       uint64    `json:"seats_assigned_total"`
	UnseatedTotal            uint64    `json:"unseated_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
