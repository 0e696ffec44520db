package events

import "time"

// BuildRequestEvent asks for a recommendation over NATS.
type BuildRequestEvent struct {
	RequestID    string   `json:"request_id"`
	Purpose      string   `json:"purpose"`
	Budget       int      `json:"budget"`
	PreferBrands []string `json:"prefer_brands,omitempty"`
	AvoidBrands  []string `json:"avoid_brands,omitempty"`
}

type BuildRecommendedEvent struct {
	RequestID           string         `json:"request_id"`
	BuildID             string         `json:"build_id,omitempty"`
	Purpose             string         `json:"purpose"`
	Budget              int            `json:"budget"`
	TotalPrice          int            `json:"total_price"`
	RemainingBudget     int            `json:"remaining_budget"`
	AvgPerformanceScore float64        `json:"avg_performance_score"`
	Components          map[string]int `json:"components"`
	Warnings            []string       `json:"warnings,omitempty"`
	Source              string         `json:"source"`
	Timestamp           time.Time      `json:"timestamp"`
}

type BuildFailedEvent struct {
	RequestID string         `json:"request_id"`
	BuildID   string         `json:"build_id,omitempty"`
	Purpose   string         `json:"purpose"`
	Budget    int            `json:"budget"`
	Error     string         `json:"error"`
	Category  string         `json:"category,omitempty"`
	Details   map[string]any `json:"constraints,omitempty"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
}

// CatalogUpdatedEvent is published by ingestion after a scrape or price change.
type CatalogUpdatedEvent struct {
	Kind      string    `json:"kind"`
	Category  string    `json:"category,omitempty"`
	Count     int       `json:"count,omitempty"`
	Retailer  string    `json:"retailer,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
