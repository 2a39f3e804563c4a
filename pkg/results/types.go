package results

import (
	"time"
)

// RunRecord is one row of the results table. When a test is repeated, the
// fitness fields and History hold means over the repetitions.
type RunRecord struct {
	ID             string    `json:"id"`
	TestID         int       `json:"test_id"`
	Timestamp      time.Time `json:"timestamp"`
	CrossoverRate  float64   `json:"crossover_rate"`
	MutationRate   float64   `json:"mutation_rate"`
	PopulationSize int       `json:"population_size"`
	NumGenerations int       `json:"num_generations"`
	Selection      string    `json:"selection"`
	Metric         string    `json:"metric"`
	Elitism        bool      `json:"elitism"`
	Runs           int       `json:"runs"`
	AverageFitness float64   `json:"average_fitness"`
	BestFitness    float64   `json:"best_fitness"`
	BestValue      float64   `json:"best_value"`
	BestWeight     int       `json:"best_weight"`
	Feasible       bool      `json:"feasible"`
	History        []float64 `json:"fitness_history,omitempty"`
}

// Summary aggregates the records matching a filter
type Summary struct {
	TotalRecords    int64   `json:"total_records"`
	FeasibleRecords int64   `json:"feasible_records"`
	MaxBestFitness  float64 `json:"max_best_fitness"`
	MeanBestFitness float64 `json:"mean_best_fitness"`
}

// Filter narrows record queries. Zero values match everything.
type Filter struct {
	TestID  *int  `json:"test_id,omitempty"`
	Elitism *bool `json:"elitism,omitempty"`
	Limit   int   `json:"limit,omitempty"`
}

// ExportFormat represents supported export formats
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// Aggregator stores run records.
type Aggregator interface {
	// Record stores a record
	Record(record RunRecord) error

	// Records returns records ordered by test id, then insertion order
	Records(filter Filter) ([]RunRecord, error)

	// Summary aggregates the records matching filter
	Summary(filter Filter) (Summary, error)

	// Close closes the aggregator
	Close() error
}
