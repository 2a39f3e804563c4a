package results

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteAggregator persists records in a SQLite database
type SQLiteAggregator struct {
	db *sql.DB
}

// NewSQLiteAggregator opens (or creates) the database at dbPath
func NewSQLiteAggregator(dbPath string) (*SQLiteAggregator, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	aggregator := &SQLiteAggregator{db: db}

	if err := aggregator.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return aggregator, nil
}

// createTable creates the runs table
func (s *SQLiteAggregator) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		test_id INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		crossover_rate REAL NOT NULL,
		mutation_rate REAL NOT NULL,
		population_size INTEGER NOT NULL,
		num_generations INTEGER NOT NULL,
		selection TEXT NOT NULL,
		metric TEXT NOT NULL,
		elitism BOOLEAN NOT NULL,
		runs INTEGER NOT NULL,
		average_fitness REAL NOT NULL,
		best_fitness REAL NOT NULL,
		best_value REAL NOT NULL,
		best_weight INTEGER NOT NULL,
		feasible BOOLEAN NOT NULL,
		history TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_test_id ON runs(test_id);
	`

	_, err := s.db.Exec(query)
	return err
}

// Record stores a record
func (s *SQLiteAggregator) Record(record RunRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	history, err := json.Marshal(record.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	query := `
	INSERT INTO runs (
		id, test_id, timestamp, crossover_rate, mutation_rate, population_size,
		num_generations, selection, metric, elitism, runs, average_fitness,
		best_fitness, best_value, best_weight, feasible, history
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		record.ID,
		record.TestID,
		record.Timestamp.UTC(),
		record.CrossoverRate,
		record.MutationRate,
		record.PopulationSize,
		record.NumGenerations,
		record.Selection,
		record.Metric,
		record.Elitism,
		record.Runs,
		record.AverageFitness,
		record.BestFitness,
		record.BestValue,
		record.BestWeight,
		record.Feasible,
		string(history),
	)
	return err
}

// Records returns records matching filter
func (s *SQLiteAggregator) Records(filter Filter) ([]RunRecord, error) {
	where, args := buildWhereClause(filter)
	query := `
	SELECT id, test_id, timestamp, crossover_rate, mutation_rate, population_size,
		num_generations, selection, metric, elitism, runs, average_fitness,
		best_fitness, best_value, best_weight, feasible, history
	FROM runs` + where + ` ORDER BY test_id, seq`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var history string
		err := rows.Scan(
			&record.ID,
			&record.TestID,
			&record.Timestamp,
			&record.CrossoverRate,
			&record.MutationRate,
			&record.PopulationSize,
			&record.NumGenerations,
			&record.Selection,
			&record.Metric,
			&record.Elitism,
			&record.Runs,
			&record.AverageFitness,
			&record.BestFitness,
			&record.BestValue,
			&record.BestWeight,
			&record.Feasible,
			&history,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(history), &record.History); err != nil {
			return nil, fmt.Errorf("failed to decode history of run %s: %w", record.ID, err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Summary aggregates records matching filter
func (s *SQLiteAggregator) Summary(filter Filter) (Summary, error) {
	where, args := buildWhereClause(filter)
	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN feasible THEN 1 ELSE 0 END), 0),
		COALESCE(MAX(best_fitness), 0),
		COALESCE(AVG(best_fitness), 0)
	FROM runs` + where

	var summary Summary
	err := s.db.QueryRow(query, args...).Scan(
		&summary.TotalRecords,
		&summary.FeasibleRecords,
		&summary.MaxBestFitness,
		&summary.MeanBestFitness,
	)
	return summary, err
}

// Close closes the database
func (s *SQLiteAggregator) Close() error {
	return s.db.Close()
}

func buildWhereClause(filter Filter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.TestID != nil {
		conditions = append(conditions, "test_id = ?")
		args = append(args, *filter.TestID)
	}
	if filter.Elitism != nil {
		conditions = append(conditions, "elitism = ?")
		args = append(args, *filter.Elitism)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
