package results

import (
	"fmt"
	"os"
)

// Manager fronts the configured aggregator
type Manager struct {
	aggregator Aggregator
}

// Config holds results storage configuration
type Config struct {
	UseSQLite bool
	DBPath    string
}

// NewManager creates a new results manager
func NewManager(config Config) (*Manager, error) {
	var aggregator Aggregator
	var err error

	if config.UseSQLite {
		aggregator, err = NewSQLiteAggregator(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite aggregator: %w", err)
		}
	} else {
		aggregator = NewMemoryAggregator()
	}

	return &Manager{
		aggregator: aggregator,
	}, nil
}

// NewManagerWith wraps an existing aggregator
func NewManagerWith(aggregator Aggregator) *Manager {
	return &Manager{aggregator: aggregator}
}

// Record stores a record
func (m *Manager) Record(record RunRecord) error {
	return m.aggregator.Record(record)
}

// Records retrieves records with filters
func (m *Manager) Records(filter Filter) ([]RunRecord, error) {
	return m.aggregator.Records(filter)
}

// Summary aggregates records with filters
func (m *Manager) Summary(filter Filter) (Summary, error) {
	return m.aggregator.Summary(filter)
}

// Export renders the records matching filter
func (m *Manager) Export(filter Filter, format ExportFormat) ([]byte, error) {
	records, err := m.aggregator.Records(filter)
	if err != nil {
		return nil, err
	}
	return Export(records, format)
}

// ExportSeries renders the per-generation series of the records matching filter
func (m *Manager) ExportSeries(filter Filter) ([]byte, error) {
	records, err := m.aggregator.Records(filter)
	if err != nil {
		return nil, err
	}
	return ExportSeries(records)
}

// WriteFile exports to path
func (m *Manager) WriteFile(path string, format ExportFormat) error {
	data, err := m.Export(Filter{}, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteSeriesFile writes the generation series to path
func (m *Manager) WriteSeriesFile(path string) error {
	data, err := m.ExportSeries(Filter{})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Close closes the manager
func (m *Manager) Close() error {
	return m.aggregator.Close()
}
