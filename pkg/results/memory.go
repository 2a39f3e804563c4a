package results

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryAggregator keeps records in memory
type MemoryAggregator struct {
	records []RunRecord
	mu      sync.RWMutex
}

// NewMemoryAggregator creates a new in-memory aggregator
func NewMemoryAggregator() *MemoryAggregator {
	return &MemoryAggregator{
		records: make([]RunRecord, 0),
	}
}

// Record stores a record
func (m *MemoryAggregator) Record(record RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.History = append([]float64(nil), record.History...)

	m.records = append(m.records, record)
	return nil
}

// Records returns records matching filter
func (m *MemoryAggregator) Records(filter Filter) ([]RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filtered := make([]RunRecord, 0, len(m.records))
	for _, record := range m.records {
		if matchesFilter(record, filter) {
			record.History = append([]float64(nil), record.History...)
			filtered = append(filtered, record)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].TestID < filtered[j].TestID
	})

	if filter.Limit > 0 && len(filtered) > filter.Limit {
		filtered = filtered[:filter.Limit]
	}
	return filtered, nil
}

// Summary aggregates records matching filter
func (m *MemoryAggregator) Summary(filter Filter) (Summary, error) {
	records, err := m.Records(Filter{TestID: filter.TestID, Elitism: filter.Elitism})
	if err != nil {
		return Summary{}, err
	}
	return summarize(records), nil
}

// Close is a no-op
func (m *MemoryAggregator) Close() error {
	return nil
}

func matchesFilter(record RunRecord, filter Filter) bool {
	if filter.TestID != nil && record.TestID != *filter.TestID {
		return false
	}
	if filter.Elitism != nil && record.Elitism != *filter.Elitism {
		return false
	}
	return true
}

func summarize(records []RunRecord) Summary {
	var s Summary
	var sum float64
	for i, r := range records {
		s.TotalRecords++
		if r.Feasible {
			s.FeasibleRecords++
		}
		if i == 0 || r.BestFitness > s.MaxBestFitness {
			s.MaxBestFitness = r.BestFitness
		}
		sum += r.BestFitness
	}
	if s.TotalRecords > 0 {
		s.MeanBestFitness = sum / float64(s.TotalRecords)
	}
	return s
}
